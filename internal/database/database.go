// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

// Package database provides read access to the stamps index with query result caching.
package database

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/Helios9284/BTCStampsExplorer/internal/cache"
)

// ErrNotFound defines that requested record does not exist.
var ErrNotFound = errors.New("not found")

// Index tables.
const (
	stampTable = "StampTableV4"
	sendTable  = "sends"
	blockTable = "blocks"
	src20Table = "SRC20Valid"
)

// Querier executes read queries with optional result caching.
type Querier interface {
	Query(ctx context.Context, query string, args []any, ttl TTL) (*Result, error)
}

// DB is a Querier over MySQL index with results cached in the store.
type DB struct {
	db     *sql.DB
	cache  cache.Store
	logger zerolog.Logger
}

var _ Querier = (*DB)(nil)

// Config defines index connection parameters.
type Config struct {
	DSN             string        `long:"dsn" description:"MySQL DSN of the stamps index, e.g. user:pass@tcp(host:3306)/btc_stamps"`
	MaxOpenConns    int           `long:"max-open-conns" default:"10" description:"maximum open connections"`
	ConnMaxLifetime time.Duration `long:"conn-max-lifetime" default:"5m" description:"maximum connection lifetime"`
}

// Open connects to MySQL index. Nil store disables caching.
func Open(ctx context.Context, cfg Config, store cache.Store, logger zerolog.Logger) (*DB, error) {
	mysqlCfg, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "invalid dsn")
	}
	mysqlCfg.ParseTime = true

	connector, err := mysql.NewConnector(mysqlCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "mysql connector")
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, pkgerrors.Wrapf(err, "connect to %s/%s", mysqlCfg.Addr, mysqlCfg.DBName)
	}

	return New(db, store, logger), nil
}

// New is a constructor for DB.
func New(db *sql.DB, store cache.Store, logger zerolog.Logger) *DB {
	return &DB{db: db, cache: store, logger: logger}
}

// Close closes the connection pool.
func (d *DB) Close() error {
	return d.db.Close()
}

// Query executes query, results are served from cache while entry is alive.
// Cache failures are logged and never fail the query.
func (d *DB) Query(ctx context.Context, query string, args []any, ttl TTL) (*Result, error) {
	if d.cache == nil || !ttl.Cached() {
		return d.query(ctx, query, args)
	}

	key, err := cacheKey(query, args)
	if err != nil {
		return nil, err
	}

	cached, err := d.cache.Get(key)
	switch {
	case err == nil:
		result, err := decodeResult(cached)
		if err == nil {
			return result, nil
		}

		d.logger.Warn().Err(err).Msg("drop malformed cache entry")
	case !errors.Is(err, cache.ErrMiss):
		d.logger.Warn().Err(err).Msg("cache read failed")
	}

	result, err := d.query(ctx, query, args)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "encode result")
	}
	if err = d.cache.Set(key, encoded, ttl.Duration()); err != nil {
		d.logger.Warn().Err(err).Msg("cache write failed")
	}

	return result, nil
}

func (d *DB) query(ctx context.Context, query string, args []any) (*Result, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "query")
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "columns")
	}

	raw := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err = rows.Scan(pointers...); err != nil {
			return nil, pkgerrors.Wrap(err, "scan")
		}

		row := make(map[string]any, len(columns))
		for i, column := range columns {
			if b, ok := values[i].([]byte); ok {
				row[column] = string(b)
				continue
			}

			row[column] = values[i]
		}
		raw = append(raw, row)
	}
	if err = rows.Err(); err != nil {
		return nil, pkgerrors.Wrap(err, "rows")
	}

	d.logger.Trace().Str("query", query).Int("rows", len(raw)).Msg("query executed")

	// driver values are normalized through JSON, so fresh and cached results are identical.
	encoded, err := json.Marshal(map[string]any{"rows": raw})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "encode rows")
	}

	return decodeResult(encoded)
}

func decodeResult(data []byte) (*Result, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var result Result
	if err := decoder.Decode(&result); err != nil {
		return nil, pkgerrors.Wrap(err, "decode result")
	}
	if result.Rows == nil {
		result.Rows = []Row{}
	}

	return &result, nil
}

// cacheKey returns sha256 of query text and JSON encoded arguments.
func cacheKey(query string, args []any) ([]byte, error) {
	encodedArgs, err := json.Marshal(args)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "encode query args")
	}

	hash := sha256.Sum256(append([]byte(query), encodedArgs...))

	return []byte(hex.EncodeToString(hash[:])), nil
}
