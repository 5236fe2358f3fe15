// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package database

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// DefaultPageLimit defines default page size of stamps listings.
const DefaultPageLimit = 1000

// sendsTTL defines cache lifetime of stamp sends history.
const sendsTTL = time.Hour

// GetTotalStamps returns amount of valid stamps.
func (d *DB) GetTotalStamps(ctx context.Context) (int64, error) {
	result, err := d.Query(ctx, `SELECT COUNT(*) AS total FROM `+stampTable+` WHERE is_btc_stamp IS NOT NULL;`, nil, CacheFor(DefaultTTL))
	if err != nil {
		return 0, errors.Wrap(err, "total stamps")
	}

	row, err := result.First()
	if err != nil {
		return 0, err
	}

	return row.Int64("total")
}

// GetStampsByPage returns page of valid stamps ordered by stamp number, page starts from 1.
func (d *DB) GetStampsByPage(ctx context.Context, limit, page int, ascending bool) ([]Row, error) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if page < 1 {
		page = 1
	}

	order := "DESC"
	if ascending {
		order = "ASC"
	}

	result, err := d.Query(ctx, `
		SELECT st.*, cr.creator AS creator_name
		FROM `+stampTable+` AS st
		LEFT JOIN creator AS cr ON st.creator = cr.address
		WHERE st.is_btc_stamp IS NOT NULL
		ORDER BY st.stamp `+order+`
		LIMIT ? OFFSET ?;`, []any{limit, (page - 1) * limit}, CacheFor(DefaultTTL))
	if err != nil {
		return nil, errors.Wrap(err, "stamps page")
	}

	return result.Rows, nil
}

// GetStampsByBlock returns valid stamps of the block.
func (d *DB) GetStampsByBlock(ctx context.Context, blockIndex int64) ([]Row, error) {
	result, err := d.Query(ctx, `
		SELECT st.*, cr.creator AS creator_name
		FROM `+stampTable+` AS st
		LEFT JOIN creator AS cr ON st.creator = cr.address
		WHERE st.block_index = ?
		AND st.is_btc_stamp IS NOT NULL
		ORDER BY stamp;`, []any{blockIndex}, CacheForever)
	if err != nil {
		return nil, errors.Wrapf(err, "stamps of block %d", blockIndex)
	}

	return result.Rows, nil
}

// GetStampIssuances returns all issuances of the asset the stamp belongs to.
func (d *DB) GetStampIssuances(ctx context.Context, id StampID) ([]Row, error) {
	query, args := `SELECT * FROM `+stampTable+` WHERE stamp = ? ORDER BY tx_index;`, []any{id.number}
	if identifier, ok := id.Identifier(); ok {
		query = `SELECT * FROM ` + stampTable + ` WHERE (cpid = ? OR tx_hash = ? OR stamp_hash = ?) ORDER BY tx_index;`
		args = []any{identifier, identifier, identifier}
	}

	result, err := d.Query(ctx, query, args, CacheFor(DefaultTTL))
	if err != nil {
		return nil, errors.Wrapf(err, "stamp %s", id)
	}

	first, err := result.First()
	if err != nil {
		return nil, err
	}

	cpid := first.String("cpid")
	if cpid == "" {
		return nil, ErrNotFound
	}

	result, err = d.Query(ctx, `SELECT * FROM `+stampTable+` WHERE (cpid = ?) ORDER BY tx_index;`, []any{cpid}, CacheFor(DefaultTTL))
	if err != nil {
		return nil, errors.Wrapf(err, "issuances of %s", cpid)
	}

	return result.Rows, nil
}

// GetStamp returns stamp summarized over all its issuances.
func (d *DB) GetStamp(ctx context.Context, id StampID) (Row, error) {
	issuances, err := d.GetStampIssuances(ctx, id)
	if err != nil {
		return nil, err
	}

	return SummarizeIssuances(issuances)
}

// GetCPID returns asset id of the stamp.
func (d *DB) GetCPID(ctx context.Context, id StampID) (string, error) {
	query, args := `SELECT cpid FROM `+stampTable+` WHERE stamp = ?;`, []any{id.number}
	if identifier, ok := id.Identifier(); ok {
		query, args = `SELECT cpid FROM `+stampTable+` WHERE (cpid = ? OR tx_hash = ?);`, []any{identifier, identifier}
	}

	result, err := d.Query(ctx, query, args, CacheForever)
	if err != nil {
		return "", errors.Wrapf(err, "cpid of %s", id)
	}

	row, err := result.First()
	if err != nil {
		return "", err
	}

	return row.String("cpid"), nil
}

// GetSendsForCPID returns sends history of the asset with block times.
func (d *DB) GetSendsForCPID(ctx context.Context, cpid string) ([]Row, error) {
	result, err := d.Query(ctx, `
		SELECT s.*, b.block_time FROM `+sendTable+` AS s
		LEFT JOIN `+blockTable+` AS b ON s.block_index = b.block_index
		WHERE s.cpid = ?
		ORDER BY s.tx_index;`, []any{cpid}, CacheFor(sendsTTL))
	if err != nil {
		return nil, errors.Wrapf(err, "sends of %s", cpid)
	}

	return result.Rows, nil
}

// SummarizeIssuances merges issuances of one asset ordered by tx_index into a single stamp row:
// the first issuance with supply summed up and locked set if any issuance locked the asset.
func SummarizeIssuances(issuances []Row) (Row, error) {
	if len(issuances) == 0 {
		return nil, ErrNotFound
	}

	summary := make(Row, len(issuances[0])+1)
	for column, value := range issuances[0] {
		summary[column] = value
	}

	var (
		supply = decimal.Zero
		locked bool
	)
	for _, issuance := range issuances {
		issued, err := issuance.Decimal("supply")
		if err != nil {
			return nil, err
		}

		supply = supply.Add(issued)
		locked = locked || issuance.Bool("locked")
	}

	summary["supply"] = supply.String()
	summary["locked"] = locked
	summary["issuances"] = len(issuances)
	if divisible := issuances[0].Bool("divisible"); divisible {
		summary["supply_display"] = supply.Shift(-8).String()
	} else {
		summary["supply_display"] = supply.String()
	}

	return summary, nil
}

// creatorLabel returns creator name if known, address otherwise.
func creatorLabel(row Row) string {
	if name := strings.TrimSpace(row.String("creator_name")); name != "" {
		return name
	}

	return row.String("creator")
}
