// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package database

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Row describes result row keyed by column name.
// Values are normalized to JSON types: string, json.Number, bool or nil.
type Row map[string]any

// Result describes query result.
type Result struct {
	Rows []Row `json:"rows"`
}

// First returns the first row, ErrNotFound for empty result.
func (r *Result) First() (Row, error) {
	if r == nil || len(r.Rows) == 0 {
		return nil, ErrNotFound
	}

	return r.Rows[0], nil
}

// IsNull reports whether column is absent or NULL.
func (r Row) IsNull(column string) bool {
	return r[column] == nil
}

// String returns column value as string, empty for NULL.
func (r Row) String(column string) string {
	switch v := r[column].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Int64 returns column value as integer, zero for NULL.
func (r Row) Int64(column string) (int64, error) {
	switch v := r[column].(type) {
	case nil:
		return 0, nil
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}

		d, err := decimal.NewFromString(v.String())
		if err != nil || !d.IsInteger() {
			return 0, errors.Errorf("column %s: %q is not an integer", column, v)
		}

		return d.IntPart(), nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, errors.Wrapf(err, "column %s", column)
	case bool:
		if v {
			return 1, nil
		}

		return 0, nil
	default:
		return 0, errors.Errorf("column %s: unexpected type %T", column, v)
	}
}

// Decimal returns column value as decimal, zero for NULL.
func (r Row) Decimal(column string) (decimal.Decimal, error) {
	if r.IsNull(column) {
		return decimal.Zero, nil
	}

	d, err := decimal.NewFromString(r.String(column))
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "column %s", column)
	}

	return d, nil
}

// Bool returns column value as boolean, MySQL tinyint is supported.
func (r Row) Bool(column string) bool {
	switch v := r[column].(type) {
	case bool:
		return v
	case json.Number:
		return v.String() != "0"
	case string:
		b, err := strconv.ParseBool(v)
		return err == nil && b
	default:
		return false
	}
}
