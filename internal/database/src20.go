// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package database

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// MintProgress describes minting state of SRC-20 token.
type MintProgress struct {
	Tick        string
	MaxSupply   decimal.Decimal
	Limit       decimal.Decimal // per mint.
	Decimals    int64
	TotalMinted decimal.Decimal
	TotalMints  int64
}

// Progress returns minted share of max supply in percents.
func (p *MintProgress) Progress() decimal.Decimal {
	if p.MaxSupply.IsZero() {
		return decimal.Zero
	}

	return p.TotalMinted.Mul(hundred).DivRound(p.MaxSupply, 3)
}

// MintedOut reports whether minting amount on top of already minted exceeds max supply.
func (p *MintProgress) MintedOut(amount decimal.Decimal) bool {
	return p.TotalMinted.Add(amount).GreaterThan(p.MaxSupply)
}

// GetSRC20MintProgress returns minting state of the deployed tick, ErrNotFound if tick is not deployed.
func (d *DB) GetSRC20MintProgress(ctx context.Context, tick string) (*MintProgress, error) {
	deploy, err := d.Query(ctx,
		"SELECT tick, `max`, lim, deci FROM "+src20Table+" WHERE tick = ? AND op = 'DEPLOY' ORDER BY block_index ASC LIMIT 1;",
		[]any{tick}, CacheForever)
	if err != nil {
		return nil, errors.Wrapf(err, "deploy of %s", tick)
	}

	row, err := deploy.First()
	if err != nil {
		return nil, err
	}

	progress := &MintProgress{Tick: row.String("tick")}
	if progress.MaxSupply, err = row.Decimal("max"); err != nil {
		return nil, err
	}
	if progress.Limit, err = row.Decimal("lim"); err != nil {
		return nil, err
	}
	if progress.Decimals, err = row.Int64("deci"); err != nil {
		return nil, err
	}

	mints, err := d.Query(ctx,
		"SELECT COALESCE(SUM(amt), 0) AS total_minted, COUNT(*) AS total_mints FROM "+src20Table+" WHERE tick = ? AND op = 'MINT';",
		[]any{tick}, NoCache)
	if err != nil {
		return nil, errors.Wrapf(err, "mints of %s", tick)
	}

	if row, err = mints.First(); err == nil {
		if progress.TotalMinted, err = row.Decimal("total_minted"); err != nil {
			return nil, err
		}
		if progress.TotalMints, err = row.Int64("total_mints"); err != nil {
			return nil, err
		}
	}

	return progress, nil
}
