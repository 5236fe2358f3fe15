// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package database

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/Helios9284/BTCStampsExplorer/internal/xcp"
)

// BalanceLookup provides asset balances of an address.
type BalanceLookup interface {
	GetBalances(ctx context.Context, address string) ([]xcp.Balance, error)
}

// GetStampBalancesByAddress returns stamps held by the address, each summarized over
// its issuances with the held quantity in "balance" column.
func (d *DB) GetStampBalancesByAddress(ctx context.Context, balances BalanceLookup, address string) ([]Row, error) {
	held, err := balances.GetBalances(ctx, address)
	if err != nil {
		return nil, err
	}
	if len(held) == 0 {
		return []Row{}, nil
	}

	var (
		quantities = make(map[string]int64, len(held))
		args       = make([]any, 0, len(held))
	)
	for _, balance := range held {
		if _, ok := quantities[balance.CPID]; !ok {
			args = append(args, balance.CPID)
		}
		quantities[balance.CPID] += balance.Quantity
	}

	result, err := d.Query(ctx, `
		SELECT st.cpid, st.stamp, st.stamp_base64, st.stamp_url, st.stamp_mimetype,
			st.tx_hash, st.tx_index, st.is_btc_stamp, st.divisible, st.supply, st.locked,
			st.creator, cr.creator AS creator_name
		FROM `+stampTable+` st
		LEFT JOIN creator cr ON st.creator = cr.address
		WHERE st.cpid IN (?`+strings.Repeat(", ?", len(args)-1)+`)
		ORDER BY st.tx_index;`, args, CacheFor(DefaultTTL))
	if err != nil {
		return nil, errors.Wrapf(err, "stamps held by %s", address)
	}

	var (
		order   []string
		grouped = make(map[string][]Row)
	)
	for _, row := range result.Rows {
		cpid := row.String("cpid")
		if _, ok := grouped[cpid]; !ok {
			order = append(order, cpid)
		}
		grouped[cpid] = append(grouped[cpid], row)
	}

	stamps := make([]Row, 0, len(order))
	for _, cpid := range order {
		stamp, err := SummarizeIssuances(grouped[cpid])
		if err != nil {
			return nil, err
		}

		stamp["balance"] = quantities[cpid]
		stamp["creator_label"] = creatorLabel(stamp)
		stamps = append(stamps, stamp)
	}

	return stamps, nil
}
