// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Helios9284/BTCStampsExplorer/bitcoin"
)

// ErrExternalLookup defines errors class for previous transaction lookup failures.
var ErrExternalLookup = errors.New("previous transaction lookup")

// maxConcurrentLookups limits in flight previous transaction requests per build.
const maxConcurrentLookups = 8

// PrevOutput describes output of the previous transaction.
type PrevOutput struct {
	ScriptType string // e.g. "witness_v0_keyhash", "pubkeyhash", "scripthash".
	ScriptHex  string
	Value      int64 // in Satoshi.
}

// PrevTransaction describes transaction spent by the input.
type PrevTransaction struct {
	Hex  string // raw serialized transaction.
	Vout []PrevOutput
}

// TransactionLookup provides transactions by id.
type TransactionLookup interface {
	GetTransaction(ctx context.Context, txID string) (*PrevTransaction, error)
}

// fetchPrevTransactions concurrently looks up transactions spent by utxos.
// The result has the same order as utxos, first failure cancels remaining requests.
func (b *TxBuilder) fetchPrevTransactions(ctx context.Context, utxos []*bitcoin.UTXO) ([]*PrevTransaction, error) {
	var (
		prevTxs     = make([]*PrevTransaction, len(utxos))
		group, gctx = errgroup.WithContext(ctx)
	)
	group.SetLimit(maxConcurrentLookups)

	for i, utxo := range utxos {
		group.Go(func() error {
			prevTx, err := b.lookup.GetTransaction(gctx, utxo.TxHash)
			if err != nil {
				return fmt.Errorf("%w: %s: %w", ErrExternalLookup, utxo.TxHash, err)
			}
			if prevTx == nil {
				return fmt.Errorf("%w: %s: empty response", ErrExternalLookup, utxo.TxHash)
			}

			prevTxs[i] = prevTx
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return prevTxs, nil
}
