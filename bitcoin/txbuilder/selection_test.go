// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"

	"github.com/Helios9284/BTCStampsExplorer/bitcoin"
	"github.com/Helios9284/BTCStampsExplorer/bitcoin/txbuilder"
)

func TestSelectUTXOs(t *testing.T) {
	// 31 + 114 + 31 = 176 vBytes of outputs including change.
	outputs := []*wire.TxOut{
		wire.NewTxOut(808, make([]byte, 22)),
		wire.NewTxOut(810, make([]byte, 105)),
	}
	changeScript := make([]byte, 22)

	t.Run("selection", func(t *testing.T) {
		tests := []struct {
			name    string
			amounts []int64
			rate    int64
			used    int
			fee     int64
			change  int64
		}{
			{"single input with change", []int64{5000, 3000, 600}, 1, 1, 277, 3105},
			{"single input change to fee", []int64{2000}, 1, 1, 382, 0},
			{"two inputs change to fee", []int64{1500, 1000}, 1, 2, 882, 0},
			{"two inputs with change", []int64{3000, 3000}, 10, 2, 3670, 712},
			{"zero fee rate", []int64{1618}, 0, 1, 0, 0},
		}
		for _, test := range tests {
			t.Run(test.name, func(t *testing.T) {
				utxos := make([]bitcoin.UTXO, len(test.amounts))
				for i, amount := range test.amounts {
					utxos[i] = bitcoin.UTXO{Index: uint32(i), Amount: big.NewInt(amount)}
				}

				selection, err := txbuilder.SelectUTXOs(utxos, outputs, changeScript, big.NewInt(test.rate))
				require.NoError(t, err)
				require.Len(t, selection.UTXOs, test.used)
				for i := range selection.UTXOs {
					require.Same(t, &utxos[i], selection.UTXOs[i])
				}
				require.EqualValues(t, test.fee, selection.Fee.Int64())
				require.EqualValues(t, test.change, selection.Change.Int64())

				spent := new(big.Int).Add(selection.Fee, selection.Change)
				spent.Add(spent, big.NewInt(808+810))
				require.Zero(t, spent.Cmp(selection.Total))
			})
		}
	})

	t.Run("insufficient", func(t *testing.T) {
		utxos := []bitcoin.UTXO{{Amount: big.NewInt(1000)}, {Amount: big.NewInt(500)}}

		_, err := txbuilder.SelectUTXOs(utxos, outputs, changeScript, big.NewInt(1))
		require.ErrorIs(t, err, bitcoin.ErrInsufficientNativeBalance)

		var insufficientErr *txbuilder.InsufficientError
		require.True(t, errors.As(err, &insufficientErr))
		require.EqualValues(t, 1985, insufficientErr.Need.Int64())
		require.EqualValues(t, 1500, insufficientErr.Have.Int64())
		require.EqualError(t, err, "insufficient bitcoin balance: Need - 1985, Have - 1500")
	})

	t.Run("empty pool", func(t *testing.T) {
		_, err := txbuilder.SelectUTXOs(nil, outputs, changeScript, big.NewInt(1))
		require.ErrorIs(t, err, bitcoin.ErrInsufficientNativeBalance)
		require.EqualError(t, err, "insufficient bitcoin balance: Need - 1895, Have - 0")
	})

	t.Run("invalid input", func(t *testing.T) {
		_, err := txbuilder.SelectUTXOs([]bitcoin.UTXO{{Amount: big.NewInt(1000)}}, outputs, changeScript, nil)
		require.ErrorIs(t, err, txbuilder.ErrInvalidFeeRate)
		require.ErrorIs(t, err, bitcoin.ErrValidation)

		_, err = txbuilder.SelectUTXOs([]bitcoin.UTXO{{Amount: big.NewInt(1000)}}, outputs, changeScript, big.NewInt(-1))
		require.ErrorIs(t, err, txbuilder.ErrInvalidFeeRate)

		_, err = txbuilder.SelectUTXOs([]bitcoin.UTXO{{Amount: big.NewInt(-1)}}, outputs, changeScript, big.NewInt(1))
		require.ErrorIs(t, err, bitcoin.ErrInvalidUTXOAmount)
		require.ErrorIs(t, err, bitcoin.ErrValidation)

		_, err = txbuilder.SelectUTXOs([]bitcoin.UTXO{{}}, outputs, changeScript, big.NewInt(1))
		require.ErrorIs(t, err, bitcoin.ErrInvalidUTXOAmount)
	})
}

func TestSortUTXOsByAmountDesc(t *testing.T) {
	utxos := []bitcoin.UTXO{
		{TxHash: "a", Amount: big.NewInt(10)},
		{TxHash: "b", Amount: big.NewInt(30)},
		{TxHash: "c", Amount: big.NewInt(20)},
		{TxHash: "d", Amount: big.NewInt(30)},
	}

	txbuilder.SortUTXOsByAmountDesc(utxos)

	order := make([]string, len(utxos))
	for i := range utxos {
		order[i] = utxos[i].TxHash
	}
	require.Equal(t, []string{"b", "d", "c", "a"}, order)
}

func TestRoughTxSizeEstimate(t *testing.T) {
	tests := []struct {
		inputs      int
		outputsSize int64
		expected    int64
	}{
		{1, 0, 101},
		{1, 176, 277},
		{2, 176, 367},
		{5, 31, 492},
	}
	for _, test := range tests {
		require.EqualValues(t, test.expected, txbuilder.RoughTxSizeEstimate(test.inputs, big.NewInt(test.outputsSize)).Int64())
	}

	require.EqualValues(t, 3670, txbuilder.EstimateFee(2, big.NewInt(176), big.NewInt(10)).Int64())
}

func FuzzSelectUTXOs(f *testing.F) {
	f.Add(uint32(5000), uint32(3000), uint32(600), uint16(1))
	f.Add(uint32(3000), uint32(3000), uint32(0), uint16(10))
	f.Add(uint32(1000), uint32(500), uint32(1), uint16(1))
	f.Add(uint32(0), uint32(0), uint32(0), uint16(0))

	// 31 + 114 + 31 = 176 vBytes of outputs including change.
	outputs := []*wire.TxOut{
		wire.NewTxOut(808, make([]byte, 22)),
		wire.NewTxOut(810, make([]byte, 105)),
	}
	outputsAmount, outputsSize := big.NewInt(808+810), big.NewInt(176)

	f.Fuzz(func(t *testing.T, a, b, c uint32, rate uint16) {
		utxos := []bitcoin.UTXO{
			{Index: 0, Amount: big.NewInt(int64(a))},
			{Index: 1, Amount: big.NewInt(int64(b))},
			{Index: 2, Amount: big.NewInt(int64(c))},
		}
		txbuilder.SortUTXOsByAmountDesc(utxos)
		feeRate := big.NewInt(int64(rate))

		// required returns outputs amount and fee for transaction spending n inputs.
		required := func(n int) *big.Int {
			return new(big.Int).Add(outputsAmount, txbuilder.EstimateFee(n, outputsSize, feeRate))
		}
		// prefix returns sum of the first n sorted utxos.
		prefix := func(n int) *big.Int {
			sum := new(big.Int)
			for i := 0; i < n; i++ {
				sum.Add(sum, utxos[i].Amount)
			}

			return sum
		}

		selection, err := txbuilder.SelectUTXOs(utxos, outputs, make([]byte, 22), feeRate)
		if err != nil {
			if !errors.Is(err, bitcoin.ErrInsufficientNativeBalance) {
				t.Fatal(err)
			}
			if prefix(len(utxos)).Cmp(required(len(utxos))) >= 0 {
				t.Errorf("pool of %s covers %s but selection failed", prefix(len(utxos)), required(len(utxos)))
			}
			return
		}

		n := len(selection.UTXOs)
		if selection.Total.Cmp(prefix(n)) != 0 {
			t.Errorf("total %s is not sum of %d biggest utxos %s", selection.Total, n, prefix(n))
		}
		if selection.Total.Cmp(required(n)) < 0 {
			t.Errorf("total %s is below outputs and fee %s", selection.Total, required(n))
		}
		if n > 1 && prefix(n-1).Cmp(required(n-1)) >= 0 {
			t.Errorf("%d utxos selected while %d cover outputs and fee", n, n-1)
		}

		spent := new(big.Int).Add(selection.Fee, selection.Change)
		spent.Add(spent, outputsAmount)
		if spent.Cmp(selection.Total) != 0 {
			t.Errorf("total %s differs from outputs, fee and change %s", selection.Total, spent)
		}
		if selection.Change.Sign() < 0 {
			t.Errorf("negative change %s", selection.Change)
		}
		if selection.Change.Sign() > 0 && selection.Change.Int64() < 546 {
			t.Errorf("dust change %s", selection.Change)
		}
	})
}
