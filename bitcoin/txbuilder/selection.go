// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"math/big"
	"sort"

	"github.com/btcsuite/btcd/wire"

	"github.com/Helios9284/BTCStampsExplorer/bitcoin"
	"github.com/Helios9284/BTCStampsExplorer/internal/numbers"
)

var (
	// headerSizeVBytes defined rough tx header size in vBytes.
	headerSizeVBytes = big.NewInt(11)
	// inputSizeVBytes defined rough tx input size in vBytes.
	inputSizeVBytes = big.NewInt(90)

	// nonDustBitcoinAmount defined the smallest amount in satoshi worth to create change output.
	nonDustBitcoinAmount = big.NewInt(546)
)

// Selection describes result of utxo selection.
type Selection struct {
	UTXOs  []*bitcoin.UTXO // order of the sorted pool is preserved.
	Total  *big.Int        // sum of selected utxos amounts.
	Fee    *big.Int        // includes change below dust threshold.
	Change *big.Int        // zero if there is no change output.
}

// SortUTXOsByAmountDesc sorts utxos by satoshi amount, the biggest first.
func SortUTXOsByAmountDesc(utxos []bitcoin.UTXO) {
	sort.SliceStable(utxos, func(i, j int) bool {
		return numbers.IsGreater(utxos[i].Amount, utxos[j].Amount)
	})
}

// SelectUTXOs greedily accumulates utxos (must be sorted by amount desc) until their total amount
// covers outputs amount and fee for transaction of selected inputs, outputs and change output.
// Change below dust threshold is added to the fee.
func SelectUTXOs(utxos []bitcoin.UTXO, outputs []*wire.TxOut, changeScript []byte, satoshiPerVByte *big.Int) (*Selection, error) {
	if satoshiPerVByte == nil || numbers.IsNegative(satoshiPerVByte) {
		return nil, ErrInvalidFeeRate
	}

	values := make([]int64, 0, len(outputs))
	sizes := []int64{outputSizeVBytes(changeScript)}
	for _, output := range outputs {
		values = append(values, output.Value)
		sizes = append(sizes, outputSizeVBytes(output.PkScript))
	}
	outputsAmount, outputsSize := numbers.Sum(values...), numbers.Sum(sizes...)

	selection := &Selection{Total: big.NewInt(0)}
	required := new(big.Int)
	for i := range utxos {
		if utxos[i].Amount == nil || numbers.IsNegative(utxos[i].Amount) {
			return nil, bitcoin.ErrInvalidUTXOAmount
		}

		selection.UTXOs = append(selection.UTXOs, &utxos[i])
		selection.Total.Add(selection.Total, utxos[i].Amount)
		selection.Fee = EstimateFee(len(selection.UTXOs), outputsSize, satoshiPerVByte)

		required.Add(outputsAmount, selection.Fee)
		if numbers.IsLess(selection.Total, required) {
			continue
		}

		selection.Change = new(big.Int).Sub(selection.Total, required)
		if numbers.IsLess(selection.Change, nonDustBitcoinAmount) {
			selection.Fee.Add(selection.Fee, selection.Change)
			selection.Change.SetInt64(0)
		}

		return selection, nil
	}

	if len(utxos) == 0 {
		required.Add(outputsAmount, EstimateFee(1, outputsSize, satoshiPerVByte))
	}

	return nil, NewInsufficientError(InsufficientErrorTypeBitcoin, required, selection.Total)
}

// EstimateFee returns fee in satoshi for transaction with provided inputs amount and outputs size.
func EstimateFee(inputs int, outputsSize, satoshiPerVByte *big.Int) *big.Int {
	fee := RoughTxSizeEstimate(inputs, outputsSize)

	return fee.Mul(fee, satoshiPerVByte)
}

// RoughTxSizeEstimate returns Tx rough estimated size in vBytes.
func RoughTxSizeEstimate(inputs int, outputsSize *big.Int) *big.Int {
	size := new(big.Int).Set(headerSizeVBytes)
	size.Add(size, new(big.Int).Mul(inputSizeVBytes, big.NewInt(int64(inputs))))

	return size.Add(size, outputsSize)
}

// outputSizeVBytes returns serialized size of the output with provided script.
func outputSizeVBytes(script []byte) int64 {
	return int64(wire.NewTxOut(0, script).SerializeSize())
}
