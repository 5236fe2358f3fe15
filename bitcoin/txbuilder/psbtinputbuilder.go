// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/wire"

	"github.com/Helios9284/BTCStampsExplorer/bitcoin"
)

// ErrPSBTInputBuilder defines errors class for prepare input data method.
var ErrPSBTInputBuilder = errors.New("prepare input data")

// witnessScriptTypePrefix defines prefix of node reported script types spendable with witness.
const witnessScriptTypePrefix = "witness"

const (
	// SpendTypeWitness defines input that spends segwit output, signed over WitnessUtxo.
	SpendTypeWitness = "witness"
	// SpendTypeLegacy defines input that spends pre-segwit output, signed over NonWitnessUtxo.
	SpendTypeLegacy = "legacy"
)

// PSBTInputBuilder is a helping tool to prepare psbt input based on spent output type.
type PSBTInputBuilder struct {
	spendType      string
	witnessUtxo    *wire.TxOut
	nonWitnessUtxo *wire.MsgTx
	redeemScript   []byte
}

// NewPSBTInputBuilder is a constructor for PSBTInputBuilder.
// Spend type is resolved by script type of the spent output reported by transaction lookup,
// redeemScript is optional and attached to the input as is.
func NewPSBTInputBuilder(utxo *bitcoin.UTXO, prevTx *PrevTransaction, redeemScript []byte) (pib *PSBTInputBuilder, err error) {
	pib = &PSBTInputBuilder{redeemScript: redeemScript}

	defer func(err *error) {
		if err != nil && *err != nil {
			*err = errors.Join(ErrPSBTInputBuilder, *err)
		}
	}(&err)

	if int(utxo.Index) >= len(prevTx.Vout) {
		return pib, errors.New("spent output index is out of range")
	}

	prevOut := prevTx.Vout[utxo.Index]
	if strings.HasPrefix(prevOut.ScriptType, witnessScriptTypePrefix) {
		script, err := hex.DecodeString(prevOut.ScriptHex)
		if err != nil {
			return pib, err
		}

		pib.spendType = SpendTypeWitness
		pib.witnessUtxo = wire.NewTxOut(utxo.Amount.Int64(), script)

		return pib, nil
	}

	raw, err := hex.DecodeString(prevTx.Hex)
	if err != nil {
		return pib, err
	}

	tx := new(wire.MsgTx)
	if err = tx.Deserialize(bytes.NewReader(raw)); err != nil {
		return pib, err
	}
	if tx.TxHash().String() != utxo.TxHash {
		return pib, errors.New("previous transaction hash mismatch")
	}

	pib.spendType = SpendTypeLegacy
	pib.nonWitnessUtxo = tx

	return pib, nil
}

// PrepareInput updates input with required data based on spend type.
func (pib *PSBTInputBuilder) PrepareInput(input *psbt.PInput) {
	switch pib.spendType {
	case SpendTypeWitness:
		input.WitnessUtxo = pib.witnessUtxo
	case SpendTypeLegacy:
		input.NonWitnessUtxo = pib.nonWitnessUtxo
	}

	if len(pib.redeemScript) > 0 {
		input.RedeemScript = pib.redeemScript
	}
	input.SighashType = signHashType
}

// InputsHelpingKey return InputsHelpingKey for wallet input indexes distinguishing.
func (pib *PSBTInputBuilder) InputsHelpingKey() InputsHelpingKey {
	switch {
	case len(pib.redeemScript) > 0:
		return NestedWitnessInputsHelpingKey
	case pib.spendType == SpendTypeWitness:
		return WitnessInputsHelpingKey
	}

	return LegacyInputsHelpingKey
}

// SpendType returns resolved spend type.
func (pib *PSBTInputBuilder) SpendType() string {
	return pib.spendType
}
