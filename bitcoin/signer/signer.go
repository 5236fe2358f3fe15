// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package signer

import (
	"bytes"
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

var (
	// ErrInvalidInputIndex defines that input index is out of range.
	ErrInvalidInputIndex = errors.New("invalid input index")
	// ErrMissingPrevOutput defines that input carries neither witness nor non witness utxo.
	ErrMissingPrevOutput = errors.New("missing spent output")
	// ErrUnsupportedInput defines that spent output script could not be signed by the signer.
	ErrUnsupportedInput = errors.New("unsupported input script")
)

// SignParams defines parameters for Sign method.
type SignParams struct {
	SerializedPSBT []byte
	Inputs         []int // inputs indexes.
	PrivateKey     *btcec.PrivateKey
}

// signInputParams defines parameters for signInput method.
type signInputParams struct {
	packet     *psbt.Packet
	input      int
	prevOutput *wire.TxOut
	sigHashes  *txscript.TxSigHashes
	privateKey *btcec.PrivateKey
}

// Signer provides transaction signing related logic.
type Signer struct {
	networkParams *chaincfg.Params
}

// NewSigner is a constructor for Signer.
func NewSigner(networkParams *chaincfg.Params) *Signer {
	return &Signer{
		networkParams: networkParams,
	}
}

// Sign adds partial signatures to P2WPKH, P2SH-P2WPKH and P2PKH inputs by provided indexes,
// returns updated serialized PSBT.
func (signer *Signer) Sign(params SignParams) ([]byte, error) {
	packet, err := psbt.NewFromRawBytes(bytes.NewBuffer(params.SerializedPSBT), false)
	if err != nil {
		return nil, err
	}

	var (
		tx          = packet.UnsignedTx
		prevOutputs = make([]*wire.TxOut, len(tx.TxIn))
		fetcherMap  = make(map[wire.OutPoint]*wire.TxOut, len(tx.TxIn))
	)
	for idx := range packet.Inputs {
		prevOutputs[idx], err = spentOutput(packet, idx)
		if err != nil {
			return nil, err
		}

		fetcherMap[tx.TxIn[idx].PreviousOutPoint] = prevOutputs[idx]
	}

	sigHashes := txscript.NewTxSigHashes(tx, txscript.NewMultiPrevOutFetcher(fetcherMap))
	for _, input := range params.Inputs {
		if input < 0 || len(packet.Inputs) <= input {
			return nil, ErrInvalidInputIndex
		}

		err = signer.signInput(signInputParams{
			packet:     packet,
			input:      input,
			prevOutput: prevOutputs[input],
			sigHashes:  sigHashes,
			privateKey: params.PrivateKey,
		})
		if err != nil {
			return nil, err
		}
	}

	w := bytes.NewBuffer(nil)
	err = packet.Serialize(w)
	if err != nil {
		return nil, err
	}

	return w.Bytes(), nil
}

// signInput signs input according to its spent output script.
// Nested segwit inputs get WitnessUtxo populated, so the packet could be finalized as witness input.
func (signer *Signer) signInput(params signInputParams) error {
	var (
		input       = &params.packet.Inputs[params.input]
		tx          = params.packet.UnsignedTx
		pkScript    = params.prevOutput.PkScript
		sigHashType = input.SighashType
		sig         []byte
		err         error
	)
	if sigHashType == 0 {
		sigHashType = txscript.SigHashAll
	}

	switch {
	case txscript.IsPayToWitnessPubKeyHash(pkScript):
		sig, err = txscript.RawTxInWitnessSignature(tx, params.sigHashes, params.input,
			params.prevOutput.Value, pkScript, sigHashType, params.privateKey)
	case txscript.IsPayToScriptHash(pkScript) && txscript.IsPayToWitnessPubKeyHash(input.RedeemScript):
		sig, err = txscript.RawTxInWitnessSignature(tx, params.sigHashes, params.input,
			params.prevOutput.Value, input.RedeemScript, sigHashType, params.privateKey)
		input.WitnessUtxo = params.prevOutput
	case txscript.IsPayToPubKeyHash(pkScript):
		sig, err = txscript.RawTxInSignature(tx, params.input, pkScript, sigHashType, params.privateKey)
	default:
		return ErrUnsupportedInput
	}
	if err != nil {
		return err
	}

	input.PartialSigs = append(input.PartialSigs, &psbt.PartialSig{
		PubKey:    params.privateKey.PubKey().SerializeCompressed(),
		Signature: sig,
	})

	return nil
}

// spentOutput returns output spent by the input.
func spentOutput(packet *psbt.Packet, idx int) (*wire.TxOut, error) {
	input := packet.Inputs[idx]
	if input.WitnessUtxo != nil {
		return input.WitnessUtxo, nil
	}

	if input.NonWitnessUtxo != nil {
		vout := packet.UnsignedTx.TxIn[idx].PreviousOutPoint.Index
		if int(vout) < len(input.NonWitnessUtxo.TxOut) {
			return input.NonWitnessUtxo.TxOut[vout], nil
		}
	}

	return nil, ErrMissingPrevOutput
}
