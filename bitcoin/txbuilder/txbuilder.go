// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/Helios9284/BTCStampsExplorer/bitcoin"
	"github.com/Helios9284/BTCStampsExplorer/bitcoin/src20"
	"github.com/Helios9284/BTCStampsExplorer/bitcoin/utils"
	"github.com/Helios9284/BTCStampsExplorer/internal/numbers"
)

const (
	// txVersion defines transaction version for this builder.
	txVersion int32 = 2
	// signHashType define signature hash type for input signing.
	signHashType = txscript.SigHashAll
)

var (
	// ErrInvalidFeeRate defines that fee rate is missing or negative.
	ErrInvalidFeeRate = fmt.Errorf("%w: invalid fee rate", bitcoin.ErrValidation)
	// ErrInvalidAddress defines that address could not be decoded for the network.
	ErrInvalidAddress = fmt.Errorf("%w: invalid address", bitcoin.ErrValidation)
	// ErrInvalidPublicKey defines that sender public key could not be parsed.
	ErrInvalidPublicKey = fmt.Errorf("%w: invalid public key", bitcoin.ErrValidation)
)

// SRC20TransferParams describes data needed to build SRC-20 operation transaction.
type SRC20TransferParams struct {
	UTXOs            []bitcoin.UTXO // sorted by builder, caller's slice is reordered.
	Payload          []byte         // serialized operation, e.g. {"op":"MINT",...}.
	SatoshiPerVByte  *big.Int       // fee rate in satoshi per virtual byte.
	RecipientAddress string         // receives the first (marker) output.
	ChangeAddress    string         // sender address, receives the change.
	SenderPubKey     string         // hex compressed public key, used for wrapped segwit redeem scripts.
	AnnotateInputs   bool           // write witness/legacy input indexes into PSBT unknowns.
}

// SRC20Transfer describes built unsigned transaction.
type SRC20Transfer struct {
	PSBT   []byte
	Hex    string
	Inputs []*bitcoin.UTXO
	Fee    *big.Int
	Change *big.Int
}

// TxBuilder provides transaction building related logic.
type TxBuilder struct {
	networkParams *chaincfg.Params
	lookup        TransactionLookup
	scrambler     src20.Scrambler
	random        io.Reader
}

// Option configures TxBuilder.
type Option func(*TxBuilder)

// WithScrambler overrides payload scrambling function.
func WithScrambler(scrambler src20.Scrambler) Option {
	return func(b *TxBuilder) {
		b.scrambler = scrambler
	}
}

// WithRandom overrides randomness source used for fake keys.
func WithRandom(random io.Reader) Option {
	return func(b *TxBuilder) {
		b.random = random
	}
}

// NewTxBuilder is a constructor for TxBuilder.
func NewTxBuilder(networkParams *chaincfg.Params, lookup TransactionLookup, opts ...Option) *TxBuilder {
	b := &TxBuilder{
		networkParams: networkParams,
		lookup:        lookup,
		scrambler:     src20.Scramble,
		random:        rand.Reader,
	}
	for _, opt := range opts {
		opt(b)
	}

	return b
}

// NetworkParams returns chain parameters of the builder.
func (b *TxBuilder) NetworkParams() *chaincfg.Params {
	return b.networkParams
}

// BuildSRC20TransferPSBT constructs unsigned transaction carrying SRC-20 operation
// and returns it as serialized PSBT ready for the sender to sign.
//
//	Tx struct
//	inputs:
//	┌─────────┬──────────────┬────────────────────────────────────────┐
//	│  index  │     type     │             description                │
//	├=========┼==============┼========================================┤
//	│   0 - n │ base inputs  │ sender utxos, the biggest first.       │
//	│         │              │ txid of #0 is the scrambling key.      │
//	└─────────┴──────────────┴────────────────────────────────────────┘
//
//	outputs:
//	┌─────────┬──────────────┬────────────────────────────────────────┐
//	│  index  │     type     │             description                │
//	├=========┼==============┼========================================┤
//	│       0 │ recipient    │ 808 sat, operation recipient.          │
//	├─────────┼──────────────┼────────────────────────────────────────┤
//	│   1 - k │ data         │ 810 sat each, 1-of-3 multi-sig with    │
//	│         │              │ payload chunk encoded as fake keys.    │
//	├─────────┼──────────────┼────────────────────────────────────────┤
//	│     k+1 │ change       │ optional, to change address if change  │
//	│         │              │ is above dust threshold.               │
//	└─────────┴──────────────┴────────────────────────────────────────┘
func (b *TxBuilder) BuildSRC20TransferPSBT(ctx context.Context, params SRC20TransferParams) (*SRC20Transfer, error) {
	if params.SatoshiPerVByte == nil || numbers.IsNegative(params.SatoshiPerVByte) {
		return nil, ErrInvalidFeeRate
	}

	recipientScript, err := utils.PayToAddressScript(params.RecipientAddress, b.networkParams)
	if err != nil {
		return nil, fmt.Errorf("%w: recipient: %w", ErrInvalidAddress, err)
	}

	changeScript, err := utils.PayToAddressScript(params.ChangeAddress, b.networkParams)
	if err != nil {
		return nil, fmt.Errorf("%w: change: %w", ErrInvalidAddress, err)
	}

	var redeemScript []byte
	if utils.IsWrappedSegwitAddress(params.ChangeAddress) {
		pubKey, err := hex.DecodeString(params.SenderPubKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
		}

		redeemScript, err = utils.NewWitnessPubKeyHashScript(pubKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
		}
	}

	if len(params.UTXOs) == 0 {
		return nil, NewInsufficientError(InsufficientErrorTypeBitcoin, nil, nil)
	}
	SortUTXOsByAmountDesc(params.UTXOs)

	key, err := src20.ScrambleKey(params.UTXOs[0].TxHash)
	if err != nil {
		return nil, err
	}

	dataOutputs, err := src20.EncodeDataOutputs(params.Payload, key, b.scrambler, b.random)
	if err != nil {
		return nil, err
	}

	outputs := make([]*wire.TxOut, 0, len(dataOutputs)+2)
	outputs = append(outputs, wire.NewTxOut(src20.RecipientOutputValue, recipientScript))
	outputs = append(outputs, dataOutputs...)

	selection, err := SelectUTXOs(params.UTXOs, outputs, changeScript, params.SatoshiPerVByte)
	if err != nil {
		return nil, err
	}

	prevTxs, err := b.fetchPrevTransactions(ctx, selection.UTXOs)
	if err != nil {
		return nil, err
	}

	tx := wire.NewMsgTx(txVersion)
	for _, utxo := range selection.UTXOs {
		utxoHash, err := chainhash.NewHashFromStr(utxo.TxHash)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", src20.ErrInvalidTxID, err)
		}

		tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(utxoHash, utxo.Index), nil, nil))
	}
	for _, output := range outputs {
		tx.AddTxOut(output)
	}
	if numbers.IsPositive(selection.Change) {
		tx.AddTxOut(wire.NewTxOut(selection.Change.Int64(), changeScript))
	}

	p, err := psbt.NewFromUnsignedTx(tx)
	if err != nil {
		return nil, err
	}

	indexes := make(map[InputsHelpingKey][]int, 2)
	for i, utxo := range selection.UTXOs {
		pib, err := NewPSBTInputBuilder(utxo, prevTxs[i], redeemScript)
		if err != nil {
			return nil, err
		}

		pib.PrepareInput(&p.Inputs[i])
		indexes[pib.InputsHelpingKey()] = append(indexes[pib.InputsHelpingKey()], i)
	}

	if params.AnnotateInputs {
		if err = annotateInputs(p, indexes); err != nil {
			return nil, err
		}
	}

	w := bytes.NewBuffer(nil)
	if err = p.Serialize(w); err != nil {
		return nil, err
	}

	return &SRC20Transfer{
		PSBT:   w.Bytes(),
		Hex:    hex.EncodeToString(w.Bytes()),
		Inputs: selection.UTXOs,
		Fee:    selection.Fee,
		Change: selection.Change,
	}, nil
}
