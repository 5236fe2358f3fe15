// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package utils

import (
	"errors"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
)

// maxBareMultiSigKeys defines the biggest N for standard bare multi-sig scripts.
const maxBareMultiSigKeys = 3

// FillerPubKey defines constant key used as the last key of src20 data multi-sig outputs.
// It has no known private key.
var FillerPubKey = []byte{
	0x02, 0x02, 0x02, 0x02, 0x02, 0x02, 0x02, 0x02, 0x02, 0x02, 0x02,
	0x02, 0x02, 0x02, 0x02, 0x02, 0x02, 0x02, 0x02, 0x02, 0x02, 0x02,
	0x02, 0x02, 0x02, 0x02, 0x02, 0x02, 0x02, 0x02, 0x02, 0x02, 0x02,
}

// NewBareMultiSigScript generates M of N bare multi-sig locking script from raw compressed public keys.
// INFO: Script will have the next format: {OP_M <pubKey1> [<pubKey2> ...] OP_N OP_CHECKMULTISIG}.
// NOTE: Keys are not checked to be on curve, it is the caller responsibility.
func NewBareMultiSigScript(required int, publicKeys ...[]byte) ([]byte, error) {
	if len(publicKeys) == 0 || len(publicKeys) > maxBareMultiSigKeys {
		return nil, errors.New("from 1 to 3 public keys are required")
	}
	if required < 1 || required > len(publicKeys) {
		return nil, errors.New("invalid required signatures amount")
	}

	scriptBuilder := txscript.NewScriptBuilder().AddInt64(int64(required))
	for _, publicKey := range publicKeys {
		if len(publicKey) != 33 {
			return nil, errors.New("compressed public key is required")
		}

		scriptBuilder.AddData(publicKey)
	}

	return scriptBuilder.
		AddInt64(int64(len(publicKeys))).
		AddOp(txscript.OP_CHECKMULTISIG).
		Script()
}

// MustBareMultiSigScript uses NewBareMultiSigScript, panics in case of error.
func MustBareMultiSigScript(required int, publicKeys ...[]byte) []byte {
	script, err := NewBareMultiSigScript(required, publicKeys...)
	if err != nil {
		panic(err)
	}

	return script
}

// ExtractBareMultiSigKeys returns public keys pushed into bare multi-sig script.
func ExtractBareMultiSigKeys(script []byte) ([][]byte, error) {
	if txscript.GetScriptClass(script) != txscript.MultiSigTy {
		return nil, errors.New("not a bare multi-sig script")
	}

	var (
		keys      [][]byte
		tokenizer = txscript.MakeScriptTokenizer(0, script)
	)
	for tokenizer.Next() {
		if data := tokenizer.Data(); len(data) > 0 {
			keys = append(keys, data)
		}
	}
	if err := tokenizer.Err(); err != nil {
		return nil, err
	}

	return keys, nil
}

// NewWitnessPubKeyHashScript builds P2WPKH program (OP_0 <hash160(pubKey)>) for the compressed public key.
// The program serves as redeem script for P2SH wrapped segwit inputs.
func NewWitnessPubKeyHashScript(publicKey []byte) ([]byte, error) {
	if len(publicKey) != 33 {
		return nil, errors.New("compressed public key is required")
	}

	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_0).
		AddData(btcutil.Hash160(publicKey)).
		Script()
}
