// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package src20

import (
	"crypto/rc4"
	"encoding/hex"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Scrambler defines reversible payload transformation keyed by transaction id.
// Applying scrambler twice with the same key must return original data.
type Scrambler func(key, data []byte) []byte

// Scramble combines each data byte with cyclically repeated key byte by XOR.
func Scramble(key, data []byte) []byte {
	out := make([]byte, len(data))
	if len(key) == 0 {
		copy(out, data)
		return out
	}

	for i := range data {
		out[i] = data[i] ^ key[i%len(key)]
	}

	return out
}

// ScrambleARC4 combines data with ARC4 keystream derived from the key,
// the way Counterparty based indexers obfuscate multisig payloads.
func ScrambleARC4(key, data []byte) []byte {
	out := make([]byte, len(data))
	cipher, err := rc4.NewCipher(key)
	if err != nil { // key is empty or longer than 256 bytes.
		copy(out, data)
		return out
	}

	cipher.XORKeyStream(out, data)

	return out
}

// ScrambleKey returns raw bytes of the transaction id in display order.
func ScrambleKey(txID string) ([]byte, error) {
	if len(txID) != chainhash.MaxHashStringSize {
		return nil, ErrInvalidTxID
	}

	// display order is the reversed chainhash.Hash byte order.
	key, err := hex.DecodeString(txID)
	if err != nil {
		return nil, ErrInvalidTxID
	}

	return key, nil
}
