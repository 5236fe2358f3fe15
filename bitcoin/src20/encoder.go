// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package src20

import (
	"bytes"
	"io"

	"github.com/btcsuite/btcd/wire"

	"github.com/Helios9284/BTCStampsExplorer/bitcoin/utils"
)

const (
	// RecipientOutputValue defines satoshi amount of the first output, that marks recipient of the operation.
	RecipientOutputValue int64 = 808
	// DataOutputValue defines satoshi amount of each data carrying multi-sig output.
	// It is above dust threshold of 1-of-3 bare multi-sig output.
	DataOutputValue int64 = 810

	// dataScriptRequiredSigs defines M of the data carrying M-of-N multi-sig.
	dataScriptRequiredSigs = 1
)

// NewDataScript builds data carrying 1-of-3 multi-sig script from fake key pair and FillerPubKey.
func NewDataScript(pair FakeKeyPair) ([]byte, error) {
	return utils.NewBareMultiSigScript(dataScriptRequiredSigs, pair[0], pair[1], utils.FillerPubKey)
}

// EncodeDataOutputs encodes payload into multi-sig outputs.
// Payload is length prefixed, padded, scrambled with the key and split into ChunkSize chunks,
// one output per chunk, the order of chunks is preserved.
func EncodeDataOutputs(payload, key []byte, scrambler Scrambler, rnd io.Reader) ([]*wire.TxOut, error) {
	if len(payload) == 0 {
		return nil, ErrEmptyPayload
	}

	encoded, err := EncodePayload(payload)
	if err != nil {
		return nil, err
	}

	if scrambler == nil {
		scrambler = Scramble
	}
	scrambled := scrambler(key, encoded)

	outputs := make([]*wire.TxOut, 0, len(scrambled)/ChunkSize)
	for offset := 0; offset < len(scrambled); offset += ChunkSize {
		pair, err := EncodeChunk(scrambled[offset:offset+ChunkSize], rnd)
		if err != nil {
			return nil, err
		}

		script, err := NewDataScript(pair)
		if err != nil {
			return nil, err
		}

		outputs = append(outputs, wire.NewTxOut(DataOutputValue, script))
	}

	return outputs, nil
}

// DecodeDataOutputs restores payload from transaction outputs.
// Leading non data outputs (recipient) are skipped, decoding stops on the first
// non data output after data outputs (change).
func DecodeDataOutputs(outputs []*wire.TxOut, key []byte, scrambler Scrambler) ([]byte, error) {
	if scrambler == nil {
		scrambler = Scramble
	}

	scrambled := bytes.NewBuffer(nil)
	for _, output := range outputs {
		chunk, err := chunkFromScript(output.PkScript)
		if err != nil {
			if scrambled.Len() == 0 {
				continue
			}

			break
		}

		scrambled.Write(chunk)
	}
	if scrambled.Len() == 0 {
		return nil, ErrNotDataOutput
	}

	return DecodePayload(scrambler(key, scrambled.Bytes()))
}

// chunkFromScript returns chunk embedded into data carrying multi-sig script.
func chunkFromScript(script []byte) ([]byte, error) {
	keys, err := utils.ExtractBareMultiSigKeys(script)
	if err != nil {
		return nil, ErrNotDataOutput
	}
	if len(keys) != 3 || !bytes.Equal(keys[2], utils.FillerPubKey) {
		return nil, ErrNotDataOutput
	}

	return ChunkFromKeys(FakeKeyPair{keys[0], keys[1]})
}
