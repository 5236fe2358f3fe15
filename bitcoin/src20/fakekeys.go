// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package src20

import (
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
)

const (
	// MaxKeyAttempts defines how many random lead/trail combinations are tried per segment.
	// Roughly half of x coordinates are on curve, so the limit is practically unreachable.
	MaxKeyAttempts = 1024

	// segmentSize defines size of the chunk part embedded into one fake key.
	segmentSize = ChunkSize / 2
	// fakeKeySize defines size of compressed public key.
	fakeKeySize = btcec.PubKeyBytesLenCompressed
	// evenKeyLead defines compressed public key prefix, 0x03 is produced by setting lowest bit.
	evenKeyLead byte = 0x02
)

// FakeKeyPair holds two synthetic compressed public keys carrying one chunk.
type FakeKeyPair [2][]byte

// EncodeChunk splits chunk in two segments and wraps each into a valid compressed public key
// in the form of lead(0x02|0x03) || segment || random trailing byte.
func EncodeChunk(chunk []byte, rnd io.Reader) (FakeKeyPair, error) {
	if len(chunk) != ChunkSize {
		return FakeKeyPair{}, ErrInvalidChunkSize
	}

	var (
		pair FakeKeyPair
		err  error
	)
	for i := range pair {
		pair[i], err = fakeKey(chunk[i*segmentSize:(i+1)*segmentSize], rnd)
		if err != nil {
			return FakeKeyPair{}, err
		}
	}

	return pair, nil
}

// ChunkFromKeys returns chunk embedded into pair of fake keys.
func ChunkFromKeys(pair FakeKeyPair) ([]byte, error) {
	chunk := make([]byte, 0, ChunkSize)
	for _, key := range pair {
		if len(key) != fakeKeySize {
			return nil, ErrInvalidChunkSize
		}

		chunk = append(chunk, key[1:1+segmentSize]...)
	}

	return chunk, nil
}

// fakeKey returns on curve public key that holds segment.
func fakeKey(segment []byte, rnd io.Reader) ([]byte, error) {
	var random [2]byte
	for attempt := 0; attempt < MaxKeyAttempts; attempt++ {
		if _, err := io.ReadFull(rnd, random[:]); err != nil {
			return nil, err
		}

		key := make([]byte, 0, fakeKeySize)
		key = append(key, evenKeyLead|random[0]&1)
		key = append(key, segment...)
		key = append(key, random[1])

		if _, err := btcec.ParsePubKey(key); err == nil {
			return key, nil
		}
	}

	return nil, ErrEncodingFailure
}
