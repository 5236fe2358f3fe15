// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package src20

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
)

const (
	// Protocol defines protocol identifier value of the payload.
	Protocol = "SRC-20"

	// OpDeploy defines token deploy operation.
	OpDeploy = "DEPLOY"
	// OpMint defines token mint operation.
	OpMint = "MINT"
	// OpTransfer defines token transfer operation.
	OpTransfer = "TRANSFER"

	// ChunkSize defines size of the payload chunk embedded into one data output.
	ChunkSize = 62
	// lengthPrefixSize defines size of the big endian payload length prefix.
	lengthPrefixSize = 2
	// MaxPayloadSize defines the biggest payload that length prefix can describe.
	MaxPayloadSize = 1<<(8*lengthPrefixSize) - 1
)

// Operation describes SRC-20 token operation payload.
type Operation struct {
	Op   string `json:"op"`
	P    string `json:"p"`
	Tick string `json:"tick"`
	Amt  string `json:"amt"` // decimal string.
}

// NewMintOperation is a constructor for MINT Operation.
func NewMintOperation(tick, amount string) Operation {
	return Operation{Op: OpMint, P: Protocol, Tick: tick, Amt: amount}
}

// NewTransferOperation is a constructor for TRANSFER Operation.
func NewTransferOperation(tick, amount string) Operation {
	return Operation{Op: OpTransfer, P: Protocol, Tick: tick, Amt: amount}
}

// Marshal returns compact JSON representation of the operation.
// Characters like '&', '<' and '>' are kept as is.
func (o Operation) Marshal() ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(o); err != nil {
		return nil, err
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// EncodePayload prepends 2 bytes big endian payload length and pads the result
// with zeros to the multiple of ChunkSize. Empty payload takes one chunk.
func EncodePayload(payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return nil, ErrPayloadTooLarge
	}

	size := lengthPrefixSize + len(payload)
	if rem := size % ChunkSize; rem != 0 {
		size += ChunkSize - rem
	}

	encoded := make([]byte, size)
	binary.BigEndian.PutUint16(encoded, uint16(len(payload)))
	copy(encoded[lengthPrefixSize:], payload)

	return encoded, nil
}

// EncodePayloadHex returns hex encoded EncodePayload result for the UTF-8 transfer string.
func EncodePayloadHex(transfer string) (string, error) {
	encoded, err := EncodePayload([]byte(transfer))
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(encoded), nil
}

// DecodePayload returns payload stripped from length prefix and padding.
func DecodePayload(encoded []byte) ([]byte, error) {
	if len(encoded) < lengthPrefixSize {
		return nil, ErrMalformedPayload
	}

	size := int(binary.BigEndian.Uint16(encoded))
	if size > len(encoded)-lengthPrefixSize {
		return nil, ErrMalformedPayload
	}

	payload := make([]byte, size)
	copy(payload, encoded[lengthPrefixSize:lengthPrefixSize+size])

	return payload, nil
}
