// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package src20

import (
	"errors"
	"fmt"

	"github.com/Helios9284/BTCStampsExplorer/bitcoin"
)

// ErrValidation is an alias of bitcoin.ErrValidation for the package users convenience.
var ErrValidation = bitcoin.ErrValidation

var (
	// ErrPayloadTooLarge defines that payload does not fit into 2 bytes length prefix.
	ErrPayloadTooLarge = fmt.Errorf("%w: payload exceeds %d bytes", ErrValidation, MaxPayloadSize)
	// ErrEmptyPayload defines that there is nothing to embed into data outputs.
	ErrEmptyPayload = fmt.Errorf("%w: empty payload", ErrValidation)
	// ErrInvalidTxID defines that scramble key could not be derived from transaction id.
	ErrInvalidTxID = fmt.Errorf("%w: invalid transaction id", ErrValidation)
)

var (
	// ErrMalformedPayload defines that encoded payload could not be decoded.
	ErrMalformedPayload = errors.New("payload is malformed")
	// ErrInvalidChunkSize defines that chunk is not ChunkSize bytes long.
	ErrInvalidChunkSize = errors.New("invalid chunk size")
	// ErrEncodingFailure defines that no valid public key was found within MaxKeyAttempts.
	ErrEncodingFailure = errors.New("fake key generation did not converge")
	// ErrNotDataOutput defines that output script is not a src20 data carrying multisig.
	ErrNotDataOutput = errors.New("not a data output")
)
