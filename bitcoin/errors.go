// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package bitcoin

import (
	"errors"
	"fmt"
)

// ErrValidation defines errors class for malformed user provided data.
var ErrValidation = errors.New("validation failed")

var (
	// ErrInsufficientNativeBalance defines that utxos can not cover outputs and fee.
	ErrInsufficientNativeBalance = errors.New("insufficient bitcoin balance")
	// ErrInvalidUTXOAmount defines that utxo amount is missing or negative.
	ErrInvalidUTXOAmount = fmt.Errorf("%w: invalid utxo amount", ErrValidation)
	// ErrUnknownNetwork defines that network name is not supported.
	ErrUnknownNetwork = errors.New("unknown network")
)
