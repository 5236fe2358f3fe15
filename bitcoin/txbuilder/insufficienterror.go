// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"fmt"
	"math/big"

	"github.com/Helios9284/BTCStampsExplorer/bitcoin"
)

type balanceErrorType string

const (
	// InsufficientErrorTypeBitcoin defines insufficient bitcoin balance error type.
	InsufficientErrorTypeBitcoin balanceErrorType = "bitcoin"
)

// InsufficientError is the error type to describe insufficient balance errors with details.
type InsufficientError struct {
	Type balanceErrorType
	Need *big.Int
	Have *big.Int
}

// NewInsufficientError is a constructor for InsufficientError.
func NewInsufficientError(type_ balanceErrorType, need, have *big.Int) *InsufficientError {
	return &InsufficientError{type_, need, have}
}

// Error returns error description.
func (e *InsufficientError) Error() string {
	var errMsg = fmt.Sprintf("insufficient %s balance", e.Type)

	if e.Have != nil && e.Need != nil {
		errMsg += fmt.Sprintf(": Need - %s, Have - %s", e.Need, e.Have)
	}

	return errMsg
}

// Is implements comparator method for [errors] package.
func (e *InsufficientError) Is(target error) bool {
	switch target := target.(type) {
	case *InsufficientError:
		return e.Type == target.Type
	default:
		return e.Type == InsufficientErrorTypeBitcoin && target == bitcoin.ErrInsufficientNativeBalance
	}
}
