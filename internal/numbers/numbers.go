// Copyright (C) 2022 Creditor Corp. Group.
// See LICENSE for copying information.

// Package numbers holds *big.Int helpers for satoshi amounts.
package numbers

import (
	"math/big"
)

// IsNegative returns true if the number is less than zero.
func IsNegative(num *big.Int) bool {
	return num.Sign() < 0
}

// IsPositive returns true if the number is grater than zero.
func IsPositive(num *big.Int) bool {
	return num.Sign() > 0
}

// IsGreater returns true is a > b.
func IsGreater(a, b *big.Int) bool {
	return a.Cmp(b) > 0
}

// IsLess returns true is a < b.
func IsLess(a, b *big.Int) bool {
	return a.Cmp(b) < 0
}

// Sum returns new number equal to the sum of values, zero for none.
func Sum(values ...int64) *big.Int {
	sum := new(big.Int)
	for _, value := range values {
		sum.Add(sum, big.NewInt(value))
	}

	return sum
}
