// Copyright (C) 2022 Creditor Corp. Group.
// See LICENSE for copying information.

package numbers_test

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Helios9284/BTCStampsExplorer/internal/numbers"
)

func TestNumbers(t *testing.T) {
	negative := big.NewInt(-100)
	zero := big.NewInt(0)
	positive := big.NewInt(100)

	t.Run("IsNegative", func(t *testing.T) {
		require.True(t, numbers.IsNegative(negative))
		require.False(t, numbers.IsNegative(zero))
		require.False(t, numbers.IsNegative(positive))
	})

	t.Run("IsPositive", func(t *testing.T) {
		require.False(t, numbers.IsPositive(negative))
		require.False(t, numbers.IsPositive(zero))
		require.True(t, numbers.IsPositive(positive))
	})

	t.Run("IsGreater", func(t *testing.T) {
		require.True(t, numbers.IsGreater(positive, negative))
		require.False(t, numbers.IsGreater(negative, positive))
		require.False(t, numbers.IsGreater(zero, zero))
	})

	t.Run("IsLess", func(t *testing.T) {
		require.False(t, numbers.IsLess(positive, negative))
		require.True(t, numbers.IsLess(negative, positive))
		require.False(t, numbers.IsLess(zero, zero))
	})
}

func TestSum(t *testing.T) {
	tests := []struct {
		values []int64
		sum    string
	}{
		{nil, "0"},
		{[]int64{808}, "808"},
		{[]int64{808, 810, 810}, "2428"},
		{[]int64{math.MaxInt64, math.MaxInt64}, "18446744073709551614"},
	}

	for _, test := range tests {
		require.Equal(t, test.sum, numbers.Sum(test.values...).String())
	}
}
