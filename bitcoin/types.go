// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package bitcoin

import (
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
)

// UTXO describes unspent transaction output data.
type UTXO struct {
	TxHash  string
	Index   uint32   // output index in transaction outputs.
	Amount  *big.Int // in Satoshi.
	Script  []byte   // ScriptPubKey, optional.
	Address string   // output recipient address, optional.
}

// Network names accepted by NetworkParams.
const (
	NetworkMainnet = "mainnet"
	NetworkBitcoin = "bitcoin"
	NetworkTestnet = "testnet"
	NetworkRegtest = "regtest"
)

// NetworkParams returns chain parameters by network name.
func NetworkParams(network string) (*chaincfg.Params, error) {
	switch strings.ToLower(network) {
	case NetworkMainnet, NetworkBitcoin, "":
		return &chaincfg.MainNetParams, nil
	case NetworkTestnet:
		return &chaincfg.TestNet3Params, nil
	case NetworkRegtest:
		return &chaincfg.RegressionNetParams, nil
	}

	return nil, ErrUnknownNetwork
}
