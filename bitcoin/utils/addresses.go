// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package utils

import (
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
)

// mainnetScriptHashPrefix defines leading character of base58 P2SH addresses on mainnet.
const mainnetScriptHashPrefix = "3"

// IsWrappedSegwitAddress reports whether address is treated as P2SH-P2WPKH.
// NOTE: Decision is made by mainnet P2SH prefix only, any P2SH address is assumed
// to wrap P2WPKH of the sender public key. Testnet P2SH ("2...") addresses are not matched.
func IsWrappedSegwitAddress(address string) bool {
	return strings.HasPrefix(address, mainnetScriptHashPrefix)
}

// PayToAddressScript decodes address for the network and returns its locking script.
func PayToAddressScript(address string, chainParams *chaincfg.Params) ([]byte, error) {
	decoded, err := btcutil.DecodeAddress(address, chainParams)
	if err != nil {
		return nil, err
	}
	if !decoded.IsForNet(chainParams) {
		return nil, btcutil.ErrUnknownAddressType
	}

	return txscript.PayToAddrScript(decoded)
}

// NewWitnessPubKeyHashAddress returns P2WPKH address of the compressed public key.
func NewWitnessPubKeyHashAddress(publicKey *btcec.PublicKey, chainParams *chaincfg.Params) (*btcutil.AddressWitnessPubKeyHash, error) {
	return btcutil.NewAddressWitnessPubKeyHash(btcutil.Hash160(publicKey.SerializeCompressed()), chainParams)
}

// NewNestedWitnessPubKeyHashAddress returns P2SH-P2WPKH address of the compressed public key.
func NewNestedWitnessPubKeyHashAddress(publicKey *btcec.PublicKey, chainParams *chaincfg.Params) (*btcutil.AddressScriptHash, error) {
	redeemScript, err := NewWitnessPubKeyHashScript(publicKey.SerializeCompressed())
	if err != nil {
		return nil, err
	}

	return btcutil.NewAddressScriptHash(redeemScript, chainParams)
}
