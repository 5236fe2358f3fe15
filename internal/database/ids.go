// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package database

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/Helios9284/BTCStampsExplorer/bitcoin"
)

// blockHashHexLen defines length of hex encoded 32 bytes block hash.
const blockHashHexLen = 64

// ErrInvalidBlockID defines that block identifier is neither height nor hash.
var ErrInvalidBlockID = fmt.Errorf("%w: Invalid argument provided. Must be an integer or 32 byte hex string.", bitcoin.ErrValidation)

// BlockID identifies block either by index (height) or by hash.
type BlockID struct {
	index  int64
	hash   string
	byHash bool
}

// BlockIndex returns BlockID of block at the height.
func BlockIndex(index int64) BlockID {
	return BlockID{index: index}
}

// BlockHash returns BlockID of block with the hash.
func BlockHash(hash string) BlockID {
	return BlockID{hash: strings.ToLower(hash), byHash: true}
}

// ParseBlockID accepts decimal integer or 32 bytes hex string.
func ParseBlockID(s string) (BlockID, error) {
	if index, err := strconv.ParseInt(s, 10, 64); err == nil {
		return BlockIndex(index), nil
	}

	if len(s) == blockHashHexLen {
		if _, err := hex.DecodeString(s); err == nil {
			return BlockHash(s), nil
		}
	}

	return BlockID{}, ErrInvalidBlockID
}

// Index returns block height and true if BlockID is height.
func (id BlockID) Index() (int64, bool) {
	return id.index, !id.byHash
}

// Hash returns block hash and true if BlockID is hash.
func (id BlockID) Hash() (string, bool) {
	return id.hash, id.byHash
}

// String implements fmt.Stringer.
func (id BlockID) String() string {
	if id.byHash {
		return id.hash
	}

	return strconv.FormatInt(id.index, 10)
}

// StampID identifies stamp either by stamp number or by identifier (cpid, tx hash or stamp hash).
type StampID struct {
	number     int64
	identifier string
	byNumber   bool
}

// StampNumber returns StampID of the stamp number, cursed stamps are negative.
func StampNumber(number int64) StampID {
	return StampID{number: number, byNumber: true}
}

// StampIdentifier returns StampID of cpid, tx hash or stamp hash.
func StampIdentifier(identifier string) StampID {
	return StampID{identifier: identifier}
}

// ParseStampID treats integers as stamp numbers, anything else as identifier.
func ParseStampID(s string) (StampID, error) {
	if s == "" {
		return StampID{}, fmt.Errorf("%w: empty stamp identifier", bitcoin.ErrValidation)
	}

	if number, err := strconv.ParseInt(s, 10, 64); err == nil {
		return StampNumber(number), nil
	}

	return StampIdentifier(s), nil
}

// Number returns stamp number and true if StampID is number.
func (id StampID) Number() (int64, bool) {
	return id.number, id.byNumber
}

// Identifier returns identifier and true if StampID is identifier.
func (id StampID) Identifier() (string, bool) {
	return id.identifier, !id.byNumber
}

// String implements fmt.Stringer.
func (id StampID) String() string {
	if id.byNumber {
		return strconv.FormatInt(id.number, 10)
	}

	return id.identifier
}
