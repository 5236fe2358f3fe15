// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"errors"
)

// ErrUnknownInputsHelpingKey defines that inputs help keys is unknown.
var ErrUnknownInputsHelpingKey = errors.New("unknown inputs help keys")

// InputsHelpingKey defines type for additional data in PSBT Unknowns field
// to tell the signing wallet how each input is spent.
type InputsHelpingKey byte

const (
	// WitnessInputsHelpingKey defines key for inputs spending native segwit outputs.
	WitnessInputsHelpingKey InputsHelpingKey = 0x10
	// NestedWitnessInputsHelpingKey defines key for inputs carrying P2WPKH redeem script.
	NestedWitnessInputsHelpingKey InputsHelpingKey = 0x11
	// LegacyInputsHelpingKey defines key for inputs spending legacy outputs.
	LegacyInputsHelpingKey InputsHelpingKey = 0x20
)

// inputsHelpingKeys lists known keys in annotation order.
var inputsHelpingKeys = []InputsHelpingKey{WitnessInputsHelpingKey, NestedWitnessInputsHelpingKey, LegacyInputsHelpingKey}

// InputsHelpingKeyFromBytes parses bytes array into InputsHelpingKey if any.
func InputsHelpingKeyFromBytes(b []byte) (InputsHelpingKey, error) {
	if len(b) != 1 {
		return 0, ErrUnknownInputsHelpingKey
	}

	for _, key := range inputsHelpingKeys {
		if key.Byte() == b[0] {
			return key, nil
		}
	}

	return 0, ErrUnknownInputsHelpingKey
}

// Byte returns InputsHelpingKey as byte.
func (k InputsHelpingKey) Byte() byte {
	return byte(k)
}

// Bytes returns InputsHelpingKey as bytes array.
func (k InputsHelpingKey) Bytes() []byte {
	return []byte{byte(k)}
}

// String implements fmt.Stringer.
func (k InputsHelpingKey) String() string {
	switch k {
	case WitnessInputsHelpingKey:
		return "witness"
	case NestedWitnessInputsHelpingKey:
		return "nested-witness"
	case LegacyInputsHelpingKey:
		return "legacy"
	default:
		return "unknown"
	}
}
