// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"bytes"
	"errors"
	"math"

	"github.com/btcsuite/btcd/btcutil/psbt"
)

// ExtractInputIndexesFromPSBT returns map with input spend types and indexes to sign.
func ExtractInputIndexesFromPSBT(data []byte) (map[InputsHelpingKey][]int, error) {
	var result = make(map[InputsHelpingKey][]int, len(inputsHelpingKeys))
	p, err := psbt.NewFromRawBytes(bytes.NewBuffer(data), false)
	if err != nil {
		return nil, err
	}

	for _, unknown := range p.Unknowns {
		key, err := InputsHelpingKeyFromBytes(unknown.Key)
		if err != nil {
			return nil, err
		}

		result[key] = make([]int, len(unknown.Value))
		for idx, val := range unknown.Value {
			result[key][idx] = int(val)
		}
	}

	return result, nil
}

// annotateInputs writes input indexes grouped by helping key into PSBT global unknowns.
func annotateInputs(p *psbt.Packet, indexes map[InputsHelpingKey][]int) error {
	for _, key := range inputsHelpingKeys {
		if len(indexes[key]) == 0 {
			continue
		}

		value := make([]byte, len(indexes[key]))
		for i, idx := range indexes[key] {
			if idx > math.MaxUint8 {
				return errors.New("input index does not fit into annotation")
			}

			value[i] = byte(idx)
		}

		p.Unknowns = append(p.Unknowns, &psbt.Unknown{Key: key.Bytes(), Value: value})
	}

	return nil
}
