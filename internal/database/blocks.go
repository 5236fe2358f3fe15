// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package database

import (
	"context"

	"github.com/pkg/errors"
)

// relatedBlocksRange defines how many blocks around requested one are related.
const relatedBlocksRange = 2

// DefaultLastBlocks defines default amount of blocks in the latest blocks listing.
const DefaultLastBlocks = 10

// GetBlockInfo returns block row.
func (d *DB) GetBlockInfo(ctx context.Context, id BlockID) (Row, error) {
	query, arg := `SELECT * FROM `+blockTable+` WHERE block_index = ?;`, any(id.index)
	if hash, ok := id.Hash(); ok {
		query, arg = `SELECT * FROM `+blockTable+` WHERE block_hash = ?;`, hash
	}

	result, err := d.Query(ctx, query, []any{arg}, CacheForever)
	if err != nil {
		return nil, errors.Wrapf(err, "block %s", id)
	}

	return result.First()
}

// GetLastBlock returns height of the latest indexed block.
func (d *DB) GetLastBlock(ctx context.Context) (int64, error) {
	result, err := d.Query(ctx, `SELECT MAX(block_index) AS last_block FROM `+blockTable+`;`, nil, NoCache)
	if err != nil {
		return 0, errors.Wrap(err, "last block")
	}

	row, err := result.First()
	if err != nil {
		return 0, err
	}
	if row.IsNull("last_block") {
		return 0, ErrNotFound
	}

	return row.Int64("last_block")
}

// GetLastBlocks returns latest blocks in ascending order with amount of stamps in each.
func (d *DB) GetLastBlocks(ctx context.Context, limit int) ([]Row, error) {
	if limit <= 0 {
		limit = DefaultLastBlocks
	}

	result, err := d.Query(ctx, `SELECT * FROM `+blockTable+` ORDER BY block_index DESC LIMIT ?;`, []any{limit}, NoCache)
	if err != nil {
		return nil, errors.Wrap(err, "last blocks")
	}

	blocks := make([]Row, 0, len(result.Rows))
	for i := len(result.Rows) - 1; i >= 0; i-- {
		block := result.Rows[i]
		blockIndex, err := block.Int64("block_index")
		if err != nil {
			return nil, err
		}

		block["tx_count"], err = d.count(ctx, `SELECT COUNT(*) AS count FROM `+stampTable+` WHERE block_index = ?;`, blockIndex)
		if err != nil {
			return nil, err
		}

		blocks = append(blocks, block)
	}

	return blocks, nil
}

// GetRelatedBlocks returns blocks within two blocks around requested one in ascending order,
// each with amount of issuances and sends.
func (d *DB) GetRelatedBlocks(ctx context.Context, id BlockID) ([]Row, error) {
	index, ok := id.Index()
	if !ok {
		var err error
		if index, err = d.blockIndexByHash(ctx, id); err != nil {
			return nil, err
		}
	}

	result, err := d.Query(ctx, `SELECT * FROM `+blockTable+` WHERE block_index >= ? AND block_index <= ? ORDER BY block_index DESC;`,
		[]any{index - relatedBlocksRange, index + relatedBlocksRange}, NoCache)
	if err != nil {
		return nil, errors.Wrapf(err, "related blocks %s", id)
	}

	blocks := make([]Row, 0, len(result.Rows))
	for i := len(result.Rows) - 1; i >= 0; i-- {
		block := result.Rows[i]
		blockIndex, err := block.Int64("block_index")
		if err != nil {
			return nil, err
		}

		block["issuances"], err = d.count(ctx, `SELECT COUNT(*) AS count FROM `+stampTable+` WHERE block_index = ?;`, blockIndex)
		if err != nil {
			return nil, err
		}

		block["sends"], err = d.count(ctx, `SELECT COUNT(*) AS count FROM `+sendTable+` WHERE block_index = ?;`, blockIndex)
		if err != nil {
			return nil, err
		}

		blocks = append(blocks, block)
	}

	return blocks, nil
}

// GetIssuancesByBlock returns stamp issuances of the block with their stamp numbers.
func (d *DB) GetIssuancesByBlock(ctx context.Context, id BlockID) ([]Row, error) {
	column, arg := "st.block_index", any(id.index)
	if hash, ok := id.Hash(); ok {
		column, arg = "st.block_hash", hash
	}

	result, err := d.Query(ctx, `
		SELECT st.*, num.stamp AS stamp, num.is_btc_stamp AS is_btc_stamp
		FROM `+stampTable+` st
		LEFT JOIN (
			SELECT cpid, stamp, is_btc_stamp
			FROM `+stampTable+`
			WHERE stamp IS NOT NULL
			AND is_btc_stamp IS NOT NULL
		) num ON st.cpid = num.cpid
		WHERE `+column+` = ?
		ORDER BY st.tx_index;`, []any{arg}, CacheForever)
	if err != nil {
		return nil, errors.Wrapf(err, "issuances of block %s", id)
	}

	return result.Rows, nil
}

// GetSendsByBlock returns stamp sends of the block joined with the original issuance.
func (d *DB) GetSendsByBlock(ctx context.Context, id BlockID) ([]Row, error) {
	index, ok := id.Index()
	if !ok {
		var err error
		if index, err = d.blockIndexByHash(ctx, id); err != nil {
			return nil, err
		}
	}

	result, err := d.Query(ctx, `
		SELECT s.*, st.*
		FROM `+sendTable+` s
		JOIN `+stampTable+` st ON s.cpid = st.cpid
		WHERE s.block_index = ?
			AND st.is_valid_base64 = true
			AND st.block_index = (SELECT MIN(block_index)
				FROM `+stampTable+`
				WHERE cpid = s.cpid
				AND is_valid_base64 = 1)
		ORDER BY s.tx_index;`, []any{index}, CacheForever)
	if err != nil {
		return nil, errors.Wrapf(err, "sends of block %s", id)
	}

	return result.Rows, nil
}

func (d *DB) blockIndexByHash(ctx context.Context, id BlockID) (int64, error) {
	hash, _ := id.Hash()

	result, err := d.Query(ctx, `SELECT block_index FROM `+blockTable+` WHERE block_hash = ?;`, []any{hash}, CacheForever)
	if err != nil {
		return 0, errors.Wrapf(err, "block index of %s", hash)
	}

	row, err := result.First()
	if err != nil {
		return 0, err
	}

	return row.Int64("block_index")
}

// count executes COUNT(*) AS count query of confirmed data.
func (d *DB) count(ctx context.Context, query string, args ...any) (int64, error) {
	result, err := d.Query(ctx, query, args, CacheForever)
	if err != nil {
		return 0, errors.Wrap(err, "count")
	}

	row, err := result.First()
	if err != nil {
		return 0, nil
	}

	return row.Int64("count")
}
