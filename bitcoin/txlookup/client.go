// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

// Package txlookup resolves transactions spent by PSBT inputs through bitcoind JSON-RPC.
package txlookup

import (
	"context"
	"os"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/Helios9284/BTCStampsExplorer/bitcoin/txbuilder"
)

// Config defines bitcoind connection parameters.
type Config struct {
	Host     string `long:"host" description:"bitcoind RPC host:port"`
	User     string `long:"user" description:"bitcoind RPC user"`
	Pass     string `long:"pass" description:"bitcoind RPC password"`
	CertPath string `long:"cert" description:"bitcoind RPC TLS certificate, plain HTTP when empty"`
}

// Client implements txbuilder.TransactionLookup over bitcoind getrawtransaction.
type Client struct {
	rpc    *rpcclient.Client
	logger zerolog.Logger
}

var _ txbuilder.TransactionLookup = (*Client)(nil)

// New creates bitcoind client in HTTP POST mode, no connection is made until the first request.
func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	connCfg := &rpcclient.ConnConfig{
		Host:         cfg.Host,
		User:         cfg.User,
		Pass:         cfg.Pass,
		HTTPPostMode: true,
		DisableTLS:   cfg.CertPath == "",
	}
	if cfg.CertPath != "" {
		certs, err := os.ReadFile(cfg.CertPath)
		if err != nil {
			return nil, errors.Wrapf(err, "error reading bitcoind cert %s", cfg.CertPath)
		}

		connCfg.Certificates = certs
	}

	rpc, err := rpcclient.New(connCfg, nil)
	if err != nil {
		return nil, errors.Wrap(err, "error creating bitcoind client")
	}

	return &Client{rpc: rpc, logger: logger}, nil
}

// GetTransaction returns raw transaction and its outputs scripts.
func (c *Client) GetTransaction(ctx context.Context, txID string) (*txbuilder.PrevTransaction, error) {
	hash, err := chainhash.NewHashFromStr(txID)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid transaction id %q", txID)
	}

	type response struct {
		result *btcjson.TxRawResult
		err    error
	}

	future := c.rpc.GetRawTransactionVerboseAsync(hash)
	done := make(chan response, 1)
	go func() {
		result, err := future.Receive()
		done <- response{result, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case resp := <-done:
		if resp.err != nil {
			return nil, errors.Wrapf(resp.err, "getrawtransaction %s", txID)
		}

		c.logger.Debug().Str("txid", txID).Int("outputs", len(resp.result.Vout)).Msg("transaction fetched")

		return toPrevTransaction(resp.result)
	}
}

// Close shuts the client down.
func (c *Client) Close() {
	c.rpc.Shutdown()
}

func toPrevTransaction(raw *btcjson.TxRawResult) (*txbuilder.PrevTransaction, error) {
	prevTx := &txbuilder.PrevTransaction{
		Hex:  raw.Hex,
		Vout: make([]txbuilder.PrevOutput, len(raw.Vout)),
	}

	for _, vout := range raw.Vout {
		if int(vout.N) >= len(prevTx.Vout) {
			return nil, errors.Errorf("output index %d is out of range", vout.N)
		}

		amount, err := btcutil.NewAmount(vout.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "output %d value", vout.N)
		}

		prevTx.Vout[vout.N] = txbuilder.PrevOutput{
			ScriptType: vout.ScriptPubKey.Type,
			ScriptHex:  vout.ScriptPubKey.Hex,
			Value:      int64(amount),
		}
	}

	return prevTx, nil
}
