// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

// Package xcp queries Counterparty node over JSON-RPC 2.0.
package xcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// defaultTimeout defines http timeout of a single call.
const defaultTimeout = 10 * time.Second

// Config defines Counterparty node connection parameters.
type Config struct {
	URL     string        `long:"url" default:"http://127.0.0.1:4000/api/" description:"Counterparty JSON-RPC endpoint"`
	User    string        `long:"user" default:"rpc" description:"Counterparty RPC user"`
	Pass    string        `long:"pass" default:"rpc" description:"Counterparty RPC password"`
	Timeout time.Duration `long:"timeout" default:"10s" description:"request timeout"`
}

// Balance describes asset balance of an address.
type Balance struct {
	Address  string `json:"address"`
	CPID     string `json:"asset"`
	Quantity int64  `json:"quantity"`
}

// Client is a Counterparty JSON-RPC 2.0 client.
type Client struct {
	cfg    Config
	http   *http.Client
	nextID atomic.Int64
	logger zerolog.Logger
}

// New is a constructor for Client.
func New(cfg Config, logger zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
	ID      int64  `json:"id"`
}

type response struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  *RPCError       `json:"error,omitempty"`
}

// RPCError is returned when the node responds with an error.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements error interface.
func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type filter struct {
	Field string `json:"field"`
	Op    string `json:"op"`
	Value any    `json:"value"`
}

// GetBalances returns positive asset balances of the address.
func (c *Client) GetBalances(ctx context.Context, address string) ([]Balance, error) {
	params := map[string]any{
		"filters": []filter{
			{Field: "address", Op: "==", Value: address},
			{Field: "quantity", Op: ">", Value: 0},
		},
		"filterop": "AND",
	}

	var balances []Balance
	if err := c.Call(ctx, "get_balances", params, &balances); err != nil {
		return nil, errors.Wrapf(err, "balances of %s", address)
	}

	return balances, nil
}

// Call invokes method and decodes result into the provided pointer, nil result is discarded.
func (c *Client) Call(ctx context.Context, method string, params, result any) error {
	body, err := json.Marshal(request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.nextID.Add(1),
	})
	if err != nil {
		return errors.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "new request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.User != "" {
		req.SetBasicAuth(c.cfg.User, c.cfg.Pass)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "http request")
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read response")
	}

	var rpcResp response
	if err = json.Unmarshal(data, &rpcResp); err != nil {
		return errors.Wrapf(err, "decode response, status %d", resp.StatusCode)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}

	c.logger.Debug().Str("method", method).Int("bytes", len(data)).Msg("rpc call")

	if result != nil && rpcResp.Result != nil {
		if err = json.Unmarshal(rpcResp.Result, result); err != nil {
			return errors.Wrap(err, "decode result")
		}
	}

	return nil
}
