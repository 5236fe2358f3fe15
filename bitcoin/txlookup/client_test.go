// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txlookup_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Helios9284/BTCStampsExplorer/bitcoin/txbuilder"
	"github.com/Helios9284/BTCStampsExplorer/bitcoin/txlookup"
	"github.com/Helios9284/BTCStampsExplorer/internal/log"
)

const testTxID = "5aa4e4e957b467d07413aa75cdab5e4ce9ff2b714cd81b6af0e90bfee5ff070c"

type rpcRequest struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
	ID     json.RawMessage   `json:"id"`
}

func newServer(t *testing.T, handle func(req rpcRequest) (any, any)) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var req rpcRequest
		require.NoError(t, json.Unmarshal(body, &req))

		result, rpcErr := handle(req)
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"result": result,
			"error":  rpcErr,
			"id":     req.ID,
		}))
	}))
	t.Cleanup(server.Close)

	return server
}

func newClient(t *testing.T, server *httptest.Server) *txlookup.Client {
	client, err := txlookup.New(txlookup.Config{
		Host: strings.TrimPrefix(server.URL, "http://"),
		User: "user",
		Pass: "pass",
	}, log.Nop())
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return client
}

func TestClient_GetTransaction(t *testing.T) {
	server := newServer(t, func(req rpcRequest) (any, any) {
		require.Equal(t, "getrawtransaction", req.Method)
		require.JSONEq(t, `"`+testTxID+`"`, string(req.Params[0]))

		return map[string]any{
			"hex":  "0200000001",
			"txid": testTxID,
			"vout": []map[string]any{
				{"value": 0.0005, "n": 0, "scriptPubKey": map[string]any{"hex": "0014aa", "type": "witness_v0_keyhash"}},
				{"value": 1.25, "n": 1, "scriptPubKey": map[string]any{"hex": "76a9bb88ac", "type": "pubkeyhash"}},
			},
		}, nil
	})

	prevTx, err := newClient(t, server).GetTransaction(context.Background(), testTxID)
	require.NoError(t, err)
	require.Equal(t, &txbuilder.PrevTransaction{
		Hex: "0200000001",
		Vout: []txbuilder.PrevOutput{
			{ScriptType: "witness_v0_keyhash", ScriptHex: "0014aa", Value: 50000},
			{ScriptType: "pubkeyhash", ScriptHex: "76a9bb88ac", Value: 125000000},
		},
	}, prevTx)
}

func TestClient_GetTransactionErrors(t *testing.T) {
	t.Run("rpc error", func(t *testing.T) {
		server := newServer(t, func(rpcRequest) (any, any) {
			return nil, map[string]any{"code": -5, "message": "No such mempool or blockchain transaction"}
		})

		_, err := newClient(t, server).GetTransaction(context.Background(), testTxID)
		require.ErrorContains(t, err, "No such mempool or blockchain transaction")
	})

	t.Run("invalid txid", func(t *testing.T) {
		server := newServer(t, func(rpcRequest) (any, any) {
			t.Fatal("unexpected request")
			return nil, nil
		})

		_, err := newClient(t, server).GetTransaction(context.Background(), "xyz")
		require.Error(t, err)
	})

	t.Run("output index out of range", func(t *testing.T) {
		server := newServer(t, func(rpcRequest) (any, any) {
			return map[string]any{
				"hex":  "00",
				"vout": []map[string]any{{"value": 0.1, "n": 3, "scriptPubKey": map[string]any{"hex": "00", "type": "nonstandard"}}},
			}, nil
		})

		_, err := newClient(t, server).GetTransaction(context.Background(), testTxID)
		require.ErrorContains(t, err, "out of range")
	})

	t.Run("context canceled", func(t *testing.T) {
		release := make(chan struct{})
		server := newServer(t, func(rpcRequest) (any, any) {
			<-release
			return nil, nil
		})
		t.Cleanup(func() { close(release) })

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newClient(t, server).GetTransaction(ctx, testTxID)
		require.ErrorIs(t, err, context.Canceled)
	})
}
