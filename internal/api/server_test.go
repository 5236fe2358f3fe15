// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/Helios9284/BTCStampsExplorer/bitcoin"
	"github.com/Helios9284/BTCStampsExplorer/bitcoin/txbuilder"
	"github.com/Helios9284/BTCStampsExplorer/internal/api"
	"github.com/Helios9284/BTCStampsExplorer/internal/database"
	"github.com/Helios9284/BTCStampsExplorer/internal/log"
	"github.com/Helios9284/BTCStampsExplorer/internal/minting"
)

type minterMock struct {
	send     minting.SendParams
	mint     minting.MintParams
	transfer minting.TransferParams
	err      error
}

func (m *minterMock) PrepareSendSRC20(_ context.Context, params minting.SendParams) (string, error) {
	m.send = params
	return "70736274ff", m.err
}

func (m *minterMock) MintSRC20(_ context.Context, params minting.MintParams) (string, error) {
	m.mint = params
	return "70736274ff", m.err
}

func (m *minterMock) TransferSRC20(_ context.Context, params minting.TransferParams) (string, error) {
	m.transfer = params
	return "70736274ff", m.err
}

type storeMock struct {
	relatedID database.BlockID
	stampID   database.StampID
	err       error
}

func (m *storeMock) GetBlockInfo(_ context.Context, id database.BlockID) (database.Row, error) {
	return database.Row{"block_index": json.Number(id.String())}, m.err
}

func (m *storeMock) GetRelatedBlocks(_ context.Context, id database.BlockID) ([]database.Row, error) {
	m.relatedID = id
	if m.err != nil {
		return nil, m.err
	}

	return []database.Row{{"block_index": json.Number("779650")}, {"block_index": json.Number("779651")}}, nil
}

func (m *storeMock) GetIssuancesByBlock(context.Context, database.BlockID) ([]database.Row, error) {
	return []database.Row{{"stamp": json.Number("1")}}, nil
}

func (m *storeMock) GetSendsByBlock(context.Context, database.BlockID) ([]database.Row, error) {
	return []database.Row{}, nil
}

func (m *storeMock) GetStamp(_ context.Context, id database.StampID) (database.Row, error) {
	m.stampID = id
	if m.err != nil {
		return nil, m.err
	}

	return database.Row{"stamp": json.Number("1"), "cpid": "A360128538192758000"}, nil
}

func (m *storeMock) GetSendsForCPID(_ context.Context, cpid string) ([]database.Row, error) {
	return []database.Row{{"cpid": cpid}}, nil
}

func (m *storeMock) GetStampBalancesByAddress(_ context.Context, _ database.BalanceLookup, address string) ([]database.Row, error) {
	if m.err != nil {
		return nil, m.err
	}

	return []database.Row{{"address": address, "balance": json.Number("1")}}, nil
}

func newTestServer(minter *minterMock, store *storeMock) *httptest.Server {
	s := api.New(api.Config{}, minter, store, nil, log.Nop())
	return httptest.NewServer(s.Handler())
}

func doRequest(t *testing.T, method, url, body string) (int, map[string]any) {
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var decoded any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	if obj, ok := decoded.(map[string]any); ok {
		return resp.StatusCode, obj
	}

	return resp.StatusCode, map[string]any{"list": decoded}
}

func TestSRC20Endpoints(t *testing.T) {
	t.Run("send", func(t *testing.T) {
		minter := &minterMock{}
		srv := newTestServer(minter, &storeMock{})
		defer srv.Close()

		status, body := doRequest(t, http.MethodPost, srv.URL+"/api/v2/src20/send", `{
			"network": "mainnet",
			"utxos": [{"txid": "aa", "vout": 1, "value": 5000}],
			"changeAddress": "bc1qchange",
			"toAddress": "bc1qto",
			"feeRate": 12,
			"transferString": "{\"op\":\"MINT\"}",
			"action": "mint",
			"publicKey": "02aa",
			"annotateInputs": true
		}`)
		require.Equal(t, http.StatusOK, status)
		require.Equal(t, "70736274ff", body["hex"])

		require.Equal(t, "mainnet", minter.send.Network)
		require.Equal(t, int64(12), minter.send.FeeRate)
		require.Equal(t, `{"op":"MINT"}`, minter.send.TransferString)
		require.Equal(t, "mint", minter.send.Action)
		require.True(t, minter.send.AnnotateInputs)
		require.Len(t, minter.send.UTXOs, 1)
		require.Equal(t, "aa", minter.send.UTXOs[0].TxHash)
		require.Equal(t, uint32(1), minter.send.UTXOs[0].Index)
		require.Equal(t, int64(5000), minter.send.UTXOs[0].Amount.Int64())
	})

	t.Run("mint and transfer", func(t *testing.T) {
		minter := &minterMock{}
		srv := newTestServer(minter, &storeMock{})
		defer srv.Close()

		body := `{"network":"testnet","tick":"KEVIN","amount":"1000","toAddress":"tb1qto"}`
		status, _ := doRequest(t, http.MethodPost, srv.URL+"/api/v2/src20/mint", body)
		require.Equal(t, http.StatusOK, status)
		require.Equal(t, "KEVIN", minter.mint.Tick)
		require.Equal(t, "1000", minter.mint.Amount)
		require.Equal(t, "testnet", minter.mint.Network)
		require.False(t, minter.mint.AnnotateInputs)

		status, _ = doRequest(t, http.MethodPost, srv.URL+"/api/v2/src20/transfer", body)
		require.Equal(t, http.StatusOK, status)
		require.Equal(t, "tb1qto", minter.transfer.ToAddress)

		body = `{"network":"testnet","tick":"KEVIN","amount":"1.50","annotateInputs":true}`
		status, _ = doRequest(t, http.MethodPost, srv.URL+"/api/v2/src20/transfer", body)
		require.Equal(t, http.StatusOK, status)
		require.True(t, minter.transfer.AnnotateInputs)
		require.Equal(t, "1.50", minter.transfer.Amount)
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			name    string
			err     error
			status  int
			message string
		}{
			{"invalid amount", errors.Wrap(minting.ErrInvalidAmount, "abc"), http.StatusBadRequest, "abc: validation failed: invalid amount"},
			{"minted out", errors.Wrap(minting.ErrMintedOut, "KEVIN"), http.StatusUnprocessableEntity, "KEVIN: minted out"},
			{"tick not found", errors.Wrap(minting.ErrTickNotFound, "NOPE"), http.StatusNotFound, "NOPE: tick not found"},
			{"invalid utxo amount", errors.Wrap(bitcoin.ErrInvalidUTXOAmount, "aa:1"), http.StatusBadRequest, "aa:1: validation failed: invalid utxo amount"},
			{"insufficient funds", txbuilder.NewInsufficientError(txbuilder.InsufficientErrorTypeBitcoin, nil, nil), http.StatusUnprocessableEntity, ""},
			{"lookup failure", errors.Wrap(txbuilder.ErrExternalLookup, "connection refused"), http.StatusInternalServerError, "Internal server error"},
			{"database failure", errors.New("dial tcp: i/o timeout"), http.StatusInternalServerError, "Internal server error"},
		}

		for _, test := range tests {
			t.Run(test.name, func(t *testing.T) {
				srv := newTestServer(&minterMock{err: test.err}, &storeMock{})
				defer srv.Close()

				status, body := doRequest(t, http.MethodPost, srv.URL+"/api/v2/src20/mint", `{}`)
				require.Equal(t, test.status, status)
				if test.message != "" {
					require.Equal(t, test.message, body["error"])
				}
			})
		}
	})

	t.Run("invalid body", func(t *testing.T) {
		srv := newTestServer(&minterMock{}, &storeMock{})
		defer srv.Close()

		status, body := doRequest(t, http.MethodPost, srv.URL+"/api/v2/src20/send", `{"utxos":`)
		require.Equal(t, http.StatusBadRequest, status)
		require.Equal(t, "Invalid request body", body["error"])
	})
}

func TestRelatedBlocks(t *testing.T) {
	const hash = "00000000000000000002a7c4c1e48d76c5a37902165a270156b7a8d72728a054"

	t.Run("by index and hash", func(t *testing.T) {
		store := &storeMock{}
		srv := newTestServer(&minterMock{}, store)
		defer srv.Close()

		status, body := doRequest(t, http.MethodGet, srv.URL+"/api/v2/block/related/779652", "")
		require.Equal(t, http.StatusOK, status)
		require.Len(t, body["list"], 2)
		require.Equal(t, database.BlockIndex(779652), store.relatedID)

		status, _ = doRequest(t, http.MethodGet, srv.URL+"/api/v2/block/related/"+hash, "")
		require.Equal(t, http.StatusOK, status)
		require.Equal(t, database.BlockHash(hash), store.relatedID)
	})

	t.Run("invalid argument", func(t *testing.T) {
		srv := newTestServer(&minterMock{}, &storeMock{})
		defer srv.Close()

		for _, arg := range []string{"abc", "12a", hash[:62], hash + "00"} {
			status, body := doRequest(t, http.MethodGet, srv.URL+"/api/v2/block/related/"+arg, "")
			require.Equal(t, http.StatusBadRequest, status, arg)
			require.Equal(t, "Invalid argument provided. Must be an integer or 32 byte hex string.", body["error"])
		}
	})

	t.Run("database failure", func(t *testing.T) {
		srv := newTestServer(&minterMock{}, &storeMock{err: errors.New("too many connections")})
		defer srv.Close()

		status, body := doRequest(t, http.MethodGet, srv.URL+"/api/v2/block/related/779652", "")
		require.Equal(t, http.StatusInternalServerError, status)
		require.Equal(t, "Failed to retrieve blocks from the database.", body["error"])
	})
}

func TestReadEndpoints(t *testing.T) {
	t.Run("block", func(t *testing.T) {
		srv := newTestServer(&minterMock{}, &storeMock{})
		defer srv.Close()

		status, body := doRequest(t, http.MethodGet, srv.URL+"/api/v2/block/779652", "")
		require.Equal(t, http.StatusOK, status)
		require.Equal(t, map[string]any{"block_index": 779652.0}, body["block_info"])
		require.Len(t, body["issuances"], 1)
		require.Empty(t, body["sends"])
	})

	t.Run("stamp", func(t *testing.T) {
		store := &storeMock{}
		srv := newTestServer(&minterMock{}, store)
		defer srv.Close()

		status, body := doRequest(t, http.MethodGet, srv.URL+"/api/v2/stamps/A360128538192758000", "")
		require.Equal(t, http.StatusOK, status)
		require.Equal(t, database.StampIdentifier("A360128538192758000"), store.stampID)
		require.Equal(t, []any{map[string]any{"cpid": "A360128538192758000"}}, body["sends"])

		_, _ = doRequest(t, http.MethodGet, srv.URL+"/api/v2/stamps/42", "")
		require.Equal(t, database.StampNumber(42), store.stampID)
	})

	t.Run("stamp not found", func(t *testing.T) {
		srv := newTestServer(&minterMock{}, &storeMock{err: database.ErrNotFound})
		defer srv.Close()

		status, body := doRequest(t, http.MethodGet, srv.URL+"/api/v2/stamps/42", "")
		require.Equal(t, http.StatusNotFound, status)
		require.Equal(t, "Not found", body["error"])
	})

	t.Run("balance", func(t *testing.T) {
		srv := newTestServer(&minterMock{}, &storeMock{})
		defer srv.Close()

		status, body := doRequest(t, http.MethodGet, srv.URL+"/api/v2/balance/bc1qholder", "")
		require.Equal(t, http.StatusOK, status)
		require.Equal(t, []any{map[string]any{"address": "bc1qholder", "balance": 1.0}}, body["list"])
	})

	t.Run("balance lookup failure", func(t *testing.T) {
		srv := newTestServer(&minterMock{}, &storeMock{err: errors.Wrap(bitcoin.ErrUnknownNetwork, "xcp")})
		defer srv.Close()

		status, body := doRequest(t, http.MethodGet, srv.URL+"/api/v2/balance/bc1qholder", "")
		require.Equal(t, http.StatusInternalServerError, status)
		require.Equal(t, "Internal server error", body["error"])
	})
}
