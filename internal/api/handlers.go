// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package api

import (
	"encoding/json"
	"io"
	"math/big"
	"net/http"

	"github.com/pkg/errors"

	"github.com/Helios9284/BTCStampsExplorer/bitcoin"
	"github.com/Helios9284/BTCStampsExplorer/internal/database"
	"github.com/Helios9284/BTCStampsExplorer/internal/minting"
)

// UTXO describes spendable output in the request body.
type UTXO struct {
	TxID    string `json:"txid"`
	Vout    uint32 `json:"vout"`
	Value   int64  `json:"value"` // in Satoshi.
	Address string `json:"address,omitempty"`
}

// funding describes request fields common to all SRC-20 transactions.
type funding struct {
	Network       string `json:"network"`
	UTXOs         []UTXO `json:"utxos"`
	ChangeAddress string `json:"changeAddress"`
	ToAddress     string `json:"toAddress"`
	FeeRate       int64  `json:"feeRate"`
	PublicKey     string `json:"publicKey"`
	// AnnotateInputs asks to list input indexes by script type in the PSBT.
	AnnotateInputs bool `json:"annotateInputs"`
}

// SendRequest describes body of src20/send request.
type SendRequest struct {
	funding
	TransferString string `json:"transferString"`
	Action         string `json:"action"`
}

// TokenRequest describes body of src20/mint and src20/transfer requests.
type TokenRequest struct {
	funding
	Tick   string `json:"tick"`
	Amount string `json:"amount"`
}

// TxResponse holds hex encoded unsigned PSBT.
type TxResponse struct {
	Hex string `json:"hex"`
}

// BlockResponse describes block with stamps issued and sent in it.
type BlockResponse struct {
	BlockInfo database.Row   `json:"block_info"`
	Issuances []database.Row `json:"issuances"`
	Sends     []database.Row `json:"sends"`
}

// StampResponse describes stamp with its sends history.
type StampResponse struct {
	Stamp database.Row   `json:"stamp"`
	Sends []database.Row `json:"sends"`
}

func (f funding) utxos() []bitcoin.UTXO {
	utxos := make([]bitcoin.UTXO, 0, len(f.UTXOs))
	for _, u := range f.UTXOs {
		utxos = append(utxos, bitcoin.UTXO{
			TxHash:  u.TxID,
			Index:   u.Vout,
			Amount:  big.NewInt(u.Value),
			Address: u.Address,
		})
	}

	return utxos
}

func decodeBody(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		return err
	}
	if len(body) > maxBodySize {
		return errors.New("request body too large")
	}

	return json.Unmarshal(body, v)
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	hex, err := s.minter.PrepareSendSRC20(r.Context(), minting.SendParams{
		Network:        req.Network,
		UTXOs:          req.utxos(),
		ChangeAddress:  req.ChangeAddress,
		ToAddress:      req.ToAddress,
		FeeRate:        req.FeeRate,
		TransferString: req.TransferString,
		Action:         req.Action,
		PublicKey:      req.PublicKey,
		AnnotateInputs: req.AnnotateInputs,
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, TxResponse{Hex: hex})
}

func (s *Server) handleMint(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	hex, err := s.minter.MintSRC20(r.Context(), minting.MintParams{
		Network:        req.Network,
		UTXOs:          req.utxos(),
		ChangeAddress:  req.ChangeAddress,
		ToAddress:      req.ToAddress,
		FeeRate:        req.FeeRate,
		PublicKey:      req.PublicKey,
		AnnotateInputs: req.AnnotateInputs,
		Tick:           req.Tick,
		Amount:         req.Amount,
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, TxResponse{Hex: hex})
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	hex, err := s.minter.TransferSRC20(r.Context(), minting.TransferParams{
		Network:        req.Network,
		UTXOs:          req.utxos(),
		ChangeAddress:  req.ChangeAddress,
		ToAddress:      req.ToAddress,
		FeeRate:        req.FeeRate,
		PublicKey:      req.PublicKey,
		AnnotateInputs: req.AnnotateInputs,
		Tick:           req.Tick,
		Amount:         req.Amount,
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, TxResponse{Hex: hex})
}

func (s *Server) handleRelatedBlocks(w http.ResponseWriter, r *http.Request) {
	id, err := database.ParseBlockID(r.PathValue("block_index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidID)
		return
	}

	blocks, err := s.store.GetRelatedBlocks(r.Context(), id)
	if err != nil {
		s.logger.Error().Err(err).Stringer("block", id).Msg("Failed to get related blocks")
		writeError(w, http.StatusInternalServerError, msgBlocksFailure)
		return
	}

	writeJSON(w, http.StatusOK, blocks)
}

func (s *Server) handleBlock(w http.ResponseWriter, r *http.Request) {
	id, err := database.ParseBlockID(r.PathValue("block_index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidID)
		return
	}

	ctx := r.Context()
	resp := BlockResponse{}
	if resp.BlockInfo, err = s.store.GetBlockInfo(ctx, id); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if resp.Issuances, err = s.store.GetIssuancesByBlock(ctx, id); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if resp.Sends, err = s.store.GetSendsByBlock(ctx, id); err != nil {
		s.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStamp(w http.ResponseWriter, r *http.Request) {
	id, err := database.ParseStampID(r.PathValue("id"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	stamp, err := s.store.GetStamp(r.Context(), id)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	sends, err := s.store.GetSendsForCPID(r.Context(), stamp.String("cpid"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, StampResponse{Stamp: stamp, Sends: sends})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	balances, err := s.store.GetStampBalancesByAddress(r.Context(), s.balances, r.PathValue("address"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, balances)
}
