// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

// Package api implements the HTTP JSON API of the stamps explorer.
package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/Helios9284/BTCStampsExplorer/internal/database"
	"github.com/Helios9284/BTCStampsExplorer/internal/minting"
)

const (
	// maxBodySize is the maximum allowed request body size (1 MB).
	maxBodySize = 1 << 20
	// shutdownTimeout limits graceful shutdown of in flight requests.
	shutdownTimeout = 5 * time.Second
)

// Minter builds unsigned SRC-20 transactions.
type Minter interface {
	PrepareSendSRC20(ctx context.Context, params minting.SendParams) (string, error)
	MintSRC20(ctx context.Context, params minting.MintParams) (string, error)
	TransferSRC20(ctx context.Context, params minting.TransferParams) (string, error)
}

// Store provides indexed blocks and stamps.
type Store interface {
	GetBlockInfo(ctx context.Context, id database.BlockID) (database.Row, error)
	GetRelatedBlocks(ctx context.Context, id database.BlockID) ([]database.Row, error)
	GetIssuancesByBlock(ctx context.Context, id database.BlockID) ([]database.Row, error)
	GetSendsByBlock(ctx context.Context, id database.BlockID) ([]database.Row, error)
	GetStamp(ctx context.Context, id database.StampID) (database.Row, error)
	GetSendsForCPID(ctx context.Context, cpid string) ([]database.Row, error)
	GetStampBalancesByAddress(ctx context.Context, balances database.BalanceLookup, address string) ([]database.Row, error)
}

// Config describes HTTP server settings.
type Config struct {
	Listen       string        `long:"listen" description:"HTTP API listen address" default:"127.0.0.1:8000"`
	ReadTimeout  time.Duration `long:"readtimeout" description:"request read timeout" default:"30s"`
	WriteTimeout time.Duration `long:"writetimeout" description:"response write timeout" default:"1m"`
}

// Server is the HTTP JSON API server.
type Server struct {
	minter   Minter
	store    Store
	balances database.BalanceLookup
	server   *http.Server
	logger   zerolog.Logger
	ln       net.Listener
}

// New is a constructor for Server.
func New(cfg Config, minter Minter, store Store, balances database.BalanceLookup, logger zerolog.Logger) *Server {
	s := &Server{
		minter:   minter,
		store:    store,
		balances: balances,
		logger:   logger,
	}

	s.server = &http.Server{
		Addr:         cfg.Listen,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// Handler returns routed API handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v2/src20/mint", s.handleMint)
	mux.HandleFunc("POST /api/v2/src20/transfer", s.handleTransfer)
	mux.HandleFunc("POST /api/v2/src20/send", s.handleSend)
	mux.HandleFunc("GET /api/v2/block/related/{block_index}", s.handleRelatedBlocks)
	mux.HandleFunc("GET /api/v2/block/{block_index}", s.handleBlock)
	mux.HandleFunc("GET /api/v2/stamps/{id}", s.handleStamp)
	mux.HandleFunc("GET /api/v2/balance/{address}", s.handleBalance)

	return mux
}

// Start begins listening and serving in a background goroutine.
// It returns immediately after the listener is bound.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return errors.Wrap(err, "api listen")
	}
	s.ln = ln

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("API server error")
		}
	}()

	return nil
}

// Addr returns the listener address.
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}

	return s.server.Addr
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return s.server.Shutdown(ctx)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
