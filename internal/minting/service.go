// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

// Package minting prepares unsigned SRC-20 stamp transactions.
package minting

import (
	"context"
	"fmt"
	"math/big"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Helios9284/BTCStampsExplorer/bitcoin"
	"github.com/Helios9284/BTCStampsExplorer/bitcoin/src20"
	"github.com/Helios9284/BTCStampsExplorer/bitcoin/txbuilder"
	"github.com/Helios9284/BTCStampsExplorer/internal/database"
)

var (
	// ErrInvalidAmount defines that token amount is not a positive decimal number.
	ErrInvalidAmount = fmt.Errorf("%w: invalid amount", bitcoin.ErrValidation)
	// ErrMintedOut defines that requested amount would exceed max supply of the token.
	ErrMintedOut = errors.New("minted out")
	// ErrTickNotFound defines that token was never deployed.
	ErrTickNotFound = errors.New("tick not found")
	// ErrInvalidTick defines that tick is missing.
	ErrInvalidTick = fmt.Errorf("%w: invalid tick", bitcoin.ErrValidation)
	// ErrNetworkNotServed defines that service has no transaction builder for the network.
	ErrNetworkNotServed = fmt.Errorf("%w: network is not served", bitcoin.ErrValidation)
)

// MintProgressLookup provides minting state of SRC-20 tokens.
type MintProgressLookup interface {
	GetSRC20MintProgress(ctx context.Context, tick string) (*database.MintProgress, error)
}

// SendParams describes request to build transaction carrying raw SRC-20 transfer string.
type SendParams struct {
	Network        string
	UTXOs          []bitcoin.UTXO
	ChangeAddress  string
	ToAddress      string
	FeeRate        int64 // satoshi per virtual byte.
	TransferString string
	Action         string // informational, e.g. "mint" or "transfer".
	PublicKey      string // hex compressed public key of the sender.
	AnnotateInputs bool   // adds input indexes by script type to PSBT unknowns.
}

// MintParams describes SRC-20 MINT request.
type MintParams struct {
	Network        string
	UTXOs          []bitcoin.UTXO
	ChangeAddress  string
	ToAddress      string
	FeeRate        int64
	PublicKey      string
	AnnotateInputs bool
	Tick           string
	Amount         string
}

// TransferParams describes SRC-20 TRANSFER request.
type TransferParams struct {
	Network        string
	UTXOs          []bitcoin.UTXO
	ChangeAddress  string
	ToAddress      string
	FeeRate        int64
	PublicKey      string
	AnnotateInputs bool
	Tick           string
	Amount         string
}

// Service builds SRC-20 transactions for the supported networks.
type Service struct {
	db       MintProgressLookup
	builders map[string]*txbuilder.TxBuilder // by chaincfg network name.
	logger   zerolog.Logger
}

// New is a constructor for Service.
func New(db MintProgressLookup, logger zerolog.Logger, builders ...*txbuilder.TxBuilder) *Service {
	s := &Service{
		db:       db,
		builders: make(map[string]*txbuilder.TxBuilder, len(builders)),
		logger:   logger,
	}
	for _, builder := range builders {
		s.builders[builder.NetworkParams().Name] = builder
	}

	return s
}

// PrepareSendSRC20 builds unsigned transaction embedding transfer string and returns it as hex encoded PSBT.
func (s *Service) PrepareSendSRC20(ctx context.Context, params SendParams) (string, error) {
	builder, err := s.builder(params.Network)
	if err != nil {
		return "", err
	}

	transfer, err := builder.BuildSRC20TransferPSBT(ctx, txbuilder.SRC20TransferParams{
		UTXOs:            params.UTXOs,
		Payload:          []byte(params.TransferString),
		SatoshiPerVByte:  big.NewInt(params.FeeRate),
		RecipientAddress: params.ToAddress,
		ChangeAddress:    params.ChangeAddress,
		SenderPubKey:     params.PublicKey,
		AnnotateInputs:   params.AnnotateInputs,
	})
	if err != nil {
		return "", errors.Wrapf(err, "build %s transaction", params.Action)
	}

	s.logger.Info().
		Str("action", params.Action).
		Str("network", params.Network).
		Str("to", params.ToAddress).
		Int("inputs", len(transfer.Inputs)).
		Str("fee", transfer.Fee.String()).
		Str("change", transfer.Change.String()).
		Msg("src20 transaction prepared")

	return transfer.Hex, nil
}

// MintSRC20 checks minting state of the tick and builds MINT transaction.
// Amount is embedded as given, amount above the per mint limit is replaced by the limit.
func (s *Service) MintSRC20(ctx context.Context, params MintParams) (string, error) {
	amount, err := parseAmount(params.Amount)
	if err != nil {
		return "", err
	}
	if params.Tick == "" {
		return "", ErrInvalidTick
	}

	progress, err := s.db.GetSRC20MintProgress(ctx, params.Tick)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return "", errors.Wrap(ErrTickNotFound, params.Tick)
		}

		return "", errors.Wrapf(err, "mint progress of %s", params.Tick)
	}

	// compared before the amount is lowered to the limit.
	if progress.MintedOut(amount) {
		return "", errors.Wrapf(ErrMintedOut, "%s: %s of %s minted", params.Tick, progress.TotalMinted, progress.MaxSupply)
	}
	amt := params.Amount
	if amount.GreaterThan(progress.Limit) {
		s.logger.Debug().Str("tick", params.Tick).Str("requested", params.Amount).
			Str("limit", progress.Limit.String()).Msg("mint amount lowered to limit")
		amt = progress.Limit.String()
	}

	payload, err := src20.NewMintOperation(progress.Tick, amt).Marshal()
	if err != nil {
		return "", err
	}

	return s.PrepareSendSRC20(ctx, SendParams{
		Network:        params.Network,
		UTXOs:          params.UTXOs,
		ChangeAddress:  params.ChangeAddress,
		ToAddress:      params.ToAddress,
		FeeRate:        params.FeeRate,
		TransferString: string(payload),
		Action:         "mint",
		PublicKey:      params.PublicKey,
		AnnotateInputs: params.AnnotateInputs,
	})
}

// TransferSRC20 builds TRANSFER transaction of the tick amount to the recipient.
func (s *Service) TransferSRC20(ctx context.Context, params TransferParams) (string, error) {
	if _, err := parseAmount(params.Amount); err != nil {
		return "", err
	}
	if params.Tick == "" {
		return "", ErrInvalidTick
	}

	payload, err := src20.NewTransferOperation(params.Tick, params.Amount).Marshal()
	if err != nil {
		return "", err
	}

	return s.PrepareSendSRC20(ctx, SendParams{
		Network:        params.Network,
		UTXOs:          params.UTXOs,
		ChangeAddress:  params.ChangeAddress,
		ToAddress:      params.ToAddress,
		FeeRate:        params.FeeRate,
		TransferString: string(payload),
		Action:         "transfer",
		PublicKey:      params.PublicKey,
		AnnotateInputs: params.AnnotateInputs,
	})
}

func (s *Service) builder(network string) (*txbuilder.TxBuilder, error) {
	networkParams, err := bitcoin.NetworkParams(network)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %q", bitcoin.ErrValidation, err, network)
	}

	builder, ok := s.builders[networkParams.Name]
	if !ok {
		return nil, errors.Wrap(ErrNetworkNotServed, network)
	}

	return builder, nil
}

func parseAmount(amount string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, errors.Wrap(ErrInvalidAmount, amount)
	}
	if !d.IsPositive() {
		return decimal.Zero, errors.Wrap(ErrInvalidAmount, amount)
	}

	return d, nil
}
