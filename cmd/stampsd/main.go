// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

// Command stampsd serves the stamps explorer API and prepares SRC-20 transactions.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	"github.com/Helios9284/BTCStampsExplorer/bitcoin"
	"github.com/Helios9284/BTCStampsExplorer/bitcoin/txbuilder"
	"github.com/Helios9284/BTCStampsExplorer/bitcoin/txlookup"
	"github.com/Helios9284/BTCStampsExplorer/internal/api"
	"github.com/Helios9284/BTCStampsExplorer/internal/cache"
	"github.com/Helios9284/BTCStampsExplorer/internal/database"
	"github.com/Helios9284/BTCStampsExplorer/internal/log"
	"github.com/Helios9284/BTCStampsExplorer/internal/minting"
	"github.com/Helios9284/BTCStampsExplorer/internal/xcp"
)

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, errHelpRequested) {
			return
		}

		log.Logger.Fatal().Err(err).Msg("invalid configuration")
	}

	if err = log.Init(cfg.LogLevel, cfg.LogJSON, cfg.LogFile); err != nil {
		log.Logger.Fatal().Err(err).Msg("could not initialize logging")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = run(ctx, cfg); err != nil {
		log.Logger.Fatal().Err(err).Msg("stampsd stopped")
	}
}

func run(ctx context.Context, cfg *config) error {
	store, err := cache.NewBadger(cfg.CacheDir)
	if err != nil {
		return errors.Wrap(err, "open cache")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Cache.Error().Err(err).Msg("close cache")
		}
	}()

	db, err := database.Open(ctx, cfg.Database, store, log.Database)
	if err != nil {
		return errors.Wrap(err, "open stamps index")
	}
	defer func() { _ = db.Close() }()

	var builders []*txbuilder.TxBuilder
	for network, node := range cfg.networks() {
		params, err := bitcoin.NetworkParams(network)
		if err != nil {
			return err
		}

		lookup, err := txlookup.New(node, log.TxLookup.With().Str("network", network).Logger())
		if err != nil {
			return errors.Wrapf(err, "%s bitcoind", network)
		}
		defer lookup.Close()

		builders = append(builders, txbuilder.NewTxBuilder(params, lookup, txbuilder.WithScrambler(cfg.scrambler())))
		log.Logger.Info().Str("network", network).Str("host", node.Host).Msg("network enabled")
	}

	minter := minting.New(db, log.Minting, builders...)
	server := api.New(cfg.API, minter, db, xcp.New(cfg.XCP, log.XCP), log.API)
	if err = server.Start(); err != nil {
		return err
	}
	log.Logger.Info().Str("addr", server.Addr()).Msg("stampsd started")

	<-ctx.Done()
	log.Logger.Info().Msg("shutting down")

	return server.Stop()
}
