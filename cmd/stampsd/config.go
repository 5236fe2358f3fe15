// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package main

import (
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"

	"github.com/Helios9284/BTCStampsExplorer/bitcoin"
	"github.com/Helios9284/BTCStampsExplorer/bitcoin/src20"
	"github.com/Helios9284/BTCStampsExplorer/bitcoin/txlookup"
	"github.com/Helios9284/BTCStampsExplorer/internal/api"
	"github.com/Helios9284/BTCStampsExplorer/internal/database"
	"github.com/Helios9284/BTCStampsExplorer/internal/xcp"
)

const defaultConfigFile = "stampsd.conf"

// errHelpRequested defines that usage was printed and process should exit.
var errHelpRequested = errors.New("help requested")

// config stores settings of the stamps explorer daemon.
type config struct {
	ConfigFile string `short:"C" long:"configfile" description:"Path to config file"`

	LogLevel string `long:"loglevel" default:"info" description:"Logging level {trace, debug, info, warn, error}"`
	LogJSON  bool   `long:"logjson" description:"Write logs as JSON"`
	LogFile  string `long:"logfile" description:"Duplicate logs into the file"`

	CacheDir  string `long:"cachedir" description:"Query cache directory, in memory when empty"`
	Scrambler string `long:"scrambler" default:"xor" choice:"xor" choice:"arc4" description:"Data outputs payload scrambling"`

	API      api.Config      `group:"HTTP API" namespace:"api"`
	Database database.Config `group:"Stamps index" namespace:"db"`
	XCP      xcp.Config      `group:"Counterparty" namespace:"xcp"`

	Mainnet txlookup.Config `group:"Mainnet bitcoind" namespace:"mainnet"`
	Testnet txlookup.Config `group:"Testnet bitcoind" namespace:"testnet"`
	Regtest txlookup.Config `group:"Regtest bitcoind" namespace:"regtest"`
}

// networks returns bitcoind settings by network name for the configured nodes.
func (cfg *config) networks() map[string]txlookup.Config {
	networks := make(map[string]txlookup.Config, 3)
	for network, node := range map[string]txlookup.Config{
		bitcoin.NetworkMainnet: cfg.Mainnet,
		bitcoin.NetworkTestnet: cfg.Testnet,
		bitcoin.NetworkRegtest: cfg.Regtest,
	} {
		if node.Host != "" {
			networks[network] = node
		}
	}

	return networks
}

// scrambler returns data outputs scrambling function.
func (cfg *config) scrambler() src20.Scrambler {
	if cfg.Scrambler == "arc4" {
		return src20.ScrambleARC4
	}

	return src20.Scramble
}

func (cfg *config) validate() error {
	if cfg.Database.DSN == "" {
		return errors.New("db.dsn is required")
	}
	if len(cfg.networks()) == 0 {
		return errors.New("at least one bitcoind host is required")
	}

	return nil
}

// loadConfig reads command line, then config file, then command line again
// so flags override file values.
func loadConfig(args []string) (*config, error) {
	preCfg := &config{ConfigFile: defaultConfigFile}
	preParser := flags.NewParser(preCfg, flags.Default)
	if _, err := preParser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, errHelpRequested
		}

		return nil, errors.Wrap(err, "parse arguments")
	}

	cfg := &config{ConfigFile: preCfg.ConfigFile}
	parser := flags.NewParser(cfg, flags.Default)
	if _, err := os.Stat(preCfg.ConfigFile); err == nil {
		if err = flags.NewIniParser(parser).ParseFile(preCfg.ConfigFile); err != nil {
			return nil, errors.Wrapf(err, "parse config file %s", preCfg.ConfigFile)
		}
	} else if preCfg.ConfigFile != defaultConfigFile {
		return nil, errors.Wrapf(err, "config file %s", preCfg.ConfigFile)
	}

	if _, err := parser.ParseArgs(args); err != nil {
		return nil, errors.Wrap(err, "parse arguments")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
