// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

// Package log provides structured logging for the stamps explorer services.
package log

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is the global logger instance.
var Logger zerolog.Logger

// Component loggers.
var (
	API      zerolog.Logger
	Minting  zerolog.Logger
	Database zerolog.Logger
	Cache    zerolog.Logger
	TxLookup zerolog.Logger
	XCP      zerolog.Logger
)

// consoleTimeFormat defines timestamp layout of the console writer.
const consoleTimeFormat = "15:04:05"

func init() {
	Logger = NewConsoleLogger(os.Stdout, "info")
	initComponentLoggers()
}

// Init replaces global and component loggers.
// When file is set, records are duplicated into it as JSON.
func Init(level string, jsonOutput bool, file string) error {
	var w io.Writer = os.Stdout
	if !jsonOutput {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: consoleTimeFormat}
	}

	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}

		w = zerolog.MultiLevelWriter(w, f)
	}

	Logger = newLogger(w, level)
	initComponentLoggers()

	return nil
}

// NewConsoleLogger creates human readable logger.
func NewConsoleLogger(w io.Writer, level string) zerolog.Logger {
	return newLogger(zerolog.ConsoleWriter{Out: w, TimeFormat: consoleTimeFormat}, level)
}

// NewJSONLogger creates structured JSON logger.
func NewJSONLogger(w io.Writer, level string) zerolog.Logger {
	return newLogger(w, level)
}

// Nop returns disabled logger, used by tests and optional dependencies.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

func newLogger(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Logger()
}

// ParseLevel converts level name to zerolog.Level, unknown names fall back to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

func initComponentLoggers() {
	API = WithComponent("api")
	Minting = WithComponent("minting")
	Database = WithComponent("database")
	Cache = WithComponent("cache")
	TxLookup = WithComponent("txlookup")
	XCP = WithComponent("xcp")
}

// WithComponent returns a logger with a component field.
func WithComponent(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}
