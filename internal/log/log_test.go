// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package log_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Helios9284/BTCStampsExplorer/internal/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"unknown", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, test := range tests {
		require.Equal(t, test.expected, log.ParseLevel(test.level), test.level)
	}
}

func TestJSONLogger(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	logger := log.NewJSONLogger(buf, "warn")

	logger.Info().Msg("skipped")
	require.Zero(t, buf.Len())

	logger.Warn().Str("tick", "KEVIN").Msg("minted out")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	require.Equal(t, "warn", record["level"])
	require.Equal(t, "KEVIN", record["tick"])
	require.Equal(t, "minted out", record["message"])
	require.Contains(t, record, "time")
}

func TestWithComponent(t *testing.T) {
	log.Logger = log.NewJSONLogger(bytes.NewBuffer(nil), "info")

	buf := bytes.NewBuffer(nil)
	logger := log.WithComponent("api").Output(buf)
	logger.Info().Msg("request")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	require.Equal(t, "api", record["component"])
}
