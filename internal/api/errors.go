// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package api

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/Helios9284/BTCStampsExplorer/bitcoin"
	"github.com/Helios9284/BTCStampsExplorer/internal/database"
	"github.com/Helios9284/BTCStampsExplorer/internal/minting"
)

// Messages returned to the API users.
const (
	msgInternal      = "Internal server error"
	msgInvalidJSON   = "Invalid request body"
	msgInvalidID     = "Invalid argument provided. Must be an integer or 32 byte hex string."
	msgBlocksFailure = "Failed to retrieve blocks from the database."
	msgNotFound      = "Not found"
)

// statusOf returns HTTP status of the error, http.StatusInternalServerError if error
// details must not be exposed.
func statusOf(err error) int {
	switch {
	case errors.Is(err, database.ErrNotFound), errors.Is(err, minting.ErrTickNotFound):
		return http.StatusNotFound
	case errors.Is(err, bitcoin.ErrInsufficientNativeBalance), errors.Is(err, minting.ErrMintedOut):
		return http.StatusUnprocessableEntity
	case errors.Is(err, bitcoin.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeFailure answers with the error message for client errors, anything else is
// logged and reported as internal error.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, status, msgInternal)
		return
	}
	if status == http.StatusNotFound && errors.Is(err, database.ErrNotFound) {
		writeError(w, status, msgNotFound)
		return
	}

	s.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("request rejected")
	writeError(w, status, err.Error())
}
