// Reina Core
// Copyright (c) 2026 The Reina Core Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Reina Core.
//
// Reina Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Reina Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Reina Core.  If not, see <http://www.gnu.org/licenses/>.

package api

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/ReinaManager/reina-core/pkg/api/methods"
	"github.com/ReinaManager/reina-core/pkg/api/models"
	"github.com/ReinaManager/reina-core/pkg/api/models/requests"
	"github.com/ReinaManager/reina-core/pkg/api/validation"
	"github.com/ReinaManager/reina-core/pkg/config"
	"github.com/ReinaManager/reina-core/pkg/database"
	"github.com/ReinaManager/reina-core/pkg/service/playtime"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	JSONRPCErrorParseError = models.ErrorObject{
		Code:    -32700,
		Message: "Parse error",
	}
	JSONRPCErrorInvalidRequest = models.ErrorObject{
		Code:    -32600,
		Message: "Invalid Request",
	}
	JSONRPCErrorMethodNotFound = models.ErrorObject{
		Code:    -32601,
		Message: "Method not found",
	}
	JSONRPCErrorInvalidParams = models.ErrorObject{
		Code:    -32602,
		Message: "Invalid params",
	}
	JSONRPCErrorInternalError = models.ErrorObject{
		Code:    -32603,
		Message: "Internal error",
	}
	JSONRPCErrorServerError = models.ErrorObject{
		Code:    -32000,
		Message: "Server error",
	}
)

type handlerFunc func(requests.RequestEnv) (any, error)

// methodMap is keyed by lower case method name; lookups lower the
// incoming name so events.sessionStarted and friends match.
var methodMap = map[string]handlerFunc{
	models.MethodLaunch: methods.HandleLaunch,
	// playtime
	models.MethodPlaytimeRunning:    methods.HandlePlaytimeRunning,
	models.MethodPlaytimeClear:      methods.HandlePlaytimeClear,
	models.MethodPlaytimeStatistics: methods.HandlePlaytimeStatistics,
	models.MethodPlaytimeSessions:   methods.HandlePlaytimeSessions,
	models.MethodPlaytimeStats:      methods.HandlePlaytimeStats,
	models.MethodPlaytimeSummary:    methods.HandlePlaytimeSummary,
	models.MethodPlaytimeRefresh:    methods.HandlePlaytimeRefresh,
	models.MethodPlaytimeExport:     methods.HandlePlaytimeExport,
	// events
	models.MethodEventsStarted:    methods.HandleEventSessionStarted,
	models.MethodEventsTimeUpdate: methods.HandleEventTimeUpdate,
	models.MethodEventsEnded:      methods.HandleEventSessionEnded,
	// settings
	models.MethodSettings:       methods.HandleSettings,
	models.MethodSettingsUpdate: methods.HandleSettingsUpdate,
	// utils
	models.MethodVersion: methods.HandleVersion,
}

// errorObject maps a handler error to a JSON-RPC error.
func errorObject(err error) models.ErrorObject {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		obj := JSONRPCErrorInvalidParams
		obj.Data = verr
		return obj
	case errors.Is(err, validation.ErrMissingParams), errors.Is(err, validation.ErrInvalidParams):
		obj := JSONRPCErrorInvalidParams
		obj.Data = err.Error()
		return obj
	case errors.Is(err, database.ErrStorageUnavailable):
		obj := JSONRPCErrorInternalError
		obj.Data = err.Error()
		return obj
	case errors.Is(err, context.DeadlineExceeded):
		obj := JSONRPCErrorServerError
		obj.Message = "request timed out"
		return obj
	default:
		obj := JSONRPCErrorServerError
		obj.Message = err.Error()
		return obj
	}
}

func marshalResult(id uuid.UUID, result any) []byte {
	data, err := json.Marshal(models.ResponseObject{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	})
	if err != nil {
		log.Error().Err(err).Msg("api: error marshalling response")
		return marshalError(id, JSONRPCErrorInternalError)
	}
	return data
}

//nolint:gocritic // error object copied into response
func marshalError(id uuid.UUID, obj models.ErrorObject) []byte {
	log.Debug().Int("code", obj.Code).Str("message", obj.Message).Msg("api: sending error")
	data, err := json.Marshal(models.ResponseErrorObject{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &obj,
	})
	if err != nil {
		log.Error().Err(err).Msg("api: error marshalling error response")
		return nil
	}
	return data
}

type rpcContext struct {
	cfg        *config.Instance
	tracker    *playtime.Tracker
	query      *playtime.Query
	remoteAddr string
	isLocal    bool
}

// processMessage handles one JSON-RPC message and returns the encoded
// reply, or nil when nothing should be sent back (notifications and
// client responses).
//
//nolint:gocritic // rpc context is small and read only
func processMessage(ctx context.Context, rc rpcContext, msg []byte) []byte {
	if !json.Valid(msg) {
		log.Warn().Str("addr", rc.remoteAddr).Msg("api: message is not valid json")
		return marshalError(uuid.Nil, JSONRPCErrorParseError)
	}

	var req models.RequestObject
	if err := json.Unmarshal(msg, &req); err != nil {
		log.Warn().Err(err).Msg("api: message does not match known types")
		return marshalError(uuid.Nil, JSONRPCErrorInvalidRequest)
	}

	id := uuid.Nil
	if req.ID != nil {
		id = *req.ID
	}

	if req.JSONRPC != "2.0" {
		log.Warn().Str("jsonrpc", req.JSONRPC).Msg("api: unsupported payload version")
		return marshalError(id, JSONRPCErrorInvalidRequest)
	}

	if req.Method == "" {
		// a response to one of our notifications, nothing to do
		log.Debug().Str("id", id.String()).Msg("api: received response")
		return nil
	}

	if req.ID == nil {
		log.Debug().Str("method", req.Method).Msg("api: received notification, ignoring")
		return nil
	}

	fn, ok := methodMap[strings.ToLower(req.Method)]
	if !ok {
		log.Warn().Str("method", req.Method).Msg("api: unknown method")
		return marshalError(id, JSONRPCErrorMethodNotFound)
	}

	reqCtx, cancel := context.WithTimeout(ctx, config.APIRequestTimeout)
	defer cancel()

	log.Debug().Str("method", req.Method).Str("id", id.String()).Msg("api: handling request")
	result, err := fn(requests.RequestEnv{
		Ctx:     reqCtx,
		Config:  rc.cfg,
		Tracker: rc.tracker,
		Query:   rc.query,
		Params:  req.Params,
		ID:      id,
		IsLocal: rc.isLocal,
	})
	if err != nil {
		log.Warn().Err(err).Str("method", req.Method).Msg("api: request failed")
		return marshalError(id, errorObject(err))
	}

	if _, ok := result.(methods.NoContent); ok {
		result = nil
	}
	return marshalResult(id, result)
}
