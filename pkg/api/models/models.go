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

package models

import (
	"encoding/json"

	"github.com/google/uuid"
)

const (
	NotificationSessionStarted    = "playtime.session.started"
	NotificationSessionUpdated    = "playtime.session.updated"
	NotificationSessionEnded      = "playtime.session.ended"
	NotificationStatisticsUpdated = "playtime.statistics.updated"
	NotificationCleared           = "playtime.cleared"
)

const (
	MethodLaunch             = "launch"
	MethodPlaytimeRunning    = "playtime.running"
	MethodPlaytimeClear      = "playtime.clear"
	MethodPlaytimeStatistics = "playtime.statistics"
	MethodPlaytimeSessions   = "playtime.sessions"
	MethodPlaytimeStats      = "playtime.stats"
	MethodPlaytimeSummary    = "playtime.summary"
	MethodPlaytimeRefresh    = "playtime.refresh"
	MethodPlaytimeExport     = "playtime.export"
	MethodEventsStarted      = "events.sessionstarted"
	MethodEventsTimeUpdate   = "events.timeupdate"
	MethodEventsEnded        = "events.sessionended"
	MethodSettings           = "settings"
	MethodSettingsUpdate     = "settings.update"
	MethodVersion            = "version"
)

type Notification struct {
	Method string
	Params json.RawMessage
}

type RequestObject struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *uuid.UUID      `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type ErrorObject struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type ResponseObject struct {
	JSONRPC string       `json:"jsonrpc"`
	ID      uuid.UUID    `json:"id"`
	Result  any          `json:"result"`
	Error   *ErrorObject `json:"error,omitempty"`
}

// ResponseErrorObject exists for sending errors, so we can omit result from
// the response, but so nil responses are still returned when using the main
// ResponseObject.
type ResponseErrorObject struct {
	JSONRPC string       `json:"jsonrpc"`
	ID      uuid.UUID    `json:"id"`
	Error   *ErrorObject `json:"error"`
}
