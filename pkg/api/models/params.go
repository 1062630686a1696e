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

type LaunchParams struct {
	Path   string   `json:"path" validate:"required,path"`
	Args   []string `json:"args"`
	GameID int64    `json:"gameId" validate:"gt=0"`
}

type RunningParams struct {
	GameID *int64 `json:"gameId" validate:"omitempty,gt=0"`
}

type GameParams struct {
	GameID int64 `json:"gameId" validate:"gt=0"`
}

type SessionsParams struct {
	Limit  *int  `json:"limit" validate:"omitempty,gte=0,lte=100"`
	Offset *int  `json:"offset" validate:"omitempty,gte=0"`
	GameID int64 `json:"gameId" validate:"gt=0"`
}

type StatsParams struct {
	GameID  int64 `json:"gameId" validate:"gt=0"`
	Refresh bool  `json:"refresh"`
}

type SessionStartedParams struct {
	ProcessID *int  `json:"processId"`
	GameID    int64 `json:"gameId" validate:"gt=0"`
	StartTime int64 `json:"startTime" validate:"gte=0"`
}

type TimeUpdateParams struct {
	ProcessID      *int  `json:"processId"`
	GameID         int64 `json:"gameId" validate:"gt=0"`
	ElapsedSeconds int64 `json:"elapsedSeconds" validate:"gte=0"`
}

type SessionEndedParams struct {
	ProcessID      *int  `json:"processId"`
	GameID         int64 `json:"gameId" validate:"gt=0"`
	ElapsedSeconds int64 `json:"elapsedSeconds" validate:"gte=0"`
	StartTime      int64 `json:"startTime" validate:"gte=0"`
	EndTime        int64 `json:"endTime" validate:"gt=0"`
}

type SettingsUpdateParams struct {
	DebugLogging   *bool   `json:"debugLogging"`
	ErrorReporting *bool   `json:"errorReporting"`
	Heartbeat      *string `json:"heartbeat" validate:"omitempty,duration"`
	Timezone       *string `json:"timezone" validate:"omitempty,timezone"`
}
