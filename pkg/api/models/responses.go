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

type LaunchResponse struct {
	ProcessID *int   `json:"processId,omitempty"`
	Message   string `json:"message"`
	Success   bool   `json:"success"`
}

type RunningGame struct {
	ProcessID             *int  `json:"processId,omitempty"`
	GameID                int64 `json:"gameId"`
	StartTime             int64 `json:"startTime"`
	CurrentSessionSeconds int64 `json:"currentSessionSeconds"`
}

type RunningResponse struct {
	Games   []RunningGame `json:"games"`
	Running bool          `json:"running"`
}

type SummaryResponse struct {
	Total        string `json:"total"`
	Week         string `json:"week"`
	Today        string `json:"today"`
	TotalMinutes int    `json:"totalMinutes"`
	WeekMinutes  int    `json:"weekMinutes"`
	TodayMinutes int    `json:"todayMinutes"`
}

type ExportResponse struct {
	CSV string `json:"csv"`
}

type VersionResponse struct {
	Version string `json:"version"`
}

// Notification payloads.

type SessionStartedNotification struct {
	ProcessID *int  `json:"processId,omitempty"`
	GameID    int64 `json:"gameId"`
	StartTime int64 `json:"startTime"`
}

type SessionUpdatedNotification struct {
	ProcessID      *int  `json:"processId,omitempty"`
	GameID         int64 `json:"gameId"`
	ElapsedSeconds int64 `json:"elapsedSeconds"`
}

type SessionEndedNotification struct {
	GameID          int64 `json:"gameId"`
	DurationMinutes int   `json:"durationMinutes"`
	Discarded       bool  `json:"discarded"`
}

type StatisticsUpdatedNotification struct {
	LastPlayed       *int64 `json:"lastPlayed"`
	GameID           int64  `json:"gameId"`
	TotalTimeMinutes int    `json:"totalTime"`
	SessionCount     int    `json:"sessionCount"`
	TodayMinutes     int    `json:"todayMinutes"`
}

type SettingsResponse struct {
	Heartbeat       string `json:"heartbeat"`
	UpdateInterval  string `json:"updateInterval"`
	Timezone        string `json:"timezone"`
	DatabaseBackend string `json:"databaseBackend"`
	DebugLogging    bool   `json:"debugLogging"`
	ErrorReporting  bool   `json:"errorReporting"`
}
