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

package database

import (
	"context"
	"errors"
)

// ErrStorageUnavailable marks any failure to read or write the play time
// store. Callers match it with errors.Is; the underlying driver error is
// wrapped alongside it.
var ErrStorageUnavailable = errors.New("storage unavailable")

// GameSession is one completed, accepted play session. Rows are written
// once and only removed by DeleteGameData.
type GameSession struct {
	Date            string `json:"date"`
	ID              int64  `json:"id"`
	GameID          int64  `json:"gameId"`
	StartTime       int64  `json:"startTime"`
	EndTime         int64  `json:"endTime"`
	DurationMinutes int    `json:"duration"`
}

// DailyStat is the minutes attributed to one local calendar date.
type DailyStat struct {
	Date     string `json:"date"`
	Playtime int    `json:"playtime"`
}

// GameStatistics is the per-game aggregate row. DailyStats is kept sorted
// newest first.
type GameStatistics struct {
	LastPlayed       *int64      `json:"lastPlayed"`
	DailyStats       []DailyStat `json:"dailyStats"`
	GameID           int64       `json:"gameId"`
	TotalTimeMinutes int         `json:"totalTime"`
	SessionCount     int         `json:"sessionCount"`
}

// PlaytimeDBI is the session store contract shared by the SQLite and
// bbolt backends.
type PlaytimeDBI interface {
	// AddSession inserts a completed session and returns its new ID.
	AddSession(ctx context.Context, session *GameSession) (int64, error)
	// GetSessions returns a page of sessions, most recent start first.
	GetSessions(ctx context.Context, gameID int64, limit, offset int) ([]GameSession, error)
	// GetAllSessions returns every session for a game, oldest first.
	GetAllSessions(ctx context.Context, gameID int64) ([]GameSession, error)
	// GetStatistics returns nil without error when the game has no row.
	GetStatistics(ctx context.Context, gameID int64) (*GameStatistics, error)
	// UpsertStatistics replaces the whole aggregate row in one write.
	UpsertStatistics(ctx context.Context, stats *GameStatistics) error
	// EnsureStatistics creates a zeroed row if none exists.
	EnsureStatistics(ctx context.Context, gameID int64) error
	ListGameIDs(ctx context.Context) ([]int64, error)
	// DeleteGameData removes every session and the aggregate row of a game.
	DeleteGameData(ctx context.Context, gameID int64) error
	Close() error
}
