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

package playtime

// Event is one of SessionStarted, TimeUpdate or SessionEnded.
type Event interface {
	Game() int64
	Kind() string
	event()
}

// SessionStarted reports that a game process is running.
type SessionStarted struct {
	ProcessID *int  `json:"processId,omitempty"`
	GameID    int64 `json:"gameId"`
	StartTime int64 `json:"startTime"`
}

// TimeUpdate carries the elapsed seconds of a running session.
type TimeUpdate struct {
	ProcessID      *int  `json:"processId,omitempty"`
	GameID         int64 `json:"gameId"`
	ElapsedSeconds int64 `json:"elapsedSeconds"`
}

// SessionEnded reports that a game process exited.
type SessionEnded struct {
	ProcessID      *int  `json:"processId,omitempty"`
	GameID         int64 `json:"gameId"`
	ElapsedSeconds int64 `json:"elapsedSeconds"`
	StartTime      int64 `json:"startTime"`
	EndTime        int64 `json:"endTime"`
}

func (e SessionStarted) Game() int64 { return e.GameID }
func (e TimeUpdate) Game() int64     { return e.GameID }
func (e SessionEnded) Game() int64   { return e.GameID }

func (SessionStarted) Kind() string { return "session-started" }
func (TimeUpdate) Kind() string     { return "time-update" }
func (SessionEnded) Kind() string   { return "session-ended" }

func (SessionStarted) event() {}
func (TimeUpdate) event()     {}
func (SessionEnded) event()   {}
