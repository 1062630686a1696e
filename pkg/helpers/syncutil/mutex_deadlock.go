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

//go:build deadlock

// Package syncutil provides the locks used by the tracker, stores and API.
// Build with -tags=deadlock to swap in go-deadlock's detector.
package syncutil

import (
	"time"

	deadlock "github.com/sasha-s/go-deadlock"
)

// DeadlockEnabled reports whether the deadlock detector is compiled in.
const DeadlockEnabled = true

func init() {
	// Heartbeat writes hold the tracker lock across a store round trip, so
	// leave generous room before flagging.
	deadlock.Opts.DeadlockTimeout = 30 * time.Second
}

// Mutex reports lock-order problems when built with the deadlock tag.
type Mutex struct {
	deadlock.Mutex
}

// RWMutex reports lock-order problems when built with the deadlock tag.
type RWMutex struct {
	deadlock.RWMutex
}
