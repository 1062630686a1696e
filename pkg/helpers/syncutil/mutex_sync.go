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

//go:build !deadlock

// Package syncutil provides the locks used by the tracker, stores and API.
// Build with -tags=deadlock to swap in go-deadlock's detector.
package syncutil

import "sync"

// DeadlockEnabled reports whether the deadlock detector is compiled in.
const DeadlockEnabled = false

// Mutex is a plain sync.Mutex in normal builds.
//
//nolint:gocritic // wrapper type
type Mutex struct {
	sync.Mutex //nolint:forbidigo // this package wraps sync.Mutex
}

// RWMutex is a plain sync.RWMutex in normal builds.
//
//nolint:gocritic // wrapper type
type RWMutex struct {
	sync.RWMutex //nolint:forbidigo // this package wraps sync.RWMutex
}
