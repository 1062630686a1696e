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

// Package command provides an abstraction over exec.Command for testability.
package command

import (
	"os/exec"
)

// StartOptions configures how a detached process is started.
type StartOptions struct {
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// HideWindow prevents a console window from appearing (Windows-only).
	HideWindow bool
}

// Process is a started child process.
type Process interface {
	Pid() int
	// Wait blocks until the process exits and releases its resources.
	Wait() error
}

// Executor starts external programs. Game launches go through it so the
// monitor can be tested without spawning anything.
type Executor interface {
	Start(opts StartOptions, name string, args ...string) (Process, error)
}

// RealExecutor uses exec.Command. Processes are not bound to a context
// because a launched game must outlive the request that started it.
type RealExecutor struct{}

type execProcess struct {
	cmd *exec.Cmd
}

func (p *execProcess) Pid() int {
	return p.cmd.Process.Pid
}

//nolint:wrapcheck // exit errors are inspected by callers
func (p *execProcess) Wait() error {
	return p.cmd.Wait()
}

//nolint:wrapcheck // Wrapping exec errors loses important context
func (*RealExecutor) Start(opts StartOptions, name string, args ...string) (Process, error) {
	cmd := exec.Command(name, args...) //nolint:gosec // launching user-selected games is the point
	cmd.Dir = opts.Dir
	applyStartOptions(cmd, opts)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &execProcess{cmd: cmd}, nil
}
