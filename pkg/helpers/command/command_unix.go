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

//go:build !windows

package command

import (
	"os/exec"
	"syscall"
)

// Games get their own process group so a signal aimed at the daemon
// does not take the game down with it.
func applyStartOptions(cmd *exec.Cmd, _ StartOptions) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
