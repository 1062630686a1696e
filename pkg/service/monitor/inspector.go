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

package monitor

import (
	"slices"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/process"
)

// Inspector answers questions about live processes.
type Inspector interface {
	IsRunning(pid int) bool
	// Children lists processes whose parent is pid, even if pid has exited.
	Children(pid int) []int
}

// SystemInspector queries the OS through gopsutil.
type SystemInspector struct{}

func (SystemInspector) IsRunning(pid int) bool {
	p, err := process.NewProcess(int32(pid)) //nolint:gosec // pids fit in int32
	if err != nil {
		return false
	}
	running, err := p.IsRunning()
	if err != nil || !running {
		return false
	}
	status, err := p.Status()
	if err == nil && slices.Contains(status, process.Zombie) {
		return false
	}
	return true
}

func (SystemInspector) Children(pid int) []int {
	procs, err := process.Processes()
	if err != nil {
		log.Debug().Err(err).Msg("monitor: failed to list processes")
		return nil
	}
	var children []int
	for _, p := range procs {
		ppid, err := p.Ppid()
		if err != nil || int(ppid) != pid {
			continue
		}
		children = append(children, int(p.Pid))
	}
	return children
}
