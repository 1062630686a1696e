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

// Package monitor is the default game launcher. It starts the executable
// and polls the process until it exits, reporting the session to the
// playtime tracker as events.
package monitor

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/ReinaManager/reina-core/pkg/helpers/command"
	"github.com/ReinaManager/reina-core/pkg/service/playtime"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const (
	DefaultPollInterval = time.Second
	// maxFailures consecutive failed checks mean the process has exited.
	maxFailures  = 2
	eventsBuffer = 64
)

type Options struct {
	Clock          clockwork.Clock
	Executor       command.Executor
	Inspector      Inspector
	PollInterval   time.Duration
	UpdateInterval time.Duration
}

// ProcessMonitor implements playtime.Launcher.
type ProcessMonitor struct {
	clock     clockwork.Clock
	executor  command.Executor
	inspector Inspector
	events    chan playtime.Event
	stop      chan struct{}
	poll      time.Duration
	update    time.Duration
	wg        sync.WaitGroup
	closeOnce sync.Once
}

var _ playtime.Launcher = (*ProcessMonitor)(nil)

func NewProcessMonitor(opts Options) *ProcessMonitor {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Executor == nil {
		opts.Executor = &command.RealExecutor{}
	}
	if opts.Inspector == nil {
		opts.Inspector = SystemInspector{}
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.UpdateInterval < opts.PollInterval {
		opts.UpdateInterval = opts.PollInterval
	}
	return &ProcessMonitor{
		clock:     opts.Clock,
		executor:  opts.Executor,
		inspector: opts.Inspector,
		poll:      opts.PollInterval,
		update:    opts.UpdateInterval,
		events:    make(chan playtime.Event, eventsBuffer),
		stop:      make(chan struct{}),
	}
}

// Events is the stream consumed by playtime.Tracker.Run.
func (m *ProcessMonitor) Events() <-chan playtime.Event {
	return m.events
}

// Launch starts the game with its own directory as working directory and
// begins watching it. The process outlives ctx.
func (m *ProcessMonitor) Launch(_ context.Context, path string, gameID int64, args []string) (int, error) {
	proc, err := m.executor.Start(command.StartOptions{Dir: filepath.Dir(path)}, path, args...)
	if err != nil {
		return 0, fmt.Errorf("start %s: %w", path, err)
	}
	pid := proc.Pid()

	// reap the child so it does not linger as a zombie
	go func() {
		if err := proc.Wait(); err != nil {
			log.Debug().Err(err).Int("pid", pid).Msg("monitor: process exited with error")
		}
	}()

	m.wg.Add(1)
	go m.watch(gameID, pid)

	log.Info().Int64("game_id", gameID).Int("pid", pid).Msg("monitor: game started")
	return pid, nil
}

// Close stops every watcher without emitting end events and waits for
// them to return.
func (m *ProcessMonitor) Close() {
	m.closeOnce.Do(func() {
		close(m.stop)
	})
	m.wg.Wait()
}

func (m *ProcessMonitor) emit(ev playtime.Event) bool {
	select {
	case m.events <- ev:
		return true
	case <-m.stop:
		return false
	}
}

func (m *ProcessMonitor) watch(gameID int64, pid int) {
	defer m.wg.Done()

	start := m.clock.Now()
	original := pid
	startPID := pid
	if !m.emit(playtime.SessionStarted{ProcessID: &startPID, GameID: gameID, StartTime: start.Unix()}) {
		return
	}

	ticker := m.clock.NewTicker(m.poll)
	defer ticker.Stop()

	var (
		active     time.Duration
		lastUpdate time.Duration
		failures   int
		switched   bool
	)
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.Chan():
		}

		if m.inspector.IsRunning(pid) {
			failures = 0
			active += m.poll
			if active-lastUpdate >= m.update {
				lastUpdate = active
				current := original
				if !m.emit(playtime.TimeUpdate{
					ProcessID:      &current,
					GameID:         gameID,
					ElapsedSeconds: int64(active / time.Second),
				}) {
					return
				}
			}
			continue
		}

		failures++
		if failures < maxFailures {
			continue
		}
		if !switched {
			if child, ok := m.liveChild(original); ok {
				log.Info().
					Int64("game_id", gameID).
					Int("pid", pid).
					Int("child", child).
					Msg("monitor: launcher exited, following child process")
				pid = child
				switched = true
				failures = 0
				continue
			}
		}
		break
	}

	// events keep naming the launched process after a switch to its
	// child, since the tracker matches them against that pid
	end := m.clock.Now()
	endPID := original
	log.Info().
		Int64("game_id", gameID).
		Int("pid", pid).
		Dur("active", active).
		Msg("monitor: game exited")
	m.emit(playtime.SessionEnded{
		ProcessID:      &endPID,
		GameID:         gameID,
		ElapsedSeconds: int64(active / time.Second),
		StartTime:      start.Unix(),
		EndTime:        end.Unix(),
	})
}

func (m *ProcessMonitor) liveChild(parent int) (int, bool) {
	for _, child := range m.inspector.Children(parent) {
		if m.inspector.IsRunning(child) {
			return child, true
		}
	}
	return 0, false
}
