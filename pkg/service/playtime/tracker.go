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

// Package playtime tracks running games and turns their session events
// into recorded sessions and per-day statistics.
package playtime

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ReinaManager/reina-core/pkg/api/models"
	"github.com/ReinaManager/reina-core/pkg/api/notifications"
	"github.com/ReinaManager/reina-core/pkg/database"
	"github.com/ReinaManager/reina-core/pkg/helpers/syncutil"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

var (
	ErrAlreadyRunning         = errors.New("game is already running")
	ErrUnsupportedEnvironment = errors.New("launching games is not supported here")
	ErrLaunchFailed           = errors.New("game launch failed")
)

// Launcher starts a game process and reports its lifecycle as events.
type Launcher interface {
	Launch(ctx context.Context, path string, gameID int64, args []string) (int, error)
}

type LaunchResult struct {
	ProcessID *int
	Message   string
	Success   bool
}

// RealTimeState is the in-memory view of one running game.
type RealTimeState struct {
	ProcessID             *int
	GameID                int64
	StartTime             int64
	CurrentSessionSeconds int64
	IsRunning             bool
}

type Options struct {
	Clock         clockwork.Clock
	Launcher      Launcher
	Location      LocationFunc
	Notifications chan<- models.Notification
	// Heartbeat is how often live minutes are written to today's entry.
	// Zero disables it.
	Heartbeat time.Duration
}

// Tracker coordinates launches, session events and statistics writes.
// Event handling, heartbeats and recomputes are serialised by processMu.
// stateMu guards the maps read by the snapshot accessors.
type Tracker struct {
	clock         clockwork.Clock
	launcher      Launcher
	store         database.PlaytimeDBI
	aggregator    *Aggregator
	location      LocationFunc
	notifications chan<- models.Notification
	states        map[int64]*RealTimeState
	pending       map[int64][]SessionEnded
	stale         map[int64]struct{}
	onStats       []func(int64)
	heartbeat     time.Duration
	processMu     syncutil.Mutex
	stateMu       syncutil.RWMutex
}

func NewTracker(store database.PlaytimeDBI, opts Options) *Tracker {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Location == nil {
		opts.Location = func() *time.Location { return time.Local }
	}
	return &Tracker{
		clock:         opts.Clock,
		launcher:      opts.Launcher,
		store:         store,
		aggregator:    NewAggregator(store, opts.Clock, opts.Location),
		location:      opts.Location,
		notifications: opts.Notifications,
		heartbeat:     opts.Heartbeat,
		states:        make(map[int64]*RealTimeState),
		pending:       make(map[int64][]SessionEnded),
		stale:         make(map[int64]struct{}),
	}
}

// Aggregator returns the aggregator sharing this tracker's store and clock.
func (t *Tracker) Aggregator() *Aggregator {
	return t.aggregator
}

// SetLauncher replaces the launcher. A nil launcher disables LaunchGame.
func (t *Tracker) SetLauncher(l Launcher) {
	t.processMu.Lock()
	defer t.processMu.Unlock()
	t.launcher = l
}

// OnStatisticsChanged registers fn to run after a game's statistics row
// has been rewritten. fn is called with the processing lock held and must
// not call back into the tracker.
func (t *Tracker) OnStatisticsChanged(fn func(gameID int64)) {
	t.processMu.Lock()
	defer t.processMu.Unlock()
	t.onStats = append(t.onStats, fn)
}

// IsGameRunning reports whether the given game is running, or whether any
// game is running when called without an argument.
func (t *Tracker) IsGameRunning(gameID ...int64) bool {
	t.stateMu.RLock()
	defer t.stateMu.RUnlock()
	if len(gameID) == 0 {
		return len(t.states) > 0
	}
	_, ok := t.states[gameID[0]]
	return ok
}

// RealTimeState returns a copy of the live state of a game.
func (t *Tracker) RealTimeState(gameID int64) (RealTimeState, bool) {
	t.stateMu.RLock()
	defer t.stateMu.RUnlock()
	st, ok := t.states[gameID]
	if !ok {
		return RealTimeState{}, false
	}
	return copyState(st), true
}

// RunningGames returns copies of all live states ordered by game id.
func (t *Tracker) RunningGames() []RealTimeState {
	t.stateMu.RLock()
	games := make([]RealTimeState, 0, len(t.states))
	for _, st := range t.states {
		games = append(games, copyState(st))
	}
	t.stateMu.RUnlock()

	sort.Slice(games, func(i, j int) bool {
		return games[i].GameID < games[j].GameID
	})
	return games
}

// LaunchGame registers the game as running, then asks the launcher to
// start it. The registration is rolled back if the launcher fails. No lock
// is held while the launcher runs.
func (t *Tracker) LaunchGame(
	ctx context.Context,
	path string,
	gameID int64,
	args []string,
) (LaunchResult, error) {
	t.processMu.Lock()
	if t.IsGameRunning(gameID) {
		t.processMu.Unlock()
		log.Warn().Int64("game_id", gameID).Msg("playtime: launch rejected, game already running")
		return LaunchResult{Message: ErrAlreadyRunning.Error()}, ErrAlreadyRunning
	}
	launcher := t.launcher
	if launcher == nil {
		t.processMu.Unlock()
		return LaunchResult{Message: ErrUnsupportedEnvironment.Error()}, ErrUnsupportedEnvironment
	}
	registered := &RealTimeState{
		GameID:    gameID,
		IsRunning: true,
		StartTime: t.clock.Now().Unix(),
	}
	t.putState(registered)
	t.processMu.Unlock()

	log.Info().Int64("game_id", gameID).Str("path", path).Msg("playtime: launching game")
	pid, err := launcher.Launch(ctx, path, gameID, args)

	t.processMu.Lock()
	defer t.processMu.Unlock()
	if err != nil {
		t.stateMu.Lock()
		if t.states[gameID] == registered {
			delete(t.states, gameID)
		}
		t.stateMu.Unlock()
		log.Error().Err(err).Int64("game_id", gameID).Msg("playtime: launch failed, state rolled back")
		return LaunchResult{Message: err.Error()}, fmt.Errorf("%w: %w", ErrLaunchFailed, err)
	}

	t.stateMu.Lock()
	if st, ok := t.states[gameID]; ok && st.ProcessID == nil {
		st.ProcessID = &pid
	}
	t.stateMu.Unlock()

	return LaunchResult{
		Success:   true,
		Message:   "game launched",
		ProcessID: &pid,
	}, nil
}

// Run dispatches events until ctx is done or events is closed.
func (t *Tracker) Run(ctx context.Context, events <-chan Event) {
	log.Debug().Msg("playtime: event loop started")
	defer log.Debug().Msg("playtime: event loop stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := t.Dispatch(ctx, ev); err != nil {
				log.Error().Err(err).
					Str("event", ev.Kind()).
					Int64("game_id", ev.Game()).
					Msg("playtime: error handling event")
			}
		}
	}
}

// Dispatch handles a single event. Outstanding storage retries for the
// same game are attempted first.
func (t *Tracker) Dispatch(ctx context.Context, ev Event) error {
	if ev == nil {
		return errors.New("nil event")
	}

	t.processMu.Lock()
	defer t.processMu.Unlock()

	if err := t.flushGameLocked(ctx, ev.Game()); err != nil {
		log.Warn().Err(err).Int64("game_id", ev.Game()).Msg("playtime: retry before event failed")
	}

	switch e := ev.(type) {
	case SessionStarted:
		return t.handleStarted(ctx, e)
	case TimeUpdate:
		t.handleTimeUpdate(e)
		return nil
	case SessionEnded:
		return t.handleEnded(ctx, e)
	default:
		return fmt.Errorf("unknown event type %T", ev)
	}
}

func (t *Tracker) handleStarted(ctx context.Context, e SessionStarted) error {
	start := e.StartTime
	if start <= 0 {
		start = t.clock.Now().Unix()
	}

	t.stateMu.Lock()
	st, ok := t.states[e.GameID]
	if !ok {
		st = &RealTimeState{GameID: e.GameID}
		t.states[e.GameID] = st
	}
	st.IsRunning = true
	st.StartTime = start
	if e.ProcessID != nil {
		pid := *e.ProcessID
		st.ProcessID = &pid
	}
	t.stateMu.Unlock()

	log.Info().Int64("game_id", e.GameID).Msg("playtime: session started")
	notifications.SessionStarted(t.notifications, models.SessionStartedNotification{
		GameID:    e.GameID,
		ProcessID: e.ProcessID,
		StartTime: start,
	})

	if err := t.store.EnsureStatistics(ctx, e.GameID); err != nil {
		return fmt.Errorf("%w: ensure statistics for game %d: %w", database.ErrStorageUnavailable, e.GameID, err)
	}
	return nil
}

// staleProcess reports whether an event names a different process than the
// one tracked for the game, as happens for an old process exiting after
// ClearActiveGame and a relaunch.
func staleProcess(st *RealTimeState, pid *int) bool {
	return st.ProcessID != nil && pid != nil && *st.ProcessID != *pid
}

func (t *Tracker) handleTimeUpdate(e TimeUpdate) {
	t.stateMu.Lock()
	st, ok := t.states[e.GameID]
	if ok && staleProcess(st, e.ProcessID) {
		t.stateMu.Unlock()
		log.Debug().
			Int64("game_id", e.GameID).
			Int("pid", *e.ProcessID).
			Msg("playtime: time update from stale process ignored")
		return
	}
	if ok {
		st.CurrentSessionSeconds = max(e.ElapsedSeconds, 0)
		if e.ProcessID != nil {
			pid := *e.ProcessID
			st.ProcessID = &pid
		}
	}
	t.stateMu.Unlock()

	if !ok {
		log.Debug().Int64("game_id", e.GameID).Msg("playtime: time update for unknown game ignored")
		return
	}

	notifications.SessionUpdated(t.notifications, models.SessionUpdatedNotification{
		GameID:         e.GameID,
		ProcessID:      e.ProcessID,
		ElapsedSeconds: e.ElapsedSeconds,
	})
}

func (t *Tracker) handleEnded(ctx context.Context, e SessionEnded) error {
	st, ok := t.RealTimeState(e.GameID)
	if !ok {
		log.Debug().Int64("game_id", e.GameID).Msg("playtime: session end for unknown game ignored")
		return nil
	}
	if staleProcess(&st, e.ProcessID) {
		log.Debug().
			Int64("game_id", e.GameID).
			Int("pid", *e.ProcessID).
			Msg("playtime: session end from stale process ignored")
		return nil
	}

	if e.ElapsedSeconds < MinSessionSeconds {
		t.discardSession(e.GameID, e.ElapsedSeconds)
		return nil
	}

	if e.StartTime <= 0 {
		e.StartTime = st.StartTime
	}
	if e.EndTime <= e.StartTime {
		e.StartTime = e.EndTime - e.ElapsedSeconds
	}
	// the recorded span must clear the threshold too, not just the
	// reported elapsed time
	if span := e.EndTime - e.StartTime; span < MinSessionSeconds {
		t.discardSession(e.GameID, span)
		return nil
	}

	if err := t.recordSession(ctx, e); err != nil {
		t.pending[e.GameID] = append(t.pending[e.GameID], e)
		return err
	}
	return t.recomputeLocked(ctx, e.GameID)
}

func (t *Tracker) discardSession(gameID, seconds int64) {
	t.stateMu.Lock()
	delete(t.states, gameID)
	t.stateMu.Unlock()
	log.Info().
		Int64("game_id", gameID).
		Int64("elapsed", seconds).
		Msg("playtime: session too short, discarded")
	notifications.SessionEnded(t.notifications, models.SessionEndedNotification{
		GameID:    gameID,
		Discarded: true,
	})
}

// recordSession inserts the session, then clears the live state that
// belonged to it.
func (t *Tracker) recordSession(ctx context.Context, e SessionEnded) error {
	session := database.GameSession{
		GameID:          e.GameID,
		StartTime:       e.StartTime,
		EndTime:         e.EndTime,
		DurationMinutes: SessionDuration(e.EndTime - e.StartTime),
		Date:            LocalDate(e.EndTime, t.location()),
	}
	id, err := t.store.AddSession(ctx, &session)
	if err != nil {
		return fmt.Errorf("%w: record session for game %d: %w", database.ErrStorageUnavailable, e.GameID, err)
	}

	log.Info().
		Int64("game_id", e.GameID).
		Int64("session_id", id).
		Int("minutes", session.DurationMinutes).
		Msg("playtime: session recorded")

	t.clearState(e.GameID, e.EndTime)
	t.stale[e.GameID] = struct{}{}
	notifications.SessionEnded(t.notifications, models.SessionEndedNotification{
		GameID:          e.GameID,
		DurationMinutes: session.DurationMinutes,
	})
	return nil
}

func (t *Tracker) recomputeLocked(ctx context.Context, gameID int64) error {
	stats, err := t.aggregator.Recompute(ctx, gameID)
	if err != nil {
		return err
	}
	delete(t.stale, gameID)
	t.statisticsChanged(&stats)
	return nil
}

func (t *Tracker) statisticsChanged(stats *database.GameStatistics) {
	for _, fn := range t.onStats {
		fn(stats.GameID)
	}
	notifications.StatisticsUpdated(t.notifications, models.StatisticsUpdatedNotification{
		GameID:           stats.GameID,
		TotalTimeMinutes: stats.TotalTimeMinutes,
		SessionCount:     stats.SessionCount,
		LastPlayed:       stats.LastPlayed,
		TodayMinutes:     dailyValue(stats.DailyStats, t.aggregator.Today()),
	})
}

// Refresh recomputes a game's statistics under the processing lock.
func (t *Tracker) Refresh(ctx context.Context, gameID int64) (database.GameStatistics, error) {
	t.processMu.Lock()
	defer t.processMu.Unlock()

	stats, err := t.aggregator.Recompute(ctx, gameID)
	if err != nil {
		return database.GameStatistics{}, err
	}
	delete(t.stale, gameID)
	t.statisticsChanged(&stats)
	return stats, nil
}

// Flush retries failed session inserts and statistics recomputes.
func (t *Tracker) Flush(ctx context.Context) error {
	t.processMu.Lock()
	defer t.processMu.Unlock()

	ids := make(map[int64]struct{}, len(t.pending)+len(t.stale))
	for id := range t.pending {
		ids[id] = struct{}{}
	}
	for id := range t.stale {
		ids[id] = struct{}{}
	}

	var errs []error
	for id := range ids {
		if err := t.flushGameLocked(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PendingRetries returns the number of games with storage work to retry.
func (t *Tracker) PendingRetries() int {
	t.processMu.Lock()
	defer t.processMu.Unlock()
	ids := make(map[int64]struct{})
	for id := range t.pending {
		ids[id] = struct{}{}
	}
	for id := range t.stale {
		ids[id] = struct{}{}
	}
	return len(ids)
}

func (t *Tracker) flushGameLocked(ctx context.Context, gameID int64) error {
	queued := t.pending[gameID]
	for i, e := range queued {
		if err := t.recordSession(ctx, e); err != nil {
			t.pending[gameID] = queued[i:]
			return err
		}
	}
	delete(t.pending, gameID)

	if _, ok := t.stale[gameID]; !ok {
		return nil
	}
	return t.recomputeLocked(ctx, gameID)
}

// ClearActiveGame forgets every running game and queued insert retry
// without writing anything.
func (t *Tracker) ClearActiveGame() {
	t.processMu.Lock()
	defer t.processMu.Unlock()

	t.stateMu.Lock()
	cleared := len(t.states)
	t.states = make(map[int64]*RealTimeState)
	t.stateMu.Unlock()
	t.pending = make(map[int64][]SessionEnded)

	log.Info().Int("games", cleared).Msg("playtime: active games cleared")
	notifications.Cleared(t.notifications)
}

// Heartbeat writes the live minutes of every running game into today's
// daily entry.
func (t *Tracker) Heartbeat(ctx context.Context) error {
	t.processMu.Lock()
	defer t.processMu.Unlock()

	now := t.clock.Now()
	midnight := StartOfDay(now.In(t.location())).Unix()

	var errs []error
	for _, st := range t.RunningGames() {
		live := liveSecondsToday(st, now.Unix(), midnight)
		stats, err := t.aggregator.MergeLiveToday(ctx, st.GameID, SessionDuration(live))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		t.statisticsChanged(&stats)
	}
	return errors.Join(errs...)
}

// RunHeartbeat flushes retries and writes heartbeats on every tick until
// ctx is done. It returns at once when the heartbeat is disabled.
func (t *Tracker) RunHeartbeat(ctx context.Context) {
	if t.heartbeat <= 0 {
		log.Debug().Msg("playtime: heartbeat disabled")
		return
	}

	ticker := t.clock.NewTicker(t.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if err := t.Flush(ctx); err != nil {
				log.Warn().Err(err).Msg("playtime: storage retry failed")
			}
			if err := t.Heartbeat(ctx); err != nil {
				log.Warn().Err(err).Msg("playtime: heartbeat write failed")
			}
		}
	}
}

// liveSecondsToday is the part of a running session's elapsed time that
// falls on or after today's midnight.
func liveSecondsToday(st RealTimeState, now, midnight int64) int64 {
	elapsed := st.CurrentSessionSeconds
	if st.StartTime < midnight {
		elapsed = min(elapsed, now-midnight)
	}
	return max(elapsed, 0)
}

func (t *Tracker) putState(st *RealTimeState) {
	t.stateMu.Lock()
	defer t.stateMu.Unlock()
	t.states[st.GameID] = st
}

// clearState removes the live state if it began before endTime, so a
// delayed retry never clears a newer session of the same game.
func (t *Tracker) clearState(gameID, endTime int64) {
	t.stateMu.Lock()
	defer t.stateMu.Unlock()
	if st, ok := t.states[gameID]; ok && st.StartTime <= endTime {
		delete(t.states, gameID)
	}
}

func copyState(st *RealTimeState) RealTimeState {
	c := *st
	if st.ProcessID != nil {
		pid := *st.ProcessID
		c.ProcessID = &pid
	}
	return c
}
