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

package methods

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ReinaManager/reina-core/pkg/api/models"
	"github.com/ReinaManager/reina-core/pkg/api/models/requests"
	"github.com/ReinaManager/reina-core/pkg/api/validation"
	"github.com/ReinaManager/reina-core/pkg/config"
	"github.com/ReinaManager/reina-core/pkg/database"
	"github.com/ReinaManager/reina-core/pkg/service/playtime"
	"github.com/ReinaManager/reina-core/pkg/testing/helpers"
	"github.com/ReinaManager/reina-core/pkg/testing/mocks"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testLocation = time.FixedZone("UTC+8", 8*60*60)

type handlerEnv struct {
	store    database.PlaytimeDBI
	clock    *clockwork.FakeClock
	launcher *mocks.MockLauncher
	tracker  *playtime.Tracker
	query    *playtime.Query
	cfg      *config.Instance
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	db, cleanup := helpers.NewInMemoryUserDB(t)
	t.Cleanup(cleanup)

	loc := func() *time.Location { return testLocation }
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 10, 14, 0, 0, 0, testLocation))
	launcher := mocks.NewMockLauncher()

	tracker := playtime.NewTracker(db, playtime.Options{
		Clock:         clock,
		Launcher:      launcher,
		Location:      loc,
		Notifications: make(chan models.Notification, 100),
	})
	query, err := playtime.NewQuery(db, playtime.QueryOptions{Clock: clock, Location: loc})
	require.NoError(t, err)
	tracker.OnStatisticsChanged(query.Invalidate)

	return &handlerEnv{
		store:    db,
		clock:    clock,
		launcher: launcher,
		tracker:  tracker,
		query:    query,
		cfg:      helpers.NewTestConfig(t, config.Values{}),
	}
}

func (h *handlerEnv) request(t *testing.T, params any) requests.RequestEnv {
	t.Helper()
	env := requests.RequestEnv{
		Ctx:     context.Background(),
		Config:  h.cfg,
		Tracker: h.tracker,
		Query:   h.query,
	}
	if params != nil {
		raw, err := json.Marshal(params)
		require.NoError(t, err)
		env.Params = raw
	}
	return env
}

// playSession records a completed session through the event handlers.
func (h *handlerEnv) playSession(t *testing.T, gameID, start, elapsed int64) {
	t.Helper()
	_, err := HandleEventSessionStarted(h.request(t, models.SessionStartedParams{
		GameID: gameID, StartTime: start,
	}))
	require.NoError(t, err)
	_, err = HandleEventSessionEnded(h.request(t, models.SessionEndedParams{
		GameID: gameID, ElapsedSeconds: elapsed, StartTime: start, EndTime: start + elapsed,
	}))
	require.NoError(t, err)
}

func TestHandleLaunch(t *testing.T) {
	t.Parallel()
	h := newHandlerEnv(t)

	h.launcher.On("Launch", mock.Anything, "/games/a.exe", int64(3), []string{"-w"}).Return(4242, nil).Once()

	result, err := HandleLaunch(h.request(t, models.LaunchParams{
		Path: "/games/a.exe", GameID: 3, Args: []string{"-w"},
	}))
	require.NoError(t, err)

	resp, ok := result.(models.LaunchResponse)
	require.True(t, ok)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.ProcessID)
	assert.Equal(t, 4242, *resp.ProcessID)
	assert.True(t, h.tracker.IsGameRunning(3))

	// second launch of the same game reports failure in the result
	result, err = HandleLaunch(h.request(t, models.LaunchParams{Path: "/games/a.exe", GameID: 3}))
	require.NoError(t, err)
	resp, ok = result.(models.LaunchResponse)
	require.True(t, ok)
	assert.False(t, resp.Success)
	assert.Equal(t, playtime.ErrAlreadyRunning.Error(), resp.Message)

	h.launcher.AssertExpectations(t)
}

func TestHandleLaunch_LauncherError(t *testing.T) {
	t.Parallel()
	h := newHandlerEnv(t)

	h.launcher.On("Launch", mock.Anything, "/games/b.exe", int64(5), mock.Anything).
		Return(0, errors.New("exec format error")).Once()

	result, err := HandleLaunch(h.request(t, models.LaunchParams{Path: "/games/b.exe", GameID: 5}))
	require.NoError(t, err)
	resp, ok := result.(models.LaunchResponse)
	require.True(t, ok)
	assert.False(t, resp.Success)
	assert.Equal(t, "exec format error", resp.Message)
	assert.Nil(t, resp.ProcessID)
	assert.False(t, h.tracker.IsGameRunning(5))
}

func TestHandleLaunch_InvalidParams(t *testing.T) {
	t.Parallel()
	h := newHandlerEnv(t)

	_, err := HandleLaunch(h.request(t, nil))
	require.ErrorIs(t, err, validation.ErrMissingParams)

	_, err = HandleLaunch(h.request(t, map[string]any{"path": "", "gameId": 1}))
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)

	h.launcher.AssertNotCalled(t, "Launch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandlePlaytimeRunning(t *testing.T) {
	t.Parallel()
	h := newHandlerEnv(t)

	result, err := HandlePlaytimeRunning(h.request(t, nil))
	require.NoError(t, err)
	assert.Equal(t, models.RunningResponse{Games: []models.RunningGame{}}, result)

	start := h.clock.Now().Unix()
	for _, id := range []int64{2, 1} {
		_, err = HandleEventSessionStarted(h.request(t, models.SessionStartedParams{GameID: id, StartTime: start}))
		require.NoError(t, err)
	}
	_, err = HandleEventTimeUpdate(h.request(t, models.TimeUpdateParams{GameID: 2, ElapsedSeconds: 90}))
	require.NoError(t, err)

	result, err = HandlePlaytimeRunning(h.request(t, nil))
	require.NoError(t, err)
	resp, ok := result.(models.RunningResponse)
	require.True(t, ok)
	assert.True(t, resp.Running)
	require.Len(t, resp.Games, 2)
	assert.Equal(t, int64(1), resp.Games[0].GameID)
	assert.Equal(t, int64(90), resp.Games[1].CurrentSessionSeconds)

	gameID := int64(2)
	result, err = HandlePlaytimeRunning(h.request(t, models.RunningParams{GameID: &gameID}))
	require.NoError(t, err)
	resp, ok = result.(models.RunningResponse)
	require.True(t, ok)
	require.Len(t, resp.Games, 1)
	assert.Equal(t, int64(2), resp.Games[0].GameID)

	gameID = 7
	result, err = HandlePlaytimeRunning(h.request(t, models.RunningParams{GameID: &gameID}))
	require.NoError(t, err)
	resp, ok = result.(models.RunningResponse)
	require.True(t, ok)
	assert.False(t, resp.Running)
}

func TestHandlePlaytimeClear(t *testing.T) {
	t.Parallel()
	h := newHandlerEnv(t)

	_, err := HandleEventSessionStarted(h.request(t, models.SessionStartedParams{GameID: 1}))
	require.NoError(t, err)
	require.True(t, h.tracker.IsGameRunning())

	result, err := HandlePlaytimeClear(h.request(t, nil))
	require.NoError(t, err)
	assert.Equal(t, NoContent{}, result)
	assert.False(t, h.tracker.IsGameRunning())
}

func TestHandleEvents_RecordSession(t *testing.T) {
	t.Parallel()
	h := newHandlerEnv(t)

	start := h.clock.Now().Unix()
	h.playSession(t, 4, start, 185)

	result, err := HandlePlaytimeStatistics(h.request(t, models.GameParams{GameID: 4}))
	require.NoError(t, err)
	stats, ok := result.(*database.GameStatistics)
	require.True(t, ok)
	assert.Equal(t, 3, stats.TotalTimeMinutes)
	assert.Equal(t, 1, stats.SessionCount)
	assert.Equal(t, []database.DailyStat{{Date: "2026-03-10", Playtime: 3}}, stats.DailyStats)

	result, err = HandlePlaytimeSessions(h.request(t, models.SessionsParams{GameID: 4}))
	require.NoError(t, err)
	sessions, ok := result.([]database.GameSession)
	require.True(t, ok)
	require.Len(t, sessions, 1)
	assert.Equal(t, start+185, sessions[0].EndTime)
}

func TestHandleEventSessionEnded_ReconstructsStart(t *testing.T) {
	t.Parallel()
	h := newHandlerEnv(t)

	end := h.clock.Now().Unix()
	_, err := HandleEventSessionStarted(h.request(t, models.SessionStartedParams{GameID: 6}))
	require.NoError(t, err)
	_, err = HandleEventSessionEnded(h.request(t, models.SessionEndedParams{
		GameID: 6, ElapsedSeconds: 600, EndTime: end,
	}))
	require.NoError(t, err)

	sessions, err := h.store.GetAllSessions(context.Background(), 6)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, end-600, sessions[0].StartTime)
	assert.Equal(t, 10, sessions[0].DurationMinutes)
}

func TestHandleEvents_InvalidParams(t *testing.T) {
	t.Parallel()
	h := newHandlerEnv(t)

	_, err := HandleEventSessionStarted(h.request(t, map[string]any{"gameId": 0}))
	require.Error(t, err)
	_, err = HandleEventTimeUpdate(h.request(t, map[string]any{"gameId": 1, "elapsedSeconds": -5}))
	require.Error(t, err)
	_, err = HandleEventSessionEnded(h.request(t, map[string]any{"gameId": 1, "elapsedSeconds": 60}))
	require.Error(t, err)
}

func TestHandlePlaytimeStatistics_Unplayed(t *testing.T) {
	t.Parallel()
	h := newHandlerEnv(t)

	result, err := HandlePlaytimeStatistics(h.request(t, models.GameParams{GameID: 99}))
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestHandlePlaytimeReads_StorageDown(t *testing.T) {
	t.Parallel()
	boom := errors.New("disk I/O error")
	store := helpers.NewMockPlaytimeDBI()
	store.On("GetStatistics", mock.Anything, int64(2)).Return(nil, boom)
	store.On("GetSessions", mock.Anything, int64(2), 10, 0).Return(nil, boom)

	query, err := playtime.NewQuery(store, playtime.QueryOptions{})
	require.NoError(t, err)
	env := requests.RequestEnv{Ctx: context.Background(), Query: query}

	env.Params = json.RawMessage(`{"gameId": 2}`)
	stats, err := HandlePlaytimeStatistics(env)
	require.NoError(t, err)
	assert.Nil(t, stats)

	env.Params = json.RawMessage(`{"gameId": 2, "limit": 10}`)
	sessions, err := HandlePlaytimeSessions(env)
	require.NoError(t, err)
	assert.Equal(t, []database.GameSession{}, sessions)
}

func TestHandlePlaytimeStatsAndSummary(t *testing.T) {
	t.Parallel()
	h := newHandlerEnv(t)

	now := h.clock.Now().Unix()
	h.playSession(t, 1, now-7200, 6000)
	h.playSession(t, 2, now-600, 600)

	result, err := HandlePlaytimeStats(h.request(t, models.StatsParams{GameID: 1}))
	require.NoError(t, err)
	stats, ok := result.(playtime.FormattedStats)
	require.True(t, ok)
	assert.Equal(t, "1h 40m", stats.TotalPlayTime)
	assert.Equal(t, 100, stats.TodayMinutes)

	result, err = HandlePlaytimeSummary(h.request(t, nil))
	require.NoError(t, err)
	assert.Equal(t, models.SummaryResponse{
		TotalMinutes: 110,
		WeekMinutes:  110,
		TodayMinutes: 110,
		Total:        "1h 50m",
		Week:         "1h 50m",
		Today:        "1h 50m",
	}, result)
}

func TestHandlePlaytimeRefresh(t *testing.T) {
	t.Parallel()
	h := newHandlerEnv(t)

	now := h.clock.Now().Unix()
	h.playSession(t, 8, now-300, 300)

	result, err := HandlePlaytimeRefresh(h.request(t, models.GameParams{GameID: 8}))
	require.NoError(t, err)
	stats, ok := result.(database.GameStatistics)
	require.True(t, ok)
	assert.Equal(t, 5, stats.TotalTimeMinutes)
	assert.Equal(t, 1, stats.SessionCount)
}

func TestHandlePlaytimeExport(t *testing.T) {
	t.Parallel()
	h := newHandlerEnv(t)

	now := h.clock.Now().Unix()
	h.playSession(t, 7, now, 185)

	result, err := HandlePlaytimeExport(h.request(t, models.GameParams{GameID: 7}))
	require.NoError(t, err)
	resp, ok := result.(models.ExportResponse)
	require.True(t, ok)
	assert.Equal(t,
		"id,game_id,date,start_time,end_time,duration_minutes\n"+
			"1,7,2026-03-10,2026-03-10T14:00:00+08:00,2026-03-10T14:03:05+08:00,3\n",
		resp.CSV)
}

func TestHandlers_NoTracker(t *testing.T) {
	t.Parallel()
	h := newHandlerEnv(t)

	env := h.request(t, models.GameParams{GameID: 1})
	env.Tracker = nil

	_, err := HandlePlaytimeClear(env)
	require.ErrorIs(t, err, ErrTrackerUnavailable)
	_, err = HandlePlaytimeRefresh(env)
	require.ErrorIs(t, err, ErrTrackerUnavailable)
	_, err = HandleEventTimeUpdate(env)
	require.ErrorIs(t, err, ErrTrackerUnavailable)
}

func TestHandleVersion(t *testing.T) {
	t.Parallel()

	result, err := HandleVersion(requests.RequestEnv{})
	require.NoError(t, err)
	assert.Equal(t, models.VersionResponse{Version: config.AppVersion}, result)
}
