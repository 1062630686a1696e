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

package boltdb

import (
	"context"
	"testing"

	"github.com/ReinaManager/reina-core/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *BoltDB {
	t.Helper()
	db, err := OpenBoltDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestBoltDB_Sessions(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()

	var ids []int64
	for _, start := range []int64{3000, 1000, 2000} {
		id, err := db.AddSession(ctx, &database.GameSession{
			GameID: 1, StartTime: start, EndTime: start + 300, DurationMinutes: 5, Date: "2026-01-01",
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	assert.Equal(t, []int64{1, 2, 3}, ids)

	all, err := db.GetAllSessions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, int64(1000), all[0].StartTime)
	assert.Equal(t, int64(3000), all[2].StartTime)

	page, err := db.GetSessions(ctx, 1, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(3000), page[0].StartTime)
	assert.Equal(t, int64(2000), page[1].StartTime)

	page, err = db.GetSessions(ctx, 1, 2, 5)
	require.NoError(t, err)
	assert.Empty(t, page)

	none, err := db.GetAllSessions(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBoltDB_RejectsInvertedSession(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)

	_, err := db.AddSession(context.Background(), &database.GameSession{GameID: 1, StartTime: 10, EndTime: 10})
	require.Error(t, err)
}

func TestBoltDB_Statistics(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()

	stats, err := db.GetStatistics(ctx, 4)
	require.NoError(t, err)
	assert.Nil(t, stats)

	require.NoError(t, db.EnsureStatistics(ctx, 4))
	require.NoError(t, db.EnsureStatistics(ctx, 2))

	last := int64(777)
	require.NoError(t, db.UpsertStatistics(ctx, &database.GameStatistics{
		GameID:           4,
		TotalTimeMinutes: 9,
		SessionCount:     1,
		LastPlayed:       &last,
		DailyStats: []database.DailyStat{
			{Date: "2026-01-01", Playtime: 4},
			{Date: "2026-01-02", Playtime: 5},
		},
	}))
	require.NoError(t, db.EnsureStatistics(ctx, 4))

	stats, err = db.GetStatistics(ctx, 4)
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, 9, stats.TotalTimeMinutes)
	assert.Equal(t, &last, stats.LastPlayed)
	assert.Equal(t, []database.DailyStat{
		{Date: "2026-01-02", Playtime: 5},
		{Date: "2026-01-01", Playtime: 4},
	}, stats.DailyStats)

	ids, err := db.ListGameIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 4}, ids)
}

func TestBoltDB_DeleteGameData(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.AddSession(ctx, &database.GameSession{GameID: 6, StartTime: 1, EndTime: 61, DurationMinutes: 1})
	require.NoError(t, err)
	require.NoError(t, db.EnsureStatistics(ctx, 6))

	require.NoError(t, db.DeleteGameData(ctx, 6))
	require.NoError(t, db.DeleteGameData(ctx, 6))

	sessions, err := db.GetAllSessions(ctx, 6)
	require.NoError(t, err)
	assert.Empty(t, sessions)
	stats, err := db.GetStatistics(ctx, 6)
	require.NoError(t, err)
	assert.Nil(t, stats)
}

func TestBoltDB_CancelledContext(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := db.AddSession(ctx, &database.GameSession{GameID: 1, StartTime: 1, EndTime: 100})
	require.ErrorIs(t, err, context.Canceled)
}
