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

package service

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/ReinaManager/reina-core/pkg/api/client"
	"github.com/ReinaManager/reina-core/pkg/api/models"
	"github.com/ReinaManager/reina-core/pkg/config"
	"github.com/ReinaManager/reina-core/pkg/database"
	testhelpers "github.com/ReinaManager/reina-core/pkg/testing/helpers"
	"github.com/ReinaManager/reina-core/pkg/testing/mocks"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestService(t *testing.T, backend string) *client.Client {
	t.Helper()

	disabled := false
	cfg := testhelpers.NewTestConfig(t, config.Values{
		Database: config.Database{Backend: backend},
		Playtime: config.Playtime{Timezone: "UTC"},
		Service: config.Service{
			Discovery: config.Discovery{Enabled: &disabled},
		},
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	stop, done, err := Start(Options{
		Config:   cfg,
		Clock:    clock,
		Launcher: mocks.NewMockLauncher(),
		Listener: ln,
		DataDir:  t.TempDir(),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, stop())
		<-done
	})

	return client.New(ln.Addr().String())
}

func TestStart_RecordsSessionThroughAPI(t *testing.T) {
	t.Parallel()

	for _, backend := range []string{config.BackendSQLite, config.BackendBolt} {
		t.Run(backend, func(t *testing.T) {
			t.Parallel()
			c := startTestService(t, backend)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			version, err := c.Call(ctx, models.MethodVersion, "")
			require.NoError(t, err)
			assert.Contains(t, version, config.AppVersion)

			start := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC).Unix()
			_, err = c.Call(ctx, models.MethodEventsStarted,
				`{"gameId": 1, "startTime": `+jsonInt(start)+`}`)
			require.NoError(t, err)

			running, err := c.Call(ctx, models.MethodPlaytimeRunning, "")
			require.NoError(t, err)
			assert.Contains(t, running, `"gameId":1`)

			_, err = c.Call(ctx, models.MethodEventsEnded,
				`{"gameId": 1, "startTime": `+jsonInt(start)+
					`, "endTime": `+jsonInt(start+600)+`, "elapsedSeconds": 600}`)
			require.NoError(t, err)

			raw, err := c.Call(ctx, models.MethodPlaytimeStatistics, `{"gameId": 1}`)
			require.NoError(t, err)
			var stats database.GameStatistics
			require.NoError(t, json.Unmarshal([]byte(raw), &stats))
			assert.Equal(t, 10, stats.TotalTimeMinutes)
			assert.Equal(t, 1, stats.SessionCount)
			assert.Equal(t, []database.DailyStat{{Date: "2026-03-10", Playtime: 10}}, stats.DailyStats)
		})
	}
}

func TestStart_RequiresConfig(t *testing.T) {
	t.Parallel()

	_, _, err := Start(Options{})
	require.Error(t, err)
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
