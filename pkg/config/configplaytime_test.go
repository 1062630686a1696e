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

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func TestHeartbeatInterval(t *testing.T) {
	t.Parallel()

	tests := []struct {
		heartbeat *string
		name      string
		want      time.Duration
	}{
		{name: "nil uses default", heartbeat: nil, want: DefaultHeartbeatInterval},
		{name: "zero disables", heartbeat: strPtr("0"), want: 0},
		{name: "custom value", heartbeat: strPtr("90s"), want: 90 * time.Second},
		{name: "invalid uses default", heartbeat: strPtr("soon"), want: DefaultHeartbeatInterval},
		{name: "negative uses default", heartbeat: strPtr("-1m"), want: DefaultHeartbeatInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			inst := &Instance{vals: Values{Playtime: Playtime{Heartbeat: tt.heartbeat}}}
			assert.Equal(t, tt.want, inst.HeartbeatInterval())
		})
	}
}

func TestSetHeartbeatInterval(t *testing.T) {
	t.Parallel()

	inst := &Instance{}
	require.Error(t, inst.SetHeartbeatInterval(strPtr("abc")))
	require.Error(t, inst.SetHeartbeatInterval(strPtr("-5m")))
	assert.Equal(t, DefaultHeartbeatInterval, inst.HeartbeatInterval())

	require.NoError(t, inst.SetHeartbeatInterval(strPtr("2m")))
	assert.Equal(t, 2*time.Minute, inst.HeartbeatInterval())

	require.NoError(t, inst.SetHeartbeatInterval(nil))
	assert.Equal(t, DefaultHeartbeatInterval, inst.HeartbeatInterval())
}

func TestUpdateInterval(t *testing.T) {
	t.Parallel()

	inst := &Instance{}
	assert.Equal(t, DefaultUpdateInterval, inst.UpdateInterval())

	inst.vals.Playtime.UpdateInterval = strPtr("0s")
	assert.Equal(t, DefaultUpdateInterval, inst.UpdateInterval())

	inst.vals.Playtime.UpdateInterval = strPtr("10s")
	assert.Equal(t, 10*time.Second, inst.UpdateInterval())
}

func TestStatsCacheSize(t *testing.T) {
	t.Parallel()

	inst := &Instance{}
	assert.Equal(t, DefaultStatsCacheSize, inst.StatsCacheSize())

	inst.vals.Playtime.StatsCacheSize = intPtr(-1)
	assert.Equal(t, DefaultStatsCacheSize, inst.StatsCacheSize())

	inst.vals.Playtime.StatsCacheSize = intPtr(16)
	assert.Equal(t, 16, inst.StatsCacheSize())
}

func TestLocation(t *testing.T) {
	t.Parallel()

	inst := &Instance{}
	assert.Equal(t, time.Local, inst.Location())

	require.NoError(t, inst.SetTimezone("Europe/Berlin"))
	assert.Equal(t, "Europe/Berlin", inst.Location().String())

	require.Error(t, inst.SetTimezone("Mars/Olympus_Mons"))
	assert.Equal(t, "Europe/Berlin", inst.Location().String())

	inst.vals.Playtime.Timezone = "Not/AZone"
	assert.Equal(t, time.Local, inst.Location())
}
