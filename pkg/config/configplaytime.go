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
	"fmt"
	"time"
)

const (
	DefaultHeartbeatInterval = 5 * time.Minute
	DefaultUpdateInterval    = 30 * time.Second
	DefaultStatsCacheSize    = 128
)

// Playtime configures play time tracking.
type Playtime struct {
	Heartbeat      *string `toml:"heartbeat,omitempty"`
	UpdateInterval *string `toml:"update_interval,omitempty"`
	StatsCacheSize *int    `toml:"stats_cache_size,omitempty"`
	Timezone       string  `toml:"timezone,omitempty"`
}

func (p Playtime) location() (*time.Location, error) {
	if p.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.Local, fmt.Errorf("invalid timezone %q: %w", p.Timezone, err)
	}
	return loc, nil
}

// HeartbeatInterval returns how often in-progress play time is written to
// today's daily stat. Returns 5 minutes by default, 0 if set to "0" (disabled).
func (c *Instance) HeartbeatInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Playtime.Heartbeat == nil {
		return DefaultHeartbeatInterval
	}
	d, err := time.ParseDuration(*c.vals.Playtime.Heartbeat)
	if err != nil || d < 0 {
		return DefaultHeartbeatInterval
	}
	return d
}

// SetHeartbeatInterval sets the heartbeat interval (e.g. "5m", "0").
// Pass nil to restore the default.
func (c *Instance) SetHeartbeatInterval(duration *string) error {
	if duration != nil {
		d, err := time.ParseDuration(*duration)
		if err != nil {
			return fmt.Errorf("invalid heartbeat duration: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("invalid heartbeat duration: %s is negative", *duration)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Playtime.Heartbeat = duration
	return nil
}

// UpdateInterval is how often the process monitor emits a time-update
// event for a running game.
func (c *Instance) UpdateInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Playtime.UpdateInterval == nil {
		return DefaultUpdateInterval
	}
	d, err := time.ParseDuration(*c.vals.Playtime.UpdateInterval)
	if err != nil || d <= 0 {
		return DefaultUpdateInterval
	}
	return d
}

func (c *Instance) StatsCacheSize() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Playtime.StatsCacheSize == nil || *c.vals.Playtime.StatsCacheSize <= 0 {
		return DefaultStatsCacheSize
	}
	return *c.vals.Playtime.StatsCacheSize
}

// Location returns the timezone used to compute local calendar dates.
// Falls back to the host's local zone when unset or invalid.
func (c *Instance) Location() *time.Location {
	c.mu.RLock()
	defer c.mu.RUnlock()
	loc, _ := c.vals.Playtime.location()
	return loc
}

// SetTimezone sets an IANA timezone name. Pass "" to use host local time.
func (c *Instance) SetTimezone(name string) error {
	if name != "" {
		if _, err := time.LoadLocation(name); err != nil {
			return fmt.Errorf("invalid timezone: %w", err)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Playtime.Timezone = name
	return nil
}
