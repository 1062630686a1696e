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

package database

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// SortDailyStats orders stats newest first in place. Dates are
// YYYY-MM-DD so string order is calendar order.
func SortDailyStats(stats []DailyStat) {
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Date > stats[j].Date
	})
}

// normalizeDailyStats folds duplicate dates together, drops negative
// values and returns a new slice sorted newest first.
func normalizeDailyStats(stats []DailyStat) []DailyStat {
	byDate := make(map[string]int, len(stats))
	for _, s := range stats {
		if s.Date == "" || s.Playtime < 0 {
			continue
		}
		byDate[s.Date] += s.Playtime
	}
	out := make([]DailyStat, 0, len(byDate))
	for date, minutes := range byDate {
		out = append(out, DailyStat{Date: date, Playtime: minutes})
	}
	SortDailyStats(out)
	return out
}

// EncodeDailyStats serializes daily stats to the persisted blob form, a
// JSON array of {date, playtime} sorted newest first.
func EncodeDailyStats(stats []DailyStat) (string, error) {
	data, err := json.Marshal(normalizeDailyStats(stats))
	if err != nil {
		return "", fmt.Errorf("failed to marshal daily stats: %w", err)
	}
	return string(data), nil
}

// DecodeDailyStats parses a persisted blob. It accepts the current array
// form and the older object form keyed by date. Anything unreadable is
// logged and treated as no history, so one bad row never breaks a read.
func DecodeDailyStats(blob string) []DailyStat {
	trimmed := strings.TrimSpace(blob)
	if trimmed == "" || trimmed == "null" {
		return []DailyStat{}
	}

	var list []DailyStat
	if err := json.Unmarshal([]byte(trimmed), &list); err == nil {
		return normalizeDailyStats(list)
	}

	var legacy map[string]int
	if err := json.Unmarshal([]byte(trimmed), &legacy); err == nil {
		list = make([]DailyStat, 0, len(legacy))
		for date, minutes := range legacy {
			list = append(list, DailyStat{Date: date, Playtime: minutes})
		}
		return normalizeDailyStats(list)
	}

	log.Warn().Str("blob", trimmed).Msg("unreadable daily stats, treating as empty")
	return []DailyStat{}
}
