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

package playtime

import (
	"testing"

	"github.com/ReinaManager/reina-core/pkg/database"
	"pgregory.net/rapid"
)

// sessionGen generates sessions of up to three days starting in 2026.
func sessionGen() *rapid.Generator[database.GameSession] {
	return rapid.Custom(func(t *rapid.T) database.GameSession {
		start := at(2026, 1, 1, 0, 0, 0) + rapid.Int64Range(0, 365*24*60*60).Draw(t, "start")
		length := rapid.Int64Range(60, 3*24*60*60).Draw(t, "length")
		return database.GameSession{
			GameID:          1,
			StartTime:       start,
			EndTime:         start + length,
			DurationMinutes: SessionDuration(length),
		}
	})
}

func sumPlaytime(stats []database.DailyStat) int {
	total := 0
	for _, d := range stats {
		total += d.Playtime
	}
	return total
}

func TestPropertySplitSumsToDuration(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		s := sessionGen().Draw(t, "session")
		shares := AttributeSession(&s, utc8)

		if got := sumPlaytime(shares); got != s.DurationMinutes {
			t.Fatalf("shares sum to %d, want %d", got, s.DurationMinutes)
		}
		for _, share := range shares {
			if share.Playtime < 0 {
				t.Fatalf("negative share %+v", share)
			}
		}
	})
}

func TestPropertySplitDatesAreDistinct(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		s := sessionGen().Draw(t, "session")
		seen := make(map[string]bool)
		for _, share := range AttributeSession(&s, utc8) {
			if seen[share.Date] {
				t.Fatalf("date %s attributed twice", share.Date)
			}
			seen[share.Date] = true
		}
	})
}

func TestPropertyDailyStatsMatchTotal(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		sessions := rapid.SliceOfN(sessionGen(), 0, 20).Draw(t, "sessions")
		stats := Summarize(1, sessions, utc8)

		if got := sumPlaytime(stats.DailyStats); got != stats.TotalTimeMinutes {
			t.Fatalf("daily stats sum to %d, total is %d", got, stats.TotalTimeMinutes)
		}
		for i := 1; i < len(stats.DailyStats); i++ {
			if stats.DailyStats[i-1].Date <= stats.DailyStats[i].Date {
				t.Fatalf("daily stats not strictly descending: %v", stats.DailyStats)
			}
		}
	})
}

func TestPropertyMergeIsIdempotent(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		sessions := rapid.SliceOfN(sessionGen(), 0, 10).Draw(t, "sessions")
		today := LocalDate(at(2026, 1, 1, 0, 0, 0)+rapid.Int64Range(0, 400*24*60*60).Draw(t, "now"), utc8)
		live := rapid.IntRange(0, 600).Draw(t, "live")

		recomputed := BuildDailyStats(sessions, utc8)
		existing := []database.DailyStat{{Date: today, Playtime: live}}

		once := MergeDailyStats(existing, recomputed, today)
		twice := MergeDailyStats(once, recomputed, today)

		if len(once) != len(twice) {
			t.Fatalf("merge not idempotent: %v vs %v", once, twice)
		}
		for i := range once {
			if once[i] != twice[i] {
				t.Fatalf("merge not idempotent: %v vs %v", once, twice)
			}
		}
	})
}

func TestPropertyTodayNeverDecreases(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		const today = "2026-06-15"
		before := rapid.IntRange(0, 1000).Draw(t, "before")
		after := rapid.IntRange(0, 1000).Draw(t, "after")

		merged := MergeDailyStats(
			[]database.DailyStat{{Date: today, Playtime: before}},
			[]database.DailyStat{{Date: today, Playtime: after}},
			today,
		)
		if got := dailyValue(merged, today); got < before || got < after {
			t.Fatalf("today is %d after merging %d with %d", got, before, after)
		}
	})
}

func TestPropertyPastDatesFollowRecompute(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		const today = "2027-06-15"
		sessions := rapid.SliceOfN(sessionGen(), 1, 10).Draw(t, "sessions")
		stale := rapid.IntRange(0, 1000).Draw(t, "stale")

		recomputed := BuildDailyStats(sessions, utc8)
		existing := make([]database.DailyStat, 0, len(recomputed))
		for _, d := range recomputed {
			existing = append(existing, database.DailyStat{Date: d.Date, Playtime: stale})
		}

		merged := MergeDailyStats(existing, recomputed, today)
		if len(merged) != len(recomputed) {
			t.Fatalf("merged %v, want %v", merged, recomputed)
		}
		for i := range merged {
			if merged[i] != recomputed[i] {
				t.Fatalf("merged %v, want %v", merged, recomputed)
			}
		}
	})
}
