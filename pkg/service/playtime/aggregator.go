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
	"context"
	"fmt"
	"time"

	"github.com/ReinaManager/reina-core/pkg/database"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// LocationFunc returns the time zone used for calendar dates. It is a
// function so a config reload can change it without rebuilding services.
type LocationFunc func() *time.Location

// Aggregator rebuilds a game's statistics row from its recorded sessions.
type Aggregator struct {
	store    database.PlaytimeDBI
	clock    clockwork.Clock
	location LocationFunc
}

func NewAggregator(store database.PlaytimeDBI, clock clockwork.Clock, location LocationFunc) *Aggregator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if location == nil {
		location = func() *time.Location { return time.Local }
	}
	return &Aggregator{
		store:    store,
		clock:    clock,
		location: location,
	}
}

// Today returns the current local date.
func (a *Aggregator) Today() string {
	return LocalDate(a.clock.Now().Unix(), a.location())
}

// Recompute derives totals and daily stats from every session of the game,
// merges them with the stored row and writes the result in one upsert.
// Recomputing twice without new sessions writes the same row.
func (a *Aggregator) Recompute(ctx context.Context, gameID int64) (database.GameStatistics, error) {
	sessions, err := a.store.GetAllSessions(ctx, gameID)
	if err != nil {
		return database.GameStatistics{}, fmt.Errorf(
			"%w: load sessions for game %d: %w", database.ErrStorageUnavailable, gameID, err,
		)
	}
	existing, err := a.store.GetStatistics(ctx, gameID)
	if err != nil {
		return database.GameStatistics{}, fmt.Errorf(
			"%w: load statistics for game %d: %w", database.ErrStorageUnavailable, gameID, err,
		)
	}

	loc := a.location()
	stats := Summarize(gameID, sessions, loc)
	var prior []database.DailyStat
	if existing != nil {
		prior = existing.DailyStats
	}
	stats.DailyStats = MergeDailyStats(prior, stats.DailyStats, a.Today())

	if err := a.store.UpsertStatistics(ctx, &stats); err != nil {
		return database.GameStatistics{}, fmt.Errorf(
			"%w: write statistics for game %d: %w", database.ErrStorageUnavailable, gameID, err,
		)
	}

	log.Debug().
		Int64("game_id", gameID).
		Int("total_minutes", stats.TotalTimeMinutes).
		Int("sessions", stats.SessionCount).
		Msg("playtime: statistics recomputed")
	return stats, nil
}

// MergeLiveToday raises today's entry to settled plus live minutes without
// touching totals or counts. Today's entry never decreases.
func (a *Aggregator) MergeLiveToday(
	ctx context.Context,
	gameID int64,
	liveMinutes int,
) (database.GameStatistics, error) {
	sessions, err := a.store.GetAllSessions(ctx, gameID)
	if err != nil {
		return database.GameStatistics{}, fmt.Errorf(
			"%w: load sessions for game %d: %w", database.ErrStorageUnavailable, gameID, err,
		)
	}
	existing, err := a.store.GetStatistics(ctx, gameID)
	if err != nil {
		return database.GameStatistics{}, fmt.Errorf(
			"%w: load statistics for game %d: %w", database.ErrStorageUnavailable, gameID, err,
		)
	}

	var stats database.GameStatistics
	if existing != nil {
		stats = *existing
	} else {
		stats = database.GameStatistics{GameID: gameID}
	}

	today := a.Today()
	settled := dailyValue(BuildDailyStats(sessions, a.location()), today)
	live := []database.DailyStat{{Date: today, Playtime: settled + max(liveMinutes, 0)}}
	stats.DailyStats = mergeToday(stats.DailyStats, live, today)

	if err := a.store.UpsertStatistics(ctx, &stats); err != nil {
		return database.GameStatistics{}, fmt.Errorf(
			"%w: write statistics for game %d: %w", database.ErrStorageUnavailable, gameID, err,
		)
	}
	return stats, nil
}

// Summarize computes totals, count, last played and daily stats for a
// game's sessions. It does not look at any stored row.
func Summarize(gameID int64, sessions []database.GameSession, loc *time.Location) database.GameStatistics {
	stats := database.GameStatistics{
		GameID:       gameID,
		SessionCount: len(sessions),
	}
	for i := range sessions {
		s := &sessions[i]
		stats.TotalTimeMinutes += s.DurationMinutes
		if stats.LastPlayed == nil || s.EndTime > *stats.LastPlayed {
			end := s.EndTime
			stats.LastPlayed = &end
		}
	}
	stats.DailyStats = BuildDailyStats(sessions, loc)
	return stats
}

// SplitAcrossMidnight distributes duration minutes over the local dates
// between start and end, proportionally to the wall-clock seconds spent on
// each date. Shares are rounded at each midnight and the remainder goes to
// the last date, so they always sum to duration.
func SplitAcrossMidnight(start, end int64, duration int, loc *time.Location) []database.DailyStat {
	if end <= start {
		return []database.DailyStat{{Date: LocalDate(start, loc), Playtime: duration}}
	}

	shares := make([]database.DailyStat, 0, 2)
	remaining := int64(duration)
	cursor := start
	for {
		midnight := NextMidnight(cursor, loc)
		if midnight >= end {
			shares = append(shares, database.DailyStat{
				Date:     LocalDate(cursor, loc),
				Playtime: int(remaining),
			})
			return shares
		}
		share := roundDiv(remaining*(midnight-cursor), end-cursor)
		shares = append(shares, database.DailyStat{
			Date:     LocalDate(cursor, loc),
			Playtime: int(share),
		})
		remaining -= share
		cursor = midnight
	}
}

// AttributeSession returns the per-date shares of one session.
func AttributeSession(session *database.GameSession, loc *time.Location) []database.DailyStat {
	return SplitAcrossMidnight(session.StartTime, session.EndTime, session.DurationMinutes, loc)
}

// BuildDailyStats groups every session's shares by date, sorted newest
// first. Dates that end up with zero minutes are left out.
func BuildDailyStats(sessions []database.GameSession, loc *time.Location) []database.DailyStat {
	byDate := make(map[string]int)
	for i := range sessions {
		for _, share := range AttributeSession(&sessions[i], loc) {
			byDate[share.Date] += share.Playtime
		}
	}

	daily := make([]database.DailyStat, 0, len(byDate))
	for date, minutes := range byDate {
		if minutes <= 0 {
			continue
		}
		daily = append(daily, database.DailyStat{Date: date, Playtime: minutes})
	}
	database.SortDailyStats(daily)
	return daily
}

// MergeDailyStats combines a stored daily list with a recomputed one. Today
// keeps the larger of the two values because the stored entry may include
// live minutes from an unfinished session. Every other date takes the
// recomputed value, and dates only present in the stored list are dropped.
func MergeDailyStats(existing, recomputed []database.DailyStat, today string) []database.DailyStat {
	merged := make([]database.DailyStat, 0, len(recomputed)+1)
	for _, d := range recomputed {
		if d.Date == today {
			continue
		}
		merged = append(merged, d)
	}

	todayValue := max(dailyValue(existing, today), dailyValue(recomputed, today))
	if todayValue > 0 || hasDate(recomputed, today) {
		merged = append(merged, database.DailyStat{Date: today, Playtime: todayValue})
	}
	database.SortDailyStats(merged)
	return merged
}

// mergeToday keeps every stored date and raises today to the live value.
func mergeToday(existing, live []database.DailyStat, today string) []database.DailyStat {
	merged := make([]database.DailyStat, 0, len(existing)+1)
	for _, d := range existing {
		if d.Date != today {
			merged = append(merged, d)
		}
	}
	merged = append(merged, database.DailyStat{
		Date:     today,
		Playtime: max(dailyValue(existing, today), dailyValue(live, today)),
	})
	database.SortDailyStats(merged)
	return merged
}

func dailyValue(stats []database.DailyStat, date string) int {
	for _, d := range stats {
		if d.Date == date {
			return d.Playtime
		}
	}
	return 0
}

func hasDate(stats []database.DailyStat, date string) bool {
	for _, d := range stats {
		if d.Date == date {
			return true
		}
	}
	return false
}

// roundDiv is a/b rounded half up, for non-negative a and positive b.
func roundDiv(a, b int64) int64 {
	return (2*a + b) / (2 * b)
}
