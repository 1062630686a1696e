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
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Catalog lists the games that roll-ups cover.
type Catalog interface {
	GameIDs(ctx context.Context) ([]int64, error)
}

// StoreCatalog lists every game with a statistics row.
type StoreCatalog struct {
	Store database.PlaytimeDBI
}

func (c StoreCatalog) GameIDs(ctx context.Context) ([]int64, error) {
	ids, err := c.Store.ListGameIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list game ids: %w", err)
	}
	return ids, nil
}

// FormattedStats is a display-ready summary of one game.
type FormattedStats struct {
	LastPlayed    *int64               `json:"lastPlayed"`
	TotalPlayTime string               `json:"totalPlayTime"`
	TodayPlayTime string               `json:"todayPlayTime"`
	DailyStats    []database.DailyStat `json:"dailyStats"`
	TotalMinutes  int                  `json:"totalMinutes"`
	TodayMinutes  int                  `json:"todayMinutes"`
	SessionCount  int                  `json:"sessionCount"`
}

type cachedStats struct {
	date  string
	stats FormattedStats
}

type QueryOptions struct {
	Catalog   Catalog
	Clock     clockwork.Clock
	Location  LocationFunc
	CacheSize int
}

// Query answers read-only questions over the stored statistics. Roll-ups
// and formatted getters log storage errors and return zero values.
type Query struct {
	store    database.PlaytimeDBI
	catalog  Catalog
	clock    clockwork.Clock
	location LocationFunc
	cache    *lru.Cache[int64, cachedStats]
}

func NewQuery(store database.PlaytimeDBI, opts QueryOptions) (*Query, error) {
	if opts.Catalog == nil {
		opts.Catalog = StoreCatalog{Store: store}
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Location == nil {
		opts.Location = func() *time.Location { return time.Local }
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 128
	}

	cache, err := lru.New[int64, cachedStats](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create stats cache: %w", err)
	}

	return &Query{
		store:    store,
		catalog:  opts.Catalog,
		clock:    opts.Clock,
		location: opts.Location,
		cache:    cache,
	}, nil
}

// Invalidate drops the cached formatted stats of a game.
func (q *Query) Invalidate(gameID int64) {
	q.cache.Remove(gameID)
}

// Purge drops every cached entry.
func (q *Query) Purge() {
	q.cache.Purge()
}

func (q *Query) now() time.Time {
	return q.clock.Now().In(q.location())
}

func (q *Query) allStatistics(ctx context.Context) []database.GameStatistics {
	ids, err := q.catalog.GameIDs(ctx)
	if err != nil {
		log.Error().Err(err).Msg("playtime: failed to list games")
		return nil
	}

	all := make([]database.GameStatistics, 0, len(ids))
	for _, id := range ids {
		stats, err := q.store.GetStatistics(ctx, id)
		if err != nil {
			log.Error().Err(err).Int64("game_id", id).Msg("playtime: failed to read statistics")
			continue
		}
		if stats != nil {
			all = append(all, *stats)
		}
	}
	return all
}

// TotalPlayTime sums the total minutes of every game.
func (q *Query) TotalPlayTime(ctx context.Context) int {
	total := 0
	for _, stats := range q.allStatistics(ctx) {
		total += stats.TotalTimeMinutes
	}
	return total
}

// WeekPlayTime sums the daily minutes of every game from Sunday to
// Saturday of the current week.
func (q *Query) WeekPlayTime(ctx context.Context) int {
	first, last := WeekRange(q.now())
	total := 0
	for _, stats := range q.allStatistics(ctx) {
		for _, d := range stats.DailyStats {
			if d.Date >= first && d.Date <= last {
				total += d.Playtime
			}
		}
	}
	return total
}

// TodayPlayTime sums today's daily minutes of every game.
func (q *Query) TodayPlayTime(ctx context.Context) int {
	today := q.now().Format(dateLayout)
	total := 0
	for _, stats := range q.allStatistics(ctx) {
		total += dailyValue(stats.DailyStats, today)
	}
	return total
}

// Statistics returns the stored row of a game, or nil if it has none or
// the store can't be read.
func (q *Query) Statistics(ctx context.Context, gameID int64) *database.GameStatistics {
	stats, err := q.store.GetStatistics(ctx, gameID)
	if err != nil {
		log.Error().Err(err).Int64("game_id", gameID).Msg("playtime: failed to read statistics")
		return nil
	}
	return stats
}

// Sessions returns a page of a game's sessions, most recent first. A
// storage error gives an empty page.
func (q *Query) Sessions(ctx context.Context, gameID int64, limit, offset int) []database.GameSession {
	sessions, err := q.store.GetSessions(ctx, gameID, limit, offset)
	if err != nil {
		log.Error().Err(err).Int64("game_id", gameID).Msg("playtime: failed to read sessions")
		return []database.GameSession{}
	}
	if sessions == nil {
		return []database.GameSession{}
	}
	return sessions
}

// TodayMinutes returns today's minutes for one game.
func (q *Query) TodayMinutes(ctx context.Context, gameID int64) int {
	stats, err := q.store.GetStatistics(ctx, gameID)
	if err != nil {
		log.Error().Err(err).Int64("game_id", gameID).Msg("playtime: failed to read statistics")
		return 0
	}
	if stats == nil {
		return 0
	}
	return dailyValue(stats.DailyStats, q.now().Format(dateLayout))
}

// FormattedStats returns the display summary of a game, from the cache
// unless refresh is set or the cached entry is from another day.
func (q *Query) FormattedStats(ctx context.Context, gameID int64, refresh bool) FormattedStats {
	today := q.now().Format(dateLayout)
	if !refresh {
		if cached, ok := q.cache.Get(gameID); ok && cached.date == today {
			return cached.stats
		}
	}

	stats, err := q.store.GetStatistics(ctx, gameID)
	if err != nil {
		log.Error().Err(err).Int64("game_id", gameID).Msg("playtime: failed to read statistics")
		return formatStats(nil, today)
	}

	formatted := formatStats(stats, today)
	q.cache.Add(gameID, cachedStats{date: today, stats: formatted})
	return formatted
}

func formatStats(stats *database.GameStatistics, today string) FormattedStats {
	if stats == nil {
		return FormattedStats{
			TotalPlayTime: FormatPlayTime(0),
			TodayPlayTime: FormatPlayTime(0),
			DailyStats:    []database.DailyStat{},
		}
	}

	todayMinutes := dailyValue(stats.DailyStats, today)
	daily := stats.DailyStats
	if daily == nil {
		daily = []database.DailyStat{}
	}
	return FormattedStats{
		TotalPlayTime: FormatPlayTime(stats.TotalTimeMinutes),
		TotalMinutes:  stats.TotalTimeMinutes,
		TodayPlayTime: FormatPlayTime(todayMinutes),
		TodayMinutes:  todayMinutes,
		SessionCount:  stats.SessionCount,
		LastPlayed:    stats.LastPlayed,
		DailyStats:    daily,
	}
}
