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
	"github.com/gocarina/gocsv"
)

// Field order is the column order.
//
//nolint:govet // fieldalignment
type sessionRow struct {
	ID              int64  `csv:"id"`
	GameID          int64  `csv:"game_id"`
	Date            string `csv:"date"`
	StartTime       string `csv:"start_time"`
	EndTime         string `csv:"end_time"`
	DurationMinutes int    `csv:"duration_minutes"`
}

// ExportCSV renders every session of a game, oldest first, as CSV with
// RFC 3339 timestamps in the configured time zone.
func (q *Query) ExportCSV(ctx context.Context, gameID int64) (string, error) {
	sessions, err := q.store.GetAllSessions(ctx, gameID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", database.ErrStorageUnavailable, err)
	}

	loc := orLocal(q.location())
	rows := make([]*sessionRow, 0, len(sessions))
	for i := range sessions {
		s := &sessions[i]
		rows = append(rows, &sessionRow{
			ID:              s.ID,
			GameID:          s.GameID,
			Date:            s.Date,
			StartTime:       time.Unix(s.StartTime, 0).In(loc).Format(time.RFC3339),
			EndTime:         time.Unix(s.EndTime, 0).In(loc).Format(time.RFC3339),
			DurationMinutes: s.DurationMinutes,
		})
	}

	out, err := gocsv.MarshalString(&rows)
	if err != nil {
		return "", fmt.Errorf("marshal sessions csv: %w", err)
	}
	return out, nil
}
