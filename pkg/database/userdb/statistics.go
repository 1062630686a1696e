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

package userdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ReinaManager/reina-core/pkg/database"
)

func sqlGetStatistics(ctx context.Context, db *sql.DB, gameID int64) (*database.GameStatistics, error) {
	stmt, err := db.PrepareContext(ctx, `
		SELECT GameID, TotalTimeMinutes, SessionCount, LastPlayed, DailyStats
		FROM GameStatistics
		WHERE GameID = ?;
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statistics query: %w", err)
	}
	defer closeStmt(stmt)

	var (
		stats      database.GameStatistics
		lastPlayed sql.NullInt64
		blob       sql.NullString
	)
	err = stmt.QueryRowContext(ctx, gameID).Scan(
		&stats.GameID,
		&stats.TotalTimeMinutes,
		&stats.SessionCount,
		&lastPlayed,
		&blob,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // absent row is not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan statistics row: %w", err)
	}

	if lastPlayed.Valid {
		v := lastPlayed.Int64
		stats.LastPlayed = &v
	}
	stats.DailyStats = database.DecodeDailyStats(blob.String)

	return &stats, nil
}

func sqlUpsertStatistics(ctx context.Context, db *sql.DB, stats *database.GameStatistics) error {
	blob, err := database.EncodeDailyStats(stats.DailyStats)
	if err != nil {
		return err
	}

	stmt, err := db.PrepareContext(ctx, `
		INSERT OR REPLACE INTO GameStatistics(
			GameID, TotalTimeMinutes, SessionCount, LastPlayed, DailyStats
		) VALUES (?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statistics upsert statement: %w", err)
	}
	defer closeStmt(stmt)

	var lastPlayed any
	if stats.LastPlayed != nil {
		lastPlayed = *stats.LastPlayed
	}

	_, err = stmt.ExecContext(ctx,
		stats.GameID,
		stats.TotalTimeMinutes,
		stats.SessionCount,
		lastPlayed,
		blob,
	)
	if err != nil {
		return fmt.Errorf("failed to execute statistics upsert: %w", err)
	}
	return nil
}

func sqlEnsureStatistics(ctx context.Context, db *sql.DB, gameID int64) error {
	stmt, err := db.PrepareContext(ctx, `
		INSERT OR IGNORE INTO GameStatistics(
			GameID, TotalTimeMinutes, SessionCount, LastPlayed, DailyStats
		) VALUES (?, 0, 0, NULL, '[]');
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statistics ensure statement: %w", err)
	}
	defer closeStmt(stmt)

	if _, err := stmt.ExecContext(ctx, gameID); err != nil {
		return fmt.Errorf("failed to execute statistics ensure: %w", err)
	}
	return nil
}

func sqlListGameIDs(ctx context.Context, db *sql.DB) ([]int64, error) {
	rows, err := db.QueryContext(ctx, `SELECT GameID FROM GameStatistics ORDER BY GameID;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query game ids: %w", err)
	}
	defer closeRows(rows)

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan game id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating game ids: %w", err)
	}
	return ids, nil
}
