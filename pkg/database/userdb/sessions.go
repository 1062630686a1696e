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
	"fmt"

	"github.com/ReinaManager/reina-core/pkg/database"
)

const (
	DefaultSessionsLimit = 10
	MaxSessionsLimit     = 100
)

func sqlAddSession(ctx context.Context, db *sql.DB, session *database.GameSession) (int64, error) {
	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO GameSessions(
			GameID, StartTime, EndTime, DurationMinutes, Date
		) VALUES (?, ?, ?, ?, ?);
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare session insert statement: %w", err)
	}
	defer closeStmt(stmt)

	result, err := stmt.ExecContext(ctx,
		session.GameID,
		session.StartTime,
		session.EndTime,
		session.DurationMinutes,
		session.Date,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to execute session insert: %w", err)
	}

	dbid, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	return dbid, nil
}

func sqlGetSessions(
	ctx context.Context,
	db *sql.DB,
	gameID int64,
	limit, offset int,
) ([]database.GameSession, error) {
	if limit <= 0 {
		limit = DefaultSessionsLimit
	}
	if limit > MaxSessionsLimit {
		limit = MaxSessionsLimit
	}
	if offset < 0 {
		offset = 0
	}

	stmt, err := db.PrepareContext(ctx, `
		SELECT DBID, GameID, StartTime, EndTime, DurationMinutes, Date
		FROM GameSessions
		WHERE GameID = ?
		ORDER BY StartTime DESC, DBID DESC
		LIMIT ? OFFSET ?;
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare sessions query: %w", err)
	}
	defer closeStmt(stmt)

	rows, err := stmt.QueryContext(ctx, gameID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer closeRows(rows)

	return scanSessions(rows, limit)
}

func sqlGetAllSessions(ctx context.Context, db *sql.DB, gameID int64) ([]database.GameSession, error) {
	stmt, err := db.PrepareContext(ctx, `
		SELECT DBID, GameID, StartTime, EndTime, DurationMinutes, Date
		FROM GameSessions
		WHERE GameID = ?
		ORDER BY StartTime ASC, DBID ASC;
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare all sessions query: %w", err)
	}
	defer closeStmt(stmt)

	rows, err := stmt.QueryContext(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query all sessions: %w", err)
	}
	defer closeRows(rows)

	return scanSessions(rows, 0)
}

func scanSessions(rows *sql.Rows, capacity int) ([]database.GameSession, error) {
	list := make([]database.GameSession, 0, capacity)
	for rows.Next() {
		var s database.GameSession
		if err := rows.Scan(
			&s.ID,
			&s.GameID,
			&s.StartTime,
			&s.EndTime,
			&s.DurationMinutes,
			&s.Date,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating session rows: %w", err)
	}
	return list, nil
}

func sqlDeleteGameData(ctx context.Context, db *sql.DB, gameID int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer func() {
		// no-op after a successful commit
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM GameSessions WHERE GameID = ?;`, gameID); err != nil {
		return fmt.Errorf("failed to delete game sessions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM GameStatistics WHERE GameID = ?;`, gameID); err != nil {
		return fmt.Errorf("failed to delete game statistics: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete transaction: %w", err)
	}
	return nil
}
