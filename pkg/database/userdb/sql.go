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
	"embed"
	"fmt"

	"github.com/ReinaManager/reina-core/pkg/database"
	"github.com/rs/zerolog/log"
)

// Queries go here to keep the interface clean

//go:embed migrations/*.sql
var migrationFiles embed.FS

func sqlMigrateUp(ctx context.Context, db *sql.DB) error {
	if err := database.MigrateUp(ctx, db, migrationFiles, "migrations"); err != nil {
		return fmt.Errorf("failed to run user database migrations: %w", err)
	}
	return nil
}

//goland:noinspection SqlWithoutWhere
func sqlTruncate(ctx context.Context, db *sql.DB) error {
	sqlStmt := `
	delete from GameSessions;
	delete from GameStatistics;
	vacuum;
	`
	_, err := db.ExecContext(ctx, sqlStmt)
	if err != nil {
		return fmt.Errorf("failed to truncate database: %w", err)
	}
	return nil
}

func sqlVacuum(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `vacuum;`)
	if err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	return nil
}

func closeStmt(stmt *sql.Stmt) {
	if closeErr := stmt.Close(); closeErr != nil {
		log.Warn().Err(closeErr).Msg("failed to close sql statement")
	}
}

func closeRows(rows *sql.Rows) {
	if closeErr := rows.Close(); closeErr != nil {
		log.Warn().Err(closeErr).Msg("failed to close sql rows")
	}
}
