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
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/ReinaManager/reina-core/pkg/helpers/syncutil"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
)

// goose keeps its filesystem, dialect and logger in package globals.
var migrationMutex syncutil.Mutex

// gooseZerologAdapter sends goose output to zerolog instead of stdout.
type gooseZerologAdapter struct{}

func (*gooseZerologAdapter) Printf(format string, v ...any) {
	log.Info().Msgf(format, v...)
}

func (*gooseZerologAdapter) Fatalf(format string, v ...any) {
	log.Fatal().Msgf(format, v...)
}

// MigrateUp applies every pending migration in migrationDir of the
// embedded filesystem.
func MigrateUp(ctx context.Context, db *sql.DB, migrationFiles embed.FS, migrationDir string) error {
	migrationMutex.Lock()
	defer migrationMutex.Unlock()

	goose.SetLogger(&gooseZerologAdapter{})
	goose.SetBaseFS(migrationFiles)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("error setting goose dialect: %w", err)
	}

	log.Debug().Str("migration_dir", migrationDir).Msg("running goose up migrations")
	if err := goose.UpContext(ctx, db, migrationDir); err != nil {
		return fmt.Errorf("error running migrations up: %w", err)
	}

	return nil
}

// MigrationVersion reports the currently applied schema version.
func MigrationVersion(ctx context.Context, db *sql.DB, migrationFiles embed.FS) (int64, error) {
	migrationMutex.Lock()
	defer migrationMutex.Unlock()

	goose.SetBaseFS(migrationFiles)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return 0, fmt.Errorf("error setting goose dialect: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("error reading migration version: %w", err)
	}
	return version, nil
}
