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

// Package userdb is the SQLite session store.
package userdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ReinaManager/reina-core/pkg/config"
	"github.com/ReinaManager/reina-core/pkg/database"
	_ "github.com/mattn/go-sqlite3"
)

var ErrNullSQL = errors.New("UserDB is not connected")

const sqliteConnParams = "?_journal_mode=WAL&_synchronous=FULL&_busy_timeout=5000"

type UserDB struct {
	sql  *sql.DB
	path string
}

var _ database.PlaytimeDBI = (*UserDB)(nil)

// OpenUserDB opens (creating if needed) dataDir/playtime.db and brings its
// schema up to date.
func OpenUserDB(ctx context.Context, dataDir string) (*UserDB, error) {
	db := &UserDB{path: filepath.Join(dataDir, config.UserDbFile)}
	if err := db.Open(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

func (db *UserDB) Open(ctx context.Context) error {
	if _, err := os.Stat(db.path); err != nil {
		if mkdirErr := os.MkdirAll(filepath.Dir(db.path), 0o750); mkdirErr != nil {
			return fmt.Errorf("failed to create directory for database: %w", mkdirErr)
		}
	}
	sqlInstance, err := sql.Open("sqlite3", db.path+sqliteConnParams)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// one local writer; serialising connections avoids SQLITE_BUSY churn
	sqlInstance.SetMaxOpenConns(1)
	db.sql = sqlInstance
	return db.MigrateUp(ctx)
}

func (db *UserDB) GetDBPath() string {
	return db.path
}

func (db *UserDB) UnsafeGetSQLDb() *sql.DB {
	return db.sql
}

func (db *UserDB) MigrateUp(ctx context.Context) error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlMigrateUp(ctx, db.sql)
}

func (db *UserDB) Truncate(ctx context.Context) error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlTruncate(ctx, db.sql)
}

func (db *UserDB) Vacuum(ctx context.Context) error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlVacuum(ctx, db.sql)
}

func (db *UserDB) Close() error {
	if db.sql == nil {
		return nil
	}
	err := db.sql.Close()
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// SetSQLForTesting injects a sql.DB and applies the schema. Tests only.
func (db *UserDB) SetSQLForTesting(ctx context.Context, sqlDB *sql.DB) error {
	db.sql = sqlDB
	return db.MigrateUp(ctx)
}

func (db *UserDB) AddSession(ctx context.Context, session *database.GameSession) (int64, error) {
	if db.sql == nil {
		return 0, ErrNullSQL
	}
	return sqlAddSession(ctx, db.sql, session)
}

func (db *UserDB) GetSessions(ctx context.Context, gameID int64, limit, offset int) ([]database.GameSession, error) {
	if db.sql == nil {
		return nil, ErrNullSQL
	}
	return sqlGetSessions(ctx, db.sql, gameID, limit, offset)
}

func (db *UserDB) GetAllSessions(ctx context.Context, gameID int64) ([]database.GameSession, error) {
	if db.sql == nil {
		return nil, ErrNullSQL
	}
	return sqlGetAllSessions(ctx, db.sql, gameID)
}

func (db *UserDB) GetStatistics(ctx context.Context, gameID int64) (*database.GameStatistics, error) {
	if db.sql == nil {
		return nil, ErrNullSQL
	}
	return sqlGetStatistics(ctx, db.sql, gameID)
}

func (db *UserDB) UpsertStatistics(ctx context.Context, stats *database.GameStatistics) error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlUpsertStatistics(ctx, db.sql, stats)
}

func (db *UserDB) EnsureStatistics(ctx context.Context, gameID int64) error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlEnsureStatistics(ctx, db.sql, gameID)
}

func (db *UserDB) ListGameIDs(ctx context.Context) ([]int64, error) {
	if db.sql == nil {
		return nil, ErrNullSQL
	}
	return sqlListGameIDs(ctx, db.sql)
}

func (db *UserDB) DeleteGameData(ctx context.Context, gameID int64) error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlDeleteGameData(ctx, db.sql, gameID)
}
