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

package helpers

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/ReinaManager/reina-core/pkg/database/boltdb"
	"github.com/ReinaManager/reina-core/pkg/database/userdb"
	_ "github.com/mattn/go-sqlite3"
)

// NewInMemoryUserDB returns a migrated SQLite store in a temp file, which
// survives connection close and reopen unlike a :memory: database.
func NewInMemoryUserDB(t *testing.T) (db *userdb.UserDB, cleanup func()) {
	t.Helper()

	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "userdb_test.db")

	sqlDB, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	db = &userdb.UserDB{}
	err = db.SetSQLForTesting(ctx, sqlDB)
	if err != nil {
		if closeErr := sqlDB.Close(); closeErr != nil {
			t.Errorf("Failed to close SQL database after setup error: %v", closeErr)
		}
		t.Fatalf("Failed to set up UserDB for testing: %v", err)
	}

	cleanup = func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close UserDB: %v", err)
		}
	}

	return db, cleanup
}

// NewTempBoltDB returns a bbolt store in a temp dir, closed on test cleanup.
func NewTempBoltDB(t *testing.T) *boltdb.BoltDB {
	t.Helper()

	db, err := boltdb.OpenBoltDB(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open bolt database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close BoltDB: %v", err)
		}
	})
	return db
}
