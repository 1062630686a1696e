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

// Package boltdb is a session store on bbolt for hosts where cgo (and so
// go-sqlite3) is unavailable.
package boltdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/ReinaManager/reina-core/pkg/config"
	"github.com/ReinaManager/reina-core/pkg/database"
	"go.etcd.io/bbolt"
)

const (
	bucketSessions   = "sessions"
	bucketStatistics = "statistics"
)

var ErrBucketMissing = errors.New("bolt bucket missing")

// statisticsRecord mirrors the SQLite row, keeping daily stats in the same
// blob encoding.
type statisticsRecord struct {
	LastPlayed       *int64 `json:"lastPlayed"`
	DailyStats       string `json:"dailyStats"`
	GameID           int64  `json:"gameId"`
	TotalTimeMinutes int    `json:"totalTime"`
	SessionCount     int    `json:"sessionCount"`
}

type BoltDB struct {
	db *bbolt.DB
}

var _ database.PlaytimeDBI = (*BoltDB)(nil)

// OpenBoltDB opens dataDir/playtime.bolt, creating the buckets on first use.
func OpenBoltDB(dataDir string) (*BoltDB, error) {
	path := filepath.Join(dataDir, config.BoltDbFile)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create directory for database: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{bucketSessions, bucketStatistics} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &BoltDB{db: db}, nil
}

func (b *BoltDB) Close() error {
	if err := b.db.Close(); err != nil {
		return fmt.Errorf("close bolt db: %w", err)
	}
	return nil
}

func itob(v int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(v)) //nolint:gosec // ids are positive
	return buf
}

func btoi(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b)) //nolint:gosec // ids are positive
}

func (b *BoltDB) AddSession(ctx context.Context, session *database.GameSession) (int64, error) {
	if session.EndTime <= session.StartTime {
		return 0, fmt.Errorf("session end %d is not after start %d", session.EndTime, session.StartTime)
	}

	var id int64
	err := b.db.Update(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		root := tx.Bucket([]byte(bucketSessions))
		if root == nil {
			return ErrBucketMissing
		}
		seq, err := root.NextSequence()
		if err != nil {
			return fmt.Errorf("next session id: %w", err)
		}
		id = int64(seq) //nolint:gosec // sequence fits
		games, err := root.CreateBucketIfNotExists(itob(session.GameID))
		if err != nil {
			return fmt.Errorf("create game bucket: %w", err)
		}

		stored := *session
		stored.ID = id
		data, err := json.Marshal(stored)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		return games.Put(itob(id), data)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to add session: %w", err)
	}
	return id, nil
}

func (b *BoltDB) readSessions(ctx context.Context, gameID int64) ([]database.GameSession, error) {
	list := make([]database.GameSession, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		root := tx.Bucket([]byte(bucketSessions))
		if root == nil {
			return ErrBucketMissing
		}
		games := root.Bucket(itob(gameID))
		if games == nil {
			return nil
		}
		return games.ForEach(func(_, v []byte) error {
			var s database.GameSession
			if err := json.Unmarshal(v, &s); err != nil {
				return fmt.Errorf("unmarshal session: %w", err)
			}
			list = append(list, s)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}
	return list, nil
}

func (b *BoltDB) GetAllSessions(ctx context.Context, gameID int64) ([]database.GameSession, error) {
	list, err := b.readSessions(ctx, gameID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].StartTime == list[j].StartTime {
			return list[i].ID < list[j].ID
		}
		return list[i].StartTime < list[j].StartTime
	})
	return list, nil
}

func (b *BoltDB) GetSessions(
	ctx context.Context,
	gameID int64,
	limit, offset int,
) ([]database.GameSession, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	list, err := b.readSessions(ctx, gameID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].StartTime == list[j].StartTime {
			return list[i].ID > list[j].ID
		}
		return list[i].StartTime > list[j].StartTime
	})

	if offset >= len(list) {
		return []database.GameSession{}, nil
	}
	end := min(offset+limit, len(list))
	return list[offset:end], nil
}

func (b *BoltDB) GetStatistics(ctx context.Context, gameID int64) (*database.GameStatistics, error) {
	var stats *database.GameStatistics
	err := b.db.View(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		bucket := tx.Bucket([]byte(bucketStatistics))
		if bucket == nil {
			return ErrBucketMissing
		}
		data := bucket.Get(itob(gameID))
		if data == nil {
			return nil
		}
		var rec statisticsRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("unmarshal statistics: %w", err)
		}
		stats = &database.GameStatistics{
			GameID:           rec.GameID,
			TotalTimeMinutes: rec.TotalTimeMinutes,
			SessionCount:     rec.SessionCount,
			LastPlayed:       rec.LastPlayed,
			DailyStats:       database.DecodeDailyStats(rec.DailyStats),
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read statistics: %w", err)
	}
	return stats, nil
}

func putStatistics(bucket *bbolt.Bucket, stats *database.GameStatistics) error {
	blob, err := database.EncodeDailyStats(stats.DailyStats)
	if err != nil {
		return err
	}
	data, err := json.Marshal(statisticsRecord{
		GameID:           stats.GameID,
		TotalTimeMinutes: stats.TotalTimeMinutes,
		SessionCount:     stats.SessionCount,
		LastPlayed:       stats.LastPlayed,
		DailyStats:       blob,
	})
	if err != nil {
		return fmt.Errorf("marshal statistics: %w", err)
	}
	return bucket.Put(itob(stats.GameID), data)
}

func (b *BoltDB) UpsertStatistics(ctx context.Context, stats *database.GameStatistics) error {
	err := b.db.Update(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		bucket := tx.Bucket([]byte(bucketStatistics))
		if bucket == nil {
			return ErrBucketMissing
		}
		return putStatistics(bucket, stats)
	})
	if err != nil {
		return fmt.Errorf("failed to upsert statistics: %w", err)
	}
	return nil
}

func (b *BoltDB) EnsureStatistics(ctx context.Context, gameID int64) error {
	err := b.db.Update(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		bucket := tx.Bucket([]byte(bucketStatistics))
		if bucket == nil {
			return ErrBucketMissing
		}
		if bucket.Get(itob(gameID)) != nil {
			return nil
		}
		return putStatistics(bucket, &database.GameStatistics{GameID: gameID})
	})
	if err != nil {
		return fmt.Errorf("failed to ensure statistics: %w", err)
	}
	return nil
}

func (b *BoltDB) ListGameIDs(ctx context.Context) ([]int64, error) {
	ids := make([]int64, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		bucket := tx.Bucket([]byte(bucketStatistics))
		if bucket == nil {
			return ErrBucketMissing
		}
		// big-endian keys iterate in numeric order
		return bucket.ForEach(func(k, _ []byte) error {
			ids = append(ids, btoi(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list game ids: %w", err)
	}
	return ids, nil
}

func (b *BoltDB) DeleteGameData(ctx context.Context, gameID int64) error {
	err := b.db.Update(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		sessions := tx.Bucket([]byte(bucketSessions))
		stats := tx.Bucket([]byte(bucketStatistics))
		if sessions == nil || stats == nil {
			return ErrBucketMissing
		}
		if sessions.Bucket(itob(gameID)) != nil {
			if err := sessions.DeleteBucket(itob(gameID)); err != nil {
				return fmt.Errorf("delete game sessions: %w", err)
			}
		}
		return stats.Delete(itob(gameID))
	})
	if err != nil {
		return fmt.Errorf("failed to delete game data: %w", err)
	}
	return nil
}
