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

// Package helpers provides test doubles and temp stores for the playtime
// storage layer.
//
// Example usage:
//
//	store := helpers.NewMockPlaytimeDBI()
//	store.On("GetAllSessions", mock.Anything, int64(1)).
//		Return([]database.GameSession{}, nil)
//	store.On("UpsertStatistics", mock.Anything, helpers.StatisticsForGame(1)).Return(nil)
//
//	_, err := aggregator.Recompute(ctx, 1)
//	require.NoError(t, err)
//	store.AssertExpectations(t)
package helpers

import (
	"context"
	"fmt"

	"github.com/ReinaManager/reina-core/pkg/database"
	"github.com/stretchr/testify/mock"
)

// MockPlaytimeDBI is a testify mock of database.PlaytimeDBI.
type MockPlaytimeDBI struct {
	mock.Mock
}

var _ database.PlaytimeDBI = (*MockPlaytimeDBI)(nil)

func NewMockPlaytimeDBI() *MockPlaytimeDBI {
	return &MockPlaytimeDBI{}
}

func (m *MockPlaytimeDBI) AddSession(ctx context.Context, session *database.GameSession) (int64, error) {
	args := m.Called(ctx, session)
	if err := args.Error(1); err != nil {
		return 0, fmt.Errorf("mock PlaytimeDBI add session failed: %w", err)
	}
	id, _ := args.Get(0).(int64)
	return id, nil
}

func (m *MockPlaytimeDBI) GetSessions(
	ctx context.Context,
	gameID int64,
	limit, offset int,
) ([]database.GameSession, error) {
	args := m.Called(ctx, gameID, limit, offset)
	if err := args.Error(1); err != nil {
		return nil, fmt.Errorf("mock PlaytimeDBI get sessions failed: %w", err)
	}
	sessions, _ := args.Get(0).([]database.GameSession)
	return sessions, nil
}

func (m *MockPlaytimeDBI) GetAllSessions(ctx context.Context, gameID int64) ([]database.GameSession, error) {
	args := m.Called(ctx, gameID)
	if err := args.Error(1); err != nil {
		return nil, fmt.Errorf("mock PlaytimeDBI get all sessions failed: %w", err)
	}
	sessions, _ := args.Get(0).([]database.GameSession)
	return sessions, nil
}

func (m *MockPlaytimeDBI) GetStatistics(ctx context.Context, gameID int64) (*database.GameStatistics, error) {
	args := m.Called(ctx, gameID)
	if err := args.Error(1); err != nil {
		return nil, fmt.Errorf("mock PlaytimeDBI get statistics failed: %w", err)
	}
	stats, _ := args.Get(0).(*database.GameStatistics)
	return stats, nil
}

func (m *MockPlaytimeDBI) UpsertStatistics(ctx context.Context, stats *database.GameStatistics) error {
	args := m.Called(ctx, stats)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock PlaytimeDBI upsert statistics failed: %w", err)
	}
	return nil
}

func (m *MockPlaytimeDBI) EnsureStatistics(ctx context.Context, gameID int64) error {
	args := m.Called(ctx, gameID)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock PlaytimeDBI ensure statistics failed: %w", err)
	}
	return nil
}

func (m *MockPlaytimeDBI) ListGameIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if err := args.Error(1); err != nil {
		return nil, fmt.Errorf("mock PlaytimeDBI list game ids failed: %w", err)
	}
	ids, _ := args.Get(0).([]int64)
	return ids, nil
}

func (m *MockPlaytimeDBI) DeleteGameData(ctx context.Context, gameID int64) error {
	args := m.Called(ctx, gameID)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock PlaytimeDBI delete game data failed: %w", err)
	}
	return nil
}

func (m *MockPlaytimeDBI) Close() error {
	args := m.Called()
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock PlaytimeDBI close failed: %w", err)
	}
	return nil
}

// StatisticsForGame matches a *database.GameStatistics by game id.
func StatisticsForGame(gameID int64) any {
	return mock.MatchedBy(func(stats *database.GameStatistics) bool {
		return stats != nil && stats.GameID == gameID
	})
}

// SessionForGame matches a *database.GameSession by game id.
func SessionForGame(gameID int64) any {
	return mock.MatchedBy(func(session *database.GameSession) bool {
		return session != nil && session.GameID == gameID
	})
}
