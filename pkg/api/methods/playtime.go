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

package methods

import (
	"errors"

	"github.com/ReinaManager/reina-core/pkg/api/models"
	"github.com/ReinaManager/reina-core/pkg/api/models/requests"
	"github.com/ReinaManager/reina-core/pkg/api/validation"
	"github.com/ReinaManager/reina-core/pkg/service/playtime"
	"github.com/rs/zerolog/log"
)

var ErrTrackerUnavailable = errors.New("play time tracker is not running")

// HandleLaunch reports launch failures in the result rather than as a
// request error, so clients always get {success, message}.
//
//nolint:gocritic // single-use parameter in API handler
func HandleLaunch(env requests.RequestEnv) (any, error) {
	var params models.LaunchParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}
	if env.Tracker == nil {
		return nil, ErrTrackerUnavailable
	}

	log.Info().Int64("game_id", params.GameID).Msg("received launch request")

	res, err := env.Tracker.LaunchGame(env.Ctx, params.Path, params.GameID, params.Args)
	if err != nil {
		log.Warn().Err(err).Int64("game_id", params.GameID).Msg("launch request failed")
	}

	return models.LaunchResponse{
		Success:   res.Success,
		Message:   res.Message,
		ProcessID: res.ProcessID,
	}, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandlePlaytimeRunning(env requests.RequestEnv) (any, error) {
	var params models.RunningParams
	if err := validation.UnmarshalOptional(env.Params, &params); err != nil {
		return nil, err
	}
	if env.Tracker == nil {
		return nil, ErrTrackerUnavailable
	}

	games := make([]models.RunningGame, 0)
	for _, st := range env.Tracker.RunningGames() {
		if params.GameID != nil && st.GameID != *params.GameID {
			continue
		}
		games = append(games, models.RunningGame{
			ProcessID:             st.ProcessID,
			GameID:                st.GameID,
			StartTime:             st.StartTime,
			CurrentSessionSeconds: st.CurrentSessionSeconds,
		})
	}

	return models.RunningResponse{
		Running: len(games) > 0,
		Games:   games,
	}, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandlePlaytimeClear(env requests.RequestEnv) (any, error) {
	if env.Tracker == nil {
		return nil, ErrTrackerUnavailable
	}
	log.Info().Msg("received clear active game request")
	env.Tracker.ClearActiveGame()
	return NoContent{}, nil
}

// HandlePlaytimeStatistics returns the stored statistics row, or null for
// a game that has never been played.
//
//nolint:gocritic // single-use parameter in API handler
func HandlePlaytimeStatistics(env requests.RequestEnv) (any, error) {
	var params models.GameParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}
	stats := env.Query.Statistics(env.Ctx, params.GameID)
	if stats == nil {
		return nil, nil //nolint:nilnil // null result for an unplayed game
	}
	return stats, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandlePlaytimeSessions(env requests.RequestEnv) (any, error) {
	var params models.SessionsParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	limit, offset := 0, 0
	if params.Limit != nil {
		limit = *params.Limit
	}
	if params.Offset != nil {
		offset = *params.Offset
	}

	return env.Query.Sessions(env.Ctx, params.GameID, limit, offset), nil
}

//nolint:gocritic // single-use parameter in API handler
func HandlePlaytimeStats(env requests.RequestEnv) (any, error) {
	var params models.StatsParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}
	return env.Query.FormattedStats(env.Ctx, params.GameID, params.Refresh), nil
}

//nolint:gocritic // single-use parameter in API handler
func HandlePlaytimeSummary(env requests.RequestEnv) (any, error) {
	total := env.Query.TotalPlayTime(env.Ctx)
	week := env.Query.WeekPlayTime(env.Ctx)
	today := env.Query.TodayPlayTime(env.Ctx)

	return models.SummaryResponse{
		TotalMinutes: total,
		WeekMinutes:  week,
		TodayMinutes: today,
		Total:        playtime.FormatPlayTime(total),
		Week:         playtime.FormatPlayTime(week),
		Today:        playtime.FormatPlayTime(today),
	}, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandlePlaytimeRefresh(env requests.RequestEnv) (any, error) {
	var params models.GameParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}
	if env.Tracker == nil {
		return nil, ErrTrackerUnavailable
	}
	log.Info().Int64("game_id", params.GameID).Msg("received statistics refresh request")
	return env.Tracker.Refresh(env.Ctx, params.GameID)
}

//nolint:gocritic // single-use parameter in API handler
func HandlePlaytimeExport(env requests.RequestEnv) (any, error) {
	var params models.GameParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}
	csv, err := env.Query.ExportCSV(env.Ctx, params.GameID)
	if err != nil {
		return nil, err
	}
	return models.ExportResponse{CSV: csv}, nil
}
