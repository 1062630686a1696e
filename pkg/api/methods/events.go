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
	"github.com/ReinaManager/reina-core/pkg/api/models"
	"github.com/ReinaManager/reina-core/pkg/api/models/requests"
	"github.com/ReinaManager/reina-core/pkg/api/validation"
	"github.com/ReinaManager/reina-core/pkg/service/playtime"
)

// The events.* methods let an external monitor report session events in
// place of the built-in process monitor.

//nolint:gocritic // single-use parameter in API handler
func HandleEventSessionStarted(env requests.RequestEnv) (any, error) {
	var params models.SessionStartedParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}
	return dispatch(env, playtime.SessionStarted{
		ProcessID: params.ProcessID,
		GameID:    params.GameID,
		StartTime: params.StartTime,
	})
}

//nolint:gocritic // single-use parameter in API handler
func HandleEventTimeUpdate(env requests.RequestEnv) (any, error) {
	var params models.TimeUpdateParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}
	return dispatch(env, playtime.TimeUpdate{
		ProcessID:      params.ProcessID,
		GameID:         params.GameID,
		ElapsedSeconds: params.ElapsedSeconds,
	})
}

//nolint:gocritic // single-use parameter in API handler
func HandleEventSessionEnded(env requests.RequestEnv) (any, error) {
	var params models.SessionEndedParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}
	return dispatch(env, playtime.SessionEnded{
		ProcessID:      params.ProcessID,
		GameID:         params.GameID,
		ElapsedSeconds: params.ElapsedSeconds,
		StartTime:      params.StartTime,
		EndTime:        params.EndTime,
	})
}

//nolint:gocritic // env passed through from handler
func dispatch(env requests.RequestEnv, ev playtime.Event) (any, error) {
	if env.Tracker == nil {
		return nil, ErrTrackerUnavailable
	}
	if err := env.Tracker.Dispatch(env.Ctx, ev); err != nil {
		return nil, err
	}
	return NoContent{}, nil
}
