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
	"fmt"

	"github.com/ReinaManager/reina-core/pkg/api/models"
	"github.com/ReinaManager/reina-core/pkg/api/models/requests"
	"github.com/ReinaManager/reina-core/pkg/api/validation"
	"github.com/rs/zerolog/log"
)

//nolint:gocritic // single-use parameter in API handler
func HandleSettings(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received settings request")

	return models.SettingsResponse{
		Heartbeat:       env.Config.HeartbeatInterval().String(),
		UpdateInterval:  env.Config.UpdateInterval().String(),
		Timezone:        env.Config.Location().String(),
		DatabaseBackend: env.Config.DatabaseBackend(),
		DebugLogging:    env.Config.DebugLogging(),
		ErrorReporting:  env.Config.ErrorReporting(),
	}, nil
}

// HandleSettingsUpdate applies the given fields and writes the config
// file. An empty heartbeat or timezone string restores the default.
//
//nolint:gocritic // single-use parameter in API handler
func HandleSettingsUpdate(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received settings update request")

	var params models.SettingsUpdateParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	if params.DebugLogging != nil {
		log.Info().Bool("debugLogging", *params.DebugLogging).Msg("update")
		env.Config.SetDebugLogging(*params.DebugLogging)
	}

	if params.ErrorReporting != nil {
		log.Info().Bool("errorReporting", *params.ErrorReporting).Msg("update")
		env.Config.SetErrorReporting(*params.ErrorReporting)
	}

	if params.Heartbeat != nil {
		log.Info().Str("heartbeat", *params.Heartbeat).Msg("update")
		heartbeat := params.Heartbeat
		if *heartbeat == "" {
			heartbeat = nil
		}
		if err := env.Config.SetHeartbeatInterval(heartbeat); err != nil {
			return nil, fmt.Errorf("%w: %w", validation.ErrInvalidParams, err)
		}
	}

	if params.Timezone != nil {
		log.Info().Str("timezone", *params.Timezone).Msg("update")
		if err := env.Config.SetTimezone(*params.Timezone); err != nil {
			return nil, fmt.Errorf("%w: %w", validation.ErrInvalidParams, err)
		}
	}

	if err := env.Config.Save(); err != nil {
		log.Error().Err(err).Msg("error saving settings")
		return nil, errors.New("error saving settings")
	}

	return NoContent{}, nil
}
