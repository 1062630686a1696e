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

package notifications

import (
	"encoding/json"

	"github.com/ReinaManager/reina-core/pkg/api/models"
	"github.com/rs/zerolog/log"
)

// sendNotification never blocks the caller. A full channel drops the
// notification rather than stalling event processing.
func sendNotification(ns chan<- models.Notification, method string, payload any) {
	if ns == nil {
		return
	}

	var params json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			log.Error().Err(err).Str("method", method).Msg("error marshalling notification params")
			return
		}
		params = data
	}

	select {
	case ns <- models.Notification{Method: method, Params: params}:
	default:
		log.Warn().Str("method", method).Msg("notification channel full, dropping notification")
	}
}

func SessionStarted(ns chan<- models.Notification, payload models.SessionStartedNotification) {
	sendNotification(ns, models.NotificationSessionStarted, payload)
}

func SessionUpdated(ns chan<- models.Notification, payload models.SessionUpdatedNotification) {
	sendNotification(ns, models.NotificationSessionUpdated, payload)
}

func SessionEnded(ns chan<- models.Notification, payload models.SessionEndedNotification) {
	sendNotification(ns, models.NotificationSessionEnded, payload)
}

func StatisticsUpdated(ns chan<- models.Notification, payload models.StatisticsUpdatedNotification) {
	sendNotification(ns, models.NotificationStatisticsUpdated, payload)
}

func Cleared(ns chan<- models.Notification) {
	sendNotification(ns, models.NotificationCleared, nil)
}
