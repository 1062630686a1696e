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

package requests

import (
	"context"
	"encoding/json"

	"github.com/ReinaManager/reina-core/pkg/config"
	"github.com/ReinaManager/reina-core/pkg/service/playtime"
	"github.com/google/uuid"
)

type RequestEnv struct {
	Ctx     context.Context
	Config  *config.Instance
	Tracker *playtime.Tracker
	Query   *playtime.Query
	Params  json.RawMessage
	ID      uuid.UUID
	IsLocal bool
}
