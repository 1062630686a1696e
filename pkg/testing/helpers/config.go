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
	"testing"

	"github.com/ReinaManager/reina-core/pkg/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// NewTestConfig returns a config instance backed by an in-memory
// filesystem, seeded with vals.
//
//nolint:gocritic // config values copied like config.NewConfig
func NewTestConfig(t *testing.T, vals config.Values) *config.Instance {
	t.Helper()
	vals.ConfigSchema = config.SchemaVersion
	cfg, err := config.NewConfig(afero.NewMemMapFs(), "/config", vals)
	require.NoError(t, err)
	return cfg
}
