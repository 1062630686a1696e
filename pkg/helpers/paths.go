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
	"os"
	"path/filepath"

	"github.com/ReinaManager/reina-core/pkg/config"
	"github.com/adrg/xdg"
)

// DataEnv overrides both the data and config directories, which is
// handy for portable installs and tests.
const DataEnv = "REINA_HOME"

// ConfigDir is where config.toml lives.
func ConfigDir() string {
	if v := os.Getenv(DataEnv); v != "" {
		return v
	}
	return filepath.Join(xdg.ConfigHome, config.AppName)
}

// DataDir holds the play time database and logs.
func DataDir() string {
	if v := os.Getenv(DataEnv); v != "" {
		return v
	}
	return filepath.Join(xdg.DataHome, config.AppName)
}

// LogDir uses the XDG state directory, falling back to the data dir when
// REINA_HOME is set.
func LogDir() string {
	if v := os.Getenv(DataEnv); v != "" {
		return filepath.Join(v, "logs")
	}
	return filepath.Join(xdg.StateHome, config.AppName)
}
