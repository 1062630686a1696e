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

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ReinaManager/reina-core/pkg/helpers/syncutil"
	"github.com/google/uuid"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	SchemaVersion = 1
	CfgEnv        = "REINA_CFG"
)

var ErrSchemaMismatch = errors.New("schema version mismatch")

type Values struct {
	Database       Database `toml:"database,omitempty"`
	Playtime       Playtime `toml:"playtime,omitempty"`
	Service        Service  `toml:"service,omitempty"`
	ErrorReporting *bool    `toml:"error_reporting,omitempty"`
	SentryDSN      string   `toml:"sentry_dsn,omitempty"`
	ConfigSchema   int      `toml:"config_schema"`
	DebugLogging   bool     `toml:"debug_logging"`
}

var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
}

type Instance struct {
	fs       afero.Fs
	cfgPath  string
	onReload []func()
	vals     Values
	defaults Values
	mu       syncutil.RWMutex
}

// NewConfig loads the config file from configDir, writing the defaults to
// disk first if no file exists yet. REINA_CFG overrides the file location.
//
//nolint:gocritic // config struct copied for immutability
func NewConfig(fs afero.Fs, configDir string, defaults Values) (*Instance, error) {
	cfgPath := os.Getenv(CfgEnv)
	log.Debug().Msgf("env config path: %s", cfgPath)

	if cfgPath == "" {
		cfgPath = filepath.Join(configDir, CfgFile)
	}

	cfg := Instance{
		fs:       fs,
		cfgPath:  cfgPath,
		vals:     defaults,
		defaults: defaults,
	}

	exists, err := afero.Exists(fs, cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if !exists {
		log.Info().Msg("saving new default config to disk")

		if err := fs.MkdirAll(filepath.Dir(cfgPath), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}

		if err := cfg.Save(); err != nil {
			return nil, err
		}
	}

	if err := cfg.Load(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Instance) Path() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfgPath
}

func (c *Instance) Load() error {
	c.mu.Lock()

	if c.cfgPath == "" {
		c.mu.Unlock()
		return errors.New("config path not set")
	}

	data, err := afero.ReadFile(c.fs, c.cfgPath)
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then unmarshal file values on top so fields
	// missing from the file keep their defaults.
	newVals := c.defaults
	if err := toml.Unmarshal(data, &newVals); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if newVals.ConfigSchema != SchemaVersion {
		c.mu.Unlock()
		log.Error().Msgf(
			"schema version mismatch: got %d, expecting %d",
			newVals.ConfigSchema,
			SchemaVersion,
		)
		return ErrSchemaMismatch
	}

	if _, err := newVals.Playtime.location(); err != nil {
		log.Warn().Err(err).Str("timezone", newVals.Playtime.Timezone).
			Msg("invalid timezone in config, using host local time")
	}

	c.vals = newVals
	hooks := append([]func(){}, c.onReload...)
	c.mu.Unlock()

	applyLogLevel(newVals.DebugLogging)

	for _, fn := range hooks {
		fn()
	}
	return nil
}

func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	c.vals.ConfigSchema = SchemaVersion

	if c.vals.Service.DeviceID == "" {
		newID := uuid.New().String()
		c.vals.Service.DeviceID = newID
		log.Info().Msgf("generated new device id: %s", newID)
	}

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := afero.WriteFile(c.fs, c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// OnReload registers a hook run after every successful Load.
func (c *Instance) OnReload(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onReload = append(c.onReload, fn)
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

func (c *Instance) SetDebugLogging(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = enabled
	applyLogLevel(enabled)
}

func applyLogLevel(debug bool) {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// ErrorReporting is off unless explicitly enabled.
func (c *Instance) ErrorReporting() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.ErrorReporting == nil {
		return false
	}
	return *c.vals.ErrorReporting
}

func (c *Instance) SetErrorReporting(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.ErrorReporting = &enabled
}

func (c *Instance) SentryDSN() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.SentryDSN
}
