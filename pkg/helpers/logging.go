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
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ReinaManager/reina-core/pkg/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

var logWriter io.Writer = os.Stderr

// LogWriter returns the writer set up by InitLogging, so other sinks can be
// added alongside it.
func LogWriter() io.Writer {
	return logWriter
}

// NewLogFileWriter returns the rotating writer for logDir/reina.log.
func NewLogFileWriter(logDir string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Join(logDir, config.LogFile),
		MaxSize:    1,
		MaxBackups: 2,
	}
}

// InitLogging points the global zerolog logger at a rotating file in
// logDir plus any extra writers (stderr when running in the foreground).
func InitLogging(logDir string, writers []io.Writer) error {
	if err := os.MkdirAll(logDir, 0o750); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logWriters := []io.Writer{NewLogFileWriter(logDir)}
	if len(writers) > 0 {
		logWriters = append(logWriters, writers...)
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	logWriter = io.MultiWriter(logWriters...)
	log.Logger = log.Output(logWriter).
		With().Timestamp().Caller().Logger()

	return nil
}
