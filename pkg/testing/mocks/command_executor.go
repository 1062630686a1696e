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

package mocks

import (
	"github.com/ReinaManager/reina-core/pkg/helpers/command"
	"github.com/stretchr/testify/mock"
)

// MockCommandExecutor is a testify mock for command.Executor. It lets the
// monitor be tested without spawning anything.
//
// Example:
//
//	exec := &mocks.MockCommandExecutor{}
//	exec.On("Start", mock.Anything, "/games/a.exe", mock.Anything).
//		Return(&mocks.MockProcess{PID: 42}, nil)
type MockCommandExecutor struct {
	mock.Mock
}

var _ command.Executor = (*MockCommandExecutor)(nil)

func (m *MockCommandExecutor) Start(
	opts command.StartOptions,
	name string,
	args ...string,
) (command.Process, error) {
	called := m.Called(opts, name, args)
	if err := called.Error(1); err != nil {
		//nolint:wrapcheck // Mock returns are already wrapped by caller
		return nil, err
	}
	proc, _ := called.Get(0).(command.Process)
	return proc, nil
}

// MockProcess is a started process whose Wait returns WaitErr once Exit
// is called, or immediately when Exit was never armed.
type MockProcess struct {
	WaitErr error
	exited  chan struct{}
	PID     int
}

func NewMockProcess(pid int) *MockProcess {
	return &MockProcess{PID: pid, exited: make(chan struct{})}
}

func (p *MockProcess) Pid() int {
	return p.PID
}

func (p *MockProcess) Wait() error {
	if p.exited != nil {
		<-p.exited
	}
	return p.WaitErr
}

// Exit releases a blocked Wait.
func (p *MockProcess) Exit() {
	if p.exited != nil {
		close(p.exited)
	}
}
