// Copyright (C) 2024 vrc-get contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmdexec

import (
	"context"
	"fmt"
)

// MockCommand is one canned invocation the mock runner will answer:
// an editor path plus arguments, and the output or error to return.
type MockCommand struct {
	Name   string
	Args   []string
	Stdout []byte
	Err    error
}

// MockExecutor answers [Output] calls from a fixed set of canned
// commands. An invocation with no matching command panics: a probe the
// test did not anticipate is a test bug.
type MockExecutor struct {
	cmds []*MockCommand
}

// NewMockExecutor returns a new MockExecutor with the given commands.
func NewMockExecutor(cmds ...*MockCommand) *MockExecutor {
	return &MockExecutor{cmds}
}

// AddCommand adds a command to the executor.
//
// Note: This is not thread-safe.
func (e *MockExecutor) AddCommand(cmd *MockCommand) {
	e.cmds = append(e.cmds, cmd)
}

// run implements the runner contract over the canned commands.
func (e *MockExecutor) run(_ context.Context, name string, arg ...string) ([]byte, error) {
	argsEqual := func(a, b []string) bool {
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	}

	for _, cmd := range e.cmds {
		if cmd.Name == name && argsEqual(cmd.Args, arg) {
			return cmd.Stdout, cmd.Err
		}
	}

	panic(fmt.Sprintf("no mock command for %q %v", name, arg))
}
