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

// Package cmdexec runs external binaries for vrc-get. The only
// subprocess the planner ever launches is a Unity editor asked for its
// version, so the package exposes exactly that shape: run a binary,
// capture its standard output, fail on a non-zero exit. The runner is
// swappable so the installation registry is testable without an editor
// install.
package cmdexec

import (
	"context"
	"os/exec"
	"sync"
	"testing"
)

// runnerFn executes a binary and returns its standard output. Standard
// error is discarded; the editor writes licensing noise there that the
// version probe must ignore.
type runnerFn func(ctx context.Context, name string, arg ...string) ([]byte, error)

var (
	// mu guards runner. Probes are rare (one per registry mutation),
	// so a single lock around both swap and dispatch is enough.
	mu sync.Mutex

	runner runnerFn = stdRunner
)

// stdRunner dispatches to the real binary via [exec.CommandContext].
// The path is passed as argv[0] directly, never through a shell, so
// editor paths with spaces ("Unity Hub.app", "Program Files") need no
// quoting.
func stdRunner(ctx context.Context, name string, arg ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, arg...).Output()
}

// Output runs the binary at name with the given arguments and returns
// its standard output. A non-zero exit status is returned as an error,
// exactly as [exec.Cmd.Output] reports it.
func Output(ctx context.Context, name string, arg ...string) ([]byte, error) {
	mu.Lock()
	run := runner
	mu.Unlock()

	return run(ctx, name, arg...)
}

// UseMockExecutor replaces the runner with a mock for the duration of
// the test. The real runner is restored when the test finishes. Tests
// that swap the runner cannot run in parallel with each other.
func UseMockExecutor(t *testing.T, mock *MockExecutor) {
	mu.Lock()
	original := runner
	runner = mock.run
	mu.Unlock()

	t.Cleanup(func() {
		mu.Lock()
		runner = original
		mu.Unlock()
	})
}
