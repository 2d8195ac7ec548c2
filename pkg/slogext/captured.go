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

package slogext

import (
	"bytes"
	"log/slog"

	charmlog "github.com/charmbracelet/log"
)

// NewCapturedLogger creates a logger that writes into the returned
// buffer instead of stderr. Timestamps and colors are disabled so the
// output is stable enough to assert on in tests.
func NewCapturedLogger() (Logger, *bytes.Buffer) {
	buf := new(bytes.Buffer)
	handler := charmlog.NewWithOptions(buf, charmlog.Options{
		ReportTimestamp: false,
	})
	return &logger{slog.New(handler), handler}, buf
}

// NewNopLogger creates a logger that discards everything. Useful as a
// default for tests that do not assert on log output.
func NewNopLogger() Logger {
	log, _ := NewCapturedLogger()
	log.SetLevel(FatalLevel)
	return log
}
