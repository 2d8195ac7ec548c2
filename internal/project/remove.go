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

package project

import (
	"context"
)

// RemoveRequest plans removal of the named packages, sweeping locked
// packages that only the removed packages reached: a package reachable
// from a surviving declared dependency, a planned install, or a locked
// package outside that reach is kept. Names that are not locked are
// ignored.
func (p *UnityProject) RemoveRequest(_ context.Context, names []string) (*PendingProjectChanges, error) {
	changes := newChangesBuilder()

	for _, name := range names {
		if p.manifest.GetLocked(name) == nil {
			continue
		}
		changes.markRemove(name, RemoveReasonRequested)
	}

	return changes.buildRemove(p), nil
}
