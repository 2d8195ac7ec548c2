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
	"encoding/json"
	"sort"

	"github.com/lonelyicer/vrc-get/pkg/version"
	"github.com/pkg/errors"
)

// LockedDependencyInfo is one entry of the lock file: a package pinned
// at a concrete version together with the dependency requirements it
// had when it was locked. Dependencies may be nil for entries written
// by old tooling; consumers treat nil as "unknown".
type LockedDependencyInfo struct {
	name         string
	version      *version.Version
	dependencies map[string]*version.DependencyRange
}

// NewLockedDependencyInfo builds a lock entry.
func NewLockedDependencyInfo(name string, v *version.Version, dependencies map[string]*version.DependencyRange) *LockedDependencyInfo {
	return &LockedDependencyInfo{name: name, version: v, dependencies: dependencies}
}

// Name returns the package name of the entry.
func (l *LockedDependencyInfo) Name() string { return l.name }

// Version returns the pinned version.
func (l *LockedDependencyInfo) Version() *version.Version { return l.version }

// Dependencies returns the requirements recorded for the entry, or nil
// when the lock file predates the dependency map.
func (l *LockedDependencyInfo) Dependencies() map[string]*version.DependencyRange {
	return l.dependencies
}

// Manifest is the in-memory view of vpm-manifest.json: the
// user-declared dependency requirements and the lock table. After a
// successful resolve every declared dependency has a locked entry;
// ShouldResolve reports violations of that invariant.
type Manifest struct {
	dependencies map[string]*version.DependencyRange
	locked       map[string]*LockedDependencyInfo
}

// NewManifest creates an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{
		dependencies: make(map[string]*version.DependencyRange),
		locked:       make(map[string]*LockedDependencyInfo),
	}
}

// manifestJSON is the wire form of vpm-manifest.json.
type manifestJSON struct {
	Dependencies map[string]manifestDependencyJSON `json:"dependencies"`
	Locked       map[string]manifestLockedJSON     `json:"locked"`
}

type manifestDependencyJSON struct {
	Version string `json:"version"`
}

type manifestLockedJSON struct {
	Version      string             `json:"version"`
	Dependencies *map[string]string `json:"dependencies,omitempty"`
}

// ParseManifest decodes a vpm-manifest.json document.
func ParseManifest(data []byte) (*Manifest, error) {
	var j manifestJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, errors.Wrap(err, "failed to parse vpm-manifest.json")
	}

	m := NewManifest()
	for name, dep := range j.Dependencies {
		r, err := version.ParseDependencyRange(dep.Version)
		if err != nil {
			return nil, errors.Wrapf(err, "dependency %s", name)
		}
		m.dependencies[name] = r
	}

	for name, locked := range j.Locked {
		v, err := version.ParseVersion(locked.Version)
		if err != nil {
			return nil, errors.Wrapf(err, "locked %s", name)
		}

		var deps map[string]*version.DependencyRange
		if locked.Dependencies != nil {
			deps = make(map[string]*version.DependencyRange, len(*locked.Dependencies))
			for depName, expr := range *locked.Dependencies {
				r, err := version.ParseDependencyRange(expr)
				if err != nil {
					return nil, errors.Wrapf(err, "locked %s: dependency %s", name, depName)
				}
				deps[depName] = r
			}
		}
		m.locked[name] = NewLockedDependencyInfo(name, v, deps)
	}

	return m, nil
}

// MarshalJSON renders the manifest back to its wire form. Lock entries
// read without a dependency map are written back with an empty map.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	j := manifestJSON{
		Dependencies: make(map[string]manifestDependencyJSON, len(m.dependencies)),
		Locked:       make(map[string]manifestLockedJSON, len(m.locked)),
	}
	for name, r := range m.dependencies {
		j.Dependencies[name] = manifestDependencyJSON{Version: r.String()}
	}
	for name, l := range m.locked {
		deps := make(map[string]string, len(l.dependencies))
		for depName, r := range l.dependencies {
			deps[depName] = r.String()
		}
		j.Locked[name] = manifestLockedJSON{Version: l.version.String(), Dependencies: &deps}
	}
	return json.Marshal(j)
}

// Dependencies returns the declared requirement map. The returned map
// must not be mutated.
func (m *Manifest) Dependencies() map[string]*version.DependencyRange {
	return m.dependencies
}

// DependencyNames returns the declared dependency names in ascending
// order.
func (m *Manifest) DependencyNames() []string {
	names := make([]string, 0, len(m.dependencies))
	for name := range m.dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetDependency returns the declared requirement for name, or nil.
func (m *Manifest) GetDependency(name string) *version.DependencyRange {
	return m.dependencies[name]
}

// AddDependency records a declared requirement.
func (m *Manifest) AddDependency(name string, r *version.DependencyRange) {
	m.dependencies[name] = r
}

// AddLocked records a lock entry, replacing any previous pin of the
// same name.
func (m *Manifest) AddLocked(l *LockedDependencyInfo) {
	m.locked[l.Name()] = l
}

// GetLocked returns the lock entry for name, or nil.
func (m *Manifest) GetLocked(name string) *LockedDependencyInfo {
	return m.locked[name]
}

// AllLocked returns every lock entry in ascending name order.
func (m *Manifest) AllLocked() []*LockedDependencyInfo {
	names := make([]string, 0, len(m.locked))
	for name := range m.locked {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*LockedDependencyInfo, 0, len(names))
	for _, name := range names {
		out = append(out, m.locked[name])
	}
	return out
}
