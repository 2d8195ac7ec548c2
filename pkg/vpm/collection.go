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

package vpm

import (
	"sort"
)

// PackageCollection is a name-to-candidate-versions lookup the
// resolver selects packages from. Implementations are treated as
// immutable for the duration of a resolve.
type PackageCollection interface {
	// FindPackageByName returns the highest version of the named
	// package that satisfies the selector, or nil if no candidate does.
	// Pre-releases order below the release of the same
	// (major, minor, patch).
	FindPackageByName(name string, selector VersionSelector) *Package

	// FindPackages returns every known version of the named package.
	FindPackages(name string) []*Package
}

// MemoryCollection is an in-memory PackageCollection. It backs the
// environment's local repository caches and the test harnesses.
type MemoryCollection struct {
	packages map[string][]*Package
}

var _ PackageCollection = &MemoryCollection{}

// NewMemoryCollection creates a collection holding the given packages.
func NewMemoryCollection(packages ...*Package) *MemoryCollection {
	c := &MemoryCollection{packages: make(map[string][]*Package)}
	for _, p := range packages {
		c.AddPackage(p)
	}
	return c
}

// AddPackage adds one candidate version. Adding an already-known
// (name, version) pair replaces the previous record.
func (c *MemoryCollection) AddPackage(p *Package) {
	candidates := c.packages[p.Name()]
	for i, existing := range candidates {
		if existing.Version().Equal(p.Version()) {
			candidates[i] = p
			return
		}
	}
	c.packages[p.Name()] = append(candidates, p)
}

// FindPackageByName implements PackageCollection.
func (c *MemoryCollection) FindPackageByName(name string, selector VersionSelector) *Package {
	var best *Package
	for _, candidate := range c.packages[name] {
		if !selector.Satisfies(candidate) {
			continue
		}
		if best == nil || candidate.Version().GreaterThan(best.Version()) {
			best = candidate
		}
	}
	return best
}

// FindPackages implements PackageCollection. Versions are returned in
// descending order.
func (c *MemoryCollection) FindPackages(name string) []*Package {
	candidates := append([]*Package(nil), c.packages[name]...)
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Version().GreaterThan(candidates[j].Version())
	})
	return candidates
}
