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
	"sort"

	"github.com/lonelyicer/vrc-get/pkg/version"
	"github.com/lonelyicer/vrc-get/pkg/vpm"
)

// resolutionResult is the resolver's output: packages to install, the
// names superseded by legacy replacement, and the conflicts found.
type resolutionResult struct {
	// newPackages is sorted by name ascending.
	newPackages []*vpm.Package

	// legacyRemoves names packages superseded by a package being
	// installed that are currently present (locked or unlocked) or were
	// selected during this resolution.
	legacyRemoves []string

	// conflicts maps a contested package name to the names requiring it
	// incompatibly. A package that depends on a superseded name is
	// keyed by its own name, with the replacing package as the value.
	conflicts map[string][]string

	// unityIncompatible names selected packages whose editor bound does
	// not admit the project's editor version. They still install; the
	// incompatibility is surfaced to the caller.
	unityIncompatible []string
}

// depSlot is one worktable entry of the resolver: the currently
// selected candidate for a name together with every range and
// requirer seen so far.
type depSlot struct {
	using     *vpm.Package
	ranges    []*version.Range
	requirers []string

	// replacedBy is the name of the installing package whose legacy
	// list supersedes this slot, or "".
	replacedBy string
}

func (s *depSlot) addRequirer(name string) {
	for _, existing := range s.requirers {
		if existing == name {
			return
		}
	}
	s.requirers = append(s.requirers, name)
}

func (s *depSlot) satisfiedBy(v *version.Version, allowPrerelease bool) bool {
	for _, r := range s.ranges {
		if allowPrerelease {
			if !r.MatchesWithPrerelease(v) {
				return false
			}
		} else if !r.Matches(v) {
			return false
		}
	}
	return true
}

// collectAddingPackages expands the transitive dependencies of
// toInstall against the lock table, intersecting the ranges of every
// requirer, and selects the highest version satisfying each
// intersection. Unsatisfiable intersections become conflicts, not
// errors; a dependency with no candidate at all is a
// DependencyNotFoundError.
func collectAddingPackages(
	declared map[string]*version.DependencyRange,
	lockedLookup func(name string) *LockedDependencyInfo,
	allLocked []*LockedDependencyInfo,
	unlocked []UnlockedPackage,
	unityVersion *version.UnityVersion,
	env vpm.PackageCollection,
	toInstall []*vpm.Package,
	allowPrerelease bool,
) (*resolutionResult, error) {
	table := make(map[string]*depSlot)
	conflicts := make(map[string][]string)

	// legacyOwners maps a superseded name to the installing package
	// that declared it legacy.
	legacyOwners := make(map[string]string)

	unlockedNames := make(map[string]bool)
	for _, u := range unlocked {
		if u.Package != nil {
			unlockedNames[u.Package.Name()] = true
		}
	}

	addConflict := func(name string, with ...string) {
		existing := conflicts[name]
		for _, w := range with {
			if w == name {
				continue
			}
			seen := false
			for _, e := range existing {
				if e == w {
					seen = true
					break
				}
			}
			if !seen {
				existing = append(existing, w)
			}
		}
		conflicts[name] = existing
	}

	var queue []*vpm.Package
	for _, pkg := range toInstall {
		slot := &depSlot{using: pkg}
		if d := declared[pkg.Name()]; d != nil {
			slot.ranges = append(slot.ranges, d.AsRange())
		}
		table[pkg.Name()] = slot
		queue = append(queue, pkg)
	}

	for len(queue) > 0 {
		pkg := queue[0]
		queue = queue[1:]

		for _, legacy := range pkg.LegacyPackages() {
			legacyOwners[legacy] = pkg.Name()
			if slot, ok := table[legacy]; ok {
				slot.replacedBy = pkg.Name()
			}
		}

		for _, depName := range pkg.DependencyNames() {
			depRange := pkg.VPMDependencies()[depName]

			if owner, ok := legacyOwners[depName]; ok {
				// The dependency is being replaced out from under us.
				addConflict(pkg.Name(), owner)
				continue
			}

			slot, selected := table[depName]

			// A lock entry that already satisfies the requirement wins,
			// unless the package is part of the install set.
			if !selected {
				if locked := lockedLookup(depName); locked != nil && depRange.Matches(locked.Version()) {
					continue
				}
				if unlockedNames[depName] {
					// Installed outside the lock table; never overwritten.
					continue
				}
			}

			if selected {
				slot.ranges = append(slot.ranges, depRange.AsRange())
				slot.addRequirer(pkg.Name())

				if slot.satisfiedBy(slot.using.Version(), allowPrerelease) {
					continue
				}

				found := env.FindPackageByName(depName, vpm.RangesFor(unityVersion, slot.ranges, allowPrerelease))
				if found == nil {
					addConflict(depName, append(append([]string(nil), slot.requirers...), pkg.Name())...)
					continue
				}
				if !found.Version().Equal(slot.using.Version()) {
					slot.using = found
					queue = append(queue, found)
				}
				continue
			}

			ranges := []*version.Range{depRange.AsRange()}
			if d := declared[depName]; d != nil {
				ranges = append(ranges, d.AsRange())
			}
			slot = &depSlot{ranges: ranges, requirers: []string{pkg.Name()}}

			allowPre := allowPrerelease || depRange.AsRange().MatchesPrerelease()
			found := env.FindPackageByName(depName, vpm.RangesFor(unityVersion, ranges, allowPre))
			if found == nil {
				if lockedLookup(depName) != nil {
					// Locked at an unsatisfying version with no upgrade
					// candidate.
					addConflict(depName, pkg.Name())
					continue
				}
				return nil, &DependencyNotFoundError{DependencyName: depName}
			}

			slot.using = found
			table[depName] = slot
			queue = append(queue, found)
		}
	}

	result := &resolutionResult{conflicts: conflicts}

	// Present packages superseded by something we are installing are
	// removed; anything still depending on them conflicts with the
	// replacer.
	for legacy, owner := range legacyOwners {
		present := lockedLookup(legacy) != nil || unlockedNames[legacy]
		if slot, ok := table[legacy]; ok && slot.replacedBy != "" {
			present = true
		}
		if present {
			result.legacyRemoves = append(result.legacyRemoves, legacy)
		}
		for _, locked := range allLocked {
			if locked.Name() == legacy || legacyOwners[locked.Name()] != "" {
				continue
			}
			if _, installing := table[locked.Name()]; installing {
				continue
			}
			if _, depends := locked.Dependencies()[legacy]; depends {
				addConflict(locked.Name(), owner)
			}
		}
	}
	sort.Strings(result.legacyRemoves)

	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		slot := table[name]
		if slot.using == nil || slot.replacedBy != "" {
			continue
		}
		result.newPackages = append(result.newPackages, slot.using)

		if unityVersion != nil && slot.using.Unity() != nil && !slot.using.Unity().SupportedBy(unityVersion) {
			result.unityIncompatible = append(result.unityIncompatible, name)
		}

		// Dependencies expanded before the replacer was seen still point
		// at a superseded name.
		for _, depName := range slot.using.DependencyNames() {
			if owner, ok := legacyOwners[depName]; ok {
				addConflict(name, owner)
			}
		}
	}

	// Locked entries that stay behind may pin an upgraded package
	// outside their accepted range.
	for _, locked := range allLocked {
		if _, installing := table[locked.Name()]; installing {
			continue
		}
		for depName, depRange := range locked.Dependencies() {
			slot, ok := table[depName]
			if !ok || slot.using == nil || slot.replacedBy != "" {
				continue
			}
			if !depRange.Matches(slot.using.Version()) {
				addConflict(depName, locked.Name())
			}
		}
	}

	return result, nil
}
