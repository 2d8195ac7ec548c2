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
	"sort"

	"github.com/lonelyicer/vrc-get/pkg/version"
	"github.com/lonelyicer/vrc-get/pkg/vpm"
)

// ShouldResolve reports whether the on-disk state is out of line with
// the manifest and lock table. The predicate is conservative: it may
// report true when a resolve would be a no-op, but never false when a
// change is required.
func (p *UnityProject) ShouldResolve() bool {
	installedOrLegacy := make(map[string]bool)

	// Locked packages must be installed at the locked version.
	for _, locked := range p.manifest.AllLocked() {
		installed := p.installedPackages[locked.Name()]
		if installed == nil {
			return true
		}
		if !installed.Version().Equal(locked.Version()) {
			return true
		}
		installedOrLegacy[locked.Name()] = true
		for _, legacy := range installed.LegacyPackages() {
			installedOrLegacy[legacy] = true
		}
	}

	for _, unlocked := range p.unlockedPackages {
		if unlocked.Package == nil {
			continue
		}
		for _, legacy := range unlocked.Package.LegacyPackages() {
			installedOrLegacy[legacy] = true
		}
	}

	// Every declared dependency must be present, directly or through a
	// legacy replacement.
	for name := range p.manifest.dependencies {
		if !installedOrLegacy[name] {
			return true
		}
	}

	// Unlocked packages satisfy dependencies of other unlocked
	// packages, but never entries of the manifest itself.
	for _, unlocked := range p.unlockedPackages {
		if unlocked.Package != nil {
			installedOrLegacy[unlocked.Package.Name()] = true
		}
	}

	for _, unlocked := range p.unlockedPackages {
		if unlocked.Package == nil {
			continue
		}
		for _, depName := range unlocked.Package.DependencyNames() {
			if !installedOrLegacy[depName] {
				return true
			}
		}
	}

	return false
}

// ResolveRequest plans the changes that bring the project in line with
// its manifest: locked entries are reasserted, declared dependencies
// missing from the lock table are selected, and dependencies of
// unlocked packages are filled in. A resolve removes no packages other
// than those superseded through legacy replacement.
func (p *UnityProject) ResolveRequest(_ context.Context, env vpm.PackageCollection) (*PendingProjectChanges, error) {
	changes := newChangesBuilder()

	for _, locked := range p.manifest.AllLocked() {
		pkg := env.FindPackageByName(locked.Name(), vpm.SpecificVersion(locked.Version()))
		if pkg == nil {
			return nil, &DependencyNotFoundError{DependencyName: locked.Name()}
		}
		changes.installAlreadyLocked(pkg)
	}

	if err := p.addJustDependency(env, changes); err != nil {
		return nil, err
	}

	if err := p.resolveUnlocked(env, changes); err != nil {
		return nil, err
	}

	return changes.buildResolve(p), nil
}

// ReinstallRequest is a resolve that forces re-extraction of every
// locked package, for projects moved between machines.
func (p *UnityProject) ReinstallRequest(_ context.Context, env vpm.PackageCollection) (*PendingProjectChanges, error) {
	changes := newChangesBuilder()

	for _, locked := range p.manifest.AllLocked() {
		pkg := env.FindPackageByName(locked.Name(), vpm.SpecificVersion(locked.Version()))
		if pkg == nil {
			return nil, &DependencyNotFoundError{DependencyName: locked.Name()}
		}
		changes.installToLocked(pkg)
	}

	if err := p.addJustDependency(env, changes); err != nil {
		return nil, err
	}

	if err := p.resolveUnlocked(env, changes); err != nil {
		return nil, err
	}

	return changes.build(p), nil
}

// addJustDependency selects declared dependencies that have no lock
// entry yet. This usually happens with template projects.
func (p *UnityProject) addJustDependency(env vpm.PackageCollection, changes *changesBuilder) error {
	var toInstall []*vpm.Package
	installNames := make(map[string]bool)

	for _, name := range p.manifest.DependencyNames() {
		if p.manifest.GetLocked(name) != nil {
			continue
		}
		r := p.manifest.GetDependency(name)
		pkg := env.FindPackageByName(name, vpm.RangeFor(p.unityVersion, r.AsRange(), r.AsRange().MatchesPrerelease()))
		if pkg == nil {
			return &DependencyNotFoundError{DependencyName: name}
		}
		toInstall = append(toInstall, pkg)
		installNames[name] = true
	}

	if len(toInstall) == 0 {
		return nil
	}

	// Pre-release admission is derived from the selected top-level
	// versions, not from every involved range.
	allowPrerelease := false
	for _, pkg := range toInstall {
		if version.IsPrerelease(pkg.Version()) {
			allowPrerelease = true
			break
		}
	}

	result, err := collectAddingPackages(
		p.manifest.Dependencies(),
		p.manifest.GetLocked,
		p.manifest.AllLocked(),
		p.unlockedPackages,
		p.unityVersion,
		env,
		toInstall,
		allowPrerelease,
	)
	if err != nil {
		return err
	}

	p.foldResolution(changes, result, installNames)
	return nil
}

// resolveUnlocked selects missing dependencies of unlocked packages,
// intersecting the requirements of every unlocked package that names
// them.
func (p *UnityProject) resolveUnlocked(env vpm.PackageCollection, changes *changesBuilder) error {
	unlockedNames := make(map[string]bool)
	for _, unlocked := range p.unlockedPackages {
		if unlocked.Package != nil {
			unlockedNames[unlocked.Package.Name()] = true
		}
	}
	if len(unlockedNames) == 0 {
		return nil
	}

	// Requirements on names not installed anywhere, grouped per name.
	type requirement struct {
		r   *version.Range
		pre bool
	}
	grouped := make(map[string][]requirement)
	for _, unlocked := range p.unlockedPackages {
		if unlocked.Package == nil {
			continue
		}
		declaringIsPre := version.IsPrerelease(unlocked.Package.Version())
		for _, depName := range unlocked.Package.DependencyNames() {
			if p.manifest.GetLocked(depName) != nil {
				continue
			}
			if changes.getInstalling(depName) != nil {
				continue
			}
			if unlockedNames[depName] {
				continue
			}
			depRange := unlocked.Package.VPMDependencies()[depName]
			grouped[depName] = append(grouped[depName], requirement{r: depRange.AsRange(), pre: declaringIsPre})
		}
	}
	if len(grouped) == 0 {
		return nil
	}

	// Lock view including everything the resolve already plans to
	// install.
	virtualLocked := make(map[string]*LockedDependencyInfo)
	for _, locked := range p.manifest.AllLocked() {
		virtualLocked[locked.Name()] = locked
	}
	for _, pkg := range changes.getAllInstalling() {
		virtualLocked[pkg.Name()] = NewLockedDependencyInfo(pkg.Name(), pkg.Version(), pkg.VPMDependencies())
	}

	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Strings(names)

	var toInstall []*vpm.Package
	for _, name := range names {
		requirements := grouped[name]
		ranges := make([]*version.Range, 0, len(requirements))
		allowPre := false
		for _, req := range requirements {
			ranges = append(ranges, req.r)
			if req.pre {
				allowPre = true
			}
		}
		pkg := env.FindPackageByName(name, vpm.RangesFor(p.unityVersion, ranges, allowPre))
		if pkg == nil {
			return &DependencyNotFoundError{DependencyName: name}
		}
		toInstall = append(toInstall, pkg)
	}

	allowPrerelease := false
	for _, pkg := range toInstall {
		if version.IsPrerelease(pkg.Version()) {
			allowPrerelease = true
			break
		}
	}

	allVirtual := make([]*LockedDependencyInfo, 0, len(virtualLocked))
	for _, locked := range virtualLocked {
		allVirtual = append(allVirtual, locked)
	}
	sort.Slice(allVirtual, func(i, j int) bool { return allVirtual[i].Name() < allVirtual[j].Name() })

	result, err := collectAddingPackages(
		p.manifest.Dependencies(),
		func(name string) *LockedDependencyInfo { return virtualLocked[name] },
		allVirtual,
		p.unlockedPackages,
		p.unityVersion,
		env,
		toInstall,
		allowPrerelease,
	)
	if err != nil {
		return err
	}

	p.foldResolution(changes, result, nil)
	return nil
}

// foldResolution writes a resolver result into the change builder:
// installs, promotions into the declared dependencies, legacy
// removals, and conflicts.
func (p *UnityProject) foldResolution(changes *changesBuilder, result *resolutionResult, promote map[string]bool) {
	for _, pkg := range result.newPackages {
		changes.installToLocked(pkg)
		if promote[pkg.Name()] {
			changes.addToDependencies(pkg.Name(), version.NewDependencyRange(pkg.Version()))
		}
	}

	for _, legacy := range result.legacyRemoves {
		changes.markRemove(legacy, RemoveReasonLegacy)
	}

	for name, conflictsWith := range result.conflicts {
		changes.conflictMultiple(name, conflictsWith)
	}
	for _, name := range result.unityIncompatible {
		changes.conflictUnityVersion(name)
	}
}
