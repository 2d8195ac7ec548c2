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
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/lonelyicer/vrc-get/pkg/version"
	"github.com/lonelyicer/vrc-get/pkg/vpm"
)

// RemoveReason explains why a package is part of a plan's removals.
type RemoveReason int

const (
	// RemoveReasonRequested marks a removal the user asked for.
	RemoveReasonRequested RemoveReason = iota
	// RemoveReasonLegacy marks a package superseded by one being
	// installed.
	RemoveReasonLegacy
	// RemoveReasonUnused marks a locked package that is no longer
	// reachable from the declared dependencies.
	RemoveReasonUnused
)

// String implements fmt.Stringer.
func (r RemoveReason) String() string {
	switch r {
	case RemoveReasonRequested:
		return "requested"
	case RemoveReasonLegacy:
		return "legacy"
	case RemoveReasonUnused:
		return "unused"
	default:
		return fmt.Sprintf("RemoveReason(%d)", int(r))
	}
}

// InstallChange describes a package the plan will write to the lock
// table (or reassert, for resolve flows).
type InstallChange struct {
	pkg            *vpm.Package
	toDependencies *version.DependencyRange
	alreadyLocked  bool
}

// Package returns the package being installed.
func (c *InstallChange) Package() *vpm.Package { return c.pkg }

// ToDependencies returns the requirement to write into the declared
// dependencies alongside the lock entry, or nil.
func (c *InstallChange) ToDependencies() *version.DependencyRange { return c.toDependencies }

// AlreadyLocked reports that the package was pinned at exactly this
// version before the operation; the plan merely reasserts it.
func (c *InstallChange) AlreadyLocked() bool { return c.alreadyLocked }

// RemoveChange describes a package the plan will remove.
type RemoveChange struct {
	reason RemoveReason
}

// Reason returns why the package is removed.
func (c *RemoveChange) Reason() RemoveReason { return c.reason }

// PackageChange is exactly one of an install or a removal for one
// package name.
type PackageChange struct {
	install *InstallChange
	remove  *RemoveChange
}

// AsInstall returns the install change, or nil for removals.
func (c PackageChange) AsInstall() *InstallChange { return c.install }

// AsRemove returns the removal, or nil for installs.
func (c PackageChange) AsRemove() *RemoveChange { return c.remove }

// Conflict reports requirements that cannot simultaneously be
// satisfied for one package name. Conflicts are planner output, not
// errors; the user resolves them by editing declared dependencies.
type Conflict struct {
	conflictsWith []string
	unityConflict bool
}

// ConflictsWith returns the names of the packages whose requirements
// pin the conflicting package, ascending.
func (c *Conflict) ConflictsWith() []string { return c.conflictsWith }

// UnityConflict reports that the package's editor bound is
// incompatible with the project's editor version.
func (c *Conflict) UnityConflict() bool { return c.unityConflict }

// PendingProjectChanges is a sealed plan: every package mutation the
// operation decided on, the legacy assets to sweep, and the conflicts
// found along the way.
type PendingProjectChanges struct {
	packageChanges      map[string]PackageChange
	removeLegacyFolders []string
	removeLegacyFiles   []string
	conflicts           map[string]*Conflict
}

// PackageChanges returns the plan's mutations keyed by package name.
func (p *PendingProjectChanges) PackageChanges() map[string]PackageChange {
	return p.packageChanges
}

// PackageChangeNames returns the changed names in ascending order.
func (p *PendingProjectChanges) PackageChangeNames() []string {
	names := make([]string, 0, len(p.packageChanges))
	for name := range p.packageChanges {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RemoveLegacyFolders returns project-relative folders to delete.
func (p *PendingProjectChanges) RemoveLegacyFolders() []string { return p.removeLegacyFolders }

// RemoveLegacyFiles returns project-relative files to delete.
func (p *PendingProjectChanges) RemoveLegacyFiles() []string { return p.removeLegacyFiles }

// Conflicts returns the conflict report keyed by package name.
func (p *PendingProjectChanges) Conflicts() map[string]*Conflict { return p.conflicts }

// changesBuilder accumulates mutations before the plan is sealed. Its
// operations are infallible; an invariant violation means the resolver
// produced inconsistent output and panics.
type changesBuilder struct {
	packageChanges map[string]PackageChange
	conflicts      map[string]*Conflict
}

func newChangesBuilder() *changesBuilder {
	return &changesBuilder{
		packageChanges: make(map[string]PackageChange),
		conflicts:      make(map[string]*Conflict),
	}
}

// installAlreadyLocked records a reassertion of a package pinned at
// exactly this version. Idempotent.
func (b *changesBuilder) installAlreadyLocked(pkg *vpm.Package) {
	name := pkg.Name()
	if existing, ok := b.packageChanges[name]; ok {
		if existing.install == nil {
			panic(fmt.Sprintf("changes: %s is both removed and reasserted", name))
		}
		return
	}
	b.packageChanges[name] = PackageChange{install: &InstallChange{pkg: pkg, alreadyLocked: true}}
}

// installToLocked records a fresh install or upgrade.
func (b *changesBuilder) installToLocked(pkg *vpm.Package) {
	name := pkg.Name()
	if existing, ok := b.packageChanges[name]; ok {
		if existing.install == nil {
			panic(fmt.Sprintf("changes: %s is both removed and installed", name))
		}
		if existing.install.alreadyLocked {
			// An upgrade forced by a new requirement replaces the
			// reassertion of the old pin.
			if !existing.install.pkg.Version().Equal(pkg.Version()) {
				existing.install.pkg = pkg
				existing.install.alreadyLocked = false
			}
			return
		}
		if !existing.install.pkg.Version().Equal(pkg.Version()) {
			panic(fmt.Sprintf("changes: %s recorded at both %s and %s",
				name, existing.install.pkg.Version(), pkg.Version()))
		}
		return
	}
	b.packageChanges[name] = PackageChange{install: &InstallChange{pkg: pkg}}
}

// addToDependencies attaches a declared-dependencies write to an
// existing install slot.
func (b *changesBuilder) addToDependencies(name string, r *version.DependencyRange) {
	existing, ok := b.packageChanges[name]
	if !ok || existing.install == nil {
		panic(fmt.Sprintf("changes: adding %s to dependencies without an install", name))
	}
	existing.install.toDependencies = r
}

// markRemove records a removal. An install already recorded for the
// name is cleared; this is the replacement-with-legacy case. The first
// recorded reason wins.
func (b *changesBuilder) markRemove(name string, reason RemoveReason) {
	if existing, ok := b.packageChanges[name]; ok && existing.remove != nil {
		return
	}
	b.packageChanges[name] = PackageChange{remove: &RemoveChange{reason: reason}}
}

// conflictMultiple accumulates names whose requirements pin name
// incompatibly.
func (b *changesBuilder) conflictMultiple(name string, conflictsWith []string) {
	c := b.conflicts[name]
	if c == nil {
		c = &Conflict{}
		b.conflicts[name] = c
	}
	for _, other := range conflictsWith {
		if other == name {
			continue
		}
		found := false
		for _, existing := range c.conflictsWith {
			if existing == other {
				found = true
				break
			}
		}
		if !found {
			c.conflictsWith = append(c.conflictsWith, other)
		}
	}
	sort.Strings(c.conflictsWith)
}

// conflictUnityVersion marks name as incompatible with the project's
// editor version.
func (b *changesBuilder) conflictUnityVersion(name string) {
	c := b.conflicts[name]
	if c == nil {
		c = &Conflict{}
		b.conflicts[name] = c
	}
	c.unityConflict = true
}

// getInstalling returns the package recorded as installing under name,
// or nil.
func (b *changesBuilder) getInstalling(name string) *vpm.Package {
	if existing, ok := b.packageChanges[name]; ok && existing.install != nil {
		return existing.install.pkg
	}
	return nil
}

// getAllInstalling returns every installing package in ascending name
// order.
func (b *changesBuilder) getAllInstalling() []*vpm.Package {
	names := make([]string, 0, len(b.packageChanges))
	for name, change := range b.packageChanges {
		if change.install != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	out := make([]*vpm.Package, 0, len(names))
	for _, name := range names {
		out = append(out, b.packageChanges[name].install.pkg)
	}
	return out
}

// removedRequested reports whether name is removed at the user's
// request.
func (b *changesBuilder) removedRequested(name string) bool {
	existing, ok := b.packageChanges[name]
	return ok && existing.remove != nil && existing.remove.reason == RemoveReasonRequested
}

// removed reports whether name carries a removal of any reason.
func (b *changesBuilder) removed(name string) bool {
	existing, ok := b.packageChanges[name]
	return ok && existing.remove != nil
}

// build seals the plan: legacy assets are collected, editor
// incompatibilities surfaced, and the plan validated. Used by add
// flows.
func (b *changesBuilder) build(p *UnityProject) *PendingProjectChanges {
	b.markUnityConflicts(p)
	folders, files := b.collectLegacyAssets(p)
	b.validate(p)
	return b.seal(folders, files)
}

// markUnityConflicts flags installs whose editor bound does not admit
// the project's editor version. The packages still install; the
// incompatibility is reported, not fatal.
func (b *changesBuilder) markUnityConflicts(p *UnityProject) {
	if p.unityVersion == nil {
		return
	}
	for _, name := range b.installNames() {
		pkg := b.packageChanges[name].install.pkg
		if pkg.Unity() != nil && !pkg.Unity().SupportedBy(p.unityVersion) {
			b.conflictUnityVersion(name)
		}
	}
}

// buildResolve seals a resolve plan. A resolve never removes packages
// except through legacy replacement; anything else is a resolver bug.
func (b *changesBuilder) buildResolve(p *UnityProject) *PendingProjectChanges {
	for name, change := range b.packageChanges {
		if change.remove != nil && change.remove.reason != RemoveReasonLegacy {
			panic(fmt.Sprintf("changes: resolve produced %s removal of %s", change.remove.reason, name))
		}
	}
	return b.build(p)
}

// buildRemove seals a removal plan, sweeping locked packages that the
// removals made unreachable.
func (b *changesBuilder) buildRemove(p *UnityProject) *PendingProjectChanges {
	b.sweepUnused(p)
	return b.build(p)
}

// sweepUnused marks as unused every locked package that was reachable
// from a removed package and is no longer reachable from anything that
// survives the operation. Locked packages outside the removal cone are
// never touched, even if nothing requires them.
func (b *changesBuilder) sweepUnused(p *UnityProject) {
	preGraph := make(map[string]map[string]*version.DependencyRange)
	for _, locked := range p.manifest.AllLocked() {
		preGraph[locked.Name()] = locked.Dependencies()
	}

	walk := func(graph map[string]map[string]*version.DependencyRange, roots []string, visit map[string]bool) {
		stack := append([]string(nil), roots...)
		for len(stack) > 0 {
			name := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visit[name] {
				continue
			}
			deps, inGraph := graph[name]
			if !inGraph {
				continue
			}
			visit[name] = true
			for depName := range deps {
				if !visit[depName] {
					stack = append(stack, depName)
				}
			}
		}
	}

	// The removal cone: everything the removed packages were keeping
	// alive.
	var removedRoots []string
	for name, change := range b.packageChanges {
		if change.remove != nil {
			removedRoots = append(removedRoots, name)
		}
	}
	sort.Strings(removedRoots)

	cone := make(map[string]bool)
	walk(preGraph, removedRoots, cone)
	for _, name := range removedRoots {
		delete(cone, name)
	}

	if len(cone) == 0 {
		return
	}

	// Post-change graph and the roots that survive: declared
	// dependencies, planned installs, and locked packages outside the
	// cone.
	postGraph := make(map[string]map[string]*version.DependencyRange)
	for _, locked := range p.manifest.AllLocked() {
		if b.removed(locked.Name()) {
			continue
		}
		postGraph[locked.Name()] = locked.Dependencies()
	}
	for name, change := range b.packageChanges {
		if change.install != nil {
			postGraph[name] = change.install.pkg.VPMDependencies()
		}
	}

	var roots []string
	for name := range p.manifest.dependencies {
		if !b.removedRequested(name) {
			roots = append(roots, name)
		}
	}
	for name, change := range b.packageChanges {
		if change.install != nil {
			roots = append(roots, name)
		}
	}
	for _, locked := range p.manifest.AllLocked() {
		name := locked.Name()
		if !cone[name] && !b.removed(name) {
			roots = append(roots, name)
		}
	}
	sort.Strings(roots)

	reachable := make(map[string]bool)
	walk(postGraph, roots, reachable)

	coneNames := make([]string, 0, len(cone))
	for name := range cone {
		coneNames = append(coneNames, name)
	}
	sort.Strings(coneNames)

	for _, name := range coneNames {
		if reachable[name] || b.removed(name) {
			continue
		}
		if p.manifest.GetLocked(name) == nil {
			continue
		}
		if change, ok := b.packageChanges[name]; ok && change.install != nil {
			continue
		}
		b.markRemove(name, RemoveReasonUnused)
	}
}

// collectLegacyAssets gathers the legacy folders and files declared by
// every installing package. Paths outside the project tree are
// dropped; only assets actually present on disk, with the declared
// kind, make it into the plan.
func (b *changesBuilder) collectLegacyAssets(p *UnityProject) (folders, files []string) {
	folderSet := make(map[string]bool)
	fileSet := make(map[string]bool)

	for _, name := range b.installNames() {
		pkg := b.packageChanges[name].install.pkg
		for declared := range pkg.LegacyFolders() {
			if clean, ok := projectRelativePath(declared); ok {
				if info, err := p.fs.Lstat(clean); err == nil && info.IsDir() {
					folderSet[clean] = true
				}
			}
		}
		for declared := range pkg.LegacyFiles() {
			if clean, ok := projectRelativePath(declared); ok {
				if info, err := p.fs.Lstat(clean); err == nil && !info.IsDir() {
					fileSet[clean] = true
				}
			}
		}
	}

	folders = make([]string, 0, len(folderSet))
	for f := range folderSet {
		folders = append(folders, f)
	}
	files = make([]string, 0, len(fileSet))
	for f := range fileSet {
		files = append(files, f)
	}
	sort.Strings(folders)
	sort.Strings(files)
	return folders, files
}

// installNames returns installing package names in ascending order.
func (b *changesBuilder) installNames() []string {
	names := make([]string, 0, len(b.packageChanges))
	for name, change := range b.packageChanges {
		if change.install != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// validate checks that every install's direct dependencies are covered
// by the plan or the surviving lock table. A hole here is a resolver
// bug, except where a conflict already reports the inconsistency.
func (b *changesBuilder) validate(p *UnityProject) {
	unlockedNames := make(map[string]bool)
	for _, unlocked := range p.unlockedPackages {
		if unlocked.Package != nil {
			unlockedNames[unlocked.Package.Name()] = true
		}
	}

	for _, name := range b.installNames() {
		pkg := b.packageChanges[name].install.pkg
		for _, depName := range pkg.DependencyNames() {
			if b.getInstalling(depName) != nil {
				continue
			}
			if locked := p.manifest.GetLocked(depName); locked != nil && !b.removed(depName) {
				continue
			}
			if unlockedNames[depName] {
				continue
			}
			if b.conflicts[name] != nil || b.conflicts[depName] != nil {
				// Already surfaced as a conflict; the plan stays usable.
				continue
			}
			panic(fmt.Sprintf("changes: installing %s but dependency %s is neither installed nor locked", name, depName))
		}
	}
}

// seal produces the immutable plan.
func (b *changesBuilder) seal(folders, files []string) *PendingProjectChanges {
	return &PendingProjectChanges{
		packageChanges:      b.packageChanges,
		removeLegacyFolders: folders,
		removeLegacyFiles:   files,
		conflicts:           b.conflicts,
	}
}

// projectRelativePath cleans a declared legacy path and rejects
// anything that would escape the project tree.
func projectRelativePath(declared string) (string, bool) {
	clean := path.Clean(strings.ReplaceAll(declared, "\\", "/"))
	if clean == "." || clean == "" {
		return "", false
	}
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", false
	}
	// Windows drive letters and UNC paths never belong to the project.
	if strings.Contains(clean, ":") || strings.HasPrefix(clean, "//") {
		return "", false
	}
	return clean, true
}
