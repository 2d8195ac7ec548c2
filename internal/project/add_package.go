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

	"github.com/lonelyicer/vrc-get/pkg/version"
	"github.com/lonelyicer/vrc-get/pkg/vpm"
)

// AddPackageOptions controls how AddPackageRequest treats the
// requested packages.
type AddPackageOptions struct {
	// ToDependencies writes the chosen packages into the declared
	// dependencies in addition to the lock table. Without it the
	// request is an upgrade of already-locked packages.
	ToDependencies bool

	// AllowDowngrade permits requesting a version lower than the locked
	// one.
	AllowDowngrade bool
}

// AddPackageRequest plans installing, upgrading, or promoting the
// given packages. Other locked entries act as pins; requirements that
// disagree with a pin surface as conflicts in the plan.
func (p *UnityProject) AddPackageRequest(_ context.Context, env vpm.PackageCollection, packages []*vpm.Package, opts AddPackageOptions) (*PendingProjectChanges, error) {
	changes := newChangesBuilder()

	var toInstall []*vpm.Package
	installNames := make(map[string]bool)

	for _, pkg := range packages {
		locked := p.manifest.GetLocked(pkg.Name())
		switch {
		case locked == nil:
			if !opts.ToDependencies {
				if opts.AllowDowngrade {
					return nil, &DowngradingNonLockedPackageError{PackageName: pkg.Name()}
				}
				return nil, &UpgradingNonLockedPackageError{PackageName: pkg.Name()}
			}
			toInstall = append(toInstall, pkg)
			installNames[pkg.Name()] = true

		case pkg.Version().GreaterThan(locked.Version()):
			toInstall = append(toInstall, pkg)
			if opts.ToDependencies {
				installNames[pkg.Name()] = true
			}

		case pkg.Version().LessThan(locked.Version()):
			if !opts.AllowDowngrade {
				return nil, &UpgradingWithDowngradeError{
					PackageName: pkg.Name(),
					From:        locked.Version(),
					To:          pkg.Version(),
				}
			}
			toInstall = append(toInstall, pkg)
			if opts.ToDependencies {
				installNames[pkg.Name()] = true
			}

		default:
			// Locked at the requested version already; at most promote
			// it into the declared dependencies.
			if opts.ToDependencies && p.manifest.GetDependency(pkg.Name()) == nil {
				changes.installAlreadyLocked(pkg)
				changes.addToDependencies(pkg.Name(), version.NewDependencyRange(pkg.Version()))
			}
		}
	}

	if len(toInstall) == 0 {
		return changes.build(p), nil
	}

	// Pre-release admission is derived from the selected versions.
	allowPrerelease := false
	for _, pkg := range toInstall {
		if version.IsPrerelease(pkg.Version()) {
			allowPrerelease = true
			break
		}
	}

	// Packages being replaced no longer pin anything; the rest of the
	// lock table does.
	lockedLookup := func(name string) *LockedDependencyInfo {
		for _, pkg := range toInstall {
			if pkg.Name() == name {
				return nil
			}
		}
		return p.manifest.GetLocked(name)
	}

	result, err := collectAddingPackages(
		p.manifest.Dependencies(),
		lockedLookup,
		p.manifest.AllLocked(),
		p.unlockedPackages,
		p.unityVersion,
		env,
		toInstall,
		allowPrerelease,
	)
	if err != nil {
		return nil, err
	}

	p.foldResolution(changes, result, installNames)

	return changes.build(p), nil
}
