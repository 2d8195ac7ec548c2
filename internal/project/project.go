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

// Package project implements the package resolution and
// project-mutation planner for Unity projects managed through VPM: it
// reads the project's manifest, lock table, and package folders, and
// computes pending change plans that bring the project in line with
// its declared dependencies. Plans are never applied here.
package project

import (
	"io"
	"os"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/pkg/errors"

	"github.com/lonelyicer/vrc-get/pkg/slogext"
	"github.com/lonelyicer/vrc-get/pkg/version"
	"github.com/lonelyicer/vrc-get/pkg/vpm"
)

const (
	packagesDirName     = "Packages"
	manifestFileName    = "Packages/vpm-manifest.json"
	projectVersionFile  = "ProjectSettings/ProjectVersion.txt"
	editorVersionPrefix = "m_EditorVersion:"
)

// UnlockedPackage is a folder present under Packages/ but absent from
// the lock table. Package is nil when the folder has no parseable
// package.json; such entries are only listed: neither resolution nor
// ShouldResolve checks their folder names against package names.
type UnlockedPackage struct {
	FolderName string
	Package    *vpm.Package
}

// UnityProject is a consistent snapshot of a project's manifest, lock
// table, and on-disk package folders. Operations never mutate the
// snapshot; they return a pending change plan.
type UnityProject struct {
	fs  billy.Filesystem
	log slogext.Logger

	manifest     *Manifest
	unityVersion *version.UnityVersion

	// installedPackages maps locked folder names to the parsed package
	// found on disk.
	installedPackages map[string]*vpm.Package
	unlockedPackages  []UnlockedPackage
}

// Load reads a project from a filesystem rooted at the project
// directory.
func Load(fs billy.Filesystem, log slogext.Logger) (*UnityProject, error) {
	p := &UnityProject{
		fs:                fs,
		log:               log,
		manifest:          NewManifest(),
		installedPackages: make(map[string]*vpm.Package),
	}

	data, err := readFile(fs, manifestFileName)
	switch {
	case err == nil:
		if p.manifest, err = ParseManifest(data); err != nil {
			return nil, err
		}
	case os.IsNotExist(err):
		// A fresh project has no manifest yet.
	default:
		return nil, errors.Wrap(err, "failed to read vpm-manifest.json")
	}

	if err := p.scanPackages(); err != nil {
		return nil, err
	}

	p.unityVersion = p.readUnityVersion()

	return p, nil
}

// scanPackages lists Packages/ and classifies each folder as a locked
// installation or an unlocked package.
func (p *UnityProject) scanPackages() error {
	entries, err := p.fs.ReadDir(packagesDirName)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "failed to list Packages")
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		folder := entry.Name()

		var pkg *vpm.Package
		if data, err := readFile(p.fs, packagesDirName+"/"+folder+"/package.json"); err == nil {
			if pkg, err = vpm.ParsePackageJSON(data); err != nil {
				p.log.With("folder", folder).WithError(err).Debug("Ignoring unparseable package.json")
				pkg = nil
			}
		}

		if p.manifest.GetLocked(folder) != nil {
			if pkg != nil {
				p.installedPackages[folder] = pkg
			}
			continue
		}
		p.unlockedPackages = append(p.unlockedPackages, UnlockedPackage{FolderName: folder, Package: pkg})
	}

	sort.Slice(p.unlockedPackages, func(i, j int) bool {
		return p.unlockedPackages[i].FolderName < p.unlockedPackages[j].FolderName
	})

	return nil
}

// readUnityVersion parses ProjectSettings/ProjectVersion.txt. An
// unreadable or unparseable file leaves the editor version unknown,
// which disables Unity compatibility filtering.
func (p *UnityProject) readUnityVersion() *version.UnityVersion {
	data, err := readFile(p.fs, projectVersionFile)
	if err != nil {
		return nil
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, editorVersionPrefix) {
			continue
		}
		raw := strings.TrimSpace(strings.TrimPrefix(line, editorVersionPrefix))
		v, err := version.ParseUnityVersion(raw)
		if err != nil {
			p.log.With("version", raw).Debug("Unparseable editor version in ProjectVersion.txt")
			return nil
		}
		return v
	}
	return nil
}

// Manifest returns the project's manifest snapshot.
func (p *UnityProject) Manifest() *Manifest { return p.manifest }

// UnityVersion returns the project's editor version, or nil when
// unknown.
func (p *UnityProject) UnityVersion() *version.UnityVersion { return p.unityVersion }

// InstalledPackages returns the locked packages found on disk, keyed
// by folder name.
func (p *UnityProject) InstalledPackages() map[string]*vpm.Package { return p.installedPackages }

// UnlockedPackages returns folders under Packages/ that are not in the
// lock table, in folder-name order.
func (p *UnityProject) UnlockedPackages() []UnlockedPackage { return p.unlockedPackages }

// readFile reads a whole file from a billy filesystem.
func readFile(fs billy.Filesystem, path string) ([]byte, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
