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

// Package projecttest builds in-memory Unity projects for tests: a
// vpm-manifest.json, package folders under Packages/, and optionally a
// ProjectVersion.txt, all on a billy memfs.
package projecttest

import (
	"encoding/json"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"gotest.tools/v3/assert"

	"github.com/lonelyicer/vrc-get/internal/project"
	"github.com/lonelyicer/vrc-get/pkg/slogext"
	"github.com/lonelyicer/vrc-get/pkg/vpm"
)

type lockedEntry struct {
	name         string
	version      string
	dependencies map[string]string
}

// VirtualProjectBuilder accumulates the desired state of a test
// project. By default every locked entry also exists on disk at the
// locked version.
type VirtualProjectBuilder struct {
	dependencies map[string]string
	locked       []lockedEntry

	unityVersion     string
	notInstalled     map[string]bool
	installedVersion map[string]string
	unlocked         map[string]*vpm.PackageJSON
	brokenUnlocked   []string
	files            map[string]string
	dirs             []string
}

// NewVirtualProject creates an empty builder.
func NewVirtualProject() *VirtualProjectBuilder {
	return &VirtualProjectBuilder{
		dependencies:     make(map[string]string),
		notInstalled:     make(map[string]bool),
		installedVersion: make(map[string]string),
		unlocked:         make(map[string]*vpm.PackageJSON),
		files:            make(map[string]string),
	}
}

// AddDependency declares a manifest dependency.
func (b *VirtualProjectBuilder) AddDependency(name, versionRange string) *VirtualProjectBuilder {
	b.dependencies[name] = versionRange
	return b
}

// AddLocked pins a package in the lock table. dependencies may be nil
// to model entries written without a dependency map.
func (b *VirtualProjectBuilder) AddLocked(name, version string, dependencies map[string]string) *VirtualProjectBuilder {
	b.locked = append(b.locked, lockedEntry{name: name, version: version, dependencies: dependencies})
	return b
}

// WithUnityVersion writes a ProjectVersion.txt with the given editor
// version.
func (b *VirtualProjectBuilder) WithUnityVersion(version string) *VirtualProjectBuilder {
	b.unityVersion = version
	return b
}

// WithoutInstalled suppresses the on-disk folder for a locked entry.
func (b *VirtualProjectBuilder) WithoutInstalled(name string) *VirtualProjectBuilder {
	b.notInstalled[name] = true
	return b
}

// WithInstalledVersion makes the on-disk folder of a locked entry
// carry a different version than the lock table.
func (b *VirtualProjectBuilder) WithInstalledVersion(name, version string) *VirtualProjectBuilder {
	b.installedVersion[name] = version
	return b
}

// AddUnlocked places a package folder that is not in the lock table.
func (b *VirtualProjectBuilder) AddUnlocked(folder string, pkg *vpm.PackageJSON) *VirtualProjectBuilder {
	b.unlocked[folder] = pkg
	return b
}

// AddBrokenUnlocked places a folder without a parseable package.json.
func (b *VirtualProjectBuilder) AddBrokenUnlocked(folder string) *VirtualProjectBuilder {
	b.brokenUnlocked = append(b.brokenUnlocked, folder)
	return b
}

// AddFile places an arbitrary file in the project tree, for legacy
// asset tests.
func (b *VirtualProjectBuilder) AddFile(path, content string) *VirtualProjectBuilder {
	b.files[path] = content
	return b
}

// AddDir places an arbitrary directory in the project tree.
func (b *VirtualProjectBuilder) AddDir(path string) *VirtualProjectBuilder {
	b.dirs = append(b.dirs, path)
	return b
}

// Build materializes the project on a memfs and loads it.
func (b *VirtualProjectBuilder) Build(t *testing.T) *project.UnityProject {
	t.Helper()

	fs := memfs.New()

	manifest := map[string]any{
		"dependencies": b.manifestDependencies(),
		"locked":       b.manifestLocked(),
	}
	writeJSON(t, fs, "Packages/vpm-manifest.json", manifest)

	for _, entry := range b.locked {
		if b.notInstalled[entry.name] {
			continue
		}
		version := entry.version
		if override, ok := b.installedVersion[entry.name]; ok {
			version = override
		}
		deps := entry.dependencies
		if deps == nil {
			deps = map[string]string{}
		}
		writeJSON(t, fs, "Packages/"+entry.name+"/package.json", &vpm.PackageJSON{
			Name:            entry.name,
			Version:         version,
			VPMDependencies: deps,
		})
	}

	for folder, pkg := range b.unlocked {
		writeJSON(t, fs, "Packages/"+folder+"/package.json", pkg)
	}
	for _, folder := range b.brokenUnlocked {
		writeFile(t, fs, "Packages/"+folder+"/package.json", "{ this is not json")
	}

	if b.unityVersion != "" {
		writeFile(t, fs, "ProjectSettings/ProjectVersion.txt", "m_EditorVersion: "+b.unityVersion+"\n")
	}

	for path, content := range b.files {
		writeFile(t, fs, path, content)
	}
	for _, dir := range b.dirs {
		assert.NilError(t, fs.MkdirAll(dir, 0o755))
	}

	p, err := project.Load(fs, slogext.NewNopLogger())
	assert.NilError(t, err)
	return p
}

func (b *VirtualProjectBuilder) manifestDependencies() map[string]any {
	out := make(map[string]any, len(b.dependencies))
	for name, r := range b.dependencies {
		out[name] = map[string]string{"version": r}
	}
	return out
}

func (b *VirtualProjectBuilder) manifestLocked() map[string]any {
	out := make(map[string]any, len(b.locked))
	for _, entry := range b.locked {
		locked := map[string]any{"version": entry.version}
		if entry.dependencies != nil {
			locked["dependencies"] = entry.dependencies
		}
		out[entry.name] = locked
	}
	return out
}

func writeJSON(t *testing.T, fs billy.Filesystem, path string, value any) {
	t.Helper()
	data, err := json.Marshal(value)
	assert.NilError(t, err)
	writeFile(t, fs, path, string(data))
}

func writeFile(t *testing.T, fs billy.Filesystem, path string, content string) {
	t.Helper()
	f, err := fs.Create(path)
	assert.NilError(t, err)
	_, err = f.Write([]byte(content))
	assert.NilError(t, err)
	assert.NilError(t, f.Close())
}
