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

// Package vpm implements the package metadata model of the VPM
// ecosystem and the collection interface the resolver selects
// candidate versions from.
package vpm

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/lonelyicer/vrc-get/pkg/version"
)

// PackageJSON mirrors the package.json fields the planner consumes.
// Fields the planner never looks at (author, description, payload
// URLs) are intentionally not modeled.
type PackageJSON struct {
	Name            string            `json:"name"`
	DisplayName     string            `json:"displayName,omitempty"`
	Version         string            `json:"version"`
	Unity           string            `json:"unity,omitempty"`
	VPMDependencies map[string]string `json:"vpmDependencies,omitempty"`
	LegacyPackages  []string          `json:"legacyPackages,omitempty"`

	// LegacyFolders and LegacyFiles map project-relative paths to the
	// Unity asset GUID expected at that path, or "" when unknown.
	LegacyFolders map[string]string `json:"legacyFolders,omitempty"`
	LegacyFiles   map[string]string `json:"legacyFiles,omitempty"`
}

// Package is an immutable record describing one version of a VPM
// package. Two packages are equal iff their name and version are
// equal.
type Package struct {
	name            string
	displayName     string
	version         *version.Version
	unity           *version.PartialUnityVersion
	vpmDependencies map[string]*version.DependencyRange
	legacyPackages  []string
	legacyFolders   map[string]string
	legacyFiles     map[string]string
}

// NewPackage validates a decoded package.json and builds the package
// record from it.
func NewPackage(j *PackageJSON) (*Package, error) {
	if j.Name == "" {
		return nil, fmt.Errorf("package has no name")
	}

	v, err := version.ParseVersion(j.Version)
	if err != nil {
		return nil, fmt.Errorf("package %s: %w", j.Name, err)
	}

	p := &Package{
		name:           j.Name,
		displayName:    j.DisplayName,
		version:        v,
		legacyPackages: append([]string(nil), j.LegacyPackages...),
	}

	if j.Unity != "" {
		p.unity, err = version.ParsePartialUnityVersion(j.Unity)
		if err != nil {
			return nil, fmt.Errorf("package %s: %w", j.Name, err)
		}
	}

	if len(j.VPMDependencies) > 0 {
		p.vpmDependencies = make(map[string]*version.DependencyRange, len(j.VPMDependencies))
		for name, expr := range j.VPMDependencies {
			r, err := version.ParseDependencyRange(expr)
			if err != nil {
				return nil, fmt.Errorf("package %s: dependency %s: %w", j.Name, name, err)
			}
			p.vpmDependencies[name] = r
		}
	}

	if len(j.LegacyFolders) > 0 {
		p.legacyFolders = make(map[string]string, len(j.LegacyFolders))
		for path, guid := range j.LegacyFolders {
			p.legacyFolders[path] = guid
		}
	}
	if len(j.LegacyFiles) > 0 {
		p.legacyFiles = make(map[string]string, len(j.LegacyFiles))
		for path, guid := range j.LegacyFiles {
			p.legacyFiles[path] = guid
		}
	}

	return p, nil
}

// ParsePackageJSON decodes and validates a package.json document.
func ParsePackageJSON(data []byte) (*Package, error) {
	var j PackageJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, err
	}
	return NewPackage(&j)
}

// Name returns the package identifier, a reverse-DNS style name.
func (p *Package) Name() string { return p.name }

// DisplayName returns the human-readable name, or "" if none was
// declared.
func (p *Package) DisplayName() string { return p.displayName }

// Version returns the package version.
func (p *Package) Version() *version.Version { return p.version }

// Unity returns the editor lower bound the package declares, or nil.
func (p *Package) Unity() *version.PartialUnityVersion { return p.unity }

// VPMDependencies returns the package's dependency requirements. The
// returned map must not be mutated.
func (p *Package) VPMDependencies() map[string]*version.DependencyRange {
	return p.vpmDependencies
}

// DependencyNames returns the dependency names in ascending order.
func (p *Package) DependencyNames() []string {
	names := make([]string, 0, len(p.vpmDependencies))
	for name := range p.vpmDependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LegacyPackages returns the names of packages this package replaces.
func (p *Package) LegacyPackages() []string { return p.legacyPackages }

// LegacyFolders returns project-relative folders to delete when the
// package is installed, keyed by path.
func (p *Package) LegacyFolders() map[string]string { return p.legacyFolders }

// LegacyFiles returns project-relative files to delete when the
// package is installed, keyed by path.
func (p *Package) LegacyFiles() map[string]string { return p.legacyFiles }

// Equal reports package identity: name and version.
func (p *Package) Equal(other *Package) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.name == other.name && p.version.Equal(other.version)
}

// String renders "name@version" for logs and error messages.
func (p *Package) String() string {
	return p.name + "@" + p.version.String()
}
