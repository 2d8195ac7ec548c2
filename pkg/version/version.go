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

// Package version implements the version and version-range model used
// by the VPM ecosystem: semantic versions for packages, range
// expressions for dependency requirements, and the Unity editor
// version scheme.
package version

import (
	"github.com/Masterminds/semver/v3"
)

// Version is a semantic version of a VPM package. Ordering follows
// standard semantic versioning: pre-releases sort below the release of
// the same (major, minor, patch), build metadata is ignored.
type Version = semver.Version

// ParseVersion parses a package version. VPM versions are strict
// semver, without a leading "v".
func ParseVersion(s string) (*Version, error) {
	return semver.StrictNewVersion(s)
}

// MustParseVersion parses a version and panics on failure. Only for
// use with literals.
func MustParseVersion(s string) *Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// NewVersion creates a release version from its numeric components.
func NewVersion(major, minor, patch uint64) *Version {
	return semver.New(major, minor, patch, "", "")
}

// IsPrerelease reports whether v carries a pre-release identifier.
func IsPrerelease(v *Version) bool {
	return v.Prerelease() != ""
}
