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
	"github.com/lonelyicer/vrc-get/pkg/version"
)

// VersionSelector is a filter over candidate packages. A package
// satisfies the selector when its version is admitted by the version
// criteria and its declared editor bound is compatible with the
// project's Unity version, when both are known.
type VersionSelector struct {
	exact           *version.Version
	ranges          []*version.Range
	unity           *version.UnityVersion
	allowPrerelease bool
}

// SpecificVersion selects exactly v. Pre-releases are admitted iff v
// itself is a pre-release. The Unity bound is not consulted; a pinned
// version is installed as pinned.
func SpecificVersion(v *version.Version) VersionSelector {
	return VersionSelector{exact: v, allowPrerelease: version.IsPrerelease(v)}
}

// RangeFor selects members of r that are compatible with the editor at
// unity (ignored when nil).
func RangeFor(unity *version.UnityVersion, r *version.Range, allowPrerelease bool) VersionSelector {
	return VersionSelector{ranges: []*version.Range{r}, unity: unity, allowPrerelease: allowPrerelease}
}

// RangesFor selects members of the intersection of all ranges that are
// compatible with the editor at unity (ignored when nil).
func RangesFor(unity *version.UnityVersion, ranges []*version.Range, allowPrerelease bool) VersionSelector {
	return VersionSelector{ranges: ranges, unity: unity, allowPrerelease: allowPrerelease}
}

// LatestFor selects any version compatible with the editor at unity.
func LatestFor(unity *version.UnityVersion, allowPrerelease bool) VersionSelector {
	return VersionSelector{unity: unity, allowPrerelease: allowPrerelease}
}

// AllowsPrerelease reports whether the selector admits pre-release
// versions at all, either explicitly or through a pre-release-anchored
// range.
func (s VersionSelector) AllowsPrerelease() bool {
	if s.allowPrerelease {
		return true
	}
	for _, r := range s.ranges {
		if r.MatchesPrerelease() {
			return true
		}
	}
	return false
}

// Satisfies reports whether the package passes the filter.
func (s VersionSelector) Satisfies(p *Package) bool {
	if s.exact != nil {
		return p.Version().Equal(s.exact)
	}

	v := p.Version()
	if version.IsPrerelease(v) && !s.AllowsPrerelease() {
		return false
	}

	for _, r := range s.ranges {
		if s.allowPrerelease {
			if !r.MatchesWithPrerelease(v) {
				return false
			}
		} else if !r.Matches(v) {
			return false
		}
	}

	if s.unity != nil && p.Unity() != nil && !p.Unity().SupportedBy(s.unity) {
		return false
	}

	return true
}
