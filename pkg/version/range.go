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

package version

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// opPrefixRegexp strips leading range operators so the remainder can
// be probed as a version.
var opPrefixRegexp = regexp.MustCompile(`^[^v\d]+`)

// versionTokenRegexp matches full version tokens inside a range
// expression, including an attached pre-release identifier if present.
var versionTokenRegexp = regexp.MustCompile(`\d+\.\d+\.\d+(-[0-9A-Za-z][0-9A-Za-z.-]*)?`)

// Range is a parsed version range expression. A range matches release
// versions by default; pre-release versions are matched only when the
// range itself is anchored at a pre-release bound or when the caller
// explicitly opts in.
type Range struct {
	raw string
	c   *semver.Constraints

	// cPre is the same constraint with every bare version token
	// anchored at its "-0" pre-release, admitting pre-release versions
	// of the versions inside the range.
	cPre *semver.Constraints

	// prerelease is set when the expression was written against a
	// pre-release bound, e.g. ">=1.0.0-rc.1".
	prerelease bool
}

// ParseRange parses a range expression. Boolean combinators ("||") are
// not part of the VPM range language and are rejected.
func ParseRange(s string) (*Range, error) {
	if strings.Contains(s, "||") {
		return nil, fmt.Errorf("complex range %q is not supported", s)
	}

	c, err := semver.NewConstraint(s)
	if err != nil {
		return nil, fmt.Errorf("invalid range %q: %w", s, err)
	}

	r := &Range{raw: s, c: c, cPre: c}

	// Probe for a pre-release anchor by stripping leading operators and
	// parsing the remainder as a version.
	if v, err := semver.NewVersion(opPrefixRegexp.ReplaceAllString(s, "")); err == nil {
		r.prerelease = v.Prerelease() != ""
	}

	// Build the pre-release-admitting variant. Constraint checking only
	// considers pre-release versions against comparators that carry a
	// pre-release themselves, so anchor each bare version at "-0".
	pre := versionTokenRegexp.ReplaceAllStringFunc(s, func(tok string) string {
		if strings.Contains(tok, "-") {
			return tok
		}
		return tok + "-0"
	})
	if pre != s {
		if cPre, err := semver.NewConstraint(pre); err == nil {
			r.cPre = cPre
		}
	}

	return r, nil
}

// MustParseRange parses a range and panics on failure. Only for use
// with literals.
func MustParseRange(s string) *Range {
	r, err := ParseRange(s)
	if err != nil {
		panic(err)
	}
	return r
}

// Matches reports whether v is inside the range. Pre-release versions
// match only when the range is anchored at a pre-release bound.
func (r *Range) Matches(v *Version) bool {
	return r.match(v, false)
}

// MatchesPrerelease reports whether the range was written so as to
// admit pre-release versions.
func (r *Range) MatchesPrerelease() bool {
	return r.prerelease
}

// MatchesWithPrerelease reports membership with pre-release versions
// admitted regardless of how the range was written.
func (r *Range) MatchesWithPrerelease(v *Version) bool {
	return r.match(v, true)
}

// match checks membership, admitting pre-release versions when
// allowPrerelease is set.
func (r *Range) match(v *Version, allowPrerelease bool) bool {
	if v.Prerelease() != "" && (allowPrerelease || r.prerelease) {
		return r.cPre.Check(v) || r.c.Check(v)
	}
	return r.c.Check(v)
}

// String returns the range exactly as it was written; ranges
// round-trip losslessly.
func (r *Range) String() string {
	return r.raw
}

// MarshalText implements [encoding.TextMarshaler].
func (r *Range) MarshalText() ([]byte, error) {
	return []byte(r.raw), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (r *Range) UnmarshalText(data []byte) error {
	parsed, err := ParseRange(string(data))
	if err != nil {
		return err
	}
	*r = *parsed
	return nil
}

// DependencyRange is the requirement attached to a dependency entry of
// a manifest or package. It is either a range expression or a bare
// version; a bare version means "that version or newer".
type DependencyRange struct {
	raw string
	r   *Range
}

// ParseDependencyRange parses a dependency requirement.
func ParseDependencyRange(s string) (*DependencyRange, error) {
	if v, err := semver.StrictNewVersion(s); err == nil {
		r, err := ParseRange(">=" + v.String())
		if err != nil {
			return nil, err
		}
		return &DependencyRange{raw: s, r: r}, nil
	}

	r, err := ParseRange(s)
	if err != nil {
		return nil, err
	}
	return &DependencyRange{raw: s, r: r}, nil
}

// MustParseDependencyRange parses a dependency requirement and panics
// on failure. Only for use with literals.
func MustParseDependencyRange(s string) *DependencyRange {
	d, err := ParseDependencyRange(s)
	if err != nil {
		panic(err)
	}
	return d
}

// NewDependencyRange creates the requirement written into a manifest
// when a concrete version is chosen for a dependency.
func NewDependencyRange(v *Version) *DependencyRange {
	d, err := ParseDependencyRange(v.String())
	if err != nil {
		// A version string is always a valid requirement.
		panic(err)
	}
	return d
}

// AsRange returns the requirement as a plain range.
func (d *DependencyRange) AsRange() *Range {
	return d.r
}

// Matches reports whether v satisfies the requirement.
func (d *DependencyRange) Matches(v *Version) bool {
	return d.r.Matches(v)
}

// String returns the requirement exactly as it was written.
func (d *DependencyRange) String() string {
	return d.raw
}

// MarshalText implements [encoding.TextMarshaler].
func (d *DependencyRange) MarshalText() ([]byte, error) {
	return []byte(d.raw), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *DependencyRange) UnmarshalText(data []byte) error {
	parsed, err := ParseDependencyRange(string(data))
	if err != nil {
		return err
	}
	*d = *parsed
	return nil
}
