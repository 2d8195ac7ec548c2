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
	"strconv"
	"strings"
)

// ReleaseType is the release channel marker inside a Unity version,
// e.g. the 'f' in "2019.4.31f1".
type ReleaseType byte

const (
	ReleaseTypeAlpha  ReleaseType = 'a'
	ReleaseTypeBeta   ReleaseType = 'b'
	ReleaseTypeNormal ReleaseType = 'f'
	ReleaseTypeChina  ReleaseType = 'c'
	ReleaseTypePatch  ReleaseType = 'p'
)

// UnityVersion is a Unity editor version of the form
// "<major>.<minor>.<revision><type><increment>", e.g. "2019.4.31f1".
type UnityVersion struct {
	major     uint64
	minor     uint64
	revision  uint64
	typ       ReleaseType
	increment uint64
}

// NewUnityVersion creates a Unity version from its components.
func NewUnityVersion(major, minor, revision uint64, typ ReleaseType, increment uint64) *UnityVersion {
	return &UnityVersion{major, minor, revision, typ, increment}
}

// ParseUnityVersion parses a Unity editor version string. The
// type/increment suffix is optional; "2019.4.31" parses with a normal
// release type and increment zero.
func ParseUnityVersion(s string) (*UnityVersion, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ".", 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid unity version %q", s)
	}

	major, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid unity version %q: %w", s, err)
	}
	minor, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid unity version %q: %w", s, err)
	}

	rest := parts[2]
	typeIndex := strings.IndexFunc(rest, func(r rune) bool {
		return r < '0' || r > '9'
	})

	v := &UnityVersion{major: major, minor: minor, typ: ReleaseTypeNormal}
	if typeIndex < 0 {
		v.revision, err = strconv.ParseUint(rest, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid unity version %q: %w", s, err)
		}
		return v, nil
	}

	v.revision, err = strconv.ParseUint(rest[:typeIndex], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid unity version %q: %w", s, err)
	}

	switch t := ReleaseType(rest[typeIndex]); t {
	case ReleaseTypeAlpha, ReleaseTypeBeta, ReleaseTypeNormal, ReleaseTypeChina, ReleaseTypePatch:
		v.typ = t
	default:
		return nil, fmt.Errorf("invalid unity version %q: unknown release type %q", s, t)
	}

	increment := rest[typeIndex+1:]
	if increment != "" {
		v.increment, err = strconv.ParseUint(increment, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid unity version %q: %w", s, err)
		}
	}

	return v, nil
}

// Major returns the year component.
func (v *UnityVersion) Major() uint64 { return v.major }

// Minor returns the minor component.
func (v *UnityVersion) Minor() uint64 { return v.minor }

// Revision returns the revision component.
func (v *UnityVersion) Revision() uint64 { return v.revision }

// Type returns the release channel marker.
func (v *UnityVersion) Type() ReleaseType { return v.typ }

// Increment returns the build increment inside the release channel.
func (v *UnityVersion) Increment() uint64 { return v.increment }

// Equal reports whether two Unity versions are identical in every
// component.
func (v *UnityVersion) Equal(other *UnityVersion) bool {
	if v == nil || other == nil {
		return v == other
	}
	return *v == *other
}

// String renders the version in the canonical editor form.
func (v *UnityVersion) String() string {
	return fmt.Sprintf("%d.%d.%d%c%d", v.major, v.minor, v.revision, v.typ, v.increment)
}

// PartialUnityVersion is the "unity" field of a package manifest: a
// "<major>.<minor>" (or "<major>") lower bound on the editor versions
// the package supports.
type PartialUnityVersion struct {
	major    uint64
	minor    uint64
	hasMinor bool
}

// ParsePartialUnityVersion parses a package's editor lower bound.
func ParsePartialUnityVersion(s string) (*PartialUnityVersion, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ".", 2)

	major, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid unity bound %q: %w", s, err)
	}

	v := &PartialUnityVersion{major: major}
	if len(parts) == 2 {
		v.minor, err = strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid unity bound %q: %w", s, err)
		}
		v.hasMinor = true
	}
	return v, nil
}

// SupportedBy reports whether an editor at version u satisfies the
// bound.
func (p *PartialUnityVersion) SupportedBy(u *UnityVersion) bool {
	if u.major != p.major {
		return u.major > p.major
	}
	if !p.hasMinor {
		return true
	}
	return u.minor >= p.minor
}

// String renders the bound as written in a package manifest.
func (p *PartialUnityVersion) String() string {
	if p.hasMinor {
		return fmt.Sprintf("%d.%d", p.major, p.minor)
	}
	return strconv.FormatUint(p.major, 10)
}
