package version_test

import (
	"testing"

	"github.com/lonelyicer/vrc-get/pkg/version"
	"gotest.tools/v3/assert"
)

func TestBareVersionMeansSameOrLater(t *testing.T) {
	d := version.MustParseDependencyRange("1.0.0")

	assert.Assert(t, d.Matches(version.MustParseVersion("1.0.0")))
	assert.Assert(t, d.Matches(version.MustParseVersion("1.5.2")))
	assert.Assert(t, d.Matches(version.MustParseVersion("2.0.0")))
	assert.Assert(t, !d.Matches(version.MustParseVersion("0.9.9")))
}

func TestExplicitRanges(t *testing.T) {
	tests := []struct {
		expr    string
		version string
		want    bool
	}{
		{">=1.0.0 <2.0.0", "1.0.0", true},
		{">=1.0.0 <2.0.0", "1.9.9", true},
		{">=1.0.0 <2.0.0", "2.0.0", false},
		{"^1.2.0", "1.2.0", true},
		{"^1.2.0", "1.9.0", true},
		{"^1.2.0", "2.0.0", false},
		{"=1.4.0", "1.4.0", true},
		{"=1.4.0", "1.4.1", false},
	}

	for _, tt := range tests {
		r := version.MustParseRange(tt.expr)
		got := r.Matches(version.MustParseVersion(tt.version))
		assert.Equal(t, got, tt.want, "%s against %s", tt.version, tt.expr)
	}
}

func TestRangeRejectsComplexExpressions(t *testing.T) {
	_, err := version.ParseRange(">=1.0.0 || >=3.0.0")
	assert.ErrorContains(t, err, "not supported")
}

// Ranges anchored at a pre-release bound admit pre-releases without
// any extra opt-in.
func TestPrereleaseAnchoredRange(t *testing.T) {
	r := version.MustParseRange(">=1.0.0-rc.1")

	assert.Assert(t, r.MatchesPrerelease())
	assert.Assert(t, r.Matches(version.MustParseVersion("1.0.0-rc.2")))
	assert.Assert(t, r.Matches(version.MustParseVersion("1.0.0")))
	assert.Assert(t, !r.Matches(version.MustParseVersion("0.9.0")))
}

// Release-anchored ranges hide pre-releases by default.
func TestReleaseRangeHidesPrereleases(t *testing.T) {
	r := version.MustParseRange(">=1.0.0 <2.0.0")

	assert.Assert(t, !r.MatchesPrerelease())
	assert.Assert(t, !r.Matches(version.MustParseVersion("1.5.0-beta.1")))
	assert.Assert(t, r.Matches(version.MustParseVersion("1.5.0")))
}

func TestDependencyRangeRoundTrip(t *testing.T) {
	for _, expr := range []string{"1.0.0", "^2.1.0", ">=1.0.0 <2.0.0", "1.0.0-rc.1"} {
		d := version.MustParseDependencyRange(expr)
		assert.Equal(t, d.String(), expr)

		text, err := d.MarshalText()
		assert.NilError(t, err)
		assert.Equal(t, string(text), expr)
	}
}
