package project_test

import (
	"encoding/json"
	"strings"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/lonelyicer/vrc-get/internal/project"
)

func TestParseManifest(t *testing.T) {
	m, err := project.ParseManifest([]byte(`{
		"dependencies": {
			"com.vrchat.avatars": {"version": "^1.0.0"}
		},
		"locked": {
			"com.vrchat.avatars": {"version": "1.2.0", "dependencies": {"com.vrchat.base": "1.0.0"}},
			"com.vrchat.base": {"version": "1.0.0", "dependencies": {}}
		}
	}`))
	assert.NilError(t, err)

	assert.Equal(t, m.GetDependency("com.vrchat.avatars").String(), "^1.0.0")

	avatars := m.GetLocked("com.vrchat.avatars")
	assert.Assert(t, avatars != nil)
	assert.Equal(t, avatars.Version().String(), "1.2.0")
	assert.Assert(t, avatars.Dependencies()["com.vrchat.base"] != nil)
}

// Lock entries written by old tooling have no dependency map; they are
// tolerated on read and rewritten with a map on save.
func TestManifestToleratesMissingDependencyMap(t *testing.T) {
	m, err := project.ParseManifest([]byte(`{
		"dependencies": {},
		"locked": {
			"com.anatawa12.gists": {"version": "1.0.0"}
		}
	}`))
	assert.NilError(t, err)

	gists := m.GetLocked("com.anatawa12.gists")
	assert.Assert(t, gists != nil)
	assert.Assert(t, gists.Dependencies() == nil)

	data, err := json.Marshal(m)
	assert.NilError(t, err)
	assert.Assert(t, strings.Contains(string(data), `"dependencies":{}`),
		"expected the dependency map to be rewritten, got %s", data)
}

// Range expressions survive a parse/serialize round trip untouched.
func TestManifestRangesRoundTrip(t *testing.T) {
	m, err := project.ParseManifest([]byte(`{
		"dependencies": {
			"com.example.a": {"version": ">=1.0.0 <2.0.0"},
			"com.example.b": {"version": "1.0.0-rc.1"}
		},
		"locked": {}
	}`))
	assert.NilError(t, err)

	data, err := json.Marshal(m)
	assert.NilError(t, err)

	reparsed, err := project.ParseManifest(data)
	assert.NilError(t, err)
	assert.Equal(t, reparsed.GetDependency("com.example.a").String(), ">=1.0.0 <2.0.0")
	assert.Equal(t, reparsed.GetDependency("com.example.b").String(), "1.0.0-rc.1")
}
