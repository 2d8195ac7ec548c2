package vpm_test

import (
	"testing"

	"github.com/lonelyicer/vrc-get/pkg/version"
	"github.com/lonelyicer/vrc-get/pkg/vpm"
	"gotest.tools/v3/assert"
)

func makePackage(t *testing.T, j *vpm.PackageJSON) *vpm.Package {
	t.Helper()
	p, err := vpm.NewPackage(j)
	assert.NilError(t, err)
	return p
}

func TestSpecificVersionSelector(t *testing.T) {
	pkg := makePackage(t, &vpm.PackageJSON{Name: "com.example.tool", Version: "1.2.3"})

	assert.Assert(t, vpm.SpecificVersion(version.MustParseVersion("1.2.3")).Satisfies(pkg))
	assert.Assert(t, !vpm.SpecificVersion(version.MustParseVersion("1.2.4")).Satisfies(pkg))
}

func TestSpecificVersionAdmitsItsOwnPrerelease(t *testing.T) {
	pkg := makePackage(t, &vpm.PackageJSON{Name: "com.example.tool", Version: "1.3.0-rc.1"})

	assert.Assert(t, vpm.SpecificVersion(version.MustParseVersion("1.3.0-rc.1")).Satisfies(pkg))
}

func TestRangeSelectorHidesPrereleasesByDefault(t *testing.T) {
	r := version.MustParseRange(">=1.0.0 <2.0.0")
	pre := makePackage(t, &vpm.PackageJSON{Name: "com.example.tool", Version: "1.5.0-beta.1"})
	rel := makePackage(t, &vpm.PackageJSON{Name: "com.example.tool", Version: "1.5.0"})

	assert.Assert(t, !vpm.RangeFor(nil, r, false).Satisfies(pre))
	assert.Assert(t, vpm.RangeFor(nil, r, false).Satisfies(rel))
	assert.Assert(t, vpm.RangeFor(nil, r, true).Satisfies(pre))
}

func TestRangesSelectorIntersects(t *testing.T) {
	ranges := []*version.Range{
		version.MustParseRange(">=1.0.0 <2.0.0"),
		version.MustParseRange(">=1.5.0 <2.5.0"),
	}

	inBoth := makePackage(t, &vpm.PackageJSON{Name: "com.example.lib", Version: "1.6.0"})
	inFirst := makePackage(t, &vpm.PackageJSON{Name: "com.example.lib", Version: "1.4.0"})
	inSecond := makePackage(t, &vpm.PackageJSON{Name: "com.example.lib", Version: "2.1.0"})

	sel := vpm.RangesFor(nil, ranges, false)
	assert.Assert(t, sel.Satisfies(inBoth))
	assert.Assert(t, !sel.Satisfies(inFirst))
	assert.Assert(t, !sel.Satisfies(inSecond))
}

func TestSelectorChecksUnityBound(t *testing.T) {
	editor2019 := version.NewUnityVersion(2019, 4, 31, version.ReleaseTypeNormal, 1)
	editor2022 := version.NewUnityVersion(2022, 3, 6, version.ReleaseTypeNormal, 1)

	pkg := makePackage(t, &vpm.PackageJSON{
		Name:    "com.example.tool",
		Version: "1.0.0",
		Unity:   "2022.3",
	})

	assert.Assert(t, !vpm.LatestFor(editor2019, false).Satisfies(pkg))
	assert.Assert(t, vpm.LatestFor(editor2022, false).Satisfies(pkg))

	// Unknown editor version skips the compatibility check.
	assert.Assert(t, vpm.LatestFor(nil, false).Satisfies(pkg))
}

func TestMemoryCollectionPicksHighestSatisfying(t *testing.T) {
	c := vpm.NewMemoryCollection(
		makePackage(t, &vpm.PackageJSON{Name: "com.example.lib", Version: "1.4.0"}),
		makePackage(t, &vpm.PackageJSON{Name: "com.example.lib", Version: "1.6.0"}),
		makePackage(t, &vpm.PackageJSON{Name: "com.example.lib", Version: "2.1.0"}),
	)

	r := version.MustParseRange(">=1.0.0 <2.0.0")
	found := c.FindPackageByName("com.example.lib", vpm.RangeFor(nil, r, false))
	assert.Assert(t, found != nil)
	assert.Equal(t, found.Version().String(), "1.6.0")

	assert.Assert(t, c.FindPackageByName("com.example.missing", vpm.LatestFor(nil, false)) == nil)
}

func TestMemoryCollectionOrdersPrereleaseBelowRelease(t *testing.T) {
	c := vpm.NewMemoryCollection(
		makePackage(t, &vpm.PackageJSON{Name: "com.example.lib", Version: "1.6.0-rc.1"}),
		makePackage(t, &vpm.PackageJSON{Name: "com.example.lib", Version: "1.6.0"}),
	)

	found := c.FindPackageByName("com.example.lib", vpm.LatestFor(nil, true))
	assert.Assert(t, found != nil)
	assert.Equal(t, found.Version().String(), "1.6.0")
}

func TestParsePackageJSON(t *testing.T) {
	data := []byte(`{
		"name": "com.vrchat.avatars",
		"displayName": "VRChat Avatars SDK",
		"version": "3.4.0",
		"unity": "2019.4",
		"vpmDependencies": {"com.vrchat.base": "3.4.0"},
		"legacyPackages": ["com.vrchat.sdk3a"],
		"legacyFolders": {"Assets\\VRCSDK": "guid0"}
	}`)

	p, err := vpm.ParsePackageJSON(data)
	assert.NilError(t, err)
	assert.Equal(t, p.Name(), "com.vrchat.avatars")
	assert.Equal(t, p.Version().String(), "3.4.0")
	assert.Equal(t, p.Unity().String(), "2019.4")
	assert.Assert(t, p.VPMDependencies()["com.vrchat.base"] != nil)
	assert.DeepEqual(t, p.LegacyPackages(), []string{"com.vrchat.sdk3a"})
}
