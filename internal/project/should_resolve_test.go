package project_test

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/lonelyicer/vrc-get/internal/project/projecttest"
	"github.com/lonelyicer/vrc-get/pkg/vpm"
)

func TestShouldResolveFalseWhenConsistent(t *testing.T) {
	p := projecttest.NewVirtualProject().
		AddDependency("com.vrchat.base", "1.0.0").
		AddLocked("com.vrchat.base", "1.0.0", nil).
		Build(t)

	assert.Assert(t, !p.ShouldResolve())
}

func TestShouldResolveWhenLockedPackageMissingOnDisk(t *testing.T) {
	p := projecttest.NewVirtualProject().
		AddDependency("com.vrchat.base", "1.0.0").
		AddLocked("com.vrchat.base", "1.0.0", nil).
		WithoutInstalled("com.vrchat.base").
		Build(t)

	assert.Assert(t, p.ShouldResolve())
}

func TestShouldResolveWhenInstalledVersionDiffers(t *testing.T) {
	p := projecttest.NewVirtualProject().
		AddDependency("com.vrchat.base", "1.0.0").
		AddLocked("com.vrchat.base", "1.2.0", nil).
		WithInstalledVersion("com.vrchat.base", "1.0.0").
		Build(t)

	assert.Assert(t, p.ShouldResolve())
}

func TestShouldResolveWhenDependencyNotLocked(t *testing.T) {
	p := projecttest.NewVirtualProject().
		AddDependency("com.vrchat.base", "1.0.0").
		Build(t)

	assert.Assert(t, p.ShouldResolve())
}

// A declared dependency satisfied through the legacy list of an
// installed package does not force a resolve.
func TestShouldResolveLegacySatisfiesDependency(t *testing.T) {
	p := projecttest.NewVirtualProject().
		AddDependency("com.vrchat.sdk3a", "1.0.0").
		AddDependency("com.vrchat.avatars", "3.0.0").
		AddLocked("com.vrchat.avatars", "3.0.0", nil).
		AddUnlocked("LegacyHolder", &vpm.PackageJSON{
			Name:           "com.example.holder",
			Version:        "1.0.0",
			LegacyPackages: []string{"com.vrchat.sdk3a"},
		}).
		Build(t)

	assert.Assert(t, !p.ShouldResolve())
}

func TestShouldResolveWhenUnlockedDependencyMissing(t *testing.T) {
	p := projecttest.NewVirtualProject().
		AddUnlocked("CustomTool", &vpm.PackageJSON{
			Name:            "com.example.custom",
			Version:         "0.1.0",
			VPMDependencies: map[string]string{"com.example.lib": "1.0.0"},
		}).
		Build(t)

	assert.Assert(t, p.ShouldResolve())
}

// Dependencies between unlocked packages do not force a resolve.
func TestShouldResolveUnlockedSatisfiedByUnlocked(t *testing.T) {
	p := projecttest.NewVirtualProject().
		AddUnlocked("CustomTool", &vpm.PackageJSON{
			Name:            "com.example.custom",
			Version:         "0.1.0",
			VPMDependencies: map[string]string{"com.example.lib": "1.0.0"},
		}).
		AddUnlocked("CustomLib", &vpm.PackageJSON{
			Name:    "com.example.lib",
			Version: "1.0.0",
		}).
		Build(t)

	assert.Assert(t, !p.ShouldResolve())
}

// An unlocked package never satisfies a manifest dependency.
func TestShouldResolveManifestDependencyNotSatisfiedByUnlocked(t *testing.T) {
	p := projecttest.NewVirtualProject().
		AddDependency("com.example.lib", "1.0.0").
		AddUnlocked("CustomLib", &vpm.PackageJSON{
			Name:    "com.example.lib",
			Version: "1.0.0",
		}).
		Build(t)

	assert.Assert(t, p.ShouldResolve())
}

// Folders with unparseable package manifests are tolerated.
func TestShouldResolveIgnoresBrokenUnlockedFolders(t *testing.T) {
	p := projecttest.NewVirtualProject().
		AddDependency("com.vrchat.base", "1.0.0").
		AddLocked("com.vrchat.base", "1.0.0", nil).
		AddBrokenUnlocked("SomeRandomFolder").
		Build(t)

	assert.Assert(t, !p.ShouldResolve())
}
