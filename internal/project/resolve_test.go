package project_test

import (
	"context"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/lonelyicer/vrc-get/internal/project/projecttest"
	"github.com/lonelyicer/vrc-get/pkg/vpm"
)

// A project whose lock table already satisfies every declared
// dependency resolves to a plan of pure reassertions.
func TestResolveStability(t *testing.T) {
	env := makeCollection(t,
		&vpm.PackageJSON{Name: "com.vrchat.avatars", Version: "1.0.0",
			VPMDependencies: map[string]string{"com.vrchat.base": "1.0.0"}},
		&vpm.PackageJSON{Name: "com.vrchat.base", Version: "1.0.0"},
	)

	p := projecttest.NewVirtualProject().
		AddDependency("com.vrchat.avatars", "1.0.0").
		AddLocked("com.vrchat.avatars", "1.0.0", map[string]string{"com.vrchat.base": "1.0.0"}).
		AddLocked("com.vrchat.base", "1.0.0", nil).
		Build(t)

	result, err := p.ResolveRequest(context.Background(), env)
	assert.NilError(t, err)

	assert.Equal(t, len(result.PackageChanges()), 2)
	assert.Equal(t, len(result.RemoveLegacyFolders()), 0)
	assert.Equal(t, len(result.RemoveLegacyFiles()), 0)
	assert.Equal(t, len(result.Conflicts()), 0)

	for name, change := range result.PackageChanges() {
		install := change.AsInstall()
		assert.Assert(t, install != nil, "%s is not an install", name)
		assert.Assert(t, install.AlreadyLocked(), "%s is not a reassertion", name)
	}
}

// Declared dependencies that never made it into the lock table are
// selected and promoted, the way template projects start out.
func TestResolveSelectsMissingDependencies(t *testing.T) {
	env := makeCollection(t,
		&vpm.PackageJSON{Name: "com.vrchat.avatars", Version: "1.2.0",
			VPMDependencies: map[string]string{"com.vrchat.base": "1.0.0"}},
		&vpm.PackageJSON{Name: "com.vrchat.base", Version: "1.0.0"},
		&vpm.PackageJSON{Name: "com.vrchat.base", Version: "1.2.0"},
	)

	p := projecttest.NewVirtualProject().
		AddDependency("com.vrchat.avatars", "1.0.0").
		Build(t)

	result, err := p.ResolveRequest(context.Background(), env)
	assert.NilError(t, err)

	avatars := result.PackageChanges()["com.vrchat.avatars"].AsInstall()
	assert.Assert(t, avatars != nil)
	assert.Equal(t, avatars.Package().Version().String(), "1.2.0")
	assert.Assert(t, avatars.ToDependencies() != nil)

	base := result.PackageChanges()["com.vrchat.base"].AsInstall()
	assert.Assert(t, base != nil)
	assert.Equal(t, base.Package().Version().String(), "1.2.0")
	assert.Assert(t, base.ToDependencies() == nil)
}

// Requirement ranges of independent requirers intersect; the highest
// version inside the intersection wins.
func TestResolveRangeIntersection(t *testing.T) {
	env := makeCollection(t,
		&vpm.PackageJSON{Name: "com.example.a", Version: "1.0.0",
			VPMDependencies: map[string]string{"com.example.b": ">=1.0.0 <2.0.0"}},
		&vpm.PackageJSON{Name: "com.example.c", Version: "1.0.0",
			VPMDependencies: map[string]string{"com.example.b": ">=1.5.0 <2.5.0"}},
		&vpm.PackageJSON{Name: "com.example.b", Version: "1.4.0"},
		&vpm.PackageJSON{Name: "com.example.b", Version: "1.6.0"},
		&vpm.PackageJSON{Name: "com.example.b", Version: "2.1.0"},
	)

	p := projecttest.NewVirtualProject().
		AddDependency("com.example.a", "1.0.0").
		AddDependency("com.example.c", "1.0.0").
		Build(t)

	result, err := p.ResolveRequest(context.Background(), env)
	assert.NilError(t, err)
	assert.Equal(t, len(result.Conflicts()), 0)

	b := result.PackageChanges()["com.example.b"].AsInstall()
	assert.Assert(t, b != nil)
	assert.Equal(t, b.Package().Version().String(), "1.6.0")
}

// An empty intersection is a conflict between the requirers, not an
// error.
func TestResolveRangeUnsatisfiable(t *testing.T) {
	env := makeCollection(t,
		&vpm.PackageJSON{Name: "com.example.a", Version: "1.0.0",
			VPMDependencies: map[string]string{"com.example.b": ">=1.0.0 <2.0.0"}},
		&vpm.PackageJSON{Name: "com.example.c", Version: "1.0.0",
			VPMDependencies: map[string]string{"com.example.b": ">=1.5.0 <2.5.0"}},
		&vpm.PackageJSON{Name: "com.example.b", Version: "1.4.0"},
		&vpm.PackageJSON{Name: "com.example.b", Version: "2.1.0"},
	)

	p := projecttest.NewVirtualProject().
		AddDependency("com.example.a", "1.0.0").
		AddDependency("com.example.c", "1.0.0").
		Build(t)

	result, err := p.ResolveRequest(context.Background(), env)
	assert.NilError(t, err)

	conflict := result.Conflicts()["com.example.b"]
	assert.Assert(t, conflict != nil, "expected a conflict on com.example.b")
	assert.DeepEqual(t, conflict.ConflictsWith(), []string{"com.example.a", "com.example.c"})
}

// A missing dependency is an error, not a conflict.
func TestResolveDependencyNotFound(t *testing.T) {
	env := makeCollection(t,
		&vpm.PackageJSON{Name: "com.example.a", Version: "1.0.0",
			VPMDependencies: map[string]string{"com.example.missing": "1.0.0"}},
	)

	p := projecttest.NewVirtualProject().
		AddDependency("com.example.a", "1.0.0").
		Build(t)

	_, err := p.ResolveRequest(context.Background(), env)
	assert.ErrorContains(t, err, "com.example.missing")
}

// Dependencies of unlocked packages are filled in against the
// intersection of every unlocked requirer.
func TestResolveUnlockedDependencies(t *testing.T) {
	env := makeCollection(t,
		&vpm.PackageJSON{Name: "com.example.lib", Version: "1.0.0"},
		&vpm.PackageJSON{Name: "com.example.lib", Version: "1.9.0"},
	)

	p := projecttest.NewVirtualProject().
		AddUnlocked("CustomTool", &vpm.PackageJSON{
			Name:            "com.example.custom",
			Version:         "0.1.0",
			VPMDependencies: map[string]string{"com.example.lib": ">=1.0.0 <1.5.0"},
		}).
		Build(t)

	result, err := p.ResolveRequest(context.Background(), env)
	assert.NilError(t, err)

	lib := result.PackageChanges()["com.example.lib"].AsInstall()
	assert.Assert(t, lib != nil)
	assert.Equal(t, lib.Package().Version().String(), "1.0.0")
}

// Reinstall forces real installs for pinned packages instead of
// reassertions.
func TestReinstallForcesReextraction(t *testing.T) {
	env := makeCollection(t,
		&vpm.PackageJSON{Name: "com.vrchat.base", Version: "1.0.0"},
	)

	p := projecttest.NewVirtualProject().
		AddDependency("com.vrchat.base", "1.0.0").
		AddLocked("com.vrchat.base", "1.0.0", nil).
		Build(t)

	result, err := p.ReinstallRequest(context.Background(), env)
	assert.NilError(t, err)

	install := result.PackageChanges()["com.vrchat.base"].AsInstall()
	assert.Assert(t, install != nil)
	assert.Assert(t, !install.AlreadyLocked())
}

// A locked package whose editor bound does not admit the project's
// editor is still reasserted, with the incompatibility surfaced.
func TestResolveSurfacesUnityConflict(t *testing.T) {
	env := makeCollection(t,
		&vpm.PackageJSON{Name: "com.example.dep", Version: "1.0.0", Unity: "2022.3"},
	)

	p := projecttest.NewVirtualProject().
		AddDependency("com.example.dep", "1.0.0").
		AddLocked("com.example.dep", "1.0.0", nil).
		WithUnityVersion("2019.4.31f1").
		Build(t)

	result, err := p.ResolveRequest(context.Background(), env)
	assert.NilError(t, err)

	install := result.PackageChanges()["com.example.dep"].AsInstall()
	assert.Assert(t, install != nil)

	conflict := result.Conflicts()["com.example.dep"]
	assert.Assert(t, conflict != nil, "expected a unity conflict on com.example.dep")
	assert.Assert(t, conflict.UnityConflict())
}
