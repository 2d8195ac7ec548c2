package project_test

import (
	"context"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/lonelyicer/vrc-get/internal/project"
	"github.com/lonelyicer/vrc-get/internal/project/projecttest"
)

func TestBasicRemove(t *testing.T) {
	p := projecttest.NewVirtualProject().
		AddDependency("com.anatawa12.gists", "1.0.0").
		AddLocked("com.anatawa12.gists", "1.0.0", nil).
		Build(t)

	result, err := p.RemoveRequest(context.Background(), []string{"com.anatawa12.gists"})
	assert.NilError(t, err)

	assert.Equal(t, len(result.PackageChanges()), 1)
	assert.Equal(t, len(result.RemoveLegacyFolders()), 0)
	assert.Equal(t, len(result.RemoveLegacyFiles()), 0)
	assert.Equal(t, len(result.Conflicts()), 0)

	change := result.PackageChanges()["com.anatawa12.gists"]
	remove := change.AsRemove()
	assert.Assert(t, remove != nil, "gists is not removing")
	assert.Equal(t, remove.Reason(), project.RemoveReasonRequested)
}

func TestTransitiveUnusedRemove(t *testing.T) {
	p := projecttest.NewVirtualProject().
		AddDependency("com.vrchat.avatars", "1.0.0").
		AddLocked("com.vrchat.avatars", "1.0.0", map[string]string{"com.vrchat.base": "1.0.0"}).
		AddLocked("com.vrchat.base", "1.0.0", nil).
		Build(t)

	result, err := p.RemoveRequest(context.Background(), []string{"com.vrchat.avatars"})
	assert.NilError(t, err)

	assert.Equal(t, len(result.PackageChanges()), 2)
	assert.Equal(t, len(result.Conflicts()), 0)

	avatars := result.PackageChanges()["com.vrchat.avatars"].AsRemove()
	assert.Assert(t, avatars != nil, "avatars is not removing")
	assert.Equal(t, avatars.Reason(), project.RemoveReasonRequested)

	base := result.PackageChanges()["com.vrchat.base"].AsRemove()
	assert.Assert(t, base != nil, "base is not removing")
	assert.Equal(t, base.Reason(), project.RemoveReasonUnused)
}

func TestDoNotRemoveTransitivelyWhenUntouched(t *testing.T) {
	p := projecttest.NewVirtualProject().
		AddDependency("com.vrchat.avatars", "1.0.0").
		AddLocked("com.vrchat.avatars", "1.0.0", map[string]string{"com.vrchat.base": "1.0.0"}).
		AddLocked("com.vrchat.base", "1.0.0", nil).
		AddLocked("com.anatawa12.untouched_library", "1.0.0", nil).
		Build(t)

	result, err := p.RemoveRequest(context.Background(), []string{"com.vrchat.avatars"})
	assert.NilError(t, err)

	assert.Equal(t, len(result.PackageChanges()), 2)

	_, touched := result.PackageChanges()["com.anatawa12.untouched_library"]
	assert.Assert(t, !touched, "untouched_library should not be part of the plan")
}

// Every locked package along a chain below a removed package is swept,
// not only the removed package's direct dependency.
func TestRemoveSweepsChains(t *testing.T) {
	p := projecttest.NewVirtualProject().
		AddDependency("com.example.app", "1.0.0").
		AddLocked("com.example.app", "1.0.0", map[string]string{"com.example.mid": "1.0.0"}).
		AddLocked("com.example.mid", "1.0.0", map[string]string{"com.example.leaf": "1.0.0"}).
		AddLocked("com.example.leaf", "1.0.0", nil).
		Build(t)

	result, err := p.RemoveRequest(context.Background(), []string{"com.example.app"})
	assert.NilError(t, err)

	assert.Equal(t, len(result.PackageChanges()), 3)
	for _, name := range []string{"com.example.mid", "com.example.leaf"} {
		remove := result.PackageChanges()[name].AsRemove()
		assert.Assert(t, remove != nil, "%s is not removing", name)
		assert.Equal(t, remove.Reason(), project.RemoveReasonUnused)
	}
}

// A shared dependency stays installed while another locked package
// still needs it.
func TestRemoveKeepsSharedDependency(t *testing.T) {
	p := projecttest.NewVirtualProject().
		AddDependency("com.vrchat.avatars", "1.0.0").
		AddDependency("com.example.tools", "1.0.0").
		AddLocked("com.vrchat.avatars", "1.0.0", map[string]string{"com.vrchat.base": "1.0.0"}).
		AddLocked("com.example.tools", "1.0.0", map[string]string{"com.vrchat.base": "1.0.0"}).
		AddLocked("com.vrchat.base", "1.0.0", nil).
		Build(t)

	result, err := p.RemoveRequest(context.Background(), []string{"com.vrchat.avatars"})
	assert.NilError(t, err)

	assert.Equal(t, len(result.PackageChanges()), 1)
	remove := result.PackageChanges()["com.vrchat.avatars"].AsRemove()
	assert.Assert(t, remove != nil)
	assert.Equal(t, remove.Reason(), project.RemoveReasonRequested)
}

func TestRemoveIgnoresNotLockedNames(t *testing.T) {
	p := projecttest.NewVirtualProject().
		AddDependency("com.anatawa12.gists", "1.0.0").
		AddLocked("com.anatawa12.gists", "1.0.0", nil).
		Build(t)

	result, err := p.RemoveRequest(context.Background(), []string{"com.example.never_installed"})
	assert.NilError(t, err)
	assert.Equal(t, len(result.PackageChanges()), 0)
}
