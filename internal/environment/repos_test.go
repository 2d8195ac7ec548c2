package environment

import (
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"gotest.tools/v3/assert"

	"github.com/lonelyicer/vrc-get/pkg/slogext"
	"github.com/lonelyicer/vrc-get/pkg/vpm"
)

func writeTestFile(t *testing.T, fs billy.Filesystem, path, content string) {
	t.Helper()
	f, err := fs.Create(path)
	assert.NilError(t, err)
	_, err = f.Write([]byte(content))
	assert.NilError(t, err)
	assert.NilError(t, f.Close())
}

func TestLoadPackageCollection(t *testing.T) {
	fs := memfs.New()
	writeTestFile(t, fs, "Repos/official.json", `{
		"repo": {
			"name": "Official",
			"packages": {
				"com.vrchat.base": {
					"versions": {
						"1.0.0": {"name": "com.vrchat.base", "version": "1.0.0"},
						"1.2.0": {"name": "com.vrchat.base", "version": "1.2.0"}
					}
				}
			}
		}
	}`)
	writeTestFile(t, fs, "Repos/broken.json", `{ not json at all`)

	env, err := NewEnvironment(fs, slogext.NewNopLogger())
	assert.NilError(t, err)

	collection, err := env.LoadPackageCollection()
	assert.NilError(t, err)

	found := collection.FindPackageByName("com.vrchat.base", vpm.LatestFor(nil, false))
	assert.Assert(t, found != nil)
	assert.Equal(t, found.Version().String(), "1.2.0")
}

func TestLoadPackageCollectionWithoutCaches(t *testing.T) {
	env, err := NewEnvironment(memfs.New(), slogext.NewNopLogger())
	assert.NilError(t, err)

	collection, err := env.LoadPackageCollection()
	assert.NilError(t, err)
	assert.Assert(t, collection.FindPackageByName("com.example.any", vpm.LatestFor(nil, true)) == nil)
}
