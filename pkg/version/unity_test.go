package version_test

import (
	"testing"

	"github.com/lonelyicer/vrc-get/pkg/version"
	"gotest.tools/v3/assert"
)

func TestParseUnityVersion(t *testing.T) {
	v, err := version.ParseUnityVersion("2019.4.31f1")
	assert.NilError(t, err)
	assert.Equal(t, v.Major(), uint64(2019))
	assert.Equal(t, v.Minor(), uint64(4))
	assert.Equal(t, v.Revision(), uint64(31))
	assert.Equal(t, v.Type(), version.ReleaseTypeNormal)
	assert.Equal(t, v.Increment(), uint64(1))
	assert.Equal(t, v.String(), "2019.4.31f1")
}

func TestParseUnityVersionWithoutSuffix(t *testing.T) {
	v, err := version.ParseUnityVersion("2022.3.6")
	assert.NilError(t, err)
	assert.Equal(t, v.Revision(), uint64(6))
	assert.Equal(t, v.Type(), version.ReleaseTypeNormal)
}

func TestParseUnityVersionRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "2019", "2019.4", "2019.4.31z1", "banana"} {
		_, err := version.ParseUnityVersion(s)
		assert.Assert(t, err != nil, "expected %q to fail", s)
	}
}

func TestPartialUnityVersionBound(t *testing.T) {
	editor2019 := version.NewUnityVersion(2019, 4, 31, version.ReleaseTypeNormal, 1)
	editor2022 := version.NewUnityVersion(2022, 3, 6, version.ReleaseTypeNormal, 1)

	bound, err := version.ParsePartialUnityVersion("2022.3")
	assert.NilError(t, err)
	assert.Assert(t, !bound.SupportedBy(editor2019))
	assert.Assert(t, bound.SupportedBy(editor2022))

	majorOnly, err := version.ParsePartialUnityVersion("2019")
	assert.NilError(t, err)
	assert.Assert(t, majorOnly.SupportedBy(editor2019))
	assert.Assert(t, majorOnly.SupportedBy(editor2022))
}
