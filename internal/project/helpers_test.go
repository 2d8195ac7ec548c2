package project_test

import (
	"errors"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/lonelyicer/vrc-get/pkg/vpm"
)

func errorAs(err error, target any) bool {
	return errors.As(err, target)
}

func makePackage(t *testing.T, j *vpm.PackageJSON) *vpm.Package {
	t.Helper()
	p, err := vpm.NewPackage(j)
	assert.NilError(t, err)
	return p
}

func makeCollection(t *testing.T, packages ...*vpm.PackageJSON) *vpm.MemoryCollection {
	t.Helper()
	c := vpm.NewMemoryCollection()
	for _, j := range packages {
		c.AddPackage(makePackage(t, j))
	}
	return c
}
