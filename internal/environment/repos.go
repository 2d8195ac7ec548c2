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

package environment

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/lonelyicer/vrc-get/pkg/vpm"
)

// reposDirName holds one JSON cache file per registered repository,
// written by the repository fetcher.
const reposDirName = "Repos"

// repoCacheJSON is the on-disk shape of a cached repository listing.
type repoCacheJSON struct {
	Repo struct {
		Name     string `json:"name,omitempty"`
		Packages map[string]struct {
			Versions map[string]json.RawMessage `json:"versions"`
		} `json:"packages"`
	} `json:"repo"`
}

// LoadPackageCollection builds the candidate-version lookup from every
// cached repository listing. Unparseable package documents are logged
// and skipped; resolution works with what is readable.
func (e *Environment) LoadPackageCollection() (*vpm.MemoryCollection, error) {
	collection := vpm.NewMemoryCollection()

	entries, err := e.fs.ReadDir(reposDirName)
	if os.IsNotExist(err) {
		return collection, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to list repository caches")
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		f, err := e.fs.Open(reposDirName + "/" + entry.Name())
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open repository cache %s", entry.Name())
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read repository cache %s", entry.Name())
		}

		var cache repoCacheJSON
		if err := json.Unmarshal(data, &cache); err != nil {
			e.log.With("repo", entry.Name()).WithError(err).Warn("Skipping unparseable repository cache")
			continue
		}

		for name, pkg := range cache.Repo.Packages {
			for _, doc := range pkg.Versions {
				parsed, err := vpm.ParsePackageJSON(doc)
				if err != nil {
					e.log.With("repo", entry.Name()).With("package", name).WithError(err).
						Warn("Skipping unparseable package document")
					continue
				}
				collection.AddPackage(parsed)
			}
		}
	}

	return collection, nil
}
