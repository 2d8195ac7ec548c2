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

// Package environment implements the per-user state of vrc-get: the
// settings file, the local repository caches, and the Unity
// installation registry backed by a small embedded document store.
package environment

import (
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"

	"github.com/lonelyicer/vrc-get/pkg/slogext"
)

// databaseFileName is the document store file inside the configuration
// directory.
const databaseFileName = "vcc.db"

// Environment holds exclusive ownership of the configuration
// directory: settings, repository caches, and the installation
// registry. It is a single-writer structure; callers must not share
// one instance across concurrent mutations.
type Environment struct {
	fs  billy.Filesystem
	log slogext.Logger

	settings *Settings
	db       *database

	// isFile probes absolute paths outside the configuration
	// directory, such as editor binaries reported by the Unity Hub.
	// Swapped out in tests.
	isFile func(path string) bool
}

// NewEnvironment loads the environment from a filesystem rooted at the
// configuration directory. The document store is opened lazily on
// first registry access.
func NewEnvironment(fs billy.Filesystem, log slogext.Logger) (*Environment, error) {
	settings, err := loadSettings(fs)
	if err != nil {
		return nil, err
	}

	return &Environment{
		fs:       fs,
		log:      log,
		settings: settings,
		isFile: func(path string) bool {
			info, err := os.Stat(path)
			return err == nil && !info.IsDir()
		},
	}, nil
}

// Settings returns the environment's settings.
func (e *Environment) Settings() *Settings { return e.settings }

// SaveSettings persists the settings file.
func (e *Environment) SaveSettings() error {
	return saveSettings(e.fs, e.settings)
}

// getDB opens the document store on first use.
func (e *Environment) getDB() (*database, error) {
	if e.db != nil {
		return e.db, nil
	}

	db, err := openDatabase(filepath.Join(e.fs.Root(), databaseFileName))
	if err != nil {
		return nil, err
	}
	e.db = db
	return db, nil
}

// Close releases the document store, if it was opened.
func (e *Environment) Close() error {
	if e.db == nil {
		return nil
	}
	db := e.db
	e.db = nil
	return db.Close()
}
