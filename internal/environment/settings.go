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
	"io"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// settingsFileName is the environment settings file inside the
// configuration directory.
const settingsFileName = "settings.yaml"

// Settings is the environment's persisted configuration.
type Settings struct {
	// UnityHub is the path of the Unity Hub binary, discovered once and
	// remembered.
	UnityHub string `yaml:"unityHub,omitempty"`

	// DefaultProjectPath is where new projects are created.
	DefaultProjectPath string `yaml:"defaultProjectPath,omitempty"`
}

// loadSettings reads settings.yaml from the configuration directory. A
// missing file yields empty settings.
func loadSettings(fs billy.Filesystem) (*Settings, error) {
	f, err := fs.Open(settingsFileName)
	if os.IsNotExist(err) {
		return &Settings{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to open settings")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read settings")
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, "failed to parse settings")
	}
	return &s, nil
}

// saveSettings writes settings.yaml back to the configuration
// directory.
func saveSettings(fs billy.Filesystem, s *Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "failed to render settings")
	}

	f, err := fs.Create(settingsFileName)
	if err != nil {
		return errors.Wrap(err, "failed to create settings")
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return errors.Wrap(err, "failed to write settings")
	}
	return nil
}
