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
	"context"
	"os"
	"runtime"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/lonelyicer/vrc-get/internal/cmdexec"
	"github.com/lonelyicer/vrc-get/pkg/version"
)

// ErrUnityAlreadyExists is returned when adding an installation whose
// path is already registered.
var ErrUnityAlreadyExists = errors.New("unity installation already exists")

// GetUnityInstallations returns every registered editor in
// registration order.
func (e *Environment) GetUnityInstallations() ([]UnityInstallation, error) {
	db, err := e.getDB()
	if err != nil {
		return nil, err
	}
	return db.GetUnityInstallations()
}

// AddUnityInstallation probes the editor binary at path for its
// version and registers it. The editor is asked with "-version"; the
// first whitespace-delimited token of its standard output is the
// version.
func (e *Environment) AddUnityInstallation(ctx context.Context, path string) (*version.UnityVersion, error) {
	v, err := e.addUnityInstallation(ctx, path, false)
	return v, err
}

func (e *Environment) addUnityInstallation(ctx context.Context, path string, loadedFromHub bool) (*version.UnityVersion, error) {
	db, err := e.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.GetUnityInstallations()
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.Path == path {
			return nil, errors.Wrapf(ErrUnityAlreadyExists, "at %s", path)
		}
	}

	out, err := cmdexec.Output(ctx, path, "-version")
	if err != nil {
		return nil, errors.Wrapf(err, "invalid unity installation at %s", path)
	}

	fields := strings.Fields(string(out))
	if len(fields) == 0 {
		return nil, errors.Errorf("no version reported by unity at %s", path)
	}

	v, err := version.ParseUnityVersion(fields[0])
	if err != nil {
		return nil, errors.Wrapf(err, "unity at %s", path)
	}

	if err := db.InsertUnityInstallation(&UnityInstallation{
		Path:          path,
		Version:       v.String(),
		LoadedFromHub: loadedFromHub,
	}); err != nil {
		return nil, err
	}

	return v, nil
}

// RemoveUnityInstallation removes a registered editor by row id.
func (e *Environment) RemoveUnityInstallation(id string) error {
	db, err := e.getDB()
	if err != nil {
		return err
	}
	return db.DeleteUnityInstallationByID(id)
}

// FindMostSuitableUnity picks the registered editor closest to
// expected: an exact match, then one differing only in release
// type/increment, then same major.minor, then same major. The first
// registered editor wins inside a tier. Returns nil when no editor
// shares the major version.
func (e *Environment) FindMostSuitableUnity(expected *version.UnityVersion) (*UnityInstallation, error) {
	rows, err := e.GetUnityInstallations()
	if err != nil {
		return nil, err
	}

	var revisionMatch, minorMatch, majorMatch *UnityInstallation

	for i := range rows {
		row := &rows[i]
		v := row.ParsedVersion()
		if v == nil {
			continue
		}

		switch {
		case v.Equal(expected):
			return row, nil
		case v.Major() != expected.Major():
			continue
		case v.Minor() != expected.Minor():
			if majorMatch == nil {
				majorMatch = row
			}
		case v.Revision() != expected.Revision():
			if minorMatch == nil {
				minorMatch = row
			}
		default:
			if revisionMatch == nil {
				revisionMatch = row
			}
		}
	}

	if revisionMatch != nil {
		return revisionMatch, nil
	}
	if minorMatch != nil {
		return minorMatch, nil
	}
	return majorMatch, nil
}

// UpdateUnityFromUnityHubAndFs reconciles the registry against the
// paths the Unity Hub reports and the filesystem: rows whose editor is
// gone are deleted, the loaded-from-hub flag is refreshed, and hub
// paths missing from the registry are added. Editors that fail the
// version probe are logged and skipped.
func (e *Environment) UpdateUnityFromUnityHubAndFs(ctx context.Context, pathsFromHub []string) error {
	db, err := e.getDB()
	if err != nil {
		return err
	}

	fromHub := make(map[string]bool, len(pathsFromHub))
	for _, path := range pathsFromHub {
		fromHub[path] = true
	}

	rows, err := db.GetUnityInstallations()
	if err != nil {
		return err
	}

	registered := make(map[string]bool, len(rows))
	for i := range rows {
		row := rows[i]

		if !e.isFile(row.Path) {
			e.log.Infof("Removed Unity that no longer exists: %s", row.Path)
			if err := db.DeleteUnityInstallationByID(row.ID); err != nil {
				return err
			}
			continue
		}

		registered[row.Path] = true

		if hub := fromHub[row.Path]; hub != row.LoadedFromHub {
			row.LoadedFromHub = hub
			if err := db.UpdateUnityInstallation(&row); err != nil {
				return err
			}
		}
	}

	var probeErrs *multierror.Error
	for _, path := range pathsFromHub {
		if registered[path] {
			continue
		}
		if _, err := e.addUnityInstallation(ctx, path, true); err != nil {
			probeErrs = multierror.Append(probeErrs, errors.Wrap(err, path))
			continue
		}
		e.log.Infof("Added Unity from Unity Hub: %s", path)
	}

	if probeErrs != nil {
		// Probe failures leave the registry usable; report and move on.
		e.log.WithError(probeErrs).Warn("Some Unity installations could not be added")
	}

	return nil
}

// FindUnityHub returns the Unity Hub binary: the configured path when
// it still exists, otherwise the first default location that does. A
// newly discovered path is persisted into settings. Returns "" when no
// hub is found.
func (e *Environment) FindUnityHub(_ context.Context) (string, error) {
	if e.settings.UnityHub != "" && e.isFile(e.settings.UnityHub) {
		return e.settings.UnityHub, nil
	}

	for _, path := range defaultUnityHubPaths() {
		if !e.isFile(path) {
			continue
		}
		e.settings.UnityHub = path
		if err := e.SaveSettings(); err != nil {
			return "", err
		}
		return path, nil
	}

	return "", nil
}

// defaultUnityHubPaths returns the per-platform install locations of
// the Unity Hub.
//
// https://docs.unity3d.com/hub/manual/HubCLI.html
func defaultUnityHubPaths() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{`C:\Program Files\Unity Hub\Unity Hub.exe`}
	case "darwin":
		return []string{"/Applications/Unity Hub.app/Contents/MacOS/Unity Hub"}
	case "linux":
		paths := []string{"/usr/bin/unity-hub"}
		if home, err := os.UserHomeDir(); err == nil {
			paths = append([]string{home + "/Applications/Unity Hub.AppImage"}, paths...)
		}
		return paths
	default:
		return nil
	}
}
