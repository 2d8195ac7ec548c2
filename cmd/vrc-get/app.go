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

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/lonelyicer/vrc-get/internal/environment"
	"github.com/lonelyicer/vrc-get/internal/project"
	"github.com/lonelyicer/vrc-get/pkg/slogext"
)

// newApp builds the vrc-get CLI application.
func newApp(log slogext.Logger) *cli.App {
	return &cli.App{
		Name:        "vrc-get",
		Usage:       "VPM package manager for VRChat projects",
		Description: "Plans and reports package changes for a Unity project managed through VPM",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "project",
				Aliases: []string{"p"},
				Usage:   "Path of the Unity project",
				Value:   ".",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "Enables debug logging for version resolution",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				log.SetLevel(slogext.DebugLevel)
				log.Debug("Debug logging enabled")
			}
			return nil
		},
		Commands: []*cli.Command{
			newResolveCommand(log),
			newInstallCommand(log),
			newRemoveCommand(log),
			newReinstallCommand(log),
			newUnityCommand(log),
		},
	}
}

// loadEnvironment opens the per-user environment in the configuration
// directory.
func loadEnvironment(log slogext.Logger) (*environment.Environment, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return nil, errors.Wrap(err, "failed to find configuration directory")
	}

	dir := filepath.Join(base, "VRChatCreatorCompanion")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create configuration directory")
	}

	return environment.NewEnvironment(osfs.New(dir), log)
}

// loadProject reads the Unity project named by the --project flag.
func loadProject(c *cli.Context, log slogext.Logger) (*project.UnityProject, error) {
	dir, err := filepath.Abs(c.String("project"))
	if err != nil {
		return nil, err
	}
	return project.Load(osfs.New(dir), log)
}

// printChanges renders a plan for the user. Plans are only reported;
// applying them is a separate concern.
func printChanges(changes *project.PendingProjectChanges) {
	names := changes.PackageChangeNames()
	if len(names) == 0 {
		fmt.Println("nothing to do")
	}

	for _, name := range names {
		change := changes.PackageChanges()[name]
		switch {
		case change.AsInstall() != nil && change.AsInstall().AlreadyLocked():
			fmt.Printf("keep    %s %s\n", name, change.AsInstall().Package().Version())
		case change.AsInstall() != nil:
			fmt.Printf("install %s %s\n", name, change.AsInstall().Package().Version())
		default:
			fmt.Printf("remove  %s (%s)\n", name, change.AsRemove().Reason())
		}
	}

	for _, folder := range changes.RemoveLegacyFolders() {
		fmt.Printf("delete  %s/ (legacy)\n", folder)
	}
	for _, file := range changes.RemoveLegacyFiles() {
		fmt.Printf("delete  %s (legacy)\n", file)
	}

	conflicts := changes.Conflicts()
	conflictNames := make([]string, 0, len(conflicts))
	for name := range conflicts {
		conflictNames = append(conflictNames, name)
	}
	sort.Strings(conflictNames)
	for _, name := range conflictNames {
		conflict := conflicts[name]
		if len(conflict.ConflictsWith()) > 0 {
			fmt.Printf("conflict %s with %s\n", name, strings.Join(conflict.ConflictsWith(), ", "))
		}
		if conflict.UnityConflict() {
			fmt.Printf("conflict %s with the project's unity version\n", name)
		}
	}
}
