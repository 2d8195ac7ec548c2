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
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/lonelyicer/vrc-get/internal/project"
	"github.com/lonelyicer/vrc-get/pkg/slogext"
	"github.com/lonelyicer/vrc-get/pkg/version"
	"github.com/lonelyicer/vrc-get/pkg/vpm"
)

// newInstallCommand returns a new urfave/cli.Command for the install
// command.
func newInstallCommand(log slogext.Logger) *cli.Command {
	return &cli.Command{
		Name:        "install",
		Aliases:     []string{"i", "add"},
		Usage:       "plan adding packages to the project",
		Description: "Accepts package names, optionally pinned as name@version",
		ArgsUsage:   "<package>...",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "prerelease",
				Usage: "Consider pre-release versions when selecting packages",
			},
			&cli.BoolFlag{
				Name:  "allow-downgrade",
				Usage: "Permit requesting a version lower than the locked one",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return errors.New("at least one package name is required")
			}

			proj, err := loadProject(c, log)
			if err != nil {
				return err
			}

			env, err := loadEnvironment(log)
			if err != nil {
				return err
			}
			defer env.Close()

			collection, err := env.LoadPackageCollection()
			if err != nil {
				return err
			}

			var packages []*vpm.Package
			for _, arg := range c.Args().Slice() {
				pkg, err := selectPackage(collection, proj, arg, c.Bool("prerelease"))
				if err != nil {
					return err
				}
				packages = append(packages, pkg)
			}

			changes, err := proj.AddPackageRequest(c.Context, collection, packages, project.AddPackageOptions{
				ToDependencies: true,
				AllowDowngrade: c.Bool("allow-downgrade"),
			})
			if err != nil {
				return err
			}

			printChanges(changes)
			return nil
		},
	}
}

// selectPackage resolves one command-line argument to a concrete
// package: either "name" for the latest compatible version or
// "name@version" for an exact pin.
func selectPackage(collection vpm.PackageCollection, proj *project.UnityProject, arg string, prerelease bool) (*vpm.Package, error) {
	name, pinned, hasPin := strings.Cut(arg, "@")

	var selector vpm.VersionSelector
	if hasPin {
		v, err := version.ParseVersion(pinned)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid version in %q", arg)
		}
		selector = vpm.SpecificVersion(v)
	} else {
		selector = vpm.LatestFor(proj.UnityVersion(), prerelease)
	}

	pkg := collection.FindPackageByName(name, selector)
	if pkg == nil {
		return nil, errors.Errorf("package %s not found in any repository", name)
	}
	return pkg, nil
}
