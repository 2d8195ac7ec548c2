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
	"github.com/urfave/cli/v2"

	"github.com/lonelyicer/vrc-get/pkg/slogext"
)

// newResolveCommand returns a new urfave/cli.Command for the resolve
// command.
func newResolveCommand(log slogext.Logger) *cli.Command {
	return &cli.Command{
		Name:        "resolve",
		Usage:       "plan the changes needed to satisfy the manifest",
		Description: "Computes installs for locked and declared packages without applying anything",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "if-needed",
				Usage: "Do nothing when the project already matches its manifest",
			},
		},
		Action: func(c *cli.Context) error {
			proj, err := loadProject(c, log)
			if err != nil {
				return err
			}

			if c.Bool("if-needed") && !proj.ShouldResolve() {
				log.Info("Project is already resolved")
				return nil
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

			changes, err := proj.ResolveRequest(c.Context, collection)
			if err != nil {
				return err
			}

			printChanges(changes)
			return nil
		},
	}
}
