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

// newReinstallCommand returns a new urfave/cli.Command for the
// reinstall command.
func newReinstallCommand(log slogext.Logger) *cli.Command {
	return &cli.Command{
		Name:        "reinstall",
		Usage:       "plan re-extraction of every locked package",
		Description: "Useful after moving a project between machines",
		Action: func(c *cli.Context) error {
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

			changes, err := proj.ReinstallRequest(c.Context, collection)
			if err != nil {
				return err
			}

			printChanges(changes)
			return nil
		},
	}
}
