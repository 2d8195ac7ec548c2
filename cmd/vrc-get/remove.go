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
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/lonelyicer/vrc-get/pkg/slogext"
)

// newRemoveCommand returns a new urfave/cli.Command for the remove
// command.
func newRemoveCommand(log slogext.Logger) *cli.Command {
	return &cli.Command{
		Name:        "remove",
		Aliases:     []string{"rm"},
		Usage:       "plan removing packages from the project",
		Description: "Removals sweep locked packages left without a requirer",
		ArgsUsage:   "<package>...",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return errors.New("at least one package name is required")
			}

			proj, err := loadProject(c, log)
			if err != nil {
				return err
			}

			changes, err := proj.RemoveRequest(c.Context, c.Args().Slice())
			if err != nil {
				return err
			}

			printChanges(changes)
			return nil
		},
	}
}
