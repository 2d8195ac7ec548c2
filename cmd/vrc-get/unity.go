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

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/lonelyicer/vrc-get/pkg/slogext"
)

// newUnityCommand returns a new urfave/cli.Command for managing the
// Unity installation registry.
func newUnityCommand(log slogext.Logger) *cli.Command {
	return &cli.Command{
		Name:  "unity",
		Usage: "manage registered Unity editors",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list registered Unity editors",
				Action: func(c *cli.Context) error {
					env, err := loadEnvironment(log)
					if err != nil {
						return err
					}
					defer env.Close()

					rows, err := env.GetUnityInstallations()
					if err != nil {
						return err
					}

					for _, row := range rows {
						source := "manual"
						if row.LoadedFromHub {
							source = "hub"
						}
						fmt.Printf("%s\t%s\t%s\n", row.Version, row.Path, source)
					}
					return nil
				},
			},
			{
				Name:      "add",
				Usage:     "register a Unity editor by path",
				ArgsUsage: "<path>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return errors.New("exactly one editor path is required")
					}

					env, err := loadEnvironment(log)
					if err != nil {
						return err
					}
					defer env.Close()

					v, err := env.AddUnityInstallation(c.Context, c.Args().First())
					if err != nil {
						return err
					}

					log.With("version", v).Info("Registered Unity editor")
					return nil
				},
			},
			{
				Name:      "sync",
				Usage:     "reconcile the registry with editors reported by the Unity Hub",
				ArgsUsage: "<editor-path>...",
				Action: func(c *cli.Context) error {
					env, err := loadEnvironment(log)
					if err != nil {
						return err
					}
					defer env.Close()

					return env.UpdateUnityFromUnityHubAndFs(c.Context, c.Args().Slice())
				},
			},
		},
	}
}
