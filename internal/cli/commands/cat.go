// Copyright 2024 PakFS Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package commands

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

var catBypass bool

var catCmd = &cobra.Command{
	Use:   "cat <path>",
	Short: "Print a logical path resolved through the configured chain",
	Long: `Resolve a logical path through the archives and search paths from the
config file and write its contents to stdout. With --bypass the virtual
tiers are skipped and the path is read raw.

Examples:
  pakfs cat textures/wall.dds > wall.dds
  pakfs cat --bypass ./local-override.json`,
	Args: cobra.ExactArgs(1),
	RunE: runCat,
}

func init() {
	catCmd.Flags().BoolVar(&catBypass, "bypass", false, "skip archives and search paths")
	rootCmd.AddCommand(catCmd)
}

func runCat(cmd *cobra.Command, args []string) error {
	m, cleanup, err := buildManager(false)
	if err != nil {
		return err
	}
	defer cleanup()

	f, err := m.OpenMem(args[0], catBypass)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(os.Stdout, f)
	return err
}
