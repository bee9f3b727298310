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
	"fmt"

	"github.com/spf13/cobra"

	"pakfs/internal/pak"
)

var listCmd = &cobra.Command{
	Use:   "list <file.pak>",
	Short: "List the contents of a pak archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	r, err := pak.Open(args[0])
	if err != nil {
		return err
	}
	defer r.Close()

	paths := r.List()
	fmt.Printf("%s: %d file(s), compression %s\n", args[0], len(paths), r.Mode())
	for _, p := range paths {
		id, _ := r.Locate(p)
		raw, stored, err := r.Stat(id)
		if err != nil {
			return err
		}
		fmt.Printf("  %-48s %10d -> %10d\n", p, raw, stored)
	}
	return nil
}
