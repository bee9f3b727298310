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
	"path/filepath"

	"github.com/spf13/cobra"

	"pakfs/internal/fs"
	"pakfs/internal/pak"
)

var extractOutput string

var extractCmd = &cobra.Command{
	Use:   "extract <file.pak> <path>",
	Short: "Extract one entry from a pak archive",
	Long: `Extract one entry from a pak archive through the file manager.

Examples:
  pakfs extract assets.pak textures/wall.dds
  pakfs extract assets.pak textures/wall.dds -o wall.dds`,
	Args: cobra.ExactArgs(2),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "output file (default: entry base name)")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	pakPath, entry := args[0], args[1]

	r, err := pak.Open(pakPath)
	if err != nil {
		return err
	}
	defer r.Close()

	m, err := fs.New(fs.Options{})
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.MountArchive(r); err != nil {
		return err
	}

	src, err := m.OpenMem(entry, false)
	if err != nil {
		return fmt.Errorf("%s: %w", entry, err)
	}
	defer src.Close()

	out := extractOutput
	if out == "" {
		out = filepath.Base(entry)
	}
	dst, err := m.CreateDisk(out)
	if err != nil {
		return err
	}

	buf := make([]byte, src.Size())
	if _, err := src.Read(buf); err != nil && src.Size() > 0 {
		dst.Close()
		return err
	}
	if _, err := dst.Write(buf); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}

	fmt.Printf("Extracted %s (%d bytes) to %s\n", entry, len(buf), out)
	return nil
}
