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
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"pakfs/internal/pak"
)

var (
	packOutput string
	packLevel  string
)

var packCmd = &cobra.Command{
	Use:   "pack <dir>",
	Short: "Build a pak archive from a directory tree",
	Long: `Walk a directory tree and pack every regular file into a pak archive.
Entry paths inside the archive are relative to the directory, in slash form.

Examples:
  pakfs pack assets -o assets.pak
  pakfs pack assets -o assets.pak --level best`,
	Args: cobra.ExactArgs(1),
	RunE: runPack,
}

func init() {
	packCmd.Flags().StringVarP(&packOutput, "output", "o", "", "output pak file (required)")
	packCmd.Flags().StringVar(&packLevel, "level", "normal", "compression: none, fast, normal, best")
	packCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(packCmd)
}

func parseLevel(s string) (pak.CompressMode, error) {
	switch s {
	case "none":
		return pak.CompressNone, nil
	case "fast":
		return pak.CompressFast, nil
	case "normal":
		return pak.CompressNormal, nil
	case "best":
		return pak.CompressBest, nil
	}
	return 0, fmt.Errorf("unknown compression level %q", s)
}

func runPack(cmd *cobra.Command, args []string) error {
	root := args[0]
	mode, err := parseLevel(packLevel)
	if err != nil {
		return err
	}

	w, err := pak.Create(packOutput, mode)
	if err != nil {
		return err
	}

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return w.Put(filepath.ToSlash(rel), f)
	})
	if walkErr != nil {
		w.Close()
		return walkErr
	}

	count := w.Count()
	if err := w.Close(); err != nil {
		return err
	}

	fmt.Printf("Packed %d file(s) into %s (%s)\n", count, packOutput, mode)
	return nil
}
