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
	"io"
	"os"

	"github.com/spf13/cobra"

	"pakfs/internal/hash"
)

var hashSeed uint32

var hashCmd = &cobra.Command{
	Use:   "hash <file>|-",
	Short: "Print murmur fingerprints of a file or stdin",
	Long: `Print the 32-bit and 128-bit murmur fingerprints of a file.
With "-" the 32-bit digest is streamed from stdin.

Examples:
  pakfs hash assets.pak
  cat assets.pak | pakfs hash -`,
	Args: cobra.ExactArgs(1),
	RunE: runHash,
}

func init() {
	hashCmd.Flags().Uint32Var(&hashSeed, "seed", hash.DefaultSeed, "hash seed")
	rootCmd.AddCommand(hashCmd)
}

func runHash(cmd *cobra.Command, args []string) error {
	if args[0] == "-" {
		d := hash.New32(hashSeed)
		if _, err := io.Copy(d, os.Stdin); err != nil {
			return err
		}
		fmt.Printf("murmur32: %08x\n", d.Sum32())
		return nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	h128 := hash.Sum128(data, hashSeed)
	fmt.Printf("murmur32:  %08x\n", hash.Sum32(data, hashSeed))
	fmt.Printf("murmur128: %016x%016x\n", h128[0], h128[1])
	return nil
}
