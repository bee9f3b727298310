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
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"pakfs/internal/fs"
	"pakfs/internal/util"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <dir> <path>...",
	Short: "Watch a directory and report changes to the given paths",
	Long: `Monitor a directory as a virtual root and print a line every time one
of the given relative paths changes on disk. Runs until interrupted.

Examples:
  pakfs watch assets textures/wall.dds shaders/main.vs
  pakfs watch . config.json --interval 250ms`,
	Args: cobra.MinimumNArgs(2),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 500*time.Millisecond, "poll interval")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	root, paths := args[0], args[1:]

	var ignores []string
	if cfg != nil {
		ignores = cfg.Ignores
	}
	m, err := fs.New(fs.Options{Monitoring: true, Ignores: ignores})
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.AddVirtualDir(root, true); err != nil {
		return err
	}
	for _, p := range paths {
		p := p
		if err := m.RegisterWatch(p, func(changed string) {
			fmt.Printf("%s changed %s\n", time.Now().Format(time.TimeOnly), changed)
		}); err != nil {
			return err
		}
	}
	defer func() {
		for _, p := range paths {
			m.UnregisterWatch(p)
		}
	}()

	fmt.Printf("Watching %s for changes to %d path(s), Ctrl-C to stop\n", root, len(paths))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	util.Tick(ctx, watchInterval, func() {
		if _, err := m.Poll(); err != nil {
			log.Errorf("[Watch] poll: %v", err)
		}
	})

	fmt.Println("\nStopping")
	return nil
}
