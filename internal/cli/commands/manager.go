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

	"pakfs/internal/fs"
	"pakfs/internal/pak"
)

// buildManager constructs a manager from the loaded config: search paths
// registered in order, archives mounted in order. The returned cleanup
// closes the mounted archives and the manager.
func buildManager(monitoring bool) (*fs.Manager, func(), error) {
	opts := fs.Options{Monitoring: monitoring}
	if cfg != nil {
		opts.MaxDiskFiles = cfg.MaxDiskFiles
		opts.MaxMemFiles = cfg.MaxMemFiles
		opts.Ignores = cfg.Ignores
	}

	m, err := fs.New(opts)
	if err != nil {
		return nil, nil, err
	}

	var readers []*pak.Reader
	cleanup := func() {
		m.Close()
		for _, r := range readers {
			r.Close()
		}
	}

	if cfg != nil {
		for _, sp := range cfg.SearchPaths {
			if err := m.AddVirtualDir(sp.Path, monitoring && sp.Monitor); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("search path %q: %w", sp.Path, err)
			}
		}
		for _, p := range cfg.Archives {
			r, err := pak.Open(p)
			if err != nil {
				cleanup()
				return nil, nil, err
			}
			readers = append(readers, r)
			if err := m.MountArchive(r); err != nil {
				cleanup()
				return nil, nil, err
			}
		}
	}

	return m, cleanup, nil
}
