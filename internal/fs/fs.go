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

// Package fs implements the virtual file layer: pooled file handles over
// disk- and memory-backed storage, a layered resolution chain (mounted
// archives, then virtual directories, then the raw path), and hot-reload
// monitoring of virtual directory roots.
package fs

// Kind selects a handle's backend.
type Kind int

const (
	KindDisk Kind = iota
	KindMemory
)

func (k Kind) String() string {
	switch k {
	case KindDisk:
		return "disk"
	case KindMemory:
		return "memory"
	}
	return "unknown"
}

// Mode is the access intent declared when a handle is opened.
type Mode int

const (
	ModeRead Mode = iota
	ModeWrite
)

func (m Mode) String() string {
	if m == ModeWrite {
		return "write"
	}
	return "read"
}

// BlockSize is the fixed growth granularity of memory-backed files. A write
// past capacity grows the buffer by the shortfall rounded up to a multiple of
// this size, never geometrically.
const BlockSize = 4096

// Archive is the read-only container consumed by the resolution chain. Pak
// files satisfy it; anything else that can locate and extract by logical path
// can be mounted the same way.
type Archive interface {
	// Locate returns an archive-local id for the logical path.
	Locate(path string) (uint32, bool)
	// Extract returns the full contents of a located entry.
	Extract(id uint32) ([]byte, error)
	// Name identifies the archive in logs and errors.
	Name() string
}
