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

package common

import (
	"path/filepath"
	"strings"
)

// NormalizePath cleans a logical path into the canonical form used as a lookup
// key: forward slashes, no leading/trailing slash. Archive entries, virtual
// directory lookups and monitor registrations all key off this form.
func NormalizePath(path string) string {
	path = filepath.ToSlash(filepath.Clean(path))
	path = strings.TrimPrefix(path, "/")
	path = strings.TrimSuffix(path, "/")
	if path == "." {
		return ""
	}
	return path
}

// JoinRoot joins a filesystem root with a logical path, returning a path in
// the OS-native form suitable for open(2).
func JoinRoot(root, logical string) string {
	return filepath.Join(root, filepath.FromSlash(logical))
}
