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

// Package jsonfile reads and updates JSON documents through the file
// manager, so documents packaged in archives resolve the same way loose
// files do.
package jsonfile

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"pakfs/internal/common"
	"pakfs/internal/fs"
)

// Load opens path through the resolution chain, validates it, and returns
// the parsed document root.
func Load(m *fs.Manager, path string, bypass bool) (gjson.Result, error) {
	text, err := m.LoadText(path, bypass)
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.Valid(text) {
		return gjson.Result{}, fmt.Errorf("%q: malformed JSON: %w", path, common.ErrInvalidArgument)
	}
	return gjson.Parse(text), nil
}

// Get loads path and returns the value at a gjson key path.
func Get(m *fs.Manager, path, key string, bypass bool) (gjson.Result, error) {
	doc, err := Load(m, path, bypass)
	if err != nil {
		return gjson.Result{}, err
	}
	return doc.Get(key), nil
}

// Set rewrites one key of a JSON file on disk. The document is read from the
// raw path (writes always bypass the virtual tiers); a missing file starts
// from an empty object.
func Set(m *fs.Manager, path, key string, value interface{}) error {
	text, err := m.LoadText(path, true)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			return err
		}
		text = "{}"
	}
	if text != "" && !gjson.Valid(text) {
		return fmt.Errorf("%q: malformed JSON: %w", path, common.ErrInvalidArgument)
	}

	out, err := sjson.Set(text, key, value)
	if err != nil {
		return fmt.Errorf("setting %q in %q: %w", key, path, common.ErrInvalidArgument)
	}

	f, err := m.CreateDisk(path)
	if err != nil {
		return err
	}
	if _, err := f.Write([]byte(out)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
