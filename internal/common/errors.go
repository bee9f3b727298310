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

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrExists          = errors.New("already exists")
	ErrOutOfMemory     = errors.New("out of memory")
	ErrIO              = errors.New("I/O error")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidHandle   = errors.New("invalid handle")
	ErrNotInitialized  = errors.New("not initialized")
	ErrReadOnly        = errors.New("read-only file")
	ErrWriteOnly       = errors.New("write-only file")
	ErrMonitorDisabled = errors.New("file monitoring disabled")
	ErrBadArchive      = errors.New("malformed archive")
)
