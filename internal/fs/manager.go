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

package fs

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"pakfs/internal/common"
	"pakfs/internal/monitor"
	"pakfs/internal/pool"
)

// Options configures a Manager.
type Options struct {
	// MaxDiskFiles / MaxMemFiles cap the handle pools; 0 means the pools
	// grow without bound.
	MaxDiskFiles int
	MaxMemFiles  int

	// Monitoring enables the directory watcher. When false, Poll,
	// RegisterWatch and UnregisterWatch fail with ErrMonitorDisabled.
	Monitoring bool

	// Ignores are gitignore-style patterns filtering watcher noise
	// (editor swap files and the like) out of every monitored directory.
	Ignores []string
}

type vdir struct {
	root string
	buf  *monitor.Buffer // nil when this root is not monitored
}

// Manager is the file layer's context object. The host constructs one (or
// more) explicitly and passes it to everything that does file I/O; there is
// no process-wide instance.
//
// The vdir/archive lists are guarded by mu; the handle pools and the monitor
// registry carry their own locks, and none of these locks nest.
type Manager struct {
	id string

	mu       sync.Mutex
	vdirs    []*vdir
	archives []Archive
	closed   bool

	diskPool *pool.Pool[diskFile]
	memPool  *pool.Pool[memFile]

	registry *monitor.Registry
	watcher  *monitor.Watcher
	ignores  []string
}

// New constructs a manager. With Options.Monitoring set it also starts the
// filesystem watcher; a watcher that cannot start fails construction rather
// than degrading silently.
func New(opts Options) (*Manager, error) {
	m := &Manager{
		id:       uuid.NewString()[:8],
		diskPool: pool.New[diskFile](pool.DefaultBlockItems, opts.MaxDiskFiles),
		memPool:  pool.New[memFile](pool.DefaultBlockItems, opts.MaxMemFiles),
		registry: monitor.NewRegistry(),
		ignores:  opts.Ignores,
	}

	if opts.Monitoring {
		w, err := monitor.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("starting watcher: %w", err)
		}
		m.watcher = w
	}

	log.Debugf("[Manager %s] created (monitoring=%v)", m.id, opts.Monitoring)
	return m, nil
}

// Close tears the manager down. Live handles and monitor registrations at
// this point are leaks; they are counted, logged, and force-released.
// Every operation after Close fails with ErrNotInitialized.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return common.ErrNotInitialized
	}
	m.closed = true
	m.vdirs = nil
	m.archives = nil
	m.mu.Unlock()

	if leaked := m.diskPool.Live(); leaked > 0 {
		log.Warnf("[Manager %s] %d disk handle(s) leaked at close", m.id, leaked)
	}
	if leaked := m.memPool.Live(); leaked > 0 {
		log.Warnf("[Manager %s] %d memory handle(s) leaked at close", m.id, leaked)
	}
	if leaked := m.registry.Len(); leaked > 0 {
		log.Warnf("[Manager %s] %d watch registration(s) leaked at close", m.id, leaked)
	}
	m.diskPool.Clear()
	m.memPool.Clear()
	m.registry.Clear()

	if m.watcher != nil {
		if err := m.watcher.Close(); err != nil {
			return err
		}
	}

	log.Debugf("[Manager %s] closed", m.id)
	return nil
}

func (m *Manager) guard() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return common.ErrNotInitialized
	}
	return nil
}

// AddVirtualDir registers a search root. Roots are searched in registration
// order after archives. With monitored set, external changes under the root
// feed the manager's change buffer and are dispatched by Poll.
func (m *Manager) AddVirtualDir(root string, monitored bool) error {
	if err := m.guard(); err != nil {
		return err
	}

	fi, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("virtual directory %q: %w", root, common.ErrNotFound)
	}
	if !fi.IsDir() {
		return fmt.Errorf("virtual directory %q: %w", root, common.ErrInvalidArgument)
	}

	d := &vdir{root: root}
	if monitored {
		if m.watcher == nil {
			return common.ErrMonitorDisabled
		}
		d.buf = monitor.NewBuffer()
		if err := m.watcher.Watch(root, d.buf, m.ignores); err != nil {
			return fmt.Errorf("watching %q: %w", root, err)
		}
	}

	m.mu.Lock()
	m.vdirs = append(m.vdirs, d)
	m.mu.Unlock()

	log.Debugf("[Manager %s] added virtual directory %q (monitored=%v)", m.id, root, monitored)
	return nil
}

// ClearVirtualDirs drops every registered root and stops watching the
// monitored ones.
func (m *Manager) ClearVirtualDirs() error {
	if err := m.guard(); err != nil {
		return err
	}

	m.mu.Lock()
	dirs := m.vdirs
	m.vdirs = nil
	m.mu.Unlock()

	for _, d := range dirs {
		if d.buf != nil && m.watcher != nil {
			m.watcher.Unwatch(d.root)
		}
	}
	return nil
}

// MountArchive adds an archive to the front tier of the resolution chain.
// Archives are searched in mount order. The manager does not take ownership;
// the caller closes the archive after ClearArchives or manager Close.
func (m *Manager) MountArchive(a Archive) error {
	if err := m.guard(); err != nil {
		return err
	}

	m.mu.Lock()
	m.archives = append(m.archives, a)
	m.mu.Unlock()

	log.Debugf("[Manager %s] mounted archive %q", m.id, a.Name())
	return nil
}

// ClearArchives unmounts every archive.
func (m *Manager) ClearArchives() error {
	if err := m.guard(); err != nil {
		return err
	}

	m.mu.Lock()
	m.archives = nil
	m.mu.Unlock()
	return nil
}

// OpenMem opens a logical path fully loaded into a memory-backed handle,
// resolving through archives and virtual directories unless bypass is set.
func (m *Manager) OpenMem(path string, bypass bool) (*File, error) {
	if err := m.guard(); err != nil {
		return nil, err
	}

	data, origin, err := m.resolveContent(path, bypass)
	if err != nil {
		return nil, err
	}

	f, err := m.allocMem(memFile{
		path: common.NormalizePath(path),
		mode: ModeRead,
		buf:  data,
		size: int64(len(data)),
	})
	if err != nil {
		return nil, err
	}
	log.Debugf("[Manager %s] opened %q in memory from %s (%d bytes)", m.id, path, origin, len(data))
	return f, nil
}

// CreateMem allocates a fresh, empty, growable memory file. name is a label
// only; nothing is resolved or touched on disk.
func (m *Manager) CreateMem(name string) (*File, error) {
	if err := m.guard(); err != nil {
		return nil, err
	}
	return m.allocMem(memFile{path: common.NormalizePath(name), mode: ModeWrite})
}

// AttachMem wraps a caller-supplied buffer in a memory handle. The buffer's
// length is both size and capacity; a write that needs to grow replaces it
// with an owned buffer. DetachMem returns ownership to the caller.
func (m *Manager) AttachMem(buf []byte, name string) (*File, error) {
	if err := m.guard(); err != nil {
		return nil, err
	}
	return m.allocMem(memFile{
		path:     common.NormalizePath(name),
		mode:     ModeWrite,
		buf:      buf,
		size:     int64(len(buf)),
		attached: true,
	})
}

// DetachMem takes the logical contents out of a memory handle and resets its
// payload to empty. The handle stays open and must still be closed.
func (m *Manager) DetachMem(f *File) ([]byte, error) {
	if err := m.guard(); err != nil {
		return nil, err
	}
	if f == nil || f.kind != KindMemory {
		return nil, common.ErrInvalidHandle
	}
	rec, err := f.mem()
	if err != nil {
		return nil, err
	}
	return rec.detach(), nil
}

// OpenDisk opens a logical path for reading as a disk-backed handle. Virtual
// directories are searched unless bypass is set; archives are skipped, they
// cannot serve an OS stream.
func (m *Manager) OpenDisk(path string, bypass bool) (*File, error) {
	if err := m.guard(); err != nil {
		return nil, err
	}

	resolved, err := m.resolvePath(path, bypass)
	if err != nil {
		return nil, err
	}
	rec, err := openDisk(common.NormalizePath(path), resolved)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", resolved, common.ErrIO)
	}
	f, err := m.allocDisk(rec)
	if err != nil {
		rec.close()
		return nil, err
	}
	log.Debugf("[Manager %s] opened %q from disk at %q", m.id, path, resolved)
	return f, nil
}

// CreateDisk creates or truncates a file for writing at the raw path.
// Create always bypasses virtual resolution: archives are read-only and a
// write must land exactly where the caller pointed.
func (m *Manager) CreateDisk(path string) (*File, error) {
	if err := m.guard(); err != nil {
		return nil, err
	}

	rec, err := createDisk(common.NormalizePath(path), path)
	if err != nil {
		return nil, fmt.Errorf("creating %q: %w", path, common.ErrIO)
	}
	f, err := m.allocDisk(rec)
	if err != nil {
		rec.close()
		return nil, err
	}
	return f, nil
}

// LoadText opens a path through the resolution chain, reads it fully, closes
// it, and returns the contents as a string.
func (m *Manager) LoadText(path string, bypass bool) (string, error) {
	f, err := m.OpenMem(path, bypass)
	if err != nil {
		return "", err
	}
	defer f.Close()

	data := make([]byte, f.Size())
	if _, err := io.ReadFull(f, data); err != nil && err != io.EOF {
		return "", err
	}
	return string(data), nil
}

func (m *Manager) allocMem(rec memFile) (*File, error) {
	ref, err := m.memPool.Alloc()
	if err != nil {
		return nil, err
	}
	slot, _ := m.memPool.Get(ref)
	*slot = rec
	return &File{mgr: m, kind: KindMemory, ref: ref}, nil
}

func (m *Manager) allocDisk(rec *diskFile) (*File, error) {
	ref, err := m.diskPool.Alloc()
	if err != nil {
		return nil, err
	}
	slot, _ := m.diskPool.Get(ref)
	*slot = *rec
	return &File{mgr: m, kind: KindDisk, ref: ref}, nil
}

// MonitoringAvailable reports whether the manager was built with a watcher.
func (m *Manager) MonitoringAvailable() bool {
	return m.watcher != nil
}

// RegisterWatch installs fn as the reload callback for a logical path. One
// callback per path; re-registering replaces. Paths are relative to their
// monitored virtual directory root, in slash form.
func (m *Manager) RegisterWatch(path string, fn monitor.ChangeFunc) error {
	if err := m.guard(); err != nil {
		return err
	}
	if m.watcher == nil {
		return common.ErrMonitorDisabled
	}
	m.registry.Register(common.NormalizePath(path), fn)
	return nil
}

// UnregisterWatch removes a reload callback, reporting whether one existed.
// A callback already picked up by an in-flight Poll may still fire once
// after this returns.
func (m *Manager) UnregisterWatch(path string) (bool, error) {
	if err := m.guard(); err != nil {
		return false, err
	}
	if m.watcher == nil {
		return false, common.ErrMonitorDisabled
	}
	return m.registry.Unregister(common.NormalizePath(path)), nil
}

// Poll drains every monitored directory's pending changes and invokes the
// registered callback for each changed path that has one. Returns the number
// of callbacks dispatched. The host calls this periodically from whatever
// thread it likes; dispatch happens synchronously on that thread.
func (m *Manager) Poll() (int, error) {
	if err := m.guard(); err != nil {
		return 0, err
	}
	if m.watcher == nil {
		return 0, common.ErrMonitorDisabled
	}

	m.mu.Lock()
	dirs := make([]*vdir, len(m.vdirs))
	copy(dirs, m.vdirs)
	m.mu.Unlock()

	dispatched := 0
	for _, d := range dirs {
		if d.buf == nil {
			continue
		}
		for _, p := range d.buf.Drain() {
			fn, ok := m.registry.Lookup(p)
			if !ok {
				log.Tracef("[Manager %s] change %q has no registration", m.id, p)
				continue
			}
			log.Debugf("[Manager %s] dispatching change %q", m.id, p)
			fn(p)
			dispatched++
		}
	}
	return dispatched, nil
}
