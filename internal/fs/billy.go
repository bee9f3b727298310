package fs

import (
	"os"
	"path"

	"github.com/go-git/go-billy/v5"
)

// billyFS exposes a Manager as a billy.Basic filesystem so go-git-style
// consumers can read through the resolution chain. Reads go through OpenMem
// and therefore see archive and virtual-directory content; writes land on
// raw disk the same way CreateDisk does. Stat, Rename and Remove operate on
// the disk tiers only, archive entries have no on-disk form.
type billyFS struct {
	mgr *Manager
}

var _ billy.Basic = (*billyFS)(nil)

// Billy wraps the manager in the billy.Basic interface.
func Billy(m *Manager) billy.Basic {
	return &billyFS{mgr: m}
}

func (b *billyFS) Create(filename string) (billy.File, error) {
	f, err := b.mgr.CreateDisk(filename)
	if err != nil {
		return nil, err
	}
	return &billyFile{f: f}, nil
}

func (b *billyFS) Open(filename string) (billy.File, error) {
	f, err := b.mgr.OpenMem(filename, false)
	if err != nil {
		return nil, err
	}
	return &billyFile{f: f}, nil
}

func (b *billyFS) OpenFile(filename string, flag int, _ os.FileMode) (billy.File, error) {
	switch {
	case flag&(os.O_WRONLY|os.O_RDWR) != 0 && flag&os.O_CREATE != 0:
		return b.Create(filename)
	case flag&(os.O_WRONLY|os.O_RDWR) == 0:
		return b.Open(filename)
	default:
		return nil, billy.ErrNotSupported
	}
}

func (b *billyFS) Stat(filename string) (os.FileInfo, error) {
	resolved, err := b.mgr.resolvePath(filename, false)
	if err != nil {
		return nil, os.ErrNotExist
	}
	return os.Stat(resolved)
}

func (b *billyFS) Rename(oldpath, newpath string) error {
	resolved, err := b.mgr.resolvePath(oldpath, false)
	if err != nil {
		return os.ErrNotExist
	}
	return os.Rename(resolved, newpath)
}

func (b *billyFS) Remove(filename string) error {
	resolved, err := b.mgr.resolvePath(filename, false)
	if err != nil {
		return os.ErrNotExist
	}
	return os.Remove(resolved)
}

func (b *billyFS) Join(elem ...string) string {
	return path.Join(elem...)
}

type billyFile struct {
	f *File
}

var _ billy.File = (*billyFile)(nil)

func (bf *billyFile) Name() string { return bf.f.Path() }

func (bf *billyFile) Read(p []byte) (int, error)  { return bf.f.Read(p) }
func (bf *billyFile) Write(p []byte) (int, error) { return bf.f.Write(p) }

func (bf *billyFile) ReadAt(p []byte, off int64) (int, error) { return bf.f.ReadAt(p, off) }

func (bf *billyFile) Seek(offset int64, whence int) (int64, error) {
	return bf.f.Seek(offset, whence)
}

func (bf *billyFile) Close() error { return bf.f.Close() }

func (bf *billyFile) Truncate(size int64) error { return bf.f.Truncate(size) }

// Lock and Unlock satisfy billy.File. Handles are single-owner, so there is
// nothing to lock.
func (bf *billyFile) Lock() error   { return nil }
func (bf *billyFile) Unlock() error { return nil }
