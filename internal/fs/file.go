package fs

import (
	"fmt"
	"io"

	"pakfs/internal/common"
	"pakfs/internal/pool"
)

// File is an open handle backed by a pooled record. The handle stores only a
// generation-checked pool reference, so operations on a closed (or
// double-closed) handle fail with ErrInvalidHandle instead of touching a
// recycled record.
//
// A File is owned by exactly one caller; it is not safe for concurrent use.
type File struct {
	mgr  *Manager
	kind Kind
	ref  pool.Ref
}

func (f *File) mem() (*memFile, error) {
	rec, ok := f.mgr.memPool.Get(f.ref)
	if !ok {
		return nil, common.ErrInvalidHandle
	}
	return rec, nil
}

func (f *File) disk() (*diskFile, error) {
	rec, ok := f.mgr.diskPool.Get(f.ref)
	if !ok {
		return nil, common.ErrInvalidHandle
	}
	return rec, nil
}

// Read fills p from the current cursor. At end of a memory file it returns
// (0, io.EOF); short counts signal partial reads, matching io.Reader.
func (f *File) Read(p []byte) (int, error) {
	if f.kind == KindMemory {
		rec, err := f.mem()
		if err != nil {
			return 0, err
		}
		return rec.read(p)
	}
	rec, err := f.disk()
	if err != nil {
		return 0, err
	}
	return rec.read(p)
}

// Write stores p at the current cursor, growing memory files as needed and
// extending the logical size when the write passes the previous end.
func (f *File) Write(p []byte) (int, error) {
	if f.kind == KindMemory {
		rec, err := f.mem()
		if err != nil {
			return 0, err
		}
		return rec.write(p)
	}
	rec, err := f.disk()
	if err != nil {
		return 0, err
	}
	return rec.write(p)
}

// ReadItems reads whole records of itemSize bytes into p, returning the
// number of complete items read. A trailing partial item is left unread with
// the cursor before it.
func (f *File) ReadItems(p []byte, itemSize int) (int, error) {
	if itemSize <= 0 {
		return 0, common.ErrInvalidArgument
	}
	want := len(p) / itemSize * itemSize
	n, err := f.Read(p[:want])
	items := n / itemSize
	if rem := n % itemSize; rem != 0 {
		// rewind the partial tail so the cursor sits on an item boundary
		if _, serr := f.Seek(int64(-rem), io.SeekCurrent); serr == nil {
			err = nil
		}
	}
	return items, err
}

// WriteItems writes whole records of itemSize bytes from p, returning the
// number of complete items written.
func (f *File) WriteItems(p []byte, itemSize int) (int, error) {
	if itemSize <= 0 {
		return 0, common.ErrInvalidArgument
	}
	want := len(p) / itemSize * itemSize
	n, err := f.Write(p[:want])
	return n / itemSize, err
}

// Seek moves the cursor. whence follows the io convention. Memory files
// saturate the result into [0, size]; disk files delegate to the OS.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	if whence < 0 || whence > 2 {
		return 0, common.ErrInvalidArgument
	}
	if f.kind == KindMemory {
		rec, err := f.mem()
		if err != nil {
			return 0, err
		}
		return rec.seek(offset, whence), nil
	}
	rec, err := f.disk()
	if err != nil {
		return 0, err
	}
	return rec.seek(offset, whence)
}

// ReadAt reads from an absolute offset without moving the cursor.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if f.kind == KindMemory {
		rec, err := f.mem()
		if err != nil {
			return 0, err
		}
		return rec.readAt(p, off)
	}
	rec, err := f.disk()
	if err != nil {
		return 0, err
	}
	return rec.f.ReadAt(p, off)
}

// Truncate sets the logical size, zero-filling on extension. The cursor is
// clamped to the new size.
func (f *File) Truncate(size int64) error {
	if size < 0 {
		return common.ErrInvalidArgument
	}
	if f.kind == KindMemory {
		rec, err := f.mem()
		if err != nil {
			return err
		}
		if rec.mode != ModeWrite {
			return common.ErrReadOnly
		}
		rec.truncate(size)
		return nil
	}
	rec, err := f.disk()
	if err != nil {
		return err
	}
	if err := rec.f.Truncate(size); err != nil {
		return err
	}
	rec.size = size
	return nil
}

// Close releases backend resources and returns the record to its pool. A
// second Close on the same handle returns ErrInvalidHandle.
func (f *File) Close() error {
	if f.kind == KindMemory {
		if _, err := f.mem(); err != nil {
			return err
		}
		return f.mgr.memPool.Free(f.ref)
	}
	rec, err := f.disk()
	if err != nil {
		return err
	}
	path := rec.path
	cerr := rec.close()
	if ferr := f.mgr.diskPool.Free(f.ref); ferr != nil {
		return ferr
	}
	if cerr != nil {
		return fmt.Errorf("closing %q: %w", path, common.ErrIO)
	}
	return nil
}

// Size returns the logical size in bytes, 0 for a closed handle.
func (f *File) Size() int64 {
	if f.kind == KindMemory {
		if rec, err := f.mem(); err == nil {
			return rec.size
		}
		return 0
	}
	if rec, err := f.disk(); err == nil {
		return rec.size
	}
	return 0
}

// Pos returns the current cursor position.
func (f *File) Pos() int64 {
	if f.kind == KindMemory {
		if rec, err := f.mem(); err == nil {
			return rec.off
		}
		return 0
	}
	if rec, err := f.disk(); err == nil {
		return rec.pos()
	}
	return 0
}

// Path returns the logical path the handle was opened with.
func (f *File) Path() string {
	if f.kind == KindMemory {
		if rec, err := f.mem(); err == nil {
			return rec.path
		}
		return ""
	}
	if rec, err := f.disk(); err == nil {
		return rec.path
	}
	return ""
}

// Kind reports which backend serves the handle.
func (f *File) Kind() Kind { return f.kind }

// Mode returns the access intent declared at open.
func (f *File) Mode() Mode {
	if f.kind == KindMemory {
		if rec, err := f.mem(); err == nil {
			return rec.mode
		}
		return ModeRead
	}
	if rec, err := f.disk(); err == nil {
		return rec.mode
	}
	return ModeRead
}

// IsOpen reports whether the handle still refers to a live record.
func (f *File) IsOpen() bool {
	if f == nil {
		return false
	}
	if f.kind == KindMemory {
		_, err := f.mem()
		return err == nil
	}
	_, err := f.disk()
	return err == nil
}
