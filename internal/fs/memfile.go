package fs

import (
	"io"

	"pakfs/internal/common"
)

// memFile is the memory-backed file record held in the manager's memory
// pool. The buffer length is the capacity; size is the logical extent.
//
// Invariants: len(buf) >= size, 0 <= off <= size. Capacity never shrinks
// while the record is live.
type memFile struct {
	path     string
	mode     Mode
	buf      []byte
	size     int64
	off      int64
	attached bool // buffer was supplied by the caller via AttachMem
}

// grow ensures capacity for at least need bytes. The shortfall is rounded up
// to a whole number of blocks; existing bytes are preserved. Growing an
// attached buffer replaces it with an owned one.
func (f *memFile) grow(need int64) {
	capacity := int64(len(f.buf))
	if need <= capacity {
		return
	}
	shortfall := need - capacity
	rounded := (shortfall + BlockSize - 1) / BlockSize * BlockSize

	next := make([]byte, capacity+rounded)
	copy(next, f.buf[:f.size])
	f.buf = next
	f.attached = false
}

func (f *memFile) read(p []byte) (int, error) {
	if f.off >= f.size {
		return 0, io.EOF
	}
	n := copy(p, f.buf[f.off:f.size])
	f.off += int64(n)
	return n, nil
}

func (f *memFile) write(p []byte) (int, error) {
	if f.mode != ModeWrite {
		return 0, common.ErrReadOnly
	}
	f.grow(f.off + int64(len(p)))
	n := copy(f.buf[f.off:], p)
	f.off += int64(n)
	if f.off > f.size {
		f.size = f.off
	}
	return n, nil
}

// seek moves the cursor using the io whence convention. The result saturates
// into [0, size] instead of erroring.
func (f *memFile) seek(offset int64, whence int) int64 {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = f.off + offset
	case io.SeekEnd:
		target = f.size + offset
	}
	if target < 0 {
		target = 0
	}
	if target > f.size {
		target = f.size
	}
	f.off = target
	return f.off
}

func (f *memFile) readAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= f.size {
		return 0, io.EOF
	}
	n := copy(p, f.buf[off:f.size])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (f *memFile) truncate(size int64) {
	if size < 0 {
		size = 0
	}
	f.grow(size)
	if size > f.size {
		// zero the newly exposed range; recycled block tails may hold
		// bytes from an earlier, longer extent
		for i := f.size; i < size; i++ {
			f.buf[i] = 0
		}
	}
	f.size = size
	if f.off > f.size {
		f.off = f.size
	}
}

// detach hands the logical contents back to the caller and resets the
// payload to an empty, owned state. The handle itself stays open.
func (f *memFile) detach() []byte {
	out := f.buf[:f.size]
	f.buf = nil
	f.size = 0
	f.off = 0
	f.attached = false
	return out
}
