package fs

import (
	"io"
	"os"

	"pakfs/internal/common"
)

// diskFile is the disk-backed file record: a thin synchronous wrapper over
// the OS stream. Reads and writes may block for the duration of the syscall;
// no pool lock is ever held across them.
type diskFile struct {
	path string
	mode Mode
	f    *os.File
	size int64
}

// openDisk opens an existing file for reading and discovers its size.
func openDisk(logical, resolved string) (*diskFile, error) {
	f, err := os.Open(resolved)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &diskFile{path: logical, mode: ModeRead, f: f, size: fi.Size()}, nil
}

// createDisk truncates or creates a file for writing.
func createDisk(logical, resolved string) (*diskFile, error) {
	f, err := os.Create(resolved)
	if err != nil {
		return nil, err
	}
	return &diskFile{path: logical, mode: ModeWrite, f: f}, nil
}

func (f *diskFile) read(p []byte) (int, error) {
	if f.mode != ModeRead {
		return 0, common.ErrWriteOnly
	}
	return f.f.Read(p)
}

func (f *diskFile) write(p []byte) (int, error) {
	if f.mode != ModeWrite {
		return 0, common.ErrReadOnly
	}
	n, err := f.f.Write(p)
	if err == nil {
		if pos, serr := f.f.Seek(0, io.SeekCurrent); serr == nil && pos > f.size {
			f.size = pos
		}
	}
	return n, err
}

func (f *diskFile) seek(offset int64, whence int) (int64, error) {
	return f.f.Seek(offset, whence)
}

func (f *diskFile) pos() int64 {
	p, err := f.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0
	}
	return p
}

func (f *diskFile) close() error {
	return f.f.Close()
}
