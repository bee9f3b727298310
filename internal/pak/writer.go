package pak

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/gofrs/flock"
	"github.com/klauspost/compress/flate"
	log "github.com/sirupsen/logrus"

	"pakfs/internal/common"
	"pakfs/internal/hash"
)

// Writer builds a pak archive on disk. The header slot is reserved up front,
// file bodies are streamed in as they are put, and the item table plus final
// header are written on Close. A flock guards the archive for the whole
// write so a concurrent pack of the same output fails fast instead of
// interleaving.
type Writer struct {
	f     *os.File
	lock  *flock.Flock
	mode  CompressMode
	items []item
	index map[uint32]struct{} // hashed paths already put
	off   uint64
	done  bool
}

// Create opens pakPath for writing and reserves the header.
func Create(pakPath string, mode CompressMode) (*Writer, error) {
	lock := flock.New(pakPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking %s: %w", pakPath, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w (archive is being written by another process)", pakPath, common.ErrExists)
	}

	f, err := os.Create(pakPath)
	if err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("creating pak: %w", err)
	}

	// header placeholder, rewritten on Close
	if _, err := f.Write(make([]byte, headerSize)); err != nil {
		f.Close()
		lock.Unlock()
		return nil, err
	}

	return &Writer{
		f:     f,
		lock:  lock,
		mode:  mode,
		index: make(map[uint32]struct{}),
		off:   headerSize,
	}, nil
}

// Put archives the contents of r under the logical path. Paths are
// normalized to the canonical slash form; putting the same path twice is an
// error.
func (w *Writer) Put(path string, r io.Reader) error {
	if w.done {
		return common.ErrInvalidHandle
	}
	path = common.NormalizePath(path)
	if path == "" {
		return fmt.Errorf("empty archive path: %w", common.ErrInvalidArgument)
	}
	// the item table stores path lengths as uint16
	if len(path) > maxPathLen {
		return fmt.Errorf("archive path exceeds %d bytes: %w", maxPathLen, common.ErrInvalidArgument)
	}
	key := hash.Str(path)
	if _, dup := w.index[key]; dup {
		return fmt.Errorf("archive path %q: %w", path, common.ErrExists)
	}

	it := item{path: path, offset: w.off}

	var stored, raw int64
	if w.mode == CompressNone {
		n, err := io.Copy(w.f, r)
		if err != nil {
			return fmt.Errorf("storing %q: %w", path, err)
		}
		stored, raw = n, n
	} else {
		counter := &countingWriter{w: w.f}
		fw, err := flate.NewWriter(counter, w.mode.flateLevel())
		if err != nil {
			return err
		}
		raw, err = io.Copy(fw, r)
		if err != nil {
			return fmt.Errorf("compressing %q: %w", path, err)
		}
		if err := fw.Close(); err != nil {
			return fmt.Errorf("compressing %q: %w", path, err)
		}
		stored = counter.n
	}

	it.storedSize = uint64(stored)
	it.rawSize = uint64(raw)
	w.off += uint64(stored)
	w.items = append(w.items, it)
	w.index[key] = struct{}{}

	log.Debugf("[Pak] put %q raw=%d stored=%d (%s)", path, raw, stored, w.mode)
	return nil
}

// Count returns the number of items put so far.
func (w *Writer) Count() int { return len(w.items) }

// Close writes the item table, finalizes the header, and releases the lock.
func (w *Writer) Close() error {
	if w.done {
		return common.ErrInvalidHandle
	}
	w.done = true

	defer func() {
		lockPath := w.lock.Path()
		w.lock.Unlock()
		os.Remove(lockPath)
	}()

	bw := bufio.NewWriter(w.f)
	for _, it := range w.items {
		if err := writeItem(bw, it); err != nil {
			w.f.Close()
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		w.f.Close()
		return err
	}

	hdr := header{
		Magic:       Magic,
		Version:     Version,
		Mode:        uint32(w.mode),
		Count:       uint32(len(w.items)),
		TableOffset: w.off,
	}
	if _, err := w.f.Seek(0, io.SeekStart); err != nil {
		w.f.Close()
		return err
	}
	if err := binary.Write(w.f, endian, &hdr); err != nil {
		w.f.Close()
		return err
	}

	return w.f.Close()
}

func writeItem(w io.Writer, it item) error {
	if err := binary.Write(w, endian, uint16(len(it.path))); err != nil {
		return err
	}
	if _, err := io.WriteString(w, it.path); err != nil {
		return err
	}
	for _, v := range []uint64{it.offset, it.storedSize, it.rawSize} {
		if err := binary.Write(w, endian, v); err != nil {
			return err
		}
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
