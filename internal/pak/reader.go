package pak

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/flate"
	log "github.com/sirupsen/logrus"

	"pakfs/internal/common"
	"pakfs/internal/hash"
)

// Reader serves files out of a pak archive. The item table is loaded once at
// open into a hashed-path index; Extract reads the stored bytes with ReadAt
// so concurrent extraction needs no lock.
type Reader struct {
	f     *os.File
	path  string
	mode  CompressMode
	items []item
	index map[uint32]uint32 // hash.Str(path) -> item index
}

// Open loads the archive's header and item table.
func Open(pakPath string) (*Reader, error) {
	f, err := os.Open(pakPath)
	if err != nil {
		return nil, fmt.Errorf("opening pak: %w", err)
	}

	var hdr header
	if err := binary.Read(f, endian, &hdr); err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", pakPath, common.ErrBadArchive)
	}
	if hdr.Magic != Magic {
		f.Close()
		return nil, fmt.Errorf("%s: bad magic: %w", pakPath, common.ErrBadArchive)
	}
	if hdr.Version>>16 != Version>>16 {
		f.Close()
		return nil, fmt.Errorf("%s: unsupported version %d.%d: %w",
			pakPath, hdr.Version>>16, hdr.Version&0xffff, common.ErrBadArchive)
	}

	if _, err := f.Seek(int64(hdr.TableOffset), io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", pakPath, common.ErrBadArchive)
	}

	r := &Reader{
		f:     f,
		path:  pakPath,
		mode:  CompressMode(hdr.Mode),
		items: make([]item, 0, hdr.Count),
		index: make(map[uint32]uint32, hdr.Count),
	}

	br := bufio.NewReader(f)
	for i := uint32(0); i < hdr.Count; i++ {
		it, err := readItem(br)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: item %d: %w", pakPath, i, common.ErrBadArchive)
		}
		r.index[hash.Str(it.path)] = uint32(len(r.items))
		r.items = append(r.items, it)
	}

	log.Debugf("[Pak] opened %q: %d items, compression %s", pakPath, len(r.items), r.mode)
	return r, nil
}

// Locate returns the id of path inside the archive.
func (r *Reader) Locate(path string) (uint32, bool) {
	id, ok := r.index[hash.Str(common.NormalizePath(path))]
	return id, ok
}

// Extract decompresses the item into a fresh buffer.
func (r *Reader) Extract(id uint32) ([]byte, error) {
	if int(id) >= len(r.items) {
		return nil, common.ErrNotFound
	}
	it := r.items[id]

	section := io.NewSectionReader(r.f, int64(it.offset), int64(it.storedSize))
	out := make([]byte, it.rawSize)

	if r.mode == CompressNone {
		if _, err := io.ReadFull(section, out); err != nil {
			return nil, fmt.Errorf("extracting %q: %w", it.path, common.ErrIO)
		}
		return out, nil
	}

	fr := flate.NewReader(section)
	defer fr.Close()
	if _, err := io.ReadFull(fr, out); err != nil {
		return nil, fmt.Errorf("extracting %q: %w", it.path, common.ErrIO)
	}
	return out, nil
}

// Name returns the archive's path on disk.
func (r *Reader) Name() string { return r.path }

// Mode returns the archive's compression mode.
func (r *Reader) Mode() CompressMode { return r.mode }

// List returns the logical paths contained in the archive, in put order.
func (r *Reader) List() []string {
	out := make([]string, len(r.items))
	for i, it := range r.items {
		out[i] = it.path
	}
	return out
}

// Stat returns the raw and stored sizes of an item.
func (r *Reader) Stat(id uint32) (rawSize, storedSize uint64, err error) {
	if int(id) >= len(r.items) {
		return 0, 0, common.ErrNotFound
	}
	return r.items[id].rawSize, r.items[id].storedSize, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.f.Close()
}

func readItem(br *bufio.Reader) (item, error) {
	var n uint16
	if err := binary.Read(br, endian, &n); err != nil {
		return item{}, err
	}
	p := make([]byte, n)
	if _, err := io.ReadFull(br, p); err != nil {
		return item{}, err
	}
	it := item{path: string(p)}
	for _, dst := range []*uint64{&it.offset, &it.storedSize, &it.rawSize} {
		if err := binary.Read(br, endian, dst); err != nil {
			return item{}, err
		}
	}
	return it, nil
}
