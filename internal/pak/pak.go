// Package pak implements the read-only archive container mounted into the
// file manager's resolution chain. An archive is a flat list of deflated
// file bodies followed by an item table; lookups go through a hashed-path
// index so Locate is O(1) regardless of archive size.
package pak

import (
	"encoding/binary"

	"github.com/klauspost/compress/flate"
)

// Magic identifies a pak archive.
var Magic = [4]byte{'P', 'A', 'K', '1'}

const (
	// Version is major<<16 | minor of the on-disk format.
	Version = 1<<16 | 0

	headerSize = 4 + 4 + 4 + 4 + 8 // magic, version, mode, count, table offset

	// maxPathLen is the longest entry path the item table can encode.
	maxPathLen = 1<<16 - 1
)

// CompressMode selects how file bodies are stored.
type CompressMode uint32

const (
	CompressNone CompressMode = iota
	CompressFast
	CompressNormal
	CompressBest
)

func (m CompressMode) String() string {
	switch m {
	case CompressNone:
		return "none"
	case CompressFast:
		return "fast"
	case CompressNormal:
		return "normal"
	case CompressBest:
		return "best"
	}
	return "unknown"
}

// flateLevel maps a compress mode to a flate level. CompressNone is handled
// before compression is reached.
func (m CompressMode) flateLevel() int {
	switch m {
	case CompressFast:
		return flate.BestSpeed
	case CompressBest:
		return flate.BestCompression
	default:
		return flate.DefaultCompression
	}
}

type header struct {
	Magic       [4]byte
	Version     uint32
	Mode        uint32
	Count       uint32
	TableOffset uint64
}

// item is one archived file. Offsets are absolute within the pak file.
type item struct {
	path       string
	offset     uint64
	storedSize uint64
	rawSize    uint64
}

var endian = binary.LittleEndian
