package hash

import (
	"encoding/binary"
	"hash"
	"math/bits"
)

// Digest32 is a streaming 32-bit hash. Feeding it data in any chunk split
// yields exactly the same value as one Sum32 call over the concatenation;
// callers rely on that equivalence when fingerprinting data that arrives in
// pieces (e.g. file contents read through a handle).
type Digest32 struct {
	seed uint32
	h1   uint32
	tail [4]byte
	nt   int
	size int
}

var _ hash.Hash32 = (*Digest32)(nil)

// New32 returns a streaming digest seeded with seed.
func New32(seed uint32) *Digest32 {
	return &Digest32{seed: seed, h1: seed}
}

// NewStr returns a streaming digest equivalent to Str for string data.
func NewStr() *Digest32 {
	return New32(DefaultSeed)
}

// Write absorbs p. It never fails.
func (d *Digest32) Write(p []byte) (int, error) {
	n := len(p)
	d.size += n

	// complete a pending tail first
	if d.nt > 0 {
		c := copy(d.tail[d.nt:], p)
		d.nt += c
		p = p[c:]
		if d.nt < 4 {
			return n, nil
		}
		d.mix(binary.LittleEndian.Uint32(d.tail[:]))
		d.nt = 0
	}

	for len(p) >= 4 {
		d.mix(binary.LittleEndian.Uint32(p))
		p = p[4:]
	}

	d.nt = copy(d.tail[:], p)
	return n, nil
}

// Sum32 finalizes the hash without disturbing the running state, so the
// digest can keep absorbing data afterwards.
func (d *Digest32) Sum32() uint32 {
	const (
		c1 = 0xcc9e2d51
		c2 = 0x1b873593
	)

	h1 := d.h1
	var k1 uint32
	switch d.nt {
	case 3:
		k1 ^= uint32(d.tail[2]) << 16
		fallthrough
	case 2:
		k1 ^= uint32(d.tail[1]) << 8
		fallthrough
	case 1:
		k1 ^= uint32(d.tail[0])
		k1 *= c1
		k1 = bits.RotateLeft32(k1, 15)
		k1 *= c2
		h1 ^= k1
	}

	h1 ^= uint32(d.size)
	return fmix32(h1)
}

// Sum appends the big-endian hash to b, per the hash.Hash contract.
func (d *Digest32) Sum(b []byte) []byte {
	v := d.Sum32()
	return append(b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// Reset restores the digest to its freshly-seeded state.
func (d *Digest32) Reset() {
	d.h1 = d.seed
	d.nt = 0
	d.size = 0
}

func (d *Digest32) Size() int      { return 4 }
func (d *Digest32) BlockSize() int { return 4 }

func (d *Digest32) mix(k1 uint32) {
	const (
		c1 = 0xcc9e2d51
		c2 = 0x1b873593
	)
	k1 *= c1
	k1 = bits.RotateLeft32(k1, 15)
	k1 *= c2
	d.h1 ^= k1
	d.h1 = bits.RotateLeft32(d.h1, 13)
	d.h1 = d.h1*5 + 0xe6546b64
}
