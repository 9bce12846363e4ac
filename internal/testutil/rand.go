// Package testutil holds deterministic test helpers shared across this
// module's coder packages: round-trip and resumability properties need
// reproducible pseudo-random token streams and split points, stable across
// Go versions.
package testutil

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
)

// Rand is a deterministic pseudo-random generator seeded by an int,
// built on AES so that it reproduces identically across Go versions
// (unlike math/rand's algorithm, which is not a compatibility guarantee).
type Rand struct {
	cipher.Block
	blk [aes.BlockSize]byte
}

// NewRand constructs a Rand seeded by seed.
func NewRand(seed int) *Rand {
	var key [aes.BlockSize]byte
	binary.LittleEndian.PutUint64(key[:], uint64(seed))
	r, _ := aes.NewCipher(key[:])
	return &Rand{Block: r}
}

func (r *Rand) Int() (x int) {
	r.Encrypt(r.blk[:], r.blk[:])
	x |= int(r.blk[0]) << 0
	x |= int(r.blk[1]) << 8
	x |= int(r.blk[2]) << 16
	x |= int(r.blk[3]) << 24
	x |= int(r.blk[4]) << 32
	x |= int(r.blk[5]) << 40
	x |= int(r.blk[6]) << 48
	x |= int(r.blk[7]&0x3f) << 56
	return x
}

// Intn returns a pseudo-random integer in [0, n).
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	x := r.Int()
	if x < 0 {
		x = -x
	}
	return x % n
}

// Bytes returns n pseudo-random bytes.
func (r *Rand) Bytes(n int) []byte {
	b := make([]byte, n)
	bb := b
	for len(bb) > 0 {
		r.Encrypt(r.blk[:], r.blk[:])
		cnt := copy(bb, r.blk[:])
		bb = bb[cnt:]
	}
	return b
}

// Perm returns a pseudo-random permutation of [0, n).
func (r *Rand) Perm(n int) []int {
	m := make([]int, n)
	for i := 0; i < n; i++ {
		j := r.Intn(i + 1)
		m[i] = m[j]
		m[j] = i
	}
	return m
}

// Tokens fills n tokens drawn from [0, alphabet) using T's width.
func Tokens[T ~uint8 | ~uint16 | ~uint32](r *Rand, n int, alphabet int) []T {
	out := make([]T, n)
	for i := range out {
		out[i] = T(r.Intn(alphabet))
	}
	return out
}

// SplitPoints returns k-1 strictly increasing split points in [1, n), used
// to test resumability across arbitrary input/output fragmentations.
func (r *Rand) SplitPoints(n, k int) []int {
	if k <= 1 || n <= 1 {
		return nil
	}
	pts := make(map[int]bool)
	for len(pts) < k-1 && len(pts) < n-1 {
		pts[1+r.Intn(n-1)] = true
	}
	out := make([]int, 0, len(pts))
	for p := range pts {
		out = append(out, p)
	}
	// Simple insertion sort; these slices are tiny in practice.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
