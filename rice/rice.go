// Package rice implements the Rice/Golomb integer coder (C5): order k
// emits the low k bits of a value, then a unary-coded quotient terminated
// by a 1 bit.
package rice

import (
	"github.com/Bajtazar/koda/coder"
	"github.com/Bajtazar/koda/token"
)

// Encoder writes unsigned tokens using Rice coding of a fixed order. It
// tracks how much of the current token's codeword has been emitted so
// that a short-output suspension mid-codeword resumes exactly where it
// left off, rather than re-deriving (and duplicating) already-written
// bits.
type Encoder[T token.Type] struct {
	order uint

	active   bool
	remVal   uint64 // remaining remainder bits, LSB next
	remLeft  uint
	quotLeft uint64 // remaining zero bits of the unary quotient
	needTerm bool
}

// NewEncoder constructs an Encoder of the given order (k >= 1).
func NewEncoder[T token.Type](order uint) (*Encoder[T], error) {
	if order < 1 {
		return nil, coder.ErrInvalidConfig
	}
	return &Encoder[T]{order: order}, nil
}

// TokenBitSize returns k + floor(v/2^k) + 1, the exact number of bits
// Rice coding spends on v.
func (e *Encoder[T]) TokenBitSize(v T) float32 {
	return float32(e.order) + float32(uint64(v)>>e.order) + 1
}

func (e *Encoder[T]) start(v T) {
	x := uint64(v)
	e.remVal = x & (1<<e.order - 1)
	e.remLeft = e.order
	e.quotLeft = x >> e.order
	e.needTerm = true
	e.active = true
}

// emitPending writes whatever remains of the in-flight codeword, stopping
// (and reporting false) the instant the sink refuses a bit.
func (e *Encoder[T]) emitPending(out coder.BitSink) bool {
	for e.remLeft > 0 {
		if !out.WriteBit(uint8(e.remVal & 1)) {
			return false
		}
		e.remVal >>= 1
		e.remLeft--
	}
	for e.quotLeft > 0 {
		if !out.WriteBit(0) {
			return false
		}
		e.quotLeft--
	}
	if e.needTerm {
		if !out.WriteBit(1) {
			return false
		}
		e.needTerm = false
	}
	e.active = false
	return true
}

// Encode writes tokens from in to out until in is exhausted or out runs
// out of room.
func (e *Encoder[T]) Encode(in *coder.Cursor[T], out coder.BitSink) coder.Result {
	if e.active && !e.emitPending(out) {
		return coder.ShortOutput
	}
	for {
		v, ok := in.Next()
		if !ok {
			return coder.Done
		}
		e.start(v)
		if !e.emitPending(out) {
			return coder.ShortOutput
		}
	}
}

// EncodeN behaves like Encode but stops after consuming at most n tokens.
func (e *Encoder[T]) EncodeN(n int, in *coder.Cursor[T], out coder.BitSink) coder.Result {
	if e.active && !e.emitPending(out) {
		return coder.ShortOutput
	}
	for i := 0; i < n; i++ {
		v, ok := in.Next()
		if !ok {
			return coder.Done
		}
		e.start(v)
		if !e.emitPending(out) {
			return coder.ShortOutput
		}
	}
	return coder.Done
}

// Flush emits any in-flight codeword bits it can and then aligns the
// underlying sink to a byte boundary.
func (e *Encoder[T]) Flush(out coder.BitSink) coder.Result {
	if e.active && !e.emitPending(out) {
		return coder.ShortOutput
	}
	out.Flush()
	return coder.Done
}

// Decoder reads tokens written by an Encoder of the same order.
type Decoder[T token.Type] struct {
	order uint

	active  bool
	remVal  uint64
	remGot  uint
	quot    uint64
	gotQuot bool
}

// NewDecoder constructs a Decoder of the given order (k >= 1).
func NewDecoder[T token.Type](order uint) (*Decoder[T], error) {
	if order < 1 {
		return nil, coder.ErrInvalidConfig
	}
	return &Decoder[T]{order: order}, nil
}

// Initialize is a no-op: Rice coding has no preamble.
func (d *Decoder[T]) Initialize(coder.BitSource) coder.Result { return coder.Done }

// readOne resumes an in-flight codeword if one is pending, else starts a
// fresh one; returns the token and true once the terminator bit is seen.
func (d *Decoder[T]) readOne(in coder.BitSource) (T, bool) {
	if !d.active {
		d.remVal, d.remGot, d.quot, d.gotQuot, d.active = 0, 0, 0, false, true
	}
	for d.remGot < d.order {
		bit, ok := in.ReadBit()
		if !ok {
			return 0, false
		}
		d.remVal |= uint64(bit) << d.remGot
		d.remGot++
	}
	for !d.gotQuot {
		bit, ok := in.ReadBit()
		if !ok {
			return 0, false
		}
		if bit == 1 {
			d.gotQuot = true
			break
		}
		d.quot++
	}
	d.active = false
	return T(d.quot<<d.order | d.remVal), true
}

// Decode reads tokens until out is full or in runs dry. A unary quotient
// prefix has no dead end to walk off, so the error return is always nil.
func (d *Decoder[T]) Decode(in coder.BitSource, out *coder.Sink[T]) (coder.Result, error) {
	for !out.Full() {
		v, ok := d.readOne(in)
		if !ok {
			return coder.ShortInput, nil
		}
		out.Put(v)
	}
	return coder.Done, nil
}

// DecodeN behaves like Decode but stops after producing at most n tokens.
func (d *Decoder[T]) DecodeN(n int, in coder.BitSource, out *coder.Sink[T]) (coder.Result, error) {
	for i := 0; i < n && !out.Full(); i++ {
		v, ok := d.readOne(in)
		if !ok {
			return coder.ShortInput, nil
		}
		out.Put(v)
	}
	return coder.Done, nil
}
