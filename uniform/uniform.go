// Package uniform implements the fixed-width leaf coder (C5): every token
// is written as w bits, LSB-first, with no entropy coding at all. It can
// code the fields of an LZ77 engine's auxiliary coder (through package
// intermediate), and is the simplest possible implementation of the
// coder.Encoder/coder.Decoder contract. The lz77 constructors take their
// auxiliary coder as an explicit argument; they supply no default.
package uniform

import (
	"unsafe"

	"github.com/Bajtazar/koda/coder"
	"github.com/Bajtazar/koda/token"
)

// Encoder writes each token using a fixed bit width. It remembers how many
// bits of the in-flight token have already been emitted so a short-output
// suspension mid-token resumes without re-emitting already-written bits.
type Encoder[T token.Type] struct {
	width uint

	active bool
	val    uint64
	sent   uint
}

// NewEncoder constructs an Encoder writing width bits per token. width
// defaults to 8*sizeof(T) when zero is passed, matching the source
// library's "CHAR_BIT * sizeof(Token)" default.
func NewEncoder[T token.Type](width uint) *Encoder[T] {
	if width == 0 {
		width = nativeWidth[T]()
	}
	return &Encoder[T]{width: width}
}

func nativeWidth[T token.Type]() uint {
	var zero T
	return uint(unsafe.Sizeof(zero)) * 8
}

// Width reports the configured bit width.
func (e *Encoder[T]) Width() uint { return e.width }

// TokenBitSize always returns the configured width, since uniform coding
// spends the same number of bits on every token.
func (e *Encoder[T]) TokenBitSize(T) float32 { return float32(e.width) }

func (e *Encoder[T]) emitPending(out coder.BitSink) bool {
	for e.sent < e.width {
		if !out.WriteBit(uint8((e.val >> e.sent) & 1)) {
			return false
		}
		e.sent++
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
		e.val, e.sent, e.active = uint64(v), 0, true
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
		e.val, e.sent, e.active = uint64(v), 0, true
		if !e.emitPending(out) {
			return coder.ShortOutput
		}
	}
	return coder.Done
}

// Flush is a no-op beyond emitting any in-flight token bits and aligning
// the underlying sink to a byte boundary.
func (e *Encoder[T]) Flush(out coder.BitSink) coder.Result {
	if e.active && !e.emitPending(out) {
		return coder.ShortOutput
	}
	out.Flush()
	return coder.Done
}

// Decoder reads tokens written by an Encoder of the same width.
type Decoder[T token.Type] struct {
	width uint

	active bool
	val    uint64
	got    uint
}

// NewDecoder constructs a Decoder reading width bits per token (0 means
// the native width of T).
func NewDecoder[T token.Type](width uint) *Decoder[T] {
	if width == 0 {
		width = nativeWidth[T]()
	}
	return &Decoder[T]{width: width}
}

// Initialize is a no-op: the uniform coder has no preamble.
func (d *Decoder[T]) Initialize(coder.BitSource) coder.Result { return coder.Done }

func (d *Decoder[T]) readOne(in coder.BitSource) (T, bool) {
	if !d.active {
		d.val, d.got, d.active = 0, 0, true
	}
	for d.got < d.width {
		bit, ok := in.ReadBit()
		if !ok {
			return 0, false
		}
		d.val |= uint64(bit) << d.got
		d.got++
	}
	d.active = false
	return T(d.val), true
}

// Decode reads tokens until out is full or in runs dry. A fixed-width
// field never walks off a dead end, so the error return is always nil.
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
