package huffman

import (
	"github.com/Bajtazar/koda/coder"
	"github.com/Bajtazar/koda/token"
)

// Encoder writes tokens as canonical Huffman codewords. Like the fixed
// and Rice coders it remembers how many bits of the in-flight codeword
// have already reached out, so a short-output suspension resumes without
// re-emitting bits already written.
type Encoder[T token.Type] struct {
	table *Table[T]

	active bool
	val    uint32
	length uint32
	sent   uint32
}

// NewEncoder constructs an Encoder that writes codewords from tab.
func NewEncoder[T token.Type](tab *Table[T]) *Encoder[T] {
	return &Encoder[T]{table: tab}
}

// TokenBitSize reports the exact codeword length for t, or 0 if t is not
// present in the table (a caller asking an LZ77 engine to cost an
// unknown token gets no useful answer either way).
func (e *Encoder[T]) TokenBitSize(t T) float32 {
	c, ok := e.table.Lookup(t)
	if !ok {
		return 0
	}
	return float32(c.Len)
}

func (e *Encoder[T]) start(v T) bool {
	c, ok := e.table.Lookup(v)
	if !ok {
		return false
	}
	e.val, e.length, e.sent, e.active = c.Val, c.Len, 0, true
	return true
}

func (e *Encoder[T]) emitPending(out coder.BitSink) bool {
	for e.sent < e.length {
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
		if !e.start(v) {
			panic(Error("encoding a token outside the table's alphabet"))
		}
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
		if !e.start(v) {
			panic(Error("encoding a token outside the table's alphabet"))
		}
		if !e.emitPending(out) {
			return coder.ShortOutput
		}
	}
	return coder.Done
}

// Flush emits any in-flight codeword bits it can and byte-aligns out. A
// Dirac (single-symbol) table never has in-flight bits, so Flush only
// aligns the sink.
func (e *Encoder[T]) Flush(out coder.BitSink) coder.Result {
	if e.active && !e.emitPending(out) {
		return coder.ShortOutput
	}
	out.Flush()
	return coder.Done
}
