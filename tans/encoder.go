package tans

import (
	"math"

	"github.com/Bajtazar/koda/coder"
	"github.com/Bajtazar/koda/token"
)

// Encoder writes tokens through a tANS state machine. Because the
// emitted bits for one token depend on the running state accumulated
// from every token encoded so far, Encoder declares itself Asymmetric;
// the intermediate-token splitter refuses to pair it with a symmetric
// sibling coder.
//
// The encoded stream must be bit-reversed (see Reverse) before being fed
// to a Decoder, since the encoder renormalizes low-state bits out first
// while the decoder consumes them as if reading the stream backwards.
type Encoder[T token.Type] struct {
	table *Table[T]
	state uint64

	active bool
	bits   uint64
	nb     uint
	sent   uint

	flushed bool
	written uint64
}

// NewEncoder constructs an Encoder driven by tab, starting from state 0,
// this module's smallest valid state: states are the stateTable indices
// 0..L-1, not offset by the number of states L.
func NewEncoder[T token.Type](tab *Table[T]) *Encoder[T] {
	return &Encoder[T]{table: tab}
}

// Asymmetric reports true: see the Encoder doc comment.
func (e *Encoder[T]) Asymmetric() bool { return true }

// TokenBitSize estimates the number of bits t will cost as
// -log2(count(t)/L), the entropy-optimal cost this construction
// approximates; it need not be exact, matching coder.SizeAware's
// contract for non-deterministic codes.
func (e *Encoder[T]) TokenBitSize(t T) float32 {
	c, ok := e.table.counts[t]
	if !ok || c == 0 {
		return 0
	}
	return float32(math.Log2(float64(e.table.l)) - math.Log2(float64(c)))
}

func (e *Encoder[T]) encodeOne(v T) {
	S := e.table.satur[v]
	k := e.table.kShort[v]
	threshold := k << S

	var nb uint
	var rank uint64
	var bitsOut uint64
	if e.state < threshold {
		nb = S
		rank = e.state >> S
		if S > 0 {
			bitsOut = e.state & (1<<S - 1)
		}
	} else {
		nb = S + 1
		rem := e.state - threshold
		rank = k + rem>>nb
		bitsOut = rem & (1<<nb - 1)
	}
	e.state = uint64(e.table.occIndex[v][rank])
	e.bits, e.nb, e.sent, e.active = bitsOut, nb, 0, true
}

func (e *Encoder[T]) emitPending(out coder.BitSink) bool {
	for e.sent < e.nb {
		if !out.WriteBit(uint8((e.bits >> e.sent) & 1)) {
			return false
		}
		e.sent++
		e.written++
	}
	e.active = false
	return true
}

// BitsWritten reports the total number of meaningful bits emitted so
// far, including the final-state bits written by Flush. Callers need
// this to call Reverse correctly, since the underlying byte stream may
// be padded with trailing zero bits that are not part of the stream.
func (e *Encoder[T]) BitsWritten() uint64 { return e.written }

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
		e.encodeOne(v)
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
		e.encodeOne(v)
		if !e.emitPending(out) {
			return coder.ShortOutput
		}
	}
	return coder.Done
}

// Flush emits the final state (TableLog bits, LSB-first) once every
// token has been encoded, then byte-aligns out. Idempotent: a second
// call only re-aligns the sink.
func (e *Encoder[T]) Flush(out coder.BitSink) coder.Result {
	if e.active && !e.emitPending(out) {
		return coder.ShortOutput
	}
	if !e.flushed {
		e.bits, e.nb, e.sent, e.active = e.state, e.table.tableLog, 0, true
		e.flushed = true
		if !e.emitPending(out) {
			return coder.ShortOutput
		}
	}
	out.Flush()
	return coder.Done
}
