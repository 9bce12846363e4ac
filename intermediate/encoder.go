package intermediate

import (
	"github.com/Bajtazar/koda/coder"
	"github.com/Bajtazar/koda/token"
)

// Encoder splits each IntermediateToken into its three fields and drives
// them through three independent field coders in turn: suffix symbol,
// match position, then match length. It holds the {Token, Position,
// Length} state for whichever field is mid-flight so a suspended call
// resumes exactly where it left off.
type Encoder[T token.Type] struct {
	tokenEnc coder.SizeAwareEncoder[T]
	posEnc   coder.SizeAwareEncoder[uint32]
	lenEnc   coder.SizeAwareEncoder[uint32]

	active bool
	field  uint8 // 0 = token, 1 = position, 2 = length

	tokCur *coder.Cursor[T]
	posCur *coder.Cursor[uint32]
	lenCur *coder.Cursor[uint32]

	flushField uint8
}

// NewEncoder composes tokenEnc, posEnc and lenEnc into a splitter over
// IntermediateToken[T]. Returns ErrIncompatibleCoders if exactly some
// (not all, not none) of the three are asymmetric.
func NewEncoder[T token.Type](tokenEnc coder.SizeAwareEncoder[T], posEnc, lenEnc coder.SizeAwareEncoder[uint32]) (*Encoder[T], error) {
	if !compatibleFields(tokenEnc, posEnc, lenEnc) {
		return nil, coder.ErrIncompatibleCoders
	}
	return &Encoder[T]{tokenEnc: tokenEnc, posEnc: posEnc, lenEnc: lenEnc}, nil
}

func (e *Encoder[T]) start(tok IntermediateToken[T]) {
	e.field = 0
	e.tokCur = coder.NewCursor([]T{tok.Suffix})
	e.posCur = coder.NewCursor([]uint32{tok.Position})
	e.lenCur = coder.NewCursor([]uint32{tok.Length})
	e.active = true
}

// emitPending drives the in-flight token's remaining fields to
// completion, or returns false once out runs out of room.
func (e *Encoder[T]) emitPending(out coder.BitSink) bool {
	for e.active {
		switch e.field {
		case 0:
			if e.tokenEnc.Encode(e.tokCur, out) == coder.ShortOutput {
				return false
			}
			e.field = 1
		case 1:
			if e.posEnc.Encode(e.posCur, out) == coder.ShortOutput {
				return false
			}
			e.field = 2
		case 2:
			if e.lenEnc.Encode(e.lenCur, out) == coder.ShortOutput {
				return false
			}
			e.active = false
		}
	}
	return true
}

// Encode consumes as many whole IntermediateTokens from in as out has
// room for.
func (e *Encoder[T]) Encode(in *coder.Cursor[IntermediateToken[T]], out coder.BitSink) coder.Result {
	if e.active && !e.emitPending(out) {
		return coder.ShortOutput
	}
	for {
		tok, ok := in.Next()
		if !ok {
			return coder.Done
		}
		e.start(tok)
		if !e.emitPending(out) {
			return coder.ShortOutput
		}
	}
}

// EncodeN behaves like Encode but stops after at most n tokens.
func (e *Encoder[T]) EncodeN(n int, in *coder.Cursor[IntermediateToken[T]], out coder.BitSink) coder.Result {
	if e.active && !e.emitPending(out) {
		return coder.ShortOutput
	}
	for i := 0; i < n; i++ {
		tok, ok := in.Next()
		if !ok {
			return coder.Done
		}
		e.start(tok)
		if !e.emitPending(out) {
			return coder.ShortOutput
		}
	}
	return coder.Done
}

// Flush completes any in-flight token, then flushes all three field
// coders in turn so out becomes byte-aligned. Idempotent once done.
func (e *Encoder[T]) Flush(out coder.BitSink) coder.Result {
	if e.active && !e.emitPending(out) {
		return coder.ShortOutput
	}
	for e.flushField < 3 {
		var res coder.Result
		switch e.flushField {
		case 0:
			res = e.tokenEnc.Flush(out)
		case 1:
			res = e.posEnc.Flush(out)
		case 2:
			res = e.lenEnc.Flush(out)
		}
		if res == coder.ShortOutput {
			return coder.ShortOutput
		}
		e.flushField++
	}
	return coder.Done
}

// TokenBitSize reports the combined expected bit cost of tok's three
// fields, used by an LZ77 engine to compare a literal against a match.
func (e *Encoder[T]) TokenBitSize(tok IntermediateToken[T]) float32 {
	return e.tokenEnc.TokenBitSize(tok.Suffix) +
		e.posEnc.TokenBitSize(tok.Position) +
		e.lenEnc.TokenBitSize(tok.Length)
}
