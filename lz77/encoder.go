package lz77

import (
	"github.com/Bajtazar/koda/coder"
	"github.com/Bajtazar/koda/intermediate"
	"github.com/Bajtazar/koda/lzwindow"
	"github.com/Bajtazar/koda/searchtree"
	"github.com/Bajtazar/koda/token"
)

// Encoder drives the sliding-window engine: for each position it finds the
// longest match the search tree (or a short-range repeat check) can offer,
// extends it as far as the look-ahead allows, and weighs its estimated bit
// cost (via aux.TokenBitSize) against emitting the buffer's head symbol as
// a plain literal, feeding whichever IntermediateToken wins to aux. Ties
// favor the match, so a fixed-width auxiliary coder (whose cost never
// depends on field values) never rejects a found match.
type Encoder[T token.Type] struct {
	dictSize, lookAhead, cyclicBufferSize uint32
	aux                                   AuxEncoder[T]

	win  *lzwindow.Window[T]
	tree *searchtree.Tree[T]

	// pending accumulates the first lookAhead raw symbols before the
	// window and tree exist; see ensureReady.
	pending []T

	// queued/remainSteps/tokCur hold a token that has been decided but
	// not yet fully pushed through aux and advanced past: a suspension
	// in either the auxiliary encoder (out full) or the raw window
	// advance (in exhausted) resumes from here.
	queued      bool
	remainSteps uint32
	tokCur      *coder.Cursor[intermediate.IntermediateToken[T]]

	flushPendingIdx uint32
	auxFlushed      bool
}

// NewEncoder constructs an Encoder with the given maximum dictionary and
// look-ahead sizes. cyclicBufferSize overrides the backing array size (0
// picks lzwindow's default). aux receives every decided token.
func NewEncoder[T token.Type](dictSize, lookAhead, cyclicBufferSize uint32, aux AuxEncoder[T]) (*Encoder[T], error) {
	if lookAhead == 0 || dictSize < stringSize {
		return nil, coder.ErrInvalidConfig
	}
	if cyclicBufferSize != 0 && cyclicBufferSize < dictSize+2*lookAhead {
		return nil, coder.ErrInvalidConfig
	}
	return &Encoder[T]{
		dictSize: dictSize, lookAhead: lookAhead, cyclicBufferSize: cyclicBufferSize,
		aux: aux,
	}, nil
}

// ensureReady fills pending up to lookAhead symbols and, once full,
// constructs the window and tree. Returns false if in ran dry first (the
// window is still not ready; Encode has nothing further to do this call).
func (e *Encoder[T]) ensureReady(in *coder.Cursor[T]) bool {
	if e.win != nil {
		return true
	}
	for uint32(len(e.pending)) < e.lookAhead {
		s, ok := in.Next()
		if !ok {
			return false
		}
		e.pending = append(e.pending, s)
	}
	win, err := lzwindow.New[T](e.dictSize, e.lookAhead, e.cyclicBufferSize, e.pending)
	if err != nil {
		// dictSize/lookAhead/cyclicBufferSize are validated in
		// NewEncoder against exactly lzwindow.New's own rules.
		panic(err)
	}
	e.win = win
	e.tree = searchtree.New[T](stringSize, win)
	e.pending = nil
	return true
}

// absAt reads the symbol at absolute position p (measured from the window's
// current dictionary start), transparently spanning the dictionary, the
// look-ahead buffer, and extra (truth not yet pulled into the window at
// all, typically in.Remaining()).
func (e *Encoder[T]) absAt(p, dictLen, bufLen uint32, extra []T) (T, bool) {
	if p < dictLen+bufLen {
		return e.win.GetSequenceAtRelativePos(p, 1)[0], true
	}
	idx := p - dictLen - bufLen
	if idx < uint32(len(extra)) {
		return extra[idx], true
	}
	var zero T
	return zero, false
}

// findCandidate returns the best starting match before length extension:
// the search tree's longest stringSize-prefix match, or, failing that, a
// single-symbol repeat against the most recently seen dictionary symbol.
// The latter lets a short dictionary (too small to ever hold two distinct
// stringSize-length strings) still catch immediate repetition.
func (e *Encoder[T]) findCandidate(dictLen uint32, queryAt func(uint32) (T, bool)) searchtree.Match {
	var m searchtree.Match
	if dictLen >= stringSize {
		q := make([]T, stringSize)
		ok := true
		for i := range q {
			v, got := queryAt(uint32(i))
			if !got {
				ok = false
				break
			}
			q[i] = v
		}
		if ok {
			m = e.tree.FindMatch(q)
		}
	}
	if m.Length == 0 && dictLen >= 1 {
		if q0, ok := queryAt(0); ok {
			pos := dictLen - 1
			if v := e.win.GetSequenceAtRelativePos(pos, 1)[0]; v == q0 {
				m = searchtree.Match{Position: pos, Length: 1}
			}
		}
	}
	return m
}

// computeNextToken decides the token to emit for the current window head,
// peeking into extra (truth beyond the currently buffered look-ahead) when
// a match runs all the way to the buffer's edge.
func (e *Encoder[T]) computeNextToken(extra []T) intermediate.IntermediateToken[T] {
	dictLen := e.win.DictionaryLen()
	bufLen := e.win.BufferLen()
	at := func(p uint32) (T, bool) { return e.absAt(p, dictLen, bufLen, extra) }
	queryAt := func(k uint32) (T, bool) { return at(dictLen + k) }

	m := e.findCandidate(dictLen, queryAt)

	var avail uint32
	for avail <= e.lookAhead {
		if _, ok := queryAt(avail); !ok {
			break
		}
		avail++
	}
	maxLen := e.lookAhead
	if avail == 0 {
		maxLen = 0
	} else if avail-1 < maxLen {
		maxLen = avail - 1
	}

	length := m.Length
	if length > maxLen {
		length = maxLen
	}
	if m.Found() {
		for length < maxLen {
			cur, ok := queryAt(length)
			if !ok {
				break
			}
			cmp, ok2 := at(m.Position + length)
			if !ok2 || cmp != cur {
				break
			}
			length++
		}
	}

	suffix, ok := queryAt(length)
	if !ok {
		length = 0
		suffix, _ = queryAt(0)
	}

	if length > 0 {
		head, _ := queryAt(0)
		literal := intermediate.IntermediateToken[T]{Suffix: head}
		match := intermediate.IntermediateToken[T]{Suffix: suffix, Position: m.Position, Length: length}
		if e.aux.TokenBitSize(match) > e.aux.TokenBitSize(literal) {
			length = 0
			suffix = head
		}
	}

	if length == 0 {
		return intermediate.IntermediateToken[T]{Suffix: suffix}
	}
	return intermediate.IntermediateToken[T]{Suffix: suffix, Position: m.Position, Length: length}
}

func (e *Encoder[T]) bookkeepBeforeShift() {
	if e.win.DictionaryLen() == e.dictSize {
		old := e.win.GetSequenceAtRelativePos(0, stringSize)
		e.tree.RemoveString(old)
	}
}

func (e *Encoder[T]) bookkeepAfterShift() {
	if dl := e.win.DictionaryLen(); dl >= stringSize {
		e.tree.AddString(e.win.GetSequenceAtRelativePos(dl-stringSize, stringSize))
	}
}

func (e *Encoder[T]) advanceStep(sym T) {
	e.bookkeepBeforeShift()
	e.win.AddSymbol(sym)
	e.bookkeepAfterShift()
}

// advanceStepEnd drains one look-ahead slot with no new raw symbol behind
// it. It still retires a falling-out-of-range dictionary string (the
// window prunes on this shift exactly as it does on a real one, so the
// tree's own notion of the dictionary start must keep pace), but it never
// adds one: no symbol arrived to confirm a new string, so nothing new is
// addable from this shift.
func (e *Encoder[T]) advanceStepEnd() {
	e.bookkeepBeforeShift()
	e.win.AddEndSymbol()
}

func (e *Encoder[T]) startToken(tok intermediate.IntermediateToken[T]) {
	e.queued = true
	e.tokCur = coder.NewCursor([]intermediate.IntermediateToken[T]{tok})
	e.remainSteps = tok.Length + 1
}

// Encode consumes raw tokens from in, feeding decided IntermediateTokens to
// aux, until in runs dry or out fills up.
func (e *Encoder[T]) Encode(in *coder.Cursor[T], out coder.BitSink) coder.Result {
	if !e.ensureReady(in) {
		return coder.Done
	}
	for {
		if e.queued {
			if e.aux.Encode(e.tokCur, out) == coder.ShortOutput {
				return coder.ShortOutput
			}
			for e.remainSteps > 0 {
				sym, ok := in.Next()
				if !ok {
					return coder.ShortInput
				}
				e.advanceStep(sym)
				e.remainSteps--
			}
			e.queued = false
			e.tokCur = nil
		}
		if e.win.BufferLen() == 0 {
			return coder.Done
		}
		e.startToken(e.computeNextToken(in.Remaining()))
	}
}

// EncodeN behaves like Encode but stops once it has consumed n raw symbols
// from in (not counting the initial look-ahead fill).
func (e *Encoder[T]) EncodeN(n int, in *coder.Cursor[T], out coder.BitSink) coder.Result {
	if !e.ensureReady(in) {
		return coder.Done
	}
	consumed := 0
	for consumed < n {
		if e.queued {
			if e.aux.Encode(e.tokCur, out) == coder.ShortOutput {
				return coder.ShortOutput
			}
			for e.remainSteps > 0 {
				if consumed >= n {
					return coder.Done
				}
				sym, ok := in.Next()
				if !ok {
					return coder.ShortInput
				}
				e.advanceStep(sym)
				e.remainSteps--
				consumed++
			}
			e.queued = false
			e.tokCur = nil
		}
		if e.win.BufferLen() == 0 {
			return coder.Done
		}
		e.startToken(e.computeNextToken(in.Remaining()))
	}
	return coder.Done
}

// Flush drains whatever remains in the window (using AddEndSymbol instead
// of further raw input) and flushes aux. Idempotent once done.
func (e *Encoder[T]) Flush(out coder.BitSink) coder.Result {
	if e.win == nil {
		for e.flushPendingIdx < uint32(len(e.pending)) {
			if !e.queued {
				e.startToken(intermediate.IntermediateToken[T]{Suffix: e.pending[e.flushPendingIdx]})
				e.remainSteps = 0 // no window exists yet to advance
			}
			if e.aux.Encode(e.tokCur, out) == coder.ShortOutput {
				return coder.ShortOutput
			}
			e.queued = false
			e.tokCur = nil
			e.flushPendingIdx++
		}
	} else {
		for {
			if e.queued {
				if e.aux.Encode(e.tokCur, out) == coder.ShortOutput {
					return coder.ShortOutput
				}
				for e.remainSteps > 0 {
					e.advanceStepEnd()
					e.remainSteps--
				}
				e.queued = false
				e.tokCur = nil
			}
			if e.win.BufferLen() == 0 {
				break
			}
			e.startToken(e.computeNextToken(nil))
		}
	}
	if !e.auxFlushed {
		if e.aux.Flush(out) == coder.ShortOutput {
			return coder.ShortOutput
		}
		e.auxFlushed = true
	}
	return coder.Done
}
