// Package lzwindow implements the fused dictionary and look-ahead
// buffer (C2): a single backing array that keeps the dictionary and the
// look-ahead buffer as one contiguous run, relocating that whole run to
// the front of the array, via a reserved "telomere" margin, whenever it
// would otherwise run off the end.
package lzwindow

import (
	"github.com/Bajtazar/koda/coder"
	"github.com/Bajtazar/koda/token"
)

// Window owns the backing array shared by the dictionary and the
// look-ahead buffer. The dictionary occupies data[start:start+dictLen],
// ending exactly where the buffer begins; the buffer occupies
// data[start+dictLen:start+dictLen+bufLen]. The two regions are always
// adjacent, so the combined range is always one contiguous slice of
// data, never a wrapped view.
type Window[T token.Type] struct {
	dictSize uint32
	bufSize  uint32

	data []T

	start   uint32
	dictLen uint32
	bufLen  uint32

	ended bool
}

// New constructs a Window with dictSize and bufSize as the maximum
// dictionary and look-ahead lengths. initial seeds the look-ahead
// buffer (up to bufSize symbols; a shorter slice leaves the buffer
// short, which is valid when the whole input is shorter than the
// look-ahead size). cyclicBufferSize optionally overrides the backing
// array's requested size; 0 picks the default. The array actually
// allocated is always at least dictSize + 3*bufSize, the margin the
// telomere relocation scheme needs; an explicit cyclicBufferSize below
// dictSize + 2*bufSize is rejected as unusable.
func New[T token.Type](dictSize, bufSize, cyclicBufferSize uint32, initial []T) (*Window[T], error) {
	if bufSize == 0 {
		return nil, coder.ErrInvalidConfig
	}
	if cyclicBufferSize != 0 && cyclicBufferSize < dictSize+2*bufSize {
		return nil, coder.ErrInvalidConfig
	}
	n := cyclicBufferSize
	if min := dictSize + 3*bufSize; n < min {
		n = min
	}

	bufLen := uint32(len(initial))
	if bufLen > bufSize {
		bufLen = bufSize
	}
	data := make([]T, n)
	copy(data[:bufLen], initial[:bufLen])

	return &Window[T]{
		dictSize: dictSize, bufSize: bufSize,
		data:   data,
		bufLen: bufLen,
	}, nil
}

// relocate copies the dictionary and buffer's combined live range back
// to the start of the backing array, freeing the tail for further
// growth. Called whenever the buffer's next write would run past the
// array's end.
func (w *Window[T]) relocate() {
	end := w.start + w.dictLen + w.bufLen
	copy(w.data[0:end-w.start], w.data[w.start:end])
	w.start = 0
}

// AddSymbol appends s to the end of the look-ahead buffer, shifting the
// buffer's oldest symbol into the dictionary. It requires the buffer to
// already be at full capacity (true once construction or prior calls
// have filled it) and that AddEndSymbol has not yet been called
// (invariant d); both are precondition violations, not reported errors,
// matching this module's policy of not recovering from caller misuse.
//
// Reports whether a dictionary symbol was pruned (the dictionary was
// already full).
func (w *Window[T]) AddSymbol(s T) bool {
	if w.start+w.dictLen+w.bufLen+1 > uint32(len(w.data)) {
		w.relocate()
	}

	pruned := false
	if w.dictLen < w.dictSize {
		w.dictLen++
	} else {
		w.start++
		pruned = true
	}

	w.data[w.start+w.dictLen+w.bufLen-1] = s
	return pruned
}

// AddEndSymbol marks the end of input: the look-ahead buffer shrinks by
// one (no new symbol arrives) and the dictionary grows by one (pruning
// its oldest symbol if already full). After the first call, AddSymbol
// must not be called again.
func (w *Window[T]) AddEndSymbol() {
	w.ended = true
	if w.bufLen == 0 {
		return
	}
	if w.dictLen < w.dictSize {
		w.dictLen++
	} else {
		w.start++
	}
	w.bufLen--
}

// Ended reports whether AddEndSymbol has been called.
func (w *Window[T]) Ended() bool { return w.ended }

// GetBuffer returns the current look-ahead buffer as a contiguous slice.
func (w *Window[T]) GetBuffer() []T {
	head := w.start + w.dictLen
	return w.data[head : head+w.bufLen]
}

// BufferLen reports the current look-ahead buffer length.
func (w *Window[T]) BufferLen() uint32 { return w.bufLen }

// DictionaryLen reports the current dictionary length.
func (w *Window[T]) DictionaryLen() uint32 { return w.dictLen }

// GetOldestDictionaryFullMatch returns the dictionary as a contiguous
// slice, oldest symbol first.
func (w *Window[T]) GetOldestDictionaryFullMatch() []T {
	return w.data[w.start : w.start+w.dictLen]
}

// GetSequenceAtRelativePos returns a contiguous view of length symbols
// starting pos symbols after the dictionary start (so pos==DictionaryLen
// addresses the first look-ahead symbol, matching how match positions
// are measured from the oldest dictionary end throughout this module).
func (w *Window[T]) GetSequenceAtRelativePos(pos, length uint32) []T {
	from := w.start + pos
	return w.data[from : from+length]
}
