package lzwindow

import (
	"testing"

	"github.com/Bajtazar/koda/internal/testutil"
)

func equal(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TestFusedBufferGoldenVector is spec.md section 8 scenario 5: dict_size
// 32, buffer_size 4, initial buffer [0x12,0x43,0x55,0x54]. After
// AddSymbol(0x78) the buffer becomes [0x43,0x55,0x54,0x78] and the
// dictionary holds 1 symbol; after four more additions the dictionary
// holds 5 symbols and the buffer is [0x54,0x67,0x93,0x66].
func TestFusedBufferGoldenVector(t *testing.T) {
	w, err := New[byte](32, 4, 0, []byte{0x12, 0x43, 0x55, 0x54})
	if err != nil {
		t.Fatal(err)
	}

	w.AddSymbol(0x78)
	if got := w.GetBuffer(); !equal(got, []byte{0x43, 0x55, 0x54, 0x78}) {
		t.Fatalf("buffer = %x, want 43555478", got)
	}
	if w.DictionaryLen() != 1 {
		t.Fatalf("dict len = %d, want 1", w.DictionaryLen())
	}

	for _, s := range []byte{0x54, 0x67, 0x93, 0x66} {
		w.AddSymbol(s)
	}
	if w.DictionaryLen() != 5 {
		t.Fatalf("dict len = %d, want 5", w.DictionaryLen())
	}
	if got := w.GetBuffer(); !equal(got, []byte{0x54, 0x67, 0x93, 0x66}) {
		t.Fatalf("buffer = %x, want 54679366", got)
	}
}

// TestContiguityAcrossRelocation drives AddSymbol far enough to force
// many relocations and checks, at every step, that GetBuffer and
// GetOldestDictionaryFullMatch return exactly the symbols an
// independent append-only history says they should: a regression in the
// relocation bookkeeping (e.g. one cursor's wrap overwriting data the
// other cursor still depends on) shows up as a mismatch here well before
// the backing array has cycled through many relocations.
func TestContiguityAcrossRelocation(t *testing.T) {
	r := testutil.NewRand(31)
	const dictSize, bufSize = 6, 3
	initial := testutil.Tokens[byte](r, bufSize, 256)

	w, err := New[byte](dictSize, bufSize, 0, initial)
	if err != nil {
		t.Fatal(err)
	}

	history := append([]byte{}, initial...)

	for i := 0; i < 2000; i++ {
		s := byte(r.Intn(256))
		w.AddSymbol(s)
		history = append(history, s)

		buf := w.GetBuffer()
		if !equal(buf, history[len(history)-bufSize:]) {
			t.Fatalf("iter %d: buffer = %x, want %x", i, buf, history[len(history)-bufSize:])
		}

		dictLen := w.DictionaryLen()
		wantDictLen := len(history) - bufSize
		if wantDictLen > dictSize {
			wantDictLen = dictSize
		}
		if int(dictLen) != wantDictLen {
			t.Fatalf("iter %d: dictionary length = %d, want %d", i, dictLen, wantDictLen)
		}
		dict := w.GetOldestDictionaryFullMatch()
		wantDict := history[len(history)-bufSize-wantDictLen : len(history)-bufSize]
		if !equal(dict, wantDict) {
			t.Fatalf("iter %d: dictionary = %x, want %x", i, dict, wantDict)
		}
	}
}

func TestAddEndSymbolShrinksBuffer(t *testing.T) {
	w, err := New[byte](8, 3, 0, []byte{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	w.AddEndSymbol()
	if w.BufferLen() != 2 {
		t.Fatalf("BufferLen = %d, want 2", w.BufferLen())
	}
	w.AddEndSymbol()
	w.AddEndSymbol()
	if w.BufferLen() != 0 {
		t.Fatalf("BufferLen = %d, want 0", w.BufferLen())
	}
	if !w.Ended() {
		t.Fatal("Ended() = false, want true")
	}
}

func TestGetSequenceAtRelativePos(t *testing.T) {
	w, err := New[byte](8, 3, 0, []byte{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	w.AddSymbol(4)
	w.AddSymbol(5)
	// dictionary is now [1,2], buffer is [3,4,5].
	if got := w.GetSequenceAtRelativePos(0, w.DictionaryLen()); !equal(got, []byte{1, 2}) {
		t.Fatalf("dictionary view = %x, want 0102", got)
	}
	if got := w.GetSequenceAtRelativePos(w.DictionaryLen(), w.BufferLen()); !equal(got, []byte{3, 4, 5}) {
		t.Fatalf("buffer view = %x, want 030405", got)
	}
}

func TestInvalidCyclicBufferSize(t *testing.T) {
	if _, err := New[byte](32, 4, 10, nil); err == nil {
		t.Fatal("expected error for a cyclic buffer size too small")
	}
}
