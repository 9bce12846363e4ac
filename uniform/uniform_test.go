package uniform

import (
	"testing"

	"github.com/Bajtazar/koda/bitio"
	"github.com/Bajtazar/koda/coder"
	"github.com/Bajtazar/koda/internal/testutil"
)

func TestRoundTrip(t *testing.T) {
	r := testutil.NewRand(7)
	toks := testutil.Tokens[uint16](r, 500, 1<<12)

	enc := NewEncoder[uint16](12)
	var dst []byte
	w := newWriter(&dst)
	in := coder.NewCursor(toks)
	if res := enc.Encode(in, w); res != coder.Done {
		t.Fatalf("Encode = %v, want Done", res)
	}
	enc.Flush(w)

	dec := NewDecoder[uint16](12)
	rd := newReader(dst)
	out := coder.NewUnboundedSink([]uint16{})
	if res, err := dec.DecodeN(len(toks), rd, out); res != coder.Done || err != nil {
		t.Fatalf("DecodeN = %v, %v, want Done, nil", res, err)
	}
	got := out.Tokens()
	if len(got) != len(toks) {
		t.Fatalf("got %d tokens, want %d", len(got), len(toks))
	}
	for i := range toks {
		if got[i] != toks[i] {
			t.Fatalf("token %d = %d, want %d", i, got[i], toks[i])
		}
	}
}

func TestResumability(t *testing.T) {
	r := testutil.NewRand(8)
	toks := testutil.Tokens[uint8](r, 200, 256)
	split := 77

	enc := NewEncoder[uint8](8)
	var dst []byte
	w := newWriter(&dst)
	first := coder.NewCursor(toks[:split])
	enc.Encode(first, w)
	second := coder.NewCursor(toks[split:])
	enc.Encode(second, w)
	enc.Flush(w)

	var whole []byte
	wholeW := newWriter(&whole)
	enc2 := NewEncoder[uint8](8)
	enc2.Encode(coder.NewCursor(toks), wholeW)
	enc2.Flush(wholeW)

	if len(dst) != len(whole) {
		t.Fatalf("split encode produced %d bytes, whole produced %d", len(dst), len(whole))
	}
	for i := range whole {
		if dst[i] != whole[i] {
			t.Fatalf("byte %d differs: %x vs %x", i, dst[i], whole[i])
		}
	}
}

func newWriter(dst *[]byte) *bitio.Writer {
	return bitio.LittleEndianWriter(dst)
}

func newReader(buf []byte) *bitio.Reader {
	return bitio.LittleEndianView(buf)
}
