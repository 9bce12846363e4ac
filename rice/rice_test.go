package rice

import (
	"testing"

	"github.com/Bajtazar/koda/bitio"
	"github.com/Bajtazar/koda/coder"
	"github.com/Bajtazar/koda/internal/testutil"
)

// TestOrder1GoldenVector is spec.md section 8 scenario 2: Rice order 1 over
// {1, 4, 8, 13} produces a known 20-bit stream.
func TestOrder1GoldenVector(t *testing.T) {
	enc, err := NewEncoder[uint32](1)
	if err != nil {
		t.Fatal(err)
	}
	var dst []byte
	w := bitio.LittleEndianWriter(&dst)
	in := coder.NewCursor([]uint32{1, 4, 8, 13})
	if res := enc.Encode(in, w); res != coder.Done {
		t.Fatalf("Encode = %v", res)
	}
	enc.Flush(w)

	want := []uint8{
		1, 1,
		0, 0, 1, 0,
		0, 0, 0, 0, 1, 0,
		0, 0, 0, 0, 0, 0, 1, 1,
	}
	r := bitio.LittleEndianView(dst)
	for i, wb := range want {
		b, ok := r.ReadBit()
		if !ok || b != wb {
			t.Fatalf("bit %d = (%d,%v), want %d", i, b, ok, wb)
		}
	}

	dec, err := NewDecoder[uint32](1)
	if err != nil {
		t.Fatal(err)
	}
	rd := bitio.LittleEndianView(dst)
	out := coder.NewUnboundedSink([]uint32{})
	if res, err := dec.DecodeN(4, rd, out); res != coder.Done || err != nil {
		t.Fatalf("DecodeN = %v, %v", res, err)
	}
	got := out.Tokens()
	want2 := []uint32{1, 4, 8, 13}
	for i := range want2 {
		if got[i] != want2[i] {
			t.Fatalf("token %d = %d, want %d", i, got[i], want2[i])
		}
	}
}

func TestRoundTripRandom(t *testing.T) {
	r := testutil.NewRand(3)
	toks := make([]uint32, 300)
	for i := range toks {
		toks[i] = uint32(r.Intn(1 << 20))
	}

	enc, _ := NewEncoder[uint32](4)
	var dst []byte
	w := bitio.LittleEndianWriter(&dst)
	enc.Encode(coder.NewCursor(toks), w)
	enc.Flush(w)

	dec, _ := NewDecoder[uint32](4)
	rd := bitio.LittleEndianView(dst)
	out := coder.NewUnboundedSink([]uint32{})
	if res, err := dec.DecodeN(len(toks), rd, out); res != coder.Done || err != nil {
		t.Fatalf("DecodeN = %v, %v", res, err)
	}
	got := out.Tokens()
	for i := range toks {
		if got[i] != toks[i] {
			t.Fatalf("token %d = %d, want %d", i, got[i], toks[i])
		}
	}
}

func TestResumabilityAcrossInputSplit(t *testing.T) {
	toks := []uint32{5, 130, 7, 999, 2, 65535, 0, 1}
	enc, _ := NewEncoder[uint32](3)

	var whole []byte
	wholeW := bitio.LittleEndianWriter(&whole)
	wholeEnc, _ := NewEncoder[uint32](3)
	wholeEnc.Encode(coder.NewCursor(toks), wholeW)
	wholeEnc.Flush(wholeW)

	var dst []byte
	w := bitio.LittleEndianWriter(&dst)
	in1 := coder.NewCursor(toks[:3])
	enc.Encode(in1, w)
	in2 := coder.NewCursor(toks[3:])
	enc.Encode(in2, w)
	enc.Flush(w)

	if len(dst) != len(whole) {
		t.Fatalf("split produced %d bytes, whole produced %d", len(dst), len(whole))
	}
	for i := range whole {
		if dst[i] != whole[i] {
			t.Fatalf("byte %d differs", i)
		}
	}
}

func TestInvalidOrder(t *testing.T) {
	if _, err := NewEncoder[uint32](0); err == nil {
		t.Fatal("expected error for order 0")
	}
	if _, err := NewDecoder[uint32](0); err == nil {
		t.Fatal("expected error for order 0")
	}
}
