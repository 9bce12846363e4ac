package intermediate

import (
	"testing"

	"github.com/Bajtazar/koda/bitio"
	"github.com/Bajtazar/koda/coder"
	"github.com/Bajtazar/koda/internal/testutil"
	"github.com/Bajtazar/koda/tans"
	"github.com/Bajtazar/koda/uniform"
)

func newUniformTriple(t *testing.T) (*Encoder[byte], *Decoder[byte]) {
	t.Helper()
	enc, err := NewEncoder[byte](uniform.NewEncoder[byte](8), uniform.NewEncoder[uint32](16), uniform.NewEncoder[uint32](8))
	if err != nil {
		t.Fatal(err)
	}
	dec, err := NewDecoder[byte](uniform.NewDecoder[byte](8), uniform.NewDecoder[uint32](16), uniform.NewDecoder[uint32](8))
	if err != nil {
		t.Fatal(err)
	}
	return enc, dec
}

func TestRoundTripRandom(t *testing.T) {
	r := testutil.NewRand(5)
	toks := make([]IntermediateToken[byte], 200)
	for i := range toks {
		toks[i] = IntermediateToken[byte]{
			Suffix:   byte(r.Intn(256)),
			Position: uint32(r.Intn(1 << 16)),
			Length:   uint32(r.Intn(256)),
		}
	}

	enc, dec := newUniformTriple(t)
	var dst []byte
	w := bitio.LittleEndianWriter(&dst)
	if res := enc.Encode(coder.NewCursor(toks), w); res != coder.Done {
		t.Fatalf("Encode = %v", res)
	}
	if res := enc.Flush(w); res != coder.Done {
		t.Fatalf("Flush = %v", res)
	}

	rd := bitio.LittleEndianView(dst)
	if res := dec.Initialize(rd); res != coder.Done {
		t.Fatalf("Initialize = %v", res)
	}
	out := coder.NewUnboundedSink([]IntermediateToken[byte]{})
	if res, err := dec.DecodeN(len(toks), rd, out); res != coder.Done || err != nil {
		t.Fatalf("DecodeN = %v, %v", res, err)
	}
	got := out.Tokens()
	for i := range toks {
		if got[i] != toks[i] {
			t.Fatalf("token %d = %+v, want %+v", i, got[i], toks[i])
		}
	}
}

func TestResumabilityAcrossInputSplit(t *testing.T) {
	toks := []IntermediateToken[byte]{
		{Suffix: 'a', Position: 0, Length: 0},
		{Suffix: 'b', Position: 300, Length: 9},
		{Suffix: 'z', Position: 65535, Length: 255},
	}

	wholeEnc, _ := newUniformTriple(t)
	var whole []byte
	wholeW := bitio.LittleEndianWriter(&whole)
	wholeEnc.Encode(coder.NewCursor(toks), wholeW)
	wholeEnc.Flush(wholeW)

	enc, _ := newUniformTriple(t)
	var dst []byte
	w := bitio.LittleEndianWriter(&dst)
	enc.Encode(coder.NewCursor(toks[:1]), w)
	enc.Encode(coder.NewCursor(toks[1:2]), w)
	enc.Encode(coder.NewCursor(toks[2:]), w)
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

func TestOneTokenPerCallResumes(t *testing.T) {
	toks := []IntermediateToken[byte]{
		{Suffix: 'x', Position: 12, Length: 3},
		{Suffix: 'y', Position: 40000, Length: 200},
	}
	enc, dec := newUniformTriple(t)

	var dst []byte
	w := bitio.LittleEndianWriter(&dst)
	in := coder.NewCursor(toks)
	// Drive Encode and Decode one token at a time via EncodeN/DecodeN to
	// exercise resuming between tokens (the writer is unbounded, so no call
	// stops on short output).
	if res := enc.EncodeN(1, in, w); res != coder.Done {
		t.Fatalf("EncodeN(1) = %v", res)
	}
	if res := enc.EncodeN(1, in, w); res != coder.Done {
		t.Fatalf("EncodeN(1) second = %v", res)
	}
	enc.Flush(w)

	rd := bitio.LittleEndianView(dst)
	dec.Initialize(rd)
	out := coder.NewUnboundedSink([]IntermediateToken[byte]{})
	if res, err := dec.DecodeN(1, rd, out); res != coder.Done || err != nil {
		t.Fatalf("DecodeN(1) = %v, %v", res, err)
	}
	if res, err := dec.DecodeN(1, rd, out); res != coder.Done || err != nil {
		t.Fatalf("DecodeN(1) second = %v, %v", res, err)
	}
	got := out.Tokens()
	for i := range toks {
		if got[i] != toks[i] {
			t.Fatalf("token %d = %+v, want %+v", i, got[i], toks[i])
		}
	}
}

func TestTokenBitSize(t *testing.T) {
	enc, _ := newUniformTriple(t)
	tok := IntermediateToken[byte]{Suffix: 'a', Position: 7, Length: 3}
	want := float32(8 + 16 + 8)
	if got := enc.TokenBitSize(tok); got != want {
		t.Fatalf("TokenBitSize = %v, want %v", got, want)
	}
}

func TestIncompatibleCodersRejected(t *testing.T) {
	counts := map[byte]uint64{'a': 2, 'b': 2}
	tbl, err := tans.InitTable[byte](counts, 0, 1, 4)
	if err != nil {
		t.Fatal(err)
	}
	asymEncoder := tans.NewEncoder[byte](tbl)
	if _, err := NewEncoder[byte](asymEncoder, uniform.NewEncoder[uint32](16), uniform.NewEncoder[uint32](8)); err != coder.ErrIncompatibleCoders {
		t.Fatalf("NewEncoder with mixed asymmetry = %v, want ErrIncompatibleCoders", err)
	}
}
