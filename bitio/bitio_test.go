package bitio

import (
	"testing"

	"github.com/Bajtazar/koda/internal/testutil"
)

func TestWriterReaderLittleEndian(t *testing.T) {
	var dst []byte
	w := LittleEndianWriter(&dst)
	bits := []uint8{1, 0, 1, 1, 0, 0, 0, 1, 1, 0}
	for _, b := range bits {
		if !w.WriteBit(b) {
			t.Fatalf("WriteBit unexpectedly refused")
		}
	}
	w.Flush()

	r := LittleEndianView(dst)
	for i, want := range bits {
		got, ok := r.ReadBit()
		if !ok {
			t.Fatalf("ReadBit %d: unexpected EOF", i)
		}
		if got != want {
			t.Fatalf("ReadBit %d = %d, want %d", i, got, want)
		}
	}
}

func TestWriterReaderBigEndian(t *testing.T) {
	var dst []byte
	w := BigEndianWriter(&dst)
	bits := []uint8{1, 0, 1, 1, 0, 0, 0, 1, 1, 0}
	for _, b := range bits {
		w.WriteBit(b)
	}
	w.Flush()

	r := BigEndianView(dst)
	for i, want := range bits {
		got, ok := r.ReadBit()
		if !ok || got != want {
			t.Fatalf("ReadBit %d = (%d,%v), want (%d,true)", i, got, ok, want)
		}
	}
}

func TestFlushIdempotent(t *testing.T) {
	var dst []byte
	w := LittleEndianWriter(&dst)
	w.WriteBit(1)
	w.Flush()
	n := len(dst)
	w.Flush()
	if len(dst) != n {
		t.Fatalf("second Flush emitted more bytes: %d -> %d", n, len(dst))
	}
}

func TestReadBitsWriteBits(t *testing.T) {
	r := testutil.NewRand(1)
	var dst []byte
	w := LittleEndianWriter(&dst)
	vals := make([]uint64, 100)
	widths := make([]uint, 100)
	for i := range vals {
		widths[i] = uint(1 + r.Intn(32))
		vals[i] = uint64(r.Intn(1<<uint(min(widths[i], 31)))) & (1<<widths[i] - 1)
		if n, ok := w.WriteBits(vals[i], widths[i]); !ok || n != widths[i] {
			t.Fatalf("WriteBits failed at %d", i)
		}
	}
	w.Flush()

	rd := LittleEndianView(dst)
	for i := range vals {
		got, ok := rd.ReadBits(widths[i])
		if !ok {
			t.Fatalf("ReadBits %d: unexpected EOF", i)
		}
		if got != vals[i] {
			t.Fatalf("ReadBits %d = %d, want %d", i, got, vals[i])
		}
	}
}

func TestShortOutputResumable(t *testing.T) {
	buf := make([]byte, 0, 1)
	sink := NewSliceSink(buf)
	w := NewWriter(sink, LittleEndian)

	bits := []uint8{1, 1, 0, 0, 1, 0, 1, 1, 1, 0, 1, 0, 0, 0, 1, 1, 1, 1}
	var produced int
	for _, b := range bits {
		if w.WriteBit(b) {
			produced++
			continue
		}
		// Out of room: grow the sink's backing capacity and retry the
		// same bit, exactly the resumability contract in spec section 8.
		grown := make([]byte, len(sink.Bytes()), len(sink.Bytes())+4)
		copy(grown, sink.Bytes())
		sink = NewSliceSink(grown)
		w.dst = sink
		if !w.WriteBit(b) {
			t.Fatalf("retry after growing sink still refused")
		}
		produced++
	}
	w.Flush()

	r := LittleEndianView(sink.Bytes())
	for i, want := range bits {
		got, ok := r.ReadBit()
		if !ok || got != want {
			t.Fatalf("bit %d = (%d,%v), want (%d,true)", i, got, ok, want)
		}
	}
}

func TestTakeView(t *testing.T) {
	var dst []byte
	w := LittleEndianWriter(&dst)
	for _, b := range []uint8{1, 0, 1, 1, 0, 1, 0, 1} {
		w.WriteBit(b)
	}
	w.Flush()

	r := LittleEndianView(dst)
	tv := Take(r, 3)
	var got []uint8
	for {
		b, ok := tv.ReadBit()
		if !ok {
			break
		}
		got = append(got, b)
	}
	want := []uint8{1, 0, 1}
	if len(got) != len(want) {
		t.Fatalf("Take(3) produced %d bits, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("bit %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func min(a, b uint) uint {
	if a < b {
		return a
	}
	return b
}
