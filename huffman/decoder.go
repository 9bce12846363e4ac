package huffman

import (
	"runtime"

	"github.com/Bajtazar/koda/coder"
	"github.com/Bajtazar/koda/token"
)

// Decoder reads tokens written by an Encoder built from the same table.
// It descends decodeTree one bit per call, remembering its current node
// so a short-input suspension mid-codeword resumes exactly where it left
// off.
//
// A stream that walks off the tree (a dead end with no child for the bit
// just read) is corrupt. readOne panics with coder.ErrMalformedInput rather
// than threading an error through every step of the bit-by-bit descent;
// Decode and DecodeN recover it at the boundary via errRecover.
type Decoder[T token.Type] struct {
	table *Table[T]
	tree  *decodeTree[T]
	cur   int32
}

// NewDecoder constructs a Decoder reading codewords described by tab.
func NewDecoder[T token.Type](tab *Table[T]) *Decoder[T] {
	d := &Decoder[T]{table: tab}
	if _, single := tab.Single(); !single {
		d.tree = newDecodeTree(tab)
	}
	return d
}

// Initialize is a no-op: a Huffman table carries no inline preamble in
// this module (tables are exchanged out of band, as the teacher's
// prefix-code readers assume a table already agreed upon by both sides).
func (d *Decoder[T]) Initialize(coder.BitSource) coder.Result { return coder.Done }

func (d *Decoder[T]) readOne(in coder.BitSource) (T, bool) {
	if sym, ok := d.table.Single(); ok {
		return sym, true
	}
	for {
		bit, ok := in.ReadBit()
		if !ok {
			return 0, false
		}
		next, ok := d.tree.step(d.cur, bit)
		if !ok {
			panic(coder.ErrMalformedInput)
		}
		d.cur = next
		if sym, leaf := d.tree.isLeaf(d.cur); leaf {
			d.cur = 0
			return sym, true
		}
	}
}

// errRecover recovers a panicked coder.ErrMalformedInput (or any other
// error) into *err, letting readOne bail out of its tree walk without
// threading an error return through every bit read. Runtime errors (nil
// pointer dereferences, index-out-of-range from a bug elsewhere) are not
// ours to swallow and are re-panicked.
func errRecover(err *error) {
	switch ex := recover().(type) {
	case nil:
		// Do nothing.
	case runtime.Error:
		panic(ex)
	case error:
		*err = ex
	default:
		panic(ex)
	}
}

// Decode reads tokens until out is full or in runs dry. It returns
// coder.ErrMalformedInput if the bit stream walks off the prefix tree.
func (d *Decoder[T]) Decode(in coder.BitSource, out *coder.Sink[T]) (res coder.Result, err error) {
	defer errRecover(&err)
	for !out.Full() {
		v, ok := d.readOne(in)
		if !ok {
			return coder.ShortInput, nil
		}
		out.Put(v)
	}
	return coder.Done, nil
}

// DecodeN behaves like Decode but stops after producing at most n tokens.
func (d *Decoder[T]) DecodeN(n int, in coder.BitSource, out *coder.Sink[T]) (res coder.Result, err error) {
	defer errRecover(&err)
	for i := 0; i < n && !out.Full(); i++ {
		v, ok := d.readOne(in)
		if !ok {
			return coder.ShortInput, nil
		}
		out.Put(v)
	}
	return coder.Done, nil
}
