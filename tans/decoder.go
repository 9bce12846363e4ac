package tans

import (
	"github.com/Bajtazar/koda/coder"
	"github.com/Bajtazar/koda/token"
)

// Decoder reads tokens written by an Encoder built from the same table,
// from a bit-reversed copy of the encoded stream (see Reverse). It emits
// each token the instant its state is known, then resumes the state
// transition's renormalization-bit read on the following call if input
// runs short mid-transition — the suspension point the specification
// calls a decoder's "field boundary".
type Decoder[T token.Type] struct {
	table *Table[T]
	state uint64
	ready bool

	active bool
	base   uint64
	nb     uint
	got    uint
	acc    uint64
}

// NewDecoder constructs a Decoder driven by tab.
func NewDecoder[T token.Type](tab *Table[T]) *Decoder[T] {
	return &Decoder[T]{table: tab}
}

// Asymmetric reports true: see Encoder's doc comment.
func (d *Decoder[T]) Asymmetric() bool { return true }

// Initialize reads the encoder's final state (TableLog bits) from the top
// of the (already reversed) stream. The encoder wrote those bits
// LSB-first, so after reversal they arrive most significant bit first.
func (d *Decoder[T]) Initialize(in coder.BitSource) coder.Result {
	if d.ready {
		return coder.Done
	}
	if !d.active {
		d.acc, d.got, d.active, d.nb = 0, 0, true, d.table.tableLog
	}
	for d.got < d.nb {
		bit, ok := in.ReadBit()
		if !ok {
			return coder.ShortInput
		}
		d.acc = d.acc<<1 | uint64(bit)
		d.got++
	}
	d.state = d.acc
	d.active = false
	d.ready = true
	return coder.Done
}

func (d *Decoder[T]) startRenorm(sym T) {
	rank := uint64(d.table.rankOf[d.state])
	S := d.table.satur[sym]
	k := d.table.kShort[sym]

	var nb uint
	var base uint64
	if rank < k {
		nb = S
		base = rank << S
	} else {
		nb = S + 1
		base = k<<S + (rank-k)<<nb
	}
	d.base, d.nb, d.got, d.acc, d.active = base, nb, 0, 0, true
}

// renorm drains whatever renormalization bits remain pending, updating
// state once they are all read (most significant bit first, mirroring the
// encoder's LSB-first write through the reversed stream). Returns false if
// input ran short.
func (d *Decoder[T]) renorm(in coder.BitSource) bool {
	for d.got < d.nb {
		bit, ok := in.ReadBit()
		if !ok {
			return false
		}
		d.acc = d.acc<<1 | uint64(bit)
		d.got++
	}
	d.state = d.base + d.acc
	d.active = false
	return true
}

// readOne finishes any pending state transition from the previous token,
// reads off the next symbol (which is already fully determined by the
// current state), and begins that symbol's own state transition,
// completing as much of it as the input allows.
func (d *Decoder[T]) readOne(in coder.BitSource) (T, bool) {
	if d.active && !d.renorm(in) {
		return 0, false
	}
	sym := d.table.stateTable[d.state]
	d.startRenorm(sym)
	d.renorm(in) // best effort; leaves d.active set if input ran short
	return sym, true
}

// Decode reads tokens until out is full or in runs dry. The renormalization
// invariant keeps every state within stateTable's bounds regardless of bit
// content, so there is no dead end to walk off and the error return is
// always nil.
func (d *Decoder[T]) Decode(in coder.BitSource, out *coder.Sink[T]) (coder.Result, error) {
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
func (d *Decoder[T]) DecodeN(n int, in coder.BitSource, out *coder.Sink[T]) (coder.Result, error) {
	for i := 0; i < n && !out.Full(); i++ {
		v, ok := d.readOne(in)
		if !ok {
			return coder.ShortInput, nil
		}
		out.Put(v)
	}
	return coder.Done, nil
}
