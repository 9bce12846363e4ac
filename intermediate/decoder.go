package intermediate

import (
	"github.com/Bajtazar/koda/coder"
	"github.com/Bajtazar/koda/token"
)

// Decoder mirrors Encoder: it reassembles IntermediateToken values by
// running the three field decoders in turn over the same {Token,
// Position, Length} state machine.
type Decoder[T token.Type] struct {
	tokenDec coder.Decoder[T]
	posDec   coder.Decoder[uint32]
	lenDec   coder.Decoder[uint32]

	initField uint8

	field   uint8
	tokSink *coder.Sink[T]
	posSink *coder.Sink[uint32]
	lenSink *coder.Sink[uint32]
}

// NewDecoder composes tokenDec, posDec and lenDec into a splitter
// decoder. Returns ErrIncompatibleCoders under the same rule as
// NewEncoder.
func NewDecoder[T token.Type](tokenDec coder.Decoder[T], posDec, lenDec coder.Decoder[uint32]) (*Decoder[T], error) {
	if !compatibleFields(tokenDec, posDec, lenDec) {
		return nil, coder.ErrIncompatibleCoders
	}
	return &Decoder[T]{tokenDec: tokenDec, posDec: posDec, lenDec: lenDec}, nil
}

// Initialize runs each field decoder's own Initialize in turn.
func (d *Decoder[T]) Initialize(in coder.BitSource) coder.Result {
	for d.initField < 3 {
		var res coder.Result
		switch d.initField {
		case 0:
			res = d.tokenDec.Initialize(in)
		case 1:
			res = d.posDec.Initialize(in)
		case 2:
			res = d.lenDec.Initialize(in)
		}
		if res == coder.ShortInput {
			return coder.ShortInput
		}
		d.initField++
	}
	return coder.Done
}

func (d *Decoder[T]) startToken() {
	d.field = 0
	d.tokSink = coder.NewSink(make([]T, 0, 1))
	d.posSink = coder.NewSink(make([]uint32, 0, 1))
	d.lenSink = coder.NewSink(make([]uint32, 0, 1))
}

// readOne decodes a single IntermediateToken, resuming from whichever
// field it last suspended on. A malformed-input error from any field
// decoder aborts the token immediately and propagates to the caller.
func (d *Decoder[T]) readOne(in coder.BitSource) (IntermediateToken[T], bool, error) {
	if d.tokSink == nil {
		d.startToken()
	}
	for d.field < 3 {
		switch d.field {
		case 0:
			res, err := d.tokenDec.Decode(in, d.tokSink)
			if err != nil {
				return IntermediateToken[T]{}, false, err
			}
			if res == coder.ShortInput {
				return IntermediateToken[T]{}, false, nil
			}
			d.field = 1
		case 1:
			res, err := d.posDec.Decode(in, d.posSink)
			if err != nil {
				return IntermediateToken[T]{}, false, err
			}
			if res == coder.ShortInput {
				return IntermediateToken[T]{}, false, nil
			}
			d.field = 2
		case 2:
			res, err := d.lenDec.Decode(in, d.lenSink)
			if err != nil {
				return IntermediateToken[T]{}, false, err
			}
			if res == coder.ShortInput {
				return IntermediateToken[T]{}, false, nil
			}
			d.field = 3
		}
	}
	tok := IntermediateToken[T]{
		Suffix:   d.tokSink.Tokens()[0],
		Position: d.posSink.Tokens()[0],
		Length:   d.lenSink.Tokens()[0],
	}
	d.startToken()
	return tok, true, nil
}

// Decode produces IntermediateTokens into out until out is full or in
// runs dry mid-token.
func (d *Decoder[T]) Decode(in coder.BitSource, out *coder.Sink[IntermediateToken[T]]) (coder.Result, error) {
	for !out.Full() {
		tok, ok, err := d.readOne(in)
		if err != nil {
			return coder.Done, err
		}
		if !ok {
			return coder.ShortInput, nil
		}
		out.Put(tok)
	}
	return coder.Done, nil
}

// DecodeN behaves like Decode but stops after producing at most n
// tokens.
func (d *Decoder[T]) DecodeN(n int, in coder.BitSource, out *coder.Sink[IntermediateToken[T]]) (coder.Result, error) {
	for i := 0; i < n; i++ {
		if out.Full() {
			return coder.Done, nil
		}
		tok, ok, err := d.readOne(in)
		if err != nil {
			return coder.Done, err
		}
		if !ok {
			return coder.ShortInput, nil
		}
		out.Put(tok)
	}
	return coder.Done, nil
}
