package lz77

import (
	"github.com/Bajtazar/koda/coder"
	"github.com/Bajtazar/koda/intermediate"
	"github.com/Bajtazar/koda/lzwindow"
	"github.com/Bajtazar/koda/token"
)

// Decoder reassembles the raw token stream from IntermediateTokens read
// through aux, replaying each token's match as a window copy followed by
// its trailing literal suffix. It needs no search tree: reconstruction
// only ever reads positions a prior step already established.
type Decoder[T token.Type] struct {
	dictSize, lookAhead, cyclicBufferSize uint32
	aux                                   AuxDecoder[T]

	win     *lzwindow.Window[T]
	pending []T

	auxSink *coder.Sink[intermediate.IntermediateToken[T]]

	// Reconstruction state for the token currently mid-copy.
	haveTok           bool
	curSuffix         T
	curPos, curLen    uint32
	curCopied         uint32
	curDictLenAtStart uint32
	curShift          uint32
	curBuf            []T
}

// NewDecoder constructs a Decoder matching the dictSize, lookAhead and
// cyclicBufferSize an Encoder was built with.
func NewDecoder[T token.Type](dictSize, lookAhead, cyclicBufferSize uint32, aux AuxDecoder[T]) (*Decoder[T], error) {
	if lookAhead == 0 || dictSize < stringSize {
		return nil, coder.ErrInvalidConfig
	}
	if cyclicBufferSize != 0 && cyclicBufferSize < dictSize+2*lookAhead {
		return nil, coder.ErrInvalidConfig
	}
	return &Decoder[T]{dictSize: dictSize, lookAhead: lookAhead, cyclicBufferSize: cyclicBufferSize, aux: aux}, nil
}

// Initialize runs aux's own Initialize.
func (d *Decoder[T]) Initialize(in coder.BitSource) coder.Result {
	return d.aux.Initialize(in)
}

// emit appends a freshly reconstructed symbol to the window (or, before the
// window exists, to the initial-fill pending buffer, constructing the
// window once lookAhead symbols have accumulated). Reports whether a
// dictionary symbol was pruned, so the caller can keep position math
// correct mid-copy.
func (d *Decoder[T]) emit(sym T) bool {
	if d.win == nil {
		d.pending = append(d.pending, sym)
		if uint32(len(d.pending)) == d.lookAhead {
			win, err := lzwindow.New[T](d.dictSize, d.lookAhead, d.cyclicBufferSize, d.pending)
			if err != nil {
				panic(err)
			}
			d.win = win
			d.pending = nil
		}
		return false
	}
	return d.win.AddSymbol(sym)
}

// readAt returns the symbol at absolute position p, measured from the
// encoder's dictionary start as it stood when the current token began:
// the last min(decoded, dictSize) symbols. The decoder's window (or
// pending) holds up to lookAhead more symbols than that dictionary, so
// positions within it are offset by the difference and read through the
// window, correcting for any pruning that has happened since via
// curShift; positions beyond it are self-referential, resolved against
// symbols this same token has already produced.
func (d *Decoder[T]) readAt(p uint32) T {
	held := uint32(len(d.pending))
	if d.win != nil {
		held = d.win.DictionaryLen() + d.win.BufferLen()
	}
	heldAtStart := held - uint32(len(d.curBuf)) + d.curShift
	dictAtStart := min(heldAtStart, d.dictSize)
	if p >= dictAtStart {
		return d.curBuf[p-dictAtStart]
	}
	rel := heldAtStart - dictAtStart + p - d.curShift
	if d.win != nil {
		return d.win.GetSequenceAtRelativePos(rel, 1)[0]
	}
	return d.pending[rel]
}

func (d *Decoder[T]) dictLenNow() uint32 {
	if d.win != nil {
		return d.win.DictionaryLen()
	}
	return uint32(len(d.pending))
}

func (d *Decoder[T]) startToken(tok intermediate.IntermediateToken[T]) {
	d.curSuffix = tok.Suffix
	d.curPos = tok.Position
	d.curLen = tok.Length
	d.curDictLenAtStart = d.dictLenNow()
	d.curCopied = 0
	d.curShift = 0
	d.curBuf = d.curBuf[:0]
	d.haveTok = true
}

// Decode reconstructs raw symbols into out until out is full or in runs
// dry mid-token. A malformed-input error from aux (a corrupt field code)
// propagates unchanged.
func (d *Decoder[T]) Decode(in coder.BitSource, out *coder.Sink[T]) (coder.Result, error) {
	for !out.Full() {
		if !d.haveTok {
			if d.auxSink == nil {
				d.auxSink = coder.NewSink(make([]intermediate.IntermediateToken[T], 0, 1))
			}
			res, err := d.aux.DecodeN(1, in, d.auxSink)
			if err != nil {
				return coder.Done, err
			}
			if res == coder.ShortInput {
				return coder.ShortInput, nil
			}
			tok := d.auxSink.Tokens()[0]
			d.auxSink = nil
			d.startToken(tok)
		}
		for d.curCopied < d.curLen {
			if out.Full() {
				return coder.Done, nil
			}
			sym := d.readAt(d.curPos + d.curCopied)
			d.curBuf = append(d.curBuf, sym)
			if d.emit(sym) {
				d.curShift++
			}
			out.Put(sym)
			d.curCopied++
		}
		if out.Full() {
			return coder.Done, nil
		}
		d.curBuf = append(d.curBuf, d.curSuffix)
		if d.emit(d.curSuffix) {
			d.curShift++
		}
		out.Put(d.curSuffix)
		d.haveTok = false
	}
	return coder.Done, nil
}

// DecodeN behaves like Decode but stops after producing at most n raw
// symbols.
func (d *Decoder[T]) DecodeN(n int, in coder.BitSource, out *coder.Sink[T]) (coder.Result, error) {
	produced := 0
	for produced < n {
		if !d.haveTok {
			if d.auxSink == nil {
				d.auxSink = coder.NewSink(make([]intermediate.IntermediateToken[T], 0, 1))
			}
			res, err := d.aux.DecodeN(1, in, d.auxSink)
			if err != nil {
				return coder.Done, err
			}
			if res == coder.ShortInput {
				return coder.ShortInput, nil
			}
			tok := d.auxSink.Tokens()[0]
			d.auxSink = nil
			d.startToken(tok)
		}
		for d.curCopied < d.curLen {
			if produced >= n || out.Full() {
				return coder.Done, nil
			}
			sym := d.readAt(d.curPos + d.curCopied)
			d.curBuf = append(d.curBuf, sym)
			if d.emit(sym) {
				d.curShift++
			}
			out.Put(sym)
			d.curCopied++
			produced++
		}
		if produced >= n || out.Full() {
			return coder.Done, nil
		}
		d.curBuf = append(d.curBuf, d.curSuffix)
		if d.emit(d.curSuffix) {
			d.curShift++
		}
		out.Put(d.curSuffix)
		d.haveTok = false
		produced++
	}
	return coder.Done, nil
}
