// Package lz77 implements the sliding-window LZ77 engine (C8): it composes
// a fused dictionary-and-buffer window and a fixed-length-string search
// tree to turn a raw token stream into a stream of (suffix, position,
// length) intermediate tokens, then hands those to an auxiliary coder
// (typically package intermediate's field splitter) for entropy coding.
package lz77

import (
	"github.com/Bajtazar/koda/coder"
	"github.com/Bajtazar/koda/intermediate"
	"github.com/Bajtazar/koda/token"
)

// stringSize is the fixed length of the strings the search tree indexes.
// It is deliberately shorter than a typical look-ahead size: a 2-symbol
// key is long enough to discriminate most candidate positions (see
// DESIGN.md for the golden-vector trace that pins this value down) while
// staying short enough that a match becomes indexable almost immediately,
// after only two symbols have entered the dictionary.
const stringSize = 2

// AuxEncoder is the capability an auxiliary coder must offer to be plugged
// into an Encoder: it must encode IntermediateToken values and report the
// bit cost of one, so the engine can weigh a match against a literal.
type AuxEncoder[T token.Type] interface {
	coder.SizeAwareEncoder[intermediate.IntermediateToken[T]]
}

// AuxDecoder is the capability an auxiliary coder must offer to be plugged
// into a Decoder.
type AuxDecoder[T token.Type] interface {
	coder.Decoder[intermediate.IntermediateToken[T]]
}
