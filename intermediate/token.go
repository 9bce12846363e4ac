// Package intermediate implements the LZ77 intermediate-token splitter
// coder: a composite coder that drives three independent field coders
// (suffix symbol, match position, match length) through the
// {Token, Position, Length} state machine described for multi-field
// coders, turning a stream of IntermediateToken values into one
// interleaved bit stream and back.
package intermediate

import "github.com/Bajtazar/koda/token"

// IntermediateToken is the triple an LZ77 engine emits per step: the
// suffix symbol, and an optional match (Position, Length) measured from
// the oldest dictionary end. Length == 0 means "literal suffix symbol,
// no match".
type IntermediateToken[T token.Type] struct {
	Suffix   T
	Position uint32
	Length   uint32
}
