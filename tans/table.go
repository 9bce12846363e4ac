// Package tans implements the table-based asymmetric numeral system
// coder (C7): a shared state-transition table built from a token->count
// distribution, encoded in a forward pass and decoded in reverse.
//
// This package requires the table's number of states (the sum of the
// possibly-rescaled counts) to be a power of two. The specification
// leaves the exact shape of the per-state bit count and state transition
// formulas to the implementer (see the source project's own unresolved
// "rank within token" note); this implementation resolves that by
// building the encode table as the explicit inverse of the decode table,
// which is only integer-exact, for every token's saturation count, when
// the table size itself is a power of two.
package tans

import (
	"math/bits"
	"sort"

	"github.com/Bajtazar/koda/coder"
	"github.com/Bajtazar/koda/token"
)

// Table is the shared state-distribution table consumed by both Encoder
// and Decoder.
type Table[T token.Type] struct {
	l        uint64 // number of states (power of two)
	tableLog uint
	counts   map[T]uint64

	stateTable []T      // index -> token
	rankOf     []uint32 // index -> 0-based occurrence rank of its token
	occIndex   map[T][]uint32
	satur      map[T]uint   // S(t) = floor(log2(l/count(t)))
	kShort     map[T]uint64 // ranks [0,kShort(t)) use S(t) bits; the rest use S(t)+1
}

// Error is the wrapper type for errors specific to this package.
type Error string

func (e Error) Error() string { return "tans: " + string(e) }

// InitTable builds a Table from a token->count distribution and three
// construction parameters: initState and step drive the stride-walk that
// assigns tokens to state indices; normalizeTo, if non-zero, rescales
// counts (nearest-integer redistribution, with the rounding leftover
// assigned to the largest bucket so the sum is preserved exactly) before
// building the table. The resulting number of states (normalizeTo, or
// the raw sum of counts if normalizeTo is zero) must be a power of two.
func InitTable[T token.Type](counts map[T]uint64, initState, step, normalizeTo uint64) (*Table[T], error) {
	if len(counts) == 0 {
		return nil, coder.ErrInvalidConfig
	}
	rescaled := counts
	if normalizeTo != 0 {
		var err error
		rescaled, err = rescaleCounts(counts, normalizeTo)
		if err != nil {
			return nil, err
		}
	}

	var l uint64
	for _, c := range rescaled {
		if c == 0 {
			return nil, coder.ErrInvalidConfig
		}
		l += c
	}
	if l == 0 || l&(l-1) != 0 {
		return nil, coder.ErrInvalidConfig
	}

	syms := make([]T, 0, len(rescaled))
	for s := range rescaled {
		syms = append(syms, s)
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i] < syms[j] })

	stateTable := make([]T, l)
	filled := make([]bool, l)
	i := initState % l
	for _, s := range syms {
		for n := uint64(0); n < rescaled[s]; n++ {
			for filled[i] {
				i = (i + 1) % l
			}
			stateTable[i] = s
			filled[i] = true
			i = (i + step) % l
		}
	}

	rankOf := make([]uint32, l)
	occIndex := make(map[T][]uint32, len(rescaled))
	seen := make(map[T]uint32, len(rescaled))
	for idx, s := range stateTable {
		r := seen[s]
		rankOf[idx] = r
		seen[s] = r + 1
		occIndex[s] = append(occIndex[s], uint32(idx))
	}

	tableLog := uint(bits.TrailingZeros64(l))
	satur := make(map[T]uint, len(rescaled))
	kShort := make(map[T]uint64, len(rescaled))
	for s, c := range rescaled {
		S := uint(0)
		if l/c > 1 {
			S = uint(bits.Len64(l/c)) - 1
		}
		satur[s] = S
		kShort[s] = 2*c - l>>S
	}

	return &Table[T]{
		l: l, tableLog: tableLog, counts: rescaled,
		stateTable: stateTable, rankOf: rankOf, occIndex: occIndex,
		satur: satur, kShort: kShort,
	}, nil
}

// rescaleCounts redistributes counts proportionally so they sum to
// target, rounding to nearest and reassigning the rounding leftover to
// whichever bucket has the largest rescaled count so the sum is exact.
func rescaleCounts[T token.Type](counts map[T]uint64, target uint64) (map[T]uint64, error) {
	var total uint64
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return nil, coder.ErrInvalidConfig
	}

	out := make(map[T]uint64, len(counts))
	var sum uint64
	var biggest T
	first := true
	for s, c := range counts {
		v := (c*target*2 + total) / (2 * total) // round to nearest
		if v == 0 {
			v = 1
		}
		out[s] = v
		sum += v
		if first || v > out[biggest] {
			biggest = s
			first = false
		}
	}
	diff := int64(target) - int64(sum)
	if diff < 0 && out[biggest] <= uint64(-diff) {
		return nil, coder.ErrInvalidConfig
	}
	out[biggest] = uint64(int64(out[biggest]) + diff)
	return out, nil
}

// NumberOfStates returns L, the table's state count.
func (tab *Table[T]) NumberOfStates() uint64 { return tab.l }

// TableLog returns log2(L).
func (tab *Table[T]) TableLog() uint { return tab.tableLog }
