// Package huffman builds a canonical prefix code from a symbol-count map
// and streams encoded/decoded tokens through it, grounded in the teacher's
// compress/internal/prefix design (internal/prefix/prefix_test.go's
// PrefixCode shape, brotli/prefix_decoder.go's canonical-code assignment)
// generalized from a byte alphabet to the generic token.Type.
package huffman

import (
	"container/heap"
	"sort"

	"github.com/Bajtazar/koda/internal/bitutil"
	"github.com/Bajtazar/koda/token"
)

// Code is one entry of a canonical prefix code: token sym is represented
// by the low Len bits of Val (LSB-first).
type Code[T token.Type] struct {
	Sym T
	Val uint32
	Len uint32
}

// Table is an ordered map from token to codeword, the structure spec
// section 4.6 calls the Huffman table. It satisfies "no codeword is a
// prefix of another" by construction.
type Table[T token.Type] struct {
	codes  map[T]Code[T]
	order  []T // ascending by token value, for deterministic iteration
	single bool
}

// MakeTable builds a canonical Huffman table from a token->count map.
// Building follows the standard greedy construction: repeatedly merge the
// two lowest-weight nodes in a min-priority queue, tie-broken
// lexicographically by token so that ties resolve deterministically; the
// resulting code lengths are then reassigned canonical (smallest codeword
// to the smallest symbol at each length) bit patterns.
//
// A single-symbol distribution (the "Dirac" case) produces an empty
// codeword for that symbol.
func MakeTable[T token.Type](counts map[T]uint64) (*Table[T], error) {
	if len(counts) == 0 {
		return nil, ErrEmptyTable
	}
	if len(counts) == 1 {
		var sym T
		for s := range counts {
			sym = s
		}
		return &Table[T]{
			codes:  map[T]Code[T]{sym: {Sym: sym, Val: 0, Len: 0}},
			order:  []T{sym},
			single: true,
		}, nil
	}

	lengths := buildLengths(counts)
	return buildCanonical(lengths), nil
}

// buildLengths runs the classic two-smallest-merge Huffman construction
// and returns the resulting code length of every symbol.
func buildLengths[T token.Type](counts map[T]uint64) map[T]uint {
	syms := make([]T, 0, len(counts))
	for s := range counts {
		syms = append(syms, s)
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i] < syms[j] })

	pq := make(huffQueue[T], 0, len(syms))
	for seq, s := range syms {
		heap.Push(&pq, &huffNode[T]{weight: counts[s], sym: s, isLeaf: true, seq: seq})
	}
	heap.Init(&pq)

	nextSeq := len(syms)
	lengths := make(map[T]uint, len(syms))

	for pq.Len() > 1 {
		a := heap.Pop(&pq).(*huffNode[T])
		b := heap.Pop(&pq).(*huffNode[T])
		parent := &huffNode[T]{weight: a.weight + b.weight, left: a, right: b, seq: nextSeq}
		nextSeq++
		heap.Push(&pq, parent)
	}
	root := pq[0]
	walkDepth(root, 0, lengths)
	return lengths
}

func walkDepth[T token.Type](n *huffNode[T], depth uint, lengths map[T]uint) {
	if n.isLeaf {
		lengths[n.sym] = depth
		return
	}
	walkDepth(n.left, depth+1, lengths)
	walkDepth(n.right, depth+1, lengths)
}

// buildCanonical assigns canonical codeword values given fixed lengths:
// symbols are sorted by (length, token value) and consecutive codes of
// the same length are assigned in increasing numeric order, doubled when
// the length grows. Values are stored bit-reversed so that the natural
// MSB-first construction order becomes LSB-first emission, matching this
// module's bit stream convention.
func buildCanonical[T token.Type](lengths map[T]uint) *Table[T] {
	type entry struct {
		sym T
		len uint
	}
	entries := make([]entry, 0, len(lengths))
	for s, l := range lengths {
		entries = append(entries, entry{s, l})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].len != entries[j].len {
			return entries[i].len < entries[j].len
		}
		return entries[i].sym < entries[j].sym
	})

	codes := make(map[T]Code[T], len(entries))
	order := make([]T, 0, len(entries))
	var code uint32
	prevLen := entries[0].len
	for _, e := range entries {
		code <<= e.len - prevLen
		codes[e.sym] = Code[T]{Sym: e.sym, Val: bitutil.ReverseBits(code, e.len), Len: uint32(e.len)}
		order = append(order, e.sym)
		code++
		prevLen = e.len
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	return &Table[T]{codes: codes, order: order}
}

// Lookup returns the codeword for t, if t is present in the table.
func (tab *Table[T]) Lookup(t T) (Code[T], bool) {
	c, ok := tab.codes[t]
	return c, ok
}

// Single reports whether this is a Dirac (one-symbol) table.
func (tab *Table[T]) Single() (T, bool) {
	if !tab.single {
		var zero T
		return zero, false
	}
	return tab.order[0], true
}

// Tokens returns every token present in the table, in ascending order.
func (tab *Table[T]) Tokens() []T { return tab.order }

// Error is the wrapper type for errors specific to Huffman table
// construction.
type Error string

func (e Error) Error() string { return "huffman: " + string(e) }

// ErrEmptyTable is returned by MakeTable when given an empty count map.
var ErrEmptyTable error = Error("cannot build a table from an empty count map")

// huffNode and huffQueue implement container/heap's Interface for the
// greedy merge; ties are broken by insertion order (seq), which was
// assigned in ascending token order for leaves and in creation order for
// internal nodes, giving a fully deterministic merge order.
type huffNode[T token.Type] struct {
	weight      uint64
	sym         T
	isLeaf      bool
	left, right *huffNode[T]
	seq         int
}

type huffQueue[T token.Type] []*huffNode[T]

func (q huffQueue[T]) Len() int { return len(q) }
func (q huffQueue[T]) Less(i, j int) bool {
	if q[i].weight != q[j].weight {
		return q[i].weight < q[j].weight
	}
	return q[i].seq < q[j].seq
}
func (q huffQueue[T]) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *huffQueue[T]) Push(x any)   { *q = append(*q, x.(*huffNode[T])) }
func (q *huffQueue[T]) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
