package huffman

import "github.com/Bajtazar/koda/token"

// decodeTree is the binary tree descended bit-by-bit to decode a
// canonical codeword, built directly from the Table's codewords rather
// than the two-level chunked lookup brotli/prefix_decoder.go uses, since
// this package's alphabet is an arbitrary generic token rather than a
// fixed byte range: a flat array indexed by lookahead bits would have to
// size itself to the largest codeword length, which is unbounded here.
type decodeTree[T token.Type] struct {
	nodes []treeNode[T]
}

type treeNode[T token.Type] struct {
	leaf     bool
	sym      T
	children [2]int32 // -1 when absent
}

func newDecodeTree[T token.Type](tab *Table[T]) *decodeTree[T] {
	dt := &decodeTree[T]{nodes: []treeNode[T]{{children: [2]int32{-1, -1}}}}
	for _, sym := range tab.order {
		c := tab.codes[sym]
		dt.insert(c)
	}
	return dt
}

func (dt *decodeTree[T]) insert(c Code[T]) {
	cur := int32(0)
	for i := uint32(0); i < c.Len; i++ {
		bit := (c.Val >> i) & 1
		next := dt.nodes[cur].children[bit]
		if next == -1 {
			dt.nodes = append(dt.nodes, treeNode[T]{children: [2]int32{-1, -1}})
			next = int32(len(dt.nodes) - 1)
			dt.nodes[cur].children[bit] = next
		}
		cur = next
	}
	dt.nodes[cur].leaf = true
	dt.nodes[cur].sym = c.Sym
}

// step descends one bit from node cur; ok is false only when the bit
// points to an absent child, which means the stream is malformed.
func (dt *decodeTree[T]) step(cur int32, bit uint8) (next int32, ok bool) {
	next = dt.nodes[cur].children[bit]
	return next, next != -1
}

func (dt *decodeTree[T]) isLeaf(cur int32) (T, bool) {
	n := dt.nodes[cur]
	return n.sym, n.leaf
}
