package searchtree

// Standard red-black tree rebalancing (Cormen/Leiseron/Rivest/Stein),
// adapted from raw-pointer nodes to arena ids per the collection's
// arena-of-NodeId design; node.parent/left/right of nilID stand in for
// the usual sentinel nil leaf, always treated as black.

func (t *Tree[T]) isRed(id int32) bool {
	return id != nilID && t.arena[id].red
}

func (t *Tree[T]) rotateLeft(x int32) {
	y := t.arena[x].right
	t.arena[x].right = t.arena[y].left
	if t.arena[y].left != nilID {
		t.arena[t.arena[y].left].parent = x
	}
	t.arena[y].parent = t.arena[x].parent
	t.replaceChild(t.arena[x].parent, x, y)
	t.arena[y].left = x
	t.arena[x].parent = y
}

func (t *Tree[T]) rotateRight(x int32) {
	y := t.arena[x].left
	t.arena[x].left = t.arena[y].right
	if t.arena[y].right != nilID {
		t.arena[t.arena[y].right].parent = x
	}
	t.arena[y].parent = t.arena[x].parent
	t.replaceChild(t.arena[x].parent, x, y)
	t.arena[y].right = x
	t.arena[x].parent = y
}

// replaceChild points parent's link that used to hold old at new
// instead; parent == nilID means old was (or becomes) the root.
func (t *Tree[T]) replaceChild(parent, old, new int32) {
	if parent == nilID {
		t.root = new
		return
	}
	if t.arena[parent].left == old {
		t.arena[parent].left = new
	} else {
		t.arena[parent].right = new
	}
}

func (t *Tree[T]) insertFixup(z int32) {
	for t.isRed(t.arena[z].parent) {
		parent := t.arena[z].parent
		grand := t.arena[parent].parent
		if parent == t.arena[grand].left {
			uncle := t.arena[grand].right
			if t.isRed(uncle) {
				t.arena[parent].red = false
				t.arena[uncle].red = false
				t.arena[grand].red = true
				z = grand
				continue
			}
			if z == t.arena[parent].right {
				z = parent
				t.rotateLeft(z)
				parent = t.arena[z].parent
				grand = t.arena[parent].parent
			}
			t.arena[parent].red = false
			t.arena[grand].red = true
			t.rotateRight(grand)
		} else {
			uncle := t.arena[grand].left
			if t.isRed(uncle) {
				t.arena[parent].red = false
				t.arena[uncle].red = false
				t.arena[grand].red = true
				z = grand
				continue
			}
			if z == t.arena[parent].left {
				z = parent
				t.rotateRight(z)
				parent = t.arena[z].parent
				grand = t.arena[parent].parent
			}
			t.arena[parent].red = false
			t.arena[grand].red = true
			t.rotateLeft(grand)
		}
	}
	t.arena[t.root].red = false
}

func (t *Tree[T]) minimum(id int32) int32 {
	for t.arena[id].left != nilID {
		id = t.arena[id].left
	}
	return id
}

// deleteNode removes the node at id from the tree, reusing its arena
// slot, and restores the red-black invariants.
func (t *Tree[T]) deleteNode(id int32) {
	y := id
	yWasRed := t.arena[y].red
	var x, xParent int32

	switch {
	case t.arena[id].left == nilID:
		x = t.arena[id].right
		xParent = t.arena[id].parent
		t.transplant(id, x)
	case t.arena[id].right == nilID:
		x = t.arena[id].left
		xParent = t.arena[id].parent
		t.transplant(id, x)
	default:
		y = t.minimum(t.arena[id].right)
		yWasRed = t.arena[y].red
		x = t.arena[y].right
		if t.arena[y].parent == id {
			xParent = y
		} else {
			xParent = t.arena[y].parent
			t.transplant(y, x)
			t.arena[y].right = t.arena[id].right
			t.arena[t.arena[y].right].parent = y
		}
		t.transplant(id, y)
		t.arena[y].left = t.arena[id].left
		t.arena[t.arena[y].left].parent = y
		t.arena[y].red = t.arena[id].red
	}

	t.release(id)
	if !yWasRed {
		t.deleteFixup(x, xParent)
	}
}

// transplant replaces the subtree rooted at u with the subtree rooted
// at v, fixing up parent pointers. v may be nilID.
func (t *Tree[T]) transplant(u, v int32) {
	t.replaceChild(t.arena[u].parent, u, v)
	if v != nilID {
		t.arena[v].parent = t.arena[u].parent
	}
}

// deleteFixup restores the invariants after a black node was removed;
// x (possibly nilID, "double black") sits at xParent's former child
// slot. xParent is threaded through explicitly since x itself may be
// the nil sentinel and carry no parent link of its own.
func (t *Tree[T]) deleteFixup(x, xParent int32) {
	for x != t.root && !t.isRed(x) {
		if x == t.arena[xParent].left {
			sibling := t.arena[xParent].right
			if t.isRed(sibling) {
				t.arena[sibling].red = false
				t.arena[xParent].red = true
				t.rotateLeft(xParent)
				sibling = t.arena[xParent].right
			}
			if !t.isRed(t.arena[sibling].left) && !t.isRed(t.arena[sibling].right) {
				t.arena[sibling].red = true
				x = xParent
				xParent = t.arena[x].parent
				continue
			}
			if !t.isRed(t.arena[sibling].right) {
				if t.arena[sibling].left != nilID {
					t.arena[t.arena[sibling].left].red = false
				}
				t.arena[sibling].red = true
				t.rotateRight(sibling)
				sibling = t.arena[xParent].right
			}
			t.arena[sibling].red = t.arena[xParent].red
			t.arena[xParent].red = false
			if t.arena[sibling].right != nilID {
				t.arena[t.arena[sibling].right].red = false
			}
			t.rotateLeft(xParent)
			x = t.root
			xParent = nilID
		} else {
			sibling := t.arena[xParent].left
			if t.isRed(sibling) {
				t.arena[sibling].red = false
				t.arena[xParent].red = true
				t.rotateRight(xParent)
				sibling = t.arena[xParent].left
			}
			if !t.isRed(t.arena[sibling].right) && !t.isRed(t.arena[sibling].left) {
				t.arena[sibling].red = true
				x = xParent
				xParent = t.arena[x].parent
				continue
			}
			if !t.isRed(t.arena[sibling].left) {
				if t.arena[sibling].right != nilID {
					t.arena[t.arena[sibling].right].red = false
				}
				t.arena[sibling].red = true
				t.rotateLeft(sibling)
				sibling = t.arena[xParent].left
			}
			t.arena[sibling].red = t.arena[xParent].red
			t.arena[xParent].red = false
			if t.arena[sibling].left != nilID {
				t.arena[t.arena[sibling].left].red = false
			}
			t.rotateRight(xParent)
			x = t.root
			xParent = nilID
		}
	}
	if x != nilID {
		t.arena[x].red = false
	}
}
