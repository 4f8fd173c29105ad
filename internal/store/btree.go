package store

import (
	"bytes"
	"sort"
)

// order is the maximum number of keys per node before a split.
const order = 32

// node is a B+Tree node. Branch nodes hold len(keys)+1 children; leaf nodes
// hold values aligned with keys and are chained through next for range scans.
type node struct {
	leaf     bool
	keys     [][]byte
	vals     [][]byte
	children []*node
	next     *node
}

// BTree is an in-memory B+Tree over byte-string keys, ordered by
// bytes.Compare. Not safe for concurrent use; Store serializes access.
type BTree struct {
	root   *node
	height int
}

func NewBTree() *BTree {
	return &BTree{root: &node{leaf: true}, height: 1}
}

// upperBound returns the first index with keys[i] > key.
func upperBound(keys [][]byte, key []byte) int {
	return sort.Search(len(keys), func(i int) bool { return bytes.Compare(keys[i], key) > 0 })
}

// lowerBound returns the first index with keys[i] >= key.
func lowerBound(keys [][]byte, key []byte) int {
	return sort.Search(len(keys), func(i int) bool { return bytes.Compare(keys[i], key) >= 0 })
}

func (t *BTree) findLeaf(key []byte) *node {
	n := t.root
	for !n.leaf {
		n = n.children[upperBound(n.keys, key)]
	}
	return n
}

// Get returns the value for key, or nil and false if absent.
func (t *BTree) Get(key []byte) ([]byte, bool) {
	n := t.findLeaf(key)
	i := lowerBound(n.keys, key)
	if i < len(n.keys) && bytes.Equal(n.keys[i], key) {
		return n.vals[i], true
	}
	return nil, false
}

// Put inserts or replaces key. It returns the previous value and whether the
// key already existed.
func (t *BTree) Put(key, value []byte) (prev []byte, existed bool) {
	right, sep, grew, prev, existed := t.insert(t.root, key, value)
	if grew {
		t.root = &node{keys: [][]byte{sep}, children: []*node{t.root, right}}
		t.height++
	}
	return prev, existed
}

func (t *BTree) insert(n *node, key, value []byte) (*node, []byte, bool, []byte, bool) {
	if n.leaf {
		i := lowerBound(n.keys, key)
		if i < len(n.keys) && bytes.Equal(n.keys[i], key) {
			prev := n.vals[i]
			n.vals[i] = value
			return nil, nil, false, prev, true
		}
		n.keys = insertAt(n.keys, i, key)
		n.vals = insertAt(n.vals, i, value)
		if len(n.keys) < order {
			return nil, nil, false, nil, false
		}
		right, sep := splitLeaf(n)
		return right, sep, true, nil, false
	}

	idx := upperBound(n.keys, key)
	right, sep, grew, prev, existed := t.insert(n.children[idx], key, value)
	if !grew {
		return nil, nil, false, prev, existed
	}
	n.keys = insertAt(n.keys, idx, sep)
	n.children = insertChildAt(n.children, idx+1, right)
	if len(n.keys) < order {
		return nil, nil, false, prev, existed
	}
	right2, sep2 := splitBranch(n)
	return right2, sep2, true, prev, existed
}

func splitLeaf(n *node) (*node, []byte) {
	mid := len(n.keys) / 2
	right := &node{leaf: true}
	right.keys = append(right.keys, n.keys[mid:]...)
	right.vals = append(right.vals, n.vals[mid:]...)
	n.keys = n.keys[:mid]
	n.vals = n.vals[:mid]
	right.next = n.next
	n.next = right
	return right, right.keys[0]
}

func splitBranch(n *node) (*node, []byte) {
	mid := len(n.keys) / 2
	sep := n.keys[mid]
	right := &node{}
	right.keys = append(right.keys, n.keys[mid+1:]...)
	right.children = append(right.children, n.children[mid+1:]...)
	n.keys = n.keys[:mid]
	n.children = n.children[:mid+1]
	return right, sep
}

// Delete removes key from its leaf if present and returns the removed value.
// Leaves are not merged on underflow; tree height is bounded by inserts, so
// lookups stay logarithmic.
func (t *BTree) Delete(key []byte) (prev []byte, existed bool) {
	n := t.findLeaf(key)
	i := lowerBound(n.keys, key)
	if i < len(n.keys) && bytes.Equal(n.keys[i], key) {
		prev = n.vals[i]
		n.keys = append(n.keys[:i], n.keys[i+1:]...)
		n.vals = append(n.vals[:i], n.vals[i+1:]...)
		return prev, true
	}
	return nil, false
}

// Ascend walks entries with key >= start in ascending order, calling fn for
// each until it returns false. A nil start walks from the smallest key.
func (t *BTree) Ascend(start []byte, fn func(key, value []byte) bool) {
	var n *node
	if start == nil {
		n = t.root
		for !n.leaf {
			n = n.children[0]
		}
	} else {
		n = t.findLeaf(start)
	}
	i := 0
	if start != nil {
		i = lowerBound(n.keys, start)
	}
	for n != nil {
		for ; i < len(n.keys); i++ {
			if !fn(n.keys[i], n.vals[i]) {
				return
			}
		}
		n = n.next
		i = 0
	}
}

// Height returns the current tree height in levels.
func (t *BTree) Height() int {
	return t.height
}

// MinKey returns the smallest key, or nil if the tree is empty.
func (t *BTree) MinKey() []byte {
	n := t.root
	for !n.leaf {
		n = n.children[0]
	}
	if len(n.keys) == 0 {
		// The leftmost leaf can drain after deletes; fall back to a walk.
		var min []byte
		t.Ascend(nil, func(k, _ []byte) bool {
			min = k
			return false
		})
		return min
	}
	return n.keys[0]
}

// MaxKey returns the largest key, or nil if the tree is empty.
func (t *BTree) MaxKey() []byte {
	var max []byte
	n := t.root
	for !n.leaf {
		n = n.children[len(n.children)-1]
	}
	if len(n.keys) > 0 {
		return n.keys[len(n.keys)-1]
	}
	// Rightmost leaf may be empty after deletes.
	t.Ascend(nil, func(k, _ []byte) bool {
		max = k
		return true
	})
	return max
}

func insertAt(s [][]byte, i int, v []byte) [][]byte {
	s = append(s, nil)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

func insertChildAt(s []*node, i int, v *node) []*node {
	s = append(s, nil)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}
