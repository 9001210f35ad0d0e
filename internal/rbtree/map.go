/*
Package rbtree implements an ordered map on top of a red-black tree.

Nodes keep a parent link next to their two children. The parent link is only
used to navigate: rotations, in-order successor steps and teardown. Children
are the owning edges.

After every mutation the tree holds these properties:

  - the root is black;
  - a red node has no red child (nil leaves count as black);
  - every path from a node down to a nil leaf crosses the same number of
    black nodes.

Together they bound the height at O(log n).

A Map is not safe for concurrent use. Callers sharing one across goroutines
must serialize access themselves.
*/
package rbtree

import "cmp"

type color uint8

const (
	black color = iota
	red
)

type node[K, V any] struct {
	key    K
	value  V
	color  color
	left   *node[K, V]
	right  *node[K, V]
	parent *node[K, V]
}

// Map is an ordered key-value container. Keys are ordered by the comparator
// given at construction, which must define a total order.
type Map[K, V any] struct {
	root    *node[K, V]
	compare func(a, b K) int
	size    int
}

// New creates an empty map ordered by compare. compare returns a negative
// number when a < b, zero when a == b and a positive number when a > b.
func New[K, V any](compare func(a, b K) int) *Map[K, V] {
	if compare == nil {
		panic("rbtree: nil comparator")
	}
	return &Map[K, V]{compare: compare}
}

// NewOrdered creates an empty map ordered by cmp.Compare.
func NewOrdered[K cmp.Ordered, V any]() *Map[K, V] {
	return New[K, V](cmp.Compare[K])
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	return m.size
}

func colorOf[K, V any](n *node[K, V]) color {
	if n == nil {
		return black
	}
	return n.color
}

func sibling[K, V any](n *node[K, V]) *node[K, V] {
	if n == n.parent.left {
		return n.parent.right
	}
	return n.parent.left
}

func maximum[K, V any](n *node[K, V]) *node[K, V] {
	for n.right != nil {
		n = n.right
	}
	return n
}

// successor returns the next node in ascending order, or nil after the last.
func successor[K, V any](n *node[K, V]) *node[K, V] {
	if n.right != nil {
		n = n.right
		for n.left != nil {
			n = n.left
		}
		return n
	}
	for {
		prev := n
		n = n.parent
		if n == nil || prev == n.left {
			return n
		}
	}
}

func (m *Map[K, V]) lookup(key K) *node[K, V] {
	n := m.root
	for n != nil {
		c := m.compare(key, n.key)
		switch {
		case c == 0:
			return n
		case c < 0:
			n = n.left
		default:
			n = n.right
		}
	}
	return nil
}

// Get returns the value stored under key and whether it was found.
func (m *Map[K, V]) Get(key K) (V, bool) {
	if n := m.lookup(key); n != nil {
		return n.value, true
	}
	var zero V
	return zero, false
}

// Put stores value under key. When an equal key is already present only the
// value is replaced: the stored key is kept and the given one is dropped.
func (m *Map[K, V]) Put(key K, value V) {
	if m.root == nil {
		m.root = &node[K, V]{key: key, value: value, color: black}
		m.size++
		return
	}

	n := m.root
	var inserted *node[K, V]
	for inserted == nil {
		c := m.compare(key, n.key)
		switch {
		case c == 0:
			n.value = value
			return
		case c < 0:
			if n.left == nil {
				n.left = &node[K, V]{key: key, value: value, color: red, parent: n}
				inserted = n.left
			} else {
				n = n.left
			}
		default:
			if n.right == nil {
				n.right = &node[K, V]{key: key, value: value, color: red, parent: n}
				inserted = n.right
			} else {
				n = n.right
			}
		}
	}
	m.size++
	m.fixAfterInsert(inserted)
}

func (m *Map[K, V]) fixAfterInsert(n *node[K, V]) {
	for {
		p := n.parent
		if p == nil {
			n.color = black
			return
		}
		if p.color == black {
			return
		}

		// p is red, so it is not the root and g exists.
		g := p.parent
		uncle := g.left
		if p == g.left {
			uncle = g.right
		}
		if colorOf(uncle) == red {
			p.color = black
			uncle.color = black
			g.color = red
			n = g
			continue
		}

		// Straighten a zig-zag so n, p and g line up on one side.
		if n == p.right && p == g.left {
			m.rotateLeft(p)
			n, p = p, n
		} else if n == p.left && p == g.right {
			m.rotateRight(p)
			n, p = p, n
		}

		p.color = black
		g.color = red
		if n == p.left {
			m.rotateRight(g)
		} else {
			m.rotateLeft(g)
		}
		return
	}
}

// Remove deletes key from the map. Removing an absent key does nothing.
func (m *Map[K, V]) Remove(key K) {
	n := m.lookup(key)
	if n == nil {
		return
	}

	if n.left != nil && n.right != nil {
		pred := maximum(n.left)
		n.key, n.value = pred.key, pred.value
		n = pred
	}

	child := n.left
	if child == nil {
		child = n.right
	}
	// A red child takes over n's black; only a lone black leaf leaves a gap.
	if n.color == black {
		if colorOf(child) == red {
			child.color = black
		} else {
			m.fixBeforeRemove(n)
		}
	}
	m.replace(n, child)
	if m.root != nil {
		m.root.color = black
	}
	m.size--

	n.left, n.right, n.parent = nil, nil, nil
}

// fixBeforeRemove resolves the missing black on n's side while n is still
// linked into the tree. n has at most one child.
func (m *Map[K, V]) fixBeforeRemove(n *node[K, V]) {
	for n.parent != nil {
		s := sibling(n)
		if s.color == red {
			n.parent.color = red
			s.color = black
			if n == n.parent.left {
				m.rotateLeft(n.parent)
			} else {
				m.rotateRight(n.parent)
			}
			s = sibling(n)
		}

		if colorOf(s.left) == black && colorOf(s.right) == black {
			if n.parent.color == black {
				s.color = red
				n = n.parent
				continue
			}
			s.color = red
			n.parent.color = black
			return
		}

		// Move a near red nephew to the far side.
		if n == n.parent.left && colorOf(s.right) == black {
			s.color = red
			s.left.color = black
			m.rotateRight(s)
			s = sibling(n)
		} else if n == n.parent.right && colorOf(s.left) == black {
			s.color = red
			s.right.color = black
			m.rotateLeft(s)
			s = sibling(n)
		}

		s.color = n.parent.color
		n.parent.color = black
		if n == n.parent.left {
			s.right.color = black
			m.rotateLeft(n.parent)
		} else {
			s.left.color = black
			m.rotateRight(n.parent)
		}
		return
	}
}

// replace puts newn where oldn hangs from its parent. newn may be nil.
func (m *Map[K, V]) replace(oldn, newn *node[K, V]) {
	switch {
	case oldn.parent == nil:
		m.root = newn
	case oldn == oldn.parent.left:
		oldn.parent.left = newn
	default:
		oldn.parent.right = newn
	}
	if newn != nil {
		newn.parent = oldn.parent
	}
}

func (m *Map[K, V]) rotateLeft(n *node[K, V]) {
	r := n.right
	m.replace(n, r)
	n.right = r.left
	if r.left != nil {
		r.left.parent = n
	}
	r.left = n
	n.parent = r
}

func (m *Map[K, V]) rotateRight(n *node[K, V]) {
	l := n.left
	m.replace(n, l)
	n.left = l.right
	if l.right != nil {
		l.right.parent = n
	}
	l.right = n
	n.parent = l
}

// TraverseFrom calls visit for every entry whose key is >= from, in ascending
// key order, until visit returns false. from does not need to be present.
// visit must not modify the map.
func (m *Map[K, V]) TraverseFrom(from K, visit func(key K, value V) bool) {
	n := m.root
	if n == nil {
		return
	}

	for {
		c := m.compare(from, n.key)
		if c == 0 {
			break
		}
		if c < 0 {
			if n.left == nil {
				break
			}
			n = n.left
			continue
		}
		if n.right == nil {
			n = successor(n)
			break
		}
		n = n.right
	}

	for n != nil {
		if !visit(n.key, n.value) {
			return
		}
		n = successor(n)
	}
}

// Clear removes every entry. When release is not nil it is called once per
// entry, children before their parent, before the entry is dropped.
func (m *Map[K, V]) Clear(release func(key K, value V)) {
	n := m.root
	for n != nil {
		if n.left != nil {
			n = n.left
			continue
		}
		if n.right != nil {
			n = n.right
			continue
		}
		if release != nil {
			release(n.key, n.value)
		}
		p := n.parent
		if p != nil {
			if p.left == n {
				p.left = nil
			} else {
				p.right = nil
			}
		}
		n.parent = nil
		n = p
	}
	m.root = nil
	m.size = 0
}
