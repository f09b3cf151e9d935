// Package interval provides a self-balancing interval tree: an AVL tree over
// closed numeric intervals augmented with a subtree max-end aggregate, so
// point-containment and range-overlap queries run in O(log n + k).
//
// Intervals are closed on both ends: a point p is contained by [s, e] when
// s <= p <= e. The tree is ordered by (Start, End); entries that compare
// equal on both endpoints are kept as distinct nodes and are told apart by
// payload identity during removal.
//
// The tree is single-threaded by design. Callers that need to mutate and
// query from multiple goroutines must provide their own exclusion.
package interval

import (
	"github.com/go-drift/spatial/pkg/errors"
)

// Interval is a closed numeric range carrying an opaque payload.
type Interval[T comparable] struct {
	Start   float64
	End     float64
	Payload T
}

// Contains reports whether the interval contains the point, ends inclusive.
func (iv Interval[T]) Contains(point float64) bool {
	return iv.Start <= point && point <= iv.End
}

// Overlaps reports whether the interval overlaps [start, end], ends
// inclusive: touching endpoints count as overlapping.
func (iv Interval[T]) Overlaps(start, end float64) bool {
	return iv.Start <= end && start <= iv.End
}

// node is a tree node. Each node exclusively owns its children; the tree
// exclusively owns the root.
type node[T comparable] struct {
	iv     Interval[T]
	maxEnd float64
	// height counts nodes, not edges: a leaf has height 1.
	height int
	left   *node[T]
	right  *node[T]
}

// Tree is an AVL-balanced interval tree. The zero value is an empty tree
// ready for use.
type Tree[T comparable] struct {
	root *node[T]
	size int
}

// Insert adds the interval [start, end] with the given payload.
// Returns an error wrapping errors.ErrInvalidInterval when start > end;
// the tree is left unchanged in that case.
func (t *Tree[T]) Insert(start, end float64, payload T) error {
	if start > end {
		return errors.InvalidInterval("interval.Insert", start, end)
	}
	t.root = t.root.insert(Interval[T]{Start: start, End: end, Payload: payload})
	t.size++
	return nil
}

// Remove deletes the entry that matches (start, end) exactly and whose
// payload equals the given payload. Matching on payload identity, not just
// the endpoints, keeps removal from deleting the wrong entry when two
// distinct payloads share an identical interval on one axis.
//
// Removing an entry that is not present is a deliberate no-op; Remove
// reports whether an entry was deleted.
func (t *Tree[T]) Remove(start, end float64, payload T) bool {
	var removed bool
	t.root, removed = t.root.remove(Interval[T]{Start: start, End: end, Payload: payload})
	if removed {
		t.size--
	}
	return removed
}

// Query returns the payloads of all intervals containing the point, ends
// inclusive. The result order is the tree's in-order traversal, not a
// meaningful ranking. An empty tree yields nil.
func (t *Tree[T]) Query(point float64) []T {
	return t.root.query(point, nil)
}

// FindOverlaps returns the payloads of all intervals [s, e] with
// s <= end && start <= e, ends inclusive.
func (t *Tree[T]) FindOverlaps(start, end float64) []T {
	return t.root.findOverlaps(start, end, nil)
}

// Visit walks all intervals in (Start, End) order. The walk stops early
// when fn returns false.
func (t *Tree[T]) Visit(fn func(iv Interval[T]) bool) {
	t.root.visit(fn)
}

// Clear removes all entries.
func (t *Tree[T]) Clear() {
	t.root = nil
	t.size = 0
}

// Len returns the number of intervals in the tree.
func (t *Tree[T]) Len() int {
	return t.size
}

// Height returns the height of the tree in nodes; 0 for an empty tree.
func (t *Tree[T]) Height() int {
	return t.root.getHeight()
}

// Balanced reports whether every node satisfies the AVL invariant: the
// recorded heights are consistent and every balance factor is in
// {-1, 0, 1}. It also audits the max-end aggregate, since a stale
// aggregate silently breaks query pruning. Diagnostic only; never panics.
func (t *Tree[T]) Balanced() bool {
	ok, _, _ := t.root.audit()
	return ok
}

// compare orders intervals by Start, then End. Entries equal on both are
// tied; insertion sends ties right, and removal searches both sides of a
// tied node, so rotations moving a tie across the node are harmless.
func (iv Interval[T]) compare(other Interval[T]) int {
	switch {
	case iv.Start < other.Start:
		return -1
	case iv.Start > other.Start:
		return 1
	case iv.End < other.End:
		return -1
	case iv.End > other.End:
		return 1
	default:
		return 0
	}
}

func (n *node[T]) insert(iv Interval[T]) *node[T] {
	if n == nil {
		return &node[T]{iv: iv, maxEnd: iv.End, height: 1}
	}
	if iv.compare(n.iv) < 0 {
		n.left = n.left.insert(iv)
	} else {
		n.right = n.right.insert(iv)
	}
	return n.rebalance()
}

func (n *node[T]) remove(iv Interval[T]) (*node[T], bool) {
	if n == nil {
		return nil, false
	}

	var removed bool
	switch cmp := iv.compare(n.iv); {
	case cmp < 0:
		n.left, removed = n.left.remove(iv)
	case cmp > 0:
		n.right, removed = n.right.remove(iv)
	case n.iv.Payload == iv.Payload:
		return n.removeSelf(), true
	default:
		// Same endpoints, different payload. Ties are inserted to the
		// right but rotations can carry one to the left subtree, so try
		// both sides.
		n.right, removed = n.right.remove(iv)
		if !removed {
			n.left, removed = n.left.remove(iv)
		}
	}

	if !removed {
		return n, false
	}
	return n.rebalance(), true
}

// removeSelf deletes this node and returns the subtree that replaces it.
func (n *node[T]) removeSelf() *node[T] {
	switch {
	case n.left == nil:
		return n.right
	case n.right == nil:
		return n.left
	default:
		// Two children: adopt the in-order successor's interval, then
		// remove the successor from the right subtree.
		succ := n.right.findSmallest()
		n.iv = succ.iv
		n.right, _ = n.right.remove(succ.iv)
		return n.rebalance()
	}
}

func (n *node[T]) query(point float64, result []T) []T {
	if n == nil {
		return result
	}

	// Nothing in the left subtree can reach the point if its max end
	// falls short of it.
	if n.left != nil && n.left.maxEnd >= point {
		result = n.left.query(point, result)
	}

	if n.iv.Contains(point) {
		result = append(result, n.iv.Payload)
	}

	// Right subtree starts are all >= n.iv.Start; once the point lies
	// left of this node's start, no right candidate can contain it.
	if point >= n.iv.Start {
		result = n.right.query(point, result)
	}
	return result
}

func (n *node[T]) findOverlaps(start, end float64, result []T) []T {
	if n == nil {
		return result
	}

	if n.left != nil && n.left.maxEnd >= start {
		result = n.left.findOverlaps(start, end, result)
	}

	if n.iv.Overlaps(start, end) {
		result = append(result, n.iv.Payload)
	}

	if end >= n.iv.Start {
		result = n.right.findOverlaps(start, end, result)
	}
	return result
}

func (n *node[T]) visit(fn func(iv Interval[T]) bool) bool {
	if n == nil {
		return true
	}
	if !n.left.visit(fn) {
		return false
	}
	if !fn(n.iv) {
		return false
	}
	return n.right.visit(fn)
}

func (n *node[T]) getHeight() int {
	if n == nil {
		return 0
	}
	return n.height
}

func (n *node[T]) updateHeightAndMax() {
	n.height = 1 + max(n.left.getHeight(), n.right.getHeight())
	n.maxEnd = n.iv.End
	if n.left != nil && n.left.maxEnd > n.maxEnd {
		n.maxEnd = n.left.maxEnd
	}
	if n.right != nil && n.right.maxEnd > n.maxEnd {
		n.maxEnd = n.right.maxEnd
	}
}

// rebalance restores the AVL invariant at this node after an insert or
// remove below it, covering the four classic rotation cases. The double
// cases are detected by comparing the child's subtree heights rather than
// keys, which stays a total order even when intervals share a start value.
func (n *node[T]) rebalance() *node[T] {
	if n == nil {
		return n
	}
	n.updateHeightAndMax()

	balance := n.left.getHeight() - n.right.getHeight()
	if balance < -1 {
		// Right-heavy. Right-left case when the right child leans left.
		if n.right.left.getHeight() > n.right.right.getHeight() {
			n.right = n.right.rotateRight()
		}
		return n.rotateLeft()
	}
	if balance > 1 {
		// Left-heavy. Left-right case when the left child leans right.
		if n.left.right.getHeight() > n.left.left.getHeight() {
			n.left = n.left.rotateLeft()
		}
		return n.rotateRight()
	}
	return n
}

func (n *node[T]) rotateLeft() *node[T] {
	pivot := n.right
	n.right = pivot.left
	pivot.left = n

	n.updateHeightAndMax()
	pivot.updateHeightAndMax()
	return pivot
}

func (n *node[T]) rotateRight() *node[T] {
	pivot := n.left
	n.left = pivot.right
	pivot.right = n

	n.updateHeightAndMax()
	pivot.updateHeightAndMax()
	return pivot
}

func (n *node[T]) findSmallest() *node[T] {
	for n.left != nil {
		n = n.left
	}
	return n
}

// audit recursively verifies recorded heights, balance factors, and the
// max-end aggregate. Returns the recomputed height and max end for the
// parent's checks.
func (n *node[T]) audit() (ok bool, height int, maxEnd float64) {
	if n == nil {
		return true, 0, 0
	}

	leftOK, leftH, leftMax := n.left.audit()
	rightOK, rightH, rightMax := n.right.audit()
	if !leftOK || !rightOK {
		return false, 0, 0
	}

	height = 1 + max(leftH, rightH)
	if n.height != height {
		return false, 0, 0
	}
	if balance := leftH - rightH; balance < -1 || balance > 1 {
		return false, 0, 0
	}

	maxEnd = n.iv.End
	if n.left != nil && leftMax > maxEnd {
		maxEnd = leftMax
	}
	if n.right != nil && rightMax > maxEnd {
		maxEnd = rightMax
	}
	if n.maxEnd != maxEnd {
		return false, 0, 0
	}
	return true, height, maxEnd
}
