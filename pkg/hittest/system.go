// Package hittest provides the 2D spatial hit-testing index.
//
// A System owns two interval trees: one over each indexed widget's
// horizontal extent, one over its vertical extent. A 2D point or rectangle
// query is answered by querying both trees independently, intersecting the
// two candidate sets, re-checking each survivor's exact rectangle, and
// sorting the result into paint order.
//
// The System is single-threaded and performs no locking; all mutation and
// queries are expected on the one goroutine driving the input loop. It
// never constructs, mutates, or frees widgets; it only stores handles.
package hittest

import (
	"slices"

	"github.com/go-drift/spatial/pkg/geometry"
	"github.com/go-drift/spatial/pkg/interval"
)

// Widget is the handle for an indexed on-screen element. Implementations
// must be comparable (pointer handles are the norm); the System uses the
// interface value itself as the identity key.
//
// The System reads HitRect at Insert and Remove time only. A widget whose
// bounds change must be re-indexed through Update with its previous
// bounds, since the index has no way to discover a stale entry on its own.
type Widget interface {
	// HitRect returns the widget's current axis-aligned bounding
	// rectangle in the shared coordinate space.
	HitRect() geometry.Rect
	// ZIndex returns the paint-order key; higher values paint on top.
	ZIndex() int
}

// System is a dual-axis spatial index over widget bounding rectangles.
// The zero value is an empty index ready for use.
type System struct {
	xTree interval.Tree[Widget]
	yTree interval.Tree[Widget]
	// seq assigns each indexed widget a monotonically increasing
	// insertion sequence, the deterministic tie-break for equal z-index.
	seq     map[Widget]uint64
	nextSeq uint64
	count   int
}

// NewSystem returns an empty hit-testing index.
func NewSystem() *System {
	return &System{seq: make(map[Widget]uint64)}
}

// Insert indexes the widget under its current bounds: the horizontal
// extent [left, right] in the x tree and the vertical extent [top, bottom]
// in the y tree. Returns an error wrapping errors.ErrInvalidInterval when
// the bounds have negative width or height; the index is unchanged then.
func (s *System) Insert(w Widget) error {
	r := w.HitRect()
	if err := s.xTree.Insert(r.Left, r.Right, w); err != nil {
		return err
	}
	if err := s.yTree.Insert(r.Top, r.Bottom, w); err != nil {
		// Negative height with a valid width: undo the x entry so the
		// two trees never disagree on membership.
		s.xTree.Remove(r.Left, r.Right, w)
		return err
	}

	if s.seq == nil {
		s.seq = make(map[Widget]uint64)
	}
	if _, ok := s.seq[w]; !ok {
		s.seq[w] = s.nextSeq
		s.nextSeq++
	}
	s.count++
	return nil
}

// Remove un-indexes the widget using its current bounds. Removing a widget
// that is not indexed (or whose bounds moved since it was indexed) is a
// no-op; Remove reports whether an entry was deleted.
func (s *System) Remove(w Widget) bool {
	return s.removeAt(w, w.HitRect())
}

func (s *System) removeAt(w Widget, r geometry.Rect) bool {
	xr := s.xTree.Remove(r.Left, r.Right, w)
	yr := s.yTree.Remove(r.Top, r.Bottom, w)
	if xr && yr {
		s.count--
		delete(s.seq, w)
		return true
	}
	return false
}

// Update re-indexes a widget whose bounds changed: the stale entry at
// oldBounds is removed from both trees, then the widget's current bounds
// are inserted. The caller must supply the bounds the widget was last
// indexed under; with wrong oldBounds the stale entry stays behind,
// unreachable at the widget's new position.
//
// If the widget's current bounds are malformed the old entry is restored
// and the error from Insert is returned, so the widget never disappears
// from the index on a failed update.
func (s *System) Update(w Widget, oldBounds geometry.Rect) error {
	removed := s.removeAt(w, oldBounds)
	if err := s.Insert(w); err != nil {
		if removed {
			s.xTree.Insert(oldBounds.Left, oldBounds.Right, w)
			s.yTree.Insert(oldBounds.Top, oldBounds.Bottom, w)
			s.count++
			if _, ok := s.seq[w]; !ok {
				s.seq[w] = s.nextSeq
				s.nextSeq++
			}
		}
		return err
	}
	return nil
}

// Rebuild clears the index and bulk-inserts the given widgets. Use it when
// a large fraction of widgets moved in one frame: one O(n log n) rebuild
// instead of n removals and n insertions. Stops at the first malformed
// widget and returns its error.
func (s *System) Rebuild(widgets []Widget) error {
	s.Clear()
	for _, w := range widgets {
		if err := s.Insert(w); err != nil {
			return err
		}
	}
	return nil
}

// WidgetsAt returns every indexed widget whose rectangle contains (x, y),
// edges inclusive, sorted topmost first: descending z-index, ties broken
// by ascending insertion order (of two widgets on the same z, the earlier
// inserted one wins the tie and sorts first).
func (s *System) WidgetsAt(x, y float64) []Widget {
	xs := s.xTree.Query(x)
	ys := s.yTree.Query(y)

	hits := intersect(xs, ys)
	// The trees only know per-axis extents; re-check the full rectangle
	// so a stale aggregate or float edge case can't produce a false hit.
	hits = slices.DeleteFunc(hits, func(w Widget) bool {
		return !w.HitRect().ContainsPoint(x, y)
	})
	s.sortPaintOrder(hits)
	return hits
}

// WidgetsInRect returns every indexed widget whose rectangle overlaps r,
// edges inclusive, sorted topmost first as in WidgetsAt.
func (s *System) WidgetsInRect(r geometry.Rect) []Widget {
	xs := s.xTree.FindOverlaps(r.Left, r.Right)
	ys := s.yTree.FindOverlaps(r.Top, r.Bottom)

	hits := intersect(xs, ys)
	hits = slices.DeleteFunc(hits, func(w Widget) bool {
		return !w.HitRect().Overlaps(r)
	})
	s.sortPaintOrder(hits)
	return hits
}

// TopWidgetAt returns the topmost widget at (x, y), or nil when the point
// hits nothing.
func (s *System) TopWidgetAt(x, y float64) Widget {
	hits := s.WidgetsAt(x, y)
	if len(hits) == 0 {
		return nil
	}
	return hits[0]
}

// WidgetAt is the primary "what's under the cursor" entry point; it is
// TopWidgetAt under the name event dispatch calls it by.
func (s *System) WidgetAt(x, y float64) Widget {
	return s.TopWidgetAt(x, y)
}

// Widgets returns the indexed widgets in insertion order. Widgets indexed
// more than once appear once.
func (s *System) Widgets() []Widget {
	ws := make([]Widget, 0, len(s.seq))
	for w := range s.seq {
		ws = append(ws, w)
	}
	slices.SortFunc(ws, func(a, b Widget) int {
		switch sa, sb := s.seq[a], s.seq[b]; {
		case sa < sb:
			return -1
		case sa > sb:
			return 1
		default:
			return 0
		}
	})
	return ws
}

// Len returns the number of indexed widgets.
func (s *System) Len() int {
	return s.count
}

// IsEmpty reports whether no widgets are indexed.
func (s *System) IsEmpty() bool {
	return s.count == 0
}

// Clear removes all entries from both trees.
func (s *System) Clear() {
	s.xTree.Clear()
	s.yTree.Clear()
	s.seq = make(map[Widget]uint64)
	s.nextSeq = 0
	s.count = 0
}

// VerifyIntegrity checks that both trees hold exactly one entry per
// indexed widget and that every node in both trees satisfies the AVL
// balance invariant. Diagnostic only: it reports, never panics.
func (s *System) VerifyIntegrity() bool {
	if s.xTree.Len() != s.count || s.yTree.Len() != s.count {
		return false
	}
	return s.xTree.Balanced() && s.yTree.Balanced()
}

// intersect returns the widgets present in both candidate slices,
// preserving the order of the first slice. Hash-based, O(len(xs)+len(ys)).
func intersect(xs, ys []Widget) []Widget {
	if len(xs) == 0 || len(ys) == 0 {
		return nil
	}
	inY := make(map[Widget]int, len(ys))
	for _, w := range ys {
		inY[w]++
	}
	var hits []Widget
	for _, w := range xs {
		if inY[w] > 0 {
			hits = append(hits, w)
			// A widget indexed more than once appears once per matching
			// entry pair: consume one y-side entry per x-side match.
			inY[w]--
		}
	}
	return hits
}

// sortPaintOrder sorts hits topmost first: descending z-index, then
// ascending insertion sequence.
func (s *System) sortPaintOrder(hits []Widget) {
	slices.SortFunc(hits, func(a, b Widget) int {
		za, zb := a.ZIndex(), b.ZIndex()
		if za != zb {
			if za > zb {
				return -1
			}
			return 1
		}
		sa, sb := s.seq[a], s.seq[b]
		switch {
		case sa < sb:
			return -1
		case sa > sb:
			return 1
		default:
			return 0
		}
	})
}
