package interval

import (
	stderrors "errors"
	"math/rand"
	"slices"
	"testing"

	"github.com/go-drift/spatial/pkg/errors"
)

func TestInsertRejectsInvalidInterval(t *testing.T) {
	var tree Tree[string]

	err := tree.Insert(10, 5, "bad")
	if err == nil {
		t.Fatal("Insert(10, 5) should fail")
	}
	if !stderrors.Is(err, errors.ErrInvalidInterval) {
		t.Errorf("error %v should wrap ErrInvalidInterval", err)
	}
	if tree.Len() != 0 {
		t.Errorf("failed insert should leave tree empty, got len %d", tree.Len())
	}

	// start == end is a valid degenerate interval.
	if err := tree.Insert(5, 5, "point"); err != nil {
		t.Fatalf("Insert(5, 5) failed: %v", err)
	}
	if got := tree.Query(5); !slices.Equal(got, []string{"point"}) {
		t.Errorf("Query(5) = %v, want [point]", got)
	}
}

func TestQueryClosedEndpoints(t *testing.T) {
	var tree Tree[string]
	mustInsert(t, &tree, 10, 20, "a")

	tests := []struct {
		point float64
		want  []string
	}{
		{9.999, nil},
		{10, []string{"a"}},
		{15, []string{"a"}},
		{20, []string{"a"}},
		{20.001, nil},
	}
	for _, tt := range tests {
		if got := tree.Query(tt.point); !slices.Equal(got, tt.want) {
			t.Errorf("Query(%g) = %v, want %v", tt.point, got, tt.want)
		}
	}
}

func TestFindOverlaps(t *testing.T) {
	var tree Tree[string]
	mustInsert(t, &tree, 0, 10, "a")
	mustInsert(t, &tree, 5, 15, "b")
	mustInsert(t, &tree, 20, 30, "c")

	tests := []struct {
		name       string
		start, end float64
		want       []string
	}{
		{"spans all", 0, 30, []string{"a", "b", "c"}},
		{"middle gap", 16, 19, nil},
		{"touching endpoint counts", 15, 20, []string{"b", "c"}},
		{"degenerate range", 7, 7, []string{"a", "b"}},
		{"left of everything", -5, -1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tree.FindOverlaps(tt.start, tt.end)
			slices.Sort(got)
			if !slices.Equal(got, tt.want) {
				t.Errorf("FindOverlaps(%g, %g) = %v, want %v", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestRemove(t *testing.T) {
	var tree Tree[string]
	mustInsert(t, &tree, 0, 10, "a")
	mustInsert(t, &tree, 5, 15, "b")
	mustInsert(t, &tree, 20, 30, "c")

	if !tree.Remove(5, 15, "b") {
		t.Fatal("Remove of present entry should report true")
	}
	if tree.Len() != 2 {
		t.Errorf("Len = %d, want 2", tree.Len())
	}
	if got := tree.Query(12); got != nil {
		t.Errorf("Query(12) after removal = %v, want nil", got)
	}
	if got := tree.Query(25); !slices.Equal(got, []string{"c"}) {
		t.Errorf("other entries should survive removal, Query(25) = %v", got)
	}

	// Removing an absent entry is a documented no-op, not an error.
	if tree.Remove(5, 15, "b") {
		t.Error("second Remove of the same entry should report false")
	}
	if tree.Remove(100, 200, "nope") {
		t.Error("Remove of never-inserted entry should report false")
	}
	if tree.Len() != 2 {
		t.Errorf("no-op removes should not change Len, got %d", tree.Len())
	}
}

func TestRemoveMatchesPayloadIdentity(t *testing.T) {
	// Two distinct payloads sharing an identical interval: removal keyed
	// only on endpoints could delete the wrong one.
	var tree Tree[string]
	mustInsert(t, &tree, 0, 100, "first")
	mustInsert(t, &tree, 0, 100, "second")

	if !tree.Remove(0, 100, "second") {
		t.Fatal("Remove(0, 100, second) should succeed")
	}
	if got := tree.Query(50); !slices.Equal(got, []string{"first"}) {
		t.Errorf("Query(50) = %v, want [first]", got)
	}

	if tree.Remove(0, 100, "second") {
		t.Error("second payload should already be gone")
	}
	if !tree.Remove(0, 100, "first") {
		t.Error("first payload should still be removable")
	}
	if tree.Len() != 0 {
		t.Errorf("Len = %d, want 0", tree.Len())
	}
}

func TestRemoveTwoChildrenUsesSuccessor(t *testing.T) {
	// Build a tree where the removed node has two children, forcing the
	// in-order successor replacement path.
	var tree Tree[int]
	for i, span := range [][2]float64{{50, 60}, {25, 35}, {75, 85}, {10, 20}, {30, 40}, {60, 70}, {90, 99}} {
		mustInsert(t, &tree, span[0], span[1], i)
	}

	if !tree.Remove(50, 60, 0) {
		t.Fatal("Remove(50, 60) should succeed")
	}
	if !tree.Balanced() {
		t.Error("tree should stay balanced after removing an inner node")
	}
	if tree.Len() != 6 {
		t.Errorf("Len = %d, want 6", tree.Len())
	}
	if got := tree.Query(55); got != nil {
		t.Errorf("Query(55) = %v, want nil", got)
	}
	for _, point := range []float64{15, 33, 65, 80, 95} {
		if got := tree.Query(point); len(got) == 0 {
			t.Errorf("Query(%g) lost a surviving entry", point)
		}
	}
}

func TestClear(t *testing.T) {
	var tree Tree[int]
	for i := 0; i < 20; i++ {
		mustInsert(t, &tree, float64(i), float64(i+5), i)
	}

	tree.Clear()
	if tree.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", tree.Len())
	}
	if tree.Height() != 0 {
		t.Errorf("Height after Clear = %d, want 0", tree.Height())
	}
	if got := tree.Query(10); got != nil {
		t.Errorf("Query on cleared tree = %v, want nil", got)
	}
}

func TestVisitInOrder(t *testing.T) {
	var tree Tree[string]
	mustInsert(t, &tree, 30, 40, "c")
	mustInsert(t, &tree, 10, 20, "a")
	mustInsert(t, &tree, 20, 25, "b")

	var starts []float64
	tree.Visit(func(iv Interval[string]) bool {
		starts = append(starts, iv.Start)
		return true
	})
	if !slices.IsSorted(starts) {
		t.Errorf("Visit order not sorted by start: %v", starts)
	}

	// Early termination.
	count := 0
	tree.Visit(func(iv Interval[string]) bool {
		count++
		return false
	})
	if count != 1 {
		t.Errorf("Visit should stop after callback returns false, visited %d", count)
	}
}

// TestDuplicateStarts exercises rebalancing with many intervals sharing a
// start value. Rotation case selection compares child heights, not keys,
// so duplicate starts must never break the balance invariant.
func TestDuplicateStarts(t *testing.T) {
	var tree Tree[int]

	const n = 200
	for i := 0; i < n; i++ {
		// Half the entries share start=50 with distinct ends; the rest
		// share both endpoints exactly.
		if i%2 == 0 {
			mustInsert(t, &tree, 50, 50+float64(i), i)
		} else {
			mustInsert(t, &tree, 50, 100, i)
		}
		if !tree.Balanced() {
			t.Fatalf("tree unbalanced after %d duplicate-start inserts", i+1)
		}
	}

	if got := len(tree.Query(50)); got != n {
		t.Errorf("Query(50) found %d entries, want %d", got, n)
	}

	// Remove the exact-duplicate entries one by one; each removal must
	// find its payload despite the endpoint ties.
	for i := 1; i < n; i += 2 {
		if !tree.Remove(50, 100, i) {
			t.Fatalf("Remove(50, 100, %d) failed", i)
		}
		if !tree.Balanced() {
			t.Fatalf("tree unbalanced after removing payload %d", i)
		}
	}
	if tree.Len() != n/2 {
		t.Errorf("Len = %d, want %d", tree.Len(), n/2)
	}
}

// TestRandomizedAgainstBruteForce drives a random insert/remove sequence
// and cross-checks every query against a linear scan, auditing the AVL
// and max-end invariants after each mutation.
func TestRandomizedAgainstBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	var tree Tree[int]
	type entry struct {
		start, end float64
		id         int
	}
	var live []entry

	const ops = 2000
	for op := 0; op < ops; op++ {
		if len(live) == 0 || rng.Float64() < 0.6 {
			start := rng.Float64() * 1000
			end := start + rng.Float64()*100
			id := op
			mustInsert(t, &tree, start, end, id)
			live = append(live, entry{start, end, id})
		} else {
			i := rng.Intn(len(live))
			e := live[i]
			if !tree.Remove(e.start, e.end, e.id) {
				t.Fatalf("op %d: Remove(%g, %g, %d) failed for live entry", op, e.start, e.end, e.id)
			}
			live[i] = live[len(live)-1]
			live = live[:len(live)-1]
		}

		if !tree.Balanced() {
			t.Fatalf("op %d: AVL/maxEnd invariant broken", op)
		}
		if tree.Len() != len(live) {
			t.Fatalf("op %d: Len = %d, want %d", op, tree.Len(), len(live))
		}
	}

	for q := 0; q < 200; q++ {
		point := rng.Float64() * 1100
		var want []int
		for _, e := range live {
			if e.start <= point && point <= e.end {
				want = append(want, e.id)
			}
		}
		got := tree.Query(point)
		slices.Sort(got)
		slices.Sort(want)
		if !slices.Equal(got, want) {
			t.Fatalf("Query(%g) = %v, want %v", point, got, want)
		}
	}

	for q := 0; q < 200; q++ {
		lo := rng.Float64() * 1100
		hi := lo + rng.Float64()*150
		var want []int
		for _, e := range live {
			if e.start <= hi && lo <= e.end {
				want = append(want, e.id)
			}
		}
		got := tree.FindOverlaps(lo, hi)
		slices.Sort(got)
		slices.Sort(want)
		if !slices.Equal(got, want) {
			t.Fatalf("FindOverlaps(%g, %g) = %v, want %v", lo, hi, got, want)
		}
	}
}

func TestHeightStaysLogarithmic(t *testing.T) {
	var tree Tree[int]
	// Sorted insertion is the degenerate case for a plain BST.
	const n = 1024
	for i := 0; i < n; i++ {
		mustInsert(t, &tree, float64(i), float64(i)+0.5, i)
	}

	// An AVL tree of 1024 nodes has height at most ~1.44*log2(n) ≈ 14.
	if h := tree.Height(); h > 15 {
		t.Errorf("height %d too large for %d sorted inserts", h, n)
	}
	if !tree.Balanced() {
		t.Error("tree unbalanced after sorted insertion")
	}
}

func mustInsert[T comparable](t *testing.T, tree *Tree[T], start, end float64, payload T) {
	t.Helper()
	if err := tree.Insert(start, end, payload); err != nil {
		t.Fatalf("Insert(%g, %g) failed: %v", start, end, err)
	}
}
