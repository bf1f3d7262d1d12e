package gc

import "testing"

// node is a minimal GC-managed object for exercising the arena in
// isolation from the VM's real object graph.
type node struct {
	Header
	name     string
	children []*node
}

func (n *node) GCHeader() *Header { return &n.Header }

func (n *node) Trace(mark func(Object)) {
	for _, c := range n.children {
		if c == nil {
			continue
		}
		mark(c)
	}
}

func newNode(a *Arena, name string) *node {
	n := &node{name: name}
	a.Allocate(n)
	return n
}

func countLive(a *Arena) int {
	n := 0
	a.Walk(func(Object) { n++ })
	return n
}

func TestCollectFullFreesUnreachableObjects(t *testing.T) {
	a := NewArena(1 << 30) // threshold high enough that only CollectFull triggers work
	root := newNode(a, "root")
	reachable := newNode(a, "reachable")
	root.children = append(root.children, reachable)
	_ = newNode(a, "garbage")

	a.SetRootFunc(func(mark func(Object)) { mark(root) })
	a.CollectFull()

	if got := countLive(a); got != 2 {
		t.Fatalf("expected 2 live objects (root + reachable) after collection, got %d", got)
	}
}

func TestCollectFullRetainsTransitivelyReachableObjects(t *testing.T) {
	a := NewArena(1 << 30)
	root := newNode(a, "root")
	mid := newNode(a, "mid")
	leaf := newNode(a, "leaf")
	root.children = append(root.children, mid)
	mid.children = append(mid.children, leaf)

	a.SetRootFunc(func(mark func(Object)) { mark(root) })
	a.CollectFull()

	if got := countLive(a); got != 3 {
		t.Fatalf("expected all 3 transitively reachable objects to survive, got %d", got)
	}
}

func TestCollectFullWithNoRootsFreesEverything(t *testing.T) {
	a := NewArena(1 << 30)
	newNode(a, "a")
	newNode(a, "b")

	a.SetRootFunc(func(mark func(Object)) {})
	a.CollectFull()

	if got := countLive(a); got != 0 {
		t.Fatalf("expected 0 live objects with no roots, got %d", got)
	}
}

func TestWriteBarrierRegraysBlackToWhiteReference(t *testing.T) {
	a := NewArena(1 << 30)
	root := newNode(a, "root")
	a.SetRootFunc(func(mark func(Object)) { mark(root) })

	// Drive marking to completion so root is Black, then mutate it to
	// point at a brand-new White object allocated after the scan.
	a.startMarking()
	a.markWork(1 << 20)
	if root.Color() != Black {
		t.Fatalf("root color = %v, want Black after marking with no other reachable objects", root.Color())
	}

	late := newNode(a, "late")
	if late.Color() != White {
		t.Fatalf("freshly allocated object should start White, got %v", late.Color())
	}
	root.children = append(root.children, late)
	a.WriteBarrier(root, late)

	if late.Color() == White {
		t.Fatal("write barrier should have re-grayed 'late' so it survives the in-progress cycle")
	}

	for a.Phase() != Idle {
		a.CollectStep(1 << 20)
	}
	if got := countLive(a); got != 2 {
		t.Fatalf("expected root and the write-barrier-protected 'late' to survive, got %d live", got)
	}
}

func TestCollectStepIsNoopBelowThreshold(t *testing.T) {
	a := NewArena(1000)
	root := newNode(a, "root")
	a.SetRootFunc(func(mark func(Object)) { mark(root) })

	a.CollectStep(10)
	if a.Phase() != Idle {
		t.Fatalf("phase = %v, want Idle while debt is below threshold", a.Phase())
	}
}

func TestMutationAllocAndSetFieldDelegateToArena(t *testing.T) {
	a := NewArena(1 << 30)
	m := NewMutation(a)
	if m.Arena() != a {
		t.Fatal("Arena() should return the wrapped arena")
	}

	root := &node{name: "root"}
	m.Alloc(root)
	a.SetRootFunc(func(mark func(Object)) { mark(root) })
	a.startMarking()
	a.markWork(1 << 20)

	child := &node{name: "child"}
	m.Alloc(child)
	root.children = append(root.children, child)
	m.SetField(root, child)

	if child.Color() == White {
		t.Fatal("SetField should write-barrier-protect a white child added to a black parent")
	}
}

func TestCollectStepAdvancesThroughPhasesIncrementally(t *testing.T) {
	a := NewArena(1)
	root := newNode(a, "root")
	a.SetRootFunc(func(mark func(Object)) { mark(root) })

	for i := 0; i < 3; i++ {
		root.children = append(root.children, newNode(a, "extra"))
	}
	if a.Debt() < 1 {
		t.Fatal("expected allocation debt to accumulate past the threshold")
	}

	seenMarking := false
	for {
		a.CollectStep(1)
		if a.Phase() == Marking {
			seenMarking = true
		}
		if a.Phase() == Idle {
			break
		}
	}
	if !seenMarking {
		t.Error("expected CollectStep to pass through the Marking phase at granularity 1")
	}
	if a.Debt() != 0 {
		t.Errorf("debt = %d, want 0 after a full incremental cycle completes", a.Debt())
	}
}
