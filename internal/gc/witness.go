package gc

// Mutation is the capability object required to mutate GC-managed state.
// Every function that writes a reference into a heap object must take a
// *Mutation, so the write-barrier discipline is enforced at the type level
// rather than left to convention.
type Mutation struct {
	arena *Arena
}

// NewMutation wraps an arena in a mutation capability scoped to one
// mutating operation.
func NewMutation(a *Arena) *Mutation { return &Mutation{arena: a} }

// Alloc registers a freshly allocated object with the underlying arena.
func (m *Mutation) Alloc(o Object) { m.arena.Allocate(o) }

// SetField performs the write barrier for parent.field = child: if parent
// is already black and child is white, child is re-grayed so it is not
// swept out from under a live reference discovered after parent was
// scanned.
func (m *Mutation) SetField(parent, child Object) {
	m.arena.WriteBarrier(parent, child)
}

func (m *Mutation) Arena() *Arena { return m.arena }
