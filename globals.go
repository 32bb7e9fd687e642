package nucleus

import "reflect"

// LifetimeToken reference-counts ownership of a Globals slot. Register
// starts the count at one and every Glob.Ref call bumps it; copying a Glob
// or GlobRef value does not. When the last reference is dropped the slot's
// index is queued for deletion.
type LifetimeToken struct {
	refs *int
	drop func()
}

func newLifetimeToken(drop func()) *LifetimeToken {
	refs := 1
	return &LifetimeToken{refs: &refs, drop: drop}
}

func (t *LifetimeToken) clone() *LifetimeToken {
	*t.refs++
	return t
}

// Drop releases one reference to the slot. Once the last reference is
// dropped, the slot is queued for deletion the next time Globals.Update runs.
func (t *LifetimeToken) Drop() {
	*t.refs--
	if *t.refs == 0 && t.drop != nil {
		t.drop()
	}
}

// Glob is a handle to a value held in a Globals[T] slot.
type Glob[T any] struct {
	index int
	token *LifetimeToken
	table *Globals[T]
}

// Get dereferences the handle's current value.
func (h Glob[T]) Get() *T {
	return h.table.Get(h.index)
}

// Ref returns a cheap read-oriented clone sharing the same LifetimeToken.
func (h Glob[T]) Ref() GlobRef[T] {
	return GlobRef[T]{Glob[T]{index: h.index, token: h.token.clone(), table: h.table}}
}

// Drop releases this handle's reference to the slot.
func (h Glob[T]) Drop() {
	h.token.Drop()
}

// Index reports the handle's slot index, stable for the handle's lifetime.
func (h Glob[T]) Index() int {
	return h.index
}

// GlobRef is a read-oriented handle over the same slot as a Glob, for
// collaborators that only ever need to observe a global, never own it.
type GlobRef[T any] struct {
	Glob[T]
}

// globalsUpdater lets globalsTable.update drain every registered Globals[T]
// without knowing any of their T parameters.
type globalsUpdater interface {
	Update()
}

// DeletedItem pairs a freed slot's former index with the value it held, so
// a collaborator can tear down whatever the value owned (a GPU texture, a
// physics body) straight from the deleted-this-frame list.
type DeletedItem[T any] struct {
	Index int
	Value T
}

// Globals is a per-type slot array for engine-shared singleton resources
// (the graphics/physics/input collaborators described in the external
// interfaces). Freed slots stay visible on DeletedItems for exactly one
// subsequent Update call before the index is actually recycled: a slot
// freed during frame N is still reported by DeletedItems throughout frame
// N+1, and only becomes available to Register starting frame N+2.
type Globals[T any] struct {
	items            []T
	tokens           []*LifetimeToken
	availableIndexes []int
	pendingDeletes   []int
	deletedItems     []DeletedItem[T]
}

var _ globalsUpdater = (*Globals[int])(nil)

func (g *Globals[T]) nextIndex() int {
	if n := len(g.availableIndexes); n > 0 {
		idx := g.availableIndexes[n-1]
		g.availableIndexes = g.availableIndexes[:n-1]
		return idx
	}
	var zero T
	g.items = append(g.items, zero)
	g.tokens = append(g.tokens, nil)
	return len(g.items) - 1
}

// Register places value in a fresh or reused slot and returns the owning
// handle.
func (g *Globals[T]) Register(value T) Glob[T] {
	idx := g.nextIndex()
	g.items[idx] = value
	token := newLifetimeToken(func() {
		g.pendingDeletes = append(g.pendingDeletes, idx)
	})
	g.tokens[idx] = token
	return Glob[T]{index: idx, token: token, table: g}
}

// Get returns a pointer to the value at idx.
func (g *Globals[T]) Get(idx int) *T {
	return &g.items[idx]
}

// DeletedItems returns the (former index, removed value) pairs freed as of
// the last Update call.
func (g *Globals[T]) DeletedItems() []DeletedItem[T] {
	return g.deletedItems
}

// Update drains last cycle's DeletedItems into the available-index free
// list, then moves this cycle's newly-dropped values out of their slots and
// into DeletedItems for the next cycle's collaborators to observe.
func (g *Globals[T]) Update() {
	for _, d := range g.deletedItems {
		g.availableIndexes = append(g.availableIndexes, d.Index)
	}
	g.deletedItems = nil

	var zero T
	for _, idx := range g.pendingDeletes {
		g.deletedItems = append(g.deletedItems, DeletedItem[T]{Index: idx, Value: g.items[idx]})
		g.items[idx] = zero
		g.tokens[idx] = nil
	}
	g.pendingDeletes = nil
}

// globalsTable is the type-erased registry of per-type Globals[T] tables.
type globalsTable struct {
	byType   map[reflect.Type]any
	typeBits map[reflect.Type]uint32
	nextBit  uint32
}

func newGlobalsTable() *globalsTable {
	return &globalsTable{
		byType:   make(map[reflect.Type]any),
		typeBits: make(map[reflect.Type]uint32),
	}
}

// bitFor assigns a stable mask bit to a global type the first time a system
// declares an access to it, so the scheduler's compatibility check (§4.4.2)
// can test global accesses with the same mask-intersection machinery it
// uses for components.
func (g *globalsTable) bitFor(t reflect.Type) uint32 {
	if bit, ok := g.typeBits[t]; ok {
		return bit
	}
	bit := g.nextBit
	g.nextBit++
	g.typeBits[t] = bit
	return bit
}

func globalsFor[T any](g *globalsTable) *Globals[T] {
	var zero T
	t := reflect.TypeOf(zero)
	raw, ok := g.byType[t]
	if !ok {
		table := &Globals[T]{}
		g.byType[t] = table
		return table
	}
	return raw.(*Globals[T])
}

// update drains every registered Globals[T] table in turn.
func (g *globalsTable) update() {
	for _, raw := range g.byType {
		raw.(globalsUpdater).Update()
	}
}

func newGlob[T any](app *App, value T) Glob[T] {
	table := globalsFor[T](app.globals)
	return table.Register(value)
}
