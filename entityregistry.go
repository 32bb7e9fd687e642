package nucleus

import "github.com/TheBitDrifter/table"

// entityRegistry tracks the hierarchy that the dense entity index itself
// doesn't: which children belong to which parent, and how deep each entity
// sits below any root. Entity slot allocation, recycling and generation
// counting are already handled by table.EntryIndex (globalEntryIndex):
// table.Entry.Recycled() is the generation counter this module checks
// everywhere an operation might be racing a recycled slot.
type entityRegistry struct {
	parents  map[table.EntryID]Entity
	children map[table.EntryID][]Entity
	depths   map[table.EntryID]int
}

var globalRegistry = newEntityRegistry()

func newEntityRegistry() *entityRegistry {
	return &entityRegistry{
		parents:  make(map[table.EntryID]Entity),
		children: make(map[table.EntryID][]Entity),
		depths:   make(map[table.EntryID]int),
	}
}

// attach records child as the newest child of parent, at parent's depth + 1.
func (r *entityRegistry) attach(parent, child Entity) {
	r.parents[child.ID()] = parent
	r.children[parent.ID()] = append(r.children[parent.ID()], child)
	r.depths[child.ID()] = r.depths[parent.ID()] + 1
}

// Children returns e's children in spawn order.
func (r *entityRegistry) Children(e Entity) []Entity {
	return r.children[e.ID()]
}

// Depth returns e's distance from its furthest root ancestor. Roots are 0.
func (r *entityRegistry) Depth(e Entity) int {
	return r.depths[e.ID()]
}

// detach removes e's bookkeeping once it (or its slot) is gone. The
// remaining siblings keep their relative order.
func (r *entityRegistry) detach(e Entity) {
	if parent, ok := r.parents[e.ID()]; ok {
		siblings := r.children[parent.ID()]
		for i, s := range siblings {
			if s.ID() == e.ID() {
				r.children[parent.ID()] = append(siblings[:i], siblings[i+1:]...)
				break
			}
		}
	}
	delete(r.parents, e.ID())
	delete(r.children, e.ID())
	delete(r.depths, e.ID())
}

// DestroyRecursive tears down e and every descendant in post-order (deepest
// descendants first), invoking each entity's destroy callback immediately
// before that entity is removed from storage.
func (r *entityRegistry) DestroyRecursive(sto Storage, e Entity) error {
	children := append([]Entity{}, r.Children(e)...)
	for _, child := range children {
		if err := r.DestroyRecursive(sto, child); err != nil {
			return err
		}
	}

	if impl, ok := e.(*entity); ok && impl.relationships.onDestroy != nil {
		impl.relationships.onDestroy(e)
	}

	r.detach(e)
	return sto.DestroyEntities(e)
}
