package nucleus

// EntityOperation represents a deferred mutation applied to a storage once
// it unlocks.
type EntityOperation interface {
	Apply(Storage) error
}

// EntityOperationsQueue collects operations raised while storage is locked
// (typically by an in-flight Cursor or an executing system) and drains them
// once the lock count returns to zero.
//
// Draining follows a fixed order, independent of enqueue order across
// categories: per-entity component changes, then child spawns, then root
// spawns, then despawns. Within a category, original enqueue order is kept.
type EntityOperationsQueue interface {
	Enqueue(EntityOperation)
	ProcessAll(Storage) error
}

type entityChangeSet struct {
	changes []EntityOperation
}

// entityOperationsQueue is the default EntityOperationsQueue implementation.
type entityOperationsQueue struct {
	componentChangeOrder []Entity
	componentChanges     map[Entity]*entityChangeSet

	childSpawns []NewEntityOperation
	rootSpawns  []NewEntityOperation
	despawns    []DestroyEntityOperation
}

// Enqueue files an operation into its drain-order bucket.
func (queue *entityOperationsQueue) Enqueue(op EntityOperation) {
	switch v := op.(type) {
	case AddComponentOperation:
		queue.enqueueComponentChange(v.entity, v)
	case RemoveComponentOperation:
		queue.enqueueComponentChange(v.entity, v)
	case NewEntityOperation:
		if v.parent != nil {
			queue.childSpawns = append(queue.childSpawns, v)
		} else {
			queue.rootSpawns = append(queue.rootSpawns, v)
		}
	case DestroyEntityOperation:
		queue.despawns = append(queue.despawns, v)
	}
}

func (queue *entityOperationsQueue) enqueueComponentChange(e Entity, op EntityOperation) {
	if queue.componentChanges == nil {
		queue.componentChanges = make(map[Entity]*entityChangeSet)
	}
	set, ok := queue.componentChanges[e]
	if !ok {
		set = &entityChangeSet{}
		queue.componentChanges[e] = set
		queue.componentChangeOrder = append(queue.componentChangeOrder, e)
	}
	set.changes = append(set.changes, op)
}

// ProcessAll drains every bucket in spec order: per-entity component
// changes (all removals then all additions, collapsed into one aggregate
// archetype transition per entity), child spawns, root spawns, then
// despawns. If storage is still locked the queue is left untouched for a
// future unlock to drain.
func (queue *entityOperationsQueue) ProcessAll(sto Storage) error {
	if sto.Locked() {
		return nil
	}

	for _, e := range queue.componentChangeOrder {
		set := queue.componentChanges[e]
		if !e.Valid() {
			log.Warn("update queue: skipping component changes, entity no longer valid")
			continue
		}
		var removals, additions []Component
		var values []any
		for _, change := range set.changes {
			switch op := change.(type) {
			case RemoveComponentOperation:
				if op.entity.Recycled() != op.recycled || op.storage != sto {
					continue
				}
				removals = append(removals, op.component)
			case AddComponentOperation:
				if op.entity.Recycled() != op.recycled || op.storage != op.entity.Storage() {
					continue
				}
				additions = append(additions, op.component)
				values = append(values, op.value)
			}
		}
		if len(removals) == 0 && len(additions) == 0 {
			continue
		}
		if err := e.ApplyComponentChanges(removals, additions, values); err != nil {
			return err
		}
	}
	queue.componentChangeOrder = nil
	queue.componentChanges = nil

	for _, spawn := range queue.childSpawns {
		if !spawn.parent.Valid() {
			log.Warn("update queue: skipping child spawn, parent no longer valid")
			continue
		}
		if err := spawn.Apply(sto); err != nil {
			return err
		}
	}
	queue.childSpawns = nil

	for _, spawn := range queue.rootSpawns {
		if err := spawn.Apply(sto); err != nil {
			return err
		}
	}
	queue.rootSpawns = nil

	for _, d := range queue.despawns {
		if !d.entity.Valid() || d.entity.Recycled() != d.recycled {
			log.Warn("update queue: skipping despawn, entity already gone")
			continue
		}
		if err := d.Apply(sto); err != nil {
			return err
		}
	}
	queue.despawns = nil

	return nil
}

// NewEntityOperation creates one or more entities with the same components.
// A nil parent means a root spawn; a non-nil parent makes this a child
// spawn, applied only after every component change has drained and only if
// the parent is still alive.
type NewEntityOperation struct {
	count      int
	components []Component
	parent     Entity
	callback   EntityDestroyCallback
}

// Apply creates the entities and, for a child spawn, attaches them to parent.
func (op NewEntityOperation) Apply(sto Storage) error {
	entities, err := sto.NewEntities(op.count, op.components...)
	if err != nil {
		return err
	}
	if op.parent == nil {
		return nil
	}
	for _, e := range entities {
		if err := e.SetParent(op.parent, op.callback); err != nil {
			return err
		}
	}
	return nil
}

// DestroyEntityOperation despawns an entity and, recursively, everything
// parented beneath it.
type DestroyEntityOperation struct {
	entity   Entity
	recycled int
}

// Apply recursively tears down the entity and its descendants in post-order.
func (op DestroyEntityOperation) Apply(sto Storage) error {
	if !op.entity.Valid() {
		return nil
	}
	if op.entity.Recycled() != op.recycled {
		return nil
	}
	return globalRegistry.DestroyRecursive(sto, op.entity)
}

// AddComponentOperation adds a component to an entity, optionally with an
// initial value.
type AddComponentOperation struct {
	entity    Entity
	recycled  int
	component Component
	value     any
	storage   Storage
}

// Apply adds the component to the entity if conditions are met.
func (op AddComponentOperation) Apply(sto Storage) error {
	if !op.entity.Valid() {
		return nil
	}
	if op.entity.Recycled() != op.recycled {
		return nil
	}
	if op.storage != op.entity.Storage() {
		return nil
	}
	if op.value != nil {
		return op.entity.AddComponentWithValue(op.component, op.value)
	}
	return op.entity.AddComponent(op.component)
}

// RemoveComponentOperation removes a component from an entity.
type RemoveComponentOperation struct {
	entity    Entity
	recycled  int
	component Component
	storage   Storage
}

// Apply removes the component from the entity if conditions are met.
func (op RemoveComponentOperation) Apply(sto Storage) error {
	if !op.entity.Valid() {
		return nil
	}
	if op.entity.Recycled() != op.recycled {
		return nil
	}
	if op.storage != sto {
		return nil
	}
	return op.entity.RemoveComponent(op.component)
}
