package nucleus

import (
	"fmt"
	"reflect"

	"github.com/TheBitDrifter/mask"
)

// Access tells the scheduler whether a system's parameter observes or
// mutates the type it names. Write subsumes Read: a parameter that already
// locks a type as Write never needs a separate Read entry for it (§4.4.1).
type Access uint8

const (
	Read Access = iota
	Write
)

func (a Access) String() string {
	if a == Write {
		return "Write"
	}
	return "Read"
}

// ComponentAccess names one component type a system's parameter tuple
// touches, and whether it reads or writes it.
type ComponentAccess struct {
	Component Component
	Access    Access
}

// GlobalAccess names one global type a system's parameter tuple touches,
// and whether it reads or writes it.
type GlobalAccess struct {
	Type   reflect.Type
	Access Access
}

// SystemContext is handed to a system's Run function on every invocation.
// It carries a Cursor already scoped to the system's archetype filter, so
// the body need only loop `for ctx.Cursor.Next()` and pull components
// through the accessors it closed over.
type SystemContext struct {
	App     *App
	Storage Storage
	Cursor  *Cursor
}

// SystemFunc is the user-supplied body of a system.
type SystemFunc func(*SystemContext)

// SystemDescriptor declares one system: its statically-known component and
// global access sets (§4.4.1), its archetype filter (required/excluded
// component types), whether it may emit updates into the update queue, and
// the action it is scheduled under. In a language with compile-time trait
// machinery this descriptor would be derived from the parameter tuple's
// types; here, per spec's note that "in implementations without
// compile-time trait machinery, this check is performed at
// system-registration time", the caller builds it directly and
// Scheduler.Register validates it.
type SystemDescriptor struct {
	// Name identifies the system in error messages and logs.
	Name string
	// Action is the scheduling node this system belongs to. Empty means
	// anonymous: the system gets its own private action with no named
	// predecessors.
	Action ActionLabel
	// Predecessors lists the actions that must fully complete before this
	// system's action is allowed to run.
	Predecessors []ActionLabel

	Components []ComponentAccess
	Globals    []GlobalAccess

	// Include/Exclude add explicit With/Without filter clauses beyond the
	// archetype filter implied by Components (§4.4.1 "archetype_filter").
	Include []Component
	Exclude []Component

	// CanEmitUpdates marks a system that appends to the update queue
	// (structural-mutation parameters). Bookkeeping only: the queue itself
	// is append-only and safe for concurrent writers within a batch.
	CanEmitUpdates bool

	// WholeWorld marks a system that takes a mutable view of the entire
	// world (every component and every global). Per §4.4.2 such a system is
	// incompatible with every other system, including another WholeWorld
	// system, and always runs alone in its batch.
	WholeWorld bool

	Run SystemFunc
}

// validate rejects a descriptor whose own parameter tuple already
// conflicts with itself: the same component or global requested as both
// Read and Write, or as Write more than once. Same-type multiple Reads are
// fine. This is the runtime equivalent of modor's
// IncompatibleSystemParam/IncompatibleMultipleSystemParams compile-time
// checks.
func (d SystemDescriptor) validate() error {
	seenComponents := make(map[Component]Access, len(d.Components))
	for _, ca := range d.Components {
		prior, ok := seenComponents[ca.Component]
		if !ok {
			seenComponents[ca.Component] = ca.Access
			continue
		}
		if prior == Read && ca.Access == Read {
			continue
		}
		return IncompatibleSystemParamsError{
			System: d.Name,
			Reason: fmt.Sprintf("component %T requested as both %v and %v in the same parameter tuple", ca.Component, prior, ca.Access),
		}
	}

	seenGlobals := make(map[reflect.Type]Access, len(d.Globals))
	for _, ga := range d.Globals {
		prior, ok := seenGlobals[ga.Type]
		if !ok {
			seenGlobals[ga.Type] = ga.Access
			continue
		}
		if prior == Read && ga.Access == Read {
			continue
		}
		return IncompatibleSystemParamsError{
			System: d.Name,
			Reason: fmt.Sprintf("global %v requested as both %v and %v in the same parameter tuple", ga.Type, prior, ga.Access),
		}
	}
	return nil
}

// compiledSystem is a SystemDescriptor after access-set validation and mask
// computation, ready to be laid out into scheduling batches.
type compiledSystem struct {
	desc      SystemDescriptor
	actionIdx actionIdx
	filter    QueryNode

	componentRead  mask.Mask
	componentWrite mask.Mask
	globalRead     mask.Mask
	globalWrite    mask.Mask
}

// compatible implements §4.4.2: two systems are compatible iff, for every
// component type and every global type they both touch, the pair of
// accesses is never {Write, *}. A WholeWorld system is incompatible with
// everything, itself included.
func compatible(a, b *compiledSystem) bool {
	if a.desc.WholeWorld || b.desc.WholeWorld {
		return false
	}
	if a.componentWrite.ContainsAny(b.componentWrite) ||
		a.componentWrite.ContainsAny(b.componentRead) ||
		b.componentWrite.ContainsAny(a.componentRead) {
		return false
	}
	if a.globalWrite.ContainsAny(b.globalWrite) ||
		a.globalWrite.ContainsAny(b.globalRead) ||
		b.globalWrite.ContainsAny(a.globalRead) {
		return false
	}
	return true
}

// buildFilter turns the Include/Exclude component lists of a
// SystemDescriptor into the QueryNode a Cursor evaluates against, combining
// a plain containment check for Include with a Without clause for Exclude
// (§4.4.1 "archetype_filter").
func buildFilter(include, exclude []Component) QueryNode {
	q := Factory.NewQuery()
	if len(include) == 0 && len(exclude) == 0 {
		return q.And()
	}
	items := make([]interface{}, 0, 2)
	if len(include) > 0 {
		items = append(items, include)
	}
	if len(exclude) > 0 {
		excludeQuery := Factory.NewQuery()
		items = append(items, excludeQuery.Without(exclude...))
	}
	return q.And(items...)
}
