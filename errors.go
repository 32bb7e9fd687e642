package nucleus

import "fmt"

type LockedStorageError struct{}

func (e LockedStorageError) Error() string {
	return "storage is currently locked"
}

type EntityRelationError struct {
	child, parent Entity
}

func (e EntityRelationError) Error() string {
	return fmt.Sprintf("child (%v) already has parent %v", e.child, e.parent)
}

type ComponentExistsError struct {
	Component Component
}

func (e ComponentExistsError) Error() string {
	return fmt.Sprintf("component already exists on entity: %T", e.Component)
}

type ComponentNotFoundError struct {
	Component Component
}

func (e ComponentNotFoundError) Error() string {
	return fmt.Sprintf("component does not exist on entity: %T", e.Component)
}

// CyclicActionError reports that registering an action's predecessors would
// introduce a cycle in the action DAG.
type CyclicActionError struct {
	Action ActionLabel
}

func (e CyclicActionError) Error() string {
	return fmt.Sprintf("action %q would introduce a cycle in the action graph", e.Action)
}

// IncompatibleSystemParamsError reports that a system was registered with a
// component or global access set that conflicts with itself (e.g. the same
// type requested as both Read and Write, or Write requested twice).
type IncompatibleSystemParamsError struct {
	System string
	Reason string
}

func (e IncompatibleSystemParamsError) Error() string {
	return fmt.Sprintf("system %q has incompatible parameters: %s", e.System, e.Reason)
}

// UnregisteredComponentError reports that a component type was referenced
// (by a query or system) before ever being registered with a storage.
type UnregisteredComponentError struct {
	Component Component
}

func (e UnregisteredComponentError) Error() string {
	return fmt.Sprintf("component %T has not been registered with this storage", e.Component)
}

// BorrowViolationError reports a re-entrant access to an already-taken
// root global (see App.Take).
type BorrowViolationError struct {
	TypeName string
}

func (e BorrowViolationError) Error() string {
	return fmt.Sprintf("global of type %s is already taken", e.TypeName)
}
