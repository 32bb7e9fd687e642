package nucleus

import "github.com/TheBitDrifter/table"

// factory implements the factory pattern for nucleus components.
type factory struct{}

// Factory is the global factory instance for creating nucleus components.
var Factory factory

// NewStorage creates a new Storage instance with the given schema.
func (f factory) NewStorage(schema table.Schema) Storage {
	return newStorage(schema)
}

// NewQuery creates a new Query instance.
func (f factory) NewQuery() Query {
	return newQuery()
}

// NewCursor creates a new Cursor with the specified query and storage.
func (f factory) NewCursor(query QueryNode, storage Storage) *Cursor {
	return newCursor(query, storage)
}

// NewGlobals creates an empty type-erased registry that holds one
// Globals[T] table per global type.
func (f factory) NewGlobals() *globalsTable {
	return newGlobalsTable()
}

// NewActionGraph creates an empty action DAG.
func (f factory) NewActionGraph() *ActionGraph {
	return newActionGraph()
}

// NewScheduler creates a scheduler with the given thread count.
func (f factory) NewScheduler(threadCount int) *Scheduler {
	return newScheduler(threadCount)
}

// FactoryNewComponent creates a new AccessibleComponent for type T.
func FactoryNewComponent[T any]() AccessibleComponent[T] {
	iden := table.FactoryNewElementType[T]()
	return AccessibleComponent[T]{
		Component: iden,
		Accessor:  table.FactoryNewAccessor[T](iden),
	}
}

// FactoryNewCache creates a new Cache with the specified capacity.
func FactoryNewCache[T any](cap int) Cache[T] {
	return &SimpleCache[T]{
		itemIndices: make(map[string]int),
		maxCapacity: cap,
	}
}

// FactoryNewGlob registers a new global of type T and returns a handle to it.
func FactoryNewGlob[T any](app *App, value T) Glob[T] {
	return newGlob(app, value)
}
