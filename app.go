package nucleus

import (
	"reflect"

	"github.com/TheBitDrifter/table"
)

// App owns one world's Storage, globals registry, and Scheduler, and is the
// handle every SystemContext carries back to its caller. It also hosts the
// root-global slots described below, modor's app.rs RootNodeHandle pattern
// adapted to Go: a handful of engine-wide singletons (the renderer, the
// input state) that live directly on the App rather than inside an entity's
// component set or a Globals[T] table.
type App struct {
	storage   Storage
	globals   *globalsTable
	scheduler *Scheduler

	roots map[reflect.Type]*rootSlot
}

type rootSlot struct {
	value any
	taken bool
}

// NewApp builds an App over a fresh Storage and Scheduler. Log level and
// worker-pool width both come from the package-level Config, set once
// before constructing any App.
func NewApp() *App {
	schema := table.Factory.NewSchema()
	return &App{
		storage:   Factory.NewStorage(schema),
		globals:   Factory.NewGlobals(),
		scheduler: Factory.NewScheduler(Config.ThreadCount()),
		roots:     make(map[reflect.Type]*rootSlot),
	}
}

// Storage exposes the App's entity/component store.
func (a *App) Storage() Storage {
	return a.storage
}

// AddSystem registers desc against the App's Scheduler. A descriptor whose
// own parameter tuple conflicts with itself, or whose predecessors close a
// cycle in the action graph, is a declaration error: per the scheduling
// model's panic-at-registration contract for programmer errors, AddSystem
// panics with it. Callers that want a plain error instead of a panic should
// call Scheduler() and Register directly; a cycle then surfaces as the error
// returned by Compile (or Update).
func (a *App) AddSystem(desc SystemDescriptor) {
	if err := a.scheduler.Register(a, desc); err != nil {
		panic(err)
	}
	if err := a.scheduler.graph.Validate(); err != nil {
		panic(err)
	}
}

// Scheduler exposes the App's Scheduler for callers that want Register's
// error return instead of AddSystem's panic.
func (a *App) Scheduler() *Scheduler {
	return a.scheduler
}

// Update runs one frame: every registered system in DAG order, the deferred
// update queue's drain once the frame's systems have all returned, and the
// globals registry's one-cycle-delayed deleted-item rotation.
func (a *App) Update() error {
	if err := a.scheduler.Update(a); err != nil {
		return err
	}
	a.globals.update()
	return nil
}

func (a *App) rootSlot(t reflect.Type, create func() any) *rootSlot {
	slot, ok := a.roots[t]
	if !ok {
		slot = &rootSlot{value: create()}
		a.roots[t] = slot
	}
	return slot
}

// RootGlobalHandle names one root-global slot by its value type T, the way
// modor's RootNodeHandle<T> names a root node. The handle itself carries no
// state; it is cheap to recreate per call site.
type RootGlobalHandle[T any] struct{}

// RootGlobal returns the handle for T. T is almost always inferred from
// context at the call site.
func RootGlobal[T any]() RootGlobalHandle[T] {
	return RootGlobalHandle[T]{}
}

func (RootGlobalHandle[T]) typ() reflect.Type {
	var zero T
	return reflect.TypeOf(zero)
}

// Get returns the root slot's current value, creating it via create on
// first access. create runs at most once per App per T.
func (h RootGlobalHandle[T]) Get(app *App, create func() T) *T {
	slot := app.rootSlot(h.typ(), func() any {
		v := create()
		return &v
	})
	return slot.value.(*T)
}

// Take hands f exclusive, reentrancy-checked access to the root slot,
// creating it via create on first access. Calling Take again for the same T
// while already inside an outer Take for that T panics, mirroring modor's
// "root node is already borrowed" guard: it catches a system that takes a
// root global and then, directly or through a nested call, tries to take it
// again before returning.
func (h RootGlobalHandle[T]) Take(app *App, create func() T, f func(*App, *T)) {
	slot := app.rootSlot(h.typ(), func() any {
		v := create()
		return &v
	})
	if slot.taken {
		panic(BorrowViolationError{TypeName: h.typ().String()})
	}
	slot.taken = true
	defer func() { slot.taken = false }()
	f(app, slot.value.(*T))
}
