package nucleus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type schedPos struct{ X int }
type schedVel struct{ X int }

func TestScheduler_CompileLayersByActionDepth(t *testing.T) {
	app := NewApp()
	sched := app.Scheduler()

	pos := FactoryNewComponent[schedPos]()

	require.NoError(t, sched.Register(app, SystemDescriptor{
		Name:   "root",
		Action: ActionLabel("root"),
		Run:    func(*SystemContext) {},
	}))
	require.NoError(t, sched.Register(app, SystemDescriptor{
		Name:         "child",
		Action:       ActionLabel("child"),
		Predecessors: []ActionLabel{"root"},
		Components:   []ComponentAccess{{Component: pos, Access: Write}},
		Run:          func(*SystemContext) {},
	}))

	require.NoError(t, sched.Compile())

	assert.Len(t, sched.layers, 2)
	assert.Len(t, sched.layers[0], 1)
	assert.Equal(t, "root", sched.layers[0][0].desc.Name)
	assert.Len(t, sched.layers[1], 1)
	assert.Equal(t, "child", sched.layers[1][0].desc.Name)
}

func TestScheduler_CompileRejectsCycle(t *testing.T) {
	app := NewApp()
	sched := app.Scheduler()

	require.NoError(t, sched.Register(app, SystemDescriptor{
		Name: "a", Action: ActionLabel("a"), Predecessors: []ActionLabel{"b"}, Run: func(*SystemContext) {},
	}))
	require.NoError(t, sched.Register(app, SystemDescriptor{
		Name: "b", Action: ActionLabel("b"), Predecessors: []ActionLabel{"a"}, Run: func(*SystemContext) {},
	}))

	err := sched.Compile()

	var cyclic CyclicActionError
	assert.ErrorAs(t, err, &cyclic)
}

func TestScheduler_RegisterRejectsSelfConflictingAccess(t *testing.T) {
	app := NewApp()
	sched := app.Scheduler()
	pos := FactoryNewComponent[schedPos]()

	err := sched.Register(app, SystemDescriptor{
		Name: "bad",
		Components: []ComponentAccess{
			{Component: pos, Access: Read},
			{Component: pos, Access: Write},
		},
		Run: func(*SystemContext) {},
	})

	var incompatible IncompatibleSystemParamsError
	assert.ErrorAs(t, err, &incompatible)
}

func TestScheduler_UpdateRunsSystemsAndDrainsOncePerFrame(t *testing.T) {
	app := NewApp()

	pos := FactoryNewComponent[schedPos]()
	vel := FactoryNewComponent[schedVel]()

	entities, err := app.Storage().NewEntities(3, pos, vel)
	require.NoError(t, err)
	for _, e := range entities {
		velPtr := vel.GetFromEntity(e)
		velPtr.X = 2
	}

	var spawned int
	app.AddSystem(SystemDescriptor{
		Name:           "movement",
		Action:         ActionLabel("movement"),
		Include:        []Component{pos, vel},
		Components:     []ComponentAccess{{Component: pos, Access: Write}, {Component: vel, Access: Read}},
		CanEmitUpdates: true,
		Run: func(ctx *SystemContext) {
			for ctx.Cursor.Next() {
				p := pos.GetFromCursor(ctx.Cursor)
				v := vel.GetFromCursor(ctx.Cursor)
				p.X += v.X
			}
			err := ctx.Storage.EnqueueNewEntities(1, pos)
			require.NoError(t, err)
			spawned++
		},
	})

	require.NoError(t, app.Update())

	assert.Equal(t, 1, spawned)

	query := Factory.NewQuery()
	cursor := Factory.NewCursor(query.And(pos), app.Storage())
	total := 0
	for cursor.Next() {
		total++
	}
	assert.Equal(t, 4, total, "the movement system's queued spawn must have drained by the time Update returns")
}

func TestScheduler_ActionChainRunsInDependencyOrder(t *testing.T) {
	app := NewApp()
	var trace []string
	record := func(label string) SystemFunc {
		return func(*SystemContext) { trace = append(trace, label) }
	}

	// Deliberately registered deepest-first: the run order must come from
	// the DAG, not from registration order across actions.
	app.AddSystem(SystemDescriptor{
		Name: "c", Action: ActionLabel("C"), Predecessors: []ActionLabel{"B"}, Run: record("C"),
	})
	app.AddSystem(SystemDescriptor{
		Name: "b", Action: ActionLabel("B"), Predecessors: []ActionLabel{"A"}, Run: record("B"),
	})
	app.AddSystem(SystemDescriptor{
		Name: "a", Action: ActionLabel("A"), Run: record("A"),
	})

	require.NoError(t, app.Update())

	assert.Equal(t, []string{"A", "B", "C"}, trace)
}

func TestScheduler_SingleThreadRunsRegistrationOrderWithinLayer(t *testing.T) {
	app := NewApp()
	pos := FactoryNewComponent[schedPos]()
	var trace []string

	app.AddSystem(SystemDescriptor{
		Name:       "reader",
		Action:     ActionLabel("shared"),
		Components: []ComponentAccess{{Component: pos, Access: Read}},
		Run:        func(*SystemContext) { trace = append(trace, "reader") },
	})
	app.AddSystem(SystemDescriptor{
		Name:       "writer",
		Action:     ActionLabel("shared"),
		Components: []ComponentAccess{{Component: pos, Access: Write}},
		Run:        func(*SystemContext) { trace = append(trace, "writer") },
	})

	require.NoError(t, app.Update())

	assert.Equal(t, []string{"reader", "writer"}, trace)
}

func TestScheduler_IncompatibleSystemsRunInSeparateBatches(t *testing.T) {
	writer := &compiledSystem{desc: SystemDescriptor{Name: "writer"}}
	writer.componentWrite.Mark(0)
	reader := &compiledSystem{desc: SystemDescriptor{Name: "reader"}}
	reader.componentRead.Mark(0)
	other := &compiledSystem{desc: SystemDescriptor{Name: "other"}}
	other.componentWrite.Mark(1)

	batches := formBatches([]*compiledSystem{writer, reader, other})

	require.Len(t, batches, 2)
	assert.Contains(t, batches[0], writer)
	assert.Contains(t, batches[1], reader)
	assert.Contains(t, batches[0], other)
}
