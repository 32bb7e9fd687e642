package nucleus

import (
	"golang.org/x/sync/errgroup"
)

// frameLockBit is the storage lock a Scheduler holds for the full duration
// of a frame, so structural mutations queued by any system are only
// drained once every action layer has finished, never mid-frame when an
// individual Cursor happens to close (§5 "Queued updates are not observed
// until drain").
const frameLockBit uint32 = 1

// Scheduler compiles registered systems into a DAG-ordered sequence of
// batches (§4.4.3-4.4.4) and runs one frame's worth of batches across a
// fixed-width worker pool built from golang.org/x/sync/errgroup, the
// structured-fan-out idiom this corpus reaches for over raw
// sync.WaitGroup bookkeeping.
type Scheduler struct {
	threadCount int
	graph       *ActionGraph
	systems     []*compiledSystem
	layers      [][]*compiledSystem
	compiled    bool
}

func newScheduler(threadCount int) *Scheduler {
	if threadCount < 1 {
		threadCount = 1
	}
	return &Scheduler{threadCount: threadCount, graph: newActionGraph()}
}

// Register validates desc's own parameter tuple, resolves its action (and
// any as-yet-undeclared predecessors named by type) in the action DAG,
// computes its component/global access masks against app's storage and
// globals registry, and files it away for the next Compile.
func (s *Scheduler) Register(app *App, desc SystemDescriptor) error {
	if err := desc.validate(); err != nil {
		return err
	}

	idx := s.graph.idxOrCreate(desc.Action, desc.Predecessors)
	s.graph.addSystem(idx)

	cs := &compiledSystem{desc: desc, actionIdx: idx}
	include := append([]Component{}, desc.Include...)
	for _, ca := range desc.Components {
		include = append(include, ca.Component)
	}
	cs.filter = buildFilter(include, desc.Exclude)

	for _, c := range desc.Include {
		app.storage.Register(c)
	}
	for _, c := range desc.Exclude {
		app.storage.Register(c)
	}
	for _, ca := range desc.Components {
		app.storage.Register(ca.Component)
		bit := app.storage.RowIndexFor(ca.Component)
		if ca.Access == Write {
			cs.componentWrite.Mark(bit)
		} else {
			cs.componentRead.Mark(bit)
		}
	}
	for _, ga := range desc.Globals {
		bit := app.globals.bitFor(ga.Type)
		if ga.Access == Write {
			cs.globalWrite.Mark(bit)
		} else {
			cs.globalRead.Mark(bit)
		}
	}

	s.systems = append(s.systems, cs)
	s.compiled = false
	return nil
}

// Compile validates the action DAG for cycles and lays registered systems
// out into depth-ordered layers, preserving registration order within a
// layer (§4.4.4 determinism: "execution order is determined solely by
// action depth then by registration order within a layer").
func (s *Scheduler) Compile() error {
	if err := s.graph.Validate(); err != nil {
		return err
	}
	maxDepth := s.graph.maxDepth()
	layers := make([][]*compiledSystem, maxDepth+1)
	for _, cs := range s.systems {
		d := s.graph.depth(cs.actionIdx)
		layers[d] = append(layers[d], cs)
	}
	s.layers = layers
	s.compiled = true
	return nil
}

// formBatches greedily partitions one action layer's systems into batches
// where every pair within a batch is pairwise compatible (§4.4.4 "batch
// formation"). Each system joins the first earlier batch it is compatible
// with, so the layer's order is kept within a batch, but a later system can
// land in an earlier batch than a system registered before it.
func formBatches(systems []*compiledSystem) [][]*compiledSystem {
	var batches [][]*compiledSystem
	for _, cs := range systems {
		placed := false
		for bi, batch := range batches {
			fits := true
			for _, other := range batch {
				if !compatible(cs, other) {
					fits = false
					break
				}
			}
			if fits {
				batches[bi] = append(batch, cs)
				placed = true
				break
			}
		}
		if !placed {
			batches = append(batches, []*compiledSystem{cs})
		}
	}
	return batches
}

// runSystem builds the Cursor implied by cs's filter and invokes its Run
// function. Internal invariant violations inside Run propagate as panics,
// per §7; the Scheduler does not recover them, so a panicking system
// aborts the frame after the Cursor guard it's holding is released by its
// own Reset/defer discipline.
func runSystem(app *App, cs *compiledSystem) {
	cursor := Factory.NewCursor(cs.filter, app.storage)
	ctx := &SystemContext{App: app, Storage: app.storage, Cursor: cursor}
	cs.desc.Run(ctx)
}

// Update runs one frame (§4.4.4, §5): every action layer executes to
// completion, in compatibility-respecting batches of up to ThreadCount
// concurrent systems, before the next layer starts; once every system has
// returned, the frame's lock is released so the update queue drains
// exactly once, in the order §4.5 specifies.
func (s *Scheduler) Update(app *App) error {
	if !s.compiled {
		if err := s.Compile(); err != nil {
			return err
		}
	}

	app.storage.AddLock(frameLockBit)
	for _, layer := range s.layers {
		if len(layer) == 0 {
			continue
		}
		if s.threadCount == 1 {
			for _, cs := range layer {
				runSystem(app, cs)
			}
			continue
		}
		for _, batch := range formBatches(layer) {
			if len(batch) == 1 {
				runSystem(app, batch[0])
				continue
			}
			g := new(errgroup.Group)
			g.SetLimit(s.threadCount)
			for _, cs := range batch {
				cs := cs
				g.Go(func() error {
					runSystem(app, cs)
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				app.storage.RemoveLock(frameLockBit)
				return err
			}
		}
	}
	app.storage.RemoveLock(frameLockBit)

	if app.storage.Locked() {
		log.Warn("scheduler: storage still locked after frame drain")
	}
	return nil
}
