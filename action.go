package nucleus

import (
	"fmt"

	"github.com/TheBitDrifter/bark"
)

// ActionLabel names a node in the action DAG (§4.3 Action). Systems register
// against a label; several systems may share one. The zero value ("") means
// "anonymous": AddSystem mints a private label unique to that call, so an
// unlabeled system still gets its own scheduling slot but nothing else can
// ever declare a dependency on it by name.
type ActionLabel string

type actionIdx int

// maxActions bounds the graph's node cache. Actions are declared once at
// registration time, one per scheduling phase; a graph anywhere near this
// size is a declaration bug.
const maxActions = 256

// actionNode is one vertex of the DAG: its declared predecessors and,
// once Validate runs, its depth (longest path from any root).
type actionNode struct {
	label        ActionLabel
	predecessors []actionIdx
	systemCount  int
	depth        int
}

// ActionGraph is the DAG that an App's Scheduler builds as systems are
// registered. A predecessor may be named before the action it points to is
// ever registered explicitly: idxOrCreate first sees it as a forward
// reference and creates an empty placeholder, which a later explicit
// registration fills in with real predecessors. Nodes live in a Cache keyed
// by label; actionIdx is the cache's index shifted to 0-based.
type ActionGraph struct {
	nodes     Cache[actionNode]
	anonymous int
}

func newActionGraph() *ActionGraph {
	return &ActionGraph{nodes: FactoryNewCache[actionNode](maxActions)}
}

// node resolves idx to its cached actionNode. The pointer is only stable
// until the next Register; callers that create nodes in between must
// re-resolve.
func (g *ActionGraph) node(idx actionIdx) *actionNode {
	return g.nodes.GetItem(int(idx) + 1)
}

// idxOrCreate resolves label to its node index, creating the node (and,
// transitively, any of its not-yet-seen predecessors) if this is the first
// time label is mentioned. Calling it again for a label whose node was
// created only as a forward-reference placeholder (empty predecessor list)
// fills in predecessors from this call; a label that already carries real
// predecessors keeps them.
func (g *ActionGraph) idxOrCreate(label ActionLabel, predecessors []ActionLabel) actionIdx {
	if label == "" {
		label = g.nextAnonymousLabel()
	}
	if cacheIdx, ok := g.nodes.GetIndex(string(label)); ok {
		idx := actionIdx(cacheIdx - 1)
		if len(g.node(idx).predecessors) == 0 && len(predecessors) > 0 {
			resolved := g.resolvePredecessors(predecessors)
			g.node(idx).predecessors = resolved
		}
		return idx
	}
	cacheIdx, err := g.nodes.Register(string(label), actionNode{label: label})
	if err != nil {
		panic(bark.AddTrace(err))
	}
	idx := actionIdx(cacheIdx - 1)
	resolved := g.resolvePredecessors(predecessors)
	g.node(idx).predecessors = resolved
	return idx
}

func (g *ActionGraph) resolvePredecessors(labels []ActionLabel) []actionIdx {
	if len(labels) == 0 {
		return nil
	}
	out := make([]actionIdx, len(labels))
	for i, l := range labels {
		out[i] = g.idxOrCreate(l, nil)
	}
	return out
}

func (g *ActionGraph) nextAnonymousLabel() ActionLabel {
	g.anonymous++
	return ActionLabel(fmt.Sprintf("__anonymous_action_%d", g.anonymous))
}

// addSystem records that one more system has been registered against idx.
func (g *ActionGraph) addSystem(idx actionIdx) {
	g.node(idx).systemCount++
}

// systemCounts exposes each action's registered system count, in node
// registration order; used by tests mirroring the original action-storage
// suite.
func (g *ActionGraph) systemCounts() []int {
	counts := make([]int, g.nodes.Len())
	for i := range counts {
		counts[i] = g.node(actionIdx(i)).systemCount
	}
	return counts
}

// dependencyIdxs exposes idx's resolved predecessor indexes.
func (g *ActionGraph) dependencyIdxs(idx actionIdx) []actionIdx {
	return g.node(idx).predecessors
}

// Validate walks every node computing its depth (longest path from a root,
// 0 for a root) and fails with CyclicActionError, naming the offending
// label, the first time a node is revisited while still on the current
// path. It must run once before the graph can be layered into batches.
func (g *ActionGraph) Validate() error {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	n := g.nodes.Len()
	state := make([]int, n)
	depth := make([]int, n)

	var visit func(idx actionIdx) error
	visit = func(idx actionIdx) error {
		switch state[idx] {
		case done:
			return nil
		case visiting:
			return CyclicActionError{Action: g.node(idx).label}
		}
		state[idx] = visiting
		d := 0
		for _, p := range g.node(idx).predecessors {
			if err := visit(p); err != nil {
				return err
			}
			if depth[p]+1 > d {
				d = depth[p] + 1
			}
		}
		depth[idx] = d
		state[idx] = done
		return nil
	}

	for i := 0; i < n; i++ {
		if err := visit(actionIdx(i)); err != nil {
			return err
		}
	}
	for i := 0; i < n; i++ {
		g.node(actionIdx(i)).depth = depth[i]
	}
	return nil
}

// depth returns idx's depth, as computed by the last Validate call.
func (g *ActionGraph) depth(idx actionIdx) int {
	return g.node(idx).depth
}

// maxDepth returns the deepest action depth in the graph, or -1 if the
// graph has no nodes.
func (g *ActionGraph) maxDepth() int {
	max := -1
	for i := 0; i < g.nodes.Len(); i++ {
		if d := g.node(actionIdx(i)).depth; d > max {
			max = d
		}
	}
	return max
}
