package asyncgen

import (
	"sync"
	"sync/atomic"
)

// nodeID is a stable handle to a generator state in the cancellation graph.
// Zero is never assigned.
type nodeID uint64

// canceler is the type-erased view of a generator state the graph needs to
// cascade cancellation between states of different element types.
type canceler interface {
	// cancel runs the cancellation transition. When downstream is false the
	// cascade only travels towards the sources.
	cancel(downstream bool)
}

type vertex struct {
	c          canceler
	upstream   map[nodeID]struct{}
	downstream nodeID
}

// graph is an arena of generator states addressed by nodeID. Edges are
// plain ids, so a lookup of a state that already left the arena is a miss
// rather than a dangling pointer.
type graph struct {
	mu    sync.Mutex
	last  atomic.Uint64
	nodes map[nodeID]*vertex
}

var cancellation = newGraph()

func newGraph() *graph {
	return &graph{nodes: make(map[nodeID]*vertex)}
}

func (g *graph) add(c canceler) nodeID {
	id := nodeID(g.last.Add(1))
	g.mu.Lock()
	g.nodes[id] = &vertex{c: c}
	g.mu.Unlock()
	return id
}

// link records that down adapts up. If down has already left the arena the
// new source is released right away; if up has left, there is nothing to
// link.
func (g *graph) link(down, up nodeID) {
	g.mu.Lock()
	uv := g.nodes[up]
	if uv == nil {
		g.mu.Unlock()
		return
	}
	dv := g.nodes[down]
	if dv == nil {
		g.mu.Unlock()
		uv.c.cancel(false)
		return
	}
	if uv.downstream != 0 && uv.downstream != down {
		g.mu.Unlock()
		panic("asyncgen: generator is already consumed by another operator")
	}
	uv.downstream = down
	if dv.upstream == nil {
		dv.upstream = make(map[nodeID]struct{})
	}
	dv.upstream[up] = struct{}{}
	g.mu.Unlock()
}

// detach removes id from the arena and returns the neighbours that are
// still present.
func (g *graph) detach(id nodeID) (up []canceler, down canceler) {
	g.mu.Lock()
	defer g.mu.Unlock()

	v := g.nodes[id]
	if v == nil {
		return nil, nil
	}
	delete(g.nodes, id)

	for u := range v.upstream {
		if uv := g.nodes[u]; uv != nil {
			uv.downstream = 0
			up = append(up, uv.c)
		}
	}
	if v.downstream != 0 {
		if dv := g.nodes[v.downstream]; dv != nil {
			delete(dv.upstream, id)
			down = dv.c
		}
	}
	return up, down
}

func (g *graph) contains(id nodeID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.nodes[id]
	return ok
}

func (g *graph) edges(id nodeID) (up []nodeID, down nodeID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	v := g.nodes[id]
	if v == nil {
		return nil, 0
	}
	for u := range v.upstream {
		up = append(up, u)
	}
	return up, v.downstream
}
