package studio

import (
	"sync"
)

// Store owns the canonical node and edge lists. All topology and data
// changes funnel through it; every other component treats the store as
// read-mostly and never mutates a private copy.
//
// Updates are copy-on-write: changing a node's data replaces the whole
// node with a modified clone, so readers holding an earlier snapshot
// never observe a partial update and change detection reduces to deep
// comparison.
//
// Observers registered with Subscribe are invoked synchronously after
// each mutation, outside the store lock. An observer may itself mutate
// the store (discovery does, when it merges results back); loops are
// broken by the caller's own idempotence checks, not by the store.
type Store struct {
	mu    sync.RWMutex
	nodes []Node
	edges []Edge

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

// NewStore creates an empty graph store.
func NewStore() *Store {
	return &Store{subs: make(map[int]func())}
}

// Subscribe registers an observer invoked after every mutation.
// The returned function cancels the subscription.
func (s *Store) Subscribe(fn func()) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Nodes returns a snapshot of the node list. The returned nodes must be
// treated as read-only; mutations go through store operations.
func (s *Store) Nodes() []Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Node(nil), s.nodes...)
}

// Edges returns a snapshot of the edge list.
func (s *Store) Edges() []Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Edge(nil), s.edges...)
}

// Node resolves a node by id against the current list.
func (s *Store) Node(id string) (Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Len returns the number of nodes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// AddNode appends a node to the canvas.
func (s *Store) AddNode(n Node) {
	s.mu.Lock()
	s.nodes = append(s.nodes, n)
	s.mu.Unlock()
	s.notify()
}

// SetGraph replaces both collections at once, e.g. when loading a
// template, an imported document, or a saved version.
func (s *Store) SetGraph(nodes []Node, edges []Edge) {
	s.mu.Lock()
	s.nodes = append([]Node(nil), nodes...)
	s.edges = append([]Edge(nil), edges...)
	s.mu.Unlock()
	s.notify()
}

// SetNodes replaces the node list.
func (s *Store) SetNodes(nodes []Node) {
	s.mu.Lock()
	s.nodes = append([]Node(nil), nodes...)
	s.mu.Unlock()
	s.notify()
}

// SetEdges replaces the edge list.
func (s *Store) SetEdges(edges []Edge) {
	s.mu.Lock()
	s.edges = append([]Edge(nil), edges...)
	s.mu.Unlock()
	s.notify()
}

// Clear empties the canvas.
func (s *Store) Clear() {
	s.SetGraph(nil, nil)
}

// RemoveNode deletes a node and every edge touching it.
func (s *Store) RemoveNode(id string) {
	s.mu.Lock()
	nodes := s.nodes[:0:0]
	for _, n := range s.nodes {
		if n.ID != id {
			nodes = append(nodes, n)
		}
	}
	edges := s.edges[:0:0]
	for _, e := range s.edges {
		if e.Source != id && e.Target != id {
			edges = append(edges, e)
		}
	}
	s.nodes = nodes
	s.edges = edges
	s.mu.Unlock()
	s.notify()
}

// update clones the node's data bag, applies fn to the clone, and
// replaces the node. Returns false when the id is unknown.
func (s *Store) update(id string, fn func(*NodeData)) bool {
	s.mu.Lock()
	found := false
	for i, n := range s.nodes {
		if n.ID == id {
			d := n.Data.Clone()
			fn(&d)
			n.Data = d
			s.nodes[i] = n
			found = true
			break
		}
	}
	s.mu.Unlock()
	if found {
		s.notify()
	}
	return found
}

// UpdateValues merges a batch of configured values into a node's data
// bag. A batch with a single key is indistinguishable in effect from
// UpdateValue.
func (s *Store) UpdateValues(id string, values map[string]any) error {
	ok := s.update(id, func(d *NodeData) {
		for k, v := range values {
			d.Values[k] = v
		}
	})
	if !ok {
		return ErrNodeNotFound
	}
	return nil
}

// UpdateValue sets a single configured value on a node.
func (s *Store) UpdateValue(id, name string, value any) error {
	return s.UpdateValues(id, map[string]any{name: value})
}

// SetExecuting toggles a node's execution flag. Events for ids the
// store no longer holds are silent no-ops; the node may have been
// deleted since the backend queued the event.
func (s *Store) SetExecuting(id string, executing bool) {
	s.update(id, func(d *NodeData) {
		d.IsExecuting = executing
	})
}

// DiscoveryPatch is the result of one discovery call, merged into a
// node atomically: the named field's option list is replaced, the cache
// tag is recorded, and (optionally) the label-to-value mapping is kept
// for dependent lookups. Nothing else in the data bag is touched; in
// particular the field's configured value survives an options refresh.
type DiscoveryPatch struct {
	Field      string
	Options    []Option
	TagKey     string
	TagValue   string
	MappingKey string
}

// ApplyDiscovery merges a discovery result into a node. Unknown field
// names leave the schema untouched but still record the cache tag.
func (s *Store) ApplyDiscovery(id string, p DiscoveryPatch) error {
	ok := s.update(id, func(d *NodeData) {
		for i, f := range d.Inputs {
			if f.Name == p.Field {
				f.Options = append([]Option(nil), p.Options...)
				d.Inputs[i] = f
				break
			}
		}
		if p.TagKey != "" {
			d.Tags[p.TagKey] = p.TagValue
		}
		if p.MappingKey != "" {
			d.Mappings[p.MappingKey] = append([]Option(nil), p.Options...)
		}
	})
	if !ok {
		return ErrNodeNotFound
	}
	return nil
}

// SetFieldOptions replaces one field's option list, preserving the
// field's configured value.
func (s *Store) SetFieldOptions(id, field string, options []Option) error {
	return s.ApplyDiscovery(id, DiscoveryPatch{Field: field, Options: options})
}

// DuplicateNode clones a node with a fresh id, offset slightly so the
// copy is visible next to the original.
func (s *Store) DuplicateNode(id string) (Node, error) {
	src, ok := s.Node(id)
	if !ok {
		return Node{}, ErrNodeNotFound
	}
	dup := NewNode(src.Data, Position{X: src.Position.X + 50, Y: src.Position.Y + 50})
	s.AddNode(dup)
	return dup, nil
}
