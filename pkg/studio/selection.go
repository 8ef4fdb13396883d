package studio

import (
	"reflect"
	"sync"
)

// Binder tracks the single selected node and keeps the inspector's view
// of it live. The selection is held by id only and re-resolved against
// the store after every mutation, so a stale node object can never back
// the inspector: if the node's data changed the cached view is
// replaced, and if the node is gone the selection clears.
//
// Whether the inspector is open is a pure function of whether a
// selection exists; there is no independent open/closed state.
type Binder struct {
	store *Store
	unsub func()

	mu       sync.Mutex
	selected string
	cached   NodeData

	lisMu     sync.Mutex
	listeners map[int]func()
	nextLis   int
}

// NewBinder creates a binder wired to the store's change feed.
func NewBinder(store *Store) *Binder {
	b := &Binder{
		store:     store,
		listeners: make(map[int]func()),
	}
	b.unsub = store.Subscribe(b.refresh)
	return b
}

// Close detaches the binder from the store.
func (b *Binder) Close() {
	if b.unsub != nil {
		b.unsub()
		b.unsub = nil
	}
}

// OnChange registers a listener invoked whenever the inspector view
// changes: selection set, cleared, or the selected node's data
// replaced. The returned function cancels the registration.
func (b *Binder) OnChange(fn func()) func() {
	b.lisMu.Lock()
	defer b.lisMu.Unlock()
	id := b.nextLis
	b.nextLis++
	b.listeners[id] = fn
	return func() {
		b.lisMu.Lock()
		defer b.lisMu.Unlock()
		delete(b.listeners, id)
	}
}

func (b *Binder) fire() {
	b.lisMu.Lock()
	fns := make([]func(), 0, len(b.listeners))
	for _, fn := range b.listeners {
		fns = append(fns, fn)
	}
	b.lisMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Select makes the node with the given id the active selection, which
// opens the inspector.
func (b *Binder) Select(id string) error {
	n, ok := b.store.Node(id)
	if !ok {
		return ErrNodeNotFound
	}
	b.mu.Lock()
	b.selected = id
	b.cached = n.Data
	b.mu.Unlock()
	b.fire()
	return nil
}

// Deselect clears the selection, which closes the inspector.
func (b *Binder) Deselect() {
	b.mu.Lock()
	changed := b.selected != ""
	b.selected = ""
	b.cached = NodeData{}
	b.mu.Unlock()
	if changed {
		b.fire()
	}
}

// Selected resolves the current selection against the live store.
func (b *Binder) Selected() (Node, bool) {
	b.mu.Lock()
	id := b.selected
	b.mu.Unlock()
	if id == "" {
		return Node{}, false
	}
	return b.store.Node(id)
}

// SelectedID returns the selected node id, or "".
func (b *Binder) SelectedID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selected
}

// InspectorOpen reports whether the inspector panel is showing. It is
// derived entirely from the selection.
func (b *Binder) InspectorOpen() bool {
	return b.SelectedID() != ""
}

// InspectorData returns the data the inspector is displaying.
func (b *Binder) InspectorData() (NodeData, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.selected == "" {
		return NodeData{}, false
	}
	return b.cached, true
}

// UpdateField writes one field edit from the inspector through to the
// selected node.
func (b *Binder) UpdateField(name string, value any) error {
	return b.UpdateFields(map[string]any{name: value})
}

// UpdateFields writes a batch of field edits through to the selected
// node. A batch with one key behaves exactly like UpdateField.
func (b *Binder) UpdateFields(values map[string]any) error {
	id := b.SelectedID()
	if id == "" {
		return ErrNoSelection
	}
	return b.store.UpdateValues(id, values)
}

// DeleteSelected removes the selected node (and its edges) and clears
// the selection.
func (b *Binder) DeleteSelected() error {
	id := b.SelectedID()
	if id == "" {
		return ErrNoSelection
	}
	b.store.RemoveNode(id)
	return nil
}

// refresh re-resolves the selection after a store mutation.
func (b *Binder) refresh() {
	b.mu.Lock()
	if b.selected == "" {
		b.mu.Unlock()
		return
	}
	n, ok := b.store.Node(b.selected)
	if !ok {
		b.selected = ""
		b.cached = NodeData{}
		b.mu.Unlock()
		b.fire()
		return
	}
	if reflect.DeepEqual(n.Data, b.cached) {
		b.mu.Unlock()
		return
	}
	b.cached = n.Data
	b.mu.Unlock()
	b.fire()
}
