package cache

import (
	"fmt"
	"sync"

	"github.com/traduct/dashsync/internal/log"
)

// Entity is a server-owned record tracked by a Store.
type Entity interface {
	EntityID() string
}

// Patch is a partial update for an entity. Apply merges the patch into an
// existing entity, retaining every field the patch omits. Materialize builds
// an entity from the patch alone, used when the store has never seen the id.
type Patch[E Entity] interface {
	EntityID() string
	Apply(e E) E
	Materialize() E
}

// Collection is an ordered list of entities plus the pagination metadata and
// filter parameters of the fetch that produced it.
type Collection[E Entity] struct {
	Entities []E
	Total    int
	Limit    int
	Offset   int
	Filters  map[string]string
}

type snapshotKind int

const (
	snapshotUpdate snapshotKind = iota
	snapshotRemove
	snapshotOrder
)

// Snapshot captures the pre-mutation state of an optimistic write so it can
// be rolled back. Snapshots are stamp-checked: once the server writes the
// affected state again, restoring the snapshot becomes a no-op.
type Snapshot[E Entity] struct {
	kind   snapshotKind
	id     string
	entity E
	index  int
	order  []string
	stamp  uint64
	gen    uint64
}

// EntityID returns the id of the entity the snapshot covers. Empty for order
// snapshots.
func (s Snapshot[E]) EntityID() string { return s.id }

// Entity returns the captured pre-mutation entity.
func (s Snapshot[E]) Entity() E { return s.entity }

// StoreConfig is the configuration of a Store.
type StoreConfig struct {
	Logger log.Logger
}

func (c *StoreConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "cache.Store"})
	return nil
}

// Store is the authoritative client-side copy of one server-owned entity
// list. Fetches replace the baseline, push events merge partial updates, and
// optimistic mutators capture stamp-checked snapshots for rollback. Every
// write is a full read-modify-write under the lock and readers get copies.
type Store[E Entity] struct {
	entities []E
	total    int
	limit    int
	offset   int
	filters  map[string]string

	// clock advances on every server-observed write, stamps holds the clock
	// value of the last server write per id, gen advances on every baseline
	// replacement. Optimistic writes touch none of them.
	clock  uint64
	stamps map[string]uint64
	gen    uint64

	subs   []func()
	mu     sync.RWMutex
	logger log.Logger
}

// NewStore creates a new entity store.
func NewStore[E Entity](cfg StoreConfig) (*Store[E], error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Store[E]{
		stamps: map[string]uint64{},
		logger: cfg.Logger,
	}, nil
}

// Subscribe registers a callback invoked after every completed write. The
// callback runs outside the store lock and must read state through the
// store's accessors.
func (s *Store[E]) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Store[E]) notify() {
	s.mu.RLock()
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	for _, fn := range subs {
		fn()
	}
}

// ReplaceBaseline installs a fetched collection as the new baseline,
// overwriting entities and pagination metadata. Every id is re-stamped, so
// rollback snapshots taken before the replacement are suppressed.
func (s *Store[E]) ReplaceBaseline(c Collection[E]) {
	s.mu.Lock()

	s.clock++
	s.gen++
	s.entities = make([]E, len(c.Entities))
	copy(s.entities, c.Entities)
	s.total = c.Total
	s.limit = c.Limit
	s.offset = c.Offset
	s.filters = copyFilters(c.Filters)

	s.stamps = make(map[string]uint64, len(c.Entities))
	for _, e := range c.Entities {
		s.stamps[e.EntityID()] = s.clock
	}

	s.mu.Unlock()
	s.notify()
}

// ApplyPatch merges a partial update event into the collection. An unknown
// id is materialized and inserted at the head with the total incremented; a
// known id is merged in place keeping its position and the total unchanged.
// Applying the same patch twice yields the same collection as applying it
// once.
func (s *Store[E]) ApplyPatch(p Patch[E]) {
	id := p.EntityID()
	if id == "" {
		s.logger.Warningf("Dropped partial update without entity id")
		return
	}

	s.mu.Lock()

	s.clock++
	s.stamps[id] = s.clock

	if i, ok := s.indexOf(id); ok {
		s.entities[i] = p.Apply(s.entities[i])
	} else {
		entities := make([]E, 0, len(s.entities)+1)
		entities = append(entities, p.Materialize())
		entities = append(entities, s.entities...)
		s.entities = entities
		s.total++
	}

	s.mu.Unlock()
	s.notify()
}

// Mutate optimistically transforms the entity in place and returns a
// snapshot of its pre-mutation state. It returns false when the id is not in
// the collection.
func (s *Store[E]) Mutate(id string, fn func(E) E) (Snapshot[E], bool) {
	s.mu.Lock()

	i, ok := s.indexOf(id)
	if !ok {
		s.mu.Unlock()
		return Snapshot[E]{}, false
	}

	snap := Snapshot[E]{
		kind:   snapshotUpdate,
		id:     id,
		entity: s.entities[i],
		index:  i,
		stamp:  s.stamps[id],
	}
	s.entities[i] = fn(s.entities[i])

	s.mu.Unlock()
	s.notify()
	return snap, true
}

// Remove optimistically removes the entity and decrements the total,
// returning a snapshot of its pre-mutation state. It returns false when the
// id is not in the collection.
func (s *Store[E]) Remove(id string) (Snapshot[E], bool) {
	s.mu.Lock()

	i, ok := s.indexOf(id)
	if !ok {
		s.mu.Unlock()
		return Snapshot[E]{}, false
	}

	snap := Snapshot[E]{
		kind:   snapshotRemove,
		id:     id,
		entity: s.entities[i],
		index:  i,
		stamp:  s.stamps[id],
	}
	s.entities = append(s.entities[:i:i], s.entities[i+1:]...)
	if s.total > 0 {
		s.total--
	}

	s.mu.Unlock()
	s.notify()
	return snap, true
}

// Reorder optimistically re-imposes the given full id order and returns a
// snapshot of the previous order. It returns false when ids is not a
// permutation of the current collection.
func (s *Store[E]) Reorder(ids []string) (Snapshot[E], bool) {
	s.mu.Lock()

	if len(ids) != len(s.entities) {
		s.mu.Unlock()
		return Snapshot[E]{}, false
	}
	byID := make(map[string]E, len(s.entities))
	prev := make([]string, 0, len(s.entities))
	for _, e := range s.entities {
		byID[e.EntityID()] = e
		prev = append(prev, e.EntityID())
	}
	reordered := make([]E, 0, len(ids))
	for _, id := range ids {
		e, ok := byID[id]
		if !ok {
			s.mu.Unlock()
			return Snapshot[E]{}, false
		}
		reordered = append(reordered, e)
		delete(byID, id)
	}

	snap := Snapshot[E]{
		kind:  snapshotOrder,
		order: prev,
		gen:   s.gen,
	}
	s.entities = reordered

	s.mu.Unlock()
	s.notify()
	return snap, true
}

// Restore rolls the collection back to a snapshot. The rollback is skipped
// (returning false) when the server has observed newer state for the
// affected id(s) since the snapshot was taken, so a failed mutation never
// regresses a fresher push or fetch.
func (s *Store[E]) Restore(snap Snapshot[E]) bool {
	if snap.kind != snapshotOrder && snap.id == "" {
		return false
	}

	s.mu.Lock()

	restored := false
	switch snap.kind {
	case snapshotUpdate, snapshotRemove:
		if s.stamps[snap.id] != snap.stamp {
			break
		}
		if i, ok := s.indexOf(snap.id); ok {
			s.entities[i] = snap.entity
		} else {
			s.insertAt(snap.entity, snap.index)
			s.total++
		}
		restored = true

	case snapshotOrder:
		if s.gen != snap.gen || len(snap.order) != len(s.entities) {
			break
		}
		byID := make(map[string]E, len(s.entities))
		for _, e := range s.entities {
			byID[e.EntityID()] = e
		}
		reordered := make([]E, 0, len(snap.order))
		for _, id := range snap.order {
			e, ok := byID[id]
			if !ok {
				break
			}
			reordered = append(reordered, e)
		}
		if len(reordered) != len(s.entities) {
			break
		}
		s.entities = reordered
		restored = true
	}

	s.mu.Unlock()
	if restored {
		s.notify()
	}
	return restored
}

// List returns a copy of the current collection.
func (s *Store[E]) List() Collection[E] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entities := make([]E, len(s.entities))
	copy(entities, s.entities)

	return Collection[E]{
		Entities: entities,
		Total:    s.total,
		Limit:    s.limit,
		Offset:   s.offset,
		Filters:  copyFilters(s.filters),
	}
}

// Get retrieves an entity by id.
func (s *Store[E]) Get(id string) (E, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i, ok := s.indexOf(id); ok {
		return s.entities[i], true
	}
	var zero E
	return zero, false
}

// IDs returns the entity ids in collection order.
func (s *Store[E]) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.entities))
	for _, e := range s.entities {
		ids = append(ids, e.EntityID())
	}
	return ids
}

// Len returns the number of entities currently cached.
func (s *Store[E]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}

func (s *Store[E]) indexOf(id string) (int, bool) {
	for i, e := range s.entities {
		if e.EntityID() == id {
			return i, true
		}
	}
	return 0, false
}

func (s *Store[E]) insertAt(e E, i int) {
	if i > len(s.entities) {
		i = len(s.entities)
	}
	entities := make([]E, 0, len(s.entities)+1)
	entities = append(entities, s.entities[:i]...)
	entities = append(entities, e)
	entities = append(entities, s.entities[i:]...)
	s.entities = entities
}

func copyFilters(filters map[string]string) map[string]string {
	if filters == nil {
		return nil
	}
	c := make(map[string]string, len(filters))
	for k, v := range filters {
		c[k] = v
	}
	return c
}
