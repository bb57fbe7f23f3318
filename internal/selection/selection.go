package selection

import (
	"fmt"
	"sort"
	"sync"

	"github.com/traduct/dashsync/internal/model"
)

// Tracker maintains the set of entity ids the user has marked for bulk
// action. The set is kept consistent with the entity cache: Prune intersects
// it with the currently visible ids so no reference to a removed entity
// survives a cache change.
type Tracker struct {
	ids map[string]struct{}
	mu  sync.Mutex
}

// NewTracker creates a new selection tracker.
func NewTracker() *Tracker {
	return &Tracker{ids: map[string]struct{}{}}
}

// Toggle flips the membership of an id.
func (t *Tracker) Toggle(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.ids[id]; ok {
		delete(t.ids, id)
	} else {
		t.ids[id] = struct{}{}
	}
}

// ToggleAll clears the set when every visible id is already selected,
// otherwise it selects exactly the visible ids. It is not additive.
func (t *Tracker) ToggleAll(visible []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.allSelected(visible) {
		t.ids = map[string]struct{}{}
		return
	}

	t.ids = make(map[string]struct{}, len(visible))
	for _, id := range visible {
		t.ids[id] = struct{}{}
	}
}

// Prune intersects the set with the visible ids.
func (t *Tracker) Prune(visible []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	keep := make(map[string]struct{}, len(t.ids))
	for _, id := range visible {
		if _, ok := t.ids[id]; ok {
			keep[id] = struct{}{}
		}
	}
	t.ids = keep
}

// Has reports whether an id is selected.
func (t *Tracker) Has(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.ids[id]
	return ok
}

// Selected returns the selected ids sorted lexically.
func (t *Tracker) Selected() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids := make([]string, 0, len(t.ids))
	for id := range t.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of selected ids.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.ids)
}

// Clear empties the set.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ids = map[string]struct{}{}
}

// Indeterminate reports whether the selection is non-empty but does not
// cover every visible id. Used for the select-all checkbox affordance.
func (t *Tracker) Indeterminate(visible []string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.ids) > 0 && !t.allSelected(visible)
}

func (t *Tracker) allSelected(visible []string) bool {
	if len(visible) == 0 {
		return false
	}
	for _, id := range visible {
		if _, ok := t.ids[id]; !ok {
			return false
		}
	}
	return true
}

// Move returns a copy of order with the element at from moved to to. It is
// the local reorder computation behind drag-and-drop priority lists: the
// result is the complete ordered id list shipped to the server.
func Move(order []string, from, to int) ([]string, error) {
	if from < 0 || from >= len(order) {
		return nil, fmt.Errorf("from index %d out of range: %w", from, model.ErrNotValid)
	}
	if to < 0 || to >= len(order) {
		return nil, fmt.Errorf("to index %d out of range: %w", to, model.ErrNotValid)
	}

	moved := make([]string, 0, len(order))
	moved = append(moved, order[:from]...)
	moved = append(moved, order[from+1:]...)

	result := make([]string, 0, len(order))
	result = append(result, moved[:to]...)
	result = append(result, order[from])
	result = append(result, moved[to:]...)
	return result, nil
}
