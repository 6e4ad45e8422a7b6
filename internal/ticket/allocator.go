package ticket

import (
	"sync"

	"github.com/spec-kit/ticket-coordinator/internal/domain"
)

// SlotAllocator tracks joined helpers for one ticket. Join order is preserved
// for display; it has no bearing on settlement. The check and the mutation
// are a single step under the allocator's lock, so two concurrent joins for
// the last open slot cannot both succeed.
type SlotAllocator struct {
	mu       sync.Mutex
	capacity int
	helpers  []string
}

// NewSlotAllocator creates an allocator with the given capacity. A capacity
// below 1 is coerced to 1.
func NewSlotAllocator(capacity int) *SlotAllocator {
	if capacity < 1 {
		capacity = 1
	}
	return &SlotAllocator{capacity: capacity}
}

// Restore seeds the roster from persisted state, dropping duplicates and
// truncating at capacity.
func (a *SlotAllocator) Restore(helpers []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.helpers = a.helpers[:0]
	for _, id := range helpers {
		if len(a.helpers) == a.capacity {
			break
		}
		if a.contains(id) {
			continue
		}
		a.helpers = append(a.helpers, id)
	}
}

// Join appends the actor to the roster and returns the updated roster.
func (a *SlotAllocator) Join(actorID string) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.contains(actorID) {
		return nil, domain.ErrAlreadyJoined
	}
	if len(a.helpers) == a.capacity {
		return nil, domain.ErrSlotsFull
	}
	a.helpers = append(a.helpers, actorID)
	return a.roster(), nil
}

// Leave removes the actor from the roster and returns the updated roster.
// Leaving an absent actor always reports ErrNotJoined, even right after a
// concurrent Leave for the same actor succeeded elsewhere.
func (a *SlotAllocator) Leave(actorID string) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, id := range a.helpers {
		if id == actorID {
			a.helpers = append(a.helpers[:i], a.helpers[i+1:]...)
			return a.roster(), nil
		}
	}
	return nil, domain.ErrNotJoined
}

// Roster returns a copy of the current roster in join order.
func (a *SlotAllocator) Roster() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.roster()
}

// Len returns the number of occupied slots.
func (a *SlotAllocator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.helpers)
}

// Capacity returns the slot capacity.
func (a *SlotAllocator) Capacity() int {
	return a.capacity
}

func (a *SlotAllocator) contains(actorID string) bool {
	for _, id := range a.helpers {
		if id == actorID {
			return true
		}
	}
	return false
}

func (a *SlotAllocator) roster() []string {
	out := make([]string, len(a.helpers))
	copy(out, a.helpers)
	return out
}
