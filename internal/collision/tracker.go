// Package collision tracks hashed response keys while a snapshot index is
// written or read.
package collision

import (
	"fmt"
	"slices"

	"github.com/arloliu/gridverify/errs"
)

// Tracker maps key hashes to key names and detects hash collisions.
//
// A collision (two different names with one hash) is not an error. It sets a
// flag so the snapshot stores and resolves keys by name instead of by ID.
type Tracker struct {
	names        map[uint64]string // Hash → name mapping for collision detection
	order        []string          // Names in tracking order
	hasCollision bool
}

// NewTracker creates a new collision tracker.
func NewTracker() *Tracker {
	return &Tracker{
		names: make(map[uint64]string),
		order: make([]string, 0),
	}
}

// TrackKey tracks a response key with its hash.
//
// Returns:
//   - errs.ErrEmptyKey if name is empty
//   - errs.ErrDuplicateKey if the same name is tracked twice
func (t *Tracker) TrackKey(name string, hash uint64) error {
	if name == "" {
		return errs.ErrEmptyKey
	}

	if existing, exists := t.names[hash]; exists {
		if existing == name {
			return fmt.Errorf("%w: %q", errs.ErrDuplicateKey, name)
		}
		t.hasCollision = true
	}
	// After a collision the hash map no longer holds every name.
	if t.hasCollision && slices.Contains(t.order, name) {
		return fmt.Errorf("%w: %q", errs.ErrDuplicateKey, name)
	}

	t.names[hash] = name
	t.order = append(t.order, name)

	return nil
}

// HasCollision returns true if a collision has been detected.
func (t *Tracker) HasCollision() bool {
	return t.hasCollision
}

// Names returns the tracked names in tracking order.
func (t *Tracker) Names() []string {
	return t.order
}

// Count returns the number of tracked names.
func (t *Tracker) Count() int {
	return len(t.order)
}

// Reset clears all tracked keys and collision state, keeping capacity.
func (t *Tracker) Reset() {
	clear(t.names)
	t.order = t.order[:0]
	t.hasCollision = false
}
