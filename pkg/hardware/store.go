package hardware

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrRevisionNotFound is returned when a store holds no tree for a revision.
var ErrRevisionNotFound = errors.New("revision not found")

// Store loads and persists hardware trees for a revision.
type Store interface {
	LoadTree(ctx context.Context, revisionID int) (*Tree, error)
	SaveNodes(ctx context.Context, revisionID int, nodes []Node) error
}

// MemoryStore keeps trees in memory, one per revision.
type MemoryStore struct {
	mu    sync.RWMutex
	trees map[int]*Tree
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{trees: make(map[int]*Tree)}
}

// Put stores a copy of tree under revisionID.
func (s *MemoryStore) Put(revisionID int, tree *Tree) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trees[revisionID] = tree.Clone()
}

// LoadTree returns a copy of the stored tree.
func (s *MemoryStore) LoadTree(ctx context.Context, revisionID int) (*Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.trees[revisionID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrRevisionNotFound, revisionID)
	}
	return t.Clone(), nil
}

// SaveNodes overwrites the analysis fields of existing nodes. Structure
// is not changed; every node must already exist.
func (s *MemoryStore) SaveNodes(ctx context.Context, revisionID int, nodes []Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.trees[revisionID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrRevisionNotFound, revisionID)
	}
	for _, n := range nodes {
		if _, err := t.Get(n.ID); err != nil {
			return err
		}
	}
	for _, n := range nodes {
		if err := t.Update(n.ID, func(dst *Node) { *dst = n }); err != nil {
			return err
		}
	}
	return nil
}
