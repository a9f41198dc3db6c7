package cart

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/tidemart/storefront/internal/domain"
)

type memoryStore struct {
	mu         sync.RWMutex
	lines      map[string]map[uuid.UUID]domain.CartLine
	selections map[string][]uuid.UUID
}

// NewMemoryStore creates an in-memory cart store. Used in tests and as a
// degraded fallback when Redis is unavailable.
func NewMemoryStore() Store {
	return &memoryStore{
		lines:      make(map[string]map[uuid.UUID]domain.CartLine),
		selections: make(map[string][]uuid.UUID),
	}
}

func (s *memoryStore) Lines(ctx context.Context, buyer string) ([]domain.CartLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lines := make([]domain.CartLine, 0, len(s.lines[buyer]))
	for _, line := range s.lines[buyer] {
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].AddedAt.Equal(lines[j].AddedAt) {
			return lines[i].ID.String() < lines[j].ID.String()
		}
		return lines[i].AddedAt.Before(lines[j].AddedAt)
	})
	return lines, nil
}

func (s *memoryStore) Get(ctx context.Context, buyer string, lineID uuid.UUID) (*domain.CartLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	line, ok := s.lines[buyer][lineID]
	if !ok {
		return nil, nil
	}
	return &line, nil
}

func (s *memoryStore) Add(ctx context.Context, buyer string, line *domain.CartLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lines[buyer] == nil {
		s.lines[buyer] = make(map[uuid.UUID]domain.CartLine)
	}
	s.lines[buyer][line.ID] = *line
	return nil
}

func (s *memoryStore) SetQuantity(ctx context.Context, buyer string, lineID uuid.UUID, quantity int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, ok := s.lines[buyer][lineID]
	if !ok {
		return fmt.Errorf("cart line %s not found", lineID)
	}
	line.Quantity = quantity
	s.lines[buyer][lineID] = line
	return nil
}

func (s *memoryStore) Remove(ctx context.Context, buyer string, lineID uuid.UUID) error {
	return s.RemoveLines(ctx, buyer, []uuid.UUID{lineID})
}

func (s *memoryStore) RemoveLines(ctx context.Context, buyer string, lineIDs []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := make(map[uuid.UUID]bool, len(lineIDs))
	for _, id := range lineIDs {
		delete(s.lines[buyer], id)
		removed[id] = true
	}

	kept := make([]uuid.UUID, 0, len(s.selections[buyer]))
	for _, id := range s.selections[buyer] {
		if !removed[id] {
			kept = append(kept, id)
		}
	}
	s.selections[buyer] = kept
	return nil
}

func (s *memoryStore) Selection(ctx context.Context, buyer string) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	selection := make([]uuid.UUID, len(s.selections[buyer]))
	copy(selection, s.selections[buyer])
	return selection, nil
}

func (s *memoryStore) SetSelection(ctx context.Context, buyer string, lineIDs []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	selection := make([]uuid.UUID, len(lineIDs))
	copy(selection, lineIDs)
	s.selections[buyer] = selection
	return nil
}

func (s *memoryStore) Clear(ctx context.Context, buyer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.lines, buyer)
	delete(s.selections, buyer)
	return nil
}
