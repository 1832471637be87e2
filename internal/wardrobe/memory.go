package wardrobe

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// MemoryStore is a Repository kept in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	byUser map[string][]Item
	owner  map[string]string // item ID -> user ID
	images map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byUser: make(map[string][]Item),
		owner:  make(map[string]string),
		images: make(map[string][]byte),
	}
}

// Add stores item and its photo.
func (s *MemoryStore) Add(ctx context.Context, item Item, image []byte) error {
	if item.ID == "" || item.UserID == "" {
		return fmt.Errorf("wardrobe: item needs an ID and a user")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.owner[item.ID]; exists {
		return fmt.Errorf("wardrobe: item %s already exists", item.ID)
	}
	s.byUser[item.UserID] = append(s.byUser[item.UserID], item)
	s.owner[item.ID] = item.UserID
	if len(image) > 0 {
		s.images[item.ID] = slices.Clone(image)
	}
	return nil
}

// List returns a copy of the user's items.
func (s *MemoryStore) List(ctx context.Context, userID string) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.byUser[userID]), nil
}

// Get returns one item by ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userID, ok := s.owner[id]
	if !ok {
		return Item{}, ErrNotFound
	}
	for _, it := range s.byUser[userID] {
		if it.ID == id {
			return it, nil
		}
	}
	return Item{}, ErrNotFound
}

// Image returns the stored photo of an item.
func (s *MemoryStore) Image(ctx context.Context, id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	img, ok := s.images[id]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(img), nil
}

// Delete removes a user's item and its photo.
func (s *MemoryStore) Delete(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.owner[id] != userID {
		return ErrNotFound
	}
	items := s.byUser[userID]
	idx := slices.IndexFunc(items, func(it Item) bool { return it.ID == id })
	if idx < 0 {
		return ErrNotFound
	}
	s.byUser[userID] = slices.Delete(items, idx, idx+1)
	delete(s.owner, id)
	delete(s.images, id)
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
