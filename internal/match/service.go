package match

import (
	"context"
	"fmt"

	"thrift-matcher/internal/garment"
	"thrift-matcher/internal/wardrobe"
)

// WardrobeLister is the read side of a wardrobe repository.
type WardrobeLister interface {
	List(ctx context.Context, userID string) ([]wardrobe.Item, error)
}

// Service matches candidates against wardrobes loaded from an injected store.
type Service struct {
	store  WardrobeLister
	ranker *Ranker
}

// NewService creates a Service using the default Ranker.
func NewService(store WardrobeLister) *Service {
	return &Service{store: store, ranker: NewRanker()}
}

// WithRanker returns a copy of the service using ranker.
func (s *Service) WithRanker(ranker *Ranker) *Service {
	cp := *s
	cp.ranker = ranker
	return &cp
}

// MatchForUser ranks the user's wardrobe against candidate. A user without
// items fails with garment.ErrEmptyWardrobe.
func (s *Service) MatchForUser(ctx context.Context, userID string, candidate garment.Attributes) (Ranking, error) {
	items, err := s.store.List(ctx, userID)
	if err != nil {
		return Ranking{}, fmt.Errorf("load wardrobe for %s: %w", userID, err)
	}
	return s.ranker.Rank(candidate, wardrobe.Records(items))
}
