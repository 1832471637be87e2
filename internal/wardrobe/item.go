// Package wardrobe stores users' analyzed garments.
package wardrobe

import (
	"context"
	"errors"
	"slices"
	"time"

	"thrift-matcher/internal/garment"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an item or image does not exist.
var ErrNotFound = errors.New("wardrobe item not found")

// Item is a garment owned by a user.
type Item struct {
	ID             string                    `json:"id"`
	UserID         string                    `json:"user_id"`
	ImageURL       string                    `json:"image_url"`
	Category       garment.Category          `json:"category"`
	Confidence     float64                   `json:"confidence"`
	Colors         garment.ColorDistribution `json:"color_distribution"`
	ColorPrimary   garment.ColorName         `json:"color_primary"`
	ColorSecondary garment.ColorName         `json:"color_secondary,omitempty"`
	Seasons        []garment.Season          `json:"season"`
	CreatedAt      time.Time                 `json:"created_at"`
}

// ImagePath returns the URL path an item's stored photo is served under.
func ImagePath(id string) string {
	return "/wardrobe/images/" + id
}

// NewItem creates an item with a fresh ID from analyzed attributes.
func NewItem(userID string, attrs garment.Attributes, confidence float64) Item {
	id := uuid.NewString()
	return Item{
		ID:             id,
		UserID:         userID,
		ImageURL:       ImagePath(id),
		Category:       attrs.Category,
		Confidence:     confidence,
		Colors:         attrs.Colors.Clone(),
		ColorPrimary:   attrs.Colors.Primary(),
		ColorSecondary: attrs.Colors.Secondary(),
		Seasons:        slices.Clone(attrs.Seasons),
		CreatedAt:      time.Now().UTC(),
	}
}

// Attributes returns the garment attributes of the item.
func (i Item) Attributes() garment.Attributes {
	return garment.Attributes{
		Category: i.Category,
		Colors:   i.Colors.Clone(),
		Seasons:  slices.Clone(i.Seasons),
	}
}

// Record returns the item in the form the ranker consumes.
func (i Item) Record() garment.Record {
	return garment.Record{ID: i.ID, Attributes: i.Attributes()}
}

// Records converts items to ranker records, keeping order.
func Records(items []Item) []garment.Record {
	out := make([]garment.Record, len(items))
	for i, it := range items {
		out[i] = it.Record()
	}
	return out
}

// Repository persists wardrobe items. Implementations are safe for concurrent
// use. List returns a user's items in insertion order.
type Repository interface {
	Add(ctx context.Context, item Item, image []byte) error
	List(ctx context.Context, userID string) ([]Item, error)
	Get(ctx context.Context, id string) (Item, error)
	Image(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, userID, id string) error
	Close() error
}
