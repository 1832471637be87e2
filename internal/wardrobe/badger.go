package wardrobe

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// Key prefixes for BadgerDB storage
const (
	itemKeyPrefix  = "item:"
	userKeyPrefix  = "user:"
	imageKeyPrefix = "image:"
)

// BadgerStore implements Repository using BadgerDB for durable storage.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a BadgerDB at dir. With inMemory set, dir is
// ignored and nothing touches disk.
func OpenBadger(dir string, inMemory bool) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return NewBadgerStore(db), nil
}

// NewBadgerStore wraps an open BadgerDB.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// userKey orders a user's items by creation time, then ID. The user ID is
// hex-encoded so no ID can be a prefix of another user's key range.
func userKey(item Item) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", userPrefix(item.UserID), item.CreatedAt.UnixNano(), item.ID))
}

func userPrefix(userID string) []byte {
	return []byte(userKeyPrefix + hex.EncodeToString([]byte(userID)) + ":")
}

// Add stores a new item and its photo.
func (s *BadgerStore) Add(ctx context.Context, item Item, image []byte) error {
	if item.ID == "" || item.UserID == "" {
		return fmt.Errorf("wardrobe: item needs an ID and a user")
	}

	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		itemKey := []byte(itemKeyPrefix + item.ID)
		if _, err := txn.Get(itemKey); err == nil {
			return fmt.Errorf("wardrobe: item %s already exists", item.ID)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("get item: %w", err)
		}

		if err := txn.Set(itemKey, data); err != nil {
			return fmt.Errorf("set item: %w", err)
		}
		if err := txn.Set(userKey(item), []byte(item.ID)); err != nil {
			return fmt.Errorf("set user mapping: %w", err)
		}
		if len(image) > 0 {
			if err := txn.Set([]byte(imageKeyPrefix+item.ID), image); err != nil {
				return fmt.Errorf("set image: %w", err)
			}
		}
		return nil
	})
}

// List returns the user's items ordered by creation time.
func (s *BadgerStore) List(ctx context.Context, userID string) ([]Item, error) {
	var items []Item

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = userPrefix(userID)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			id, err := it.Item().ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("read user mapping: %w", err)
			}
			item, err := getItem(txn, string(id))
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if item.UserID != userID {
				continue
			}
			items = append(items, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func getItem(txn *badger.Txn, id string) (Item, error) {
	var item Item
	entry, err := txn.Get([]byte(itemKeyPrefix + id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Item{}, ErrNotFound
	}
	if err != nil {
		return Item{}, fmt.Errorf("get item: %w", err)
	}
	err = entry.Value(func(val []byte) error {
		return json.Unmarshal(val, &item)
	})
	if err != nil {
		return Item{}, fmt.Errorf("unmarshal item: %w", err)
	}
	return item, nil
}

// Get retrieves an item by ID.
func (s *BadgerStore) Get(ctx context.Context, id string) (Item, error) {
	var item Item
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		item, err = getItem(txn, id)
		return err
	})
	return item, err
}

// Image returns the stored photo of an item.
func (s *BadgerStore) Image(ctx context.Context, id string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		entry, err := txn.Get([]byte(imageKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get image: %w", err)
		}
		data, err = entry.ValueCopy(nil)
		return err
	})
	return data, err
}

// Delete removes a user's item, its user mapping and its photo.
func (s *BadgerStore) Delete(ctx context.Context, userID, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		item, err := getItem(txn, id)
		if err != nil {
			return err
		}
		if item.UserID != userID {
			return ErrNotFound
		}
		for _, key := range [][]byte{
			[]byte(itemKeyPrefix + id),
			userKey(item),
			[]byte(imageKeyPrefix + id),
		} {
			if err := txn.Delete(key); err != nil {
				return fmt.Errorf("delete %s: %w", key, err)
			}
		}
		return nil
	})
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
