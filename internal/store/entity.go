package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"iter"

	"github.com/dgraph-io/badger/v4"
)

// Entity provides generic keyed storage for any record type.
// Every write is a full-record replacement inside a single Badger transaction.
type Entity[T any] struct {
	store  *Store
	prefix string
	keyOf  func(*T) string
}

// NewEntity creates a new Entity instance for type T.
// keyOf extracts the record's primary key; it is stored under prefix+key.
func NewEntity[T any](s *Store, prefix string, keyOf func(*T) string) *Entity[T] {
	return &Entity[T]{
		store:  s,
		prefix: prefix,
		keyOf:  keyOf,
	}
}

func (e *Entity[T]) key(id string) []byte {
	return []byte(e.prefix + id)
}

// Put inserts or fully overwrites the record at its key.
// The write is all-or-nothing: either the whole record is visible afterwards or none of it.
func (e *Entity[T]) Put(ctx context.Context, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	key := e.key(e.keyOf(entity))
	err = e.store.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
	return wrapStorage(err, "put")
}

// PutAll writes every record in one transaction. Nothing is written if any set fails.
func (e *Entity[T]) PutAll(ctx context.Context, entities []*T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	encoded := make([][]byte, len(entities))
	for i, entity := range entities {
		data, err := json.Marshal(entity)
		if err != nil {
			return fmt.Errorf("failed to marshal entity %d: %w", i, err)
		}
		encoded[i] = data
	}

	err := e.store.db.Update(func(txn *badger.Txn) error {
		for i, entity := range entities {
			if err := txn.Set(e.key(e.keyOf(entity)), encoded[i]); err != nil {
				return fmt.Errorf("failed to set key: %w", err)
			}
		}
		return nil
	})
	return wrapStorage(err, "put all")
}

// Get retrieves a record by ID. found is false when no record exists; that is not an error.
func (e *Entity[T]) Get(ctx context.Context, id string) (entity *T, found bool, err error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	var value T
	err = e.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(e.key(id))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &value); err != nil {
				return fmt.Errorf("failed to unmarshal entity: %w", err)
			}
			return nil
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, wrapStorage(err, "get")
	}

	return &value, true, nil
}

// Delete deletes a record by ID.
// This operation is idempotent - it does not return an error if the record does not exist.
func (e *Entity[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := e.store.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(e.key(id))
	})
	return wrapStorage(err, "delete")
}

// Count returns the number of stored records. Values are not read.
func (e *Entity[T]) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	count := 0
	err := e.store.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(e.prefix)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, wrapStorage(err, "count")
	}
	return count, nil
}

// List returns an iterator over all records in key order.
func (e *Entity[T]) List(ctx context.Context) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		err := e.store.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(e.prefix)
			opts.PrefetchValues = true

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Rewind(); it.Valid(); it.Next() {
				if ctx.Err() != nil {
					return ctx.Err()
				}

				var entity T
				err := it.Item().Value(func(val []byte) error {
					return json.Unmarshal(val, &entity)
				})
				if err != nil {
					return fmt.Errorf("failed to unmarshal entity: %w", err)
				}

				if !yield(&entity, nil) {
					return errStopIteration
				}
			}
			return nil
		})

		if err != nil && !errors.Is(err, errStopIteration) {
			yield(nil, wrapStorage(err, "list"))
		}
	}
}

// errStopIteration signals that the consumer stopped ranging early.
var errStopIteration = errors.New("stop iteration")

// Collect drains List into a slice.
func (e *Entity[T]) Collect(ctx context.Context) ([]*T, error) {
	var out []*T
	for entity, err := range e.List(ctx) {
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, nil
}
