// SPDX-License-Identifier: MIT

package registry

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/checkings/checkings/internal/schema"
)

var badgerPrefix = []byte("sch:")

// BadgerStore keeps schemas as JSON values under "sch:<id>" keys.
type BadgerStore struct {
	db *badger.DB
}

func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db}, nil
}

func (b *BadgerStore) Put(_ context.Context, s *schema.Schema) error {
	buf, err := json.Marshal(s)
	if err != nil {
		return err
	}
	key := []byte("sch:" + s.ID)
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, buf)
	})
}

func (b *BadgerStore) Get(_ context.Context, id string) (*schema.Schema, error) {
	key := []byte("sch:" + id)
	var out schema.Schema
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &out)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (b *BadgerStore) GetByName(ctx context.Context, name string) (*schema.Schema, error) {
	list, err := b.List(ctx)
	if err != nil {
		return nil, err
	}
	return pickByName(list, name)
}

func (b *BadgerStore) List(ctx context.Context) ([]*schema.Schema, error) {
	var list []*schema.Schema
	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(badgerPrefix); it.ValidForPrefix(badgerPrefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var s schema.Schema
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &s)
			}); err != nil {
				return err
			}
			list = append(list, &s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortSchemas(list)
	return list, nil
}

func (b *BadgerStore) Delete(_ context.Context, id string) error {
	key := []byte("sch:" + id)
	err := b.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	return err
}

func (b *BadgerStore) Close() error { return b.db.Close() }

var _ Store = (*BadgerStore)(nil)
