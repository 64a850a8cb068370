package repositories

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const (
	// Key prefixes for different entity types
	PostKeyPrefix    = "post:"
	RequestKeyPrefix = "request:"
)

func postKey(id string) []byte {
	return []byte(PostKeyPrefix + id)
}

func requestKey(id string) []byte {
	return []byte(RequestKeyPrefix + id)
}

// txnRunner hides whether repository calls open their own Badger
// transaction or join one already in progress.
type txnRunner interface {
	view(fn func(txn *badger.Txn) error) error
	update(fn func(txn *badger.Txn) error) error
	// atomic runs a read-modify-write. On its own transaction it is retried
	// until it commits without a conflict; a bound transaction runs it once.
	atomic(fn func(txn *badger.Txn) error) error
}

type dbRunner struct {
	db *badger.DB
}

func (r dbRunner) view(fn func(txn *badger.Txn) error) error   { return r.db.View(fn) }
func (r dbRunner) update(fn func(txn *badger.Txn) error) error { return r.db.Update(fn) }

func (r dbRunner) atomic(fn func(txn *badger.Txn) error) error {
	for {
		err := r.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
}

type boundRunner struct {
	txn *badger.Txn
}

func (r boundRunner) view(fn func(txn *badger.Txn) error) error   { return fn(r.txn) }
func (r boundRunner) update(fn func(txn *badger.Txn) error) error { return fn(r.txn) }
func (r boundRunner) atomic(fn func(txn *badger.Txn) error) error { return fn(r.txn) }

// getEntity loads the JSON document stored under key into entity.
func getEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return unmarshalEntity(val, entity)
	})
}

// putEntity stores entity as JSON under key.
func putEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	data, err := marshalEntity(entity)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

// scanPrefix calls fn with the value of every key under prefix, in key order.
func scanPrefix(txn *badger.Txn, prefix string, fn func(val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %v", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %v", err)
	}
	return nil
}
