package repositories

import (
	"context"

	"volunvibe/app/models"

	"github.com/dgraph-io/badger/v4"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// BadgerRequestRepository implements RequestRepository using BadgerDB
type BadgerRequestRepository struct {
	run txnRunner
}

// NewBadgerRequestRepository creates a new BadgerRequestRepository
func NewBadgerRequestRepository(db *badger.DB) *BadgerRequestRepository {
	return &BadgerRequestRepository{run: dbRunner{db: db}}
}

// Create creates a new request
func (r *BadgerRequestRepository) Create(ctx context.Context, request *models.Request) error {
	if request.ID.IsZero() {
		request.ID = bson.NewObjectID()
	}
	err := r.run.update(func(txn *badger.Txn) error {
		return putEntity(txn, requestKey(request.ID.Hex()), request)
	})
	return translateBadgerError(err)
}

// GetByID retrieves a request by ID
func (r *BadgerRequestRepository) GetByID(ctx context.Context, id string) (*models.Request, error) {
	if _, err := models.ParseID(id); err != nil {
		return nil, err
	}

	var request models.Request
	err := r.run.view(func(txn *badger.Txn) error {
		return getEntity(txn, requestKey(id), &request)
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// List retrieves the requests matching filter
func (r *BadgerRequestRepository) List(ctx context.Context, filter models.RequestFilter) ([]*models.Request, error) {
	requests := []*models.Request{}
	err := r.run.view(func(txn *badger.Txn) error {
		return scanPrefix(txn, RequestKeyPrefix, func(val []byte) error {
			var request models.Request
			if err := unmarshalEntity(val, &request); err != nil {
				return err
			}
			if request.Matches(filter) {
				requests = append(requests, &request)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// Delete deletes a request by ID and reports whether it existed
func (r *BadgerRequestRepository) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := models.ParseID(id); err != nil {
		return false, err
	}

	deleted := false
	err := r.run.update(func(txn *badger.Txn) error {
		key := requestKey(id)

		_, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		deleted = true
		return txn.Delete(key)
	})
	if err != nil {
		return false, translateBadgerError(err)
	}
	return deleted, nil
}

// CountByPost counts the requests referencing postID
func (r *BadgerRequestRepository) CountByPost(ctx context.Context, postID string) (int, error) {
	requests, err := r.List(ctx, models.RequestFilter{PostID: postID})
	if err != nil {
		return 0, err
	}
	return len(requests), nil
}
