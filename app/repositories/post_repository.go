package repositories

import (
	"bytes"
	"context"
	"sort"

	"volunvibe/app/models"

	"github.com/dgraph-io/badger/v4"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	run txnRunner
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{run: dbRunner{db: db}}
}

// Create creates a new post
func (r *BadgerPostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.ID.IsZero() {
		post.ID = bson.NewObjectID()
	}
	err := r.run.update(func(txn *badger.Txn) error {
		return putEntity(txn, postKey(post.ID.Hex()), post)
	})
	return translateBadgerError(err)
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	if _, err := models.ParseID(id); err != nil {
		return nil, err
	}

	var post models.Post
	err := r.run.view(func(txn *badger.Txn) error {
		return getEntity(txn, postKey(id), &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// List retrieves the posts matching filter
func (r *BadgerPostRepository) List(ctx context.Context, filter models.PostFilter) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := r.run.view(func(txn *badger.Txn) error {
		return scanPrefix(txn, PostKeyPrefix, func(val []byte) error {
			var post models.Post
			if err := unmarshalEntity(val, &post); err != nil {
				return err
			}
			if post.Matches(filter) {
				posts = append(posts, &post)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if filter.SortByDeadline {
		sort.SliceStable(posts, func(i, j int) bool {
			return posts[i].Deadline.Before(posts[j].Deadline)
		})
	}
	if filter.Limit > 0 && len(posts) > filter.Limit {
		posts = posts[:filter.Limit]
	}
	return posts, nil
}

// Patch overwrites the patched fields of a post, inserting it when absent and upsert is set
func (r *BadgerPostRepository) Patch(ctx context.Context, id string, patch *models.PostPatch, upsert bool) (*models.UpdateResult, error) {
	oid, err := models.ParseID(id)
	if err != nil {
		return nil, err
	}

	result := &models.UpdateResult{Acknowledged: true}
	err = r.run.update(func(txn *badger.Txn) error {
		key := postKey(id)

		var post models.Post
		err := getEntity(txn, key, &post)
		switch {
		case err == ErrNotFound:
			if !upsert {
				return nil
			}
			post = models.Post{ID: oid}
			if err := patch.ApplyTo(&post); err != nil {
				return err
			}
			result.UpsertedCount = 1
			result.UpsertedID = id
			return putEntity(txn, key, &post)
		case err != nil:
			return err
		}

		result.MatchedCount = 1
		before, err := marshalEntity(&post)
		if err != nil {
			return err
		}
		if err := patch.ApplyTo(&post); err != nil {
			return err
		}
		after, err := marshalEntity(&post)
		if err != nil {
			return err
		}
		if bytes.Equal(before, after) {
			return nil
		}
		result.ModifiedCount = 1
		return txn.Set(key, after)
	})
	if err != nil {
		return nil, translateBadgerError(err)
	}
	return result, nil
}

// Delete deletes a post by ID and reports whether it existed
func (r *BadgerPostRepository) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := models.ParseID(id); err != nil {
		return false, err
	}

	deleted := false
	err := r.run.update(func(txn *badger.Txn) error {
		key := postKey(id)

		// Verify post exists
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

// AdjustSlots adds delta to the post's slotsRemaining. Concurrent calls
// never lose an increment.
func (r *BadgerPostRepository) AdjustSlots(ctx context.Context, id string, delta int) (bool, error) {
	matched := false
	err := r.run.atomic(func(txn *badger.Txn) error {
		matched = false
		key := postKey(id)

		var post models.Post
		err := getEntity(txn, key, &post)
		if err == ErrNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		matched = true
		post.SlotsRemaining += delta
		return putEntity(txn, key, &post)
	})
	if err != nil {
		return false, translateBadgerError(err)
	}
	return matched, nil
}
