package repositories

import (
	"context"

	"volunvibe/app/models"
)

// PostRepository defines the interface for post data access
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context, filter models.PostFilter) ([]*models.Post, error)
	// Patch overwrites the fields present in patch. When no post matches id
	// and upsert is set, a new post is inserted under id.
	Patch(ctx context.Context, id string, patch *models.PostPatch, upsert bool) (*models.UpdateResult, error)
	Delete(ctx context.Context, id string) (bool, error)
	// AdjustSlots adds delta to slotsRemaining without any bounds check.
	// It reports false when no post matched id.
	AdjustSlots(ctx context.Context, id string, delta int) (bool, error)
}

// RequestRepository defines the interface for volunteer request data access
type RequestRepository interface {
	Create(ctx context.Context, request *models.Request) error
	GetByID(ctx context.Context, id string) (*models.Request, error)
	List(ctx context.Context, filter models.RequestFilter) ([]*models.Request, error)
	Delete(ctx context.Context, id string) (bool, error)
	CountByPost(ctx context.Context, postID string) (int, error)
}

// TxFunc runs against repositories bound to a single store transaction.
type TxFunc func(ctx context.Context, posts PostRepository, requests RequestRepository) error

// Store is the document store holding both collections.
type Store interface {
	Posts() PostRepository
	Requests() RequestRepository
	// RunInTransaction commits every write made by fn or none of them.
	RunInTransaction(ctx context.Context, fn TxFunc) error
	Ping(ctx context.Context) error
	Close() error
}
