package mock

import (
	"context"
	"sort"
	"sync"

	"volunvibe/app/models"
	"volunvibe/app/repositories"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Store is an in-memory repositories.Store. The Fail* fields inject errors
// into the matching operation so tests can exercise partial failures.
type Store struct {
	mutex    sync.RWMutex
	txMutex  sync.Mutex
	posts    map[string]*models.Post
	requests map[string]*models.Request

	FailAdjust        error
	FailRequestCreate error
	FailRequestDelete error
	FailPing          error

	// Transactions counts RunInTransaction calls.
	Transactions int
}

type PostRepository struct {
	store *Store
}

type RequestRepository struct {
	store *Store
}

func NewStore() *Store {
	return &Store{
		posts:    make(map[string]*models.Post),
		requests: make(map[string]*models.Request),
	}
}

func (m *Store) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.posts = make(map[string]*models.Post)
	m.requests = make(map[string]*models.Request)
}

func (m *Store) Posts() repositories.PostRepository {
	return &PostRepository{store: m}
}

func (m *Store) Requests() repositories.RequestRepository {
	return &RequestRepository{store: m}
}

// RunInTransaction serializes transactions and restores a snapshot of both
// collections when fn fails.
func (m *Store) RunInTransaction(ctx context.Context, fn repositories.TxFunc) error {
	m.txMutex.Lock()
	defer m.txMutex.Unlock()
	m.Transactions++

	m.mutex.RLock()
	posts := make(map[string]*models.Post, len(m.posts))
	for id, post := range m.posts {
		copied := *post
		posts[id] = &copied
	}
	requests := make(map[string]*models.Request, len(m.requests))
	for id, request := range m.requests {
		copied := *request
		requests[id] = &copied
	}
	m.mutex.RUnlock()

	if err := fn(ctx, m.Posts(), m.Requests()); err != nil {
		m.mutex.Lock()
		m.posts = posts
		m.requests = requests
		m.mutex.Unlock()
		return err
	}
	return nil
}

func (m *Store) Ping(ctx context.Context) error {
	return m.FailPing
}

func (m *Store) Close() error {
	return nil
}

// PostRepository implementation
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	m := r.store
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if post.ID.IsZero() {
		post.ID = bson.NewObjectID()
	}
	copied := *post
	m.posts[post.ID.Hex()] = &copied
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	if _, err := models.ParseID(id); err != nil {
		return nil, err
	}

	m := r.store
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	copied := *post
	return &copied, nil
}

func (r *PostRepository) List(ctx context.Context, filter models.PostFilter) ([]*models.Post, error) {
	m := r.store
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	posts := []*models.Post{}
	for _, post := range m.posts {
		if post.Matches(filter) {
			copied := *post
			posts = append(posts, &copied)
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		if filter.SortByDeadline && !posts[i].Deadline.Equal(posts[j].Deadline) {
			return posts[i].Deadline.Before(posts[j].Deadline)
		}
		return posts[i].ID.Hex() < posts[j].ID.Hex()
	})
	if filter.Limit > 0 && len(posts) > filter.Limit {
		posts = posts[:filter.Limit]
	}
	return posts, nil
}

func (r *PostRepository) Patch(ctx context.Context, id string, patch *models.PostPatch, upsert bool) (*models.UpdateResult, error) {
	oid, err := models.ParseID(id)
	if err != nil {
		return nil, err
	}

	m := r.store
	m.mutex.Lock()
	defer m.mutex.Unlock()

	result := &models.UpdateResult{Acknowledged: true}
	post, exists := m.posts[id]
	if !exists {
		if !upsert {
			return result, nil
		}
		post = &models.Post{ID: oid}
		if err := patch.ApplyTo(post); err != nil {
			return nil, err
		}
		m.posts[id] = post
		result.UpsertedCount = 1
		result.UpsertedID = id
		return result, nil
	}

	updated := *post
	if err := patch.ApplyTo(&updated); err != nil {
		return nil, err
	}
	m.posts[id] = &updated
	result.MatchedCount = 1
	result.ModifiedCount = 1
	return result, nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := models.ParseID(id); err != nil {
		return false, err
	}

	m := r.store
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.posts[id]; !exists {
		return false, nil
	}
	delete(m.posts, id)
	return true, nil
}

func (r *PostRepository) AdjustSlots(ctx context.Context, id string, delta int) (bool, error) {
	m := r.store
	if m.FailAdjust != nil {
		return false, m.FailAdjust
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	post, exists := m.posts[id]
	if !exists {
		return false, nil
	}
	post.SlotsRemaining += delta
	return true, nil
}

// RequestRepository implementation
func (r *RequestRepository) Create(ctx context.Context, request *models.Request) error {
	m := r.store
	if m.FailRequestCreate != nil {
		return m.FailRequestCreate
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if request.ID.IsZero() {
		request.ID = bson.NewObjectID()
	}
	copied := *request
	m.requests[request.ID.Hex()] = &copied
	return nil
}

func (r *RequestRepository) GetByID(ctx context.Context, id string) (*models.Request, error) {
	if _, err := models.ParseID(id); err != nil {
		return nil, err
	}

	m := r.store
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	request, exists := m.requests[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	copied := *request
	return &copied, nil
}

func (r *RequestRepository) List(ctx context.Context, filter models.RequestFilter) ([]*models.Request, error) {
	m := r.store
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	requests := []*models.Request{}
	for _, request := range m.requests {
		if request.Matches(filter) {
			copied := *request
			requests = append(requests, &copied)
		}
	}
	sort.Slice(requests, func(i, j int) bool {
		return requests[i].ID.Hex() < requests[j].ID.Hex()
	})
	return requests, nil
}

func (r *RequestRepository) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := models.ParseID(id); err != nil {
		return false, err
	}

	m := r.store
	if m.FailRequestDelete != nil {
		return false, m.FailRequestDelete
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.requests[id]; !exists {
		return false, nil
	}
	delete(m.requests, id)
	return true, nil
}

func (r *RequestRepository) CountByPost(ctx context.Context, postID string) (int, error) {
	requests, err := r.List(ctx, models.RequestFilter{PostID: postID})
	if err != nil {
		return 0, err
	}
	return len(requests), nil
}
