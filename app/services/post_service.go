package services

import (
	"context"
	"errors"

	apperrors "volunvibe/app/errors"
	"volunvibe/app/models"
	"volunvibe/app/repositories"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

// TopPostsLimit caps the nearest-deadline listing.
const TopPostsLimit = 6

// PostService handles business logic for volunteer posts
type PostService struct {
	store  repositories.Store
	ledger *Ledger
	logger *zap.Logger
}

// NewPostService creates a new PostService
func NewPostService(store repositories.Store, ledger *Ledger, logger *zap.Logger) *PostService {
	return &PostService{
		store:  store,
		ledger: ledger,
		logger: logger.Named("posts"),
	}
}

// ListPosts returns every post, optionally only those whose title contains search
func (s *PostService) ListPosts(ctx context.Context, search string) ([]*models.Post, error) {
	return s.list(ctx, models.PostFilter{TitleContains: search})
}

// TopPosts returns the posts closest to their deadline
func (s *PostService) TopPosts(ctx context.Context) ([]*models.Post, error) {
	return s.list(ctx, models.PostFilter{SortByDeadline: true, Limit: TopPostsLimit})
}

// ListPostsByOrganizer returns the posts organized by email. Only that
// organizer may list them.
func (s *PostService) ListPostsByOrganizer(ctx context.Context, caller, email string) ([]*models.Post, error) {
	if caller != email {
		return nil, apperrors.Forbidden("forbidden access", nil)
	}
	return s.list(ctx, models.PostFilter{OrganizerEmail: email})
}

func (s *PostService) list(ctx context.Context, filter models.PostFilter) ([]*models.Post, error) {
	posts, err := s.store.Posts().List(ctx, filter)
	if err != nil {
		return nil, storeError("failed to list posts", err)
	}
	if err := s.ledger.Project(ctx, posts...); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost retrieves a post by ID. A missing post is not an error: it
// yields nil.
func (s *PostService) GetPost(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.store.Posts().GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("failed to get post", err)
	}
	if err := s.ledger.Project(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// CreatePost creates a new volunteer post with validation
func (s *PostService) CreatePost(ctx context.Context, post *models.Post) (*models.InsertResult, error) {
	post.ID = bson.NilObjectID
	post.BeforeCreate()
	if err := post.Validate(); err != nil {
		return nil, apperrors.InvalidInput("invalid post", err)
	}

	if err := s.store.Posts().Create(ctx, post); err != nil {
		return nil, storeError("failed to create post", err)
	}

	s.logger.Debug("post created", zap.String("post_id", post.ID.Hex()), zap.String("organizer", post.OrganizerEmail))
	return &models.InsertResult{Acknowledged: true, InsertedID: post.ID.Hex()}, nil
}

// UpdatePost overwrites the fields present in patch, inserting the post
// when it does not exist. The caller must organize the post both before
// and after the update.
func (s *PostService) UpdatePost(ctx context.Context, caller, id string, patch *models.PostPatch) (*models.UpdateResult, error) {
	if err := patch.Validate(); err != nil {
		return nil, apperrors.InvalidInput("invalid post", err)
	}

	if patch.Has("organizerEmail") && patch.Post.OrganizerEmail != caller {
		return nil, apperrors.Forbidden("cannot hand a post to another organizer", nil)
	}

	var result *models.UpdateResult
	err := s.store.RunInTransaction(ctx, func(ctx context.Context, posts repositories.PostRepository, _ repositories.RequestRepository) error {
		existing, err := posts.GetByID(ctx, id)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			if !patch.Has("organizerEmail") {
				return apperrors.Forbidden("forbidden access", nil)
			}
		case err != nil:
			return storeError("failed to get post", err)
		case !existing.OrganizedBy(caller):
			return apperrors.Forbidden("forbidden access", nil)
		}

		result, err = posts.Patch(ctx, id, patch, true)
		return err
	})
	if err != nil {
		return nil, storeError("failed to update post", err)
	}
	return result, nil
}

// DeletePost deletes a post. Requests made against it are left in place.
func (s *PostService) DeletePost(ctx context.Context, id string) (*models.DeleteResult, error) {
	deleted, err := s.store.Posts().Delete(ctx, id)
	if err != nil {
		return nil, storeError("failed to delete post", err)
	}

	result := &models.DeleteResult{Acknowledged: true}
	if deleted {
		result.DeletedCount = 1
	}
	return result, nil
}
