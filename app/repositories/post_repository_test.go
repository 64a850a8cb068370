package repositories

import (
	"context"
	"sync"
	"testing"
	"time"

	"volunvibe/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func newPost(title string, deadline time.Time, slots int) *models.Post {
	post := &models.Post{
		Title:          title,
		OrganizerEmail: "a@x.com",
		Deadline:       deadline,
		SlotsRemaining: slots,
	}
	post.BeforeCreate()
	return post
}

func TestPostRepository(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	repo := store.Posts()

	t.Run("create and get post", func(t *testing.T) {
		post := newPost("Tree Planting", time.Now().Add(24*time.Hour), 5)
		post.Extra = map[string]any{"shift": "morning"}

		err := repo.Create(ctx, post)
		require.NoError(t, err)
		assert.False(t, post.ID.IsZero())

		retrieved, err := repo.GetByID(ctx, post.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, post.Title, retrieved.Title)
		assert.Equal(t, 5, retrieved.SlotsRemaining)
		assert.Equal(t, "morning", retrieved.Extra["shift"])
	})

	t.Run("get missing post", func(t *testing.T) {
		_, err := repo.GetByID(ctx, bson.NewObjectID().Hex())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("get malformed id", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "42")
		assert.ErrorIs(t, err, models.ErrInvalidID)
	})

	t.Run("patch existing post", func(t *testing.T) {
		post := newPost("Original Title", time.Now().Add(24*time.Hour), 3)
		require.NoError(t, repo.Create(ctx, post))

		patch, err := models.DecodePostPatch([]byte(`{"title": "Updated Title"}`))
		require.NoError(t, err)

		result, err := repo.Patch(ctx, post.ID.Hex(), patch, true)
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.MatchedCount)
		assert.Equal(t, int64(1), result.ModifiedCount)
		assert.Equal(t, int64(0), result.UpsertedCount)

		updated, err := repo.GetByID(ctx, post.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, "Updated Title", updated.Title)
		assert.Equal(t, 3, updated.SlotsRemaining)
	})

	t.Run("patch with identical values", func(t *testing.T) {
		post := newPost("Same", time.Now().Add(24*time.Hour), 3)
		require.NoError(t, repo.Create(ctx, post))

		patch, err := models.DecodePostPatch([]byte(`{"title": "Same"}`))
		require.NoError(t, err)

		result, err := repo.Patch(ctx, post.ID.Hex(), patch, true)
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.MatchedCount)
		assert.Equal(t, int64(0), result.ModifiedCount)
	})

	t.Run("patch absent post upserts", func(t *testing.T) {
		id := bson.NewObjectID().Hex()
		patch, err := models.DecodePostPatch([]byte(`{"title": "Fresh", "organizerEmail": "a@x.com", "slotsRemaining": 2}`))
		require.NoError(t, err)

		result, err := repo.Patch(ctx, id, patch, true)
		require.NoError(t, err)
		assert.Equal(t, int64(0), result.MatchedCount)
		assert.Equal(t, int64(1), result.UpsertedCount)
		assert.Equal(t, id, result.UpsertedID)

		created, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Fresh", created.Title)
		assert.Equal(t, 2, created.SlotsRemaining)
	})

	t.Run("patch absent post without upsert", func(t *testing.T) {
		id := bson.NewObjectID().Hex()
		patch, err := models.DecodePostPatch([]byte(`{"title": "Ghost"}`))
		require.NoError(t, err)

		result, err := repo.Patch(ctx, id, patch, false)
		require.NoError(t, err)
		assert.Equal(t, int64(0), result.MatchedCount)
		assert.Equal(t, int64(0), result.UpsertedCount)

		_, err = repo.GetByID(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete post", func(t *testing.T) {
		post := newPost("Post to Delete", time.Now().Add(24*time.Hour), 1)
		require.NoError(t, repo.Create(ctx, post))

		deleted, err := repo.Delete(ctx, post.ID.Hex())
		assert.NoError(t, err)
		assert.True(t, deleted)

		_, err = repo.GetByID(ctx, post.ID.Hex())
		assert.ErrorIs(t, err, ErrNotFound)

		deleted, err = repo.Delete(ctx, post.ID.Hex())
		assert.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("adjust slots", func(t *testing.T) {
		post := newPost("Food Drive", time.Now().Add(24*time.Hour), 1)
		require.NoError(t, repo.Create(ctx, post))

		matched, err := repo.AdjustSlots(ctx, post.ID.Hex(), -1)
		require.NoError(t, err)
		assert.True(t, matched)

		// Decrements are unconditional and may go negative.
		matched, err = repo.AdjustSlots(ctx, post.ID.Hex(), -1)
		require.NoError(t, err)
		assert.True(t, matched)

		adjusted, err := repo.GetByID(ctx, post.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, -1, adjusted.SlotsRemaining)

		matched, err = repo.AdjustSlots(ctx, bson.NewObjectID().Hex(), 1)
		require.NoError(t, err)
		assert.False(t, matched)
	})
}

func TestPostRepositoryList(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	repo := store.Posts()

	now := time.Now()
	titles := []string{"Beach Cleanup", "Tree Planting", "Food Drive", "Beach Volleyball Camp", "Library Help", "Soup Kitchen", "Park Cleanup", "Animal Shelter"}
	for i, title := range titles {
		// Deadlines run backwards so key order differs from deadline order.
		post := newPost(title, now.Add(time.Duration(len(titles)-i)*time.Hour), 2)
		if i%2 == 1 {
			post.OrganizerEmail = "b@x.com"
		}
		require.NoError(t, repo.Create(ctx, post))
	}

	t.Run("all posts", func(t *testing.T) {
		posts, err := repo.List(ctx, models.PostFilter{})
		require.NoError(t, err)
		assert.Len(t, posts, len(titles))
	})

	t.Run("title search is case insensitive", func(t *testing.T) {
		posts, err := repo.List(ctx, models.PostFilter{TitleContains: "BEACH"})
		require.NoError(t, err)
		assert.Len(t, posts, 2)

		posts, err = repo.List(ctx, models.PostFilter{TitleContains: "clean"})
		require.NoError(t, err)
		assert.Len(t, posts, 2)
	})

	t.Run("by organizer", func(t *testing.T) {
		posts, err := repo.List(ctx, models.PostFilter{OrganizerEmail: "b@x.com"})
		require.NoError(t, err)
		assert.Len(t, posts, 4)
		for _, post := range posts {
			assert.Equal(t, "b@x.com", post.OrganizerEmail)
		}
	})

	t.Run("nearest deadlines first", func(t *testing.T) {
		posts, err := repo.List(ctx, models.PostFilter{SortByDeadline: true, Limit: 6})
		require.NoError(t, err)
		require.Len(t, posts, 6)
		assert.Equal(t, "Animal Shelter", posts[0].Title)
		for i := 1; i < len(posts); i++ {
			assert.False(t, posts[i].Deadline.Before(posts[i-1].Deadline))
		}
	})

	t.Run("no match returns empty slice", func(t *testing.T) {
		posts, err := repo.List(ctx, models.PostFilter{TitleContains: "nothing like this"})
		require.NoError(t, err)
		assert.NotNil(t, posts)
		assert.Empty(t, posts)
	})
}

func TestPostRepositoryListUnderLimit(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t).Posts()

	now := time.Now()
	for i, title := range []string{"Food Drive", "Beach Cleanup", "Tree Planting"} {
		require.NoError(t, repo.Create(ctx, newPost(title, now.Add(time.Duration(3-i)*time.Hour), 2)))
	}

	posts, err := repo.List(ctx, models.PostFilter{SortByDeadline: true, Limit: 6})
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "Tree Planting", posts[0].Title)
	assert.Equal(t, "Beach Cleanup", posts[1].Title)
	assert.Equal(t, "Food Drive", posts[2].Title)
}

func TestPostRepositoryConcurrentAdjustSlots(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	repo := store.Posts()

	post := newPost("Tree Planting", time.Now().Add(time.Hour), 50)
	require.NoError(t, repo.Create(ctx, post))
	id := post.ID.Hex()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			matched, err := repo.AdjustSlots(ctx, id, -1)
			assert.NoError(t, err)
			assert.True(t, matched)
		}()
	}
	wg.Wait()

	stored, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 30, stored.SlotsRemaining)

	t.Run("bound transaction still reports conflicts", func(t *testing.T) {
		err := store.RunInTransaction(ctx, func(ctx context.Context, posts PostRepository, _ RequestRepository) error {
			if _, err := posts.GetByID(ctx, id); err != nil {
				return err
			}
			// Commit a competing write between the read and this transaction's write.
			if _, err := repo.AdjustSlots(ctx, id, -1); err != nil {
				return err
			}
			_, err := posts.AdjustSlots(ctx, id, -1)
			return err
		})
		assert.ErrorIs(t, err, ErrConflict)

		stored, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 29, stored.SlotsRemaining)
	})
}
