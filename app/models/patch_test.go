package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestDecodePostPatch(t *testing.T) {
	t.Run("collects present fields", func(t *testing.T) {
		patch, err := DecodePostPatch([]byte(`{"_id": "` + bson.NewObjectID().Hex() + `", "title": "New", "slotsRemaining": 2}`))
		require.NoError(t, err)

		assert.Equal(t, []string{"slotsRemaining", "title"}, patch.Fields())
		assert.True(t, patch.Has("title"))
		assert.False(t, patch.Has("_id"))
		assert.False(t, patch.Has("deadline"))
		assert.Equal(t, "New", patch.Post.Title)
	})

	t.Run("empty body", func(t *testing.T) {
		_, err := DecodePostPatch([]byte(`{}`))
		assert.ErrorIs(t, err, ErrEmptyPatch)
	})

	t.Run("only id", func(t *testing.T) {
		_, err := DecodePostPatch([]byte(`{"_id": "` + bson.NewObjectID().Hex() + `"}`))
		assert.ErrorIs(t, err, ErrEmptyPatch)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := DecodePostPatch([]byte(`{"title": `))
		assert.Error(t, err)
	})
}

func TestPostPatchValidate(t *testing.T) {
	patch, err := DecodePostPatch([]byte(`{"title": "Only the title"}`))
	require.NoError(t, err)
	assert.NoError(t, patch.Validate(), "absent required fields are not checked")

	patch, err = DecodePostPatch([]byte(`{"organizerEmail": "nope"}`))
	require.NoError(t, err)
	assert.Error(t, patch.Validate())

	patch, err = DecodePostPatch([]byte(`{"slotsRemaining": -3}`))
	require.NoError(t, err)
	assert.Error(t, patch.Validate())

	patch, err = DecodePostPatch([]byte(`{"shift": "evening"}`))
	require.NoError(t, err)
	assert.NoError(t, patch.Validate())
}

func TestPostPatchApplyTo(t *testing.T) {
	deadline := time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)
	post := &Post{
		ID:             bson.NewObjectID(),
		Title:          "Tree Planting",
		Description:    "Plant 100 trees",
		OrganizerEmail: "a@x.com",
		Deadline:       deadline,
		SlotsRemaining: 5,
	}
	id := post.ID

	patch, err := DecodePostPatch([]byte(`{"title": "Tree Planting II", "slotsRemaining": 7, "shift": "morning"}`))
	require.NoError(t, err)
	require.NoError(t, patch.ApplyTo(post))

	assert.Equal(t, id, post.ID)
	assert.Equal(t, "Tree Planting II", post.Title)
	assert.Equal(t, 7, post.SlotsRemaining)
	assert.Equal(t, "Plant 100 trees", post.Description)
	assert.Equal(t, "a@x.com", post.OrganizerEmail)
	assert.True(t, deadline.Equal(post.Deadline))
	assert.Equal(t, "morning", post.Extra["shift"])
}

func TestParseID(t *testing.T) {
	oid := bson.NewObjectID()

	parsed, err := ParseID(oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid, parsed)

	_, err = ParseID("not-an-id")
	assert.ErrorIs(t, err, ErrInvalidID)
}
