package mongostore

import (
	"context"
	"regexp"

	"volunvibe/app/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// PostRepository implements repositories.PostRepository on a collection.
type PostRepository struct {
	coll *mongo.Collection
}

// Create inserts a new post, assigning an ID when it has none
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.ID.IsZero() {
		post.ID = bson.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, post)
	return translateError(err)
}

// GetByID retrieves a post by ID
func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	oid, err := models.ParseID(id)
	if err != nil {
		return nil, err
	}

	var post models.Post
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&post); err != nil {
		return nil, translateError(err)
	}
	return &post, nil
}

// List returns the posts matching filter
func (r *PostRepository) List(ctx context.Context, filter models.PostFilter) ([]*models.Post, error) {
	query := bson.M{}
	if filter.TitleContains != "" {
		query["title"] = bson.Regex{Pattern: regexp.QuoteMeta(filter.TitleContains), Options: "i"}
	}
	if filter.OrganizerEmail != "" {
		query["organizerEmail"] = filter.OrganizerEmail
	}

	opts := options.Find()
	if filter.SortByDeadline {
		opts.SetSort(bson.D{{Key: "deadline", Value: 1}})
	}
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, translateError(err)
	}
	posts := []*models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, translateError(err)
	}
	return posts, nil
}

// Patch issues a $set of the present fields, upserting when asked.
func (r *PostRepository) Patch(ctx context.Context, id string, patch *models.PostPatch, upsert bool) (*models.UpdateResult, error) {
	oid, err := models.ParseID(id)
	if err != nil {
		return nil, err
	}

	set, err := patchDocument(patch)
	if err != nil {
		return nil, err
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.UpdateOne().SetUpsert(upsert),
	)
	if err != nil {
		return nil, translateError(err)
	}

	result := &models.UpdateResult{
		Acknowledged:  res.Acknowledged,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
	}
	if upserted, ok := res.UpsertedID.(bson.ObjectID); ok {
		result.UpsertedID = upserted.Hex()
	}
	return result, nil
}

// Delete deletes a post by ID and reports whether it existed
func (r *PostRepository) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := models.ParseID(id)
	if err != nil {
		return false, err
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, translateError(err)
	}
	return res.DeletedCount > 0, nil
}

// AdjustSlots applies $inc to slotsRemaining. A reference that is not an
// ObjectID cannot match any post.
func (r *PostRepository) AdjustSlots(ctx context.Context, id string, delta int) (bool, error) {
	oid, err := models.ParseID(id)
	if err != nil {
		return false, nil
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$inc": bson.M{"slotsRemaining": delta}},
	)
	if err != nil {
		return false, translateError(err)
	}
	return res.MatchedCount > 0, nil
}

// patchDocument renders the present fields of patch as a $set document.
// Present fields the encoder omitted as empty are set to null.
func patchDocument(patch *models.PostPatch) (bson.M, error) {
	data, err := bson.Marshal(&patch.Post)
	if err != nil {
		return nil, err
	}
	var full bson.M
	if err := bson.Unmarshal(data, &full); err != nil {
		return nil, err
	}

	set := bson.M{}
	for _, field := range patch.Fields() {
		set[field] = full[field]
	}
	return set, nil
}
