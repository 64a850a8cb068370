package mongostore

import (
	"context"

	"volunvibe/app/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// RequestRepository implements repositories.RequestRepository on a collection.
type RequestRepository struct {
	coll *mongo.Collection
}

// Create inserts a new request, assigning an ID when it has none
func (r *RequestRepository) Create(ctx context.Context, request *models.Request) error {
	if request.ID.IsZero() {
		request.ID = bson.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, request)
	return translateError(err)
}

// GetByID retrieves a request by ID
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*models.Request, error) {
	oid, err := models.ParseID(id)
	if err != nil {
		return nil, err
	}

	var request models.Request
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&request); err != nil {
		return nil, translateError(err)
	}
	return &request, nil
}

// List returns the requests matching filter
func (r *RequestRepository) List(ctx context.Context, filter models.RequestFilter) ([]*models.Request, error) {
	cursor, err := r.coll.Find(ctx, requestQuery(filter))
	if err != nil {
		return nil, translateError(err)
	}
	requests := []*models.Request{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, translateError(err)
	}
	return requests, nil
}

// Delete deletes a request by ID and reports whether it existed
func (r *RequestRepository) Delete(ctx context.Context, id string) (bool, error) {
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

// CountByPost counts the requests made against a post
func (r *RequestRepository) CountByPost(ctx context.Context, postID string) (int, error) {
	count, err := r.coll.CountDocuments(ctx, requestQuery(models.RequestFilter{PostID: postID}))
	if err != nil {
		return 0, translateError(err)
	}
	return int(count), nil
}

func requestQuery(filter models.RequestFilter) bson.M {
	query := bson.M{}
	if filter.PostID != "" {
		query["PostId"] = filter.PostID
	}
	if filter.VolunteerEmail != "" {
		query["volunteerEmail"] = filter.VolunteerEmail
	}
	return query
}
