// Package mongostore implements the repositories on MongoDB, one collection
// per entity.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"volunvibe/app/repositories"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// writeConflictCode is the server error code for a transactional write conflict.
const writeConflictCode = 112

// Options configures the connection.
type Options struct {
	URI                string
	Database           string
	PostsCollection    string
	RequestsCollection string
}

// Store implements repositories.Store on MongoDB.
type Store struct {
	client   *mongo.Client
	posts    *PostRepository
	requests *RequestRepository
}

// Connect opens a client and verifies the deployment answers a ping.
func Connect(ctx context.Context, opts Options) (*Store, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)
	clientOpts := options.Client().
		ApplyURI(opts.URI).
		SetServerAPIOptions(serverAPI).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	store := New(client, opts)
	if err := store.Ping(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return store, nil
}

// New wraps an existing client.
func New(client *mongo.Client, opts Options) *Store {
	db := client.Database(opts.Database)
	return &Store{
		client:   client,
		posts:    &PostRepository{coll: db.Collection(opts.PostsCollection)},
		requests: &RequestRepository{coll: db.Collection(opts.RequestsCollection)},
	}
}

// Posts returns the posts collection repository
func (s *Store) Posts() repositories.PostRepository {
	return s.posts
}

// Requests returns the requests collection repository
func (s *Store) Requests() repositories.RequestRepository {
	return s.requests
}

// RunInTransaction runs fn inside a session transaction. The repositories
// join the transaction through the context handed to fn.
func (s *Store) RunInTransaction(ctx context.Context, fn repositories.TxFunc) error {
	session, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		return nil, fn(ctx, s.posts, s.requests)
	})
	return translateError(err)
}

// Ping checks that the primary answers
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client
func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

// translateError maps driver errors onto the repository sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repositories.ErrNotFound
	}
	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) && serverErr.HasErrorCode(writeConflictCode) {
		return fmt.Errorf("%w: %v", repositories.ErrConflict, err)
	}
	return err
}
