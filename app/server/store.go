package server

import (
	"context"
	"fmt"

	"volunvibe/app/config"
	"volunvibe/app/repositories"
	"volunvibe/app/repositories/mongostore"

	"go.uber.org/zap"
)

// OpenStore opens the backend selected by cfg.StoreDriver. The caller owns
// the returned store and must close it.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repositories.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		store, err := mongostore.Connect(ctx, mongostore.Options{
			URI:                cfg.MongoURI,
			Database:           cfg.MongoDatabase,
			PostsCollection:    cfg.PostsCollection,
			RequestsCollection: cfg.RequestsCollection,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("connected to mongo", zap.String("database", cfg.MongoDatabase))
		return store, nil
	case config.DriverBadger, "":
		return OpenBadger(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// OpenBadger opens the embedded store at cfg.BadgerPath, or in memory when
// cfg.BadgerInMemory is set.
func OpenBadger(cfg *config.Config, logger *zap.Logger) (*repositories.BadgerStore, error) {
	store, err := repositories.OpenBadger(repositories.BadgerOptions{
		Path:     cfg.BadgerPath,
		InMemory: cfg.BadgerInMemory,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", cfg.BadgerPath, err)
	}
	logger.Info("opened badger store", zap.String("path", cfg.BadgerPath), zap.Bool("in_memory", cfg.BadgerInMemory))
	return store, nil
}
