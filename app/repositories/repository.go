package repositories

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("write conflict")
	ErrClosed   = errors.New("store is closed")
)

// BadgerOptions configures an embedded Badger store.
type BadgerOptions struct {
	Path     string
	InMemory bool
	Logger   *zap.Logger
}

// BadgerStore implements Store on an embedded Badger database
type BadgerStore struct {
	db       *badger.DB
	posts    *BadgerPostRepository
	requests *BadgerRequestRepository
	dbPath   string
	isTestDB bool
}

// OpenBadger opens the database described by opts. An empty path without
// InMemory opens a throwaway database in a temporary directory.
func OpenBadger(opts BadgerOptions) (*BadgerStore, error) {
	path := opts.Path
	isTest := false
	if !opts.InMemory && path == "" {
		tempPath, err := os.MkdirTemp("", "volunvibe_test_db_")
		if err != nil {
			return nil, fmt.Errorf("error creating temp dir: %v", err)
		}
		path = tempPath
		isTest = true
	}

	badgerOpts := badger.DefaultOptions(path).
		WithNumVersionsToKeep(1).
		WithLogger(newBadgerLogger(opts.Logger))
	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").
			WithInMemory(true).
			WithLogger(newBadgerLogger(opts.Logger))
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, err
	}

	store := NewBadgerStore(db)
	store.dbPath = path
	store.isTestDB = isTest
	return store, nil
}

// NewBadgerStore wraps an already opened database
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{
		db:       db,
		posts:    NewBadgerPostRepository(db),
		requests: NewBadgerRequestRepository(db),
	}
}

func (s *BadgerStore) Posts() PostRepository {
	return s.posts
}

func (s *BadgerStore) Requests() RequestRepository {
	return s.requests
}

// RunInTransaction runs fn inside one read-write Badger transaction. Any
// error returned by fn discards every write it made.
func (s *BadgerStore) RunInTransaction(ctx context.Context, fn TxFunc) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		run := boundRunner{txn: txn}
		return fn(ctx, &BadgerPostRepository{run: run}, &BadgerRequestRepository{run: run})
	})
	return translateBadgerError(err)
}

// Ping reports whether the database is open and readable
func (s *BadgerStore) Ping(ctx context.Context) error {
	if s.db.IsClosed() {
		return ErrClosed
	}
	return s.db.View(func(txn *badger.Txn) error {
		return nil
	})
}

// Backup writes a full backup of the database to w
func (s *BadgerStore) Backup(w io.Writer) (uint64, error) {
	return s.db.Backup(w, 0)
}

// Restore replaces the database contents with the backup read from r
func (s *BadgerStore) Restore(r io.Reader) error {
	if err := s.Clear(); err != nil {
		return err
	}
	return s.db.Load(r, 256)
}

// Clear drops every key
func (s *BadgerStore) Clear() error {
	return s.db.DropAll()
}

func (s *BadgerStore) Close() error {
	if s.db.IsClosed() {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return err
	}

	// Clean up test database
	if s.isTestDB {
		if err := os.RemoveAll(s.dbPath); err != nil {
			return fmt.Errorf("failed to cleanup test database: %v", err)
		}
	}
	return nil
}

func translateBadgerError(err error) error {
	if errors.Is(err, badger.ErrConflict) {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

// badgerLogger routes Badger's internal logging through zap.
type badgerLogger struct {
	log *zap.SugaredLogger
}

func newBadgerLogger(logger *zap.Logger) badger.Logger {
	if logger == nil {
		return nil
	}
	return &badgerLogger{log: logger.Named("badger").Sugar()}
}

func (l *badgerLogger) Errorf(format string, args ...interface{})   { l.log.Errorf(format, args...) }
func (l *badgerLogger) Warningf(format string, args ...interface{}) { l.log.Warnf(format, args...) }
func (l *badgerLogger) Infof(format string, args ...interface{})    { l.log.Debugf(format, args...) }
func (l *badgerLogger) Debugf(format string, args ...interface{})   { l.log.Debugf(format, args...) }
