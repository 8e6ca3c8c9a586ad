package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projectd/internal/logging"
)

// DB manages the badgerhold store.
type DB struct {
	store  *badgerhold.Store
	logger *logging.Logger
	path   string
}

// Open opens (or creates) the store at dir.
func Open(ctx context.Context, dir string, logger *logging.Logger) (*DB, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = dir
	options.ValueDir = dir
	options.Logger = badgerLogger{logger.Underlying().Sugar()}

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	logger.Debug(ctx, "badger store opened", zap.String("path", dir))
	return &DB{store: store, logger: logger, path: dir}, nil
}

// Store returns the underlying badgerhold store.
func (d *DB) Store() *badgerhold.Store {
	return d.store
}

// Close closes the store.
func (d *DB) Close() error {
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// badgerLogger routes badger's internal logging through zap. Badger is chatty
// at info level, so info is demoted to debug.
type badgerLogger struct {
	s *zap.SugaredLogger
}

var _ badger.Logger = badgerLogger{}

func (b badgerLogger) Errorf(format string, args ...interface{})   { b.s.Errorf(format, args...) }
func (b badgerLogger) Warningf(format string, args ...interface{}) { b.s.Warnf(format, args...) }
func (b badgerLogger) Infof(format string, args ...interface{})    { b.s.Debugf(format, args...) }
func (b badgerLogger) Debugf(format string, args ...interface{})   { b.s.Debugf(format, args...) }
