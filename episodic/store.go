package episodic

import (
	"context"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BaSui01/nexuscore/types"
)

// Store is the Tier-2 ledger boundary. A miss is an empty result, never
// an error; errors mean the store itself is unavailable.
type Store interface {
	// Search returns non-archived entries whose content contains
	// pattern, newest first.
	Search(ctx context.Context, pattern string) ([]Entry, error)

	// Insert persists a summary. A duplicate content hash is
	// success-equivalent and reported via inserted=false.
	Insert(ctx context.Context, content string, timestamp float64, hash string) (inserted bool, err error)

	// CountUnarchived returns the number of entries still accumulating
	// toward consolidation.
	CountUnarchived(ctx context.Context) (int64, error)

	// ArchiveAll marks every unarchived entry archived in one batch.
	ArchiveAll(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}

// SQLiteStore is the gorm-backed ledger over a WAL-mode SQLite file.
type SQLiteStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// OpenSQLiteStore opens (or creates) the ledger at path and migrates
// the schema. WAL journaling is enabled for durable concurrent writes.
func OpenSQLiteStore(path string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, types.NewError(types.ErrStoreUnavailable, "open episodic ledger").WithCause(err)
	}
	if err := db.Exec("PRAGMA journal_mode=WAL;").Error; err != nil {
		return nil, types.NewError(types.ErrStoreUnavailable, "enable WAL journaling").WithCause(err)
	}
	store, err := NewSQLiteStore(db, logger)
	if err != nil {
		return nil, err
	}
	store.logger.Info("episodic ledger ready", zap.String("path", path))
	return store, nil
}

// NewSQLiteStore wraps an existing gorm connection, migrating the
// ledger schema. Used directly by tests.
func NewSQLiteStore(db *gorm.DB, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := db.AutoMigrate(&SessionSummary{}); err != nil {
		return nil, types.NewError(types.ErrStoreUnavailable, "migrate ledger schema").WithCause(err)
	}
	return &SQLiteStore{db: db, logger: logger}, nil
}

// NewStoreWithDB wraps a gorm connection without migrating. Used by
// tests that drive the error path through a mocked connection.
func NewStoreWithDB(db *gorm.DB, logger *zap.Logger) *SQLiteStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLiteStore{db: db, logger: logger}
}

// Search returns non-archived entries containing pattern, newest first.
func (s *SQLiteStore) Search(ctx context.Context, pattern string) ([]Entry, error) {
	var rows []SessionSummary
	err := s.db.WithContext(ctx).
		Where("content LIKE ? AND archived = ?", "%"+pattern+"%", false).
		Order("timestamp DESC").
		Find(&rows).Error
	if err != nil {
		return nil, types.NewError(types.ErrStoreUnavailable, "search episodic ledger").WithCause(err)
	}

	entries := make([]Entry, len(rows))
	for i, r := range rows {
		entries[i] = Entry{Content: r.Content, Timestamp: r.Timestamp, Archived: r.Archived}
	}
	return entries, nil
}

// Insert persists a summary, silently ignoring duplicate content hashes.
func (s *SQLiteStore) Insert(ctx context.Context, content string, timestamp float64, hash string) (bool, error) {
	rec := SessionSummary{
		ID:          uuid.NewString(),
		Timestamp:   timestamp,
		Content:     content,
		Archived:    false,
		ContentHash: hash,
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "content_hash"}},
			DoNothing: true,
		}).
		Create(&rec)
	if res.Error != nil {
		return false, types.NewError(types.ErrStoreUnavailable, "insert session summary").WithCause(res.Error)
	}
	if res.RowsAffected == 0 {
		s.logger.Debug("duplicate summary ignored", zap.String("hash", hash))
		return false, nil
	}
	return true, nil
}

// CountUnarchived returns the number of entries not yet archived.
func (s *SQLiteStore) CountUnarchived(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&SessionSummary{}).
		Where("archived = ?", false).
		Count(&count).Error
	if err != nil {
		return 0, types.NewError(types.ErrStoreUnavailable, "count unarchived summaries").WithCause(err)
	}
	return count, nil
}

// ArchiveAll marks every unarchived entry archived in a single update.
func (s *SQLiteStore) ArchiveAll(ctx context.Context) error {
	err := s.db.WithContext(ctx).
		Model(&SessionSummary{}).
		Where("archived = ?", false).
		Update("archived", true).Error
	if err != nil {
		return types.NewError(types.ErrStoreUnavailable, "archive ledger batch").WithCause(err)
	}
	return nil
}

// Close releases the underlying database connection.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	return sqlDB.Close()
}
