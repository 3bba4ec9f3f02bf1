// Package ingest syncs plain-text documents from a directory into the
// Tier-3 vault.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BaSui01/nexuscore/semantic"
	"github.com/BaSui01/nexuscore/types"
)

// Report summarizes one directory sync.
type Report struct {
	Ingested int
	Skipped  int
	Failed   int
}

// Syncer walks a docs directory and ingests every .txt and .md file
// whose content is not already in the vault. Document identity is the
// sha256 of the file content, so an edited file re-ingests as a new
// document while an untouched one is skipped.
type Syncer struct {
	store   semantic.Store
	logger  *zap.Logger
	limiter *rate.Limiter
	now     func() time.Time
}

// NewSyncer creates a Syncer. docsPerSecond throttles embedding calls
// against the local model; zero or negative disables the throttle.
func NewSyncer(store semantic.Store, docsPerSecond float64, logger *zap.Logger) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if docsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(docsPerSecond), 1)
	}
	return &Syncer{store: store, logger: logger, limiter: limiter, now: time.Now}
}

// SyncDir ingests every supported file directly under dir. Duplicates
// are skipped, unreadable files are counted as failed and logged, and
// the sync continues past both.
func (s *Syncer) SyncDir(ctx context.Context, dir string) (Report, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Report{}, types.NewError(types.ErrInvalidInput,
			fmt.Sprintf("read docs directory %s", dir)).WithCause(err)
	}

	var report Report
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !supportedFile(name) {
			s.logger.Info("skipping unsupported file", zap.String("file", name))
			report.Skipped++
			continue
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return report, err
		}

		switch err := s.ingestFile(ctx, filepath.Join(dir, name), name); {
		case err == nil:
			report.Ingested++
		case err == errDuplicate:
			s.logger.Info("document already in vault", zap.String("file", name))
			report.Skipped++
		case err == errEmpty:
			s.logger.Info("skipping empty file", zap.String("file", name))
			report.Skipped++
		default:
			s.logger.Error("ingestion failed", zap.String("file", name), zap.Error(err))
			report.Failed++
		}
	}
	return report, nil
}

var (
	errDuplicate = fmt.Errorf("duplicate document")
	errEmpty     = fmt.Errorf("empty document")
)

func (s *Syncer) ingestFile(ctx context.Context, path, name string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	content := strings.TrimSpace(string(raw))
	if content == "" {
		return errEmpty
	}

	sum := sha256.Sum256([]byte(content))
	id := hex.EncodeToString(sum[:])

	exists, err := s.store.HasDocument(ctx, id)
	if err != nil {
		return err
	}
	if exists {
		return errDuplicate
	}

	doc := semantic.Document{
		ID:      id,
		Content: content,
		Meta: semantic.Metadata{
			Timestamp:  float64(s.now().UnixNano()) / float64(time.Second),
			SourceName: name,
		},
	}
	if err := s.store.AddDocuments(ctx, []semantic.Document{doc}); err != nil {
		return err
	}
	s.logger.Info("document ingested",
		zap.String("file", name),
		zap.String("id", id[:12]))
	return nil
}

func supportedFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md":
		return true
	}
	return false
}
