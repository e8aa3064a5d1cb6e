package service

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eduvault/eduvault-api/internal/models"
	appErrors "github.com/eduvault/eduvault-api/pkg/errors"
	"github.com/eduvault/eduvault-api/pkg/storage"
)

type bundleStore interface {
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, error)
}

// BundleConfig tunes the archive assembler.
type BundleConfig struct {
	FetchConcurrency int
	FetchTimeout     time.Duration
}

// BundleService assembles ZIP archives of approved artifacts. Artifacts are
// fetched concurrently under a bounded pool; an entry whose fetch fails or
// times out is skipped, never failing the whole archive.
type BundleService struct {
	store   bundleStore
	fetcher storage.Fetcher
	metrics *MetricsService
	logger  *zap.Logger
	cfg     BundleConfig
}

// NewBundleService constructs the service.
func NewBundleService(store bundleStore, fetcher storage.Fetcher, metrics *MetricsService, cfg BundleConfig, logger *zap.Logger) *BundleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.FetchConcurrency <= 0 {
		cfg.FetchConcurrency = 8
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 15 * time.Second
	}
	return &BundleService{store: store, fetcher: fetcher, metrics: metrics, logger: logger, cfg: cfg}
}

type archiveEntry struct {
	path string
	ref  string
}

// BuildKindArchive bundles every approved artifact of one kind into a flat
// ZIP named after the extracted owner name and distinguishing id.
func (s *BundleService) BuildKindArchive(ctx context.Context, kind models.Kind) ([]byte, error) {
	subs, err := s.store.List(ctx, models.SubmissionFilter{Kind: kind, Status: models.StatusApproved})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list approved submissions")
	}

	entries := make([]archiveEntry, 0, len(subs))
	for _, sub := range subs {
		if sub.ArtifactRef == "" {
			continue
		}
		fields, ferr := sub.Fields()
		if ferr != nil {
			s.logger.Warn("skipping submission with unreadable fields", zap.String("id", sub.ID), zap.Error(ferr))
			continue
		}
		entries = append(entries, archiveEntry{path: archiveEntryName(kind, fields), ref: sub.ArtifactRef})
	}
	if len(entries) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no approved submissions to export")
	}
	return s.assemble(ctx, entries)
}

// BuildCrossKindArchive bundles approved artifacts of every kind, grouped
// into per-kind folders inside the ZIP.
func (s *BundleService) BuildCrossKindArchive(ctx context.Context) ([]byte, error) {
	entries := make([]archiveEntry, 0, 64)
	for _, kind := range projectionOrder {
		subs, err := s.store.List(ctx, models.SubmissionFilter{Kind: kind, Status: models.StatusApproved})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list approved submissions")
		}
		for _, sub := range subs {
			if sub.ArtifactRef == "" {
				continue
			}
			fallback := fmt.Sprintf("receipt_%s", sub.ID)
			entries = append(entries, archiveEntry{
				path: crossArchiveEntryName(kind, sub.ArtifactRef, fallback),
				ref:  sub.ArtifactRef,
			})
		}
	}
	if len(entries) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no approved receipts found across any category")
	}
	return s.assemble(ctx, entries)
}

type fetchedEntry struct {
	path string
	data []byte
}

// assemble fans fetches out over a bounded worker pool and streams results
// into a single ZIP writer. Entry order is whatever completion order the
// fetches produce.
func (s *BundleService) assemble(ctx context.Context, entries []archiveEntry) ([]byte, error) {
	sem := make(chan struct{}, s.cfg.FetchConcurrency)
	// Buffered to capacity so workers never block if the writer bails early.
	results := make(chan fetchedEntry, len(entries))

	var wg sync.WaitGroup
	for _, entry := range entries {
		wg.Add(1)
		go func(e archiveEntry) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			fctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
			defer cancel()
			data, err := s.fetcher.Fetch(fctx, e.ref)
			if err != nil {
				s.logger.Warn("could not fetch artifact, skipping archive entry",
					zap.String("ref", e.ref), zap.Error(err))
				s.metrics.RecordExportSkip()
				return
			}
			results <- fetchedEntry{path: e.path, data: data}
		}(entry)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for res := range results {
		w, err := zw.Create(res.path)
		if err != nil {
			zw.Close() //nolint:errcheck
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "create archive entry")
		}
		if _, err := w.Write(res.data); err != nil {
			zw.Close() //nolint:errcheck
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "write archive entry")
		}
	}
	if err := zw.Close(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "finalize archive")
	}
	return buf.Bytes(), nil
}
