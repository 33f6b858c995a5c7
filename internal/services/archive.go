package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/daybook/internal/clients/redis"
	"github.com/yungbote/daybook/internal/ingestion"
	"github.com/yungbote/daybook/internal/pkg/logger"
	"github.com/yungbote/daybook/internal/reconcile"
)

// ArchiveService is the write path: raw entry documents in, reconciled
// relational state out.
type ArchiveService interface {
	ReconcileDocument(ctx context.Context, raw string, mode reconcile.Mode) (*reconcile.Report, error)
	Reconcile(ctx context.Context, desc *ingestion.EntryDescriptor, mode reconcile.Mode) (*reconcile.Report, error)
	// ReconcileBatch reconciles many documents with bounded parallelism.
	// Entries are independent, so one bad document never blocks the
	// rest; failures come back per item.
	ReconcileBatch(ctx context.Context, docs []string, mode reconcile.Mode) []BatchItem
}

// BatchItem is the per-document outcome of a batch run.
type BatchItem struct {
	Index  int               `json:"index"`
	Date   string            `json:"date,omitempty"`
	Report *reconcile.Report `json:"report,omitempty"`
	Error  string            `json:"error,omitempty"`
}

type archiveService struct {
	log         *logger.Logger
	reconciler  *reconcile.Reconciler
	cache       *redis.Cache
	parallelism int
}

func NewArchiveService(log *logger.Logger, reconciler *reconcile.Reconciler, cache *redis.Cache, parallelism int) ArchiveService {
	if parallelism < 1 {
		parallelism = 1
	}
	return &archiveService{
		log:         log.With("service", "ArchiveService"),
		reconciler:  reconciler,
		cache:       cache,
		parallelism: parallelism,
	}
}

func (s *archiveService) ReconcileDocument(ctx context.Context, raw string, mode reconcile.Mode) (*reconcile.Report, error) {
	desc, err := ingestion.ParseDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("parse entry document: %w", err)
	}
	return s.Reconcile(ctx, desc, mode)
}

func (s *archiveService) Reconcile(ctx context.Context, desc *ingestion.EntryDescriptor, mode reconcile.Mode) (*reconcile.Report, error) {
	report, err := s.reconciler.Reconcile(ctx, desc, mode)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, report)
	return report, nil
}

func (s *archiveService) ReconcileBatch(ctx context.Context, docs []string, mode reconcile.Mode) []BatchItem {
	items := make([]BatchItem, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)
	for i, raw := range docs {
		i, raw := i, raw
		g.Go(func() error {
			item := BatchItem{Index: i}
			report, err := s.ReconcileDocument(gctx, raw, mode)
			if err != nil {
				item.Error = err.Error()
			} else {
				item.Date = report.Date
				item.Report = report
			}
			items[i] = item
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, item := range items {
		if item.Error != "" {
			failed++
		}
	}
	s.log.Info("batch reconcile finished", "documents", len(docs), "failed", failed)
	return items
}

// invalidate drops cached views the pass may have changed: the entry's
// own view plus every entity the pass touched or unlinked.
func (s *archiveService) invalidate(ctx context.Context, report *reconcile.Report) {
	keys := []string{redis.EntryKey(report.Date)}
	for _, d := range report.Deltas {
		for _, id := range d.Touched {
			keys = append(keys, redis.EntityKey(string(d.Kind), id.String()))
		}
		for _, id := range d.RemovedTargets {
			keys = append(keys, redis.EntityKey(string(d.Kind), id.String()))
		}
	}
	s.cache.Invalidate(ctx, keys...)
}
