// Package item handles the ingest side: embed, fuse and persist context
// items so retrieval can find them.
package item

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/studylens/fuserank/internal/domain"
	domitem "github.com/studylens/fuserank/internal/domain/item"
)

// Service ingests, fetches and removes context items.
type Service struct {
	repo   Repository
	fuser  Fuser
	logger *zap.Logger
}

// New creates an item service.
func New(repo Repository, fuser Fuser, logger *zap.Logger) *Service {
	return &Service{repo: repo, fuser: fuser, logger: logger}
}

// Ingest fuses the item's content into a hybrid vector and upserts it.
// Returns true when the item was created rather than overwritten. Unlike
// queries, a degraded fusion here is an error: indexing a zero vector would
// silently poison the collection.
func (s *Service) Ingest(
	ctx context.Context, collection string, it *domitem.Item, images []string,
) (bool, error) {
	res, err := s.fuser.FuseContent(ctx, it.Content(), images)
	if err != nil {
		return false, fmt.Errorf("fuse item %s: %w", it.ID(), err)
	}
	if !res.Success {
		return false, fmt.Errorf("fuse item %s (%s): %w", it.ID(), res.Error, domain.ErrNonFiniteVector)
	}

	it.SetVector(res.Hybrid)

	if err := s.repo.EnsureIndex(ctx, collection, len(res.Hybrid)); err != nil {
		return false, fmt.Errorf("ensure index: %w", err)
	}

	created, err := s.repo.Upsert(ctx, collection, it)
	if err != nil {
		return false, fmt.Errorf("upsert: %w", err)
	}

	s.logger.Debug("Item ingested",
		zap.String("collection", collection),
		zap.String("id", it.ID()),
		zap.Bool("created", created),
		zap.Int("dim", len(res.Hybrid)),
	)
	return created, nil
}

// Get fetches a stored item.
func (s *Service) Get(ctx context.Context, collection, id string) (domitem.Item, error) {
	return s.repo.Get(ctx, collection, id)
}

// Delete removes a stored item.
func (s *Service) Delete(ctx context.Context, collection, id string) error {
	return s.repo.Delete(ctx, collection, id)
}

// Count returns the number of items in a collection.
func (s *Service) Count(ctx context.Context, collection string) (int, error) {
	return s.repo.Count(ctx, collection)
}
