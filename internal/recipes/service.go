package recipes

import (
	"context"
	"fmt"
	"log/slog"
	"math"
)

// CycleProber answers whether candidate edges would close a cycle in the
// current component graph, without persisting anything.
type CycleProber interface {
	ProbeCycle(ctx context.Context, parentID int64, childIDs []int64) error
}

// CostInvalidator bumps cached breakdowns after the graph changes.
type CostInvalidator interface {
	Invalidate(ctx context.Context) error
}

type Service struct {
	repo        Repository
	prober      CycleProber
	invalidator CostInvalidator
	logger      *slog.Logger
}

func NewService(repo Repository, prober CycleProber, invalidator CostInvalidator, logger *slog.Logger) *Service {
	return &Service{repo: repo, prober: prober, invalidator: invalidator, logger: logger}
}

func (s *Service) Kit(ctx context.Context, parentID int64) ([]KitLine, error) {
	if parentID <= 0 {
		return nil, ErrNotFound
	}
	return s.repo.ListByParent(ctx, parentID)
}

// Upsert validates and persists a kit edit. Cycles are rejected before the
// write: a bad kit must never reach the table, where it would break every
// explosion touching it.
func (s *Service) Upsert(ctx context.Context, parentID int64, items []KitItemInput) error {
	if parentID <= 0 {
		return ErrNotFound
	}
	childIDs := make([]int64, 0, len(items))
	for _, item := range items {
		if item.ChildID == parentID {
			return ErrSelfReference
		}
		if item.Quantity <= 0 || math.IsNaN(item.Quantity) || math.IsInf(item.Quantity, 0) {
			return fmt.Errorf("%w: product %d has quantity %v", ErrBadQuantity, item.ChildID, item.Quantity)
		}
		childIDs = append(childIDs, item.ChildID)
	}

	ids := append(childIDs, parentID)
	found, err := s.repo.ProductsExist(ctx, ids)
	if err != nil {
		return err
	}
	if !found[parentID] {
		return ErrNotFound
	}
	for _, id := range childIDs {
		if !found[id] {
			return fmt.Errorf("%w: %d", ErrUnknownChild, id)
		}
	}

	if s.prober != nil {
		if err := s.prober.ProbeCycle(ctx, parentID, childIDs); err != nil {
			return err
		}
	}

	if err := s.repo.Upsert(ctx, parentID, items); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) Delete(ctx context.Context, parentID, childID int64) error {
	if parentID <= 0 || childID <= 0 {
		return ErrNotFound
	}
	if err := s.repo.Delete(ctx, parentID, childID); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx); err != nil && s.logger != nil {
		s.logger.Warn("cost cache bump failed", slog.Any("error", err))
	}
}
