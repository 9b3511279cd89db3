package products

import (
	"context"
	"errors"
	"log/slog"

	"github.com/comal-erp/comal-erp/internal/costing"
	"github.com/comal-erp/comal-erp/internal/masterdata/shared"
)

// CostInvalidator bumps the costing cache after a write that can change any
// computed cost (prices, weights, conversions).
type CostInvalidator interface {
	Invalidate(ctx context.Context) error
}

// ConversionSuggester matches a raw material's purchase unit against the
// presentation units catalog.
type ConversionSuggester interface {
	ConversionSuggestion(ctx context.Context, productID int64) (*costing.Unit, error)
}

type Service struct {
	repo        Repository
	invalidator CostInvalidator
	suggester   ConversionSuggester
	logger      *slog.Logger
}

func NewService(repo Repository, invalidator CostInvalidator, suggester ConversionSuggester, logger *slog.Logger) *Service {
	return &Service{repo: repo, invalidator: invalidator, suggester: suggester, logger: logger}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, product Product) (Product, error) {
	if err := s.validate(product); err != nil {
		return Product{}, err
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return Product{}, err
	}
	s.invalidate(ctx)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, product Product) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := s.validate(product); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, product); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// SuggestConversionUnit returns the presentation unit whose name matches the
// product's purchase unit, or nil when nothing matches.
func (s *Service) SuggestConversionUnit(ctx context.Context, id int64) (*costing.Unit, error) {
	if id <= 0 {
		return nil, shared.ErrInvalidID
	}
	unit, err := s.suggester.ConversionSuggestion(ctx, id)
	if err != nil {
		var dangling *costing.DanglingReferenceError
		if errors.As(err, &dangling) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return unit, nil
}

// AcceptConversionUnit persists a conversion-unit suggestion the user
// accepted in the raw-materials grid.
func (s *Service) AcceptConversionUnit(ctx context.Context, id, unitID int64) error {
	if id <= 0 || unitID <= 0 {
		return shared.ErrInvalidID
	}
	if err := s.repo.AssignConversionUnit(ctx, id, unitID); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// invalidate is best effort: a failed bump only delays cache refresh until
// the TTL expires, it never fails the write.
func (s *Service) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx); err != nil && s.logger != nil {
		s.logger.Warn("cost cache bump failed", slog.Any("error", err))
	}
}
