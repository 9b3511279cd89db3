package production

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/comal-erp/comal-erp/internal/costing"
)

// Coster explodes captured production into period cost totals.
type Coster interface {
	Rollup(ctx context.Context, records []costing.ProductionRecord) (*costing.Rollup, error)
}

type Service struct {
	repo   Repository
	coster Coster
	logger *slog.Logger
}

func NewService(repo Repository, coster Coster, logger *slog.Logger) *Service {
	return &Service{repo: repo, coster: coster, logger: logger}
}

// Capture stores one production row. An empty idempotency key gets a fresh
// one so every insert goes through the same conflict path.
func (s *Service) Capture(ctx context.Context, input CaptureInput) (Record, error) {
	day, err := time.Parse("2006-01-02", input.Day)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrInvalidCapture, err)
	}

	record := Record{
		BranchID:       input.BranchID,
		ProductID:      input.ProductID,
		Day:            day,
		Quantity:       input.Quantity,
		IdempotencyKey: input.IdempotencyKey,
	}
	if record.IdempotencyKey == "" {
		record.IdempotencyKey = uuid.NewString()
	}

	stored, err := s.repo.Insert(ctx, record)
	if err != nil {
		return Record{}, fmt.Errorf("insert production record: %w", err)
	}
	return stored, nil
}

func (s *Service) List(ctx context.Context, filter PeriodFilter) ([]Record, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Rollup explodes every captured product in the period and aggregates the
// result per product and per day. Products whose explosion fails are
// reported in the rollup's failure list rather than failing the period.
func (s *Service) Rollup(ctx context.Context, filter PeriodFilter) (*costing.Rollup, error) {
	records, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list production records: %w", err)
	}

	costRecords := make([]costing.ProductionRecord, 0, len(records))
	for _, record := range records {
		costRecords = append(costRecords, costing.ProductionRecord{
			ProductID: record.ProductID,
			Quantity:  record.Quantity,
			Day:       record.Day,
		})
	}

	rollup, err := s.coster.Rollup(ctx, costRecords)
	if err != nil {
		return nil, err
	}
	if len(rollup.Failures) > 0 {
		s.logger.Warn("production rollup had failures",
			"branch_id", filter.BranchID, "failures", len(rollup.Failures))
	}
	return rollup, nil
}
