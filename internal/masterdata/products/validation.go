package products

import (
	"fmt"
	"strings"

	"github.com/comal-erp/comal-erp/internal/masterdata/shared"
)

func (s *Service) validate(p Product) error {
	if strings.TrimSpace(p.Code) == "" {
		return fmt.Errorf("%w: product code", shared.ErrRequiredField)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product name", shared.ErrRequiredField)
	}
	switch p.Kind {
	case KindRawMaterial, KindSubRecipe, KindDish:
	default:
		return fmt.Errorf("%w: unknown product kind %q", shared.ErrValidation, p.Kind)
	}
	return nil
}
