package categories

import (
	"fmt"
	"strings"

	"github.com/comal-erp/comal-erp/internal/masterdata/shared"
)

func (s *Service) validate(c Category) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: category name", shared.ErrRequiredField)
	}
	return nil
}
