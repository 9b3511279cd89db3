package units

import (
	"fmt"
	"strings"

	"github.com/comal-erp/comal-erp/internal/masterdata/shared"
)

func (s *Service) validate(u Unit) error {
	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("%w: unit name", shared.ErrRequiredField)
	}
	return nil
}
