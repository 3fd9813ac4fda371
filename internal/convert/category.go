// Package convert translates check-in records between the JSON wire format,
// the domain model and the storage document representation.
package convert

import (
	"fmt"
	"strings"

	"github.com/and161185/smartfit/internal/errs"
	"github.com/and161185/smartfit/internal/model"
)

// ParseCategory decodes stored category text. An exact match wins; otherwise
// the upper-cased text is tried. Anything else is a data-integrity error.
func ParseCategory(text string) (model.Category, error) {
	if c := model.Category(text); c.Valid() {
		return c, nil
	}
	if c := model.Category(strings.ToUpper(text)); c.Valid() {
		return c, nil
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty check-in type: %w", errs.ErrDataIntegrity)
	}
	return "", fmt.Errorf("invalid check-in type %q, expected one of %v: %w", text, model.Categories, errs.ErrDataIntegrity)
}
