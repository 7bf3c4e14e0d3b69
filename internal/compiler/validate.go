package compiler

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/roach88/termstore/internal/schema"
)

// Validation error codes (E100-E199)
const (
	ErrNoIdentity         = "E101" // assemblage uuid is nil
	ErrDescriptionEmpty   = "E102" // description is required
	ErrColumnOrder        = "E103" // columns must be numbered 0..n-1
	ErrInvalidColumn      = "E104" // column row rejected by the decoder
	ErrDuplicateName      = "E105" // duplicate column name
	ErrDuplicateLabel     = "E106" // duplicate column label
	ErrInvalidRestriction = "E107" // restriction row rejected by the decoder
	ErrMissingColumnLabel = "E108" // column label is nil
)

// ValidationError represents a definition validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled definition against the rules schema.Define
// enforces. Returns all errors found (does not fail-fast).
func Validate(def *schema.Definition) []ValidationError {
	var errs []ValidationError

	// E101: identity
	if def.Assemblage == uuid.Nil {
		errs = append(errs, ValidationError{
			Field:   "uuid",
			Message: "assemblage has no identity",
			Code:    ErrNoIdentity,
		})
	}

	// E102: description is required
	if strings.TrimSpace(def.Description) == "" {
		errs = append(errs, ValidationError{
			Field:   "description",
			Message: "description is required and must be non-empty",
			Code:    ErrDescriptionEmpty,
		})
	}

	names := make(map[string]bool)
	labels := make(map[uuid.UUID]bool)
	for i, c := range def.Columns {
		field := fmt.Sprintf("columns[%d]", i)

		if c.Order != i {
			errs = append(errs, ValidationError{
				Field:   field + ".order",
				Message: fmt.Sprintf("column %d found where column %d was expected", c.Order, i),
				Code:    ErrColumnOrder,
			})
		}

		if c.Name != "" {
			if names[c.Name] {
				errs = append(errs, ValidationError{
					Field:   field + ".name",
					Message: fmt.Sprintf("duplicate column name: %q", c.Name),
					Code:    ErrDuplicateName,
				})
			}
			names[c.Name] = true
		}

		if c.Label == uuid.Nil {
			errs = append(errs, ValidationError{
				Field:   field + ".label",
				Message: "column label is required",
				Code:    ErrMissingColumnLabel,
			})
		} else {
			if labels[c.Label] {
				errs = append(errs, ValidationError{
					Field:   field + ".label",
					Message: fmt.Sprintf("duplicate column label: %s", c.Label),
					Code:    ErrDuplicateLabel,
				})
			}
			labels[c.Label] = true
		}

		if _, err := schema.DecodeColumn(schema.EncodeColumn(c)); err != nil {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: err.Error(),
				Code:    ErrInvalidColumn,
			})
		}
	}

	if row := schema.EncodeRestriction(def.RestrictionType, def.RestrictionSubtype); row != nil {
		if _, _, err := schema.DecodeRestriction(row); err != nil {
			errs = append(errs, ValidationError{
				Field:   "restriction",
				Message: err.Error(),
				Code:    ErrInvalidRestriction,
			})
		}
	}

	return errs
}
