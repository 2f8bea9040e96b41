package valuation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDomain is wrapped by every DomainError so callers can use errors.Is.
var ErrDomain = errors.New("valuation domain error")

// Violation is a single failed input constraint.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every constraint the raw input violated.
type ValidationError struct {
	Violations []Violation `json:"violations"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return "invalid valuation input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, format string, args ...interface{}) {
	e.Violations = append(e.Violations, Violation{Field: field, Message: fmt.Sprintf(format, args...)})
}

// orNil returns nil when nothing was recorded, so the result can be returned as error directly.
func (e *ValidationError) orNil() error {
	if len(e.Violations) == 0 {
		return nil
	}
	return e
}

// DomainError reports inputs that are individually valid but make the Gordon growth
// terminal value undefined (WACC at or below the terminal growth rate).
type DomainError struct {
	WACC   float64 `json:"wacc"`
	Growth float64 `json:"terminal_growth_rate"`
	Scope  string  `json:"scope"` // "base case" or "sensitivity[r][c]"
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: wacc %.4f must exceed terminal growth rate %.4f", e.Scope, e.WACC, e.Growth)
}

func (e *DomainError) Unwrap() error { return ErrDomain }
