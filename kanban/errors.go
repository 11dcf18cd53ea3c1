package kanban

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Error is the outcome for every expected failure: validation problems carry
// field-keyed message lists, everything else carries a status and a detail
// string. NotFound doubles as the existence-hiding outcome for boards the
// actor may not see.
type Error struct {
	Status int
	Detail string
	Fields map[string][]string
}

func (e *Error) Error() string {
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], "; ")))
		}
		return "validation failed: " + strings.Join(parts, ", ")
	}
	return e.Detail
}

// NotFound hides existence: missing ids and denied visibility look identical.
func NotFound() *Error {
	return &Error{Status: fiber.StatusNotFound, Detail: "Not found"}
}

// Forbidden acknowledges existence but refuses the action.
func Forbidden() *Error {
	return &Error{Status: fiber.StatusForbidden, Detail: "Forbidden"}
}

// Invalid builds a single-field validation error.
func Invalid(field string, messages ...string) *Error {
	return &Error{
		Status: fiber.StatusBadRequest,
		Fields: map[string][]string{field: messages},
	}
}

// newValidation starts an empty validation error so that checks across
// several fields can report together instead of failing fast.
func newValidation() *Error {
	return &Error{Status: fiber.StatusBadRequest, Fields: map[string][]string{}}
}

// Add appends messages for a field and returns the error for chaining.
func (e *Error) Add(field string, messages ...string) *Error {
	e.Fields[field] = append(e.Fields[field], messages...)
	return e
}

// Empty reports whether no field has accumulated a message yet.
func (e *Error) Empty() bool {
	return len(e.Fields) == 0
}

// IsNotFound reports whether err is the NotFound outcome.
func IsNotFound(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Status == fiber.StatusNotFound
}

// IsForbidden reports whether err is the Forbidden outcome.
func IsForbidden(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Status == fiber.StatusForbidden
}
