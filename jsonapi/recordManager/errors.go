package recordManager

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrUnauthenticated = errors.New("No authenticated actor")
	ErrNotFound        = errors.New("Record not found")
	ErrInvalidInput    = errors.New("Invalid record data")
)

// PersistenceError is returned when the collection could not be written or read.
// The in-memory collection is left as it was before the failed call.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return "persisting records failed (" + e.Op + "): " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// ValidationError carries the translation key of every invalid field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return ErrInvalidInput.Error() + ": " + strings.Join(fields, ",")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
