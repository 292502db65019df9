package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat: the file extension is not among the recognized set.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrExtraction: a recognized-format file could not be parsed, or yielded no text.
	ErrExtraction = errors.New("extraction failed")
	// ErrSchemaViolation: the service reply contained no valid object matching
	// the response schema. Distinct from connectivity failures.
	ErrSchemaViolation = errors.New("schema violation")
	// ErrClassification: classification retries are exhausted.
	ErrClassification = errors.New("classification failed")
	// ErrMove: the file could not be relocated, including the copy fallback.
	ErrMove = errors.New("move failed")
	// ErrRecordNotFound: audit store lookup miss.
	ErrRecordNotFound = errors.New("record not found")
	// ErrTemporary marks failures worth retrying.
	ErrTemporary = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
