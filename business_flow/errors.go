package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Ingestion errors
	ErrUpstreamUnavailable = errors.New("upstream image provider unavailable")
	ErrEmptyUpstreamBatch  = errors.New("upstream returned no usable items")
	ErrImageDownloadFailed = errors.New("image download failed")

	// Catalog errors
	ErrCatNotFound = errors.New("cat not found")

	// Filter errors
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 100")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsUpstreamUnavailable(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable) || errors.Is(err, ErrEmptyUpstreamBatch)
}

func IsImageDownloadFailed(err error) bool {
	return errors.Is(err, ErrImageDownloadFailed)
}

func IsCatNotFound(err error) bool {
	return errors.Is(err, ErrCatNotFound)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}
