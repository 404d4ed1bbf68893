package domain

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. The pipeline orchestrator maps each kind to its
// soft or fatal policy; everything else treats them as ordinary errors.
var (
	ErrTranscription   = errors.New("transcription failed")
	ErrExtraction      = errors.New("extraction failed")
	ErrProductNotFound = errors.New("product not found")
	ErrRender          = errors.New("bill rendering failed")
	ErrInvalidInput    = errors.New("invalid input")
	ErrTemporary       = errors.New("temporary failure")
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
