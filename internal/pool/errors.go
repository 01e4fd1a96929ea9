package pool

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingTitle matches MissingTitleError with errors.Is.
	ErrMissingTitle = errors.New("missing title")

	// ErrAlreadyClaimed is returned when a handle no longer refers to a
	// track in the pool.
	ErrAlreadyClaimed = errors.New("track already claimed")
)

// ExtractionError reports a track whose metadata could not be read.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("read metadata of %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// MissingTitleError reports a track whose metadata has no title.
type MissingTitleError struct {
	Path string
}

func (e *MissingTitleError) Error() string {
	return fmt.Sprintf("%s has no title", e.Path)
}

func (e *MissingTitleError) Is(target error) bool {
	return target == ErrMissingTitle
}
