package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgnsrekt/tv_drawings/internal/drawing"
	"github.com/dgnsrekt/tv_drawings/internal/session"
	"github.com/dgnsrekt/tv_drawings/internal/surface"
)

const (
	CodeValidation        = "VALIDATION"
	CodeSessionNotFound   = "SESSION_NOT_FOUND"
	CodeStudyNotFound     = "STUDY_NOT_FOUND"
	CodeInteractionLocked = "INTERACTION_LOCKED"
	CodeTimeout           = "TIMEOUT"
	CodeRenderFailure     = "RENDER_FAILURE"
	CodeSnapshotNotFound  = "SNAPSHOT_NOT_FOUND"
	CodeSnapshotsDisabled = "SNAPSHOTS_DISABLED"
	CodeCacheNotFound     = "CACHE_NOT_FOUND"
	CodeSessionOpen       = "SESSION_OPEN"
)

// CodedError is a typed error used for stable API mapping.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *CodedError) Unwrap() error { return e.Cause }

func newError(code, msg string, cause error) error {
	return &CodedError{Code: code, Message: msg, Cause: cause}
}

// classify maps lower-layer errors onto coded errors.
func classify(symbol string, err error) error {
	if err == nil {
		return nil
	}
	var coded *CodedError
	if errors.As(err, &coded) {
		return err
	}
	switch {
	case errors.Is(err, drawing.ErrStudyNotFound):
		return newError(CodeStudyNotFound, err.Error(), nil)
	case errors.Is(err, drawing.ErrInvalidStyle):
		return newError(CodeValidation, err.Error(), nil)
	case errors.Is(err, surface.ErrInteractionLocked):
		return newError(CodeInteractionLocked, "chart interaction is disabled while a drawing is dragged", err)
	case errors.Is(err, session.ErrClosed), errors.Is(err, drawing.ErrClosed):
		return newError(CodeSessionNotFound, "session "+symbol+" is closed", nil)
	case errors.Is(err, context.DeadlineExceeded):
		return newError(CodeTimeout, "session "+symbol+" did not respond", err)
	}
	return err
}
