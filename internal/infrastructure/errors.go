package infra

import (
	"fmt"

	"github.com/Mujahid2000/lms/internal/infrastructure/validate"
)

// NetworkError transport level failure, no response was received
type NetworkError struct {
	Method  string
	Path    string
	TraceID string
	Err     error
}

func (ne *NetworkError) Error() string {
	return fmt.Sprintf("network failure on %s %s: %s", ne.Method, ne.Path, ne.Err)
}

func (ne *NetworkError) Unwrap() error {
	return ne.Err
}

// UnauthorizedError auth was rejected and the refresh flow is exhausted
type UnauthorizedError struct {
	Method  string
	Path    string
	TraceID string
}

func (ue *UnauthorizedError) Error() string {
	return fmt.Sprintf("unauthorized on %s %s, session ended", ue.Method, ue.Path)
}

// ServerError remote returned a non-2xx, non-401 status
type ServerError struct {
	Method  string
	Path    string
	TraceID string
	Status  int
	Detail  string
}

func (se *ServerError) Error() string {
	if se.Detail == "" {
		return fmt.Sprintf("server returned %d on %s %s", se.Status, se.Method, se.Path)
	}
	return fmt.Sprintf("server returned %d on %s %s: %s", se.Status, se.Method, se.Path, se.Detail)
}

// ValidationError payload was rejected, either locally before sending
// or by the remote service
type ValidationError struct {
	Detail string
	Fields []*validate.FieldError
}

func (ve *ValidationError) Error() string {
	return ve.Detail
}

// StateConflictError a progression transition was requested against a
// lecture that is not eligible for it. Local only, never sent upstream
type StateConflictError struct {
	Op        string
	LectureID string
	Detail    string
}

func (sce *StateConflictError) Error() string {
	return fmt.Sprintf("%s rejected for lecture %s: %s", sce.Op, sce.LectureID, sce.Detail)
}
