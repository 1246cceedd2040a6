package adls

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorKind classifies an operational failure.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	// KindInvalidArgument means input validation failed and nothing was sent.
	KindInvalidArgument
	// KindTransport means the exchange itself failed.
	KindTransport
	// KindRemote means the service answered with an error.
	KindRemote
	// KindParse means the reply could not be decoded.
	KindParse
	// KindCanceled means the context ended before the call completed.
	KindCanceled
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInvalidArgument:
		return "invalid-argument"
	case KindTransport:
		return "transport"
	case KindRemote:
		return "remote"
	case KindParse:
		return "parse"
	case KindCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Status is the outcome record of a single call. The builder, executor and
// parser stages each write into the same record; it is never shared between
// calls. A returned value is only meaningful when Successful is true.
type Status struct {
	Successful bool
	Kind       ErrorKind
	Message    string
	HTTPStatus int
	// RemoteException is the exception name reported by the service.
	RemoteException string
	RemoteMessage   string
	RequestID       string
	Cause           error
}

func newStatus() *Status {
	return &Status{Successful: true}
}

// fail records the first failure; later failures do not overwrite it.
func (s *Status) fail(kind ErrorKind, cause error) {
	if !s.Successful {
		return
	}
	s.Successful = false
	s.Kind = kind
	s.Cause = cause
	if cause != nil {
		s.Message = cause.Error()
	}

	var remote *RemoteError
	if errors.As(cause, &remote) {
		s.HTTPStatus = remote.HTTPStatus
		s.RemoteException = remote.Exception
		s.RemoteMessage = remote.Message
		if remote.RequestID != "" {
			s.RequestID = remote.RequestID
		}
	}
}

func (s *Status) invalid(format string, args ...any) {
	s.fail(KindInvalidArgument, errors.Errorf(format, args...))
}

// OpError is returned by every operation that did not succeed.
type OpError struct {
	Op     Operation
	Path   string
	Status Status
}

func (e *OpError) Error() string {
	var b strings.Builder
	b.WriteString("adls: ")
	b.WriteString(string(e.Op))
	if e.Path != "" {
		b.WriteByte(' ')
		b.WriteString(e.Path)
	}
	b.WriteString(": ")
	b.WriteString(e.Status.Kind.String())
	if e.Status.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Status.Message)
	}
	return b.String()
}

func (e *OpError) Unwrap() error {
	return e.Status.Cause
}

func (s *Status) err(op Operation, path string) error {
	if s.Successful {
		return nil
	}
	return &OpError{Op: op, Path: path, Status: *s}
}

// KindOf returns the failure class of err, or KindNone when err is not an
// operation error.
func KindOf(err error) ErrorKind {
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr.Status.Kind
	}
	return KindNone
}

// RemoteError is what a transport returns when the service answered with a
// non-success status.
type RemoteError struct {
	HTTPStatus    int
	Exception     string
	Message       string
	JavaClassName string
	RequestID     string
}

func (e *RemoteError) Error() string {
	if e.Exception == "" {
		return fmt.Sprintf("remote error: status=%d %s", e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("remote error: status=%d %s: %s", e.HTTPStatus, e.Exception, e.Message)
}

// ParseFault is the cause recorded for a reply that could not be decoded.
type ParseFault struct {
	// Category is a short fault class, e.g. "syntax" or "unexpected-token".
	Category string
	Err      error
}

func (f *ParseFault) Error() string {
	return fmt.Sprintf("parse fault (%s): %v", f.Category, f.Err)
}

func (f *ParseFault) Unwrap() error {
	return f.Err
}

func classifyTransportError(err error) ErrorKind {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCanceled
	}
	var remote *RemoteError
	if errors.As(err, &remote) {
		return KindRemote
	}
	return KindTransport
}
