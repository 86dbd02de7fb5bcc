package domain

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindExternalTool
	KindIO
	KindConfiguration
)

func (k ErrorKind) String() string {
	switch k {
	case KindExternalTool:
		return "external tool"
	case KindIO:
		return "io"
	case KindConfiguration:
		return "configuration"
	default:
		return "unknown"
	}
}

// Error carries the failure kind so the CLI can map it to an exit code.
type Error struct {
	Kind ErrorKind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Err == nil {
		return msg
	}
	if msg == "" {
		return e.Err.Error()
	}
	return msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ExternalToolError reports a dump program that is missing, failed or timed out.
func ExternalToolError(tool string, err error) error {
	return &Error{Kind: KindExternalTool, Op: tool, Err: err}
}

// IOFault reports a filesystem operation that failed on path.
func IOFault(op, path string, err error) error {
	return &Error{Kind: KindIO, Op: op, Path: path, Err: err}
}

func ConfigurationError(format string, args ...interface{}) error {
	return &Error{Kind: KindConfiguration, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the first domain error in err's chain.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
