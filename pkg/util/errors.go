// Package util provides logging helpers and common error types.
package util

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for the failure kinds surfaced by remote execution and
// output parsing. Callers match with errors.Is.
var (
	ErrConnection      = errors.New("connection failed")
	ErrCommandTimeout  = errors.New("command timed out")
	ErrCommandFailed   = errors.New("remote command failed")
	ErrMalformedOutput = errors.New("malformed command output")
	ErrInvalidConfig   = errors.New("invalid configuration")
)

// ConnectKind classifies why a connection attempt failed.
type ConnectKind string

const (
	ConnectAuth        ConnectKind = "auth"
	ConnectTimeout     ConnectKind = "timeout"
	ConnectUnreachable ConnectKind = "unreachable"
	ConnectProtocol    ConnectKind = "protocol"
	ConnectOther       ConnectKind = "other"
)

// ConnectError represents a transport-level failure: dial, authentication,
// or protocol negotiation. Fatal to the invocation; never retried.
type ConnectError struct {
	Target string // "user@host:port"
	Kind   ConnectKind
	Err    error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect %s (%s): %v", e.Target, e.Kind, e.Err)
}

func (e *ConnectError) Unwrap() error { return ErrConnection }

// NewConnectError wraps err with a classification derived from its text.
// x/crypto/ssh exposes no typed causes, so classification is best-effort.
func NewConnectError(target string, err error) *ConnectError {
	return &ConnectError{Target: target, Kind: classifyConnect(err), Err: err}
}

func classifyConnect(err error) ConnectKind {
	if err == nil {
		return ConnectOther
	}
	var timeout interface{ Timeout() bool }
	if errors.As(err, &timeout) && timeout.Timeout() {
		return ConnectTimeout
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "unable to authenticate"),
		strings.Contains(msg, "permission denied"):
		return ConnectAuth
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "no route to host"),
		strings.Contains(msg, "no such host"):
		return ConnectUnreachable
	case strings.Contains(msg, "handshake failed"),
		strings.Contains(msg, "no common algorithm"):
		return ConnectProtocol
	}
	return ConnectOther
}

// CommandError represents a remote command (or batch) that ran and returned
// a non-zero exit status. For batches the failure is all-or-nothing; there
// is no per-sub-command attribution.
type CommandError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command %q exited %d", e.Command, e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *CommandError) Unwrap() error { return ErrCommandFailed }

// TimeoutError represents a command that exceeded its allotted time. The
// remote-side state is indeterminate: prior commands may have applied.
type TimeoutError struct {
	Command string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("command %q timed out after %s", e.Command, e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return ErrCommandTimeout }

// ParseError represents command output that did not match the expected
// JSON/text shape. Raw is kept for diagnosis.
type ParseError struct {
	Reason string
	Raw    string
	Err    error
}

func (e *ParseError) Error() string {
	raw := e.Raw
	if len(raw) > 200 {
		raw = raw[:200] + "..."
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v (raw: %q)", e.Reason, e.Err, raw)
	}
	return fmt.Sprintf("%s (raw: %q)", e.Reason, raw)
}

func (e *ParseError) Unwrap() error { return ErrMalformedOutput }
