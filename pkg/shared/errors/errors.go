package errors

import (
	"fmt"
)

// Process exit codes returned by the CLI.
const (
	ExitFailure    = 1
	ExitInvalidUse = 2
	ExitBelowScore = 3
)

// CommandError is returned by a command to choose the process exit code.
// Result optionally carries whatever the command produced before failing.
type CommandError struct {
	ExitCode    int
	CommonError string
	Result      interface{}
	err         error
}

// Error implements the error interface, returning the message from the common error.
func (e *CommandError) Error() string {
	return e.CommonError
}

func (e *CommandError) Unwrap() error {
	return e.err
}

// NewCommandError wraps err with an exit code and the partial result of the command.
func NewCommandError(result interface{}, err error, code int) *CommandError {
	return &CommandError{
		ExitCode:    code,
		CommonError: err.Error(),
		Result:      result,
		err:         err,
	}
}

// UnsupportedTargetError reports a URL or path that cannot be turned into source files.
type UnsupportedTargetError struct {
	Target string
	Reason string
}

func (e *UnsupportedTargetError) Error() string {
	return fmt.Sprintf("unsupported target %q: %s", e.Target, e.Reason)
}

// NewUnsupportedTargetError creates an UnsupportedTargetError.
func NewUnsupportedTargetError(target, reason string) error {
	return &UnsupportedTargetError{Target: target, Reason: reason}
}

// UpstreamError reports a failure of an external service such as the GitHub API.
type UpstreamError struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s request failed with status %d: %v", e.Service, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s request failed: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError creates an UpstreamError. A zero status means no response was received.
func NewUpstreamError(service string, status int, err error) error {
	return &UpstreamError{Service: service, StatusCode: status, Err: err}
}
