package forgeterm

import (
	"errors"
	"fmt"
)

// Exit codes reported in CommandResult.ExitCode
const (
	ExitOK               = 0
	ExitFailure          = 1
	ExitTimeout          = 124
	ExitCommandNotFound  = 127
	ExitSecurityRejected = 403
)

var (
	ErrNotFound         = errors.New("no such file or directory")
	ErrAlreadyExists    = errors.New("file exists")
	ErrPermissionDenied = errors.New("permission denied")
	ErrSessionNotFound  = errors.New("session not found")
	ErrTooManySessions  = errors.New("too many sessions")
)

// RejectionCode identifies why the allowlist refused an invocation.
type RejectionCode string

const (
	RejectNotAllowlisted   RejectionCode = "NotAllowlisted"
	RejectTooManyArguments RejectionCode = "TooManyArguments"
	RejectMissingArguments RejectionCode = "MissingArguments"
	RejectInvalidArgument  RejectionCode = "InvalidArgument"
)

// RejectionError is returned by AllowlistValidator.Validate when an
// invocation is not admitted.
type RejectionError struct {
	Code     RejectionCode
	Command  string
	Argument string // offending token, InvalidArgument only
	Max      int    // entry.MaxArgs, TooManyArguments only
}

func (e *RejectionError) Error() string {
	switch e.Code {
	case RejectNotAllowlisted:
		return fmt.Sprintf("Command '%s' is not allowlisted", e.Command)
	case RejectTooManyArguments:
		return fmt.Sprintf("Too many arguments for '%s' (max %d)", e.Command, e.Max)
	case RejectMissingArguments:
		return fmt.Sprintf("Command '%s' requires arguments", e.Command)
	case RejectInvalidArgument:
		return fmt.Sprintf("Invalid argument '%s' for '%s'", e.Argument, e.Command)
	default:
		return fmt.Sprintf("command '%s' rejected", e.Command)
	}
}
