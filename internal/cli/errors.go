package cli

import "errors"

// Exit codes returned by Execute.
const (
	ExitOK    = 0
	ExitFatal = 1
	ExitUsage = 2
)

var (
	ErrInvalidAttribute = errors.New("invalid attribute value")
	ErrNoAttributes     = errors.New("no attributes specified")
	ErrFolderRequired   = errors.New("-f/--folder is required")
	ErrEmptyEmail       = errors.New("email cannot be empty")
)

// CommandError carries the exit code for a failed command.
type CommandError struct {
	ExitCode int
	Err      error
}

func (e *CommandError) Error() string {
	return e.Err.Error()
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError wraps err with an exit code.
func NewCommandError(err error, code int) *CommandError {
	return &CommandError{ExitCode: code, Err: err}
}

func fatal(err error) error {
	return NewCommandError(err, ExitFatal)
}

// exitCode maps an error from command execution to a process exit code.
// Errors that are not CommandErrors come from cobra's own flag and argument
// handling.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	return ExitUsage
}
