package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jsamuelsen/quote-catalog/internal/domain"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Rejected records or an invalid import file
	ExitCommandError = 2 // Command error (missing file, unreadable database, bad config)
)

// Error codes reported in JSON output.
const (
	CodeInvalidFile   = "INVALID_FILE"
	CodeRecordsFailed = "RECORDS_FAILED"
	CodeCommand       = "COMMAND_ERROR"
)

// ExitError is an error carrying the process exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	return ExitFailure
}

// OutputFormatter writes command results as text or JSON.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Response is the JSON envelope for every command result.
type Response struct {
	Status string         `json:"status"` // "ok" or "error"
	Data   any            `json:"data,omitempty"`
	Error  *ResponseError `json:"error,omitempty"`
}

// ResponseError describes a failed command in JSON output.
type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// textWriter is implemented by results with a human-readable rendering.
type textWriter interface {
	WriteText(w io.Writer) error
}

// Success writes data in the configured format.
func (f *OutputFormatter) Success(data any) error {
	return f.write("ok", data, nil)
}

// Failure writes data along with an error. Text output renders data and
// leaves the error to the caller.
func (f *OutputFormatter) Failure(code, message string, data any) error {
	return f.write("error", data, &ResponseError{Code: code, Message: message})
}

// Error writes a bare error.
func (f *OutputFormatter) Error(code, message string) error {
	if f.Format == "json" {
		return f.encode(Response{Status: "error", Error: &ResponseError{Code: code, Message: message}})
	}

	_, err := fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)

	return err
}

func (f *OutputFormatter) write(status string, data any, respErr *ResponseError) error {
	if f.Format == "json" {
		return f.encode(Response{Status: status, Data: data, Error: respErr})
	}

	if tw, ok := data.(textWriter); ok {
		return tw.WriteText(f.Writer)
	}

	_, err := fmt.Fprintln(f.Writer, data)

	return err
}

func (f *OutputFormatter) encode(resp Response) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")

	return enc.Encode(resp)
}

// fail reports err and returns the matching ExitError. Invalid input exits
// with ExitFailure; anything else is a command error.
func fail(f *OutputFormatter, message string, err error) error {
	code, exit := CodeCommand, ExitCommandError
	if errors.Is(err, domain.ErrValidation) {
		code, exit = CodeInvalidFile, ExitFailure
	}

	_ = f.Error(code, fmt.Sprintf("%s: %v", message, err))

	return WrapExitError(exit, message, err)
}
