package adapter

import (
	"fmt"

	"github.com/pkg/errors"

	hive2 "github.com/mumuhhh/hiveadapter/hive"
)

// ErrUnsupportedStatement is returned for statements Hive cannot express:
// row level UPDATE and DELETE, and transaction boundaries.
var ErrUnsupportedStatement = errors.New("statement is not supported by Hive")

// ConfigurationError reports a missing or invalid setting. It is always
// returned before any network connection is attempted.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "configuration error: " + e.Reason
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// UnsupportedTypeError reports a logical type, or an integer width, that has
// no Hive storage type.
type UnsupportedTypeError struct {
	Type  LogicalType
	Width int
}

func (e *UnsupportedTypeError) Error() string {
	if e.Type == Integer {
		return fmt.Sprintf("no integer type has byte size %d, use a width of 1 to 8", e.Width)
	}
	return fmt.Sprintf("unsupported logical type %q", string(e.Type))
}

// RemoteExecutionError carries a failure reported by HiveServer2 or by the
// transport underneath it, unmodified.
type RemoteExecutionError struct {
	Query     string
	Message   string
	SQLState  string
	ErrorCode int32

	cause error
}

func newRemoteExecutionError(query string, err error) *RemoteExecutionError {
	e := &RemoteExecutionError{
		Query:   query,
		Message: err.Error(),
		cause:   err,
	}
	var serverErr *hive2.ServerError
	if errors.As(err, &serverErr) {
		e.Message = serverErr.Message
		e.SQLState = serverErr.SQLState
		e.ErrorCode = serverErr.ErrorCode
	}
	return e
}

func (e *RemoteExecutionError) Error() string {
	return fmt.Sprintf("remote execution failed: %s", e.Message)
}

// Cause returns the driver error, for errors.Cause.
func (e *RemoteExecutionError) Cause() error { return e.cause }

// Unwrap returns the driver error, for errors.Is and errors.As.
func (e *RemoteExecutionError) Unwrap() error { return e.cause }

// ParseError reports a DESCRIBE or SHOW TABLES row that does not follow the
// expected layout.
type ParseError struct {
	Statement string
	Row       int
	Reason    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s output: row %d: %s", e.Statement, e.Row, e.Reason)
}
