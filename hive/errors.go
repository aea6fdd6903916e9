package hive2

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNotSupported is returned for transactions, which Hive does not have.
var ErrNotSupported = errors.New("hive2: transactions are not supported")

// ServerError is an error reported by HiveServer2, either in a TStatus or
// as the final state of an operation.
type ServerError struct {
	Message   string
	SQLState  string
	ErrorCode int32
}

func (e *ServerError) Error() string {
	if e.SQLState == "" && e.ErrorCode == 0 {
		return "error from server: " + e.Message
	}
	return fmt.Sprintf("error from server: %s (sqlState %s, errorCode %d)", e.Message, e.SQLState, e.ErrorCode)
}
