// Package errno defines the error reasons carried by tool and session results.
package errno

import (
	"github.com/go-kratos/kratos/v2/errors"
)

var (
	// ErrToolNotFound means the requested tool is not in the catalog.
	ErrToolNotFound = errors.NotFound("ToolNotFound", "unknown tool")

	// ErrInvalidArgument means the tool arguments could not be decoded or are incomplete.
	ErrInvalidArgument = errors.BadRequest("InvalidArgument", "invalid tool argument")

	// ErrToolPanic means the tool handler panicked.
	ErrToolPanic = errors.InternalServer("ToolPanic", "tool handler panicked")

	// ErrToolFailed means the tool ran and reported a failure.
	ErrToolFailed = errors.InternalServer("ToolFailed", "tool reported an error")

	// ErrToolTimeout means the tool call did not finish in time.
	ErrToolTimeout = errors.GatewayTimeout("ToolTimeout", "The tool request timed out.")

	// ErrNoToolSelected means the model did not pick any tool for the query.
	ErrNoToolSelected = errors.BadRequest("NoToolSelected", "could not determine a valid tool for this query")

	// ErrModelUnavailable means the tool-selection backend failed.
	ErrModelUnavailable = errors.ServiceUnavailable("ModelUnavailable", "tool selection backend unavailable")
)
