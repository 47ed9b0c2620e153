package mcp

import (
	"fmt"
	"regexp"
	"strings"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/fleezesd/krs/internal/krs-mcp-server/pods"
	"github.com/fleezesd/krs/internal/pkg/errno"
)

// Status tags a tool Result.
type Status int

const (
	StatusOK Status = iota
	StatusError
	// StatusConfirm means the tool needs a yes/no answer before acting.
	StatusConfirm
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusError:
		return "error"
	case StatusConfirm:
		return "confirm"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result is the outcome of one tool call. Text is exactly what users and
// remote clients see; the other fields let callers act without parsing it.
type Result struct {
	Tool   string
	Status Status
	Text   string
	// Suggestions is set with StatusConfirm.
	Suggestions []pods.Suggestion
	// Remediable marks upstream retrieval errors worth a troubleshooting suggestion.
	Remediable bool
	// Err carries an errno reason when Status is StatusError.
	Err error
}

func (r Result) IsError() bool { return r.Status == StatusError }

func (r Result) String() string { return r.Text }

// CallToolResult renders r for the MCP transport.
func (r Result) CallToolResult() *mcp.CallToolResult {
	return NewTextResult(r.Text, r.IsError())
}

// OK is a successful result.
func OK(text string) Result {
	return Result{Status: StatusOK, Text: text}
}

// Fail is a failed result shown as text. err is wrapped into errno.ErrToolFailed
// unless it already carries a reason.
func Fail(err error, text string) Result {
	var reason *kerrors.Error
	if !kerrors.As(err, &reason) {
		err = errno.ErrToolFailed.WithCause(err)
	}
	return Result{Status: StatusError, Text: text, Err: err}
}

// InvalidArgument reports a missing or malformed argument.
func InvalidArgument(format string, args ...any) Result {
	msg := fmt.Sprintf(format, args...)
	return Result{
		Status: StatusError,
		Text:   "Error: " + msg,
		Err:    errno.ErrInvalidArgument.WithCause(fmt.Errorf("%s", msg)),
	}
}

// Confirm asks for confirmation of the suggested names.
func Confirm(text string, suggestions []pods.Suggestion) Result {
	return Result{Status: StatusConfirm, Text: text, Suggestions: suggestions}
}

func NewTextResult(content string, isError bool) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: isError,
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: content,
			},
		},
	}
}

var suggestionPrompt = regexp.MustCompile(`Pod '([^']*)' not found\. Did you mean '([^']*)'\? Reply 'yes' to delete it\.`)

// ParseResult rebuilds the tags of a result that crossed the wire as plain text.
func ParseResult(tool, text string, isError bool) Result {
	r := Result{Tool: tool, Text: text}
	if isError {
		r.Status = StatusError
		r.Err = errno.ErrToolFailed.WithCause(fmt.Errorf("%s", text))
	}
	for _, m := range suggestionPrompt.FindAllStringSubmatch(text, -1) {
		r.Suggestions = append(r.Suggestions, pods.Suggestion{Requested: m[1], Suggested: m[2]})
	}
	if len(r.Suggestions) > 0 && !isError {
		r.Status = StatusConfirm
	}
	r.Remediable = tool == ToolPodLogs && strings.Contains(text, "Error retrieving logs")
	return r
}

func isInvalidArgument(err error) bool {
	return errno.ErrInvalidArgument.Is(err)
}
