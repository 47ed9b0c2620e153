// Package session runs the conversational loop: it routes each query to a
// tool picked by the model and carries pending delete confirmations between
// turns.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/fleezesd/krs/internal/krs-chat/llm"
	krsmcp "github.com/fleezesd/krs/internal/krs-mcp-server/mcp"
	"github.com/fleezesd/krs/internal/pkg/errno"
	"github.com/fleezesd/krs/internal/pkg/metrics"
	"github.com/fleezesd/krs/pkg/log"
)

const (
	DefaultToolTimeout = 30 * time.Second
	helpLimit          = 10
)

// Model picks tools and suggests fixes.
type Model interface {
	SelectTool(ctx context.Context, query string, tools []mcp.Tool) (*llm.Selection, error)
	Remediate(ctx context.Context, errText string) (string, error)
}

// PendingConfirmation is a suggested delete waiting for a yes or no.
type PendingConfirmation struct {
	Requested string
	Suggested string
	Namespace string
}

// ConversationState is everything a session carries between turns.
type ConversationState struct {
	pending        *PendingConfirmation
	toolsAnnounced bool
}

// Pending returns the confirmation being waited on, or nil when idle.
func (s ConversationState) Pending() *PendingConfirmation { return s.pending }

// Session is one conversation. It is not safe for concurrent use.
type Session struct {
	id          string
	tools       Tools
	model       Model
	out         io.Writer
	toolTimeout time.Duration
	state       ConversationState
	log         log.Logger
}

type Option func(*Session)

func WithOutput(w io.Writer) Option {
	return func(s *Session) { s.out = w }
}

func WithToolTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.toolTimeout = d
		}
	}
}

func New(tools Tools, model Model, opts ...Option) *Session {
	id := uuid.NewString()
	s := &Session{
		id:          id,
		tools:       tools,
		model:       model,
		out:         os.Stdout,
		toolTimeout: DefaultToolTimeout,
		log:         log.WithValues("session", id),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) State() ConversationState { return s.state }

// Close releases the tool backend.
func (s *Session) Close() error { return s.tools.Close() }

// Run reads queries from in until "quit", end of input or ctx is done. A
// failing or panicking turn is reported and the loop goes on. When in is an
// io.Closer it is closed on return, which unblocks the line reader.
func (s *Session) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if c, ok := in.(io.Closer); ok {
		defer func() { _ = c.Close() }()
	}

	s.printf("\nMCP Client Started!\nType your queries or 'quit' to exit.\n")
	if err := s.announceTools(ctx); err != nil {
		s.printf("\nError retrieving tools: %v\n", err)
	}

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		s.printf("\nQuery: ")
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if s.turn(ctx, line) {
				return nil
			}
		}
	}
}

func (s *Session) turn(ctx context.Context, line string) (quit bool) {
	defer func() {
		if p := recover(); p != nil {
			s.log.Errorw(fmt.Errorf("%v", p), "Turn panicked")
			s.printf("\nError: %v\n", p)
			quit = false
		}
	}()

	quit, err := s.Handle(ctx, line)
	if err != nil {
		s.log.Warnw("Turn failed", "query", line, "err", err)
	}
	return quit
}

// Handle processes one query. Everything the user should see is written to
// the session output; the returned error only describes what went wrong.
func (s *Session) Handle(ctx context.Context, query string) (quit bool, err error) {
	q := strings.ToLower(strings.TrimSpace(query))
	switch {
	case q == "":
		return false, nil
	case q == "quit":
		metrics.SessionTurnsTotal.WithLabelValues("quit").Inc()
		s.printf("\nExiting interactive session. Goodbye!\n")
		return true, nil
	case isHelpQuery(q):
		metrics.SessionTurnsTotal.WithLabelValues("help").Inc()
		return false, s.printHelp(ctx)
	case s.state.pending != nil:
		return false, s.handleConfirmation(ctx, q)
	default:
		return false, s.handleQuery(ctx, q)
	}
}

// isHelpQuery matches "help" and "?" as the leading word. Names that merely
// contain "help", such as a pod called helper-web, go to the model.
func isHelpQuery(q string) bool {
	fields := strings.Fields(q)
	return len(fields) > 0 && (fields[0] == "help" || fields[0] == "?")
}

func (s *Session) handleConfirmation(ctx context.Context, q string) error {
	switch q {
	case "yes":
		metrics.SessionTurnsTotal.WithLabelValues("confirm").Inc()
		pending := s.state.pending
		s.state.pending = nil
		s.printf("Deleting pod: %s...\n", pending.Suggested)

		args := map[string]any{"names": pending.Suggested}
		if pending.Namespace != "" {
			args["namespace"] = pending.Namespace
		}
		return s.invoke(ctx, krsmcp.ToolDeletePod, args)
	case "no":
		metrics.SessionTurnsTotal.WithLabelValues("cancel").Inc()
		s.state.pending = nil
		s.printf("Action canceled.\n")
		return nil
	default:
		metrics.SessionTurnsTotal.WithLabelValues("reprompt").Inc()
		s.printf("I didn't understand. Do you want to proceed with the deletion? Reply 'yes' or 'no'.\n")
		return nil
	}
}

func (s *Session) handleQuery(ctx context.Context, q string) error {
	metrics.SessionTurnsTotal.WithLabelValues("query").Inc()

	tools, err := s.tools.List(ctx)
	if err != nil {
		s.printf("\nError retrieving tools: %v\n", err)
		return err
	}

	sel, err := s.model.SelectTool(ctx, q, tools)
	if err != nil {
		s.printf("\nError processing query with Anthropic: %v\n", err)
		return errno.ErrModelUnavailable.WithCause(err)
	}
	if sel == nil || sel.Tool == "" {
		s.printf("\nError: AI could not determine a valid action for this query.\n")
		s.printToolNames(toolNames(tools))
		return errno.ErrNoToolSelected
	}

	names := toolNames(tools)
	if !slices.Contains(names, sel.Tool) {
		s.printf("\nError: `%s` is not a valid tool. Available tools: %s\n", sel.Tool, strings.Join(names, ", "))
		return errno.ErrToolNotFound.WithCause(fmt.Errorf("tool %q", sel.Tool))
	}
	return s.invoke(ctx, sel.Tool, sel.Arguments)
}

// invoke calls a tool and reacts to its result: a confirmation prompt moves
// the session to awaiting an answer, a remediable failure gets a suggestion
// from the model.
func (s *Session) invoke(ctx context.Context, name string, args map[string]any) error {
	result, err := s.call(ctx, name, args)
	switch {
	case errno.ErrToolTimeout.Is(err):
		s.printf("\nError: %s\n", errno.ErrToolTimeout.Message)
		return err
	case err != nil:
		s.printf("\nError calling tool: %v\n", err)
		return err
	}

	switch {
	case result.Status == krsmcp.StatusConfirm && len(result.Suggestions) > 0:
		first := result.Suggestions[0]
		s.state.pending = &PendingConfirmation{
			Requested: first.Requested,
			Suggested: first.Suggested,
			Namespace: stringArg(args, "namespace"),
		}
		s.printf("\n%s\n", Format(name, result))
	case result.Remediable:
		s.printf("\n%s\n", Format(name, result))
		suggestion, err := s.model.Remediate(ctx, result.Text)
		if err != nil {
			suggestion = "Error requesting AI resolution: " + err.Error()
		}
		s.printf("\nAI's step-by-step resolution suggestion:\n%s\n", suggestion)
	default:
		s.printf("\n%s\n", Format(name, result))
	}
	return result.Err
}

// call runs a tool with the session timeout. A tool that does not return in
// time is reported as timed out even if it is still running.
func (s *Session) call(ctx context.Context, name string, args map[string]any) (krsmcp.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.toolTimeout)
	defer cancel()

	type outcome struct {
		result krsmcp.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- outcome{err: errno.ErrToolPanic.WithCause(fmt.Errorf("%v", p))}
			}
		}()
		r, err := s.tools.Call(ctx, name, args)
		done <- outcome{result: r, err: err}
	}()

	select {
	case o := <-done:
		return o.result, o.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return krsmcp.Result{}, errno.ErrToolTimeout.WithCause(ctx.Err())
		}
		return krsmcp.Result{}, ctx.Err()
	}
}

func (s *Session) announceTools(ctx context.Context) error {
	if s.state.toolsAnnounced {
		return nil
	}
	tools, err := s.tools.List(ctx)
	if err != nil {
		return err
	}
	s.printf("\nConnected to the MCP Server.\n\nAvailable Tools:\n")
	for _, name := range toolNames(tools) {
		s.printf("  - %s\n", name)
	}
	s.state.toolsAnnounced = true
	return nil
}

func (s *Session) printHelp(ctx context.Context) error {
	tools, err := s.tools.List(ctx)
	if err != nil {
		s.printf("\nError retrieving tools: %v\n", err)
		return err
	}
	s.printToolNames(toolNames(tools))
	return nil
}

func (s *Session) printToolNames(names []string) {
	s.printf("\nHere are some available commands you can use:\n")
	for _, name := range names[:min(len(names), helpLimit)] {
		s.printf("  - %s\n", strings.ReplaceAll(name, "_", " "))
	}
}

func (s *Session) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}

func toolNames(tools []mcp.Tool) []string {
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, t.Name)
	}
	return names
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}
