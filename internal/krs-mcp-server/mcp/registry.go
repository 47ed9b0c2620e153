package mcp

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sahilm/fuzzy"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/fleezesd/krs/internal/pkg/errno"
	"github.com/fleezesd/krs/internal/pkg/metrics"
	"github.com/fleezesd/krs/pkg/log"
	"github.com/fleezesd/krs/pkg/trace"
)

// maxToolHints bounds the closest-name hints given for an unknown tool.
const maxToolHints = 3

// Handler runs a tool against the raw argument map it was called with.
type Handler func(ctx context.Context, args map[string]any) Result

// Tool is one entry of the catalog.
type Tool struct {
	Definition mcp.Tool
	Handler    Handler
}

// Bind decodes the raw arguments into T before calling fn. Decoding is weakly
// typed so "50" and 50.0 both fill an int64 field.
func Bind[T any](fn func(ctx context.Context, args T) Result) Handler {
	return func(ctx context.Context, raw map[string]any) Result {
		var args T
		if err := decodeArguments(raw, &args); err != nil {
			return InvalidArgument("%v", err)
		}
		return fn(ctx, args)
	}
}

func decodeArguments(in map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(in)
}

// Registry is the closed tool catalog and its dispatcher.
type Registry struct {
	tools  map[string]Tool
	names  []string
	tracer oteltrace.Tracer
}

func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{
		tools:  make(map[string]Tool, len(tools)),
		tracer: trace.Tracer("krs/tools"),
	}
	r.Register(tools...)
	return r
}

// Register adds tools in catalog order. Registering a name twice panics.
func (r *Registry) Register(tools ...Tool) {
	for _, t := range tools {
		name := t.Definition.Name
		if _, ok := r.tools[name]; ok {
			panic(fmt.Sprintf("tool %q registered twice", name))
		}
		r.tools[name] = t
		r.names = append(r.names, name)
	}
}

// Names returns the tool names in catalog order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Tools returns the tool definitions in catalog order.
func (r *Registry) Tools() []mcp.Tool {
	tools := make([]mcp.Tool, 0, len(r.names))
	for _, name := range r.names {
		tools = append(tools, r.tools[name].Definition)
	}
	return tools
}

func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Dispatch runs the named tool. It never panics and never returns a bare
// error: every failure, including a panicking handler, comes back as a Result.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) (result Result) {
	label := name
	if _, ok := r.tools[name]; !ok {
		label = "unknown"
	}

	ctx, span := r.tracer.Start(ctx, "tool/"+label, oteltrace.WithAttributes(attribute.String("krs.tool", name)))
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("%v", p)
			log.Errorw(err, "Tool handler panicked", "tool", name, "stack", string(debug.Stack()))
			result = Result{
				Status: StatusError,
				Text:   fmt.Sprintf("Error: tool %s failed unexpectedly: %v", name, p),
				Err:    errno.ErrToolPanic.WithCause(err),
			}
		}
		result.Tool = name

		metrics.ToolCallsTotal.WithLabelValues(label, result.Status.String()).Inc()
		metrics.ToolCallDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
		span.SetAttributes(attribute.String("krs.tool.status", result.Status.String()))
		if result.Err != nil {
			span.RecordError(result.Err)
			span.SetStatus(codes.Error, result.Text)
		}
		span.End()
	}()

	t, ok := r.tools[name]
	if !ok {
		return r.unknownTool(name)
	}
	log.Debugw("Dispatching tool", "tool", name, "args", args)
	return t.Handler(ctx, args)
}

func (r *Registry) unknownTool(name string) Result {
	text := fmt.Sprintf("Error: `%s` is not a valid tool.", name)

	pattern := strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	var hints []string
	for _, m := range fuzzy.Find(pattern, r.names) {
		if len(hints) == maxToolHints {
			break
		}
		hints = append(hints, m.Str)
	}
	if len(hints) > 0 {
		text += " Closest matches: " + strings.Join(hints, ", ") + "."
	}
	text += " Available tools: " + strings.Join(r.names, ", ")

	return Result{
		Status: StatusError,
		Text:   text,
		Err:    errno.ErrToolNotFound.WithCause(fmt.Errorf("tool %q", name)),
	}
}

// ServerTools adapts the catalog to the MCP server.
func (r *Registry) ServerTools() []server.ServerTool {
	tools := make([]server.ServerTool, 0, len(r.names))
	for _, name := range r.names {
		tools = append(tools, server.ServerTool{
			Tool: r.tools[name].Definition,
			Handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return r.Dispatch(ctx, name, request.Params.Arguments).CallToolResult(), nil
			},
		})
	}
	return tools
}
