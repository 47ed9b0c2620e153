package session

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	krsmcp "github.com/fleezesd/krs/internal/krs-mcp-server/mcp"
	"github.com/fleezesd/krs/pkg/log"
	"github.com/fleezesd/krs/pkg/version"
)

// Tools lists and calls the tool catalog a session works against.
type Tools interface {
	List(ctx context.Context) ([]mcp.Tool, error)
	Call(ctx context.Context, name string, args map[string]any) (krsmcp.Result, error)
	Close() error
}

// LocalTools calls the catalog in-process.
type LocalTools struct {
	registry *krsmcp.Registry
	close    func()
}

func NewLocalTools(registry *krsmcp.Registry, closeFn func()) *LocalTools {
	return &LocalTools{registry: registry, close: closeFn}
}

// List returns the catalog sorted by name, the order an MCP server lists it in.
func (t *LocalTools) List(context.Context) ([]mcp.Tool, error) {
	tools := t.registry.Tools()
	slices.SortFunc(tools, func(a, b mcp.Tool) int { return strings.Compare(a.Name, b.Name) })
	return tools, nil
}

func (t *LocalTools) Call(ctx context.Context, name string, args map[string]any) (krsmcp.Result, error) {
	return t.registry.Dispatch(ctx, name, args), nil
}

func (t *LocalTools) Close() error {
	if t.close != nil {
		t.close()
	}
	return nil
}

// RemoteTools calls a krs-mcp-server over SSE.
type RemoteTools struct {
	client *client.Client
}

// DialRemoteTools connects to the SSE endpoint at url and runs the MCP handshake.
func DialRemoteTools(ctx context.Context, url string) (*RemoteTools, error) {
	c, err := client.NewSSEMCPClient(url)
	if err != nil {
		return nil, fmt.Errorf("create mcp client: %w", err)
	}
	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", url, err)
	}

	req := mcp.InitializeRequest{}
	req.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcp.Implementation{
		Name:    "krs-chat",
		Version: version.Get().GitVersion,
	}
	res, err := c.Initialize(ctx, req)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("initialize mcp session: %w", err)
	}
	log.Infow("Connected to MCP server", "url", url, "server", res.ServerInfo.Name, "version", res.ServerInfo.Version)
	return &RemoteTools{client: c}, nil
}

func (t *RemoteTools) List(ctx context.Context) ([]mcp.Tool, error) {
	res, err := t.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, err
	}
	return res.Tools, nil
}

func (t *RemoteTools) Call(ctx context.Context, name string, args map[string]any) (krsmcp.Result, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := t.client.CallTool(ctx, req)
	if err != nil {
		return krsmcp.Result{}, err
	}
	return krsmcp.ParseResult(name, resultText(res), res.IsError), nil
}

func (t *RemoteTools) Close() error {
	return t.client.Close()
}

func resultText(res *mcp.CallToolResult) string {
	if res == nil {
		return ""
	}
	var parts []string
	for _, c := range res.Content {
		switch text := c.(type) {
		case mcp.TextContent:
			parts = append(parts, text.Text)
		case *mcp.TextContent:
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n")
}
