package krschat

import (
	"context"
	"time"

	"github.com/fleezesd/krs/internal/krs-chat/llm"
	"github.com/fleezesd/krs/internal/krs-chat/session"
	"github.com/fleezesd/krs/internal/krs-mcp-server/mcp"
	"github.com/fleezesd/krs/pkg/log"
)

type Config struct {
	// ServerURL is the SSE endpoint of a remote krs-mcp-server. The tool
	// catalog runs in-process when empty.
	ServerURL         string
	KubeConfig        string
	CreateConcurrency int
	Image             string
	ToolTimeout       time.Duration
	LLM               *llm.Options
}

type CompletedConfig struct {
	*Config
}

func (c *Config) Complete() CompletedConfig {
	if c.ToolTimeout <= 0 {
		c.ToolTimeout = session.DefaultToolTimeout
	}
	if c.LLM == nil {
		c.LLM = llm.NewOptions()
	}
	return CompletedConfig{c}
}

// New connects the tool backend and returns a session ready to Run.
func (c CompletedConfig) New(ctx context.Context) (*session.Session, error) {
	tools, err := c.tools(ctx)
	if err != nil {
		return nil, err
	}
	return session.New(tools, llm.NewClient(c.LLM), session.WithToolTimeout(c.ToolTimeout)), nil
}

func (c CompletedConfig) tools(ctx context.Context) (session.Tools, error) {
	if c.ServerURL != "" {
		return session.DialRemoteTools(ctx, c.ServerURL)
	}

	server, err := mcp.NewServer(c.KubeConfig,
		mcp.WithCreateConcurrency(c.CreateConcurrency),
		mcp.WithDefaultImage(c.Image),
	)
	if err != nil {
		return nil, err
	}
	log.Infow("Serving tools in-process", "tools", server.Registry().Names())
	return session.NewLocalTools(server.Registry(), server.Stop), nil
}
