package krsmcpserver

import (
	"github.com/fleezesd/krs/internal/krs-mcp-server/mcp"
)

type Config struct {
	SSEBaseURL string
	SSEPort    int
	KubeConfig string
	// CreateConcurrency caps parallel pod creations per batch; 0 is unlimited.
	CreateConcurrency int
	Image             string
}

type CompletedConfig struct {
	*Config
}

func (c *Config) Complete() CompletedConfig {
	return CompletedConfig{c}
}

func (c CompletedConfig) New() (*mcp.Server, error) {
	return mcp.NewServer(c.KubeConfig,
		mcp.WithCreateConcurrency(c.CreateConcurrency),
		mcp.WithDefaultImage(c.Image),
	)
}
