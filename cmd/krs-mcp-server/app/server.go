package app

import (
	"context"

	genericapiserver "k8s.io/apiserver/pkg/server"

	"github.com/fleezesd/krs/cmd/krs-mcp-server/app/options"
	krsmcpserver "github.com/fleezesd/krs/internal/krs-mcp-server"
	"github.com/fleezesd/krs/pkg/app"
	"github.com/fleezesd/krs/pkg/log"
	"github.com/fleezesd/krs/pkg/trace"
)

const commandDesc = `
  Kubernetes Model Context Protocol (MCP) Server

  Serves the krs tool catalog: list pods, namespaces, services and deployments,
  create pods from names or partial manifests, delete pods with fuzzy name
  suggestions, read pod logs and analyze a namespace.

  Usage:
    krs-mcp-server [flags]

  Available Commands:
    -h, --help        Display help information
    --version         Display version information

  Server Options:
    --sse-port        Port number for SSE server (e.g. 8080, 8443)
    --sse-base-url    Base URL for HTTPS host (e.g. https://example.com:8443)

  Examples:
    # Start STDIO server
    krs-mcp-server

    # Start SSE server, REST mirror and /metrics on port 8080
    krs-mcp-server --sse-port 8080

    # Start SSE server on port 8443 with HTTPS
    krs-mcp-server --sse-port 8443 --sse-base-url https://example.com:8443
`

func NewApp() *app.App {
	opts := options.NewOptions()

	application := app.NewApp("krs-mcp-server", "Kubernetes Model Context Protocol (MCP) server",
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithDefaultValidArgs(),
		app.WithRunFunc(run(opts)),
	)
	return application
}

func run(opts *options.Options) app.RunFunc {
	return func() error {
		log.Init(opts.Log)
		defer log.Sync()

		shutdown, err := trace.Init(context.Background(), opts.Trace)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Errorw(err, "Failed to flush traces")
			}
		}()

		cfg, err := opts.Config()
		if err != nil {
			return err
		}
		return Run(cfg, genericapiserver.SetupSignalHandler())
	}
}

func Run(c *krsmcpserver.Config, stopCh <-chan struct{}) error {
	mcpServer, err := c.Complete().New()
	if err != nil {
		return err
	}

	return mcpServer.Run(c.SSEBaseURL, c.SSEPort, stopCh)
}
