package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

type configurationViewArgs struct {
	Minified *bool `json:"minified"`
}

func (s *Server) initConfiguration() []Tool {
	return []Tool{
		{
			Definition: mcp.NewTool(ToolConfigurationView,
				mcp.WithDescription("Get the current Kubernetes configuration content as a kubeconfig YAML"),
				mcp.WithBoolean("minified", mcp.Description("Return a minified version of the configuration. "+
					"If set to true, keeps only the current-context and the relevant pieces of the configuration for that context. "+
					"If set to false, all contexts, clusters, auth-infos, and users are returned in the configuration. "+
					"(Optional, default true)"))),
			Handler: Bind(s.configurationView),
		},
	}
}

func (s *Server) configurationView(_ context.Context, args configurationViewArgs) Result {
	minify := true
	if args.Minified != nil {
		minify = *args.Minified
	}
	ret, err := s.kube().ConfigurationView(minify)
	if err != nil {
		return Fail(err, fmt.Sprintf("Error: failed to get configuration: %v", err))
	}
	return OK(ret)
}
