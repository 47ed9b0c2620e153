package mcp

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) initNamespace() []Tool {
	return []Tool{
		{
			Definition: mcp.NewTool(ToolListNamespaces,
				mcp.WithDescription("List all namespaces in the cluster.")),
			Handler: Bind(s.namespacesList),
		},
	}
}

func (s *Server) namespacesList(ctx context.Context, _ struct{}) Result {
	namespaces, err := s.kube().NamespacesList(ctx)
	if err != nil {
		return Fail(err, "Error: "+err.Error())
	}
	names := make([]string, 0, len(namespaces))
	for _, ns := range namespaces {
		names = append(names, ns.Name)
	}
	return OK(strings.Join(names, "\n"))
}
