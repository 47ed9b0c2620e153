package mcp

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) initWorkloads() []Tool {
	return []Tool{
		{
			Definition: mcp.NewTool(ToolListServices,
				mcp.WithDescription("List all services in a namespace."),
				withNamespace()),
			Handler: Bind(s.servicesList),
		},
		{
			Definition: mcp.NewTool(ToolListDeployments,
				mcp.WithDescription("List all deployments in a namespace."),
				withNamespace()),
			Handler: Bind(s.deploymentsList),
		},
	}
}

func (s *Server) servicesList(ctx context.Context, args namespaceArgs) Result {
	k := s.kube()
	services, err := k.ServicesList(ctx, k.NamespaceOrDefault(args.Namespace))
	if err != nil {
		return Fail(err, "Error: "+err.Error())
	}
	if len(services) == 0 {
		return OK("No services found in the namespace.")
	}
	names := make([]string, 0, len(services))
	for _, svc := range services {
		names = append(names, svc.Name)
	}
	return OK(strings.Join(names, "\n"))
}

func (s *Server) deploymentsList(ctx context.Context, args namespaceArgs) Result {
	k := s.kube()
	deployments, err := k.DeploymentsList(ctx, k.NamespaceOrDefault(args.Namespace))
	if err != nil {
		return Fail(err, "Error: "+err.Error())
	}
	if len(deployments) == 0 {
		return OK("No deployments found in the namespace.")
	}
	names := make([]string, 0, len(deployments))
	for _, dep := range deployments {
		names = append(names, dep.Name)
	}
	return OK(strings.Join(names, "\n"))
}
