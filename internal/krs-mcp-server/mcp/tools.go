package mcp

import (
	"slices"

	"github.com/mark3labs/mcp-go/mcp"
)

// Tool names of the catalog.
const (
	ToolListPods          = "list_pods"
	ToolListNamespaces    = "list_namespaces"
	ToolListServices      = "list_services"
	ToolListDeployments   = "list_deployments"
	ToolCreatePod         = "create_pod"
	ToolDeletePod         = "delete_pod"
	ToolPodLogs           = "pod_logs"
	ToolAnalyzeNamespace  = "analyze_namespace"
	ToolConfigurationView = "configuration_view"
)

type namespaceArgs struct {
	Namespace string `json:"namespace"`
}

func withNamespace() mcp.ToolOption {
	return mcp.WithString("namespace",
		mcp.Description("Namespace to use (Optional, defaults to the namespace of the current kubeconfig context, else default)"))
}

func (s *Server) tools() []Tool {
	return slices.Concat(
		s.initPods(),
		s.initNamespace(),
		s.initWorkloads(),
		s.initPodLifecycle(),
		s.initLogs(),
		s.initAnalyze(),
		s.initConfiguration(),
	)
}
