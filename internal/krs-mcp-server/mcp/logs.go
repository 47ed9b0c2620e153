package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

type podLogsArgs struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
	TailLines int64  `json:"tail_lines"`
}

func (s *Server) initLogs() []Tool {
	return []Tool{
		{
			Definition: mcp.NewTool(ToolPodLogs,
				mcp.WithDescription("Retrieve logs for a Kubernetes pod and auto-fix errors."),
				mcp.WithString("name", mcp.Required(), mcp.Description("Name of the pod")),
				withNamespace(),
				mcp.WithNumber("tail_lines",
					mcp.Description("Number of lines from the end of the logs to return (Optional, default all)"))),
			Handler: Bind(s.podLogs),
		},
	}
}

func (s *Server) podLogs(ctx context.Context, args podLogsArgs) Result {
	if args.Name == "" {
		return InvalidArgument("pod name is required")
	}
	k := s.kube()
	namespace := k.NamespaceOrDefault(args.Namespace)
	logs, err := k.PodLogs(ctx, namespace, args.Name, args.TailLines)
	return podLogsResult(args.Name, namespace, logs, err)
}

func podLogsResult(name, namespace, logs string, err error) Result {
	if err != nil {
		if apierrors.IsNotFound(err) {
			return OK(fmt.Sprintf("No pod found with the name '%s' in the namespace '%s'.", name, namespace))
		}
		r := Fail(err, "Error retrieving logs: "+err.Error())
		r.Remediable = true
		return r
	}
	if logs == "" {
		return OK(fmt.Sprintf("No logs available for pod '%s' in namespace '%s'.", name, namespace))
	}
	if strings.Contains(logs, "Error") {
		return OK("Error detected in logs: " + logs)
	}
	return OK(logs)
}
