package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	corev1 "k8s.io/api/core/v1"
)

func (s *Server) initAnalyze() []Tool {
	return []Tool{
		{
			Definition: mcp.NewTool(ToolAnalyzeNamespace,
				mcp.WithDescription("Analyze pod statuses and errors in a namespace."),
				withNamespace()),
			Handler: Bind(s.namespaceAnalyze),
		},
	}
}

func (s *Server) namespaceAnalyze(ctx context.Context, args namespaceArgs) Result {
	k := s.kube()
	namespace := k.NamespaceOrDefault(args.Namespace)

	items, err := k.PodsList(ctx, namespace)
	if err != nil {
		return Fail(err, "Error analyzing namespace: "+err.Error())
	}
	phases := make(map[corev1.PodPhase]int)
	for _, pod := range items {
		phases[pod.Status.Phase]++
	}

	deployments, err := k.DeploymentsList(ctx, namespace)
	if err != nil {
		return Fail(err, "Error analyzing namespace: "+err.Error())
	}
	var available int32
	for _, dep := range deployments {
		available += dep.Status.AvailableReplicas
	}

	report := []string{
		fmt.Sprintf("Namespace Analysis for '%s':", namespace),
		fmt.Sprintf("- Running Pods: %d", phases[corev1.PodRunning]),
		fmt.Sprintf("- Pending Pods: %d", phases[corev1.PodPending]),
		fmt.Sprintf("- Failed Pods: %d", phases[corev1.PodFailed]),
		fmt.Sprintf("- Unknown State Pods: %d", phases[corev1.PodUnknown]),
		fmt.Sprintf("- Deployments Available: %d", len(deployments)),
		fmt.Sprintf("- Deployments with Running Replicas: %d", available),
	}
	return OK(strings.Join(report, "\n"))
}
