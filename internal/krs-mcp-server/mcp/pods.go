package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/yaml"

	"github.com/fleezesd/krs/internal/krs-mcp-server/pods"
)

type createPodArgs struct {
	Names     string `json:"names"`
	Namespace string `json:"namespace"`
	Manifest  string `json:"manifest"`
}

type deletePodArgs struct {
	Names     string `json:"names"`
	Namespace string `json:"namespace"`
}

func (s *Server) initPods() []Tool {
	return []Tool{
		{
			Definition: mcp.NewTool(ToolListPods,
				mcp.WithDescription("List all pods in a Kubernetes namespace."),
				withNamespace()),
			Handler: Bind(s.podsList),
		},
	}
}

func (s *Server) initPodLifecycle() []Tool {
	return []Tool{
		{
			Definition: mcp.NewTool(ToolCreatePod,
				mcp.WithDescription("Create Kubernetes pods with AI-assisted configuration."),
				mcp.WithString("names",
					mcp.Description("Comma-separated names of the pods to create")),
				withNamespace(),
				mcp.WithString("manifest",
					mcp.Description("Partial pod manifest in YAML or JSON. Missing name, containers and ports are filled in (Optional)"))),
			Handler: Bind(s.podsCreate),
		},
		{
			Definition: mcp.NewTool(ToolDeletePod,
				mcp.WithDescription("Delete one or more Kubernetes pods with confirmation."),
				mcp.WithString("names", mcp.Required(),
					mcp.Description("Names of the pods to delete, separated by commas, spaces or 'and'")),
				withNamespace()),
			Handler: Bind(s.podsDelete),
		},
	}
}

func (s *Server) podsList(ctx context.Context, args namespaceArgs) Result {
	k := s.kube()
	items, err := k.PodsList(ctx, k.NamespaceOrDefault(args.Namespace))
	if err != nil {
		return Fail(err, "Error: "+err.Error())
	}
	if len(items) == 0 {
		return OK("No pods found in the namespace.")
	}
	lines := make([]string, 0, len(items))
	for _, pod := range items {
		lines = append(lines, fmt.Sprintf("%s (%s)", pod.Name, pod.Status.Phase))
	}
	return OK(strings.Join(lines, "\n"))
}

func (s *Server) podsCreate(ctx context.Context, args createPodArgs) Result {
	names := splitCreateNames(args.Names)
	if len(names) == 0 && strings.TrimSpace(args.Manifest) == "" {
		return InvalidArgument("at least one pod name or a manifest is required")
	}

	var partial *corev1.Pod
	if strings.TrimSpace(args.Manifest) != "" {
		var err error
		if partial, err = decodeManifest(args.Manifest); err != nil {
			return InvalidArgument("invalid manifest: %v", err)
		}
	}

	k := s.kube()
	namespace := k.NamespaceOrDefault(args.Namespace)
	existing, err := k.PodsList(ctx, namespace)
	if err != nil {
		return Fail(err, "Error: "+err.Error())
	}
	snap := pods.NewSnapshot(existing)

	specs := make([]*corev1.Pod, 0, len(names)+1)
	for _, name := range names {
		specs = append(specs, s.synthesizer.Synthesize(name, snap))
	}
	if partial != nil {
		specs = append(specs, s.synthesizer.Complete(partial, snap))
	}
	for _, spec := range specs {
		spec.Namespace = namespace
	}

	result := pods.NewExecutor(k, s.configuration.createConcurrency).CreateBatch(ctx, namespace, specs, snap)
	return OK(result.Summary())
}

func (s *Server) podsDelete(ctx context.Context, args deletePodArgs) Result {
	if len(pods.SplitNames(args.Names)) == 0 {
		return InvalidArgument("at least one pod name is required")
	}

	k := s.kube()
	namespace := k.NamespaceOrDefault(args.Namespace)
	existing, err := k.PodsList(ctx, namespace)
	if err != nil {
		return Fail(err, "Error: "+err.Error())
	}

	resolution := pods.Resolve(args.Names, pods.NewSnapshot(existing).Names())
	result := pods.Delete(ctx, k, namespace, resolution)
	if result.NeedsConfirmation() {
		return Confirm(result.Summary(), result.Suggestions)
	}
	return OK(result.Summary())
}

func splitCreateNames(raw string) []string {
	var names []string
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func decodeManifest(manifest string) (*corev1.Pod, error) {
	pod := &corev1.Pod{}
	if err := yaml.Unmarshal([]byte(manifest), pod); err != nil {
		return nil, err
	}
	if pod.Kind != "" && pod.Kind != "Pod" {
		return nil, fmt.Errorf("kind %q is not Pod", pod.Kind)
	}
	return pod, nil
}
