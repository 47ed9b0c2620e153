package mcp

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	k8stesting "k8s.io/client-go/testing"

	"github.com/fleezesd/krs/internal/krs-mcp-server/pods"
)

func TestListNamespaces(t *testing.T) {
	s, _ := newTestServer(t,
		&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "default"}},
		&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "kube-system"}},
	)

	result := dispatch(s, ToolListNamespaces, nil)
	assert.Equal(t, StatusOK, result.Status)
	assert.ElementsMatch(t, []string{"default", "kube-system"}, strings.Split(result.Text, "\n"))
}

func TestListServicesAndDeployments(t *testing.T) {
	s, _ := newTestServer(t,
		&corev1.Service{ObjectMeta: metav1.ObjectMeta{Name: "web", Namespace: "shop"}},
		&appsv1.Deployment{ObjectMeta: metav1.ObjectMeta{Name: "web", Namespace: "shop"}},
	)

	assert.Equal(t, "web", dispatch(s, ToolListServices, map[string]any{"namespace": "shop"}).Text)
	assert.Equal(t, "web", dispatch(s, ToolListDeployments, map[string]any{"namespace": "shop"}).Text)
	assert.Equal(t, "No services found in the namespace.", dispatch(s, ToolListServices, nil).Text)
	assert.Equal(t, "No deployments found in the namespace.", dispatch(s, ToolListDeployments, nil).Text)
}

func TestPodLogs(t *testing.T) {
	s, _ := newTestServer(t, testPod("web-1", corev1.PodRunning, "nginx:latest", 8080))

	result := dispatch(s, ToolPodLogs, map[string]any{"name": "web-1", "tail_lines": float64(20)})
	assert.Equal(t, StatusOK, result.Status)
	assert.Equal(t, "fake logs", result.Text)

	missing := dispatch(s, ToolPodLogs, map[string]any{"namespace": "default"})
	assert.Equal(t, StatusError, missing.Status)
}

func TestPodLogsResult(t *testing.T) {
	podsResource := schema.GroupResource{Resource: "pods"}

	tests := []struct {
		name       string
		logs       string
		err        error
		want       string
		status     Status
		remediable bool
	}{
		{
			name:   "plain logs",
			logs:   "listening on :8080",
			want:   "listening on :8080",
			status: StatusOK,
		},
		{
			name:   "empty logs",
			want:   "No logs available for pod 'web-1' in namespace 'default'.",
			status: StatusOK,
		},
		{
			name:   "logs mention an error",
			logs:   "Error: config missing",
			want:   "Error detected in logs: Error: config missing",
			status: StatusOK,
		},
		{
			name:   "pod not found",
			err:    apierrors.NewNotFound(podsResource, "web-1"),
			want:   "No pod found with the name 'web-1' in the namespace 'default'.",
			status: StatusOK,
		},
		{
			name:       "container not ready",
			err:        apierrors.NewBadRequest("container \"web-1\" is waiting to start: ContainerCreating"),
			want:       "Error retrieving logs: container \"web-1\" is waiting to start: ContainerCreating",
			status:     StatusError,
			remediable: true,
		},
		{
			name:       "transport failure",
			err:        errors.New("connection reset"),
			want:       "Error retrieving logs: connection reset",
			status:     StatusError,
			remediable: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := podLogsResult("web-1", "default", tt.logs, tt.err)
			assert.Equal(t, tt.want, result.Text)
			assert.Equal(t, tt.status, result.Status)
			assert.Equal(t, tt.remediable, result.Remediable)
		})
	}
}

func TestAnalyzeNamespace(t *testing.T) {
	s, _ := newTestServer(t,
		testPod("a", corev1.PodRunning, "nginx:latest"),
		testPod("b", corev1.PodRunning, "nginx:latest"),
		testPod("c", corev1.PodPending, "nginx:latest"),
		testPod("d", corev1.PodFailed, "nginx:latest"),
		&appsv1.Deployment{
			ObjectMeta: metav1.ObjectMeta{Name: "web", Namespace: "default"},
			Status:     appsv1.DeploymentStatus{AvailableReplicas: 2},
		},
		&appsv1.Deployment{
			ObjectMeta: metav1.ObjectMeta{Name: "api", Namespace: "default"},
		},
	)

	result := dispatch(s, ToolAnalyzeNamespace, map[string]any{"namespace": "default"})
	require.Equal(t, StatusOK, result.Status)
	assert.Equal(t, strings.Join([]string{
		"Namespace Analysis for 'default':",
		"- Running Pods: 2",
		"- Pending Pods: 1",
		"- Failed Pods: 1",
		"- Unknown State Pods: 0",
		"- Deployments Available: 2",
		"- Deployments with Running Replicas: 2",
	}, "\n"), result.Text)
}

func TestAnalyzeNamespace_Error(t *testing.T) {
	s, cs := newTestServer(t)
	cs.PrependReactor("list", "deployments", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("forbidden")
	})

	result := dispatch(s, ToolAnalyzeNamespace, nil)
	assert.Equal(t, StatusError, result.Status)
	assert.Equal(t, "Error analyzing namespace: forbidden", result.Text)
}

func TestConfigurationView_NoKubeconfig(t *testing.T) {
	s, _ := newTestServer(t)

	result := dispatch(s, ToolConfigurationView, map[string]any{"minified": false})
	assert.Equal(t, StatusError, result.Status)
	assert.True(t, strings.HasPrefix(result.Text, "Error: failed to get configuration"))
}

func TestParseResult(t *testing.T) {
	t.Run("confirmation prompts", func(t *testing.T) {
		text := "Pods deleted successfully: web-1\n" +
			"Pod 'databse' not found. Did you mean 'database'? Reply 'yes' to delete it.\n" +
			"Pod 'web-x' not found. Did you mean 'web-2'? Reply 'yes' to delete it."
		result := ParseResult(ToolDeletePod, text, false)
		assert.Equal(t, StatusConfirm, result.Status)
		assert.Equal(t, []pods.Suggestion{
			{Requested: "databse", Suggested: "database"},
			{Requested: "web-x", Suggested: "web-2"},
		}, result.Suggestions)
	})

	t.Run("remediable log error", func(t *testing.T) {
		result := ParseResult(ToolPodLogs, "Error retrieving logs: container is waiting", true)
		assert.Equal(t, StatusError, result.Status)
		assert.True(t, result.Remediable)
		assert.Error(t, result.Err)
	})

	t.Run("plain text", func(t *testing.T) {
		result := ParseResult(ToolListPods, "web-1 (Running)", false)
		assert.Equal(t, StatusOK, result.Status)
		assert.False(t, result.Remediable)
		assert.Nil(t, result.Err)
	})
}

func TestResultCallToolResult(t *testing.T) {
	res := Fail(errors.New("boom"), "Error: boom").CallToolResult()
	assert.True(t, res.IsError)

	res = Confirm("Pod 'a' not found. Did you mean 'b'? Reply 'yes' to delete it.", nil).CallToolResult()
	assert.False(t, res.IsError)
}
