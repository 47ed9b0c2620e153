package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/fleezesd/krs/internal/krs-chat/llm"
	krsmcp "github.com/fleezesd/krs/internal/krs-mcp-server/mcp"
	"github.com/fleezesd/krs/pkg/kubernetes"
)

type fakeModel struct {
	selections  map[string]*llm.Selection
	err         error
	remediation string
	remediated  []string
}

func (m *fakeModel) SelectTool(_ context.Context, query string, _ []mcp.Tool) (*llm.Selection, error) {
	if m.err != nil {
		return nil, m.err
	}
	if query == "boom" {
		panic("kaboom")
	}
	return m.selections[query], nil
}

func (m *fakeModel) Remediate(_ context.Context, errText string) (string, error) {
	m.remediated = append(m.remediated, errText)
	return m.remediation, nil
}

type toolCall struct {
	name string
	args map[string]any
}

type fakeTools struct {
	mu    sync.Mutex
	tools []mcp.Tool
	calls []toolCall
	call  func(ctx context.Context, name string, args map[string]any) (krsmcp.Result, error)
}

func (f *fakeTools) List(context.Context) ([]mcp.Tool, error) { return f.tools, nil }

func (f *fakeTools) Call(ctx context.Context, name string, args map[string]any) (krsmcp.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, toolCall{name: name, args: args})
	f.mu.Unlock()
	return f.call(ctx, name, args)
}

func (f *fakeTools) Close() error { return nil }

func newLocalSession(t *testing.T, model Model, podNames ...string) (*Session, *bytes.Buffer, *fake.Clientset) {
	t.Helper()
	cs := fake.NewSimpleClientset()
	for _, name := range podNames {
		_, err := cs.CoreV1().Pods("default").Create(context.Background(), &corev1.Pod{
			ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: "default"},
			Spec:       corev1.PodSpec{Containers: []corev1.Container{{Name: name, Image: "nginx:latest"}}},
			Status:     corev1.PodStatus{Phase: corev1.PodRunning},
		}, metav1.CreateOptions{})
		require.NoError(t, err)
	}
	server := krsmcp.NewServerWithKubernetes(kubernetes.NewKubernetesWithClientSet(cs))

	var out bytes.Buffer
	s := New(NewLocalTools(server.Registry(), server.Stop), model, WithOutput(&out))
	return s, &out, cs
}

func deleteWebxModel() *fakeModel {
	return &fakeModel{selections: map[string]*llm.Selection{
		"delete pod webx": {Tool: krsmcp.ToolDeletePod, Arguments: map[string]any{"names": "webx", "namespace": "default"}},
	}}
}

func podExists(t *testing.T, cs *fake.Clientset, name string) bool {
	t.Helper()
	_, err := cs.CoreV1().Pods("default").Get(context.Background(), name, metav1.GetOptions{})
	return err == nil
}

func TestSession_DeleteConfirmation(t *testing.T) {
	ctx := context.Background()

	t.Run("yes deletes the suggested pod", func(t *testing.T) {
		s, out, cs := newLocalSession(t, deleteWebxModel(), "web-1", "database")

		quit, err := s.Handle(ctx, "Delete pod webx")
		require.NoError(t, err)
		assert.False(t, quit)
		assert.Contains(t, out.String(), "Pod 'webx' not found. Did you mean 'web-1'? Reply 'yes' to delete it.")
		require.NotNil(t, s.State().Pending())
		assert.Equal(t, "web-1", s.State().Pending().Suggested)
		assert.True(t, podExists(t, cs, "web-1"))

		out.Reset()
		_, err = s.Handle(ctx, "yes")
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Deleting pod: web-1...")
		assert.Contains(t, out.String(), "Pods deleted successfully: web-1")
		assert.Nil(t, s.State().Pending())
		assert.False(t, podExists(t, cs, "web-1"))
		assert.True(t, podExists(t, cs, "database"))
	})

	t.Run("no cancels", func(t *testing.T) {
		s, out, cs := newLocalSession(t, deleteWebxModel(), "web-1")

		_, err := s.Handle(ctx, "delete pod webx")
		require.NoError(t, err)
		require.NotNil(t, s.State().Pending())

		out.Reset()
		_, err = s.Handle(ctx, "no")
		require.NoError(t, err)
		assert.Equal(t, "Action canceled.\n", out.String())
		assert.Nil(t, s.State().Pending())
		assert.True(t, podExists(t, cs, "web-1"))
	})

	t.Run("anything else re-prompts", func(t *testing.T) {
		s, out, _ := newLocalSession(t, deleteWebxModel(), "web-1")

		_, err := s.Handle(ctx, "delete pod webx")
		require.NoError(t, err)

		out.Reset()
		_, err = s.Handle(ctx, "maybe")
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Reply 'yes' or 'no'.")
		assert.NotNil(t, s.State().Pending())
	})

	t.Run("help keeps the pending confirmation", func(t *testing.T) {
		s, out, _ := newLocalSession(t, deleteWebxModel(), "web-1")

		_, err := s.Handle(ctx, "delete pod webx")
		require.NoError(t, err)

		out.Reset()
		_, err = s.Handle(ctx, "help")
		require.NoError(t, err)
		assert.Contains(t, out.String(), "  - delete pod")
		assert.NotNil(t, s.State().Pending())
	})
}

func TestSession_Quit(t *testing.T) {
	s, out, _ := newLocalSession(t, &fakeModel{})

	quit, err := s.Handle(context.Background(), "  QUIT ")
	require.NoError(t, err)
	assert.True(t, quit)
	assert.Contains(t, out.String(), "Goodbye!")
}

func TestSession_PodNameContainingHelp(t *testing.T) {
	model := &fakeModel{selections: map[string]*llm.Selection{
		"delete pod helper-web": {Tool: krsmcp.ToolDeletePod, Arguments: map[string]any{"names": "helper-web", "namespace": "default"}},
	}}
	s, out, cs := newLocalSession(t, model, "helper-web", "web-1")

	_, err := s.Handle(context.Background(), "delete pod helper-web")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Pods deleted successfully: helper-web")
	assert.NotContains(t, out.String(), "Here are some available commands you can use:")
	assert.False(t, podExists(t, cs, "helper-web"))
	assert.True(t, podExists(t, cs, "web-1"))
}

func TestIsHelpQuery(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{query: "help", want: true},
		{query: "help me", want: true},
		{query: "?", want: true},
		{query: "logs of helpdesk-api", want: false},
		{query: "delete pod helper-web", want: false},
		{query: "i need help", want: false},
		{query: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, isHelpQuery(tt.query))
		})
	}
}

func TestSession_NoToolSelected(t *testing.T) {
	var tools []mcp.Tool
	for i := range 12 {
		tools = append(tools, mcp.NewTool(fmt.Sprintf("tool_%02d", i)))
	}
	ft := &fakeTools{tools: tools}
	var out bytes.Buffer
	s := New(ft, &fakeModel{}, WithOutput(&out))

	_, err := s.Handle(context.Background(), "what is the weather")
	require.Error(t, err)
	assert.Contains(t, out.String(), "Error: AI could not determine a valid action for this query.")
	assert.Contains(t, out.String(), "  - tool 09")
	assert.NotContains(t, out.String(), "tool 10")
	assert.Equal(t, 10, strings.Count(out.String(), "  - "))
	assert.Empty(t, ft.calls)
}

func TestSession_UnknownToolSelected(t *testing.T) {
	ft := &fakeTools{tools: []mcp.Tool{mcp.NewTool(krsmcp.ToolListPods)}}
	model := &fakeModel{selections: map[string]*llm.Selection{"scale it": {Tool: "scale_deployment"}}}
	var out bytes.Buffer
	s := New(ft, model, WithOutput(&out))

	_, err := s.Handle(context.Background(), "scale it")
	require.Error(t, err)
	assert.Contains(t, out.String(), "Error: `scale_deployment` is not a valid tool. Available tools: list_pods")
	assert.Empty(t, ft.calls)
}

func TestSession_Remediation(t *testing.T) {
	ft := &fakeTools{
		tools: []mcp.Tool{mcp.NewTool(krsmcp.ToolPodLogs)},
		call: func(context.Context, string, map[string]any) (krsmcp.Result, error) {
			r := krsmcp.Fail(errors.New("bad request"), "Error retrieving logs: container is waiting to start")
			r.Remediable = true
			return r, nil
		},
	}
	model := &fakeModel{
		selections:  map[string]*llm.Selection{"logs of web-1": {Tool: krsmcp.ToolPodLogs, Arguments: map[string]any{"name": "web-1"}}},
		remediation: "1. Check the image pull status.",
	}
	var out bytes.Buffer
	s := New(ft, model, WithOutput(&out))

	_, _ = s.Handle(context.Background(), "logs of web-1")
	assert.Contains(t, out.String(), "Error retrieving logs: container is waiting to start")
	assert.Contains(t, out.String(), "AI's step-by-step resolution suggestion:\n1. Check the image pull status.")
	assert.Equal(t, []string{"Error retrieving logs: container is waiting to start"}, model.remediated)
	assert.Nil(t, s.State().Pending())
}

func TestSession_ToolTimeout(t *testing.T) {
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })

	ft := &fakeTools{
		tools: []mcp.Tool{mcp.NewTool(krsmcp.ToolListPods)},
		call: func(context.Context, string, map[string]any) (krsmcp.Result, error) {
			<-block
			return krsmcp.OK("late"), nil
		},
	}
	model := &fakeModel{selections: map[string]*llm.Selection{"list pods": {Tool: krsmcp.ToolListPods}}}
	var out bytes.Buffer
	s := New(ft, model, WithOutput(&out), WithToolTimeout(20*time.Millisecond))

	start := time.Now()
	_, err := s.Handle(context.Background(), "list pods")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Contains(t, out.String(), "Error: The tool request timed out.")
}

func TestSession_ModelError(t *testing.T) {
	s, out, _ := newLocalSession(t, &fakeModel{err: errors.New("overloaded")})

	quit, err := s.Handle(context.Background(), "list pods")
	require.Error(t, err)
	assert.False(t, quit)
	assert.Contains(t, out.String(), "Error processing query with Anthropic: overloaded")
}

func TestSession_Run(t *testing.T) {
	model := &fakeModel{selections: map[string]*llm.Selection{
		"list pods": {Tool: krsmcp.ToolListPods, Arguments: map[string]any{"namespace": "default"}},
	}}
	s, out, _ := newLocalSession(t, model, "web-1")

	in := strings.NewReader("list pods\nboom\nhelp\nquit\nlist pods\n")
	require.NoError(t, s.Run(context.Background(), in))

	got := out.String()
	assert.Equal(t, 1, strings.Count(got, "Available Tools:"))
	assert.Contains(t, got, "List Pods:\nweb-1 (Running)")
	assert.Contains(t, got, "Error: kaboom")
	assert.Contains(t, got, "Here are some available commands you can use:")
	assert.Contains(t, got, "Goodbye!")
	assert.Equal(t, 1, strings.Count(got, "web-1 (Running)"))
}

func TestSession_RunStopsAtEOF(t *testing.T) {
	s, out, _ := newLocalSession(t, &fakeModel{})

	require.NoError(t, s.Run(context.Background(), strings.NewReader("")))
	assert.Contains(t, out.String(), "MCP Client Started!")
}

func TestSession_RunClosesInput(t *testing.T) {
	s, out, _ := newLocalSession(t, &fakeModel{})
	pr, pw := io.Pipe()

	written := make(chan error, 1)
	go func() {
		_, err := pw.Write([]byte("quit\n"))
		written <- err
	}()

	require.NoError(t, s.Run(context.Background(), pr))
	require.NoError(t, <-written)
	assert.Contains(t, out.String(), "Goodbye!")

	_, err := pw.Write([]byte("list pods\n"))
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}
