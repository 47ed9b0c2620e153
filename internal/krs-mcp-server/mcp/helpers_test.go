package mcp

import (
	"context"
	"testing"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/fleezesd/krs/pkg/kubernetes"
)

func newTestServer(t *testing.T, objects ...runtime.Object) (*Server, *fake.Clientset) {
	t.Helper()
	cs := fake.NewSimpleClientset(objects...)
	return NewServerWithKubernetes(kubernetes.NewKubernetesWithClientSet(cs)), cs
}

func testPod(name string, phase corev1.PodPhase, image string, ports ...int32) *corev1.Pod {
	c := corev1.Container{Name: name, Image: image}
	for _, p := range ports {
		c.Ports = append(c.Ports, corev1.ContainerPort{ContainerPort: p})
	}
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: "default"},
		Spec:       corev1.PodSpec{Containers: []corev1.Container{c}},
		Status:     corev1.PodStatus{Phase: phase},
	}
}

func dispatch(s *Server, name string, args map[string]any) Result {
	return s.Registry().Dispatch(context.Background(), name, args)
}
