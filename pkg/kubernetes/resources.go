package kubernetes

import (
	"context"
	"io"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"
)

// maxLogBytes caps a single log read.
const maxLogBytes = 1 << 20

func (k *Kubernetes) PodsList(ctx context.Context, namespace string) ([]corev1.Pod, error) {
	pods, err := k.clientSet.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}
	return pods.Items, nil
}

func (k *Kubernetes) NamespacesList(ctx context.Context) ([]corev1.Namespace, error) {
	namespaces, err := k.clientSet.CoreV1().Namespaces().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}
	return namespaces.Items, nil
}

func (k *Kubernetes) ServicesList(ctx context.Context, namespace string) ([]corev1.Service, error) {
	services, err := k.clientSet.CoreV1().Services(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}
	return services.Items, nil
}

func (k *Kubernetes) DeploymentsList(ctx context.Context, namespace string) ([]appsv1.Deployment, error) {
	deployments, err := k.clientSet.AppsV1().Deployments(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}
	return deployments.Items, nil
}

// CreatePod submits pod to namespace. It never retries.
func (k *Kubernetes) CreatePod(ctx context.Context, namespace string, pod *corev1.Pod) error {
	_, err := k.clientSet.CoreV1().Pods(namespace).Create(ctx, pod, metav1.CreateOptions{})
	return err
}

// DeletePod deletes a single pod by exact name. It never retries.
func (k *Kubernetes) DeletePod(ctx context.Context, namespace, name string) error {
	return k.clientSet.CoreV1().Pods(namespace).Delete(ctx, name, metav1.DeleteOptions{})
}

// PodLogs reads the logs of the pod's default container. tailLines <= 0 reads everything.
func (k *Kubernetes) PodLogs(ctx context.Context, namespace, name string, tailLines int64) (string, error) {
	opts := &corev1.PodLogOptions{LimitBytes: ptr.To[int64](maxLogBytes)}
	if tailLines > 0 {
		opts.TailLines = ptr.To(tailLines)
	}

	stream, err := k.clientSet.CoreV1().Pods(namespace).GetLogs(name, opts).Stream(ctx)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	logs, err := io.ReadAll(stream)
	if err != nil {
		return "", err
	}
	return string(logs), nil
}
