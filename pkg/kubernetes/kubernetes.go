package kubernetes

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/fleezesd/krs/pkg/log"
)

// DefaultNamespace is used when neither the caller nor the kubeconfig names one.
const DefaultNamespace = "default"

type CloseWatchKubeConfig func() error

type Kubernetes struct {
	Kubeconfig           string
	cfg                  *rest.Config
	clientCmdConfig      clientcmd.ClientConfig
	CloseWatchKubeConfig CloseWatchKubeConfig
	clientSet            kubernetes.Interface
}

// NewKubernetes builds a client from the given kubeconfig path, the default
// loading rules when the path is empty, or the in-cluster config.
func NewKubernetes(kubeconfig string) (*Kubernetes, error) {
	k := &Kubernetes{
		Kubeconfig: kubeconfig,
	}

	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	if kubeconfig != "" {
		loadingRules.ExplicitPath = kubeconfig
	}
	k.clientCmdConfig = clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, &clientcmd.ConfigOverrides{})

	var err error
	if k.IsInCluster() {
		k.cfg, err = InClusterConfig()
	} else {
		k.cfg, err = k.clientCmdConfig.ClientConfig()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load kubernetes client config: %w", err)
	}

	k.clientSet, err = kubernetes.NewForConfig(k.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes clientset: %w", err)
	}
	return k, nil
}

// NewKubernetesWithClientSet wraps an existing clientset, e.g. a fake one.
func NewKubernetesWithClientSet(clientSet kubernetes.Interface) *Kubernetes {
	return &Kubernetes{clientSet: clientSet}
}

func (k *Kubernetes) WatchKubeConfig(onKubeConfigChange func() error) {
	if k.clientCmdConfig == nil {
		return
	}
	kubeConfigFiles := k.clientCmdConfig.ConfigAccess().GetLoadingPrecedence()
	if len(kubeConfigFiles) == 0 {
		return
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Errorw(err, "Failed to watch kubeconfig")
		return
	}
	for _, file := range kubeConfigFiles {
		_ = watcher.Add(file)
	}
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				log.Infow("Kubeconfig changed, reloading client", "file", event.Name, "op", event.Op.String())
				if err := onKubeConfigChange(); err != nil {
					log.Errorw(err, "Failed to reload kubernetes client")
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warnw("Kubeconfig watcher error", "err", err)
			}
		}
	}()
	if k.CloseWatchKubeConfig != nil {
		_ = k.CloseWatchKubeConfig()
	}
	k.CloseWatchKubeConfig = watcher.Close
}

func (k *Kubernetes) Close() {
	if k.CloseWatchKubeConfig != nil {
		_ = k.CloseWatchKubeConfig()
	}
}

func (k *Kubernetes) configuredNamespace() (namespace string) {
	if k.clientCmdConfig == nil {
		return ""
	}
	namespace, _, err := k.clientCmdConfig.Namespace()
	if err != nil {
		return ""
	}
	return namespace
}

// NamespaceOrDefault returns namespace when set, then the kubeconfig's
// current-context namespace, then DefaultNamespace.
func (k *Kubernetes) NamespaceOrDefault(namespace string) string {
	if namespace != "" {
		return namespace
	}
	if ns := k.configuredNamespace(); ns != "" {
		return ns
	}
	return DefaultNamespace
}
