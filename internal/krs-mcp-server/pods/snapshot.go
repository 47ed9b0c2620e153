// Package pods holds the pod batch logic behind the create_pod and delete_pod tools.
package pods

import (
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/util/sets"
)

// ContainerInfo is the part of a live container that creation conflicts on.
type ContainerInfo struct {
	Name  string
	Image string
	Ports []int32
}

// PodInfo describes one live pod.
type PodInfo struct {
	Name       string
	Phase      corev1.PodPhase
	Containers []ContainerInfo
}

// Snapshot is a point-in-time, read-only view of the pods in a namespace.
// It is taken once per tool invocation and never refreshed.
type Snapshot struct {
	pods  map[string]PodInfo
	names []string
}

// NewSnapshot copies what it needs out of pods; later changes to pods are not seen.
func NewSnapshot(pods []corev1.Pod) *Snapshot {
	s := &Snapshot{
		pods:  make(map[string]PodInfo, len(pods)),
		names: make([]string, 0, len(pods)),
	}
	for i := range pods {
		pod := &pods[i]
		info := PodInfo{Name: pod.Name, Phase: pod.Status.Phase}
		for _, c := range pod.Spec.Containers {
			ci := ContainerInfo{Name: c.Name, Image: c.Image}
			for _, p := range c.Ports {
				ci.Ports = append(ci.Ports, p.ContainerPort)
			}
			info.Containers = append(info.Containers, ci)
		}
		if _, ok := s.pods[pod.Name]; !ok {
			s.names = append(s.names, pod.Name)
		}
		s.pods[pod.Name] = info
	}
	return s
}

// Has reports whether a pod named name exists.
func (s *Snapshot) Has(name string) bool {
	_, ok := s.pods[name]
	return ok
}

// Names returns pod names in listing order.
func (s *Snapshot) Names() []string {
	return append([]string(nil), s.names...)
}

// Pods returns the pod descriptors in listing order.
func (s *Snapshot) Pods() []PodInfo {
	out := make([]PodInfo, 0, len(s.names))
	for _, name := range s.names {
		out = append(out, s.pods[name])
	}
	return out
}

// UsedPorts returns every container port declared by any pod.
func (s *Snapshot) UsedPorts() sets.Set[int32] {
	used := sets.New[int32]()
	for _, pod := range s.pods {
		for _, c := range pod.Containers {
			used.Insert(c.Ports...)
		}
	}
	return used
}

func (s *Snapshot) Len() int { return len(s.names) }
