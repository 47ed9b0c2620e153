package pods

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// DefaultImage is the container image used when a spec names none.
const DefaultImage = "nginx:latest"

// Synthesizer turns bare names or partial pods into complete pod manifests.
type Synthesizer struct {
	Namer *Namer
	Image string
}

func NewSynthesizer() *Synthesizer {
	return &Synthesizer{
		Namer: NewNamer(),
		Image: DefaultImage,
	}
}

// Synthesize builds a pod named name with one baseline container and a free port.
func (s *Synthesizer) Synthesize(name string, snap *Snapshot) *corev1.Pod {
	pod := &corev1.Pod{
		TypeMeta:   metav1.TypeMeta{APIVersion: "v1", Kind: "Pod"},
		ObjectMeta: metav1.ObjectMeta{Name: name},
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{s.baselineContainer(name, snap)},
		},
	}
	return s.Complete(pod, snap)
}

// Complete returns a copy of partial with the missing name, containers and
// ports filled in. Every container ends up with at least one port.
func (s *Synthesizer) Complete(partial *corev1.Pod, snap *Snapshot) *corev1.Pod {
	var pod *corev1.Pod
	if partial == nil {
		pod = &corev1.Pod{}
	} else {
		pod = partial.DeepCopy()
	}
	pod.APIVersion, pod.Kind = "v1", "Pod"

	if pod.Name == "" {
		pod.Name = s.Namer.NextName(snap)
	}

	if len(pod.Spec.Containers) == 0 {
		pod.Spec.Containers = []corev1.Container{s.baselineContainer(pod.Name, snap)}
		return pod
	}

	for i := range pod.Spec.Containers {
		c := &pod.Spec.Containers[i]
		if c.Name == "" {
			c.Name = pod.Name
		}
		if c.Image == "" {
			c.Image = s.image()
		}
		if len(c.Ports) == 0 {
			c.Ports = []corev1.ContainerPort{{ContainerPort: s.Namer.NextPort(snap)}}
		}
	}
	return pod
}

func (s *Synthesizer) baselineContainer(name string, snap *Snapshot) corev1.Container {
	return corev1.Container{
		Name:  name,
		Image: s.image(),
		Ports: []corev1.ContainerPort{{ContainerPort: s.Namer.NextPort(snap)}},
	}
}

func (s *Synthesizer) image() string {
	if s.Image == "" {
		return DefaultImage
	}
	return s.Image
}

// IsDuplicate reports whether pod collides with snap: same name, or any live
// container running the same image on an overlapping port.
func IsDuplicate(pod *corev1.Pod, snap *Snapshot) bool {
	if snap.Has(pod.Name) {
		return true
	}
	for _, existing := range snap.Pods() {
		for _, ec := range existing.Containers {
			for _, nc := range pod.Spec.Containers {
				if ec.Image != nc.Image {
					continue
				}
				for _, np := range nc.Ports {
					for _, ep := range ec.Ports {
						if np.ContainerPort == ep {
							return true
						}
					}
				}
			}
		}
	}
	return false
}
