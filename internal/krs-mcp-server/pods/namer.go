package pods

import (
	utilrand "k8s.io/apimachinery/pkg/util/rand"
)

const (
	// DefaultNamePrefix prefixes generated pod names.
	DefaultNamePrefix = "pod-"
	// DefaultBasePort is the first port handed out.
	DefaultBasePort int32 = 8080

	suffixLength = 5
)

// Namer hands out pod names and container ports that do not collide with a snapshot.
type Namer struct {
	Prefix   string
	BasePort int32

	// suffix returns a random alphanumeric string of length n.
	suffix func(n int) string
}

func NewNamer() *Namer {
	return &Namer{
		Prefix:   DefaultNamePrefix,
		BasePort: DefaultBasePort,
		suffix:   utilrand.String,
	}
}

// NextName returns a prefixed random name absent from snap. Every attempt is
// checked against snap; nothing is remembered between calls.
func (n *Namer) NextName(snap *Snapshot) string {
	for {
		name := n.Prefix + n.suffix(suffixLength)
		if !snap.Has(name) {
			return name
		}
	}
}

// NextPort returns the smallest port >= BasePort not declared by any container in snap.
func (n *Namer) NextPort(snap *Snapshot) int32 {
	used := snap.UsedPorts()
	port := n.BasePort
	for used.Has(port) {
		port++
	}
	return port
}
