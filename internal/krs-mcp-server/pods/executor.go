package pods

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	corev1 "k8s.io/api/core/v1"

	"github.com/fleezesd/krs/internal/pkg/metrics"
	"github.com/fleezesd/krs/pkg/log"
)

// PodCreator creates a single pod.
type PodCreator interface {
	CreatePod(ctx context.Context, namespace string, pod *corev1.Pod) error
}

// Failure is a per-item error.
type Failure struct {
	Name string
	Err  error
}

func (f Failure) String() string {
	return fmt.Sprintf("%s (%v)", f.Name, f.Err)
}

// BatchResult partitions a creation batch. The three sequences are disjoint
// and, being filled concurrently, carry no ordering guarantee.
type BatchResult struct {
	Created []string
	Skipped []string
	Failed  []Failure

	mu sync.Mutex
}

func (r *BatchResult) created(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Created = append(r.Created, name)
}

func (r *BatchResult) failed(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failed = append(r.Failed, Failure{Name: name, Err: err})
}

// Total is the number of specs the batch accounted for.
func (r *BatchResult) Total() int {
	return len(r.Created) + len(r.Skipped) + len(r.Failed)
}

// Summary renders the batch the way the create_pod tool reports it.
func (r *BatchResult) Summary() string {
	var lines []string
	if len(r.Created) > 0 {
		lines = append(lines, "Created pods: "+strings.Join(r.Created, ", "))
	}
	if len(r.Skipped) > 0 {
		lines = append(lines, "Skipped existing pods: "+strings.Join(r.Skipped, ", "))
	}
	if len(r.Failed) > 0 {
		failed := make([]string, 0, len(r.Failed))
		for _, f := range r.Failed {
			failed = append(failed, f.String())
		}
		lines = append(lines, "Failed to create: "+strings.Join(failed, ", "))
	}
	if len(lines) == 0 {
		return "No pods were created."
	}
	return strings.Join(lines, "\n")
}

// Executor commits creation batches against the cluster.
type Executor struct {
	creator PodCreator
	// limit caps in-flight creations; <= 0 means unlimited.
	limit int
}

func NewExecutor(creator PodCreator, limit int) *Executor {
	return &Executor{creator: creator, limit: limit}
}

// CreateBatch skips specs that duplicate snap and creates the rest concurrently.
// It returns once every creation has finished. A failed creation neither stops
// nor rolls back the others, and nothing is retried.
func (e *Executor) CreateBatch(ctx context.Context, namespace string, specs []*corev1.Pod, snap *Snapshot) *BatchResult {
	result := &BatchResult{}

	var pending []*corev1.Pod
	for _, spec := range specs {
		if IsDuplicate(spec, snap) {
			result.Skipped = append(result.Skipped, spec.Name)
			continue
		}
		pending = append(pending, spec)
	}

	var g errgroup.Group
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}
	for _, spec := range pending {
		g.Go(func() error {
			if err := e.creator.CreatePod(ctx, namespace, spec); err != nil {
				log.Warnw("Failed to create pod", "namespace", namespace, "pod", spec.Name, "err", err)
				result.failed(spec.Name, err)
				return nil
			}
			result.created(spec.Name)
			return nil
		})
	}
	_ = g.Wait()

	metrics.PodBatchItemsTotal.WithLabelValues("created").Add(float64(len(result.Created)))
	metrics.PodBatchItemsTotal.WithLabelValues("skipped").Add(float64(len(result.Skipped)))
	metrics.PodBatchItemsTotal.WithLabelValues("failed").Add(float64(len(result.Failed)))
	log.Debugw("Pod batch finished", "namespace", namespace,
		"created", len(result.Created), "skipped", len(result.Skipped), "failed", len(result.Failed))

	return result
}
