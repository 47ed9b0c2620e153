package pods

import (
	"context"
	"fmt"
	"strings"

	"github.com/fleezesd/krs/internal/pkg/metrics"
	"github.com/fleezesd/krs/pkg/log"
)

// PodDeleter deletes a single pod by exact name.
type PodDeleter interface {
	DeletePod(ctx context.Context, namespace, name string) error
}

// DeleteResult reports a deletion request.
type DeleteResult struct {
	Deleted     []string
	Failed      []Failure
	Suggestions []Suggestion
}

// NeedsConfirmation reports whether some names resolved only to suggestions.
func (r *DeleteResult) NeedsConfirmation() bool {
	return len(r.Suggestions) > 0
}

// Prompt is the yes/no question for one suggestion.
func (s Suggestion) Prompt() string {
	return fmt.Sprintf("Pod '%s' not found. Did you mean '%s'? Reply 'yes' to delete it.", s.Requested, s.Suggested)
}

// Summary renders the result the way the delete_pod tool reports it.
// Confirmation prompts come last, one per suggestion.
func (r *DeleteResult) Summary() string {
	var lines []string
	if len(r.Deleted) > 0 {
		lines = append(lines, "Pods deleted successfully: "+strings.Join(r.Deleted, ", "))
	}
	if len(r.Failed) > 0 {
		failed := make([]string, 0, len(r.Failed))
		for _, f := range r.Failed {
			failed = append(failed, f.String())
		}
		lines = append(lines, "Failed to delete pods: "+strings.Join(failed, ", "))
	}
	for _, s := range r.Suggestions {
		lines = append(lines, s.Prompt())
	}
	if len(lines) == 0 {
		return "No pods were deleted."
	}
	return strings.Join(lines, "\n")
}

// Delete deletes the exact and unmatched names of res one at a time. Unmatched
// names are still sent so the API reports why they failed. Suggested names are
// left alone until confirmed.
func Delete(ctx context.Context, deleter PodDeleter, namespace string, res Resolution) *DeleteResult {
	result := &DeleteResult{Suggestions: res.Suggestions}

	targets := append(append([]string(nil), res.ToDelete...), res.Unmatched...)
	for _, name := range targets {
		if err := deleter.DeletePod(ctx, namespace, name); err != nil {
			log.Warnw("Failed to delete pod", "namespace", namespace, "pod", name, "err", err)
			result.Failed = append(result.Failed, Failure{Name: name, Err: err})
			continue
		}
		result.Deleted = append(result.Deleted, name)
	}

	metrics.PodDeleteItemsTotal.WithLabelValues("deleted").Add(float64(len(result.Deleted)))
	metrics.PodDeleteItemsTotal.WithLabelValues("failed").Add(float64(len(result.Failed)))
	metrics.PodDeleteItemsTotal.WithLabelValues("suggested").Add(float64(len(result.Suggestions)))
	return result
}
