package pods

import (
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// SimilarityCutoff is the minimum similarity ratio for a fuzzy suggestion.
const SimilarityCutoff = 0.6

var nameSeparators = regexp.MustCompile(`[\s,]+`)

// Suggestion maps a requested name that does not exist to the closest live name.
type Suggestion struct {
	Requested string
	Suggested string
}

// Resolution splits a deletion request against the live pod names.
type Resolution struct {
	// ToDelete holds exact matches.
	ToDelete []string
	// Suggestions holds inexact requests with a close enough live name. They
	// need confirmation and are never deleted as part of this request.
	Suggestions []Suggestion
	// Unmatched holds requests with no exact or close match.
	Unmatched []string
}

// SplitNames treats the word "and" like a comma, then splits on commas and
// whitespace. Empty and repeated names are dropped.
func SplitNames(raw string) []string {
	var names []string
	seen := map[string]struct{}{}
	for _, name := range nameSeparators.Split(raw, -1) {
		if name == "" || strings.EqualFold(name, "and") {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// Resolve maps the names in raw onto existing.
func Resolve(raw string, existing []string) Resolution {
	exists := make(map[string]struct{}, len(existing))
	for _, name := range existing {
		exists[name] = struct{}{}
	}

	var res Resolution
	for _, name := range SplitNames(raw) {
		if _, ok := exists[name]; ok {
			res.ToDelete = append(res.ToDelete, name)
			continue
		}
		if match, ok := ClosestMatch(name, existing, SimilarityCutoff); ok {
			res.Suggestions = append(res.Suggestions, Suggestion{Requested: name, Suggested: match})
			continue
		}
		res.Unmatched = append(res.Unmatched, name)
	}
	return res
}

// ClosestMatch returns the candidate with the highest similarity ratio to word,
// provided it reaches cutoff. On ties the earliest candidate wins.
func ClosestMatch(word string, candidates []string, cutoff float64) (string, bool) {
	best, bestScore := "", -1.0
	for _, candidate := range candidates {
		score := Similarity(candidate, word)
		if score >= cutoff && score > bestScore {
			best, bestScore = candidate, score
		}
	}
	return best, bestScore >= 0
}

// Similarity is difflib's ratio between a and b compared character by character.
func Similarity(a, b string) float64 {
	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
}
