// Package planparser turns free-form model output into candidate plans.
// Candidates are read from numbered-list lines ("1. Do the thing").
package planparser

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// DefaultMaxAttempts is the number of model round-trips GenerateCandidates
// makes when the caller does not ask for a specific budget.
const DefaultMaxAttempts = 2

// separators may follow a list marker: "1.", "1)", "1:".
const separators = ".):"

// markerTable maps list positions to their marker text, e.g. {1: "1", 2: "2"}.
type markerTable map[int]string

func newMarkerTable(want int) markerTable {
	t := make(markerTable, want)
	for i := 1; i <= want; i++ {
		t[i] = strconv.Itoa(i)
	}
	return t
}

// longestFirst returns the markers ordered so that "10" is tried before "1".
func (t markerTable) longestFirst() []string {
	out := make([]string, 0, len(t))
	for _, m := range t {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}

// match reports the text after the marker and separator if line is a
// numbered item covered by the table.
func (t markerTable) match(markers []string, line string) (string, bool) {
	line = strings.TrimSpace(line)
	for _, m := range markers {
		if !strings.HasPrefix(line, m) {
			continue
		}
		rest := line[len(m):]
		if rest == "" || !strings.ContainsRune(separators, rune(rest[0])) {
			continue
		}
		return strings.TrimSpace(rest[1:]), true
	}
	return "", false
}

// ExtractCandidates scans raw line by line and returns up to want distinct
// candidates in first-seen order.
func ExtractCandidates(raw string, want int) []string {
	return ExtractCandidatesInto(raw, want, nil)
}

// ExtractCandidatesInto is ExtractCandidates continuing from an already
// collected set: candidates present in seen are skipped and the result is
// seen plus the new candidates, capped at want entries.
func ExtractCandidatesInto(raw string, want int, seen []string) []string {
	if want <= 0 {
		return seen
	}
	out := append([]string(nil), seen...)
	if len(out) >= want {
		return out[:want]
	}

	table := newMarkerTable(want)
	markers := table.longestFirst()
	have := make(map[string]struct{}, want)
	for _, c := range out {
		have[c] = struct{}{}
	}

	for _, line := range strings.Split(raw, "\n") {
		candidate, ok := table.match(markers, line)
		if !ok || candidate == "" {
			continue
		}
		if _, dup := have[candidate]; dup {
			continue
		}
		have[candidate] = struct{}{}
		out = append(out, candidate)
		if len(out) == want {
			break
		}
	}
	return out
}

// RequestFunc performs one model round-trip asking for remaining more
// candidates and returns the raw response text.
type RequestFunc func(ctx context.Context, remaining int) (string, error)

// GenerateCandidates calls request up to maxAttempts times, merging the
// candidates of each response, until want distinct candidates are collected.
// Collecting fewer than want is not an error; callers check the length.
// A failed request stops generation and is returned together with whatever
// was collected before it.
func GenerateCandidates(ctx context.Context, request RequestFunc, want, maxAttempts int) ([]string, error) {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	var collected []string
	for attempt := 1; attempt <= maxAttempts && len(collected) < want; attempt++ {
		raw, err := request(ctx, want-len(collected))
		if err != nil {
			return collected, fmt.Errorf("generate candidates: attempt %d: %w", attempt, err)
		}
		collected = ExtractCandidatesInto(raw, want, collected)
	}
	return collected, nil
}
