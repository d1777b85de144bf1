// Package domain contains pure, dependency-free domain models and types
// for the election simulator.
package domain

import (
	"fmt"
	"slices"
	"sort"
)

// Issue is a named axis of political disagreement with a fixed set of legal
// stances. The stance list keeps its declaration order, which decides
// plurality ties. An Issue is immutable after construction.
type Issue struct {
	name    string
	stances []string
	index   map[string]int
}

// NewIssue creates an Issue. The name must be non-empty and the stances must
// be non-empty and unique.
func NewIssue(name string, stances []string) (*Issue, error) {
	if name == "" {
		return nil, fmt.Errorf("issue name: %w", ErrMissingField)
	}
	if len(stances) == 0 {
		return nil, fmt.Errorf("issue %s has no stances: %w", name, ErrMissingField)
	}

	index := make(map[string]int, len(stances))
	for i, s := range stances {
		if s == "" {
			return nil, fmt.Errorf("issue %s stance %d is empty: %w", name, i, ErrMissingField)
		}
		if _, exists := index[s]; exists {
			return nil, fmt.Errorf("issue %s stance %q: %w", name, s, ErrDuplicateName)
		}
		index[s] = i
	}

	return &Issue{
		name:    name,
		stances: slices.Clone(stances),
		index:   index,
	}, nil
}

// Name returns the unique issue name.
func (i *Issue) Name() string { return i.name }

// Stances returns a copy of the legal stances in declaration order.
func (i *Issue) Stances() []string { return slices.Clone(i.stances) }

// HasStance reports whether s is a legal stance on this issue.
func (i *Issue) HasStance(s string) bool {
	_, ok := i.index[s]
	return ok
}

// StanceIndex returns the declaration position of s.
func (i *Issue) StanceIndex(s string) (int, bool) {
	idx, ok := i.index[s]
	return idx, ok
}

// Registry is the canonical, name-sorted set of issues in an election.
// Every comparison between voters and candidates iterates the registry's
// issue list and looks both sides up by issue name.
type Registry struct {
	issues []*Issue
	byName map[string]*Issue
}

// NewRegistry builds a registry from issues, rejecting duplicate names.
// The input order is irrelevant; the registry is always sorted by name.
func NewRegistry(issues []*Issue) (*Registry, error) {
	byName := make(map[string]*Issue, len(issues))
	for _, issue := range issues {
		if issue == nil {
			return nil, fmt.Errorf("nil issue: %w", ErrMissingField)
		}
		if _, exists := byName[issue.name]; exists {
			return nil, fmt.Errorf("issue %s: %w", issue.name, ErrDuplicateName)
		}
		byName[issue.name] = issue
	}

	sorted := slices.Clone(issues)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a].name < sorted[b].name })

	return &Registry{issues: sorted, byName: byName}, nil
}

// Issues returns the issues sorted by name.
func (r *Registry) Issues() []*Issue { return slices.Clone(r.issues) }

// Len returns the number of issues.
func (r *Registry) Len() int { return len(r.issues) }

// Names returns the issue names in registry order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.issues))
	for i, issue := range r.issues {
		names[i] = issue.name
	}
	return names
}

// Lookup returns the issue with the given name.
func (r *Registry) Lookup(name string) (*Issue, bool) {
	issue, ok := r.byName[name]
	return issue, ok
}

// Tally counts, for every issue, how many voters hold each stance. Counts
// start at zero for every declared stance. The registry itself is not
// mutated; the returned tallies belong to the caller.
func (r *Registry) Tally(voters []*Voter) ([]StanceTally, error) {
	tallies := make([]StanceTally, len(r.issues))
	for i, issue := range r.issues {
		tallies[i] = NewStanceTally(issue)
	}

	for _, v := range voters {
		for i, issue := range r.issues {
			view, ok := v.View(issue.name)
			if !ok {
				return nil, NewStructuralInvariantError("", issue.name, ErrMissingView)
			}
			if err := tallies[i].Record(view.Stance); err != nil {
				return nil, err
			}
		}
	}

	return tallies, nil
}

// StanceTally holds stance counts for one issue, aligned with the issue's
// declared stance order.
type StanceTally struct {
	Issue  *Issue
	Counts []int
}

// NewStanceTally returns a zeroed tally for issue.
func NewStanceTally(issue *Issue) StanceTally {
	return StanceTally{Issue: issue, Counts: make([]int, len(issue.stances))}
}

// Record adds one observation of stance.
func (t StanceTally) Record(stance string) error {
	idx, ok := t.Issue.StanceIndex(stance)
	if !ok {
		return fmt.Errorf("issue %s stance %q: %w", t.Issue.name, stance, ErrUnknownStance)
	}
	t.Counts[idx]++
	return nil
}

// Count returns the count for stance, or 0 for an unknown stance.
func (t StanceTally) Count(stance string) int {
	idx, ok := t.Issue.StanceIndex(stance)
	if !ok {
		return 0
	}
	return t.Counts[idx]
}

// Total returns the number of recorded observations.
func (t StanceTally) Total() int {
	total := 0
	for _, c := range t.Counts {
		total += c
	}
	return total
}

// Plurality returns the stance with the strictly greatest count. Ties go to
// the stance declared first. It returns false when nothing was recorded.
func (t StanceTally) Plurality() (string, bool) {
	best, bestIdx := 0, -1
	for i, c := range t.Counts {
		if c > best {
			best, bestIdx = c, i
		}
	}
	if bestIdx < 0 {
		return "", false
	}
	return t.Issue.stances[bestIdx], true
}
