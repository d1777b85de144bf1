package domain

import (
	"fmt"
	"math"
)

// View is one entity's position on an issue. For voters Weight is the
// personal importance of the issue; candidates carry a weight of 1 that is
// never used, since candidate views are only compared for equality.
type View struct {
	Issue  *Issue
	Stance string
	Weight float64
}

// NewView validates and returns a View. The stance must be legal for the
// issue and the weight must be a finite, non-negative number.
func NewView(issue *Issue, stance string, weight float64) (View, error) {
	if issue == nil {
		return View{}, fmt.Errorf("view issue: %w", ErrMissingField)
	}
	if !issue.HasStance(stance) {
		return View{}, fmt.Errorf("issue %s stance %q: %w", issue.name, stance, ErrUnknownStance)
	}
	if math.IsNaN(weight) || math.IsInf(weight, 0) {
		return View{}, fmt.Errorf("issue %s weight %v: %w", issue.name, weight, ErrInvalidNumber)
	}
	if weight < 0 {
		return View{}, fmt.Errorf("issue %s weight %v: %w", issue.name, weight, ErrNegativeValue)
	}
	return View{Issue: issue, Stance: stance, Weight: weight}, nil
}

// Voter is a synthetic individual holding exactly one view per registry
// issue. A Voter never changes after construction.
type Voter struct {
	registry *Registry
	views    map[string]View
}

// NewVoter creates a Voter from one view per registry issue, in any order.
func NewVoter(registry *Registry, views []View) (*Voter, error) {
	byIssue := make(map[string]View, len(views))
	for _, v := range views {
		if v.Issue == nil {
			return nil, fmt.Errorf("voter view issue: %w", ErrMissingField)
		}
		registered, ok := registry.Lookup(v.Issue.name)
		if !ok || registered != v.Issue {
			return nil, fmt.Errorf("voter view on %s: %w", v.Issue.name, ErrUnknownIssue)
		}
		if _, exists := byIssue[v.Issue.name]; exists {
			return nil, fmt.Errorf("voter view on %s: %w", v.Issue.name, ErrDuplicateName)
		}
		byIssue[v.Issue.name] = v
	}
	for _, issue := range registry.issues {
		if _, ok := byIssue[issue.name]; !ok {
			return nil, fmt.Errorf("voter has no view on %s: %w", issue.name, ErrMissingView)
		}
	}
	return &Voter{registry: registry, views: byIssue}, nil
}

// View returns the voter's view on the named issue.
func (v *Voter) View(issue string) (View, bool) {
	view, ok := v.views[issue]
	return view, ok
}

// Views returns the voter's views in registry order.
func (v *Voter) Views() []View {
	out := make([]View, 0, len(v.views))
	for _, issue := range v.registry.issues {
		out = append(out, v.views[issue.name])
	}
	return out
}

// Candidate is an entity with fixed declared stances competing for votes.
// Vote totals are not stored on the candidate; they belong to whoever runs
// the election.
type Candidate struct {
	name      string
	positions map[string]string
}

// NewCandidate creates a Candidate from its views. Views must name distinct
// issues. Completeness against a registry is checked by the caller, since a
// synthesized candidate may legitimately leave an issue undefined.
func NewCandidate(name string, views []View) (*Candidate, error) {
	if name == "" {
		return nil, fmt.Errorf("candidate name: %w", ErrMissingField)
	}
	positions := make(map[string]string, len(views))
	for _, v := range views {
		if v.Issue == nil {
			return nil, fmt.Errorf("candidate %s view issue: %w", name, ErrMissingField)
		}
		if !v.Issue.HasStance(v.Stance) {
			return nil, fmt.Errorf("candidate %s issue %s stance %q: %w", name, v.Issue.name, v.Stance, ErrUnknownStance)
		}
		if _, exists := positions[v.Issue.name]; exists {
			return nil, fmt.Errorf("candidate %s issue %s: %w", name, v.Issue.name, ErrDuplicateName)
		}
		positions[v.Issue.name] = v.Stance
	}
	return &Candidate{name: name, positions: positions}, nil
}

// Name returns the candidate name.
func (c *Candidate) Name() string { return c.name }

// Stance returns the candidate's stance on the named issue. It returns false
// when the candidate has no defined stance on that issue.
func (c *Candidate) Stance(issue string) (string, bool) {
	s, ok := c.positions[issue]
	return s, ok
}

// Covers reports the first registry issue the candidate has no stance on.
func (c *Candidate) Covers(registry *Registry) (string, bool) {
	for _, issue := range registry.issues {
		if _, ok := c.positions[issue.name]; !ok {
			return issue.name, false
		}
	}
	return "", true
}
