package domain

import (
	"fmt"
	"math"
	"slices"
)

// ProportionTolerance is the allowed deviation of a stance-proportion sum
// from 1.0.
const ProportionTolerance = 1e-6

// PopulationView describes how one population feels about one issue: the
// share of members holding each stance, and the mean and standard deviation
// of the importance members attach to the issue.
type PopulationView struct {
	Issue        *Issue
	Proportions  map[string]float64
	Weight       float64
	WeightStdDev float64
}

// NewPopulationView validates and returns a PopulationView. Every declared
// stance needs a proportion, proportions must be non-negative and sum to 1.0
// within ProportionTolerance, and the standard deviation must be
// non-negative. Proportions are never renormalized.
func NewPopulationView(issue *Issue, proportions map[string]float64, weight, stddev float64) (PopulationView, error) {
	if issue == nil {
		return PopulationView{}, fmt.Errorf("population view issue: %w", ErrMissingField)
	}
	if err := checkFinite(weight); err != nil {
		return PopulationView{}, fmt.Errorf("issue %s weight: %w", issue.name, err)
	}
	if err := checkFinite(stddev); err != nil {
		return PopulationView{}, fmt.Errorf("issue %s weight_variance: %w", issue.name, err)
	}
	if stddev < 0 {
		return PopulationView{}, fmt.Errorf("issue %s weight_variance %v: %w", issue.name, stddev, ErrNegativeValue)
	}

	for stance := range proportions {
		if !issue.HasStance(stance) {
			return PopulationView{}, fmt.Errorf("issue %s stance %q: %w", issue.name, stance, ErrUnknownStance)
		}
	}

	var sum float64
	for _, stance := range issue.stances {
		p, ok := proportions[stance]
		if !ok {
			return PopulationView{}, fmt.Errorf("issue %s stance %q has no proportion: %w", issue.name, stance, ErrMissingField)
		}
		if err := checkFinite(p); err != nil {
			return PopulationView{}, fmt.Errorf("issue %s stance %q: %w", issue.name, stance, err)
		}
		if p < 0 {
			return PopulationView{}, fmt.Errorf("issue %s stance %q proportion %v: %w", issue.name, stance, p, ErrNegativeValue)
		}
		sum += p
	}
	if math.Abs(sum-1) > ProportionTolerance {
		return PopulationView{}, fmt.Errorf("issue %s sums to %v: %w", issue.name, sum, ErrProportionSum)
	}

	copied := make(map[string]float64, len(proportions))
	for k, v := range proportions {
		copied[k] = v
	}

	return PopulationView{
		Issue:        issue,
		Proportions:  copied,
		Weight:       weight,
		WeightStdDev: stddev,
	}, nil
}

// Probabilities returns the stance proportions aligned with the issue's
// declared stance order.
func (pv PopulationView) Probabilities() []float64 {
	probs := make([]float64, len(pv.Issue.stances))
	for i, s := range pv.Issue.stances {
		probs[i] = pv.Proportions[s]
	}
	return probs
}

// PopulationSpec is a validated population definition: a name, a target
// size and one PopulationView per registry issue, in registry order.
type PopulationSpec struct {
	Name  string
	Size  int
	Views []PopulationView
}

// NewPopulationSpec aligns views to the registry order and checks that every
// issue is covered exactly once.
func NewPopulationSpec(registry *Registry, name string, size int, views []PopulationView) (PopulationSpec, error) {
	if name == "" {
		return PopulationSpec{}, fmt.Errorf("population name: %w", ErrMissingField)
	}
	if size < 0 {
		return PopulationSpec{}, fmt.Errorf("population %s size %d: %w", name, size, ErrNegativeValue)
	}

	byIssue := make(map[string]PopulationView, len(views))
	for _, v := range views {
		if v.Issue == nil {
			return PopulationSpec{}, fmt.Errorf("population %s view issue: %w", name, ErrMissingField)
		}
		if _, ok := registry.Lookup(v.Issue.name); !ok {
			return PopulationSpec{}, fmt.Errorf("population %s issue %s: %w", name, v.Issue.name, ErrUnknownIssue)
		}
		if _, exists := byIssue[v.Issue.name]; exists {
			return PopulationSpec{}, fmt.Errorf("population %s issue %s: %w", name, v.Issue.name, ErrDuplicateName)
		}
		byIssue[v.Issue.name] = v
	}

	aligned := make([]PopulationView, 0, registry.Len())
	for _, issue := range registry.issues {
		v, ok := byIssue[issue.name]
		if !ok {
			return PopulationSpec{}, fmt.Errorf("population %s has no view on %s: %w", name, issue.name, ErrMissingView)
		}
		aligned = append(aligned, v)
	}

	return PopulationSpec{Name: name, Size: size, Views: aligned}, nil
}

// Population is a named cohort together with the voters generated for it.
// Voters are created once and never regenerated.
type Population struct {
	spec   PopulationSpec
	voters []*Voter
}

// NewPopulation binds generated voters to their spec. The number of voters
// must equal the spec size.
func NewPopulation(spec PopulationSpec, voters []*Voter) (*Population, error) {
	if len(voters) != spec.Size {
		return nil, fmt.Errorf("population %s: generated %d voters, want %d", spec.Name, len(voters), spec.Size)
	}
	for i, v := range voters {
		if v == nil {
			return nil, fmt.Errorf("population %s voter %d: %w", spec.Name, i, ErrMissingField)
		}
	}
	return &Population{spec: spec, voters: slices.Clone(voters)}, nil
}

// Name returns the population name.
func (p *Population) Name() string { return p.spec.Name }

// Size returns the number of voters.
func (p *Population) Size() int { return len(p.voters) }

// Spec returns the population definition.
func (p *Population) Spec() PopulationSpec { return p.spec }

// Voters returns the population's voters.
func (p *Population) Voters() []*Voter { return slices.Clone(p.voters) }

// Ballot is a compiled, validated election definition. It is immutable and
// safe to share between concurrent runs.
type Ballot struct {
	// Registry holds the issues sorted by name.
	Registry *Registry

	// Candidates keeps the configured input order, which decides ties.
	Candidates []*Candidate

	// Populations keeps the configured input order.
	Populations []PopulationSpec

	// Seed is the configured base seed; it is only meaningful when HasSeed
	// is true.
	Seed    uint64
	HasSeed bool
}

// TotalVoters returns the number of voters the ballot will generate.
func (b *Ballot) TotalVoters() int {
	total := 0
	for _, p := range b.Populations {
		total += p.Size
	}
	return total
}

func checkFinite(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ErrInvalidNumber
	}
	return nil
}
