package application

import (
	"fmt"
	"math"
	"slices"

	"github.com/agnivade/levenshtein"
	"github.com/go-playground/validator/v10"

	"github.com/ahrav/go-electorate/internal/domain"
)

// registerCustomValidators registers the election-specific validation tags.
func registerCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("finite", validateFinite); err != nil {
		return fmt.Errorf("failed to register finite validator: %w", err)
	}
	return nil
}

// validateFinite rejects NaN and infinite floats, which YAML can express as
// .nan and .inf.
func validateFinite(fl validator.FieldLevel) bool {
	f := fl.Field()
	if !f.CanFloat() {
		return true
	}
	x := f.Float()
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// compileBallot performs the semantic validation that struct tags cannot
// express and builds the Ballot: issue and name uniqueness, reference
// integrity between candidates, populations and issues, completeness of
// every candidate and population, and the stance proportion sums.
func compileBallot(config *ElectionConfig) (*domain.Ballot, error) {
	registry, err := compileRegistry(config.Issues)
	if err != nil {
		return nil, err
	}

	candidates, err := compileCandidates(registry, config.Candidates)
	if err != nil {
		return nil, err
	}

	populations, err := compilePopulations(registry, config.Populations)
	if err != nil {
		return nil, err
	}

	ballot := &domain.Ballot{
		Registry:    registry,
		Candidates:  candidates,
		Populations: populations,
	}
	if config.Seed != nil {
		ballot.Seed = *config.Seed
		ballot.HasSeed = true
	}
	return ballot, nil
}

func compileRegistry(configs []IssueConfig) (*domain.Registry, error) {
	seen := make(map[string]int, len(configs))
	issues := make([]*domain.Issue, 0, len(configs))
	for i, ic := range configs {
		if prev, dup := seen[ic.Name]; dup {
			return nil, domain.NewConfigError(fmt.Sprintf("issues[%d].name", i),
				fmt.Errorf("%q already declared by issues[%d]: %w", ic.Name, prev, domain.ErrDuplicateName))
		}
		seen[ic.Name] = i

		issue, err := domain.NewIssue(ic.Name, ic.Stances)
		if err != nil {
			return nil, domain.NewConfigError(fmt.Sprintf("issues[%d]", i), err)
		}
		issues = append(issues, issue)
	}

	registry, err := domain.NewRegistry(issues)
	if err != nil {
		return nil, domain.NewConfigError("issues", err)
	}
	return registry, nil
}

func compileCandidates(registry *domain.Registry, configs []CandidateConfig) ([]*domain.Candidate, error) {
	seen := make(map[string]int, len(configs))
	candidates := make([]*domain.Candidate, 0, len(configs))
	for i, cc := range configs {
		if prev, dup := seen[cc.Name]; dup {
			return nil, domain.NewConfigError(fmt.Sprintf("candidates[%d].name", i),
				fmt.Errorf("%q already declared by candidates[%d]: %w", cc.Name, prev, domain.ErrDuplicateName))
		}
		seen[cc.Name] = i

		views := make([]domain.View, 0, len(cc.Views))
		covered := make(map[string]int, len(cc.Views))
		for j, vc := range cc.Views {
			field := fmt.Sprintf("candidates[%d].views[%d]", i, j)

			issue, err := lookupIssue(registry, vc.Issue)
			if err != nil {
				return nil, domain.NewConfigError(field+".issue", err)
			}
			if prev, dup := covered[vc.Issue]; dup {
				return nil, domain.NewConfigError(field+".issue",
					fmt.Errorf("%q already set by views[%d]: %w", vc.Issue, prev, domain.ErrDuplicateName))
			}
			covered[vc.Issue] = j

			if err := checkStance(issue, vc.Stance); err != nil {
				return nil, domain.NewConfigError(field+".stance", err)
			}
			view, err := domain.NewView(issue, vc.Stance, 1)
			if err != nil {
				return nil, domain.NewConfigError(field, err)
			}
			views = append(views, view)
		}

		candidate, err := domain.NewCandidate(cc.Name, views)
		if err != nil {
			return nil, domain.NewConfigError(fmt.Sprintf("candidates[%d]", i), err)
		}
		if missing, ok := candidate.Covers(registry); !ok {
			return nil, domain.NewConfigError(fmt.Sprintf("candidates[%d].views", i),
				fmt.Errorf("candidate %s has no stance on %q: %w", cc.Name, missing, domain.ErrMissingView))
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

func compilePopulations(registry *domain.Registry, configs []PopulationConfig) ([]domain.PopulationSpec, error) {
	seen := make(map[string]int, len(configs))
	specs := make([]domain.PopulationSpec, 0, len(configs))
	for i, pc := range configs {
		if prev, dup := seen[pc.Name]; dup {
			return nil, domain.NewConfigError(fmt.Sprintf("populations[%d].name", i),
				fmt.Errorf("%q already declared by populations[%d]: %w", pc.Name, prev, domain.ErrDuplicateName))
		}
		seen[pc.Name] = i

		views := make([]domain.PopulationView, 0, len(pc.IssueViews))
		covered := make(map[string]int, len(pc.IssueViews))
		for j, ivc := range pc.IssueViews {
			field := fmt.Sprintf("populations[%d].issue_views[%d]", i, j)

			issue, err := lookupIssue(registry, ivc.Name)
			if err != nil {
				return nil, domain.NewConfigError(field+".name", err)
			}
			if prev, dup := covered[ivc.Name]; dup {
				return nil, domain.NewConfigError(field+".name",
					fmt.Errorf("%q already described by issue_views[%d]: %w", ivc.Name, prev, domain.ErrDuplicateName))
			}
			covered[ivc.Name] = j

			// Report unknown stances in a stable order with a suggestion.
			keys := make([]string, 0, len(ivc.Stances))
			for k := range ivc.Stances {
				keys = append(keys, k)
			}
			slices.Sort(keys)
			for _, k := range keys {
				if err := checkStance(issue, k); err != nil {
					return nil, domain.NewConfigError(field+".stances", err)
				}
			}

			pv, err := domain.NewPopulationView(issue, ivc.Stances, deref(ivc.Weight), deref(ivc.WeightVariance))
			if err != nil {
				return nil, domain.NewConfigError(field, err)
			}
			views = append(views, pv)
		}

		spec, err := domain.NewPopulationSpec(registry, pc.Name, deref(pc.Size), views)
		if err != nil {
			return nil, domain.NewConfigError(fmt.Sprintf("populations[%d]", i), err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func lookupIssue(registry *domain.Registry, name string) (*domain.Issue, error) {
	issue, ok := registry.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%q%s: %w", name, suggest(name, registry.Names()), domain.ErrUnknownIssue)
	}
	return issue, nil
}

func checkStance(issue *domain.Issue, stance string) error {
	if issue.HasStance(stance) {
		return nil
	}
	return fmt.Errorf("%q is not a stance on %s%s: %w",
		stance, issue.Name(), suggest(stance, issue.Stances()), domain.ErrUnknownStance)
}

// suggest returns a "did you mean" hint naming the closest option, or an
// empty string when nothing is close enough. The first option wins ties.
func suggest(name string, options []string) string {
	best, bestDist := "", math.MaxInt
	for _, opt := range options {
		if d := levenshtein.ComputeDistance(name, opt); d < bestDist {
			best, bestDist = opt, d
		}
	}
	if best == "" || bestDist > max(2, len(name)/3) {
		return ""
	}
	return fmt.Sprintf(" (did you mean %q?)", best)
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
