package analysis

import (
	"github.com/ahrav/go-electorate/internal/domain"
)

// Distribution is the agreement profile of one candidate across a voter set.
type Distribution struct {
	// Candidate is the candidate's name.
	Candidate string `json:"candidate"`

	// Counts holds, per voter in input order, the number of issues on which
	// the voter holds the candidate's stance.
	Counts []int `json:"-"`

	// Histogram[k] is the number of voters agreeing on exactly k issues.
	Histogram []int `json:"histogram"`

	Summary Summary `json:"summary"`
}

// Agreement counts, for every voter, the registry issues on which the voter
// holds the same stance as candidate, and summarizes the counts. An issue on
// which the candidate has no stance never matches. Agreement does not
// modify its inputs.
func Agreement(registry *domain.Registry, voters []*domain.Voter, candidate *domain.Candidate) Distribution {
	issues := registry.Issues()
	counts := make([]int, len(voters))
	values := make([]float64, len(voters))
	histogram := make([]int, len(issues)+1)

	for i, v := range voters {
		n := 0
		for _, issue := range issues {
			stance, ok := candidate.Stance(issue.Name())
			if !ok {
				continue
			}
			if view, ok := v.View(issue.Name()); ok && view.Stance == stance {
				n++
			}
		}
		counts[i] = n
		values[i] = float64(n)
		histogram[n]++
	}

	return Distribution{
		Candidate: candidate.Name(),
		Counts:    counts,
		Histogram: histogram,
		Summary:   Describe(values),
	}
}
