package analysis

import (
	"github.com/ahrav/go-electorate/internal/domain"
)

// MajorityCandidateName is the name given to the synthesized majority
// candidate.
const MajorityCandidateName = "majority"

// Majority tallies every voter's stances and returns the majority
// candidate. It is deterministic and does not modify its inputs.
func Majority(registry *domain.Registry, voters []*domain.Voter) (*domain.Candidate, error) {
	tallies, err := registry.Tally(voters)
	if err != nil {
		return nil, err
	}
	return MajorityFromTallies(tallies)
}

// MajorityFromTallies builds the majority candidate from per-issue stance
// tallies. On each issue the candidate takes the plurality stance, with ties
// going to the stance declared first. Issues on which nothing was tallied are
// left undefined rather than defaulted.
func MajorityFromTallies(tallies []domain.StanceTally) (*domain.Candidate, error) {
	views := make([]domain.View, 0, len(tallies))
	for _, t := range tallies {
		stance, ok := t.Plurality()
		if !ok {
			continue
		}
		v, err := domain.NewView(t.Issue, stance, 1)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return domain.NewCandidate(MajorityCandidateName, views)
}
