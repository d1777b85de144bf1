package application

import (
	"github.com/ahrav/go-electorate/infrastructure/analysis"
	"github.com/ahrav/go-electorate/internal/domain"
)

// Seed sources reported in Result.SeedSource.
const (
	SeedFromConfig   = "config"
	SeedFromOverride = "override"
	SeedFromClock    = "clock"
)

// Result is the outcome of one election run. It is safe to serialize as
// JSON; statistics that are undefined encode as null.
type Result struct {
	// RunID uniquely identifies the run.
	RunID string `json:"run_id"`
	// Seed is the base seed the run used. Re-running the same ballot with
	// this seed reproduces the result exactly.
	Seed       uint64 `json:"seed"`
	SeedSource string `json:"seed_source"`

	TotalVoters int `json:"total_voters"`

	// Candidates is ordered by votes, descending; equal vote counts keep
	// ballot order.
	Candidates []CandidateVotes `json:"candidates"`
	Winner     string           `json:"winner"`
	Loser      string           `json:"loser"`

	// Issues holds stance tallies across all voters, in registry order.
	Issues []IssueTally `json:"issues"`

	// Populations breaks votes down per population, in ballot order.
	Populations []PopulationVotes `json:"populations"`

	// Majority lists the plurality stance on every issue.
	Majority []MajorityPosition `json:"majority"`

	Agreement AgreementReport `json:"agreement"`

	// Voters holds every generated voter, populations in ballot order.
	Voters []*domain.Voter `json:"-"`
}

// CandidateVotes is a candidate's vote total.
type CandidateVotes struct {
	Name  string `json:"name"`
	Votes int    `json:"votes"`
}

// IssueTally is the stance tally of one issue.
type IssueTally struct {
	Issue string `json:"issue"`
	// Stances follows the issue's declared stance order and includes
	// stances nobody holds.
	Stances []StanceCount `json:"stances"`
}

// StanceCount is the number of voters holding one stance.
type StanceCount struct {
	Stance string `json:"stance"`
	Count  int    `json:"count"`
}

// PopulationVotes is the vote breakdown within one population.
type PopulationVotes struct {
	Name string `json:"name"`
	Size int    `json:"size"`
	// Votes follows ballot order.
	Votes []CandidateVotes `json:"votes"`
}

// MajorityPosition is the majority stance on one issue. Stance is nil when
// no voter expressed a stance on the issue.
type MajorityPosition struct {
	Issue  string  `json:"issue"`
	Stance *string `json:"stance"`
}

// AgreementReport holds agreement distributions for the winner, the loser
// and the synthesized majority candidate.
type AgreementReport struct {
	Winner   analysis.Distribution `json:"winner"`
	Loser    analysis.Distribution `json:"loser"`
	Majority analysis.Distribution `json:"majority"`
}

// Votes returns the vote total of the named candidate.
func (r *Result) Votes(candidate string) (int, bool) {
	for _, c := range r.Candidates {
		if c.Name == candidate {
			return c.Votes, true
		}
	}
	return 0, false
}
