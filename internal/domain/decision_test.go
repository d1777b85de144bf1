package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	r := mustRegistry(t,
		mustIssue(t, "color", "red", "blue"),
		mustIssue(t, "size", "big", "small"),
		mustIssue(t, "taste", "sweet", "sour"),
	)
	voter := mustVoter(t, r,
		map[string]string{"color": "red", "size": "big", "taste": "sour"},
		map[string]float64{"color": 2.5, "size": 0.5, "taste": 1.25},
	)

	tests := []struct {
		name      string
		candidate map[string]string
		want      float64
	}{
		{
			name:      "full agreement sums every weight",
			candidate: map[string]string{"color": "red", "size": "big", "taste": "sour"},
			want:      4.25,
		},
		{
			name:      "partial agreement sums matching weights",
			candidate: map[string]string{"color": "red", "size": "small", "taste": "sour"},
			want:      3.75,
		},
		{
			name:      "no agreement scores zero",
			candidate: map[string]string{"color": "blue", "size": "small", "taste": "sweet"},
			want:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := mustCandidate(t, r, "c", tt.candidate)
			got, err := Score(r, voter, c)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
			assert.GreaterOrEqual(t, got, 0.0)
		})
	}
}

func TestScore_MissingCandidateView(t *testing.T) {
	r := mustRegistry(t,
		mustIssue(t, "color", "red", "blue"),
		mustIssue(t, "size", "big", "small"),
	)
	voter := mustVoter(t, r, map[string]string{"color": "red", "size": "big"}, nil)
	partial := mustCandidate(t, r, "partial", map[string]string{"color": "red"})

	_, err := Score(r, voter, partial)
	var sie *StructuralInvariantError
	require.ErrorAs(t, err, &sie)
	assert.Equal(t, "partial", sie.Candidate)
	assert.Equal(t, "size", sie.Issue)
	assert.ErrorIs(t, err, ErrIssueMismatch)
}

func TestDecide(t *testing.T) {
	r := mustRegistry(t,
		mustIssue(t, "color", "red", "blue"),
		mustIssue(t, "size", "big", "small"),
	)

	alice := mustCandidate(t, r, "Alice", map[string]string{"color": "red", "size": "small"})
	bob := mustCandidate(t, r, "Bob", map[string]string{"color": "blue", "size": "big"})
	carol := mustCandidate(t, r, "Carol", map[string]string{"color": "red", "size": "big"})

	tests := []struct {
		name       string
		stances    map[string]string
		weights    map[string]float64
		candidates []*Candidate
		want       int
	}{
		{
			name:       "highest weighted agreement wins",
			stances:    map[string]string{"color": "red", "size": "big"},
			weights:    map[string]float64{"color": 1, "size": 3},
			candidates: []*Candidate{alice, bob},
			want:       1,
		},
		{
			name:       "forced tie goes to earlier candidate",
			stances:    map[string]string{"color": "red", "size": "big"},
			weights:    map[string]float64{"color": 1, "size": 1},
			candidates: []*Candidate{alice, bob},
			want:       0,
		},
		{
			name:       "forced tie with reversed order goes to earlier candidate",
			stances:    map[string]string{"color": "red", "size": "big"},
			weights:    map[string]float64{"color": 1, "size": 1},
			candidates: []*Candidate{bob, alice},
			want:       0,
		},
		{
			name:       "all zero weights tie on the first candidate",
			stances:    map[string]string{"color": "red", "size": "big"},
			weights:    map[string]float64{"color": 0, "size": 0},
			candidates: []*Candidate{bob, alice, carol},
			want:       0,
		},
		{
			name:       "full agreement beats partial",
			stances:    map[string]string{"color": "red", "size": "big"},
			weights:    map[string]float64{"color": 1, "size": 1},
			candidates: []*Candidate{alice, bob, carol},
			want:       2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			voter := mustVoter(t, r, tt.stances, tt.weights)
			got, err := Decide(r, voter, tt.candidates)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecide_NoCandidates(t *testing.T) {
	r := mustRegistry(t, mustIssue(t, "color", "red"))
	voter := mustVoter(t, r, map[string]string{"color": "red"}, nil)

	idx, err := Decide(r, voter, nil)
	assert.ErrorIs(t, err, ErrNoCandidates)
	assert.Equal(t, -1, idx)
}
