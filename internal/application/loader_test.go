package application

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-electorate/internal/domain"
	"github.com/ahrav/go-electorate/internal/testutils"
)

func newTestLoader(t *testing.T) *Loader {
	t.Helper()
	l, err := NewLoader()
	require.NoError(t, err)
	return l
}

func TestLoader_LoadFromReader_JSON(t *testing.T) {
	l := newTestLoader(t)

	ballot, err := l.LoadFromReader(context.Background(), strings.NewReader(testutils.ColorElectionJSON))
	require.NoError(t, err)

	assert.Equal(t, []string{"color"}, ballot.Registry.Names())
	require.Len(t, ballot.Candidates, 2)
	assert.Equal(t, "Alice", ballot.Candidates[0].Name())
	assert.Equal(t, "Bob", ballot.Candidates[1].Name())
	require.Len(t, ballot.Populations, 1)
	assert.Equal(t, 1000, ballot.Populations[0].Size)
	assert.True(t, ballot.HasSeed)
	assert.Equal(t, uint64(20240517), ballot.Seed)
	assert.Equal(t, 1000, ballot.TotalVoters())
}

func TestLoader_LoadFromReader_YAML(t *testing.T) {
	l := newTestLoader(t)

	ballot, err := l.LoadFromReader(context.Background(), strings.NewReader(testutils.ThreeIssueElectionYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"climate", "guns", "taxes"}, ballot.Registry.Names(), "Registry must be sorted by name")
	assert.Equal(t, []string{"Green", "Blue", "Grey"}, []string{
		ballot.Candidates[0].Name(), ballot.Candidates[1].Name(), ballot.Candidates[2].Name(),
	}, "Candidates must keep ballot order")

	urban := ballot.Populations[0]
	require.Len(t, urban.Views, 3)
	assert.Equal(t, "climate", urban.Views[0].Issue.Name())
	assert.Equal(t, 0.25, urban.Views[0].WeightStdDev)
	assert.Equal(t, "taxes", urban.Views[2].Issue.Name())
}

func TestLoader_LoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "election.json")
	require.NoError(t, os.WriteFile(path, []byte(testutils.ColorElectionJSON), 0o600))

	l := newTestLoader(t)
	ballot, err := l.LoadFromFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, len(ballot.Candidates))

	_, err = l.LoadFromFile(context.Background(), filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.False(t, domain.IsConfigError(err))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoader_Cache(t *testing.T) {
	l := newTestLoader(t)
	ctx := context.Background()

	first, err := l.LoadFromReader(ctx, strings.NewReader(testutils.ColorElectionJSON))
	require.NoError(t, err)
	second, err := l.LoadFromReader(ctx, strings.NewReader(testutils.ColorElectionJSON))
	require.NoError(t, err)

	assert.Same(t, first, second, "Identical documents should share a compiled ballot")
	assert.Equal(t, 1, l.CacheSize())

	// The same election written as YAML normalizes to the same hash.
	yamlDoc := `
seed: 20240517
issues:
  - {name: color, stances: [red, blue]}
candidates:
  - name: Alice
    views: [{issue: color, stance: red}]
  - name: Bob
    views: [{issue: color, stance: blue}]
populations:
  - name: everyone
    size: 1000
    issue_views:
      - {name: color, weight: 1, weight_variance: 0, stances: {red: 0.9, blue: 0.1}}
`
	third, err := l.LoadFromReader(ctx, strings.NewReader(yamlDoc))
	require.NoError(t, err)
	assert.Same(t, first, third)

	l.ClearCache()
	assert.Equal(t, 0, l.CacheSize())

	fourth, err := l.LoadFromReader(ctx, strings.NewReader(testutils.ColorElectionJSON))
	require.NoError(t, err)
	assert.NotSame(t, first, fourth)
}

func TestLoader_ConcurrentLoads(t *testing.T) {
	l := newTestLoader(t)

	const n = 16
	ballots := make([]*domain.Ballot, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := l.LoadFromReader(context.Background(), strings.NewReader(testutils.ThreeIssueElectionYAML))
			assert.NoError(t, err)
			ballots[i] = b
		}()
	}
	wg.Wait()

	for _, b := range ballots[1:] {
		assert.Same(t, ballots[0], b)
	}
}

func TestLoader_ConfigErrors(t *testing.T) {
	tests := []struct {
		name        string
		doc         string
		wantField   string
		wantErr     error
		wantMessage string
	}{
		{
			name:      "candidate omits an issue",
			doc:       testutils.MissingCandidateViewJSON,
			wantField: "candidates[1].views",
			wantErr:   domain.ErrMissingView,
		},
		{
			name: "candidate references unknown issue",
			doc: `{"issues":[{"name":"color","stances":["red","blue"]}],
				"candidates":[{"name":"A","views":[{"issue":"colour","stance":"red"}]}],
				"populations":[{"name":"p","size":1,"issue_views":[{"name":"color","weight":1,"weight_variance":0,"stances":{"red":1,"blue":0}}]}]}`,
			wantField:   "candidates[0].views[0].issue",
			wantErr:     domain.ErrUnknownIssue,
			wantMessage: `did you mean "color"?`,
		},
		{
			name: "candidate references unknown stance",
			doc: `{"issues":[{"name":"color","stances":["red","blue"]}],
				"candidates":[{"name":"A","views":[{"issue":"color","stance":"bleu"}]}],
				"populations":[{"name":"p","size":1,"issue_views":[{"name":"color","weight":1,"weight_variance":0,"stances":{"red":1,"blue":0}}]}]}`,
			wantField:   "candidates[0].views[0].stance",
			wantErr:     domain.ErrUnknownStance,
			wantMessage: `did you mean "blue"?`,
		},
		{
			name: "duplicate issue names",
			doc: `{"issues":[{"name":"color","stances":["red"]},{"name":"color","stances":["blue"]}],
				"candidates":[{"name":"A","views":[{"issue":"color","stance":"red"}]}],
				"populations":[{"name":"p","size":1,"issue_views":[{"name":"color","weight":1,"weight_variance":0,"stances":{"red":1}}]}]}`,
			wantField: "issues[1].name",
			wantErr:   domain.ErrDuplicateName,
		},
		{
			name: "duplicate stance",
			doc: `{"issues":[{"name":"color","stances":["red","red"]}],
				"candidates":[{"name":"A","views":[{"issue":"color","stance":"red"}]}],
				"populations":[{"name":"p","size":1,"issue_views":[{"name":"color","weight":1,"weight_variance":0,"stances":{"red":1}}]}]}`,
			wantField: "issues[0].stances",
			wantErr:   domain.ErrDuplicateName,
		},
		{
			name: "duplicate candidate names",
			doc: `{"issues":[{"name":"color","stances":["red","blue"]}],
				"candidates":[{"name":"A","views":[{"issue":"color","stance":"red"}]},{"name":"A","views":[{"issue":"color","stance":"blue"}]}],
				"populations":[{"name":"p","size":1,"issue_views":[{"name":"color","weight":1,"weight_variance":0,"stances":{"red":1,"blue":0}}]}]}`,
			wantField: "candidates[1].name",
			wantErr:   domain.ErrDuplicateName,
		},
		{
			name: "proportions do not sum to one",
			doc: `{"issues":[{"name":"color","stances":["red","blue"]}],
				"candidates":[{"name":"A","views":[{"issue":"color","stance":"red"}]}],
				"populations":[{"name":"p","size":1,"issue_views":[{"name":"color","weight":1,"weight_variance":0,"stances":{"red":0.5,"blue":0.4}}]}]}`,
			wantField: "populations[0].issue_views[0]",
			wantErr:   domain.ErrProportionSum,
		},
		{
			name: "proportion for unknown stance",
			doc: `{"issues":[{"name":"color","stances":["red","blue"]}],
				"candidates":[{"name":"A","views":[{"issue":"color","stance":"red"}]}],
				"populations":[{"name":"p","size":1,"issue_views":[{"name":"color","weight":1,"weight_variance":0,"stances":{"red":0.5,"blue":0.4,"green":0.1}}]}]}`,
			wantField: "populations[0].issue_views[0].stances",
			wantErr:   domain.ErrUnknownStance,
		},
		{
			name: "negative proportion",
			doc: `{"issues":[{"name":"color","stances":["red","blue"]}],
				"candidates":[{"name":"A","views":[{"issue":"color","stance":"red"}]}],
				"populations":[{"name":"p","size":1,"issue_views":[{"name":"color","weight":1,"weight_variance":0,"stances":{"red":1.5,"blue":-0.5}}]}]}`,
			wantField: "populations[0].issue_views[0].stances",
			wantErr:   domain.ErrNegativeValue,
		},
		{
			name: "negative population size",
			doc: `{"issues":[{"name":"color","stances":["red","blue"]}],
				"candidates":[{"name":"A","views":[{"issue":"color","stance":"red"}]}],
				"populations":[{"name":"p","size":-5,"issue_views":[{"name":"color","weight":1,"weight_variance":0,"stances":{"red":1,"blue":0}}]}]}`,
			wantField: "populations[0].size",
			wantErr:   domain.ErrNegativeValue,
		},
		{
			name: "negative weight variance",
			doc: `{"issues":[{"name":"color","stances":["red","blue"]}],
				"candidates":[{"name":"A","views":[{"issue":"color","stance":"red"}]}],
				"populations":[{"name":"p","size":1,"issue_views":[{"name":"color","weight":1,"weight_variance":-1,"stances":{"red":1,"blue":0}}]}]}`,
			wantField: "populations[0].issue_views[0].weight_variance",
			wantErr:   domain.ErrNegativeValue,
		},
		{
			name: "missing weight",
			doc: `{"issues":[{"name":"color","stances":["red","blue"]}],
				"candidates":[{"name":"A","views":[{"issue":"color","stance":"red"}]}],
				"populations":[{"name":"p","size":1,"issue_views":[{"name":"color","weight_variance":0,"stances":{"red":1,"blue":0}}]}]}`,
			wantField: "populations[0].issue_views[0].weight",
			wantErr:   domain.ErrMissingField,
		},
		{
			name: "missing population size",
			doc: `{"issues":[{"name":"color","stances":["red","blue"]}],
				"candidates":[{"name":"A","views":[{"issue":"color","stance":"red"}]}],
				"populations":[{"name":"p","issue_views":[{"name":"color","weight":1,"weight_variance":0,"stances":{"red":1,"blue":0}}]}]}`,
			wantField: "populations[0].size",
			wantErr:   domain.ErrMissingField,
		},
		{
			name: "population misses an issue",
			doc: `{"issues":[{"name":"color","stances":["red","blue"]},{"name":"size","stances":["big"]}],
				"candidates":[{"name":"A","views":[{"issue":"color","stance":"red"},{"issue":"size","stance":"big"}]}],
				"populations":[{"name":"p","size":1,"issue_views":[{"name":"color","weight":1,"weight_variance":0,"stances":{"red":1,"blue":0}}]}]}`,
			wantField: "populations[0]",
			wantErr:   domain.ErrMissingView,
		},
		{
			name: "no candidates",
			doc: `{"issues":[{"name":"color","stances":["red","blue"]}],
				"candidates":[],
				"populations":[{"name":"p","size":1,"issue_views":[{"name":"color","weight":1,"weight_variance":0,"stances":{"red":1,"blue":0}}]}]}`,
			wantField: "candidates",
			wantErr:   domain.ErrMissingField,
		},
		{
			name:      "missing issues",
			doc:       `{"candidates":[{"name":"A","views":[]}],"populations":[]}`,
			wantField: "issues",
			wantErr:   domain.ErrMissingField,
		},
		{
			name:      "infinite weight in YAML",
			doc:       "issues: [{name: color, stances: [red]}]\ncandidates: [{name: A, views: [{issue: color, stance: red}]}]\npopulations: [{name: p, size: 1, issue_views: [{name: color, weight: .inf, weight_variance: 0, stances: {red: 1}}]}]\n",
			wantField: "populations[0].issue_views[0].weight",
			wantErr:   domain.ErrInvalidNumber,
		},
		{
			name:        "unknown field",
			doc:         `{"issues":[],"candidates":[],"populations":[],"voters":[]}`,
			wantField:   "document",
			wantMessage: "voters",
		},
		{
			name:        "trailing JSON value",
			doc:         testutils.ColorElectionJSON + ` {"garbage": true}`,
			wantField:   "document",
			wantMessage: "unexpected data after the first document",
		},
		{
			name:        "trailing JSON garbage",
			doc:         testutils.ColorElectionJSON + " ]",
			wantField:   "document",
			wantMessage: "trailing data",
		},
		{
			name:        "malformed second YAML document",
			doc:         testutils.ThreeIssueElectionYAML + "\n---\nnot: [valid\n",
			wantField:   "document",
			wantMessage: "YAML decode failed",
		},
		{
			name:        "second YAML document",
			doc:         testutils.ThreeIssueElectionYAML + "\n---\nseed: 1\n",
			wantField:   "document",
			wantMessage: "unexpected data after the first document",
		},
		{
			name:      "empty document",
			doc:       "   \n",
			wantField: "document",
			wantErr:   domain.ErrMissingField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLoader(t)

			ballot, err := l.LoadFromReader(context.Background(), strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Nil(t, ballot)

			var ce *domain.ConfigError
			require.ErrorAs(t, err, &ce)
			assert.True(t, strings.HasPrefix(ce.Field, tt.wantField),
				"field %q should start with %q", ce.Field, tt.wantField)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMessage != "" {
				assert.Contains(t, err.Error(), tt.wantMessage)
			}
			assert.Equal(t, 0, l.CacheSize(), "Failed loads must not be cached")
		})
	}
}

func TestLoader_Compile(t *testing.T) {
	l := newTestLoader(t)

	size := 0
	weight, variance := 1.0, 0.0
	seed := uint64(3)
	cfg := &ElectionConfig{
		Seed:   &seed,
		Issues: []IssueConfig{{Name: "color", Stances: []string{"red", "blue"}}},
		Candidates: []CandidateConfig{
			{Name: "Alice", Views: []CandidateViewConfig{{Issue: "color", Stance: "red"}}},
		},
		Populations: []PopulationConfig{{
			Name: "nobody",
			Size: &size,
			IssueViews: []IssueViewConfig{{
				Name: "color", Weight: &weight, WeightVariance: &variance,
				Stances: map[string]float64{"red": 0.5, "blue": 0.5},
			}},
		}},
	}

	ballot, err := l.Compile(cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, ballot.TotalVoters())
	assert.Equal(t, uint64(3), ballot.Seed)
}

func TestSuggest(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		options []string
		want    string
	}{
		{name: "close match", input: "colour", options: []string{"color", "size"}, want: ` (did you mean "color"?)`},
		{name: "nothing close", input: "healthcare", options: []string{"color", "size"}, want: ""},
		{name: "no options", input: "color", options: nil, want: ""},
		{name: "first option wins ties", input: "bat", options: []string{"cat", "hat"}, want: ` (did you mean "cat"?)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, suggest(tt.input, tt.options))
		})
	}
}
