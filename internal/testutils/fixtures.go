// Package testutils provides utilities for testing, including domain fixture
// builders and election configuration generators. These components are
// intended for internal use within the project's test suites and are not
// part of the public API.
package testutils

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-electorate/internal/domain"
)

// Issue builds an issue or fails the test.
func Issue(tb testing.TB, name string, stances ...string) *domain.Issue {
	tb.Helper()
	issue, err := domain.NewIssue(name, stances)
	require.NoError(tb, err)
	return issue
}

// Registry builds a registry or fails the test.
func Registry(tb testing.TB, issues ...*domain.Issue) *domain.Registry {
	tb.Helper()
	r, err := domain.NewRegistry(issues)
	require.NoError(tb, err)
	return r
}

// Voter builds a voter holding stances, keyed by issue name. Issues missing
// from weights get a weight of 1.
func Voter(tb testing.TB, r *domain.Registry, stances map[string]string, weights map[string]float64) *domain.Voter {
	tb.Helper()
	views := make([]domain.View, 0, len(stances))
	for name, stance := range stances {
		issue, ok := r.Lookup(name)
		require.True(tb, ok, "issue %s is not registered", name)
		w, ok := weights[name]
		if !ok {
			w = 1
		}
		v, err := domain.NewView(issue, stance, w)
		require.NoError(tb, err)
		views = append(views, v)
	}
	voter, err := domain.NewVoter(r, views)
	require.NoError(tb, err)
	return voter
}

// Candidate builds a candidate with the given stances, keyed by issue name.
func Candidate(tb testing.TB, r *domain.Registry, name string, stances map[string]string) *domain.Candidate {
	tb.Helper()
	views := make([]domain.View, 0, len(stances))
	for issueName, stance := range stances {
		issue, ok := r.Lookup(issueName)
		require.True(tb, ok, "issue %s is not registered", issueName)
		v, err := domain.NewView(issue, stance, 1)
		require.NoError(tb, err)
		views = append(views, v)
	}
	c, err := domain.NewCandidate(name, views)
	require.NoError(tb, err)
	return c
}
