package domain

// Score returns the voter's weighted agreement with a candidate: the sum of
// the voter's weights over every registry issue where both hold the same
// stance. A missing view on either side is a StructuralInvariantError.
func Score(registry *Registry, voter *Voter, candidate *Candidate) (float64, error) {
	var score float64
	for _, issue := range registry.issues {
		view, ok := voter.View(issue.name)
		if !ok {
			return 0, NewStructuralInvariantError(candidate.name, issue.name, ErrIssueMismatch)
		}
		stance, ok := candidate.Stance(issue.name)
		if !ok {
			return 0, NewStructuralInvariantError(candidate.name, issue.name, ErrIssueMismatch)
		}
		if view.Stance == stance {
			score += view.Weight
		}
	}
	return score, nil
}

// Decide picks the candidate the voter agrees with most and returns its index
// in candidates. Ties go to the candidate that appears first. Decide has no
// side effects; counting the vote is up to the caller.
func Decide(registry *Registry, voter *Voter, candidates []*Candidate) (int, error) {
	if len(candidates) == 0 {
		return -1, ErrNoCandidates
	}

	best := -1
	var bestScore float64
	for i, c := range candidates {
		score, err := Score(registry, voter, c)
		if err != nil {
			return -1, err
		}
		if best < 0 || score > bestScore {
			best, bestScore = i, score
		}
	}
	return best, nil
}
