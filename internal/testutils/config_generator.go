package testutils

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
)

// GenerateElectionJSON builds a random but valid election configuration.
// The seed parameter controls randomization; the same seed always produces
// the same document. Every issue gets between two and four stances.
func GenerateElectionJSON(seed uint64, issues, candidates, populations, maxSize int) string {
	rng := rand.New(rand.NewPCG(seed, 0))

	type issueDoc struct {
		Name    string   `json:"name"`
		Stances []string `json:"stances"`
	}
	type candidateView struct {
		Issue  string `json:"issue"`
		Stance string `json:"stance"`
	}
	type candidateDoc struct {
		Name  string          `json:"name"`
		Views []candidateView `json:"views"`
	}
	type issueView struct {
		Name           string             `json:"name"`
		Weight         float64            `json:"weight"`
		WeightVariance float64            `json:"weight_variance"`
		Stances        map[string]float64 `json:"stances"`
	}
	type populationDoc struct {
		Name       string      `json:"name"`
		Size       int         `json:"size"`
		IssueViews []issueView `json:"issue_views"`
	}

	doc := struct {
		Seed        uint64          `json:"seed"`
		Issues      []issueDoc      `json:"issues"`
		Candidates  []candidateDoc  `json:"candidates"`
		Populations []populationDoc `json:"populations"`
	}{Seed: seed}

	for i := range issues {
		n := 2 + rng.IntN(3)
		stances := make([]string, n)
		for s := range stances {
			stances[s] = fmt.Sprintf("stance-%d-%d", i, s)
		}
		doc.Issues = append(doc.Issues, issueDoc{Name: fmt.Sprintf("issue-%02d", i), Stances: stances})
	}

	for c := range candidates {
		cd := candidateDoc{Name: fmt.Sprintf("candidate-%d", c)}
		for _, is := range doc.Issues {
			cd.Views = append(cd.Views, candidateView{Issue: is.Name, Stance: is.Stances[rng.IntN(len(is.Stances))]})
		}
		doc.Candidates = append(doc.Candidates, cd)
	}

	for p := range populations {
		pd := populationDoc{Name: fmt.Sprintf("population-%d", p), Size: rng.IntN(maxSize + 1)}
		for _, is := range doc.Issues {
			pd.IssueViews = append(pd.IssueViews, issueView{
				Name:           is.Name,
				Weight:         rng.Float64() * 3,
				WeightVariance: rng.Float64(),
				Stances:        randomProportions(rng, is.Stances),
			})
		}
		doc.Populations = append(doc.Populations, pd)
	}

	out, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return string(out)
}

// randomProportions splits 1.0 across stances; the last stance absorbs the
// rounding remainder.
func randomProportions(rng *rand.Rand, stances []string) map[string]float64 {
	raw := make([]float64, len(stances))
	var total float64
	for i := range raw {
		raw[i] = rng.Float64() + 0.01
		total += raw[i]
	}

	props := make(map[string]float64, len(stances))
	var acc float64
	for i, s := range stances[:len(stances)-1] {
		p := raw[i] / total
		props[s] = p
		acc += p
	}
	props[stances[len(stances)-1]] = max(0, 1-acc)
	return props
}
