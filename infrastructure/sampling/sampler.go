// Package sampling draws synthetic voters from population distributions.
//
// Every voter owns a private PCG stream derived from its population seed and
// its index, so the voters generated for a seed never depend on how many
// workers share the work or in which order they run.
package sampling

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ahrav/go-electorate/internal/domain"
)

// Sampler draws stances and importance weights from a single random stream.
// A Sampler is not safe for concurrent use; create one per voter.
type Sampler struct {
	src rand.Source
}

// NewSampler returns a Sampler reading from the PCG stream (seed, stream).
func NewSampler(seed, stream uint64) *Sampler {
	return &Sampler{src: rand.NewPCG(seed, stream)}
}

// Stance draws one stance from the view's categorical distribution.
// The proportions are re-checked before drawing; a PopulationView that
// bypassed construction-time validation yields a ConfigError.
func (s *Sampler) Stance(pv domain.PopulationView) (string, error) {
	probs, err := checkProportions(pv)
	if err != nil {
		return "", err
	}

	cat := distuv.NewCategorical(probs, s.src)
	idx := int(cat.Rand())
	return pv.Issue.Stances()[idx], nil
}

// Weight draws one importance weight from Normal(Weight, WeightStdDev),
// clamped at zero.
func (s *Sampler) Weight(pv domain.PopulationView) float64 {
	n := distuv.Normal{Mu: pv.Weight, Sigma: pv.WeightStdDev, Src: s.src}
	return math.Max(0, n.Rand())
}

// SampleView draws a stance and then a weight for one issue.
func (s *Sampler) SampleView(pv domain.PopulationView) (domain.View, error) {
	stance, err := s.Stance(pv)
	if err != nil {
		return domain.View{}, err
	}
	return domain.NewView(pv.Issue, stance, s.Weight(pv))
}

// SampleVoter draws one view per population view, in the order given, and
// assembles them into a voter of registry.
func (s *Sampler) SampleVoter(registry *domain.Registry, views []domain.PopulationView) (*domain.Voter, error) {
	sampled := make([]domain.View, 0, len(views))
	for _, pv := range views {
		v, err := s.SampleView(pv)
		if err != nil {
			return nil, err
		}
		sampled = append(sampled, v)
	}
	return domain.NewVoter(registry, sampled)
}

func checkProportions(pv domain.PopulationView) ([]float64, error) {
	if pv.Issue == nil {
		return nil, domain.NewConfigError("issue_views.name", domain.ErrMissingField)
	}
	field := "issue_views." + pv.Issue.Name() + ".stances"

	probs := pv.Probabilities()
	for i, p := range probs {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, domain.NewConfigError(field, domain.ErrInvalidNumber)
		}
		if p < 0 {
			return nil, domain.NewConfigError(field,
				fmt.Errorf("stance %q proportion %v: %w", pv.Issue.Stances()[i], p, domain.ErrNegativeValue))
		}
	}
	if sum := floats.Sum(probs); math.Abs(sum-1) > domain.ProportionTolerance {
		return nil, domain.NewConfigError(field, fmt.Errorf("sum %v: %w", sum, domain.ErrProportionSum))
	}
	return probs, nil
}
