package sampling

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-electorate/internal/domain"
	"github.com/ahrav/go-electorate/internal/ports"
)

var _ ports.PopulationGenerator = (*Generator)(nil)

// minChunk is the smallest number of voters handed to one goroutine.
const minChunk = 256

// Generator implements ports.PopulationGenerator on top of Sampler.
// Voter i of a population always reads from stream (seed, i).
type Generator struct {
	workers int
	logger  *slog.Logger
}

// NewGenerator returns a Generator that uses at most workers goroutines per
// population. A non-positive value means runtime.NumCPU(). Progress is
// logged at debug level to logger; nil discards it.
func NewGenerator(workers int, logger *slog.Logger) *Generator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Generator{workers: workers, logger: logger}
}

// Generate implements ports.PopulationGenerator.
func (g *Generator) Generate(
	ctx context.Context,
	registry *domain.Registry,
	spec domain.PopulationSpec,
	seed uint64,
) (*domain.Population, error) {
	voters := make([]*domain.Voter, spec.Size)
	if spec.Size == 0 {
		return domain.NewPopulation(spec, voters)
	}

	chunk := max(minChunk, (spec.Size+g.workers-1)/g.workers)
	var done atomic.Int64

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for start := 0; start < spec.Size; start += chunk {
		end := min(start+chunk, spec.Size)
		eg.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				v, err := NewSampler(seed, uint64(i)).SampleVoter(registry, spec.Views)
				if err != nil {
					return fmt.Errorf("population %s voter %d: %w", spec.Name, i, err)
				}
				voters[i] = v
			}
			n := done.Add(int64(end - start))
			g.logger.DebugContext(ctx, "population progress",
				"population", spec.Name,
				"generated", n,
				"size", spec.Size,
				"percent", n*100/int64(spec.Size),
			)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return domain.NewPopulation(spec, voters)
}

// PopulationSeed derives the seed of the population at index from the run's
// base seed using the SplitMix64 finalizer, so neighbouring populations get
// unrelated streams.
func PopulationSeed(base uint64, index int) uint64 {
	z := base + uint64(index+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
