package application

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-electorate/infrastructure/analysis"
	"github.com/ahrav/go-electorate/infrastructure/sampling"
	"github.com/ahrav/go-electorate/internal/domain"
	"github.com/ahrav/go-electorate/internal/logging"
	"github.com/ahrav/go-electorate/internal/ports"
)

// voteChunk is the smallest number of voters scored by one goroutine.
const voteChunk = 512

// RunnerConfig configures a Runner. The zero value is usable.
type RunnerConfig struct {
	// Workers bounds the goroutines used for generation and voting.
	// Non-positive means runtime.NumCPU().
	Workers int
	// Seed overrides the ballot's seed when set.
	Seed *uint64
	// Logger receives phase-level progress. Nil discards.
	Logger *slog.Logger
	// Metrics receives run metrics. Nil discards.
	Metrics ports.MetricsCollector
	// Generator produces voters. Nil uses a sampling.Generator.
	Generator ports.PopulationGenerator
}

// Runner executes elections. A Runner holds no per-run state and may run
// several ballots concurrently.
type Runner struct {
	workers   int
	seed      *uint64
	logger    *slog.Logger
	metrics   ports.MetricsCollector
	generator ports.PopulationGenerator
	now       func() time.Time
}

// NewRunner creates a Runner from cfg, filling in defaults.
func NewRunner(cfg RunnerConfig) *Runner {
	r := &Runner{
		workers:   cfg.Workers,
		seed:      cfg.Seed,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		generator: cfg.Generator,
		now:       time.Now,
	}
	if r.workers <= 0 {
		r.workers = runtime.NumCPU()
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	if r.metrics == nil {
		r.metrics = ports.NopMetrics{}
	}
	if r.generator == nil {
		r.generator = sampling.NewGenerator(r.workers, r.logger)
	}
	return r
}

// startSpan creates a new OpenTelemetry span with common attributes.
func (r *Runner) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer("election-runner")
	ctx, span := tracer.Start(ctx, name)
	span.SetAttributes(attribute.Int("runner.workers", r.workers))
	span.SetAttributes(attrs...)
	return ctx, span
}

// Run generates every population's voters, runs the voting pass, and
// assembles the Result. Any error aborts the run; there is no partial
// result.
func (r *Runner) Run(ctx context.Context, ballot *domain.Ballot) (*Result, error) {
	if len(ballot.Candidates) == 0 {
		return nil, domain.NewConfigError("candidates", domain.ErrNoCandidates)
	}

	seed, source := r.resolveSeed(ballot)
	runID := uuid.NewString()

	ctx, span := r.startSpan(ctx, "Runner.Run",
		attribute.String("run.id", runID),
		attribute.Int64("run.seed", int64(seed)),
		attribute.Int("run.voters", ballot.TotalVoters()),
	)
	defer span.End()

	logger := r.logger.With("run_id", runID)
	logger.Info("election started",
		"seed", seed,
		"seed_source", source,
		"issues", ballot.Registry.Len(),
		"candidates", len(ballot.Candidates),
		"populations", len(ballot.Populations),
		"voters", ballot.TotalVoters(),
	)

	result, err := r.run(ctx, logger, ballot, seed)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		r.metrics.RecordCounter(ports.MetricRuns, 1, map[string]string{"status": "error"})
		logger.Error("election failed", "error", err)
		return nil, err
	}

	result.RunID = runID
	result.Seed = seed
	result.SeedSource = source

	r.metrics.RecordCounter(ports.MetricRuns, 1, map[string]string{"status": "success"})
	span.SetStatus(codes.Ok, "election completed")
	logger.Info("election finished", "winner", result.Winner, "loser", result.Loser)
	return result, nil
}

func (r *Runner) run(ctx context.Context, logger *slog.Logger, ballot *domain.Ballot, seed uint64) (*Result, error) {
	start := r.now()
	populations, err := r.generate(ctx, logger, ballot, seed)
	if err != nil {
		return nil, fmt.Errorf("voter generation failed: %w", err)
	}
	r.metrics.RecordLatency("generate", r.now().Sub(start), nil)
	logger.Debug("voters generated", "elapsed", r.now().Sub(start))

	voters := make([]*domain.Voter, 0, ballot.TotalVoters())
	popOf := make([]int, 0, ballot.TotalVoters())
	for p, pop := range populations {
		for _, v := range pop.Voters() {
			voters = append(voters, v)
			popOf = append(popOf, p)
		}
		r.metrics.RecordGauge(ports.MetricVoters, float64(pop.Size()), map[string]string{"population": pop.Name()})
	}

	start = r.now()
	choices, err := r.vote(ctx, ballot, voters)
	if err != nil {
		return nil, fmt.Errorf("voting failed: %w", err)
	}
	r.metrics.RecordLatency("vote", r.now().Sub(start), nil)
	logger.Debug("votes cast", "elapsed", r.now().Sub(start))

	result := &Result{TotalVoters: len(voters), Voters: voters}
	if err := r.count(ballot, populations, choices, popOf, result); err != nil {
		return nil, err
	}

	start = r.now()
	if err := r.analyze(ctx, ballot, voters, result); err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	r.metrics.RecordLatency("analyze", r.now().Sub(start), nil)

	return result, nil
}

// resolveSeed picks the run's base seed: the runner override, then the
// ballot, then the clock.
func (r *Runner) resolveSeed(ballot *domain.Ballot) (uint64, string) {
	switch {
	case r.seed != nil:
		return *r.seed, SeedFromOverride
	case ballot.HasSeed:
		return ballot.Seed, SeedFromConfig
	default:
		return uint64(r.now().UnixNano()), SeedFromClock
	}
}

// generate builds every population concurrently. Population i is seeded
// with sampling.PopulationSeed(seed, i).
func (r *Runner) generate(ctx context.Context, logger *slog.Logger, ballot *domain.Ballot, seed uint64) ([]*domain.Population, error) {
	ctx, span := r.startSpan(ctx, "Runner.generate")
	defer span.End()

	populations := make([]*domain.Population, len(ballot.Populations))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(r.workers)
	for i, spec := range ballot.Populations {
		eg.Go(func() error {
			popSeed := sampling.PopulationSeed(seed, i)
			pop, err := r.generator.Generate(ctx, ballot.Registry, spec, popSeed)
			if err != nil {
				return fmt.Errorf("population %s: %w", spec.Name, err)
			}
			logger.Log(ctx, logging.LevelTrace, "population generated",
				"population", spec.Name, "size", pop.Size(), "seed", popSeed)
			span.AddEvent("population_generated", trace.WithAttributes(
				attribute.String("population.name", spec.Name),
				attribute.Int("population.size", pop.Size()),
			))
			populations[i] = pop
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return populations, nil
}

// vote scores every voter against the ballot's candidates in parallel.
// Workers only write their own slots of the returned choices; no vote is
// counted here.
func (r *Runner) vote(ctx context.Context, ballot *domain.Ballot, voters []*domain.Voter) ([]int, error) {
	ctx, span := r.startSpan(ctx, "Runner.vote", attribute.Int("vote.voters", len(voters)))
	defer span.End()

	choices := make([]int, len(voters))
	chunk := max(voteChunk, (len(voters)+r.workers-1)/r.workers)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(r.workers)
	for start := 0; start < len(voters); start += chunk {
		end := min(start+chunk, len(voters))
		eg.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				c, err := domain.Decide(ballot.Registry, voters[i], ballot.Candidates)
				if err != nil {
					return fmt.Errorf("voter %d: %w", i, err)
				}
				choices[i] = c
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return choices, nil
}

// count reduces the choices into vote totals, checks conservation, and
// ranks the candidates.
func (r *Runner) count(
	ballot *domain.Ballot,
	populations []*domain.Population,
	choices, popOf []int,
	result *Result,
) error {
	totals := make([]int, len(ballot.Candidates))
	perPop := make([][]int, len(populations))
	for p := range perPop {
		perPop[p] = make([]int, len(ballot.Candidates))
	}
	for i, c := range choices {
		totals[c]++
		perPop[popOf[i]][c]++
	}

	sum := 0
	for _, n := range totals {
		sum += n
	}
	if sum != len(choices) {
		return domain.NewStructuralInvariantError("", "",
			fmt.Errorf("counted %d votes for %d voters: %w", sum, len(choices), domain.ErrVoteConservation))
	}

	ranked := make([]int, len(ballot.Candidates))
	for i := range ranked {
		ranked[i] = i
	}
	slices.SortStableFunc(ranked, func(a, b int) int { return totals[b] - totals[a] })

	result.Candidates = make([]CandidateVotes, len(ranked))
	for pos, idx := range ranked {
		result.Candidates[pos] = CandidateVotes{Name: ballot.Candidates[idx].Name(), Votes: totals[idx]}
	}
	result.Winner = result.Candidates[0].Name
	result.Loser = result.Candidates[len(ranked)-1].Name

	result.Populations = make([]PopulationVotes, len(populations))
	for p, pop := range populations {
		votes := make([]CandidateVotes, len(ballot.Candidates))
		for c, cand := range ballot.Candidates {
			votes[c] = CandidateVotes{Name: cand.Name(), Votes: perPop[p][c]}
			r.metrics.RecordCounter(ports.MetricVotes, float64(perPop[p][c]), map[string]string{
				"candidate":  cand.Name(),
				"population": pop.Name(),
			})
		}
		result.Populations[p] = PopulationVotes{Name: pop.Name(), Size: pop.Size(), Votes: votes}
	}
	return nil
}

// analyze fills in stance tallies, the majority candidate and the
// agreement distributions.
func (r *Runner) analyze(ctx context.Context, ballot *domain.Ballot, voters []*domain.Voter, result *Result) error {
	_, span := r.startSpan(ctx, "Runner.analyze")
	defer span.End()

	tallies, err := ballot.Registry.Tally(voters)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	result.Issues = make([]IssueTally, len(tallies))
	for i, t := range tallies {
		stances := t.Issue.Stances()
		counts := make([]StanceCount, len(stances))
		for s, name := range stances {
			counts[s] = StanceCount{Stance: name, Count: t.Counts[s]}
		}
		result.Issues[i] = IssueTally{Issue: t.Issue.Name(), Stances: counts}
	}

	majority, err := analysis.MajorityFromTallies(tallies)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	result.Majority = make([]MajorityPosition, 0, ballot.Registry.Len())
	for _, name := range ballot.Registry.Names() {
		pos := MajorityPosition{Issue: name}
		if stance, ok := majority.Stance(name); ok {
			pos.Stance = &stance
		}
		result.Majority = append(result.Majority, pos)
	}

	winner := r.candidate(ballot, result.Winner)
	loser := r.candidate(ballot, result.Loser)
	result.Agreement = AgreementReport{
		Winner:   analysis.Agreement(ballot.Registry, voters, winner),
		Loser:    analysis.Agreement(ballot.Registry, voters, loser),
		Majority: analysis.Agreement(ballot.Registry, voters, majority),
	}

	for role, dist := range map[string]analysis.Distribution{
		"winner":   result.Agreement.Winner,
		"loser":    result.Agreement.Loser,
		"majority": result.Agreement.Majority,
	} {
		if dist.Summary.Count > 0 {
			r.metrics.RecordGauge(ports.MetricAgreementMean, dist.Summary.Mean,
				map[string]string{"role": role, "candidate": dist.Candidate})
		}
		labels := map[string]string{"role": role}
		for k, n := range dist.Histogram {
			ports.RecordHistogramN(r.metrics, ports.MetricAgreement, float64(k), n, labels)
		}
	}

	span.AddEvent("analysis_completed", trace.WithAttributes(
		attribute.String("winner", result.Winner),
		attribute.String("loser", result.Loser),
	))
	return nil
}

func (r *Runner) candidate(ballot *domain.Ballot, name string) *domain.Candidate {
	for _, c := range ballot.Candidates {
		if c.Name() == name {
			return c
		}
	}
	return nil
}
