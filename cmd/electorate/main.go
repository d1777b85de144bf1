package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/ahrav/go-electorate/infrastructure/telemetry"
	"github.com/ahrav/go-electorate/internal/application"
	"github.com/ahrav/go-electorate/internal/logging"
	"github.com/ahrav/go-electorate/internal/report"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "electorate <config>",
		Short: "Run a simulated election",
		Long: `electorate simulates an election described by a JSON or YAML file.

Voters are sampled from each population's stance proportions and issue
weights, vote for the candidate they agree with most, and the results are
reported together with how closely voters agree with the winner, the
loser, and the majority position on every issue.

Examples:
  electorate election.json
  electorate --seed 42 --json election.yaml
  electorate --metrics-file run.prom election.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			workers, _ := cmd.Flags().GetInt("workers")
			level, _ := cmd.Flags().GetString("log-level")
			metricsFile, _ := cmd.Flags().GetString("metrics-file")

			logger := logging.NewLogger(level, stderr)

			cfg := application.RunnerConfig{Workers: workers, Logger: logger}
			if cmd.Flags().Changed("seed") {
				seed, _ := cmd.Flags().GetUint64("seed")
				cfg.Seed = &seed
			}

			registry := prometheus.NewRegistry()
			if metricsFile != "" {
				cfg.Metrics = telemetry.NewPrometheusMetrics(registry)
			}

			ctx := cmd.Context()
			loader, err := application.NewLoader()
			if err != nil {
				return fmt.Errorf("failed to create loader: %w", err)
			}
			ballot, err := loader.LoadFromFile(ctx, args[0])
			if err != nil {
				return err
			}

			result, err := application.NewRunner(cfg).Run(ctx, ballot)
			if err != nil {
				return err
			}

			format := report.FormatText
			if jsonOut {
				format = report.FormatJSON
			}
			if err := report.Render(stdout, result, format); err != nil {
				return err
			}

			if metricsFile != "" {
				if err := telemetry.WriteTextfile(metricsFile, registry); err != nil {
					return err
				}
				logger.Debug("metrics written", "path", metricsFile)
			}
			return nil
		},
	}

	cmd.Flags().Uint64("seed", 0, "Base random seed (overrides the config's seed)")
	cmd.Flags().Int("workers", 0, "Concurrent workers (default: number of CPUs)")
	cmd.Flags().Bool("json", false, "Output the result as JSON")
	cmd.Flags().String("log-level", "info", "Log level: error, warn, info, debug, trace")
	cmd.Flags().String("metrics-file", "", "Write Prometheus metrics in textfile format to this path")

	return cmd
}
