// Package report renders an election Result for people and for machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ahrav/go-electorate/infrastructure/analysis"
	"github.com/ahrav/go-electorate/internal/application"
)

// undefined is printed in place of statistics that have no value.
const undefined = "NaN"

// Format selects an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Render writes result to w in the given format.
func Render(w io.Writer, result *application.Result, format Format) error {
	switch format {
	case FormatJSON:
		return JSON(w, result)
	case FormatText, "":
		return Text(w, result)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// JSON writes result as indented JSON.
func JSON(w io.Writer, result *application.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}

// Text writes a human-readable report: ranked vote totals, winner and
// loser, stance tallies, and the agreement distributions. Numbers use
// English digit grouping.
func Text(w io.Writer, result *application.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	p := &printer{w: tw, p: message.NewPrinter(language.English)}

	// The seed is printed ungrouped so it can be passed back to --seed.
	p.printf("run %s (seed %s, %s)\n", result.RunID, strconv.FormatUint(result.Seed, 10), result.SeedSource)
	p.printf("voters\t%d\n\n", result.TotalVoters)

	for _, c := range result.Candidates {
		p.printf("%s\t%d\n", c.Name, c.Votes)
	}
	p.printf("winner is\t%s\n", result.Winner)
	p.printf("loser is\t%s\n", result.Loser)

	if len(result.Populations) > 1 {
		p.printf("\nvotes by population\n")
		for _, pop := range result.Populations {
			p.printf("%s (%d)", pop.Name, pop.Size)
			for _, v := range pop.Votes {
				p.printf("\t%s %d", v.Name, v.Votes)
			}
			p.printf("\n")
		}
	}

	for _, issue := range result.Issues {
		p.printf("\nissue %s\n", issue.Issue)
		for _, s := range issue.Stances {
			p.printf("  %s\t%d\n", s.Stance, s.Count)
		}
	}

	p.printf("\nmajority\n")
	for _, m := range result.Majority {
		stance := "-"
		if m.Stance != nil {
			stance = *m.Stance
		}
		p.printf("  %s\t%s\n", m.Issue, stance)
	}

	p.distribution(result.Agreement.Winner)
	p.distribution(result.Agreement.Loser)
	p.distribution(result.Agreement.Majority)

	if p.err != nil {
		return fmt.Errorf("failed to write report: %w", p.err)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// printer formats through a localized message.Printer and keeps the first
// write error.
type printer struct {
	w   io.Writer
	p   *message.Printer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = p.p.Fprintf(p.w, format, args...)
}

func (p *printer) distribution(d analysis.Distribution) {
	s := d.Summary
	p.printf("\ndistribution of agreement with candidate %s\n", d.Candidate)
	p.printf("count\t%d\n", s.Count)
	for _, row := range []struct {
		label string
		value float64
	}{
		{"mean", s.Mean},
		{"std", s.Std},
		{"min", s.Min},
		{"25%", s.Q25},
		{"50%", s.Median},
		{"75%", s.Q75},
		{"max", s.Max},
	} {
		p.printf("%s\t%s\n", row.label, p.float(row.value))
	}
	p.printf("histogram")
	for k, n := range d.Histogram {
		p.printf("\t%d:%d", k, n)
	}
	p.printf("\n")
}

func (p *printer) float(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return undefined
	}
	return p.p.Sprintf("%.6f", f)
}
