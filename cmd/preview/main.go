// Package main prints a scored preview of the current listings to
// stdout without emailing anything or touching the seen store. Useful
// for tuning the scoring vocabulary.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-runewidth"

	"rfpscout/internal/config"
	"rfpscout/internal/digest"
	"rfpscout/internal/logger"
	"rfpscout/internal/models"
	"rfpscout/internal/pipeline"
	"rfpscout/internal/scoring"
)

const titleColumnWidth = 60

func main() {
	configPath := flag.String("config", "configs/scanner.yaml", "Path to the scanner configuration file")
	showAll := flag.Bool("all", false, "Include results below the score threshold")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.Logging.Level)

	secrets := pipeline.Secrets{
		SerperAPIKey: os.Getenv("SERPER_API_KEY"),
		SAMAPIKey:    os.Getenv("SAM_API_KEY"),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := pipeline.NewDeps(cfg, log, secrets)

	fetched, failures := deps.Runner.FetchAll(ctx)
	for source, fetchErr := range failures {
		log.Warn("source had errors", "source", source, "error", fetchErr)
	}

	urlFilter := scoring.NewURLFilter(cfg.Filters)
	scorer := scoring.NewScorer(cfg.Scoring)

	var scored []models.ScoredOpportunity

	for _, opp := range fetched {
		if !urlFilter.Allow(opp.URL) {
			continue
		}

		score := scorer.Score(opp)
		if score < cfg.Scoring.MinScore && !*showAll {
			continue
		}

		scored = append(scored, models.ScoredOpportunity{Opportunity: opp, Score: score})
	}

	digest.SortByScore(scored)

	printTable(scored)
	fmt.Printf("\n%d results (threshold %d, all=%v)\n", len(scored), cfg.Scoring.MinScore, *showAll)
}

// printTable writes an aligned score/source/title table. Column
// widths use display width so CJK titles stay aligned.
func printTable(scored []models.ScoredOpportunity) {
	sourceWidth := len("Source")
	for _, opp := range scored {
		if w := runewidth.StringWidth(opp.Source); w > sourceWidth {
			sourceWidth = w
		}
	}

	fmt.Printf("%s  %s  %s\n",
		runewidth.FillRight("Score", 5),
		runewidth.FillRight("Source", sourceWidth),
		"Title")
	fmt.Printf("%s  %s  %s\n",
		"-----",
		strings.Repeat("-", sourceWidth),
		"-----")

	for _, opp := range scored {
		fmt.Printf("%s  %s  %s\n",
			runewidth.FillRight(fmt.Sprintf("%d", opp.Score), 5),
			runewidth.FillRight(opp.Source, sourceWidth),
			runewidth.Truncate(opp.Title, titleColumnWidth, "…"))
	}
}
