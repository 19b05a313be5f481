// Package pipeline wires the scanner stages together: fetch, URL
// filter, score, threshold, dedup, digest, persist.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"rfpscout/internal/config"
	"rfpscout/internal/dedup"
	"rfpscout/internal/digest"
	"rfpscout/internal/logger"
	"rfpscout/internal/models"
	"rfpscout/internal/scoring"
	"rfpscout/internal/seenstore"
	"rfpscout/internal/sources"
)

// DigestSender delivers a rendered digest. Satisfied by digest.Sender.
type DigestSender interface {
	Send(ctx context.Context, subject, htmlBody, textBody string) (string, error)
}

// Secrets carries the API credentials read from the environment.
type Secrets struct {
	SerperAPIKey   string
	SAMAPIKey      string
	ResendAPIKey   string
	SenderEmail    string
	RecipientEmail string
}

// Deps are the pipeline's injectable collaborators. Built from config
// via NewDeps in production; tests construct them directly.
type Deps struct {
	Runner   *sources.Runner
	Expiring sources.Adapter
	Sender   DigestSender
	Now      func() time.Time
}

// Report summarizes one scanner run.
type Report struct {
	TotalFetched   int
	URLFiltered    int
	BelowThreshold int
	Duplicates     int
	NewAccepted    int
	ExpiringCount  int
	SourceFailures map[string]error
	DigestID       string
	DigestSkipped  bool
}

// NewDeps builds the production dependency set from configuration.
// Sources whose credentials are missing are skipped with a warning
// rather than failing the run.
func NewDeps(cfg *config.Config, log *logger.Logger, secrets Secrets) Deps {
	fetcher := sources.NewFetcher(&cfg.Retry)
	runner := sources.NewRunner(log)

	if cfg.Sources.Serper.Enabled {
		if secrets.SerperAPIKey == "" {
			log.Warn("serper enabled but SERPER_API_KEY is not set, skipping source")
		} else {
			runner.Register(sources.NewSerperAdapter(fetcher, secrets.SerperAPIKey,
				cfg.Sources.Serper.Queries, cfg.Sources.LookbackDays))
		}
	}

	if cfg.Sources.BidNet.Enabled {
		runner.Register(sources.NewBidNetAdapter(fetcher, cfg.Sources.BidNet.Keywords))
	}

	if cfg.Sources.SAM.Enabled {
		if secrets.SAMAPIKey == "" {
			log.Warn("sam enabled but SAM_API_KEY is not set, skipping source")
		} else {
			runner.Register(sources.NewSAMGovAdapter(fetcher, secrets.SAMAPIKey,
				cfg.Sources.SAM.Keywords, cfg.Sources.LookbackDays))
		}
	}

	if cfg.Sources.OpenGov.Enabled {
		runner.Register(sources.NewOpenGovAdapter(fetcher, cfg.Sources.OpenGov.Keywords))
	}

	if cfg.Sources.Tennessee.Enabled {
		runner.Register(sources.NewTennesseeAdapter(fetcher, cfg.Sources.Tennessee.Keywords))
	}

	for _, portal := range cfg.EnabledPortals() {
		keywords := portal.Keywords
		if len(keywords) == 0 {
			keywords = cfg.Sources.BidNet.Keywords
		}

		runner.Register(sources.NewInforAdapter(fetcher, portal.Name, portal.BaseURL, keywords))
	}

	deps := Deps{
		Runner: runner,
		Now:    func() time.Time { return time.Now().UTC() },
	}

	if cfg.Sources.USASpending.Enabled {
		deps.Expiring = sources.NewUSASpendingAdapter(fetcher, cfg.Sources.USASpending.Keywords)
	}

	if secrets.ResendAPIKey != "" && secrets.RecipientEmail != "" {
		deps.Sender = digest.NewSender(secrets.ResendAPIKey, secrets.SenderEmail, secrets.RecipientEmail)
	}

	return deps
}

// Run executes one full scan. With dryRun set, nothing is emailed and
// the seen set is not persisted.
//
// The seen set is saved only after the digest went out (or there was
// nothing to send). If delivery fails the set stays untouched on disk,
// so the next run re-reports rather than silently dropping listings.
func Run(ctx context.Context, cfg *config.Config, log *logger.Logger, deps Deps, dryRun bool) (*Report, error) {
	now := deps.Now()

	seen, err := seenstore.Load(cfg.Seen.Path)
	if err != nil {
		log.Warn("seen store unreadable, starting from an empty set", "error", err)
	}

	log.Info("starting scan", "config", cfg.String(), "seen_urls", seen.Len())

	fetched, failures := deps.Runner.FetchAll(ctx)

	report := &Report{
		TotalFetched:   len(fetched),
		SourceFailures: failures,
	}

	var expiring []models.Opportunity

	if deps.Expiring != nil {
		expiring, err = deps.Expiring.Fetch(ctx)
		if err != nil {
			log.Warn("expiring contracts fetch failed", "error", err, "partial_results", len(expiring))
			failures[deps.Expiring.Name()] = err
		}

		report.ExpiringCount = len(expiring)
	}

	urlFilter := scoring.NewURLFilter(cfg.Filters)
	scorer := scoring.NewScorer(cfg.Scoring)

	var relevant []models.ScoredOpportunity

	for _, opp := range fetched {
		if !urlFilter.Allow(opp.URL) {
			report.URLFiltered++

			continue
		}

		score := scorer.Score(opp)
		if score < cfg.Scoring.MinScore {
			report.BelowThreshold++

			continue
		}

		relevant = append(relevant, models.ScoredOpportunity{Opportunity: opp, Score: score})
	}

	accepted := dedup.FilterNew(relevant, seen, now)
	report.Duplicates = len(relevant) - len(accepted)
	report.NewAccepted = len(accepted)

	digest.SortByScore(accepted)

	log.Info("scan complete",
		"fetched", report.TotalFetched,
		"url_filtered", report.URLFiltered,
		"below_threshold", report.BelowThreshold,
		"duplicates", report.Duplicates,
		"new", report.NewAccepted,
		"expiring", report.ExpiringCount,
		"source_failures", len(failures))

	if dryRun {
		report.DigestSkipped = true

		return report, nil
	}

	if len(accepted) == 0 {
		log.Info("no new opportunities, skipping digest")

		report.DigestSkipped = true
	} else {
		if deps.Sender == nil {
			return report, fmt.Errorf("digest has %d opportunities but no sender is configured", len(accepted))
		}

		d := digest.Digest{
			Opportunities: accepted,
			Expiring:      expiring,
			GeneratedAt:   now,
		}

		subject := digest.Subject(cfg.Digest.SubjectPrefix, len(accepted), len(expiring), now)

		id, err := deps.Sender.Send(ctx, subject,
			digest.BuildHTML(d, cfg.Digest.MaxDescriptionChars),
			digest.BuildText(d))
		if err != nil {
			return report, fmt.Errorf("failed to send digest: %w", err)
		}

		report.DigestID = id
		log.Info("digest sent", "id", id, "recipient_count", 1, "subject", subject)
	}

	if err := seen.Save(cfg.Seen.Path); err != nil {
		return report, fmt.Errorf("failed to persist seen set: %w", err)
	}

	return report, nil
}
