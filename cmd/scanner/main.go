// Package main runs one full scan: fetch all sources, score, dedup,
// email the digest, persist the seen set. Designed for a daily cron
// or GitHub Actions schedule.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"rfpscout/internal/config"
	"rfpscout/internal/logger"
	"rfpscout/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "configs/scanner.yaml", "Path to the scanner configuration file")
	dryRun := flag.Bool("dry-run", false, "Fetch and score but send no email and persist nothing")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.Logging.Level)

	secrets := pipeline.Secrets{
		SerperAPIKey:   os.Getenv("SERPER_API_KEY"),
		SAMAPIKey:      os.Getenv("SAM_API_KEY"),
		ResendAPIKey:   os.Getenv("RESEND_API_KEY"),
		SenderEmail:    os.Getenv("SENDER_EMAIL"),
		RecipientEmail: os.Getenv("RECIPIENT_EMAIL"),
	}

	if secrets.SenderEmail == "" {
		secrets.SenderEmail = "onboarding@resend.dev"
	}

	if !*dryRun && secrets.ResendAPIKey == "" {
		log.Error("RESEND_API_KEY is not set; use -dry-run to scan without sending")
		os.Exit(1)
	}

	if !*dryRun && secrets.RecipientEmail == "" {
		log.Error("RECIPIENT_EMAIL is not set; use -dry-run to scan without sending")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("🚀 Starting RFP Scout scan", "config", *configPath, "dry_run", *dryRun)

	deps := pipeline.NewDeps(cfg, log, secrets)

	report, err := pipeline.Run(ctx, cfg, log, deps, *dryRun)
	if err != nil {
		log.Error("❌ Scan failed", "error", err)
		os.Exit(1)
	}

	for source, fetchErr := range report.SourceFailures {
		log.Warn("source had errors", "source", source, "error", fetchErr)
	}

	log.Info("✅ Scan finished",
		"fetched", report.TotalFetched,
		"new", report.NewAccepted,
		"expiring", report.ExpiringCount,
		"digest_id", report.DigestID,
		"digest_skipped", report.DigestSkipped)
}
