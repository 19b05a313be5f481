// Package config provides configuration management for the RFP scanner.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrNoRequiredKeywords       = errors.New("scoring.required_keywords must contain at least one phrase")
	ErrMinScoreOutOfRange       = errors.New("scoring.min_score must be within [0, 100]")
	ErrNoEnabledSources         = errors.New("at least one source must be enabled")
	ErrSerperMissingQueries     = errors.New("sources.serper.queries is required when serper is enabled")
	ErrBidNetMissingKeywords    = errors.New("sources.bidnet.keywords is required when bidnet is enabled")
	ErrSAMMissingKeywords       = errors.New("sources.sam.keywords is required when sam is enabled")
	ErrOpenGovMissingKeywords   = errors.New("sources.opengov.keywords is required when opengov is enabled")
	ErrTennesseeMissingKeywords = errors.New("sources.tennessee.keywords is required when tennessee is enabled")
	ErrPortalMissingName        = errors.New("portal name is required")
	ErrPortalMissingBaseURL     = errors.New("portal base_url is required")
	ErrInvalidLookbackDays      = errors.New("sources.lookback_days must be at least 1")
	ErrInvalidMaxAttempts       = errors.New("retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("retry.initial_delay_ms must be non-negative")
	ErrInvalidBackoffMultiplier = errors.New("retry.backoff_multiplier must be >= 1.0")
	ErrInvalidTimeout           = errors.New("retry.timeout_sec must be at least 1")
	ErrMissingSeenPath          = errors.New("seen.path is required")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
)

// Config represents the complete scanner configuration.
type Config struct {
	Scoring Scoring   `yaml:"scoring"`
	Filters URLFilter `yaml:"filters"`
	Sources Sources   `yaml:"sources"`
	Retry   Retry     `yaml:"retry"`
	Seen    Seen      `yaml:"seen"`
	Digest  Digest    `yaml:"digest"`
	Logging Logging   `yaml:"logging"`
}

// Scoring holds the relevance vocabulary and threshold. Loaded once at
// startup and never mutated during a run.
//
// At least one required keyword must match or the score is 0. Each
// matched required keyword contributes RequiredKeywordPoints (capped at
// RequiredPointsCap), plus BaseOnMatch once. Bonus phrases add their
// mapped points, each counted once; negative keywords subtract theirs.
type Scoring struct {
	BonusPhrases          map[string]int `yaml:"bonus_phrases"`
	NegativeKeywords      map[string]int `yaml:"negative_keywords"`
	RequiredKeywords      []string       `yaml:"required_keywords"`
	ProcurementSignals    []string       `yaml:"procurement_signals"`
	TechSignals           []string       `yaml:"tech_signals"`
	BaseOnMatch           int            `yaml:"base_on_match"`
	RequiredKeywordPoints int            `yaml:"required_keyword_points"`
	RequiredPointsCap     int            `yaml:"required_points_cap"`
	MinScore              int            `yaml:"min_score"`
}

// URLFilter lists URL patterns that disqualify a result before scoring.
type URLFilter struct {
	BlockedDomains []string `yaml:"blocked_domains"`
	ForeignTLDs    []string `yaml:"foreign_tlds"`
	JunkURLPaths   []string `yaml:"junk_url_paths"`
}

// Sources configures the individual source adapters.
type Sources struct {
	Serper       KeywordSource  `yaml:"serper"`
	BidNet       KeywordSource  `yaml:"bidnet"`
	SAM          KeywordSource  `yaml:"sam"`
	OpenGov      KeywordSource  `yaml:"opengov"`
	Tennessee    KeywordSource  `yaml:"tennessee"`
	USASpending  KeywordSource  `yaml:"usaspending"`
	InforPortals []PortalConfig `yaml:"infor_portals"`
	LookbackDays int            `yaml:"lookback_days"`
}

// KeywordSource is a source driven by a keyword (or search query) list.
type KeywordSource struct {
	Keywords []string `yaml:"keywords"`
	Queries  []string `yaml:"queries"`
	Enabled  bool     `yaml:"enabled"`
}

// PortalConfig represents one Infor/BuySpeed state procurement portal.
// Keywords is optional; when empty the portal reuses the bidnet list.
type PortalConfig struct {
	Name     string   `yaml:"name"`
	BaseURL  string   `yaml:"base_url"`
	Keywords []string `yaml:"keywords"`
	Enabled  bool     `yaml:"enabled"`
}

// Retry defines HTTP retry behavior shared by all adapters.
type Retry struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialDelayMs    int     `yaml:"initial_delay_ms"`
	MaxDelayMs        int     `yaml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	TimeoutSec        int     `yaml:"timeout_sec"`
}

// Seen configures the seen-URL store.
type Seen struct {
	Path string `yaml:"path"`
}

// Digest configures digest rendering.
type Digest struct {
	SubjectPrefix       string `yaml:"subject_prefix"`
	MaxDescriptionChars int    `yaml:"max_description_chars"`
}

// Logging defines logging behavior.
type Logging struct {
	Level string `yaml:"level"`
}

// Default signal phrase lists, applied when the config file does not
// override them. Procurement language in the title is a strong
// positive; tech language a moderate one.
var (
	defaultProcurementSignals = []string{
		"request for proposal", "rfp", "solicitation", "bid", "procurement",
		"request for information", "rfi", "request for quotation", "rfq",
		"invitation to bid", "itb",
	}

	defaultTechSignals = []string{
		"software", "platform", "system", "application", "app", "portal",
		"saas", "cloud", "cloud-based", "web-based", "digital", "technology",
	}
)

// LoadConfig loads configuration from a YAML file.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if len(c.Scoring.ProcurementSignals) == 0 {
		c.Scoring.ProcurementSignals = defaultProcurementSignals
	}

	if len(c.Scoring.TechSignals) == 0 {
		c.Scoring.TechSignals = defaultTechSignals
	}

	if c.Scoring.RequiredKeywordPoints == 0 {
		c.Scoring.RequiredKeywordPoints = 20
	}

	if c.Scoring.RequiredPointsCap == 0 {
		c.Scoring.RequiredPointsCap = 60
	}

	if c.Scoring.MinScore == 0 {
		c.Scoring.MinScore = 45
	}

	if c.Sources.LookbackDays == 0 {
		c.Sources.LookbackDays = 2
	}

	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 3
	}

	if c.Retry.BackoffMultiplier == 0 {
		c.Retry.BackoffMultiplier = 2.0
	}

	if c.Retry.MaxDelayMs == 0 {
		c.Retry.MaxDelayMs = 30000
	}

	if c.Retry.TimeoutSec == 0 {
		c.Retry.TimeoutSec = 30
	}

	if c.Seen.Path == "" {
		c.Seen.Path = "data/seen_urls.json"
	}

	if c.Digest.SubjectPrefix == "" {
		c.Digest.SubjectPrefix = "RFP Scout"
	}

	if c.Digest.MaxDescriptionChars == 0 {
		c.Digest.MaxDescriptionChars = 250
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.Scoring.RequiredKeywords) == 0 {
		return ErrNoRequiredKeywords
	}

	if c.Scoring.MinScore < 0 || c.Scoring.MinScore > 100 {
		return ErrMinScoreOutOfRange
	}

	if c.Sources.LookbackDays < 1 {
		return ErrInvalidLookbackDays
	}

	if !c.anySourceEnabled() {
		return ErrNoEnabledSources
	}

	if c.Sources.Serper.Enabled && len(c.Sources.Serper.Queries) == 0 {
		return ErrSerperMissingQueries
	}

	if c.Sources.BidNet.Enabled && len(c.Sources.BidNet.Keywords) == 0 {
		return ErrBidNetMissingKeywords
	}

	if c.Sources.SAM.Enabled && len(c.Sources.SAM.Keywords) == 0 {
		return ErrSAMMissingKeywords
	}

	if c.Sources.OpenGov.Enabled && len(c.Sources.OpenGov.Keywords) == 0 {
		return ErrOpenGovMissingKeywords
	}

	if c.Sources.Tennessee.Enabled && len(c.Sources.Tennessee.Keywords) == 0 {
		return ErrTennesseeMissingKeywords
	}

	for i, portal := range c.Sources.InforPortals {
		if portal.Name == "" {
			return fmt.Errorf("%w: infor_portals[%d]", ErrPortalMissingName, i)
		}

		if portal.BaseURL == "" {
			return fmt.Errorf("%w: infor_portals[%d]", ErrPortalMissingBaseURL, i)
		}
	}

	if c.Retry.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if c.Retry.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}

	if c.Retry.BackoffMultiplier < 1.0 {
		return ErrInvalidBackoffMultiplier
	}

	if c.Retry.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	if c.Seen.Path == "" {
		return ErrMissingSeenPath
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	return nil
}

func (c *Config) anySourceEnabled() bool {
	if c.Sources.Serper.Enabled || c.Sources.BidNet.Enabled || c.Sources.SAM.Enabled ||
		c.Sources.OpenGov.Enabled || c.Sources.Tennessee.Enabled || c.Sources.USASpending.Enabled {
		return true
	}

	for _, portal := range c.Sources.InforPortals {
		if portal.Enabled {
			return true
		}
	}

	return false
}

// EnabledPortals returns only enabled Infor portals.
func (c *Config) EnabledPortals() []PortalConfig {
	var enabled []PortalConfig

	for _, portal := range c.Sources.InforPortals {
		if portal.Enabled {
			enabled = append(enabled, portal)
		}
	}

	return enabled
}

// GetRetryDelay calculates exponential backoff delay for attempt number.
func (r *Retry) GetRetryDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delayMs := float64(r.InitialDelayMs)
	for i := 1; i < attempt; i++ {
		delayMs *= r.BackoffMultiplier
	}

	// Cap at max delay
	if int(delayMs) > r.MaxDelayMs {
		delayMs = float64(r.MaxDelayMs)
	}

	return time.Duration(int(delayMs)) * time.Millisecond
}

// GetTimeout returns the per-request timeout duration.
func (r *Retry) GetTimeout() time.Duration {
	return time.Duration(r.TimeoutSec) * time.Second
}

// String returns a string representation of the config.
func (c *Config) String() string {
	var enabled []string

	if c.Sources.Serper.Enabled {
		enabled = append(enabled, "serper")
	}

	if c.Sources.BidNet.Enabled {
		enabled = append(enabled, "bidnet")
	}

	if c.Sources.SAM.Enabled {
		enabled = append(enabled, "sam")
	}

	if c.Sources.OpenGov.Enabled {
		enabled = append(enabled, "opengov")
	}

	if c.Sources.Tennessee.Enabled {
		enabled = append(enabled, "tennessee")
	}

	if c.Sources.USASpending.Enabled {
		enabled = append(enabled, "usaspending")
	}

	for _, portal := range c.EnabledPortals() {
		enabled = append(enabled, "infor:"+portal.Name)
	}

	return fmt.Sprintf(
		"Config{Sources: [%s], RequiredKeywords: %d, MinScore: %d}",
		strings.Join(enabled, " "),
		len(c.Scoring.RequiredKeywords),
		c.Scoring.MinScore,
	)
}
