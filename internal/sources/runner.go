package sources

import (
	"context"

	"golang.org/x/sync/errgroup"

	"rfpscout/internal/logger"
	"rfpscout/internal/models"
)

// Runner fetches from every registered adapter concurrently. One
// adapter failing never stops the others, and merged results always
// come back in registration order so a run is reproducible.
type Runner struct {
	adapters []Adapter
	logger   *logger.Logger
}

// NewRunner creates a runner over the given adapters.
func NewRunner(log *logger.Logger, adapters ...Adapter) *Runner {
	return &Runner{
		adapters: adapters,
		logger:   log,
	}
}

// Register appends an adapter. Later registrations merge after earlier
// ones.
func (r *Runner) Register(adapter Adapter) {
	r.adapters = append(r.adapters, adapter)
}

// FetchAll runs every adapter and merges their results in registration
// order. Adapters that failed are reported in the returned map, keyed
// by adapter name; partial results from a failed adapter are kept.
func (r *Runner) FetchAll(ctx context.Context) ([]models.Opportunity, map[string]error) {
	results := make([][]models.Opportunity, len(r.adapters))
	fetchErrs := make([]error, len(r.adapters))

	var group errgroup.Group

	for i, adapter := range r.adapters {
		i, adapter := i, adapter
		group.Go(func() error {
			log := r.logger.With("source", adapter.Name())
			log.Info("fetching source")

			opportunities, err := adapter.Fetch(ctx)

			results[i] = opportunities
			fetchErrs[i] = err

			if err != nil {
				log.Warn("source fetch failed", "error", err, "partial_results", len(opportunities))
			} else {
				log.Info("source fetch complete", "results", len(opportunities))
			}

			return nil
		})
	}

	// Goroutines never return errors; Wait only synchronizes.
	_ = group.Wait()

	var merged []models.Opportunity

	failures := make(map[string]error)

	for i, adapter := range r.adapters {
		merged = append(merged, results[i]...)

		if fetchErrs[i] != nil {
			failures[adapter.Name()] = fetchErrs[i]
		}
	}

	return merged, failures
}
