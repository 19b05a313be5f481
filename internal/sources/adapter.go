// Package sources implements the data-source adapters that pull raw
// procurement listings from external providers and map them into the
// canonical Opportunity type.
package sources

import (
	"context"

	"rfpscout/internal/models"
)

// Adapter is the contract every data source satisfies. Fetch may
// return partial results alongside an error (for example when one of
// several keyword queries failed); the caller keeps the results and
// records the failure. An adapter failure never aborts the run.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context) ([]models.Opportunity, error)
}
