// Package ingest seeds the product catalog from the storefront data file.
// It runs once: when the store already holds products it does nothing.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"shopsmart/internal/catalog"
	"shopsmart/internal/model"
	"shopsmart/internal/observability"
)

// Store is the persistence the job writes to.
type Store interface {
	Count(ctx context.Context) (int, error)
	// InsertAll writes every product in one transaction.
	InsertAll(ctx context.Context, products []model.Product) error
}

// State is the catalog state observed by a run.
type State string

const (
	StateEmpty     State = "EMPTY"
	StatePopulated State = "POPULATED"
)

// PersistenceError wraps a failure reported by the Store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("ingest: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Outcome summarises one run.
type Outcome struct {
	RunID string
	// Initial is the state found before the run.
	Initial  State
	Inserted int
	Dropped  int
	// DroppedAspects counts aspect entries lost to parse errors.
	DroppedAspects int
	// SourceErr is set when the source could not be located; the run still
	// commits an empty set.
	SourceErr error
}

// Orchestrator runs the one-shot ingestion job.
type Orchestrator struct {
	Store     Store
	Extractor catalog.Extractor
	Log       zerolog.Logger
	// ReadFile defaults to os.ReadFile.
	ReadFile func(name string) ([]byte, error)
}

// Run ingests the file at source if the store is empty.
func (o *Orchestrator) Run(ctx context.Context, source string) (Outcome, error) {
	out := Outcome{RunID: uuid.NewString()}
	log := o.Log.With().Str("run_id", out.RunID).Str("source", source).Logger()

	n, err := o.Store.Count(ctx)
	if err != nil {
		observability.IngestionRuns.WithLabelValues("failed").Inc()
		return out, &PersistenceError{Op: "count products", Err: err}
	}
	if n > 0 {
		out.Initial = StatePopulated
		observability.IngestionRuns.WithLabelValues("skipped").Inc()
		log.Info().Int("products", n).Msg("Catalog already populated, skipping ingestion")
		return out, nil
	}
	out.Initial = StateEmpty

	readFile := o.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}
	src, err := readFile(source)
	if err != nil {
		observability.IngestionRuns.WithLabelValues("failed").Inc()
		return out, fmt.Errorf("read catalog source: %w", err)
	}

	log.Info().Msg("Extracting products from catalog source")
	res, err := o.Extractor.Extract(string(src))
	if err != nil {
		var sfe *catalog.SourceFormatError
		if !errors.As(err, &sfe) {
			return out, err
		}
		out.SourceErr = err
		log.Warn().Err(err).Msg("Catalog source not recognised, continuing with no products")
	}

	for _, pos := range res.DroppedItems {
		log.Warn().Int("item", pos).Msg("Dropping catalog item without id")
	}
	if res.DroppedAspects > 0 {
		log.Warn().Int("entries", res.DroppedAspects).Msg("Dropped unparsable sentiment aspects")
	}
	out.Dropped = len(res.DroppedItems)
	out.DroppedAspects = res.DroppedAspects
	observability.ItemsExtracted.Add(float64(len(res.Products)))
	observability.ItemsDropped.Add(float64(out.Dropped))
	observability.AspectsDropped.Add(float64(out.DroppedAspects))

	log.Info().Int("products", len(res.Products)).Int("dropped", out.Dropped).Msg("Found products")

	if err := o.Store.InsertAll(ctx, res.Products); err != nil {
		observability.IngestionRuns.WithLabelValues("failed").Inc()
		return out, &PersistenceError{Op: "insert products", Err: err}
	}
	out.Inserted = len(res.Products)

	observability.IngestionRuns.WithLabelValues("populated").Inc()
	log.Info().Int("products", out.Inserted).Msg("Catalog populated")
	return out, nil
}
