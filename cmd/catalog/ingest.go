package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"shopsmart/internal/catalog"
	"shopsmart/internal/db"
	"shopsmart/internal/ingest"
	"shopsmart/internal/observability"
	"shopsmart/internal/repository"
)

func newIngestCmd() *cobra.Command {
	var (
		source    string
		arrayName string
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load products.ts into an empty catalog",
		Long: `Ingest reads the storefront data file, recovers the product array and writes
every product with an id in one transaction. It does nothing when the catalog
already holds products, so it is safe to run on every deploy.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			if source == "" {
				source = cfg.CatalogSource
			}
			if arrayName == "" {
				arrayName = cfg.CatalogArray
			}

			pool, err := db.NewPool(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			repo := &repository.ProductRepository{DB: pool}
			if err := repo.EnsureSchema(ctx); err != nil {
				return err
			}

			orch := &ingest.Orchestrator{
				Store:     repo,
				Extractor: catalog.Extractor{ArrayName: arrayName},
				Log:       logger,
			}
			out, err := orch.Run(ctx, source)
			pushMetrics(ctx)
			if err != nil {
				return fmt.Errorf("run %s: %w", out.RunID, err)
			}

			fmt.Printf("initial state: %s, inserted: %d, dropped: %d\n", out.Initial, out.Inserted, out.Dropped)
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "path to products.ts (default $CATALOG_SOURCE)")
	cmd.Flags().StringVar(&arrayName, "array", "", "name of the product array (default $CATALOG_ARRAY)")
	return cmd
}

// pushMetrics hands the run's counters to the Pushgateway, if one is configured.
func pushMetrics(ctx context.Context) {
	if cfg.PushgatewayURL == "" {
		return
	}
	if err := observability.Push(ctx, cfg.PushgatewayURL, "catalog_ingest"); err != nil {
		logger.Warn().Err(err).Str("gateway", cfg.PushgatewayURL).Msg("Could not push ingestion metrics")
	}
}
