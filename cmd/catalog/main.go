// Command catalog seeds and maintains the product catalog.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"shopsmart/internal/config"
	"shopsmart/internal/observability"
)

var (
	jsonLogs bool

	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:          "catalog",
	Short:        "Seed and maintain the WalSmart product catalog",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()

		format := cfg.LogFormat
		if jsonLogs {
			format = "json"
		}
		logger = observability.NewLogger(observability.LogConfig{
			Level:       cfg.LogLevel,
			Format:      format,
			ServiceName: "catalog",
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json", false, "log in JSON format")

	rootCmd.AddCommand(newIngestCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newSetImageCmd())
	rootCmd.AddCommand(newSetPriceCmd())
	rootCmd.AddCommand(newScalePricesCmd())
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
