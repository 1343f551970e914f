package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"shopsmart/internal/db"
	"shopsmart/internal/report"
	"shopsmart/internal/repository"
)

func openAdmin() (*repository.AdminRepository, func(), error) {
	conn, err := db.New(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return &repository.AdminRepository{DB: conn}, func() { conn.Close() }, nil
}

func newReportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write a Markdown table of the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			repo, closeDB, err := openAdmin()
			if err != nil {
				return err
			}
			defer closeDB()

			products, err := repo.Summaries(ctx)
			if err != nil {
				return fmt.Errorf("load products: %w", err)
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := report.Write(f, products); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			logger.Info().Int("products", len(products)).Str("file", out).Msg("Report written")
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", report.DefaultPath, "output file")
	return cmd
}

// pairEdit applies fn to each id/value pair in args and prints the counts.
func pairEdit(cmd *cobra.Command, args []string, fn func(ctx context.Context, repo *repository.AdminRepository, id, value string) (bool, error)) error {
	if len(args) == 0 || len(args)%2 != 0 {
		return fmt.Errorf("expected <id> <value> pairs, got %d arguments", len(args))
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	repo, closeDB, err := openAdmin()
	if err != nil {
		return err
	}
	defer closeDB()

	var updated, missing int
	for i := 0; i < len(args); i += 2 {
		ok, err := fn(ctx, repo, args[i], args[i+1])
		if err != nil {
			return fmt.Errorf("product %s: %w", args[i], err)
		}
		if ok {
			updated++
		} else {
			missing++
			logger.Warn().Str("product", args[i]).Msg("Product not found")
		}
	}

	fmt.Printf("updated: %d, not found: %d\n", updated, missing)
	return nil
}

func newSetImageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-image <id> <url> [<id> <url>...]",
		Short: "Replace product image URLs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return pairEdit(cmd, args, func(ctx context.Context, repo *repository.AdminRepository, id, url string) (bool, error) {
				return repo.SetImage(ctx, id, url)
			})
		},
	}
}

func newSetPriceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-price <id> <price> [<id> <price>...]",
		Short: "Set product prices",
		RunE: func(cmd *cobra.Command, args []string) error {
			return pairEdit(cmd, args, func(ctx context.Context, repo *repository.AdminRepository, id, v string) (bool, error) {
				price, err := strconv.ParseFloat(v, 64)
				if err != nil || price < 0 {
					return false, fmt.Errorf("invalid price %q", v)
				}
				return repo.SetPrice(ctx, id, price)
			})
		},
	}
}

func newScalePricesCmd() *cobra.Command {
	var (
		category string
		factor   float64
	)

	cmd := &cobra.Command{
		Use:   "scale-prices",
		Short: "Multiply every price in a category by a factor",
		RunE: func(cmd *cobra.Command, args []string) error {
			if factor <= 0 {
				return fmt.Errorf("factor must be positive, got %v", factor)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			repo, closeDB, err := openAdmin()
			if err != nil {
				return err
			}
			defer closeDB()

			n, err := repo.ScaleCategoryPrices(ctx, category, factor)
			if err != nil {
				return err
			}
			if n == 0 {
				logger.Warn().Str("category", category).Msg("No products in category")
			}
			fmt.Printf("updated: %d\n", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "product category")
	cmd.Flags().Float64Var(&factor, "factor", 1, "price multiplier")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("factor")
	return cmd
}
