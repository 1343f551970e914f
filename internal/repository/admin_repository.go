package repository

import (
	"context"
	"database/sql"

	"shopsmart/internal/model"
)

// AdminRepository runs the maintenance edits issued from the catalog CLI.
type AdminRepository struct {
	DB *sql.DB
}

// SetImage replaces the image URL of one product. It reports whether the
// product exists.
func (r *AdminRepository) SetImage(ctx context.Context, id, url string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE products SET image = $1 WHERE id = $2`, url, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *AdminRepository) SetPrice(ctx context.Context, id string, price float64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE products SET price = $1 WHERE id = $2`, price, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ScaleCategoryPrices multiplies every price in category by factor and
// returns the number of products changed.
func (r *AdminRepository) ScaleCategoryPrices(ctx context.Context, category string, factor float64) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE products
		SET price = round((price * $1)::numeric, 2)
		WHERE category = $2
	`, factor, category)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Summaries lists the columns shown in the verification report.
func (r *AdminRepository) Summaries(ctx context.Context) ([]model.Product, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, category, price, image
		FROM products
		ORDER BY position, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.Image); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
