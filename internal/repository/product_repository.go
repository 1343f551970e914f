package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shopsmart/internal/model"
)

// ErrNotFound is returned when no product has the requested id.
var ErrNotFound = errors.New("product not found")

var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id               TEXT PRIMARY KEY,
		position         INTEGER NOT NULL DEFAULT 0,
		name             TEXT NOT NULL DEFAULT '',
		description      TEXT NOT NULL DEFAULT '',
		long_description TEXT NOT NULL DEFAULT '',
		price            DOUBLE PRECISION NOT NULL DEFAULT 0,
		image            TEXT NOT NULL DEFAULT '',
		category         TEXT NOT NULL DEFAULT '',
		data_ai_hint     TEXT NOT NULL DEFAULT '',
		tags             JSON NOT NULL DEFAULT '[]',
		sentiment        JSON NOT NULL DEFAULT '{}',
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS products_name_idx ON products (name)`,
	`CREATE INDEX IF NOT EXISTS products_category_idx ON products (category)`,
}

const productColumns = `id, name, description, long_description, price, image, category, data_ai_hint, tags, sentiment`

// ProductRepository stores the catalog in Postgres through a pgx pool.
type ProductRepository struct {
	DB *pgxpool.Pool
}

// EnsureSchema creates the products table when it does not exist yet.
func (r *ProductRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.DB.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.DB.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// InsertAll writes products in one transaction, keeping their order in the
// position column. Nothing is written if any row fails.
func (r *ProductRepository) InsertAll(ctx context.Context, products []model.Product) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for i, p := range products {
		tags := p.Tags
		if tags == nil {
			tags = []string{}
		}
		tagsJSON, err := json.Marshal(tags)
		if err != nil {
			return fmt.Errorf("encode tags of %s: %w", p.ID, err)
		}
		sentimentJSON, err := json.Marshal(p.Sentiment)
		if err != nil {
			return fmt.Errorf("encode sentiment of %s: %w", p.ID, err)
		}
		batch.Queue(`
			INSERT INTO products
			(id, position, name, description, long_description, price, image, category, data_ai_hint, tags, sentiment)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::json, $11::json)
		`, p.ID, i, p.Name, p.Description, p.LongDescription, p.Price, p.Image, p.Category, p.DataAIHint, string(tagsJSON), string(sentimentJSON))
	}

	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert products: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// List returns the whole catalog in ingestion order.
func (r *ProductRepository) List(ctx context.Context) ([]model.Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *ProductRepository) Get(ctx context.Context, id string) (model.Product, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Product{}, ErrNotFound
	}
	return p, err
}

// UpdateSentiment replaces the stored sentiment of one product.
func (r *ProductRepository) UpdateSentiment(ctx context.Context, id string, s model.Sentiment) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	tag, err := r.DB.Exec(ctx, `UPDATE products SET sentiment = $1::json WHERE id = $2`, string(b), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var (
		p             model.Product
		tagsJSON      []byte
		sentimentJSON []byte
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.LongDescription, &p.Price, &p.Image, &p.Category, &p.DataAIHint, &tagsJSON, &sentimentJSON); err != nil {
		return p, err
	}
	if err := json.Unmarshal(tagsJSON, &p.Tags); err != nil {
		return p, fmt.Errorf("decode tags of %s: %w", p.ID, err)
	}
	if err := json.Unmarshal(sentimentJSON, &p.Sentiment); err != nil {
		return p, fmt.Errorf("decode sentiment of %s: %w", p.ID, err)
	}
	if p.Sentiment.Aspects == nil {
		p.Sentiment.Aspects = model.Aspects{}
	}
	return p, nil
}
