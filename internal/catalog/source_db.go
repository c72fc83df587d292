package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const defaultLoadTimeout = 10 * time.Second

// PostgresSource reads the products table once. Prices are NUMERIC and are
// scanned through their text form so no float conversion happens.
type PostgresSource struct {
	DSN     string
	Timeout time.Duration
}

func NewPostgresSource(dsn string, timeout time.Duration) *PostgresSource {
	if timeout <= 0 {
		timeout = defaultLoadTimeout
	}
	return &PostgresSource{DSN: dsn, Timeout: timeout}
}

func (s *PostgresSource) Name() string { return "postgres" }

func (s *PostgresSource) Load(ctx context.Context) ([]Product, error) {
	var out []Product

	err := withTimeout(ctx, s.Timeout, func(ctx context.Context) error {
		conn, err := pgx.Connect(ctx, s.DSN)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer func() { _ = conn.Close(context.Background()) }()

		rows, err := conn.Query(ctx, `
			SELECT id, name, description, category, brand,
			       price::text, COALESCE(old_price, price)::text, stock,
			       COALESCE(tags, '{}'), image_url
			FROM products
			ORDER BY position ASC, id ASC
		`)
		if err != nil {
			return fmt.Errorf("query products: %w", err)
		}
		defer rows.Close()

		out = make([]Product, 0, 64)
		for rows.Next() {
			p, err := scanProduct(rows)
			if err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func scanProduct(rows pgx.Rows) (Product, error) {
	var (
		p               Product
		price, oldPrice string
		tags            []string
	)

	if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Brand,
		&price, &oldPrice, &p.Stock, &tags, &p.ImageURL); err != nil {
		return Product{}, fmt.Errorf("scan product: %w", err)
	}

	var err error
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return Product{}, fmt.Errorf("product %q: price: %w", p.ID, err)
	}
	if p.OldPrice, err = decimal.NewFromString(oldPrice); err != nil {
		return Product{}, fmt.Errorf("product %q: old_price: %w", p.ID, err)
	}
	if tags == nil {
		tags = []string{}
	}
	p.Tags = tags

	return p, nil
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
