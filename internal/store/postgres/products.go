package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"driveplane/internal/store"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

func (s *Store) CreateProduct(ctx context.Context, product *store.Product) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, price, commission, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, product.ID, product.Name, product.Price, product.Commission, product.CreatedAt)
	return err
}

// GetProducts fetches products by id and returns them in the requested order.
// A missing id is reported as store.ErrNotFound.
func (s *Store) GetProducts(ctx context.Context, ids []uuid.UUID) ([]store.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, price, commission, created_at FROM products WHERE id = ANY($1)",
		pq.Array(ids),
	)
	if err != nil {
		return nil, err
	}
	found, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]store.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	products := make([]store.Product, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("product %s: %w", id, store.ErrNotFound)
		}
		products = append(products, p)
	}
	return products, nil
}

func (s *Store) ListProductsInBand(ctx context.Context, min, max float64) ([]store.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, price, commission, created_at FROM products
		WHERE price >= $1 AND price <= $2
		ORDER BY price ASC, id ASC
	`, min, max)
	if err != nil {
		return nil, err
	}
	return scanProducts(rows)
}

func (s *Store) ListProducts(ctx context.Context) ([]store.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, price, commission, created_at FROM products ORDER BY price ASC, id ASC")
	if err != nil {
		return nil, err
	}
	return scanProducts(rows)
}

func scanProducts(rows *sql.Rows) ([]store.Product, error) {
	defer rows.Close()

	var products []store.Product
	for rows.Next() {
		var p store.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Commission, &p.CreatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
