package postgres

import (
	"context"
	"fmt"
)

// DDL in dependency order: parents before children, commerce then
// catalog. Bootstrap is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		full_name VARCHAR(120) NOT NULL DEFAULT '',
		email VARCHAR(254) NOT NULL UNIQUE,
		phone VARCHAR(30) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		sku VARCHAR(40) NOT NULL UNIQUE,
		name VARCHAR(160) NOT NULL DEFAULT '',
		price NUMERIC(10,2) NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		customer_id BIGINT NOT NULL REFERENCES customers (id),
		product_id BIGINT NOT NULL REFERENCES products (id),
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		order_date DATE NOT NULL,
		note VARCHAR(255) NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS authors (
		id BIGINT PRIMARY KEY,
		name VARCHAR(100) NOT NULL DEFAULT '',
		bio TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS books (
		id BIGINT PRIMARY KEY,
		title VARCHAR(200) NOT NULL DEFAULT '',
		author_id BIGINT NOT NULL REFERENCES authors (id),
		price NUMERIC(10,2) NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id BIGINT PRIMARY KEY,
		book_id BIGINT NOT NULL REFERENCES books (id),
		content TEXT NOT NULL DEFAULT '',
		rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5)
	)`,
}

// Bootstrap creates any missing tables so a fresh database can accept
// an import without out-of-band migration tooling.
func (s *Store) Bootstrap(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
	}
	return nil
}
