// Package postgres implements the record store boundary on PostgreSQL
// via pgx. Inserts are conflict-skipping (ON CONFLICT DO NOTHING on the
// natural key), dependent rows resolve parents by natural key inside the
// insert statement, and List returns rows in natural-key form for the
// exporter.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lamkw/datapipe/internal/core"
)

// Store is a pgx-backed core.Store.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an already-connected pool; the caller owns its lifecycle.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// entitySQL carries the per-entity statements. listCols must match the
// column names the pipeline definitions use.
type entitySQL struct {
	keysQuery string
	listQuery string
	listCols  []string
	queue     func(b *pgx.Batch, row core.Row)
}

var entitySQLs = map[string]entitySQL{
	"customers": {
		keysQuery: `SELECT email FROM customers`,
		listQuery: `SELECT full_name, email, phone, created_at::text
			FROM customers ORDER BY id`,
		listCols: []string{"full_name", "email", "phone", "created_at"},
		queue: func(b *pgx.Batch, row core.Row) {
			b.Queue(`INSERT INTO customers (full_name, email, phone)
				VALUES ($1, $2, $3)
				ON CONFLICT (email) DO NOTHING`,
				toText(row["full_name"]), toText(row["email"]), toText(row["phone"]))
		},
	},
	"products": {
		keysQuery: `SELECT sku FROM products`,
		listQuery: `SELECT sku, name, price::text, is_active::text, created_at::text
			FROM products ORDER BY id`,
		listCols: []string{"sku", "name", "price", "is_active", "created_at"},
		queue: func(b *pgx.Batch, row core.Row) {
			b.Queue(`INSERT INTO products (sku, name, price, is_active)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (sku) DO NOTHING`,
				toText(row["sku"]), toText(row["name"]),
				toNumeric(row["price"]), toBool(row["is_active"]))
		},
	},
	"orders": {
		listQuery: `SELECT c.email, p.sku, o.quantity::text, o.order_date::text, o.note
			FROM orders o
			JOIN customers c ON c.id = o.customer_id
			JOIN products p ON p.id = o.product_id
			ORDER BY o.id`,
		listCols: []string{"customer_email", "product_sku", "quantity", "order_date", "note"},
		queue: func(b *pgx.Batch, row core.Row) {
			// Parents resolve inside the statement; the loader has
			// already dropped rows whose parents are absent.
			b.Queue(`INSERT INTO orders (customer_id, product_id, quantity, order_date, note)
				SELECT c.id, p.id, $3, $4, $5
				FROM customers c, products p
				WHERE c.email = $1 AND p.sku = $2`,
				toText(row["customer_email"]), toText(row["product_sku"]),
				toInt4(row["quantity"]), toDate(row["order_date"]), toText(row["note"]))
		},
	},
	"authors": {
		keysQuery: `SELECT id::text FROM authors`,
		listQuery: `SELECT id::text, name, bio FROM authors ORDER BY id`,
		listCols:  []string{"id", "name", "bio"},
		queue: func(b *pgx.Batch, row core.Row) {
			b.Queue(`INSERT INTO authors (id, name, bio)
				VALUES ($1, $2, $3)
				ON CONFLICT (id) DO NOTHING`,
				toInt8(row["id"]), toText(row["name"]), toText(row["bio"]))
		},
	},
	"books": {
		keysQuery: `SELECT id::text FROM books`,
		listQuery: `SELECT id::text, title, author_id::text, price::text
			FROM books ORDER BY id`,
		listCols: []string{"id", "title", "author_id", "price"},
		queue: func(b *pgx.Batch, row core.Row) {
			b.Queue(`INSERT INTO books (id, title, author_id, price)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (id) DO NOTHING`,
				toInt8(row["id"]), toText(row["title"]),
				toInt8(row["author_id"]), toNumeric(row["price"]))
		},
	},
	"reviews": {
		keysQuery: `SELECT id::text FROM reviews`,
		listQuery: `SELECT id::text, book_id::text, rating::text, content
			FROM reviews ORDER BY id`,
		listCols: []string{"id", "book_id", "rating", "content"},
		queue: func(b *pgx.Batch, row core.Row) {
			b.Queue(`INSERT INTO reviews (id, book_id, content, rating)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (id) DO NOTHING`,
				toInt8(row["id"]), toInt8(row["book_id"]),
				toText(row["content"]), toInt4(row["rating"]))
		},
	},
}

var tables = map[string]string{
	"customers": "customers",
	"products":  "products",
	"orders":    "orders",
	"authors":   "authors",
	"books":     "books",
	"reviews":   "reviews",
}

func (s *Store) sql(entity string) (entitySQL, error) {
	es, ok := entitySQLs[entity]
	if !ok {
		return entitySQL{}, fmt.Errorf("unknown entity: %s", entity)
	}
	return es, nil
}

// Keys returns the set of stored natural keys.
func (s *Store) Keys(ctx context.Context, entity string) (map[string]bool, error) {
	es, err := s.sql(entity)
	if err != nil {
		return nil, err
	}
	if es.keysQuery == "" {
		return nil, fmt.Errorf("entity %s has no natural key", entity)
	}

	rows, err := s.pool.Query(ctx, es.keysQuery)
	if err != nil {
		return nil, fmt.Errorf("querying %s keys: %w", entity, err)
	}
	defer rows.Close()

	keys := make(map[string]bool)
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning %s key: %w", entity, err)
		}
		keys[k] = true
	}
	return keys, rows.Err()
}

// Insert bulk-inserts rows in one batch round trip, counting the rows
// the database actually accepted.
func (s *Store) Insert(ctx context.Context, entity string, rows []core.Row) (int, error) {
	es, err := s.sql(entity)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	b := &pgx.Batch{}
	for _, row := range rows {
		es.queue(b, row)
	}

	br := s.pool.SendBatch(ctx, b)
	defer br.Close()

	inserted := 0
	for range rows {
		ct, err := br.Exec()
		if err != nil {
			return inserted, fmt.Errorf("inserting into %s: %w", entity, err)
		}
		inserted += int(ct.RowsAffected())
	}
	return inserted, nil
}

// List returns all rows in natural-key form, insertion (id) order.
func (s *Store) List(ctx context.Context, entity string) ([]core.Row, error) {
	es, err := s.sql(entity)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, es.listQuery)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", entity, err)
	}
	defer rows.Close()

	var out []core.Row
	vals := make([]*string, len(es.listCols))
	dest := make([]any, len(es.listCols))
	for i := range vals {
		dest[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", entity, err)
		}
		row := make(core.Row, len(es.listCols))
		for i, col := range es.listCols {
			if vals[i] != nil {
				row[col] = *vals[i]
			} else {
				row[col] = ""
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// DeleteAll removes every row of the entity. core.Reset drives the
// child-before-parent ordering.
func (s *Store) DeleteAll(ctx context.Context, entity string) error {
	table, ok := tables[entity]
	if !ok {
		return fmt.Errorf("unknown entity: %s", entity)
	}
	if _, err := s.pool.Exec(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("deleting from %s: %w", table, err)
	}
	return nil
}
