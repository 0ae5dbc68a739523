package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// documentsSchema 所有集合共用一张 JSONB 表，seq 保留插入顺序
const documentsSchema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT        NOT NULL,
	id         TEXT        NOT NULL,
	seq        BIGSERIAL,
	data       JSONB       NOT NULL,
	PRIMARY KEY (collection, id)
)`

// PostgresStore keeps documents as JSONB rows in a single table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the documents table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, documentsSchema); err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Collection(name string) Collection {
	return NewPostgresCollection(s.db, name)
}

func (s *PostgresStore) Close(ctx context.Context) error {
	return s.db.Close()
}

type PostgresCollection struct {
	db   *sql.DB
	name string
}

func NewPostgresCollection(db *sql.DB, name string) *PostgresCollection {
	return &PostgresCollection{db: db, name: name}
}

var _ Collection = (*PostgresCollection)(nil)

func (c *PostgresCollection) Get(ctx context.Context, id string, out any) error {
	row := c.db.QueryRowContext(ctx,
		`SELECT id, data FROM documents WHERE collection = $1 AND id = $2`,
		c.name, id,
	)
	return c.scanOne(row, out)
}

func (c *PostgresCollection) Latest(ctx context.Context, out any) error {
	row := c.db.QueryRowContext(ctx,
		`SELECT id, data FROM documents WHERE collection = $1 ORDER BY seq DESC LIMIT 1`,
		c.name,
	)
	return c.scanOne(row, out)
}

func (c *PostgresCollection) Recent(ctx context.Context, limit int, out any) error {
	return c.queryMany(ctx, out,
		`SELECT id, data FROM documents WHERE collection = $1 ORDER BY seq DESC LIMIT $2`,
		c.name, limit,
	)
}

func (c *PostgresCollection) List(ctx context.Context, limit int, out any) error {
	return c.queryMany(ctx, out,
		`SELECT id, data FROM documents WHERE collection = $1 ORDER BY seq ASC LIMIT $2`,
		c.name, limit,
	)
}

func (c *PostgresCollection) Insert(ctx context.Context, doc any) (string, error) {
	data, err := encodeData(doc)
	if err != nil {
		return "", err
	}
	id := NewID()
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)`,
		c.name, id, data,
	)
	if err != nil {
		return "", fmt.Errorf("insert into %s: %w", c.name, err)
	}
	return id, nil
}

func (c *PostgresCollection) Update(ctx context.Context, id string, fields map[string]any) (int64, error) {
	data, err := encodeData(fields)
	if err != nil {
		return 0, err
	}
	res, err := c.db.ExecContext(ctx,
		`UPDATE documents SET data = data || $3::jsonb WHERE collection = $1 AND id = $2`,
		c.name, id, data,
	)
	if err != nil {
		return 0, fmt.Errorf("update %s/%s: %w", c.name, id, err)
	}
	return res.RowsAffected()
}

func (c *PostgresCollection) Upsert(ctx context.Context, id string, fields map[string]any) error {
	data, err := encodeData(fields)
	if err != nil {
		return err
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)
		 ON CONFLICT (collection, id)
		 DO UPDATE SET data = documents.data || EXCLUDED.data`,
		c.name, id, data,
	)
	if err != nil {
		return fmt.Errorf("upsert %s/%s: %w", c.name, id, err)
	}
	return nil
}

func (c *PostgresCollection) Delete(ctx context.Context, id string) (int64, error) {
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		c.name, id,
	)
	if err != nil {
		return 0, fmt.Errorf("delete %s/%s: %w", c.name, id, err)
	}
	return res.RowsAffected()
}

func (c *PostgresCollection) DeleteExcept(ctx context.Context, id string) (int64, error) {
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id <> $2`,
		c.name, id,
	)
	if err != nil {
		return 0, fmt.Errorf("prune %s: %w", c.name, err)
	}
	return res.RowsAffected()
}

func (c *PostgresCollection) scanOne(row *sql.Row, out any) error {
	var (
		id   string
		data []byte
	)
	if err := row.Scan(&id, &data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("query %s: %w", c.name, err)
	}
	doc, err := withID(id, data)
	if err != nil {
		return err
	}
	return remarshal(doc, out)
}

func (c *PostgresCollection) queryMany(ctx context.Context, out any, query string, args ...any) error {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query %s: %w", c.name, err)
	}
	defer rows.Close()

	docs := []map[string]any{}
	for rows.Next() {
		var (
			id   string
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return fmt.Errorf("scan %s: %w", c.name, err)
		}
		doc, err := withID(id, data)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate %s: %w", c.name, err)
	}
	return remarshal(docs, out)
}

// encodeData returns the JSONB text for doc without its _id. lib/pq sends
// []byte as bytea, so the value is passed as a string.
func encodeData(doc any) (string, error) {
	m, err := toMap(doc)
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return string(raw), nil
}

func withID(id string, data []byte) (map[string]any, error) {
	doc := map[string]any{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("corrupt document %s: %w", id, err)
	}
	doc["_id"] = id
	return doc, nil
}
