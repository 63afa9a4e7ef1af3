// Package store persists versioned CredRank documents (spec.md §6's
// sourcecred/markovProcessGraph and sourcecred/credGraph envelopes)
// to PostgreSQL, keyed by their content hash. It is an optional,
// external durability layer: internal/graphcore has no dependency on
// it and never imports it.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sourcecred/credrank/pkg/models"
)

// Store wraps a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Connect initializes the connection pool to PostgreSQL using pgx.
func Connect(connStr string) (*Store, error) {
	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("store: unable to connect to database: %v", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("store: ping failed: %v", err)
	}

	log.Println("[STORE] connected to PostgreSQL for CredRank document storage")
	return &Store{pool: pool}, nil
}

// Close gracefully closes the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema loads and executes schema.sql.
func (s *Store) InitSchema() error {
	schemaBytes, err := os.ReadFile("internal/store/schema.sql")
	if err != nil {
		return fmt.Errorf("store: failed to read schema file: %v", err)
	}
	if _, err := s.pool.Exec(context.Background(), string(schemaBytes)); err != nil {
		return fmt.Errorf("store: failed to execute schema migrations: %v", err)
	}
	log.Println("[STORE] CredRank document schema initialized")
	return nil
}

// SaveGraphDocument upserts a sourcecred/markovProcessGraph document,
// keyed by its own content hash.
func (s *Store) SaveGraphDocument(ctx context.Context, doc models.MarkovProcessGraphDocument) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("store: failed to marshal graph document: %v", err)
	}

	sql := `
		INSERT INTO graph_documents (content_hash, document)
		VALUES ($1, $2)
		ON CONFLICT (content_hash) DO UPDATE SET document = EXCLUDED.document;
	`
	_, err = s.pool.Exec(ctx, sql, doc.Payload.ContentHash, raw)
	if err != nil {
		return fmt.Errorf("store: failed to insert graph document: %v", err)
	}
	return nil
}

// GetGraphDocument fetches a graph document by its content hash.
func (s *Store) GetGraphDocument(ctx context.Context, contentHash string) (models.MarkovProcessGraphDocument, error) {
	var raw []byte
	sql := `SELECT document FROM graph_documents WHERE content_hash = $1`
	if err := s.pool.QueryRow(ctx, sql, contentHash).Scan(&raw); err != nil {
		return models.MarkovProcessGraphDocument{}, fmt.Errorf("store: graph document %q not found: %v", contentHash, err)
	}

	var doc models.MarkovProcessGraphDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return models.MarkovProcessGraphDocument{}, fmt.Errorf("store: failed to unmarshal graph document: %v", err)
	}
	return doc, nil
}

// SaveCredGraphDocument upserts a sourcecred/credGraph document.
func (s *Store) SaveCredGraphDocument(ctx context.Context, doc models.CredGraphDocument) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("store: failed to marshal cred graph document: %v", err)
	}

	sql := `
		INSERT INTO cred_graph_documents (content_hash, document)
		VALUES ($1, $2)
		ON CONFLICT (content_hash) DO UPDATE SET document = EXCLUDED.document;
	`
	_, err = s.pool.Exec(ctx, sql, doc.Payload.ContentHash, raw)
	if err != nil {
		return fmt.Errorf("store: failed to insert cred graph document: %v", err)
	}
	return nil
}

// GetCredGraphDocument fetches a cred graph document by its content
// hash.
func (s *Store) GetCredGraphDocument(ctx context.Context, contentHash string) (models.CredGraphDocument, error) {
	var raw []byte
	sql := `SELECT document FROM cred_graph_documents WHERE content_hash = $1`
	if err := s.pool.QueryRow(ctx, sql, contentHash).Scan(&raw); err != nil {
		return models.CredGraphDocument{}, fmt.Errorf("store: cred graph document %q not found: %v", contentHash, err)
	}

	var doc models.CredGraphDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return models.CredGraphDocument{}, fmt.Errorf("store: failed to unmarshal cred graph document: %v", err)
	}
	return doc, nil
}

// DriftReport is one persisted shadow/drift comparison (internal/shadow).
type DriftReport struct {
	ID        string  `json:"id"`
	RunID     string  `json:"runId"`
	L1        float64 `json:"l1"`
	L2        float64 `json:"l2"`
	KL        float64 `json:"kl"`
	ARI       float64 `json:"ari"`
	VI        float64 `json:"vi"`
}

// SaveDriftReport persists a drift comparison between two score
// vectors, assigning it a fresh id.
func (s *Store) SaveDriftReport(ctx context.Context, r DriftReport) (string, error) {
	r.ID = uuid.NewString()
	sql := `
		INSERT INTO drift_reports (id, run_id, l1, l2, kl, ari, vi)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := s.pool.Exec(ctx, sql, r.ID, r.RunID, r.L1, r.L2, r.KL, r.ARI, r.VI)
	if err != nil {
		return "", fmt.Errorf("store: failed to insert drift report: %v", err)
	}
	return r.ID, nil
}

// ListGraphDocuments returns a page of stored content hashes, most
// recently saved first.
func (s *Store) ListGraphDocuments(ctx context.Context, page, limit int) ([]string, int, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM graph_documents`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("store: failed to count graph documents: %v", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT content_hash FROM graph_documents
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("store: failed to list graph documents: %v", err)
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, 0, err
		}
		hashes = append(hashes, h)
	}
	if hashes == nil {
		hashes = []string{}
	}
	return hashes, total, nil
}

// GetPool exposes the connection pool for callers that need direct
// access to it.
func (s *Store) GetPool() *pgxpool.Pool {
	return s.pool
}
