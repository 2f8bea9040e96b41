package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"credit_valuation/pkg/core/logger"
)

var (
	ErrNotFound        = errors.New("valuation not found")
	ErrRecordCompleted = errors.New("valuation already completed")
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusCompleted Status = "completed"
)

// ValuationRecord is a persisted valuation: the request that produced it and its result.
type ValuationRecord struct {
	ID        string          `json:"id"`
	CompanyID string          `json:"company_id"`
	Method    string          `json:"method"`
	Status    Status          `json:"status"`
	Input     json.RawMessage `json:"input"`
	Result    json.RawMessage `json:"result"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ValuationRepo stores valuation records.
// Supports Hybrid Vault: DB (Primary) + File System (Fallback/Local)
type ValuationRepo struct {
	pool    *pgxpool.Pool
	fileDir string
	log     *zap.Logger

	mu sync.Mutex // serializes file vault read-modify-write
}

// NewValuationRepo creates a repository. With a nil pool records are kept as JSON files
// in dir (defaulting to .cache/valuations).
func NewValuationRepo(pool *pgxpool.Pool, dir string, log *zap.Logger) *ValuationRepo {
	log = logger.OrNop(log)
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "valuations")
	}
	if pool == nil {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Warn("cannot create valuation vault dir", zap.String("dir", dir), zap.Error(err))
		}
	}
	return &ValuationRepo{pool: pool, fileDir: dir, log: log}
}

const schema = `
CREATE TABLE IF NOT EXISTS valuations (
	id          UUID PRIMARY KEY,
	company_id  TEXT NOT NULL,
	method      TEXT NOT NULL,
	status      TEXT NOT NULL,
	input       JSONB,
	result      JSONB,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS valuations_company_idx ON valuations (company_id, created_at);
`

// EnsureSchema creates the valuations table when running against Postgres.
func (r *ValuationRepo) EnsureSchema(ctx context.Context) error {
	if r.pool == nil {
		return nil
	}
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create valuations schema: %w", err)
	}
	return nil
}

// Save inserts or updates a record. A missing ID is generated and a missing status
// defaults to draft. Completed records cannot be overwritten.
func (r *ValuationRepo) Save(ctx context.Context, rec *ValuationRecord) error {
	now := time.Now().UTC()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	} else if _, err := uuid.Parse(rec.ID); err != nil {
		return fmt.Errorf("invalid valuation id %q: %w", rec.ID, err)
	}
	if rec.Status == "" {
		rec.Status = StatusDraft
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	if r.pool != nil {
		return r.saveDB(ctx, rec)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.loadFromFile(rec.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if existing != nil {
		if existing.Status == StatusCompleted {
			return ErrRecordCompleted
		}
		rec.CreatedAt = existing.CreatedAt
	}
	return r.writeFile(rec)
}

func (r *ValuationRepo) saveDB(ctx context.Context, rec *ValuationRecord) error {
	query := `
		INSERT INTO valuations (id, company_id, method, status, input, result, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id)
		DO UPDATE SET
			company_id = EXCLUDED.company_id,
			method = EXCLUDED.method,
			status = EXCLUDED.status,
			input = EXCLUDED.input,
			result = EXCLUDED.result,
			updated_at = EXCLUDED.updated_at
		WHERE valuations.status <> 'completed'
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query,
		rec.ID, rec.CompanyID, rec.Method, string(rec.Status),
		[]byte(rec.Input), []byte(rec.Result), rec.CreatedAt, rec.UpdatedAt,
	).Scan(&rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrRecordCompleted
	}
	if err != nil {
		return fmt.Errorf("failed to save valuation: %w", err)
	}
	return nil
}

// Get retrieves a record by ID.
func (r *ValuationRepo) Get(ctx context.Context, id string) (*ValuationRecord, error) {
	// Both backends treat a malformed id as missing; Postgres would reject the uuid cast.
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	if r.pool != nil {
		query := `
			SELECT id, company_id, method, status, input, result, created_at, updated_at
			FROM valuations
			WHERE id = $1
		`
		rec, err := scanRecord(r.pool.QueryRow(ctx, query, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load valuation: %w", err)
		}
		return rec, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadFromFile(id)
}

// ListByCompany returns a company's records, oldest first.
func (r *ValuationRepo) ListByCompany(ctx context.Context, companyID string) ([]*ValuationRecord, error) {
	if r.pool != nil {
		query := `
			SELECT id, company_id, method, status, input, result, created_at, updated_at
			FROM valuations
			WHERE company_id = $1
			ORDER BY created_at
		`
		rows, err := r.pool.Query(ctx, query, companyID)
		if err != nil {
			return nil, fmt.Errorf("failed to list valuations: %w", err)
		}
		defer rows.Close()

		out := []*ValuationRecord{}
		for rows.Next() {
			rec, err := scanRecord(rows)
			if err != nil {
				return nil, fmt.Errorf("failed to scan valuation: %w", err)
			}
			out = append(out, rec)
		}
		return out, rows.Err()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	paths, err := filepath.Glob(filepath.Join(r.fileDir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan vault: %w", err)
	}
	out := []*ValuationRecord{}
	for _, p := range paths {
		rec, err := readRecord(p)
		if err != nil {
			r.log.Warn("skipping unreadable valuation file", zap.String("path", p), zap.Error(err))
			continue
		}
		if rec.CompanyID == companyID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// MarkCompleted flags a record as completed. Completing twice is not an error.
func (r *ValuationRepo) MarkCompleted(ctx context.Context, id string) (*ValuationRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	if r.pool != nil {
		query := `
			UPDATE valuations SET status = 'completed', updated_at = $2
			WHERE id = $1
			RETURNING id, company_id, method, status, input, result, created_at, updated_at
		`
		rec, err := scanRecord(r.pool.QueryRow(ctx, query, id, time.Now().UTC()))
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to complete valuation: %w", err)
		}
		return rec, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, err := r.loadFromFile(id)
	if err != nil {
		return nil, err
	}
	if rec.Status == StatusCompleted {
		return rec, nil
	}
	rec.Status = StatusCompleted
	rec.UpdatedAt = time.Now().UTC()
	if err := r.writeFile(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func scanRecord(row pgx.Row) (*ValuationRecord, error) {
	var rec ValuationRecord
	var status string
	var input, result []byte
	if err := row.Scan(&rec.ID, &rec.CompanyID, &rec.Method, &status, &input, &result, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.Status = Status(status)
	rec.Input = input
	rec.Result = result
	return &rec, nil
}

func (r *ValuationRepo) recordPath(id string) string {
	return filepath.Join(r.fileDir, id+".json")
}

func (r *ValuationRepo) loadFromFile(id string) (*ValuationRecord, error) {
	rec, err := readRecord(r.recordPath(id))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return rec, err
}

func readRecord(path string) (*ValuationRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rec ValuationRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}
	return &rec, nil
}

// writeFile replaces the record atomically via rename.
func (r *ValuationRepo) writeFile(rec *ValuationRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal valuation: %w", err)
	}
	tmp, err := os.CreateTemp(r.fileDir, rec.ID+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write valuation: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write valuation: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write valuation: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.recordPath(rec.ID)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write valuation: %w", err)
	}
	return nil
}
