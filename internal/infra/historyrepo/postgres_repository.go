package historyrepo

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/wellbeing-index/internal/domain/wellbeing"
)

const schema = `
CREATE TABLE IF NOT EXISTS assessments (
	id          UUID PRIMARY KEY,
	profile     TEXT NOT NULL,
	ib          INTEGER NOT NULL,
	level       TEXT NOT NULL,
	degraded    BOOLEAN NOT NULL DEFAULT FALSE,
	payload     JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
)`

// PostgresRepository implements wellbeing.HistoryRepository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the assessments table when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, schema)
	return err
}

// Save upserts an assessment.
func (r *PostgresRepository) Save(ctx context.Context, a wellbeing.Assessment) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO assessments (id, profile, ib, level, degraded, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload
	`, a.ID, a.Profile, a.IB, a.Level, a.Degraded, payload, a.CreatedAt)
	return err
}

// Find fetches an assessment by id.
func (r *PostgresRepository) Find(ctx context.Context, id string) (wellbeing.Assessment, bool, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx, `SELECT payload FROM assessments WHERE id = $1`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return wellbeing.Assessment{}, false, nil
		}
		return wellbeing.Assessment{}, false, err
	}
	var a wellbeing.Assessment
	if err := json.Unmarshal(payload, &a); err != nil {
		return wellbeing.Assessment{}, false, err
	}
	return a, true, nil
}

var _ wellbeing.HistoryRepository = (*PostgresRepository)(nil)
