package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"lucky-draw-backend/internal/features/ledger/models"
	"lucky-draw-backend/internal/features/ledger/repository"
	"lucky-draw-backend/internal/platform/migrate"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const (
	entryColumns = "id, created_at, handle, tier, proof_image, payout"

	uniqueViolation = pq.ErrorCode("23505")
	dailyClaimIndex = "uq_entries_handle_claim_day"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository applies the ledger migrations and returns a
// repository over db.
func NewPostgresRepository(ctx context.Context, db *sql.DB) (repository.EntryRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("postgres db is required")
	}
	if err := migrate.Apply(ctx, db, migrate.Postgres, migrationFS, "migrations"); err != nil {
		return nil, fmt.Errorf("migrate ledger: %w", err)
	}
	return &postgresRepository{db: db}, nil
}

func (r *postgresRepository) Insert(ctx context.Context, entry models.Entry) error {
	return r.insert(ctx, entry, "")
}

func (r *postgresRepository) InsertDaily(ctx context.Context, entry models.Entry, day string) error {
	return r.insert(ctx, entry, day)
}

func (r *postgresRepository) insert(ctx context.Context, entry models.Entry, day string) error {
	var claim any
	if day != "" {
		claim = day
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO entries ("+entryColumns+", claim_day) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		entry.ID, entry.Timestamp.UTC(), entry.Handle, entry.Tier, entry.ProofImage, entry.Payout, claim,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			if pqErr.Constraint == dailyClaimIndex {
				return repository.ErrDailyClaimed
			}
			return repository.ErrDuplicateID
		}
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

func (r *postgresRepository) ListRange(ctx context.Context, from, to time.Time, limit int) ([]models.Entry, error) {
	if limit <= 0 {
		return nil, repository.ErrInvalidLimit
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+entryColumns+" FROM entries WHERE created_at >= $1 AND created_at < $2 ORDER BY created_at DESC LIMIT $3",
		from.UTC(), to.UTC(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return scanEntries(rows)
}

func (r *postgresRepository) ListRecent(ctx context.Context, limit int) ([]models.Entry, error) {
	if limit <= 0 {
		return nil, repository.ErrInvalidLimit
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+entryColumns+" FROM entries ORDER BY created_at DESC LIMIT $1",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent entries: %w", err)
	}
	return scanEntries(rows)
}

func (r *postgresRepository) ExistsForHandle(ctx context.Context, handle string, from, to time.Time) (bool, error) {
	var found bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM entries WHERE handle = $1 AND created_at >= $2 AND created_at < $3)",
		handle, from.UTC(), to.UTC(),
	).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("check handle: %w", err)
	}
	return found, nil
}

func (r *postgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM entries WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *postgresRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "TRUNCATE entries"); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}
	return nil
}

func (r *postgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *postgresRepository) Close() error {
	return r.db.Close()
}

func scanEntries(rows *sql.Rows) ([]models.Entry, error) {
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		var e models.Entry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Handle, &e.Tier, &e.ProofImage, &e.Payout); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Timestamp = e.Timestamp.UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}
