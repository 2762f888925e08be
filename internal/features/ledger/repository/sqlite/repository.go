package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"time"

	"lucky-draw-backend/internal/features/ledger/models"
	"lucky-draw-backend/internal/features/ledger/repository"
	"lucky-draw-backend/internal/platform/migrate"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const entryColumns = "id, ts_micros, handle, tier, proof_image, payout"

type sqliteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository applies the ledger migrations and returns a repository
// backed by db. Timestamps are stored as UTC unix microseconds.
func NewSQLiteRepository(ctx context.Context, db *sql.DB) (repository.EntryRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlite db is required")
	}
	if err := migrate.Apply(ctx, db, migrate.SQLite, migrationFS, "migrations"); err != nil {
		return nil, fmt.Errorf("migrate ledger: %w", err)
	}
	return &sqliteRepository{db: db}, nil
}

func (r *sqliteRepository) Insert(ctx context.Context, entry models.Entry) error {
	return r.insert(ctx, entry, "")
}

func (r *sqliteRepository) InsertDaily(ctx context.Context, entry models.Entry, day string) error {
	return r.insert(ctx, entry, day)
}

func (r *sqliteRepository) insert(ctx context.Context, entry models.Entry, day string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO entries ("+entryColumns+", claim_day) VALUES (?, ?, ?, ?, ?, ?, ?)",
		entry.ID, entry.Timestamp.UnixMicro(), entry.Handle, entry.Tier, entry.ProofImage, entry.Payout, claimDay(day),
	)
	if err != nil {
		msg := err.Error()
		switch {
		case strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, "claim_day"):
			return repository.ErrDailyClaimed
		case strings.Contains(msg, "UNIQUE constraint failed"):
			return repository.ErrDuplicateID
		}
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// claimDay maps "no claim" to NULL, which the unique index ignores.
func claimDay(day string) any {
	if day == "" {
		return nil
	}
	return day
}

func (r *sqliteRepository) ListRange(ctx context.Context, from, to time.Time, limit int) ([]models.Entry, error) {
	if limit <= 0 {
		return nil, repository.ErrInvalidLimit
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+entryColumns+" FROM entries WHERE ts_micros >= ? AND ts_micros < ? ORDER BY ts_micros DESC LIMIT ?",
		from.UnixMicro(), to.UnixMicro(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return scanEntries(rows)
}

func (r *sqliteRepository) ListRecent(ctx context.Context, limit int) ([]models.Entry, error) {
	if limit <= 0 {
		return nil, repository.ErrInvalidLimit
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+entryColumns+" FROM entries ORDER BY ts_micros DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent entries: %w", err)
	}
	return scanEntries(rows)
}

func (r *sqliteRepository) ExistsForHandle(ctx context.Context, handle string, from, to time.Time) (bool, error) {
	var found int
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM entries WHERE handle = ? AND ts_micros >= ? AND ts_micros < ?)",
		handle, from.UnixMicro(), to.UnixMicro(),
	).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("check handle: %w", err)
	}
	return found == 1, nil
}

func (r *sqliteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM entries WHERE id = ?", id)
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

func (r *sqliteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM entries"); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}
	return nil
}

func (r *sqliteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *sqliteRepository) Close() error {
	return r.db.Close()
}

func scanEntries(rows *sql.Rows) ([]models.Entry, error) {
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		var (
			e      models.Entry
			micros int64
		)
		if err := rows.Scan(&e.ID, &micros, &e.Handle, &e.Tier, &e.ProofImage, &e.Payout); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Timestamp = time.UnixMicro(micros).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}
