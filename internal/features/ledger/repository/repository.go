package repository

import (
	"context"
	"errors"
	"time"

	"lucky-draw-backend/internal/features/ledger/models"
)

var (
	ErrNotFound     = errors.New("entry not found")
	ErrDuplicateID  = errors.New("entry id already exists")
	ErrInvalidLimit = errors.New("limit must be positive")
	ErrDailyClaimed = errors.New("handle already has an entry for this day")
)

// EntryRepository is the durable, append-only entry store. Implementations
// must make Insert atomic per record: on error no part of the entry is
// visible to readers.
type EntryRepository interface {
	Insert(ctx context.Context, entry models.Entry) error
	// InsertDaily is Insert that also claims (entry.Handle, day). A second
	// claim for the same pair fails with ErrDailyClaimed and writes nothing.
	// Delete and Clear release the claim together with the entry.
	InsertDaily(ctx context.Context, entry models.Entry, day string) error

	// ListRange returns entries with from <= Timestamp < to, newest first,
	// at most limit of them.
	ListRange(ctx context.Context, from, to time.Time, limit int) ([]models.Entry, error)
	// ListRecent returns the newest entries regardless of day.
	ListRecent(ctx context.Context, limit int) ([]models.Entry, error)
	ExistsForHandle(ctx context.Context, handle string, from, to time.Time) (bool, error)

	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error

	Ping(ctx context.Context) error
	Close() error
}
