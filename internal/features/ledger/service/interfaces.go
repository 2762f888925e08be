package service

import (
	"context"
	"iter"

	"lucky-draw-backend/internal/features/ledger/models"
)

// LedgerService records completed draws and serves day-scoped reads.
type LedgerService interface {
	// Append stamps and persists one entry. Any store failure matches ErrStorage
	// and leaves nothing visible to readers.
	Append(ctx context.Context, input models.EntryInput) (*models.Entry, error)
	// AppendDaily is Append limited to one entry per handle per local day,
	// enforced by the store. The second one fails with ErrDailyLimit.
	AppendDaily(ctx context.Context, input models.EntryInput) (*models.Entry, error)
	// ListToday yields today's entries newest first. Every range re-reads the
	// store; a failed read yields nothing.
	ListToday(ctx context.Context) iter.Seq[models.Entry]
	// ListAll yields the newest entries regardless of day, capped by limit and
	// the configured maximum.
	ListAll(ctx context.Context, limit int) iter.Seq[models.Entry]
	HasEntryToday(ctx context.Context, handle string) (bool, error)
	Mask(entry models.Entry) models.DisplayEntry

	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	Ping(ctx context.Context) error
}
