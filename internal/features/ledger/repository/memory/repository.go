// Package memory keeps the ledger in process memory. Used for tests and
// STORE_DRIVER=memory; nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"lucky-draw-backend/internal/features/ledger/models"
	"lucky-draw-backend/internal/features/ledger/repository"
)

type memoryRepository struct {
	mu      sync.RWMutex
	entries []models.Entry
	ids     map[string]struct{}
	// claims maps handle+day to the entry id holding it, claimOf is the reverse.
	claims  map[string]string
	claimOf map[string]string
}

func NewMemoryRepository() repository.EntryRepository {
	r := &memoryRepository{}
	r.reset()
	return r
}

func (r *memoryRepository) reset() {
	r.entries = nil
	r.ids = make(map[string]struct{})
	r.claims = make(map[string]string)
	r.claimOf = make(map[string]string)
}

func (r *memoryRepository) Insert(ctx context.Context, entry models.Entry) error {
	return r.insert(ctx, entry, "")
}

func (r *memoryRepository) InsertDaily(ctx context.Context, entry models.Entry, day string) error {
	return r.insert(ctx, entry, entry.Handle+"\x00"+day)
}

func (r *memoryRepository) insert(ctx context.Context, entry models.Entry, claim string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.ids[entry.ID]; exists {
		return repository.ErrDuplicateID
	}
	if claim != "" {
		if _, taken := r.claims[claim]; taken {
			return repository.ErrDailyClaimed
		}
		r.claims[claim] = entry.ID
		r.claimOf[entry.ID] = claim
	}
	r.ids[entry.ID] = struct{}{}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *memoryRepository) ListRange(ctx context.Context, from, to time.Time, limit int) ([]models.Entry, error) {
	return r.list(ctx, limit, func(e models.Entry) bool {
		return !e.Timestamp.Before(from) && e.Timestamp.Before(to)
	})
}

func (r *memoryRepository) ListRecent(ctx context.Context, limit int) ([]models.Entry, error) {
	return r.list(ctx, limit, func(models.Entry) bool { return true })
}

func (r *memoryRepository) list(ctx context.Context, limit int, keep func(models.Entry) bool) ([]models.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, repository.ErrInvalidLimit
	}
	r.mu.RLock()
	res := make([]models.Entry, 0, min(limit, len(r.entries)))
	for _, e := range r.entries {
		if keep(e) {
			res = append(res, e)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Timestamp.After(res[j].Timestamp)
	})
	if len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (r *memoryRepository) ExistsForHandle(ctx context.Context, handle string, from, to time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if e.Handle == handle && !e.Timestamp.Before(from) && e.Timestamp.Before(to) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.ids[id]; !exists {
		return repository.ErrNotFound
	}
	delete(r.ids, id)
	if claim, ok := r.claimOf[id]; ok {
		delete(r.claims, claim)
		delete(r.claimOf, id)
	}
	for i, e := range r.entries {
		if e.ID == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			break
		}
	}
	return nil
}

func (r *memoryRepository) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reset()
	return nil
}

func (r *memoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (r *memoryRepository) Close() error {
	return nil
}
