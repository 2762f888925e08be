// Package repotest holds the behaviour every EntryRepository must share.
package repotest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lucky-draw-backend/internal/features/ledger/models"
	"lucky-draw-backend/internal/features/ledger/repository"
)

var base = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func entryAt(id string, offset time.Duration, handle string) models.Entry {
	return models.Entry{
		ID:         id,
		Timestamp:  base.Add(offset),
		Handle:     handle,
		Tier:       "T1",
		ProofImage: "data:image/png;base64,AAAA",
		Payout:     58,
	}
}

// Run exercises repo against the shared contract. newRepo must return an
// empty repository on every call.
func Run(t *testing.T, newRepo func(t *testing.T) repository.EntryRepository) {
	t.Run("insert and list range newest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		require.NoError(t, repo.Insert(ctx, entryAt("a", 0, "alice")))
		require.NoError(t, repo.Insert(ctx, entryAt("b", time.Minute, "bob")))
		require.NoError(t, repo.Insert(ctx, entryAt("c", 2*time.Minute, "carol")))

		got, err := repo.ListRange(ctx, base, base.Add(time.Hour), 10)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, []string{"c", "b", "a"}, ids(got))

		first := got[2]
		assert.Equal(t, "alice", first.Handle)
		assert.Equal(t, "T1", first.Tier)
		assert.Equal(t, 58, first.Payout)
		assert.Equal(t, "data:image/png;base64,AAAA", first.ProofImage)
		assert.True(t, first.Timestamp.Equal(base))
	})

	t.Run("range is half open", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		require.NoError(t, repo.Insert(ctx, entryAt("before", -time.Microsecond, "x")))
		require.NoError(t, repo.Insert(ctx, entryAt("start", 0, "x")))
		require.NoError(t, repo.Insert(ctx, entryAt("end", time.Hour, "x")))

		got, err := repo.ListRange(ctx, base, base.Add(time.Hour), 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"start"}, ids(got))
	})

	t.Run("limit caps results", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		for i := 0; i < 5; i++ {
			require.NoError(t, repo.Insert(ctx, entryAt(fmt.Sprintf("e%d", i), time.Duration(i)*time.Second, "x")))
		}

		got, err := repo.ListRange(ctx, base, base.Add(time.Hour), 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"e4", "e3"}, ids(got))

		recent, err := repo.ListRecent(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, []string{"e4", "e3", "e2"}, ids(recent))

		_, err = repo.ListRecent(ctx, 0)
		assert.ErrorIs(t, err, repository.ErrInvalidLimit)
	})

	t.Run("duplicate id rejected", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		require.NoError(t, repo.Insert(ctx, entryAt("dup", 0, "x")))
		assert.ErrorIs(t, repo.Insert(ctx, entryAt("dup", time.Second, "y")), repository.ErrDuplicateID)

		got, err := repo.ListRecent(ctx, 10)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("exists for handle", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		require.NoError(t, repo.Insert(ctx, entryAt("a", time.Minute, "alice")))

		ok, err := repo.ExistsForHandle(ctx, "alice", base, base.Add(time.Hour))
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.ExistsForHandle(ctx, "alice", base.Add(time.Hour), base.Add(2*time.Hour))
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = repo.ExistsForHandle(ctx, "bob", base, base.Add(time.Hour))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("delete and clear", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		require.NoError(t, repo.Insert(ctx, entryAt("a", 0, "x")))
		require.NoError(t, repo.Insert(ctx, entryAt("b", time.Second, "x")))

		require.NoError(t, repo.Delete(ctx, "a"))
		assert.ErrorIs(t, repo.Delete(ctx, "a"), repository.ErrNotFound)

		got, err := repo.ListRecent(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, ids(got))

		require.NoError(t, repo.Clear(ctx))
		got, err = repo.ListRecent(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, got)

		// ids are reusable after a clear
		require.NoError(t, repo.Insert(ctx, entryAt("a", 0, "x")))
	})

	t.Run("concurrent inserts", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		const n = 32
		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs <- repo.Insert(ctx, entryAt(fmt.Sprintf("c%02d", i), time.Duration(i)*time.Millisecond, "x"))
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		got, err := repo.ListRecent(ctx, 100)
		require.NoError(t, err)
		assert.Len(t, got, n)
	})

	t.Run("daily claim is one per handle and day", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		require.NoError(t, repo.InsertDaily(ctx, entryAt("a", 0, "alice"), "2025-03-14"))
		assert.ErrorIs(t, repo.InsertDaily(ctx, entryAt("b", time.Minute, "alice"), "2025-03-14"), repository.ErrDailyClaimed)
		require.NoError(t, repo.InsertDaily(ctx, entryAt("c", 2*time.Minute, "alice"), "2025-03-15"))
		require.NoError(t, repo.InsertDaily(ctx, entryAt("d", 3*time.Minute, "bob"), "2025-03-14"))
		// unclaimed inserts are not limited
		require.NoError(t, repo.Insert(ctx, entryAt("e", 4*time.Minute, "alice")))

		got, err := repo.ListRecent(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"e", "d", "c", "a"}, ids(got))

		// deleting the entry releases its claim
		require.NoError(t, repo.Delete(ctx, "a"))
		require.NoError(t, repo.InsertDaily(ctx, entryAt("f", 5*time.Minute, "alice"), "2025-03-14"))

		require.NoError(t, repo.Clear(ctx))
		require.NoError(t, repo.InsertDaily(ctx, entryAt("g", 0, "alice"), "2025-03-14"))
	})

	t.Run("concurrent daily claims admit one", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		const n = 16
		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs <- repo.InsertDaily(ctx, entryAt(fmt.Sprintf("d%02d", i), time.Duration(i)*time.Millisecond, "alice"), "2025-03-14")
			}(i)
		}
		wg.Wait()
		close(errs)

		accepted := 0
		for err := range errs {
			if err == nil {
				accepted++
				continue
			}
			assert.ErrorIs(t, err, repository.ErrDailyClaimed)
		}
		assert.Equal(t, 1, accepted)

		got, err := repo.ListRecent(ctx, 100)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, newRepo(t).Ping(context.Background()))
	})
}

func ids(entries []models.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}
