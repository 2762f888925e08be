package service

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"lucky-draw-backend/internal/common/logger"
	"lucky-draw-backend/internal/common/metrics"
	"lucky-draw-backend/internal/features/ledger/models"
	"lucky-draw-backend/internal/features/ledger/repository"
)

const (
	DefaultTodayLimit = 50
	DefaultAllLimit   = 100
)

type Options struct {
	// Location decides where "today" starts and ends. Defaults to time.Local.
	Location   *time.Location
	TodayLimit int
	AllLimit   int
	Clock      Clock
	NewID      func() (string, error)
	// Tiers lists the accepted tier names. Empty accepts any non-empty tier.
	Tiers []string
}

type ledgerService struct {
	repo       repository.EntryRepository
	loc        *time.Location
	todayLimit int
	allLimit   int
	clock      Clock
	stamp      *stamper
	newID      func() (string, error)
	tiers      []string
	log        zerolog.Logger
}

func NewLedgerService(repo repository.EntryRepository, opts Options) LedgerService {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.TodayLimit <= 0 {
		opts.TodayLimit = DefaultTodayLimit
	}
	if opts.AllLimit <= 0 {
		opts.AllLimit = DefaultAllLimit
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.NewID == nil {
		opts.NewID = newUUIDv7
	}
	return &ledgerService{
		repo:       repo,
		loc:        opts.Location,
		todayLimit: opts.TodayLimit,
		allLimit:   opts.AllLimit,
		clock:      opts.Clock,
		stamp:      &stamper{clock: opts.Clock},
		newID:      opts.NewID,
		tiers:      slices.Clone(opts.Tiers),
		log:        logger.Component("ledger"),
	}
}

func newUUIDv7() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func (s *ledgerService) Append(ctx context.Context, input models.EntryInput) (*models.Entry, error) {
	return s.append(ctx, input, false)
}

func (s *ledgerService) AppendDaily(ctx context.Context, input models.EntryInput) (*models.Entry, error) {
	return s.append(ctx, input, true)
}

func (s *ledgerService) append(ctx context.Context, input models.EntryInput, daily bool) (*models.Entry, error) {
	input.Handle = strings.TrimSpace(input.Handle)
	if err := input.Validate(s.tiers); err != nil {
		return nil, err
	}

	id, err := s.newID()
	if err != nil {
		metrics.RecordAppend(false)
		return nil, fmt.Errorf("%w: generate id: %w", ErrStorage, err)
	}

	entry := models.Entry{
		ID:         id,
		Timestamp:  s.stamp.next(),
		Handle:     input.Handle,
		Tier:       input.Tier,
		ProofImage: input.ProofImage,
		Payout:     input.Payout,
	}

	if daily {
		err = s.repo.InsertDaily(ctx, entry, s.dayKey(entry.Timestamp))
	} else {
		err = s.repo.Insert(ctx, entry)
	}
	if errors.Is(err, repository.ErrDailyClaimed) {
		s.log.Info().Str("handle", entry.Handle).Msg("Daily entry already recorded")
		return nil, ErrDailyLimit
	}
	if err != nil {
		metrics.RecordAppend(false)
		s.log.Error().Err(err).Str("entry_id", id).Str("tier", entry.Tier).Msg("Failed to append ledger entry")
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	metrics.RecordAppend(true)
	s.log.Debug().Str("entry_id", id).Str("tier", entry.Tier).Int("payout", entry.Payout).Msg("Ledger entry appended")
	return &entry, nil
}

// dayKey names the local calendar day of t, the unit of a daily claim.
func (s *ledgerService) dayKey(t time.Time) string {
	return t.In(s.loc).Format(time.DateOnly)
}

// todayRange returns [local midnight, next local midnight) for the current
// instant. AddDate keeps DST days at their real length.
func (s *ledgerService) todayRange() (time.Time, time.Time) {
	now := s.clock.Now().In(s.loc)
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	return from, from.AddDate(0, 0, 1)
}

func (s *ledgerService) ListToday(ctx context.Context) iter.Seq[models.Entry] {
	return s.sequence("today", func() ([]models.Entry, error) {
		from, to := s.todayRange()
		return s.repo.ListRange(ctx, from, to, s.todayLimit)
	})
}

func (s *ledgerService) ListAll(ctx context.Context, limit int) iter.Seq[models.Entry] {
	if limit <= 0 || limit > s.allLimit {
		limit = s.allLimit
	}
	return s.sequence("all", func() ([]models.Entry, error) {
		return s.repo.ListRecent(ctx, limit)
	})
}

func (s *ledgerService) sequence(view string, read func() ([]models.Entry, error)) iter.Seq[models.Entry] {
	return func(yield func(models.Entry) bool) {
		entries, err := read()
		if err != nil {
			metrics.RecordReadFailure(view)
			s.log.Error().Err(err).Str("view", view).Msg("Ledger read failed, serving empty list")
			return
		}
		slices.SortStableFunc(entries, func(a, b models.Entry) int {
			return b.Timestamp.Compare(a.Timestamp)
		})
		for _, e := range entries {
			if !yield(e) {
				return
			}
		}
	}
}

func (s *ledgerService) HasEntryToday(ctx context.Context, handle string) (bool, error) {
	from, to := s.todayRange()
	ok, err := s.repo.ExistsForHandle(ctx, strings.TrimSpace(handle), from, to)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return ok, nil
}

func (s *ledgerService) Mask(entry models.Entry) models.DisplayEntry {
	return models.Mask(entry)
}

func (s *ledgerService) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	s.log.Info().Str("entry_id", id).Msg("Ledger entry deleted")
	return nil
}

func (s *ledgerService) Clear(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	s.log.Warn().Msg("Ledger cleared")
	return nil
}

func (s *ledgerService) Ping(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return nil
}
