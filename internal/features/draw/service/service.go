package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"lucky-draw-backend/internal/common/logger"
	"lucky-draw-backend/internal/common/metrics"
	"lucky-draw-backend/internal/features/draw/engine"
	"lucky-draw-backend/internal/features/draw/models"
	"lucky-draw-backend/internal/features/draw/session"
	ledgermodels "lucky-draw-backend/internal/features/ledger/models"
	ledgerservice "lucky-draw-backend/internal/features/ledger/service"
	"lucky-draw-backend/internal/features/proof"
)

type Options struct {
	// OncePerDay rejects a second draw by the same handle on the same day.
	// Plays of one handle are serialized in process and the ledger store
	// holds the per-day claim across processes.
	OncePerDay bool
}

type drawService struct {
	engine *engine.Engine
	ledger ledgerservice.LedgerService
	proofs proof.Store
	opts   Options
	locks  *handleLocks
	log    zerolog.Logger
}

func NewDrawService(eng *engine.Engine, ledger ledgerservice.LedgerService, proofs proof.Store, opts Options) DrawService {
	return &drawService{
		engine: eng,
		ledger: ledger,
		proofs: proofs,
		opts:   opts,
		locks:  newHandleLocks(),
		log:    logger.Component("draw"),
	}
}

func (s *drawService) Tiers() []models.TierOdds {
	return s.engine.Odds()
}

func (s *drawService) Play(ctx context.Context, sess *session.Session) (*models.Play, error) {
	in, err := sess.Input()
	if err != nil {
		return nil, err
	}

	if s.opts.OncePerDay {
		unlock := s.locks.lock(in.Handle)
		defer unlock()

		drawn, err := s.ledger.HasEntryToday(ctx, in.Handle)
		if err != nil {
			metrics.RecordDrawError("verify")
			return nil, fmt.Errorf("check daily draw: %w", err)
		}
		if drawn {
			metrics.RecordDrawError("already_drawn")
			return nil, ErrAlreadyDrawn
		}
	}

	result, err := s.engine.Draw(in.Tier)
	if err != nil {
		metrics.RecordDrawError("invalid_tier")
		return nil, err
	}

	ref, err := s.proofs.Put(ctx, in.ProofImage)
	if err != nil {
		metrics.RecordDrawError("proof")
		return nil, err
	}

	entry, err := s.record(ctx, ledgermodels.EntryInput{
		Handle:     in.Handle,
		Tier:       result.Tier.String(),
		ProofImage: ref,
		Payout:     result.Payout,
	})
	if err != nil {
		// The participant never sees an unrecorded prize; the draw is void.
		s.discardProof(ctx, ref)
		if errors.Is(err, ledgerservice.ErrDailyLimit) {
			metrics.RecordDrawError("already_drawn")
			return nil, ErrAlreadyDrawn
		}
		metrics.RecordDrawError("append")
		s.log.Warn().Err(err).Str("tier", result.Tier.String()).Str("label", result.Label).Msg("Draw voided, ledger append failed")
		return nil, err
	}

	if err := sess.Complete(result); err != nil {
		return nil, err
	}
	metrics.RecordDraw(result.Tier.String(), result.Label)

	s.log.Info().
		Str("entry_id", entry.ID).
		Str("tier", result.Tier.String()).
		Str("label", result.Label).
		Int("payout", result.Payout).
		Msg("Draw recorded")

	return &models.Play{
		Result:      result,
		Entry:       *entry,
		Celebration: models.CelebrationFor(result.Payout),
		ShareText:   models.ShareText(result),
	}, nil
}

func (s *drawService) record(ctx context.Context, in ledgermodels.EntryInput) (*ledgermodels.Entry, error) {
	if s.opts.OncePerDay {
		return s.ledger.AppendDaily(ctx, in)
	}
	return s.ledger.Append(ctx, in)
}

func (s *drawService) discardProof(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := s.proofs.Discard(context.WithoutCancel(ctx), ref); err != nil {
		s.log.Warn().Err(err).Msg("Failed to discard proof of a void draw")
	}
}
