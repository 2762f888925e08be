package service

import (
	"context"

	"lucky-draw-backend/internal/features/draw/models"
	"lucky-draw-backend/internal/features/draw/session"
)

// DrawService runs the wheel step of a session: one draw, recorded before
// it is reported.
type DrawService interface {
	Tiers() []models.TierOdds
	Play(ctx context.Context, s *session.Session) (*models.Play, error)
}
