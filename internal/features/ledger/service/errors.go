package service

import (
	"errors"

	"lucky-draw-backend/internal/features/ledger/repository"
)

var (
	ErrStorage  = errors.New("ledger storage failure")
	ErrNotFound = repository.ErrNotFound
	// ErrDailyLimit rejects a second AppendDaily for a handle within one
	// local day.
	ErrDailyLimit = repository.ErrDailyClaimed
)
