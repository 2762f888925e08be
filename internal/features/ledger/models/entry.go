package models

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

var ErrInvalidEntry = errors.New("invalid entry")

// Entry is one persisted draw. Entries are never updated; only an admin
// delete removes them.
type Entry struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Handle     string    `json:"handle"`
	Tier       string    `json:"tier"`
	ProofImage string    `json:"proof_image,omitempty"`
	Payout     int       `json:"payout"`
}

// EntryInput is what a caller hands to the ledger. ID and Timestamp are
// assigned by the ledger on acceptance.
type EntryInput struct {
	Handle     string
	Tier       string
	ProofImage string
	Payout     int
}

// Validate checks the input. A non-empty tiers list is the allow-list for
// Tier.
func (in EntryInput) Validate(tiers []string) error {
	if in.Tier == "" {
		return errors.Join(ErrInvalidEntry, errors.New("tier is required"))
	}
	if len(tiers) > 0 && !slices.Contains(tiers, in.Tier) {
		return errors.Join(ErrInvalidEntry, fmt.Errorf("unknown tier %q", in.Tier))
	}
	if in.Payout < 0 {
		return errors.Join(ErrInvalidEntry, errors.New("payout cannot be negative"))
	}
	return nil
}
