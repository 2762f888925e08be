package models

// DrawResult is the single outcome of one draw. It is never retried or mutated.
type DrawResult struct {
	Tier   Tier   `json:"tier"`
	Label  string `json:"label"`
	Payout int    `json:"payout"`
}

// Celebration is the feedback level the client plays for a result.
type Celebration string

const (
	CelebrationNone   Celebration = "none"
	CelebrationMedium Celebration = "medium"
	CelebrationBig    Celebration = "big"
)

const (
	bigWinThreshold    = 666
	mediumWinThreshold = 168
)

func CelebrationFor(payout int) Celebration {
	switch {
	case payout >= bigWinThreshold:
		return CelebrationBig
	case payout >= mediumWinThreshold:
		return CelebrationMedium
	default:
		return CelebrationNone
	}
}
