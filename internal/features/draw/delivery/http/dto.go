package http

import (
	"lucky-draw-backend/internal/features/draw/models"
	ledgermodels "lucky-draw-backend/internal/features/ledger/models"
)

// DrawRequest is the whole form submitted at the wheel step.
type DrawRequest struct {
	Handle string `json:"handle" binding:"required"`
	// "T1".."T3" or the deposit amount ("1000", "5000", "10000")
	Tier       string `json:"tier" binding:"required"`
	ProofImage string `json:"proof_image"`
}

type DrawResponse struct {
	Result      models.DrawResult         `json:"result"`
	Entry       ledgermodels.DisplayEntry `json:"entry"`
	Celebration models.Celebration        `json:"celebration"`
	ShareText   string                    `json:"share_text"`
}

type TiersResponse struct {
	Tiers []models.TierOdds `json:"tiers"`
}
