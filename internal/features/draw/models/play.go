package models

import (
	"fmt"

	ledgermodels "lucky-draw-backend/internal/features/ledger/models"
)

const shareTemplate = "我在「達特｜每日儲值輪盤」抽中了 %s！你也來試試手氣～"

// Play is a draw that has been recorded in the ledger.
type Play struct {
	Result      DrawResult
	Entry       ledgermodels.Entry
	Celebration Celebration
	ShareText   string
}

// ShareText is the message a participant posts about a result.
func ShareText(result DrawResult) string {
	return fmt.Sprintf(shareTemplate, result.Label)
}
