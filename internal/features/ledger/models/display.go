package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// MaskPlaceholder replaces everything after the first rune of a handle.
	MaskPlaceholder = "***"
	// NonCashPrizeText is shown for entries without a cash payout.
	NonCashPrizeText = "精準體育單"
)

var printer = message.NewPrinter(language.TraditionalChinese)

// DisplayEntry is the privacy-safe projection of an Entry.
type DisplayEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Handle    string    `json:"handle"`
	Tier      string    `json:"tier"`
	Payout    int       `json:"payout"`
	PrizeText string    `json:"prize_text"`
}

// MaskHandle keeps the first rune and replaces the rest with the placeholder,
// whatever the original length. Blank handles become the bare placeholder.
func MaskHandle(handle string) string {
	handle = strings.TrimSpace(handle)
	r, size := utf8.DecodeRuneInString(handle)
	if size == 0 {
		return MaskPlaceholder
	}
	return string(r) + MaskPlaceholder
}

// PrizeText renders a payout for display, e.g. "1,888 獎金".
func PrizeText(payout int) string {
	if payout <= 0 {
		return NonCashPrizeText
	}
	return printer.Sprintf("%d 獎金", payout)
}

// Mask projects an entry for display. The entry itself is left untouched and
// the proof image is never exposed.
func Mask(e Entry) DisplayEntry {
	return DisplayEntry{
		ID:        e.ID,
		Timestamp: e.Timestamp,
		Handle:    MaskHandle(e.Handle),
		Tier:      e.Tier,
		Payout:    e.Payout,
		PrizeText: PrizeText(e.Payout),
	}
}
