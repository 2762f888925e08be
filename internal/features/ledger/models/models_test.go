package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMaskHandle(t *testing.T) {
	cases := map[string]string{
		"Alice":           "A***",
		"A":               "A***",
		"Bartholomew1987": "B***",
		"達特":              "達***",
		"":                "***",
		"   ":             "***",
		" bob":            "b***",
	}
	for in, want := range cases {
		assert.Equal(t, want, MaskHandle(in), "handle %q", in)
	}
}

func TestMaskLeavesEntryUntouched(t *testing.T) {
	e := Entry{
		ID:         "0192f1c2-0000-7000-8000-000000000001",
		Timestamp:  time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC),
		Handle:     "Alice",
		Tier:       "T3",
		ProofImage: "data:image/png;base64,AAAA",
		Payout:     1888,
	}
	d := Mask(e)

	assert.Equal(t, "A***", d.Handle)
	assert.Equal(t, "Alice", e.Handle)
	assert.Equal(t, e.ID, d.ID)
	assert.Equal(t, e.Timestamp, d.Timestamp)
	assert.Equal(t, "T3", d.Tier)
	assert.Equal(t, 1888, d.Payout)
	assert.Equal(t, "1,888 獎金", d.PrizeText)
}

func TestPrizeText(t *testing.T) {
	assert.Equal(t, "58 獎金", PrizeText(58))
	assert.Equal(t, "10,000 獎金", PrizeText(10000))
	assert.Equal(t, NonCashPrizeText, PrizeText(0))
}

func TestEntryInputValidate(t *testing.T) {
	tiers := []string{"T1", "T2", "T3"}

	assert.NoError(t, EntryInput{Handle: "", Tier: "T1", Payout: 0}.Validate(tiers))
	assert.ErrorIs(t, EntryInput{Tier: "", Payout: 58}.Validate(tiers), ErrInvalidEntry)
	assert.ErrorIs(t, EntryInput{Tier: "T1", Payout: -1}.Validate(tiers), ErrInvalidEntry)
	assert.ErrorIs(t, EntryInput{Tier: "T9", Payout: 58}.Validate(tiers), ErrInvalidEntry)
	assert.ErrorIs(t, EntryInput{Tier: "1000", Payout: 58}.Validate(tiers), ErrInvalidEntry)
	assert.NoError(t, EntryInput{Tier: "T9", Payout: 58}.Validate(nil))
}
