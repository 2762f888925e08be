package models

import (
	"errors"
	"fmt"
	"strings"
)

// Tier is a deposit-amount category. Each tier has its own odds table.
type Tier string

const (
	TierT1 Tier = "T1"
	TierT2 Tier = "T2"
	TierT3 Tier = "T3"
)

var ErrInvalidTier = errors.New("invalid tier")

var depositAmounts = map[Tier]int{
	TierT1: 1000,
	TierT2: 5000,
	TierT3: 10000,
}

// AllTiers returns the tiers in ascending deposit order.
func AllTiers() []Tier {
	return []Tier{TierT1, TierT2, TierT3}
}

// TierNames returns the canonical names of AllTiers, the form entries carry.
func TierNames() []string {
	tiers := AllTiers()
	names := make([]string, len(tiers))
	for i, t := range tiers {
		names[i] = t.String()
	}
	return names
}

func (t Tier) Valid() bool {
	_, ok := depositAmounts[t]
	return ok
}

// DepositAmount returns the minimum deposit of the tier, 0 for unknown tiers.
func (t Tier) DepositAmount() int {
	return depositAmounts[t]
}

func (t Tier) String() string {
	return string(t)
}

// ParseTier accepts either the tier name ("T2", "t2") or its deposit amount ("5000").
func ParseTier(raw string) (Tier, error) {
	s := strings.TrimSpace(raw)
	if t := Tier(strings.ToUpper(s)); t.Valid() {
		return t, nil
	}
	for t, amount := range depositAmounts {
		if s == fmt.Sprint(amount) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTier, raw)
}
