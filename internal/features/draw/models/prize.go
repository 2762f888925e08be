package models

import (
	"errors"
	"fmt"
)

// DefaultTotal is the weight sum every tier of the default table must reach.
const DefaultTotal = 100

// SportsSlipLabel is the non-cash outcome present in every tier.
const SportsSlipLabel = "精準體育單"

var ErrInvalidPrizeTable = errors.New("invalid prize table")

// Outcome is one slot of a tier's odds table.
type Outcome struct {
	Label  string `json:"label"`
	Payout int    `json:"payout"`
	Weight int    `json:"weight"`
}

// PrizeTable maps every tier to its ordered outcomes. Weights of each tier
// must sum to Total.
type PrizeTable struct {
	Total int
	Tiers map[Tier][]Outcome
}

// DefaultPrizeTable returns the published odds (80/10/9/1 out of 100).
func DefaultPrizeTable() PrizeTable {
	return PrizeTable{
		Total: DefaultTotal,
		Tiers: map[Tier][]Outcome{
			TierT1: {
				{Label: "58獎金", Payout: 58, Weight: 80},
				{Label: "168獎金", Payout: 168, Weight: 10},
				{Label: SportsSlipLabel, Payout: 0, Weight: 9},
				{Label: "388獎金", Payout: 388, Weight: 1},
			},
			TierT2: {
				{Label: "188獎金", Payout: 188, Weight: 80},
				{Label: "388獎金", Payout: 388, Weight: 10},
				{Label: SportsSlipLabel, Payout: 0, Weight: 9},
				{Label: "888獎金", Payout: 888, Weight: 1},
			},
			TierT3: {
				{Label: "388獎金", Payout: 388, Weight: 80},
				{Label: "666獎金", Payout: 666, Weight: 10},
				{Label: SportsSlipLabel, Payout: 0, Weight: 9},
				{Label: "1888獎金", Payout: 1888, Weight: 1},
			},
		},
	}
}

// Validate checks that every known tier is present, that weights are
// non-negative and that each tier sums to Total.
func (p PrizeTable) Validate() error {
	if p.Total <= 0 {
		return fmt.Errorf("%w: total must be positive, got %d", ErrInvalidPrizeTable, p.Total)
	}
	for _, tier := range AllTiers() {
		outcomes, ok := p.Tiers[tier]
		if !ok || len(outcomes) == 0 {
			return fmt.Errorf("%w: tier %s has no outcomes", ErrInvalidPrizeTable, tier)
		}
		sum := 0
		for _, o := range outcomes {
			if o.Weight < 0 {
				return fmt.Errorf("%w: tier %s outcome %q has negative weight %d", ErrInvalidPrizeTable, tier, o.Label, o.Weight)
			}
			if o.Payout < 0 {
				return fmt.Errorf("%w: tier %s outcome %q has negative payout %d", ErrInvalidPrizeTable, tier, o.Label, o.Payout)
			}
			sum += o.Weight
		}
		if sum != p.Total {
			return fmt.Errorf("%w: tier %s weights sum to %d, want %d", ErrInvalidPrizeTable, tier, sum, p.Total)
		}
	}
	for tier := range p.Tiers {
		if !tier.Valid() {
			return fmt.Errorf("%w: unknown tier %q", ErrInvalidPrizeTable, tier)
		}
	}
	return nil
}

// Clone returns a deep copy so callers cannot mutate a table in use.
func (p PrizeTable) Clone() PrizeTable {
	out := PrizeTable{Total: p.Total, Tiers: make(map[Tier][]Outcome, len(p.Tiers))}
	for tier, outcomes := range p.Tiers {
		out.Tiers[tier] = append([]Outcome(nil), outcomes...)
	}
	return out
}

// OutcomeOdds is an outcome with its share of the tier total, for display.
type OutcomeOdds struct {
	Outcome
	Percent float64 `json:"percent"`
}

// TierOdds is the published odds table of one tier.
type TierOdds struct {
	Tier          Tier          `json:"tier"`
	DepositAmount int           `json:"deposit_amount"`
	Outcomes      []OutcomeOdds `json:"outcomes"`
}

// Odds lists the tiers in ascending deposit order with percentage shares.
func (p PrizeTable) Odds() []TierOdds {
	res := make([]TierOdds, 0, len(p.Tiers))
	for _, tier := range AllTiers() {
		outcomes, ok := p.Tiers[tier]
		if !ok {
			continue
		}
		odds := TierOdds{Tier: tier, DepositAmount: tier.DepositAmount()}
		for _, o := range outcomes {
			odds.Outcomes = append(odds.Outcomes, OutcomeOdds{
				Outcome: o,
				Percent: float64(o.Weight) * 100 / float64(p.Total),
			})
		}
		res = append(res, odds)
	}
	return res
}
