// Package engine resolves weighted prize draws.
package engine

import (
	"fmt"
	"sort"

	"lucky-draw-backend/internal/features/draw/models"
	"lucky-draw-backend/internal/utils/random"
)

// Engine draws one outcome per call from a validated prize table. It keeps no
// state between draws and is safe for concurrent use.
type Engine struct {
	table models.PrizeTable
	// cumulative[tier][i] is the exclusive upper bound of outcome i.
	cumulative map[models.Tier][]int64
	src        random.Source
}

// New validates the table and precomputes cumulative weights. A table that
// does not add up is rejected here, never renormalized at draw time.
func New(table models.PrizeTable, src random.Source) (*Engine, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		src = random.Crypto()
	}

	table = table.Clone()
	cumulative := make(map[models.Tier][]int64, len(table.Tiers))
	for tier, outcomes := range table.Tiers {
		bounds := make([]int64, len(outcomes))
		var sum int64
		for i, o := range outcomes {
			sum += int64(o.Weight)
			bounds[i] = sum
		}
		cumulative[tier] = bounds
	}

	return &Engine{table: table, cumulative: cumulative, src: src}, nil
}

// Draw samples an integer in [0, total) and returns the outcome whose
// cumulative range contains it.
func (e *Engine) Draw(tier models.Tier) (models.DrawResult, error) {
	bounds, ok := e.cumulative[tier]
	if !ok {
		return models.DrawResult{}, fmt.Errorf("%w: %q", models.ErrInvalidTier, tier)
	}

	sample, err := e.src.Int64N(int64(e.table.Total))
	if err != nil {
		return models.DrawResult{}, fmt.Errorf("draw %s: %w", tier, err)
	}

	// First bound strictly greater than the sample; zero-weight outcomes share
	// their bound with the previous one and are skipped.
	idx := sort.Search(len(bounds), func(i int) bool { return bounds[i] > sample })
	if idx == len(bounds) {
		return models.DrawResult{}, fmt.Errorf("draw %s: sample %d outside table total %d", tier, sample, e.table.Total)
	}

	o := e.table.Tiers[tier][idx]
	return models.DrawResult{Tier: tier, Label: o.Label, Payout: o.Payout}, nil
}

// Odds exposes the table the engine was built with.
func (e *Engine) Odds() []models.TierOdds {
	return e.table.Odds()
}
