package performance

import (
	"fmt"
	"sort"
	"strings"

	"github.com/payops/backend/internal/domain/shared"
)

// TierBand is one score range in the bonus tier table. Bands are half-open
// [MinScore, MaxScore); the highest band includes its upper bound so that a
// perfect 100 maps to a tier.
type TierBand struct {
	MinScore     float64 `json:"min_score"`
	MaxScore     float64 `json:"max_score"`
	Name         string  `json:"name"`
	Color        string  `json:"color"`
	BonusPercent float64 `json:"bonus_percent"`
}

// TierAssignment is the outcome of mapping a total score through the policy
type TierAssignment struct {
	Tier            string  `json:"tier"`
	TierColor       string  `json:"tier_color"`
	BonusPercentage float64 `json:"bonus_percentage"`
}

// TierPolicy maps a total score in [0,100] to a bonus percentage, tier label
// and display color. The band table is supplied per deployment; the policy is
// total over [0,100] and monotonic in bonus percentage. Out-of-range scores
// are clamped rather than rejected because upstream rounding can step just
// outside the scale.
type TierPolicy struct {
	bands []TierBand
}

// NewTierPolicy validates and builds a tier policy from a band table.
// The bands must cover [0,100] without gaps or overlaps, and the bonus
// percentage must never decrease as the score rises.
func NewTierPolicy(bands []TierBand) (*TierPolicy, error) {
	if len(bands) == 0 {
		return nil, shared.NewDomainError("INVALID_TIER_POLICY", "Tier policy requires at least one band")
	}

	sorted := make([]TierBand, len(bands))
	copy(sorted, bands)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinScore < sorted[j].MinScore })

	for i, b := range sorted {
		if strings.TrimSpace(b.Name) == "" {
			return nil, shared.NewDomainError("INVALID_TIER_POLICY", fmt.Sprintf("Band %d has an empty tier name", i))
		}
		if b.BonusPercent < 0 {
			return nil, shared.NewDomainError("INVALID_TIER_POLICY", fmt.Sprintf("Band %q has a negative bonus percentage", b.Name))
		}
		if b.MaxScore <= b.MinScore {
			return nil, shared.NewDomainError("INVALID_TIER_POLICY", fmt.Sprintf("Band %q has an empty score range", b.Name))
		}
	}

	if sorted[0].MinScore != 0 {
		return nil, shared.NewDomainError("INVALID_TIER_POLICY", "Tier bands must start at score 0")
	}
	if sorted[len(sorted)-1].MaxScore != 100 {
		return nil, shared.NewDomainError("INVALID_TIER_POLICY", "Tier bands must end at score 100")
	}
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if cur.MinScore != prev.MaxScore {
			return nil, shared.NewDomainError("INVALID_TIER_POLICY",
				fmt.Sprintf("Bands %q and %q must be contiguous", prev.Name, cur.Name))
		}
		if cur.BonusPercent < prev.BonusPercent {
			return nil, shared.NewDomainError("INVALID_TIER_POLICY",
				fmt.Sprintf("Bonus percentage must not decrease from %q to %q", prev.Name, cur.Name))
		}
	}

	return &TierPolicy{bands: sorted}, nil
}

// DefaultTierBands is the band table used when a deployment supplies none
func DefaultTierBands() []TierBand {
	return []TierBand{
		{MinScore: 0, MaxScore: 40, Name: "None", Color: "#9e9e9e", BonusPercent: 0},
		{MinScore: 40, MaxScore: 60, Name: "Bronze", Color: "#cd7f32", BonusPercent: 2},
		{MinScore: 60, MaxScore: 75, Name: "Silver", Color: "#c0c0c0", BonusPercent: 5},
		{MinScore: 75, MaxScore: 90, Name: "Gold", Color: "#ffd700", BonusPercent: 10},
		{MinScore: 90, MaxScore: 100, Name: "Platinum", Color: "#e5e4e2", BonusPercent: 15},
	}
}

// DefaultTierPolicy returns the policy built from DefaultTierBands
func DefaultTierPolicy() *TierPolicy {
	policy, err := NewTierPolicy(DefaultTierBands())
	if err != nil {
		// The default table is fixed and always valid
		panic(err)
	}
	return policy
}

// TierFor resolves the tier assignment for a total score.
// Scores outside [0,100] are clamped to the nearest bound.
func (p *TierPolicy) TierFor(totalScore float64) TierAssignment {
	score := clampScore(totalScore)

	for i, b := range p.bands {
		last := i == len(p.bands)-1
		if score >= b.MinScore && (score < b.MaxScore || (last && score == b.MaxScore)) {
			return TierAssignment{
				Tier:            b.Name,
				TierColor:       b.Color,
				BonusPercentage: b.BonusPercent,
			}
		}
	}

	// Unreachable for a validated policy; fall back to the top band.
	top := p.bands[len(p.bands)-1]
	return TierAssignment{Tier: top.Name, TierColor: top.Color, BonusPercentage: top.BonusPercent}
}

// Bands returns a copy of the ordered band table
func (p *TierPolicy) Bands() []TierBand {
	out := make([]TierBand, len(p.bands))
	copy(out, p.bands)
	return out
}
