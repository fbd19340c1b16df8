// Package pricing maps subscription plans to lease economics. A plan sets
// the baseline infrastructure cost of one CA; the writer profit ratio is
// folded into the days-per-unit rate and re-derived after rounding so the
// published rate is always a whole number of days.
package pricing

import (
	"fmt"
	"math"
)

// Plan names, cheapest last.
const (
	PlanPlatinum = "platinum"
	PlanGold     = "gold"
	PlanSilver   = "silver"
	PlanBronce   = "bronce"
)

// baseCost is the yearly infrastructure cost baseline per plan, in
// dollars per CA. Keep consistent with the launcher's copy.
var baseCost = map[string]float64{
	PlanPlatinum: 1.6896,
	PlanGold:     0.8448,
	PlanSilver:   0.4224,
	PlanBronce:   0.2112,
}

// MaxProfit caps the writer margin.
const MaxProfit = 0.9

// ValidPlan reports whether plan is one of the known plan names.
func ValidPlan(plan string) bool {
	_, ok := baseCost[plan]
	return ok
}

func clipProfit(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > MaxProfit {
		return MaxProfit
	}
	return x
}

// EstimateDaysPerUnit converts a plan and requested writer profit into an
// integer days-per-unit rate, returning the adjusted profit that the
// rounding implies.
func EstimateDaysPerUnit(plan string, profit float64) (adjustedProfit float64, days int, err error) {
	if !ValidPlan(plan) {
		return 0, 0, fmt.Errorf("invalid plan %q", plan)
	}
	if profit < 0 || profit > MaxProfit {
		return 0, 0, fmt.Errorf("profit %v out of range [0, %v]", profit, MaxProfit)
	}
	base := baseCost[plan]
	cost := base / (1 - profit)
	integerDays := math.Round(365 / (10 * cost))
	costRound := 365 / (10 * integerDays)
	profitRound := (costRound - base) / costRound
	return clipProfit(profitRound), int(integerDays), nil
}
