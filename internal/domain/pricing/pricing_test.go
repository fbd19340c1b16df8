package pricing

import (
	"math"
	"testing"
)

func TestEstimateDaysPerUnit(t *testing.T) {
	// bronce at zero profit: 365/(10*0.2112) ≈ 172.8 → 173 days.
	profit, days, err := EstimateDaysPerUnit(PlanBronce, 0)
	if err != nil {
		t.Fatalf("EstimateDaysPerUnit: %v", err)
	}
	if days != 173 {
		t.Fatalf("bronce days: got %d, want 173", days)
	}
	if profit < 0 || profit > MaxProfit {
		t.Fatalf("bronce profit out of range: %v", profit)
	}

	// The adjusted profit must reproduce the integer rate.
	for _, plan := range []string{PlanPlatinum, PlanGold, PlanSilver, PlanBronce} {
		for _, p := range []float64{0, 0.2, 0.5, 0.9} {
			adj, days, err := EstimateDaysPerUnit(plan, p)
			if err != nil {
				t.Fatalf("EstimateDaysPerUnit(%s, %v): %v", plan, p, err)
			}
			if days <= 0 {
				t.Fatalf("EstimateDaysPerUnit(%s, %v): non-positive days %d", plan, p, days)
			}
			costRound := 365 / (10 * float64(days))
			want := (costRound - baseCost[plan]) / costRound
			if want < 0 {
				want = 0
			}
			if want > MaxProfit {
				want = MaxProfit
			}
			if math.Abs(adj-want) > 1e-9 {
				t.Fatalf("EstimateDaysPerUnit(%s, %v): adjusted profit %v, want %v", plan, p, adj, want)
			}
		}
	}
}

func TestEstimateDaysPerUnitRejects(t *testing.T) {
	if _, _, err := EstimateDaysPerUnit("diamond", 0.1); err == nil {
		t.Fatalf("expected error for unknown plan")
	}
	if _, _, err := EstimateDaysPerUnit(PlanGold, 1.2); err == nil {
		t.Fatalf("expected error for out-of-range profit")
	}
	if _, _, err := EstimateDaysPerUnit(PlanGold, -0.1); err == nil {
		t.Fatalf("expected error for negative profit")
	}
}
