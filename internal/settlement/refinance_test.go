package settlement

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlanRefinancingRoundTrip(t *testing.T) {
	eng := newTestEngine()
	st := DefaultSettings()

	items, err := eng.PlanRefinancing(100000, []int{30, 60, 90}, st, RefinanceOptions{})
	require.NoError(t, err)
	require.Len(t, items, 3)

	var netSum float64
	for i, item := range items {
		require.Equal(t, MethodCheque, item.Method)
		require.Equal(t, ConceptRefinancing, item.Concept)
		require.GreaterOrEqual(t, item.RawAmount, item.Amount, "cheque %d", i)
		require.NotNil(t, item.GraceDays)
		require.Equal(t, 0, *item.GraceDays)
		netSum = round2(netSum + item.Amount)
	}
	// The discounted nets close the balance exactly to the cent.
	require.Equal(t, 100000.0, netSum)

	// Equal nominals except the last, which absorbs the rounding residue.
	require.Equal(t, items[0].RawAmount, items[1].RawAmount)
	require.InDelta(t, items[0].RawAmount, items[2].RawAmount, 1.0)

	// Maturities land at today+offset.
	require.Equal(t, 30, DaysBetween(testNow, items[0].ChequeDate))
	require.Equal(t, 60, DaysBetween(testNow, items[1].ChequeDate))
	require.Equal(t, 90, DaysBetween(testNow, items[2].ChequeDate))
}

func TestPlanRefinancingInterestFromDayOne(t *testing.T) {
	eng := newTestEngine()
	st := DefaultSettings()

	// Refinancing grace is zero, not the ordinary 45-day cheque default: a
	// 30-day cheque already accrues 30 days of interest.
	items, err := eng.PlanRefinancing(10000, []int{30}, st, RefinanceOptions{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Greater(t, items[0].RawAmount, items[0].Amount)
	require.NotNil(t, items[0].CostFinancialPct)
	require.InDelta(t, 7.8904, *items[0].CostFinancialPct, 0.0001)
}

func TestPlanRefinancingNoDiscountCondition(t *testing.T) {
	eng := newTestEngine()
	st := DefaultSettings()

	items, err := eng.PlanRefinancing(9000, []int{30, 60, 90}, st, RefinanceOptions{NoDiscountCondition: true})
	require.NoError(t, err)
	var netSum float64
	for _, item := range items {
		// Full nominal equals net: no interest at all under the condition.
		require.Equal(t, item.RawAmount, item.Amount)
		// The exemption is recorded as unbounded grace, not as grace zero.
		require.NotNil(t, item.GraceDays)
		require.Equal(t, exemptGraceDays, *item.GraceDays)
		netSum = round2(netSum + item.Amount)
	}
	require.Equal(t, 9000.0, netSum)
	require.Equal(t, 3000.0, items[0].Amount)

	// A planned cheque re-priced on its own, outside the batch block, still
	// settles at face value.
	repriced := items[0]
	repriced.Amount = 0
	detail := eng.ComputeCheque(repriced, st, false)
	require.Zero(t, detail.DaysCharged)
	require.Zero(t, detail.InterestAmount)
	require.Equal(t, repriced.RawAmount, detail.NetAmount)
}

func TestPlanRefinancingPreconditions(t *testing.T) {
	eng := newTestEngine()
	st := DefaultSettings()

	_, err := eng.PlanRefinancing(0, []int{30}, st, RefinanceOptions{})
	require.ErrorIs(t, err, ErrNothingToRefinance)

	_, err = eng.PlanRefinancing(-50, []int{30}, st, RefinanceOptions{})
	require.ErrorIs(t, err, ErrNothingToRefinance)

	_, err = eng.PlanRefinancing(1000, nil, st, RefinanceOptions{})
	require.ErrorIs(t, err, ErrNoTerms)
}

func TestPlanRefinancingExtremeRateGuard(t *testing.T) {
	eng := newTestEngine()
	// 400% annual over 365 days pushes accrued interest past 100% of face
	// value; the safe denominator keeps the plan finite and positive.
	st := Settings{AnnualInterestPct: 400}

	items, err := eng.PlanRefinancing(10000, []int{365}, st, RefinanceOptions{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.False(t, items[0].RawAmount < 0)
	require.False(t, items[0].Amount < 0)
}

func TestMergeRefinancingValues(t *testing.T) {
	manualCheque := ValueItem{Method: MethodCheque, RawAmount: 500, ChequeNumber: "9", Concept: "pago parcial"}
	cash := ValueItem{Method: MethodCash, Amount: 300, Concept: ConceptNone}
	oldPlan := ValueItem{Method: MethodCheque, RawAmount: 700, Concept: ConceptRefinancing}

	newPlan := []ValueItem{
		{Method: MethodCheque, RawAmount: 400, Concept: ConceptRefinancing},
		{Method: MethodCheque, RawAmount: 400, Concept: ConceptRefinancing},
	}
	merged := MergeRefinancingValues([]ValueItem{manualCheque, cash, oldPlan}, newPlan)

	require.Len(t, merged, 4)
	require.Equal(t, manualCheque, merged[0])
	require.Equal(t, cash, merged[1])
	require.Equal(t, 400.0, merged[2].RawAmount)
	require.Equal(t, 400.0, merged[3].RawAmount)
}

func TestRefinancedChequesReconcileThroughEngine(t *testing.T) {
	eng := newTestEngine()
	st := DefaultSettings()

	// Planner output fed back into the engine keeps its nets: per-item grace 0
	// and the raw/net gap it computed survive the cheque recomputation.
	items, err := eng.PlanRefinancing(50000, []int{30, 60}, st, RefinanceOptions{})
	require.NoError(t, err)

	var netSum float64
	for _, item := range items {
		detail := eng.ComputeCheque(item, st, false)
		require.Equal(t, item.Amount, detail.NetAmount)
		netSum = round2(netSum + detail.NetAmount)
	}
	require.Equal(t, 50000.0, netSum)
}
