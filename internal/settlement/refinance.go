package settlement

import (
	"errors"
	"log/slog"
)

var (
	// ErrNothingToRefinance signals a zero or negative balance.
	ErrNothingToRefinance = errors.New("settlement: no hay saldo a refinanciar")
	// ErrNoTerms signals an empty maturity list.
	ErrNoTerms = errors.New("settlement: elegir al menos un plazo")
)

// safeDenominatorFloor keeps the present-value division from collapsing when
// accrued interest reaches 100% of the face value.
const safeDenominatorFloor = 1e-6

// exemptGraceDays marks a plan exempt from interest: no collection date ever
// exceeds it, so a later re-price of the cheque charges zero days.
const exemptGraceDays = 100 * 365

// RefinanceOptions tunes the planner.
type RefinanceOptions struct {
	// NoDiscountCondition exempts the plan from interest entirely: under a
	// "según pliego" style condition the cheques settle at face value.
	NoDiscountCondition bool
}

// PlanRefinancing restructures balance into equal-nominal cheques at the given
// day offsets (30/60/90...) such that the sum of their interest-discounted net
// values equals balance exactly to the cent.
//
// Refinancing diverges from ordinary cheque handling: grace is zero, interest
// accrues from day one, unless the no-discount condition exempts the whole
// plan. The last cheque absorbs the rounding residue.
func (e *Engine) PlanRefinancing(balance float64, offsets []int, st Settings, opts RefinanceOptions) ([]ValueItem, error) {
	if balance <= 0 {
		return nil, ErrNothingToRefinance
	}
	if len(offsets) == 0 {
		return nil, ErrNoTerms
	}
	balance = round2(balance)

	grace := 0
	dailyPct := st.DailyRatePct()
	if opts.NoDiscountCondition {
		dailyPct = 0
		grace = exemptGraceDays
	}

	interestPcts := make([]float64, len(offsets))
	denominators := make([]float64, len(offsets))
	var denominatorSum float64
	for i, d := range offsets {
		charged := d - grace
		if charged < 0 {
			charged = 0
		}
		interestPcts[i] = round4(dailyPct * float64(charged))
		denom := 1 - interestPcts[i]/100
		if denom < safeDenominatorFloor {
			denom = safeDenominatorFloor
		}
		denominators[i] = denom
		denominatorSum += denom
	}

	// Equal nominal R with Σ R·denom_i = balance.
	nominal := round2(balance / denominatorSum)

	now := dateOnly(e.now())
	items := make([]ValueItem, len(offsets))
	var netSum float64
	for i, d := range offsets {
		g := grace
		ipct := interestPcts[i]
		item := ValueItem{
			Method:           MethodCheque,
			RawAmount:        nominal,
			ChequeDate:       now.AddDate(0, 0, d),
			Concept:          ConceptRefinancing,
			GraceDays:        &g,
			CostFinancialPct: &ipct,
		}
		if i == len(offsets)-1 {
			// Last cheque closes the plan to the cent; its nominal is backed
			// out from the residual net.
			item.Amount = round2(balance - netSum)
			item.RawAmount = round2(item.Amount / denominators[i])
		} else {
			item.Amount = round2(nominal * denominators[i])
		}
		if item.Amount > item.RawAmount {
			item.RawAmount = item.Amount
		}
		netSum = round2(netSum + item.Amount)
		items[i] = item
	}

	if e.logger != nil {
		e.logger.Info("refinancing plan built",
			slog.Float64("balance", balance),
			slog.Int("cheques", len(items)),
			slog.Float64("nominal", nominal))
	}
	return items, nil
}

// MergeRefinancingValues replaces previously planned refinancing cheques with
// the new plan while preserving every manually entered tendered item.
func MergeRefinancingValues(existing, planned []ValueItem) []ValueItem {
	merged := make([]ValueItem, 0, len(existing)+len(planned))
	for _, item := range existing {
		if item.Method == MethodCheque && item.Concept == ConceptRefinancing {
			continue
		}
		merged = append(merged, item)
	}
	return append(merged, planned...)
}
