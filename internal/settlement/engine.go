package settlement

import (
	"fmt"
	"log/slog"
	"math"
	"time"
)

// Cheque promo tiers: an extra discount on cheques tendered close to the
// invoice date, layered independently of the document ladder. The 7/15/30
// thresholds are hand-tuned business values.
const (
	promoFreshInvoiceMaxAge   = 7
	promoRecentInvoiceMaxAge  = 15
	promoAgingInvoiceMaxAge   = 30
	promoCollectionWindowDays = 30
	promoSameDayTolerance     = 1
	promoFreshRate            = 0.13
	promoRecentRate           = 0.13
	promoAgingRate            = 0.10
)

// Engine computes settlement rounds. It holds no transaction state; every
// Recompute rebuilds derived values from the inputs.
type Engine struct {
	logger *slog.Logger
	now    func() time.Time
}

// EngineConfig configures optional behaviour for the engine.
type EngineConfig struct {
	// Now overrides the wall clock, required for reproducible computations.
	Now func() time.Time
}

// NewEngine wires the settlement engine.
func NewEngine(logger *slog.Logger, cfg EngineConfig) *Engine {
	eng := &Engine{
		logger: logger,
		now:    time.Now,
	}
	if cfg.Now != nil {
		eng.now = cfg.Now
	}
	return eng
}

// ComputeCheque prices one tendered cheque.
//
// DaysTotal counts the collection day itself (diff+1, the historical
// convention); the charged days start once the diff exceeds the grace window.
// When block is set every cheque in the batch settles at face value.
//
// Interest is derived from the gap between face and net rather than computed
// forward, so a manually overridden net stays consistent with the totals.
func (e *Engine) ComputeCheque(item ValueItem, st Settings, block bool) ChequeDetail {
	detail := ChequeDetail{
		CollectionDate:    item.ChequeDate,
		ChequeNumber:      item.ChequeNumber,
		GraceDays:         st.ChequeGrace(item.GraceDays),
		AnnualInterestPct: st.NormalizedAnnualPct(),
		DailyRatePct:      st.DailyRatePct(),
	}

	diff, ok := DaysUntil(e.now(), item.ChequeDate)
	if !ok {
		// No collection date: flag instead of guessing, face value untouched.
		detail.Incomplete = true
		detail.NetAmount = round2(item.RawAmount)
		return detail
	}
	detail.DaysTotal = diff + 1
	detail.DaysCharged = diff - detail.GraceDays
	if detail.DaysCharged < 0 {
		detail.DaysCharged = 0
	}

	if block {
		detail.NetAmount = round2(item.RawAmount)
		return detail
	}

	detail.InterestPct = round4(detail.DailyRatePct * float64(detail.DaysCharged))
	net := item.Amount
	if net <= 0 {
		net = round2(item.RawAmount * (1 - detail.InterestPct/100))
	}
	if net > item.RawAmount {
		net = round2(item.RawAmount)
	}
	detail.NetAmount = net
	detail.InterestAmount = round2(item.RawAmount - net)
	return detail
}

// Recompute runs one full settlement round: per-document adjustments,
// per-cheque financial cost, promo stacking, proration of the document
// adjustment over the tendered values and final totals.
//
// It never fails: incomplete or invalid items are flagged on the result and
// the totals are best-effort so the caller can always display them. A nonzero
// Diff is a warning, not an error; the engine is a calculator, not a gatekeeper.
func (e *Engine) Recompute(docs []Document, values []ValueItem, st Settings, opts AdjustOptions) Result {
	now := e.now()
	res := Result{}

	// Any selected document under a no-discount condition blocks cheque
	// interest for the whole batch, mirroring the discount block.
	for _, doc := range docs {
		if IsNoDiscountCondition(doc.PaymentCondition) {
			res.BlockChequeInterest = true
			break
		}
	}

	var gross, finalTotal float64
	minAge := math.MaxInt
	for _, doc := range docs {
		adj := AdjustDocument(doc, now, st, opts)
		res.Documents = append(res.Documents, adj)
		gross = round2(gross + adj.Base)
		finalTotal = round2(finalTotal + adj.Final)
		if adj.DaysKnown && adj.Days < minAge {
			minAge = adj.Days
		}
	}

	var valuesNominal, chequeInterest, nonChequeBase, promoTotal float64
	for _, item := range values {
		vr := ValueResult{Item: item}
		switch item.Method {
		case MethodCheque:
			detail := e.ComputeCheque(item, st, res.BlockChequeInterest)
			vr.Cheque = &detail
			vr.Nominal = round2(item.RawAmount)
			chequeInterest = round2(chequeInterest + detail.InterestAmount)
			if detail.Incomplete {
				vr.Issues = append(vr.Issues, "cheque sin fecha de cobro")
			}
			if item.ChequeNumber == "" {
				vr.Issues = append(vr.Issues, "número de cheque requerido")
			}
			if item.Bank == "" {
				vr.Issues = append(vr.Issues, "banco requerido")
			}
			if !res.BlockChequeInterest && minAge != math.MaxInt {
				vr.PromoDiscount = chequePromoDiscount(now, minAge, item)
				promoTotal = round2(promoTotal + vr.PromoDiscount)
			}
		case MethodTransfer:
			vr.Nominal = round2(item.Amount)
			nonChequeBase = round2(nonChequeBase + vr.Nominal)
			if item.Bank == "" {
				vr.Issues = append(vr.Issues, "banco requerido")
			}
		default:
			vr.Nominal = round2(item.Amount)
			nonChequeBase = round2(nonChequeBase + vr.Nominal)
		}
		if vr.Nominal <= 0 {
			vr.Issues = append(vr.Issues, "importe debe ser positivo")
		}
		valuesNominal = round2(valuesNominal + vr.Nominal)
		res.Values = append(res.Values, vr)
	}

	docAdjustment := round2(gross - finalTotal)
	res.Totals = e.computeTotals(gross, docAdjustment, valuesNominal, chequeInterest, promoTotal, nonChequeBase)

	res.Warnings = buildWarnings(res)
	if e.logger != nil {
		e.logger.Debug("settlement recomputed",
			slog.Int("documents", len(docs)),
			slog.Int("values", len(values)),
			slog.Float64("gross", res.Totals.Gross),
			slog.Float64("net_to_apply", res.Totals.NetToApply),
			slog.Float64("diff", res.Totals.Diff))
	}
	return res
}

// computeTotals applies the proration rules.
//
// Documents side: discount positive. Values side: discount negative. When the
// tendered net covers the net target the full document adjustment transfers to
// the values side; when it falls short the blended rate applies only to what
// was actually tendered. A discount never lands on cheques, whose own
// interest already prices time-value. A surcharge is borne by the full
// tendered total. The applied adjustment never exceeds the document adjustment
// in magnitude.
func (e *Engine) computeTotals(gross, docAdjustment, valuesNominal, chequeInterest, promoTotal, nonChequeBase float64) Totals {
	t := Totals{
		Gross:               gross,
		DocAdjustment:       docAdjustment,
		Net:                 round2(gross - docAdjustment),
		ValuesNominal:       valuesNominal,
		ChequeInterest:      chequeInterest,
		ChequePromoDiscount: promoTotal,
	}

	valuesNet := round2(valuesNominal - math.Abs(chequeInterest))
	globalRate := 0.0
	if gross != 0 {
		globalRate = round4(docAdjustment/gross*100) / 100
	}

	if valuesNet+0.005 >= t.Net {
		t.AdjustmentOnValues = ToValuesSide(docAdjustment)
	} else {
		base := valuesNominal
		if globalRate > 0 {
			base = nonChequeBase
		}
		t.AdjustmentOnValues = round2(base * globalRate * -1)
	}
	if math.Abs(t.AdjustmentOnValues) > math.Abs(docAdjustment) {
		t.AdjustmentOnValues = math.Copysign(math.Abs(docAdjustment), t.AdjustmentOnValues)
	}

	t.TotalCost = round2(t.AdjustmentOnValues - promoTotal + chequeInterest)
	t.NetToApply = round2(valuesNominal - t.TotalCost)
	t.Diff = round2(gross - t.NetToApply)
	return t
}

// chequePromoDiscount computes the extra promo layer for one cheque. invoiceAge
// is the minimum days-since-issue across the selected documents; the issue date
// is inferred from it.
func chequePromoDiscount(now time.Time, invoiceAge int, item ValueItem) float64 {
	diff, ok := DaysUntil(now, item.ChequeDate)
	if !ok {
		return 0
	}
	inferredIssue := dateOnly(now).AddDate(0, 0, -invoiceAge)
	switch {
	case invoiceAge <= promoFreshInvoiceMaxAge:
		if DaysBetween(inferredIssue, item.ChequeDate) <= promoCollectionWindowDays {
			return round2(item.RawAmount * promoFreshRate)
		}
	case invoiceAge <= promoRecentInvoiceMaxAge:
		if abs(diff) <= promoSameDayTolerance {
			return round2(item.RawAmount * promoRecentRate)
		}
	case invoiceAge <= promoAgingInvoiceMaxAge:
		if abs(diff) <= promoSameDayTolerance {
			return round2(item.RawAmount * promoAgingRate)
		}
	}
	return 0
}

func buildWarnings(res Result) []string {
	var warnings []string
	switch {
	case res.Totals.Diff > 0.005:
		warnings = append(warnings, fmt.Sprintf("falta cubrir $%.2f", res.Totals.Diff))
	case res.Totals.Diff < -0.005:
		warnings = append(warnings, fmt.Sprintf("exceso de $%.2f", -res.Totals.Diff))
	}
	for i, vr := range res.Values {
		for _, issue := range vr.Issues {
			warnings = append(warnings, fmt.Sprintf("valor %d: %s", i+1, issue))
		}
	}
	for _, adj := range res.Documents {
		if !adj.DaysKnown {
			warnings = append(warnings, fmt.Sprintf("documento %s: fecha de emisión inválida, revisar manualmente", adj.Number))
		}
	}
	return warnings
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
