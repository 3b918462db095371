package settlement

import (
	"regexp"
	"strings"
	"time"

	"github.com/surtidor-erp/surtidor-erp/internal/shared"
)

// Rule tokens reported per document in the submission payload and receipt.
const (
	RulePrepaid             = "contado"
	RuleNoDiscountCondition = "sin-descuento-por-condicion"
	RuleUnknownDate         = "fecha-invalida"
	RuleManualTen           = "descuento-manual-10"
	RuleEarly20             = "pronto-pago-20"
	RuleEarly15Promo        = "pronto-pago-15-promo"
	RuleEarly13             = "pronto-pago-13"
	RuleEarly10             = "pronto-pago-10"
	RuleNoAdjustment        = "sin-ajuste"
	RuleSurcharge           = "recargo-financiero"
)

// Payment conditions that disable the discount ladder entirely. Matching is
// case-insensitive and accent-stripped; "Según Pliego" and "SEGUN PLIEGO" are
// the same condition.
var noDiscountConditions = []string{
	"segun pliego",
	"no especificado",
	"not specified",
	"sin especificar",
}

// promoConditionPattern recognises the hand-written promo condition strings
// ("PROMO 15 dias 13% / 30 d 10%" and variants) that lower the ≤7-day rate
// from 20% to 15%.
var promoConditionPattern = regexp.MustCompile(`promo.*15 dias.*13%.*30 d.*10%`)

// IsNoDiscountCondition reports whether the payment condition disables
// discounts (and, batch-wide, cheque interest).
func IsNoDiscountCondition(condition string) bool {
	normalized := shared.NormalizeCondition(condition)
	if normalized == "" {
		return false
	}
	for _, sentinel := range noDiscountConditions {
		if strings.Contains(normalized, sentinel) {
			return true
		}
	}
	return false
}

// isPromoCondition reports whether the condition string carries the promo ladder.
func isPromoCondition(condition string) bool {
	return promoConditionPattern.MatchString(shared.NormalizeCondition(condition))
}

// AdjustOptions carries transaction-level switches for the discount ladder.
type AdjustOptions struct {
	PaymentType PaymentType
	// ForceDiscount is the operator's manual 10% toggle for documents in the
	// 31–37 day window.
	ForceDiscount bool
}

// AdjustDocument decides the discount or surcharge for a single document.
//
// Positive Rate is a discount, negative a surcharge. The surcharge past the
// grace window accrues simple daily interest on the days exceeding it.
func AdjustDocument(doc Document, now time.Time, st Settings, opts AdjustOptions) DocumentAdjustment {
	adj := DocumentAdjustment{
		DocumentID: doc.ID,
		Number:     doc.Number,
		Base:       round2(doc.Balance),
	}
	adj.Days, adj.DaysKnown = DaysSince(now, doc.IssueDate)

	adj.Rate, adj.Rule = adjustmentRate(doc, adj.Days, adj.DaysKnown, st, opts)
	adj.Amount = round2(adj.Base * adj.Rate)
	adj.Final = round2(adj.Base - adj.Amount)
	return adj
}

func adjustmentRate(doc Document, days int, daysKnown bool, st Settings, opts AdjustOptions) (float64, string) {
	if opts.PaymentType == PaymentPrepaid {
		return 0, RulePrepaid
	}
	// The condition check takes precedence over the ladder and the override.
	if IsNoDiscountCondition(doc.PaymentCondition) {
		return 0, RuleNoDiscountCondition
	}
	if !daysKnown {
		return 0, RuleUnknownDate
	}
	if opts.ForceDiscount && days >= 31 && days <= 37 {
		return 0.10, RuleManualTen
	}

	earlyRate, earlyRule := 0.20, RuleEarly20
	if isPromoCondition(doc.PaymentCondition) {
		earlyRate, earlyRule = 0.15, RuleEarly15Promo
	}

	grace := DefaultDocumentsGraceDays
	if st.DocumentsGraceDays != nil {
		grace = *st.DocumentsGraceDays
	}

	switch {
	case days <= 7:
		return earlyRate, earlyRule
	case days <= 15:
		return 0.13, RuleEarly13
	case days <= 30:
		return 0.10, RuleEarly10
	case days <= grace:
		return 0, RuleNoAdjustment
	default:
		pct := round4(st.DailyRatePct() * float64(days-grace))
		return -pct / 100, RuleSurcharge
	}
}
