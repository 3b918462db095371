// Package settlement implements the payment-settlement calculator used by the
// collections desk: per-document discount/surcharge rates, per-cheque financial
// cost, reconciliation of tendered values against selected documents, and
// refinancing schedules. All computations are pure; callers inject settings and
// the clock.
package settlement

import (
	"math"
	"time"
)

// PaymentMethod enumerates tendered instrument kinds.
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodTransfer PaymentMethod = "transfer"
	MethodCheque   PaymentMethod = "cheque"
)

// PaymentType classifies how the customer buys.
type PaymentType string

const (
	PaymentPrepaid     PaymentType = "prepaid"
	PaymentOpenAccount PaymentType = "open_account"
)

// ConceptNone is the memo sentinel used when the operator types nothing.
const ConceptNone = "Sin concepto"

// ConceptRefinancing tags cheques generated by the refinancing planner.
// Planner output replaces cheques carrying this concept, never manual entries.
const ConceptRefinancing = "Refinanciación"

// Document is an outstanding invoice selected for payment. It is an immutable
// snapshot for the duration of one settlement transaction.
type Document struct {
	ID               int64
	Number           string
	IssueDate        time.Time
	ExpirationDate   time.Time
	Balance          float64
	PaymentCondition string
}

// ValueItem is one tendered payment instrument. For cheques Amount holds the
// net (post-interest) imputable value and RawAmount the face value; for cash
// and transfers only Amount is meaningful.
type ValueItem struct {
	Method              PaymentMethod
	Amount              float64
	RawAmount           float64
	ChequeDate          time.Time
	ChequeNumber        string
	Bank                string
	Concept             string
	ReceiptURL          string
	ReceiptOriginalName string

	// GraceDays, when set, bypasses the global cheque grace setting for this
	// item. CostFinancialPct records the interest percentage the planner used.
	GraceDays        *int
	CostFinancialPct *float64
}

// Settings carries the per-branch financial parameters. It is a plain value
// passed into every entry point; the engine never reads global state.
type Settings struct {
	AnnualInterestPct  float64
	ChequeGraceDays    *int
	DocumentsGraceDays *int
}

// Fallbacks applied when the configuration service has no data.
const (
	DefaultAnnualInterestPct  = 96.0
	DefaultChequeGraceDays    = 45
	DefaultDocumentsGraceDays = 45
)

// DefaultSettings returns the documented fallback parameters.
func DefaultSettings() Settings {
	cheque := DefaultChequeGraceDays
	docs := DefaultDocumentsGraceDays
	return Settings{
		AnnualInterestPct:  DefaultAnnualInterestPct,
		ChequeGraceDays:    &cheque,
		DocumentsGraceDays: &docs,
	}
}

// NormalizedAnnualPct returns the annual rate as a percentage. One historical
// data path stores the rate as a sub-1 fraction per day; that shape is
// converted to percent-per-year before use.
func (s Settings) NormalizedAnnualPct() float64 {
	pct := s.AnnualInterestPct
	if pct > 0 && pct < 1 {
		pct = pct * 365 * 100
	}
	return pct
}

// DailyRatePct is the simple daily interest rate, as a percentage.
func (s Settings) DailyRatePct() float64 {
	return s.NormalizedAnnualPct() / 365
}

// ChequeGrace resolves the cheque grace window: per-item override, then the
// branch setting, then the 45-day fallback.
func (s Settings) ChequeGrace(override *int) int {
	if override != nil {
		return *override
	}
	if s.ChequeGraceDays != nil {
		return *s.ChequeGraceDays
	}
	return DefaultChequeGraceDays
}

// DocumentAdjustment is the per-document outcome of the discount ladder.
// Sign convention on this side: positive Rate means discount (reduces the
// amount owed), negative means surcharge.
type DocumentAdjustment struct {
	DocumentID int64
	Number     string
	Days       int
	DaysKnown  bool
	Rate       float64
	Base       float64
	Amount     float64
	Final      float64
	Rule       string
}

// ChequeDetail breaks down the financial cost of one tendered cheque.
type ChequeDetail struct {
	CollectionDate    time.Time
	DaysTotal         int
	GraceDays         int
	DaysCharged       int
	AnnualInterestPct float64
	DailyRatePct      float64
	InterestPct       float64
	InterestAmount    float64
	NetAmount         float64
	ChequeNumber      string
	Incomplete        bool
}

// ValueResult pairs a tendered item with its computed state.
type ValueResult struct {
	Item          ValueItem
	Nominal       float64
	Cheque        *ChequeDetail
	PromoDiscount float64
	Issues        []string
}

// Totals aggregates one settlement round.
//
// DocAdjustment follows the documents-side convention (discount positive);
// AdjustmentOnValues follows the values-side convention (discount negative).
// ToValuesSide converts between the two.
type Totals struct {
	Gross               float64
	DocAdjustment       float64
	Net                 float64
	ValuesNominal       float64
	ChequeInterest      float64
	ChequePromoDiscount float64
	AdjustmentOnValues  float64
	TotalCost           float64
	NetToApply          float64
	Diff                float64
}

// Result is the full outcome of Recompute.
type Result struct {
	Documents           []DocumentAdjustment
	Values              []ValueResult
	Totals              Totals
	BlockChequeInterest bool
	Warnings            []string
}

// Reconciled reports whether the tendered values cover the documents to the cent.
func (r Result) Reconciled() bool {
	return math.Abs(r.Totals.Diff) < 0.005
}

// ToValuesSide converts a documents-side adjustment (discount positive) into
// the values-side convention (discount negative).
func ToValuesSide(docAdjustment float64) float64 {
	return -docAdjustment
}

// round2 re-rounds money to cents. Every arithmetic step passes through it so
// floating-point drift cannot accumulate across line items.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// round4 rounds rate percentages before they are multiplied into money.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
