package settlement

import (
	"time"
)

// dateLayout is the wire format for calendar dates; time-of-day is never
// meaningful at this boundary.
const dateLayout = "2006-01-02"

// DocumentInput mirrors one selected document row as the UI sends it.
type DocumentInput struct {
	DocumentID       int64   `json:"documentId" validate:"required"`
	Number           string  `json:"number" validate:"required"`
	IssueDate        string  `json:"issueDate"`
	ExpirationDate   string  `json:"expirationDate"`
	Balance          float64 `json:"balance" validate:"gt=0"`
	PaymentCondition string  `json:"paymentConditionName"`
}

// ValueInput mirrors one tendered instrument row.
type ValueInput struct {
	Method       string   `json:"method" validate:"required,oneof=cash transfer cheque"`
	Amount       float64  `json:"amount"`
	RawAmount    float64  `json:"rawAmount"`
	ChequeDate   string   `json:"chequeDate"`
	ChequeNumber string   `json:"chequeNumber"`
	Bank         string   `json:"bank"`
	Concept      string   `json:"concept"`
	ReceiptURL   string   `json:"receiptUrl"`
	ReceiptName  string   `json:"receiptOriginalName"`
	GraceDays    *int     `json:"overrideGraceDays"`
	CostPct      *float64 `json:"cf"`
}

// SettingsInput optionally overrides the branch settings for one computation.
type SettingsInput struct {
	AnnualInterestPct  *float64 `json:"annualInterestPct"`
	ChequeGraceDays    *int     `json:"chequeGraceDays"`
	DocumentsGraceDays *int     `json:"documentsGraceDays"`
}

// PreviewRequest asks for one settlement recomputation.
type PreviewRequest struct {
	BranchID      int64           `json:"branchId"`
	PaymentType   string          `json:"paymentType" validate:"omitempty,oneof=prepaid open_account"`
	ForceDiscount bool            `json:"forceDiscount"`
	Documents     []DocumentInput `json:"documents" validate:"required,min=1,dive"`
	Values        []ValueInput    `json:"values" validate:"dive"`
	Settings      *SettingsInput  `json:"settings"`
}

// RefinanceRequest asks for an installment plan over the given maturities.
type RefinanceRequest struct {
	BranchID            int64          `json:"branchId"`
	Balance             float64        `json:"balance"`
	OffsetsDays         []int          `json:"offsetsDays"`
	NoDiscountCondition bool           `json:"noDiscountCondition"`
	Settings            *SettingsInput `json:"settings"`
}

// SubmitPaymentRequest registers a settled payment.
type SubmitPaymentRequest struct {
	PreviewRequest
	CustomerID     int64  `json:"customerId" validate:"required"`
	IdempotencyKey string `json:"idempotencyKey"`
	CreatedBy      int64  `json:"createdBy"`
}

// parseDate tolerates empty strings; an unparseable value also maps to the
// zero time so the engine flags it instead of crashing.
func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return dateOnly(t.Local())
}

// ToDocument converts the wire shape into the engine's snapshot.
func (in DocumentInput) ToDocument() Document {
	return Document{
		ID:               in.DocumentID,
		Number:           in.Number,
		IssueDate:        parseDate(in.IssueDate),
		ExpirationDate:   parseDate(in.ExpirationDate),
		Balance:          in.Balance,
		PaymentCondition: in.PaymentCondition,
	}
}

// ToValueItem converts the wire shape into the engine's tendered item.
func (in ValueInput) ToValueItem() ValueItem {
	concept := in.Concept
	if concept == "" {
		concept = ConceptNone
	}
	return ValueItem{
		Method:              PaymentMethod(in.Method),
		Amount:              in.Amount,
		RawAmount:           in.RawAmount,
		ChequeDate:          parseDate(in.ChequeDate),
		ChequeNumber:        in.ChequeNumber,
		Bank:                in.Bank,
		Concept:             concept,
		ReceiptURL:          in.ReceiptURL,
		ReceiptOriginalName: in.ReceiptName,
		GraceDays:           in.GraceDays,
		CostFinancialPct:    in.CostPct,
	}
}

// ApplyTo merges per-request setting overrides onto the branch settings.
func (in *SettingsInput) ApplyTo(st Settings) Settings {
	if in == nil {
		return st
	}
	if in.AnnualInterestPct != nil {
		st.AnnualInterestPct = *in.AnnualInterestPct
	}
	if in.ChequeGraceDays != nil {
		st.ChequeGraceDays = in.ChequeGraceDays
	}
	if in.DocumentsGraceDays != nil {
		st.DocumentsGraceDays = in.DocumentsGraceDays
	}
	return st
}

// SubmissionTotals is the totals block of the external payload.
type SubmissionTotals struct {
	Gross                   float64 `json:"gross"`
	Discount                float64 `json:"discount"`
	Net                     float64 `json:"net"`
	ValuesRaw               float64 `json:"valuesRaw"`
	ChequeInterest          float64 `json:"chequeInterest"`
	ChequePromoDiscount     float64 `json:"chequePromoDiscount"`
	DiscountAppliedToValues float64 `json:"discountAppliedToValues"`
	NetToApply              float64 `json:"netToApply"`
	Diff                    float64 `json:"diff"`
}

// SubmissionDocument is one document line of the external payload. BaseAmount
// is the balance the payment applies against; a discount forgives the gap to
// FinalAmount rather than leaving it open.
type SubmissionDocument struct {
	DocumentID     int64   `json:"documentId"`
	Number         string  `json:"number"`
	DaysUsed       int     `json:"daysUsed"`
	RuleApplied    string  `json:"ruleApplied"`
	DiscountRate   float64 `json:"discountRate"`
	DiscountAmount float64 `json:"discountAmount"`
	BaseAmount     float64 `json:"baseAmount"`
	FinalAmount    float64 `json:"finalAmount"`
}

// SubmissionCheque is the nested cheque detail of a value line.
type SubmissionCheque struct {
	CollectionDate    string  `json:"collectionDate"`
	DaysTotal         int     `json:"daysTotal"`
	GraceDays         int     `json:"graceDays"`
	DaysCharged       int     `json:"daysCharged"`
	AnnualInterestPct float64 `json:"annualInterestPct"`
	DailyRate         float64 `json:"dailyRate"`
	InterestPct       float64 `json:"interestPct"`
	InterestAmount    float64 `json:"interestAmount"`
	NetAmount         float64 `json:"netAmount"`
	ChequeNumber      string  `json:"chequeNumber"`
}

// SubmissionValue is one tendered instrument of the external payload.
type SubmissionValue struct {
	Method        string            `json:"method"`
	Amount        float64           `json:"amount"`
	Bank          string            `json:"bank,omitempty"`
	Concept       string            `json:"concept"`
	ReceiptURL    string            `json:"receiptUrl,omitempty"`
	PromoDiscount float64           `json:"promoDiscount,omitempty"`
	Cheque        *SubmissionCheque `json:"cheque,omitempty"`
}

// Submission is the payload handed to the external create-payment mutation.
type Submission struct {
	Totals    SubmissionTotals     `json:"totals"`
	Documents []SubmissionDocument `json:"documents"`
	Values    []SubmissionValue    `json:"values"`
	Warnings  []string             `json:"warnings,omitempty"`
}

// BuildSubmission assembles the external payload from a computed result.
func BuildSubmission(res Result) Submission {
	sub := Submission{
		Totals: SubmissionTotals{
			Gross:                   res.Totals.Gross,
			Discount:                res.Totals.DocAdjustment,
			Net:                     res.Totals.Net,
			ValuesRaw:               res.Totals.ValuesNominal,
			ChequeInterest:          res.Totals.ChequeInterest,
			ChequePromoDiscount:     res.Totals.ChequePromoDiscount,
			DiscountAppliedToValues: res.Totals.AdjustmentOnValues,
			NetToApply:              res.Totals.NetToApply,
			Diff:                    res.Totals.Diff,
		},
		Warnings: res.Warnings,
	}
	for _, adj := range res.Documents {
		sub.Documents = append(sub.Documents, SubmissionDocument{
			DocumentID:     adj.DocumentID,
			Number:         adj.Number,
			DaysUsed:       adj.Days,
			RuleApplied:    adj.Rule,
			DiscountRate:   adj.Rate,
			DiscountAmount: adj.Amount,
			BaseAmount:     adj.Base,
			FinalAmount:    adj.Final,
		})
	}
	for _, vr := range res.Values {
		val := SubmissionValue{
			Method:        string(vr.Item.Method),
			Amount:        vr.Nominal,
			Bank:          vr.Item.Bank,
			Concept:       vr.Item.Concept,
			ReceiptURL:    vr.Item.ReceiptURL,
			PromoDiscount: vr.PromoDiscount,
		}
		if vr.Cheque != nil {
			collection := ""
			if !vr.Cheque.CollectionDate.IsZero() {
				collection = vr.Cheque.CollectionDate.Format(dateLayout)
			}
			val.Amount = vr.Cheque.NetAmount
			val.Cheque = &SubmissionCheque{
				CollectionDate:    collection,
				DaysTotal:         vr.Cheque.DaysTotal,
				GraceDays:         vr.Cheque.GraceDays,
				DaysCharged:       vr.Cheque.DaysCharged,
				AnnualInterestPct: vr.Cheque.AnnualInterestPct,
				DailyRate:         vr.Cheque.DailyRatePct,
				InterestPct:       vr.Cheque.InterestPct,
				InterestAmount:    vr.Cheque.InterestAmount,
				NetAmount:         vr.Cheque.NetAmount,
				ChequeNumber:      vr.Cheque.ChequeNumber,
			}
		}
		sub.Values = append(sub.Values, val)
	}
	return sub
}
