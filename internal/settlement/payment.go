package settlement

import "time"

// Payment is a registered cobranza: the settlement totals frozen at submission
// time plus the full payload handed to the downstream mutation.
type Payment struct {
	ID             int64
	Number         string
	CustomerID     int64
	BranchID       int64
	Gross          float64
	DocAdjustment  float64
	ChequeInterest float64
	NetToApply     float64
	Diff           float64
	Payload        Submission
	Receipt        string
	CreatedBy      int64
	CreatedAt      time.Time
}

// CreatePaymentInput groups fields required to persist a payment.
type CreatePaymentInput struct {
	Number     string
	CustomerID int64
	BranchID   int64
	Totals     Totals
	Payload    Submission
	Receipt    string
	CreatedBy  int64
}

// ListPaymentsRequest filters the payment listing.
type ListPaymentsRequest struct {
	CustomerID int64
	BranchID   int64
	Limit      int
}
