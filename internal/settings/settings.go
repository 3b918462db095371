// Package settings stores the per-branch collection parameters: the annual
// financial interest rate and the grace windows for cheques and documents.
// Branch 0 holds the company-wide values; a branch row overrides them.
package settings

import (
	"time"

	"github.com/surtidor-erp/surtidor-erp/internal/settlement"
)

// Record is one persisted settings row.
type Record struct {
	BranchID           int64     `json:"branchId"`
	AnnualInterestPct  float64   `json:"annualInterestPct"`
	ChequeGraceDays    int       `json:"chequeGraceDays"`
	DocumentsGraceDays int       `json:"documentsGraceDays"`
	UpdatedBy          int64     `json:"updatedBy"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// ToSettings converts the row into the calculator's parameter set.
func (r Record) ToSettings() settlement.Settings {
	cheque := r.ChequeGraceDays
	docs := r.DocumentsGraceDays
	return settlement.Settings{
		AnnualInterestPct:  r.AnnualInterestPct,
		ChequeGraceDays:    &cheque,
		DocumentsGraceDays: &docs,
	}
}

// DefaultRecord returns the documented fallback values for a branch.
func DefaultRecord(branchID int64) Record {
	st := settlement.DefaultSettings()
	return Record{
		BranchID:           branchID,
		AnnualInterestPct:  st.AnnualInterestPct,
		ChequeGraceDays:    *st.ChequeGraceDays,
		DocumentsGraceDays: *st.DocumentsGraceDays,
	}
}

// UpdateRequest carries one settings mutation.
type UpdateRequest struct {
	BranchID           int64   `json:"branchId"`
	AnnualInterestPct  float64 `json:"annualInterestPct" validate:"required,gt=0,lte=1000"`
	ChequeGraceDays    int     `json:"chequeGraceDays" validate:"gte=0,lte=365"`
	DocumentsGraceDays int     `json:"documentsGraceDays" validate:"gte=0,lte=365"`
	UpdatedBy          int64   `json:"updatedBy"`
}
