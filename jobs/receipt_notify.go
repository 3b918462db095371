package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/surtidor-erp/surtidor-erp/internal/observability"
)

// ReceiptSource loads the frozen receipt text of a registered payment.
type ReceiptSource interface {
	GetReceipt(ctx context.Context, paymentID int64) (string, error)
}

// ReceiptNotifyJob delivers the receipt to the customer after submission.
// Delivery is currently a structured log line; the WhatsApp gateway hookup is
// pending on the provider contract.
type ReceiptNotifyJob struct {
	Payments ReceiptSource
	Logger   *slog.Logger
	Metrics  *observability.Metrics
}

// NewReceiptNotifyJob wires dependencies for the receipt handler.
func NewReceiptNotifyJob(payments ReceiptSource, logger *slog.Logger, metrics *observability.Metrics) *ReceiptNotifyJob {
	return &ReceiptNotifyJob{Payments: payments, Logger: logger, Metrics: metrics}
}

// Handle processes receipt delivery tasks.
func (j *ReceiptNotifyJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("receipt notify: handler not configured")
	}
	var payload ReceiptNotifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.PaymentID == 0 {
		return asynq.SkipRetry
	}

	receipt := payload.Receipt
	if receipt == "" && j.Payments != nil {
		loaded, err := j.Payments.GetReceipt(ctx, payload.PaymentID)
		if err != nil {
			j.Metrics.RecordJob(TaskReceiptNotify, "error")
			return err
		}
		receipt = loaded
	}

	if j.Logger != nil {
		j.Logger.Info("receipt ready for delivery",
			slog.Int64("payment_id", payload.PaymentID),
			slog.Int("receipt_bytes", len(receipt)))
	}
	j.Metrics.RecordJob(TaskReceiptNotify, "ok")
	return nil
}
