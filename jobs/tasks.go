package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReceiptNotify is the task type for delivering a payment receipt.
	TaskReceiptNotify = "collections:receipt_notify"
	// TaskSettingsWarmup is the task type for preloading the settings cache.
	TaskSettingsWarmup = "collections:settings_warmup"
)

// ReceiptNotifyPayload identifies the payment whose receipt must be delivered.
type ReceiptNotifyPayload struct {
	PaymentID int64  `json:"paymentId"`
	Receipt   string `json:"receipt"`
}

// NewReceiptNotifyTask constructs an Asynq task.
func NewReceiptNotifyTask(payload ReceiptNotifyPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReceiptNotify, data), nil
}

// SettingsWarmupPayload lists the branches to preload. An empty list warms the
// company-wide row only.
type SettingsWarmupPayload struct {
	BranchIDs []int64 `json:"branchIds"`
}

// NewSettingsWarmupTask constructs an Asynq task.
func NewSettingsWarmupTask(payload SettingsWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSettingsWarmup, data), nil
}
