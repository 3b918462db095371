package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/surtidor-erp/surtidor-erp/internal/observability"
	"github.com/surtidor-erp/surtidor-erp/internal/settings"
)

type stubReceipts struct {
	receipts map[int64]string
	calls    int
}

func (s *stubReceipts) GetReceipt(ctx context.Context, paymentID int64) (string, error) {
	s.calls++
	receipt, ok := s.receipts[paymentID]
	if !ok {
		return "", errors.New("payment not found")
	}
	return receipt, nil
}

func TestReceiptNotifyHandleInlinePayload(t *testing.T) {
	source := &stubReceipts{}
	job := NewReceiptNotifyJob(source, nil, observability.NewMetrics())

	task, err := NewReceiptNotifyTask(ReceiptNotifyPayload{PaymentID: 12, Receipt: "RESUMEN DE COBRANZA"})
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	require.Zero(t, source.calls)
}

func TestReceiptNotifyHandleLoadsMissingReceipt(t *testing.T) {
	source := &stubReceipts{receipts: map[int64]string{12: "RESUMEN DE COBRANZA"}}
	job := NewReceiptNotifyJob(source, nil, nil)

	task, err := NewReceiptNotifyTask(ReceiptNotifyPayload{PaymentID: 12})
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, 1, source.calls)
}

func TestReceiptNotifySkipsBadPayload(t *testing.T) {
	job := NewReceiptNotifyJob(nil, nil, nil)

	err := job.Handle(context.Background(), asynq.NewTask(TaskReceiptNotify, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)

	task, err := NewReceiptNotifyTask(ReceiptNotifyPayload{})
	require.NoError(t, err)
	require.ErrorIs(t, job.Handle(context.Background(), task), asynq.SkipRetry)
}

type stubSettingsRepo struct {
	gets int
}

func (s *stubSettingsRepo) Get(ctx context.Context, branchID int64) (*settings.Record, error) {
	s.gets++
	return nil, nil
}

func (s *stubSettingsRepo) Upsert(ctx context.Context, req settings.UpdateRequest) (*settings.Record, error) {
	return nil, errors.New("not implemented")
}

func TestSettingsWarmupHandle(t *testing.T) {
	repo := &stubSettingsRepo{}
	svc := settings.NewService(repo, nil, nil)
	job := NewSettingsWarmupJob(svc, nil, observability.NewMetrics())

	task, err := NewSettingsWarmupTask(SettingsWarmupPayload{BranchIDs: []int64{1, 2}})
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	// Each branch misses and falls back to the company-wide row.
	require.Equal(t, 4, repo.gets)
}
