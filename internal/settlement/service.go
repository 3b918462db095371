package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/surtidor-erp/surtidor-erp/internal/shared"
)

// RepositoryPort defines data access methods for settlements.
type RepositoryPort interface {
	CreatePayment(ctx context.Context, input CreatePaymentInput) (*Payment, error)
	GetPayment(ctx context.Context, id int64) (*Payment, error)
	ListPayments(ctx context.Context, req ListPaymentsRequest) ([]Payment, error)
	ListOpenDocuments(ctx context.Context, customerID int64) ([]Document, error)
}

// SettingsProvider resolves the financial parameters for a branch.
type SettingsProvider interface {
	Get(ctx context.Context, branchID int64) (Settings, error)
}

// AuditRecorder captures audit events.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// ReceiptNotifier enqueues the post-submission receipt notification.
type ReceiptNotifier interface {
	EnqueueReceipt(ctx context.Context, paymentID int64, receipt string) error
}

// IdempotencyGuard ensures a submission key is processed once.
type IdempotencyGuard interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// PaymentMetrics counts registered payments and their SALDO; satisfied by
// observability.Metrics.
type PaymentMetrics interface {
	RecordPayment(result string, diff float64)
}

// ErrSubmissionBlocked indicates tendered items with validation issues; the
// preview still computes, but a payment cannot be registered with them.
var ErrSubmissionBlocked = errors.New("settlement: valores incompletos")

const idempotencyModule = "settlement"

// Service orchestrates settlement previews, refinancing plans and payment
// submission.
type Service struct {
	engine      *Engine
	repo        RepositoryPort
	settings    SettingsProvider
	audit       AuditRecorder
	notifier    ReceiptNotifier
	idempotency IdempotencyGuard
	metrics     PaymentMetrics
	logger      *slog.Logger
}

// NewService builds a Service instance. Audit, notifier and idempotency are
// optional; the service degrades gracefully without them.
func NewService(engine *Engine, repo RepositoryPort, settings SettingsProvider, audit AuditRecorder, notifier ReceiptNotifier, idempotency IdempotencyGuard, logger *slog.Logger) *Service {
	return &Service{
		engine:      engine,
		repo:        repo,
		settings:    settings,
		audit:       audit,
		notifier:    notifier,
		idempotency: idempotency,
		logger:      logger,
	}
}

// WithMetrics attaches the payment counters; nil leaves them off.
func (s *Service) WithMetrics(m PaymentMetrics) *Service {
	s.metrics = m
	return s
}

func (s *Service) recordMetric(result string, diff float64) {
	if s.metrics != nil {
		s.metrics.RecordPayment(result, diff)
	}
}

func (s *Service) resolveSettings(ctx context.Context, branchID int64, override *SettingsInput) Settings {
	st := DefaultSettings()
	if s.settings != nil {
		resolved, err := s.settings.Get(ctx, branchID)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("settings lookup failed, using defaults", slog.Int64("branch_id", branchID), slog.Any("error", err))
			}
		} else {
			st = resolved
		}
	}
	return override.ApplyTo(st)
}

// Preview recomputes one settlement round without side effects.
func (s *Service) Preview(ctx context.Context, req PreviewRequest) (Result, error) {
	if len(req.Documents) == 0 {
		return Result{}, errors.New("settlement: at least one document required")
	}
	st := s.resolveSettings(ctx, req.BranchID, req.Settings)

	docs := make([]Document, 0, len(req.Documents))
	for _, in := range req.Documents {
		docs = append(docs, in.ToDocument())
	}
	values := make([]ValueItem, 0, len(req.Values))
	for _, in := range req.Values {
		values = append(values, in.ToValueItem())
	}

	opts := AdjustOptions{PaymentType: PaymentOpenAccount, ForceDiscount: req.ForceDiscount}
	if req.PaymentType != "" {
		opts.PaymentType = PaymentType(req.PaymentType)
	}
	return s.engine.Recompute(docs, values, st, opts), nil
}

// Refinance plans an installment schedule for the outstanding balance.
func (s *Service) Refinance(ctx context.Context, req RefinanceRequest) ([]ValueItem, error) {
	st := s.resolveSettings(ctx, req.BranchID, req.Settings)
	return s.engine.PlanRefinancing(req.Balance, req.OffsetsDays, st, RefinanceOptions{
		NoDiscountCondition: req.NoDiscountCondition,
	})
}

// SubmitPayment validates, recomputes and registers a payment. A nonzero SALDO
// does not block submission (the operator decides); incomplete value items do.
func (s *Service) SubmitPayment(ctx context.Context, req SubmitPaymentRequest) (*Payment, error) {
	if req.CustomerID == 0 {
		return nil, errors.New("settlement: customer ID required")
	}
	res, err := s.Preview(ctx, req.PreviewRequest)
	if err != nil {
		return nil, err
	}
	if issues := collectIssues(res); len(issues) > 0 {
		s.recordMetric("blocked", res.Totals.Diff)
		return nil, fmt.Errorf("%w: %s", ErrSubmissionBlocked, strings.Join(issues, "; "))
	}

	if req.IdempotencyKey != "" && s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, req.IdempotencyKey, idempotencyModule); err != nil {
			return nil, err
		}
	}

	number := "COB-" + strings.ToUpper(uuid.NewString()[:8])
	payment, err := s.repo.CreatePayment(ctx, CreatePaymentInput{
		Number:     number,
		CustomerID: req.CustomerID,
		BranchID:   req.BranchID,
		Totals:     res.Totals,
		Payload:    BuildSubmission(res),
		Receipt:    RenderReceipt(res, s.engine.now()),
		CreatedBy:  req.CreatedBy,
	})
	if err != nil {
		if req.IdempotencyKey != "" && s.idempotency != nil {
			_ = s.idempotency.Delete(ctx, req.IdempotencyKey)
		}
		s.recordMetric("error", res.Totals.Diff)
		return nil, err
	}

	s.recordMetric("ok", payment.Diff)
	s.recordAudit(ctx, payment, req)
	if s.notifier != nil {
		if err := s.notifier.EnqueueReceipt(ctx, payment.ID, payment.Receipt); err != nil && s.logger != nil {
			s.logger.Warn("enqueue receipt notification", slog.Int64("payment_id", payment.ID), slog.Any("error", err))
		}
	}
	if s.logger != nil {
		s.logger.Info("payment registered",
			slog.String("number", payment.Number),
			slog.Int64("customer_id", payment.CustomerID),
			slog.Float64("net_to_apply", payment.NetToApply),
			slog.Float64("diff", payment.Diff))
	}
	return payment, nil
}

// GetReceipt returns the frozen receipt text of a registered payment.
func (s *Service) GetReceipt(ctx context.Context, paymentID int64) (string, error) {
	payment, err := s.repo.GetPayment(ctx, paymentID)
	if err != nil {
		return "", err
	}
	if payment == nil {
		return "", shared.ErrNotFound
	}
	return payment.Receipt, nil
}

// ListPayments returns registered payments.
func (s *Service) ListPayments(ctx context.Context, req ListPaymentsRequest) ([]Payment, error) {
	return s.repo.ListPayments(ctx, req)
}

// ListOpenDocuments returns a customer's outstanding documents for selection.
func (s *Service) ListOpenDocuments(ctx context.Context, customerID int64) ([]Document, error) {
	if customerID == 0 {
		return nil, errors.New("settlement: customer ID required")
	}
	return s.repo.ListOpenDocuments(ctx, customerID)
}

func (s *Service) recordAudit(ctx context.Context, payment *Payment, req SubmitPaymentRequest) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  req.CreatedBy,
		BranchID: payment.BranchID,
		Action:   "payment_submit",
		Entity:   "payments",
		EntityID: payment.Number,
		Meta: map[string]any{
			"payment_id":   payment.ID,
			"customer_id":  payment.CustomerID,
			"gross":        payment.Gross,
			"net_to_apply": payment.NetToApply,
			"diff":         payment.Diff,
		},
		At: payment.CreatedAt,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("record payment audit", slog.Any("error", err))
	}
}

func collectIssues(res Result) []string {
	var issues []string
	for i, vr := range res.Values {
		for _, issue := range vr.Issues {
			issues = append(issues, fmt.Sprintf("valor %d: %s", i+1, issue))
		}
	}
	return issues
}
