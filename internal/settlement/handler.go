package settlement

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/surtidor-erp/surtidor-erp/internal/platform/httpx"
	"github.com/surtidor-erp/surtidor-erp/internal/shared"
)

// PDFRenderer converts a plain-text receipt into a PDF document.
type PDFRenderer interface {
	RenderReceipt(ctx context.Context, receipt string) ([]byte, error)
}

// Handler exposes the settlement API.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	pdf      PDFRenderer
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// WithPDFRenderer enables the PDF receipt endpoint.
func (h *Handler) WithPDFRenderer(pdf PDFRenderer) *Handler {
	h.pdf = pdf
	return h
}

// MountRoutes registers settlement routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/settlements/preview", h.preview)
	r.Post("/settlements/refinance", h.refinance)
	r.Post("/payments", h.submitPayment)
	r.Get("/payments", h.listPayments)
	r.Get("/payments/{id}/receipt", h.paymentReceipt)
	r.Get("/payments/{id}/receipt.pdf", h.paymentReceiptPDF)
	r.Get("/documents", h.listOpenDocuments)
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "cuerpo JSON inválido")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	res, err := h.service.Preview(r.Context(), req)
	if err != nil {
		h.logger.Error("settlement preview", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", shared.UserSafeMessage(err))
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

func (h *Handler) refinance(w http.ResponseWriter, r *http.Request) {
	var req RefinanceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "cuerpo JSON inválido")
		return
	}
	items, err := h.service.Refinance(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNothingToRefinance), errors.Is(err, ErrNoTerms):
			httpx.Problem(w, http.StatusUnprocessableEntity, "Refinancing Precondition", err.Error())
		default:
			h.logger.Error("refinance plan", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		}
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"values": items})
}

func (h *Handler) submitPayment(w http.ResponseWriter, r *http.Request) {
	var req SubmitPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "cuerpo JSON inválido")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if key := r.Header.Get("Idempotency-Key"); key != "" && req.IdempotencyKey == "" {
		req.IdempotencyKey = key
	}
	payment, err := h.service.SubmitPayment(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrSubmissionBlocked):
			httpx.Problem(w, http.StatusUnprocessableEntity, "Submission Blocked", err.Error())
		case errors.Is(err, shared.ErrIdempotencyConflict):
			httpx.Problem(w, http.StatusConflict, "Duplicate", shared.UserSafeMessage(err))
		default:
			h.logger.Error("submit payment", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", shared.UserSafeMessage(err))
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, payment)
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	customerID, _ := strconv.ParseInt(r.URL.Query().Get("customer_id"), 10, 64)
	branchID, _ := strconv.ParseInt(r.URL.Query().Get("branch_id"), 10, 64)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	payments, err := h.service.ListPayments(r.Context(), ListPaymentsRequest{
		CustomerID: customerID,
		BranchID:   branchID,
		Limit:      limit,
	})
	if err != nil {
		h.logger.Error("list payments", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"payments": payments})
}

func (h *Handler) paymentReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "id inválido")
		return
	}
	receipt, err := h.service.GetReceipt(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", shared.UserSafeMessage(err))
			return
		}
		h.logger.Error("payment receipt", slog.Any("error", err), slog.Int64("id", id))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(receipt))
}

func (h *Handler) paymentReceiptPDF(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil {
		httpx.Problem(w, http.StatusNotImplemented, "Not Available", "la exportación a PDF no está configurada")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "id inválido")
		return
	}
	receipt, err := h.service.GetReceipt(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", shared.UserSafeMessage(err))
			return
		}
		h.logger.Error("payment receipt", slog.Any("error", err), slog.Int64("id", id))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	pdf, err := h.pdf.RenderReceipt(r.Context(), receipt)
	if err != nil {
		h.logger.Error("render receipt pdf", slog.Any("error", err), slog.Int64("id", id))
		httpx.Problem(w, http.StatusBadGateway, "Render Failed", "no se pudo generar el PDF")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename=recibo.pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *Handler) listOpenDocuments(w http.ResponseWriter, r *http.Request) {
	customerID, _ := strconv.ParseInt(r.URL.Query().Get("customer_id"), 10, 64)
	docs, err := h.service.ListOpenDocuments(r.Context(), customerID)
	if err != nil {
		h.logger.Error("list open documents", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", shared.UserSafeMessage(err))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"documents": docs})
}
