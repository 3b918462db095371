package settlement

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

type stubPDF struct{}

func (stubPDF) RenderReceipt(ctx context.Context, receipt string) ([]byte, error) {
	return []byte("%PDF-1.4 " + receipt[:10]), nil
}

func newTestRouter(t *testing.T) (*chi.Mux, *memoryPaymentRepo) {
	t.Helper()
	repo := newMemoryPaymentRepo()
	svc := newTestService(repo, staticSettings{st: DefaultSettings()}, nil, nil, &memoryIdempotency{})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(logger, svc).WithPDFRenderer(stubPDF{})

	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r, repo
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

const previewBody = `{
	"branchId": 1,
	"documents": [
		{"documentId": 1, "number": "FC 0001-00001234", "issueDate": "2026-08-20", "balance": 10000}
	],
	"values": [
		{"method": "cash", "amount": 8700}
	]
}`

func TestHandlerPreview(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := doRequest(t, router, http.MethodPost, "/settlements/preview", previewBody)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "\"Diff\":0")
}

func TestHandlerPreviewValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := doRequest(t, router, http.MethodPost, "/settlements/preview", `{"documents": []}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doRequest(t, router, http.MethodPost, "/settlements/preview", "{")
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandlerSubmitAndReceipt(t *testing.T) {
	router, _ := newTestRouter(t)

	body := strings.Replace(previewBody, `"branchId": 1,`, `"branchId": 1, "customerId": 77,`, 1)
	rr := doRequest(t, router, http.MethodPost, "/payments", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = doRequest(t, router, http.MethodGet, "/payments/1/receipt", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "text/plain; charset=utf-8", rr.Header().Get("Content-Type"))
	require.Contains(t, rr.Body.String(), "RESUMEN DE COBRANZA")

	rr = doRequest(t, router, http.MethodGet, "/payments/1/receipt.pdf", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	require.True(t, strings.HasPrefix(rr.Body.String(), "%PDF"))

	rr = doRequest(t, router, http.MethodGet, "/payments/99/receipt", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandlerSubmitIdempotencyHeader(t *testing.T) {
	router, _ := newTestRouter(t)

	body := strings.Replace(previewBody, `"branchId": 1,`, `"branchId": 1, "customerId": 77,`, 1)

	req := httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "hdr-001")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	req = httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "hdr-001")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusConflict, rr.Code)
}

func TestHandlerRefinance(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := doRequest(t, router, http.MethodPost, "/settlements/refinance", `{"balance": 100000, "offsetsDays": [30, 60, 90]}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "values")

	rr = doRequest(t, router, http.MethodPost, "/settlements/refinance", `{"balance": 0, "offsetsDays": [30]}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}
