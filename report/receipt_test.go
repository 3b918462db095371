package report

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReceiptHTMLEscapesContent(t *testing.T) {
	out := ReceiptHTML("SALDO: $0.00\n<script>alert(1)</script>")
	require.Contains(t, out, "SALDO: $0.00")
	require.Contains(t, out, "&lt;script&gt;")
	require.NotContains(t, out, "<script>")
	require.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
}

func TestRenderReceiptPostsToGotenberg(t *testing.T) {
	var gotPath, gotPaperWidth string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		gotPaperWidth = r.FormValue("paperWidth")
		file, _, err := r.FormFile("files")
		if err != nil {
			t.Errorf("form file: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer func() { _ = file.Close() }()
		buf := make([]byte, 4096)
		n, _ := file.Read(buf)
		gotBody = buf[:n]
		w.Write([]byte("%PDF-1.4"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	pdf, err := client.RenderReceipt(context.Background(), "RESUMEN DE COBRANZA")
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.4", string(pdf))
	require.Equal(t, "/forms/chromium/convert/html", gotPath)
	require.Equal(t, "5.8", gotPaperWidth)
	require.Contains(t, string(gotBody), "RESUMEN DE COBRANZA")
}
