package apiclient

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/DataRockMyWorld/workshopctl/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pdfBody = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

func TestDownload(t *testing.T) {
	var auth string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/invoices/3/pdf/", func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(pdfBody)
	})
	c, _, _ := newTestClient(t, mux, session.Record{Access: "a1", Refresh: "r1"})
	dir := t.TempDir()

	tests := []struct {
		name     string
		filename string
		expected string
	}{
		{name: "named", filename: "invoice-3.pdf", expected: "invoice-3.pdf"},
		{name: "default name gets sniffed extension", filename: "", expected: "download.pdf"},
		{name: "name without extension", filename: "invoice-3", expected: "invoice-3.pdf"},
		{name: "path components stripped", filename: "../../etc/invoice.pdf", expected: "invoice.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest, err := c.Download(context.Background(), "invoices/3/pdf/", tt.filename, dir)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, tt.expected), dest)

			data, err := os.ReadFile(dest)
			require.NoError(t, err)
			assert.Equal(t, pdfBody, data)
			assert.Equal(t, "Bearer a1", auth)
		})
	}
}

func TestDownload_ErrorNoRefresh(t *testing.T) {
	var refreshCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/reports/export/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/auth/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls++
	})
	c, sess, _ := newTestClient(t, mux, session.Record{Access: "a1", Refresh: "r1"})

	_, err := c.Download(context.Background(), "reports/export/", "report.csv", t.TempDir())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Unauthorized", apiErr.Detail())
	assert.Equal(t, "Unauthorized", ErrorMessage(err))
	assert.Zero(t, refreshCalls)
	assert.Equal(t, session.Authenticated, sess.State())
}
