package accounts

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/meridian-books/meridian-books/internal/coa"
	"github.com/meridian-books/meridian-books/internal/shared"
)

func newTestRouter(t *testing.T) (*Service, http.Handler) {
	t.Helper()
	svc := NewService(newMemoryChartRepo(), staticProbe{})
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)
	r := chi.NewRouter()
	r.Route("/accounts", func(r chi.Router) {
		h.MountRoutes(r)
	})
	return svc, r
}

func TestUpdateKeepsUntouchedOpeningSide(t *testing.T) {
	svc, router := newTestRouter(t)

	_, err := svc.Create(context.Background(), shared.DefaultTenant, coa.AddInput{
		ParentCode: "1000",
		Name:       "Cash",
		Opening:    coa.OpeningBalance{Debit: 250},
	})
	require.NoError(t, err)

	// Patching only the credit side must leave the stored debit alone.
	req := httptest.NewRequest(http.MethodPut, "/accounts/10001",
		strings.NewReader(`{"opening_credit": 40}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp accountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 250.0, resp.OpeningDebit)
	require.Equal(t, 40.0, resp.OpeningCredit)
}

func TestCreateBlankNameIsBadRequest(t *testing.T) {
	_, router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/accounts",
		strings.NewReader(`{"parent_code": "1000", "name": "  "}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
