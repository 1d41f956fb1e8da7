package reports

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-books/meridian-books/internal/invoices"
	"github.com/meridian-books/meridian-books/internal/platform/httpx"
	"github.com/meridian-books/meridian-books/internal/shared"
)

// Handler serves derived financial reports as JSON or XLSX downloads.
type Handler struct {
	logger  *slog.Logger
	service *Service
	now     func() time.Time
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, now: time.Now}
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/trial-balance", h.trialBalance)
	r.Get("/general-ledger", h.generalLedger)
	r.Get("/aging", h.aging)
}

func asOfFromQuery(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("as_of")
	if raw == "" {
		return time.Time{}, nil
	}
	asOf, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("as_of must be YYYY-MM-DD")
	}
	return asOf, nil
}

func wantsXLSX(r *http.Request) bool {
	return strings.EqualFold(r.URL.Query().Get("format"), "xlsx")
}

func serveXLSX(w http.ResponseWriter, filename string, payload []byte) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func (h *Handler) trialBalance(w http.ResponseWriter, r *http.Request) {
	tenant := shared.TenantFromContext(r.Context())
	asOf, err := asOfFromQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	view, err := h.service.TrialBalance(r.Context(), tenant, asOf)
	if err != nil {
		h.logger.Error("trial balance build", slog.String("tenant", tenant), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if wantsXLSX(r) {
		payload, err := BuildTrialBalanceXLSX(view)
		if err != nil {
			h.logger.Error("trial balance export", slog.String("tenant", tenant), slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		serveXLSX(w, "trial-balance.xlsx", payload)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) generalLedger(w http.ResponseWriter, r *http.Request) {
	tenant := shared.TenantFromContext(r.Context())
	asOf, err := asOfFromQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	var codes []string
	if raw := r.URL.Query().Get("account"); raw != "" {
		for _, code := range strings.Split(raw, ",") {
			if code = strings.TrimSpace(code); code != "" {
				codes = append(codes, code)
			}
		}
	}
	view, err := h.service.GeneralLedger(r.Context(), tenant, codes, asOf)
	if err != nil {
		h.logger.Error("general ledger build", slog.String("tenant", tenant), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if wantsXLSX(r) {
		payload, err := BuildGeneralLedgerXLSX(view)
		if err != nil {
			h.logger.Error("general ledger export", slog.String("tenant", tenant), slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		serveXLSX(w, "general-ledger.xlsx", payload)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) aging(w http.ResponseWriter, r *http.Request) {
	tenant := shared.TenantFromContext(r.Context())
	var invoiceType invoices.InvoiceType
	switch strings.ToLower(r.URL.Query().Get("type")) {
	case "", "sale", "receivable":
		invoiceType = invoices.TypeSale
	case "purchase", "payable":
		invoiceType = invoices.TypePurchase
	default:
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "type must be sale or purchase")
		return
	}
	asOf, err := asOfFromQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if asOf.IsZero() {
		asOf = h.now().UTC()
	}
	view, err := h.service.Aging(r.Context(), tenant, invoiceType, asOf)
	if err != nil {
		h.logger.Error("aging build", slog.String("tenant", tenant), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if wantsXLSX(r) {
		payload, err := BuildAgingXLSX(view)
		if err != nil {
			h.logger.Error("aging export", slog.String("tenant", tenant), slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		serveXLSX(w, "aging.xlsx", payload)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}
