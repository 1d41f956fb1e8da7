package invoices

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-books/meridian-books/internal/platform/httpx"
	"github.com/meridian-books/meridian-books/internal/shared"
)

// Handler manages invoice endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers invoice routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
}

// typeFromQuery maps the public sale|purchase parameter to the domain enum.
func typeFromQuery(raw string) (InvoiceType, bool) {
	switch strings.ToLower(raw) {
	case "sale":
		return TypeSale, true
	case "purchase":
		return TypePurchase, true
	case "":
		return "", true
	default:
		return "", false
	}
}

type createInvoiceRequest struct {
	Number      string  `json:"number" validate:"required,max=40"`
	Type        string  `json:"type" validate:"required,oneof=sale purchase"`
	Party       string  `json:"party" validate:"max=160"`
	AccountCode string  `json:"account_code" validate:"required"`
	Amount      float64 `json:"amount" validate:"gt=0"`
	InvoiceDate string  `json:"invoice_date"`
	DueDate     string  `json:"due_date"`
	TermDays    int     `json:"term_days" validate:"gte=0"`
}

type invoiceResponse struct {
	ID          int64   `json:"id"`
	Number      string  `json:"number"`
	Type        string  `json:"type"`
	Party       string  `json:"party"`
	AccountCode string  `json:"account_code"`
	Amount      float64 `json:"amount"`
	Status      string  `json:"status"`
	InvoiceDate string  `json:"invoice_date"`
	DueDate     string  `json:"due_date,omitempty"`
	TermDays    int     `json:"term_days"`
}

func toInvoiceResponse(inv Invoice) invoiceResponse {
	resp := invoiceResponse{
		ID:          inv.ID,
		Number:      inv.Number,
		Type:        strings.ToLower(string(inv.Type)),
		Party:       inv.Party,
		AccountCode: inv.AccountCode,
		Amount:      inv.Amount,
		Status:      string(inv.Status),
		InvoiceDate: inv.InvoiceDate.Format("2006-01-02"),
		TermDays:    inv.TermDays,
	}
	if !inv.DueAt.IsZero() {
		resp.DueDate = inv.DueAt.Format("2006-01-02")
	}
	return resp
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	tenant := shared.TenantFromContext(r.Context())
	invoiceType, ok := typeFromQuery(r.URL.Query().Get("type"))
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "type must be sale or purchase")
		return
	}
	invoices, err := h.service.List(r.Context(), tenant, ListFilter{
		Type:            invoiceType,
		OutstandingOnly: r.URL.Query().Get("outstanding") == "1",
	})
	if err != nil {
		h.logger.Error("list invoices", slog.String("tenant", tenant), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	meta := shared.NewPagination(page, perPage, len(invoices))
	start, end := meta.Bounds()

	out := make([]invoiceResponse, 0, end-start)
	for _, inv := range invoices[start:end] {
		out = append(out, toInvoiceResponse(inv))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"invoices": out,
		"pagination": map[string]int{
			"page":        meta.Page,
			"per_page":    meta.PerPage,
			"total":       meta.Total,
			"total_pages": meta.TotalPages,
		},
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	tenant := shared.TenantFromContext(r.Context())
	var req createInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	invoiceType, _ := typeFromQuery(req.Type)
	input := CreateInput{
		Tenant:      tenant,
		Number:      req.Number,
		Type:        invoiceType,
		Party:       req.Party,
		AccountCode: req.AccountCode,
		Amount:      req.Amount,
		TermDays:    req.TermDays,
	}
	if req.InvoiceDate != "" {
		d, err := time.Parse("2006-01-02", req.InvoiceDate)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invoice_date must be YYYY-MM-DD")
			return
		}
		input.InvoiceDate = d
	}
	if req.DueDate != "" {
		d, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "due_date must be YYYY-MM-DD")
			return
		}
		input.DueAt = d
	}
	invoice, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.logger.Warn("create invoice rejected", slog.String("tenant", tenant), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toInvoiceResponse(*invoice))
}
