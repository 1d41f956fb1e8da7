package vouchers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-books/meridian-books/internal/platform/httpx"
	"github.com/meridian-books/meridian-books/internal/shared"
)

// Handler manages journal voucher endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers voucher routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
}

type voucherLineRequest struct {
	AccountCode string  `json:"account_code" validate:"required"`
	Debit       float64 `json:"debit" validate:"gte=0"`
	Credit      float64 `json:"credit" validate:"gte=0"`
}

type createVoucherRequest struct {
	Date        string               `json:"date" validate:"required"`
	Description string               `json:"description" validate:"max=500"`
	Lines       []voucherLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type voucherLineResponse struct {
	AccountCode string  `json:"account_code"`
	Debit       float64 `json:"debit"`
	Credit      float64 `json:"credit"`
}

type voucherResponse struct {
	ID          string                `json:"id"`
	Number      int64                 `json:"number"`
	Date        string                `json:"date"`
	Description string                `json:"description"`
	Lines       []voucherLineResponse `json:"lines"`
	TotalDebit  float64               `json:"total_debit"`
	TotalCredit float64               `json:"total_credit"`
}

func toVoucherResponse(v Voucher) voucherResponse {
	lines := make([]voucherLineResponse, 0, len(v.Lines))
	for _, l := range v.Lines {
		lines = append(lines, voucherLineResponse{AccountCode: l.AccountCode, Debit: l.Debit, Credit: l.Credit})
	}
	return voucherResponse{
		ID:          v.ID.String(),
		Number:      v.Number,
		Date:        v.Date.Format("2006-01-02"),
		Description: v.Description,
		Lines:       lines,
		TotalDebit:  v.TotalDebit(),
		TotalCredit: v.TotalCredit(),
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	tenant := shared.TenantFromContext(r.Context())
	vouchers, err := h.service.List(r.Context(), tenant)
	if err != nil {
		h.logger.Error("list vouchers", slog.String("tenant", tenant), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]voucherResponse, 0, len(vouchers))
	for _, v := range vouchers {
		out = append(out, toVoucherResponse(v))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"vouchers": out})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	tenant := shared.TenantFromContext(r.Context())
	var req createVoucherRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must be YYYY-MM-DD")
		return
	}
	lines := make([]Line, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, Line{AccountCode: l.AccountCode, Debit: l.Debit, Credit: l.Credit})
	}
	voucher, err := h.service.Create(r.Context(), CreateInput{
		Tenant:      tenant,
		Date:        date,
		Description: req.Description,
		Lines:       lines,
	})
	if err != nil {
		h.logger.Warn("create voucher rejected", slog.String("tenant", tenant), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toVoucherResponse(*voucher))
}
