package accounts

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-books/meridian-books/internal/coa"
	"github.com/meridian-books/meridian-books/internal/platform/httpx"
	"github.com/meridian-books/meridian-books/internal/shared"
)

// Handler manages chart of accounts endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers chart of accounts routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{code}", h.get)
	r.Put("/{code}", h.update)
	r.Delete("/{code}", h.delete)
}

type createAccountRequest struct {
	ParentCode    string  `json:"parent_code" validate:"required"`
	Name          string  `json:"name" validate:"required,min=2,max=120"`
	Kind          string  `json:"kind" validate:"omitempty,oneof=GROUP DETAIL"`
	OpeningDebit  float64 `json:"opening_debit" validate:"gte=0"`
	OpeningCredit float64 `json:"opening_credit" validate:"gte=0"`
}

type updateAccountRequest struct {
	Name          *string  `json:"name" validate:"omitempty,min=2,max=120"`
	Kind          *string  `json:"kind" validate:"omitempty,oneof=GROUP DETAIL"`
	IsActive      *bool    `json:"is_active"`
	OpeningDebit  *float64 `json:"opening_debit" validate:"omitempty,gte=0"`
	OpeningCredit *float64 `json:"opening_credit" validate:"omitempty,gte=0"`
	Code          *string  `json:"code"`
	ParentCode    *string  `json:"parent_code"`
}

type accountResponse struct {
	Code          string   `json:"code"`
	Name          string   `json:"name"`
	Kind          string   `json:"kind"`
	Type          string   `json:"type"`
	ParentCode    string   `json:"parent_code,omitempty"`
	OpeningDebit  float64  `json:"opening_debit"`
	OpeningCredit float64  `json:"opening_credit"`
	IsActive      bool     `json:"is_active"`
	Path          []string `json:"path,omitempty"`
}

func toAccountResponse(a coa.Account) accountResponse {
	return accountResponse{
		Code:          a.Code,
		Name:          a.Name,
		Kind:          string(a.Kind),
		Type:          string(a.Type),
		ParentCode:    a.ParentCode,
		OpeningDebit:  a.Opening.Debit,
		OpeningCredit: a.Opening.Credit,
		IsActive:      a.IsActive,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	tenant := shared.TenantFromContext(r.Context())
	accounts, err := h.service.List(r.Context(), tenant)
	if err != nil {
		h.logger.Error("list accounts", slog.String("tenant", tenant), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"accounts": out})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	tenant := shared.TenantFromContext(r.Context())
	code := chi.URLParam(r, "code")
	acc, err := h.service.ResolveDetail(r.Context(), tenant, code)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	resp := toAccountResponse(*acc)
	if path, err := h.service.PathOf(r.Context(), tenant, code); err == nil {
		resp.Path = path
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	tenant := shared.TenantFromContext(r.Context())
	var req createAccountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	account, err := h.service.Create(r.Context(), tenant, coa.AddInput{
		ParentCode: req.ParentCode,
		Name:       req.Name,
		Kind:       coa.AccountKind(req.Kind),
		Opening:    coa.OpeningBalance{Debit: req.OpeningDebit, Credit: req.OpeningCredit},
	})
	if err != nil {
		h.logger.Warn("create account rejected", slog.String("tenant", tenant), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toAccountResponse(withoutChildren(account)))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	tenant := shared.TenantFromContext(r.Context())
	code := chi.URLParam(r, "code")
	var req updateAccountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	patch := coa.UpdatePatch{
		Name:       req.Name,
		IsActive:   req.IsActive,
		Code:       req.Code,
		ParentCode: req.ParentCode,
	}
	if req.Kind != nil {
		kind := coa.AccountKind(*req.Kind)
		patch.Kind = &kind
	}
	if req.OpeningDebit != nil || req.OpeningCredit != nil {
		// Seed from the stored balance so a partial body keeps the other side.
		current, err := h.service.ResolveDetail(r.Context(), tenant, code)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		opening := current.Opening
		if req.OpeningDebit != nil {
			opening.Debit = *req.OpeningDebit
		}
		if req.OpeningCredit != nil {
			opening.Credit = *req.OpeningCredit
		}
		patch.Opening = &opening
	}
	account, err := h.service.Update(r.Context(), tenant, code, patch)
	if err != nil {
		h.logger.Warn("update account rejected", slog.String("tenant", tenant),
			slog.String("code", code), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAccountResponse(withoutChildren(account)))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	tenant := shared.TenantFromContext(r.Context())
	code := chi.URLParam(r, "code")
	cascade := r.URL.Query().Get("cascade") == "1"
	if err := h.service.Delete(r.Context(), tenant, code, cascade); err != nil {
		h.logger.Warn("delete account rejected", slog.String("tenant", tenant),
			slog.String("code", code), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
