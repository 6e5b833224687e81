package rosterhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"milpay/internal/domain/audit"
	"milpay/internal/domain/roster"
	"milpay/internal/platform/requestctx"
	"milpay/internal/transport/http/api"
	"milpay/internal/transport/http/middleware"
	"milpay/internal/transport/http/shared"
)

type Handler struct {
	Store *roster.Store
	Audit *audit.Service
}

func NewHandler(store *roster.Store) *Handler {
	return &Handler{Store: store}
}

// recordAudit is best effort. A failed write is logged, never surfaced.
func (h *Handler) recordAudit(r *http.Request, actor, action, entityID string) {
	if h.Audit == nil {
		return
	}
	reqID := requestctx.GetRequestID(r.Context())
	if err := h.Audit.Record(r.Context(), actor, action, "soldier", entityID, reqID, r.RemoteAddr, nil); err != nil {
		slog.Warn("audit record failed", "action", action, "entityId", entityID, "err", err)
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/staff", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Get("/{soldierID}", h.handleGet)
		r.Put("/{soldierID}", h.handleUpdate)
		r.Patch("/{soldierID}/toggle-status", h.handleToggleStatus)
		r.Delete("/{soldierID}", h.handleDelete)
	})
}

// soldierPayload uses pointers so updates can distinguish "absent" from
// "set to empty".
type soldierPayload struct {
	FirstName     *string            `json:"firstName"`
	LastName      *string            `json:"lastName"`
	Rank          *string            `json:"rank"`
	ServiceNumber *string            `json:"serviceNumber"`
	Unit          *string            `json:"unit"`
	Corps         *string            `json:"corps"`
	BankName      *string            `json:"bankName"`
	AccountNumber *string            `json:"accountNumber"`
	Passport      *string            `json:"passport"`
	Salary        map[string]float64 `json:"salary"`
	Deductions    map[string]float64 `json:"deductions"`
	Status        *string            `json:"status"`
}

func strOr(p *string, fallback string) string {
	if p != nil {
		return *p
	}
	return fallback
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload soldierPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("firstName", strOr(payload.FirstName, ""), "first name is required")
	v.Required("lastName", strOr(payload.LastName, ""), "last name is required")
	v.Required("rank", strOr(payload.Rank, ""), "rank is required")
	v.Required("serviceNumber", strOr(payload.ServiceNumber, ""), "service number is required")
	if v.Reject(w, reqID) {
		return
	}

	soldier := roster.Soldier{
		FirstName:     strOr(payload.FirstName, ""),
		LastName:      strOr(payload.LastName, ""),
		Rank:          strOr(payload.Rank, ""),
		ServiceNumber: strOr(payload.ServiceNumber, ""),
		Unit:          strOr(payload.Unit, ""),
		Corps:         strOr(payload.Corps, ""),
		BankName:      strOr(payload.BankName, ""),
		AccountNumber: strOr(payload.AccountNumber, ""),
		Passport:      strOr(payload.Passport, ""),
		Salary:        payload.Salary,
		Deductions:    payload.Deductions,
		Status:        strOr(payload.Status, roster.StatusActive),
		CreatedBy:     user.FullName,
	}
	if soldier.Salary == nil {
		soldier.Salary = map[string]float64{}
	}
	if soldier.Deductions == nil {
		soldier.Deductions = map[string]float64{}
	}

	created, err := h.Store.Create(r.Context(), soldier)
	if errors.Is(err, roster.ErrDuplicateServiceNumber) {
		api.Fail(w, http.StatusConflict, "duplicate_service_number", err.Error(), reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "staff_create_failed", "failed to add personnel", reqID)
		return
	}
	h.recordAudit(r, user.FullName, audit.ActionRosterCreate, created.ID)
	api.Created(w, created, reqID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	soldiers, err := h.Store.List(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "staff_list_failed", "failed to list personnel", reqID)
		return
	}
	if soldiers == nil {
		soldiers = []roster.Soldier{}
	}
	api.Success(w, soldiers, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	id := chi.URLParam(r, "soldierID")
	if _, err := uuid.Parse(id); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid id format", reqID)
		return
	}

	soldier, err := h.Store.Get(r.Context(), id)
	if errors.Is(err, roster.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "staff_get_failed", "failed to fetch personnel", reqID)
		return
	}
	api.Success(w, soldier, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	id := chi.URLParam(r, "soldierID")
	if _, err := uuid.Parse(id); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid id format", reqID)
		return
	}

	var payload soldierPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	existing, err := h.Store.Get(r.Context(), id)
	if errors.Is(err, roster.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "staff_update_failed", "failed to update personnel", reqID)
		return
	}

	merged := *existing
	merged.FirstName = strOr(payload.FirstName, existing.FirstName)
	merged.LastName = strOr(payload.LastName, existing.LastName)
	merged.Rank = strOr(payload.Rank, existing.Rank)
	merged.ServiceNumber = strOr(payload.ServiceNumber, existing.ServiceNumber)
	merged.Unit = strOr(payload.Unit, existing.Unit)
	merged.Corps = strOr(payload.Corps, existing.Corps)
	merged.BankName = strOr(payload.BankName, existing.BankName)
	merged.AccountNumber = strOr(payload.AccountNumber, existing.AccountNumber)
	merged.Passport = strOr(payload.Passport, existing.Passport)
	merged.Status = strOr(payload.Status, existing.Status)
	// Component maps are replaced wholesale when supplied.
	if payload.Salary != nil {
		merged.Salary = payload.Salary
	}
	if payload.Deductions != nil {
		merged.Deductions = payload.Deductions
	}

	updated, err := h.Store.Update(r.Context(), id, merged)
	if errors.Is(err, roster.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), reqID)
		return
	}
	if errors.Is(err, roster.ErrDuplicateServiceNumber) {
		api.Fail(w, http.StatusConflict, "duplicate_service_number", err.Error(), reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "staff_update_failed", "failed to update personnel", reqID)
		return
	}
	h.recordAudit(r, user.FullName, audit.ActionRosterUpdate, id)
	api.Success(w, updated, reqID)
}

func (h *Handler) handleToggleStatus(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	id := chi.URLParam(r, "soldierID")
	if _, err := uuid.Parse(id); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid id format", reqID)
		return
	}

	soldier, err := h.Store.ToggleStatus(r.Context(), id)
	if errors.Is(err, roster.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "staff_toggle_failed", "failed to toggle status", reqID)
		return
	}
	h.recordAudit(r, user.FullName, audit.ActionRosterToggle, id)
	api.Success(w, soldier, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	id := chi.URLParam(r, "soldierID")
	if _, err := uuid.Parse(id); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid id format", reqID)
		return
	}

	err := h.Store.Delete(r.Context(), id)
	if errors.Is(err, roster.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "staff_delete_failed", "failed to delete personnel", reqID)
		return
	}
	h.recordAudit(r, user.FullName, audit.ActionRosterDelete, id)
	api.Success(w, map[string]string{"status": "deleted"}, reqID)
}
