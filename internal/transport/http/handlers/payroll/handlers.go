package payrollhandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"milpay/internal/domain/audit"
	"milpay/internal/domain/payroll"
	"milpay/internal/platform/requestctx"
	"milpay/internal/transport/http/api"
	"milpay/internal/transport/http/middleware"
	"milpay/internal/transport/http/shared"
)

type Handler struct {
	Service *payroll.Service
	Audit   *audit.Service
}

func NewHandler(service *payroll.Service) *Handler {
	return &Handler{Service: service}
}

// recordAudit is best effort. A failed write is logged, never surfaced.
func (h *Handler) recordAudit(r *http.Request, actor, action, entityID string, details any) {
	if h.Audit == nil {
		return
	}
	reqID := requestctx.GetRequestID(r.Context())
	if err := h.Audit.Record(r.Context(), actor, action, "payroll", entityID, reqID, r.RemoteAddr, details); err != nil {
		slog.Warn("audit record failed", "action", action, "entityId", entityID, "err", err)
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.Get("/active-personnel", h.handleActivePersonnel)
		r.Post("/approve", h.handleApprove)
		r.Get("/history", h.handleHistory)
		r.Get("/{payrollID}", h.handleGetByID)
		r.Delete("/{payrollID}", h.handleDelete)
		r.Get("/{payrollID}/export/pdf", h.handleExportRegister)
	})
}

func (h *Handler) handleActivePersonnel(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	preview, err := h.Service.ActivePersonnel(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payroll_preview_failed", "failed to fetch active personnel", reqID)
		return
	}
	api.Success(w, preview, reqID)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var req payroll.ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	batch, err := h.Service.Approve(r.Context(), req, user.FullName)
	switch {
	case errors.Is(err, payroll.ErrMissingPeriod), errors.Is(err, payroll.ErrNoPersonnel):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), reqID)
		return
	case errors.Is(err, payroll.ErrDuplicatePeriod):
		api.Fail(w, http.StatusConflict, "duplicate_period",
			fmt.Sprintf("payroll for %s %d already exists", req.Month, req.Year), reqID)
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "payroll_approve_failed", "failed to approve payroll", reqID)
		return
	}
	h.recordAudit(r, user.FullName, audit.ActionPayrollApprove, batch.ID, map[string]any{
		"month":       batch.Month,
		"year":        batch.Year,
		"totalAmount": batch.TotalAmount,
		"count":       len(batch.Personnel),
	})
	api.Created(w, batch, reqID)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())

	var filter payroll.HistoryFilter
	if raw := r.URL.Query().Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_filter", "year must be an integer", reqID)
			return
		}
		filter.Year = year
	}
	filter.Status = r.URL.Query().Get("status")
	limit := shared.ParseLimit(r, payroll.DefaultHistoryLimit)

	batches, err := h.Service.History(r.Context(), filter, limit)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payroll_history_failed", "failed to fetch payroll history", reqID)
		return
	}
	if batches == nil {
		batches = []payroll.Batch{}
	}
	api.Success(w, map[string]any{
		"payrolls": batches,
		"total":    len(batches),
		"limit":    limit,
	}, reqID)
}

func (h *Handler) handleGetByID(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	id := chi.URLParam(r, "payrollID")
	if _, err := uuid.Parse(id); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid id format", reqID)
		return
	}

	batch, err := h.Service.GetByID(r.Context(), id)
	if errors.Is(err, payroll.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payroll_get_failed", "failed to fetch payroll", reqID)
		return
	}
	api.Success(w, batch, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	id := chi.URLParam(r, "payrollID")
	if _, err := uuid.Parse(id); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid id format", reqID)
		return
	}

	err := h.Service.Delete(r.Context(), id)
	if errors.Is(err, payroll.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payroll_delete_failed", "failed to delete payroll", reqID)
		return
	}
	h.recordAudit(r, user.FullName, audit.ActionPayrollDelete, id, nil)
	api.Success(w, map[string]string{"status": "deleted"}, reqID)
}

func (h *Handler) handleExportRegister(w http.ResponseWriter, r *http.Request) {
	reqID := requestctx.GetRequestID(r.Context())
	id := chi.URLParam(r, "payrollID")
	if _, err := uuid.Parse(id); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid id format", reqID)
		return
	}

	pdfBytes, err := h.Service.RegisterPDF(r.Context(), id)
	if errors.Is(err, payroll.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payroll_export_failed", "failed to export payroll register", reqID)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=payroll-register-%s.pdf", id))
	_, _ = w.Write(pdfBytes)
}
