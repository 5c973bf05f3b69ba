package audithandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"timecard/internal/domain/audit"
	"timecard/internal/domain/auth"
	"timecard/internal/transport/http/api"
	"timecard/internal/transport/http/middleware"
	"timecard/internal/transport/http/shared"
)

type Handler struct {
	Service *audit.Service
	Perms   middleware.PermissionChecker
}

func NewHandler(service *audit.Service, perms middleware.PermissionChecker) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermAuditRead, h.Perms)
	r.With(read).Get("/audit", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	filter := audit.Filter{
		Action:     r.URL.Query().Get("action"),
		EntityType: r.URL.Query().Get("entityType"),
		ActorID:    r.URL.Query().Get("actorId"),
	}
	page := shared.ParsePagination(r, 50, 200)

	items, err := h.Service.List(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_error", "failed to list audit events", reqID)
		return
	}
	total, err := h.Service.Count(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_error", "failed to count audit events", reqID)
		return
	}
	api.Success(w, map[string]any{"items": items, "total": total}, reqID)
}
