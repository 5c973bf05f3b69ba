package notificationshandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"timecard/internal/domain/auth"
	"timecard/internal/domain/notifications"
	"timecard/internal/transport/http/api"
	"timecard/internal/transport/http/middleware"
	"timecard/internal/transport/http/shared"
)

type Handler struct {
	Service *notifications.Service
	Perms   middleware.PermissionChecker
}

func NewHandler(service *notifications.Service, perms middleware.PermissionChecker) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		read := middleware.RequirePermission(auth.PermNotificationsRead, h.Perms)
		r.With(read).Get("/", h.handleList)
		r.With(read).Put("/{notificationID}/read", h.handleMarkRead)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	page := shared.ParsePagination(r, 50, 200)
	items, err := h.Service.List(r.Context(), user.UserID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "notifications_error", "failed to list notifications", reqID)
		return
	}
	total, err := h.Service.Count(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "notifications_error", "failed to count notifications", reqID)
		return
	}
	api.Success(w, map[string]any{"items": items, "total": total}, reqID)
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	id := chi.URLParam(r, "notificationID")
	if err := h.Service.MarkRead(r.Context(), user.UserID, id); err != nil {
		api.Fail(w, http.StatusInternalServerError, "notifications_error", "failed to mark notification read", reqID)
		return
	}
	api.Success(w, map[string]string{"id": id}, reqID)
}
