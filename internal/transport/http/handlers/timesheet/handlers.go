package timesheethandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"timecard/internal/domain/audit"
	"timecard/internal/domain/auth"
	"timecard/internal/domain/directory"
	"timecard/internal/domain/notifications"
	"timecard/internal/domain/timesheet"
	"timecard/internal/transport/http/api"
	"timecard/internal/transport/http/middleware"
	"timecard/internal/transport/http/shared"
)

type Handler struct {
	Service *timesheet.Service
	Perms   middleware.PermissionChecker
	Notify  *notifications.Service
	Audit   *audit.Service
	Dir     *directory.Store
}

func NewHandler(service *timesheet.Service, perms middleware.PermissionChecker, notify *notifications.Service, auditSvc *audit.Service, dir *directory.Store) *Handler {
	return &Handler{Service: service, Perms: perms, Notify: notify, Audit: auditSvc, Dir: dir}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/timesheets", func(r chi.Router) {
		read := middleware.RequirePermission(auth.PermTimesheetsRead, h.Perms)
		write := middleware.RequirePermission(auth.PermTimesheetsWrite, h.Perms)
		approve := middleware.RequirePermission(auth.PermTimesheetsApprove, h.Perms)

		r.With(read).Get("/", h.handleList)
		r.With(write).Post("/", h.handleCreateOrUpdate)
		r.With(read).Get("/approvals/pending", h.handlePendingApprovals)
		r.With(read).Get("/stats/summary", h.handleStatsSummary)
		r.With(write).Post("/bulk-submit", h.handleBulkSubmit)
		r.With(approve).Post("/bulk-approve", h.handleBulkApprove)
		r.With(approve).Post("/bulk-reject", h.handleBulkReject)
		r.With(read).Get("/{timesheetID}", h.handleGet)
		r.With(write).Put("/{timesheetID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermTimesheetsDelete, h.Perms)).Delete("/{timesheetID}", h.handleDelete)
		r.With(write).Put("/{timesheetID}/submit", h.handleSubmit)
		r.With(approve).Put("/{timesheetID}/approve", h.handleApprove)
		r.With(approve).Put("/{timesheetID}/reject", h.handleReject)
		r.With(write).Put("/{timesheetID}/resubmit", h.handleResubmit)
	})
}

type draftPayload struct {
	EmployeeID    string `json:"employeeId"`
	ProjectID     string `json:"projectId"`
	TaskID        string `json:"taskId"`
	WeekStartDate string `json:"weekStartDate"`
	timesheet.DayHours
	Description string `json:"description"`
}

type idsPayload struct {
	IDs      []string `json:"ids"`
	Comments string   `json:"comments"`
}

type commentsPayload struct {
	Comments string `json:"comments"`
}

// failDomain translates domain errors into envelope responses.
func failDomain(w http.ResponseWriter, err error, reqID string) {
	var verr *timesheet.ValidationError
	switch {
	case errors.As(err, &verr):
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: verr.Field, Reason: verr.Reason}})
	case errors.Is(err, timesheet.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed for this timesheet", reqID)
	case errors.Is(err, timesheet.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "timesheet not found", reqID)
	case errors.Is(err, timesheet.ErrDuplicateWeekTask):
		api.Fail(w, http.StatusConflict, "duplicate_week_task", err.Error(), reqID)
	case errors.Is(err, timesheet.ErrInvalidState):
		api.Fail(w, http.StatusConflict, "invalid_state", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "timesheet_error", "timesheet operation failed", reqID)
	}
}

func (h *Handler) handleCreateOrUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload draftPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	v := shared.NewValidator()
	v.Required("projectId", payload.ProjectID, "is required")
	weekStart, _ := v.Date("weekStartDate", payload.WeekStartDate)
	if v.Reject(w, reqID) {
		return
	}

	ts, err := h.Service.CreateOrUpdateDraft(r.Context(), user, payload.EmployeeID, timesheet.DraftInput{
		ProjectID:     payload.ProjectID,
		TaskID:        payload.TaskID,
		WeekStartDate: weekStart,
		Hours:         payload.DayHours,
		Description:   payload.Description,
	})
	if err != nil {
		failDomain(w, err, reqID)
		return
	}
	h.audit(r, user, "timesheet.draft.save", ts.ID, ts)
	api.Created(w, ts, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	id := chi.URLParam(r, "timesheetID")

	existing, err := h.Service.Get(r.Context(), user, id)
	if err != nil {
		failDomain(w, err, reqID)
		return
	}

	var payload draftPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	ts, err := h.Service.CreateOrUpdateDraft(r.Context(), user, existing.EmployeeID, timesheet.DraftInput{
		ProjectID:     existing.ProjectID,
		TaskID:        existing.TaskID,
		WeekStartDate: existing.WeekStartDate,
		Hours:         payload.DayHours,
		Description:   payload.Description,
	})
	if err != nil {
		failDomain(w, err, reqID)
		return
	}
	h.audit(r, user, "timesheet.draft.save", ts.ID, ts)
	api.Success(w, ts, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	ts, err := h.Service.Get(r.Context(), user, chi.URLParam(r, "timesheetID"))
	if err != nil {
		failDomain(w, err, reqID)
		return
	}
	api.Success(w, ts, reqID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	filter := timesheet.Filter{
		Status:    r.URL.Query().Get("status"),
		ProjectID: r.URL.Query().Get("projectId"),
	}
	if employeeID := r.URL.Query().Get("employeeId"); employeeID != "" {
		filter.EmployeeIDs = []string{employeeID}
	}
	if raw := r.URL.Query().Get("year"); raw != "" {
		filter.Year, _ = strconv.Atoi(raw)
	}
	if raw := r.URL.Query().Get("week"); raw != "" {
		filter.WeekNumber, _ = strconv.Atoi(raw)
	}
	page := shared.ParsePagination(r, 50, 200)

	items, total, err := h.Service.List(r.Context(), user, filter, page.Limit, page.Offset)
	if err != nil {
		failDomain(w, err, reqID)
		return
	}
	api.Success(w, map[string]any{"items": items, "total": total}, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	id := chi.URLParam(r, "timesheetID")
	if err := h.Service.Delete(r.Context(), user, id); err != nil {
		failDomain(w, err, reqID)
		return
	}
	h.audit(r, user, "timesheet.delete", id, nil)
	api.Success(w, map[string]string{"id": id}, reqID)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	id := chi.URLParam(r, "timesheetID")
	submitted, err := h.Service.Submit(r.Context(), user, id)
	if err != nil {
		failDomain(w, err, reqID)
		return
	}
	h.audit(r, user, "timesheet.submit", id, map[string]int{"submitted": len(submitted)})
	if len(submitted) > 0 {
		h.notifyManager(r, submitted[0].EmployeeID, notifications.TypeTimesheetSubmitted,
			"Timesheets submitted", "A weekly timesheet is waiting for your review.")
	}
	api.Success(w, submitted, reqID)
}

func (h *Handler) handleBulkSubmit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	var payload idsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || len(payload.IDs) == 0 {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "ids are required", reqID)
		return
	}
	result, err := h.Service.BulkSubmit(r.Context(), user, payload.IDs)
	if err != nil {
		failDomain(w, err, reqID)
		return
	}
	h.audit(r, user, "timesheet.bulk_submit", "", map[string]int{
		"succeeded": len(result.Succeeded), "failed": len(result.Failed),
	})
	if len(result.Succeeded) > 0 {
		h.notifyManager(r, result.Succeeded[0].EmployeeID, notifications.TypeTimesheetSubmitted,
			"Timesheets submitted", "Weekly timesheets are waiting for your review.")
	}
	api.Success(w, result, reqID)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.handleDecision(w, r, "approve")
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.handleDecision(w, r, "reject")
}

func (h *Handler) handleDecision(w http.ResponseWriter, r *http.Request, action string) {
	user, ok := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	id := chi.URLParam(r, "timesheetID")

	var payload commentsPayload
	if r.Body != nil {
		// Comments are optional on approve; decode errors on an empty
		// body are not fatal.
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}

	var ts *timesheet.Timesheet
	var err error
	if action == "approve" {
		ts, err = h.Service.Approve(r.Context(), user, id, payload.Comments)
	} else {
		ts, err = h.Service.Reject(r.Context(), user, id, payload.Comments)
	}
	if err != nil {
		failDomain(w, err, reqID)
		return
	}

	h.audit(r, user, "timesheet."+action, ts.ID, map[string]string{"comments": payload.Comments})
	ntype := notifications.TypeTimesheetApproved
	title := "Timesheet approved"
	if action == "reject" {
		ntype = notifications.TypeTimesheetRejected
		title = "Timesheet rejected"
	}
	h.notifyEmployee(r, ts.EmployeeID, ntype, title, payload.Comments)
	api.Success(w, ts, reqID)
}

func (h *Handler) handleBulkApprove(w http.ResponseWriter, r *http.Request) {
	h.handleBulkDecision(w, r, "approve")
}

func (h *Handler) handleBulkReject(w http.ResponseWriter, r *http.Request) {
	h.handleBulkDecision(w, r, "reject")
}

func (h *Handler) handleBulkDecision(w http.ResponseWriter, r *http.Request, action string) {
	user, ok := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	var payload idsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || len(payload.IDs) == 0 {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "ids are required", reqID)
		return
	}

	var result *timesheet.BulkResult
	var err error
	if action == "approve" {
		result, err = h.Service.BulkApprove(r.Context(), user, payload.IDs, payload.Comments)
	} else {
		result, err = h.Service.BulkReject(r.Context(), user, payload.IDs, payload.Comments)
	}
	if err != nil {
		failDomain(w, err, reqID)
		return
	}

	h.audit(r, user, "timesheet.bulk_"+action, "", map[string]int{
		"succeeded": len(result.Succeeded), "failed": len(result.Failed),
	})
	ntype := notifications.TypeTimesheetApproved
	title := "Timesheet approved"
	if action == "reject" {
		ntype = notifications.TypeTimesheetRejected
		title = "Timesheet rejected"
	}
	for _, ts := range result.Succeeded {
		h.notifyEmployee(r, ts.EmployeeID, ntype, title, payload.Comments)
	}
	api.Success(w, result, reqID)
}

func (h *Handler) handleResubmit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	ts, err := h.Service.Resubmit(r.Context(), user, chi.URLParam(r, "timesheetID"))
	if err != nil {
		failDomain(w, err, reqID)
		return
	}
	h.audit(r, user, "timesheet.resubmit", ts.ID, nil)
	// The row is a draft again; the manager hears about it when the
	// corrected week is submitted.
	api.Success(w, ts, reqID)
}

func (h *Handler) handlePendingApprovals(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	page := shared.ParsePagination(r, 50, 200)
	items, total, err := h.Service.PendingApprovals(r.Context(), user, page.Limit, page.Offset)
	if err != nil {
		failDomain(w, err, reqID)
		return
	}
	api.Success(w, map[string]any{"items": items, "total": total}, reqID)
}

func (h *Handler) handleStatsSummary(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	year := 0
	if raw := r.URL.Query().Get("year"); raw != "" {
		year, _ = strconv.Atoi(raw)
	}
	stats, err := h.Service.StatsSummary(r.Context(), user, year)
	if err != nil {
		failDomain(w, err, reqID)
		return
	}
	api.Success(w, stats, reqID)
}

func (h *Handler) audit(r *http.Request, user auth.UserContext, action, entityID string, details any) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, action, "timesheet", entityID,
		middleware.GetRequestID(r.Context()), shared.ClientIP(r), details); err != nil {
		slog.Warn("audit "+action+" failed", "err", err)
	}
}

// notifyManager notifies the employee's direct manager, if any.
func (h *Handler) notifyManager(r *http.Request, employeeID, ntype, title, body string) {
	if h.Notify == nil || h.Dir == nil {
		return
	}
	employee, err := h.Dir.GetEmployee(r.Context(), employeeID)
	if err != nil || employee == nil || employee.ManagerID == "" {
		return
	}
	userID, err := h.Dir.UserIDForEmployee(r.Context(), employee.ManagerID)
	if err != nil || userID == "" {
		return
	}
	h.Notify.Notify(r.Context(), userID, ntype, title, body)
}

func (h *Handler) notifyEmployee(r *http.Request, employeeID, ntype, title, body string) {
	if h.Notify == nil || h.Dir == nil {
		return
	}
	userID, err := h.Dir.UserIDForEmployee(r.Context(), employeeID)
	if err != nil || userID == "" {
		return
	}
	h.Notify.Notify(r.Context(), userID, ntype, title, body)
}
