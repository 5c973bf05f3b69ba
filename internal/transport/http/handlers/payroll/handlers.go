package payrollhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"timecard/internal/domain/audit"
	"timecard/internal/domain/auth"
	"timecard/internal/domain/directory"
	"timecard/internal/domain/notifications"
	"timecard/internal/domain/payroll"
	"timecard/internal/transport/http/api"
	"timecard/internal/transport/http/middleware"
	"timecard/internal/transport/http/shared"
)

type Handler struct {
	Service *payroll.Service
	Perms   middleware.PermissionChecker
	Notify  *notifications.Service
	Audit   *audit.Service
	Dir     *directory.Store
}

func NewHandler(service *payroll.Service, perms middleware.PermissionChecker, notify *notifications.Service, auditSvc *audit.Service, dir *directory.Store) *Handler {
	return &Handler{Service: service, Perms: perms, Notify: notify, Audit: auditSvc, Dir: dir}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		read := middleware.RequirePermission(auth.PermPayrollRead, h.Perms)
		write := middleware.RequirePermission(auth.PermPayrollWrite, h.Perms)
		run := middleware.RequirePermission(auth.PermPayrollRun, h.Perms)
		finalize := middleware.RequirePermission(auth.PermPayrollFinalize, h.Perms)

		r.With(write).Get("/structures", h.handleListStructures)
		r.With(write).Post("/structures", h.handleCreateStructure)
		r.With(write).Get("/structures/active", h.handleActiveStructure)
		r.With(run).Post("/payslips/generate", h.handleGeneratePayslip)
		r.With(read).Get("/payslips", h.handleListPayslips)
		r.With(read).Get("/payslips/{payslipID}", h.handleGetPayslip)
		r.With(finalize).Put("/payslips/{payslipID}/finalize", h.handleFinalize)
		r.With(finalize).Put("/payslips/{payslipID}/mark-paid", h.handleMarkPaid)
		r.With(read).Get("/payslips/{payslipID}/pdf", h.handlePayslipPDF)
	})
}

func failDomain(w http.ResponseWriter, err error, reqID string) {
	var verr *payroll.ValidationError
	switch {
	case errors.As(err, &verr):
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: verr.Field, Reason: verr.Reason}})
	case errors.Is(err, payroll.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed for this payslip", reqID)
	case errors.Is(err, payroll.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "payslip not found", reqID)
	case errors.Is(err, payroll.ErrNoActiveStructure):
		api.Fail(w, http.StatusNotFound, "no_active_structure", err.Error(), reqID)
	case errors.Is(err, payroll.ErrLocked):
		api.Fail(w, http.StatusConflict, "payslip_locked", err.Error(), reqID)
	case errors.Is(err, payroll.ErrDuplicatePeriod):
		api.Fail(w, http.StatusConflict, "duplicate_period", err.Error(), reqID)
	case errors.Is(err, payroll.ErrInvalidState):
		api.Fail(w, http.StatusConflict, "invalid_state", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "payroll_error", "payroll operation failed", reqID)
	}
}

type structurePayload struct {
	EmployeeID    string                     `json:"employeeId"`
	BasicSalary   decimal.Decimal            `json:"basicSalary"`
	HRA           decimal.Decimal            `json:"hra"`
	Allowances    map[string]decimal.Decimal `json:"allowances"`
	Deductions    map[string]decimal.Decimal `json:"deductions"`
	EffectiveFrom string                     `json:"effectiveFrom"`
}

func (h *Handler) handleCreateStructure(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	var payload structurePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	effectiveFrom, err := shared.ParseDate(payload.EffectiveFrom)
	if err != nil {
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "effectiveFrom", Reason: "must be a valid date in YYYY-MM-DD format"}})
		return
	}

	structure, err := h.Service.CreateStructure(r.Context(), payroll.StructureInput{
		EmployeeID:    payload.EmployeeID,
		BasicSalary:   payload.BasicSalary,
		HRA:           payload.HRA,
		Allowances:    payload.Allowances,
		Deductions:    payload.Deductions,
		EffectiveFrom: effectiveFrom,
	})
	if err != nil {
		failDomain(w, err, reqID)
		return
	}
	h.audit(r, user, "payroll.structure.create", structure.ID, structure)
	api.Created(w, structure, reqID)
}

func (h *Handler) handleListStructures(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employeeID := r.URL.Query().Get("employeeId")
	if employeeID == "" {
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "employeeId", Reason: "is required"}})
		return
	}
	page := shared.ParsePagination(r, 50, 200)
	items, total, err := h.Service.ListStructures(r.Context(), employeeID, page.Limit, page.Offset)
	if err != nil {
		failDomain(w, err, reqID)
		return
	}
	api.Success(w, map[string]any{"items": items, "total": total}, reqID)
}

func (h *Handler) handleActiveStructure(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	structure, err := h.Service.ActiveStructure(r.Context(), r.URL.Query().Get("employeeId"))
	if err != nil {
		failDomain(w, err, reqID)
		return
	}
	api.Success(w, structure, reqID)
}

type generatePayload struct {
	EmployeeID string `json:"employeeId"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
}

func (h *Handler) handleGeneratePayslip(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	var payload generatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	slip, err := h.Service.GeneratePayslip(r.Context(), payload.EmployeeID, payload.Year, payload.Month)
	if err != nil {
		failDomain(w, err, reqID)
		return
	}
	h.audit(r, user, "payroll.payslip.generate", slip.ID, map[string]any{
		"employeeId": slip.EmployeeID, "year": slip.Year, "month": slip.Month,
	})
	api.Created(w, slip, reqID)
}

func (h *Handler) handleListPayslips(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	page := shared.ParsePagination(r, 50, 200)
	items, total, err := h.Service.ListPayslips(r.Context(), user, r.URL.Query().Get("employeeId"), page.Limit, page.Offset)
	if err != nil {
		failDomain(w, err, reqID)
		return
	}
	api.Success(w, map[string]any{"items": items, "total": total}, reqID)
}

func (h *Handler) handleGetPayslip(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	slip, err := h.Service.GetPayslip(r.Context(), user, chi.URLParam(r, "payslipID"))
	if err != nil {
		failDomain(w, err, reqID)
		return
	}
	api.Success(w, slip, reqID)
}

func (h *Handler) handleFinalize(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	slip, err := h.Service.Finalize(r.Context(), chi.URLParam(r, "payslipID"))
	if err != nil {
		failDomain(w, err, reqID)
		return
	}
	h.audit(r, user, "payroll.payslip.finalize", slip.ID, nil)
	h.notifyEmployee(r, slip.EmployeeID, notifications.TypePayslipFinalized,
		"Payslip finalized", "Your payslip has been finalized.")
	api.Success(w, slip, reqID)
}

func (h *Handler) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	slip, err := h.Service.MarkPaid(r.Context(), chi.URLParam(r, "payslipID"))
	if err != nil {
		failDomain(w, err, reqID)
		return
	}
	h.audit(r, user, "payroll.payslip.mark_paid", slip.ID, nil)
	h.notifyEmployee(r, slip.EmployeeID, notifications.TypePayslipPaid,
		"Payslip paid", "Your salary has been paid out.")
	api.Success(w, slip, reqID)
}

func (h *Handler) handlePayslipPDF(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	filePath, err := h.Service.GeneratePayslipPDF(r.Context(), user, chi.URLParam(r, "payslipID"))
	if err != nil {
		failDomain(w, err, reqID)
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payroll_error", "failed to read payslip file", reqID)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=payslip.pdf")
	if _, err := w.Write(data); err != nil {
		slog.Warn("write payslip pdf failed", "err", err)
	}
}

func (h *Handler) audit(r *http.Request, user auth.UserContext, action, entityID string, details any) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.Record(r.Context(), user.UserID, action, "payslip", entityID,
		middleware.GetRequestID(r.Context()), shared.ClientIP(r), details); err != nil {
		slog.Warn("audit "+action+" failed", "err", err)
	}
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
