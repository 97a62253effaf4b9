package reportshandler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jung-kurt/gofpdf"

	"leavedesk/internal/domain/core"
	"leavedesk/internal/domain/leave"
	"leavedesk/internal/transport/http/api"
	"leavedesk/internal/transport/http/middleware"
	"leavedesk/internal/transport/http/shared"
)

type Handler struct {
	Leave *leave.Service
	Core  *core.Service
}

func NewHandler(leaveSvc *leave.Service, coreSvc *core.Service) *Handler {
	return &Handler{Leave: leaveSvc, Core: coreSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/admin/reports", func(r chi.Router) {
		r.Use(middleware.RequireAdmin)
		r.Get("/calendar", h.handleCalendar)
		r.Get("/calendar/export", h.handleCalendarExport)
		r.Get("/balances", h.handleCompanyBalances)
		r.Get("/balances/export", h.handleCompanyBalancesExport)
		r.Get("/balances/{userID}/statement", h.handleBalanceStatement)
	})
}

func (h *Handler) calendarRange(w http.ResponseWriter, r *http.Request) ([]leave.CalendarEntry, time.Time, time.Time, bool) {
	requestID := middleware.GetRequestID(r.Context())

	v := shared.NewValidator()
	v.Required("from", r.URL.Query().Get("from"), "is required")
	v.Required("to", r.URL.Query().Get("to"), "is required")
	from, _ := v.Date("from", r.URL.Query().Get("from"))
	to, _ := v.Date("to", r.URL.Query().Get("to"))
	v.DateOrder("from", from, "to", to)
	if v.Reject(w, requestID) {
		return nil, time.Time{}, time.Time{}, false
	}

	var statuses []string
	if raw := r.URL.Query().Get("status"); raw != "" {
		statuses = strings.Split(raw, ",")
	}

	entries, err := h.Leave.CalendarRange(r.Context(), from, to, statuses)
	if err != nil {
		var verr *leave.ValidationError
		if errors.As(err, &verr) {
			shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: verr.Field, Reason: verr.Message}})
		} else {
			api.Fail(w, http.StatusInternalServerError, "calendar_failed", "failed to load leave calendar", requestID)
		}
		return nil, time.Time{}, time.Time{}, false
	}
	return entries, from, to, true
}

func (h *Handler) handleCalendar(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	entries, from, to, ok := h.calendarRange(w, r)
	if !ok {
		return
	}
	holidays, err := h.Core.HolidayDates(r.Context(), from, to)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "calendar_failed", "failed to load holidays", requestID)
		return
	}
	api.Success(w, map[string]any{"entries": entries, "holidays": holidays}, requestID)
}

func (h *Handler) handleCalendarExport(w http.ResponseWriter, r *http.Request) {
	entries, from, to, ok := h.calendarRange(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="leave-calendar-%s-%s.csv"`, from.Format("2006-01-02"), to.Format("2006-01-02")))

	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"date", "employee", "leaveType", "mode", "status"})
	for _, entry := range entries {
		_ = writer.Write([]string{
			entry.Date.Format("2006-01-02"),
			entry.EmployeeName,
			entry.TypeCode,
			entry.Mode,
			entry.Status,
		})
	}
	writer.Flush()
}

func (h *Handler) handleCompanyBalances(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	balances, err := h.Leave.CompanyBalances(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "balances_report_failed", "failed to load company balances", requestID)
		return
	}
	api.Success(w, balances, requestID)
}

func (h *Handler) handleCompanyBalancesExport(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	balances, err := h.Leave.CompanyBalances(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "balances_report_failed", "failed to load company balances", requestID)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="leave-balances-%s.csv"`, time.Now().Format("2006-01-02")))

	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"employee", "email", "leaveType", "total", "pending"})
	for _, balance := range balances {
		_ = writer.Write([]string{
			balance.EmployeeName,
			balance.Email,
			balance.LeaveTypeCode,
			strconv.FormatFloat(balance.TotalLeaves, 'f', 1, 64),
			strconv.FormatFloat(balance.PendingLeaves, 'f', 1, 64),
		})
	}
	writer.Flush()
}

func (h *Handler) handleBalanceStatement(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	userID := chi.URLParam(r, "userID")

	employee, err := h.Core.GetEmployee(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "employee not found", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "statement_failed", "failed to load employee", requestID)
		return
	}

	balances, err := h.Leave.Balances(r.Context(), userID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "statement_failed", "failed to load balances", requestID)
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Leave Balance Statement")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s %s", employee.FirstName, employee.LastName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Email: %s", employee.Email))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(70, 8, "Leave Type")
	pdf.Cell(40, 8, "Available")
	pdf.Cell(40, 8, "Pending")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)
	for _, balance := range balances {
		pdf.Cell(70, 8, balance.LeaveTypeName)
		pdf.Cell(40, 8, strconv.FormatFloat(balance.TotalLeaves, 'f', 1, 64))
		pdf.Cell(40, 8, strconv.FormatFloat(balance.PendingLeaves, 'f', 1, 64))
		pdf.Ln(7)
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="leave-balance-statement.pdf"`)
	if err := pdf.Output(w); err != nil {
		api.Fail(w, http.StatusInternalServerError, "statement_failed", "failed to render statement", requestID)
	}
}
