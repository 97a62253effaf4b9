package leavehandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"leavedesk/internal/domain/leave"
	"leavedesk/internal/transport/http/api"
	"leavedesk/internal/transport/http/middleware"
	"leavedesk/internal/transport/http/shared"
)

type Handler struct {
	Service *leave.Service
}

func NewHandler(service *leave.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/types", h.handleListTypes)
		r.Get("/balances", h.handleBalances)
		r.Get("/applications", h.handleListMine)
		r.Post("/applications", h.handleCreate)
		r.Get("/applications/{applicationID}", h.handleGet)
		r.Post("/applications/{applicationID}/cancel", h.handleCancel)
		r.Get("/wfh", h.handleListWFHMine)
		r.Post("/wfh", h.handleCreateWFH)
		r.Post("/wfh/{applicationID}/cancel", h.handleCancelWFH)
	})
}

func failErr(w http.ResponseWriter, requestID string, err error, code, message string) {
	var verr *leave.ValidationError
	switch {
	case errors.As(err, &verr):
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: verr.Field, Reason: verr.Message}})
	case errors.Is(err, leave.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "resource not found", requestID)
	case errors.Is(err, leave.ErrConflict):
		api.Fail(w, http.StatusConflict, "conflict", "request is no longer pending", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, code, message, requestID)
	}
}

func (h *Handler) handleListTypes(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	types, err := h.Service.ListTypes(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_types_failed", "failed to list leave types", requestID)
		return
	}
	api.Success(w, types, requestID)
}

func (h *Handler) handleBalances(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	balances, err := h.Service.Balances(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "balances_failed", "failed to list balances", requestID)
		return
	}
	api.Success(w, balances, requestID)
}

type createDateInput struct {
	Date string `json:"date"`
	Type string `json:"type"`
}

type createLeaveInput struct {
	LeaveTypeID string            `json:"leaveTypeId"`
	Dates       []createDateInput `json:"dates"`
}

type createRequest struct {
	Subject string             `json:"subject"`
	Reason  string             `json:"reason"`
	Leaves  []createLeaveInput `json:"leaves"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload createRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("subject", payload.Subject, "is required")
	if len(payload.Leaves) == 0 {
		v.Add("leaves", "at least one leave type is required")
	}

	input := leave.CreateInput{Subject: payload.Subject, Reason: payload.Reason}
	for _, block := range payload.Leaves {
		v.Required("leaves.leaveTypeId", block.LeaveTypeID, "is required")
		detail := leave.CreateDetailInput{LeaveTypeID: block.LeaveTypeID}
		for _, d := range block.Dates {
			date, ok := v.Date("leaves.dates.date", d.Date)
			if !ok {
				continue
			}
			v.Enum("leaves.dates.type", d.Type,
				[]string{leave.ModeFullDay, leave.ModeFirstHalf, leave.ModeSecondHalf},
				"must be fullday, 1sthalf or 2ndhalf")
			detail.Dates = append(detail.Dates, leave.DateItem{Date: date, Mode: d.Type})
		}
		input.Leaves = append(input.Leaves, detail)
	}
	if v.Reject(w, requestID) {
		return
	}

	id, err := h.Service.Create(r.Context(), user.UserID, input)
	if err != nil {
		failErr(w, requestID, err, "leave_create_failed", "failed to create leave application")
		return
	}
	api.Created(w, map[string]any{"id": id}, requestID)
}

func (h *Handler) handleListMine(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, 20, 100)

	apps, total, err := h.Service.ListMine(r.Context(), user.UserID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_list_failed", "failed to list leave applications", requestID)
		return
	}
	api.Success(w, map[string]any{"items": apps, "total": total}, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	app, err := h.Service.GetOwned(r.Context(), chi.URLParam(r, "applicationID"), user.UserID)
	if err != nil {
		failErr(w, requestID, err, "leave_get_failed", "failed to load leave application")
		return
	}
	api.Success(w, app, requestID)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	err := h.Service.Cancel(r.Context(), chi.URLParam(r, "applicationID"), user.UserID)
	if err != nil {
		failErr(w, requestID, err, "leave_cancel_failed", "failed to cancel leave application")
		return
	}
	api.Success(w, map[string]any{"status": leave.StatusCancelled}, requestID)
}

type createWFHRequest struct {
	Subject string   `json:"subject"`
	Reason  string   `json:"reason"`
	Dates   []string `json:"dates"`
}

func (h *Handler) handleCreateWFH(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload createWFHRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("subject", payload.Subject, "is required")
	if len(payload.Dates) == 0 {
		v.Add("dates", "at least one date is required")
	}
	var dates []time.Time
	for _, raw := range payload.Dates {
		if date, ok := v.Date("dates", raw); ok {
			dates = append(dates, date)
		}
	}
	if v.Reject(w, requestID) {
		return
	}

	id, err := h.Service.CreateWFH(r.Context(), user.UserID, payload.Subject, payload.Reason, dates)
	if err != nil {
		failErr(w, requestID, err, "wfh_create_failed", "failed to create work-from-home application")
		return
	}
	api.Created(w, map[string]any{"id": id}, requestID)
}

type wfhMonthGroup struct {
	Month        string                 `json:"month"`
	Applications []leave.WFHApplication `json:"applications"`
}

func (h *Handler) handleListWFHMine(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	apps, err := h.Service.ListWFHMine(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "wfh_list_failed", "failed to list work-from-home applications", requestID)
		return
	}
	api.Success(w, groupWFHByMonth(apps), requestID)
}

// groupWFHByMonth buckets applications by the month of their first
// requested date, keeping the incoming application order.
func groupWFHByMonth(apps []leave.WFHApplication) []wfhMonthGroup {
	var groups []wfhMonthGroup
	index := map[string]int{}
	for _, app := range apps {
		when := app.CreatedAt
		if len(app.Dates) > 0 {
			when = app.Dates[0]
		}
		month := when.Format("2006-01")
		if at, ok := index[month]; ok {
			groups[at].Applications = append(groups[at].Applications, app)
			continue
		}
		index[month] = len(groups)
		groups = append(groups, wfhMonthGroup{Month: month, Applications: []leave.WFHApplication{app}})
	}
	return groups
}

func (h *Handler) handleCancelWFH(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	err := h.Service.CancelWFH(r.Context(), chi.URLParam(r, "applicationID"), user.UserID)
	if err != nil {
		failErr(w, requestID, err, "wfh_cancel_failed", "failed to cancel work-from-home application")
		return
	}
	api.Success(w, map[string]any{"status": leave.StatusCancelled}, requestID)
}
