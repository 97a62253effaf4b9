package adminleavehandler

import (
	"encoding/json"
	"errors"
	"net/http"

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
	r.Route("/admin/leave", func(r chi.Router) {
		r.Use(middleware.RequireAdmin)
		r.Get("/applications", h.handleList)
		r.Get("/applications/{applicationID}", h.handleGet)
		r.Post("/applications/{applicationID}/adjudicate", h.handleAdjudicate)
		r.Get("/balances/{userID}", h.handleBalances)
		r.Post("/balances/{userID}", h.handleGrantEntitlement)
		r.Post("/types", h.handleCreateType)
		r.Get("/wfh", h.handleListWFH)
		r.Post("/wfh/{applicationID}/approve", h.handleApproveWFH)
		r.Post("/wfh/{applicationID}/reject", h.handleRejectWFH)
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
		api.Fail(w, http.StatusConflict, "conflict", "operation conflicts with the current state", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, code, message, requestID)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 20, 100)

	apps, total, err := h.Service.ListByStatus(r.Context(), r.URL.Query().Get("status"), page.Limit, page.Offset)
	if err != nil {
		failErr(w, requestID, err, "leave_list_failed", "failed to list leave applications")
		return
	}
	api.Success(w, map[string]any{"items": apps, "total": total}, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	app, err := h.Service.Get(r.Context(), chi.URLParam(r, "applicationID"))
	if err != nil {
		failErr(w, requestID, err, "leave_get_failed", "failed to load leave application")
		return
	}
	api.Success(w, app, requestID)
}

type adjudicateDateInput struct {
	Date   string `json:"date"`
	Status string `json:"status"`
}

type adjudicateDetailInput struct {
	LeaveTypeID string                `json:"leaveTypeId"`
	Dates       []adjudicateDateInput `json:"dates"`
}

type adjudicateRequest struct {
	Details   []adjudicateDetailInput   `json:"leaveApplicationDetails"`
	Modify    []leave.ModifyInstruction `json:"modify"`
	Approved  *bool                     `json:"approved"`
	HRComment string                    `json:"hrComment"`
}

func (h *Handler) handleAdjudicate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload adjudicateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", requestID)
		return
	}

	v := shared.NewValidator()
	if payload.Approved == nil {
		v.Add("approved", "is required")
	}
	if payload.Approved != nil && *payload.Approved && len(payload.Details) == 0 {
		v.Add("leaveApplicationDetails", "per-date verdicts are required when approving")
	}

	input := leave.AdjudicateInput{
		Modify:    payload.Modify,
		Approved:  payload.Approved != nil && *payload.Approved,
		HRComment: payload.HRComment,
	}
	for _, block := range payload.Details {
		v.Required("leaveApplicationDetails.leaveTypeId", block.LeaveTypeID, "is required")
		detail := leave.AdjudicateDetailInput{LeaveTypeID: block.LeaveTypeID}
		for _, d := range block.Dates {
			date, ok := v.Date("leaveApplicationDetails.dates.date", d.Date)
			if !ok {
				continue
			}
			v.Enum("leaveApplicationDetails.dates.status", d.Status,
				[]string{leave.StatusApproved, leave.StatusRejected},
				"must be approved or rejected")
			detail.Dates = append(detail.Dates, leave.DateItem{Date: date, Status: d.Status})
		}
		input.Details = append(input.Details, detail)
	}
	if v.Reject(w, requestID) {
		return
	}

	if err := h.Service.Adjudicate(r.Context(), chi.URLParam(r, "applicationID"), input); err != nil {
		failErr(w, requestID, err, "adjudicate_failed", "failed to adjudicate leave application")
		return
	}

	status := leave.StatusRejected
	if input.Approved {
		status = leave.StatusApproved
	}
	api.Success(w, map[string]any{"status": status}, requestID)
}

func (h *Handler) handleBalances(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	balances, err := h.Service.Balances(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "balances_failed", "failed to list balances", requestID)
		return
	}
	api.Success(w, balances, requestID)
}

type grantRequest struct {
	LeaveTypeID string  `json:"leaveTypeId"`
	Days        float64 `json:"days"`
}

func (h *Handler) handleGrantEntitlement(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload grantRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("leaveTypeId", payload.LeaveTypeID, "is required")
	if v.Reject(w, requestID) {
		return
	}

	if err := h.Service.GrantEntitlement(r.Context(), chi.URLParam(r, "userID"), payload.LeaveTypeID, payload.Days); err != nil {
		failErr(w, requestID, err, "entitlement_grant_failed", "failed to grant entitlement")
		return
	}
	api.Success(w, map[string]any{"granted": true}, requestID)
}

type createTypeRequest struct {
	Name      string `json:"name"`
	Code      string `json:"code"`
	Frequency string `json:"frequency"`
}

func (h *Handler) handleCreateType(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload createTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", requestID)
		return
	}

	id, err := h.Service.CreateType(r.Context(), payload.Name, payload.Code, payload.Frequency)
	if err != nil {
		failErr(w, requestID, err, "leave_type_create_failed", "failed to create leave type")
		return
	}
	api.Created(w, map[string]any{"id": id}, requestID)
}

func (h *Handler) handleListWFH(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	apps, err := h.Service.ListWFHByStatus(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		failErr(w, requestID, err, "wfh_list_failed", "failed to list work-from-home applications")
		return
	}
	api.Success(w, apps, requestID)
}

func (h *Handler) handleApproveWFH(w http.ResponseWriter, r *http.Request) {
	h.adjudicateWFH(w, r, true)
}

func (h *Handler) handleRejectWFH(w http.ResponseWriter, r *http.Request) {
	h.adjudicateWFH(w, r, false)
}

func (h *Handler) adjudicateWFH(w http.ResponseWriter, r *http.Request, approved bool) {
	requestID := middleware.GetRequestID(r.Context())

	if err := h.Service.AdjudicateWFH(r.Context(), chi.URLParam(r, "applicationID"), approved); err != nil {
		failErr(w, requestID, err, "wfh_adjudicate_failed", "failed to adjudicate work-from-home application")
		return
	}
	status := leave.StatusRejected
	if approved {
		status = leave.StatusApproved
	}
	api.Success(w, map[string]any{"status": status}, requestID)
}
