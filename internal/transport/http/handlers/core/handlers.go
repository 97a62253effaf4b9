package corehandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"leavedesk/internal/domain/core"
	"leavedesk/internal/transport/http/api"
	"leavedesk/internal/transport/http/middleware"
	"leavedesk/internal/transport/http/shared"
)

type Handler struct {
	Service *core.Service
}

func NewHandler(service *core.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/holidays", h.handleListHolidays)
		r.Get("/departments", h.handleListDepartments)
		r.Get("/designations", h.handleListDesignations)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin)
		r.Get("/employees", h.handleListEmployees)
		r.Post("/employees", h.handleCreateEmployee)
		r.Get("/employees/{userID}", h.handleGetEmployee)
		r.Put("/employees/{userID}", h.handleUpdateEmployee)
		r.Post("/employees/{userID}/format", h.handleAssignFormat)
		r.Post("/departments", h.handleCreateDepartment)
		r.Put("/departments/{departmentID}", h.handleUpdateDepartment)
		r.Delete("/departments/{departmentID}", h.handleDeleteDepartment)
		r.Post("/designations", h.handleCreateDesignation)
		r.Put("/designations/{designationID}", h.handleUpdateDesignation)
		r.Delete("/designations/{designationID}", h.handleDeleteDesignation)
		r.Post("/holidays", h.handleCreateHoliday)
		r.Delete("/holidays/{holidayID}", h.handleDeleteHoliday)
		r.Get("/formats", h.handleListFormats)
		r.Get("/formats/{formatID}", h.handleGetFormat)
		r.Post("/formats", h.handleCreateFormat)
	})
}

func failErr(w http.ResponseWriter, requestID string, err error, code, message string) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: verr.Field, Reason: verr.Message}})
	case errors.Is(err, core.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "resource not found", requestID)
	case errors.Is(err, core.ErrConflict):
		api.Fail(w, http.StatusConflict, "conflict", "a record with the same unique field already exists", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, code, message, requestID)
	}
}

type employeeRequest struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Role          string `json:"role"`
	Status        string `json:"status"`
	DepartmentID  string `json:"departmentId"`
	DesignationID string `json:"designationId"`
	ReportingHRID string `json:"reportingHrId"`
	FormatID      string `json:"formatId"`
	JoiningDate   string `json:"joiningDate"`
}

func (p employeeRequest) toEmployee(v *shared.Validator) core.Employee {
	emp := core.Employee{
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		Email:         p.Email,
		Role:          p.Role,
		Status:        p.Status,
		DepartmentID:  p.DepartmentID,
		DesignationID: p.DesignationID,
		ReportingHRID: p.ReportingHRID,
		FormatID:      p.FormatID,
	}
	if p.JoiningDate != "" {
		if date, ok := v.Date("joiningDate", p.JoiningDate); ok {
			emp.JoiningDate = &date
		}
	}
	return emp
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	employees, err := h.Service.ListEmployees(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employees_failed", "failed to list employees", requestID)
		return
	}
	api.Success(w, employees, requestID)
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("firstName", payload.FirstName, "is required")
	v.Required("email", payload.Email, "is required")
	v.Required("password", payload.Password, "is required")
	emp := payload.toEmployee(v)
	if v.Reject(w, requestID) {
		return
	}

	id, err := h.Service.CreateEmployee(r.Context(), emp, payload.Password)
	if err != nil {
		failErr(w, requestID, err, "employee_create_failed", "failed to create employee")
		return
	}
	api.Created(w, map[string]any{"id": id}, requestID)
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	employee, err := h.Service.GetEmployee(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		failErr(w, requestID, err, "employee_get_failed", "failed to load employee")
		return
	}
	api.Success(w, employee, requestID)
}

func (h *Handler) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", requestID)
		return
	}

	v := shared.NewValidator()
	emp := payload.toEmployee(v)
	if v.Reject(w, requestID) {
		return
	}

	if err := h.Service.UpdateEmployee(r.Context(), chi.URLParam(r, "userID"), emp); err != nil {
		failErr(w, requestID, err, "employee_update_failed", "failed to update employee")
		return
	}
	api.Success(w, map[string]any{"updated": true}, requestID)
}

type assignFormatRequest struct {
	FormatID string `json:"formatId"`
	From     string `json:"from"`
}

func (h *Handler) handleAssignFormat(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload assignFormatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("formatId", payload.FormatID, "is required")
	from := time.Now()
	if payload.From != "" {
		if parsed, ok := v.Date("from", payload.From); ok {
			from = parsed
		}
	}
	if v.Reject(w, requestID) {
		return
	}

	if err := h.Service.AssignFormat(r.Context(), chi.URLParam(r, "userID"), payload.FormatID, from); err != nil {
		failErr(w, requestID, err, "format_assign_failed", "failed to assign leave format")
		return
	}
	api.Success(w, map[string]any{"assigned": true}, requestID)
}

func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	departments, err := h.Service.ListDepartments(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "departments_failed", "failed to list departments", requestID)
		return
	}
	api.Success(w, departments, requestID)
}

func (h *Handler) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload core.Department
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", requestID)
		return
	}

	id, err := h.Service.CreateDepartment(r.Context(), payload)
	if err != nil {
		failErr(w, requestID, err, "department_create_failed", "failed to create department")
		return
	}
	api.Created(w, map[string]any{"id": id}, requestID)
}

func (h *Handler) handleUpdateDepartment(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload core.Department
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", requestID)
		return
	}

	if err := h.Service.UpdateDepartment(r.Context(), chi.URLParam(r, "departmentID"), payload); err != nil {
		failErr(w, requestID, err, "department_update_failed", "failed to update department")
		return
	}
	api.Success(w, map[string]any{"updated": true}, requestID)
}

func (h *Handler) handleDeleteDepartment(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	if err := h.Service.DeleteDepartment(r.Context(), chi.URLParam(r, "departmentID")); err != nil {
		failErr(w, requestID, err, "department_delete_failed", "failed to delete department")
		return
	}
	api.Success(w, map[string]any{"deleted": true}, requestID)
}

func (h *Handler) handleListDesignations(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	designations, err := h.Service.ListDesignations(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "designations_failed", "failed to list designations", requestID)
		return
	}
	api.Success(w, designations, requestID)
}

func (h *Handler) handleCreateDesignation(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload core.Designation
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", requestID)
		return
	}

	id, err := h.Service.CreateDesignation(r.Context(), payload)
	if err != nil {
		failErr(w, requestID, err, "designation_create_failed", "failed to create designation")
		return
	}
	api.Created(w, map[string]any{"id": id}, requestID)
}

func (h *Handler) handleUpdateDesignation(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload core.Designation
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", requestID)
		return
	}

	if err := h.Service.UpdateDesignation(r.Context(), chi.URLParam(r, "designationID"), payload); err != nil {
		failErr(w, requestID, err, "designation_update_failed", "failed to update designation")
		return
	}
	api.Success(w, map[string]any{"updated": true}, requestID)
}

func (h *Handler) handleDeleteDesignation(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	if err := h.Service.DeleteDesignation(r.Context(), chi.URLParam(r, "designationID")); err != nil {
		failErr(w, requestID, err, "designation_delete_failed", "failed to delete designation")
		return
	}
	api.Success(w, map[string]any{"deleted": true}, requestID)
}

func (h *Handler) handleListHolidays(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	festive := r.URL.Query().Get("festive")
	holidays, err := h.Service.ListHolidays(r.Context(), core.HolidayFilter{
		FestiveOnly: festive == "true",
		SkipFestive: festive == "false",
		Search:      r.URL.Query().Get("search"),
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "holidays_failed", "failed to list holidays", requestID)
		return
	}
	api.Success(w, holidays, requestID)
}

type holidayRequest struct {
	Name        string `json:"name"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Festive     bool   `json:"festive"`
}

func (h *Handler) handleCreateHoliday(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload holidayRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "is required")
	date, _ := v.Date("date", payload.Date)
	if v.Reject(w, requestID) {
		return
	}

	id, err := h.Service.CreateHoliday(r.Context(), core.Holiday{
		Name:        payload.Name,
		Date:        date,
		Description: payload.Description,
		Festive:     payload.Festive,
	})
	if err != nil {
		failErr(w, requestID, err, "holiday_create_failed", "failed to create holiday")
		return
	}
	api.Created(w, map[string]any{"id": id}, requestID)
}

func (h *Handler) handleDeleteHoliday(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	if err := h.Service.DeleteHoliday(r.Context(), chi.URLParam(r, "holidayID")); err != nil {
		failErr(w, requestID, err, "holiday_delete_failed", "failed to delete holiday")
		return
	}
	api.Success(w, map[string]any{"deleted": true}, requestID)
}

func (h *Handler) handleListFormats(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	formats, err := h.Service.ListFormats(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "formats_failed", "failed to list leave formats", requestID)
		return
	}
	api.Success(w, formats, requestID)
}

func (h *Handler) handleGetFormat(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	format, err := h.Service.GetFormat(r.Context(), chi.URLParam(r, "formatID"))
	if err != nil {
		failErr(w, requestID, err, "format_get_failed", "failed to load leave format")
		return
	}
	api.Success(w, format, requestID)
}

func (h *Handler) handleCreateFormat(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload core.LeaveFormat
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON", requestID)
		return
	}

	id, err := h.Service.CreateFormat(r.Context(), payload)
	if err != nil {
		failErr(w, requestID, err, "format_create_failed", "failed to create leave format")
		return
	}
	api.Created(w, map[string]any{"id": id}, requestID)
}
