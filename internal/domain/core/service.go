package core

import (
	"context"
	"strings"
	"time"

	"leavedesk/internal/domain/auth"
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

func (s *Service) Login(ctx context.Context, email, password string) (AuthUser, error) {
	user, err := s.Store.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return AuthUser{}, err
	}
	if user.Status != "active" {
		return AuthUser{}, ErrNotFound
	}
	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return AuthUser{}, ErrNotFound
	}
	return user, nil
}

// CreateEmployee creates the account and, when a leave format and
// joining date are set, credits the remaining-year entitlements in the
// same transaction.
func (s *Service) CreateEmployee(ctx context.Context, emp Employee, password string) (string, error) {
	emp.Email = strings.ToLower(strings.TrimSpace(emp.Email))
	if emp.Email == "" {
		return "", invalid("email", "is required")
	}
	if strings.TrimSpace(emp.FirstName) == "" {
		return "", invalid("firstName", "is required")
	}
	if len(password) < 8 {
		return "", invalid("password", "must be at least 8 characters")
	}
	if emp.Role == "" {
		emp.Role = auth.RoleEmployee
	}
	if !auth.ValidRole(emp.Role) {
		return "", invalid("role", "unknown role")
	}
	if emp.Status == "" {
		emp.Status = "active"
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}

	tx, err := s.Store.BeginTx(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	id, err := s.Store.CreateEmployee(ctx, tx, emp, hash)
	if err != nil {
		return "", err
	}

	if emp.FormatID != "" && emp.JoiningDate != nil {
		format, err := s.Store.GetFormat(ctx, emp.FormatID)
		if err != nil {
			return "", err
		}
		quarter := JoiningQuarter(*emp.JoiningDate)
		for _, grant := range format.Grants {
			amount := InitialEntitlement(grant, quarter)
			if amount == 0 {
				continue
			}
			if err := s.Store.AddEntitlement(ctx, tx, id, grant.LeaveTypeID, amount); err != nil {
				return "", err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Service) GetEmployee(ctx context.Context, userID string) (Employee, error) {
	return s.Store.GetEmployee(ctx, userID)
}

func (s *Service) ListEmployees(ctx context.Context) ([]Employee, error) {
	return s.Store.ListEmployees(ctx)
}

func (s *Service) UpdateEmployee(ctx context.Context, userID string, emp Employee) error {
	if strings.TrimSpace(emp.FirstName) == "" {
		return invalid("firstName", "is required")
	}
	if !auth.ValidRole(emp.Role) {
		return invalid("role", "unknown role")
	}
	if emp.Status != "active" && emp.Status != "inactive" {
		return invalid("status", "must be active or inactive")
	}
	return s.Store.UpdateEmployee(ctx, userID, emp)
}

// AssignFormat re-grants entitlements from the given quarter onward and
// points the employee at the new format.
func (s *Service) AssignFormat(ctx context.Context, userID, formatID string, from time.Time) error {
	format, err := s.Store.GetFormat(ctx, formatID)
	if err != nil {
		return err
	}

	tx, err := s.Store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.Store.SetEmployeeFormat(ctx, tx, userID, formatID); err != nil {
		return err
	}
	quarter := JoiningQuarter(from)
	for _, grant := range format.Grants {
		amount := InitialEntitlement(grant, quarter)
		if amount == 0 {
			continue
		}
		if err := s.Store.AddEntitlement(ctx, tx, userID, grant.LeaveTypeID, amount); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *Service) UpdatePassword(ctx context.Context, userID, current, next string) error {
	if len(next) < 8 {
		return invalid("newPassword", "must be at least 8 characters")
	}
	hash, err := s.Store.PasswordHash(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.CheckPassword(hash, current); err != nil {
		return invalid("currentPassword", "does not match")
	}
	nextHash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	return s.Store.UpdatePasswordHash(ctx, userID, nextHash)
}

// UpdateProfile lets an employee change their own display name.
func (s *Service) UpdateProfile(ctx context.Context, userID, firstName, lastName string) error {
	if strings.TrimSpace(firstName) == "" {
		return invalid("firstName", "is required")
	}
	return s.Store.UpdateProfile(ctx, userID, firstName, lastName)
}

func (s *Service) ListDepartments(ctx context.Context) ([]Department, error) {
	return s.Store.ListDepartments(ctx)
}

func (s *Service) CreateDepartment(ctx context.Context, d Department) (string, error) {
	if strings.TrimSpace(d.Name) == "" {
		return "", invalid("name", "is required")
	}
	if strings.TrimSpace(d.Code) == "" {
		return "", invalid("code", "is required")
	}
	if d.Status == "" {
		d.Status = "active"
	}
	return s.Store.CreateDepartment(ctx, d)
}

func (s *Service) UpdateDepartment(ctx context.Context, id string, d Department) error {
	if strings.TrimSpace(d.Name) == "" {
		return invalid("name", "is required")
	}
	if strings.TrimSpace(d.Code) == "" {
		return invalid("code", "is required")
	}
	return s.Store.UpdateDepartment(ctx, id, d)
}

func (s *Service) DeleteDepartment(ctx context.Context, id string) error {
	return s.Store.DeleteDepartment(ctx, id)
}

func (s *Service) ListDesignations(ctx context.Context) ([]Designation, error) {
	return s.Store.ListDesignations(ctx)
}

func (s *Service) CreateDesignation(ctx context.Context, d Designation) (string, error) {
	if strings.TrimSpace(d.Name) == "" {
		return "", invalid("name", "is required")
	}
	if strings.TrimSpace(d.Code) == "" {
		return "", invalid("code", "is required")
	}
	if d.Status == "" {
		d.Status = "active"
	}
	return s.Store.CreateDesignation(ctx, d)
}

func (s *Service) UpdateDesignation(ctx context.Context, id string, d Designation) error {
	if strings.TrimSpace(d.Name) == "" {
		return invalid("name", "is required")
	}
	if strings.TrimSpace(d.Code) == "" {
		return invalid("code", "is required")
	}
	return s.Store.UpdateDesignation(ctx, id, d)
}

func (s *Service) DeleteDesignation(ctx context.Context, id string) error {
	return s.Store.DeleteDesignation(ctx, id)
}

func (s *Service) ListHolidays(ctx context.Context, filter HolidayFilter) ([]Holiday, error) {
	return s.Store.ListHolidays(ctx, filter)
}

func (s *Service) CreateHoliday(ctx context.Context, h Holiday) (string, error) {
	if strings.TrimSpace(h.Name) == "" {
		return "", invalid("name", "is required")
	}
	if h.Date.IsZero() {
		return "", invalid("date", "is required")
	}
	return s.Store.CreateHoliday(ctx, h)
}

func (s *Service) DeleteHoliday(ctx context.Context, id string) error {
	return s.Store.DeleteHoliday(ctx, id)
}

// HolidayDates maps holiday dates to names inside a range.
func (s *Service) HolidayDates(ctx context.Context, from, to time.Time) (map[string]string, error) {
	return s.Store.HolidayDates(ctx, from, to)
}

func (s *Service) ListFormats(ctx context.Context) ([]LeaveFormat, error) {
	return s.Store.ListFormats(ctx)
}

func (s *Service) GetFormat(ctx context.Context, id string) (LeaveFormat, error) {
	return s.Store.GetFormat(ctx, id)
}

func (s *Service) CreateFormat(ctx context.Context, f LeaveFormat) (string, error) {
	if strings.TrimSpace(f.Name) == "" {
		return "", invalid("name", "is required")
	}
	if len(f.Grants) == 0 {
		return "", invalid("grants", "at least one leave type grant is required")
	}
	for _, g := range f.Grants {
		if g.LeaveTypeID == "" {
			return "", invalid("grants", "leaveTypeId is required")
		}
		if g.QuarterOne < 0 || g.QuarterTwo < 0 || g.QuarterThree < 0 || g.QuarterFour < 0 {
			return "", invalid("grants", "quarterly allowances must not be negative")
		}
	}

	tx, err := s.Store.BeginTx(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	id, err := s.Store.CreateFormat(ctx, tx, f)
	if err != nil {
		return "", err
	}
	return id, tx.Commit(ctx)
}
