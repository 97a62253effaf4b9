package core

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"leavedesk/internal/platform/querier"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return s.DB.Begin(ctx)
}

type AuthUser struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         string
	Status       string
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (AuthUser, error) {
	var u AuthUser
	err := s.DB.QueryRow(ctx, `
    SELECT id, first_name, last_name, email, password_hash, role, status
    FROM users
    WHERE email = $1
  `, email).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.Role, &u.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return AuthUser{}, ErrNotFound
	}
	return u, err
}

func (s *Store) PasswordHash(ctx context.Context, userID string) (string, error) {
	var hash string
	err := s.DB.QueryRow(ctx, `SELECT password_hash FROM users WHERE id = $1`, userID).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return hash, err
}

func (s *Store) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	tag, err := s.DB.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, userID, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UpdateProfile(ctx context.Context, userID, firstName, lastName string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE users SET first_name = $2, last_name = $3 WHERE id = $1
  `, userID, firstName, lastName)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const employeeColumns = `
    u.id, u.first_name, u.last_name, u.email, u.role, u.status,
    COALESCE(u.department_id::text, ''), COALESCE(dep.name, ''),
    COALESCE(u.designation_id::text, ''), COALESCE(des.name, ''),
    COALESCE(u.reporting_hr_id::text, ''), COALESCE(u.format_id::text, ''),
    u.joining_date, u.created_at`

const employeeJoins = `
    FROM users u
    LEFT JOIN departments dep ON dep.id = u.department_id
    LEFT JOIN designations des ON des.id = u.designation_id`

func scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	err := row.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email, &e.Role, &e.Status,
		&e.DepartmentID, &e.DepartmentName, &e.DesignationID, &e.DesignationName,
		&e.ReportingHRID, &e.FormatID, &e.JoiningDate, &e.CreatedAt)
	return e, err
}

func (s *Store) GetEmployee(ctx context.Context, userID string) (Employee, error) {
	e, err := scanEmployee(s.DB.QueryRow(ctx, `SELECT`+employeeColumns+employeeJoins+` WHERE u.id = $1`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	return e, err
}

func (s *Store) ListEmployees(ctx context.Context) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `SELECT`+employeeColumns+employeeJoins+` ORDER BY u.first_name, u.last_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (s *Store) CreateEmployee(ctx context.Context, q querier.Querier, emp Employee, passwordHash string) (string, error) {
	var id string
	err := q.QueryRow(ctx, `
    INSERT INTO users (first_name, last_name, email, password_hash, role, status, department_id, designation_id, reporting_hr_id, format_id, joining_date)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
    RETURNING id
  `, emp.FirstName, emp.LastName, emp.Email, passwordHash, emp.Role, emp.Status,
		nullIfEmpty(emp.DepartmentID), nullIfEmpty(emp.DesignationID),
		nullIfEmpty(emp.ReportingHRID), nullIfEmpty(emp.FormatID), emp.JoiningDate).Scan(&id)
	if err != nil {
		return "", mapStoreErr(err)
	}
	return id, nil
}

func (s *Store) UpdateEmployee(ctx context.Context, userID string, emp Employee) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE users
    SET first_name = $2, last_name = $3, role = $4, status = $5,
        department_id = $6, designation_id = $7, reporting_hr_id = $8, joining_date = $9
    WHERE id = $1
  `, userID, emp.FirstName, emp.LastName, emp.Role, emp.Status,
		nullIfEmpty(emp.DepartmentID), nullIfEmpty(emp.DesignationID),
		nullIfEmpty(emp.ReportingHRID), emp.JoiningDate)
	if err != nil {
		return mapStoreErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SetEmployeeFormat(ctx context.Context, q querier.Querier, userID, formatID string) error {
	tag, err := q.Exec(ctx, `UPDATE users SET format_id = $2 WHERE id = $1`, userID, formatID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddEntitlement credits days onto a balance, creating the row when the
// employee has no history with the leave type yet.
func (s *Store) AddEntitlement(ctx context.Context, q querier.Querier, userID, leaveTypeID string, amount float64) error {
	_, err := q.Exec(ctx, `
    INSERT INTO leave_balances (user_id, leave_type_id, total_leaves, pending_leaves)
    VALUES ($1,$2,$3,0)
    ON CONFLICT (user_id, leave_type_id) DO UPDATE
      SET total_leaves = leave_balances.total_leaves + EXCLUDED.total_leaves,
          updated_at = now()
  `, userID, leaveTypeID, amount)
	return err
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
