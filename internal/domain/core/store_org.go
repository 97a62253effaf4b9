package core

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"leavedesk/internal/platform/querier"
)

// HolidayFilter narrows the holiday listing.
type HolidayFilter struct {
	FestiveOnly bool
	SkipFestive bool
	Search      string
}

func (s *Store) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, code, description, COALESCE(parent_id::text, ''), COALESCE(leader_id::text, ''), status, created_at
    FROM departments
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departments []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Code, &d.Description, &d.ParentID, &d.LeaderID, &d.Status, &d.CreatedAt); err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

func (s *Store) CreateDepartment(ctx context.Context, d Department) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO departments (name, code, description, parent_id, leader_id, status)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, d.Name, d.Code, d.Description, nullIfEmpty(d.ParentID), nullIfEmpty(d.LeaderID), d.Status).Scan(&id)
	if err != nil {
		return "", mapStoreErr(err)
	}
	return id, nil
}

func (s *Store) UpdateDepartment(ctx context.Context, id string, d Department) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE departments
    SET name = $2, code = $3, description = $4, parent_id = $5, leader_id = $6, status = $7
    WHERE id = $1
  `, id, d.Name, d.Code, d.Description, nullIfEmpty(d.ParentID), nullIfEmpty(d.LeaderID), d.Status)
	if err != nil {
		return mapStoreErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteDepartment(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListDesignations(ctx context.Context) ([]Designation, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, code, description, COALESCE(department_id::text, ''), status, created_at
    FROM designations
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var designations []Designation
	for rows.Next() {
		var d Designation
		if err := rows.Scan(&d.ID, &d.Name, &d.Code, &d.Description, &d.DepartmentID, &d.Status, &d.CreatedAt); err != nil {
			return nil, err
		}
		designations = append(designations, d)
	}
	return designations, rows.Err()
}

func (s *Store) CreateDesignation(ctx context.Context, d Designation) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO designations (name, code, description, department_id, status)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, d.Name, d.Code, d.Description, nullIfEmpty(d.DepartmentID), d.Status).Scan(&id)
	if err != nil {
		return "", mapStoreErr(err)
	}
	return id, nil
}

func (s *Store) UpdateDesignation(ctx context.Context, id string, d Designation) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE designations
    SET name = $2, code = $3, description = $4, department_id = $5, status = $6
    WHERE id = $1
  `, id, d.Name, d.Code, d.Description, nullIfEmpty(d.DepartmentID), d.Status)
	if err != nil {
		return mapStoreErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteDesignation(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM designations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListHolidays(ctx context.Context, filter HolidayFilter) ([]Holiday, error) {
	conds := []string{"true"}
	var args []any
	if filter.FestiveOnly {
		conds = append(conds, "festive")
	} else if filter.SkipFestive {
		conds = append(conds, "NOT festive")
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conds = append(conds, "name ILIKE $1")
	}
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, date, description, festive, created_at
    FROM holidays
    WHERE `+strings.Join(conds, " AND ")+`
    ORDER BY date
  `, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []Holiday
	for rows.Next() {
		var h Holiday
		if err := rows.Scan(&h.ID, &h.Name, &h.Date, &h.Description, &h.Festive, &h.CreatedAt); err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

func (s *Store) CreateHoliday(ctx context.Context, h Holiday) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO holidays (name, date, description, festive)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, h.Name, h.Date, h.Description, h.Festive).Scan(&id)
	if err != nil {
		return "", mapStoreErr(err)
	}
	return id, nil
}

func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM holidays WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListFormats(ctx context.Context) ([]LeaveFormat, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, description, created_at
    FROM leave_formats
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var formats []LeaveFormat
	for rows.Next() {
		var f LeaveFormat
		if err := rows.Scan(&f.ID, &f.Name, &f.Description, &f.CreatedAt); err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, rows.Err()
}

func (s *Store) GetFormat(ctx context.Context, id string) (LeaveFormat, error) {
	var f LeaveFormat
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, description, created_at
    FROM leave_formats
    WHERE id = $1
  `, id).Scan(&f.ID, &f.Name, &f.Description, &f.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return LeaveFormat{}, ErrNotFound
	}
	if err != nil {
		return LeaveFormat{}, err
	}

	grantRows, err := s.DB.Query(ctx, `
    SELECT g.leave_type_id, t.name, g.quarter_one, g.quarter_two, g.quarter_three, g.quarter_four
    FROM leave_format_grants g
    JOIN leave_types t ON t.id = g.leave_type_id
    WHERE g.format_id = $1
    ORDER BY t.name
  `, id)
	if err != nil {
		return LeaveFormat{}, err
	}
	defer grantRows.Close()

	for grantRows.Next() {
		var g FormatGrant
		if err := grantRows.Scan(&g.LeaveTypeID, &g.TypeName, &g.QuarterOne, &g.QuarterTwo, &g.QuarterThree, &g.QuarterFour); err != nil {
			return LeaveFormat{}, err
		}
		f.Grants = append(f.Grants, g)
	}
	return f, grantRows.Err()
}

func (s *Store) CreateFormat(ctx context.Context, q querier.Querier, f LeaveFormat) (string, error) {
	var id string
	err := q.QueryRow(ctx, `
    INSERT INTO leave_formats (name, description)
    VALUES ($1,$2)
    RETURNING id
  `, f.Name, f.Description).Scan(&id)
	if err != nil {
		return "", mapStoreErr(err)
	}

	for _, g := range f.Grants {
		if _, err := q.Exec(ctx, `
      INSERT INTO leave_format_grants (format_id, leave_type_id, quarter_one, quarter_two, quarter_three, quarter_four)
      VALUES ($1,$2,$3,$4,$5,$6)
    `, id, g.LeaveTypeID, g.QuarterOne, g.QuarterTwo, g.QuarterThree, g.QuarterFour); err != nil {
			return "", mapStoreErr(err)
		}
	}
	return id, nil
}

// HolidayDates returns the set of holiday dates inside a range, used to
// warn about leave requested on holidays.
func (s *Store) HolidayDates(ctx context.Context, from, to time.Time) (map[string]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT date, name FROM holidays WHERE date >= $1 AND date <= $2
  `, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var date time.Time
		var name string
		if err := rows.Scan(&date, &name); err != nil {
			return nil, err
		}
		out[date.Format("2006-01-02")] = name
	}
	return out, rows.Err()
}
