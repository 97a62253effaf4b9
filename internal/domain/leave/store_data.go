package leave

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"leavedesk/internal/platform/querier"
)

const dateLayout = "2006-01-02"

type dateDoc struct {
	Date   string  `json:"date"`
	Type   string  `json:"type"`
	Value  float64 `json:"value"`
	Status string  `json:"status"`
}

type datesDoc struct {
	Dates      []dateDoc `json:"dates"`
	TotalValue float64   `json:"totalValue"`
}

func encodeDates(dates []DateItem, totalValue float64) ([]byte, error) {
	doc := datesDoc{TotalValue: totalValue, Dates: make([]dateDoc, 0, len(dates))}
	for _, d := range dates {
		doc.Dates = append(doc.Dates, dateDoc{
			Date:   d.Date.Format(dateLayout),
			Type:   d.Mode,
			Value:  d.Value,
			Status: d.Status,
		})
	}
	return json.Marshal(doc)
}

func decodeDates(raw []byte) ([]DateItem, float64, error) {
	var doc datesDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, 0, err
	}
	dates := make([]DateItem, 0, len(doc.Dates))
	for _, d := range doc.Dates {
		date, err := time.Parse(dateLayout, d.Date)
		if err != nil {
			return nil, 0, err
		}
		dates = append(dates, DateItem{Date: date, Mode: d.Type, Value: d.Value, Status: d.Status})
	}
	return dates, doc.TotalValue, nil
}

func (s *Store) InsertApplication(ctx context.Context, q querier.Querier, userID, subject, reason string) (string, error) {
	var id string
	if err := q.QueryRow(ctx, `
    INSERT INTO leave_applications (user_id, subject, reason, status)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, userID, subject, reason, StatusPending).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) InsertDetail(ctx context.Context, q querier.Querier, applicationID, leaveTypeID string, leaveCount float64, dates []DateItem, totalValue float64) error {
	raw, err := encodeDates(dates, totalValue)
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx, `
    INSERT INTO leave_application_details (application_id, leave_type_id, leave_count, leave_dates)
    VALUES ($1,$2,$3,$4)
  `, applicationID, leaveTypeID, leaveCount, raw)
	return err
}

func (s *Store) InsertCalendar(ctx context.Context, q querier.Querier, applicationID, userID, leaveTypeID string, dates []DateItem) error {
	for _, d := range dates {
		if _, err := q.Exec(ctx, `
      INSERT INTO leave_calendar (application_id, user_id, leave_type_id, leave_date, leave_mode, status)
      VALUES ($1,$2,$3,$4,$5,$6)
    `, applicationID, userID, leaveTypeID, d.Date, d.Mode, d.Status); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) AddPending(ctx context.Context, q querier.Querier, userID, leaveTypeID string, amount float64) error {
	_, err := q.Exec(ctx, `
    INSERT INTO leave_balances (user_id, leave_type_id, total_leaves, pending_leaves)
    VALUES ($1,$2,0,$3)
    ON CONFLICT (user_id, leave_type_id) DO UPDATE
      SET pending_leaves = leave_balances.pending_leaves + EXCLUDED.pending_leaves,
          updated_at = now()
  `, userID, leaveTypeID, amount)
	return err
}

// ApplicationForUpdate locks the application row for the rest of the
// transaction so two adjudications cannot both pass the pending check.
func (s *Store) ApplicationForUpdate(ctx context.Context, q querier.Querier, applicationID string) (string, string, error) {
	var userID, status string
	err := q.QueryRow(ctx, `
    SELECT user_id, status
    FROM leave_applications
    WHERE id = $1
    FOR UPDATE
  `, applicationID).Scan(&userID, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", ErrNotFound
	}
	if err != nil {
		return "", "", err
	}
	return userID, status, nil
}

func (s *Store) DetailsTx(ctx context.Context, q querier.Querier, applicationID string) ([]Detail, error) {
	rows, err := q.Query(ctx, `
    SELECT d.id, d.leave_type_id, t.name, d.leave_count, d.leave_dates
    FROM leave_application_details d
    JOIN leave_types t ON t.id = d.leave_type_id
    WHERE d.application_id = $1
    ORDER BY d.created_at
  `, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []Detail
	for rows.Next() {
		var detail Detail
		var raw []byte
		if err := rows.Scan(&detail.ID, &detail.LeaveTypeID, &detail.TypeName, &detail.LeaveCount, &raw); err != nil {
			return nil, err
		}
		if detail.Dates, detail.TotalValue, err = decodeDates(raw); err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, rows.Err()
}

func (s *Store) UpdateDetailDates(ctx context.Context, q querier.Querier, detailID string, dates []DateItem, totalValue float64) error {
	raw, err := encodeDates(dates, totalValue)
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx, `
    UPDATE leave_application_details SET leave_dates = $2 WHERE id = $1
  `, detailID, raw)
	return err
}

func (s *Store) SetCalendarDateStatus(ctx context.Context, q querier.Querier, applicationID, leaveTypeID string, date time.Time, status string) error {
	_, err := q.Exec(ctx, `
    UPDATE leave_calendar
    SET status = $4
    WHERE application_id = $1 AND leave_type_id = $2 AND leave_date = $3
  `, applicationID, leaveTypeID, date, status)
	return err
}

func (s *Store) SetAllCalendarStatus(ctx context.Context, q querier.Querier, applicationID, status string) error {
	_, err := q.Exec(ctx, `
    UPDATE leave_calendar SET status = $2 WHERE application_id = $1
  `, applicationID, status)
	return err
}

// ApplyApprovedRow consumes entitlement for approved days and releases
// the full reviewed amount from pending.
func (s *Store) ApplyApprovedRow(ctx context.Context, q querier.Querier, userID, leaveTypeID string, approved, reviewed float64) error {
	_, err := q.Exec(ctx, `
    UPDATE leave_balances
    SET total_leaves = GREATEST(total_leaves - $3, 0),
        pending_leaves = GREATEST(pending_leaves - $4, 0),
        updated_at = now()
    WHERE user_id = $1 AND leave_type_id = $2
  `, userID, leaveTypeID, approved, reviewed)
	return err
}

// ApplyRejectedRow releases the originally pending amount without
// touching entitlement.
func (s *Store) ApplyRejectedRow(ctx context.Context, q querier.Querier, userID, leaveTypeID string, totalValue float64) error {
	_, err := q.Exec(ctx, `
    UPDATE leave_balances
    SET pending_leaves = GREATEST(pending_leaves - $3, 0),
        updated_at = now()
    WHERE user_id = $1 AND leave_type_id = $2
  `, userID, leaveTypeID, totalValue)
	return err
}

func (s *Store) CreditBack(ctx context.Context, q querier.Querier, userID, leaveTypeID string, amount float64) error {
	_, err := q.Exec(ctx, `
    UPDATE leave_balances
    SET total_leaves = total_leaves + $3,
        updated_at = now()
    WHERE user_id = $1 AND leave_type_id = $2
  `, userID, leaveTypeID, amount)
	return err
}

func (s *Store) SetApplicationStatus(ctx context.Context, q querier.Querier, applicationID, status, hrComment string) error {
	_, err := q.Exec(ctx, `
    UPDATE leave_applications
    SET status = $2, hr_comment = $3, updated_at = now()
    WHERE id = $1
  `, applicationID, status, hrComment)
	return err
}

func (s *Store) GetApplication(ctx context.Context, applicationID string) (Application, error) {
	var app Application
	err := s.DB.QueryRow(ctx, `
    SELECT a.id, a.user_id, TRIM(u.first_name || ' ' || u.last_name), a.subject, a.reason, a.status, a.hr_comment, a.created_at
    FROM leave_applications a
    JOIN users u ON u.id = a.user_id
    WHERE a.id = $1
  `, applicationID).Scan(&app.ID, &app.UserID, &app.EmployeeName, &app.Subject, &app.Reason, &app.Status, &app.HRComment, &app.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Application{}, ErrNotFound
	}
	if err != nil {
		return Application{}, err
	}

	if app.Details, err = s.DetailsTx(ctx, s.DB, applicationID); err != nil {
		return Application{}, err
	}
	return app, nil
}

func (s *Store) listApplications(ctx context.Context, where string, args []any, limit, offset int) ([]Application, int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM leave_applications a `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	queryArgs := append(append([]any{}, args...), limit, offset)
	rows, err := s.DB.Query(ctx, `
    SELECT a.id, a.user_id, TRIM(u.first_name || ' ' || u.last_name), a.subject, a.reason, a.status, a.hr_comment, a.created_at
    FROM leave_applications a
    JOIN users u ON u.id = a.user_id `+where+`
    ORDER BY a.created_at DESC
    LIMIT $`+strconv.Itoa(len(args)+1)+` OFFSET $`+strconv.Itoa(len(args)+2),
		queryArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var apps []Application
	for rows.Next() {
		var app Application
		if err := rows.Scan(&app.ID, &app.UserID, &app.EmployeeName, &app.Subject, &app.Reason, &app.Status, &app.HRComment, &app.CreatedAt); err != nil {
			return nil, 0, err
		}
		apps = append(apps, app)
	}
	return apps, total, rows.Err()
}

func (s *Store) ListMine(ctx context.Context, userID string, limit, offset int) ([]Application, int, error) {
	return s.listApplications(ctx, "WHERE a.user_id = $1", []any{userID}, limit, offset)
}

func (s *Store) ListByStatus(ctx context.Context, status string, limit, offset int) ([]Application, int, error) {
	if status == "" {
		return s.listApplications(ctx, "", nil, limit, offset)
	}
	return s.listApplications(ctx, "WHERE a.status = $1", []any{status}, limit, offset)
}

func (s *Store) Balances(ctx context.Context, userID string) ([]Balance, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT t.id, t.name, t.code, COALESCE(b.total_leaves, 0), COALESCE(b.pending_leaves, 0)
    FROM leave_types t
    LEFT JOIN leave_balances b ON b.leave_type_id = t.id AND b.user_id = $1
    ORDER BY t.name
  `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []Balance
	for rows.Next() {
		var b Balance
		if err := rows.Scan(&b.LeaveTypeID, &b.LeaveTypeName, &b.LeaveTypeCode, &b.TotalLeaves, &b.PendingLeaves); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

// AddEntitlement credits entitlement directly, creating the balance row
// when the employee has never touched this leave type.
func (s *Store) AddEntitlement(ctx context.Context, userID, leaveTypeID string, days float64) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO leave_balances (user_id, leave_type_id, total_leaves, pending_leaves)
    VALUES ($1,$2,$3,0)
    ON CONFLICT (user_id, leave_type_id) DO UPDATE
      SET total_leaves = leave_balances.total_leaves + EXCLUDED.total_leaves,
          updated_at = now()
  `, userID, leaveTypeID, days)
	return err
}

func (s *Store) InsertType(ctx context.Context, name, code, frequency string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO leave_types (name, code, frequency)
    VALUES ($1,$2,$3)
    RETURNING id
  `, name, code, frequency).Scan(&id)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return "", ErrConflict
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// CompanyBalances lists every active employee's balance for every leave
// type, for the company-wide report.
func (s *Store) CompanyBalances(ctx context.Context) ([]CompanyBalance, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT u.id, TRIM(u.first_name || ' ' || u.last_name), u.email, t.id, t.name, t.code,
           COALESCE(b.total_leaves, 0), COALESCE(b.pending_leaves, 0)
    FROM users u
    CROSS JOIN leave_types t
    LEFT JOIN leave_balances b ON b.user_id = u.id AND b.leave_type_id = t.id
    WHERE u.status = 'active'
    ORDER BY u.first_name, u.last_name, t.name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []CompanyBalance
	for rows.Next() {
		var b CompanyBalance
		if err := rows.Scan(&b.UserID, &b.EmployeeName, &b.Email, &b.LeaveTypeID, &b.LeaveTypeName, &b.LeaveTypeCode, &b.TotalLeaves, &b.PendingLeaves); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

func (s *Store) ListTypes(ctx context.Context) ([]LeaveType, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, code, frequency, created_at
    FROM leave_types
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []LeaveType
	for rows.Next() {
		var t LeaveType
		if err := rows.Scan(&t.ID, &t.Name, &t.Code, &t.Frequency, &t.CreatedAt); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (s *Store) TypesByID(ctx context.Context) (map[string]LeaveType, error) {
	types, err := s.ListTypes(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]LeaveType, len(types))
	for _, t := range types {
		byID[t.ID] = t
	}
	return byID, nil
}

func (s *Store) TypeByCode(ctx context.Context, code string) (LeaveType, error) {
	var t LeaveType
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, code, frequency, created_at
    FROM leave_types
    WHERE code = $1
  `, code).Scan(&t.ID, &t.Name, &t.Code, &t.Frequency, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return LeaveType{}, ErrNotFound
	}
	return t, err
}

func (s *Store) CalendarRange(ctx context.Context, from, to time.Time, statuses []string) ([]CalendarEntry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT c.user_id, TRIM(u.first_name || ' ' || u.last_name), c.leave_type_id, t.code, c.leave_date, c.leave_mode, c.status
    FROM leave_calendar c
    JOIN users u ON u.id = c.user_id
    JOIN leave_types t ON t.id = c.leave_type_id
    WHERE c.leave_date >= $1 AND c.leave_date <= $2 AND c.status = ANY($3)
    ORDER BY c.leave_date, u.first_name
  `, from, to, statuses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []CalendarEntry
	for rows.Next() {
		var e CalendarEntry
		if err := rows.Scan(&e.UserID, &e.EmployeeName, &e.LeaveTypeID, &e.TypeCode, &e.Date, &e.Mode, &e.Status); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) UserContact(ctx context.Context, userID string) (string, string, error) {
	var name, email string
	err := s.DB.QueryRow(ctx, `
    SELECT TRIM(first_name || ' ' || last_name), email
    FROM users
    WHERE id = $1
  `, userID).Scan(&name, &email)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", ErrNotFound
	}
	return name, email, err
}
