package leave

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"leavedesk/internal/platform/querier"
)

func (s *Store) InsertWFH(ctx context.Context, q querier.Querier, userID, subject, reason string, count float64) (string, error) {
	var id string
	if err := q.QueryRow(ctx, `
    INSERT INTO wfh_applications (user_id, subject, reason, wfh_count, status)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, userID, subject, reason, count, StatusPending).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) InsertWFHCalendar(ctx context.Context, q querier.Querier, applicationID, userID, leaveTypeID string, dates []time.Time) error {
	for _, date := range dates {
		if _, err := q.Exec(ctx, `
      INSERT INTO wfh_calendar (application_id, user_id, leave_type_id, leave_date, status)
      VALUES ($1,$2,$3,$4,$5)
    `, applicationID, userID, leaveTypeID, date, StatusPending); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) WFHForUpdate(ctx context.Context, q querier.Querier, applicationID string) (string, float64, string, error) {
	var userID, status string
	var count float64
	err := q.QueryRow(ctx, `
    SELECT user_id, wfh_count, status
    FROM wfh_applications
    WHERE id = $1
    FOR UPDATE
  `, applicationID).Scan(&userID, &count, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", 0, "", ErrNotFound
	}
	if err != nil {
		return "", 0, "", err
	}
	return userID, count, status, nil
}

func (s *Store) SetWFHStatus(ctx context.Context, q querier.Querier, applicationID, status string) error {
	if _, err := q.Exec(ctx, `
    UPDATE wfh_applications SET status = $2 WHERE id = $1
  `, applicationID, status); err != nil {
		return err
	}
	_, err := q.Exec(ctx, `
    UPDATE wfh_calendar SET status = $2 WHERE application_id = $1
  `, applicationID, status)
	return err
}

func (s *Store) listWFH(ctx context.Context, where string, args []any) ([]WFHApplication, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT a.id, a.user_id, TRIM(u.first_name || ' ' || u.last_name), a.subject, a.reason, a.wfh_count, a.status, a.created_at,
           COALESCE(array_agg(c.leave_date ORDER BY c.leave_date) FILTER (WHERE c.id IS NOT NULL), '{}')
    FROM wfh_applications a
    JOIN users u ON u.id = a.user_id
    LEFT JOIN wfh_calendar c ON c.application_id = a.id `+where+`
    GROUP BY a.id, u.first_name, u.last_name
    ORDER BY a.created_at DESC
  `, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []WFHApplication
	for rows.Next() {
		var app WFHApplication
		if err := rows.Scan(&app.ID, &app.UserID, &app.EmployeeName, &app.Subject, &app.Reason, &app.Count, &app.Status, &app.CreatedAt, &app.Dates); err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func (s *Store) ListWFHMine(ctx context.Context, userID string) ([]WFHApplication, error) {
	return s.listWFH(ctx, "WHERE a.user_id = $1", []any{userID})
}

func (s *Store) ListWFHByStatus(ctx context.Context, status string) ([]WFHApplication, error) {
	if status == "" {
		return s.listWFH(ctx, "", nil)
	}
	return s.listWFH(ctx, "WHERE a.status = $1", []any{status})
}
