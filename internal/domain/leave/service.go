package leave

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"leavedesk/internal/domain/notifications"
)

type Service struct {
	Store    *Store
	Notifier *notifications.Service
}

func NewService(store *Store, notifier *notifications.Service) *Service {
	return &Service{Store: store, Notifier: notifier}
}

// Create validates and persists a new leave application, reserving the
// requested days against the employee's pending balances.
func (s *Service) Create(ctx context.Context, userID string, input CreateInput) (string, error) {
	if strings.TrimSpace(input.Subject) == "" {
		return "", invalid("subject", "is required")
	}
	if len(input.Leaves) == 0 {
		return "", invalid("leaves", "at least one leave type is required")
	}

	types, err := s.Store.TypesByID(ctx)
	if err != nil {
		return "", err
	}

	totals := make([]decimal.Decimal, len(input.Leaves))
	seenTypes := map[string]bool{}
	for i := range input.Leaves {
		block := &input.Leaves[i]
		if _, ok := types[block.LeaveTypeID]; !ok {
			return "", invalid("leaveTypeId", "unknown leave type")
		}
		if seenTypes[block.LeaveTypeID] {
			return "", invalid("leaveTypeId", "duplicate leave type in request")
		}
		seenTypes[block.LeaveTypeID] = true
		if totals[i], err = normalizeDates(block.Dates); err != nil {
			return "", err
		}
	}

	tx, err := s.Store.BeginTx(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	applicationID, err := s.Store.InsertApplication(ctx, tx, userID, input.Subject, input.Reason)
	if err != nil {
		return "", err
	}

	for i, block := range input.Leaves {
		total, _ := totals[i].Float64()
		if err := s.Store.InsertDetail(ctx, tx, applicationID, block.LeaveTypeID, total, block.Dates, total); err != nil {
			return "", err
		}
		if err := s.Store.InsertCalendar(ctx, tx, applicationID, userID, block.LeaveTypeID, block.Dates); err != nil {
			return "", err
		}
		if err := s.Store.AddPending(ctx, tx, userID, block.LeaveTypeID, total); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}

	s.notifySubmitted(ctx, userID, applicationID, input, types)
	return applicationID, nil
}

// Adjudicate applies an HR decision to a pending application: per-date
// verdicts are reconciled into per-type rows and the balance ledger is
// updated in the same transaction as the status writes.
func (s *Service) Adjudicate(ctx context.Context, applicationID string, input AdjudicateInput) error {
	verdicts, err := indexVerdicts(input.Details)
	if err != nil {
		return err
	}
	for _, instr := range input.Modify {
		if instr.LeaveDays < 0 || instr.ModifyDays < 0 {
			return invalid("modify", "day counts must not be negative")
		}
	}

	tx, err := s.Store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	userID, status, err := s.Store.ApplicationForUpdate(ctx, tx, applicationID)
	if err != nil {
		return err
	}
	if status != StatusPending {
		return ErrConflict
	}

	details, err := s.Store.DetailsTx(ctx, tx, applicationID)
	if err != nil {
		return err
	}

	engineDetails := make([]reconcileDetail, 0, len(details))
	for i := range details {
		detail := &details[i]
		if input.Approved {
			if err := applyVerdicts(detail, verdicts); err != nil {
				return err
			}
		} else {
			for j := range detail.Dates {
				detail.Dates[j].Status = StatusRejected
			}
		}
		engineDetails = append(engineDetails, reconcileDetail{
			LeaveTypeID: detail.LeaveTypeID,
			TotalValue:  decimal.NewFromFloat(detail.TotalValue),
			Dates:       detail.Dates,
		})
	}

	rows := Reconcile(engineDetails, input.Modify)

	for i := range details {
		detail := &details[i]
		if err := s.Store.UpdateDetailDates(ctx, tx, detail.ID, detail.Dates, detail.TotalValue); err != nil {
			return err
		}
	}

	if input.Approved {
		for i := range details {
			detail := &details[i]
			for _, date := range detail.Dates {
				if err := s.Store.SetCalendarDateStatus(ctx, tx, applicationID, detail.LeaveTypeID, date.Date, date.Status); err != nil {
					return err
				}
			}
		}
		for _, row := range rows {
			approved, _ := row.ApprovedValue.Float64()
			reviewed, _ := row.ApprovedValue.Add(row.RejectedValue).Float64()
			if err := s.Store.ApplyApprovedRow(ctx, tx, userID, row.LeaveTypeID, approved, reviewed); err != nil {
				return err
			}
		}
		if err := s.Store.SetApplicationStatus(ctx, tx, applicationID, StatusApproved, input.HRComment); err != nil {
			return err
		}
	} else {
		if err := s.Store.SetAllCalendarStatus(ctx, tx, applicationID, StatusRejected); err != nil {
			return err
		}
		for _, row := range rows {
			totalValue, _ := row.TotalValue.Float64()
			if err := s.Store.ApplyRejectedRow(ctx, tx, userID, row.LeaveTypeID, totalValue); err != nil {
				return err
			}
		}
		if err := s.Store.SetApplicationStatus(ctx, tx, applicationID, StatusRejected, input.HRComment); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.notifyAdjudicated(ctx, userID, applicationID, input, details)
	return nil
}

// Cancel credits reserved days back and closes the application. Only
// the owner may cancel, and only while the request is still pending.
func (s *Service) Cancel(ctx context.Context, applicationID, userID string) error {
	tx, err := s.Store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	ownerID, status, err := s.Store.ApplicationForUpdate(ctx, tx, applicationID)
	if err != nil {
		return err
	}
	if ownerID != userID {
		return ErrNotFound
	}
	if status != StatusPending {
		return ErrConflict
	}

	details, err := s.Store.DetailsTx(ctx, tx, applicationID)
	if err != nil {
		return err
	}
	for _, detail := range details {
		if err := s.Store.CreditBack(ctx, tx, userID, detail.LeaveTypeID, detail.LeaveCount); err != nil {
			return err
		}
	}
	if err := s.Store.SetAllCalendarStatus(ctx, tx, applicationID, StatusCancelled); err != nil {
		return err
	}
	if err := s.Store.SetApplicationStatus(ctx, tx, applicationID, StatusCancelled, ""); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.notifyCancelled(ctx, userID, applicationID, details)
	return nil
}

func (s *Service) Get(ctx context.Context, applicationID string) (Application, error) {
	return s.Store.GetApplication(ctx, applicationID)
}

// GetOwned is Get restricted to the requesting employee's own
// applications.
func (s *Service) GetOwned(ctx context.Context, applicationID, userID string) (Application, error) {
	app, err := s.Store.GetApplication(ctx, applicationID)
	if err != nil {
		return Application{}, err
	}
	if app.UserID != userID {
		return Application{}, ErrNotFound
	}
	return app, nil
}

func (s *Service) ListMine(ctx context.Context, userID string, limit, offset int) ([]Application, int, error) {
	return s.Store.ListMine(ctx, userID, limit, offset)
}

func (s *Service) ListByStatus(ctx context.Context, status string, limit, offset int) ([]Application, int, error) {
	if status != "" && status != StatusPending && status != StatusApproved && status != StatusRejected && status != StatusCancelled {
		return nil, 0, invalid("status", "unknown status")
	}
	return s.Store.ListByStatus(ctx, status, limit, offset)
}

func (s *Service) Balances(ctx context.Context, userID string) ([]Balance, error) {
	return s.Store.Balances(ctx, userID)
}

func (s *Service) ListTypes(ctx context.Context) ([]LeaveType, error) {
	return s.Store.ListTypes(ctx)
}

// CreateType registers a new leave type. Types are reference data;
// there is no update or delete.
func (s *Service) CreateType(ctx context.Context, name, code, frequency string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", invalid("name", "is required")
	}
	if strings.TrimSpace(code) == "" {
		return "", invalid("code", "is required")
	}
	if frequency == "" {
		frequency = FrequencyYearly
	}
	if frequency != FrequencyYearly && frequency != FrequencyQuarterly && frequency != FrequencyMonthly {
		return "", invalid("frequency", "must be yearly, quarterly or monthly")
	}
	return s.Store.InsertType(ctx, name, strings.ToUpper(code), frequency)
}

// GrantEntitlement lets HR credit extra days to one employee's balance.
func (s *Service) GrantEntitlement(ctx context.Context, userID, leaveTypeID string, days float64) error {
	if days <= 0 {
		return invalid("days", "must be positive")
	}
	types, err := s.Store.TypesByID(ctx)
	if err != nil {
		return err
	}
	if _, ok := types[leaveTypeID]; !ok {
		return invalid("leaveTypeId", "unknown leave type")
	}
	return s.Store.AddEntitlement(ctx, userID, leaveTypeID, days)
}

func (s *Service) CompanyBalances(ctx context.Context) ([]CompanyBalance, error) {
	return s.Store.CompanyBalances(ctx)
}

func (s *Service) CalendarRange(ctx context.Context, from, to time.Time, statuses []string) ([]CalendarEntry, error) {
	if to.Before(from) {
		return nil, invalid("to", "must not be before from")
	}
	if len(statuses) == 0 {
		statuses = []string{StatusApproved}
	}
	for _, status := range statuses {
		if !validStatus(status) && status != StatusCancelled {
			return nil, invalid("status", "unknown status")
		}
	}
	return s.Store.CalendarRange(ctx, from, to, statuses)
}

// indexVerdicts flattens HR's per-date verdicts into a lookup keyed by
// leave type and date.
func indexVerdicts(details []AdjudicateDetailInput) (map[string]string, error) {
	verdicts := map[string]string{}
	for _, detail := range details {
		for _, date := range detail.Dates {
			if date.Status != StatusApproved && date.Status != StatusRejected {
				return nil, invalid("status", "each date must be approved or rejected")
			}
			verdicts[verdictKey(detail.LeaveTypeID, date.Date)] = date.Status
		}
	}
	return verdicts, nil
}

func verdictKey(leaveTypeID string, date time.Time) string {
	return leaveTypeID + "|" + date.Format(dateLayout)
}

func applyVerdicts(detail *Detail, verdicts map[string]string) error {
	for i := range detail.Dates {
		status, ok := verdicts[verdictKey(detail.LeaveTypeID, detail.Dates[i].Date)]
		if !ok {
			return invalid("leaveApplicationDetails", "missing verdict for "+detail.Dates[i].Date.Format(dateLayout))
		}
		detail.Dates[i].Status = status
	}
	return nil
}

func (s *Service) notifySubmitted(ctx context.Context, userID, applicationID string, input CreateInput, types map[string]LeaveType) {
	if s.Notifier == nil {
		return
	}
	name, email, err := s.Store.UserContact(ctx, userID)
	if err != nil {
		return
	}
	msg := notifications.LeaveMessage{
		ApplicationID: applicationID,
		EmployeeName:  name,
		Subject:       input.Subject,
		Reason:        input.Reason,
	}
	for _, block := range input.Leaves {
		line := notifications.LeaveLine{TypeName: types[block.LeaveTypeID].Name}
		for _, date := range block.Dates {
			line.Count += date.Value
			line.Dates = append(line.Dates, date.Date)
		}
		msg.Leaves = append(msg.Leaves, line)
	}
	s.Notifier.LeaveSubmitted(email, msg)
}

func (s *Service) notifyAdjudicated(ctx context.Context, userID, applicationID string, input AdjudicateInput, details []Detail) {
	if s.Notifier == nil {
		return
	}
	name, email, err := s.Store.UserContact(ctx, userID)
	if err != nil {
		return
	}
	app, err := s.Store.GetApplication(ctx, applicationID)
	if err != nil {
		return
	}
	msg := notifications.LeaveMessage{
		ApplicationID: applicationID,
		EmployeeName:  name,
		Subject:       app.Subject,
		Reason:        app.Reason,
		Comment:       input.HRComment,
		Leaves:        leaveLines(details),
	}
	if input.Approved {
		s.Notifier.LeaveApproved(email, msg)
	} else {
		s.Notifier.LeaveRejected(email, msg)
	}
}

func (s *Service) notifyCancelled(ctx context.Context, userID, applicationID string, details []Detail) {
	if s.Notifier == nil {
		return
	}
	name, _, err := s.Store.UserContact(ctx, userID)
	if err != nil {
		return
	}
	app, err := s.Store.GetApplication(ctx, applicationID)
	if err != nil {
		return
	}
	s.Notifier.LeaveCancelled(notifications.LeaveMessage{
		ApplicationID: applicationID,
		EmployeeName:  name,
		Subject:       app.Subject,
		Leaves:        leaveLines(details),
	})
}

func leaveLines(details []Detail) []notifications.LeaveLine {
	lines := make([]notifications.LeaveLine, 0, len(details))
	for _, detail := range details {
		line := notifications.LeaveLine{TypeName: detail.TypeName, Count: detail.LeaveCount}
		for _, date := range detail.Dates {
			line.Dates = append(line.Dates, date.Date)
		}
		lines = append(lines, line)
	}
	return lines
}
