package leave

import (
	"context"
	"strings"
	"time"
)

// WFHTypeCode is the reserved leave type backing work-from-home
// balances.
const WFHTypeCode = "WFH"

func (s *Service) CreateWFH(ctx context.Context, userID, subject, reason string, dates []time.Time) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", invalid("subject", "is required")
	}
	if len(dates) == 0 {
		return "", invalid("dates", "at least one date is required")
	}
	seen := map[string]bool{}
	for _, date := range dates {
		key := date.Format(dateLayout)
		if seen[key] {
			return "", invalid("dates", "duplicate date "+key)
		}
		seen[key] = true
	}

	wfhType, err := s.Store.TypeByCode(ctx, WFHTypeCode)
	if err != nil {
		return "", err
	}
	count := float64(len(dates))

	tx, err := s.Store.BeginTx(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	applicationID, err := s.Store.InsertWFH(ctx, tx, userID, subject, reason, count)
	if err != nil {
		return "", err
	}
	if err := s.Store.InsertWFHCalendar(ctx, tx, applicationID, userID, wfhType.ID, dates); err != nil {
		return "", err
	}
	if err := s.Store.AddPending(ctx, tx, userID, wfhType.ID, count); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return applicationID, nil
}

func (s *Service) AdjudicateWFH(ctx context.Context, applicationID string, approved bool) error {
	wfhType, err := s.Store.TypeByCode(ctx, WFHTypeCode)
	if err != nil {
		return err
	}

	tx, err := s.Store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	userID, count, status, err := s.Store.WFHForUpdate(ctx, tx, applicationID)
	if err != nil {
		return err
	}
	if status != StatusPending {
		return ErrConflict
	}

	if approved {
		if err := s.Store.ApplyApprovedRow(ctx, tx, userID, wfhType.ID, count, count); err != nil {
			return err
		}
		if err := s.Store.SetWFHStatus(ctx, tx, applicationID, StatusApproved); err != nil {
			return err
		}
	} else {
		if err := s.Store.ApplyRejectedRow(ctx, tx, userID, wfhType.ID, count); err != nil {
			return err
		}
		if err := s.Store.SetWFHStatus(ctx, tx, applicationID, StatusRejected); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *Service) CancelWFH(ctx context.Context, applicationID, userID string) error {
	wfhType, err := s.Store.TypeByCode(ctx, WFHTypeCode)
	if err != nil {
		return err
	}

	tx, err := s.Store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	ownerID, count, status, err := s.Store.WFHForUpdate(ctx, tx, applicationID)
	if err != nil {
		return err
	}
	if ownerID != userID {
		return ErrNotFound
	}
	if status != StatusPending {
		return ErrConflict
	}

	if err := s.Store.ApplyRejectedRow(ctx, tx, userID, wfhType.ID, count); err != nil {
		return err
	}
	if err := s.Store.SetWFHStatus(ctx, tx, applicationID, StatusCancelled); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Service) ListWFHMine(ctx context.Context, userID string) ([]WFHApplication, error) {
	return s.Store.ListWFHMine(ctx, userID)
}

func (s *Service) ListWFHByStatus(ctx context.Context, status string) ([]WFHApplication, error) {
	if status != "" && !validStatus(status) && status != StatusCancelled {
		return nil, invalid("status", "unknown status")
	}
	return s.Store.ListWFHByStatus(ctx, status)
}
