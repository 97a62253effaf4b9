package notifications

import (
	"context"
	"log/slog"
	"time"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// Service sends leave lifecycle emails. Sends are best effort; a
// failed delivery never fails the request that triggered it.
type Service struct {
	Mailer  Mailer
	From    string
	HRInbox string
}

func New(mailer Mailer, from, hrInbox string) *Service {
	return &Service{Mailer: mailer, From: from, HRInbox: hrInbox}
}

func (s *Service) send(to, subject, body string) {
	if s.Mailer == nil || to == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.Mailer.Send(ctx, s.From, to, subject, body); err != nil {
			slog.Warn("notification email send failed", "subject", subject, "err", err)
		}
	}()
}

// LeaveSubmitted notifies both the HR inbox and the applicant.
func (s *Service) LeaveSubmitted(employeeEmail string, msg LeaveMessage) {
	s.send(s.HRInbox, requestSubjectForHR(msg), requestBodyForHR(msg))
	s.send(employeeEmail, submittedSubjectForEmployee(), submittedBodyForEmployee(msg))
}

func (s *Service) LeaveApproved(employeeEmail string, msg LeaveMessage) {
	s.send(employeeEmail, approvedSubjectForEmployee(), approvedBodyForEmployee(msg))
}

func (s *Service) LeaveRejected(employeeEmail string, msg LeaveMessage) {
	s.send(employeeEmail, rejectedSubjectForEmployee(), rejectedBodyForEmployee(msg))
}

func (s *Service) LeaveCancelled(msg LeaveMessage) {
	s.send(s.HRInbox, cancelledSubjectForHR(msg), cancelledBodyForHR(msg))
}
