package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	From    string
	To      string
	Subject string
	Body    string
}

type chanMailer struct {
	sent chan sentMail
}

func newChanMailer() *chanMailer {
	return &chanMailer{sent: make(chan sentMail, 8)}
}

func (m *chanMailer) Send(_ context.Context, from, to, subject, body string) error {
	m.sent <- sentMail{From: from, To: to, Subject: subject, Body: body}
	return nil
}

func (m *chanMailer) wait(t *testing.T, n int) []sentMail {
	t.Helper()
	mails := make([]sentMail, 0, n)
	for len(mails) < n {
		select {
		case mail := <-m.sent:
			mails = append(mails, mail)
		case <-time.After(2 * time.Second):
			t.Fatalf("expected %d mails, got %d", n, len(mails))
		}
	}
	return mails
}

func testMessage() LeaveMessage {
	return LeaveMessage{
		ApplicationID: "app-1",
		EmployeeName:  "Ada Lovelace",
		Subject:       "Family function",
		Reason:        "Out of town",
		Leaves: []LeaveLine{{
			TypeName: "Casual Leave",
			Count:    1.5,
			Dates: []time.Time{
				time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC),
				time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC),
			},
		}},
	}
}

func TestLeaveSubmittedNotifiesHRAndEmployee(t *testing.T) {
	mailer := newChanMailer()
	svc := New(mailer, "no-reply@example.com", "hr@example.com")

	svc.LeaveSubmitted("ada@example.com", testMessage())

	mails := mailer.wait(t, 2)
	recipients := map[string]sentMail{}
	for _, mail := range mails {
		recipients[mail.To] = mail
	}

	hrMail, ok := recipients["hr@example.com"]
	require.True(t, ok, "expected mail to the HR inbox")
	assert.Equal(t, "New Leave Request from Ada Lovelace", hrMail.Subject)
	assert.Contains(t, hrMail.Body, "Casual Leave: 1.5 day(s)")
	assert.Contains(t, hrMail.Body, "04/05/26, 05/05/26")

	empMail, ok := recipients["ada@example.com"]
	require.True(t, ok, "expected mail to the applicant")
	assert.Equal(t, "Your Leave Request Has Been Submitted", empMail.Subject)
	assert.Contains(t, empMail.Body, "Hi Ada Lovelace")
	assert.Equal(t, "no-reply@example.com", empMail.From)
}

func TestLeaveApprovedCarriesHRComment(t *testing.T) {
	mailer := newChanMailer()
	svc := New(mailer, "no-reply@example.com", "hr@example.com")

	msg := testMessage()
	msg.Comment = "Enjoy your time off"
	svc.LeaveApproved("ada@example.com", msg)

	mail := mailer.wait(t, 1)[0]
	assert.Equal(t, "Your Leave Has Been Approved", mail.Subject)
	assert.Contains(t, mail.Body, "HR comment: Enjoy your time off")
}

func TestLeaveRejectedSubject(t *testing.T) {
	mailer := newChanMailer()
	svc := New(mailer, "no-reply@example.com", "hr@example.com")

	svc.LeaveRejected("ada@example.com", testMessage())

	mail := mailer.wait(t, 1)[0]
	assert.Equal(t, "Your Leave Request Has Been Rejected", mail.Subject)
}

func TestLeaveCancelledGoesToHRInbox(t *testing.T) {
	mailer := newChanMailer()
	svc := New(mailer, "no-reply@example.com", "hr@example.com")

	svc.LeaveCancelled(testMessage())

	mail := mailer.wait(t, 1)[0]
	assert.Equal(t, "hr@example.com", mail.To)
	assert.Equal(t, "Leave Request Cancelled by Ada Lovelace", mail.Subject)
}

func TestSendSkipsEmptyRecipient(t *testing.T) {
	mailer := newChanMailer()
	svc := New(mailer, "no-reply@example.com", "")

	svc.LeaveCancelled(testMessage())

	select {
	case mail := <-mailer.sent:
		t.Fatalf("expected no mail, got one to %s", mail.To)
	case <-time.After(50 * time.Millisecond):
	}
}
