package notifications

import (
	"fmt"
	"strings"
	"time"
)

// LeaveLine is one leave-type block in a request summary.
type LeaveLine struct {
	TypeName string
	Count    float64
	Dates    []time.Time
}

type LeaveMessage struct {
	ApplicationID string
	EmployeeName  string
	Subject       string
	Reason        string
	Comment       string
	Leaves        []LeaveLine
}

func formatDates(dates []time.Time) string {
	parts := make([]string, 0, len(dates))
	for _, d := range dates {
		parts = append(parts, d.Format("02/01/06"))
	}
	return strings.Join(parts, ", ")
}

func leaveSummary(lines []LeaveLine) string {
	var b strings.Builder
	for _, line := range lines {
		fmt.Fprintf(&b, "  %s: %.1f day(s)", line.TypeName, line.Count)
		if len(line.Dates) > 0 {
			fmt.Fprintf(&b, " on %s", formatDates(line.Dates))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func requestSubjectForHR(msg LeaveMessage) string {
	return fmt.Sprintf("New Leave Request from %s", msg.EmployeeName)
}

func requestBodyForHR(msg LeaveMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s has submitted a new leave request.\n\n", msg.EmployeeName)
	fmt.Fprintf(&b, "Application: %s\n", msg.ApplicationID)
	fmt.Fprintf(&b, "Subject: %s\n", msg.Subject)
	fmt.Fprintf(&b, "Reason: %s\n\n", msg.Reason)
	b.WriteString("Requested leaves:\n")
	b.WriteString(leaveSummary(msg.Leaves))
	b.WriteString("\nPlease review the request in the dashboard.\n")
	return b.String()
}

func submittedSubjectForEmployee() string {
	return "Your Leave Request Has Been Submitted"
}

func submittedBodyForEmployee(msg LeaveMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", msg.EmployeeName)
	fmt.Fprintf(&b, "Your leave request %s has been submitted and is pending review.\n\n", msg.ApplicationID)
	fmt.Fprintf(&b, "Subject: %s\n", msg.Subject)
	fmt.Fprintf(&b, "Reason: %s\n\n", msg.Reason)
	b.WriteString("Requested leaves:\n")
	b.WriteString(leaveSummary(msg.Leaves))
	b.WriteString("\nYou will be notified once it is reviewed.\n")
	return b.String()
}

func approvedSubjectForEmployee() string {
	return "Your Leave Has Been Approved"
}

func approvedBodyForEmployee(msg LeaveMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", msg.EmployeeName)
	fmt.Fprintf(&b, "Your leave request %s has been approved.\n\n", msg.ApplicationID)
	fmt.Fprintf(&b, "Subject: %s\n", msg.Subject)
	if msg.Comment != "" {
		fmt.Fprintf(&b, "HR comment: %s\n", msg.Comment)
	}
	b.WriteString("\nApproved leaves:\n")
	b.WriteString(leaveSummary(msg.Leaves))
	return b.String()
}

func rejectedSubjectForEmployee() string {
	return "Your Leave Request Has Been Rejected"
}

func rejectedBodyForEmployee(msg LeaveMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", msg.EmployeeName)
	fmt.Fprintf(&b, "Your leave request %s has been rejected.\n\n", msg.ApplicationID)
	fmt.Fprintf(&b, "Subject: %s\n", msg.Subject)
	if msg.Comment != "" {
		fmt.Fprintf(&b, "HR comment: %s\n", msg.Comment)
	}
	b.WriteString("\nRequested leaves:\n")
	b.WriteString(leaveSummary(msg.Leaves))
	return b.String()
}

func cancelledSubjectForHR(msg LeaveMessage) string {
	return fmt.Sprintf("Leave Request Cancelled by %s", msg.EmployeeName)
}

func cancelledBodyForHR(msg LeaveMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s has cancelled leave request %s.\n\n", msg.EmployeeName, msg.ApplicationID)
	fmt.Fprintf(&b, "Subject: %s\n", msg.Subject)
	b.WriteString("\nCancelled leaves:\n")
	b.WriteString(leaveSummary(msg.Leaves))
	return b.String()
}
