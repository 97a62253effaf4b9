package leavehandler

import (
	"testing"
	"time"

	"leavedesk/internal/domain/leave"
)

func wfhApp(id string, dates ...time.Time) leave.WFHApplication {
	return leave.WFHApplication{ID: id, Dates: dates, CreatedAt: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)}
}

func TestGroupWFHByMonth(t *testing.T) {
	may := time.Date(2026, 5, 11, 0, 0, 0, 0, time.UTC)
	june := time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC)

	groups := groupWFHByMonth([]leave.WFHApplication{
		wfhApp("a", may),
		wfhApp("b", june),
		wfhApp("c", may.AddDate(0, 0, 3)),
	})

	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Month != "2026-05" || groups[1].Month != "2026-06" {
		t.Fatalf("unexpected group order: %s, %s", groups[0].Month, groups[1].Month)
	}
	if len(groups[0].Applications) != 2 {
		t.Fatalf("expected 2 applications in 2026-05, got %d", len(groups[0].Applications))
	}
	if groups[0].Applications[0].ID != "a" || groups[0].Applications[1].ID != "c" {
		t.Fatal("expected applications to keep submission order within a month")
	}
}

func TestGroupWFHByMonthFallsBackToCreatedAt(t *testing.T) {
	groups := groupWFHByMonth([]leave.WFHApplication{wfhApp("a")})

	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if groups[0].Month != "2026-01" {
		t.Fatalf("expected month from creation time, got %s", groups[0].Month)
	}
}

func TestGroupWFHByMonthEmpty(t *testing.T) {
	if groups := groupWFHByMonth(nil); len(groups) != 0 {
		t.Fatalf("expected no groups, got %d", len(groups))
	}
}
