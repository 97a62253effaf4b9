package shared

import (
	"testing"
)

func TestValidatorCollectsAndSortsIssues(t *testing.T) {
	v := NewValidator()
	v.Required("subject", "", "is required")
	v.Enum("status", "maybe", []string{"approved", "rejected"}, "must be approved or rejected")
	v.Required("reason", "set", "is required")

	if !v.HasIssues() {
		t.Fatal("expected issues")
	}
	issues := v.Issues()
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %d", len(issues))
	}
	if issues[0].Field != "status" || issues[1].Field != "subject" {
		t.Fatalf("issues not sorted by field: %+v", issues)
	}
}

func TestValidatorDate(t *testing.T) {
	v := NewValidator()

	parsed, ok := v.Date("from", "2026-04-01")
	if !ok || parsed.IsZero() {
		t.Fatalf("expected valid date, ok=%v", ok)
	}

	if _, ok := v.Date("to", "01/04/2026"); ok {
		t.Fatal("expected invalid format to fail")
	}
	if !v.HasIssues() {
		t.Fatal("expected an issue for the bad date")
	}
}

func TestValidatorEnumIgnoresEmpty(t *testing.T) {
	v := NewValidator()
	v.Enum("status", "", []string{"approved"}, "must be approved")
	if v.HasIssues() {
		t.Fatal("empty values are handled by Required, not Enum")
	}
}
