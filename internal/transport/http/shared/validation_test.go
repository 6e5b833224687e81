package shared

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
)

func TestValidatorRequired(t *testing.T) {
	v := NewValidator()
	v.Required("firstName", "Ada", "first name is required")
	v.Required("lastName", "  ", "last name is required")
	v.Required("rank", "", "rank is required")

	if !v.HasIssues() {
		t.Fatal("expected issues")
	}
	issues := v.Issues()
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %d", len(issues))
	}
	if issues[0].Field != "lastName" || issues[1].Field != "rank" {
		t.Fatalf("expected sorted fields, got %+v", issues)
	}
}

func TestValidatorNoIssues(t *testing.T) {
	v := NewValidator()
	v.Required("name", "value", "name is required")
	if v.HasIssues() {
		t.Fatalf("unexpected issues: %+v", v.Issues())
	}
	if v.Issues() != nil {
		t.Fatal("expected nil issues slice")
	}

	rec := httptest.NewRecorder()
	if v.Reject(rec, "req-1") {
		t.Fatal("Reject must be a no-op without issues")
	}
}

func TestValidatorReject(t *testing.T) {
	v := NewValidator()
	v.Add("month", "month is required")

	rec := httptest.NewRecorder()
	if !v.Reject(rec, "req-1") {
		t.Fatal("expected rejection")
	}
	if rec.Code != 400 {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string `json:"code"`
			Details struct {
				Fields []ValidationIssue `json:"fields"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Success {
		t.Fatal("expected success=false")
	}
	if body.Error.Code != "validation_error" {
		t.Fatalf("expected validation_error, got %q", body.Error.Code)
	}
	if len(body.Error.Details.Fields) != 1 || body.Error.Details.Fields[0].Field != "month" {
		t.Fatalf("unexpected details: %+v", body.Error.Details.Fields)
	}
}
