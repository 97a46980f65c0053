package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestToToolErrorWrapsUnknown(t *testing.T) {
	err := ToToolError(fmt.Errorf("boom: password=secret"))
	if err.Code != CodeInternalError {
		t.Fatalf("expected internal error code, got %s", err.Code)
	}
	if err.Details["cause"] == "boom: password=secret" {
		t.Fatalf("expected scrubbed cause, got %v", err.Details["cause"])
	}
}

func TestToToolErrorPassesThrough(t *testing.T) {
	orig := NewRejectedStatement("mutating SQL is not allowed")
	if got := ToToolError(orig); got != orig {
		t.Fatalf("expected same error back, got %v", got)
	}
}

func TestNewUnsupportedModelListsAllowed(t *testing.T) {
	e := NewUnsupportedModel("gpt-9-ultra", []string{"gpt-4o-mini"})
	if e.Code != CodeUnsupportedModel {
		t.Fatalf("expected %s, got %s", CodeUnsupportedModel, e.Code)
	}
	if !strings.Contains(e.Message, "gpt-9-ultra") {
		t.Fatalf("expected message to name the model, got %q", e.Message)
	}
	if !strings.Contains(fmt.Sprint(e.Details["allowed_models"]), "gpt-4o-mini") {
		t.Fatalf("expected allow-list in details, got %v", e.Details)
	}
}

func TestNewExecutionFailedCarriesSQL(t *testing.T) {
	e := NewExecutionFailed(fmt.Errorf("column nope does not exist"), "SELECT nope FROM incidents")
	if e.Details["sql"] != "SELECT nope FROM incidents" {
		t.Fatalf("expected sql in details, got %v", e.Details)
	}
}
