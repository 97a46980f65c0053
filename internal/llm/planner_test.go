package llm

import (
	"context"
	"strings"
	"testing"

	"crimewatch-mcp/internal/config"
	serr "crimewatch-mcp/internal/errors"
	"go.uber.org/zap"
)

func testClient(t *testing.T, apiKey string) *Client {
	t.Helper()
	return New(config.Config{
		OpenAIAPIKey:      apiKey,
		DefaultModel:      "gpt-4o-mini",
		AllowedModels:     []string{"gpt-4o-mini"},
		LLMTimeoutSeconds: 45,
	}, zap.NewNop())
}

func TestParsePlanPlainObject(t *testing.T) {
	plan, err := ParsePlan(`{"sql":"SELECT id FROM incidents LIMIT 10","params":{"p1":"GO123"},"explain":"lookup"}`)
	if err != nil {
		t.Fatalf("ParsePlan error = %v", err)
	}
	if plan.SQL != "SELECT id FROM incidents LIMIT 10" {
		t.Fatalf("unexpected sql %q", plan.SQL)
	}
	if plan.Params["p1"] != "GO123" {
		t.Fatalf("unexpected params %v", plan.Params)
	}
	if plan.Explain != "lookup" {
		t.Fatalf("unexpected explain %q", plan.Explain)
	}
}

func TestParsePlanWrappedInProse(t *testing.T) {
	raw := "Here is the plan:\n```json\n{\"sql\":\"SELECT 1 LIMIT 1\"}\n```\nHope that helps."
	plan, err := ParsePlan(raw)
	if err != nil {
		t.Fatalf("ParsePlan error = %v", err)
	}
	if plan.SQL != "SELECT 1 LIMIT 1" {
		t.Fatalf("unexpected sql %q", plan.SQL)
	}
}

func TestParsePlanNoBraces(t *testing.T) {
	_, err := ParsePlan("sorry, I cannot help with that")
	if err == nil {
		t.Fatalf("expected format error")
	}
	if serr.ToToolError(err).Code != serr.CodePlannerFormat {
		t.Fatalf("expected PLANNER_FORMAT, got %v", err)
	}
}

func TestParsePlanMalformedJSON(t *testing.T) {
	_, err := ParsePlan(`{"sql": "SELECT 1" "params"}`)
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if serr.ToToolError(err).Code != serr.CodePlannerParse {
		t.Fatalf("expected PLANNER_PARSE, got %v", err)
	}
}

func TestValidateModel(t *testing.T) {
	c := testClient(t, "")
	if _, err := c.ValidateModel("gpt-9-ultra"); err == nil {
		t.Fatalf("expected rejection for unlisted model")
	} else if serr.ToToolError(err).Code != serr.CodeUnsupportedModel {
		t.Fatalf("expected UNSUPPORTED_MODEL, got %v", err)
	}
	got, err := c.ValidateModel("")
	if err != nil || got != "gpt-4o-mini" {
		t.Fatalf("expected default model, got %q, %v", got, err)
	}
}

func TestCompleteWithoutKeyIsMissingBinding(t *testing.T) {
	c := testClient(t, "")
	if c.Configured() {
		t.Fatalf("expected unconfigured client")
	}
	_, err := c.Chat(context.Background(), ChatRequest{Prompt: "hi", Model: "gpt-4o-mini"})
	if err == nil || serr.ToToolError(err).Code != serr.CodeMissingBinding {
		t.Fatalf("expected MISSING_BINDING, got %v", err)
	}
}

func TestPlannerPromptsMentionRules(t *testing.T) {
	sys := plannerSystemPrompt()
	for _, want := range []string{"SELECT only", "LIMIT", ":p1", "incident_article_link"} {
		if !strings.Contains(sys, want) {
			t.Fatalf("system prompt missing %q", want)
		}
	}
	user := plannerUserPrompt("How many break-ins last month?", `{"tables":[]}`)
	if !strings.Contains(user, "How many break-ins last month?") {
		t.Fatalf("user prompt missing question")
	}
	if !strings.Contains(user, `"tables"`) {
		t.Fatalf("user prompt missing schema JSON")
	}
}

func TestSummaryPromptIncludesPreviewAndNotes(t *testing.T) {
	p := summaryUserPrompt(SummaryRequest{
		Question:     "How many robberies?",
		PlannerNotes: "counts by month",
		SQL:          "SELECT count(*) FROM incidents LIMIT 1",
		RowCount:     1,
		Preview:      []map[string]any{{"count": 42}},
		Model:        "gpt-4o-mini",
	})
	for _, want := range []string{"How many robberies?", "Planner notes: counts by month", "Returned rows: 1", "42"} {
		if !strings.Contains(p, want) {
			t.Fatalf("summary prompt missing %q in:\n%s", want, p)
		}
	}
	// planner notes slot in right after the question
	if strings.Index(p, "Planner notes:") > strings.Index(p, "SQL:") {
		t.Fatalf("planner notes should precede SQL")
	}
}
