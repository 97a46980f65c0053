package tools

import (
	"context"
	"strings"
	"testing"

	"crimewatch-mcp/internal/config"
	"crimewatch-mcp/internal/db"
	serr "crimewatch-mcp/internal/errors"
	"crimewatch-mcp/internal/llm"
	"crimewatch-mcp/internal/schema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

type stubStore struct {
	rs        *db.ResultSet
	execErr   error
	gotSQL    string
	gotParams map[string]any

	articles []db.Article
	artErr   error

	latest string
	digest []db.IncidentDigest
}

func (s *stubStore) Execute(ctx context.Context, stmt string, params map[string]any) (*db.ResultSet, error) {
	s.gotSQL = stmt
	s.gotParams = params
	if s.execErr != nil {
		return nil, s.execErr
	}
	if s.rs == nil {
		return &db.ResultSet{Rows: []map[string]any{}, Columns: []string{}}, nil
	}
	return s.rs, nil
}

func (s *stubStore) FetchArticles(ctx context.Context, f db.ArticlesFilter) ([]db.Article, error) {
	return s.articles, s.artErr
}

func (s *stubStore) RecentDaySummary(ctx context.Context, limit int) (string, []db.IncidentDigest, error) {
	return s.latest, s.digest, nil
}

type stubLLM struct {
	configured bool
	plan       llm.QueryPlan
	planErr    error
	summary    string
	sumErr     error
	chatText   string
	chatErr    error

	gotSummary *llm.SummaryRequest
}

func (l *stubLLM) Configured() bool        { return l.configured }
func (l *stubLLM) AllowedModels() []string { return []string{"gpt-4o-mini"} }

func (l *stubLLM) ValidateModel(model string) (string, error) {
	if model == "" {
		return "gpt-4o-mini", nil
	}
	if model != "gpt-4o-mini" {
		return "", serr.NewUnsupportedModel(model, l.AllowedModels())
	}
	return model, nil
}

func (l *stubLLM) Plan(ctx context.Context, question, schemaJSON, model string) (llm.QueryPlan, error) {
	return l.plan, l.planErr
}

func (l *stubLLM) Summarize(ctx context.Context, req llm.SummaryRequest) (string, error) {
	l.gotSummary = &req
	return l.summary, l.sumErr
}

func (l *stubLLM) Chat(ctx context.Context, req llm.ChatRequest) (string, error) {
	return l.chatText, l.chatErr
}

func testDeps(store *stubStore, model *stubLLM) Dependencies {
	return Dependencies{
		Store:  store,
		LLM:    model,
		Schema: schema.Default(),
		Logger: zap.NewNop(),
		Config: config.Config{DefaultModel: "gpt-4o-mini", AllowedModels: []string{"gpt-4o-mini"}},
	}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatalf("expected content in result")
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return tc.Text
}

func TestCrimeInsightsFallbackWithoutAPIKey(t *testing.T) {
	store := &stubStore{rs: &db.ResultSet{
		Rows:    []map[string]any{{"id": int64(2), "offence_summary": "Theft"}, {"id": int64(1), "offence_summary": "Assault"}},
		Columns: []string{"id", "offence_summary"},
	}}
	model := &stubLLM{configured: false}

	res, out, err := CrimeInsights(context.Background(), testDeps(store, model), CrimeInsightsInput{Q: "what happened recently?"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected isError: %s", resultText(t, res))
	}
	if store.gotSQL != fallbackPlanSQL {
		t.Fatalf("expected fallback plan, got %q", store.gotSQL)
	}
	text := resultText(t, res)
	if !strings.HasPrefix(text, "Rows: 2") {
		t.Fatalf("expected raw preview answer, got %q", text)
	}
	if !strings.Contains(text, "SQL:\n"+fallbackPlanSQL) {
		t.Fatalf("expected SQL echo in answer, got %q", text)
	}
	if out.RowCount != 2 || out.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestCrimeInsightsRejectsUnsupportedModel(t *testing.T) {
	store := &stubStore{}
	model := &stubLLM{configured: true}

	res, _, err := CrimeInsights(context.Background(), testDeps(store, model), CrimeInsightsInput{Q: "anything", Model: "gpt-9-ultra"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected isError result")
	}
	text := resultText(t, res)
	if !strings.Contains(text, "gpt-9-ultra") {
		t.Fatalf("expected unsupported model named, got %q", text)
	}
	if !strings.Contains(text, "gpt-4o-mini") {
		t.Fatalf("expected allow-list in message, got %q", text)
	}
	if store.gotSQL != "" {
		t.Fatal("no query should run on model rejection")
	}
}

func TestCrimeInsightsGuardRejectsMutatingPlan(t *testing.T) {
	store := &stubStore{}
	model := &stubLLM{configured: true, plan: llm.QueryPlan{SQL: "DROP TABLE incidents"}}

	res, _, _ := CrimeInsights(context.Background(), testDeps(store, model), CrimeInsightsInput{Q: "drop it"})
	if !res.IsError {
		t.Fatal("expected isError result")
	}
	if !strings.Contains(resultText(t, res), string(serr.CodeRejectedStatement)) {
		t.Fatalf("expected rejection code, got %q", resultText(t, res))
	}
	if store.gotSQL != "" {
		t.Fatal("rejected statement must not execute")
	}
}

func TestCrimeInsightsAppliesGuardLimit(t *testing.T) {
	store := &stubStore{}
	model := &stubLLM{configured: true, plan: llm.QueryPlan{
		SQL:    "SELECT * FROM incidents WHERE neighbourhood = :hood",
		Params: map[string]any{"hood": "Downtown"},
	}, summary: "quiet day downtown"}

	res, out, _ := CrimeInsights(context.Background(), testDeps(store, model), CrimeInsightsInput{Q: "downtown?"})
	if res.IsError {
		t.Fatalf("unexpected isError: %s", resultText(t, res))
	}
	if !strings.HasSuffix(store.gotSQL, "LIMIT 1000") {
		t.Fatalf("expected guard limit appended, got %q", store.gotSQL)
	}
	if store.gotParams["hood"] != "Downtown" {
		t.Fatalf("params not forwarded: %v", store.gotParams)
	}
	if out.Answer != "quiet day downtown" {
		t.Fatalf("expected summary answer, got %q", out.Answer)
	}
}

func TestCrimeInsightsSummarizeOptOut(t *testing.T) {
	store := &stubStore{rs: &db.ResultSet{Rows: []map[string]any{{"n": int64(3)}}, Columns: []string{"n"}}}
	model := &stubLLM{configured: true, plan: llm.QueryPlan{SQL: "SELECT count(*) AS n FROM incidents LIMIT 1"}}
	off := false

	res, _, _ := CrimeInsights(context.Background(), testDeps(store, model), CrimeInsightsInput{Q: "count", Summarize: &off})
	if res.IsError {
		t.Fatalf("unexpected isError: %s", resultText(t, res))
	}
	if model.gotSummary != nil {
		t.Fatal("summarizer should not run when opted out")
	}
	if !strings.HasPrefix(resultText(t, res), "Rows: 1") {
		t.Fatalf("expected raw answer, got %q", resultText(t, res))
	}
}

func TestCrimeInsightsPreviewLimitBounds(t *testing.T) {
	store := &stubStore{}
	model := &stubLLM{configured: false}

	for _, bad := range []int{-1, 51} {
		res, _, _ := CrimeInsights(context.Background(), testDeps(store, model), CrimeInsightsInput{Q: "x", PreviewLimit: bad})
		if !res.IsError {
			t.Fatalf("expected isError for preview_limit %d", bad)
		}
		if !strings.Contains(resultText(t, res), "preview_limit must be between 1 and 50") {
			t.Fatalf("unexpected message: %q", resultText(t, res))
		}
	}
}

func TestCrimeInsightsEmptyQuestion(t *testing.T) {
	res, _, _ := CrimeInsights(context.Background(), testDeps(&stubStore{}, &stubLLM{}), CrimeInsightsInput{Q: "   "})
	if !res.IsError {
		t.Fatal("expected isError for empty question")
	}
}

func TestCrimeInsightsExecutionFailureIncludesSQL(t *testing.T) {
	store := &stubStore{execErr: serr.NewExecutionFailed(context.DeadlineExceeded, fallbackPlanSQL)}
	model := &stubLLM{configured: false}

	res, _, _ := CrimeInsights(context.Background(), testDeps(store, model), CrimeInsightsInput{Q: "x"})
	if !res.IsError {
		t.Fatal("expected isError result")
	}
	if !strings.Contains(resultText(t, res), fallbackPlanSQL) {
		t.Fatalf("expected SQL in error text, got %q", resultText(t, res))
	}
}

func TestNewsArticlesRendering(t *testing.T) {
	title := "Arrest made downtown"
	url := "https://news.example/a1"
	published := "2025-06-01T12:00:00Z"
	store := &stubStore{articles: []db.Article{{
		ArticleID:        1,
		Title:            &title,
		URL:              &url,
		PublishedAt:      &published,
		RelatedIncidents: []db.RelatedIncident{{IncidentID: 9}},
	}}}

	res, out, _ := NewsArticles(context.Background(), testDeps(store, &stubLLM{}), NewsArticlesInput{})
	if res.IsError {
		t.Fatalf("unexpected isError: %s", resultText(t, res))
	}
	text := resultText(t, res)
	if !strings.Contains(text, "Found 1 articles:") ||
		!strings.Contains(text, "Arrest made downtown") ||
		!strings.Contains(text, "[1 related incidents]") {
		t.Fatalf("unexpected rendering: %q", text)
	}
	if out.Count != 1 {
		t.Fatalf("expected count 1, got %d", out.Count)
	}
}

func TestNewsArticlesEmpty(t *testing.T) {
	res, out, _ := NewsArticles(context.Background(), testDeps(&stubStore{articles: []db.Article{}}, &stubLLM{}), NewsArticlesInput{})
	if resultText(t, res) != "No articles found." {
		t.Fatalf("unexpected text: %q", resultText(t, res))
	}
	if out.Count != 0 {
		t.Fatalf("expected zero count, got %d", out.Count)
	}
}

func TestNewsArticlesLimitValidation(t *testing.T) {
	res, _, _ := NewsArticles(context.Background(), testDeps(&stubStore{}, &stubLLM{}), NewsArticlesInput{Limit: 51})
	if !res.IsError {
		t.Fatal("expected isError for out-of-range limit")
	}
}

func TestRecentDaySummaryEmptyTable(t *testing.T) {
	res, out, _ := RecentDaySummary(context.Background(), testDeps(&stubStore{}, &stubLLM{}), RecentDaySummaryInput{})
	if resultText(t, res) != "No incidents found." {
		t.Fatalf("unexpected text: %q", resultText(t, res))
	}
	if out.Incidents == nil {
		t.Fatal("incidents should be non-nil")
	}
}

func TestRecentDaySummaryRendering(t *testing.T) {
	hood := "Centretown"
	crime := "Theft"
	url := "https://news.example/a2"
	store := &stubStore{latest: "2025-06-02", digest: []db.IncidentDigest{{
		IncidentID:    5,
		Neighbourhood: &hood,
		CrimeType:     &crime,
		ArticleURL:    &url,
	}}}

	res, out, _ := RecentDaySummary(context.Background(), testDeps(store, &stubLLM{}), RecentDaySummaryInput{Limit: 10})
	text := resultText(t, res)
	if !strings.Contains(text, "Most recent day (2025-06-02) incidents (1 shown):") {
		t.Fatalf("unexpected header: %q", text)
	}
	if !strings.Contains(text, "Centretown | Theft | article: https://news.example/a2") {
		t.Fatalf("unexpected line: %q", text)
	}
	if out.LatestDate != "2025-06-02" || out.Count != 1 {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestOpenAIChatValidation(t *testing.T) {
	deps := testDeps(&stubStore{}, &stubLLM{configured: true, chatText: "hi"})

	res, _, _ := OpenAIChat(context.Background(), deps, OpenAIChatInput{Prompt: ""})
	if !res.IsError {
		t.Fatal("expected isError for empty prompt")
	}

	res, out, _ := OpenAIChat(context.Background(), deps, OpenAIChatInput{Prompt: "hello"})
	if res.IsError {
		t.Fatalf("unexpected isError: %s", resultText(t, res))
	}
	if out.Text != "hi" || out.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestRegistryListTools(t *testing.T) {
	reg := NewRegistry()
	reg.Add(Descriptor{Name: "ping", Description: "Ping the server."})
	reg.Add(Descriptor{Name: "", Description: "ignored"})

	res, out, _ := ListTools(context.Background(), reg)
	if out.Count != 1 {
		t.Fatalf("expected one descriptor, got %d", out.Count)
	}
	if !strings.Contains(resultText(t, res), "- ping • Ping the server.") {
		t.Fatalf("unexpected listing: %q", resultText(t, res))
	}
}
