package prompts

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"crimewatch-mcp/internal/mcpserver/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterAll registers all prompts with the MCP server.
func RegisterAll(server *mcp.Server, deps tools.Dependencies) {
	server.AddPrompt(&mcp.Prompt{Name: "/crime.daily_briefing", Title: "Daily crime briefing", Description: "Digest of the most recent reported day with article links"}, promptDailyBriefing(deps))
	server.AddPrompt(&mcp.Prompt{Name: "/crime.investigation_workflow", Title: "Crime investigation workflow", Description: "Step-by-step guidance for digging into a question"}, promptInvestigationWorkflow(deps))
	server.AddPrompt(&mcp.Prompt{Name: "/crime.neighbourhood_profile", Title: "Neighbourhood profile", Description: "Suggested questions for profiling one neighbourhood"}, promptNeighbourhoodProfile(deps))
}

func promptDailyBriefing(deps tools.Dependencies) mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		var digestText string
		var checklist strings.Builder
		checklist.WriteString("### 🗞️ Daily Crime Briefing\n")
		checklist.WriteString("- [ ] Run `recent_day_summary`\n")
		checklist.WriteString("- [ ] Review incidents with linked articles\n")
		checklist.WriteString("- [ ] Follow up notable incidents via `crime_insights`\n\n")

		_, out, err := tools.RecentDaySummary(ctx, deps, tools.RecentDaySummaryInput{})
		if err == nil && out.LatestDate != "" {
			withArticle := 0
			for _, d := range out.Incidents {
				if d.ArticleURL != nil && *d.ArticleURL != "" {
					withArticle++
				}
			}
			checklist.WriteString(fmt.Sprintf("**Latest reported day**: %s\n", out.LatestDate))
			checklist.WriteString(fmt.Sprintf("**Incidents shown**: %d (%d with article coverage)\n\n", out.Count, withArticle))
			b, _ := json.MarshalIndent(out, "", "  ")
			digestText = fmt.Sprintf("```json\n%s\n```", string(b))
		} else if err != nil {
			digestText = fmt.Sprintf("⚠️ Unable to fetch recent day digest: %v", err)
		} else {
			digestText = "No incidents recorded yet."
		}

		messages := []*mcp.PromptMessage{
			{Role: mcp.Role("system"), Content: &mcp.TextContent{Text: "You are a concise crime analyst. Provide checklists and actionable next steps."}},
			{Role: mcp.Role("assistant"), Content: &mcp.TextContent{Text: checklist.String() + digestText}},
		}
		return &mcp.GetPromptResult{Description: "Daily crime briefing", Messages: messages}, nil
	}
}

func promptInvestigationWorkflow(deps tools.Dependencies) mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		var b strings.Builder
		b.WriteString("### 🔍 Crime Investigation Workflow\n")
		b.WriteString("1) Ask the dataset directly\n")
		b.WriteString("```json\n{\n  \"q\": \"What were the most common offences last month?\"\n}\n```\nRun: `crime_insights`\n\n")
		b.WriteString("2) Pull related coverage\n")
		b.WriteString("```json\n{\n  \"query\": \"<keyword from step 1>\",\n  \"limit\": 10\n}\n```\nRun: `news_articles`\n\n")
		b.WriteString("3) Check the latest day\n")
		b.WriteString("```json\n{\n  \"limit\": 25\n}\n```\nRun: `recent_day_summary`\n\n")
		b.WriteString("Notes:\n- `crime_insights` accepts `summarize: false` to get the raw rows.\n- Narrow follow-ups beat broad first questions; include a neighbourhood or date range.\n")
		messages := []*mcp.PromptMessage{
			{Role: mcp.Role("system"), Content: &mcp.TextContent{Text: "You are a concise crime-data assistant. Provide step-by-step guidance."}},
			{Role: mcp.Role("assistant"), Content: &mcp.TextContent{Text: b.String()}},
		}
		return &mcp.GetPromptResult{Description: "Crime investigation workflow", Messages: messages}, nil
	}
}

func promptNeighbourhoodProfile(deps tools.Dependencies) mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		neighbourhood := ""
		if req != nil && req.Params != nil && req.Params.Arguments != nil {
			neighbourhood = strings.TrimSpace(req.Params.Arguments["neighbourhood"])
		}

		if neighbourhood == "" {
			msg := "### 🏘️ Neighbourhood Profile\n- Provide `neighbourhood` argument.\n- Example: get_prompt /crime.neighbourhood_profile arguments:{\"neighbourhood\":\"Centretown\"}\n"
			messages := []*mcp.PromptMessage{
				{Role: mcp.Role("assistant"), Content: &mcp.TextContent{Text: msg}},
			}
			return &mcp.GetPromptResult{Description: "Provide neighbourhood argument", Messages: messages}, nil
		}

		var b strings.Builder
		b.WriteString("### 🏘️ Neighbourhood Profile\n")
		b.WriteString(fmt.Sprintf("**Target neighbourhood**: %s\n\n", neighbourhood))
		b.WriteString("1) Volume and trend\n")
		b.WriteString(fmt.Sprintf("Run: `crime_insights` with `{\"q\":\"How many incidents were reported in %s in the last 90 days, by offence category?\"}`\n\n", neighbourhood))
		b.WriteString("2) Timing patterns\n")
		b.WriteString(fmt.Sprintf("Run: `crime_insights` with `{\"q\":\"Which days of the week and times of day see the most incidents in %s?\"}`\n\n", neighbourhood))
		b.WriteString("3) Coverage:\n")
		b.WriteString(fmt.Sprintf("- `news_articles` with `{\"query\":\"%s\"}` for local reporting\n", neighbourhood))
		b.WriteString("- `recent_day_summary` to see if it appears in the latest day\n")

		messages := []*mcp.PromptMessage{
			{Role: mcp.Role("system"), Content: &mcp.TextContent{Text: "You are a concise crime-data assistant. Suggest next tools to run."}},
			{Role: mcp.Role("assistant"), Content: &mcp.TextContent{Text: b.String()}},
		}
		return &mcp.GetPromptResult{Description: "Neighbourhood profile", Messages: messages}, nil
	}
}
