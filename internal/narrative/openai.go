package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"tradecoach/internal/resilience"
	"tradecoach/pkg/utils"
)

// OpenAIGenerator implements Generator using the OpenAI chat API. Calls are
// rate limited and guarded by a circuit breaker; the caller applies the
// deterministic fallback on any error.
type OpenAIGenerator struct {
	client  *openai.Client
	model   string
	limiter *rate.Limiter
	breaker *resilience.CircuitBreaker
}

// NewOpenAIGenerator creates a new OpenAI-backed generator.
func NewOpenAIGenerator(apiKey, model string) *OpenAIGenerator {
	return &OpenAIGenerator{
		client:  openai.NewClient(apiKey),
		model:   model,
		limiter: rate.NewLimiter(rate.Limit(1), 3),
		breaker: resilience.NewCircuitBreaker("narrative", resilience.DefaultCircuitBreakerConfig()),
	}
}

func (g *OpenAIGenerator) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}

	retryCfg := utils.DefaultRetryConfig()
	retryCfg.MaxAttempts = 2

	return resilience.ExecuteWithResult(g.breaker, ctx, func() (string, error) {
		return utils.RetryWithResult(ctx, retryCfg, func() (string, error) {
			resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
				Model: g.model,
				Messages: []openai.ChatCompletionMessage{
					{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
					{Role: openai.ChatMessageRoleUser, Content: userPrompt},
				},
			})
			if err != nil {
				return "", fmt.Errorf("openai completion failed: %w", err)
			}
			if len(resp.Choices) == 0 {
				return "", fmt.Errorf("no response from openai")
			}
			return strings.TrimSpace(resp.Choices[0].Message.Content), nil
		})
	})
}

const mentorSystemPrompt = `You are an educational trading mentor for a virtual paper-trading platform.
Focus on teaching good trading habits and discipline.
Do NOT give buy/sell advice or predict prices.
Do NOT suggest specific trades.
Frame everything as educational and informational.`

// MentorFeedback asks the model for per-pattern feedback and decodes the
// JSON object it returns.
func (g *OpenAIGenerator) MentorFeedback(ctx context.Context, facts MentorFacts) (map[string]string, error) {
	if len(facts.Alerts) == 0 {
		return nil, nil
	}

	var lines []string
	for _, a := range facts.Alerts {
		lines = append(lines, fmt.Sprintf("- [%s] %s", strings.ToUpper(a.Severity), a.Message))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The following behavioral patterns were detected in the user's trading activity:\n\n%s\n",
		strings.Join(lines, "\n"))
	if facts.HistoryContext != "" {
		fmt.Fprintf(&b, "\nHistorical context for this user:\n%s\n\nUse this history to personalize your feedback. "+
			"Acknowledge improvements and escalate recurring issues.\n", facts.HistoryContext)
	}
	if facts.SentimentContext != "" {
		fmt.Fprintf(&b, "\nCurrent market sentiment context for traded assets:\n%s\n\nUse this sentiment data to "+
			"provide context but do NOT predict future movement.\n", facts.SentimentContext)
	}
	b.WriteString(`
Provide a brief (2-3 sentences) educational comment for each pattern.
Return a JSON object with pattern_type as keys and feedback strings as values.
Return ONLY the JSON. No preamble, no markdown blocks.`)

	text, err := g.complete(ctx, mentorSystemPrompt, b.String())
	if err != nil {
		return nil, err
	}

	feedback := make(map[string]string)
	if err := json.Unmarshal([]byte(stripFences(text)), &feedback); err != nil {
		return nil, fmt.Errorf("decode mentor feedback: %w", err)
	}
	return feedback, nil
}

// ReportSummary asks the model for the monthly performance summary.
func (g *OpenAIGenerator) ReportSummary(ctx context.Context, facts ReportFacts) (string, error) {
	var b strings.Builder
	b.WriteString("You are an educational trading mentor reviewing a student's monthly performance.\n\nScores (0-100):\n")
	for _, dim := range []string{"risk", "discipline", "strategy", "psychology", "consistency"} {
		fmt.Fprintf(&b, "- %s: %.0f\n", titleCase(dim), facts.Scores[dim])
	}
	fmt.Fprintf(&b, "\nOverall Grade: %s\n", facts.Grade)
	if len(facts.Patterns) > 0 {
		fmt.Fprintf(&b, "Patterns Detected: %s\n", strings.Join(facts.Patterns, ", "))
	} else {
		b.WriteString("Patterns Detected: None\n")
	}
	fmt.Fprintf(&b, "Best Trade: %s\nWorst Trade: %s\n", orNA(facts.BestSymbol), orNA(facts.WorstSymbol))

	if facts.Trend != nil {
		b.WriteString("\nScore Trends (current vs previous 30 days):\n")
		for _, dim := range []string{"risk", "discipline", "strategy", "psychology", "consistency"} {
			c, p := facts.Trend.Current[dim], facts.Trend.Previous[dim]
			fmt.Fprintf(&b, "  %s: %.0f (prev: %.0f)\n", titleCase(dim), c, p)
		}
	}
	if len(facts.PatternFrequency) > 0 {
		b.WriteString("\nPattern Frequency (30 days):\n")
		patterns := make([]string, 0, len(facts.PatternFrequency))
		for pt := range facts.PatternFrequency {
			patterns = append(patterns, pt)
		}
		sort.Strings(patterns)
		for _, pt := range patterns {
			fmt.Fprintf(&b, "  %s: %dx\n", pt, facts.PatternFrequency[pt])
		}
	}
	if facts.Checklists != nil {
		fmt.Fprintf(&b, "\nChecklist Statistics (30 days):\n  Total checklists: %d\n  Completion rate: %.0f%%\n  Skip rate: %.0f%%\n  Avg items checked: %.1f/5\n",
			facts.Checklists.Total, facts.Checklists.CompletionRate, facts.Checklists.SkipRate, facts.Checklists.AvgItems)
	}
	if facts.Trades != nil {
		fmt.Fprintf(&b, "\nTrade Statistics (30 days):\n  Total trades: %d\n  Buys: %d, Sells: %d\n",
			facts.Trades.Total, facts.Trades.Buys, facts.Trades.Sells)
	}
	if facts.SentimentContext != "" {
		fmt.Fprintf(&b, "\nMarket Context (sentiment during this period):\n%s\nNote: Sentiment data is descriptive only.\n",
			facts.SentimentContext)
	}
	b.WriteString(`
Write a comprehensive but concise (5-7 sentences) educational summary of this month's performance.
Highlight strengths, areas for improvement, comment on trends if data is available,
and give 1-2 actionable tips for the next month.
Do NOT give buy/sell advice or predict prices.
Do NOT suggest specific trades. Keep it educational and encouraging.`)

	return g.complete(ctx, mentorSystemPrompt, b.String())
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// stripFences removes a markdown code fence if the model wrapped its JSON
// in one anyway.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		if idx := strings.Index(text, "\n"); idx >= 0 {
			text = text[idx+1:]
		} else {
			text = text[3:]
		}
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// Breaker exposes the circuit breaker for health reporting.
func (g *OpenAIGenerator) Breaker() *resilience.CircuitBreaker {
	return g.breaker
}
