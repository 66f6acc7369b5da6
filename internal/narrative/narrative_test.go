package narrative

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopGeneratorMentorFeedback(t *testing.T) {
	feedback, err := NopGenerator{}.MentorFeedback(context.Background(), MentorFacts{
		Alerts: []AlertFact{{PatternType: "overtrading", Severity: "warning"}},
	})
	require.NoError(t, err)
	assert.Nil(t, feedback)
}

func TestNopGeneratorReportSummaryUsesFallback(t *testing.T) {
	summary, err := NopGenerator{}.ReportSummary(context.Background(), ReportFacts{Grade: "B+"})
	require.NoError(t, err)
	assert.Equal(t, FallbackReportSummary("B+"), summary)
	assert.Contains(t, summary, "B+")
}

func TestStripFences(t *testing.T) {
	for _, in := range []string{
		"{\"a\":\"b\"}",
		"```json\n{\"a\":\"b\"}\n```",
		"```\n{\"a\":\"b\"}\n```",
		"  ```json\n{\"a\":\"b\"}\n```  ",
		"```{\"a\":\"b\"}```",
	} {
		assert.Equal(t, `{"a":"b"}`, stripFences(in), "input %q", in)
	}
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Risk", titleCase("risk"))
	assert.Equal(t, "", titleCase(""))
}

func TestOrNA(t *testing.T) {
	assert.Equal(t, "N/A", orNA(""))
	assert.Equal(t, "AAPL", orNA("AAPL"))
}
