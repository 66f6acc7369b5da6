package mentor

import (
	"fmt"
	"sort"

	"tradecoach/internal/models"
)

// EnrichedAlert is an alert annotated with its escalation against the
// trailing 30-day trigger history.
type EnrichedAlert struct {
	Alert
	EscalationLevel models.EscalationLevel `json:"escalationLevel"`
	PriorCount      int                    `json:"priorCount"`
	EscalationNote  string                 `json:"escalationNote"`
}

// improvementMinPriors is the historical count above which a now-absent
// pattern counts as an improvement.
const improvementMinPriors = 3

// Escalate annotates alerts with escalation levels from the trigger
// history and derives improvement notes for frequent patterns that did not
// recur. Runs before persistence and before narrative generation.
func Escalate(alerts []Alert, history []models.MentorTrigger) ([]EnrichedAlert, []string) {
	priorCounts := make(map[models.PatternType]int)
	for _, t := range history {
		priorCounts[t.PatternType]++
	}

	enriched := make([]EnrichedAlert, 0, len(alerts))
	current := make(map[models.PatternType]struct{})
	for _, alert := range alerts {
		current[alert.PatternType] = struct{}{}

		prior := priorCounts[alert.PatternType]
		var level models.EscalationLevel
		var note string
		switch {
		case prior == 0:
			level = models.EscalationFirst
			note = "First time this pattern has been detected."
		case prior <= improvementMinPriors:
			level = models.EscalationRecurring
			note = fmt.Sprintf("This pattern has occurred %d time(s) before in the last 30 days.", prior)
		default:
			level = models.EscalationPersistent
			note = fmt.Sprintf("This is a persistent pattern (%d prior occurrences). Consider focused practice on this area.", prior)
		}

		enriched = append(enriched, EnrichedAlert{
			Alert:           alert,
			EscalationLevel: level,
			PriorCount:      prior,
			EscalationNote:  note,
		})
	}

	var frequent []models.PatternType
	for pt, count := range priorCounts {
		if count >= improvementMinPriors {
			if _, active := current[pt]; !active {
				frequent = append(frequent, pt)
			}
		}
	}
	sort.Slice(frequent, func(i, j int) bool { return frequent[i] < frequent[j] })

	var improvements []string
	for _, pt := range frequent {
		improvements = append(improvements,
			fmt.Sprintf("Improvement: '%s' was triggered %d times recently but was not detected now.", pt, priorCounts[pt]))
	}

	return enriched, improvements
}
