// Package badges evaluates achievement badges against the rolling 30-day
// score history.
//
// Definitions are configuration, not code: a badge is a dimension, a
// threshold, and a required qualifying-day count, with an optional veto
// predicate over the window's mentor triggers. New veto rules compose by
// adding a predicate, not by branching the evaluator.
package badges

import "tradecoach/internal/models"

// VetoRule forces a badge to not-earned even when the threshold rule
// passed. It sees the evaluation window's mentor triggers.
type VetoRule func(triggers []models.MentorTrigger) bool

// NoPatternVeto vetoes if any trigger of the given pattern occurred in the
// window.
func NoPatternVeto(pattern models.PatternType) VetoRule {
	return func(triggers []models.MentorTrigger) bool {
		for _, t := range triggers {
			if t.PatternType == pattern {
				return true
			}
		}
		return false
	}
}

// Definition describes one badge.
type Definition struct {
	Type         models.BadgeType
	Label        string
	Dimension    models.Dimension
	Threshold    float64
	RequiredDays int
	Veto         VetoRule // nil when the badge has no veto rule
}

// requiredDays is the shared qualifying-day requirement: 21 of 30.
const requiredDays = 21

// catalog holds the six badge definitions.
var catalog = []Definition{
	{Type: models.BadgeRiskGuardian, Label: "Risk Guardian", Dimension: models.DimensionRisk, Threshold: 75, RequiredDays: requiredDays},
	{Type: models.BadgeDisciplineMaster, Label: "Discipline Master", Dimension: models.DimensionDiscipline, Threshold: 80, RequiredDays: requiredDays},
	{Type: models.BadgeConsistencyPro, Label: "Consistency Pro", Dimension: models.DimensionConsistency, Threshold: 70, RequiredDays: requiredDays},
	{Type: models.BadgeStrategyBuilder, Label: "Strategy Builder", Dimension: models.DimensionStrategy, Threshold: 70, RequiredDays: requiredDays},
	{Type: models.BadgePsychologyChampion, Label: "Psychology Champion", Dimension: models.DimensionPsychology, Threshold: 75, RequiredDays: requiredDays},
	{Type: models.BadgeMarketAware, Label: "Market Aware", Dimension: models.DimensionPsychology, Threshold: 70, RequiredDays: requiredDays,
		Veto: NoPatternVeto(models.PatternSentimentFOMO)},
}

// Catalog returns the badge definitions in evaluation order.
func Catalog() []Definition {
	out := make([]Definition, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the definition for a badge type.
func Lookup(badgeType models.BadgeType) (Definition, bool) {
	for _, d := range catalog {
		if d.Type == badgeType {
			return d, true
		}
	}
	return Definition{}, false
}

// Evaluation is the outcome of evaluating one badge against a window.
type Evaluation struct {
	Type           models.BadgeType `json:"badgeType"`
	Label          string           `json:"label"`
	Earned         bool             `json:"earned"`
	Active         bool             `json:"active"`
	QualifyingDays int              `json:"qualifyingDays"`
	RequiredDays   int              `json:"requiredDays"`
}

// Evaluate scores every badge against the score history window. A
// qualifying day is a row whose dimension score meets the threshold.
// Active mirrors earned at evaluation time; stickiness of firstEarnedAt is
// the persistence layer's concern.
func Evaluate(history []models.DailyScore, triggers []models.MentorTrigger) []Evaluation {
	results := make([]Evaluation, 0, len(catalog))
	for _, def := range catalog {
		var qualifying int
		for _, ds := range history {
			if ds.Score(def.Dimension) >= def.Threshold {
				qualifying++
			}
		}

		earned := qualifying >= def.RequiredDays
		if earned && def.Veto != nil && def.Veto(triggers) {
			earned = false
		}

		results = append(results, Evaluation{
			Type:           def.Type,
			Label:          def.Label,
			Earned:         earned,
			Active:         earned,
			QualifyingDays: qualifying,
			RequiredDays:   def.RequiredDays,
		})
	}
	return results
}
