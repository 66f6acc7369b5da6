// Package sentiment provides lookup access to the external news-sentiment
// collaborator's cache. This subsystem never fetches or classifies news;
// it only reads what the collaborator already cached. An absent entry means
// "no signal" and is never an error condition for callers.
package sentiment

import (
	"context"

	"tradecoach/internal/models"
)

// Moods the collaborator produces.
const (
	MoodPositive = "positive"
	MoodNegative = "negative"
	MoodNeutral  = "neutral"
)

// Provider looks up cached sentiment for a symbol. The boolean is false
// when no entry is cached; err is reserved for transport failures, which
// callers treat the same as an absent entry.
type Provider interface {
	Cached(ctx context.Context, symbol string) (*models.SentimentSnapshot, bool, error)
}

// NopProvider is a Provider with no backing cache. Every lookup is a miss.
// Used when no sentiment collaborator is configured, degrading sentiment-
// aware detectors and challenges to "no signal".
type NopProvider struct{}

// Cached always reports a miss.
func (NopProvider) Cached(context.Context, string) (*models.SentimentSnapshot, bool, error) {
	return nil, false, nil
}
