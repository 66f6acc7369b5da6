package challenges

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradecoach/internal/models"
	"tradecoach/internal/sentiment"
)

type fakeStore struct {
	balance      float64
	holdings     []models.Holding
	transactions []models.Transaction
	checklists   []models.Checklist
	challenges   map[string]models.Challenge
	order        []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{challenges: make(map[string]models.Challenge)}
}

func (s *fakeStore) GetBalance(context.Context) (float64, error) { return s.balance, nil }
func (s *fakeStore) GetHoldings(context.Context) ([]models.Holding, error) {
	return s.holdings, nil
}
func (s *fakeStore) GetTransactions(context.Context) ([]models.Transaction, error) {
	return s.transactions, nil
}
func (s *fakeStore) GetChecklists(context.Context, int) ([]models.Checklist, error) {
	return s.checklists, nil
}

func (s *fakeStore) SaveChallenge(_ context.Context, ch *models.Challenge) error {
	s.challenges[ch.ID] = *ch
	s.order = append(s.order, ch.ID)
	return nil
}

func (s *fakeStore) UpdateChallenge(_ context.Context, id string, current float64, status models.ChallengeStatus, completedAt *time.Time) error {
	ch := s.challenges[id]
	ch.Current = current
	ch.Status = status
	ch.CompletedAt = completedAt
	s.challenges[id] = ch
	return nil
}

func (s *fakeStore) GetActiveChallenges(context.Context) ([]models.Challenge, error) {
	var active []models.Challenge
	for _, id := range s.order {
		if ch := s.challenges[id]; ch.Status == models.ChallengeActive {
			active = append(active, ch)
		}
	}
	return active, nil
}

func newTestEngine(t *testing.T, store Store) *Engine {
	t.Helper()
	engine, err := NewEngine(store, sentiment.NopProvider{}, zerolog.Nop())
	require.NoError(t, err)
	engine.Clock = func() time.Time { return testNow }
	return engine
}

func TestActiveSeedsCatalog(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(t, store)

	active, err := engine.Active(context.Background())
	require.NoError(t, err)
	require.Len(t, active, len(Templates))

	byType := make(map[models.ChallengeType]models.Challenge)
	for _, ch := range active {
		byType[ch.ChallengeType] = ch
		assert.True(t, strings.HasPrefix(ch.ID, "ch-"+string(ch.ChallengeType)+"-"))
		assert.Equal(t, models.ChallengeActive, ch.Status)
	}

	hype := byType[models.ChallengeHypeResistant]
	assert.Equal(t, "Hype Resistant", hype.Title)
	assert.Equal(t, testNow.AddDate(0, 0, 14), hype.ExpiresAt)
	// No buys at all earns full hype-resistant credit.
	assert.Equal(t, 7.0, hype.Current)
}

func TestRefreshCompletesChallengeAtTarget(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(t, store)

	_, err := engine.Active(context.Background())
	require.NoError(t, err)

	// All-cash account with no buys: cash_reserve hits its 7-day target.
	store.balance = 100000
	_, err = engine.Refresh(context.Background())
	require.NoError(t, err)

	var completed []models.Challenge
	for _, ch := range store.challenges {
		if ch.Status == models.ChallengeCompleted {
			completed = append(completed, ch)
		}
	}
	require.NotEmpty(t, completed)

	var found bool
	for _, ch := range completed {
		if ch.ChallengeType == models.ChallengeCashReserve {
			found = true
			assert.Equal(t, 7.0, ch.Current)
			require.NotNil(t, ch.CompletedAt)
			assert.Equal(t, testNow, *ch.CompletedAt)
		}
	}
	assert.True(t, found)
}

func TestRefreshReseedsCompletedTypes(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(t, store)

	_, err := engine.Active(context.Background())
	require.NoError(t, err)
	store.balance = 100000

	active, err := engine.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, active, len(Templates))

	// Exactly one active instance per type after rotation.
	seen := make(map[models.ChallengeType]int)
	for _, ch := range active {
		seen[ch.ChallengeType]++
	}
	for _, tmpl := range Templates {
		assert.Equal(t, 1, seen[tmpl.Type], string(tmpl.Type))
	}
}

func TestRefreshExpiresStaleChallenges(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(t, store)

	stale := models.Challenge{
		ID:            "ch-hold_duration-old",
		ChallengeType: models.ChallengeHoldDuration,
		Title:         "Patient Investor",
		Target:        5,
		Status:        models.ChallengeActive,
		StartedAt:     testNow.AddDate(0, 0, -40),
		ExpiresAt:     testNow.AddDate(0, 0, -10),
	}
	require.NoError(t, store.SaveChallenge(context.Background(), &stale))

	_, err := engine.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.ChallengeExpired, store.challenges["ch-hold_duration-old"].Status)
	assert.Nil(t, store.challenges["ch-hold_duration-old"].CompletedAt)

	// A fresh instance of the expired type was seeded.
	active, err := store.GetActiveChallenges(context.Background())
	require.NoError(t, err)
	var reseeded bool
	for _, ch := range active {
		if ch.ChallengeType == models.ChallengeHoldDuration {
			reseeded = true
		}
	}
	assert.True(t, reseeded)
}

func TestTerminalStatesStayTerminal(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(t, store)

	done := testNow.AddDate(0, 0, -5)
	completed := models.Challenge{
		ID:            "ch-trade_variety-done",
		ChallengeType: models.ChallengeTradeVariety,
		Target:        2,
		Current:       2,
		Status:        models.ChallengeCompleted,
		CompletedAt:   &done,
	}
	require.NoError(t, store.SaveChallenge(context.Background(), &completed))

	_, err := engine.Refresh(context.Background())
	require.NoError(t, err)

	// Refresh only touches active rows; the old completion is untouched.
	got := store.challenges["ch-trade_variety-done"]
	assert.Equal(t, models.ChallengeCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, done, *got.CompletedAt)
}
