package challenges

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "tradecoach/internal/errors"
	"tradecoach/internal/logging"
	"tradecoach/internal/models"
	"tradecoach/internal/sentiment"
)

// Store is the persistence surface the challenge engine needs.
type Store interface {
	GetBalance(ctx context.Context) (float64, error)
	GetHoldings(ctx context.Context) ([]models.Holding, error)
	GetTransactions(ctx context.Context) ([]models.Transaction, error)
	GetChecklists(ctx context.Context, days int) ([]models.Checklist, error)
	SaveChallenge(ctx context.Context, challenge *models.Challenge) error
	UpdateChallenge(ctx context.Context, id string, current float64, status models.ChallengeStatus, completedAt *time.Time) error
	GetActiveChallenges(ctx context.Context) ([]models.Challenge, error)
}

// Engine seeds challenge instances from the catalog, recomputes their
// progress, and rotates completed and expired instances.
type Engine struct {
	store     Store
	sentiment sentiment.Provider
	log       zerolog.Logger

	// Clock is overridable for tests; defaults to time.Now.
	Clock func() time.Time
}

// NewEngine creates a challenge engine. Fails when the catalog names a type
// with no progress function, or a progress function has no template; both
// are deployment defects that must surface at startup.
func NewEngine(store Store, provider sentiment.Provider, logger zerolog.Logger) (*Engine, error) {
	byType := make(map[models.ChallengeType]struct{}, len(Templates))
	for _, tmpl := range Templates {
		if _, ok := progressFuncs[tmpl.Type]; !ok {
			return nil, apperrors.NewTemplateError("challenge", string(tmpl.Type), "no progress function registered")
		}
		byType[tmpl.Type] = struct{}{}
	}
	for ct := range progressFuncs {
		if _, ok := byType[ct]; !ok {
			return nil, apperrors.NewTemplateError("challenge", string(ct), "progress function has no template")
		}
	}

	return &Engine{
		store:     store,
		sentiment: provider,
		log:       logging.WithComponent(logger, "challenges"),
		Clock:     time.Now,
	}, nil
}

// Active returns current challenges with freshly computed progress, seeding
// the full catalog first when none exist. Progress shown here is display
// only; status transitions happen in Refresh.
func (e *Engine) Active(ctx context.Context) ([]models.Challenge, error) {
	active, err := e.store.GetActiveChallenges(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "load active challenges")
	}

	now := e.Clock().UTC()
	if len(active) == 0 {
		if err := e.seedMissing(ctx, active, now); err != nil {
			return nil, err
		}
		if active, err = e.store.GetActiveChallenges(ctx); err != nil {
			return nil, apperrors.Wrap(err, "reload active challenges")
		}
	}

	facts, err := e.loadFacts(ctx, now)
	if err != nil {
		return nil, err
	}
	for i := range active {
		active[i].Current = e.progress(ctx, active[i].ChallengeType, facts)
	}
	return active, nil
}

// Refresh recomputes progress for every active challenge, transitions
// completed and expired instances, and reseeds so each catalog type has
// exactly one active instance. Returns the active set after rotation.
func (e *Engine) Refresh(ctx context.Context) ([]models.Challenge, error) {
	now := e.Clock().UTC()

	active, err := e.store.GetActiveChallenges(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "load active challenges")
	}

	facts, err := e.loadFacts(ctx, now)
	if err != nil {
		return nil, err
	}

	for _, ch := range active {
		current := e.progress(ctx, ch.ChallengeType, facts)

		switch {
		case current >= ch.Target:
			completed := now
			if err := e.store.UpdateChallenge(ctx, ch.ID, current, models.ChallengeCompleted, &completed); err != nil {
				return nil, apperrors.Wrap(err, "complete challenge")
			}
			logging.LogChallengeTransition(e.log, string(ch.ChallengeType), string(models.ChallengeCompleted), current, ch.Target)
		case now.After(ch.ExpiresAt):
			if err := e.store.UpdateChallenge(ctx, ch.ID, current, models.ChallengeExpired, nil); err != nil {
				return nil, apperrors.Wrap(err, "expire challenge")
			}
			logging.LogChallengeTransition(e.log, string(ch.ChallengeType), string(models.ChallengeExpired), current, ch.Target)
		default:
			if err := e.store.UpdateChallenge(ctx, ch.ID, current, models.ChallengeActive, nil); err != nil {
				return nil, apperrors.Wrap(err, "update challenge progress")
			}
		}
	}

	remaining, err := e.store.GetActiveChallenges(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "reload active challenges")
	}
	if err := e.seedMissing(ctx, remaining, now); err != nil {
		return nil, err
	}

	updated, err := e.store.GetActiveChallenges(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "reload active challenges")
	}
	return updated, nil
}

// seedMissing creates a fresh active instance for every catalog type not in
// the given active set.
func (e *Engine) seedMissing(ctx context.Context, active []models.Challenge, now time.Time) error {
	present := make(map[models.ChallengeType]struct{}, len(active))
	for _, ch := range active {
		present[ch.ChallengeType] = struct{}{}
	}

	for _, tmpl := range Templates {
		if _, ok := present[tmpl.Type]; ok {
			continue
		}
		ch := models.Challenge{
			ID:            "ch-" + string(tmpl.Type) + "-" + uuid.New().String(),
			ChallengeType: tmpl.Type,
			Title:         tmpl.Title,
			Description:   tmpl.Description,
			Target:        tmpl.Target,
			Status:        models.ChallengeActive,
			StartedAt:     now,
			ExpiresAt:     now.AddDate(0, 0, tmpl.DurationDays),
		}
		if err := e.store.SaveChallenge(ctx, &ch); err != nil {
			return apperrors.Wrap(err, "seed challenge")
		}
		e.log.Info().Str("challenge_type", string(tmpl.Type)).Msg("Challenge seeded")
	}
	return nil
}

func (e *Engine) loadFacts(ctx context.Context, now time.Time) (Facts, error) {
	balance, err := e.store.GetBalance(ctx)
	if err != nil {
		return Facts{}, apperrors.Wrap(err, "load balance")
	}
	holdings, err := e.store.GetHoldings(ctx)
	if err != nil {
		return Facts{}, apperrors.Wrap(err, "load holdings")
	}
	transactions, err := e.store.GetTransactions(ctx)
	if err != nil {
		return Facts{}, apperrors.Wrap(err, "load transactions")
	}
	checklists, err := e.store.GetChecklists(ctx, 30)
	if err != nil {
		return Facts{}, apperrors.Wrap(err, "load checklists")
	}
	return Facts{
		Holdings:     holdings,
		Balance:      balance,
		Transactions: transactions,
		Checklists:   checklists,
		Now:          now,
	}, nil
}

func (e *Engine) progress(ctx context.Context, ct models.ChallengeType, facts Facts) float64 {
	fn, ok := progressFuncs[ct]
	if !ok {
		// Unknown types from old rows score zero rather than failing the run.
		return 0
	}
	return fn(ctx, facts, e.sentiment)
}
