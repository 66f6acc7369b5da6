package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "tradecoach/internal/errors"
	"tradecoach/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for concurrent access
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes, and seeds the
// portfolio row.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Single-row portfolio table for cash balance
	CREATE TABLE IF NOT EXISTS portfolio (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		balance REAL NOT NULL DEFAULT 100000.0,
		starting_balance REAL NOT NULL DEFAULT 100000.0,
		created_at TEXT NOT NULL
	);

	-- Current positions
	CREATE TABLE IF NOT EXISTS holdings (
		symbol TEXT NOT NULL,
		asset_type TEXT NOT NULL CHECK (asset_type IN ('stock', 'crypto')),
		name TEXT NOT NULL DEFAULT '',
		quantity REAL NOT NULL,
		average_price REAL NOT NULL,
		current_price REAL NOT NULL DEFAULT 0,
		PRIMARY KEY (symbol, asset_type)
	);

	-- Append-only trade ledger; timestamps are the raw strings recorded
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		asset_type TEXT NOT NULL CHECK (asset_type IN ('stock', 'crypto')),
		action TEXT NOT NULL CHECK (action IN ('buy', 'sell')),
		quantity REAL NOT NULL,
		price REAL NOT NULL,
		total REAL NOT NULL,
		timestamp TEXT NOT NULL
	);

	-- Pre-trade checklists
	CREATE TABLE IF NOT EXISTS trade_checklists (
		id TEXT PRIMARY KEY,
		transaction_id TEXT NOT NULL DEFAULT '',
		symbol TEXT NOT NULL,
		checked_trend INTEGER NOT NULL DEFAULT 0,
		checked_volume INTEGER NOT NULL DEFAULT 0,
		checked_news INTEGER NOT NULL DEFAULT 0,
		set_stop_loss INTEGER NOT NULL DEFAULT 0,
		set_target INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		completed_count INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	-- Detected behavior patterns; append-only except dismissed
	CREATE TABLE IF NOT EXISTS mentor_triggers (
		id TEXT PRIMARY KEY,
		pattern_type TEXT NOT NULL,
		severity TEXT NOT NULL DEFAULT 'info',
		symbol TEXT,
		message TEXT NOT NULL,
		narrative TEXT,
		dismissed INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	-- One score row per UTC date
	CREATE TABLE IF NOT EXISTS daily_scores (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL UNIQUE,
		risk_score REAL NOT NULL DEFAULT 0,
		discipline_score REAL NOT NULL DEFAULT 0,
		strategy_score REAL NOT NULL DEFAULT 0,
		psychology_score REAL NOT NULL DEFAULT 0,
		consistency_score REAL NOT NULL DEFAULT 0,
		trade_count INTEGER NOT NULL DEFAULT 0,
		active_day INTEGER NOT NULL DEFAULT 1,
		computed_at TEXT NOT NULL
	);

	-- Badge state keyed by type; first_earned_at is sticky
	CREATE TABLE IF NOT EXISTS badges (
		badge_type TEXT PRIMARY KEY,
		earned INTEGER NOT NULL DEFAULT 0,
		active INTEGER NOT NULL DEFAULT 0,
		qualifying_days INTEGER NOT NULL DEFAULT 0,
		required_days INTEGER NOT NULL DEFAULT 0,
		first_earned_at TEXT,
		last_active_at TEXT,
		updated_at TEXT NOT NULL
	);

	-- Challenge instances
	CREATE TABLE IF NOT EXISTS challenges (
		id TEXT PRIMARY KEY,
		challenge_type TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		target_value REAL NOT NULL,
		current_value REAL NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'active',
		started_at TEXT NOT NULL,
		expires_at TEXT NOT NULL,
		completed_at TEXT
	);

	-- Monthly report archive
	CREATE TABLE IF NOT EXISTS monthly_reports (
		id TEXT PRIMARY KEY,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		risk_avg REAL,
		discipline_avg REAL,
		strategy_avg REAL,
		psychology_avg REAL,
		consistency_avg REAL,
		overall_grade TEXT,
		best_trade_id TEXT,
		worst_trade_id TEXT,
		patterns_detected TEXT,
		narrative TEXT,
		badge_updates TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_symbol ON transactions(symbol);
	CREATE INDEX IF NOT EXISTS idx_transactions_timestamp ON transactions(timestamp);
	CREATE INDEX IF NOT EXISTS idx_checklists_created ON trade_checklists(created_at);
	CREATE INDEX IF NOT EXISTS idx_triggers_created ON mentor_triggers(created_at);
	CREATE INDEX IF NOT EXISTS idx_triggers_pattern ON mentor_triggers(pattern_type);
	CREATE INDEX IF NOT EXISTS idx_scores_date ON daily_scores(date);
	CREATE INDEX IF NOT EXISTS idx_challenges_status ON challenges(status);
	CREATE INDEX IF NOT EXISTS idx_reports_created ON monthly_reports(created_at);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	_, err := s.db.Exec(`
		INSERT INTO portfolio (id, balance, starting_balance, created_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, DefaultBalance, DefaultBalance, time.Now().UTC().Format(time.RFC3339))
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// cutoffISO returns the RFC3339 string for now minus the given days.
// String comparison against stored timestamps matches lexicographic ISO
// ordering.
func cutoffISO(days int) string {
	return time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)
}

// cutoffDate is cutoffISO truncated to a calendar date key.
func cutoffDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, -days).Format("2006-01-02")
}

// ============================================================================
// Portfolio Methods
// ============================================================================

// GetBalance returns the current cash balance.
func (s *SQLiteStore) GetBalance(ctx context.Context) (float64, error) {
	var balance float64
	err := s.db.QueryRowContext(ctx, `SELECT balance FROM portfolio WHERE id = 1`).Scan(&balance)
	if err != nil {
		return 0, apperrors.NewStoreError("portfolio", "get_balance", err)
	}
	return balance, nil
}

// SetBalance updates the cash balance.
func (s *SQLiteStore) SetBalance(ctx context.Context, balance float64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE portfolio SET balance = ? WHERE id = 1`, balance)
	if err != nil {
		return apperrors.NewStoreError("portfolio", "set_balance", err)
	}
	return nil
}

// GetHoldings returns all current positions.
func (s *SQLiteStore) GetHoldings(ctx context.Context) ([]models.Holding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, asset_type, name, quantity, average_price, current_price
		FROM holdings
		ORDER BY symbol
	`)
	if err != nil {
		return nil, apperrors.NewStoreError("holdings", "query", err)
	}
	defer rows.Close()

	var holdings []models.Holding
	for rows.Next() {
		var h models.Holding
		if err := rows.Scan(&h.Symbol, &h.AssetType, &h.Name, &h.Quantity, &h.AveragePrice, &h.CurrentPrice); err != nil {
			return nil, apperrors.NewStoreError("holdings", "scan", err)
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

// UpsertHolding inserts or replaces a position. Quantity 0 deletes it.
func (s *SQLiteStore) UpsertHolding(ctx context.Context, holding *models.Holding) error {
	if holding.Quantity <= 0 {
		_, err := s.db.ExecContext(ctx, `
			DELETE FROM holdings WHERE symbol = ? AND asset_type = ?
		`, holding.Symbol, holding.AssetType)
		if err != nil {
			return apperrors.NewStoreError("holdings", "delete", err)
		}
		return nil
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO holdings (symbol, asset_type, name, quantity, average_price, current_price)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol, asset_type) DO UPDATE SET
			name = excluded.name,
			quantity = excluded.quantity,
			average_price = excluded.average_price,
			current_price = excluded.current_price
	`, holding.Symbol, holding.AssetType, holding.Name, holding.Quantity, holding.AveragePrice, holding.CurrentPrice)
	if err != nil {
		return apperrors.NewStoreError("holdings", "upsert", err)
	}
	return nil
}

// ============================================================================
// Transaction Methods
// ============================================================================

// SaveTransaction appends a trade to the ledger.
func (s *SQLiteStore) SaveTransaction(ctx context.Context, tx *models.Transaction) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, symbol, name, asset_type, action, quantity, price, total, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, tx.ID, tx.Symbol, tx.Name, tx.AssetType, tx.Action, tx.Quantity, tx.Price, tx.Total, tx.Timestamp)
	if err != nil {
		return apperrors.NewStoreError("transactions", "insert", err)
	}
	return nil
}

// GetTransactions returns the full ledger, newest first.
func (s *SQLiteStore) GetTransactions(ctx context.Context) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, symbol, name, asset_type, action, quantity, price, total, timestamp
		FROM transactions
		ORDER BY timestamp DESC
	`)
	if err != nil {
		return nil, apperrors.NewStoreError("transactions", "query", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.Symbol, &t.Name, &t.AssetType, &t.Action, &t.Quantity, &t.Price, &t.Total, &t.Timestamp); err != nil {
			return nil, apperrors.NewStoreError("transactions", "scan", err)
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// ============================================================================
// Checklist Methods
// ============================================================================

// SaveChecklist inserts a pre-trade checklist.
func (s *SQLiteStore) SaveChecklist(ctx context.Context, checklist *models.Checklist) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trade_checklists
			(id, transaction_id, symbol, checked_trend, checked_volume, checked_news,
			 set_stop_loss, set_target, skipped, completed_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, checklist.ID, checklist.TransactionID, checklist.Symbol,
		boolInt(checklist.CheckedTrend), boolInt(checklist.CheckedVolume), boolInt(checklist.CheckedNews),
		boolInt(checklist.SetStopLoss), boolInt(checklist.SetTarget), boolInt(checklist.Skipped),
		checklist.CompletedCount, checklist.CreatedAt)
	if err != nil {
		return apperrors.NewStoreError("checklists", "insert", err)
	}
	return nil
}

// GetChecklists returns checklists from the trailing window, newest first.
func (s *SQLiteStore) GetChecklists(ctx context.Context, days int) ([]models.Checklist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, transaction_id, symbol, checked_trend, checked_volume, checked_news,
		       set_stop_loss, set_target, skipped, completed_count, created_at
		FROM trade_checklists
		WHERE created_at >= ?
		ORDER BY created_at DESC
	`, cutoffISO(days))
	if err != nil {
		return nil, apperrors.NewStoreError("checklists", "query", err)
	}
	defer rows.Close()

	var checklists []models.Checklist
	for rows.Next() {
		var c models.Checklist
		var trend, volume, news, stopLoss, target, skipped int
		if err := rows.Scan(&c.ID, &c.TransactionID, &c.Symbol, &trend, &volume, &news,
			&stopLoss, &target, &skipped, &c.CompletedCount, &c.CreatedAt); err != nil {
			return nil, apperrors.NewStoreError("checklists", "scan", err)
		}
		c.CheckedTrend = trend == 1
		c.CheckedVolume = volume == 1
		c.CheckedNews = news == 1
		c.SetStopLoss = stopLoss == 1
		c.SetTarget = target == 1
		c.Skipped = skipped == 1
		checklists = append(checklists, c)
	}
	return checklists, rows.Err()
}

// ============================================================================
// Mentor Trigger Methods
// ============================================================================

// SaveTrigger appends a detected pattern.
func (s *SQLiteStore) SaveTrigger(ctx context.Context, trigger *models.MentorTrigger) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO mentor_triggers (id, pattern_type, severity, symbol, message, narrative, dismissed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, trigger.ID, trigger.PatternType, trigger.Severity, trigger.Symbol,
		trigger.Message, trigger.Narrative, boolInt(trigger.Dismissed), trigger.CreatedAt)
	if err != nil {
		return apperrors.NewStoreError("triggers", "insert", err)
	}
	return nil
}

// DismissTrigger marks a trigger dismissed. Returns ErrTriggerNotFound for
// an unknown id.
func (s *SQLiteStore) DismissTrigger(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE mentor_triggers SET dismissed = 1 WHERE id = ?`, id)
	if err != nil {
		return apperrors.NewStoreError("triggers", "dismiss", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperrors.NewStoreError("triggers", "dismiss", err)
	}
	if affected == 0 {
		return apperrors.ErrTriggerNotFound
	}
	return nil
}

// GetTriggers returns triggers from the trailing window, including
// dismissed ones; escalation counts every detection.
func (s *SQLiteStore) GetTriggers(ctx context.Context, days int) ([]models.MentorTrigger, error) {
	return s.queryTriggers(ctx, `
		SELECT id, pattern_type, severity, symbol, message, narrative, dismissed, created_at
		FROM mentor_triggers
		WHERE created_at >= ?
		ORDER BY created_at DESC
	`, cutoffISO(days))
}

// GetRecentTriggers returns the most recent triggers up to the limit.
func (s *SQLiteStore) GetRecentTriggers(ctx context.Context, limit int) ([]models.MentorTrigger, error) {
	return s.queryTriggers(ctx, `
		SELECT id, pattern_type, severity, symbol, message, narrative, dismissed, created_at
		FROM mentor_triggers
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
}

func (s *SQLiteStore) queryTriggers(ctx context.Context, query string, args ...interface{}) ([]models.MentorTrigger, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("triggers", "query", err)
	}
	defer rows.Close()

	var triggers []models.MentorTrigger
	for rows.Next() {
		var t models.MentorTrigger
		var symbol, narrative sql.NullString
		var dismissed int
		if err := rows.Scan(&t.ID, &t.PatternType, &t.Severity, &symbol, &t.Message, &narrative, &dismissed, &t.CreatedAt); err != nil {
			return nil, apperrors.NewStoreError("triggers", "scan", err)
		}
		t.Symbol = symbol.String
		t.Narrative = narrative.String
		t.Dismissed = dismissed == 1
		triggers = append(triggers, t)
	}
	return triggers, rows.Err()
}

// GetTriggerCounts returns lifetime detection counts per pattern type.
func (s *SQLiteStore) GetTriggerCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pattern_type, COUNT(*) FROM mentor_triggers GROUP BY pattern_type
	`)
	if err != nil {
		return nil, apperrors.NewStoreError("triggers", "count", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var pt string
		var n int
		if err := rows.Scan(&pt, &n); err != nil {
			return nil, apperrors.NewStoreError("triggers", "scan", err)
		}
		counts[pt] = n
	}
	return counts, rows.Err()
}

// ============================================================================
// Daily Score Methods
// ============================================================================

// UpsertDailyScore inserts or updates the score row for its date.
func (s *SQLiteStore) UpsertDailyScore(ctx context.Context, score *models.DailyScore) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO daily_scores
			(id, date, risk_score, discipline_score, strategy_score,
			 psychology_score, consistency_score, trade_count, active_day, computed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			risk_score = excluded.risk_score,
			discipline_score = excluded.discipline_score,
			strategy_score = excluded.strategy_score,
			psychology_score = excluded.psychology_score,
			consistency_score = excluded.consistency_score,
			trade_count = excluded.trade_count,
			active_day = excluded.active_day,
			computed_at = excluded.computed_at
	`, score.ID, score.Date, score.Risk, score.Discipline, score.Strategy,
		score.Psychology, score.Consistency, score.TradeCount, boolInt(score.ActiveDay),
		score.ComputedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return apperrors.NewStoreError("daily_scores", "upsert", err)
	}
	return nil
}

const dailyScoreColumns = `id, date, risk_score, discipline_score, strategy_score,
	psychology_score, consistency_score, trade_count, active_day, computed_at`

// GetDailyScores returns score rows from the trailing window, newest first.
func (s *SQLiteStore) GetDailyScores(ctx context.Context, days int) ([]models.DailyScore, error) {
	return s.queryScores(ctx, `
		SELECT `+dailyScoreColumns+`
		FROM daily_scores
		WHERE date >= ?
		ORDER BY date DESC
	`, cutoffDate(days))
}

// GetAllDailyScores returns every score row, oldest first.
func (s *SQLiteStore) GetAllDailyScores(ctx context.Context) ([]models.DailyScore, error) {
	return s.queryScores(ctx, `
		SELECT `+dailyScoreColumns+`
		FROM daily_scores
		ORDER BY date ASC
	`)
}

// GetLatestDailyScore returns the most recent score row, or ErrDataNotFound.
func (s *SQLiteStore) GetLatestDailyScore(ctx context.Context) (*models.DailyScore, error) {
	scores, err := s.queryScores(ctx, `
		SELECT `+dailyScoreColumns+`
		FROM daily_scores
		ORDER BY date DESC
		LIMIT 1
	`)
	if err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return nil, apperrors.ErrDataNotFound
	}
	return &scores[0], nil
}

func (s *SQLiteStore) queryScores(ctx context.Context, query string, args ...interface{}) ([]models.DailyScore, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("daily_scores", "query", err)
	}
	defer rows.Close()

	var scores []models.DailyScore
	for rows.Next() {
		var ds models.DailyScore
		var activeDay int
		var computedAt string
		if err := rows.Scan(&ds.ID, &ds.Date, &ds.Risk, &ds.Discipline, &ds.Strategy,
			&ds.Psychology, &ds.Consistency, &ds.TradeCount, &activeDay, &computedAt); err != nil {
			return nil, apperrors.NewStoreError("daily_scores", "scan", err)
		}
		ds.ActiveDay = activeDay == 1
		ds.ComputedAt, _ = time.Parse(time.RFC3339, computedAt)
		scores = append(scores, ds)
	}
	return scores, rows.Err()
}

// ============================================================================
// Badge Methods
// ============================================================================

// UpsertBadge inserts or updates a badge keyed by type. first_earned_at is
// sticky across updates; last_active_at moves only while the badge is
// active.
func (s *SQLiteStore) UpsertBadge(ctx context.Context, badge *models.Badge) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO badges
			(badge_type, earned, active, qualifying_days, required_days,
			 first_earned_at, last_active_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(badge_type) DO UPDATE SET
			earned = excluded.earned,
			active = excluded.active,
			qualifying_days = excluded.qualifying_days,
			required_days = excluded.required_days,
			first_earned_at = COALESCE(badges.first_earned_at, excluded.first_earned_at),
			last_active_at = CASE WHEN excluded.active = 1 THEN excluded.updated_at ELSE badges.last_active_at END,
			updated_at = excluded.updated_at
	`, badge.BadgeType, boolInt(badge.Earned), boolInt(badge.Active),
		badge.QualifyingDays, badge.RequiredDays,
		nullTime(badge.FirstEarnedAt), nullTime(badge.LastActiveAt),
		badge.UpdatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return apperrors.NewStoreError("badges", "upsert", err)
	}
	return nil
}

// GetBadges returns all badge states ordered by type.
func (s *SQLiteStore) GetBadges(ctx context.Context) ([]models.Badge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT badge_type, earned, active, qualifying_days, required_days,
		       first_earned_at, last_active_at, updated_at
		FROM badges
		ORDER BY badge_type
	`)
	if err != nil {
		return nil, apperrors.NewStoreError("badges", "query", err)
	}
	defer rows.Close()

	var badges []models.Badge
	for rows.Next() {
		var b models.Badge
		var earned, active int
		var firstEarned, lastActive sql.NullString
		var updatedAt string
		if err := rows.Scan(&b.BadgeType, &earned, &active, &b.QualifyingDays, &b.RequiredDays,
			&firstEarned, &lastActive, &updatedAt); err != nil {
			return nil, apperrors.NewStoreError("badges", "scan", err)
		}
		b.Earned = earned == 1
		b.Active = active == 1
		b.FirstEarnedAt = parseNullTime(firstEarned)
		b.LastActiveAt = parseNullTime(lastActive)
		b.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

// ============================================================================
// Challenge Methods
// ============================================================================

// SaveChallenge inserts a new challenge instance.
func (s *SQLiteStore) SaveChallenge(ctx context.Context, challenge *models.Challenge) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO challenges
			(id, challenge_type, title, description, target_value, current_value,
			 status, started_at, expires_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, challenge.ID, challenge.ChallengeType, challenge.Title, challenge.Description,
		challenge.Target, challenge.Current, challenge.Status,
		challenge.StartedAt.UTC().Format(time.RFC3339),
		challenge.ExpiresAt.UTC().Format(time.RFC3339),
		nullTime(challenge.CompletedAt))
	if err != nil {
		return apperrors.NewStoreError("challenges", "insert", err)
	}
	return nil
}

// UpdateChallenge sets progress and status for one instance.
func (s *SQLiteStore) UpdateChallenge(ctx context.Context, id string, current float64, status models.ChallengeStatus, completedAt *time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE challenges
		SET current_value = ?, status = ?, completed_at = ?
		WHERE id = ?
	`, current, status, nullTime(completedAt), id)
	if err != nil {
		return apperrors.NewStoreError("challenges", "update", err)
	}
	return nil
}

const challengeColumns = `id, challenge_type, title, description, target_value,
	current_value, status, started_at, expires_at, completed_at`

// GetActiveChallenges returns active instances in catalog insertion order.
func (s *SQLiteStore) GetActiveChallenges(ctx context.Context) ([]models.Challenge, error) {
	return s.queryChallenges(ctx, `
		SELECT `+challengeColumns+`
		FROM challenges
		WHERE status = 'active'
		ORDER BY started_at ASC, id ASC
	`)
}

// GetChallengeHistory returns past completed and expired instances, newest
// first.
func (s *SQLiteStore) GetChallengeHistory(ctx context.Context, limit int) ([]models.Challenge, error) {
	return s.queryChallenges(ctx, `
		SELECT `+challengeColumns+`
		FROM challenges
		WHERE status IN ('completed', 'expired')
		ORDER BY COALESCE(completed_at, expires_at) DESC
		LIMIT ?
	`, limit)
}

// CountCompletedChallenges returns the lifetime completion count.
func (s *SQLiteStore) CountCompletedChallenges(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM challenges WHERE status = 'completed'
	`).Scan(&count)
	if err != nil {
		return 0, apperrors.NewStoreError("challenges", "count", err)
	}
	return count, nil
}

func (s *SQLiteStore) queryChallenges(ctx context.Context, query string, args ...interface{}) ([]models.Challenge, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("challenges", "query", err)
	}
	defer rows.Close()

	var challenges []models.Challenge
	for rows.Next() {
		var ch models.Challenge
		var started, expires string
		var completed sql.NullString
		if err := rows.Scan(&ch.ID, &ch.ChallengeType, &ch.Title, &ch.Description, &ch.Target,
			&ch.Current, &ch.Status, &started, &expires, &completed); err != nil {
			return nil, apperrors.NewStoreError("challenges", "scan", err)
		}
		ch.StartedAt, _ = time.Parse(time.RFC3339, started)
		ch.ExpiresAt, _ = time.Parse(time.RFC3339, expires)
		ch.CompletedAt = parseNullTime(completed)
		challenges = append(challenges, ch)
	}
	return challenges, rows.Err()
}

// ============================================================================
// Report Methods
// ============================================================================

// SaveReport appends a monthly report.
func (s *SQLiteStore) SaveReport(ctx context.Context, report *models.MonthlyReport) error {
	patterns, _ := json.Marshal(report.PatternsDetected)
	updates, _ := json.Marshal(report.BadgeUpdates)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO monthly_reports
			(id, period_start, period_end, risk_avg, discipline_avg, strategy_avg,
			 psychology_avg, consistency_avg, overall_grade, best_trade_id,
			 worst_trade_id, patterns_detected, narrative, badge_updates, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, report.ID, report.PeriodStart, report.PeriodEnd,
		report.Risk, report.Discipline, report.Strategy, report.Psychology, report.Consistency,
		report.OverallGrade, report.BestTradeID, report.WorstTradeID,
		string(patterns), report.Narrative, string(updates),
		report.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return apperrors.NewStoreError("reports", "insert", err)
	}
	return nil
}

// GetLatestReport returns the most recent report, or ErrDataNotFound.
func (s *SQLiteStore) GetLatestReport(ctx context.Context) (*models.MonthlyReport, error) {
	reports, err := s.queryReports(ctx, `
		SELECT `+reportColumns+`
		FROM monthly_reports
		ORDER BY created_at DESC
		LIMIT 1
	`)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, apperrors.ErrDataNotFound
	}
	return &reports[0], nil
}

// GetReportHistory returns past reports, newest first.
func (s *SQLiteStore) GetReportHistory(ctx context.Context, limit int) ([]models.MonthlyReport, error) {
	return s.queryReports(ctx, `
		SELECT `+reportColumns+`
		FROM monthly_reports
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
}

const reportColumns = `id, period_start, period_end, risk_avg, discipline_avg,
	strategy_avg, psychology_avg, consistency_avg, overall_grade, best_trade_id,
	worst_trade_id, patterns_detected, narrative, badge_updates, created_at`

func (s *SQLiteStore) queryReports(ctx context.Context, query string, args ...interface{}) ([]models.MonthlyReport, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("reports", "query", err)
	}
	defer rows.Close()

	var reports []models.MonthlyReport
	for rows.Next() {
		var r models.MonthlyReport
		var best, worst, patterns, narrative, updates sql.NullString
		var createdAt string
		if err := rows.Scan(&r.ID, &r.PeriodStart, &r.PeriodEnd,
			&r.Risk, &r.Discipline, &r.Strategy, &r.Psychology, &r.Consistency,
			&r.OverallGrade, &best, &worst, &patterns, &narrative, &updates, &createdAt); err != nil {
			return nil, apperrors.NewStoreError("reports", "scan", err)
		}
		r.BestTradeID = best.String
		r.WorstTradeID = worst.String
		r.Narrative = narrative.String
		if patterns.Valid && patterns.String != "" {
			json.Unmarshal([]byte(patterns.String), &r.PatternsDetected)
		}
		if updates.Valid && updates.String != "" {
			json.Unmarshal([]byte(updates.String), &r.BadgeUpdates)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// ============================================================================
// Helpers
// ============================================================================

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func parseNullTime(ns sql.NullString) *time.Time {
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, ns.String)
	if err != nil {
		return nil
	}
	return &t
}
