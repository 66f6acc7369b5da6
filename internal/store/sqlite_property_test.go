package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"tradecoach/internal/models"
)

// genScoreValue produces score values in the valid [0, 100] range.
func genScoreValue() gopter.Gen {
	return gen.Float64Range(0, 100)
}

func TestDailyScoreUpsertProperties(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "prop.db"))
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	day := 0
	properties.Property("upserted score rows round trip exactly", prop.ForAll(
		func(risk, discipline, strategy, psychology, consistency float64, tradeCount int) bool {
			day++
			date := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day).Format("2006-01-02")
			score := models.DailyScore{
				ID:          "ds-" + date,
				Date:        date,
				Risk:        risk,
				Discipline:  discipline,
				Strategy:    strategy,
				Psychology:  psychology,
				Consistency: consistency,
				TradeCount:  tradeCount,
				ActiveDay:   tradeCount > 0,
				ComputedAt:  time.Now().UTC(),
			}
			if err := s.UpsertDailyScore(ctx, &score); err != nil {
				return false
			}
			latest, err := s.GetLatestDailyScore(ctx)
			if err != nil {
				return false
			}
			return latest.Date == date &&
				latest.Risk == risk &&
				latest.Discipline == discipline &&
				latest.Strategy == strategy &&
				latest.Psychology == psychology &&
				latest.Consistency == consistency &&
				latest.TradeCount == tradeCount
		},
		genScoreValue(), genScoreValue(), genScoreValue(), genScoreValue(), genScoreValue(),
		gen.IntRange(0, 50),
	))

	properties.Property("re-upserting the same date never grows the table", prop.ForAll(
		func(first, second float64) bool {
			const date = "2019-06-15"
			for _, risk := range []float64{first, second} {
				score := models.DailyScore{ID: "ds-" + date, Date: date, Risk: risk, ComputedAt: time.Now().UTC()}
				if err := s.UpsertDailyScore(ctx, &score); err != nil {
					return false
				}
			}
			all, err := s.GetAllDailyScores(ctx)
			if err != nil {
				return false
			}
			seen := 0
			for _, ds := range all {
				if ds.Date == date {
					seen++
					if ds.Risk != second {
						return false
					}
				}
			}
			return seen == 1
		},
		genScoreValue(), genScoreValue(),
	))

	properties.TestingRun(t)
}

func TestTransactionOrderingProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	run := 0
	properties.Property("ledger reads back newest first regardless of insert order", prop.ForAll(
		func(offsets []int8) bool {
			run++
			s, err := NewSQLiteStore(filepath.Join(t.TempDir(), fmt.Sprintf("order-%d.db", run)))
			if err != nil {
				return false
			}
			defer s.Close()
			ctx := context.Background()

			base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
			for i, off := range offsets {
				tx := models.Transaction{
					ID:        fmt.Sprintf("t%d", i),
					Symbol:    "AAPL",
					AssetType: models.AssetStock,
					Action:    models.ActionBuy,
					Quantity:  1,
					Price:     100,
					Total:     100,
					Timestamp: base.Add(time.Duration(off) * time.Minute).Format(time.RFC3339),
				}
				if err := s.SaveTransaction(ctx, &tx); err != nil {
					return false
				}
			}

			transactions, err := s.GetTransactions(ctx)
			if err != nil || len(transactions) != len(offsets) {
				return false
			}
			for i := 1; i < len(transactions); i++ {
				if transactions[i-1].Timestamp < transactions[i].Timestamp {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Int8Range(-120, 120)),
	))

	properties.TestingRun(t)
}
