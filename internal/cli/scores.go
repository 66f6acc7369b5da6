package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"tradecoach/internal/models"
	"tradecoach/internal/scoring"
)

// addScoreCommands adds scoring and badge commands.
func addScoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newComputeCmd(app))
	rootCmd.AddCommand(newScoresCmd(app))
	rootCmd.AddCommand(newBadgesCmd(app))
}

func newComputeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "compute",
		Short: "Run a scoring pass for today",
		Long: `Compute today's behavioral scores from the trailing 30-day window
and re-evaluate badges. Recomputing the same day replaces its row.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireStore(app); err != nil {
				return err
			}
			output := NewOutput(cmd)

			result, err := app.Scoring.ComputeDaily(cmd.Context())
			if err != nil {
				return fmt.Errorf("scoring pass failed: %w", err)
			}

			if output.IsJSON() {
				return output.JSON(result)
			}

			output.Bold("Behavioral Scores - %s", result.Date)
			output.Println()
			printScoreSet(output, result.Scores)

			if !result.Scores.Eligible {
				output.Println()
				output.Dim("Not enough history yet: %d trades over %d active days. Scores use neutral baselines until 5 trades across 3 days.",
					result.Scores.TradeCount, result.Scores.ActiveDays)
			}

			earned := 0
			for _, b := range result.Badges {
				if b.Earned {
					earned++
				}
			}
			output.Println()
			output.Info("Badges active: %d of %d", earned, len(result.Badges))
			return nil
		},
	}
}

func printScoreSet(output *Output, scores scoring.ScoreSet) {
	table := NewTable(output, "DIMENSION", "SCORE", "GRADE")
	for _, dim := range models.Dimensions {
		value := scores.Score(dim)
		table.AddRow(
			models.DimensionLabels[dim],
			output.FormatScoreColored(value),
			scoring.LetterGrade(value),
		)
	}
	table.AddRow("", "", "")
	avg := scores.Average()
	table.AddRow(output.BoldText("Overall"), output.FormatScoreColored(avg), scoring.LetterGrade(avg))
	table.Render()
}

func newScoresCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scores",
		Short: "Show daily score history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireStore(app); err != nil {
				return err
			}
			output := NewOutput(cmd)
			days, _ := cmd.Flags().GetInt("days")

			scores, err := app.Store.GetDailyScores(cmd.Context(), days)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"scores": scores, "days": days})
			}

			if len(scores) == 0 {
				output.Dim("No scores recorded yet. Run 'tradecoach compute' first.")
				return nil
			}

			table := NewTable(output, "DATE", "RISK", "DISC", "STRAT", "PSYCH", "CONS", "TRADES")
			for _, ds := range scores {
				table.AddRow(
					ds.Date,
					output.FormatScoreColored(ds.Risk),
					output.FormatScoreColored(ds.Discipline),
					output.FormatScoreColored(ds.Strategy),
					output.FormatScoreColored(ds.Psychology),
					output.FormatScoreColored(ds.Consistency),
					fmt.Sprintf("%d", ds.TradeCount),
				)
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().Int("days", scoring.WindowDays, "history window in days")
	return cmd
}

func newBadgesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "badges",
		Short: "Show badge status",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireStore(app); err != nil {
				return err
			}
			output := NewOutput(cmd)

			badges, err := app.Store.GetBadges(cmd.Context())
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"badges": badges})
			}

			if len(badges) == 0 {
				output.Dim("No badges evaluated yet. Run 'tradecoach compute' first.")
				return nil
			}

			table := NewTable(output, "BADGE", "STATUS", "PROGRESS", "FIRST EARNED")
			for _, b := range badges {
				status := output.DimText("locked")
				if b.Active {
					status = output.Green("active")
				} else if b.Earned {
					status = output.Yellow("lapsed")
				}
				firstEarned := "-"
				if b.FirstEarnedAt != nil {
					firstEarned = FormatDate(*b.FirstEarnedAt)
				}
				table.AddRow(
					string(b.BadgeType),
					status,
					fmt.Sprintf("%d/%d days", b.QualifyingDays, b.RequiredDays),
					firstEarned,
				)
			}
			table.Render()
			return nil
		},
	}
}
