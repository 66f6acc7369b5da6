package cli

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"tradecoach/internal/models"
)

// addReportCommands adds report, profile, and behavior commands.
func addReportCommands(rootCmd *cobra.Command, app *App) {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Monthly behavioral reports",
	}
	reportCmd.AddCommand(newReportGenerateCmd(app))
	reportCmd.AddCommand(newReportShowCmd(app))
	reportCmd.AddCommand(newReportHistoryCmd(app))
	rootCmd.AddCommand(reportCmd)

	rootCmd.AddCommand(newProfileCmd(app))
	rootCmd.AddCommand(newBehaviorCmd(app))
}

func newReportGenerateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate a report for the trailing 30 days",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireStore(app); err != nil {
				return err
			}
			output := NewOutput(cmd)

			rpt, err := app.Reports.Generate(cmd.Context())
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(rpt)
			}
			printReport(output, rpt)
			return nil
		},
	}
}

func newReportShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the most recent report",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireStore(app); err != nil {
				return err
			}
			output := NewOutput(cmd)

			rpt, err := app.Store.GetLatestReport(cmd.Context())
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(rpt)
			}
			printReport(output, rpt)
			return nil
		},
	}
}

func newReportHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireStore(app); err != nil {
				return err
			}
			output := NewOutput(cmd)
			limit, _ := cmd.Flags().GetInt("limit")

			reports, err := app.Store.GetReportHistory(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"reports": reports})
			}

			if len(reports) == 0 {
				output.Dim("No reports generated yet.")
				return nil
			}

			table := NewTable(output, "ID", "PERIOD", "GRADE", "PATTERNS", "GENERATED")
			for _, r := range reports {
				table.AddRow(
					r.ID,
					r.PeriodStart+" to "+r.PeriodEnd,
					r.OverallGrade,
					strings.Join(r.PatternsDetected, ", "),
					FormatDate(r.CreatedAt),
				)
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().Int("limit", 12, "maximum reports to list")
	return cmd
}

func printReport(output *Output, rpt *models.MonthlyReport) {
	output.Bold("Monthly Report: %s to %s", rpt.PeriodStart, rpt.PeriodEnd)
	output.Println()

	table := NewTable(output, "DIMENSION", "AVERAGE")
	table.AddRow("Risk Management", output.FormatScoreColored(rpt.Risk))
	table.AddRow("Discipline", output.FormatScoreColored(rpt.Discipline))
	table.AddRow("Strategy", output.FormatScoreColored(rpt.Strategy))
	table.AddRow("Psychology", output.FormatScoreColored(rpt.Psychology))
	table.AddRow("Consistency", output.FormatScoreColored(rpt.Consistency))
	table.Render()

	output.Println()
	output.Printf("Overall grade: %s\n", output.BoldText(rpt.OverallGrade))

	if len(rpt.PatternsDetected) > 0 {
		output.Printf("Patterns detected: %s\n", strings.Join(rpt.PatternsDetected, ", "))
	}
	if rpt.BestTradeID != "" {
		output.Printf("Best trade: %s", rpt.BestTradeID)
		if rpt.WorstTradeID != "" {
			output.Printf("  Worst trade: %s", rpt.WorstTradeID)
		}
		output.Println()
	}

	if len(rpt.BadgeUpdates) > 0 {
		output.Println()
		output.Bold("Badge changes")
		for _, bu := range rpt.BadgeUpdates {
			switch bu.Change {
			case "earned":
				output.Success("  %s %s", bu.BadgeType, bu.Change)
			case "lost":
				output.Warning("  %s %s", bu.BadgeType, bu.Change)
			default:
				output.Printf("  %s %s\n", bu.BadgeType, bu.Change)
			}
		}
	}

	if rpt.Narrative != "" {
		output.Println()
		output.Println(rpt.Narrative)
	}
}

func newProfileCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the trader profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireStore(app); err != nil {
				return err
			}
			output := NewOutput(cmd)

			profile, err := app.Reports.Profile(cmd.Context())
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(profile)
			}

			output.Bold("Trader Profile")
			output.Printf("  Skill level:          %s\n", profile.SkillLevel)
			output.Printf("  Total trades:         %d\n", profile.TotalTrades)
			output.Printf("  Active days (30d):    %d\n", profile.ActiveDays)
			output.Printf("  Win rate:             %s\n", FormatPercent(profile.WinRate))
			output.Printf("  Challenges completed: %d\n", profile.ChallengesCompleted)

			if len(profile.Strengths) > 0 {
				output.Printf("  Strengths:            %s\n", strings.Join(profile.Strengths, ", "))
			}
			if len(profile.Weaknesses) > 0 {
				output.Printf("  Weaknesses:           %s\n", strings.Join(profile.Weaknesses, ", "))
			}

			if len(profile.ActiveBadges) > 0 {
				names := make([]string, 0, len(profile.ActiveBadges))
				for _, b := range profile.ActiveBadges {
					names = append(names, string(b.BadgeType))
				}
				output.Printf("  Active badges:        %s\n", strings.Join(names, ", "))
			}
			return nil
		},
	}
}

func newBehaviorCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "behavior",
		Short: "Show the long-term behavior summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireStore(app); err != nil {
				return err
			}
			output := NewOutput(cmd)

			summary, err := app.Reports.Behavior(cmd.Context())
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(summary)
			}

			output.Bold("Behavior Summary")
			output.Printf("  Scored days:    %d", summary.TotalScoredDays)
			if summary.FirstScoreDate != "" {
				output.Printf(" (since %s)", summary.FirstScoreDate)
			}
			output.Println()
			output.Printf("  Current streak: %d days\n", summary.CurrentStreak)
			output.Printf("  Longest streak: %d days\n", summary.LongestStreak)
			output.Println()

			table := NewTable(output, "DIMENSION", "LAST 30D", "PRIOR 30D", "TREND")
			for _, dim := range models.Dimensions {
				key := string(dim)
				trend := summary.ImprovementTrend[key]
				var colored string
				switch trend {
				case "improving":
					colored = output.Green(trend)
				case "declining":
					colored = output.Red(trend)
				default:
					colored = output.DimText(trend)
				}
				table.AddRow(
					models.DimensionLabels[dim],
					FormatScore(summary.CurrentAvg[key]),
					FormatScore(summary.PreviousAvg[key]),
					colored,
				)
			}
			table.Render()

			if len(summary.TriggerTotals) > 0 {
				output.Println()
				output.Bold("Lifetime pattern totals")
				patterns := make([]string, 0, len(summary.TriggerTotals))
				for p := range summary.TriggerTotals {
					patterns = append(patterns, p)
				}
				sort.Strings(patterns)
				for _, p := range patterns {
					output.Printf("  %s: %d\n", p, summary.TriggerTotals[p])
				}
			}
			return nil
		},
	}
}
