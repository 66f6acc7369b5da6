package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"tradecoach/internal/models"
	"tradecoach/internal/scoring"
)

// addMentorCommands adds the mentor command group.
func addMentorCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "mentor",
		Short: "Behavior pattern detection and mentor feedback",
	}

	cmd.AddCommand(newMentorAnalyzeCmd(app))
	cmd.AddCommand(newMentorHistoryCmd(app))
	cmd.AddCommand(newMentorDismissCmd(app))

	rootCmd.AddCommand(cmd)
}

func newMentorAnalyzeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Detect behavior patterns in recent trading",
		Long: `Run pattern detection over current holdings and the trailing trade
window. Detected patterns are persisted, escalated against recent history,
and annotated with mentor feedback when narrative generation is enabled.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireStore(app); err != nil {
				return err
			}
			output := NewOutput(cmd)

			result, err := app.Mentor.Analyze(cmd.Context())
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(result)
			}

			if len(result.Alerts) == 0 {
				output.Success("No risky patterns detected.")
			}
			for _, alert := range result.Alerts {
				tag := output.ColoredString(output.SeverityColor(string(alert.Severity)), strings.ToUpper(string(alert.Severity)))
				output.Printf("[%s] %s", tag, alert.Message)
				if alert.EscalationLevel != models.EscalationFirst {
					output.Printf(" %s", output.DimText("("+string(alert.EscalationLevel)+")"))
				}
				output.Println()
				if alert.Narrative != "" {
					output.Dim("  %s", alert.Narrative)
				}
			}

			if len(result.ImprovementNotes) > 0 {
				output.Println()
				output.Bold("Improvements")
				for _, note := range result.ImprovementNotes {
					output.Success("  %s", note)
				}
			}
			return nil
		},
	}
}

func newMentorHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show detected pattern history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireStore(app); err != nil {
				return err
			}
			output := NewOutput(cmd)
			days, _ := cmd.Flags().GetInt("days")

			triggers, err := app.Store.GetTriggers(cmd.Context(), days)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"triggers": triggers, "days": days})
			}

			if len(triggers) == 0 {
				output.Dim("No patterns detected in the past %d days.", days)
				return nil
			}

			table := NewTable(output, "ID", "PATTERN", "SEVERITY", "SYMBOL", "WHEN", "DISMISSED")
			for _, t := range triggers {
				dismissed := ""
				if t.Dismissed {
					dismissed = "yes"
				}
				table.AddRow(
					t.ID,
					string(t.PatternType),
					output.ColoredString(output.SeverityColor(string(t.Severity)), string(t.Severity)),
					t.Symbol,
					FormatTimestamp(t.CreatedAt),
					dismissed,
				)
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().Int("days", scoring.WindowDays, "history window in days")
	return cmd
}

func newMentorDismissCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dismiss <trigger-id>",
		Short: "Dismiss a mentor alert",
		Long: `Mark an alert dismissed so it no longer shows in the UI. Dismissed
alerts still count toward escalation and psychology scoring.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireStore(app); err != nil {
				return err
			}
			output := NewOutput(cmd)

			if err := app.Store.DismissTrigger(cmd.Context(), args[0]); err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]string{"id": args[0], "status": "dismissed"})
			}
			output.Success("Dismissed %s", args[0])
			return nil
		},
	}
}
