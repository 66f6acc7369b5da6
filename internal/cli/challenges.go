package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tradecoach/internal/models"
)

// addChallengeCommands adds the challenges command group.
func addChallengeCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "challenges",
		Short: "Behavioral improvement challenges",
	}

	cmd.AddCommand(newChallengesListCmd(app))
	cmd.AddCommand(newChallengesRefreshCmd(app))
	cmd.AddCommand(newChallengesHistoryCmd(app))

	rootCmd.AddCommand(cmd)
}

func requireChallenges(app *App) error {
	if err := requireStore(app); err != nil {
		return err
	}
	if app.Challenges == nil {
		return errors.New("challenge engine unavailable")
	}
	return nil
}

func newChallengesListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show active challenges with live progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireChallenges(app); err != nil {
				return err
			}
			output := NewOutput(cmd)

			active, err := app.Challenges.Active(cmd.Context())
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"challenges": active})
			}

			printChallenges(output, active)
			return nil
		},
	}
}

func newChallengesRefreshCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Persist progress and advance the challenge lifecycle",
		Long: `Recompute progress for every active challenge, complete those that hit
their target, expire those past their deadline, and reseed so each
challenge type has exactly one active instance.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireChallenges(app); err != nil {
				return err
			}
			output := NewOutput(cmd)

			active, err := app.Challenges.Refresh(cmd.Context())
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"challenges": active})
			}

			output.Success("Challenges refreshed.")
			output.Println()
			printChallenges(output, active)
			return nil
		},
	}
}

func printChallenges(output *Output, challenges []models.Challenge) {
	if len(challenges) == 0 {
		output.Dim("No active challenges.")
		return
	}

	now := time.Now().UTC()
	for _, ch := range challenges {
		pct := ch.ProgressPct()
		output.Bold(ch.Title)
		output.Printf("  %s\n", ch.Description)
		output.Printf("  %s %.0f%% (%.1f of %.0f), %s left\n",
			ProgressBar(pct, 20), pct, ch.Current, ch.Target,
			FormatDaysLeft(ch.ExpiresAt, now))
		output.Println()
	}
}

func newChallengesHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List completed and expired challenges",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireStore(app); err != nil {
				return err
			}
			output := NewOutput(cmd)
			limit, _ := cmd.Flags().GetInt("limit")

			history, err := app.Store.GetChallengeHistory(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"challenges": history})
			}

			if len(history) == 0 {
				output.Dim("No finished challenges yet.")
				return nil
			}

			table := NewTable(output, "CHALLENGE", "STATUS", "PROGRESS", "FINISHED")
			for _, ch := range history {
				status := output.Yellow("expired")
				finished := FormatDate(ch.ExpiresAt)
				if ch.Status == models.ChallengeCompleted {
					status = output.Green("completed")
					if ch.CompletedAt != nil {
						finished = FormatDate(*ch.CompletedAt)
					}
				}
				table.AddRow(
					ch.Title,
					status,
					fmt.Sprintf("%.1f/%.0f", ch.Current, ch.Target),
					finished,
				)
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "maximum challenges to list")
	return cmd
}
