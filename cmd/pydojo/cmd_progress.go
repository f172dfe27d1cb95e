package main

import (
	"errors"

	"pydojo/internal/app"
	"pydojo/internal/progress"

	"github.com/spf13/cobra"
)

type dashboardJSON struct {
	Progress progress.Record `json:"progress"`
	Passes   int             `json:"passes"`
	XPToNext int             `json:"xp_to_next_level"`
	Percent  int             `json:"level_percent"`
}

func newDashboardCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"progress", "status"},
		Short:   "Show level, streak and module progress",
		Args:    cobra.NoArgs,
		RunE: o.learning(func(cmd *cobra.Command, a *app.App, _ []string) error {
			st := a.DashboardState(cmd.Context())
			payload := dashboardJSON{
				Progress: a.Progress(cmd.Context()),
				Passes:   st.Passes,
				XPToNext: st.XPToNext,
				Percent:  st.LevelPercent,
			}
			return emit(cmd.OutOrStdout(), a, payload, a.View().Dashboard(st))
		}),
	}
}

func newBadgesCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "badges",
		Aliases: []string{"achievements"},
		Short:   "List achievements and which ones you have earned",
		Args:    cobra.NoArgs,
		RunE: o.learning(func(cmd *cobra.Command, a *app.App, _ []string) error {
			rows := a.BadgeRows(cmd.Context())
			return emit(cmd.OutOrStdout(), a, rows, a.View().Badges(rows))
		}),
	}
}

func newResetCmd(o *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase all progress and start over",
		Args:  cobra.NoArgs,
		RunE: o.learning(func(cmd *cobra.Command, a *app.App, _ []string) error {
			if !yes {
				return errors.New("this erases XP, badges and completed lessons; pass --yes to confirm")
			}
			a.Reset(cmd.Context())
			return emit(cmd.OutOrStdout(), a, map[string]bool{"reset": true}, "Progress reset.\n")
		}),
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}
