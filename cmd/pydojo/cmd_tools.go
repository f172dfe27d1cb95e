package main

import (
	"fmt"
	"strings"

	"pydojo/internal/app"
	"pydojo/internal/ui"

	mcobra "github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/spf13/cobra"
)

func newSuggestCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <code...>",
		Short: "Complete the last word of a line of Python",
		Args:  cobra.MinimumNArgs(1),
		RunE: o.plain(func(cmd *cobra.Command, a *app.App, args []string) error {
			text := strings.Join(args, " ")
			items, hints := a.Suggest(text, len(text))
			payload := map[string]any{"suggestions": items, "hints": hints}
			return emit(cmd.OutOrStdout(), a, payload, a.View().Suggestions(items, hints))
		}),
	}
}

func newThemeCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [variant]",
		Short:     "Show or save the style variant",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: ui.ThemeVariants(),
		RunE: o.plain(func(cmd *cobra.Command, a *app.App, args []string) error {
			if len(args) == 0 {
				current := ui.ThemeForVariant(a.Config().UI.StyleVariant).Name
				var b strings.Builder
				for _, v := range ui.ThemeVariants() {
					marker := "  "
					if v == current {
						marker = "* "
					}
					b.WriteString(marker + v + "\n")
				}
				return emit(cmd.OutOrStdout(), a, map[string]any{"current": current, "variants": ui.ThemeVariants()}, b.String())
			}
			if err := a.SetTheme(cmd.Context(), args[0]); err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), a, map[string]string{"current": args[0]}, fmt.Sprintf("Theme set to %s.\n", args[0]))
		}),
	}
}

func newDevCmd(o *rootOptions) *cobra.Command {
	dev := &cobra.Command{
		Use:   "dev",
		Short: "Developer fixtures",
	}
	dev.AddCommand(&cobra.Command{
		Use:   "scenarios",
		Short: "List progress fixtures",
		Args:  cobra.NoArgs,
		RunE: o.plain(func(cmd *cobra.Command, a *app.App, _ []string) error {
			names := a.ScenarioNames()
			return emit(cmd.OutOrStdout(), a, names, strings.Join(names, "\n")+"\n")
		}),
	})
	dev.AddCommand(&cobra.Command{
		Use:   "seed <scenario>",
		Short: "Replace stored progress with a fixture",
		Args:  cobra.ExactArgs(1),
		RunE: o.plain(func(cmd *cobra.Command, a *app.App, args []string) error {
			info, err := a.SeedScenario(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			text := fmt.Sprintf("Seeded %s (streak %d).\n", args[0], info.StreakDays) + a.View().Toasts(info.Toasts)
			return emit(cmd.OutOrStdout(), a, info, text)
		}),
	})
	return dev
}

func newManCmd(root *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:    "man",
		Short:  "Generate the man page",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := mcobra.NewManPage(1, root)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), page.Build(roff.NewDocument()))
			return err
		},
	}
}
