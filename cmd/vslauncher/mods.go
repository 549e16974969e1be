package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newModsCmd(s *cliState) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "mods",
		Short: "Browse the newest mods in the mod database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := s.app.mods.FetchPage(cmd.Context(), page)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, m := range result.Mods {
				author := ""
				if m.Author != "" {
					author = mutedStyle.Render("by " + m.Author)
				}
				fmt.Fprintf(out, "%s %s %s\n",
					highlightStyle.Render(fmt.Sprintf("%-40s", truncate(m.Name, 40))),
					fmt.Sprintf("%10s ↓ %7s ♥", humanize.Comma(m.Downloads), humanize.Comma(m.Follows)),
					author)
			}
			fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("page %d of %d", result.Page, result.TotalPages)))
			return nil
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 1, "1-based page number")
	return cmd
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
