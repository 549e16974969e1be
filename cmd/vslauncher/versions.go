package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vslauncher/launcher/internal/catalog"
	"github.com/vslauncher/launcher/internal/domain"
)

func newVersionsCmd(s *cliState) *cobra.Command {
	var (
		filter        string
		channels      string
		ascending     bool
		installedOnly bool
	)

	cmd := &cobra.Command{
		Use:   "versions",
		Short: "List game versions from the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mask, err := domain.ParseChannelMask(channels)
			if err != nil {
				return err
			}
			order := domain.Descending
			if ascending {
				order = domain.Ascending
			}

			versions, err := s.app.catalog.FetchCatalog(cmd.Context())
			if err != nil {
				if !installedOnly {
					return err
				}
				// installed versions are listable without the catalog
				log.Warn().Err(err).Msg("Catalog unavailable, listing the local version cache")
				return printInstalled(cmd, s)
			}

			versions = catalog.Sort(catalog.Filter(versions, strings.TrimSpace(filter), mask), order)

			out := cmd.OutOrStdout()
			shown := 0
			for _, v := range versions {
				_, installed := s.app.index.Lookup(v.ID)
				if installedOnly && !installed {
					continue
				}
				marker := "  "
				if installed {
					marker = successStyle.Render("● ")
				}
				released := ""
				if !v.ReleasedAt.IsZero() {
					released = mutedStyle.Render(humanize.Time(v.ReleasedAt))
				}
				fmt.Fprintf(out, "%s%s %s %s\n",
					marker,
					highlightStyle.Render(fmt.Sprintf("%-18s", v.ID)),
					channelStyle(string(v.Channel)).Render(fmt.Sprintf("%-8s", v.Channel)),
					released,
				)
				shown++
			}

			if shown == 0 {
				fmt.Fprintln(out, mutedStyle.Render("No versions match."))
				return nil
			}
			fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("%d version(s), %d installed", shown, s.app.index.Len())))
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "", "case-insensitive substring of the version ID")
	cmd.Flags().StringVarP(&channels, "channel", "c", "", "comma-separated channels: stable, rc, preview, dev (default all)")
	cmd.Flags().BoolVar(&ascending, "asc", false, "oldest first")
	cmd.Flags().BoolVar(&installedOnly, "installed", false, "only installed versions")

	return cmd
}

func printInstalled(cmd *cobra.Command, s *cliState) error {
	out := cmd.OutOrStdout()
	installed := s.app.index.List()
	if len(installed) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("No versions installed."))
		return nil
	}
	for _, v := range installed {
		fmt.Fprintf(out, "%s%s %s\n", successStyle.Render("● "), highlightStyle.Render(fmt.Sprintf("%-18s", v.ID)), mutedStyle.Render(v.Path))
	}
	return nil
}
