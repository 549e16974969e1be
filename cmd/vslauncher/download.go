package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vslauncher/launcher/internal/domain"
	"github.com/vslauncher/launcher/internal/download"
)

func newDownloadCmd(s *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "download <version>",
		Short: "Download and install a game version",
		Long:  "Downloads the client archive for a catalog version and unpacks it into the version cache. Ctrl-C cancels and removes partial files.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := strings.TrimPrefix(strings.TrimSpace(args[0]), "v")

			version, err := resolveVersion(ctx, s, id)
			if err != nil {
				return err
			}

			task, err := s.app.downloads.StartDownload(ctx, version)
			if err != nil {
				return err
			}
			if err := followTask(ctx, task, cmd.ErrOrStderr()); err != nil {
				return err
			}

			path, _ := s.app.index.Lookup(id)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
				successStyle.Render("✓"),
				highlightStyle.Render(id),
				mutedStyle.Render("installed at "+path))
			return nil
		},
	}
}

// resolveVersion returns the catalog entry for id; installed versions skip the catalog
func resolveVersion(ctx context.Context, s *cliState, id string) (domain.GameVersion, error) {
	if _, ok := s.app.index.Lookup(id); ok {
		return domain.GameVersion{ID: id}, nil
	}

	versions, err := s.app.catalog.FetchCatalog(ctx)
	if err != nil {
		return domain.GameVersion{}, err
	}
	for _, v := range versions {
		if v.ID == id {
			return v, nil
		}
	}
	return domain.GameVersion{}, domain.NewAppError(domain.ErrNotFound, "Version not found in catalog", 404,
		map[string]any{"version": id})
}

// followTask renders progress until the task finishes; cancelling ctx cancels the task
func followTask(ctx context.Context, task *download.Task, w io.Writer) error {
	updates := task.Subscribe()
	done := ctx.Done()
	rendered := false

	for {
		select {
		case p, ok := <-updates:
			if !ok {
				if rendered {
					fmt.Fprintln(w)
				}
				return task.Err()
			}
			if p.State == download.StateInProgress || p.Received > 0 {
				renderProgress(w, p)
				rendered = true
			}
		case <-done:
			task.Cancel()
			// keep draining until the task reports its terminal state
			done = nil
		}
	}
}

func renderProgress(w io.Writer, p download.Progress) {
	received := humanize.Bytes(uint64(p.Received))
	if p.Total > 0 {
		fmt.Fprintf(w, "\r%s %s / %s %s   ",
			highlightStyle.Render(p.VersionID),
			received,
			humanize.Bytes(uint64(p.Total)),
			mutedStyle.Render(fmt.Sprintf("(%.0f%%)", p.Fraction()*100)))
		return
	}
	fmt.Fprintf(w, "\r%s %s   ", highlightStyle.Render(p.VersionID), received)
}
