package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newInstancesCmd(s *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "instances",
		Aliases: []string{"instance", "i"},
		Short:   "Manage game instances",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List instances",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				instances, warnings, err := s.app.instances.List(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(instances) == 0 {
					fmt.Fprintln(out, mutedStyle.Render("No instances. Create one with: vslauncher instances create <name> <version>"))
				}
				for _, inst := range instances {
					version := inst.Version
					if _, ok := s.app.index.Lookup(inst.Version); ok {
						version = successStyle.Render(version)
					} else {
						version = warningStyle.Render(version + " (not installed)")
					}
					fmt.Fprintf(out, "%s %s %s\n",
						highlightStyle.Render(fmt.Sprintf("%-24s", inst.Name)),
						version,
						mutedStyle.Render("created "+humanize.Time(inst.CreatedAt)))
				}
				for _, w := range warnings {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s %s: %s\n", warningStyle.Render("!"), w.Name, w.Message)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "create <name> <version>",
			Short: "Create an instance bound to a game version",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				version := strings.TrimPrefix(args[1], "v")
				inst, err := s.app.instances.Create(cmd.Context(), args[0], version)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s created %s (%s)\n", successStyle.Render("✓"), highlightStyle.Render(inst.Name), inst.Version)
				if _, ok := s.app.index.Lookup(version); !ok {
					fmt.Fprintln(cmd.OutOrStdout(), warningStyle.Render("  version "+version+" is not installed yet: vslauncher download "+version))
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <name>",
			Short: "Delete an instance and its mods",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := s.app.instances.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s deleted %s\n", successStyle.Render("✓"), highlightStyle.Render(args[0]))
				return nil
			},
		},
		&cobra.Command{
			Use:   "rebind <name> <version>",
			Short: "Change the game version of an instance",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				inst, err := s.app.instances.Rebind(cmd.Context(), args[0], strings.TrimPrefix(args[1], "v"))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s now uses %s\n", successStyle.Render("✓"), highlightStyle.Render(inst.Name), inst.Version)
				return nil
			},
		},
		&cobra.Command{
			Use:   "rename <name> <new-name>",
			Short: "Rename an instance",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				inst, err := s.app.instances.Rename(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s renamed %s to %s\n", successStyle.Render("✓"), args[0], highlightStyle.Render(inst.Name))
				return nil
			},
		},
	)

	return cmd
}

func newLaunchCmd(s *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "launch <instance>",
		Short: "Start the game for an instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := s.app.instances.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			proc, err := s.app.launcher.Launch(cmd.Context(), inst)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s launched %s with %s %s\n",
				successStyle.Render("✓"),
				highlightStyle.Render(inst.Name),
				inst.Version,
				mutedStyle.Render(fmt.Sprintf("(pid %d)", proc.PID)))
			return nil
		},
	}
}
