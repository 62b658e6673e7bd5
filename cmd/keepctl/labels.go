package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"keepnotes/internal/storage"
)

func newLabelsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "labels",
		Short: "Manage labels",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all labels",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				labels, err := a.labels.List(cmd.Context())
				if err != nil {
					return fmt.Errorf("list labels: %w", err)
				}
				return a.printLabels(cmd, labels...)
			},
		},
		&cobra.Command{
			Use:   "create [name]",
			Short: "Create a label",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				label, err := a.labels.Create(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("create label: %w", err)
				}
				return a.printLabels(cmd, *label)
			},
		},
		&cobra.Command{
			Use:   "rename [id] [name]",
			Short: "Rename a label and every note carrying it",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				label, err := a.labels.Rename(cmd.Context(), args[0], args[1])
				if err != nil {
					return fmt.Errorf("rename label: %w", err)
				}
				return a.printLabels(cmd, *label)
			},
		},
		&cobra.Command{
			Use:   "delete [id]",
			Short: "Delete a label and strip it from its notes",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.labels.Delete(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("delete label: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Label deleted: %s\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "notes [id]",
			Short: "List the notes carrying a label",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				notes, err := a.labels.Notes(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("list notes for label: %w", err)
				}
				return a.printNotes(cmd, notes)
			},
		},
	)
	return cmd
}

func (a *app) printLabels(cmd *cobra.Command, labels ...storage.Label) error {
	out := cmd.OutOrStdout()
	if a.asJSON {
		return writeJSON(out, labels)
	}
	for _, l := range labels {
		fmt.Fprintf(out, "%s\t%s\n", l.ID, l.Name)
	}
	return nil
}
