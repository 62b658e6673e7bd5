package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"keepnotes/internal/importer"
	"keepnotes/internal/service"
	"keepnotes/internal/storage"
)

func newNotesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Read and import notes",
	}

	var filter service.StatusFilter
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List active notes, or trashed, pinned or archived ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			notes, err := a.notes.ListByStatus(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("list notes: %w", err)
			}
			return a.printNotes(cmd, notes)
		},
	}
	listCmd.Flags().BoolVar(&filter.Trash, "trash", false, "List notes in the trash")
	listCmd.Flags().BoolVar(&filter.Pinned, "pinned", false, "List pinned notes")
	listCmd.Flags().BoolVar(&filter.Archived, "archived", false, "List archived notes")

	searchCmd := &cobra.Command{
		Use:   "search [text...]",
		Short: "Search active notes by title, body and label",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			notes, err := a.notes.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("search notes: %w", err)
			}
			return a.printNotes(cmd, notes)
		},
	}

	showCmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show a single note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			note, err := a.notes.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("show note: %w", err)
			}
			out := cmd.OutOrStdout()
			if a.asJSON {
				return writeJSON(out, note)
			}
			fmt.Fprintf(out, "%s  #%d  %s\n", note.ID, note.Order, note.Title)
			if len(note.LabelNames) > 0 {
				fmt.Fprintf(out, "labels: %s\n", strings.Join(note.LabelNames, ", "))
			}
			fmt.Fprintf(out, "state: %s\n\n%s\n", noteState(note), note.Body)
			return nil
		},
	}

	importCmd := &cobra.Command{
		Use:   "import [dir]",
		Short: "Create a note from every markdown file under a directory",
		Long:  `import walks dir for .md files. The first "# " heading (or the file name) becomes the title, the file the body and each folder on its path a label.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := importer.New(a.notes).ImportDir(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("import notes: %w", err)
			}
			out := cmd.OutOrStdout()
			if a.asJSON {
				return writeJSON(out, res)
			}
			fmt.Fprintf(out, "Imported %d notes\n", res.Imported)
			for _, rel := range res.Skipped {
				fmt.Fprintf(out, "skipped: %s\n", rel)
			}
			return nil
		},
	}

	cmd.AddCommand(listCmd, searchCmd, showCmd, importCmd)
	return cmd
}

func (a *app) printNotes(cmd *cobra.Command, notes []storage.Note) error {
	out := cmd.OutOrStdout()
	if a.asJSON {
		if notes == nil {
			notes = []storage.Note{}
		}
		return writeJSON(out, notes)
	}
	for _, n := range notes {
		fmt.Fprintf(out, "%s\t%d\t%s\t[%s]\n", n.ID, n.Order, n.Title, strings.Join(n.LabelNames, ","))
	}
	return nil
}

func noteState(n *storage.Note) string {
	var parts []string
	if !n.Active {
		parts = append(parts, "trashed")
	}
	if n.Pinned {
		parts = append(parts, "pinned")
	}
	if n.Archived {
		parts = append(parts, "archived")
	}
	if len(parts) == 0 {
		return "active"
	}
	return strings.Join(parts, ", ")
}
