package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mdcal/internal/model"
)

func newNewCmd(app *App) *cobra.Command {
	var (
		title   string
		content string
		start   string
		end     string
		status  string
	)

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(app)
			if err != nil {
				return err
			}
			defer closeStore(st)

			input := model.DocumentInput{Title: title, Content: content}
			if start != "" {
				ts, err := parseDateFlag(start)
				if err != nil {
					return writeErr(cmd, err)
				}
				input.StartDate = ts
			}
			if end != "" {
				ts, err := parseDateFlag(end)
				if err != nil {
					return writeErr(cmd, err)
				}
				input.EndDate = ts
			}
			if status != "" {
				s, err := model.ParseStatus(status)
				if err != nil {
					return writeErr(cmd, err)
				}
				input.Status = s
			}

			doc, err := st.Create(cmd.Context(), input)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, doc)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Document title")
	cmd.Flags().StringVar(&content, "content", "", "Markdown body")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD, default start)")
	cmd.Flags().StringVar(&status, "status", "", "Workflow status (ready|in_progress|paused|completed)")
	return cmd
}

func newListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List documents, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(app)
			if err != nil {
				return err
			}
			defer closeStore(st)

			sums, err := st.Summaries(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, sums)
		},
	}
}

func newShowCmd(app *App) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show <document-id>",
		Short: "Show one document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(app)
			if err != nil {
				return err
			}
			defer closeStore(st)

			doc, ok, err := st.Get(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if !ok {
				return writeErr(cmd, fmt.Errorf("document not found: %s", args[0]))
			}
			if raw {
				_, err := fmt.Fprint(cmd.OutOrStdout(), doc.Content)
				return err
			}
			return writeOut(cmd, app, doc)
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print the raw markdown body only")
	return cmd
}

func newSearchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Search documents by title or body (case-insensitive substring)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(app)
			if err != nil {
				return err
			}
			defer closeStore(st)

			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			docs, err := st.Search(cmd.Context(), query)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, docs)
		},
	}
}

func newUpdateCmd(app *App) *cobra.Command {
	var (
		title   string
		content string
		start   string
		end     string
		status  string
	)

	cmd := &cobra.Command{
		Use:   "update <document-id>",
		Short: "Update fields of a document (only the flags you pass change)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(app)
			if err != nil {
				return err
			}
			defer closeStore(st)

			var patch model.DocumentPatch
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("content") {
				patch.Content = &content
			}
			if cmd.Flags().Changed("start") {
				ts, err := parseDateFlag(start)
				if err != nil {
					return writeErr(cmd, err)
				}
				patch.StartDate = &ts
			}
			if cmd.Flags().Changed("end") {
				ts, err := parseDateFlag(end)
				if err != nil {
					return writeErr(cmd, err)
				}
				patch.EndDate = &ts
			}
			if cmd.Flags().Changed("status") {
				s, err := model.ParseStatus(status)
				if err != nil {
					return writeErr(cmd, err)
				}
				patch.Status = &s
			}
			if patch.IsZero() {
				return writeErr(cmd, fmt.Errorf("nothing to update: pass at least one of --title --content --start --end --status"))
			}

			doc, err := st.Update(cmd.Context(), args[0], patch)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, doc)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&content, "content", "", "New markdown body")
	cmd.Flags().StringVar(&start, "start", "", "New start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "New end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&status, "status", "", "New status (none|ready|in_progress|paused|completed)")
	return cmd
}

func newDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <document-id>",
		Short: "Delete a document (deleting an unknown id is a no-op)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(app)
			if err != nil {
				return err
			}
			defer closeStore(st)

			if err := st.Delete(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"deleted": args[0]})
		},
	}
}

// parseDateFlag parses a YYYY-MM-DD flag as local midnight.
func parseDateFlag(s string) (int64, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return t.UnixMilli(), nil
}
