// Package cli is the cobra command surface. Running with no subcommand
// starts the interactive TUI; subcommands are scriptable and print
// strict JSON.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mdcal/internal/format"
	"mdcal/internal/store"
	"mdcal/internal/tui"
	"mdcal/pkg/logger"
)

type App struct {
	Dir        string
	Backend    string
	LogLevel   string
	PrettyJSON bool
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "mdcal",
		Short:        "Markdown notes with a calendar view (TUI + CLI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  mdcal

  # Scriptable commands
  mdcal new --title "Trip" --start 2025-06-02 --end 2025-06-11
  mdcal list
  mdcal search packing
  mdcal calendar 2025-06
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("MDCAL_DIR", ""), "Documents folder (overrides the configured preference)")
	cmd.PersistentFlags().StringVar(&app.Backend, "backend", envOr("MDCAL_BACKEND", ""), "Storage backend (sqlite|files)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log", envOr("MDCAL_LOG", ""), "Log level for the log file (debug|info|warn|error)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newNewCmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newSearchCmd(app))
	cmd.AddCommand(newUpdateCmd(app))
	cmd.AddCommand(newDeleteCmd(app))
	cmd.AddCommand(newCalendarCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func runTUI(app *App) error {
	st, err := openStore(app)
	if err != nil {
		return err
	}
	defer closeStore(st)

	log := logger.Discard()
	if dir, err := store.ConfigDir(); err == nil {
		l, f, lerr := logger.New(filepath.Join(dir, "mdcal.log"), app.LogLevel)
		if lerr == nil {
			defer f.Close()
			log = l
		}
	}
	return tui.Run(st, log)
}

// openStore resolves config + flags into a live store.
func openStore(app *App) (store.Store, error) {
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, err
	}
	if app.Dir != "" {
		cfg.DocumentsFolder = app.Dir
	}
	if app.Backend != "" {
		backend, err := store.ParseBackend(app.Backend)
		if err != nil {
			return nil, err
		}
		cfg.Backend = backend
	}
	return store.Open(cfg)
}

func closeStore(st store.Store) {
	if c, ok := st.(store.Closer); ok {
		c.Close()
	}
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), format.Envelope(v), app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
