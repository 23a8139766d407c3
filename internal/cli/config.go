package cli

import (
	"github.com/spf13/cobra"

	"mdcal/internal/store"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read or change preferences",
	}
	cmd.AddCommand(newConfigFolderCmd(app))
	cmd.AddCommand(newConfigBackendCmd(app))
	return cmd
}

func newConfigFolderCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "folder [path]",
		Short: "Show or set the documents folder",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := store.LoadConfig()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				cfg.DocumentsFolder = args[0]
				if err := store.SaveConfig(cfg); err != nil {
					return writeErr(cmd, err)
				}
			}

			dir, err := cfg.DocumentsDir()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"documentsFolder": cfg.DocumentsFolder,
				"resolved":        dir,
			})
		},
	}
}

func newConfigBackendCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "backend [sqlite|files]",
		Short: "Show or set the storage backend",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := store.LoadConfig()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				backend, err := store.ParseBackend(args[0])
				if err != nil {
					return writeErr(cmd, err)
				}
				cfg.Backend = backend
				if err := store.SaveConfig(cfg); err != nil {
					return writeErr(cmd, err)
				}
			}

			backend := cfg.Backend
			if backend == "" {
				backend = store.BackendSQLite
			}
			return writeOut(cmd, app, map[string]any{"backend": string(backend)})
		},
	}
}
