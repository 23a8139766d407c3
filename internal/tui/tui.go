package tui

import (
	"context"

	"mdcal/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

// watchable is satisfied by the files backend, which can report
// external edits to the documents folder.
type watchable interface {
	Watch(ctx context.Context) (<-chan struct{}, error)
}

func Run(st store.Store, log zerolog.Logger) error {
	applyColorProfilePreference()
	applyThemePreference()

	m := newAppModel(st, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if w, ok := st.(watchable); ok {
		if ch, err := w.Watch(ctx); err == nil {
			m.changes = ch
		} else {
			log.Warn().Err(err).Msg("documents folder watch unavailable")
		}
	}

	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
