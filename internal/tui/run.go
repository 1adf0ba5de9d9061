package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hyperjump/hikari/internal/models"
)

// Run starts the widget on the terminal and blocks until the user quits.
// It returns the record selected last, if any.
func Run(ctx context.Context, s Searcher, opts Options) (models.Record, bool, error) {
	p := tea.NewProgram(New(s, opts), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return models.Record{}, false, fmt.Errorf("tui: %w", err)
	}
	m, ok := final.(Model)
	if !ok {
		return models.Record{}, false, nil
	}
	rec, chosen := m.Selected()
	return rec, chosen, nil
}
