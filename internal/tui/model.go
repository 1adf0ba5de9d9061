// Package tui implements the search-as-you-type dropdown as a Bubble Tea model.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hyperjump/hikari/internal/config"
	"github.com/hyperjump/hikari/internal/highlight"
	"github.com/hyperjump/hikari/internal/models"
	"github.com/hyperjump/hikari/pkg/utils"
)

// Searcher runs one query. *search.Engine and the HTTP client both satisfy it.
type Searcher interface {
	Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error)
}

// Options configure the widget.
type Options struct {
	Label          string
	MaxRows        int
	Debounce       time.Duration
	MinQueryLength int
	SelectField    models.Field
	Fuzzy          bool
	Limit          int
	Styles         Styles
}

// OptionsFromConfig builds Options from the tui and search config sections.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Label:          cfg.TUI.Label,
		MaxRows:        cfg.TUI.MaxRows,
		Debounce:       cfg.TUI.Debounce(),
		MinQueryLength: cfg.Search.MinQueryLength,
		SelectField:    models.Field(cfg.TUI.SelectField),
		Limit:          cfg.Search.MaxLimit,
		Styles:         DefaultStyles(),
	}
}

// debounceMsg fires once typing pauses; id identifies the keystroke that scheduled it.
type debounceMsg struct {
	id    int
	query string
}

// resultMsg carries the response to request id.
type resultMsg struct {
	id   int
	resp *models.SearchResponse
	err  error
}

// Model is the autocomplete widget. It has value semantics.
type Model struct {
	input    textinput.Model
	searcher Searcher
	opts     Options

	seq    int
	resp   *models.SearchResponse
	err    error
	open   bool
	cursor int
	offset int
	width  int

	selected *models.Record
	quitting bool
}

// New returns a focused widget that searches through s.
func New(s Searcher, opts Options) Model {
	if opts.MaxRows <= 0 {
		opts.MaxRows = 6
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 100 * time.Millisecond
	}
	if opts.MinQueryLength <= 0 {
		opts.MinQueryLength = 2
	}
	if opts.SelectField == "" {
		opts.SelectField = models.FieldActivity
	}
	ti := textinput.New()
	ti.Placeholder = "Type to search"
	ti.Prompt = "> "
	ti.Focus()
	return Model{input: ti, searcher: s, opts: opts}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-len(m.input.Prompt)-1, 0)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "esc":
			m.open = false
			return m, nil
		case "enter":
			m.choose()
			return m, nil
		case "up", "ctrl+p":
			m.move(-1)
			return m, nil
		case "down", "ctrl+n", "tab":
			if !m.open && m.hasHits() {
				m.open = true
				return m, nil
			}
			m.move(1)
			return m, nil
		}

	case debounceMsg:
		if msg.id != m.seq {
			return m, nil
		}
		return m, m.search(msg.id, msg.query)

	case resultMsg:
		if msg.id != m.seq {
			return m, nil
		}
		m.resp, m.err = msg.resp, msg.err
		m.cursor, m.offset = 0, 0
		m.open = msg.err == nil && msg.resp != nil && msg.resp.State != models.StateIdle
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.changed())
}

// changed invalidates in-flight requests and schedules a debounced search.
func (m *Model) changed() tea.Cmd {
	m.seq++
	query := strings.TrimSpace(m.input.Value())
	if utf8.RuneCountInString(query) < m.opts.MinQueryLength {
		m.resp, m.err, m.open = nil, nil, false
		return nil
	}
	id := m.seq
	return tea.Tick(m.opts.Debounce, func(time.Time) tea.Msg {
		return debounceMsg{id: id, query: query}
	})
}

func (m Model) search(id int, query string) tea.Cmd {
	s := m.searcher
	q := &models.SearchQuery{Query: query, Limit: m.opts.Limit, Fuzzy: m.opts.Fuzzy}
	return func() tea.Msg {
		resp, err := s.Search(context.Background(), q)
		return resultMsg{id: id, resp: resp, err: err}
	}
}

func (m Model) hasHits() bool {
	return m.resp != nil && m.resp.State == models.StateMatched && len(m.resp.Hits) > 0
}

func (m *Model) move(delta int) {
	if !m.open || !m.hasHits() {
		return
	}
	n := len(m.resp.Hits)
	m.cursor = (m.cursor + delta + n) % n
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.opts.MaxRows {
		m.offset = m.cursor - m.opts.MaxRows + 1
	}
}

func (m *Model) choose() {
	if !m.open || !m.hasHits() {
		return
	}
	rec := m.resp.Hits[m.cursor].Record
	m.selected = &rec
	m.seq++
	m.input.SetValue(rec.Value(m.opts.SelectField))
	m.input.CursorEnd()
	m.open = false
}

// Selected returns the record chosen with Enter, if any.
func (m Model) Selected() (models.Record, bool) {
	if m.selected == nil {
		return models.Record{}, false
	}
	return *m.selected, true
}

// Value returns the current input text.
func (m Model) Value() string { return m.input.Value() }

// Open reports whether the dropdown is shown.
func (m Model) Open() bool { return m.open }

// Cursor returns the highlighted row index.
func (m Model) Cursor() int { return m.cursor }

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	st := m.opts.Styles
	var b strings.Builder
	b.WriteString(st.Label.Render(m.opts.Label))
	b.WriteByte('\n')
	b.WriteString(m.input.View())
	b.WriteByte('\n')

	switch {
	case m.err != nil:
		b.WriteString(st.Warning.Render("search failed: " + m.err.Error()))
		b.WriteByte('\n')
	case m.open && m.resp != nil && m.resp.State == models.StateNoMatches:
		b.WriteString(st.Empty.Render("No matches"))
		b.WriteByte('\n')
		if len(m.resp.Suggestions) > 0 {
			b.WriteString(st.Muted.Render("Did you mean: " + strings.Join(m.resp.Suggestions, ", ") + "?"))
			b.WriteByte('\n')
		}
	case m.open && m.hasHits():
		m.renderRows(&b)
	case m.selected != nil:
		b.WriteString(st.Chosen.Render("Selected: " + m.selected.Value(m.opts.SelectField)))
		b.WriteByte('\n')
	}
	return b.String()
}

// renderRows draws only the rows inside the scroll window.
func (m Model) renderRows(b *strings.Builder) {
	st := m.opts.Styles
	hits := m.resp.Hits
	end := min(m.offset+m.opts.MaxRows, len(hits))
	for i := m.offset; i < end; i++ {
		rowStyle := st.Row
		if i%2 == 1 {
			rowStyle = st.AltRow
		}
		if i == m.cursor {
			rowStyle = st.Cursor
		}
		hit := hits[i]
		mark := func(s string) string { return st.Match.Render(s) }
		primary := m.markLine(hit, m.opts.SelectField, mark)
		var rest []string
		for _, f := range hit.Record.Fields() {
			if f == m.opts.SelectField {
				continue
			}
			if v := m.markLine(hit, f, mark); v != "" {
				rest = append(rest, v)
			}
		}
		b.WriteString(rowStyle.Render(" " + primary + " "))
		b.WriteByte('\n')
		if len(rest) > 0 {
			b.WriteString(rowStyle.Render(" " + st.Muted.Render(strings.Join(rest, " · ")) + " "))
			b.WriteByte('\n')
		}
	}
	b.WriteString(st.Footer.Render(fmt.Sprintf("%d-%d of %d", m.offset+1, end, len(hits))))
	b.WriteByte('\n')
}

// markLine highlights one field, cutting the plain text to the terminal width first.
func (m Model) markLine(hit *models.SearchHit, f models.Field, mark func(string) string) string {
	value := hit.Record.Value(f)
	var ranges []models.MatchRange
	for _, fm := range hit.Matches {
		if fm.Field == f {
			ranges = fm.Ranges
		}
	}
	suffix := ""
	if m.width > 4 && utils.Truncate(value, m.width-2) != value {
		n := utils.FitIndex(value, m.width-3)
		value, ranges, suffix = value[:n], highlight.Clip(ranges, n), "…"
	}
	out, err := highlight.Apply(value, ranges, nil, mark)
	if err != nil {
		return value + suffix
	}
	return out + suffix
}
