// Package tui is the interactive catalog browser: tabs of infinitely
// scrolling sections, each backed by an incremental loader.
package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"marquee/internal/loader"
	"marquee/internal/media"
)

// EndOfContent is shown under a section whose source is exhausted.
const EndOfContent = "— end of content —"

const (
	defaultWidth  = 80
	defaultHeight = 24
	heroHeight    = 6 // border + title + overview lines
)

// Source describes a listing a section can switch to.
type Source struct {
	Key   SourceKey
	Title string
	Fetch loader.FetchFunc
}

// Config configures a Model.
type Config struct {
	Sections []*Section

	// Genre mode: when Genres is set the first section lists one genre at a
	// time, switched in place with left/right.
	Genres      []media.Genre
	GenreIndex  int
	GenreSource func(media.Genre) Source

	Play   Handoff
	Logger *log.Logger
}

// Model is the Bubble Tea model.
type Model struct {
	sections []*Section
	pending  []bool
	active   int

	genres      []media.Genre
	genreIdx    int
	genreSource func(media.Genre) Source

	play Handoff
	log  *log.Logger
	keys KeyMap

	spinner   spinner.Model
	filter    textinput.Model
	filtering bool

	err          *ErrMsg
	retrySection int // section whose last load failed, -1 when none
	status       string

	width  int
	height int
}

// New creates a Model. The initial terminal size is read from stdout when
// it is a terminal; WindowSizeMsg updates it afterwards.
func New(cfg Config) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(Accent)

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "filter titles"

	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	m := Model{
		sections:     cfg.Sections,
		pending:      make([]bool, len(cfg.Sections)),
		genres:       cfg.Genres,
		genreIdx:     cfg.GenreIndex,
		genreSource:  cfg.GenreSource,
		play:         cfg.Play,
		log:          logger,
		keys:         DefaultKeyMap(),
		spinner:      sp,
		filter:       ti,
		retrySection: -1,
		width:        defaultWidth,
		height:       defaultHeight,
	}
	if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
		if w, h, err := term.GetSize(fd); err == nil {
			m.width, m.height = w, h
		}
	}
	return m
}

// Init starts the spinner and the first page of every section.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	for i, s := range m.sections {
		m.pending[i] = true
		cmds = append(cmds, LoadMoreCmd(i, s))
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, m.maybeLoad(m.active)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case SectionLoadedMsg:
		return m.handleLoaded(msg)

	case PlaybackStartedMsg:
		m.status = "Opened " + msg.Title
		return m, nil

	case ErrMsg:
		m.log.Error(msg.Context, "err", msg.Err)
		m.err = &msg
		m.status = ""
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.handleFilterKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleLoaded(msg SectionLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Index < 0 || msg.Index >= len(m.sections) {
		return m, nil
	}
	s := m.sections[msg.Index]
	if msg.Generation != s.Generation() {
		// Addressed to a source the section has since switched away from.
		return m, nil
	}
	m.pending[msg.Index] = false

	if msg.Err != nil {
		m.log.Error("section load failed", "section", s.Title, "err", msg.Err)
		m.err = &ErrMsg{Err: msg.Err, Context: "loading " + s.Title}
		m.retrySection = msg.Index
		return m, nil
	}
	if m.retrySection == msg.Index {
		m.retrySection = -1
	}
	return m, m.maybeLoad(msg.Index)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.current()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Escape):
		switch {
		case m.err != nil:
			m.err = nil
		case s != nil && s.Filtering():
			s.SetFilter("")
			m.filter.SetValue("")
		}
		return m, nil

	case key.Matches(msg, m.keys.Retry):
		if m.retrySection < 0 {
			return m, nil
		}
		i := m.retrySection
		m.err = nil
		m.retrySection = -1
		m.pending[i] = true
		return m, LoadMoreCmd(i, m.sections[i])
	}

	if s == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		s.Move(-1, m.listHeight())
	case key.Matches(msg, m.keys.Down):
		s.Move(1, m.listHeight())
	case key.Matches(msg, m.keys.PageUp):
		s.Move(-m.listHeight(), m.listHeight())
	case key.Matches(msg, m.keys.PageDown):
		s.Move(m.listHeight(), m.listHeight())

	case key.Matches(msg, m.keys.NextTab):
		m.active = (m.active + 1) % len(m.sections)
	case key.Matches(msg, m.keys.PrevTab):
		m.active = (m.active - 1 + len(m.sections)) % len(m.sections)

	case key.Matches(msg, m.keys.NextGen):
		return m.switchGenre(1)
	case key.Matches(msg, m.keys.PrevGen):
		return m.switchGenre(-1)

	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		m.filter.SetValue(s.Query())
		return m, m.filter.Focus()

	case key.Matches(msg, m.keys.Play):
		item, ok := s.Selected()
		if !ok || m.play == nil {
			return m, nil
		}
		m.status = "Resolving " + item.Title + "…"
		return m, PlayCmd(m.play, item)

	default:
		return m, nil
	}
	return m, m.maybeLoad(m.active)
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.current()
	switch msg.Type {
	case tea.KeyEsc:
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		if s != nil {
			s.SetFilter("")
		}
		return m, m.maybeLoad(m.active)
	case tea.KeyEnter:
		m.filtering = false
		m.filter.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if s != nil {
		s.SetFilter(m.filter.Value())
	}
	return m, cmd
}

// switchGenre moves the genre section by delta genres and reloads it.
func (m Model) switchGenre(delta int) (tea.Model, tea.Cmd) {
	if len(m.genres) == 0 || m.genreSource == nil || len(m.sections) == 0 {
		return m, nil
	}
	m.genreIdx = (m.genreIdx + delta + len(m.genres)) % len(m.genres)
	src := m.genreSource(m.genres[m.genreIdx])

	s := m.sections[0]
	if !s.SetSource(src.Title, src.Key, src.Fetch) {
		return m, nil
	}
	m.active = 0
	m.pending[0] = true
	if m.retrySection == 0 {
		m.err = nil
		m.retrySection = -1
	}
	return m, LoadMoreCmd(0, s)
}

// maybeLoad requests the next page of section i when its viewport has
// crossed the load threshold.
func (m Model) maybeLoad(i int) tea.Cmd {
	if i < 0 || i >= len(m.sections) {
		return nil
	}
	s := m.sections[i]
	if !s.NeedsMore(m.listHeight(), m.pending[i]) {
		return nil
	}
	m.pending[i] = true
	return LoadMoreCmd(i, s)
}

func (m Model) current() *Section {
	if m.active < 0 || m.active >= len(m.sections) {
		return nil
	}
	return m.sections[m.active]
}

// hero returns the banner item: the first item of the first section.
func (m Model) hero() (media.Item, bool) {
	if len(m.sections) == 0 {
		return media.Item{}, false
	}
	items := m.sections[0].State().Items
	if len(items) == 0 {
		return media.Item{}, false
	}
	return items[0], true
}

// listHeight is the number of rows available to the active section.
func (m Model) listHeight() int {
	chrome := 5 // tabs, blank, footer, status, help
	if _, ok := m.hero(); ok {
		chrome += heroHeight
	}
	if len(m.genres) > 0 {
		chrome++
	}
	if m.filtering {
		chrome++
	}
	return max(3, m.height-chrome)
}

// View renders the screen.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.viewTabs())
	b.WriteString("\n\n")

	if item, ok := m.hero(); ok {
		b.WriteString(m.viewHero(item))
		b.WriteString("\n")
	}

	if len(m.genres) > 0 {
		g := m.genres[m.genreIdx]
		fmt.Fprintf(&b, "%s %s %s\n", dimStyle.Render("‹"), heroTitleStyle.Render(g.Name), dimStyle.Render("›"))
	}

	if m.filtering {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	}

	if s := m.current(); s != nil {
		b.WriteString(m.viewSection(s))
	}

	b.WriteString(m.viewStatus())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("↑/↓ move • tab section • / filter • enter play • r retry • q quit"))
	return b.String()
}

func (m Model) viewTabs() string {
	parts := []string{logoStyle.Render("MARQUEE")}
	for i, s := range m.sections {
		if i == m.active {
			parts = append(parts, activeTabStyle.Render(s.Title))
		} else {
			parts = append(parts, tabStyle.Render(s.Title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) viewHero(item media.Item) string {
	width := max(20, m.width-4)
	title := heroTitleStyle.Render(item.Title)
	if y := item.Year(); y != "" {
		title += dimStyle.Render(" (" + y + ")")
	}
	if item.Rating > 0 {
		title += " " + ratingStyle.Render(fmt.Sprintf("★ %.1f", item.Rating))
	}
	overview := lipgloss.NewStyle().Width(width - 2).MaxHeight(heroHeight - 3).Render(item.Overview)
	return heroStyle.Width(width).Render(title + "\n" + overview)
}

func (m Model) viewSection(s *Section) string {
	var b strings.Builder
	rows := s.Rows()
	cursor, offset := s.Cursor()
	height := m.listHeight()

	end := min(offset+height, len(rows))
	for i := offset; i < end; i++ {
		line := truncate(media.FormatDisplayTitle(rows[i]), m.width-2)
		if i == cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	if s.Filtering() && len(rows) == 0 {
		b.WriteString(dimStyle.Render("  no matches"))
		b.WriteString("\n")
	}

	st := s.State()
	i := m.indexOf(s)
	switch {
	case st.Loading || (i >= 0 && m.pending[i]):
		b.WriteString(m.spinner.View() + dimStyle.Render(" loading…"))
	case !st.HasMore:
		b.WriteString(dimStyle.Render(EndOfContent))
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) viewStatus() string {
	switch {
	case m.err != nil:
		hint := " (esc to dismiss)"
		if m.retrySection >= 0 {
			hint = " (esc to dismiss, r to retry)"
		}
		return errorStyle.Render(truncate(m.err.Error(), m.width-len(hint)) + hint)
	case m.status != "":
		return statusStyle.Render(m.status)
	default:
		return ""
	}
}

func (m Model) indexOf(s *Section) int {
	for i, x := range m.sections {
		if x == s {
			return i
		}
	}
	return -1
}

// truncate shortens s to at most width runes.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
