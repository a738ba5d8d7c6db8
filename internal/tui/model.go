// Package tui provides the Bubble Tea drill interface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/wordtrainer/internal/dictionary"
	"github.com/verte-zerg/wordtrainer/internal/model"
	"github.com/verte-zerg/wordtrainer/internal/revision"
	"github.com/verte-zerg/wordtrainer/internal/session"
	statsPkg "github.com/verte-zerg/wordtrainer/internal/stats"
)

const defaultMemorizeDelay = 3 * time.Second

// LookupFunc fetches definitions for words.
type LookupFunc func(ctx context.Context, words []string) []dictionary.Result

// Options configures a drill screen.
type Options struct {
	Recorder      session.MistakeRecorder
	Today         time.Time
	MemorizeDelay time.Duration
	Lookup        LookupFunc
	DueCount      int
	Now           func() time.Time
}

type keyMap struct {
	Submit     key.Binding
	ToggleMode key.Binding
	Define     key.Binding
	CloseDefs  key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		ToggleMode: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "copy/memorize")),
		Define:     key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "definitions")),
		CloseDefs:  key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "close definitions")),
		Quit:       key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
	}
}

type hideMsg struct {
	seq int
}

type definitionsMsg struct {
	seq     int
	results []dictionary.Result
}

// Model implements the Bubble Tea drill UI.
type Model struct {
	sess session.Session
	opts Options
	keys keyMap

	input textinput.Model
	defs  viewport.Model

	width  int
	height int

	startedAt time.Time
	hideSeq   int
	defsSeq   int
	showDefs  bool
	notice    string
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	typedStyle       = pendingStyle.Strikethrough(true)
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	bannerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	defsStyle        = lipgloss.NewStyle().
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	posStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Italic(true)
)

// NewModel constructs a drill TUI model for sess.
func NewModel(sess session.Session, opts Options) *Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Today.IsZero() {
		opts.Today = revision.Day(opts.Now())
	}
	if opts.MemorizeDelay <= 0 {
		opts.MemorizeDelay = defaultMemorizeDelay
	}
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "type the words and press enter"
	ti.Focus()

	return &Model{
		sess:  sess,
		opts:  opts,
		keys:  defaultKeyMap(),
		input: ti,
		defs:  viewport.New(0, 0),
	}
}

// Session returns the session as it stands, for persisting after the program exits.
func (m *Model) Session() session.Session {
	return m.sess
}

// StartedAt returns when the first submission was made, or the zero time.
func (m *Model) StartedAt() time.Time {
	return m.startedAt
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.sess.Done() {
		return tea.Quit
	}
	return tea.Batch(textinput.Blink, m.scheduleHide())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeDefs()
		return m, nil
	case hideMsg:
		if msg.seq == m.hideSeq {
			m.sess = m.sess.Hide()
		}
		return m, nil
	case definitionsMsg:
		if msg.seq == m.defsSeq {
			m.defs.SetContent(renderDefinitions(msg.results, m.defs.Width))
			m.defs.GotoTop()
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	case key.Matches(msg, m.keys.ToggleMode):
		return m, m.toggleMode()
	case key.Matches(msg, m.keys.Define):
		return m, m.lookupDefinitions()
	case key.Matches(msg, m.keys.CloseDefs):
		m.showDefs = false
		return m, nil
	}
	if m.showDefs && (msg.Type == tea.KeyPgUp || msg.Type == tea.KeyPgDown || msg.Type == tea.KeyUp || msg.Type == tea.KeyDown) {
		var cmd tea.Cmd
		m.defs, cmd = m.defs.Update(msg)
		return m, cmd
	}
	if m.textVisibleInMemorize() {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submit() (tea.Model, tea.Cmd) {
	if m.textVisibleInMemorize() {
		return m, nil
	}
	if m.startedAt.IsZero() {
		m.startedAt = m.opts.Now()
	}
	var outcome session.Outcome
	m.sess, outcome = m.sess.Submit(m.input.Value(), m.opts.Recorder, m.opts.Today)
	m.input.Reset()
	if outcome.Done {
		return m, tea.Quit
	}
	switch {
	case outcome.Advanced:
		m.notice = ""
	case m.sess.Mode() == model.ModeMemorize:
		m.notice = "Not quite. Read it again."
	default:
		m.notice = "Not quite. Try a shorter window."
	}
	return m, m.scheduleHide()
}

func (m *Model) toggleMode() tea.Cmd {
	next := model.ModeMemorize
	if m.sess.Mode() == model.ModeMemorize {
		next = model.ModeCopy
	}
	m.sess = m.sess.SetMode(next)
	return m.scheduleHide()
}

// scheduleHide hides the current memorize window after the configured delay.
// Older pending hides are invalidated by the sequence number.
func (m *Model) scheduleHide() tea.Cmd {
	m.hideSeq++
	if m.sess.Mode() != model.ModeMemorize || m.sess.Hidden() || m.sess.Done() {
		return nil
	}
	seq := m.hideSeq
	return tea.Tick(m.opts.MemorizeDelay, func(time.Time) tea.Msg {
		return hideMsg{seq: seq}
	})
}

func (m *Model) lookupDefinitions() tea.Cmd {
	if m.opts.Lookup == nil {
		return nil
	}
	words := m.definitionWords()
	if len(words) == 0 {
		return nil
	}
	m.defsSeq++
	m.showDefs = true
	m.defs.SetContent("Looking up " + strings.Join(words, ", ") + "...")
	seq := m.defsSeq
	lookup := m.opts.Lookup
	return func() tea.Msg {
		return definitionsMsg{seq: seq, results: lookup(context.Background(), words)}
	}
}

// definitionWords returns the words of the last scored window, falling back to
// the window on screen.
func (m *Model) definitionWords() []string {
	if res, ok := m.sess.LastResult(); ok && len(res.Pairs) > 0 {
		words := make([]string, 0, len(res.Pairs))
		for _, p := range res.Pairs {
			words = append(words, p.Expected)
		}
		return dictionary.Unique(words)
	}
	if m.sess.Hidden() {
		return nil
	}
	return dictionary.Unique(m.sess.Window().Words)
}

func (m *Model) textVisibleInMemorize() bool {
	return m.sess.Mode() == model.ModeMemorize && !m.sess.Hidden()
}

func (m *Model) resizeDefs() {
	m.defs.Width = max(m.contentWidth()-4, 10)
	m.defs.Height = max(m.height/3, 3)
}

func (m *Model) contentWidth() int {
	return max(int(float64(m.width)*0.70), 1)
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.sess.Done() {
		return ""
	}
	width := 0
	if m.width > 0 {
		width = m.contentWidth()
	}

	var sections []string
	if banner := m.renderBanner(); banner != "" {
		sections = append(sections, banner)
	}
	if m.sess.Hidden() {
		sections = append(sections, pendingStyle.Render("(type the words from memory)"))
	} else {
		sections = append(sections, wrapStyledWords(buildWindowWords(m.sess.Window().Words), width))
	}
	if res, ok := m.sess.LastResult(); ok && !res.IsPerfect() {
		sections = append(sections, wrapStyledWords(buildResultWords(res), width))
	}
	if m.notice != "" {
		sections = append(sections, footerStyle.Render(m.notice))
	}
	sections = append(sections, m.input.View())
	if m.showDefs {
		sections = append(sections, defsStyle.Render(m.defs.View()))
	}
	content := strings.Join(sections, "\n\n")

	if m.width == 0 || m.height == 0 {
		return content + "\n" + m.renderFooter()
	}
	content = lipgloss.NewStyle().Width(width).Render(content)
	footer := m.renderFooter()
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderBanner() string {
	if m.sess.Mode() != model.ModeRevision {
		return ""
	}
	return bannerStyle.Render(fmt.Sprintf("Revision: %d words due today", m.opts.DueCount))
}

func (m *Model) renderFooter() string {
	c := m.sess.Counters()
	segments := []string{
		modeLabel(m.sess.Mode()),
		fmt.Sprintf("Progress %d%%", int(m.sess.Progress()*100)),
		fmt.Sprintf("Words %d/%d", m.sess.Cursor(), m.sess.StreamLen()),
		fmt.Sprintf("Budget %d", m.sess.Budget()),
	}
	if c.Submissions > 0 && !m.startedAt.IsZero() {
		elapsed := m.opts.Now().Sub(m.startedAt).Milliseconds()
		wpm, _, acc := statsPkg.SessionMetrics(c.CorrectChars, c.IncorrectChars, elapsed)
		segments = append(segments, fmt.Sprintf("%.1f WPM · %.1f%%", wpm, acc*100))
	}
	segments = append(segments, helpLine(m.keys))
	return footerStyle.Render(strings.Join(segments, "  "))
}

func modeLabel(mode model.Mode) string {
	s := mode.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

func helpLine(k keyMap) string {
	bindings := []key.Binding{k.Submit, k.ToggleMode, k.Define, k.Quit}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " · ")
}

func renderDefinitions(results []dictionary.Result, width int) string {
	var b strings.Builder
	for i, res := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(currentWordStyle.Render(res.Word))
		b.WriteString("\n")
		switch res.Status {
		case dictionary.StatusNotFound:
			b.WriteString(pendingStyle.Render("  no definition found"))
			b.WriteString("\n")
			continue
		case dictionary.StatusUnavailable:
			b.WriteString(incorrectStyle.Render("  definition unavailable"))
			b.WriteString("\n")
			continue
		}
		for _, group := range res.Entry.Senses {
			b.WriteString("  " + posStyle.Render(group.PartOfSpeech) + "\n")
			for n, def := range group.Definitions {
				line := fmt.Sprintf("    %d. %s", n+1, def)
				if width > 0 {
					line = lipgloss.NewStyle().Width(width).Render(line)
				}
				b.WriteString(line + "\n")
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
