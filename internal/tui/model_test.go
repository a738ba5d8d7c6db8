package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/wordtrainer/internal/dictionary"
	"github.com/verte-zerg/wordtrainer/internal/model"
	"github.com/verte-zerg/wordtrainer/internal/session"
	"github.com/verte-zerg/wordtrainer/internal/wordlist"
)

type recorder struct {
	words []string
}

func (r *recorder) RecordMistake(word string, _ time.Time) {
	r.words = append(r.words, word)
}

func newTestModel(t *testing.T, mode model.Mode, opts Options) *Model {
	t.Helper()
	stream := wordlist.Tokenize("the quick brown fox jumps")
	sess, err := session.New(stream, mode, session.Config{InitialBudget: 8, Step: 4})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	opts.Now = func() time.Time { return clock }
	return NewModel(sess, opts)
}

func typeAndSubmit(m *Model, text string) tea.Cmd {
	m.input.SetValue(text)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

func TestSubmitAdvancesWindow(t *testing.T) {
	rec := &recorder{}
	m := newTestModel(t, model.ModeCopy, Options{Recorder: rec})
	typeAndSubmit(m, "the quick")
	if m.Session().Cursor() != 2 {
		t.Fatalf("expected cursor 2, got %d", m.Session().Cursor())
	}
	if m.input.Value() != "" {
		t.Fatalf("expected input cleared")
	}
	if m.StartedAt().IsZero() {
		t.Fatalf("expected start time after first submission")
	}
	if len(rec.words) != 0 {
		t.Fatalf("unexpected mistakes: %v", rec.words)
	}
}

func TestSubmitRecordsMistakes(t *testing.T) {
	rec := &recorder{}
	m := newTestModel(t, model.ModeCopy, Options{Recorder: rec})
	typeAndSubmit(m, "the quik")
	if len(rec.words) != 1 || rec.words[0] != "quick" {
		t.Fatalf("expected quick recorded, got %v", rec.words)
	}
	if m.Session().Cursor() != 0 {
		t.Fatalf("expected cursor unchanged, got %d", m.Session().Cursor())
	}
	if !strings.Contains(m.View(), "Not quite") {
		t.Fatalf("expected notice in view")
	}
}

func TestMemorizeBlocksSubmitUntilHidden(t *testing.T) {
	m := newTestModel(t, model.ModeMemorize, Options{Recorder: &recorder{}, MemorizeDelay: time.Millisecond})
	if cmd := m.Init(); cmd == nil {
		t.Fatalf("expected hide to be scheduled")
	}
	typeAndSubmit(m, "the quick")
	if m.Session().Counters().Submissions != 0 {
		t.Fatalf("submission must wait until the text is hidden")
	}

	m.Update(hideMsg{seq: m.hideSeq - 1})
	if m.Session().Hidden() {
		t.Fatalf("stale hide must be ignored")
	}
	m.Update(hideMsg{seq: m.hideSeq})
	if !m.Session().Hidden() {
		t.Fatalf("expected window hidden")
	}
	m.input.Reset()
	if strings.Contains(m.View(), "quick") {
		t.Fatalf("hidden window text must not be rendered")
	}

	cmd := typeAndSubmit(m, "the quick")
	if m.Session().Cursor() != 2 {
		t.Fatalf("expected advance after hidden submit, got cursor %d", m.Session().Cursor())
	}
	if cmd == nil {
		t.Fatalf("expected next window hide to be scheduled")
	}
}

func TestToggleModeSwitchesCopyAndMemorize(t *testing.T) {
	m := newTestModel(t, model.ModeCopy, Options{})
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.Session().Mode() != model.ModeMemorize {
		t.Fatalf("expected memorize mode")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.Session().Mode() != model.ModeCopy {
		t.Fatalf("expected copy mode")
	}
}

func TestDefinitionsLookup(t *testing.T) {
	var asked []string
	lookup := func(_ context.Context, words []string) []dictionary.Result {
		asked = words
		return []dictionary.Result{
			{Word: "the", Status: dictionary.StatusNotFound},
			{Word: "quick", Status: dictionary.StatusFound, Entry: &dictionary.Entry{
				Headword: "quick",
				Senses:   []dictionary.SenseGroup{{PartOfSpeech: "adjective", Definitions: []string{"Moving fast."}}},
			}},
		}
	}
	m := newTestModel(t, model.ModeCopy, Options{Lookup: lookup})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	if cmd == nil {
		t.Fatalf("expected lookup command")
	}
	m.Update(cmd())
	if len(asked) != 2 || asked[0] != "the" || asked[1] != "quick" {
		t.Fatalf("unexpected lookup words: %v", asked)
	}
	view := m.defs.View()
	if !strings.Contains(view, "Moving fast.") || !strings.Contains(view, "no definition found") {
		t.Fatalf("definitions not rendered:\n%s", view)
	}
}

func TestRenderFooterFormats(t *testing.T) {
	m := newTestModel(t, model.ModeCopy, Options{Recorder: &recorder{}})
	typeAndSubmit(m, "the quick")
	m.opts.Now = func() time.Time { return m.startedAt.Add(6 * time.Second) }
	out := m.renderFooter()
	if !containsAll(out, []string{"Copy", "Progress 40%", "Words 2/5", "Budget 12", "16.0 WPM", "100.0%"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
}

func TestRevisionBanner(t *testing.T) {
	m := newTestModel(t, model.ModeRevision, Options{DueCount: 5})
	if !strings.Contains(m.renderBanner(), "5 words due") {
		t.Fatalf("expected due banner, got %q", m.renderBanner())
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
