// Package session drives drill sessions over a word stream.
//
// A Session is an immutable value: every operation returns the next Session
// and leaves the receiver untouched.
package session

import (
	"errors"
	"maps"
	"slices"
	"sort"
	"time"

	"github.com/verte-zerg/wordtrainer/internal/drill"
	"github.com/verte-zerg/wordtrainer/internal/model"
	"github.com/verte-zerg/wordtrainer/internal/wordlist"
)

const (
	DefaultBudget = 8
	DefaultStep   = 4
)

// MistakeRecorder receives expected words the user got wrong.
type MistakeRecorder interface {
	RecordMistake(word string, today time.Time)
}

// Reviewer receives per-word outcomes of a revision session.
type Reviewer interface {
	CompleteReview(word string, gotRight bool, today time.Time)
}

// Config sets the window budget curve.
type Config struct {
	InitialBudget int
	Step          int
}

// Outcome describes what one submission did.
type Outcome struct {
	Result   drill.MatchResult
	Advanced bool
	Done     bool
}

// Counters tallies scored words and characters across a session.
type Counters struct {
	CorrectWords     int
	IncorrectWords   int
	CorrectChars     int
	IncorrectChars   int
	WindowsCompleted int
	Submissions      int
}

// Session is the state of one drill screen.
type Session struct {
	stream wordlist.Stream
	mode   model.Mode
	cursor int
	budget int
	step   int
	window drill.Window
	hidden bool
	done   bool

	last    drill.MatchResult
	hasLast bool

	counters  Counters
	wordStats map[string]model.WordStats

	reviews     map[string]bool
	reviewOrder []string
}

// New starts a session at the beginning of stream.
func New(stream wordlist.Stream, mode model.Mode, cfg Config) (Session, error) {
	if cfg.Step <= 0 {
		cfg.Step = DefaultStep
	}
	if cfg.InitialBudget <= 0 {
		cfg.InitialBudget = DefaultBudget
	}
	s := Session{
		stream:    stream,
		mode:      mode,
		budget:    cfg.InitialBudget,
		step:      cfg.Step,
		wordStats: map[string]model.WordStats{},
		reviews:   map[string]bool{},
	}
	window, err := drill.NextWindow(stream, 0, s.budget)
	if errors.Is(err, drill.ErrEndOfStream) {
		s.done = true
		return s, nil
	}
	if err != nil {
		return Session{}, err
	}
	s.window = window
	return s, nil
}

// Submit scores input against the current window and moves the session on.
// In copy and memorize modes every mismatched expected word is passed to rec.
func (s Session) Submit(input string, rec MistakeRecorder, today time.Time) (Session, Outcome) {
	if s.done {
		return s, Outcome{Done: true}
	}
	res := drill.Score(s.window.Words, wordlist.Tokenize(input).Words())
	next := s.withResult(res)

	if s.mode != model.ModeRevision && rec != nil {
		for _, word := range res.Missed() {
			rec.RecordMistake(word, today)
		}
	}

	if res.IsPerfect() {
		next = next.advance()
		return next, Outcome{Result: res, Advanced: true, Done: next.done}
	}

	if s.mode == model.ModeMemorize {
		// Same window until beaten; show it again.
		next.hidden = false
		return next, Outcome{Result: res}
	}

	next.budget = max(next.budget-next.step, next.step)
	window, err := drill.NextWindow(next.stream, next.cursor, next.budget)
	if err == nil {
		next.window = window
	}
	return next, Outcome{Result: res}
}

func (s Session) withResult(res drill.MatchResult) Session {
	s.last = res
	s.hasLast = true
	s.counters.Submissions++

	cw, iw, cc, ic := res.Counts()
	s.counters.CorrectWords += cw
	s.counters.IncorrectWords += iw
	s.counters.CorrectChars += cc
	s.counters.IncorrectChars += ic

	s.wordStats = maps.Clone(s.wordStats)
	if s.wordStats == nil {
		s.wordStats = map[string]model.WordStats{}
	}
	for _, p := range res.Pairs {
		ws := s.wordStats[p.Expected]
		ws.Word = p.Expected
		if p.Correct {
			ws.Correct++
		} else {
			ws.Incorrect++
		}
		s.wordStats[p.Expected] = ws
	}

	if s.mode == model.ModeRevision {
		s.reviews = maps.Clone(s.reviews)
		if s.reviews == nil {
			s.reviews = map[string]bool{}
		}
		s.reviewOrder = slices.Clone(s.reviewOrder)
		for _, p := range res.Pairs {
			prev, seen := s.reviews[p.Expected]
			if !seen {
				s.reviewOrder = append(s.reviewOrder, p.Expected)
				s.reviews[p.Expected] = p.Correct
				continue
			}
			s.reviews[p.Expected] = prev && p.Correct
		}
	}
	return s
}

func (s Session) advance() Session {
	s.cursor = s.window.End
	s.budget += s.step
	s.counters.WindowsCompleted++
	s.hidden = false
	window, err := drill.NextWindow(s.stream, s.cursor, s.budget)
	if err != nil {
		s.window = drill.Window{Start: s.cursor, End: s.cursor}
		s.done = true
		return s
	}
	s.window = window
	return s
}

// Hide marks the current window as hidden. Only memorize sessions hide text.
func (s Session) Hide() Session {
	if s.mode != model.ModeMemorize || s.done {
		return s
	}
	s.hidden = true
	return s
}

// SetMode switches between copy and memorize. Revision sessions keep their mode.
func (s Session) SetMode(mode model.Mode) Session {
	if s.mode == model.ModeRevision || mode == model.ModeRevision {
		return s
	}
	s.mode = mode
	s.hidden = false
	return s
}

// ApplyReviews reports every word scored in a revision session. A word counts
// as recalled only if no pass in the session missed it.
func (s Session) ApplyReviews(r Reviewer, today time.Time) int {
	if s.mode != model.ModeRevision {
		return 0
	}
	for _, word := range s.reviewOrder {
		r.CompleteReview(word, s.reviews[word], today)
	}
	return len(s.reviewOrder)
}

// Mode returns the session mode.
func (s Session) Mode() model.Mode { return s.mode }

// Window returns the window currently presented.
func (s Session) Window() drill.Window { return s.window }

// WindowText returns the current window text, or "" while hidden.
func (s Session) WindowText() string {
	if s.hidden {
		return ""
	}
	return s.window.Text()
}

// Hidden reports whether the window text is hidden.
func (s Session) Hidden() bool { return s.hidden }

// Done reports whether the stream is exhausted.
func (s Session) Done() bool { return s.done }

// Cursor returns the index of the first word of the current window.
func (s Session) Cursor() int { return s.cursor }

// Budget returns the current character budget.
func (s Session) Budget() int { return s.budget }

// StreamLen returns the number of words in the session stream.
func (s Session) StreamLen() int { return s.stream.Len() }

// LastResult returns the most recent scoring pass.
func (s Session) LastResult() (drill.MatchResult, bool) { return s.last, s.hasLast }

// Counters returns cumulative tallies.
func (s Session) Counters() Counters { return s.counters }

// Progress returns the completed fraction of the stream in [0, 1].
func (s Session) Progress() float64 {
	if s.stream.Len() == 0 || s.done {
		return 1
	}
	return float64(s.cursor) / float64(s.stream.Len())
}

// WordStats returns per-word tallies sorted by word.
func (s Session) WordStats() []model.WordStats {
	out := make([]model.WordStats, 0, len(s.wordStats))
	for _, ws := range s.wordStats {
		out = append(out, ws)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Word < out[j].Word })
	return out
}
