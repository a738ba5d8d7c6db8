// Package drill selects text windows from a word stream and scores submissions.
package drill

import (
	"errors"
	"strings"

	"github.com/verte-zerg/wordtrainer/internal/wordlist"
)

// Slack is how far a window may overshoot its character budget before the
// last word is dropped.
const Slack = 2

// ErrEndOfStream is returned when no words remain after the cursor.
var ErrEndOfStream = errors.New("drill: end of stream")

// Window is a contiguous run of words [Start, End) from a stream.
type Window struct {
	Start int
	End   int
	Words []string
}

// Text joins the window words with single spaces.
func (w Window) Text() string {
	return strings.Join(w.Words, " ")
}

// CharCount returns the length of Text.
func (w Window) CharCount() int {
	return joinedLen(w.Words)
}

// Empty reports whether the window holds no words.
func (w Window) Empty() bool {
	return len(w.Words) == 0
}

// NextWindow collects words from cursor until their joined length reaches
// budget. The returned window's End is the cursor for the next call.
func NextWindow(stream wordlist.Stream, cursor, budget int) (Window, error) {
	if cursor < 0 {
		cursor = 0
	}
	if cursor >= stream.Len() {
		return Window{}, ErrEndOfStream
	}
	if budget < 1 {
		budget = 1
	}

	total := 0
	end := cursor
	for i := cursor; i < stream.Len(); i++ {
		if i > cursor {
			total++
		}
		total += len(stream.Word(i))
		end = i + 1
		if total < budget {
			continue
		}
		if total-budget > Slack && end-1 > cursor {
			end--
		}
		break
	}
	return Window{Start: cursor, End: end, Words: stream.Slice(cursor, end)}, nil
}

func joinedLen(words []string) int {
	if len(words) == 0 {
		return 0
	}
	total := len(words) - 1
	for _, w := range words {
		total += len(w)
	}
	return total
}
