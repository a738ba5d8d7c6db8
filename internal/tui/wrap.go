package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/wordtrainer/internal/drill"
)

type styledWord struct {
	s     string
	width int
}

// buildWindowWords styles the words to type, highlighting the first one.
func buildWindowWords(words []string) []styledWord {
	out := make([]styledWord, 0, len(words))
	for i, w := range words {
		style := pendingStyle
		if i == 0 {
			style = currentWordStyle
		}
		out = append(out, styledWord{s: style.Render(w), width: runewidth.StringWidth(w)})
	}
	return out
}

// buildResultWords styles a scored window: matched words as correct, missed
// words as incorrect followed by what was typed in their place, and words the
// submission never reached as incorrect.
func buildResultWords(res drill.MatchResult) []styledWord {
	out := make([]styledWord, 0, len(res.Pairs)+len(res.Unmatched))
	for _, p := range res.Pairs {
		if p.Correct {
			out = append(out, styledWord{s: correctStyle.Render(p.Expected), width: runewidth.StringWidth(p.Expected)})
			continue
		}
		s := incorrectStyle.Render(p.Expected) +
			pendingStyle.Render("(") + typedStyle.Render(p.Submitted) + pendingStyle.Render(")")
		width := runewidth.StringWidth(p.Expected) + runewidth.StringWidth(p.Submitted) + 2
		out = append(out, styledWord{s: s, width: width})
	}
	for _, w := range res.Unmatched {
		out = append(out, styledWord{s: incorrectStyle.Render(w), width: runewidth.StringWidth(w)})
	}
	return out
}

func renderStyledWords(words []styledWord) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.s
	}
	return strings.Join(parts, " ")
}

// wrapStyledWords breaks words into lines no wider than width. A word wider
// than width gets a line of its own.
func wrapStyledWords(words []styledWord, width int) string {
	if width <= 0 {
		return renderStyledWords(words)
	}
	var lines []string
	var line []styledWord
	lineWidth := 0
	for _, w := range words {
		next := lineWidth + w.width
		if len(line) > 0 {
			next++
		}
		if next > width && len(line) > 0 {
			lines = append(lines, renderStyledWords(line))
			line = line[:0]
			next = w.width
		}
		line = append(line, w)
		lineWidth = next
	}
	if len(line) > 0 {
		lines = append(lines, renderStyledWords(line))
	}
	return strings.Join(lines, "\n")
}
