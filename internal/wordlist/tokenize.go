// Package wordlist turns free-form practice text into drillable word streams.
package wordlist

import "strings"

// Stream is an immutable ordered sequence of lowercase ASCII words.
type Stream struct {
	words []string
}

// NewStream builds a stream from already-normalized words.
func NewStream(words []string) Stream {
	return Stream{words: append([]string(nil), words...)}
}

// Len returns the number of words in the stream.
func (s Stream) Len() int {
	return len(s.words)
}

// Word returns the word at index i.
func (s Stream) Word(i int) string {
	return s.words[i]
}

// Slice returns a copy of words in [start, end).
func (s Stream) Slice(start, end int) []string {
	return append([]string(nil), s.words[start:end]...)
}

// Words returns a copy of all words.
func (s Stream) Words() []string {
	return s.Slice(0, len(s.words))
}

// Tokenize lower-cases raw text, treats anything other than a-z as a
// separator, and splits it into words.
func Tokenize(raw string) Stream {
	cleaned := strings.Map(keepLetter, strings.ToLower(raw))
	return Stream{words: strings.Fields(cleaned)}
}

func keepLetter(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r
	}
	return ' '
}

// IsWord reports whether s is a non-empty run of lowercase ASCII letters.
func IsWord(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch < 'a' || ch > 'z' {
			return false
		}
	}
	return true
}
