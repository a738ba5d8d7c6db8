// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects how a drill session presents and advances text.
type Mode int

const (
	ModeCopy Mode = iota
	ModeMemorize
	ModeRevision
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeCopy:
		return "copy"
	case ModeMemorize:
		return "memorize"
	case ModeRevision:
		return "revision"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode parses a practice mode name.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "copy", "":
		return ModeCopy, nil
	case "memorize":
		return ModeMemorize, nil
	case "revision":
		return ModeRevision, nil
	default:
		return ModeCopy, fmt.Errorf("unknown mode %q (expected copy or memorize)", s)
	}
}

// Config defines practice settings.
type Config struct {
	Mode          Mode
	InitialBudget int
	Step          int
	MemorizeDelay time.Duration
	TextPath      string
}

// DictionaryConfig defines definition lookup settings.
type DictionaryConfig struct {
	BaseURL     string
	Timeout     time.Duration
	Concurrency int
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Mode        string
	Since       *time.Time
	Last        int
	CurveWindow int
	WeakTop     int
}

// RevisionRecord schedules one mistaken word for review.
type RevisionRecord struct {
	Word     string
	NextDue  time.Time
	Interval int
}

// SessionStats captures a completed drill session.
type SessionStats struct {
	StartedAt        time.Time
	EndedAt          time.Time
	Mode             string
	Source           string
	CorrectWords     int
	IncorrectWords   int
	CorrectChars     int
	IncorrectChars   int
	WindowsCompleted int
	DurationMs       int64
}

// WordStats stores per-word results for a session.
type WordStats struct {
	Word      string
	Correct   int
	Incorrect int
}

// WordAggregate aggregates word stats across sessions.
type WordAggregate struct {
	Word      string
	Correct   int
	Incorrect int
}

// SessionAggregate summarizes a session for reporting.
type SessionAggregate struct {
	SessionID      int64
	EndedAt        time.Time
	Mode           string
	CorrectChars   int
	IncorrectChars int
	DurationMs     int64
}
