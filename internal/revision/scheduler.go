// Package revision schedules mistaken words for review on a fixed interval ladder.
package revision

import (
	"context"
	"fmt"
	"time"

	"github.com/verte-zerg/wordtrainer/internal/model"
)

// Ladder lists the review intervals in days, shortest first.
var Ladder = []int{1, 3, 7, 30}

// BaseInterval is the interval assigned to a newly missed word.
const BaseInterval = 1

// RecordStore loads and saves the full set of revision records. LoadAll
// reports how many malformed rows it skipped.
type RecordStore interface {
	LoadAll(ctx context.Context) ([]model.RevisionRecord, int, error)
	SaveAll(ctx context.Context, records []model.RevisionRecord) error
}

// NextRung returns the interval after current. ok is false when current is
// the last rung or not on the ladder.
func NextRung(current int) (next int, ok bool) {
	for i, v := range Ladder {
		if v == current && i+1 < len(Ladder) {
			return Ladder[i+1], true
		}
	}
	return 0, false
}

// ValidInterval reports whether days is a rung of the ladder.
func ValidInterval(days int) bool {
	for _, v := range Ladder {
		if v == days {
			return true
		}
	}
	return false
}

// Day truncates t to midnight UTC of its local calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the calendar date days after day.
func AddDays(day time.Time, days int) time.Time {
	return Day(day).AddDate(0, 0, days)
}

// Scheduler holds revision records in insertion order. It is not safe for
// concurrent use.
type Scheduler struct {
	records []model.RevisionRecord
	index   map[string]int
	skipped int
}

// New builds a scheduler from records. Later duplicates of a word are dropped
// and counted as skipped.
func New(records []model.RevisionRecord) *Scheduler {
	s := &Scheduler{index: make(map[string]int, len(records))}
	for _, rec := range records {
		if _, ok := s.index[rec.Word]; ok {
			s.skipped++
			continue
		}
		rec.NextDue = Day(rec.NextDue)
		s.index[rec.Word] = len(s.records)
		s.records = append(s.records, rec)
	}
	return s
}

// Load reads every record from store.
func Load(ctx context.Context, store RecordStore) (*Scheduler, error) {
	records, skipped, err := store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load revision records: %w", err)
	}
	s := New(records)
	s.skipped += skipped
	return s, nil
}

// Save overwrites store with the current records.
func (s *Scheduler) Save(ctx context.Context, store RecordStore) error {
	if err := store.SaveAll(ctx, s.Records()); err != nil {
		return fmt.Errorf("failed to save revision records: %w", err)
	}
	return nil
}

// Skipped returns how many stored rows were malformed or duplicated at load.
func (s *Scheduler) Skipped() int {
	return s.skipped
}

// Len returns the number of active records.
func (s *Scheduler) Len() int {
	return len(s.records)
}

// Records returns a copy of all records in insertion order.
func (s *Scheduler) Records() []model.RevisionRecord {
	return append([]model.RevisionRecord(nil), s.records...)
}

// Lookup returns the record for word.
func (s *Scheduler) Lookup(word string) (model.RevisionRecord, bool) {
	i, ok := s.index[word]
	if !ok {
		return model.RevisionRecord{}, false
	}
	return s.records[i], true
}

// RecordMistake schedules word for review tomorrow if it has no record yet.
// Existing records keep their rung and due date.
func (s *Scheduler) RecordMistake(word string, today time.Time) {
	if word == "" {
		return
	}
	if _, ok := s.index[word]; ok {
		return
	}
	s.index[word] = len(s.records)
	s.records = append(s.records, model.RevisionRecord{
		Word:     word,
		NextDue:  AddDays(today, BaseInterval),
		Interval: BaseInterval,
	})
}

// DueWords returns words whose next review date is on or before today.
func (s *Scheduler) DueWords(today time.Time) []string {
	day := Day(today)
	var due []string
	for _, rec := range s.records {
		if !rec.NextDue.After(day) {
			due = append(due, rec.Word)
		}
	}
	return due
}

// DueCount returns len(DueWords(today)) without allocating.
func (s *Scheduler) DueCount(today time.Time) int {
	day := Day(today)
	n := 0
	for _, rec := range s.records {
		if !rec.NextDue.After(day) {
			n++
		}
	}
	return n
}

// CompleteReview applies a review outcome for a due word. Words that are not
// due are left untouched. A correct review climbs one rung, or retires the
// word from the last rung; a failed one keeps the word due on its rung.
func (s *Scheduler) CompleteReview(word string, gotRight bool, today time.Time) {
	i, ok := s.index[word]
	if !ok {
		return
	}
	day := Day(today)
	rec := s.records[i]
	if rec.NextDue.After(day) {
		return
	}
	if !gotRight {
		s.RecordMistake(word, day)
		return
	}
	next, ok := NextRung(rec.Interval)
	if !ok {
		s.remove(i)
		return
	}
	rec.Interval = next
	rec.NextDue = AddDays(day, next)
	s.records[i] = rec
}

func (s *Scheduler) remove(i int) {
	delete(s.index, s.records[i].Word)
	s.records = append(s.records[:i], s.records[i+1:]...)
	for j := i; j < len(s.records); j++ {
		s.index[s.records[j].Word] = j
	}
}
