package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/wordtrainer/internal/dictionary"
	"github.com/verte-zerg/wordtrainer/internal/model"
	"github.com/verte-zerg/wordtrainer/internal/store"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestValidateConfig(t *testing.T) {
	ok := model.Config{InitialBudget: 8, Step: 4, MemorizeDelay: time.Second}
	if err := validateConfig(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := []model.Config{
		{InitialBudget: 0, Step: 4},
		{InitialBudget: 8, Step: 0},
		{InitialBudget: 8, Step: 4, MemorizeDelay: -time.Second},
		{InitialBudget: 8, Step: 4, MemorizeDelay: 0},
	}
	for _, cfg := range bad {
		if err := validateConfig(cfg); err == nil {
			t.Fatalf("expected error for %+v", cfg)
		}
	}
}

func TestPracticeConfigRejectsRevisionMode(t *testing.T) {
	prev := practiceMode
	t.Cleanup(func() { practiceMode = prev })

	practiceMode = "revision"
	if _, err := practiceConfig(); err == nil || !strings.Contains(err.Error(), "wordtrainer revise") {
		t.Fatalf("expected revise hint, got %v", err)
	}
	practiceMode = "memorize"
	cfg, err := practiceConfig()
	if err != nil || cfg.Mode != model.ModeMemorize {
		t.Fatalf("unexpected config %+v, %v", cfg, err)
	}
}

func TestDueRecords(t *testing.T) {
	today := day(2024, 4, 10)
	records := []model.RevisionRecord{
		{Word: "past", NextDue: day(2024, 4, 1), Interval: 1},
		{Word: "future", NextDue: day(2024, 4, 11), Interval: 3},
		{Word: "today", NextDue: today, Interval: 7},
	}
	due := dueRecords(records, today)
	if len(due) != 2 || due[0].Word != "past" || due[1].Word != "today" {
		t.Fatalf("unexpected due records: %+v", due)
	}
	if len(records) != 3 || records[1].Word != "future" {
		t.Fatalf("input must not be modified: %+v", records)
	}
}

func TestImportRecordsMergesKeepingExisting(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "wordtrainer.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	if err := st.SaveAll(ctx, []model.RevisionRecord{{Word: "quick", NextDue: day(2024, 1, 2), Interval: 3}}); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	src := store.NewCSVStore(filepath.Join(dir, "in.csv"))
	if err := src.SaveAll(ctx, []model.RevisionRecord{
		{Word: "quick", NextDue: day(2024, 1, 5), Interval: 1},
		{Word: "brown", NextDue: day(2024, 1, 6), Interval: 7},
	}); err != nil {
		t.Fatalf("seed csv: %v", err)
	}

	added, total, err := importRecords(ctx, st, src, false)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if added != 1 || total != 2 {
		t.Fatalf("expected 1 added of 2, got %d of %d", added, total)
	}
	records, _, err := st.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if records[0].Word != "quick" || records[0].Interval != 3 || records[1].Word != "brown" {
		t.Fatalf("unexpected merged records: %+v", records)
	}

	added, total, err = importRecords(ctx, st, src, true)
	if err != nil {
		t.Fatalf("import replace: %v", err)
	}
	if added != 2 || total != 2 {
		t.Fatalf("expected replace of 2, got %d of %d", added, total)
	}
	records, _, err = st.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if records[0].Interval != 1 {
		t.Fatalf("expected imported record to replace existing, got %+v", records[0])
	}
}

func TestWriteDefinitions(t *testing.T) {
	results := []dictionary.Result{
		{Word: "run", Status: dictionary.StatusFound, Entry: &dictionary.Entry{
			Headword: "run",
			Senses: []dictionary.SenseGroup{
				{PartOfSpeech: "verb", Definitions: []string{"To move swiftly.", "To operate."}},
			},
		}},
		{Word: "qwzx", Status: dictionary.StatusNotFound},
	}
	var buf bytes.Buffer
	if err := writeDefinitions(&buf, results); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "run\n  verb\n    1. To move swiftly.\n    2. To operate.\n\nqwzx: no definition found\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%q", buf.String())
	}
}

func TestWriteDefinitionsAllUnavailable(t *testing.T) {
	results := []dictionary.Result{{Word: "run", Status: dictionary.StatusUnavailable, Err: errors.New("timeout")}}
	if err := writeDefinitions(&bytes.Buffer{}, results); err == nil {
		t.Fatalf("expected error when no lookup succeeded")
	}
}
