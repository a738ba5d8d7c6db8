package dictionary

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const sampleResponse = `[
  {
    "word": "run",
    "phonetics": [{"text": "/rʌn/"}],
    "meanings": [
      {"partOfSpeech": "verb", "definitions": [{"definition": "To move swiftly.", "example": "run fast"}, {"definition": ""}]},
      {"partOfSpeech": "noun", "definitions": [{"definition": "An act of running."}]}
    ]
  },
  {
    "word": "run",
    "meanings": [
      {"partOfSpeech": "verb", "definitions": [{"definition": "To operate a machine."}]}
    ]
  }
]`

func TestFetchEntryMapsResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/run" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	p := NewProvider(srv.URL, testLogger())
	entry, err := p.FetchEntry(context.Background(), "run")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if entry == nil || entry.Headword != "run" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if len(entry.Senses) != 2 {
		t.Fatalf("expected 2 sense groups, got %+v", entry.Senses)
	}
	verb := entry.Senses[0]
	if verb.PartOfSpeech != "verb" || len(verb.Definitions) != 2 || verb.Definitions[1] != "To operate a machine." {
		t.Fatalf("unexpected verb group: %+v", verb)
	}
	if entry.Senses[1].PartOfSpeech != "noun" {
		t.Fatalf("expected noun second, got %+v", entry.Senses[1])
	}
}

func TestFetchEntryNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	entry, err := NewProvider(srv.URL, testLogger()).FetchEntry(context.Background(), "qwzx")
	if err != nil || entry != nil {
		t.Fatalf("expected nil, nil; got %+v, %v", entry, err)
	}
}

func TestFetchEntryRetriesOnceOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	p := NewProvider(srv.URL, testLogger())
	p.retryDelay = time.Millisecond
	entry, err := p.FetchEntry(context.Background(), "run")
	if err != nil || entry == nil {
		t.Fatalf("expected entry after retry, got %+v, %v", entry, err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}

func TestFetchEntryGivesUpAfterSecondServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewProvider(srv.URL, testLogger())
	p.retryDelay = time.Millisecond
	if _, err := p.FetchEntry(context.Background(), "run"); err == nil {
		t.Fatalf("expected error")
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}

type fakeFetcher struct {
	mu       sync.Mutex
	active   int
	peak     int
	delay    time.Duration
	entries  map[string]*Entry
	failures map[string]error
}

func (f *fakeFetcher) FetchEntry(ctx context.Context, word string) (*Entry, error) {
	f.mu.Lock()
	f.active++
	f.peak = max(f.peak, f.active)
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()

	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if err, ok := f.failures[word]; ok {
		return nil, err
	}
	return f.entries[word], nil
}

func TestLookupKeepsInputOrderAndIsolatesFailures(t *testing.T) {
	f := &fakeFetcher{
		entries: map[string]*Entry{
			"quick": {Headword: "quick"},
			"fox":   {Headword: "fox"},
		},
		failures: map[string]error{"brown": errors.New("boom")},
	}
	words := []string{"quick", "brown", "zzz", "fox"}
	results := Lookup(context.Background(), f, words, Options{Concurrency: 2, Timeout: time.Second})
	if len(results) != len(words) {
		t.Fatalf("expected %d results, got %d", len(words), len(results))
	}
	want := []Status{StatusFound, StatusUnavailable, StatusNotFound, StatusFound}
	for i, res := range results {
		if res.Word != words[i] {
			t.Fatalf("result %d out of order: %q", i, res.Word)
		}
		if res.Status != want[i] {
			t.Fatalf("result %d: expected %v, got %v", i, want[i], res.Status)
		}
	}
	if results[3].Entry == nil || results[3].Entry.Headword != "fox" {
		t.Fatalf("unexpected fox entry: %+v", results[3].Entry)
	}
}

func TestLookupRespectsConcurrencyLimit(t *testing.T) {
	f := &fakeFetcher{delay: 10 * time.Millisecond}
	words := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	Lookup(context.Background(), f, words, Options{Concurrency: 3, Timeout: time.Second})
	if f.peak > 3 {
		t.Fatalf("expected at most 3 concurrent fetches, got %d", f.peak)
	}
}

func TestLookupTimesOutPerWord(t *testing.T) {
	f := &fakeFetcher{delay: time.Second}
	results := Lookup(context.Background(), f, []string{"slow"}, Options{Timeout: 10 * time.Millisecond})
	if results[0].Status != StatusUnavailable || !errors.Is(results[0].Err, context.DeadlineExceeded) {
		t.Fatalf("expected timeout, got %+v", results[0])
	}
}

func TestUnique(t *testing.T) {
	got := Unique([]string{"the", "fox", "the", "dog", "fox"})
	want := []string{"the", "fox", "dog"}
	if len(got) != len(want) {
		t.Fatalf("unexpected unique words: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected unique words: %v", got)
		}
	}
}
