// Package dictionary looks up word definitions for display next to a drill.
package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the FreeDictionary API entries endpoint.
const DefaultBaseURL = "https://api.dictionaryapi.dev/api/v2/entries/en"

// Entry is a headword with its definitions grouped by part of speech.
type Entry struct {
	Headword string
	Senses   []SenseGroup
}

// SenseGroup lists definitions sharing one part of speech, in API order.
type SenseGroup struct {
	PartOfSpeech string
	Definitions  []string
}

// Fetcher retrieves a single entry. A nil entry with a nil error means the
// word is unknown.
type Fetcher interface {
	FetchEntry(ctx context.Context, word string) (*Entry, error)
}

// Provider fetches entries from the FreeDictionary API.
type Provider struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
	retryDelay time.Duration
}

// NewProvider creates a Provider for baseURL; an empty baseURL selects
// DefaultBaseURL.
func NewProvider(baseURL string, logger *slog.Logger) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Provider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        logger.With("adapter", "freedict"),
		retryDelay: 500 * time.Millisecond,
	}
}

// FetchEntry fetches the entry for word. Returns nil, nil on HTTP 404.
func (p *Provider) FetchEntry(ctx context.Context, word string) (*Entry, error) {
	reqURL := p.baseURL + "/" + url.PathEscape(word)

	p.log.DebugContext(ctx, "freedict request", slog.String("word", word))

	resp, err := p.doWithRetry(ctx, reqURL, word)
	if err != nil {
		p.log.ErrorContext(ctx, "freedict request failed", slog.String("word", word), slog.String("error", err.Error()))
		return nil, fmt.Errorf("freedict: request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("freedict: unexpected status %d", resp.StatusCode)
	}

	var entries []apiEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("freedict: decode json: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	entry := mapAPIResponse(entries)
	p.log.DebugContext(ctx, "freedict response",
		slog.String("word", word),
		slog.Int("status", resp.StatusCode),
		slog.Int("groups", len(entry.Senses)),
	)
	return entry, nil
}

// doWithRetry retries once on 5xx or network errors.
func (p *Provider) doWithRetry(ctx context.Context, reqURL, word string) (*http.Response, error) {
	resp, err := p.do(ctx, reqURL)

	shouldRetry := err != nil || (resp != nil && resp.StatusCode >= 500)
	if !shouldRetry || ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil && resp != nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
	}
	p.log.WarnContext(ctx, "freedict retry", slog.String("word", word), slog.String("reason", reason))

	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(p.retryDelay):
	}
	return p.do(ctx, reqURL)
}

func (p *Provider) do(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return p.httpClient.Do(req)
}

// mapAPIResponse merges entries (one per etymology) into a single Entry,
// keeping parts of speech in first-seen order.
func mapAPIResponse(entries []apiEntry) *Entry {
	entry := &Entry{Headword: entries[0].Word}
	groupIdx := map[string]int{}
	for _, e := range entries {
		for _, meaning := range e.Meanings {
			pos := meaning.PartOfSpeech
			idx, ok := groupIdx[pos]
			if !ok {
				idx = len(entry.Senses)
				groupIdx[pos] = idx
				entry.Senses = append(entry.Senses, SenseGroup{PartOfSpeech: pos})
			}
			for _, def := range meaning.Definitions {
				if def.Definition == "" {
					continue
				}
				entry.Senses[idx].Definitions = append(entry.Senses[idx].Definitions, def.Definition)
			}
		}
	}
	return entry
}

// apiEntry is one element of the FreeDictionary response array.
type apiEntry struct {
	Word     string       `json:"word"`
	Meanings []apiMeaning `json:"meanings"`
}

type apiMeaning struct {
	PartOfSpeech string          `json:"partOfSpeech"`
	Definitions  []apiDefinition `json:"definitions"`
}

type apiDefinition struct {
	Definition string `json:"definition"`
	Example    string `json:"example"`
}
