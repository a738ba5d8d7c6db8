package dictionary

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultConcurrency = 4
	DefaultTimeout     = 5 * time.Second
)

// Status tells whether a lookup produced a definition.
type Status int

const (
	StatusFound Status = iota
	StatusNotFound
	StatusUnavailable
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNotFound:
		return "not found"
	default:
		return "unavailable"
	}
}

// Result is the lookup outcome for one word.
type Result struct {
	Word   string
	Entry  *Entry
	Status Status
	Err    error
}

// Options bound a Lookup fan-out.
type Options struct {
	Concurrency int
	Timeout     time.Duration
}

// Lookup fetches entries for words in parallel. Each fetch gets its own
// timeout; a failed fetch only marks its own result. Results are returned in
// the order of words.
func Lookup(ctx context.Context, f Fetcher, words []string, opts Options) []Result {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	results := make([]Result, len(words))
	var g errgroup.Group
	g.SetLimit(opts.Concurrency)
	for i, word := range words {
		i, word := i, word
		g.Go(func() error {
			results[i] = lookupOne(ctx, f, word, opts.Timeout)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func lookupOne(ctx context.Context, f Fetcher, word string, timeout time.Duration) Result {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	entry, err := f.FetchEntry(ctx, word)
	switch {
	case err != nil:
		return Result{Word: word, Status: StatusUnavailable, Err: err}
	case entry == nil:
		return Result{Word: word, Status: StatusNotFound}
	default:
		return Result{Word: word, Entry: entry, Status: StatusFound}
	}
}

// Unique drops repeated words while keeping first occurrences in order.
func Unique(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}
