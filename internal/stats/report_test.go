package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/wordtrainer/internal/model"
	"github.com/verte-zerg/wordtrainer/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "wordtrainer.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	var ids []int64
	for i := 0; i < 3; i++ {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		end := start.Add(30 * time.Second)
		stats := model.SessionStats{
			StartedAt:      start,
			EndedAt:        end,
			Mode:           "copy",
			Source:         "dummy",
			CorrectWords:   4,
			IncorrectWords: 1,
			CorrectChars:   20,
			IncorrectChars: 5,
			DurationMs:     end.Sub(start).Milliseconds(),
		}
		words := []model.WordStats{
			{Word: "quick", Correct: 1, Incorrect: 1},
			{Word: "the", Correct: 3, Incorrect: 0},
		}
		id, err := st.InsertSession(ctx, stats, words)
		if err != nil {
			t.Fatalf("insert session: %v", err)
		}
		ids = append(ids, id)
	}

	cfg := model.StatsConfig{
		Mode:        "copy",
		Last:        2,
		CurveWindow: 2,
		WeakTop:     5,
	}
	report, err := BuildReport(ctx, st, cfg)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(report.Sessions))
	}
	if report.Sessions[0].SessionID != ids[1] || report.Sessions[1].SessionID != ids[2] {
		t.Fatalf("unexpected session ids: %+v", report.Sessions)
	}
	if len(report.WindowSessionIDs) != 2 {
		t.Fatalf("expected 2 window session ids, got %d", len(report.WindowSessionIDs))
	}
	if len(report.WordAggsAll) != 2 {
		t.Fatalf("expected word aggregates for all sessions, got %+v", report.WordAggsAll)
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, cfg, 60); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Weak Words") || !strings.Contains(out, "quick") {
		t.Fatalf("expected weak words in report:\n%s", out)
	}
	if !strings.Contains(out, "Most practiced: the, quick") {
		t.Fatalf("expected most practiced line:\n%s", out)
	}
}
