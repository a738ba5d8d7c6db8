package stats

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/verte-zerg/wordtrainer/internal/model"
)

func TestSessionMetrics(t *testing.T) {
	wpm, cpm, acc := SessionMetrics(50, 10, 60000)
	if wpm != 10 || cpm != 50 {
		t.Fatalf("unexpected speed: wpm=%v cpm=%v", wpm, cpm)
	}
	if math.Abs(acc-50.0/60.0) > 1e-9 {
		t.Fatalf("unexpected accuracy %v", acc)
	}
	if wpm, _, _ := SessionMetrics(50, 0, 0); wpm != 0 {
		t.Fatalf("expected zero metrics for zero duration")
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected moving average: %v", got)
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 1}); got != " @" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{3, 3, 3}); got != "+++" {
		t.Fatalf("unexpected flat sparkline %q", got)
	}
	if Sparkline(nil) != "" {
		t.Fatalf("expected empty sparkline")
	}
}

func TestDownsample(t *testing.T) {
	got := Downsample([]float64{1, 3, 5, 7}, 2)
	if len(got) != 2 || got[0] != 2 || got[1] != 6 {
		t.Fatalf("unexpected downsample: %v", got)
	}
	if got := Downsample([]float64{1, 2}, 10); len(got) != 2 {
		t.Fatalf("short input must be kept, got %v", got)
	}
}

func TestRenderSummaryAndCurves(t *testing.T) {
	sessions := []model.SessionAggregate{
		{SessionID: 1, CorrectChars: 100, IncorrectChars: 0, DurationMs: 60000},
		{SessionID: 2, CorrectChars: 200, IncorrectChars: 50, DurationMs: 60000},
	}
	var buf bytes.Buffer
	if err := RenderSummary(&buf, sessions); err != nil {
		t.Fatalf("summary: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Sessions: 2") || !strings.Contains(out, "Best WPM: 40.00") {
		t.Fatalf("unexpected summary:\n%s", out)
	}
	if !strings.Contains(out, "Time practiced: 2m00s") {
		t.Fatalf("unexpected duration:\n%s", out)
	}

	buf.Reset()
	if err := RenderCurves(&buf, sessions, 1, 40); err != nil {
		t.Fatalf("curves: %v", err)
	}
	out = buf.String()
	if !strings.Contains(out, "Learning Curves") || !strings.Contains(out, "WPM") || !strings.Contains(out, "Accuracy") {
		t.Fatalf("unexpected curves:\n%s", out)
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, nil); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "No sessions found." {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
