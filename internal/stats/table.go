package stats

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/wordtrainer/internal/model"
)

// RenderWordTable prints per-word aggregates, weakest first.
func RenderWordTable(w io.Writer, title string, aggs []model.WordAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No word stats found.")
		return err
	}
	rows := make([][]string, 0, len(aggs))
	for _, agg := range aggs {
		rows = append(rows, []string{
			agg.Word,
			fmt.Sprintf("%.2f%%", accuracy(agg)*100),
			fmt.Sprintf("%d", agg.Correct),
			fmt.Sprintf("%d", agg.Incorrect),
		})
	}
	headers := []string{"Word", "Accuracy", "Correct", "Incorrect"}
	return writeTable(w, title, headers, rows, map[int]bool{1: true, 2: true, 3: true})
}

// RenderRecords prints revision records with their due state relative to today.
func RenderRecords(w io.Writer, records []model.RevisionRecord, today time.Time) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No words scheduled for revision.")
		return err
	}
	rows := make([][]string, 0, len(records))
	due := 0
	for _, rec := range records {
		state := ""
		if !rec.NextDue.After(today) {
			state = "due"
			due++
		}
		rows = append(rows, []string{
			rec.Word,
			rec.NextDue.Format("2006-01-02"),
			fmt.Sprintf("%d", rec.Interval),
			state,
		})
	}
	headers := []string{"Word", "Next Review", "Interval", "State"}
	title := fmt.Sprintf("Revision Words (%d total, %d due)", len(records), due)
	return writeTable(w, title, headers, rows, map[int]bool{2: true})
}

func writeTable(w io.Writer, title string, headers []string, rows [][]string, rightAlign map[int]bool) error {
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func formatTable(headers []string, rows [][]string, rightAlignCols map[int]bool) []string {
	colCount := len(headers)
	for _, row := range rows {
		colCount = max(colCount, len(row))
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	for i, header := range headers {
		widths[i] = runewidth.StringWidth(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	lines := make([]string, 0, len(rows)+1)
	if len(headers) > 0 {
		lines = append(lines, formatRow(headers, widths, rightAlignCols))
	}
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths, rightAlignCols))
	}
	return lines
}

func formatRow(row []string, widths []int, rightAlignCols map[int]bool) string {
	var b strings.Builder
	for i := range widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(padCell(cell, widths[i], rightAlignCols[i]))
	}
	return b.String()
}

func padCell(value string, width int, rightAlign bool) string {
	if rightAlign {
		return runewidth.FillLeft(value, width)
	}
	return runewidth.FillRight(value, width)
}
