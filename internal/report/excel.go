// Package report builds xlsx exports of student progress and latency
// metrics for offline review.
package report

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/campus-ai/tutor-core/internal/metrics"
	"github.com/campus-ai/tutor-core/internal/progress"
)

const (
	sheetProgress = "Progress"
	sheetMetrics  = "Metrics"
)

// Build assembles a workbook with one row per student and one row per
// timed operation.
func Build(engine *progress.Engine, collector *metrics.Collector) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetProgress); err != nil {
		return nil, fmt.Errorf("naming progress sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetMetrics); err != nil {
		return nil, fmt.Errorf("creating metrics sheet: %w", err)
	}

	if err := writeProgressSheet(f, engine); err != nil {
		return nil, err
	}
	if err := writeMetricsSheet(f, collector); err != nil {
		return nil, err
	}
	return f, nil
}

// Bytes renders the workbook for an HTTP response.
func Bytes(engine *progress.Engine, collector *metrics.Collector) ([]byte, error) {
	f, err := Build(engine, collector)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("rendering workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeProgressSheet(f *excelize.File, engine *progress.Engine) error {
	header := []any{"Student", "Completed", "Total", "Progress %", "Next Chapter"}
	if err := f.SetSheetRow(sheetProgress, "A1", &header); err != nil {
		return fmt.Errorf("writing progress header: %w", err)
	}

	students, err := engine.Students()
	if err != nil {
		return fmt.Errorf("listing students: %w", err)
	}

	for i, studentID := range students {
		snap, err := engine.GetSnapshot(studentID, nil)
		if err != nil {
			return fmt.Errorf("snapshot for %s: %w", studentID, err)
		}
		next := ""
		if snap.NextChapter != nil {
			next = snap.NextChapter.ChapterID
		}
		row := []any{
			snap.StudentID,
			len(snap.CompletedChapters),
			snap.TotalChapters,
			snap.ProgressPct,
			next,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetProgress, cell, &row); err != nil {
			return fmt.Errorf("writing progress row: %w", err)
		}
	}
	return nil
}

func writeMetricsSheet(f *excelize.File, collector *metrics.Collector) error {
	header := []any{"Operation", "Count", "Avg ms", "Min ms", "Max ms", "Total ms"}
	if err := f.SetSheetRow(sheetMetrics, "A1", &header); err != nil {
		return fmt.Errorf("writing metrics header: %w", err)
	}

	summary := collector.Summary()
	ops := make([]string, 0, len(summary))
	for op := range summary {
		ops = append(ops, op)
	}
	sort.Strings(ops)

	for i, op := range ops {
		stats := summary[op]
		row := []any{op, stats.Count, stats.AvgMS, stats.MinMS, stats.MaxMS, stats.TotalMS}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetMetrics, cell, &row); err != nil {
			return fmt.Errorf("writing metrics row: %w", err)
		}
	}
	return nil
}
