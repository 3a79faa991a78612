package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/timeledger/timeledger/internal/calendar"
	"github.com/timeledger/timeledger/internal/model"
)

var summaryCSVHeader = []string{
	"project_id", "project_name", "hours_week", "hours_range", "entries_week", "last_entry_at",
}

// ExportProjectSummaryCSV computes the project summary and writes it to w as
// CSV. Nothing is written when the report fails.
func (s *ReportsService) ExportProjectSummaryCSV(ctx context.Context, w io.Writer, tz string, start, end *calendar.Date) error {
	rows, err := s.ProjectSummary(ctx, tz, start, end)
	if err != nil {
		return err
	}
	return WriteProjectSummaryCSV(w, rows)
}

// WriteProjectSummaryCSV writes summary rows with a header line.
func WriteProjectSummaryCSV(w io.Writer, rows []model.ProjectSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(summaryCSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		lastEntry := ""
		if r.LastEntryAt != nil {
			lastEntry = r.LastEntryAt.Format(calendar.LocalDateTimeLayout)
		}
		record := []string{
			strconv.FormatInt(r.ProjectID, 10),
			r.ProjectName,
			strconv.FormatFloat(r.HoursWeek, 'f', 1, 64),
			strconv.FormatFloat(r.HoursRange, 'f', 1, 64),
			strconv.FormatInt(r.EntriesWeek, 10),
			lastEntry,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
