// Package export renders end-of-day summaries as Excel workbooks.
package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"turnboard/internal/service"
)

// ExcelWriter abstracts workbook construction so tests can swap in a fake.
type ExcelWriter interface {
	AddSheet(name string) error
	WriteHeader(columns []string) error
	WriteRow(row []interface{}) error
	Save(w io.Writer) error
	Close() error
}

// ExcelizeWriter implements ExcelWriter using the excelize library.
type ExcelizeWriter struct {
	file         *excelize.File
	currentSheet string
	currentRow   int
}

func NewExcelizeWriter() ExcelWriter {
	return &ExcelizeWriter{file: excelize.NewFile()}
}

// AddSheet adds a new sheet with the given name.
func (w *ExcelizeWriter) AddSheet(name string) error {
	// Excel caps sheet names at 31 chars
	if len(name) > 31 {
		name = name[:31]
	}

	if w.currentSheet == "" {
		w.file.SetSheetName("Sheet1", name)
	} else {
		_, err := w.file.NewSheet(name)
		if err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	w.currentSheet = name
	w.currentRow = 1
	return nil
}

// WriteHeader writes bold column headers to the current sheet.
func (w *ExcelizeWriter) WriteHeader(columns []string) error {
	if w.currentSheet == "" {
		return fmt.Errorf("no active sheet")
	}

	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, w.currentRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.currentSheet, cell, col); err != nil {
			return err
		}
	}

	style, err := w.file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, w.currentRow)
		endCell, _ := excelize.CoordinatesToCellName(len(columns), w.currentRow)
		_ = w.file.SetCellStyle(w.currentSheet, startCell, endCell, style)
	}

	w.currentRow++
	return nil
}

// WriteRow writes a data row to the current sheet.
func (w *ExcelizeWriter) WriteRow(row []interface{}) error {
	if w.currentSheet == "" {
		return fmt.Errorf("no active sheet")
	}

	for i, val := range row {
		cell, err := excelize.CoordinatesToCellName(i+1, w.currentRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.currentSheet, cell, val); err != nil {
			return err
		}
	}

	w.currentRow++
	return nil
}

// Save writes the workbook to w.
func (w *ExcelizeWriter) Save(wr io.Writer) error {
	return w.file.Write(wr)
}

// Close releases resources.
func (w *ExcelizeWriter) Close() error {
	return w.file.Close()
}

// SummaryExporter builds xlsx reports from day summaries.
type SummaryExporter struct {
	newWriter func() ExcelWriter
}

func NewSummaryExporter() *SummaryExporter {
	return &SummaryExporter{newWriter: NewExcelizeWriter}
}

var summaryColumns = []string{
	"Row", "Alias", "Name", "Regular Turns", "Bonus Turns",
	"Total Value", "Value After Penalty", "Penalties", "Absent",
}

// WriteSummary renders one summary as a single-sheet workbook.
func (e *SummaryExporter) WriteSummary(summary *service.Summary) ([]byte, error) {
	w := e.newWriter()
	defer func() { _ = w.Close() }()

	if err := e.writeSummarySheet(w, summary); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := w.Save(&buf); err != nil {
		return nil, fmt.Errorf("save workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *SummaryExporter) writeSummarySheet(w ExcelWriter, summary *service.Summary) error {
	if err := w.AddSheet(summary.Date); err != nil {
		return err
	}
	if err := w.WriteHeader(summaryColumns); err != nil {
		return err
	}

	totalValue := 0
	totalAdjusted := 0
	for _, ts := range summary.TechStats {
		var rowNumber interface{}
		if ts.RowNumber != nil {
			rowNumber = *ts.RowNumber
		} else {
			rowNumber = ""
		}
		err := w.WriteRow([]interface{}{
			rowNumber, ts.TechAlias, ts.TechName,
			ts.RegularTurns, ts.BonusTurns,
			ts.TotalValueWithoutPenalty, ts.TotalValueWithPenalty,
			ts.PenaltyCount, ts.IsAbsent,
		})
		if err != nil {
			return err
		}
		totalValue += ts.TotalValueWithoutPenalty
		totalAdjusted += ts.TotalValueWithPenalty
	}

	return w.WriteRow([]interface{}{
		"", "", "Total", "", "", totalValue, totalAdjusted, "", "",
	})
}
