// Package xlsx writes tabular results as Excel workbooks with
// severity-coloured rows.
package xlsx

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ContentType is the MIME type of .xlsx files.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// labelColors maps severity labels to fill colours. Labels not listed
// get no fill.
var labelColors = map[string]string{
	"high":   "#f8d7da",
	"out":    "#f8d7da",
	"medium": "#fff3cd",
	"low":    "#fff3cd",
	"over":   "#cfe2ff",
}

// Sheet is one worksheet.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]any
	Labels  []string // severity label per row; may be shorter than Rows
}

// Write encodes sheets as a workbook to w.
func Write(w io.Writer, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return errors.New("xlsx: no sheets")
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#e9ecef"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("xlsx: header style: %w", err)
	}
	labelStyles, err := newLabelStyles(f)
	if err != nil {
		return err
	}

	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.Name); err != nil {
				return fmt.Errorf("xlsx: rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sh.Name); err != nil {
			return fmt.Errorf("xlsx: create sheet %q: %w", sh.Name, err)
		}
		if err := writeSheet(f, sh, headerStyle, labelStyles); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func newLabelStyles(f *excelize.File) (map[string]int, error) {
	styles := make(map[string]int, len(labelColors))
	for label, color := range labelColors {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Border: []excelize.Border{
				{Type: "left", Color: "#000000", Style: 1},
				{Type: "top", Color: "#000000", Style: 1},
				{Type: "right", Color: "#000000", Style: 1},
				{Type: "bottom", Color: "#000000", Style: 1},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("xlsx: style %q: %w", label, err)
		}
		styles[label] = id
	}
	return styles, nil
}

func writeSheet(f *excelize.File, sh Sheet, headerStyle int, labelStyles map[string]int) error {
	for c, h := range sh.Headers {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		if err := f.SetCellValue(sh.Name, cell, h); err != nil {
			return fmt.Errorf("xlsx: set %s!%s: %w", sh.Name, cell, err)
		}
	}
	if n := len(sh.Headers); n > 0 {
		last, _ := excelize.CoordinatesToCellName(n, 1)
		if err := f.SetCellStyle(sh.Name, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("xlsx: header style: %w", err)
		}
		lastCol, _ := excelize.ColumnNumberToName(n)
		if err := f.SetColWidth(sh.Name, "A", lastCol, 18); err != nil {
			return fmt.Errorf("xlsx: column width: %w", err)
		}
	}

	for r, row := range sh.Rows {
		rowNum := r + 2
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, rowNum)
			if err := f.SetCellValue(sh.Name, cell, v); err != nil {
				return fmt.Errorf("xlsx: set %s!%s: %w", sh.Name, cell, err)
			}
		}
		if r >= len(sh.Labels) || len(row) == 0 {
			continue
		}
		if style, ok := labelStyles[sh.Labels[r]]; ok {
			first, _ := excelize.CoordinatesToCellName(1, rowNum)
			last, _ := excelize.CoordinatesToCellName(len(row), rowNum)
			if err := f.SetCellStyle(sh.Name, first, last, style); err != nil {
				return fmt.Errorf("xlsx: row style: %w", err)
			}
		}
	}
	return nil
}

// Serve renders sheets and sends them as a download named filename.
// The workbook is built in memory first so a failure still yields a
// clean 500.
func Serve(w http.ResponseWriter, filename string, logger *zap.Logger, sheets ...Sheet) {
	var buf bytes.Buffer
	if err := Write(&buf, sheets...); err != nil {
		logger.Error("failed to build workbook", zap.String("file", filename), zap.Error(err))
		http.Error(w, "Failed to generate Excel file", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Warn("failed to write workbook", zap.String("file", filename), zap.Error(err))
	}
}
