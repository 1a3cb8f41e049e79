package services

import (
	"bytes"
	"context"
	"fmt"

	"checklist_app_go/models"
	"checklist_app_go/services/i18n"

	"github.com/xuri/excelize/v2"
)

// exportColumn is one item column of the submissions sheet
type exportColumn struct {
	Group string
	Label string
}

// exportColumns lists the checklist's items in schema order, followed by any
// group/label pairs that only exist in older submissions
func exportColumns(checklist *models.Checklist, submissions []models.Submission) []exportColumn {
	var cols []exportColumn
	seen := make(map[exportColumn]bool)
	add := func(c exportColumn) {
		if !seen[c] {
			seen[c] = true
			cols = append(cols, c)
		}
	}

	for _, g := range checklist.Groups {
		for _, it := range g.Items {
			add(exportColumn{Group: g.Title, Label: it.Label})
		}
	}
	for _, s := range submissions {
		for _, g := range s.Data {
			for _, it := range g.Items {
				add(exportColumn{Group: g.Title, Label: it.Label})
			}
		}
	}
	return cols
}

// ExportSubmissions writes the checklist's submissions as an Excel workbook
func ExportSubmissions(ctx context.Context, checklist *models.Checklist, submissions []models.Submission) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := i18n.T(ctx, "export.sheet")
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	cols := exportColumns(checklist, submissions)
	headers := []string{
		i18n.T(ctx, "form.name"),
		i18n.T(ctx, "form.mitarbeiter_id"),
		i18n.T(ctx, "form.email"),
		i18n.T(ctx, "export.submitted_at"),
		i18n.T(ctx, "export.notify_error"),
	}
	fixed := len(headers)
	for _, c := range cols {
		headers = append(headers, c.Group+" / "+c.Label)
	}

	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(sheet, "A1", lastHeader, headerStyle)
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	f.SetColWidth(sheet, "A", lastCol, 22)

	for r, s := range submissions {
		row := r + 2
		values := []interface{}{
			s.Name,
			s.EmployeeID,
			s.Email,
			s.SubmittedAt.Format("02.01.2006 15:04"),
			s.NotifyError,
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(sheet, cell, v)
		}

		for i, c := range cols {
			group, ok := s.Data.Group(c.Group)
			if !ok {
				continue
			}
			value, ok := group.Item(c.Label)
			if !ok {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(fixed+i+1, row)
			f.SetCellValue(sheet, cell, value.String())
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

// StoreSubmissionsExport builds the workbook and saves it to storage
func StoreSubmissionsExport(ctx context.Context, storage StorageProvider, checklist *models.Checklist, submissions []models.Submission) (*StorageResult, error) {
	buf, err := ExportSubmissions(ctx, checklist, submissions)
	if err != nil {
		return nil, err
	}
	return PutBytes(ctx, storage, GenerateExportKey(checklist.ID), buf.Bytes())
}
