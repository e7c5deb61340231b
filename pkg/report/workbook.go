package report

import (
	"github.com/xuri/excelize/v2"

	"github.com/agentstation/etlrecon/pkg/compare"
	"github.com/agentstation/etlrecon/pkg/errors"
)

const (
	summarySheet = "Resumo"
	missingSheet = "Sem S3"
	defaultSheet = "Sheet1"
)

// writeWorkbook renders the summary and missing lists as two sheets.
func writeWorkbook(path string, s *compare.ProjectSummary) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(defaultSheet, summarySheet); err != nil {
		return errors.WrapResource("render", "workbook", path, err)
	}
	if err := fillSheet(f, summarySheet, SummaryHeader, summaryRows(s)); err != nil {
		return errors.WrapResource("render", "workbook", path, err)
	}

	if _, err := f.NewSheet(missingSheet); err != nil {
		return errors.WrapResource("render", "workbook", path, err)
	}
	if err := fillSheet(f, missingSheet, MissingHeader, missingRows(s)); err != nil {
		return errors.WrapResource("render", "workbook", path, err)
	}

	if err := f.SaveAs(path); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

func fillSheet(f *excelize.File, sheet string, header []string, rows [][]string) error {
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i, row := range rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return f.AutoFilter(sheet, autoFilterRange(len(header), len(rows)+1), nil)
}

func setRow(f *excelize.File, sheet string, n int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	return f.SetSheetRow(sheet, cell, &row)
}

func autoFilterRange(cols, rows int) string {
	end, err := excelize.CoordinatesToCellName(cols, rows)
	if err != nil {
		return "A1:A1"
	}
	return "A1:" + end
}
