// Package xlsxexport writes generation history workbooks.
package xlsxexport

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"billdoc/internal/csvexport"
	"billdoc/internal/domain"
)

// SheetName is the name of the single worksheet.
const SheetName = "부과내역"

// ContentType is the media type of the produced workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Write renders gens as a workbook with one header row and one row per generation.
// Amounts are written as numbers so they can be summed in a spreadsheet.
func Write(w io.Writer, gens []domain.Generation) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("xlsxexport: renaming sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("xlsxexport: stream writer: %w", err)
	}

	header := make([]interface{}, len(csvexport.Columns))
	for i, c := range csvexport.Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("xlsxexport: header: %w", err)
	}

	for i := range gens {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, generationRow(&gens[i])); err != nil {
			return fmt.Errorf("xlsxexport: row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("xlsxexport: flush: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsxexport: write: %w", err)
	}
	return nil
}

func generationRow(g *domain.Generation) []interface{} {
	var location string
	if g.OutputKey != "" {
		location = "s3://" + g.OutputBucket + "/" + g.OutputKey
	}
	return []interface{}{
		g.ID.String(),
		g.TemplateName,
		g.ServicePeriod,
		g.TotalAmount.InexactFloat64(),
		g.TotalUsage.InexactFloat64(),
		g.Lab1Usage.InexactFloat64(),
		g.Lab2Usage.InexactFloat64(),
		g.UnitPrice.InexactFloat64(),
		g.ChargedAmount.InexactFloat64(),
		g.AmountInWords,
		string(g.Status),
		strings.ReplaceAll(g.Warnings, "\n", "; "),
		g.ErrorMessage,
		location,
		g.CreatedAt.UTC().Format(time.RFC3339),
	}
}
