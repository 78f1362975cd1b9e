package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// WriteExcel renders summaries as one spreadsheet row per day and writes the
// workbook to w.
func WriteExcel(w io.Writer, summaries []Summary) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{
		"date",
		"total_sales",
		"items_sold",
		"tax_collected",
		"total_expenses",
		"cash_in",
		"cash_out",
		"estimated_cogs",
		"gross_profit",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := 2
	for _, s := range summaries {
		excelRow := []interface{}{
			s.Date.Format("2006-01-02"),
			s.TotalSales,
			s.TotalItemsSold,
			s.TaxCollected,
			s.TotalExpenses,
			s.TotalCashIn,
			s.TotalCashOut,
			s.EstimatedCOGS,
			s.GrossProfit,
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return fmt.Errorf("cell name for row %d: %w", row, err)
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
		row++
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
