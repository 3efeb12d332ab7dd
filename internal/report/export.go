package report

import (
	"fmt"

	"github.com/frahmantamala/petirpay/internal/billing"
	"github.com/xuri/excelize/v2"
)

var exportHeader = []interface{}{
	"Bill ID", "Customer", "Meter Number", "Power Class", "Usage (kWh)",
	"Rate per kWh", "Admin Fee", "Total", "Status", "Paid Date",
}

// workbook prices every row with fee, matching the bill list.
func (s *Service) workbook(month, year int, fee int64, rows []ExportRow) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := fmt.Sprintf("Bills %04d-%02d", year, month)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", "J1", bold); err != nil {
		return nil, err
	}

	var grand int64
	for i, row := range rows {
		rate := s.rateOf(row.Rate)
		total := billing.ComputeTotal(row.UsageKWh, rate, fee)
		grand += total

		paid := ""
		if row.PaidDate.Valid {
			paid = row.PaidDate.Time.In(s.loc).Format("2006-01-02")
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		line := []interface{}{
			row.BillID, row.CustomerName, row.MeterNumber, row.PowerClass.String, row.UsageKWh,
			rate.InexactFloat64(), fee, total, row.Status, paid,
		}
		if err := f.SetSheetRow(sheet, cell, &line); err != nil {
			return nil, err
		}
	}

	footer, err := excelize.CoordinatesToCellName(7, len(rows)+2)
	if err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, footer, &[]interface{}{"Grand Total", grand}); err != nil {
		return nil, err
	}

	if err := f.SetColWidth(sheet, "A", "J", 16); err != nil {
		return nil, err
	}
	return f, nil
}
