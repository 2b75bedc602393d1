package httpadapter

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/job-search-assistant/internal/core/domain"
)

const exportSheet = "Jobs"

var exportHeader = []any{"Title", "Company", "Salary", "Location", "Tech Stack", "Visa Sponsorship", "Link", "Description"}

// buildWorkbook renders records as a single-sheet workbook in ranking order.
// The caller closes the returned file.
func buildWorkbook(records []domain.JobRecord) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("cell name: %w", err)
		}
		row := []any{
			rec.Title,
			rec.Company,
			rec.Salary,
			rec.Location,
			strings.Join(rec.TechStack, ", "),
			rec.VisaSponsorship,
			rec.Link,
			rec.Description,
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(exportSheet, "A", "B", 32); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("set column width: %w", err)
	}
	return f, nil
}
