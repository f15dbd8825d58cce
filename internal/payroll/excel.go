package payroll

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Expected column order in the upload template. The first row must carry
// these headers in order.
var templateColumns = []string{
	"employee_number",
	"base_pay",
	"overtime_pay",
	"meal_allowance",
	"transport_allowance",
	"incentive_pay",
	"income_tax",
	"local_tax",
	"national_pension",
	"health_insurance",
	"employment_insurance",
}

// ParseWorkbook reads the first sheet of an .xlsx upload into preview rows.
// Parse errors are attached per row so one bad cell does not reject the
// whole file.
func ParseWorkbook(r io.Reader) ([]PreviewRow, error) {
	workbook, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("workbook has no data rows")
	}
	if err := validateHeader(rows[0]); err != nil {
		return nil, err
	}

	parsed := make([]PreviewRow, 0, len(rows)-1)
	for i, cells := range rows[1:] {
		if rowIsEmpty(cells) {
			continue
		}
		parsed = append(parsed, parseRow(i+2, cells))
	}
	if len(parsed) == 0 {
		return nil, fmt.Errorf("workbook has no data rows")
	}
	return parsed, nil
}

// validateHeader checks the first row against the upload template so that
// a headerless or reordered sheet cannot map amounts into the wrong fields.
func validateHeader(cells []string) error {
	if len(cells) < len(templateColumns) {
		return fmt.Errorf("header row has %d columns, template needs %d", len(cells), len(templateColumns))
	}
	for i, want := range templateColumns {
		got := strings.ToLower(strings.TrimSpace(cells[i]))
		if got != want {
			return fmt.Errorf("header column %d is %q, template expects %q", i+1, cells[i], want)
		}
	}
	return nil
}

func parseRow(rowNumber int, cells []string) PreviewRow {
	row := PreviewRow{RowNumber: rowNumber}

	row.EmployeeNumber = strings.TrimSpace(cell(cells, 0))
	if row.EmployeeNumber == "" {
		row.addError("employee_number is empty")
	}

	amounts := []struct {
		name string
		dest *int64
	}{
		{"base_pay", &row.BasePay},
		{"overtime_pay", &row.OvertimePay},
		{"meal_allowance", &row.MealAllowance},
		{"transport_allowance", &row.TransportAllowance},
		{"incentive_pay", &row.IncentivePay},
		{"income_tax", &row.IncomeTax},
		{"local_tax", &row.LocalTax},
		{"national_pension", &row.NationalPension},
		{"health_insurance", &row.HealthInsurance},
		{"employment_insurance", &row.EmploymentInsurance},
	}
	for i, a := range amounts {
		value, err := parseAmount(cell(cells, i+1))
		if err != nil {
			row.addError(fmt.Sprintf("%s: %v", a.name, err))
			continue
		}
		if value < 0 {
			row.addError(fmt.Sprintf("%s must not be negative", a.name))
			continue
		}
		*a.dest = value
	}

	return row
}

// parseAmount accepts plain integers and comma-grouped figures as exported
// by spreadsheet tools. Empty cells count as zero.
func parseAmount(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	s = strings.ReplaceAll(s, ",", "")
	// Excel often renders integers as floats ("1500000.0").
	if strings.Contains(s, ".") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("not a number")
		}
		if f != float64(int64(f)) {
			return 0, fmt.Errorf("must be a whole amount in won")
		}
		return int64(f), nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	return v, nil
}

func cell(cells []string, idx int) string {
	if idx >= len(cells) {
		return ""
	}
	return cells[idx]
}

func rowIsEmpty(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
