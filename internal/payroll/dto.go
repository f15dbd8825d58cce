package payroll

import (
	"time"
)

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

// PreviewRow is one parsed spreadsheet row with any validation errors
// attached. Rows with errors are returned to the caller but never committed.
type PreviewRow struct {
	RowNumber           int      `json:"row_number"`
	EmployeeNumber      string   `json:"employee_number"`
	EmployeeID          int64    `json:"employee_id,omitempty"`
	EmployeeName        string   `json:"employee_name,omitempty"`
	BasePay             int64    `json:"base_pay"`
	OvertimePay         int64    `json:"overtime_pay"`
	MealAllowance       int64    `json:"meal_allowance"`
	TransportAllowance  int64    `json:"transport_allowance"`
	IncentivePay        int64    `json:"incentive_pay"`
	IncomeTax           int64    `json:"income_tax"`
	LocalTax            int64    `json:"local_tax"`
	NationalPension     int64    `json:"national_pension"`
	HealthInsurance     int64    `json:"health_insurance"`
	EmploymentInsurance int64    `json:"employment_insurance"`
	Errors              []string `json:"errors,omitempty"`
}

func (r *PreviewRow) Valid() bool {
	return len(r.Errors) == 0
}

func (r *PreviewRow) addError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// ToRecord builds a payroll record from a validated row.
func (r *PreviewRow) ToRecord(year, month int) *Record {
	rec := &Record{
		EmployeeID:          r.EmployeeID,
		Year:                year,
		Month:               month,
		BasePay:             r.BasePay,
		OvertimePay:         r.OvertimePay,
		MealAllowance:       r.MealAllowance,
		TransportAllowance:  r.TransportAllowance,
		IncentivePay:        r.IncentivePay,
		IncomeTax:           r.IncomeTax,
		LocalTax:            r.LocalTax,
		NationalPension:     r.NationalPension,
		HealthInsurance:     r.HealthInsurance,
		EmploymentInsurance: r.EmploymentInsurance,
	}
	rec.Recalculate()
	return rec
}

type PreviewResult struct {
	PreviewToken string       `json:"preview_token"`
	Year         int          `json:"year"`
	Month        int          `json:"month"`
	Rows         []PreviewRow `json:"rows"`
	ValidCount   int          `json:"valid_count"`
	ErrorCount   int          `json:"error_count"`
	ExpiresAt    time.Time    `json:"expires_at"`
}

type ConfirmDTO struct {
	PreviewToken   string `json:"preview_token"`
	IdempotencyKey string `json:"idempotency_key"`
}

func (d ConfirmDTO) Validate() error {
	if d.PreviewToken == "" {
		return ValidationError("preview_token is required")
	}
	return nil
}

type ConfirmResult struct {
	Year           int     `json:"year"`
	Month          int     `json:"month"`
	ConfirmedCount int     `json:"confirmed_count"`
	RecordIDs      []int64 `json:"record_ids"`
}
