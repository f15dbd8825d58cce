package payroll

import (
	"errors"
	"time"
)

const (
	PreviewStatusPending   = "pending"
	PreviewStatusConfirmed = "confirmed"

	PayslipContentType = "application/pdf"
)

// Record is one employee's payroll for a given month. Amounts are whole
// Korean won.
type Record struct {
	ID                  int64     `json:"id" gorm:"primaryKey"`
	EmployeeID          int64     `json:"employee_id" gorm:"column:employee_id;not null;uniqueIndex:idx_payroll_emp_period"`
	Year                int       `json:"year" gorm:"not null;uniqueIndex:idx_payroll_emp_period"`
	Month               int       `json:"month" gorm:"not null;uniqueIndex:idx_payroll_emp_period"`
	BasePay             int64     `json:"base_pay" gorm:"column:base_pay"`
	OvertimePay         int64     `json:"overtime_pay" gorm:"column:overtime_pay"`
	MealAllowance       int64     `json:"meal_allowance" gorm:"column:meal_allowance"`
	TransportAllowance  int64     `json:"transport_allowance" gorm:"column:transport_allowance"`
	IncentivePay        int64     `json:"incentive_pay" gorm:"column:incentive_pay"`
	IncomeTax           int64     `json:"income_tax" gorm:"column:income_tax"`
	LocalTax            int64     `json:"local_tax" gorm:"column:local_tax"`
	NationalPension     int64     `json:"national_pension" gorm:"column:national_pension"`
	HealthInsurance     int64     `json:"health_insurance" gorm:"column:health_insurance"`
	EmploymentInsurance int64     `json:"employment_insurance" gorm:"column:employment_insurance"`
	GrossPay            int64     `json:"gross_pay" gorm:"column:gross_pay"`
	TotalDeductions     int64     `json:"total_deductions" gorm:"column:total_deductions"`
	NetPay              int64     `json:"net_pay" gorm:"column:net_pay"`
	CreatedAt           time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt           time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Record) TableName() string {
	return "payroll_records"
}

// Recalculate derives gross, total deductions and net from the components.
func (r *Record) Recalculate() {
	r.GrossPay = r.BasePay + r.OvertimePay + r.MealAllowance + r.TransportAllowance + r.IncentivePay
	r.TotalDeductions = r.IncomeTax + r.LocalTax + r.NationalPension + r.HealthInsurance + r.EmploymentInsurance
	r.NetPay = r.GrossPay - r.TotalDeductions
}

// Preview is a parsed upload waiting for confirmation. Rows and the confirm
// result are stored as JSON so a replayed idempotency key can be answered
// from the database alone.
type Preview struct {
	ID             int64      `json:"id" gorm:"primaryKey"`
	Token          string     `json:"token" gorm:"uniqueIndex;not null"`
	Year           int        `json:"year" gorm:"not null"`
	Month          int        `json:"month" gorm:"not null"`
	RowsJSON       string     `json:"-" gorm:"column:rows_json;type:text"`
	RowCount       int        `json:"row_count" gorm:"column:row_count"`
	ErrorCount     int        `json:"error_count" gorm:"column:error_count"`
	Status         string     `json:"status" gorm:"default:pending"`
	IdempotencyKey *string    `json:"idempotency_key,omitempty" gorm:"column:idempotency_key;uniqueIndex"`
	ResultJSON     string     `json:"-" gorm:"column:result_json;type:text"`
	CreatedBy      int64      `json:"created_by" gorm:"column:created_by"`
	ExpiresAt      time.Time  `json:"expires_at" gorm:"column:expires_at"`
	ConfirmedAt    *time.Time `json:"confirmed_at,omitempty" gorm:"column:confirmed_at"`
	CreatedAt      time.Time  `json:"created_at" gorm:"column:created_at"`
}

func (Preview) TableName() string {
	return "payroll_previews"
}

func (p *Preview) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// Payslip is the stored-file metadata for one payroll record.
type Payslip struct {
	ID              int64     `json:"id" gorm:"primaryKey"`
	PayrollRecordID int64     `json:"payroll_record_id" gorm:"column:payroll_record_id;uniqueIndex;not null"`
	FileName        string    `json:"file_name" gorm:"column:file_name"`
	FilePath        string    `json:"-" gorm:"column:file_path"`
	SizeBytes       int64     `json:"size_bytes" gorm:"column:size_bytes"`
	ContentType     string    `json:"content_type" gorm:"column:content_type"`
	UploadedBy      int64     `json:"uploaded_by" gorm:"column:uploaded_by"`
	CreatedAt       time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Payslip) TableName() string {
	return "payslips"
}

// MonthlySummary aggregates one month's payroll per department.
type MonthlySummary struct {
	DepartmentID    int64  `json:"department_id"`
	DepartmentName  string `json:"department_name"`
	EmployeeCount   int64  `json:"employee_count"`
	TotalGross      int64  `json:"total_gross"`
	TotalDeductions int64  `json:"total_deductions"`
	TotalNet        int64  `json:"total_net"`
}

var (
	ErrRecordNotFound  = errors.New("payroll record not found")
	ErrPreviewNotFound = errors.New("payroll preview not found")
	ErrPayslipNotFound = errors.New("payslip not found")
)
