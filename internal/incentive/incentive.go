package incentive

import (
	"errors"
	"time"
)

// Variable names the formula engine declares. All are CEL doubles, so
// formulas mix amounts and rates without explicit conversions.
const (
	VarSalesAmount     = "sales_amount"
	VarTargetAmount    = "target_amount"
	VarBaseRate        = "base_rate"
	VarBonusRate       = "bonus_rate"
	VarBaseSalary      = "base_salary"
	VarAchievementRate = "achievement_rate"
	VarYearsOfService  = "years_of_service"
)

// Default commission rates bound when a batch request does not override
// them.
const (
	DefaultBaseRate  = 0.02
	DefaultBonusRate = 0.05
)

// Variables lists every identifier a formula may reference, in declaration
// order.
func Variables() []string {
	return []string{
		VarSalesAmount,
		VarTargetAmount,
		VarBaseRate,
		VarBonusRate,
		VarBaseSalary,
		VarAchievementRate,
		VarYearsOfService,
	}
}

// Formula is a stored incentive expression, e.g.
//
//	sales_amount > target_amount
//	  ? (sales_amount - target_amount) * bonus_rate + target_amount * base_rate
//	  : sales_amount * base_rate
type Formula struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null"`
	Expression  string    `json:"expression" gorm:"type:text;not null"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedBy   int64     `json:"created_by" gorm:"column:created_by"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Formula) TableName() string {
	return "incentive_formulas"
}

// SalesRecord is one employee's sales result for a month, the input row
// for batch simulations.
type SalesRecord struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	EmployeeID   int64     `json:"employee_id" gorm:"column:employee_id;not null;uniqueIndex:idx_sales_emp_period"`
	Year         int       `json:"year" gorm:"not null;uniqueIndex:idx_sales_emp_period"`
	Month        int       `json:"month" gorm:"not null;uniqueIndex:idx_sales_emp_period"`
	SalesAmount  int64     `json:"sales_amount" gorm:"column:sales_amount"`
	TargetAmount int64     `json:"target_amount" gorm:"column:target_amount"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (SalesRecord) TableName() string {
	return "sales_records"
}

// SalesRow joins a sales record with the employee fields the engine binds.
type SalesRow struct {
	SalesRecordID int64     `json:"sales_record_id"`
	EmployeeID    int64     `json:"employee_id"`
	EmployeeName  string    `json:"employee_name"`
	SalesAmount   int64     `json:"sales_amount"`
	TargetAmount  int64     `json:"target_amount"`
	BaseSalary    int64     `json:"base_salary"`
	HireDate      time.Time `json:"hire_date"`
}

var (
	ErrFormulaNotFound = errors.New("incentive formula not found")
	ErrSalesNotFound   = errors.New("sales record not found")
)
