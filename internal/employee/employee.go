package employee

import (
	"time"
)

// Employment status values
const (
	StatusActive   = "active"
	StatusOnLeave  = "on_leave"
	StatusResigned = "resigned"
)

// Employee is an HR person record. It doubles as the login principal; the
// password hash never leaves the package boundary in JSON form.
type Employee struct {
	ID               int64      `json:"id" gorm:"primaryKey"`
	EmployeeNumber   string     `json:"employee_number" gorm:"column:employee_number;uniqueIndex;not null"`
	Email            string     `json:"email" gorm:"uniqueIndex;not null"`
	Name             string     `json:"name" gorm:"not null"`
	Phone            string     `json:"phone"`
	PasswordHash     string     `json:"-" gorm:"column:password_hash"`
	DepartmentID     *int64     `json:"department_id,omitempty" gorm:"column:department_id"`
	PositionID       *int64     `json:"position_id,omitempty" gorm:"column:position_id"`
	HireDate         time.Time  `json:"hire_date" gorm:"column:hire_date;type:date"`
	BaseSalary       int64      `json:"base_salary" gorm:"column:base_salary"`
	EmploymentStatus string     `json:"employment_status" gorm:"column:employment_status;default:active"`
	IsActive         bool       `json:"is_active" gorm:"column:is_active;default:true"`
	ResignedAt       *time.Time `json:"resigned_at,omitempty" gorm:"column:resigned_at"`
	CreatedAt        time.Time  `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt        time.Time  `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Employee) TableName() string {
	return "employees"
}

// YearsOfService counts full years since hire as of the given date.
func (e *Employee) YearsOfService(asOf time.Time) int {
	years := asOf.Year() - e.HireDate.Year()
	anniversary := e.HireDate.AddDate(years, 0, 0)
	if anniversary.After(asOf) {
		years--
	}
	if years < 0 {
		years = 0
	}
	return years
}

func (e *Employee) Resign(at time.Time) {
	e.EmploymentStatus = StatusResigned
	e.IsActive = false
	e.ResignedAt = &at
	e.UpdatedAt = time.Now()
}
