package employee

import (
	"errors"
	"strings"
	"time"
)

type CreateEmployeeDTO struct {
	EmployeeNumber string    `json:"employee_number"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	Password       string    `json:"password"`
	DepartmentID   *int64    `json:"department_id,omitempty"`
	PositionID     *int64    `json:"position_id,omitempty"`
	HireDate       time.Time `json:"hire_date"`
	BaseSalary     int64     `json:"base_salary"`
}

func (dto CreateEmployeeDTO) Validate() error {
	if strings.TrimSpace(dto.EmployeeNumber) == "" {
		return errors.New("employee_number is required")
	}
	if strings.TrimSpace(dto.Email) == "" || !strings.Contains(dto.Email, "@") {
		return errors.New("a valid email is required")
	}
	if strings.TrimSpace(dto.Name) == "" {
		return errors.New("name is required")
	}
	if len(dto.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if dto.HireDate.IsZero() {
		return errors.New("hire_date is required")
	}
	if dto.BaseSalary < 0 {
		return errors.New("base_salary cannot be negative")
	}
	return nil
}

type UpdateEmployeeDTO struct {
	Email            *string `json:"email,omitempty"`
	Name             *string `json:"name,omitempty"`
	Phone            *string `json:"phone,omitempty"`
	DepartmentID     *int64  `json:"department_id,omitempty"`
	PositionID       *int64  `json:"position_id,omitempty"`
	BaseSalary       *int64  `json:"base_salary,omitempty"`
	EmploymentStatus *string `json:"employment_status,omitempty"`
}

func (dto UpdateEmployeeDTO) Validate() error {
	if dto.Email != nil && !strings.Contains(*dto.Email, "@") {
		return errors.New("email is invalid")
	}
	if dto.Name != nil && strings.TrimSpace(*dto.Name) == "" {
		return errors.New("name cannot be empty")
	}
	if dto.BaseSalary != nil && *dto.BaseSalary < 0 {
		return errors.New("base_salary cannot be negative")
	}
	if dto.EmploymentStatus != nil {
		switch *dto.EmploymentStatus {
		case StatusActive, StatusOnLeave, StatusResigned:
		default:
			return errors.New("employment_status must be one of active, on_leave, resigned")
		}
	}
	return nil
}

// ListFilter narrows employee listings.
type ListFilter struct {
	DepartmentID *int64
	Status       string
	Search       string
	Limit        int
	Offset       int
}
