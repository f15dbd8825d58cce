package employee

import (
	"log/slog"
	"time"

	"github.com/yeonholee/hr-payroll/internal"
)

// Repository defines the data access methods for employees
type Repository interface {
	Create(emp *Employee) error
	GetByID(id int64) (*Employee, error)
	GetByEmployeeNumber(number string) (*Employee, error)
	List(filter ListFilter) ([]*Employee, int64, error)
	Update(emp *Employee) error
	Delete(id int64) error
	HasPayrollRecords(id int64) (bool, error)
}

type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

type Service struct {
	repo   Repository
	hasher PasswordHasher
	logger *slog.Logger
}

func NewService(repo Repository, hasher PasswordHasher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		logger: logger,
	}
}

func (s *Service) CreateEmployee(dto CreateEmployeeDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("employee validation failed", "error", err)
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	if existing, err := s.repo.GetByEmployeeNumber(dto.EmployeeNumber); err == nil && existing != nil {
		return nil, internal.NewConflictError("employee number already exists", internal.ErrCodeDuplicateEmployee)
	}

	hash, err := s.hasher.HashPassword(dto.Password)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	now := time.Now()
	emp := &Employee{
		EmployeeNumber:   dto.EmployeeNumber,
		Email:            dto.Email,
		Name:             dto.Name,
		Phone:            dto.Phone,
		PasswordHash:     hash,
		DepartmentID:     dto.DepartmentID,
		PositionID:       dto.PositionID,
		HireDate:         dto.HireDate,
		BaseSalary:       dto.BaseSalary,
		EmploymentStatus: StatusActive,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(emp); err != nil {
		s.logger.Error("failed to create employee", "error", err, "employee_number", dto.EmployeeNumber)
		return nil, internal.NewInternalError("failed to create employee", err)
	}

	s.logger.Info("employee created",
		"employee_id", emp.ID,
		"employee_number", emp.EmployeeNumber,
		"department_id", emp.DepartmentID)

	return emp, nil
}

func (s *Service) GetEmployee(id int64) (*Employee, error) {
	emp, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewNotFoundError("employee not found", internal.ErrCodeEmployeeNotFound)
	}
	return emp, nil
}

// GetEmployeeByNumber resolves the human-facing employee number, as used
// by payroll uploads.
func (s *Service) GetEmployeeByNumber(number string) (*Employee, error) {
	emp, err := s.repo.GetByEmployeeNumber(number)
	if err != nil {
		return nil, internal.NewNotFoundError("employee not found", internal.ErrCodeEmployeeNotFound)
	}
	return emp, nil
}

func (s *Service) ListEmployees(filter ListFilter) ([]*Employee, int64, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	employees, total, err := s.repo.List(filter)
	if err != nil {
		s.logger.Error("failed to list employees", "error", err)
		return nil, 0, internal.NewInternalError("failed to list employees", err)
	}
	return employees, total, nil
}

func (s *Service) UpdateEmployee(id int64, dto UpdateEmployeeDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	emp, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewNotFoundError("employee not found", internal.ErrCodeEmployeeNotFound)
	}

	if dto.Email != nil {
		emp.Email = *dto.Email
	}
	if dto.Name != nil {
		emp.Name = *dto.Name
	}
	if dto.Phone != nil {
		emp.Phone = *dto.Phone
	}
	if dto.DepartmentID != nil {
		emp.DepartmentID = dto.DepartmentID
	}
	if dto.PositionID != nil {
		emp.PositionID = dto.PositionID
	}
	if dto.BaseSalary != nil {
		emp.BaseSalary = *dto.BaseSalary
	}
	if dto.EmploymentStatus != nil {
		emp.EmploymentStatus = *dto.EmploymentStatus
		if *dto.EmploymentStatus == StatusResigned {
			emp.Resign(time.Now())
		}
	}
	emp.UpdatedAt = time.Now()

	if err := s.repo.Update(emp); err != nil {
		s.logger.Error("failed to update employee", "error", err, "employee_id", id)
		return nil, internal.NewInternalError("failed to update employee", err)
	}

	return emp, nil
}

// DeactivateEmployee removes an employee. Records with payroll history are
// retired in place, never hard-deleted.
func (s *Service) DeactivateEmployee(id int64) error {
	emp, err := s.repo.GetByID(id)
	if err != nil {
		return internal.NewNotFoundError("employee not found", internal.ErrCodeEmployeeNotFound)
	}

	hasPayroll, err := s.repo.HasPayrollRecords(id)
	if err != nil {
		return internal.NewInternalError("failed to check payroll records", err)
	}

	if !hasPayroll {
		if err := s.repo.Delete(id); err != nil {
			return internal.NewInternalError("failed to delete employee", err)
		}
		s.logger.Info("employee deleted", "employee_id", id)
		return nil
	}

	emp.Resign(time.Now())
	if err := s.repo.Update(emp); err != nil {
		return internal.NewInternalError("failed to deactivate employee", err)
	}

	s.logger.Info("employee deactivated", "employee_id", id)
	return nil
}
