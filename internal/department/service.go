package department

import (
	"log/slog"
	"time"

	"github.com/yeonholee/hr-payroll/internal"
)

type Repository interface {
	CreateDepartment(dept *Department) error
	GetDepartmentByID(id int64) (*Department, error)
	ListDepartments() ([]*Department, error)
	UpdateDepartment(dept *Department) error
	DeleteDepartment(id int64) error
	CountEmployees(departmentID int64) (int64, error)
	HeadcountSummary() ([]*HeadcountSummary, error)

	CreatePosition(pos *Position) error
	GetPositionByID(id int64) (*Position, error)
	ListPositions() ([]*Position, error)
	UpdatePosition(pos *Position) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) CreateDepartment(dto CreateDepartmentDTO) (*Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	if dto.ParentID != nil {
		if _, err := s.repo.GetDepartmentByID(*dto.ParentID); err != nil {
			return nil, internal.NewValidationError("parent department does not exist", internal.ErrCodeDepartmentNotFound)
		}
	}

	now := time.Now()
	dept := &Department{
		Code:      dto.Code,
		Name:      dto.Name,
		ManagerID: dto.ManagerID,
		ParentID:  dto.ParentID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateDepartment(dept); err != nil {
		s.logger.Error("failed to create department", "error", err, "code", dto.Code)
		return nil, internal.NewInternalError("failed to create department", err)
	}

	s.logger.Info("department created", "department_id", dept.ID, "code", dept.Code)
	return dept, nil
}

func (s *Service) GetDepartment(id int64) (*Department, error) {
	dept, err := s.repo.GetDepartmentByID(id)
	if err != nil {
		return nil, internal.NewNotFoundError("department not found", internal.ErrCodeDepartmentNotFound)
	}
	return dept, nil
}

func (s *Service) ListDepartments() ([]*Department, error) {
	departments, err := s.repo.ListDepartments()
	if err != nil {
		s.logger.Error("failed to list departments", "error", err)
		return nil, internal.NewInternalError("failed to list departments", err)
	}
	return departments, nil
}

func (s *Service) UpdateDepartment(id int64, dto UpdateDepartmentDTO) (*Department, error) {
	dept, err := s.repo.GetDepartmentByID(id)
	if err != nil {
		return nil, internal.NewNotFoundError("department not found", internal.ErrCodeDepartmentNotFound)
	}

	if dto.Name != nil {
		dept.Name = *dto.Name
	}
	if dto.ManagerID != nil {
		dept.ManagerID = dto.ManagerID
	}
	if dto.ParentID != nil {
		dept.ParentID = dto.ParentID
	}
	if dto.IsActive != nil {
		dept.IsActive = *dto.IsActive
	}
	dept.UpdatedAt = time.Now()

	if err := s.repo.UpdateDepartment(dept); err != nil {
		return nil, internal.NewInternalError("failed to update department", err)
	}
	return dept, nil
}

// DeleteDepartment refuses to remove a department that still has employees.
func (s *Service) DeleteDepartment(id int64) error {
	if _, err := s.repo.GetDepartmentByID(id); err != nil {
		return internal.NewNotFoundError("department not found", internal.ErrCodeDepartmentNotFound)
	}

	count, err := s.repo.CountEmployees(id)
	if err != nil {
		return internal.NewInternalError("failed to count employees", err)
	}
	if count > 0 {
		return internal.NewConflictError("department still has assigned employees", internal.ErrCodeDepartmentNotEmpty)
	}

	if err := s.repo.DeleteDepartment(id); err != nil {
		return internal.NewInternalError("failed to delete department", err)
	}

	s.logger.Info("department deleted", "department_id", id)
	return nil
}

func (s *Service) HeadcountSummary() ([]*HeadcountSummary, error) {
	summary, err := s.repo.HeadcountSummary()
	if err != nil {
		s.logger.Error("failed to build headcount summary", "error", err)
		return nil, internal.NewInternalError("failed to build headcount summary", err)
	}
	return summary, nil
}

func (s *Service) CreatePosition(dto CreatePositionDTO) (*Position, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	now := time.Now()
	pos := &Position{
		Code:       dto.Code,
		Title:      dto.Title,
		GradeLevel: dto.GradeLevel,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.CreatePosition(pos); err != nil {
		s.logger.Error("failed to create position", "error", err, "code", dto.Code)
		return nil, internal.NewInternalError("failed to create position", err)
	}
	return pos, nil
}

func (s *Service) GetPosition(id int64) (*Position, error) {
	pos, err := s.repo.GetPositionByID(id)
	if err != nil {
		return nil, internal.NewNotFoundError("position not found", internal.ErrCodePositionNotFound)
	}
	return pos, nil
}

func (s *Service) UpdatePosition(id int64, dto UpdatePositionDTO) (*Position, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	pos, err := s.repo.GetPositionByID(id)
	if err != nil {
		return nil, internal.NewNotFoundError("position not found", internal.ErrCodePositionNotFound)
	}

	if dto.Title != nil {
		pos.Title = *dto.Title
	}
	if dto.GradeLevel != nil {
		pos.GradeLevel = *dto.GradeLevel
	}
	if dto.IsActive != nil {
		pos.IsActive = *dto.IsActive
	}
	pos.UpdatedAt = time.Now()

	if err := s.repo.UpdatePosition(pos); err != nil {
		return nil, internal.NewInternalError("failed to update position", err)
	}
	return pos, nil
}

func (s *Service) ListPositions() ([]*Position, error) {
	positions, err := s.repo.ListPositions()
	if err != nil {
		return nil, internal.NewInternalError("failed to list positions", err)
	}
	return positions, nil
}
