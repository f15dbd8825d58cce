package department

import (
	"errors"
	"strings"
)

type CreateDepartmentDTO struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	ManagerID *int64 `json:"manager_id,omitempty"`
	ParentID  *int64 `json:"parent_id,omitempty"`
}

func (dto CreateDepartmentDTO) Validate() error {
	if strings.TrimSpace(dto.Code) == "" {
		return errors.New("code is required")
	}
	if strings.TrimSpace(dto.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}

type UpdateDepartmentDTO struct {
	Name      *string `json:"name,omitempty"`
	ManagerID *int64  `json:"manager_id,omitempty"`
	ParentID  *int64  `json:"parent_id,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
}

type CreatePositionDTO struct {
	Code       string `json:"code"`
	Title      string `json:"title"`
	GradeLevel int    `json:"grade_level"`
}

type UpdatePositionDTO struct {
	Title      *string `json:"title,omitempty"`
	GradeLevel *int    `json:"grade_level,omitempty"`
	IsActive   *bool   `json:"is_active,omitempty"`
}

func (dto UpdatePositionDTO) Validate() error {
	if dto.Title != nil && strings.TrimSpace(*dto.Title) == "" {
		return errors.New("title cannot be empty")
	}
	if dto.GradeLevel != nil && *dto.GradeLevel < 0 {
		return errors.New("grade_level cannot be negative")
	}
	return nil
}

func (dto CreatePositionDTO) Validate() error {
	if strings.TrimSpace(dto.Code) == "" {
		return errors.New("code is required")
	}
	if strings.TrimSpace(dto.Title) == "" {
		return errors.New("title is required")
	}
	if dto.GradeLevel < 0 {
		return errors.New("grade_level cannot be negative")
	}
	return nil
}
