package department

import (
	"errors"
	"time"
)

type Department struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Code         string    `json:"code" gorm:"uniqueIndex;not null"`
	Name         string    `json:"name" gorm:"not null"`
	ManagerID    *int64    `json:"manager_id,omitempty" gorm:"column:manager_id"`
	ParentID     *int64    `json:"parent_id,omitempty" gorm:"column:parent_id"`
	IsActive     bool      `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Department) TableName() string {
	return "departments"
}

type Position struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	Code       string    `json:"code" gorm:"uniqueIndex;not null"`
	Title      string    `json:"title" gorm:"not null"`
	GradeLevel int       `json:"grade_level" gorm:"column:grade_level"`
	IsActive   bool      `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedAt  time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Position) TableName() string {
	return "positions"
}

// HeadcountSummary aggregates per-department employee counts.
type HeadcountSummary struct {
	DepartmentID   int64  `json:"department_id"`
	DepartmentName string `json:"department_name"`
	Headcount      int64  `json:"headcount"`
	ActiveCount    int64  `json:"active_count"`
}

var (
	ErrDepartmentNotFound = errors.New("department not found")
	ErrPositionNotFound   = errors.New("position not found")
	ErrDepartmentNotEmpty = errors.New("department still has assigned employees")
)
