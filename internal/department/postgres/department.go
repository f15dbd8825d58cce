package postgres

import (
	"time"

	"github.com/yeonholee/hr-payroll/internal/department"
	"gorm.io/gorm"
)

type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) department.Repository {
	return &DepartmentRepository{db: db}
}

func (r *DepartmentRepository) CreateDepartment(dept *department.Department) error {
	return r.db.Create(dept).Error
}

func (r *DepartmentRepository) GetDepartmentByID(id int64) (*department.Department, error) {
	var dept department.Department
	err := r.db.Where("id = ?", id).First(&dept).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, department.ErrDepartmentNotFound
		}
		return nil, err
	}
	return &dept, nil
}

func (r *DepartmentRepository) ListDepartments() ([]*department.Department, error) {
	var departments []*department.Department
	err := r.db.Order("code ASC").Find(&departments).Error
	return departments, err
}

func (r *DepartmentRepository) UpdateDepartment(dept *department.Department) error {
	dept.UpdatedAt = time.Now()
	return r.db.Save(dept).Error
}

func (r *DepartmentRepository) DeleteDepartment(id int64) error {
	return r.db.Delete(&department.Department{}, id).Error
}

func (r *DepartmentRepository) CountEmployees(departmentID int64) (int64, error) {
	var count int64
	err := r.db.Table("employees").
		Where("department_id = ? AND is_active = ?", departmentID, true).
		Count(&count).Error
	return count, err
}

func (r *DepartmentRepository) HeadcountSummary() ([]*department.HeadcountSummary, error) {
	var summary []*department.HeadcountSummary
	err := r.db.Table("departments d").
		Select(`d.id AS department_id, d.name AS department_name,
			COUNT(e.id) AS headcount,
			SUM(CASE WHEN e.is_active THEN 1 ELSE 0 END) AS active_count`).
		Joins("LEFT JOIN employees e ON e.department_id = d.id").
		Group("d.id, d.name").
		Order("d.id").
		Scan(&summary).Error
	return summary, err
}

func (r *DepartmentRepository) CreatePosition(pos *department.Position) error {
	return r.db.Create(pos).Error
}

func (r *DepartmentRepository) GetPositionByID(id int64) (*department.Position, error) {
	var pos department.Position
	err := r.db.Where("id = ?", id).First(&pos).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, department.ErrPositionNotFound
		}
		return nil, err
	}
	return &pos, nil
}

func (r *DepartmentRepository) ListPositions() ([]*department.Position, error) {
	var positions []*department.Position
	err := r.db.Order("grade_level ASC, code ASC").Find(&positions).Error
	return positions, err
}

func (r *DepartmentRepository) UpdatePosition(pos *department.Position) error {
	pos.UpdatedAt = time.Now()
	return r.db.Save(pos).Error
}
