package postgres

import (
	"time"

	"github.com/yeonholee/hr-payroll/internal/employee"
	"gorm.io/gorm"
)

// EmployeeRepository implements the employee.Repository interface using GORM
type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) employee.Repository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) Create(emp *employee.Employee) error {
	return r.db.Create(emp).Error
}

func (r *EmployeeRepository) GetByID(id int64) (*employee.Employee, error) {
	var emp employee.Employee
	err := r.db.Where("id = ?", id).First(&emp).Error
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

func (r *EmployeeRepository) GetByEmployeeNumber(number string) (*employee.Employee, error) {
	var emp employee.Employee
	err := r.db.Where("employee_number = ?", number).First(&emp).Error
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

func (r *EmployeeRepository) List(filter employee.ListFilter) ([]*employee.Employee, int64, error) {
	var employees []*employee.Employee

	q := r.db.Model(&employee.Employee{})
	if filter.DepartmentID != nil {
		q = q.Where("department_id = ?", *filter.DepartmentID)
	}
	if filter.Status != "" {
		q = q.Where("employment_status = ?", filter.Status)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("name LIKE ? OR email LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("employee_number ASC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&employees).Error
	return employees, total, err
}

func (r *EmployeeRepository) Update(emp *employee.Employee) error {
	emp.UpdatedAt = time.Now()
	return r.db.Save(emp).Error
}

func (r *EmployeeRepository) Delete(id int64) error {
	return r.db.Delete(&employee.Employee{}, id).Error
}

func (r *EmployeeRepository) HasPayrollRecords(id int64) (bool, error) {
	var count int64
	err := r.db.Table("payroll_records").Where("employee_id = ?", id).Count(&count).Error
	return count > 0, err
}
