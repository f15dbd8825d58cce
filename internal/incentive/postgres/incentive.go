package postgres

import (
	"errors"

	"github.com/yeonholee/hr-payroll/internal/incentive"
	"gorm.io/gorm"
)

// IncentiveRepository implements the incentive.Repository interface using GORM
type IncentiveRepository struct {
	db *gorm.DB
}

func NewIncentiveRepository(db *gorm.DB) incentive.Repository {
	return &IncentiveRepository{db: db}
}

func (r *IncentiveRepository) CreateFormula(formula *incentive.Formula) error {
	return r.db.Create(formula).Error
}

func (r *IncentiveRepository) GetFormulaByID(id int64) (*incentive.Formula, error) {
	var formula incentive.Formula
	err := r.db.Where("id = ?", id).First(&formula).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, incentive.ErrFormulaNotFound
		}
		return nil, err
	}
	return &formula, nil
}

func (r *IncentiveRepository) ListFormulas(activeOnly bool) ([]*incentive.Formula, error) {
	var formulas []*incentive.Formula
	query := r.db.Order("name ASC")
	if activeOnly {
		query = query.Where("is_active = true")
	}
	err := query.Find(&formulas).Error
	if err != nil {
		return nil, err
	}
	return formulas, nil
}

func (r *IncentiveRepository) UpdateFormula(formula *incentive.Formula) error {
	return r.db.Save(formula).Error
}

func (r *IncentiveRepository) DeleteFormula(id int64) error {
	return r.db.Delete(&incentive.Formula{}, id).Error
}

func (r *IncentiveRepository) CreateSales(record *incentive.SalesRecord) error {
	return r.db.Create(record).Error
}

func (r *IncentiveRepository) GetSalesByID(id int64) (*incentive.SalesRecord, error) {
	var record incentive.SalesRecord
	err := r.db.Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, incentive.ErrSalesNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *IncentiveRepository) GetSales(employeeID int64, year, month int) (*incentive.SalesRecord, error) {
	var record incentive.SalesRecord
	err := r.db.Where("employee_id = ? AND year = ? AND month = ?", employeeID, year, month).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, incentive.ErrSalesNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *IncentiveRepository) ListSales(year, month int) ([]*incentive.SalesRecord, error) {
	var records []*incentive.SalesRecord
	query := r.db.Order("employee_id ASC")
	if year > 0 {
		query = query.Where("year = ?", year)
	}
	if month > 0 {
		query = query.Where("month = ?", month)
	}
	err := query.Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *IncentiveRepository) UpdateSales(record *incentive.SalesRecord) error {
	return r.db.Save(record).Error
}

func (r *IncentiveRepository) DeleteSales(id int64) error {
	return r.db.Delete(&incentive.SalesRecord{}, id).Error
}

// SalesRows joins sales records with the employee fields the formula
// engine binds. Inactive employees are excluded from simulations.
func (r *IncentiveRepository) SalesRows(year, month int, departmentID *int64) ([]incentive.SalesRow, error) {
	var rows []incentive.SalesRow
	query := r.db.Table("sales_records sr").
		Select(`sr.id AS sales_record_id,
			sr.employee_id,
			e.name AS employee_name,
			sr.sales_amount,
			sr.target_amount,
			e.base_salary,
			e.hire_date`).
		Joins("JOIN employees e ON e.id = sr.employee_id").
		Where("sr.year = ? AND sr.month = ?", year, month).
		Where("e.is_active = true")
	if departmentID != nil {
		query = query.Where("e.department_id = ?", *departmentID)
	}
	err := query.Order("sr.employee_id ASC").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
