package postgres

import (
	"errors"

	"github.com/yeonholee/hr-payroll/internal/payroll"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PayrollRepository implements the payroll.Repository interface using GORM
type PayrollRepository struct {
	db *gorm.DB
}

func NewPayrollRepository(db *gorm.DB) payroll.Repository {
	return &PayrollRepository{db: db}
}

// SaveRecords commits a confirmed batch in one transaction. Re-uploading a
// month overwrites the previous figures for the same employee.
func (r *PayrollRepository) SaveRecords(records []*payroll.Record) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, rec := range records {
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "employee_id"}, {Name: "year"}, {Name: "month"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"base_pay", "overtime_pay", "meal_allowance", "transport_allowance",
					"incentive_pay", "income_tax", "local_tax", "national_pension",
					"health_insurance", "employment_insurance",
					"gross_pay", "total_deductions", "net_pay", "updated_at",
				}),
			}).Create(rec).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PayrollRepository) GetRecordByID(id int64) (*payroll.Record, error) {
	var record payroll.Record
	err := r.db.Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payroll.ErrRecordNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *PayrollRepository) GetRecord(employeeID int64, year, month int) (*payroll.Record, error) {
	var record payroll.Record
	err := r.db.Where("employee_id = ? AND year = ? AND month = ?", employeeID, year, month).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payroll.ErrRecordNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *PayrollRepository) ListByMonth(year, month int) ([]*payroll.Record, error) {
	var records []*payroll.Record
	err := r.db.Where("year = ? AND month = ?", year, month).
		Order("employee_id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *PayrollRepository) ListByEmployee(employeeID int64, year int) ([]*payroll.Record, error) {
	var records []*payroll.Record
	query := r.db.Where("employee_id = ?", employeeID)
	if year > 0 {
		query = query.Where("year = ?", year)
	}
	err := query.Order("year DESC, month DESC").Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *PayrollRepository) CreatePreview(preview *payroll.Preview) error {
	return r.db.Create(preview).Error
}

func (r *PayrollRepository) GetPreviewByToken(token string) (*payroll.Preview, error) {
	var preview payroll.Preview
	err := r.db.Where("token = ?", token).First(&preview).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payroll.ErrPreviewNotFound
		}
		return nil, err
	}
	return &preview, nil
}

func (r *PayrollRepository) GetPreviewByIdempotencyKey(key string) (*payroll.Preview, error) {
	var preview payroll.Preview
	err := r.db.Where("idempotency_key = ?", key).First(&preview).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payroll.ErrPreviewNotFound
		}
		return nil, err
	}
	return &preview, nil
}

func (r *PayrollRepository) UpdatePreview(preview *payroll.Preview) error {
	return r.db.Save(preview).Error
}

func (r *PayrollRepository) MonthlySummary(year, month int) ([]*payroll.MonthlySummary, error) {
	var summary []*payroll.MonthlySummary
	err := r.db.Table("payroll_records pr").
		Select(`COALESCE(e.department_id, 0) AS department_id,
			COALESCE(d.name, 'Unassigned') AS department_name,
			COUNT(pr.id) AS employee_count,
			COALESCE(SUM(pr.gross_pay), 0) AS total_gross,
			COALESCE(SUM(pr.total_deductions), 0) AS total_deductions,
			COALESCE(SUM(pr.net_pay), 0) AS total_net`).
		Joins("JOIN employees e ON e.id = pr.employee_id").
		Joins("LEFT JOIN departments d ON d.id = e.department_id").
		Where("pr.year = ? AND pr.month = ?", year, month).
		Group("e.department_id, d.name").
		Order("department_name ASC").
		Scan(&summary).Error
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (r *PayrollRepository) SavePayslip(payslip *payroll.Payslip) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "payroll_record_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"file_name", "file_path", "size_bytes", "content_type", "uploaded_by",
		}),
	}).Create(payslip).Error
}

func (r *PayrollRepository) GetPayslipByRecordID(recordID int64) (*payroll.Payslip, error) {
	var payslip payroll.Payslip
	err := r.db.Where("payroll_record_id = ?", recordID).First(&payslip).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payroll.ErrPayslipNotFound
		}
		return nil, err
	}
	return &payslip, nil
}
