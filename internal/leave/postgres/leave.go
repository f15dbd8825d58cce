package postgres

import (
	"errors"
	"time"

	"github.com/yeonholee/hr-payroll/internal/leave"
	"gorm.io/gorm"
)

// LeaveRepository implements the leave.Repository interface using GORM
type LeaveRepository struct {
	db *gorm.DB
}

func NewLeaveRepository(db *gorm.DB) leave.Repository {
	return &LeaveRepository{db: db}
}

func (r *LeaveRepository) CreateRequest(req *leave.Request) error {
	return r.db.Create(req).Error
}

func (r *LeaveRepository) GetRequestByID(id int64) (*leave.Request, error) {
	var req leave.Request
	err := r.db.Where("id = ?", id).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leave.ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *LeaveRepository) GetRequestsByEmployee(employeeID int64, year int) ([]*leave.Request, error) {
	var requests []*leave.Request
	query := r.db.Where("employee_id = ?", employeeID)
	if year > 0 {
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		query = query.Where("start_date >= ? AND start_date < ?", start, start.AddDate(1, 0, 0))
	}
	err := query.Order("start_date DESC").Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// HasOverlap reports whether a pending or approved request intersects
// [start, end] for the employee.
func (r *LeaveRepository) HasOverlap(employeeID int64, start, end time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&leave.Request{}).
		Where("employee_id = ?", employeeID).
		Where("status IN ?", []string{leave.StatusPending, leave.StatusApproved}).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *LeaveRepository) UpdateRequest(req *leave.Request) error {
	return r.db.Save(req).Error
}

func (r *LeaveRepository) GetBalance(employeeID int64, year int) (*leave.Balance, error) {
	var balance leave.Balance
	err := r.db.Where("employee_id = ? AND year = ?", employeeID, year).First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leave.ErrBalanceNotFound
		}
		return nil, err
	}
	return &balance, nil
}

func (r *LeaveRepository) CreateBalance(balance *leave.Balance) error {
	return r.db.Create(balance).Error
}

func (r *LeaveRepository) UpdateBalance(balance *leave.Balance) error {
	return r.db.Save(balance).Error
}

func (r *LeaveRepository) TeamStatus(departmentID int64, from, to time.Time) ([]*leave.TeamStatusEntry, error) {
	var entries []*leave.TeamStatusEntry
	query := r.db.Table("leave_requests lr").
		Select(`lr.id AS request_id,
			lr.employee_id,
			e.name AS employee_name,
			lr.leave_type,
			lr.start_date,
			lr.end_date,
			lr.days,
			lr.status`).
		Joins("JOIN employees e ON e.id = lr.employee_id").
		Where("e.department_id = ?", departmentID).
		Where("lr.status IN ?", []string{leave.StatusPending, leave.StatusApproved})
	if !from.IsZero() {
		query = query.Where("lr.end_date >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("lr.start_date <= ?", to)
	}
	err := query.Order("lr.start_date ASC").Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *LeaveRepository) DepartmentStats(year int) ([]*leave.DepartmentStats, error) {
	var stats []*leave.DepartmentStats
	err := r.db.Table("departments d").
		Select(`d.id AS department_id,
			d.name AS department_name,
			COUNT(DISTINCT e.id) AS employee_count,
			COALESCE(SUM(lb.total_days), 0) AS total_days,
			COALESCE(SUM(lb.used_days), 0) AS used_days,
			COALESCE(SUM(lb.pending_days), 0) AS pending_days`).
		Joins("LEFT JOIN employees e ON e.department_id = d.id AND e.is_active = true").
		Joins("LEFT JOIN leave_balances lb ON lb.employee_id = e.id AND lb.year = ?", year).
		Group("d.id, d.name").
		Order("d.name ASC").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}
