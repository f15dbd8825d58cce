package leave

import (
	"errors"
	"time"
)

// Leave types
const (
	TypeAnnual  = "annual"
	TypeHalfDay = "half_day"
	TypeSick    = "sick"
)

// Request lifecycle: pending -> approved | rejected | cancelled.
// Approved requests may still be cancelled, returning days to the balance.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

const (
	// Statutory annual-leave grant: 15 days, +1 per 2 full years of
	// service, capped at 25.
	BaseEntitlementDays = 15.0
	MaxEntitlementDays  = 25.0
)

type Request struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	EmployeeID   int64      `json:"employee_id" gorm:"column:employee_id;not null"`
	LeaveType    string     `json:"leave_type" gorm:"column:leave_type;not null"`
	StartDate    time.Time  `json:"start_date" gorm:"column:start_date;type:date"`
	EndDate      time.Time  `json:"end_date" gorm:"column:end_date;type:date"`
	Days         float64    `json:"days" gorm:"column:days"`
	Reason       string     `json:"reason"`
	Status       string     `json:"status" gorm:"default:pending"`
	ApproverID   *int64     `json:"approver_id,omitempty" gorm:"column:approver_id"`
	RejectReason string     `json:"reject_reason,omitempty" gorm:"column:reject_reason"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty" gorm:"column:processed_at"`
	CreatedAt    time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (Request) TableName() string {
	return "leave_requests"
}

func (r *Request) CanBeApproved() bool {
	return r.Status == StatusPending
}

func (r *Request) CanBeRejected() bool {
	return r.Status == StatusPending
}

func (r *Request) CanBeCancelled() bool {
	return r.Status == StatusPending || r.Status == StatusApproved
}

// Balance tracks per-employee annual-leave day accounting for one year.
// Invariant: remaining = total - used - pending, never negative.
type Balance struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	EmployeeID  int64     `json:"employee_id" gorm:"column:employee_id;not null;uniqueIndex:idx_balance_emp_year"`
	Year        int       `json:"year" gorm:"not null;uniqueIndex:idx_balance_emp_year"`
	TotalDays   float64   `json:"total_days" gorm:"column:total_days"`
	UsedDays    float64   `json:"used_days" gorm:"column:used_days"`
	PendingDays float64   `json:"pending_days" gorm:"column:pending_days"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Balance) TableName() string {
	return "leave_balances"
}

func (b *Balance) Remaining() float64 {
	return b.TotalDays - b.UsedDays - b.PendingDays
}

// BalanceView is the API shape for a balance, with remaining materialized.
type BalanceView struct {
	EmployeeID  int64   `json:"employee_id"`
	Year        int     `json:"year"`
	TotalDays   float64 `json:"total_days"`
	UsedDays    float64 `json:"used_days"`
	PendingDays float64 `json:"pending_days"`
	Remaining   float64 `json:"remaining_days"`
}

func (b *Balance) View() *BalanceView {
	return &BalanceView{
		EmployeeID:  b.EmployeeID,
		Year:        b.Year,
		TotalDays:   b.TotalDays,
		UsedDays:    b.UsedDays,
		PendingDays: b.PendingDays,
		Remaining:   b.Remaining(),
	}
}

// TeamStatusEntry joins a request with its owner for the team view.
type TeamStatusEntry struct {
	RequestID    int64     `json:"request_id"`
	EmployeeID   int64     `json:"employee_id"`
	EmployeeName string    `json:"employee_name"`
	LeaveType    string    `json:"leave_type"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Days         float64   `json:"days"`
	Status       string    `json:"status"`
}

// DepartmentStats aggregates leave usage per department for one year.
type DepartmentStats struct {
	DepartmentID   int64   `json:"department_id"`
	DepartmentName string  `json:"department_name"`
	EmployeeCount  int64   `json:"employee_count"`
	TotalDays      float64 `json:"total_days"`
	UsedDays       float64 `json:"used_days"`
	PendingDays    float64 `json:"pending_days"`
	UsageRate      float64 `json:"usage_rate"`
}

var (
	ErrRequestNotFound     = errors.New("leave request not found")
	ErrBalanceNotFound     = errors.New("leave balance not found")
	ErrOverlappingRequest  = errors.New("overlapping leave request exists")
	ErrInsufficientBalance = errors.New("insufficient leave balance")
	ErrInvalidStatus       = errors.New("invalid leave status for this operation")
)

// BusinessDays counts weekdays in [start, end]. Dates are normalized to
// whole days first.
func BusinessDays(start, end time.Time) float64 {
	start = truncateDay(start)
	end = truncateDay(end)
	if end.Before(start) {
		return 0
	}

	days := 0.0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
		default:
			days++
		}
	}
	return days
}

// Entitlement returns the statutory annual grant for an employee with the
// given full years of service.
func Entitlement(yearsOfService int) float64 {
	days := BaseEntitlementDays + float64(yearsOfService/2)
	if days > MaxEntitlementDays {
		days = MaxEntitlementDays
	}
	return days
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
