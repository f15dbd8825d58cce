package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/yeonholee/hr-payroll/internal"
	"github.com/yeonholee/hr-payroll/internal/core/events"
	"github.com/yeonholee/hr-payroll/internal/employee"
)

type Repository interface {
	CreateRequest(req *Request) error
	GetRequestByID(id int64) (*Request, error)
	GetRequestsByEmployee(employeeID int64, year int) ([]*Request, error)
	HasOverlap(employeeID int64, start, end time.Time) (bool, error)
	UpdateRequest(req *Request) error

	GetBalance(employeeID int64, year int) (*Balance, error)
	CreateBalance(balance *Balance) error
	UpdateBalance(balance *Balance) error

	TeamStatus(departmentID int64, from, to time.Time) ([]*TeamStatusEntry, error)
	DepartmentStats(year int) ([]*DepartmentStats, error)
}

// EmployeeDirectory is the slice of the employee module the leave service
// needs: tenure for entitlement and department for the team view.
type EmployeeDirectory interface {
	GetEmployee(id int64) (*employee.Employee, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo      Repository
	directory EmployeeDirectory
	bus       EventPublisher
	logger    *slog.Logger
}

func NewService(repo Repository, directory EmployeeDirectory, bus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		directory: directory,
		bus:       bus,
		logger:    logger,
	}
}

// CreateRequest files a leave request and reserves the days as pending.
// Sick leave is recorded but does not draw on the annual balance.
func (s *Service) CreateRequest(employeeID int64, dto CreateRequestDTO) (*Request, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	days := dto.RequestedDays()
	if days <= 0 {
		return nil, internal.NewValidationError("requested range contains no business days", internal.ErrCodeInvalidDate)
	}

	overlap, err := s.repo.HasOverlap(employeeID, dto.StartDate, dto.EndDate)
	if err != nil {
		return nil, internal.NewInternalError("failed to check overlapping requests", err)
	}
	if overlap {
		return nil, internal.NewConflictError("an overlapping leave request already exists", internal.ErrCodeLeaveOverlap)
	}

	var balance *Balance
	if dto.LeaveType != TypeSick {
		balance, err = s.ensureBalance(employeeID, dto.StartDate.Year())
		if err != nil {
			return nil, err
		}
		if balance.Remaining() < days {
			s.logger.Warn("leave request denied: insufficient balance",
				"employee_id", employeeID,
				"requested", days,
				"remaining", balance.Remaining())
			return nil, internal.NewValidationError(
				fmt.Sprintf("insufficient leave balance: %.1f days remaining, %.1f requested", balance.Remaining(), days),
				internal.ErrCodeInsufficientBalance)
		}
	}

	now := time.Now()
	req := &Request{
		EmployeeID: employeeID,
		LeaveType:  dto.LeaveType,
		StartDate:  dto.StartDate,
		EndDate:    dto.EndDate,
		Days:       days,
		Reason:     dto.Reason,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.CreateRequest(req); err != nil {
		return nil, internal.NewInternalError("failed to create leave request", err)
	}

	if balance != nil {
		balance.PendingDays += days
		if err := s.repo.UpdateBalance(balance); err != nil {
			return nil, internal.NewInternalError("failed to reserve leave days", err)
		}
	}

	s.logger.Info("leave request created",
		"request_id", req.ID,
		"employee_id", employeeID,
		"leave_type", dto.LeaveType,
		"days", days)

	return req, nil
}

func (s *Service) GetRequest(id int64, requesterID int64, canViewAll bool) (*Request, error) {
	req, err := s.repo.GetRequestByID(id)
	if err != nil {
		return nil, internal.NewNotFoundError("leave request not found", internal.ErrCodeLeaveNotFound)
	}
	if !canViewAll && req.EmployeeID != requesterID {
		return nil, internal.NewForbiddenError("unauthorized access to leave request", internal.ErrCodeUnauthorizedUser)
	}
	return req, nil
}

func (s *Service) GetEmployeeRequests(employeeID int64, year int) ([]*Request, error) {
	if year == 0 {
		year = time.Now().Year()
	}
	requests, err := s.repo.GetRequestsByEmployee(employeeID, year)
	if err != nil {
		return nil, internal.NewInternalError("failed to list leave requests", err)
	}
	return requests, nil
}

// Approve moves the reserved days from pending to used.
func (s *Service) Approve(requestID int64, approverID int64) (*Request, error) {
	req, err := s.repo.GetRequestByID(requestID)
	if err != nil {
		return nil, internal.NewNotFoundError("leave request not found", internal.ErrCodeLeaveNotFound)
	}
	if !req.CanBeApproved() {
		return nil, internal.NewValidationError("leave request cannot be approved in current status", internal.ErrCodeInvalidLeaveStatus)
	}
	if req.EmployeeID == approverID {
		return nil, internal.NewForbiddenError("cannot approve own leave request", internal.ErrCodeUnauthorizedApprover)
	}

	now := time.Now()
	req.Status = StatusApproved
	req.ApproverID = &approverID
	req.ProcessedAt = &now
	req.UpdatedAt = now

	if err := s.repo.UpdateRequest(req); err != nil {
		return nil, internal.NewInternalError("failed to approve leave request", err)
	}

	if req.LeaveType != TypeSick {
		if err := s.shiftBalance(req, func(b *Balance) {
			b.PendingDays -= req.Days
			b.UsedDays += req.Days
		}); err != nil {
			return nil, err
		}
	}

	s.publishLeaveEvent(events.EventLeaveApproved, req, approverID)

	s.logger.Info("leave request approved",
		"request_id", req.ID,
		"employee_id", req.EmployeeID,
		"approver_id", approverID,
		"days", req.Days)

	return req, nil
}

// Reject returns the reserved days to the balance.
func (s *Service) Reject(requestID int64, approverID int64, reason string) (*Request, error) {
	if reason == "" {
		return nil, internal.NewValidationError("reason is required when rejecting a leave request", internal.ErrCodeValidationFailed)
	}

	req, err := s.repo.GetRequestByID(requestID)
	if err != nil {
		return nil, internal.NewNotFoundError("leave request not found", internal.ErrCodeLeaveNotFound)
	}
	if !req.CanBeRejected() {
		return nil, internal.NewValidationError("leave request cannot be rejected in current status", internal.ErrCodeInvalidLeaveStatus)
	}

	now := time.Now()
	req.Status = StatusRejected
	req.ApproverID = &approverID
	req.RejectReason = reason
	req.ProcessedAt = &now
	req.UpdatedAt = now

	if err := s.repo.UpdateRequest(req); err != nil {
		return nil, internal.NewInternalError("failed to reject leave request", err)
	}

	if req.LeaveType != TypeSick {
		if err := s.shiftBalance(req, func(b *Balance) {
			b.PendingDays -= req.Days
		}); err != nil {
			return nil, err
		}
	}

	s.logger.Info("leave request rejected",
		"request_id", req.ID,
		"employee_id", req.EmployeeID,
		"approver_id", approverID,
		"reason", reason)

	return req, nil
}

// Cancel lets the owner withdraw a pending or approved request. Cancelling an
// approved request restores the used days.
func (s *Service) Cancel(requestID int64, employeeID int64) (*Request, error) {
	req, err := s.repo.GetRequestByID(requestID)
	if err != nil {
		return nil, internal.NewNotFoundError("leave request not found", internal.ErrCodeLeaveNotFound)
	}
	if req.EmployeeID != employeeID {
		return nil, internal.NewForbiddenError("unauthorized access to leave request", internal.ErrCodeUnauthorizedUser)
	}
	if !req.CanBeCancelled() {
		return nil, internal.NewValidationError("leave request cannot be cancelled in current status", internal.ErrCodeInvalidLeaveStatus)
	}

	wasApproved := req.Status == StatusApproved

	now := time.Now()
	req.Status = StatusCancelled
	req.ProcessedAt = &now
	req.UpdatedAt = now

	if err := s.repo.UpdateRequest(req); err != nil {
		return nil, internal.NewInternalError("failed to cancel leave request", err)
	}

	if req.LeaveType != TypeSick {
		if err := s.shiftBalance(req, func(b *Balance) {
			if wasApproved {
				b.UsedDays -= req.Days
			} else {
				b.PendingDays -= req.Days
			}
		}); err != nil {
			return nil, err
		}
	}

	s.logger.Info("leave request cancelled", "request_id", req.ID, "employee_id", employeeID)
	return req, nil
}

// GetBalance returns the balance for the year, creating the statutory grant
// on first access.
func (s *Service) GetBalance(employeeID int64, year int) (*BalanceView, error) {
	if year == 0 {
		year = time.Now().Year()
	}
	balance, err := s.ensureBalance(employeeID, year)
	if err != nil {
		return nil, err
	}
	return balance.View(), nil
}

func (s *Service) TeamStatus(departmentID int64, from, to time.Time) ([]*TeamStatusEntry, error) {
	if from.IsZero() {
		from = time.Now().AddDate(0, 0, -7)
	}
	if to.IsZero() {
		to = time.Now().AddDate(0, 1, 0)
	}
	entries, err := s.repo.TeamStatus(departmentID, from, to)
	if err != nil {
		return nil, internal.NewInternalError("failed to load team leave status", err)
	}
	return entries, nil
}

func (s *Service) DepartmentStats(year int) ([]*DepartmentStats, error) {
	if year == 0 {
		year = time.Now().Year()
	}
	stats, err := s.repo.DepartmentStats(year)
	if err != nil {
		return nil, internal.NewInternalError("failed to load department leave stats", err)
	}
	for _, st := range stats {
		if st.TotalDays > 0 {
			st.UsageRate = st.UsedDays / st.TotalDays
		}
	}
	return stats, nil
}

func (s *Service) ensureBalance(employeeID int64, year int) (*Balance, error) {
	balance, err := s.repo.GetBalance(employeeID, year)
	if err == nil {
		return balance, nil
	}
	if err != ErrBalanceNotFound {
		return nil, internal.NewInternalError("failed to load leave balance", err)
	}

	emp, err := s.directory.GetEmployee(employeeID)
	if err != nil {
		return nil, internal.NewNotFoundError("employee not found", internal.ErrCodeEmployeeNotFound)
	}

	asOf := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	balance = &Balance{
		EmployeeID: employeeID,
		Year:       year,
		TotalDays:  Entitlement(emp.YearsOfService(asOf)),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.CreateBalance(balance); err != nil {
		return nil, internal.NewInternalError("failed to create leave balance", err)
	}

	s.logger.Info("leave balance initialized",
		"employee_id", employeeID,
		"year", year,
		"total_days", balance.TotalDays)

	return balance, nil
}

func (s *Service) shiftBalance(req *Request, mutate func(*Balance)) error {
	balance, err := s.repo.GetBalance(req.EmployeeID, req.StartDate.Year())
	if err != nil {
		return internal.NewInternalError("failed to load leave balance", err)
	}
	mutate(balance)
	balance.UpdatedAt = time.Now()
	if err := s.repo.UpdateBalance(balance); err != nil {
		return internal.NewInternalError("failed to update leave balance", err)
	}
	return nil
}

func (s *Service) publishLeaveEvent(eventType string, req *Request, actorID int64) {
	if s.bus == nil {
		return
	}
	event := events.BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"request_id":  req.ID,
			"employee_id": req.EmployeeID,
			"leave_type":  req.LeaveType,
			"days":        req.Days,
			"actor_id":    actorID,
		},
	}
	if err := s.bus.Publish(context.Background(), event); err != nil {
		s.logger.Error("failed to publish leave event", "event_type", eventType, "error", err)
	}
}
