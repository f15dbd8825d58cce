package leave

import (
	"errors"
	"time"
)

type CreateRequestDTO struct {
	LeaveType string    `json:"leave_type"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Reason    string    `json:"reason"`
}

func (dto CreateRequestDTO) Validate() error {
	switch dto.LeaveType {
	case TypeAnnual, TypeHalfDay, TypeSick:
	default:
		return errors.New("leave_type must be one of annual, half_day, sick")
	}
	if dto.StartDate.IsZero() || dto.EndDate.IsZero() {
		return errors.New("start_date and end_date are required")
	}
	if dto.EndDate.Before(dto.StartDate) {
		return errors.New("end_date cannot be before start_date")
	}
	if dto.LeaveType == TypeHalfDay && !sameDay(dto.StartDate, dto.EndDate) {
		return errors.New("half_day leave must start and end on the same day")
	}
	return nil
}

// RequestedDays computes the day cost of the request: half-days count 0.5,
// everything else counts business days in the range. A half-day on a
// weekend costs nothing and is rejected downstream like any other
// zero-day range.
func (dto CreateRequestDTO) RequestedDays() float64 {
	if dto.LeaveType == TypeHalfDay {
		if BusinessDays(dto.StartDate, dto.StartDate) == 0 {
			return 0
		}
		return 0.5
	}
	return BusinessDays(dto.StartDate, dto.EndDate)
}

type RejectRequestDTO struct {
	Reason string `json:"reason"`
}

func (dto RejectRequestDTO) Validate() error {
	if dto.Reason == "" {
		return errors.New("reason is required when rejecting a leave request")
	}
	return nil
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
