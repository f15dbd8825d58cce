package events

import (
	"time"

	"github.com/google/uuid"
)

// Event types published by the HR modules.
const (
	EventLeaveApproved          = "leave.approved"
	EventPayrollConfirmed       = "payroll.confirmed"
	EventIncentiveBatchFinished = "incentive.batch_simulation.finished"
)

// NewPayrollConfirmedEvent is published once a previewed payroll batch has
// been committed.
func NewPayrollConfirmedEvent(previewToken string, year, month int, recordCount int, totalNetPay int64) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventPayrollConfirmed,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"preview_token": previewToken,
			"year":          year,
			"month":         month,
			"record_count":  recordCount,
			"total_net_pay": totalNetPay,
		},
	}
}

func NewIncentiveBatchFinishedEvent(formulaID int64, evaluated, failed int, totalAmount int64) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventIncentiveBatchFinished,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"formula_id":   formulaID,
			"evaluated":    evaluated,
			"failed":       failed,
			"total_amount": totalAmount,
		},
	}
}
