package payroll

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/yeonholee/hr-payroll/internal"
	"github.com/yeonholee/hr-payroll/internal/core/common/validation"
	"github.com/yeonholee/hr-payroll/internal/core/events"
	"github.com/yeonholee/hr-payroll/internal/employee"
)

// Repository interface defines the data access methods for payroll
type Repository interface {
	SaveRecords(records []*Record) error
	GetRecordByID(id int64) (*Record, error)
	GetRecord(employeeID int64, year, month int) (*Record, error)
	ListByMonth(year, month int) ([]*Record, error)
	ListByEmployee(employeeID int64, year int) ([]*Record, error)

	CreatePreview(preview *Preview) error
	GetPreviewByToken(token string) (*Preview, error)
	GetPreviewByIdempotencyKey(key string) (*Preview, error)
	UpdatePreview(preview *Preview) error

	MonthlySummary(year, month int) ([]*MonthlySummary, error)

	SavePayslip(payslip *Payslip) error
	GetPayslipByRecordID(recordID int64) (*Payslip, error)
}

// EmployeeDirectory resolves upload rows to employees.
type EmployeeDirectory interface {
	GetEmployeeByNumber(number string) (*employee.Employee, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service handles payroll business logic
type Service struct {
	repo       Repository
	directory  EmployeeDirectory
	bus        EventPublisher
	payslipDir string
	previewTTL time.Duration
	logger     *slog.Logger
}

func NewService(repo Repository, directory EmployeeDirectory, bus EventPublisher, payslipDir string, previewTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		directory:  directory,
		bus:        bus,
		payslipDir: payslipDir,
		previewTTL: previewTTL,
		logger:     logger,
	}
}

// Preview parses an uploaded workbook, validates every row and stores the
// result under a fresh token. Nothing is written to payroll_records yet.
func (s *Service) Preview(uploaderID int64, year, month int, file io.Reader) (*PreviewResult, error) {
	if err := validation.ValidatePeriod(int64(year), int64(month)); err != nil {
		return nil, err
	}

	rows, err := ParseWorkbook(file)
	if err != nil {
		s.logger.Error("payroll preview: workbook parse failed", "error", err, "uploader_id", uploaderID)
		return nil, internal.NewValidationError(fmt.Sprintf("cannot parse workbook: %v", err), internal.ErrCodeUnsupportedFile)
	}

	seen := make(map[string]int, len(rows))
	validCount := 0
	for i := range rows {
		row := &rows[i]
		if row.EmployeeNumber != "" {
			if prev, dup := seen[row.EmployeeNumber]; dup {
				row.addError(fmt.Sprintf("duplicate of row %d", prev))
			} else {
				seen[row.EmployeeNumber] = row.RowNumber
			}
		}
		s.resolveEmployee(row)
		if row.Valid() {
			validCount++
		}
	}

	rowsJSON, err := json.Marshal(rows)
	if err != nil {
		return nil, internal.NewInternalError("failed to encode preview rows", err)
	}

	preview := &Preview{
		Token:      uuid.New().String(),
		Year:       year,
		Month:      month,
		RowsJSON:   string(rowsJSON),
		RowCount:   len(rows),
		ErrorCount: len(rows) - validCount,
		Status:     PreviewStatusPending,
		CreatedBy:  uploaderID,
		ExpiresAt:  time.Now().Add(s.previewTTL),
	}
	if err := s.repo.CreatePreview(preview); err != nil {
		return nil, internal.NewInternalError("failed to store preview", err)
	}

	s.logger.Info("payroll preview created",
		"token", preview.Token, "year", year, "month", month,
		"rows", preview.RowCount, "errors", preview.ErrorCount)

	return &PreviewResult{
		PreviewToken: preview.Token,
		Year:         year,
		Month:        month,
		Rows:         rows,
		ValidCount:   validCount,
		ErrorCount:   preview.ErrorCount,
		ExpiresAt:    preview.ExpiresAt,
	}, nil
}

func (s *Service) resolveEmployee(row *PreviewRow) {
	if row.EmployeeNumber == "" {
		return
	}
	emp, err := s.directory.GetEmployeeByNumber(row.EmployeeNumber)
	if err != nil {
		row.addError("employee number not found")
		return
	}
	if !emp.IsActive {
		row.addError("employee is inactive")
		return
	}
	row.EmployeeID = emp.ID
	row.EmployeeName = emp.Name
}

// Confirm commits a previewed upload. A replayed idempotency key returns
// the stored result of the first confirmation instead of writing twice.
func (s *Service) Confirm(uploaderID int64, dto ConfirmDTO) (*ConfirmResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	if dto.IdempotencyKey != "" {
		if prior, err := s.repo.GetPreviewByIdempotencyKey(dto.IdempotencyKey); err == nil && prior.Status == PreviewStatusConfirmed {
			return s.storedResult(prior)
		}
	}

	preview, err := s.repo.GetPreviewByToken(dto.PreviewToken)
	if err != nil {
		return nil, internal.NewNotFoundError("preview token not found", internal.ErrCodePreviewNotFound)
	}
	if preview.Status == PreviewStatusConfirmed {
		return nil, internal.NewConflictError("preview has already been confirmed", internal.ErrCodePreviewConsumed)
	}
	if preview.Expired(time.Now()) {
		return nil, internal.NewValidationError("preview token has expired, upload the file again", internal.ErrCodePreviewExpired)
	}
	if preview.ErrorCount > 0 {
		return nil, internal.NewValidationError(
			fmt.Sprintf("preview contains %d invalid rows, fix the file and upload again", preview.ErrorCount),
			internal.ErrCodeUploadRowsInvalid)
	}

	var rows []PreviewRow
	if err := json.Unmarshal([]byte(preview.RowsJSON), &rows); err != nil {
		return nil, internal.NewInternalError("failed to decode preview rows", err)
	}

	records := make([]*Record, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].ToRecord(preview.Year, preview.Month))
	}
	if err := s.repo.SaveRecords(records); err != nil {
		return nil, internal.NewInternalError("failed to commit payroll records", err)
	}

	recordIDs := make([]int64, len(records))
	var totalNet int64
	for i, rec := range records {
		recordIDs[i] = rec.ID
		totalNet += rec.NetPay
	}

	result := &ConfirmResult{
		Year:           preview.Year,
		Month:          preview.Month,
		ConfirmedCount: len(records),
		RecordIDs:      recordIDs,
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, internal.NewInternalError("failed to encode confirm result", err)
	}
	now := time.Now()
	preview.Status = PreviewStatusConfirmed
	preview.ConfirmedAt = &now
	preview.ResultJSON = string(resultJSON)
	if dto.IdempotencyKey != "" {
		key := dto.IdempotencyKey
		preview.IdempotencyKey = &key
	}
	if err := s.repo.UpdatePreview(preview); err != nil {
		return nil, internal.NewInternalError("failed to mark preview confirmed", err)
	}

	s.logger.Info("payroll confirmed",
		"token", preview.Token, "year", preview.Year, "month", preview.Month,
		"records", len(records), "uploader_id", uploaderID)

	if s.bus != nil {
		event := events.NewPayrollConfirmedEvent(preview.Token, preview.Year, preview.Month, len(records), totalNet)
		if err := s.bus.Publish(context.Background(), event); err != nil {
			s.logger.Error("failed to publish payroll confirmed event", "error", err)
		}
	}

	return result, nil
}

func (s *Service) storedResult(preview *Preview) (*ConfirmResult, error) {
	var result ConfirmResult
	if err := json.Unmarshal([]byte(preview.ResultJSON), &result); err != nil {
		return nil, internal.NewInternalError("failed to decode stored confirm result", err)
	}
	return &result, nil
}

func (s *Service) GetRecord(id int64) (*Record, error) {
	record, err := s.repo.GetRecordByID(id)
	if err != nil {
		return nil, internal.NewNotFoundError("payroll record not found", internal.ErrCodePayrollNotFound)
	}
	return record, nil
}

func (s *Service) ListMonth(year, month int) ([]*Record, error) {
	records, err := s.repo.ListByMonth(year, month)
	if err != nil {
		return nil, internal.NewInternalError("failed to list payroll records", err)
	}
	return records, nil
}

func (s *Service) ListEmployee(employeeID int64, year int) ([]*Record, error) {
	records, err := s.repo.ListByEmployee(employeeID, year)
	if err != nil {
		return nil, internal.NewInternalError("failed to list payroll records", err)
	}
	return records, nil
}

func (s *Service) MonthlySummary(year, month int) ([]*MonthlySummary, error) {
	summary, err := s.repo.MonthlySummary(year, month)
	if err != nil {
		return nil, internal.NewInternalError("failed to aggregate monthly summary", err)
	}
	return summary, nil
}

// UploadPayslip stores a PDF for one payroll record on disk and records
// its metadata.
func (s *Service) UploadPayslip(recordID int64, fileName, contentType string, size int64, file io.Reader, uploaderID int64) (*Payslip, error) {
	if contentType != PayslipContentType {
		return nil, internal.NewValidationError("payslip must be a PDF", internal.ErrCodeUnsupportedFile)
	}

	record, err := s.repo.GetRecordByID(recordID)
	if err != nil {
		return nil, internal.NewNotFoundError("payroll record not found", internal.ErrCodePayrollNotFound)
	}

	if err := os.MkdirAll(s.payslipDir, 0o755); err != nil {
		return nil, internal.NewInternalError("failed to prepare payslip directory", err)
	}

	storedName := fmt.Sprintf("payslip_%d_%04d%02d.pdf", record.ID, record.Year, record.Month)
	path := filepath.Join(s.payslipDir, storedName)

	out, err := os.Create(path)
	if err != nil {
		return nil, internal.NewInternalError("failed to create payslip file", err)
	}
	written, err := io.Copy(out, file)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return nil, internal.NewInternalError("failed to write payslip file", err)
	}
	if size > 0 && written != size {
		os.Remove(path)
		return nil, internal.NewInternalError("payslip upload truncated", nil)
	}

	payslip := &Payslip{
		PayrollRecordID: record.ID,
		FileName:        fileName,
		FilePath:        path,
		SizeBytes:       written,
		ContentType:     contentType,
		UploadedBy:      uploaderID,
	}
	if err := s.repo.SavePayslip(payslip); err != nil {
		os.Remove(path)
		return nil, internal.NewInternalError("failed to store payslip metadata", err)
	}

	s.logger.Info("payslip uploaded", "payroll_record_id", record.ID, "size_bytes", written)
	return payslip, nil
}

// Payslip returns the stored metadata for download; the handler streams
// the file from Payslip.FilePath.
func (s *Service) Payslip(recordID int64) (*Payslip, error) {
	payslip, err := s.repo.GetPayslipByRecordID(recordID)
	if err != nil {
		return nil, internal.NewNotFoundError("payslip not found", internal.ErrCodePayslipNotFound)
	}
	return payslip, nil
}
