package payroll

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/yeonholee/hr-payroll/internal"
	"github.com/yeonholee/hr-payroll/internal/auth"
	"github.com/yeonholee/hr-payroll/internal/transport"
	"github.com/yeonholee/hr-payroll/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Preview(uploaderID int64, year, month int, file io.Reader) (*PreviewResult, error)
	Confirm(uploaderID int64, dto ConfirmDTO) (*ConfirmResult, error)
	GetRecord(id int64) (*Record, error)
	ListMonth(year, month int) ([]*Record, error)
	ListEmployee(employeeID int64, year int) ([]*Record, error)
	MonthlySummary(year, month int) ([]*MonthlySummary, error)
	UploadPayslip(recordID int64, fileName, contentType string, size int64, file io.Reader, uploaderID int64) (*Payslip, error)
	Payslip(recordID int64) (*Payslip, error)
}

type Handler struct {
	*transport.BaseHandler
	Service         ServiceAPI
	excelMaxBytes   int64
	payslipMaxBytes int64
}

func NewHandler(service ServiceAPI, excelMaxBytes, payslipMaxBytes int64) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler:     transport.NewBaseHandler(lg),
		Service:         service,
		excelMaxBytes:   excelMaxBytes,
		payslipMaxBytes: payslipMaxBytes,
	}
}

// PreviewUpload handles the first phase of the bulk upload: multipart form
// with "file" (.xlsx), "year" and "month" fields.
func (h *Handler) PreviewUpload(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.excelMaxBytes)
	if err := r.ParseMultipartForm(h.excelMaxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.HandleServiceError(w, internal.NewPayloadTooLargeError("file exceeds the upload limit", internal.ErrCodeFileTooLarge))
			return
		}
		h.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	year, _ := strconv.Atoi(r.FormValue("year"))
	month, _ := strconv.Atoi(r.FormValue("month"))

	file, header, err := r.FormFile("file")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	if header.Size > h.excelMaxBytes {
		h.HandleServiceError(w, internal.NewPayloadTooLargeError("file exceeds the upload limit", internal.ErrCodeFileTooLarge))
		return
	}

	result, err := h.Service.Preview(user.ID, year, month, file)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto ConfirmDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.Confirm(user.ID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid record ID")
		return
	}

	record, err := h.Service.GetRecord(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if record.EmployeeID != user.ID && !user.HasAnyPermission(auth.PermAdmin, auth.PermViewAllPayroll, auth.PermManagePayroll) {
		h.WriteError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	h.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) ListMonth(w http.ResponseWriter, r *http.Request) {
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	month, _ := strconv.Atoi(r.URL.Query().Get("month"))
	if year == 0 || month == 0 {
		h.WriteError(w, http.StatusBadRequest, "year and month are required")
		return
	}

	records, err := h.Service.ListMonth(year, month)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"records": records})
}

// ListMine returns the calling employee's own payroll history.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	records, err := h.Service.ListEmployee(user.ID, year)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"records": records})
}

func (h *Handler) MonthlySummary(w http.ResponseWriter, r *http.Request) {
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	month, _ := strconv.Atoi(r.URL.Query().Get("month"))
	if year == 0 || month == 0 {
		h.WriteError(w, http.StatusBadRequest, "year and month are required")
		return
	}

	summary, err := h.Service.MonthlySummary(year, month)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"summary": summary})
}

func (h *Handler) UploadPayslip(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	recordID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid record ID")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.payslipMaxBytes)
	if err := r.ParseMultipartForm(h.payslipMaxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.HandleServiceError(w, internal.NewPayloadTooLargeError("file exceeds the upload limit", internal.ErrCodeFileTooLarge))
			return
		}
		h.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	payslip, err := h.Service.UploadPayslip(recordID, header.Filename, contentType, header.Size, file, user.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, payslip)
}

// DownloadPayslip streams the stored PDF. Employees can fetch their own
// payslip; payroll staff can fetch any.
func (h *Handler) DownloadPayslip(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	recordID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid record ID")
		return
	}

	record, err := h.Service.GetRecord(recordID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if record.EmployeeID != user.ID && !user.HasAnyPermission(auth.PermAdmin, auth.PermViewAllPayroll, auth.PermManagePayroll) {
		h.WriteError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	payslip, err := h.Service.Payslip(recordID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	f, err := os.Open(payslip.FilePath)
	if err != nil {
		h.Logger.Error("payslip file missing on disk", "path", payslip.FilePath, "error", err)
		h.WriteError(w, http.StatusInternalServerError, "payslip file unavailable")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", payslip.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+payslip.FileName+`"`)
	w.Header().Set("Content-Length", strconv.FormatInt(payslip.SizeBytes, 10))
	io.Copy(w, f)
}
