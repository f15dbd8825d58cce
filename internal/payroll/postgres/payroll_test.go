package postgres

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/yeonholee/hr-payroll/internal/payroll"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestPayrollRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "PayrollRepository Suite")
}

type SQLiteEmployee struct {
	ID           int64  `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	DepartmentID *int64 `gorm:"column:department_id"`
	IsActive     bool   `gorm:"column:is_active"`
}

func (SQLiteEmployee) TableName() string {
	return "employees"
}

type SQLiteDepartment struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"not null"`
}

func (SQLiteDepartment) TableName() string {
	return "departments"
}

var _ = Describe("PayrollRepository", func() {
	var (
		db   *gorm.DB
		repo payroll.Repository
	)

	record := func(employeeID int64, year, month int, basePay int64) *payroll.Record {
		rec := &payroll.Record{
			EmployeeID: employeeID,
			Year:       year,
			Month:      month,
			BasePay:    basePay,
			IncomeTax:  basePay / 10,
		}
		rec.Recalculate()
		return rec
	}

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&payroll.Record{}, &payroll.Preview{}, &payroll.Payslip{}, &SQLiteEmployee{}, &SQLiteDepartment{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewPayrollRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).NotTo(HaveOccurred())
	})

	Describe("SaveRecords", func() {
		It("should persist a batch", func() {
			err := repo.SaveRecords([]*payroll.Record{
				record(1, 2026, 7, 3500000),
				record(2, 2026, 7, 4200000),
			})
			Expect(err).NotTo(HaveOccurred())

			records, err := repo.ListByMonth(2026, 7)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(2))
			Expect(records[0].EmployeeID).To(Equal(int64(1)))
		})

		It("should overwrite the same employee and month on re-upload", func() {
			Expect(repo.SaveRecords([]*payroll.Record{record(1, 2026, 7, 3500000)})).NotTo(HaveOccurred())
			Expect(repo.SaveRecords([]*payroll.Record{record(1, 2026, 7, 3800000)})).NotTo(HaveOccurred())

			records, err := repo.ListByMonth(2026, 7)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))
			Expect(records[0].BasePay).To(Equal(int64(3800000)))
			Expect(records[0].NetPay).To(Equal(int64(3420000)))
		})
	})

	Describe("GetRecord", func() {
		BeforeEach(func() {
			Expect(repo.SaveRecords([]*payroll.Record{record(1, 2026, 7, 3500000)})).NotTo(HaveOccurred())
		})

		It("should find a record by employee and period", func() {
			rec, err := repo.GetRecord(1, 2026, 7)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.BasePay).To(Equal(int64(3500000)))
		})

		It("should return the sentinel for a missing period", func() {
			_, err := repo.GetRecord(1, 2026, 8)
			Expect(err).To(MatchError(payroll.ErrRecordNotFound))
		})

		It("should return the sentinel for an unknown id", func() {
			_, err := repo.GetRecordByID(999)
			Expect(err).To(MatchError(payroll.ErrRecordNotFound))
		})
	})

	Describe("ListByEmployee", func() {
		BeforeEach(func() {
			Expect(repo.SaveRecords([]*payroll.Record{
				record(1, 2025, 12, 3400000),
				record(1, 2026, 1, 3500000),
				record(1, 2026, 2, 3500000),
				record(2, 2026, 1, 4200000),
			})).NotTo(HaveOccurred())
		})

		It("should filter by year, newest first", func() {
			records, err := repo.ListByEmployee(1, 2026)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(2))
			Expect(records[0].Month).To(Equal(2))
		})

		It("should return all years when no year is given", func() {
			records, err := repo.ListByEmployee(1, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(3))
			Expect(records[0].Year).To(Equal(2026))
		})
	})

	Describe("Previews", func() {
		newPreview := func(token string, key *string) *payroll.Preview {
			return &payroll.Preview{
				Token:          token,
				Year:           2026,
				Month:          7,
				RowsJSON:       "[]",
				RowCount:       1,
				Status:         payroll.PreviewStatusPending,
				IdempotencyKey: key,
				CreatedBy:      1,
				ExpiresAt:      time.Now().Add(10 * time.Minute),
			}
		}

		It("should round-trip a preview by token", func() {
			Expect(repo.CreatePreview(newPreview("tok-1", nil))).NotTo(HaveOccurred())

			preview, err := repo.GetPreviewByToken("tok-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(preview.RowCount).To(Equal(1))
		})

		It("should return the sentinel for an unknown token", func() {
			_, err := repo.GetPreviewByToken("missing")
			Expect(err).To(MatchError(payroll.ErrPreviewNotFound))
		})

		It("should find a preview by idempotency key", func() {
			key := "retry-key"
			Expect(repo.CreatePreview(newPreview("tok-1", &key))).NotTo(HaveOccurred())

			_, err := repo.GetPreviewByIdempotencyKey("retry-key")
			Expect(err).NotTo(HaveOccurred())

			_, err = repo.GetPreviewByIdempotencyKey("other-key")
			Expect(err).To(MatchError(payroll.ErrPreviewNotFound))
		})

		It("should persist consumption", func() {
			Expect(repo.CreatePreview(newPreview("tok-1", nil))).NotTo(HaveOccurred())
			preview, err := repo.GetPreviewByToken("tok-1")
			Expect(err).NotTo(HaveOccurred())

			now := time.Now()
			preview.Status = payroll.PreviewStatusConfirmed
			preview.ConfirmedAt = &now
			Expect(repo.UpdatePreview(preview)).NotTo(HaveOccurred())

			found, err := repo.GetPreviewByToken("tok-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(found.Status).To(Equal(payroll.PreviewStatusConfirmed))
			Expect(found.ConfirmedAt).NotTo(BeNil())
		})
	})

	Describe("MonthlySummary", func() {
		BeforeEach(func() {
			sales := int64(1)
			Expect(db.Create(&SQLiteDepartment{ID: 1, Name: "영업팀"}).Error).NotTo(HaveOccurred())
			Expect(db.Create(&SQLiteEmployee{ID: 1, Name: "김관리", DepartmentID: &sales, IsActive: true}).Error).NotTo(HaveOccurred())
			Expect(db.Create(&SQLiteEmployee{ID: 2, Name: "이인사", DepartmentID: &sales, IsActive: true}).Error).NotTo(HaveOccurred())
			Expect(db.Create(&SQLiteEmployee{ID: 3, Name: "박신입", IsActive: true}).Error).NotTo(HaveOccurred())

			Expect(repo.SaveRecords([]*payroll.Record{
				record(1, 2026, 7, 3500000),
				record(2, 2026, 7, 4200000),
				record(3, 2026, 7, 3000000),
				record(1, 2026, 6, 3500000),
			})).NotTo(HaveOccurred())
		})

		It("should aggregate the month per department", func() {
			summary, err := repo.MonthlySummary(2026, 7)
			Expect(err).NotTo(HaveOccurred())
			Expect(summary).To(HaveLen(2))

			Expect(summary[0].DepartmentName).To(Equal("Unassigned"))
			Expect(summary[0].EmployeeCount).To(Equal(int64(1)))
			Expect(summary[0].TotalGross).To(Equal(int64(3000000)))

			Expect(summary[1].DepartmentName).To(Equal("영업팀"))
			Expect(summary[1].EmployeeCount).To(Equal(int64(2)))
			Expect(summary[1].TotalGross).To(Equal(int64(7700000)))
			Expect(summary[1].TotalNet).To(Equal(int64(6930000)))
		})
	})

	Describe("Payslips", func() {
		BeforeEach(func() {
			Expect(repo.SaveRecords([]*payroll.Record{record(1, 2026, 7, 3500000)})).NotTo(HaveOccurred())
		})

		It("should upsert on the record id", func() {
			records, err := repo.ListByMonth(2026, 7)
			Expect(err).NotTo(HaveOccurred())
			recordID := records[0].ID

			Expect(repo.SavePayslip(&payroll.Payslip{
				PayrollRecordID: recordID,
				FileName:        "payslip_v1.pdf",
				FilePath:        "/tmp/payslip_v1.pdf",
				SizeBytes:       1024,
				ContentType:     "application/pdf",
				UploadedBy:      1,
			})).NotTo(HaveOccurred())
			Expect(repo.SavePayslip(&payroll.Payslip{
				PayrollRecordID: recordID,
				FileName:        "payslip_v2.pdf",
				FilePath:        "/tmp/payslip_v2.pdf",
				SizeBytes:       2048,
				ContentType:     "application/pdf",
				UploadedBy:      1,
			})).NotTo(HaveOccurred())

			payslip, err := repo.GetPayslipByRecordID(recordID)
			Expect(err).NotTo(HaveOccurred())
			Expect(payslip.FileName).To(Equal("payslip_v2.pdf"))

			var count int64
			Expect(db.Model(&payroll.Payslip{}).Count(&count).Error).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(1)))
		})

		It("should return the sentinel when no payslip was uploaded", func() {
			_, err := repo.GetPayslipByRecordID(999)
			Expect(err).To(MatchError(payroll.ErrPayslipNotFound))
		})
	})
})
