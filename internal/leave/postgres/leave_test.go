package postgres

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/yeonholee/hr-payroll/internal/leave"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestLeaveRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "LeaveRepository Suite")
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

var _ = Describe("LeaveRepository", func() {
	var (
		db   *gorm.DB
		repo leave.Repository
	)

	day := func(month time.Month, d int) time.Time {
		return time.Date(2026, month, d, 0, 0, 0, 0, time.UTC)
	}

	seedEmployee := func(id int64, name string, departmentID int64, active bool) {
		emp := SQLiteEmployee{ID: id, Name: name, IsActive: active}
		if departmentID > 0 {
			emp.DepartmentID = &departmentID
		}
		Expect(db.Create(&emp).Error).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&leave.Request{}, &leave.Balance{}, &SQLiteEmployee{}, &SQLiteDepartment{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewLeaveRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).NotTo(HaveOccurred())
	})

	Describe("CreateRequest", func() {
		It("should persist a request and read it back by id", func() {
			req := &leave.Request{
				EmployeeID: 10,
				LeaveType:  leave.TypeAnnual,
				StartDate:  day(time.March, 2),
				EndDate:    day(time.March, 4),
				Days:       3,
				Status:     leave.StatusPending,
			}

			Expect(repo.CreateRequest(req)).NotTo(HaveOccurred())
			Expect(req.ID).NotTo(BeZero())

			found, err := repo.GetRequestByID(req.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.EmployeeID).To(Equal(int64(10)))
			Expect(found.Days).To(Equal(3.0))
		})

		It("should return the sentinel for an unknown id", func() {
			_, err := repo.GetRequestByID(999)
			Expect(err).To(MatchError(leave.ErrRequestNotFound))
		})
	})

	Describe("GetRequestsByEmployee", func() {
		BeforeEach(func() {
			for _, r := range []*leave.Request{
				{EmployeeID: 10, LeaveType: leave.TypeAnnual, StartDate: day(time.March, 2), EndDate: day(time.March, 2), Days: 1, Status: leave.StatusApproved},
				{EmployeeID: 10, LeaveType: leave.TypeAnnual, StartDate: time.Date(2025, time.July, 7, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2025, time.July, 7, 0, 0, 0, 0, time.UTC), Days: 1, Status: leave.StatusApproved},
				{EmployeeID: 11, LeaveType: leave.TypeSick, StartDate: day(time.March, 3), EndDate: day(time.March, 3), Days: 1, Status: leave.StatusPending},
			} {
				Expect(repo.CreateRequest(r)).NotTo(HaveOccurred())
			}
		})

		It("should filter by employee and year", func() {
			requests, err := repo.GetRequestsByEmployee(10, 2026)
			Expect(err).NotTo(HaveOccurred())
			Expect(requests).To(HaveLen(1))
			Expect(requests[0].StartDate.Year()).To(Equal(2026))
		})

		It("should return all years when no year is given", func() {
			requests, err := repo.GetRequestsByEmployee(10, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(requests).To(HaveLen(2))
		})
	})

	Describe("HasOverlap", func() {
		BeforeEach(func() {
			Expect(repo.CreateRequest(&leave.Request{
				EmployeeID: 10,
				LeaveType:  leave.TypeAnnual,
				StartDate:  day(time.March, 2),
				EndDate:    day(time.March, 4),
				Days:       3,
				Status:     leave.StatusApproved,
			})).NotTo(HaveOccurred())
		})

		It("should detect an intersecting range", func() {
			overlap, err := repo.HasOverlap(10, day(time.March, 4), day(time.March, 6))
			Expect(err).NotTo(HaveOccurred())
			Expect(overlap).To(BeTrue())
		})

		It("should ignore disjoint ranges", func() {
			overlap, err := repo.HasOverlap(10, day(time.March, 9), day(time.March, 10))
			Expect(err).NotTo(HaveOccurred())
			Expect(overlap).To(BeFalse())
		})

		It("should ignore other employees", func() {
			overlap, err := repo.HasOverlap(11, day(time.March, 2), day(time.March, 4))
			Expect(err).NotTo(HaveOccurred())
			Expect(overlap).To(BeFalse())
		})

		It("should ignore rejected and cancelled requests", func() {
			Expect(db.Model(&leave.Request{}).Where("employee_id = ?", 10).
				Update("status", leave.StatusRejected).Error).NotTo(HaveOccurred())

			overlap, err := repo.HasOverlap(10, day(time.March, 2), day(time.March, 4))
			Expect(err).NotTo(HaveOccurred())
			Expect(overlap).To(BeFalse())
		})
	})

	Describe("Balances", func() {
		It("should return the sentinel before the year is initialized", func() {
			_, err := repo.GetBalance(10, 2026)
			Expect(err).To(MatchError(leave.ErrBalanceNotFound))
		})

		It("should create and update a balance", func() {
			balance := &leave.Balance{EmployeeID: 10, Year: 2026, TotalDays: 15}
			Expect(repo.CreateBalance(balance)).NotTo(HaveOccurred())

			balance.PendingDays = 2
			Expect(repo.UpdateBalance(balance)).NotTo(HaveOccurred())

			found, err := repo.GetBalance(10, 2026)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.PendingDays).To(Equal(2.0))
			Expect(found.Remaining()).To(Equal(13.0))
		})
	})

	Describe("TeamStatus", func() {
		BeforeEach(func() {
			Expect(db.Create(&SQLiteDepartment{ID: 1, Name: "영업팀"}).Error).NotTo(HaveOccurred())
			seedEmployee(10, "최영업", 1, true)
			seedEmployee(11, "박개발", 2, true)

			for _, r := range []*leave.Request{
				{EmployeeID: 10, LeaveType: leave.TypeAnnual, StartDate: day(time.March, 2), EndDate: day(time.March, 4), Days: 3, Status: leave.StatusApproved},
				{EmployeeID: 10, LeaveType: leave.TypeAnnual, StartDate: day(time.June, 1), EndDate: day(time.June, 1), Days: 1, Status: leave.StatusRejected},
				{EmployeeID: 11, LeaveType: leave.TypeAnnual, StartDate: day(time.March, 3), EndDate: day(time.March, 3), Days: 1, Status: leave.StatusPending},
			} {
				Expect(repo.CreateRequest(r)).NotTo(HaveOccurred())
			}
		})

		It("should list pending and approved requests for the department only", func() {
			entries, err := repo.TeamStatus(1, time.Time{}, time.Time{})
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].EmployeeName).To(Equal("최영업"))
			Expect(entries[0].Status).To(Equal(leave.StatusApproved))
		})

		It("should apply the date window", func() {
			entries, err := repo.TeamStatus(1, day(time.April, 1), day(time.April, 30))
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(BeEmpty())
		})
	})

	Describe("DepartmentStats", func() {
		BeforeEach(func() {
			Expect(db.Create(&SQLiteDepartment{ID: 1, Name: "영업팀"}).Error).NotTo(HaveOccurred())
			Expect(db.Create(&SQLiteDepartment{ID: 2, Name: "개발팀"}).Error).NotTo(HaveOccurred())
			seedEmployee(10, "최영업", 1, true)
			seedEmployee(11, "박개발", 2, true)
			seedEmployee(12, "김퇴사", 1, false)

			Expect(repo.CreateBalance(&leave.Balance{EmployeeID: 10, Year: 2026, TotalDays: 16, UsedDays: 4})).NotTo(HaveOccurred())
			Expect(repo.CreateBalance(&leave.Balance{EmployeeID: 11, Year: 2026, TotalDays: 15})).NotTo(HaveOccurred())
			Expect(repo.CreateBalance(&leave.Balance{EmployeeID: 10, Year: 2025, TotalDays: 15, UsedDays: 15})).NotTo(HaveOccurred())
		})

		It("should aggregate active employees per department for the year", func() {
			stats, err := repo.DepartmentStats(2026)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats).To(HaveLen(2))

			Expect(stats[0].DepartmentName).To(Equal("개발팀"))
			Expect(stats[0].TotalDays).To(Equal(15.0))

			Expect(stats[1].DepartmentName).To(Equal("영업팀"))
			Expect(stats[1].EmployeeCount).To(Equal(int64(1)))
			Expect(stats[1].TotalDays).To(Equal(16.0))
			Expect(stats[1].UsedDays).To(Equal(4.0))
		})
	})
})
