package employee_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/yeonholee/hr-payroll/internal"
	"github.com/yeonholee/hr-payroll/internal/employee"
)

func TestEmployeeService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Employee Service Suite")
}

// MockRepository implements employee.Repository for testing
type MockRepository struct {
	employees  map[int64]*employee.Employee
	withPay    map[int64]bool
	nextID     int64
	shouldFail bool
	failError  error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		employees: make(map[int64]*employee.Employee),
		withPay:   make(map[int64]bool),
		nextID:    1,
	}
}

func (m *MockRepository) Create(emp *employee.Employee) error {
	if m.shouldFail {
		return m.failError
	}
	emp.ID = m.nextID
	m.nextID++
	m.employees[emp.ID] = emp
	return nil
}

func (m *MockRepository) GetByID(id int64) (*employee.Employee, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	emp, ok := m.employees[id]
	if !ok {
		return nil, errors.New("employee not found")
	}
	return emp, nil
}

func (m *MockRepository) GetByEmployeeNumber(number string) (*employee.Employee, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	for _, emp := range m.employees {
		if emp.EmployeeNumber == number {
			return emp, nil
		}
	}
	return nil, errors.New("employee not found")
}

func (m *MockRepository) List(filter employee.ListFilter) ([]*employee.Employee, int64, error) {
	if m.shouldFail {
		return nil, 0, m.failError
	}
	var result []*employee.Employee
	for _, emp := range m.employees {
		if filter.Status != "" && emp.EmploymentStatus != filter.Status {
			continue
		}
		if filter.DepartmentID != nil && (emp.DepartmentID == nil || *emp.DepartmentID != *filter.DepartmentID) {
			continue
		}
		result = append(result, emp)
	}
	return result, int64(len(result)), nil
}

func (m *MockRepository) Update(emp *employee.Employee) error {
	if m.shouldFail {
		return m.failError
	}
	m.employees[emp.ID] = emp
	return nil
}

func (m *MockRepository) Delete(id int64) error {
	if m.shouldFail {
		return m.failError
	}
	delete(m.employees, id)
	return nil
}

func (m *MockRepository) HasPayrollRecords(id int64) (bool, error) {
	if m.shouldFail {
		return false, m.failError
	}
	return m.withPay[id], nil
}

type MockHasher struct{}

func (MockHasher) HashPassword(password string) (string, error) {
	return "hashed:" + password, nil
}

var _ = Describe("Employee Service", func() {
	var (
		mockRepo *MockRepository
		service  *employee.Service
	)

	hireDate := time.Date(2021, time.March, 2, 0, 0, 0, 0, time.UTC)

	validDTO := func() employee.CreateEmployeeDTO {
		return employee.CreateEmployeeDTO{
			EmployeeNumber: "EMP010",
			Email:          "hong@company.kr",
			Name:           "홍길동",
			Password:       "initial-password",
			HireDate:       hireDate,
			BaseSalary:     3_500_000,
		}
	}

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = employee.NewService(mockRepo, MockHasher{}, logger)
	})

	Describe("CreateEmployee", func() {
		It("should create an active employee with a hashed password", func() {
			emp, err := service.CreateEmployee(validDTO())

			Expect(err).NotTo(HaveOccurred())
			Expect(emp.ID).NotTo(BeZero())
			Expect(emp.IsActive).To(BeTrue())
			Expect(emp.EmploymentStatus).To(Equal(employee.StatusActive))
			Expect(emp.PasswordHash).To(Equal("hashed:initial-password"))
		})

		It("should reject a duplicate employee number", func() {
			_, err := service.CreateEmployee(validDTO())
			Expect(err).NotTo(HaveOccurred())

			dto := validDTO()
			dto.Email = "other@company.kr"
			_, err = service.CreateEmployee(dto)

			Expect(err).To(HaveOccurred())
			var app *internal.AppError
			Expect(errors.As(err, &app)).To(BeTrue())
			Expect(app.Code).To(Equal(internal.ErrCodeDuplicateEmployee))
		})

		It("should reject a short password", func() {
			dto := validDTO()
			dto.Password = "short"
			_, err := service.CreateEmployee(dto)
			Expect(err).To(HaveOccurred())
		})

		It("should reject a missing hire date", func() {
			dto := validDTO()
			dto.HireDate = time.Time{}
			_, err := service.CreateEmployee(dto)
			Expect(err).To(HaveOccurred())
		})

		It("should reject an invalid email", func() {
			dto := validDTO()
			dto.Email = "not-an-email"
			_, err := service.CreateEmployee(dto)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("UpdateEmployee", func() {
		var empID int64

		BeforeEach(func() {
			emp, err := service.CreateEmployee(validDTO())
			Expect(err).NotTo(HaveOccurred())
			empID = emp.ID
		})

		It("should apply partial updates", func() {
			salary := int64(4_000_000)
			updated, err := service.UpdateEmployee(empID, employee.UpdateEmployeeDTO{BaseSalary: &salary})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.BaseSalary).To(Equal(salary))
			Expect(updated.Name).To(Equal("홍길동"))
		})

		It("should mark a resigned employee inactive", func() {
			status := employee.StatusResigned
			updated, err := service.UpdateEmployee(empID, employee.UpdateEmployeeDTO{EmploymentStatus: &status})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.IsActive).To(BeFalse())
			Expect(updated.ResignedAt).NotTo(BeNil())
		})

		It("should reject an unknown status", func() {
			status := "fired"
			_, err := service.UpdateEmployee(empID, employee.UpdateEmployeeDTO{EmploymentStatus: &status})
			Expect(err).To(HaveOccurred())
		})

		It("should return not found for a missing employee", func() {
			name := "없는사람"
			_, err := service.UpdateEmployee(999, employee.UpdateEmployeeDTO{Name: &name})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("DeactivateEmployee", func() {
		It("should hard-delete an employee without payroll history", func() {
			emp, err := service.CreateEmployee(validDTO())
			Expect(err).NotTo(HaveOccurred())

			Expect(service.DeactivateEmployee(emp.ID)).To(Succeed())

			_, err = service.GetEmployee(emp.ID)
			Expect(err).To(HaveOccurred())
		})

		It("should keep the record but flip it inactive", func() {
			emp, err := service.CreateEmployee(validDTO())
			Expect(err).NotTo(HaveOccurred())
			mockRepo.withPay[emp.ID] = true

			Expect(service.DeactivateEmployee(emp.ID)).To(Succeed())

			stored, err := service.GetEmployee(emp.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.IsActive).To(BeFalse())
			Expect(stored.EmploymentStatus).To(Equal(employee.StatusResigned))
		})
	})

	Describe("GetEmployeeByNumber", func() {
		It("should resolve the employee number", func() {
			created, err := service.CreateEmployee(validDTO())
			Expect(err).NotTo(HaveOccurred())

			emp, err := service.GetEmployeeByNumber("EMP010")
			Expect(err).NotTo(HaveOccurred())
			Expect(emp.ID).To(Equal(created.ID))
		})

		It("should return not found for an unknown number", func() {
			_, err := service.GetEmployeeByNumber("EMP999")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ListEmployees", func() {
		It("should clamp an out-of-range limit", func() {
			_, _, err := service.ListEmployees(employee.ListFilter{Limit: 5000})
			Expect(err).NotTo(HaveOccurred())
		})
	})
})

var _ = Describe("Employee", func() {
	Describe("YearsOfService", func() {
		emp := &employee.Employee{
			HireDate: time.Date(2020, time.July, 15, 0, 0, 0, 0, time.UTC),
		}

		It("should count full years only", func() {
			Expect(emp.YearsOfService(time.Date(2026, time.July, 14, 0, 0, 0, 0, time.UTC))).To(Equal(5))
			Expect(emp.YearsOfService(time.Date(2026, time.July, 15, 0, 0, 0, 0, time.UTC))).To(Equal(6))
		})

		It("should never go negative", func() {
			Expect(emp.YearsOfService(time.Date(2019, time.January, 1, 0, 0, 0, 0, time.UTC))).To(BeZero())
		})
	})
})
