package incentive_test

import (
	"context"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/yeonholee/hr-payroll/internal/core/events"
	"github.com/yeonholee/hr-payroll/internal/incentive"
)

// MockRepository implements incentive.Repository for testing
type MockRepository struct {
	formulas map[int64]*incentive.Formula
	sales    map[int64]*incentive.SalesRecord
	rows     []incentive.SalesRow
	nextID   int64
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		formulas: make(map[int64]*incentive.Formula),
		sales:    make(map[int64]*incentive.SalesRecord),
		nextID:   1,
	}
}

func (m *MockRepository) CreateFormula(formula *incentive.Formula) error {
	formula.ID = m.nextID
	m.nextID++
	m.formulas[formula.ID] = formula
	return nil
}

func (m *MockRepository) GetFormulaByID(id int64) (*incentive.Formula, error) {
	formula, ok := m.formulas[id]
	if !ok {
		return nil, incentive.ErrFormulaNotFound
	}
	return formula, nil
}

func (m *MockRepository) ListFormulas(activeOnly bool) ([]*incentive.Formula, error) {
	var result []*incentive.Formula
	for _, f := range m.formulas {
		if activeOnly && !f.IsActive {
			continue
		}
		result = append(result, f)
	}
	return result, nil
}

func (m *MockRepository) UpdateFormula(formula *incentive.Formula) error {
	m.formulas[formula.ID] = formula
	return nil
}

func (m *MockRepository) DeleteFormula(id int64) error {
	delete(m.formulas, id)
	return nil
}

func (m *MockRepository) CreateSales(record *incentive.SalesRecord) error {
	record.ID = m.nextID
	m.nextID++
	m.sales[record.ID] = record
	return nil
}

func (m *MockRepository) GetSalesByID(id int64) (*incentive.SalesRecord, error) {
	record, ok := m.sales[id]
	if !ok {
		return nil, incentive.ErrSalesNotFound
	}
	return record, nil
}

func (m *MockRepository) GetSales(employeeID int64, year, month int) (*incentive.SalesRecord, error) {
	for _, record := range m.sales {
		if record.EmployeeID == employeeID && record.Year == year && record.Month == month {
			return record, nil
		}
	}
	return nil, incentive.ErrSalesNotFound
}

func (m *MockRepository) ListSales(year, month int) ([]*incentive.SalesRecord, error) {
	var result []*incentive.SalesRecord
	for _, record := range m.sales {
		if record.Year == year && record.Month == month {
			result = append(result, record)
		}
	}
	return result, nil
}

func (m *MockRepository) UpdateSales(record *incentive.SalesRecord) error {
	m.sales[record.ID] = record
	return nil
}

func (m *MockRepository) DeleteSales(id int64) error {
	delete(m.sales, id)
	return nil
}

func (m *MockRepository) SalesRows(year, month int, departmentID *int64) ([]incentive.SalesRow, error) {
	return m.rows, nil
}

type MockBus struct {
	published []events.Event
}

func (m *MockBus) Publish(ctx context.Context, event events.Event) error {
	m.published = append(m.published, event)
	return nil
}

const serviceFormula = "sales_amount > target_amount" +
	" ? (sales_amount - target_amount) * bonus_rate + target_amount * base_rate" +
	" : sales_amount * base_rate"

var _ = Describe("Incentive Service", func() {
	var (
		mockRepo  *MockRepository
		engine    *incentive.Engine
		simulator *incentive.Simulator
		bus       *MockBus
		service   *incentive.Service
	)

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		var err error
		engine, err = incentive.NewEngine()
		Expect(err).NotTo(HaveOccurred())
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		simulator = incentive.NewSimulator(engine, incentive.SimulatorConfig{MaxWorkers: 4, EvalTimeout: 5 * time.Second}, logger)
		bus = &MockBus{}
		service = incentive.NewService(mockRepo, engine, simulator, bus, logger)
	})

	AfterEach(func() {
		simulator.Shutdown()
	})

	Describe("CreateFormula", func() {
		It("should store a formula that compiles", func() {
			formula, err := service.CreateFormula(1, incentive.CreateFormulaDTO{
				Name:       "영업 인센티브 기본",
				Expression: serviceFormula,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(formula.ID).NotTo(BeZero())
			Expect(formula.IsActive).To(BeTrue())
		})

		It("should reject a formula that does not compile", func() {
			_, err := service.CreateFormula(1, incentive.CreateFormulaDTO{
				Name:       "broken",
				Expression: "sales_amount *",
			})

			Expect(err).To(HaveOccurred())
		})

		It("should require a name", func() {
			_, err := service.CreateFormula(1, incentive.CreateFormulaDTO{
				Expression: "sales_amount * 0.02",
			})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("UpdateFormula", func() {
		var formulaID int64

		BeforeEach(func() {
			formula, err := service.CreateFormula(1, incentive.CreateFormulaDTO{
				Name:       "base",
				Expression: "sales_amount * base_rate",
			})
			Expect(err).NotTo(HaveOccurred())
			formulaID = formula.ID
		})

		It("should re-validate a replaced expression", func() {
			bad := "sales_amount >"
			_, err := service.UpdateFormula(formulaID, incentive.UpdateFormulaDTO{Expression: &bad})
			Expect(err).To(HaveOccurred())
		})

		It("should apply partial updates", func() {
			inactive := false
			updated, err := service.UpdateFormula(formulaID, incentive.UpdateFormulaDTO{IsActive: &inactive})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.IsActive).To(BeFalse())
			Expect(updated.Expression).To(Equal("sales_amount * base_rate"))
		})
	})

	Describe("ValidateExpression", func() {
		It("should attach a sample evaluation to a valid expression", func() {
			result := service.ValidateExpression(incentive.ValidateDTO{Expression: serviceFormula})

			Expect(result.Valid).To(BeTrue())
			Expect(result.SampleBindings).NotTo(BeEmpty())
			// sample: 20M over target at 5% plus 100M at 2%
			Expect(result.SampleAmount).To(Equal(int64(3_000_000)))
		})

		It("should report compile errors without a sample", func() {
			result := service.ValidateExpression(incentive.ValidateDTO{Expression: "nonsense_var * 2.0"})

			Expect(result.Valid).To(BeFalse())
			Expect(result.Error).NotTo(BeEmpty())
			Expect(result.SampleBindings).To(BeEmpty())
		})
	})

	Describe("Simulate", func() {
		It("should evaluate an ad-hoc expression with a branch breakdown", func() {
			result, err := service.Simulate(incentive.SimulateDTO{
				Expression: serviceFormula,
				Bindings: map[string]float64{
					incentive.VarSalesAmount:  150_000_000,
					incentive.VarTargetAmount: 100_000_000,
					incentive.VarBaseRate:     0.02,
					incentive.VarBonusRate:    0.05,
				},
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Amount).To(Equal(int64(4_500_000)))
			Expect(result.MatchedBranch).To(Equal("then"))
		})

		It("should derive the achievement rate when not supplied", func() {
			result, err := service.Simulate(incentive.SimulateDTO{
				Expression: "achievement_rate * 1000000.0",
				Bindings: map[string]float64{
					incentive.VarSalesAmount:  120_000_000,
					incentive.VarTargetAmount: 100_000_000,
				},
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Amount).To(Equal(int64(1_200_000)))
		})

		It("should resolve a stored formula by id", func() {
			formula, err := service.CreateFormula(1, incentive.CreateFormulaDTO{
				Name:       "stored",
				Expression: "sales_amount * base_rate",
			})
			Expect(err).NotTo(HaveOccurred())

			result, err := service.Simulate(incentive.SimulateDTO{
				FormulaID: formula.ID,
				Bindings: map[string]float64{
					incentive.VarSalesAmount: 50_000_000,
					incentive.VarBaseRate:    0.02,
				},
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Amount).To(Equal(int64(1_000_000)))
		})

		It("should require a formula id or an expression", func() {
			_, err := service.Simulate(incentive.SimulateDTO{})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("BatchSimulate", func() {
		var formulaID int64

		BeforeEach(func() {
			formula, err := service.CreateFormula(1, incentive.CreateFormulaDTO{
				Name:       "batch",
				Expression: serviceFormula,
			})
			Expect(err).NotTo(HaveOccurred())
			formulaID = formula.ID

			mockRepo.rows = []incentive.SalesRow{
				{SalesRecordID: 1, EmployeeID: 4, EmployeeName: "최영업", SalesAmount: 120_000_000, TargetAmount: 100_000_000},
				{SalesRecordID: 2, EmployeeID: 5, EmployeeName: "정개발", SalesAmount: 80_000_000, TargetAmount: 100_000_000},
			}
		})

		It("should evaluate every row in input order", func() {
			result, err := service.BatchSimulate(context.Background(), incentive.BatchSimulateDTO{
				FormulaID: formulaID,
				Year:      2026,
				Month:     7,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Rows).To(HaveLen(2))
			Expect(result.Rows[0].EmployeeID).To(Equal(int64(4)))
			Expect(result.Rows[0].Amount).To(Equal(int64(3_000_000)))
			Expect(result.Rows[1].EmployeeID).To(Equal(int64(5)))
			Expect(result.Rows[1].Amount).To(Equal(int64(1_600_000)))
			Expect(result.Evaluated).To(Equal(2))
			Expect(result.Failed).To(BeZero())
			Expect(result.TotalAmount).To(Equal(int64(4_600_000)))
		})

		It("should honor request-level rate overrides", func() {
			result, err := service.BatchSimulate(context.Background(), incentive.BatchSimulateDTO{
				FormulaID: formulaID,
				Year:      2026,
				Month:     7,
				BaseRate:  0.03,
				BonusRate: 0.10,
			})

			Expect(err).NotTo(HaveOccurred())
			// 20M * 0.10 + 100M * 0.03
			Expect(result.Rows[0].Amount).To(Equal(int64(5_000_000)))
		})

		It("should isolate row failures without aborting the batch", func() {
			formula, err := service.CreateFormula(1, incentive.CreateFormulaDTO{
				Name:       "subtract",
				Expression: "sales_amount - target_amount",
			})
			Expect(err).NotTo(HaveOccurred())

			result, err := service.BatchSimulate(context.Background(), incentive.BatchSimulateDTO{
				FormulaID: formula.ID,
				Year:      2026,
				Month:     7,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Evaluated).To(Equal(1))
			Expect(result.Failed).To(Equal(1))
			Expect(result.Rows[1].Error).To(ContainSubstring("negative"))
			Expect(result.TotalAmount).To(Equal(int64(20_000_000)))
		})

		It("should publish a batch finished event", func() {
			_, err := service.BatchSimulate(context.Background(), incentive.BatchSimulateDTO{
				FormulaID: formulaID,
				Year:      2026,
				Month:     7,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(bus.published).To(HaveLen(1))
			Expect(bus.published[0].EventType()).To(Equal(events.EventIncentiveBatchFinished))
		})

		It("should refuse an inactive formula", func() {
			inactive := false
			_, err := service.UpdateFormula(formulaID, incentive.UpdateFormulaDTO{IsActive: &inactive})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.BatchSimulate(context.Background(), incentive.BatchSimulateDTO{
				FormulaID: formulaID,
				Year:      2026,
				Month:     7,
			})
			Expect(err).To(HaveOccurred())
		})

		It("should return an empty result for a period with no sales", func() {
			mockRepo.rows = nil

			result, err := service.BatchSimulate(context.Background(), incentive.BatchSimulateDTO{
				FormulaID: formulaID,
				Year:      2026,
				Month:     7,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Rows).To(BeEmpty())
			Expect(result.Evaluated).To(BeZero())
		})
	})

	Describe("Sales records", func() {
		It("should create a sales record", func() {
			record, err := service.CreateSales(incentive.CreateSalesDTO{
				EmployeeID:   4,
				Year:         2026,
				Month:        7,
				SalesAmount:  120_000_000,
				TargetAmount: 100_000_000,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(record.ID).NotTo(BeZero())
		})

		It("should reject a second record for the same period", func() {
			dto := incentive.CreateSalesDTO{
				EmployeeID: 4, Year: 2026, Month: 7,
				SalesAmount: 120_000_000, TargetAmount: 100_000_000,
			}
			_, err := service.CreateSales(dto)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.CreateSales(dto)
			Expect(err).To(HaveOccurred())
		})

		It("should reject negative amounts", func() {
			_, err := service.CreateSales(incentive.CreateSalesDTO{
				EmployeeID: 4, Year: 2026, Month: 7,
				SalesAmount: -1, TargetAmount: 0,
			})
			Expect(err).To(HaveOccurred())
		})

		It("should apply partial updates", func() {
			record, err := service.CreateSales(incentive.CreateSalesDTO{
				EmployeeID: 4, Year: 2026, Month: 7,
				SalesAmount: 120_000_000, TargetAmount: 100_000_000,
			})
			Expect(err).NotTo(HaveOccurred())

			newSales := int64(130_000_000)
			updated, err := service.UpdateSales(record.ID, incentive.UpdateSalesDTO{SalesAmount: &newSales})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.SalesAmount).To(Equal(newSales))
			Expect(updated.TargetAmount).To(Equal(int64(100_000_000)))
		})
	})
})
