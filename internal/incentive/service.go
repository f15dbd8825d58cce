package incentive

import (
	"context"
	"log/slog"
	"time"

	"github.com/yeonholee/hr-payroll/internal"
	"github.com/yeonholee/hr-payroll/internal/core/common/validation"
	"github.com/yeonholee/hr-payroll/internal/core/events"
)

// Repository interface defines the data access methods for incentives
type Repository interface {
	CreateFormula(formula *Formula) error
	GetFormulaByID(id int64) (*Formula, error)
	ListFormulas(activeOnly bool) ([]*Formula, error)
	UpdateFormula(formula *Formula) error
	DeleteFormula(id int64) error

	CreateSales(record *SalesRecord) error
	GetSalesByID(id int64) (*SalesRecord, error)
	GetSales(employeeID int64, year, month int) (*SalesRecord, error)
	ListSales(year, month int) ([]*SalesRecord, error)
	UpdateSales(record *SalesRecord) error
	DeleteSales(id int64) error

	SalesRows(year, month int, departmentID *int64) ([]SalesRow, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service handles incentive business logic
type Service struct {
	repo      Repository
	engine    *Engine
	simulator *Simulator
	bus       EventPublisher
	logger    *slog.Logger
}

func NewService(repo Repository, engine *Engine, simulator *Simulator, bus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		engine:    engine,
		simulator: simulator,
		bus:       bus,
		logger:    logger,
	}
}

// sampleBindings is the worked example attached to validation responses.
func sampleBindings() map[string]float64 {
	return map[string]float64{
		VarSalesAmount:     120_000_000,
		VarTargetAmount:    100_000_000,
		VarBaseRate:        0.02,
		VarBonusRate:       0.05,
		VarBaseSalary:      3_500_000,
		VarAchievementRate: 1.2,
		VarYearsOfService:  3,
	}
}

func (s *Service) CreateFormula(creatorID int64, dto CreateFormulaDTO) (*Formula, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}
	if result := s.engine.Validate(dto.Expression); !result.Valid {
		return nil, internal.NewValidationError(result.Error, internal.ErrCodeFormulaInvalid)
	}

	formula := &Formula{
		Name:        dto.Name,
		Expression:  dto.Expression,
		Description: dto.Description,
		IsActive:    true,
		CreatedBy:   creatorID,
	}
	if dto.IsActive != nil {
		formula.IsActive = *dto.IsActive
	}
	if err := s.repo.CreateFormula(formula); err != nil {
		return nil, internal.NewInternalError("failed to create formula", err)
	}

	s.logger.Info("incentive formula created", "formula_id", formula.ID, "name", formula.Name)
	return formula, nil
}

func (s *Service) GetFormula(id int64) (*Formula, error) {
	formula, err := s.repo.GetFormulaByID(id)
	if err != nil {
		return nil, internal.NewNotFoundError("formula not found", internal.ErrCodeFormulaNotFound)
	}
	return formula, nil
}

func (s *Service) ListFormulas(activeOnly bool) ([]*Formula, error) {
	formulas, err := s.repo.ListFormulas(activeOnly)
	if err != nil {
		return nil, internal.NewInternalError("failed to list formulas", err)
	}
	return formulas, nil
}

func (s *Service) UpdateFormula(id int64, dto UpdateFormulaDTO) (*Formula, error) {
	formula, err := s.repo.GetFormulaByID(id)
	if err != nil {
		return nil, internal.NewNotFoundError("formula not found", internal.ErrCodeFormulaNotFound)
	}

	if dto.Name != nil {
		formula.Name = *dto.Name
	}
	if dto.Expression != nil {
		if result := s.engine.Validate(*dto.Expression); !result.Valid {
			return nil, internal.NewValidationError(result.Error, internal.ErrCodeFormulaInvalid)
		}
		formula.Expression = *dto.Expression
	}
	if dto.Description != nil {
		formula.Description = *dto.Description
	}
	if dto.IsActive != nil {
		formula.IsActive = *dto.IsActive
	}

	if err := s.repo.UpdateFormula(formula); err != nil {
		return nil, internal.NewInternalError("failed to update formula", err)
	}
	return formula, nil
}

func (s *Service) DeleteFormula(id int64) error {
	if _, err := s.repo.GetFormulaByID(id); err != nil {
		return internal.NewNotFoundError("formula not found", internal.ErrCodeFormulaNotFound)
	}
	if err := s.repo.DeleteFormula(id); err != nil {
		return internal.NewInternalError("failed to delete formula", err)
	}
	return nil
}

// ValidateExpression checks the expression and, when it compiles, attaches
// one sample evaluation over representative bindings.
func (s *Service) ValidateExpression(dto ValidateDTO) *ValidateResult {
	engineResult := s.engine.Validate(dto.Expression)
	result := &ValidateResult{
		Valid:     engineResult.Valid,
		Error:     engineResult.Error,
		Variables: engineResult.Variables,
	}
	if !result.Valid {
		return result
	}

	bindings := sampleBindings()
	result.SampleBindings = bindings
	amount, err := s.engine.Evaluate(dto.Expression, bindings)
	if err != nil {
		result.SampleError = err.Error()
		return result
	}
	result.SampleAmount = amount
	return result
}

// Simulate evaluates one formula over caller-supplied bindings and returns
// the amount with a computation breakdown.
func (s *Service) Simulate(dto SimulateDTO) (*SimulateResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	expr := dto.Expression
	if dto.FormulaID != 0 {
		formula, err := s.repo.GetFormulaByID(dto.FormulaID)
		if err != nil {
			return nil, internal.NewNotFoundError("formula not found", internal.ErrCodeFormulaNotFound)
		}
		expr = formula.Expression
	}

	bindings := normalizeBindings(dto.Bindings)
	engineResult := s.engine.Validate(expr)
	if !engineResult.Valid {
		return nil, internal.NewValidationError(engineResult.Error, internal.ErrCodeFormulaInvalid)
	}

	amount, err := s.engine.Evaluate(expr, bindings)
	if err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeFormulaEval)
	}

	result := &SimulateResult{
		Amount:    amount,
		Bindings:  bindings,
		Variables: engineResult.Variables,
	}
	if branch, ok := s.engine.Branch(expr, bindings); ok {
		result.MatchedBranch = branch
	}
	return result, nil
}

// BatchSimulate runs one active formula over every sales row for the
// period, in parallel on the simulator pool.
func (s *Service) BatchSimulate(ctx context.Context, dto BatchSimulateDTO) (*BatchSimulateResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	formula, err := s.repo.GetFormulaByID(dto.FormulaID)
	if err != nil {
		return nil, internal.NewNotFoundError("formula not found", internal.ErrCodeFormulaNotFound)
	}
	if !formula.IsActive {
		return nil, internal.NewValidationError("formula is not active", internal.ErrCodeFormulaInvalid)
	}

	rows, err := s.repo.SalesRows(dto.Year, dto.Month, dto.DepartmentID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load sales rows", err)
	}

	rowResults, err := s.simulator.Run(ctx, formula.Expression, rows, s.bindRow(dto))
	if err != nil {
		return nil, internal.NewInternalError("batch simulation did not finish", err)
	}

	result := &BatchSimulateResult{
		FormulaID: formula.ID,
		Year:      dto.Year,
		Month:     dto.Month,
		Rows:      rowResults,
	}
	for _, row := range rowResults {
		if row.Error != "" {
			result.Failed++
			continue
		}
		result.Evaluated++
		result.TotalAmount += row.Amount
	}

	s.logger.Info("batch simulation finished",
		"formula_id", formula.ID, "year", dto.Year, "month", dto.Month,
		"evaluated", result.Evaluated, "failed", result.Failed)

	if s.bus != nil {
		event := events.NewIncentiveBatchFinishedEvent(formula.ID, result.Evaluated, result.Failed, result.TotalAmount)
		if err := s.bus.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish batch simulation event", "error", err)
		}
	}

	return result, nil
}

// bindRow maps a joined sales row onto the engine's variables. Rates come
// from the request so one batch can be replayed under different policies.
func (s *Service) bindRow(dto BatchSimulateDTO) func(SalesRow) map[string]float64 {
	periodEnd := time.Date(dto.Year, time.Month(dto.Month)+1, 0, 0, 0, 0, 0, time.UTC)
	baseRate := dto.BaseRate
	if baseRate == 0 {
		baseRate = DefaultBaseRate
	}
	bonusRate := dto.BonusRate
	if bonusRate == 0 {
		bonusRate = DefaultBonusRate
	}
	return func(row SalesRow) map[string]float64 {
		achievement := 0.0
		if row.TargetAmount > 0 {
			achievement = float64(row.SalesAmount) / float64(row.TargetAmount)
		}
		years := 0
		if !row.HireDate.IsZero() {
			years = fullYears(row.HireDate, periodEnd)
		}
		return map[string]float64{
			VarSalesAmount:     float64(row.SalesAmount),
			VarTargetAmount:    float64(row.TargetAmount),
			VarBaseRate:        baseRate,
			VarBonusRate:       bonusRate,
			VarBaseSalary:      float64(row.BaseSalary),
			VarAchievementRate: achievement,
			VarYearsOfService:  float64(years),
		}
	}
}

func fullYears(from, to time.Time) int {
	years := to.Year() - from.Year()
	if years < 0 {
		return 0
	}
	if from.AddDate(years, 0, 0).After(to) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

func normalizeBindings(in map[string]float64) map[string]float64 {
	bindings := make(map[string]float64, len(Variables()))
	for _, name := range Variables() {
		bindings[name] = in[name]
	}
	if bindings[VarAchievementRate] == 0 && bindings[VarTargetAmount] > 0 {
		bindings[VarAchievementRate] = bindings[VarSalesAmount] / bindings[VarTargetAmount]
	}
	return bindings
}

func (s *Service) CreateSales(dto CreateSalesDTO) (*SalesRecord, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}
	if err := validation.ValidatePayAmount("sales_amount", dto.SalesAmount); err != nil {
		return nil, err
	}
	if err := validation.ValidatePayAmount("target_amount", dto.TargetAmount); err != nil {
		return nil, err
	}
	if existing, err := s.repo.GetSales(dto.EmployeeID, dto.Year, dto.Month); err == nil && existing != nil {
		return nil, internal.NewConflictError("sales record already exists for this period", internal.ErrCodeValidationFailed)
	}

	record := &SalesRecord{
		EmployeeID:   dto.EmployeeID,
		Year:         dto.Year,
		Month:        dto.Month,
		SalesAmount:  dto.SalesAmount,
		TargetAmount: dto.TargetAmount,
	}
	if err := s.repo.CreateSales(record); err != nil {
		return nil, internal.NewInternalError("failed to create sales record", err)
	}
	return record, nil
}

func (s *Service) GetSales(id int64) (*SalesRecord, error) {
	record, err := s.repo.GetSalesByID(id)
	if err != nil {
		return nil, internal.NewNotFoundError("sales record not found", internal.ErrCodeSalesNotFound)
	}
	return record, nil
}

func (s *Service) ListSales(year, month int) ([]*SalesRecord, error) {
	records, err := s.repo.ListSales(year, month)
	if err != nil {
		return nil, internal.NewInternalError("failed to list sales records", err)
	}
	return records, nil
}

func (s *Service) UpdateSales(id int64, dto UpdateSalesDTO) (*SalesRecord, error) {
	record, err := s.repo.GetSalesByID(id)
	if err != nil {
		return nil, internal.NewNotFoundError("sales record not found", internal.ErrCodeSalesNotFound)
	}
	if dto.SalesAmount != nil {
		if *dto.SalesAmount < 0 {
			return nil, internal.NewValidationError("sales_amount must not be negative", internal.ErrCodeInvalidAmount)
		}
		record.SalesAmount = *dto.SalesAmount
	}
	if dto.TargetAmount != nil {
		if *dto.TargetAmount < 0 {
			return nil, internal.NewValidationError("target_amount must not be negative", internal.ErrCodeInvalidAmount)
		}
		record.TargetAmount = *dto.TargetAmount
	}
	if err := s.repo.UpdateSales(record); err != nil {
		return nil, internal.NewInternalError("failed to update sales record", err)
	}
	return record, nil
}

func (s *Service) DeleteSales(id int64) error {
	if _, err := s.repo.GetSalesByID(id); err != nil {
		return internal.NewNotFoundError("sales record not found", internal.ErrCodeSalesNotFound)
	}
	if err := s.repo.DeleteSales(id); err != nil {
		return internal.NewInternalError("failed to delete sales record", err)
	}
	return nil
}
