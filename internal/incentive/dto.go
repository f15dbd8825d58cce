package incentive

import (
	"strings"
)

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

type CreateFormulaDTO struct {
	Name        string `json:"name"`
	Expression  string `json:"expression"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

func (d CreateFormulaDTO) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ValidationError("name is required")
	}
	if strings.TrimSpace(d.Expression) == "" {
		return ValidationError("expression is required")
	}
	return nil
}

type UpdateFormulaDTO struct {
	Name        *string `json:"name,omitempty"`
	Expression  *string `json:"expression,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type ValidateDTO struct {
	Expression string `json:"expression"`
}

// ValidateResult extends the engine's verdict with a sample evaluation so
// formula authors see one worked example immediately.
type ValidateResult struct {
	Valid          bool               `json:"valid"`
	Error          string             `json:"error,omitempty"`
	Variables      []string           `json:"variables,omitempty"`
	SampleBindings map[string]float64 `json:"sample_bindings,omitempty"`
	SampleAmount   int64              `json:"sample_amount,omitempty"`
	SampleError    string             `json:"sample_error,omitempty"`
}

type SimulateDTO struct {
	FormulaID  int64              `json:"formula_id,omitempty"`
	Expression string             `json:"expression,omitempty"`
	EmployeeID int64              `json:"employee_id,omitempty"`
	Bindings   map[string]float64 `json:"bindings"`
}

func (d SimulateDTO) Validate() error {
	if d.FormulaID == 0 && strings.TrimSpace(d.Expression) == "" {
		return ValidationError("formula_id or expression is required")
	}
	return nil
}

// SimulateResult carries the amount plus the computation breakdown: the
// variable values the engine saw and, for ternary formulas, which branch
// matched.
type SimulateResult struct {
	Amount        int64              `json:"amount"`
	Bindings      map[string]float64 `json:"bindings"`
	Variables     []string           `json:"variables"`
	MatchedBranch string             `json:"matched_branch,omitempty"`
}

type BatchSimulateDTO struct {
	FormulaID    int64   `json:"formula_id"`
	Year         int     `json:"year"`
	Month        int     `json:"month"`
	DepartmentID *int64  `json:"department_id,omitempty"`
	BaseRate     float64 `json:"base_rate,omitempty"`
	BonusRate    float64 `json:"bonus_rate,omitempty"`
}

func (d BatchSimulateDTO) Validate() error {
	if d.FormulaID == 0 {
		return ValidationError("formula_id is required")
	}
	if d.Year < 2000 || d.Year > 2100 || d.Month < 1 || d.Month > 12 {
		return ValidationError("year/month out of range")
	}
	return nil
}

// BatchRowResult is one employee's outcome. Errors are isolated per row;
// one bad input never aborts the batch.
type BatchRowResult struct {
	EmployeeID   int64  `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	SalesAmount  int64  `json:"sales_amount"`
	TargetAmount int64  `json:"target_amount"`
	Amount       int64  `json:"amount"`
	Error        string `json:"error,omitempty"`
}

type BatchSimulateResult struct {
	FormulaID   int64            `json:"formula_id"`
	Year        int              `json:"year"`
	Month       int              `json:"month"`
	Rows        []BatchRowResult `json:"rows"`
	Evaluated   int              `json:"evaluated"`
	Failed      int              `json:"failed"`
	TotalAmount int64            `json:"total_amount"`
}

type CreateSalesDTO struct {
	EmployeeID   int64 `json:"employee_id"`
	Year         int   `json:"year"`
	Month        int   `json:"month"`
	SalesAmount  int64 `json:"sales_amount"`
	TargetAmount int64 `json:"target_amount"`
}

func (d CreateSalesDTO) Validate() error {
	if d.EmployeeID == 0 {
		return ValidationError("employee_id is required")
	}
	if d.Year < 2000 || d.Year > 2100 || d.Month < 1 || d.Month > 12 {
		return ValidationError("year/month out of range")
	}
	if d.SalesAmount < 0 || d.TargetAmount < 0 {
		return ValidationError("amounts must not be negative")
	}
	return nil
}

type UpdateSalesDTO struct {
	SalesAmount  *int64 `json:"sales_amount,omitempty"`
	TargetAmount *int64 `json:"target_amount,omitempty"`
}
