package incentive

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
	celast "github.com/google/cel-go/common/ast"
	"github.com/google/cel-go/common/operators"
	"github.com/google/cel-go/parser"
)

// Engine compiles and evaluates incentive formulas. Compiled programs are
// cached per expression, so repeated evaluations of the same formula only
// pay the CEL compile cost once.
type Engine struct {
	env      *cel.Env
	programs sync.Map
}

func NewEngine() (*Engine, error) {
	opts := make([]cel.EnvOption, 0, len(Variables()))
	for _, name := range Variables() {
		opts = append(opts, cel.Variable(name, cel.DoubleType))
	}
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("create formula environment: %w", err)
	}
	return &Engine{env: env}, nil
}

// ValidationResult reports on one compiled expression.
type ValidationResult struct {
	Valid     bool     `json:"valid"`
	Error     string   `json:"error,omitempty"`
	Variables []string `json:"variables,omitempty"`
}

// Validate compiles the expression, requires a numeric result and collects
// the variables it references. Compile errors carry CEL's position info.
func (e *Engine) Validate(expr string) ValidationResult {
	ast, err := e.compile(expr)
	if err != nil {
		return ValidationResult{Valid: false, Error: err.Error()}
	}
	return ValidationResult{Valid: true, Variables: referencedVariables(ast)}
}

// Evaluate runs the expression over the bindings and returns the amount in
// whole won, rounded half up. Non-finite and negative results are rejected.
func (e *Engine) Evaluate(expr string, bindings map[string]float64) (int64, error) {
	program, err := e.loadOrCompile(expr)
	if err != nil {
		return 0, err
	}

	activation := make(map[string]any, len(Variables()))
	for _, name := range Variables() {
		activation[name] = bindings[name]
	}

	out, _, err := program.Eval(activation)
	if err != nil {
		return 0, fmt.Errorf("evaluate formula: %w", err)
	}

	var value float64
	switch v := out.Value().(type) {
	case float64:
		value = v
	case int64:
		value = float64(v)
	default:
		return 0, fmt.Errorf("formula produced %T, want a number", out.Value())
	}

	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("formula produced a non-finite result")
	}
	if value < 0 {
		return 0, fmt.Errorf("formula produced a negative amount")
	}
	return int64(math.Floor(value + 0.5)), nil
}

// Branch reports which arm of a top-level conditional the bindings select.
// Returns ("", false) when the expression has no top-level conditional.
func (e *Engine) Branch(expr string, bindings map[string]float64) (string, bool) {
	ast, err := e.compile(expr)
	if err != nil {
		return "", false
	}
	root := ast.NativeRep().Expr()
	if root.Kind() != celast.CallKind || root.AsCall().FunctionName() != operators.Conditional {
		return "", false
	}
	condExpr, err := parser.Unparse(root.AsCall().Args()[0], ast.NativeRep().SourceInfo())
	if err != nil {
		return "", false
	}

	condAst, issues := e.env.Compile(condExpr)
	if issues != nil && issues.Err() != nil {
		return "", false
	}
	program, err := e.env.Program(condAst)
	if err != nil {
		return "", false
	}
	activation := make(map[string]any, len(Variables()))
	for _, name := range Variables() {
		activation[name] = bindings[name]
	}
	out, _, err := program.Eval(activation)
	if err != nil {
		return "", false
	}
	matched, ok := out.Value().(bool)
	if !ok {
		return "", false
	}
	if matched {
		return "then", true
	}
	return "else", true
}

func (e *Engine) compile(expr string) (*cel.Ast, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("expression is empty")
	}
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile formula: %w", issues.Err())
	}
	if ast.OutputType() != cel.DoubleType && ast.OutputType() != cel.IntType {
		return nil, fmt.Errorf("formula must produce a number, got %s", ast.OutputType())
	}
	return ast, nil
}

func (e *Engine) loadOrCompile(expr string) (cel.Program, error) {
	expr = strings.TrimSpace(expr)
	if cached, ok := e.programs.Load(expr); ok {
		return cached.(cel.Program), nil
	}
	ast, err := e.compile(expr)
	if err != nil {
		return nil, err
	}
	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("plan formula: %w", err)
	}
	e.programs.Store(expr, program)
	return program, nil
}

func referencedVariables(ast *cel.Ast) []string {
	idents := celast.MatchDescendants(
		celast.NavigateAST(ast.NativeRep()),
		celast.KindMatcher(celast.IdentKind))

	seen := make(map[string]bool, len(idents))
	for _, ident := range idents {
		seen[ident.AsIdent()] = true
	}

	vars := make([]string, 0, len(seen))
	for _, name := range Variables() {
		if seen[name] {
			vars = append(vars, name)
		}
	}
	return vars
}
