package specmodel

import "time"

// RuleResult is the outcome of evaluating a single rule.
type RuleResult struct {
	RuleID      string
	Passed      bool
	ActualValue interface{}
	Threshold   interface{}
	Severity    string
	Stage       string
	Message     string
	Analysis    ResultAnalysis
}

// ResultAnalysis is the alongside-the-value report the expression evaluator
// produces for every evaluated expression.
type ResultAnalysis struct {
	IsNumeric       bool
	IsArray         bool
	IsBoolean       bool
	HasComparison   bool
	ComplianceResult *bool // nil means "pure calculation, no verdict"
}

// ComplianceReport is the aggregated outcome of one run: counts plus the
// individual rule results and timing metadata.
type ComplianceReport struct {
	Total       int
	Passed      int
	Failed      int
	Rules       []RuleResult
	RequestTime time.Time
	ExecutionTime time.Duration
	GeneratedAt time.Time
	Status      string // "completed", "failed", "cancelled"
	Error       string
	Warnings    []string
}
