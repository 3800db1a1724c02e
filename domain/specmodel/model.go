// Package specmodel defines the explicit record types for templates,
// specifications, sensor groupings, and the bound specification produced by
// the runtime binder.
package specmodel

// TemplateKind distinguishes the three families of reusable template.
type TemplateKind string

const (
	KindCalculation TemplateKind = "calculation"
	KindRule        TemplateKind = "rule"
	KindStage       TemplateKind = "stage"
)

// GlobalStage is the sentinel stage id meaning "the whole run", used when a
// rule names no explicit stage and none can be derived from stage assignment.
const GlobalStage = "global"

// Template is a reusable definition not yet bound to physical sensors.
type Template struct {
	Kind                TemplateKind
	ID                  string
	Description         string
	FormulaOrCondition  string
	SensorPlaceholders  []string
	Parameters          map[string]interface{}

	// Calculation-template-only fields.
	CalcType string // "sensor_group" or "calculated"

	// Rule-template-only fields.
	Severity string
	Stage    string

	// Stage-template-only fields.
	Name      string
	StageType string
	TimeRange *TimeRange
}

// TimeRange names a by-time stage window before binding.
type TimeRange struct {
	Start string
	End   string
	Unit  string // "datetime", "unix_seconds", "minutes_relative"
}

// SensorGrouping is the run-scoped mapping of group names to ordered lists of
// physical sensor channel names.
type SensorGrouping map[string][]string

// CalculationDef is one calculation entry in a specification, either bound
// directly to a template or carrying an inline formula.
type CalculationDef struct {
	ID         string
	Template   string
	Sensors    []string
	Parameters map[string]interface{}
	Formula    string
	Type       string // "sensor_group" or "calculated"
}

// RuleDef is one rule entry in a specification.
type RuleDef struct {
	ID            string
	Template      string
	Condition     string
	Severity      string
	Stage         string
	Parameters    map[string]interface{}
	Calculations  []string
}

// StageDef is one stage entry in a specification.
type StageDef struct {
	ID               string
	Name             string
	DisplayOrder     int
	Type             string // "time_range", "trigger_rule", "temperature_range", "algorithm"
	TimeRange        *TimeRange
	TriggerRule      string
	TemperatureRange *TemperatureRange
	Algorithm        string
	Rules            []string
	NonContiguous    bool
}

// TemperatureRange names a by-temperature-range stage window before binding.
type TemperatureRange struct {
	SensorGroup string
	Lower       float64
	Upper       float64
	LeftOpen    bool
	RightOpen   bool
}

// Specification is a named bundle of rules, stages, and calculations for one
// process family, as loaded from config/specifications/<spec_id>/.
type Specification struct {
	ID           string
	Version      string
	Calculations []CalculationDef
	Rules        []RuleDef
	Stages       []StageDef
}

// BoundSpecification has the same shape as Specification but every
// placeholder has been substituted using a SensorGrouping; no {...} token
// remains anywhere in its formulas or conditions.
type BoundSpecification struct {
	ID           string
	Calculations []CalculationDef
	Rules        []RuleDef
	Stages       []StageDef
}

// StageByID returns the stage definition with the given id, if any.
func (b *BoundSpecification) StageByID(id string) (StageDef, bool) {
	for _, s := range b.Stages {
		if s.ID == id {
			return s, true
		}
	}
	return StageDef{}, false
}

// CalculationByID returns the calculation definition with the given id, if any.
func (b *BoundSpecification) CalculationByID(id string) (CalculationDef, bool) {
	for _, c := range b.Calculations {
		if c.ID == id {
			return c, true
		}
	}
	return CalculationDef{}, false
}
