package config

import (
	"fmt"
	"strings"

	"github.com/curetrace/engine/domain/specmodel"
	engineerrors "github.com/curetrace/engine/infrastructure/errors"
)

// Binder produces a BoundSpecification from a Specification and a
// SensorGrouping supplied with the request, substituting every
// {placeholder} in formulas, conditions, and sensor lists with concrete
// channel names.
type Binder struct {
	templates *TemplateRegistry
}

// NewBinder constructs a Binder backed by the given template registry.
func NewBinder(templates *TemplateRegistry) *Binder {
	return &Binder{templates: templates}
}

// Bind produces a BoundSpecification. Template-based calculations and rules
// have their placeholders substituted from the grouping and the rule's
// parameters, and stage trigger rules from the grouping. Calculations and
// rules defined inline (without a template) pass through unchanged; a
// placeholder written in them is not substituted.
func (b *Binder) Bind(spec specmodel.Specification, grouping specmodel.SensorGrouping) (specmodel.BoundSpecification, error) {
	calcs, err := b.bindCalculations(spec.Calculations, grouping)
	if err != nil {
		return specmodel.BoundSpecification{}, err
	}
	rules, err := b.bindRules(spec.Rules, calcs)
	if err != nil {
		return specmodel.BoundSpecification{}, err
	}
	stages, err := b.bindStages(spec.Stages, grouping)
	if err != nil {
		return specmodel.BoundSpecification{}, err
	}
	return specmodel.BoundSpecification{ID: spec.ID, Calculations: calcs, Rules: rules, Stages: stages}, nil
}

func (b *Binder) bindCalculations(defs []specmodel.CalculationDef, grouping specmodel.SensorGrouping) ([]specmodel.CalculationDef, error) {
	out := make([]specmodel.CalculationDef, 0, len(defs))
	for _, def := range defs {
		if def.Template == "" {
			out = append(out, def)
			continue
		}
		tmpl, err := b.templates.GetTemplate(specmodel.KindCalculation, def.Template)
		if err != nil {
			return nil, err
		}

		bound := specmodel.CalculationDef{
			ID:   firstNonEmpty(def.ID, tmpl.ID),
			Type: firstNonEmpty(def.Type, tmpl.CalcType, "calculated"),
		}
		formula := tmpl.FormulaOrCondition
		var sensors []string

		for _, placeholder := range tmpl.SensorPlaceholders {
			group := strings.Trim(placeholder, "{}")
			if !containsString(def.Sensors, group) {
				// Not named by the call site's sensors list; attempt direct
				// binding from the request grouping anyway.
			}
			channels, ok := grouping[group]
			if !ok {
				return nil, engineerrors.BindingError(group, fmt.Errorf("group %s not provided", group))
			}
			formula = substitutePlaceholder(formula, group, channels)
			sensors = append(sensors, channels...)
		}
		bound.Formula = formula
		bound.Sensors = sensors
		bound.Parameters = mergeParameters(tmpl.Parameters, def.Parameters)
		out = append(out, bound)
	}
	return out, nil
}

func (b *Binder) bindRules(defs []specmodel.RuleDef, boundCalcs []specmodel.CalculationDef) ([]specmodel.RuleDef, error) {
	calcByID := make(map[string]specmodel.CalculationDef, len(boundCalcs))
	for _, c := range boundCalcs {
		calcByID[c.ID] = c
	}

	out := make([]specmodel.RuleDef, 0, len(defs))
	for _, def := range defs {
		if def.Template == "" {
			out = append(out, def)
			continue
		}
		tmpl, err := b.templates.GetTemplate(specmodel.KindRule, def.Template)
		if err != nil {
			return nil, err
		}

		bound := specmodel.RuleDef{
			ID:       firstNonEmpty(def.ID, tmpl.ID),
			Severity: firstNonEmpty(def.Severity, tmpl.Severity, "minor"),
			Stage:    firstNonEmpty(def.Stage, tmpl.Stage, specmodel.GlobalStage),
		}
		condition := tmpl.FormulaOrCondition
		params := def.Parameters

		if calcID, ok := stringParam(params, "calculation_id"); ok {
			if _, known := calcByID[calcID]; !known {
				return nil, engineerrors.DanglingReference("calculation", calcID)
			}
			condition = strings.ReplaceAll(condition, "{calculation_id}", calcID)
		}
		for name, value := range params {
			placeholder := "{" + name + "}"
			if strings.Contains(condition, placeholder) {
				condition = strings.ReplaceAll(condition, placeholder, fmt.Sprintf("%v", value))
			}
		}

		bound.Condition = condition
		bound.Parameters = params
		bound.Calculations = def.Calculations
		out = append(out, bound)
	}
	return out, nil
}

func (b *Binder) bindStages(defs []specmodel.StageDef, grouping specmodel.SensorGrouping) ([]specmodel.StageDef, error) {
	out := make([]specmodel.StageDef, 0, len(defs))
	for _, def := range defs {
		bound := def
		if def.Type == "" {
			out = append(out, bound)
			continue
		}
		if def.Type == "trigger_rule" && def.TriggerRule != "" {
			bound.TriggerRule = substituteAllGroups(def.TriggerRule, grouping)
		}
		out = append(out, bound)
	}
	return out, nil
}

// substitutePlaceholder replaces {group} in formula with the single channel
// name if channels has one element, else with a parenthesised comma list
// "(ch1, ch2, ch3)" per spec.md §4.2's binding algorithm.
func substitutePlaceholder(formula, group string, channels []string) string {
	placeholder := "{" + group + "}"
	var replacement string
	if len(channels) == 1 {
		replacement = channels[0]
	} else {
		replacement = "(" + strings.Join(channels, ", ") + ")"
	}
	return strings.ReplaceAll(formula, placeholder, replacement)
}

func substituteAllGroups(text string, grouping specmodel.SensorGrouping) string {
	for group, channels := range grouping {
		placeholder := "{" + group + "}"
		if strings.Contains(text, placeholder) {
			text = substitutePlaceholder(text, group, channels)
		}
	}
	return text
}

func mergeParameters(defaults, overrides map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(defaults)+len(overrides))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

func stringParam(params map[string]interface{}, key string) (string, bool) {
	v, ok := params[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func containsString(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}
