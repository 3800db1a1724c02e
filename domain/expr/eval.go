package expr

import (
	"fmt"
)

// ResultAnalysis is the alongside-the-value report produced for every
// top-level expression evaluation: numeric/array/boolean classification,
// whether the expression contains a comparison, and the boolean
// condensation used as a rule's pass/fail verdict.
type ResultAnalysis struct {
	IsNumeric        bool
	IsArray          bool
	IsBoolean        bool
	HasComparison    bool
	ComplianceResult *bool
}

// controlSignal is returned (wrapped as an error) by block/loop bodies to
// unwind break/continue/return without exceptions; the sentinel kind lets
// callers pattern-match on it instead of inspecting message text.
type controlSignal struct {
	kind  string // "break", "continue", "return"
	value Value
}

func (c *controlSignal) Error() string { return "control signal: " + c.kind }

// Evaluator is a run-local, tree-walking evaluator for parsed expressions. It
// owns a Registry (consulted for every function-call node) and a cache keyed
// by (ast fingerprint, environment-keys, context timestamp) so repeated
// evaluation of an identical condition against an identical environment
// snapshot within one run is free.
type Evaluator struct {
	Registry *Registry
	Composite map[string]bool // externalised has_comparison policy list

	cache map[string]cachedResult
}

type cachedResult struct {
	value    Value
	analysis ResultAnalysis
}

// NewEvaluator constructs an Evaluator bound to the given registry. composite
// may be nil, in which case CompositeComparatorNames is used.
func NewEvaluator(registry *Registry, composite map[string]bool) *Evaluator {
	if composite == nil {
		composite = CompositeComparatorNames
	}
	return &Evaluator{Registry: registry, Composite: composite, cache: map[string]cachedResult{}}
}

// Evaluate parses and evaluates a top-level expression, returning its value
// and result analysis. contextTimestamp is an opaque cache-key component
// (the rule evaluator passes the rule's stage id; other callers pass "");
// callers that re-evaluate the identical text
// against the identical environment within the same run hit the cache.
func (ev *Evaluator) Evaluate(source string, env Environment, contextTimestamp string) (Value, ResultAnalysis, error) {
	node, err := Parse(source)
	if err != nil {
		return Null, ResultAnalysis{}, err
	}
	key := fingerprint(source, env, contextTimestamp)
	if cached, ok := ev.cache[key]; ok {
		return cached.value, cached.analysis, nil
	}

	val, err := ev.eval(node, env)
	if err != nil {
		return Null, ResultAnalysis{}, err
	}
	analysis := ev.analyze(node, val)
	ev.cache[key] = cachedResult{value: val, analysis: analysis}
	return val, analysis, nil
}

// EvaluateNode evaluates an already-parsed node, skipping the cache (used
// internally and by callers that parse once and evaluate many times against
// different environments, e.g. the stage detector's trigger-rule mode).
func (ev *Evaluator) EvaluateNode(node *Node, env Environment) (Value, ResultAnalysis, error) {
	val, err := ev.eval(node, env)
	if err != nil {
		return Null, ResultAnalysis{}, err
	}
	return val, ev.analyze(node, val), nil
}

func fingerprint(source string, env Environment, contextTimestamp string) string {
	out := source + "|" + contextTimestamp + "|"
	for k := range env {
		out += k + ","
	}
	return out
}

func (ev *Evaluator) analyze(node *Node, val Value) ResultAnalysis {
	a := ResultAnalysis{}
	flat := val.Flatten()
	a.IsNumeric = flat.IsNumeric()
	a.IsArray = flat.IsList()
	a.IsBoolean = flat.IsBool()
	a.HasComparison = node.HasComparisonOperator(ev.Composite)

	switch {
	case a.HasComparison && a.IsArray:
		all := true
		for _, e := range flat.List {
			e = e.Flatten()
			if !e.IsBool() {
				all = false
				break
			}
			if !e.Bool {
				all = false
				break
			}
		}
		b := all
		a.ComplianceResult = &b
	case flat.IsBool():
		b := flat.Bool
		a.ComplianceResult = &b
	case flat.IsNumeric():
		b := flat.Truthy()
		a.ComplianceResult = &b
	default:
		a.ComplianceResult = nil
	}
	return a
}

func (ev *Evaluator) eval(n *Node, env Environment) (Value, error) {
	switch n.Kind {
	case NodeLiteral:
		return n.Literal, nil

	case NodeVariable:
		if v, ok := env.Get(n.Name); ok {
			return v, nil
		}
		if v, ok := env.GetTimestamps(timestampBase(n.Name)); ok {
			return v, nil
		}
		return Null, fmt.Errorf("undefined variable %q", n.Name)

	case NodeList:
		vals := make([]Value, len(n.Children))
		for i, c := range n.Children {
			v, err := ev.eval(c, env)
			if err != nil {
				return Null, err
			}
			vals[i] = v
		}
		return NewList(vals), nil

	case NodeOperator:
		return ev.evalOperator(n, env)

	case NodeFunction:
		return ev.evalFunction(n, env)

	case NodeAssignment:
		val, err := ev.eval(n.Children[0], env)
		if err != nil {
			return Null, err
		}
		env[n.Target] = val
		return val, nil

	case NodeBlock:
		var last Value
		for _, stmt := range n.Children {
			v, err := ev.eval(stmt, env)
			if err != nil {
				return Null, err
			}
			last = v
		}
		return last, nil

	case NodeIf:
		cond, err := ev.eval(n.Children[0], env)
		if err != nil {
			return Null, err
		}
		if cond.Truthy() {
			return ev.eval(n.Children[1], env)
		}
		if len(n.Children) > 2 {
			return ev.eval(n.Children[2], env)
		}
		return Null, nil

	case NodeWhile:
		for {
			cond, err := ev.eval(n.Children[0], env)
			if err != nil {
				return Null, err
			}
			if !cond.Truthy() {
				return Null, nil
			}
			_, err = ev.eval(n.Children[1], env)
			if sig, ok := asSignal(err); ok {
				if sig.kind == "break" {
					return Null, nil
				}
				if sig.kind == "return" {
					return sig.value, err
				}
				continue
			}
			if err != nil {
				return Null, err
			}
		}

	case NodeFor:
		if _, err := ev.eval(n.Children[0], env); err != nil {
			return Null, err
		}
		for {
			cond, err := ev.eval(n.Children[1], env)
			if err != nil {
				return Null, err
			}
			if !cond.Truthy() {
				return Null, nil
			}
			_, err = ev.eval(n.Children[3], env)
			if sig, ok := asSignal(err); ok {
				if sig.kind == "break" {
					return Null, nil
				}
				if sig.kind == "return" {
					return sig.value, err
				}
			} else if err != nil {
				return Null, err
			}
			if _, err := ev.eval(n.Children[2], env); err != nil {
				return Null, err
			}
		}

	case NodeSwitch:
		subject, err := ev.eval(n.Children[0], env)
		if err != nil {
			return Null, err
		}
		var defaultCase *Node
		for _, c := range n.Children[1:] {
			if c.CaseValue == nil {
				defaultCase = c
				continue
			}
			cv, err := ev.eval(c.CaseValue, env)
			if err != nil {
				return Null, err
			}
			if valuesEqual(subject, cv) {
				return ev.evalCaseBody(c, env)
			}
		}
		if defaultCase != nil {
			return ev.evalCaseBody(defaultCase, env)
		}
		return Null, nil

	case NodeBreak:
		return Null, &controlSignal{kind: "break"}
	case NodeContinue:
		return Null, &controlSignal{kind: "continue"}
	case NodeReturn:
		var v Value
		if len(n.Children) > 0 {
			var err error
			v, err = ev.eval(n.Children[0], env)
			if err != nil {
				return Null, err
			}
		}
		return v, &controlSignal{kind: "return", value: v}
	}
	return Null, fmt.Errorf("unhandled node kind %d", n.Kind)
}

func (ev *Evaluator) evalCaseBody(c *Node, env Environment) (Value, error) {
	var last Value
	for _, stmt := range c.Children {
		v, err := ev.eval(stmt, env)
		if sig, ok := asSignal(err); ok && sig.kind == "break" {
			return last, nil
		}
		if err != nil {
			return Null, err
		}
		last = v
	}
	return last, nil
}

func asSignal(err error) (*controlSignal, bool) {
	sig, ok := err.(*controlSignal)
	return sig, ok
}

func valuesEqual(a, b Value) bool {
	a, b = a.Flatten(), b.Flatten()
	if a.IsNumeric() && b.IsNumeric() {
		return a.AsFloat() == b.AsFloat()
	}
	if a.Kind == KindString && b.Kind == KindString {
		return a.Str == b.Str
	}
	if a.IsBool() && b.IsBool() {
		return a.Bool == b.Bool
	}
	return false
}

func (ev *Evaluator) evalOperator(n *Node, env Environment) (Value, error) {
	args := make([]Value, len(n.Children))
	for i, c := range n.Children {
		v, err := ev.eval(c, env)
		if err != nil {
			return Null, err
		}
		args[i] = v
	}
	return ev.Registry.call(n.Op, args, nil)
}

func (ev *Evaluator) evalFunction(n *Node, env Environment) (Value, error) {
	args := make([]Value, len(n.Children))
	for i, c := range n.Children {
		v, err := ev.eval(c, env)
		if err != nil {
			return Null, err
		}
		args[i] = v
	}
	kwargs := make(map[string]Value, len(n.Kwargs))
	for k, c := range n.Kwargs {
		v, err := ev.eval(c, env)
		if err != nil {
			return Null, err
		}
		kwargs[k] = v
	}

	// The registry is consulted first; only names absent from it fall
	// through to the small built-in set (all, any, len, abs, Threshold).
	if ev.Registry.Has(n.Op) {
		return ev.Registry.call(n.Op, args, kwargs)
	}
	switch canonicalOperatorName(n.Op) {
	case "ALL", "ANY", "LEN", "ABS", "THRESHOLD":
		return ev.Registry.call(n.Op, args, kwargs)
	}
	return Null, fmt.Errorf("unknown function %q", n.Op)
}

func timestampBase(name string) string {
	const suffix = "_timestamps"
	if len(name) > len(suffix) && name[len(name)-len(suffix):] == suffix {
		return name[:len(name)-len(suffix)]
	}
	return name
}
