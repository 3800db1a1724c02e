package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/curetrace/engine/domain/specmodel"
	engineerrors "github.com/curetrace/engine/infrastructure/errors"
	"gopkg.in/yaml.v3"
)

// SpecificationRegistry resolves a specification id to its rules, stages,
// and calculation definitions, loaded from specifications_root/<spec_id>/.
// Parsed specifications are cached by id; invalidation is explicit via
// Reload.
type SpecificationRegistry struct {
	root string

	mu    sync.RWMutex
	cache map[string]specmodel.Specification
	index map[string]indexEntryYAML // from index.yaml, if present
}

// NewSpecificationRegistry constructs a registry rooted at specifications_root.
func NewSpecificationRegistry(specificationsRoot string) *SpecificationRegistry {
	return &SpecificationRegistry{
		root:  specificationsRoot,
		cache: map[string]specmodel.Specification{},
	}
}

// Load reads index.yaml if present; it does not eagerly parse every
// specification (those load lazily on first LoadSpecification call).
func (sr *SpecificationRegistry) Load() error {
	path := filepath.Join(sr.root, "index.yaml")
	data, ok, err := readOptional(path)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	var doc indexDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return engineerrors.ConfigError(path, err)
	}
	sr.index = doc.Specifications
	return nil
}

// ListSpecifications lists every specification id discoverable either via
// index.yaml (if present) or by scanning specifications_root for
// self-describing directories.
func (sr *SpecificationRegistry) ListSpecifications() ([]string, error) {
	if sr.index != nil {
		ids := make([]string, 0, len(sr.index))
		for id := range sr.index {
			ids = append(ids, id)
		}
		return ids, nil
	}
	entries, err := os.ReadDir(sr.root)
	if err != nil {
		return nil, engineerrors.ConfigError(sr.root, err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	return ids, nil
}

// LoadSpecification resolves a specification id to its parsed
// Specification, using the cache when available.
func (sr *SpecificationRegistry) LoadSpecification(id string) (specmodel.Specification, error) {
	sr.mu.RLock()
	if spec, ok := sr.cache[id]; ok {
		sr.mu.RUnlock()
		return spec, nil
	}
	sr.mu.RUnlock()

	dir := sr.specDir(id)
	if _, err := os.Stat(dir); err != nil {
		return specmodel.Specification{}, engineerrors.SpecNotFound(id)
	}

	spec := specmodel.Specification{ID: id}

	if doc, ok, err := sr.readSpecificationDoc(dir); err != nil {
		return specmodel.Specification{}, err
	} else if ok {
		spec.Version = doc.Version
	}

	rules, err := sr.readRules(dir)
	if err != nil {
		return specmodel.Specification{}, err
	}
	spec.Rules = rules

	stages, err := sr.readStages(dir)
	if err != nil {
		return specmodel.Specification{}, err
	}
	spec.Stages = stages

	calcs, err := sr.readCalculations(dir)
	if err != nil {
		return specmodel.Specification{}, err
	}
	spec.Calculations = calcs

	sr.mu.Lock()
	sr.cache[id] = spec
	sr.mu.Unlock()
	return spec, nil
}

// Reload discards the cached entry for id, forcing the next
// LoadSpecification call to reparse from disk.
func (sr *SpecificationRegistry) Reload(id string) {
	sr.mu.Lock()
	delete(sr.cache, id)
	sr.mu.Unlock()
}

func (sr *SpecificationRegistry) specDir(id string) string {
	if sr.index != nil {
		if entry, ok := sr.index[id]; ok && entry.Dir != "" {
			return filepath.Join(sr.root, entry.Dir)
		}
	}
	return filepath.Join(sr.root, id)
}

func (sr *SpecificationRegistry) readSpecificationDoc(dir string) (specificationDoc, bool, error) {
	path := filepath.Join(dir, "specification.yaml")
	data, ok, err := readOptional(path)
	if err != nil || !ok {
		return specificationDoc{}, ok, err
	}
	var doc specificationDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return specificationDoc{}, false, engineerrors.ConfigError(path, err)
	}
	return doc, true, nil
}

func (sr *SpecificationRegistry) readRules(dir string) ([]specmodel.RuleDef, error) {
	path := filepath.Join(dir, "rules.yaml")
	data, ok, err := readOptional(path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var doc rulesDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, engineerrors.ConfigError(path, err)
	}
	out := make([]specmodel.RuleDef, 0, len(doc.Rules))
	for _, r := range doc.Rules {
		out = append(out, specmodel.RuleDef{
			ID:           r.ID,
			Template:     r.Template,
			Condition:    r.Condition,
			Severity:     r.Severity,
			Stage:        r.Stage,
			Parameters:   r.Parameters,
			Calculations: r.Calculations,
		})
	}
	return out, nil
}

func (sr *SpecificationRegistry) readStages(dir string) ([]specmodel.StageDef, error) {
	path := filepath.Join(dir, "stages.yaml")
	data, ok, err := readOptional(path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var doc stagesDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, engineerrors.ConfigError(path, err)
	}
	out := make([]specmodel.StageDef, 0, len(doc.Stages))
	for _, s := range doc.Stages {
		def := specmodel.StageDef{
			ID:            s.ID,
			Name:          s.Name,
			DisplayOrder:  s.DisplayOrder,
			Type:          s.Type,
			TriggerRule:   s.TriggerRule,
			Algorithm:     s.Algorithm,
			Rules:         s.Rules,
			NonContiguous: s.NonContiguous,
		}
		if s.TimeRange != nil {
			def.TimeRange = &specmodel.TimeRange{Start: s.TimeRange.Start, End: s.TimeRange.End, Unit: s.TimeRange.Unit}
		}
		if s.TemperatureRange != nil {
			def.TemperatureRange = &specmodel.TemperatureRange{
				SensorGroup: s.TemperatureRange.SensorGroup,
				Lower:       s.TemperatureRange.Lower,
				Upper:       s.TemperatureRange.Upper,
				LeftOpen:    s.TemperatureRange.LeftOpen,
				RightOpen:   s.TemperatureRange.RightOpen,
			}
		}
		out = append(out, def)
	}
	return out, nil
}

func (sr *SpecificationRegistry) readCalculations(dir string) ([]specmodel.CalculationDef, error) {
	path := filepath.Join(dir, "calculations.yaml")
	data, ok, err := readOptional(path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var doc calculationsDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, engineerrors.ConfigError(path, err)
	}
	out := make([]specmodel.CalculationDef, 0, len(doc.Calculations))
	for _, c := range doc.Calculations {
		out = append(out, specmodel.CalculationDef{
			ID:         c.ID,
			Template:   c.Template,
			Sensors:    c.Sensors,
			Parameters: c.Parameters,
			Formula:    c.Formula,
			Type:       c.Type,
		})
	}
	return out, nil
}
