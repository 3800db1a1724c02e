package config

import (
	"os"
	"path/filepath"

	"github.com/curetrace/engine/domain/specmodel"
	engineerrors "github.com/curetrace/engine/infrastructure/errors"
	"gopkg.in/yaml.v3"
)

// TemplateRegistry loads and indexes the calculation/rule/stage templates
// under templates_root, grouped by process family. It is read-only after
// Load and safe to share across concurrent runs without locking.
type TemplateRegistry struct {
	root       string
	byKind     map[specmodel.TemplateKind]map[string]specmodel.Template
	families   []string
}

// NewTemplateRegistry constructs an empty registry rooted at the given
// templates directory; call Load to populate it.
func NewTemplateRegistry(templatesRoot string) *TemplateRegistry {
	return &TemplateRegistry{
		root: templatesRoot,
		byKind: map[specmodel.TemplateKind]map[string]specmodel.Template{
			specmodel.KindCalculation: {},
			specmodel.KindRule:        {},
			specmodel.KindStage:       {},
		},
	}
}

// Load walks every immediate subdirectory of templates_root as a process
// family and parses its three template documents. Each document is
// optional; a missing one contributes no templates.
func (tr *TemplateRegistry) Load() error {
	entries, err := os.ReadDir(tr.root)
	if err != nil {
		return engineerrors.ConfigError(tr.root, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		family := entry.Name()
		tr.families = append(tr.families, family)
		familyDir := filepath.Join(tr.root, family)

		if err := tr.loadCalculationTemplates(familyDir); err != nil {
			return err
		}
		if err := tr.loadRuleTemplates(familyDir); err != nil {
			return err
		}
		if err := tr.loadStageTemplates(familyDir); err != nil {
			return err
		}
	}
	return nil
}

func (tr *TemplateRegistry) loadCalculationTemplates(familyDir string) error {
	path := filepath.Join(familyDir, "calculation_templates.yaml")
	data, ok, err := readOptional(path)
	if err != nil || !ok {
		return err
	}
	var doc calculationTemplatesDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return engineerrors.ConfigError(path, err)
	}
	for _, t := range doc.Templates {
		tr.byKind[specmodel.KindCalculation][t.ID] = specmodel.Template{
			Kind:               specmodel.KindCalculation,
			ID:                 t.ID,
			Description:        t.Description,
			FormulaOrCondition: t.Formula,
			SensorPlaceholders: t.Sensors,
			Parameters:         t.Parameters,
			CalcType:           t.Type,
		}
	}
	return nil
}

func (tr *TemplateRegistry) loadRuleTemplates(familyDir string) error {
	path := filepath.Join(familyDir, "rule_templates.yaml")
	data, ok, err := readOptional(path)
	if err != nil || !ok {
		return err
	}
	var doc ruleTemplatesDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return engineerrors.ConfigError(path, err)
	}
	for _, t := range doc.Templates {
		tr.byKind[specmodel.KindRule][t.ID] = specmodel.Template{
			Kind:               specmodel.KindRule,
			ID:                 t.ID,
			Description:        t.Description,
			FormulaOrCondition: t.Condition,
			Parameters:         t.Parameters,
			Severity:           t.Severity,
			Stage:              t.Stage,
		}
	}
	return nil
}

func (tr *TemplateRegistry) loadStageTemplates(familyDir string) error {
	path := filepath.Join(familyDir, "stage_templates.yaml")
	data, ok, err := readOptional(path)
	if err != nil || !ok {
		return err
	}
	var doc stageTemplatesDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return engineerrors.ConfigError(path, err)
	}
	for _, t := range doc.Templates {
		tmpl := specmodel.Template{
			Kind:      specmodel.KindStage,
			ID:        t.ID,
			Name:      t.Name,
			StageType: t.Type,
		}
		if t.TimeRange != nil {
			tmpl.TimeRange = &specmodel.TimeRange{
				Start: t.TimeRange.Start,
				End:   t.TimeRange.End,
				Unit:  t.TimeRange.Unit,
			}
		}
		tr.byKind[specmodel.KindStage][t.ID] = tmpl
	}
	return nil
}

// GetTemplate looks up a template by kind and id.
func (tr *TemplateRegistry) GetTemplate(kind specmodel.TemplateKind, id string) (specmodel.Template, error) {
	t, ok := tr.byKind[kind][id]
	if !ok {
		return specmodel.Template{}, engineerrors.UnresolvedTemplate(id)
	}
	return t, nil
}

// ListTemplates lists every template id registered under the given kind.
func (tr *TemplateRegistry) ListTemplates(kind specmodel.TemplateKind) []string {
	ids := make([]string, 0, len(tr.byKind[kind]))
	for id := range tr.byKind[kind] {
		ids = append(ids, id)
	}
	return ids
}

// Families lists every process family directory discovered under templates_root.
func (tr *TemplateRegistry) Families() []string {
	return tr.families
}

func readOptional(path string) ([]byte, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, engineerrors.ConfigError(path, err)
	}
	return data, true, nil
}
