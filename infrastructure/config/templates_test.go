package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curetrace/engine/domain/specmodel"
)

func TestTemplateRegistryLoadsFamiliesAndKinds(t *testing.T) {
	root := t.TempDir()
	family := filepath.Join(root, "autoclave")
	require.NoError(t, os.MkdirAll(family, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(family, "calculation_templates.yaml"), []byte(`templates:
  - id: peak_temp
    type: calculated
    formula: "MAX({chamber_temp})"
    sensors: ["{chamber_temp}"]
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(family, "rule_templates.yaml"), []byte(`templates:
  - id: peak_ok
    severity: critical
    condition: "{calculation_id} > 180"
`), 0o644))

	reg := NewTemplateRegistry(root)
	require.NoError(t, reg.Load())

	assert.Equal(t, []string{"autoclave"}, reg.Families())
	assert.Contains(t, reg.ListTemplates(specmodel.KindCalculation), "peak_temp")
	assert.Contains(t, reg.ListTemplates(specmodel.KindRule), "peak_ok")

	tmpl, err := reg.GetTemplate(specmodel.KindCalculation, "peak_temp")
	require.NoError(t, err)
	assert.Equal(t, "MAX({chamber_temp})", tmpl.FormulaOrCondition)
}

func TestTemplateRegistryUnresolvedTemplateErrors(t *testing.T) {
	reg := NewTemplateRegistry(t.TempDir())
	require.NoError(t, reg.Load())
	_, err := reg.GetTemplate(specmodel.KindRule, "missing")
	assert.Error(t, err)
}
