package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSpecFixture(t *testing.T, root, id string) {
	t.Helper()
	dir := filepath.Join(root, id)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "specification.yaml"), []byte("version: \"1\"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rules.yaml"), []byte(`rules:
  - id: peak_ok
    condition: "peak_temp > 180"
    severity: critical
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "calculations.yaml"), []byte(`calculations:
  - id: peak_temp
    type: calculated
    formula: "MAX(chamber_temp)"
`), 0o644))
}

func TestLoadSpecificationParsesYAMLAndCaches(t *testing.T) {
	root := t.TempDir()
	writeSpecFixture(t, root, "autoclave_v1")

	reg := NewSpecificationRegistry(root)
	require.NoError(t, reg.Load())

	spec, err := reg.LoadSpecification("autoclave_v1")
	require.NoError(t, err)
	assert.Equal(t, "1", spec.Version)
	require.Len(t, spec.Rules, 1)
	assert.Equal(t, "peak_ok", spec.Rules[0].ID)
	require.Len(t, spec.Calculations, 1)
	assert.Equal(t, "MAX(chamber_temp)", spec.Calculations[0].Formula)

	spec2, err := reg.LoadSpecification("autoclave_v1")
	require.NoError(t, err)
	assert.Equal(t, spec, spec2)
}

func TestLoadSpecificationMissingIDErrors(t *testing.T) {
	root := t.TempDir()
	reg := NewSpecificationRegistry(root)
	_, err := reg.LoadSpecification("does_not_exist")
	assert.Error(t, err)
}

func TestReloadDropsCacheEntry(t *testing.T) {
	root := t.TempDir()
	writeSpecFixture(t, root, "autoclave_v1")
	reg := NewSpecificationRegistry(root)

	_, err := reg.LoadSpecification("autoclave_v1")
	require.NoError(t, err)
	reg.Reload("autoclave_v1")

	_, err = reg.LoadSpecification("autoclave_v1")
	assert.NoError(t, err)
}

func TestListSpecificationsScansDirectoriesWithoutIndex(t *testing.T) {
	root := t.TempDir()
	writeSpecFixture(t, root, "autoclave_v1")
	writeSpecFixture(t, root, "autoclave_v2")

	reg := NewSpecificationRegistry(root)
	require.NoError(t, reg.Load())
	ids, err := reg.ListSpecifications()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"autoclave_v1", "autoclave_v2"}, ids)
}
