package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashDefinitionStableAcrossTaskOrder(t *testing.T) {
	defA := Definition{
		Name: "w",
		Layers: []LayerDefinition{
			{Layer: "data_binding", Tasks: []TaskDefinition{{ID: "a"}, {ID: "b", DependsOn: []string{"a"}}}},
		},
	}
	defB := Definition{
		Name: "w",
		Layers: []LayerDefinition{
			{Layer: "data_binding", Tasks: []TaskDefinition{{ID: "b", DependsOn: []string{"a"}}, {ID: "a"}}},
		},
	}
	assert.Equal(t, HashDefinition(defA), HashDefinition(defB))
}

func TestHashDefinitionIgnoresNothingButTopology(t *testing.T) {
	def1 := Definition{Name: "w", Layers: []LayerDefinition{{Tasks: []TaskDefinition{{ID: "a"}}}}}
	def2 := Definition{Name: "w", Layers: []LayerDefinition{{Tasks: []TaskDefinition{{ID: "a", Algorithm: "irrelevant_runtime_field"}}}}}
	assert.Equal(t, HashDefinition(def1), HashDefinition(def2), "Algorithm is not part of the cache key")
}

func TestCacheGetPutRoundTrip(t *testing.T) {
	c := NewCache(2)
	plan := &ExecutionPlan{WorkflowName: "w"}
	_, ok := c.Get("w", "hash1")
	assert.False(t, ok)

	c.Put("w", "hash1", plan)
	got, ok := c.Get("w", "hash1")
	assert.True(t, ok)
	assert.Same(t, plan, got)

	stats := c.Stats()
	assert.Equal(t, 1, stats.HitCount)
	assert.Equal(t, 1, stats.MissCount)
}

func TestCacheClearResetsStats(t *testing.T) {
	c := NewCache(2)
	c.Put("w", "h", &ExecutionPlan{})
	c.Get("w", "h")
	c.Clear()
	stats := c.Stats()
	assert.Equal(t, 0, stats.Size)
	assert.Equal(t, 0, stats.HitCount)
	assert.Equal(t, 0, stats.MissCount)
}

func TestCacheDefaultsSizeWhenNonPositive(t *testing.T) {
	c := NewCache(0)
	assert.Equal(t, 2, c.Stats().MaxSize)
}
