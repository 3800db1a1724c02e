// Package config loads the on-disk YAML configuration layout (startup
// config, templates, and specifications), and binds a specification to a
// request's sensor grouping to produce a BoundSpecification.
package config

// The types in this file mirror the on-disk YAML documents literally;
// infrastructure/config's registries convert them into the explicit
// domain/specmodel record types used by the rest of the engine.

type calculationTemplatesDoc struct {
	Templates []calculationTemplateYAML `yaml:"templates"`
}

type calculationTemplateYAML struct {
	ID          string                 `yaml:"id"`
	Type        string                 `yaml:"type"`
	Description string                 `yaml:"description"`
	Formula     string                 `yaml:"formula"`
	Sensors     []string               `yaml:"sensors"`
	Parameters  map[string]interface{} `yaml:"parameters"`
}

type ruleTemplatesDoc struct {
	Templates []ruleTemplateYAML `yaml:"templates"`
}

type ruleTemplateYAML struct {
	ID          string                 `yaml:"id"`
	Severity    string                 `yaml:"severity"`
	Stage       string                 `yaml:"stage"`
	Description string                 `yaml:"description"`
	Condition   string                 `yaml:"condition"`
	Parameters  map[string]interface{} `yaml:"parameters"`
}

type stageTemplatesDoc struct {
	Templates []stageTemplateYAML `yaml:"templates"`
}

type stageTemplateYAML struct {
	ID        string         `yaml:"id"`
	Name      string         `yaml:"name"`
	Type      string         `yaml:"type"`
	TimeRange *timeRangeYAML `yaml:"time_range"`
}

type timeRangeYAML struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
	Unit  string `yaml:"unit"`
}

type sensorGroupsDoc struct {
	SensorGroups []sensorGroupYAML `yaml:"sensor_groups"`
}

type sensorGroupYAML struct {
	ID       string `yaml:"id"`
	Required bool   `yaml:"required"`
	MinCount int    `yaml:"min_count"`
	DataType string `yaml:"data_type"`
}

type indexDoc struct {
	Specifications map[string]indexEntryYAML `yaml:"specifications"`
}

type indexEntryYAML struct {
	Dir       string   `yaml:"dir"`
	Materials []string `yaml:"materials"`
}

type specificationDoc struct {
	Version         string `yaml:"version"`
	SpecificationID string `yaml:"specification_id"`
}

type rulesDoc struct {
	Version         string       `yaml:"version"`
	SpecificationID string       `yaml:"specification_id"`
	Rules           []ruleYAML   `yaml:"rules"`
}

type ruleYAML struct {
	ID           string                 `yaml:"id"`
	Template     string                 `yaml:"template"`
	Condition    string                 `yaml:"condition"`
	Severity     string                 `yaml:"severity"`
	Stage        string                 `yaml:"stage"`
	Parameters   map[string]interface{} `yaml:"parameters"`
	Calculations []string               `yaml:"calculations"`
}

type stagesDoc struct {
	Version         string      `yaml:"version"`
	SpecificationID string      `yaml:"specification_id"`
	Stages          []stageYAML `yaml:"stages"`
}

type stageYAML struct {
	ID               string               `yaml:"id"`
	Name             string               `yaml:"name"`
	DisplayOrder     int                  `yaml:"display_order"`
	Type             string               `yaml:"type"`
	TimeRange        *timeRangeYAML       `yaml:"time_range"`
	TriggerRule      string               `yaml:"trigger_rule"`
	TemperatureRange *temperatureRangeYAML `yaml:"temperature_range"`
	Algorithm        string               `yaml:"algorithm"`
	Rules            []string             `yaml:"rules"`
	NonContiguous    bool                 `yaml:"non_contiguous"`
}

type temperatureRangeYAML struct {
	SensorGroup string  `yaml:"sensor_group"`
	Lower       float64 `yaml:"lower"`
	Upper       float64 `yaml:"upper"`
	LeftOpen    bool    `yaml:"left_open"`
	RightOpen   bool    `yaml:"right_open"`
}

type calculationsDoc struct {
	Version         string             `yaml:"version"`
	SpecificationID string             `yaml:"specification_id"`
	Calculations    []calculationYAML  `yaml:"calculations"`
}

type calculationYAML struct {
	ID         string                 `yaml:"id"`
	Template   string                 `yaml:"template"`
	Sensors    []string               `yaml:"sensors"`
	Parameters map[string]interface{} `yaml:"parameters"`
	Formula    string                 `yaml:"formula"`
	Type       string                 `yaml:"type"`
}

type startupConfigDoc struct {
	TemplatesRoot       string            `yaml:"templates_root"`
	SpecificationsRoot  string            `yaml:"specifications_root"`
	WorkflowCacheSize   int               `yaml:"workflow_cache_size"`
	LogLevel            string            `yaml:"log_level"`
	LogFormat           string            `yaml:"log_format"`
	ConfigFiles         map[string]string `yaml:"config_files"`
}
