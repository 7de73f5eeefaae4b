package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	config, err := parseYAML(cfgFile)
	if err != nil {
		return nil, err
	}

	y.config = config
	return config, nil
}

func parseYAML(raw []byte) (*ConfigData, error) {
	// Load into temporary struct with YAML tags
	var yamlConfig struct {
		Data     DataYAML        `yaml:"data"`
		Analysis AnalysisYAML    `yaml:"analysis"`
		Output   OutputYAML      `yaml:"output,omitempty"`
		REST     *RESTServerYAML `yaml:"rest,omitempty"`
	}

	if err := yaml.UnmarshalStrict(raw, &yamlConfig); err != nil {
		return nil, err
	}

	// Convert to our internal format
	config := &ConfigData{
		Data: DataData{
			Folder:       yamlConfig.Data.Folder,
			HeaderLines:  yamlConfig.Data.HeaderLines,
			EnergyLevels: yamlConfig.Data.EnergyLevels,
		},
		Analysis: AnalysisData{
			ReferenceElement:        yamlConfig.Analysis.ReferenceElement,
			EnergyLevel:             yamlConfig.Analysis.EnergyLevel,
			WindowSize:              yamlConfig.Analysis.WindowSize,
			WindowSizeForDecayCount: yamlConfig.Analysis.WindowSizeForDecayCount,
			SlopeThreshold:          yamlConfig.Analysis.SlopeThreshold,
			RValueThreshold:         yamlConfig.Analysis.RValueThreshold,
			HeFluxThreshold:         yamlConfig.Analysis.HeFluxThreshold,
			MinDurationHours:        yamlConfig.Analysis.MinDurationHours,
			DurationRule:            yamlConfig.Analysis.DurationRule,
			Workers:                 yamlConfig.Analysis.Workers,
		},
		Output: OutputData{
			Format: yamlConfig.Output.Format,
			File:   yamlConfig.Output.File,
		},
	}

	if yamlConfig.REST != nil {
		config.REST = &RESTServerData{
			Cert:           yamlConfig.REST.Cert,
			Key:            yamlConfig.REST.Key,
			Port:           yamlConfig.REST.Port,
			ListenAddr:     yamlConfig.REST.ListenAddr,
			FluxExtendDays: yamlConfig.REST.FluxExtendDays,
		}
	}

	return config, nil
}

// GetDataConfig returns the data source configuration
func (y *YAMLProvider) GetDataConfig() (*DataData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return &y.config.Data, nil
}

// GetAnalysisConfig returns the analysis parameters
func (y *YAMLProvider) GetAnalysisConfig() (*AnalysisData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return &y.config.Analysis, nil
}

// IsReadOnly returns true since YAML files are read-only through this interface
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// YAML-specific structs with proper YAML tags for parsing the config file
type DataYAML struct {
	Folder       string `yaml:"folder"`
	HeaderLines  int    `yaml:"header-lines,omitempty"`
	EnergyLevels int    `yaml:"energy-levels,omitempty"`
}

type AnalysisYAML struct {
	ReferenceElement        string  `yaml:"reference-element,omitempty"`
	EnergyLevel             int     `yaml:"energy-level"`
	WindowSize              int     `yaml:"window-size"`
	WindowSizeForDecayCount int     `yaml:"window-size-for-decay-count"`
	SlopeThreshold          float64 `yaml:"slope-threshold"`
	RValueThreshold         float64 `yaml:"r-value-threshold"`
	HeFluxThreshold         float64 `yaml:"he-flux-threshold"`
	MinDurationHours        float64 `yaml:"min-duration-hours"`
	DurationRule            string  `yaml:"duration-rule,omitempty"`
	Workers                 int     `yaml:"workers,omitempty"`
}

type OutputYAML struct {
	Format string `yaml:"format,omitempty"`
	File   string `yaml:"file,omitempty"`
}

type RESTServerYAML struct {
	Cert           string  `yaml:"cert,omitempty"`
	Key            string  `yaml:"key,omitempty"`
	Port           int     `yaml:"port,omitempty"`
	ListenAddr     string  `yaml:"listen-addr,omitempty"`
	FluxExtendDays *float64 `yaml:"flux-extend-days,omitempty"`
}
