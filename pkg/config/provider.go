package config

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetDataConfig() (*DataData, error)
	GetAnalysisConfig() (*AnalysisData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Data     DataData        `json:"data"`
	Analysis AnalysisData    `json:"analysis"`
	Output   OutputData      `json:"output,omitempty"`
	REST     *RESTServerData `json:"rest,omitempty"`
}

// DataData describes where the flux files live and how they are laid out
type DataData struct {
	Folder       string `json:"folder"`
	HeaderLines  int    `json:"header_lines,omitempty"`
	EnergyLevels int    `json:"energy_levels,omitempty"`
}

// AnalysisData holds the decay detection parameters
type AnalysisData struct {
	ReferenceElement        string  `json:"reference_element,omitempty"`
	EnergyLevel             int     `json:"energy_level"`
	WindowSize              int     `json:"window_size"`
	WindowSizeForDecayCount int     `json:"window_size_for_decay_count"`
	SlopeThreshold          float64 `json:"slope_threshold"`
	RValueThreshold         float64 `json:"r_value_threshold"`
	HeFluxThreshold         float64 `json:"he_flux_threshold"`
	MinDurationHours        float64 `json:"min_duration_hours"`
	DurationRule            string  `json:"duration_rule,omitempty"`
	Workers                 int     `json:"workers,omitempty"`
}

// OutputData selects how the event table is written
type OutputData struct {
	Format string `json:"format,omitempty"`
	// File is the destination of the event table; empty means standard output
	File string `json:"file,omitempty"`
}

// RESTServerData holds the configuration for the event REST server
type RESTServerData struct {
	Cert       string `json:"cert,omitempty"`
	Key        string `json:"key,omitempty"`
	Port       int    `json:"port,omitempty"`
	ListenAddr string `json:"listen_addr,omitempty"`
	// FluxExtendDays is the default padding around an event for flux
	// windows. Nil means not configured; zero disables padding.
	FluxExtendDays *float64 `json:"flux_extend_days,omitempty"`
}
