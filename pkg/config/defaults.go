package config

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	DefaultReferenceElement = "He"
	DefaultDurationRule     = "last-contiguous"
	DefaultWorkers          = 1
	DefaultOutputFormat     = "csv"
	DefaultHeaderLines      = 25
	DefaultEnergyLevels     = 8
	DefaultListenAddr       = "0.0.0.0"
	DefaultPort             = 8080
	DefaultFluxExtendDays   = 1
)

// ApplyDefaults fills in optional settings that were left empty
func ApplyDefaults(cfg *ConfigData, logger *zap.SugaredLogger) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	if cfg.Data.HeaderLines == 0 {
		cfg.Data.HeaderLines = DefaultHeaderLines
	}
	if cfg.Data.EnergyLevels == 0 {
		cfg.Data.EnergyLevels = DefaultEnergyLevels
	}

	if cfg.Analysis.ReferenceElement == "" {
		logger.Infof("analysis.reference-element not provided; defaulting to %s", DefaultReferenceElement)
		cfg.Analysis.ReferenceElement = DefaultReferenceElement
	}
	if cfg.Analysis.DurationRule == "" {
		logger.Infof("analysis.duration-rule not provided; defaulting to %s", DefaultDurationRule)
		cfg.Analysis.DurationRule = DefaultDurationRule
	}
	if cfg.Analysis.Workers == 0 {
		cfg.Analysis.Workers = DefaultWorkers
	}

	cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))
	if cfg.Output.Format == "" {
		logger.Infof("output.format not provided; defaulting to %s", DefaultOutputFormat)
		cfg.Output.Format = DefaultOutputFormat
	}

	if cfg.REST != nil {
		if cfg.REST.ListenAddr == "" {
			logger.Info("rest.listen-addr not provided; defaulting to 0.0.0.0 (all interfaces)")
			cfg.REST.ListenAddr = DefaultListenAddr
		}
		if cfg.REST.Port == 0 {
			logger.Infof("rest.port not provided; defaulting to %d", DefaultPort)
			cfg.REST.Port = DefaultPort
		}
		if cfg.REST.FluxExtendDays == nil {
			days := float64(DefaultFluxExtendDays)
			cfg.REST.FluxExtendDays = &days
		}
	}
}

// Validate reports settings that would make the analysis meaningless or fail
func (c *ConfigData) Validate() error {
	var errs []error

	if c.Data.Folder == "" {
		errs = append(errs, errors.New("data.folder is required"))
	}
	if c.Data.EnergyLevels < 1 {
		errs = append(errs, fmt.Errorf("data.energy-levels must be positive, got %d", c.Data.EnergyLevels))
	}
	if c.Analysis.EnergyLevel < 1 || c.Analysis.EnergyLevel > c.Data.EnergyLevels {
		errs = append(errs, fmt.Errorf("analysis.energy-level must be between 1 and %d, got %d", c.Data.EnergyLevels, c.Analysis.EnergyLevel))
	}
	if c.Analysis.WindowSize < 2 {
		errs = append(errs, fmt.Errorf("analysis.window-size must be at least 2, got %d", c.Analysis.WindowSize))
	}
	if c.Analysis.WindowSizeForDecayCount < 2 {
		errs = append(errs, fmt.Errorf("analysis.window-size-for-decay-count must be at least 2, got %d", c.Analysis.WindowSizeForDecayCount))
	}

	switch c.Analysis.DurationRule {
	case "last-contiguous", "first-run":
	default:
		errs = append(errs, fmt.Errorf("analysis.duration-rule %q is not one of last-contiguous, first-run", c.Analysis.DurationRule))
	}

	switch strings.ToLower(strings.TrimSpace(c.Output.Format)) {
	case "csv", "json", "msgpack":
	default:
		errs = append(errs, fmt.Errorf("output.format %q is not one of csv, json, msgpack", c.Output.Format))
	}

	if c.REST != nil {
		if c.REST.Port < 1 || c.REST.Port > 65535 {
			errs = append(errs, fmt.Errorf("rest.port %d is out of range", c.REST.Port))
		}
		if (c.REST.Cert == "") != (c.REST.Key == "") {
			errs = append(errs, errors.New("rest.cert and rest.key must be set together"))
		}
		if d := c.REST.FluxExtendDays; d != nil && *d < 0 {
			errs = append(errs, fmt.Errorf("rest.flux-extend-days must not be negative, got %v", *d))
		}
	}

	return errors.Join(errs...)
}
