package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/chrissnell/fluxdecay/internal/controllers/restserver"
	"github.com/chrissnell/fluxdecay/internal/decay"
	"github.com/chrissnell/fluxdecay/internal/metrics"
	"github.com/chrissnell/fluxdecay/pkg/config"
	"github.com/chrissnell/fluxdecay/pkg/responseformat"
	"github.com/chrissnell/fluxdecay/pkg/sis"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger

	// stdout receives the event table when no output file is configured
	stdout io.Writer
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
		stdout:         os.Stdout,
	}
}

// Run loads the configuration and the flux data, detects decay events and
// writes the event table. When a REST server is configured, Run keeps
// serving the results until a shutdown signal arrives or ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	config.ApplyDefaults(cfg, a.logger)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	format, err := responseformat.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	runID := uuid.New()
	logger := a.logger.With("run_id", runID.String())

	loader := sis.NewLoader(logger.Named("sis"))
	loader.HeaderLines = cfg.Data.HeaderLines
	loader.EnergyLevels = cfg.Data.EnergyLevels

	ds, err := loader.LoadFolder(cfg.Data.Folder)
	if err != nil {
		return fmt.Errorf("error loading flux data: %w", err)
	}
	logger.Infof("loaded %d elements with %d samples from %s", len(ds.Elements), len(ds.Times), cfg.Data.Folder)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	analysisMetrics := metrics.New(reg)

	params := AnalysisParams(cfg.Analysis)
	pipeline := decay.NewPipeline(params, decay.MultiObserver{
		decay.NewLogObserver(logger.Named("decay")),
		analysisMetrics,
	})

	started := time.Now()
	events, err := pipeline.Run(ctx, ds)
	if err != nil {
		return fmt.Errorf("error detecting decay events: %w", err)
	}
	logger.Infow("analysis complete",
		"events", len(events),
		"reference_element", params.ReferenceElement,
		"energy_level", params.EnergyLevel,
		"elapsed", time.Since(started))

	if err := a.writeEvents(cfg.Output, format, events); err != nil {
		return err
	}

	if cfg.REST == nil {
		return nil
	}

	store := restserver.NewResultStore()
	store.Publish(restserver.AnalysisResult{
		RunID:       runID,
		CompletedAt: time.Now(),
		Params:      params,
		Dataset:     ds,
		Events:      events,
	})

	ctrl, err := restserver.NewController(ctx, &wg, *cfg.REST, store, reg, logger.Named("rest"))
	if err != nil {
		return err
	}
	if err := ctrl.StartController(); err != nil {
		return err
	}

	logger.Info("Application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	// Wait for shutdown signal
	select {
	case <-sigs:
		logger.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	logger.Info("waiting for all workers to terminate...")
	wg.Wait()
	logger.Info("shutdown complete")

	return nil
}

// AnalysisParams converts the analysis section of the configuration into
// pipeline parameters
func AnalysisParams(a config.AnalysisData) decay.Params {
	return decay.Params{
		ReferenceElement:        a.ReferenceElement,
		EnergyLevel:             a.EnergyLevel,
		WindowSize:              a.WindowSize,
		WindowSizeForDecayCount: a.WindowSizeForDecayCount,
		SlopeThreshold:          a.SlopeThreshold,
		RValueThreshold:         a.RValueThreshold,
		FluxThreshold:           a.HeFluxThreshold,
		MinDurationHours:        a.MinDurationHours,
		DurationRule:            decay.DurationRule(a.DurationRule),
		Workers:                 a.Workers,
	}
}

func (a *App) writeEvents(out config.OutputData, format responseformat.Format, events []decay.DecayEvent) error {
	if out.File == "" {
		return responseformat.WriteEvents(a.stdout, format, events)
	}

	f, err := os.Create(out.File)
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}

	if err := responseformat.WriteEvents(f, format, events); err != nil {
		f.Close()
		return fmt.Errorf("error writing event table to %s: %w", out.File, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("error closing %s: %w", out.File, err)
	}

	a.logger.Infof("wrote %d events to %s", len(events), out.File)
	return nil
}
