package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/chrissnell/fluxdecay/pkg/config"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Controller represents the REST server controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	restConfig config.RESTServerData
	Server     http.Server
	results    *ResultStore
	gatherer   prometheus.Gatherer
	logger     *zap.SugaredLogger
	handlers   *Handlers
}

// NewController creates a new REST server controller. rc is expected to have
// passed through config.ApplyDefaults. Metrics are served from gatherer; a
// nil gatherer disables /metrics.
func NewController(ctx context.Context, wg *sync.WaitGroup, rc config.RESTServerData, results *ResultStore, gatherer prometheus.Gatherer, logger *zap.SugaredLogger) (*Controller, error) {
	if results == nil {
		return nil, fmt.Errorf("REST server requires a result store")
	}

	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		restConfig: rc,
		results:    results,
		gatherer:   gatherer,
		logger:     logger,
	}

	ctrl.handlers = NewHandlers(ctrl)

	router := ctrl.setupRouter()
	ctrl.Server.Addr = fmt.Sprintf("%v:%v", rc.ListenAddr, rc.Port)
	ctrl.Server.Handler = router

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	c.logger.Infof("Starting REST server on %s...", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if c.restConfig.Cert != "" && c.restConfig.Key != "" {
			if err := c.Server.ListenAndServeTLS(c.restConfig.Cert, c.restConfig.Key); err != http.ErrServerClosed {
				c.logger.Errorf("REST server error: %v", err)
			}
		} else {
			if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
				c.logger.Errorf("REST server error: %v", err)
			}
		}
	}()

	go func() {
		<-c.ctx.Done()
		c.logger.Info("Shutting down the REST server...")
		c.Server.Shutdown(context.Background())
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", c.handlers.GetHealth).Methods(http.MethodGet)
	router.HandleFunc("/events", c.handlers.GetEvents).Methods(http.MethodGet)
	router.HandleFunc("/events/{number:[0-9]+}", c.handlers.GetEvent).Methods(http.MethodGet)
	router.HandleFunc("/events/{number:[0-9]+}/flux", c.handlers.GetEventFlux).Methods(http.MethodGet)

	if c.gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	return router
}
