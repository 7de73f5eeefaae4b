package restserver

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/chrissnell/fluxdecay/internal/decay"
	"github.com/chrissnell/fluxdecay/pkg/responseformat"
	"github.com/gorilla/mux"
)

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// GetHealth reports that the server is up
func (h *Handlers) GetHealth(w http.ResponseWriter, req *http.Request) {
	h.write(w, req, map[string]string{"status": "ok"})
}

// GetEvents returns the event table of the latest analysis run
func (h *Handlers) GetEvents(w http.ResponseWriter, req *http.Request) {
	result, ok := h.latest(w)
	if !ok {
		return
	}

	events := result.Events
	if events == nil {
		events = []decay.DecayEvent{}
	}

	h.write(w, req, EventsResponse{
		RunID:            result.RunID.String(),
		CompletedAt:      result.CompletedAt,
		ReferenceElement: result.Params.ReferenceElement,
		EnergyLevel:      result.Params.EnergyLevel,
		Events:           events,
	})
}

// GetEvent returns a single event by number
func (h *Handlers) GetEvent(w http.ResponseWriter, req *http.Request) {
	result, ok := h.latest(w)
	if !ok {
		return
	}

	event, ok := h.event(w, req, result)
	if !ok {
		return
	}

	h.write(w, req, EventResponse{
		RunID: result.RunID.String(),
		Event: event,
	})
}

// GetEventFlux returns every element's valid flux samples from extend-days
// before an event's start to extend-days after its end
func (h *Handlers) GetEventFlux(w http.ResponseWriter, req *http.Request) {
	result, ok := h.latest(w)
	if !ok {
		return
	}

	event, ok := h.event(w, req, result)
	if !ok {
		return
	}

	query := req.URL.Query()

	var extendDays float64
	if d := h.controller.restConfig.FluxExtendDays; d != nil {
		extendDays = *d
	}
	if v := query.Get("extend-days"); v != "" {
		days, err := strconv.ParseFloat(v, 64)
		if err != nil || days < 0 || math.IsInf(days, 0) || math.IsNaN(days) {
			h.formatter.WriteError(w, http.StatusBadRequest, "extend-days must be a non-negative number")
			return
		}
		extendDays = days
	}

	energyLevel := result.Params.EnergyLevel
	if v := query.Get("energy-level"); v != "" {
		level, err := strconv.Atoi(v)
		if err != nil {
			h.formatter.WriteError(w, http.StatusBadRequest, "energy-level must be an integer")
			return
		}
		energyLevel = level
	}

	extend := paddingDuration(extendDays, result.Dataset.Times)
	from := event.Start.Add(-extend)
	to := event.End.Add(extend)

	elements := make(map[string]decay.FluxSeries, len(result.Dataset.Elements))
	for _, name := range result.Dataset.Elements.Names() {
		series, err := result.Dataset.Series(energyLevel, name, from, to)
		if errors.Is(err, decay.ErrEnergyLevel) {
			h.formatter.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err != nil {
			h.controller.logger.Errorf("error extracting %s flux for event %d: %v", name, event.Number, err)
			h.formatter.WriteError(w, http.StatusInternalServerError, "error extracting flux data")
			return
		}
		elements[name] = series
	}

	h.write(w, req, FluxWindowResponse{
		RunID:       result.RunID.String(),
		EventNumber: event.Number,
		EnergyLevel: energyLevel,
		From:        from,
		To:          to,
		Elements:    elements,
	})
}

// paddingDuration converts a padding in days to a duration. Padding longer
// than the time axis selects the same samples as the whole axis, so it is
// capped there and never overflows a time.Duration.
func paddingDuration(days float64, times []time.Time) time.Duration {
	var span time.Duration
	if len(times) > 0 {
		span = times[len(times)-1].Sub(times[0])
	}
	if days*24 >= span.Hours() {
		return span
	}
	return time.Duration(days * 24 * float64(time.Hour))
}

// latest fetches the served result or answers 503 when no run has finished
func (h *Handlers) latest(w http.ResponseWriter) (*AnalysisResult, bool) {
	result, ok := h.controller.results.Latest()
	if !ok {
		h.formatter.WriteError(w, http.StatusServiceUnavailable, "no analysis results available yet")
	}
	return result, ok
}

// event resolves the {number} path variable or answers 400/404
func (h *Handlers) event(w http.ResponseWriter, req *http.Request, result *AnalysisResult) (decay.DecayEvent, bool) {
	vars := mux.Vars(req)
	number, err := strconv.Atoi(vars["number"])
	if err != nil {
		h.formatter.WriteError(w, http.StatusBadRequest, "invalid event number")
		return decay.DecayEvent{}, false
	}

	event, ok := result.event(number)
	if !ok {
		h.formatter.WriteError(w, http.StatusNotFound, fmt.Sprintf("event %d not found", number))
		return decay.DecayEvent{}, false
	}
	return event, true
}

func (h *Handlers) write(w http.ResponseWriter, req *http.Request, data any) {
	if err := h.formatter.WriteResponse(w, req, data, nil); err != nil {
		h.controller.logger.Errorf("error encoding response for %s: %v", req.URL.Path, err)
	}
}
