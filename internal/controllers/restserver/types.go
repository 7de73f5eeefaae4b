package restserver

import (
	"sync"
	"time"

	"github.com/chrissnell/fluxdecay/internal/decay"
	"github.com/google/uuid"
)

// AnalysisResult is one completed analysis run as served by the REST server
type AnalysisResult struct {
	RunID       uuid.UUID
	CompletedAt time.Time
	Params      decay.Params
	Dataset     decay.Dataset
	Events      []decay.DecayEvent
}

// event returns the event with the given number
func (r *AnalysisResult) event(number int) (decay.DecayEvent, bool) {
	for _, e := range r.Events {
		if e.Number == number {
			return e, true
		}
	}
	return decay.DecayEvent{}, false
}

// ResultStore holds the most recent analysis result
type ResultStore struct {
	mu     sync.RWMutex
	result *AnalysisResult
}

// NewResultStore creates an empty ResultStore
func NewResultStore() *ResultStore {
	return &ResultStore{}
}

// Publish replaces the served result
func (s *ResultStore) Publish(result AnalysisResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = &result
}

// Latest returns the served result, if any
func (s *ResultStore) Latest() (*AnalysisResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result, s.result != nil
}

// EventsResponse is the body of /events
type EventsResponse struct {
	RunID            string             `json:"run_id"`
	CompletedAt      time.Time          `json:"completed_at"`
	ReferenceElement string             `json:"reference_element"`
	EnergyLevel      int                `json:"energy_level"`
	Events           []decay.DecayEvent `json:"events"`
}

// EventResponse is the body of /events/{number}
type EventResponse struct {
	RunID string           `json:"run_id"`
	Event decay.DecayEvent `json:"event"`
}

// FluxWindowResponse is the body of /events/{number}/flux. It holds every
// element's valid samples around an event, which is what a plot of the event
// needs.
type FluxWindowResponse struct {
	RunID       string                      `json:"run_id"`
	EventNumber int                         `json:"event_number"`
	EnergyLevel int                         `json:"energy_level"`
	From        time.Time                   `json:"from"`
	To          time.Time                   `json:"to"`
	Elements    map[string]decay.FluxSeries `json:"elements"`
}
