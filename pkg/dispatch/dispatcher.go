package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/models"
)

// DefaultSendTimeout bounds each destination's send.
const DefaultSendTimeout = 10 * time.Second

// ErrDuplicateDestination is returned when adding a destination whose name
// is already registered.
var ErrDuplicateDestination = errors.New("destination name already registered")

// Dispatcher owns the destination list and fans checklists out to it.
// Destinations are unordered; the dispatcher resolves once every selected
// destination has terminated or timed out.
type Dispatcher struct {
	mu           sync.RWMutex
	destinations []Destination
	byName       map[string]struct{}

	sendTimeout time.Duration
	logger      *slog.Logger
}

// NewDispatcher creates a dispatcher. A zero sendTimeout uses the default.
func NewDispatcher(sendTimeout time.Duration) *Dispatcher {
	if sendTimeout <= 0 {
		sendTimeout = DefaultSendTimeout
	}
	return &Dispatcher{
		byName:      make(map[string]struct{}),
		sendTimeout: sendTimeout,
		logger:      slog.Default().With("component", "dispatcher"),
	}
}

// Add registers a destination. Names are unique within a dispatcher.
func (d *Dispatcher) Add(dest Destination) error {
	name := dest.Config().Name
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.byName[name]; exists {
		return ErrDuplicateDestination
	}
	d.byName[name] = struct{}{}
	d.destinations = append(d.destinations, dest)
	return nil
}

// Configs returns the configurations of all registered destinations, in
// registration order.
func (d *Dispatcher) Configs() []models.WebhookConfig {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]models.WebhookConfig, len(d.destinations))
	for i, dest := range d.destinations {
		out[i] = dest.Config()
	}
	return out
}

// Dispatch delivers the checklist to every enabled destination whose filter
// accepts the originating alert's severity. Sends run concurrently, each
// under its own timeout; a failed send becomes a FAILURE result, never an
// error. The result order is unspecified.
func (d *Dispatcher) Dispatch(ctx context.Context, checklist *models.DynamicChecklist, alert models.Alert) []models.WebhookResult {
	d.mu.RLock()
	selected := make([]Destination, 0, len(d.destinations))
	for _, dest := range d.destinations {
		if dest.Config().Accepts(alert.Severity) {
			selected = append(selected, dest)
		}
	}
	d.mu.RUnlock()

	if len(selected) == 0 {
		return []models.WebhookResult{}
	}

	results := make([]models.WebhookResult, len(selected))
	var wg sync.WaitGroup
	for i, dest := range selected {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
			defer cancel()
			results[i] = dest.Send(sendCtx, checklist, alert)
		}()
	}
	wg.Wait()

	for _, res := range results {
		if res.Status == models.DeliverySuccess {
			d.logger.Info("Checklist delivered",
				"alert_id", checklist.AlertID,
				"destination", res.DestinationName,
				"http_code", res.HTTPCode)
		} else {
			d.logger.Warn("Checklist delivery failed",
				"alert_id", checklist.AlertID,
				"destination", res.DestinationName,
				"error", res.Error)
		}
	}
	return results
}
