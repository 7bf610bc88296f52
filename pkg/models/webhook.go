package models

// WebhookType identifies the destination dialect.
type WebhookType string

const (
	WebhookSlack     WebhookType = "slack"
	WebhookPagerDuty WebhookType = "pagerduty"
	WebhookGeneric   WebhookType = "generic"
	WebhookFile      WebhookType = "file"
)

// WebhookConfig declares one dispatch destination. Name is unique within a
// dispatcher. An empty Filter means the destination receives all severities.
type WebhookConfig struct {
	Name    string            `json:"name" yaml:"name"`
	Type    WebhookType       `json:"type" yaml:"type"`
	URL     string            `json:"url" yaml:"url"`
	Enabled bool              `json:"enabled" yaml:"enabled"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Filter  []Severity        `json:"filter,omitempty" yaml:"filter,omitempty"`
}

// Accepts reports whether the destination should receive a checklist for an
// alert of the given severity.
func (w WebhookConfig) Accepts(sev Severity) bool {
	if !w.Enabled {
		return false
	}
	if len(w.Filter) == 0 {
		return true
	}
	for _, s := range w.Filter {
		if s == sev {
			return true
		}
	}
	return false
}

// DeliveryStatus is the terminal state of one webhook send.
type DeliveryStatus string

const (
	DeliverySuccess DeliveryStatus = "SUCCESS"
	DeliveryFailure DeliveryStatus = "FAILURE"
)

// WebhookResult records the outcome of delivering a checklist to one
// destination. Failures are values here, never errors to the caller.
type WebhookResult struct {
	DestinationName string         `json:"destinationName"`
	Status          DeliveryStatus `json:"status"`
	HTTPCode        int            `json:"httpCode,omitempty"`
	Error           string         `json:"error,omitempty"`
}
