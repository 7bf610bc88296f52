package alerts

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/models"
)

// canonicalRequest is the native ingress shape. Everything except title and
// severity is optional.
type canonicalRequest struct {
	Title         string            `json:"title"`
	Message       string            `json:"message"`
	Severity      string            `json:"severity"`
	SourceService string            `json:"sourceService"`
	Dimensions    map[string]string `json:"dimensions"`
	Labels        map[string]string `json:"labels"`
	Timestamp     *time.Time        `json:"timestamp"`
}

// CanonicalAdapter parses the native alert shape. It is the registry
// fallback, so CanHandle always answers true.
type CanonicalAdapter struct{}

func NewCanonicalAdapter() *CanonicalAdapter { return &CanonicalAdapter{} }

func (c *CanonicalAdapter) SourceService() string { return "canonical" }

func (c *CanonicalAdapter) CanHandle(raw json.RawMessage) bool { return true }

func (c *CanonicalAdapter) ParseAlert(raw json.RawMessage) (models.Alert, error) {
	var req canonicalRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return models.Alert{}, fmt.Errorf("decode alert payload: %w", err)
	}

	ts := time.Now().UTC()
	if req.Timestamp != nil {
		ts = req.Timestamp.UTC()
	}
	source := req.SourceService
	if source == "" {
		source = "unknown"
	}

	return models.NewAlert(
		uuid.NewString(),
		req.Title,
		req.Message,
		models.Severity(strings.ToUpper(req.Severity)),
		source,
		req.Dimensions,
		req.Labels,
		ts,
		raw,
	), nil
}
