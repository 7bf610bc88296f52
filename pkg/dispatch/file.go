package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/models"
)

// fileDestination writes each checklist as a JSON file into a directory.
// Writes are atomic: content goes to a temp file in the same directory,
// then a rename publishes it.
type fileDestination struct {
	cfg models.WebhookConfig
}

func newFileDestination(cfg models.WebhookConfig) *fileDestination {
	return &fileDestination{cfg: cfg}
}

func (f *fileDestination) Config() models.WebhookConfig { return f.cfg }

func (f *fileDestination) Send(ctx context.Context, checklist *models.DynamicChecklist, alert models.Alert) models.WebhookResult {
	if err := ctx.Err(); err != nil {
		return failure(f.cfg.Name, err)
	}

	dir := f.cfg.URL
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return failure(f.cfg.Name, fmt.Errorf("create output directory: %w", err))
	}

	data, err := json.MarshalIndent(checklist, "", "  ")
	if err != nil {
		return failure(f.cfg.Name, fmt.Errorf("marshal checklist: %w", err))
	}

	// UnixNano keeps names monotonically unique per alert.
	name := fmt.Sprintf("checklist-%s-%d.json", checklist.AlertID, checklist.GeneratedAt.UnixNano())
	final := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, name+".tmp-*")
	if err != nil {
		return failure(f.cfg.Name, fmt.Errorf("create temp file: %w", err))
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return failure(f.cfg.Name, fmt.Errorf("write temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return failure(f.cfg.Name, fmt.Errorf("close temp file: %w", err))
	}
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return failure(f.cfg.Name, fmt.Errorf("publish checklist file: %w", err))
	}

	return success(f.cfg.Name, 0)
}
