// Package artifacts persists gate outcomes as JSON bundles for CI upload and
// the PR comment bot. Writing a bundle never changes the outcome itself.
package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sawpanic/prgate/internal/gates"
)

// Bundle is the serialized record of one gate run.
type Bundle struct {
	RunID       string        `json:"run_id"`
	GeneratedAt time.Time     `json:"generated_at"`
	Policy      string        `json:"policy"`
	Title       string        `json:"title"`
	Passed      bool          `json:"passed"`
	Errors      []string      `json:"errors"`
	Warnings    []string      `json:"warnings"`
	Checks      []gates.Check `json:"checks"`
}

// Writer emits outcome bundles into a directory.
type Writer struct {
	dir string
}

// NewWriter creates a bundle writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Write serializes the outcome and returns the bundle path.
func (w *Writer) Write(policyName, title string, outcome *gates.Outcome) (string, error) {
	bundle := Bundle{
		RunID:       uuid.New().String(),
		GeneratedAt: time.Now().UTC(),
		Policy:      policyName,
		Title:       title,
		Passed:      outcome.Passed,
		Errors:      outcome.Errors,
		Warnings:    outcome.Warnings,
		Checks:      outcome.Checks,
	}

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create artifacts dir: %w", err)
	}

	name := fmt.Sprintf("prgate-%s-%s.json",
		bundle.GeneratedAt.Format("20060102-150405"), bundle.RunID[:8])
	path := filepath.Join(w.dir, name)

	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal bundle: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write bundle: %w", err)
	}

	log.Info().
		Str("run_id", bundle.RunID).
		Str("path", path).
		Bool("passed", bundle.Passed).
		Msg("Wrote gate outcome bundle")

	return path, nil
}
