// Package source resolves the PR title and body from the environment the gate
// runs in. The evaluator itself never touches env vars or the filesystem;
// providers are tried in priority order and the first one that applies wins.
package source

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// Text is the raw input handed to the evaluator. Labels are the PR's labels
// when the source exposes them; only label-aware rules consume them.
type Text struct {
	Title  string
	Body   string
	Labels []string
}

// Provider loads PR text from one source. ok reports whether the source
// applies at all; an empty body from an applicable source is still a valid
// load (the evaluator owns the empty-body verdict).
type Provider interface {
	Name() string
	Load() (text Text, ok bool, err error)
}

// Chain tries providers in order and returns the first applicable result.
func Chain(providers ...Provider) (Text, error) {
	for _, p := range providers {
		text, ok, err := p.Load()
		if err != nil {
			return Text{}, fmt.Errorf("source %s: %w", p.Name(), err)
		}
		if ok {
			log.Debug().Str("source", p.Name()).Msg("resolved PR text")
			return text, nil
		}
	}
	return Text{}, fmt.Errorf("no PR description source available (set PR_BODY, GITHUB_EVENT_PATH, or pass --body-file)")
}

// EnvProvider reads PR_TITLE / PR_BODY / PR_LABELS. It applies when PR_BODY
// is set, even to an empty string. PR_LABELS is comma-separated.
type EnvProvider struct{}

func (EnvProvider) Name() string { return "env" }

func (EnvProvider) Load() (Text, bool, error) {
	body, ok := os.LookupEnv("PR_BODY")
	if !ok {
		return Text{}, false, nil
	}
	return Text{
		Title:  os.Getenv("PR_TITLE"),
		Body:   body,
		Labels: splitLabels(os.Getenv("PR_LABELS")),
	}, true, nil
}

func splitLabels(raw string) []string {
	var labels []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			labels = append(labels, part)
		}
	}
	return labels
}

// EventProvider reads a GitHub event payload. Path falls back to
// GITHUB_EVENT_PATH; a missing file means the source does not apply, while an
// unreadable or malformed file is an error.
type EventProvider struct {
	Path string
}

func (EventProvider) Name() string { return "event" }

func (p EventProvider) Load() (Text, bool, error) {
	path := p.Path
	if path == "" {
		path = os.Getenv("GITHUB_EVENT_PATH")
	}
	if path == "" {
		return Text{}, false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Text{}, false, nil
		}
		return Text{}, false, fmt.Errorf("failed to read event payload: %w", err)
	}

	var event struct {
		PullRequest struct {
			Title  string `json:"title"`
			Body   string `json:"body"`
			Labels []struct {
				Name string `json:"name"`
			} `json:"labels"`
		} `json:"pull_request"`
	}
	if err := json.Unmarshal(data, &event); err != nil {
		return Text{}, false, fmt.Errorf("failed to parse event payload: %w", err)
	}

	var labels []string
	for _, l := range event.PullRequest.Labels {
		if l.Name != "" {
			labels = append(labels, l.Name)
		}
	}

	return Text{Title: event.PullRequest.Title, Body: event.PullRequest.Body, Labels: labels}, true, nil
}

// FileProvider reads the body from a file, with the title supplied directly
// (typically from a CLI flag).
type FileProvider struct {
	Title    string
	BodyPath string
}

func (FileProvider) Name() string { return "file" }

func (p FileProvider) Load() (Text, bool, error) {
	if p.BodyPath == "" {
		return Text{}, false, nil
	}

	data, err := os.ReadFile(p.BodyPath)
	if err != nil {
		return Text{}, false, fmt.Errorf("failed to read body file: %w", err)
	}

	return Text{Title: p.Title, Body: string(data)}, true, nil
}
