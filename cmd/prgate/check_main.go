package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/sawpanic/prgate/internal/artifacts"
	"github.com/sawpanic/prgate/internal/gates"
	"github.com/sawpanic/prgate/internal/policy"
	"github.com/sawpanic/prgate/internal/source"
)

// errGateFailed maps a failed gate to exit code 1 without cobra's usage noise.
var errGateFailed = errors.New("gate failed")

func addCheckFlags(fs *pflag.FlagSet) {
	fs.String("title", "", "PR title (overrides env/event sources)")
	fs.String("body-file", "", "Read the PR body from a file")
	fs.String("event", "", "Path to a GitHub event payload (default $GITHUB_EVENT_PATH)")
	fs.String("config", "", "Policy YAML path (default: built-in policy)")
	fs.Bool("legacy", false, "Use the legacy summary/testing policy")
	fs.Bool("strict-ack", false, "Treat a missing acknowledgement as an error")
	fs.Bool("json", false, "Emit the outcome as JSON")
	fs.Bool("plain", false, "Force plain output (no icons)")
	fs.String("artifacts", "", "Directory to write the outcome bundle into")
	fs.Bool("quiet", false, "Suppress the report; exit code only")
}

// runCheck handles the check CLI command.
func runCheck(cmd *cobra.Command, args []string) error {
	pol, err := resolvePolicy(cmd)
	if err != nil {
		return err
	}
	if problems := pol.Validate(); len(problems) > 0 {
		return fmt.Errorf("invalid policy: %s", strings.Join(problems, "; "))
	}
	if strict, _ := cmd.Flags().GetBool("strict-ack"); strict {
		pol.AckMissingIsError = true
	}

	text, err := resolveText(cmd)
	if err != nil {
		return err
	}

	evaluator, err := gates.NewEvaluator(pol)
	if err != nil {
		return err
	}
	outcome := evaluator.Validate(text.Title, text.Body)
	evaluator.CheckPersonaLabel(text.Labels, outcome)

	if dir, _ := cmd.Flags().GetString("artifacts"); dir != "" {
		if _, err := artifacts.NewWriter(dir).Write(pol.Name, text.Title, outcome); err != nil {
			return err
		}
	}

	if err := printOutcome(cmd, outcome); err != nil {
		return err
	}

	if !outcome.Passed {
		return errGateFailed
	}
	return nil
}

func resolvePolicy(cmd *cobra.Command) (*policy.Policy, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return policy.LoadPolicy(path)
	}
	if legacy, _ := cmd.Flags().GetBool("legacy"); legacy {
		return policy.LegacyPolicy(), nil
	}
	return policy.DefaultPolicy(), nil
}

// resolveText sources the title/body: explicit file first, then env vars,
// then the GitHub event payload.
func resolveText(cmd *cobra.Command) (source.Text, error) {
	title, _ := cmd.Flags().GetString("title")
	bodyFile, _ := cmd.Flags().GetString("body-file")
	eventPath, _ := cmd.Flags().GetString("event")

	var providers []source.Provider
	if bodyFile != "" {
		providers = append(providers, source.FileProvider{Title: title, BodyPath: bodyFile})
	}
	providers = append(providers, source.EnvProvider{}, source.EventProvider{Path: eventPath})

	text, err := source.Chain(providers...)
	if err != nil {
		return source.Text{}, err
	}
	if title != "" {
		text.Title = title
	}
	return text, nil
}

func printOutcome(cmd *cobra.Command, outcome *gates.Outcome) error {
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		return nil
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		data, err := json.MarshalIndent(outcome, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal outcome: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	plain, _ := cmd.Flags().GetBool("plain")
	icons := !plain && term.IsTerminal(int(os.Stdout.Fd()))
	fmt.Print(gates.Render(outcome, gates.RenderOptions{Icons: icons}))
	return nil
}
