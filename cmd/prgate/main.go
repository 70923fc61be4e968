package main

import (
	"errors"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const version = "v1.1.0"

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd := &cobra.Command{
		Use:     "prgate",
		Short:   "Compliance gate for pull-request descriptions",
		Version: version,
		Long: `prgate validates a pull-request description before the change is allowed
to proceed: required sections, substantive testing evidence, and the
guardrails acknowledgement. It reads the title/body from flags, env vars,
or a GitHub event payload and maps the outcome to an exit code for CI.`,
	}

	checkCmd := &cobra.Command{
		Use:           "check",
		Short:         "Validate a PR description against the section policy",
		RunE:          runCheck,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	addCheckFlags(checkCmd.Flags())
	rootCmd.AddCommand(checkCmd)

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errGateFailed) {
			os.Exit(1)
		}
		log.Error().Err(err).Msg("prgate failed")
		os.Exit(2)
	}
}
