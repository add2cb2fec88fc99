package main

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewRootCommand returns the entityctl command with all subcommands.
func NewRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	rc := &cobra.Command{
		Use:   "entityctl",
		Short: "Replay and inspect entity collection scenarios.",
		Long: `Replay and inspect entity collection scenarios.

A scenario is a yaml file describing an initial set of records and a
sequence of operations. Replaying it prints the change class and ids of
every step along with the fingerprint of the final state.
`,
		SilenceUsage: true,
	}
	rc.PersistentFlags().BoolP("verbose", "v", false, "Log debug output to stderr.")

	rc.AddCommand(newReplayCommand(stdout, stderr))
	rc.AddCommand(newCasesCommand(stdout))

	rc.SetIn(stdin)
	rc.SetOut(stdout)
	rc.SetErr(stderr)
	return rc
}

func newLogger(cmd *cobra.Command, stderr io.Writer) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: stderr, NoColor: true}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
