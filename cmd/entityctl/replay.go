package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/nasdf/entity"
	"github.com/nasdf/entity/document"
	"github.com/nasdf/entity/inspect"
	"github.com/nasdf/entity/link"
	"github.com/nasdf/entity/storage"
	"github.com/nasdf/entity/test"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// ReplayCommand replays a scenario and reports every step.
type ReplayCommand struct {
	// Path is the scenario file to replay.
	Path string
	// Embedded reads Path from the embedded cases instead of the file system.
	Embedded bool
	// JSON writes the final state as dag-json after the report.
	JSON bool

	Logger zerolog.Logger
	Stdout io.Writer
}

func newReplayCommand(stdout, stderr io.Writer) *cobra.Command {
	replay := &ReplayCommand{Stdout: stdout}
	cmd := &cobra.Command{
		Use:   "replay <file>",
		Short: "Replay a scenario file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			replay.Path = args[0]
			replay.Logger = newLogger(cmd, stderr)
			return replay.Run(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&replay.JSON, "json", false, "Write the final state as dag-json.")
	cmd.Flags().BoolVar(&replay.Embedded, "embedded", false, "Read the scenario from the embedded cases.")
	return cmd
}

// Run replays the scenario.
func (c *ReplayCommand) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	tc, err := c.load()
	if err != nil {
		return fmt.Errorf("loading scenario: %w", err)
	}
	steps, err := tc.Replay(entity.WithLogger[string, document.Document](c.Logger))
	if err != nil {
		return fmt.Errorf("replaying scenario: %w", err)
	}

	links := link.NewStore(storage.NewMemory())
	journal := inspect.NewJournal[string, document.Document](links, document.Assemble, 0)

	w := tabwriter.NewWriter(c.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tOP\tCHANGE\tIDS")
	for i, step := range steps {
		entry, err := journal.Record(ctx, step.State, step.Change)
		if err != nil {
			return fmt.Errorf("recording step %d: %w", i, err)
		}
		c.Logger.Debug().
			Int("step", i).
			Str("op", step.Op).
			Stringer("link", entry.Link).
			Msg("step recorded")
		fmt.Fprintf(w, "%d\t%s\t%s\t[%s]\n", i, step.Op, step.Change, strings.Join(step.State.IDs(), " "))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(steps) == 0 {
		return nil
	}

	final := steps[len(steps)-1].State
	fingerprint, err := inspect.Fingerprint(ctx, final, document.Assemble)
	if err != nil {
		return fmt.Errorf("computing fingerprint: %w", err)
	}
	fmt.Fprintf(c.Stdout, "fingerprint %s\n", fingerprint)
	fmt.Fprintf(c.Stdout, "blocks %d\n", links.Blocks())

	if !c.JSON {
		return nil
	}
	node, err := inspect.Inline(final, document.Assemble)
	if err != nil {
		return err
	}
	if err := inspect.WriteJSON(c.Stdout, node); err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.Stdout)
	return err
}

func (c *ReplayCommand) load() (*test.Case, error) {
	if c.Embedded {
		return test.LoadCase(c.Path)
	}
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, err
	}
	return test.ParseCase(data)
}
