package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/persona-authenticity/internal/pipeline"
)

var batchCommand = &cobra.Command{
	Use:   "batch",
	Short: "Generate texts for every request in a file",
	Long: `Runs every request in a JSON array concurrently, bounded by pipeline.concurrency. Requests are
independent: one failing request does not stop the others. Interrupting the batch stops new
requests from starting; running ones finish their current attempt.`,
	RunE: runBatchCmd,
}

var batchFile string

func init() {
	batchCommand.Flags().StringVarP(&batchFile, "file", "f", "", "Path to a JSON request file (required)")
	_ = batchCommand.MarkFlagRequired("file")

	rootCmd.AddCommand(batchCommand)
}

// batchLine is one entry of the JSON batch report
type batchLine struct {
	pipeline.BatchItem
	Error string `json:"error,omitempty"`
}

func runBatchCmd(cmd *cobra.Command, _ []string) error {
	reqs, err := readRequests(batchFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cmd, true, true)
	if err != nil {
		return err
	}
	defer a.close()

	items := a.orchestrator.RunBatch(ctx, reqs)

	var failed int
	lines := make([]batchLine, 0, len(items))
	for _, it := range items {
		line := batchLine{BatchItem: it}
		if it.Err != nil {
			failed++
			line.Error = it.Err.Error()
		}
		a.saveResult(context.WithoutCancel(ctx), it.Result)
		lines = append(lines, line)
	}

	if flagJSON {
		if err := printJSON(lines); err != nil {
			return err
		}
	} else {
		for _, line := range lines {
			switch {
			case line.Skipped:
				fmt.Fprintf(os.Stdout, "#%d %s: skipped\n", line.Index, line.Request.PersonaID)
			case line.Err != nil:
				fmt.Fprintf(os.Stdout, "#%d %s: error: %s\n", line.Index, line.Request.PersonaID, line.Error)
			default:
				a.printer.PrintResult(line.Result)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d requests failed", failed, len(items))
	}
	return nil
}
