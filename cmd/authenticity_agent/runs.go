package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var runsCommand = &cobra.Command{
	Use:   "runs",
	Short: "List recent runs stored in the database",
	RunE:  runRunsCmd,
}

var (
	runsPersona string
	runsLimit   int
)

func init() {
	runsCommand.Flags().StringVarP(&runsPersona, "persona", "p", "", "Only list runs for this persona")
	runsCommand.Flags().IntVarP(&runsLimit, "limit", "n", 20, "Maximum number of runs")

	rootCmd.AddCommand(runsCommand)
}

func runRunsCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	a, err := newApp(ctx, cmd, false, true)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.requireDB(); err != nil {
		return err
	}

	runs, err := a.db.ListRuns(ctx, runsPersona, runsLimit)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(runs)
	}

	for _, r := range runs {
		status := r.Status
		if r.Reason != "" {
			status += " (" + r.Reason + ")"
		}
		fmt.Fprintf(os.Stdout, "%s  %s  %-16s %-12s %d attempts  %s\n",
			r.CreatedAt.Format("2006-01-02 15:04"), r.ID, r.PersonaID, r.ContentType, r.Attempts, status)
	}
	return nil
}
