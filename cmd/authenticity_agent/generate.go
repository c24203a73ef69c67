package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/persona-authenticity/internal/types"
)

var generateCommand = &cobra.Command{
	Use:   "generate",
	Short: "Generate one text as a persona",
	Long: `Runs the generate-score-decide loop for a single request and prints the accepted text,
or the best attempt when every attempt failed.

The request comes from --request (a JSON file) or from --persona, --content-type and the length
flags. Flags override values read from the file.`,
	RunE: runGenerateCmd,
}

var (
	genRequestPath string
	genPersona     string
	genContentType string
	genMinWords    int
	genMaxWords    int
	genFacts       map[string]string
)

func init() {
	generateCommand.Flags().StringVarP(&genRequestPath, "request", "r", "", "Path to a request JSON file")
	generateCommand.Flags().StringVarP(&genPersona, "persona", "p", "", "Persona id")
	generateCommand.Flags().StringVarP(&genContentType, "content-type", "t", "", "Content type (short-caption, social-post, review, long-form)")
	generateCommand.Flags().IntVar(&genMinWords, "min-words", 40, "Minimum word count")
	generateCommand.Flags().IntVar(&genMaxWords, "max-words", 120, "Maximum word count")
	generateCommand.Flags().StringToStringVarP(&genFacts, "fact", "f", nil, "Fact to include, as key=value (repeatable)")

	rootCmd.AddCommand(generateCommand)
}

func runGenerateCmd(cmd *cobra.Command, _ []string) error {
	req, err := buildRequest(cmd)
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

	res, err := a.orchestrator.Run(ctx, req)
	if err != nil {
		return err
	}
	a.saveResult(context.WithoutCancel(ctx), res)

	if flagJSON {
		return printJSON(res)
	}
	a.printer.PrintResult(res)
	return nil
}

// buildRequest merges the request file with explicitly set flags.
func buildRequest(cmd *cobra.Command) (types.GenerationRequest, error) {
	var req types.GenerationRequest
	if genRequestPath != "" {
		reqs, err := readRequests(genRequestPath)
		if err != nil {
			return req, err
		}
		if len(reqs) != 1 {
			return req, fmt.Errorf("request file holds %d requests; use the batch command", len(reqs))
		}
		req = reqs[0]
	}

	flags := cmd.Flags()
	if flags.Changed("persona") || req.PersonaID == "" {
		req.PersonaID = genPersona
	}
	if flags.Changed("content-type") || req.ContentType == "" {
		req.ContentType = genContentType
	}
	if flags.Changed("min-words") || req.Length.MinWords == 0 {
		req.Length.MinWords = genMinWords
	}
	if flags.Changed("max-words") || req.Length.MaxWords == 0 {
		req.Length.MaxWords = genMaxWords
	}
	if len(genFacts) > 0 && req.Facts == nil {
		req.Facts = make(map[string]any, len(genFacts))
	}
	for k, v := range genFacts {
		req.Facts[k] = factValue(v)
	}

	if req.PersonaID == "" {
		return req, fmt.Errorf("--persona is required (via flag or request file)")
	}
	if req.ContentType == "" {
		return req, fmt.Errorf("--content-type is required (via flag or request file)")
	}
	return req, nil
}

// factValue keeps numeric and boolean flag values typed so they render naturally in prompts
func factValue(v string) any {
	if i, err := strconv.Atoi(v); err == nil {
		return i
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return v
}
