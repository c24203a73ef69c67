package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/persona-authenticity/internal/authenticity"
	"github.com/jonathan/persona-authenticity/internal/detection"
	"github.com/jonathan/persona-authenticity/internal/pipeline"
	"github.com/jonathan/persona-authenticity/internal/readability"
	"github.com/jonathan/persona-authenticity/internal/textutil"
	"github.com/jonathan/persona-authenticity/internal/types"
)

var scoreCommand = &cobra.Command{
	Use:   "score",
	Short: "Score an existing text against a persona",
	Long: `Scores text for authenticity, machine likelihood and readability without calling the
generation service. Text comes from --text, --file, or stdin.`,
	RunE: runScoreCmd,
}

var (
	scorePersona string
	scoreText    string
	scoreFile    string
)

func init() {
	scoreCommand.Flags().StringVarP(&scorePersona, "persona", "p", "", "Persona id (required)")
	scoreCommand.Flags().StringVar(&scoreText, "text", "", "Text to score")
	scoreCommand.Flags().StringVarP(&scoreFile, "file", "f", "", "Read text from a file")
	_ = scoreCommand.MarkFlagRequired("persona")
	scoreCommand.MarkFlagsMutuallyExclusive("text", "file")

	rootCmd.AddCommand(scoreCommand)
}

func runScoreCmd(cmd *cobra.Command, _ []string) error {
	text, err := readScoreText(cmd.InOrStdin())
	if err != nil {
		return err
	}

	a, err := newApp(context.Background(), cmd, false, false)
	if err != nil {
		return err
	}
	defer a.close()

	p, err := a.personas.Get(scorePersona)
	if err != nil {
		return err
	}

	report, err := scoreCandidate(a.scorer, a.ensemble, text, p, a.cfg.Thresholds)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(report)
	}
	a.printer.PrintScoreReport(fmt.Sprintf("SCORE: %s", p.ID), &report)
	return nil
}

func readScoreText(stdin io.Reader) (string, error) {
	switch {
	case scoreText != "":
		return scoreText, nil
	case scoreFile != "":
		data, err := os.ReadFile(scoreFile)
		if err != nil {
			return "", fmt.Errorf("failed to read text file: %w", err)
		}
		return string(data), nil
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		if strings.TrimSpace(string(data)) == "" {
			return "", fmt.Errorf("no text given: use --text, --file or stdin")
		}
		return string(data), nil
	}
}

// scoreCandidate builds the same report the pipeline builds for a candidate.
func scoreCandidate(scorer *authenticity.Scorer, ensemble *detection.Ensemble, text string, p *types.PersonaProfile, t types.Thresholds) (types.ScoreReport, error) {
	text = textutil.NormalizeCandidate(text)

	det, err := ensemble.Detect(text)
	if err != nil {
		return types.ScoreReport{}, err
	}
	report := types.ScoreReport{
		Authenticity: scorer.Score(text, p),
		Detection:    det,
		Readability:  readability.Validate(text, t.Readability),
	}
	report.Pass = pipeline.Passes(&report, t)
	return report, nil
}
