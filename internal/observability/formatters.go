// Package observability provides logging, metrics, tracing and the formatted output used in
// verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/persona-authenticity/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 64
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "..."
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintPersonas outputs a one-line summary per persona.
func (p *Printer) PrintPersonas(personas []*types.PersonaProfile) {
	if len(personas) == 0 {
		p.printBox("PERSONAS", "(none loaded)")
		return
	}

	var sb strings.Builder
	for i, persona := range personas {
		sb.WriteString(fmt.Sprintf("%s  [%s, %s]\n", persona.ID, persona.Locale, persona.Language))
		sb.WriteString(fmt.Sprintf("  traits %d  signatures %d  forbidden %d\n",
			len(persona.Traits), len(persona.SignaturePhrases), len(persona.ForbiddenPhrases)))
		sb.WriteString(fmt.Sprintf("  intensity traits=%d markers=%d imperfection=%d",
			persona.Intensity.Traits, persona.Intensity.Markers, persona.Intensity.Imperfection))
		if i < len(personas)-1 {
			sb.WriteString("\n\n")
		}
	}
	p.printBox(fmt.Sprintf("PERSONAS (%d)", len(personas)), sb.String())
}

// PrintScoreReport outputs the three scoring axes of one candidate.
func (p *Printer) PrintScoreReport(title string, r *types.ScoreReport) {
	if r == nil {
		return
	}

	var sb strings.Builder
	a := r.Authenticity
	sb.WriteString(fmt.Sprintf("Authenticity:  %6.2f", a.Score))
	if a.HardFailure {
		sb.WriteString(fmt.Sprintf("  ✗ language %s, expected %s", a.DetectedLanguage, a.ExpectedLanguage))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  language %.0f  artifacts -%.0f  pattern %.0f\n", a.LanguageMatch, a.ArtifactPenalty, a.PatternMatch))
	writeList(&sb, "  signatures: ", a.SignatureHits)
	writeList(&sb, "  forbidden:  ", a.ForbiddenHits)
	writeList(&sb, "  artifacts:  ", a.Artifacts)

	d := r.Detection
	sb.WriteString(fmt.Sprintf("\nMachine:       %6.2f", d.Score))
	if d.Partial {
		sb.WriteString("  (partial)")
	}
	sb.WriteString("\n")
	for _, ds := range d.Detectors {
		sb.WriteString(fmt.Sprintf("  %-12s %6.2f  w=%.2f\n", ds.Detector, ds.Score, ds.Weight))
	}
	for _, s := range d.Skipped {
		sb.WriteString(fmt.Sprintf("  %-12s skipped: %s\n", s.Detector, s.Reason))
	}
	writeList(&sb, "  matches: ", d.Matches())

	rd := r.Readability
	sb.WriteString(fmt.Sprintf("\nReadability:   ease %.1f", rd.Ease))
	if rd.GradeComputed {
		sb.WriteString(fmt.Sprintf("  grade %.1f", rd.Grade))
	}
	sb.WriteString(fmt.Sprintf("  (%d sentences, %d words)\n", rd.Sentences, rd.Words))
	for _, f := range rd.Failures {
		sb.WriteString(fmt.Sprintf("  ✗ %s\n", f))
	}

	if r.Pass {
		sb.WriteString("\n✓ PASS")
	} else {
		sb.WriteString("\n✗ FAIL")
	}
	p.printBox(title, sb.String())
}

// PrintAttempt outputs one attempt's outcome.
func (p *Printer) PrintAttempt(a *types.Attempt) {
	if a == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Decision:   %s\n", a.Decision))
	if ids := a.Prompt.DirectiveIDs(); len(ids) > 0 {
		writeList(&sb, "Directives: ", ids)
	}
	if a.TransientRetries > 0 {
		sb.WriteString(fmt.Sprintf("Retries:    %d transient\n", a.TransientRetries))
	}
	if a.GenerationError != "" {
		sb.WriteString(fmt.Sprintf("Error:      %s\n", a.GenerationError))
	}
	if a.EnhancementTried {
		status := "applied"
		if a.EnhancementDegraded {
			status = "rejected (degraded)"
		}
		sb.WriteString(fmt.Sprintf("Enhance:    %s\n", status))
	}
	if a.Report != nil {
		sb.WriteString(fmt.Sprintf("Scores:     auth %.2f  machine %.2f  readability %s\n",
			a.Report.Authenticity.Score, a.Report.Detection.Score, passFail(a.Report.Readability.Pass)))
	}
	if a.Candidate != nil {
		sb.WriteString("\n")
		sb.WriteString(a.Candidate.Text)
	}
	p.printBox(fmt.Sprintf("ATTEMPT %d", a.Number), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintResult outputs the terminal outcome of a run.
func (p *Printer) PrintResult(r *types.Result) {
	if r == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:       %s\n", r.RunID))
	sb.WriteString(fmt.Sprintf("Status:    %s\n", r.Status))
	sb.WriteString(fmt.Sprintf("Attempts:  %d\n", r.Attempts))
	if r.Reason != "" {
		sb.WriteString(fmt.Sprintf("Reason:    %s\n", r.Reason))
	}

	if r.Accepted() {
		sb.WriteString("\n")
		sb.WriteString(r.Text)
	} else if r.Best != nil {
		sb.WriteString(fmt.Sprintf("\nBest attempt: #%d", r.Best.Number))
		if r.Best.Report != nil {
			sb.WriteString(fmt.Sprintf(" (auth %.2f, machine %.2f)", r.Best.Report.Authenticity.Score, r.Best.Report.Detection.Score))
		}
		if r.Best.Candidate != nil {
			sb.WriteString("\n")
			sb.WriteString(r.Best.Candidate.Text)
		}
	}

	title := "RESULT: ACCEPTED"
	if !r.Accepted() {
		title = "RESULT: EXHAUSTED"
	}
	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

func writeList(sb *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	shown := items
	if len(shown) > maxItemsToShow {
		shown = shown[:maxItemsToShow]
	}
	sb.WriteString(label)
	sb.WriteString(strings.Join(shown, ", "))
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf(" ... and %d more", len(items)-maxItemsToShow))
	}
	sb.WriteString("\n")
}

func passFail(ok bool) string {
	if ok {
		return "pass"
	}
	return "fail"
}
