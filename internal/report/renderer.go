package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"outcomelab/adapters/lasso"
	"outcomelab/domain/model"
	"outcomelab/domain/run"
	"outcomelab/domain/stats"
	"outcomelab/domain/table"
	"outcomelab/internal/profile"
	"outcomelab/internal/selection"
)

// Input bundles everything the report narrates
type Input struct {
	Summary   *run.Summary
	Columns   []profile.ColumnSummary
	Selection *selection.Result
	FinalFit  model.FitResult
	Lasso     *lasso.Result
}

// Renderer writes the analysis report as markdown and, optionally, HTML
type Renderer struct {
	HTML bool
}

// NewRenderer creates a renderer
func NewRenderer(withHTML bool) *Renderer {
	return &Renderer{HTML: withHTML}
}

// Render produces the markdown report document
func (r *Renderer) Render(in Input) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Binary outcome analysis: %s\n\n", in.Summary.Dataset)
	fmt.Fprintf(&b, "Run `%s`, outcome `%s`, %d rows x %d columns, seed %d.\n\n",
		in.Summary.RunID, in.Summary.Outcome, in.Summary.Rows, in.Summary.Columns, in.Summary.Seed)

	r.writeProfile(&b, in.Columns)
	r.writeSelection(&b, in)
	r.writeFinalModel(&b, in.FinalFit)
	r.writeCompanions(&b, in)

	return b.String()
}

// WriteFiles renders the report into dir as report.md (and report.html when
// enabled), creating the directory if needed.
func (r *Renderer) WriteFiles(dir string, in Input) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("report: failed to create output dir: %w", err)
	}

	doc := r.Render(in)
	if err := os.WriteFile(filepath.Join(dir, "report.md"), []byte(doc), 0o644); err != nil {
		return fmt.Errorf("report: failed to write markdown: %w", err)
	}

	if r.HTML {
		p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
		renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.CompletePage})
		out := markdown.ToHTML([]byte(doc), p, renderer)
		if err := os.WriteFile(filepath.Join(dir, "report.html"), out, 0o644); err != nil {
			return fmt.Errorf("report: failed to write HTML: %w", err)
		}
	}
	return nil
}

func (r *Renderer) writeProfile(b *strings.Builder, columns []profile.ColumnSummary) {
	b.WriteString("## Dataset profile\n\n")
	b.WriteString("| column | kind | missing | summary |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, c := range columns {
		summary := ""
		switch {
		case c.Kind == table.KindNumeric:
			summary = fmt.Sprintf("mean %.3g, sd %.3g, median %.3g [%.3g, %.3g]",
				c.Mean, c.StdDev, c.Median, c.Min, c.Max)
		default:
			summary = fmt.Sprintf("%d levels, mode `%s`", c.Cardinality, c.Mode)
		}
		fmt.Fprintf(b, "| %s | %s | %d (%.1f%%) | %s |\n",
			c.Key, c.Kind, c.Missing, 100*c.MissingRatio, summary)
	}
	b.WriteString("\n")
}

func (r *Renderer) writeSelection(b *strings.Builder, in Input) {
	b.WriteString("## Backward stepwise selection\n\n")
	fmt.Fprintf(b, "Starting AIC %.3f, final AIC %.3f after %d elimination round(s).\n\n",
		in.Selection.Baseline, in.Selection.Score, len(in.Selection.Steps)-1)

	b.WriteString("| round | keep-all AIC | best removal | AIC after removal |\n")
	b.WriteString("|---|---|---|---|\n")
	for i, step := range in.Selection.Steps {
		removed := "(none)"
		score := step.Baseline
		if step.Removed != "" {
			removed = step.Removed.String()
			for _, cand := range step.Candidates {
				if cand.Removed == step.Removed {
					score = cand.Score
				}
			}
		}
		fmt.Fprintf(b, "| %d | %.3f | %s | %.3f |\n", i+1, step.Baseline, removed, score)
	}

	keys := make([]string, len(in.Selection.Predictors))
	for i, k := range in.Selection.Predictors {
		keys[i] = "`" + k.String() + "`"
	}
	fmt.Fprintf(b, "\nRetained predictors: %s.\n\n", strings.Join(keys, ", "))

	// Categorical predictors report the smallest p among their indicator terms.
	b.WriteString("| retained predictor | min p-value |\n")
	b.WriteString("|---|---|\n")
	for _, k := range in.Selection.Predictors {
		fmt.Fprintf(b, "| %s | %.4g |\n", k, in.FinalFit.PredictorSignificance(k))
	}
	b.WriteString("\n")
}

func (r *Renderer) writeFinalModel(b *strings.Builder, fit model.FitResult) {
	b.WriteString("## Final logistic model\n\n")
	fmt.Fprintf(b, "Fitted on %d complete-case rows; deviance %.3f, AIC %.3f.\n\n", fit.Rows, fit.Deviance, fit.Score)
	b.WriteString("| term | estimate | std err | p-value |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, term := range fit.Terms {
		fmt.Fprintf(b, "| %s | %.4f | %.4f | %.4g |\n", term.Name, term.Estimate, term.StdErr, term.PValue)
	}
	b.WriteString("\n")

	effects := stats.EffectsFromTerms(fit.Terms)
	if len(effects) == 0 {
		return
	}
	b.WriteString("### Odds ratios\n\n")
	b.WriteString("| term | odds ratio | 95% CI | strength |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, e := range effects {
		fmt.Fprintf(b, "| %s | %.3f | [%.3f, %.3f] | %s |\n", e.Name, e.OddsRatio, e.Lower, e.Upper, e.Strength)
	}
	b.WriteString("\n")
}

func (r *Renderer) writeCompanions(b *strings.Builder, in Input) {
	b.WriteString("## Companion models\n\n")
	fmt.Fprintf(b, "- Decision tree holdout accuracy: %.3f\n", in.Summary.TreeAccuracy)
	fmt.Fprintf(b, "- Random forest holdout accuracy: %.3f\n", in.Summary.ForestAccuracy)
	fmt.Fprintf(b, "- Lasso (lambda %.3g): %d of %d coefficients survive the penalty\n\n",
		in.Lasso.Lambda, in.Lasso.Nonzero, len(in.Lasso.Coefficients)-1)

	b.WriteString("| lasso term | standardized estimate |\n")
	b.WriteString("|---|---|\n")
	for _, c := range in.Lasso.Coefficients {
		if c.Name == "(Intercept)" || c.Estimate == 0 {
			continue
		}
		fmt.Fprintf(b, "| %s | %.4f |\n", c.Name, c.Estimate)
	}
	b.WriteString("\n")
}
