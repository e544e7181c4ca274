package artifacts

import (
	"fmt"
	"strings"

	"imgquant/domain/plot"
	"imgquant/models"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// RenderReport builds a human-readable HTML summary of a run: model
// overview, the corrected comparison table and the placed brackets.
func RenderReport(run *models.AnalysisRun, layout plot.LayoutResult) []byte {
	var md strings.Builder

	fmt.Fprintf(&md, "# Analysis run %s\n\n", run.ID.String())
	fmt.Fprintf(&md, "- **Date**: %s\n", run.CreatedAt.DateDir())
	fmt.Fprintf(&md, "- **Response**: `%s`\n", run.Response)
	fmt.Fprintf(&md, "- **Correction**: %s (alpha %.3g)\n", run.Method, run.Alpha)
	fmt.Fprintf(&md, "- **Observations**: %d across %d images in %d groups\n",
		run.NumObs, run.NumImages, run.NumGroups)
	fmt.Fprintf(&md, "- **Variance components**: image %.4g, residual %.4g\n",
		run.GroupVariance, run.ResidVariance)
	fmt.Fprintf(&md, "- **Dataset fingerprint**: `%s`\n\n", run.DatasetHash.String())

	md.WriteString("## Pairwise comparisons\n\n")
	md.WriteString("| group1 | group2 | estimate | SE | t | p | p (adj) | 95% CI |\n")
	md.WriteString("|---|---|---|---|---|---|---|---|\n")
	for _, comp := range run.Comparisons {
		fmt.Fprintf(&md, "| %s | %s | %.4g | %.4g | %.3f | %.4g | %.4g | [%.4g, %.4g] |\n",
			comp.Group1, comp.Group2, comp.Estimate, comp.SE, comp.TValue,
			comp.PValue, comp.PValueAdj, comp.CILower, comp.CIUpper)
	}
	md.WriteString("\n")

	if len(layout.Brackets) > 0 {
		md.WriteString("## Significance brackets\n\n")
		for _, bracket := range layout.Brackets {
			fmt.Fprintf(&md, "- span %d to %d, level %d: **%s**\n",
				bracket.X1, bracket.X2, bracket.Level, bracket.Label)
		}
		md.WriteString("\n")
	} else {
		md.WriteString("No comparison passed the significance threshold.\n\n")
	}

	if len(run.Warnings) > 0 {
		md.WriteString("## Ingestion warnings\n\n")
		for _, warning := range run.Warnings {
			fmt.Fprintf(&md, "- %s\n", warning)
		}
		md.WriteString("\n")
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.CompletePage})
	return markdown.ToHTML([]byte(md.String()), p, renderer)
}
