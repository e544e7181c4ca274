package render

import (
	"fmt"
	"strings"

	"imgquant/domain/plot"
)

// RenderOptions controls the SVG canvas
type RenderOptions struct {
	Width  int
	Height int
	Title  string
	YLabel string
}

// DefaultRenderOptions returns an 800x600 canvas
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{Width: 800, Height: 600}
}

const (
	marginLeft   = 70.0
	marginRight  = 25.0
	marginTop    = 45.0
	marginBottom = 55.0
	barSlotFill  = 0.8 // bar width as a fraction of its categorical slot
)

// RenderSVG draws the bar chart with error bars and the laid-out
// significance brackets. The bracket geometry comes straight from the
// layout result; this function only maps coordinates onto the canvas.
func RenderSVG(chart plot.Chart, bars []GroupBar, layout plot.LayoutResult, opts RenderOptions) []byte {
	w, h := float64(opts.Width), float64(opts.Height)
	plotW := w - marginLeft - marginRight
	plotH := h - marginTop - marginBottom

	lower := chart.Axis.Lower
	upper := layout.AxisUpper
	if upper <= lower {
		upper = lower + 1
	}

	k := len(chart.Geometry)
	if k == 0 {
		k = 1
	}
	slot := plotW / float64(k)

	xPos := func(position float64) float64 {
		return marginLeft + (position+0.5)*slot
	}
	yPos := func(v float64) float64 {
		return marginTop + plotH*(1-(v-lower)/(upper-lower))
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		opts.Width, opts.Height, opts.Width, opts.Height)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="white"/>`+"\n", opts.Width, opts.Height)

	if opts.Title != "" {
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" text-anchor="middle" font-family="sans-serif" font-size="16">%s</text>`+"\n",
			marginLeft+plotW/2, marginTop-18, escape(opts.Title))
	}

	// y axis with 5 ticks
	fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="black"/>`+"\n",
		marginLeft, marginTop, marginLeft, marginTop+plotH)
	for i := 0; i <= 5; i++ {
		v := lower + (upper-lower)*float64(i)/5
		y := yPos(v)
		fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="black"/>`+"\n",
			marginLeft-5, y, marginLeft, y)
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" text-anchor="end" font-family="sans-serif" font-size="11">%.3g</text>`+"\n",
			marginLeft-8, y+4, v)
	}
	if opts.YLabel != "" {
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" text-anchor="middle" font-family="sans-serif" font-size="13" transform="rotate(-90 %.1f %.1f)">%s</text>`+"\n",
			18.0, marginTop+plotH/2, 18.0, marginTop+plotH/2, escape(opts.YLabel))
	}

	// x axis
	fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="black"/>`+"\n",
		marginLeft, marginTop+plotH, marginLeft+plotW, marginTop+plotH)

	barByGroup := make(map[string]GroupBar, len(bars))
	for _, bar := range bars {
		barByGroup[bar.Group] = bar
	}

	for _, g := range chart.Geometry {
		bar := barByGroup[g.Group]
		cx := xPos(float64(g.Position))
		barW := slot * barSlotFill
		yTop := yPos(bar.Mean)
		yBase := yPos(0)
		if yTop > yBase {
			yTop, yBase = yBase, yTop
		}
		fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="#4878d0" stroke="#2d4d85"/>`+"\n",
			cx-barW/2, yTop, barW, yBase-yTop)

		// 95% CI error bar with caps
		if bar.CIHalf > 0 {
			yHi := yPos(bar.Mean + bar.CIHalf)
			yLo := yPos(bar.Mean - bar.CIHalf)
			cap := barW * 0.25
			fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="black" stroke-width="1.5"/>`+"\n", cx, yHi, cx, yLo)
			fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="black" stroke-width="1.5"/>`+"\n", cx-cap/2, yHi, cx+cap/2, yHi)
			fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="black" stroke-width="1.5"/>`+"\n", cx-cap/2, yLo, cx+cap/2, yLo)
		}

		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" text-anchor="middle" font-family="sans-serif" font-size="13">%s</text>`+"\n",
			cx, marginTop+plotH+20, escape(g.Group))
	}

	// significance brackets
	for _, bracket := range layout.Brackets {
		for _, seg := range bracket.Segments() {
			fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="black" stroke-width="1.5"/>`+"\n",
				xPos(seg[0][0]), yPos(seg[0][1]), xPos(seg[1][0]), yPos(seg[1][1]))
		}
		lx, ly := bracket.LabelAnchor()
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" text-anchor="middle" font-family="sans-serif" font-size="13">%s</text>`+"\n",
			xPos(lx), yPos(ly)-2, escape(bracket.Label))
	}

	b.WriteString("</svg>\n")
	return []byte(b.String())
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
