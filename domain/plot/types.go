package plot

// BarGeometry is the rendering layer's description of one group's bar:
// its categorical x position and the effective top of the bar including
// any error-bar extent. The layout engine consumes this, never computes it.
type BarGeometry struct {
	Group    string  `json:"group"`
	Position int     `json:"position"`
	Top      float64 `json:"top"`
}

// Axis is the visible y-range of the chart
type Axis struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Range returns the visible span of the axis
func (a Axis) Range() float64 {
	return a.Upper - a.Lower
}

// Chart is the explicit chart context passed into layout and rendering.
// There is deliberately no process-wide current chart.
type Chart struct {
	Geometry []BarGeometry `json:"geometry"`
	Axis     Axis          `json:"axis"`
}

// BracketPlacement is one significance bracket: the categorical x-span
// (ordered), the vertical stacking level, the resolved y-coordinates and
// the star label. TickTop is the top of the bracket's short vertical
// connectors; LabelY is the baseline for the centered label above it.
type BracketPlacement struct {
	X1      int     `json:"x1"`
	X2      int     `json:"x2"`
	Level   int     `json:"level"`
	Y       float64 `json:"y"`
	TickTop float64 `json:"tick_top"`
	LabelY  float64 `json:"label_y"`
	Label   string  `json:"label"`
}

// Segments returns the bracket polyline as drawing instructions for the
// rendering layer: up from each endpoint to the crossbar.
func (b BracketPlacement) Segments() [][2][2]float64 {
	return [][2][2]float64{
		{{float64(b.X1), b.Y}, {float64(b.X1), b.TickTop}},
		{{float64(b.X1), b.TickTop}, {float64(b.X2), b.TickTop}},
		{{float64(b.X2), b.TickTop}, {float64(b.X2), b.Y}},
	}
}

// LabelAnchor returns the centered text anchor for the star label
func (b BracketPlacement) LabelAnchor() (x, y float64) {
	return (float64(b.X1) + float64(b.X2)) / 2, b.LabelY
}

// LayoutResult is the ordered bracket set plus the axis upper bound after
// layout. AxisExtended reports whether the bound had to grow to fit the
// topmost label.
type LayoutResult struct {
	Brackets     []BracketPlacement `json:"brackets"`
	AxisUpper    float64            `json:"axis_upper"`
	AxisExtended bool               `json:"axis_extended"`
}
