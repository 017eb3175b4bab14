package diffcalc

// XY is one sample of a curve.
type XY struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Plot is display data: f sampled around the point plus the tangent line
// built from the central-difference slope.
type Plot struct {
	Point   XY   `json:"point"`
	Curve   []XY `json:"curve"`
	Tangent []XY `json:"tangent"`
}

// PlotOptions controls the sampling window [x-HalfWidth, x+HalfWidth].
type PlotOptions struct {
	HalfWidth float64 `json:"half_width" toml:"half_width" yaml:"half_width"`
	Samples   int     `json:"samples" toml:"samples" yaml:"samples"`
}

func DefaultPlotOptions() PlotOptions {
	return PlotOptions{HalfWidth: 2, Samples: 101}
}

// SamplePlot samples f over a window centred on x. Curve samples where f is
// undefined are left out; the tangent y = slope*(t-x) + f(x) covers the whole
// window. f(x) itself must be defined.
func SamplePlot(f Func, x, slope float64, opts PlotOptions) (*Plot, error) {
	def := DefaultPlotOptions()
	if opts.HalfWidth <= 0 {
		opts.HalfWidth = def.HalfWidth
	}
	if opts.Samples < 2 {
		opts.Samples = def.Samples
	}

	fx, err := f(x)
	if err != nil {
		return nil, &EvaluationError{Stage: "function", Err: err}
	}

	plot := &Plot{
		Point:   XY{X: x, Y: fx},
		Curve:   make([]XY, 0, opts.Samples),
		Tangent: make([]XY, 0, opts.Samples),
	}
	start := x - opts.HalfWidth
	step := 2 * opts.HalfWidth / float64(opts.Samples-1)
	for i := 0; i < opts.Samples; i++ {
		t := start + float64(i)*step
		plot.Tangent = append(plot.Tangent, XY{X: t, Y: slope*(t-x) + fx})
		if y, err := f(t); err == nil {
			plot.Curve = append(plot.Curve, XY{X: t, Y: y})
		}
	}
	return plot, nil
}
