package svgchart

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/vizcli/viz/pkg/chart"
	"github.com/vizcli/viz/pkg/errors"
)

// Fixed canvas for cartesian drawings.
const (
	canvasW = 800.0
	canvasH = 500.0
	marginT = 60.0
	marginB = 60.0
	marginL = 70.0
	marginR = 30.0
	legendW = 150.0
)

// plotArea is the pixel rectangle data maps into.
type plotArea struct {
	x0, y0, x1, y1 float64
}

func (p plotArea) width() float64  { return p.x1 - p.x0 }
func (p plotArea) height() float64 { return p.y1 - p.y0 }

// renderCartesian draws bar, line, scatter, and histogram traces.
func renderCartesian(spec *chart.Spec, traces []*chart.Trace) ([]byte, error) {
	hasLegend := false
	for _, tr := range traces {
		if tr.Name != "" {
			hasLegend = true
		}
	}
	area := plotArea{x0: marginL, y0: marginT, x1: canvasW - marginR, y1: canvasH - marginB}
	if hasLegend {
		area.x1 -= legendW
	}

	var buf bytes.Buffer
	openCanvas(&buf, spec)

	var err error
	switch traces[0].Type {
	case "bar":
		err = drawBars(&buf, area, spec, traces)
	case "histogram":
		err = drawHistogram(&buf, area, spec, traces)
	default:
		err = drawScatter(&buf, area, spec, traces)
	}
	if err != nil {
		return nil, err
	}

	if hasLegend {
		drawLegend(&buf, area, traces)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

// openCanvas writes the root element, background, and title.
func openCanvas(buf *bytes.Buffer, spec *chart.Spec) {
	fmt.Fprintf(buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.0f %.0f" width="%.0f" height="%.0f">`+"\n",
		canvasW, canvasH, canvasW, canvasH)
	fmt.Fprintf(buf, `<rect width="%.0f" height="%.0f" fill="white"/>`+"\n", canvasW, canvasH)
	if t := title(spec); t != "" {
		fmt.Fprintf(buf, `<text x="%.1f" y="30" font-family="sans-serif" font-size="18" text-anchor="middle">%s</text>`+"\n",
			canvasW/2, escape(t))
	}
}

// =============================================================================
// Bar
// =============================================================================

// drawBars renders grouped bars over a categorical x axis. Categories keep
// first-appearance order across traces.
func drawBars(buf *bytes.Buffer, area plotArea, spec *chart.Spec, traces []*chart.Trace) error {
	cats, index := categories(traces)
	if len(cats) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "bar chart has no x values")
	}

	lo, hi := yExtent(traces, true)
	ys := newLinear(lo, hi, area.y1, area.y0)

	drawFrame(buf, area, spec, ys)
	drawCategoryTicks(buf, area, cats)

	band := area.width() / float64(len(cats))
	group := band * 0.8
	barW := group / float64(len(traces))
	for ti, tr := range traces {
		color := traceColor(ti)
		for i, xv := range tr.X {
			ci, ok := index[cellString(xv)]
			if !ok {
				continue
			}
			y, ok := num(at(tr.Y, i))
			if !ok {
				continue
			}
			x := area.x0 + float64(ci)*band + (band-group)/2 + float64(ti)*barW
			top, base := ys.at(y), ys.at(0)
			if top > base {
				top, base = base, top
			}
			fmt.Fprintf(buf, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`+"\n",
				fmtF(x), fmtF(top), fmtF(barW), fmtF(base-top), color)
		}
	}
	return nil
}

// =============================================================================
// Histogram
// =============================================================================

// drawHistogram bins each trace's x values over a shared range and renders
// the counts as grouped bars.
func drawHistogram(buf *bytes.Buffer, area plotArea, spec *chart.Spec, traces []*chart.Trace) error {
	lo, hi := math.Inf(1), math.Inf(-1)
	maxN := 0
	for _, tr := range traces {
		n := 0
		for _, xv := range tr.X {
			if v, ok := num(xv); ok {
				lo, hi = math.Min(lo, v), math.Max(hi, v)
				n++
			}
		}
		maxN = max(maxN, n)
	}
	if maxN == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "histogram has no numeric x values")
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	nbins := min(30, max(1, int(math.Ceil(math.Sqrt(float64(maxN))))))
	width := (hi - lo) / float64(nbins)

	counts := make([][]float64, len(traces))
	peak := 0.0
	for ti, tr := range traces {
		counts[ti] = make([]float64, nbins)
		for _, xv := range tr.X {
			v, ok := num(xv)
			if !ok {
				continue
			}
			b := min(nbins-1, int((v-lo)/width))
			counts[ti][b]++
			peak = math.Max(peak, counts[ti][b])
		}
	}

	xs := newLinear(lo, hi, area.x0, area.x1)
	ys := newLinear(0, peak*1.05, area.y1, area.y0)

	drawFrame(buf, area, spec, ys)
	drawNumericTicks(buf, area, xs)

	barW := (xs.at(lo+width) - xs.at(lo)) / float64(len(traces))
	for ti := range traces {
		color := traceColor(ti)
		for b, c := range counts[ti] {
			if c == 0 {
				continue
			}
			x := xs.at(lo+float64(b)*width) + float64(ti)*barW
			top := ys.at(c)
			fmt.Fprintf(buf, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s" fill-opacity="0.8"/>`+"\n",
				fmtF(x), fmtF(top), fmtF(barW), fmtF(area.y1-top), color)
		}
	}
	return nil
}

// =============================================================================
// Line and Scatter
// =============================================================================

// drawScatter renders line and marker traces. Numeric x values map linearly;
// non-numeric x falls back to categorical positions.
func drawScatter(buf *bytes.Buffer, area plotArea, spec *chart.Spec, traces []*chart.Trace) error {
	numericX := true
	for _, tr := range traces {
		for _, xv := range tr.X {
			if xv == nil {
				continue
			}
			if _, ok := num(xv); !ok {
				numericX = false
			}
		}
	}

	var xs linear
	var cats []string
	var index map[string]int
	if numericX {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, tr := range traces {
			for _, xv := range tr.X {
				if v, ok := num(xv); ok {
					lo, hi = math.Min(lo, v), math.Max(hi, v)
				}
			}
		}
		if lo > hi {
			return errors.New(errors.ErrCodeInvalidInput, "chart has no x values")
		}
		if lo == hi {
			lo, hi = lo-0.5, hi+0.5
		}
		xs = newLinear(lo, hi, area.x0, area.x1)
	} else {
		cats, index = categories(traces)
	}

	lo, hi := yExtent(traces, false)
	ys := newLinear(lo, hi, area.y1, area.y0)

	drawFrame(buf, area, spec, ys)
	if numericX {
		drawNumericTicks(buf, area, xs)
	} else {
		drawCategoryTicks(buf, area, cats)
	}

	xpos := func(xv any) (float64, bool) {
		if numericX {
			v, ok := num(xv)
			if !ok {
				return 0, false
			}
			return xs.at(v), true
		}
		ci, ok := index[cellString(xv)]
		if !ok {
			return 0, false
		}
		band := area.width() / float64(len(cats))
		return area.x0 + (float64(ci)+0.5)*band, true
	}

	for ti, tr := range traces {
		color := traceColor(ti)
		type pt struct{ x, y float64 }
		var pts []pt
		for i, xv := range tr.X {
			x, ok := xpos(xv)
			if !ok {
				continue
			}
			y, ok := num(at(tr.Y, i))
			if !ok {
				continue
			}
			pts = append(pts, pt{x, ys.at(y)})
		}

		if tr.Mode == "" || tr.Mode == "lines" || tr.Mode == "lines+markers" {
			var path bytes.Buffer
			for i, p := range pts {
				if i == 0 {
					fmt.Fprintf(&path, "M%s %s", fmtF(p.x), fmtF(p.y))
				} else {
					fmt.Fprintf(&path, " L%s %s", fmtF(p.x), fmtF(p.y))
				}
			}
			if path.Len() > 0 {
				fmt.Fprintf(buf, `<path d="%s" fill="none" stroke="%s" stroke-width="2"/>`+"\n",
					path.String(), color)
			}
		}
		if tr.Mode != "lines" {
			for _, p := range pts {
				fmt.Fprintf(buf, `<circle cx="%s" cy="%s" r="4" fill="%s"/>`+"\n",
					fmtF(p.x), fmtF(p.y), color)
			}
		}
	}
	return nil
}

// =============================================================================
// Axes and Legend
// =============================================================================

// drawFrame draws the axis lines, y grid, y tick labels, and axis titles.
func drawFrame(buf *bytes.Buffer, area plotArea, spec *chart.Spec, ys linear) {
	fmt.Fprintf(buf, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="#444"/>`+"\n",
		fmtF(area.x0), fmtF(area.y1), fmtF(area.x1), fmtF(area.y1))
	fmt.Fprintf(buf, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="#444"/>`+"\n",
		fmtF(area.x0), fmtF(area.y0), fmtF(area.x0), fmtF(area.y1))

	const ticks = 5
	for i := 0; i <= ticks; i++ {
		v := ys.min + (ys.max-ys.min)*float64(i)/ticks
		y := ys.at(v)
		fmt.Fprintf(buf, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="#eee"/>`+"\n",
			fmtF(area.x0), fmtF(y), fmtF(area.x1), fmtF(y))
		fmt.Fprintf(buf, `<text x="%s" y="%s" font-family="sans-serif" font-size="11" text-anchor="end">%s</text>`+"\n",
			fmtF(area.x0-8), fmtF(y+4), escape(strconv.FormatFloat(v, 'g', 4, 64)))
	}

	if ax := spec.Layout.XAxis; ax != nil && ax.Title != nil && ax.Title.Text != "" {
		fmt.Fprintf(buf, `<text x="%s" y="%s" font-family="sans-serif" font-size="13" text-anchor="middle">%s</text>`+"\n",
			fmtF((area.x0+area.x1)/2), fmtF(area.y1+45), escape(ax.Title.Text))
	}
	if ax := spec.Layout.YAxis; ax != nil && ax.Title != nil && ax.Title.Text != "" {
		cy := (area.y0 + area.y1) / 2
		fmt.Fprintf(buf, `<text x="18" y="%s" font-family="sans-serif" font-size="13" text-anchor="middle" transform="rotate(-90 18 %s)">%s</text>`+"\n",
			fmtF(cy), fmtF(cy), escape(ax.Title.Text))
	}
}

// drawCategoryTicks labels each categorical band center.
func drawCategoryTicks(buf *bytes.Buffer, area plotArea, cats []string) {
	band := area.width() / float64(len(cats))
	for i, c := range cats {
		x := area.x0 + (float64(i)+0.5)*band
		fmt.Fprintf(buf, `<text x="%s" y="%s" font-family="sans-serif" font-size="11" text-anchor="middle">%s</text>`+"\n",
			fmtF(x), fmtF(area.y1+18), escape(c))
	}
}

// drawNumericTicks labels evenly spaced positions along a numeric x axis.
func drawNumericTicks(buf *bytes.Buffer, area plotArea, xs linear) {
	const ticks = 5
	for i := 0; i <= ticks; i++ {
		v := xs.min + (xs.max-xs.min)*float64(i)/ticks
		fmt.Fprintf(buf, `<text x="%s" y="%s" font-family="sans-serif" font-size="11" text-anchor="middle">%s</text>`+"\n",
			fmtF(xs.at(v)), fmtF(area.y1+18), escape(strconv.FormatFloat(v, 'g', 4, 64)))
	}
}

// drawLegend lists the named traces with their colors right of the plot.
func drawLegend(buf *bytes.Buffer, area plotArea, traces []*chart.Trace) {
	y := area.y0 + 10
	for i, tr := range traces {
		if tr.Name == "" {
			continue
		}
		fmt.Fprintf(buf, `<rect x="%s" y="%s" width="12" height="12" fill="%s"/>`+"\n",
			fmtF(area.x1+15), fmtF(y-10), traceColor(i))
		fmt.Fprintf(buf, `<text x="%s" y="%s" font-family="sans-serif" font-size="12">%s</text>`+"\n",
			fmtF(area.x1+32), fmtF(y), escape(tr.Name))
		y += 20
	}
}

// =============================================================================
// Scales and Value Coercion
// =============================================================================

// linear maps [min, max] onto pixel range [lo, hi].
type linear struct {
	min, max float64
	lo, hi   float64
}

func newLinear(minV, maxV, lo, hi float64) linear {
	if minV == maxV {
		minV, maxV = minV-0.5, maxV+0.5
	}
	return linear{min: minV, max: maxV, lo: lo, hi: hi}
}

func (l linear) at(v float64) float64 {
	return l.lo + (v-l.min)/(l.max-l.min)*(l.hi-l.lo)
}

// yExtent finds the y range across traces, anchored at zero for bar-like
// charts and padded for readability.
func yExtent(traces []*chart.Trace, includeZero bool) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, tr := range traces {
		for _, yv := range tr.Y {
			if v, ok := num(yv); ok {
				lo, hi = math.Min(lo, v), math.Max(hi, v)
			}
		}
	}
	if lo > hi {
		return 0, 1
	}
	if includeZero {
		lo, hi = math.Min(lo, 0), math.Max(hi, 0)
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 0.5
	}
	if !includeZero || lo < 0 {
		lo -= pad
	}
	return lo, hi + pad
}

// categories collects the distinct x strings across traces in
// first-appearance order.
func categories(traces []*chart.Trace) ([]string, map[string]int) {
	var cats []string
	index := map[string]int{}
	for _, tr := range traces {
		for _, xv := range tr.X {
			k := cellString(xv)
			if _, ok := index[k]; !ok {
				index[k] = len(cats)
				cats = append(cats, k)
			}
		}
	}
	return cats, index
}

// num coerces a native cell value to a float.
func num(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

// cellString renders a native cell value for categorical axes.
func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// at indexes a slice defensively, returning nil past the end.
func at(s []any, i int) any {
	if i >= len(s) {
		return nil
	}
	return s[i]
}
