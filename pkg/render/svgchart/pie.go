package svgchart

import (
	"bytes"
	"fmt"
	"math"

	"github.com/vizcli/viz/pkg/chart"
	"github.com/vizcli/viz/pkg/errors"
)

// renderPie draws a single pie trace. Duplicate labels aggregate their
// values; a trace without values counts label occurrences instead, matching
// interactive pie behavior.
func renderPie(spec *chart.Spec, tr *chart.Trace) ([]byte, error) {
	var labels []string
	totals := map[string]float64{}
	for i, lv := range tr.Labels {
		label := cellString(lv)
		w := 1.0
		if len(tr.Values) > 0 {
			v, ok := num(at(tr.Values, i))
			if !ok {
				continue
			}
			w = v
		}
		if _, seen := totals[label]; !seen {
			labels = append(labels, label)
		}
		totals[label] += w
	}

	total := 0.0
	for _, label := range labels {
		total += totals[label]
	}
	if total <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "pie chart has no positive values")
	}

	var buf bytes.Buffer
	openCanvas(&buf, spec)

	cx, cy := canvasW/2-legendW/2, (marginT+canvasH)/2
	radius := math.Min(canvasW-legendW, canvasH-marginT)/2 - 30

	// Slices start at 12 o'clock and proceed clockwise.
	angle := -math.Pi / 2
	for i, label := range labels {
		frac := totals[label] / total
		if frac <= 0 {
			continue
		}
		color := traceColor(i)
		if frac >= 1 {
			fmt.Fprintf(&buf, `<circle cx="%s" cy="%s" r="%s" fill="%s" stroke="white"/>`+"\n",
				fmtF(cx), fmtF(cy), fmtF(radius), color)
			break
		}
		next := angle + 2*math.Pi*frac
		x1, y1 := cx+radius*math.Cos(angle), cy+radius*math.Sin(angle)
		x2, y2 := cx+radius*math.Cos(next), cy+radius*math.Sin(next)
		large := 0
		if frac > 0.5 {
			large = 1
		}
		fmt.Fprintf(&buf, `<path d="M%s %s L%s %s A%s %s 0 %d 1 %s %s Z" fill="%s" stroke="white"/>`+"\n",
			fmtF(cx), fmtF(cy), fmtF(x1), fmtF(y1), fmtF(radius), fmtF(radius), large, fmtF(x2), fmtF(y2), color)

		// Percentage label at the slice midpoint.
		mid := (angle + next) / 2
		lx, ly := cx+radius*0.6*math.Cos(mid), cy+radius*0.6*math.Sin(mid)
		fmt.Fprintf(&buf, `<text x="%s" y="%s" font-family="sans-serif" font-size="12" fill="white" text-anchor="middle">%s%%</text>`+"\n",
			fmtF(lx), fmtF(ly), fmtF(frac*100))
		angle = next
	}

	// Label legend on the right.
	y := marginT + 10
	for i, label := range labels {
		fmt.Fprintf(&buf, `<rect x="%s" y="%s" width="12" height="12" fill="%s"/>`+"\n",
			fmtF(canvasW-legendW+5), fmtF(y-10), traceColor(i))
		fmt.Fprintf(&buf, `<text x="%s" y="%s" font-family="sans-serif" font-size="12">%s</text>`+"\n",
			fmtF(canvasW-legendW+22), fmtF(y), escape(label))
		y += 20
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}
