package netgraph

import (
	"math"
	"math/rand/v2"
)

// Algorithm names for Layout. Unrecognized names fall back to spring rather
// than failing; the lenient fallback is inherited behavior, not a bug.
const (
	LayoutSpring      = "spring"
	LayoutCircular    = "circular"
	LayoutKamadaKawai = "kamada_kawai"
	LayoutShell       = "shell"
	LayoutRandom      = "random"
)

// LayoutAlgorithms lists the recognized layout names in display order.
func LayoutAlgorithms() []string {
	return []string{LayoutSpring, LayoutCircular, LayoutKamadaKawai, LayoutShell, LayoutRandom}
}

// DefaultSeed is the default random seed for reproducible layouts.
const DefaultSeed = uint64(42)

// Point is a node position in the unit layout square.
type Point struct {
	X, Y float64
}

// Positions maps node index to its computed 2-D coordinate.
type Positions []Point

// Layout computes node positions with the named algorithm. All algorithms
// are deterministic for a fixed graph and seed. Unrecognized algorithm names
// use spring.
func Layout(g *Graph, algorithm string, seed uint64) Positions {
	switch algorithm {
	case LayoutCircular:
		return circularLayout(g, 1.0)
	case LayoutShell:
		// With no explicit shell list every node sits on one ring, the
		// networkx default this mirrors.
		return circularLayout(g, 1.0)
	case LayoutRandom:
		return randomLayout(g, seed)
	case LayoutKamadaKawai:
		return kamadaKawaiLayout(g)
	default:
		return springLayout(g, seed)
	}
}

// circularLayout places nodes evenly on a circle in insertion order.
func circularLayout(g *Graph, radius float64) Positions {
	n := g.NodeCount()
	pos := make(Positions, n)
	if n == 1 {
		return pos // single node at the origin
	}
	for i := range n {
		theta := 2 * math.Pi * float64(i) / float64(n)
		pos[i] = Point{X: radius * math.Cos(theta), Y: radius * math.Sin(theta)}
	}
	return pos
}

// randomLayout scatters nodes uniformly over the unit square.
func randomLayout(g *Graph, seed uint64) Positions {
	rng := rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
	pos := make(Positions, g.NodeCount())
	for i := range pos {
		pos[i] = Point{X: rng.Float64(), Y: rng.Float64()}
	}
	return pos
}

// springLayout runs Fruchterman-Reingold force-directed placement from a
// seeded random start: repulsion between every pair, attraction along edges
// (scaled by weight when present), with a linearly cooling step size.
func springLayout(g *Graph, seed uint64) Positions {
	n := g.NodeCount()
	if n == 0 {
		return nil
	}
	if n == 1 {
		return Positions{{}}
	}

	pos := randomLayout(g, seed)
	k := math.Sqrt(1.0 / float64(n))
	const iterations = 50

	disp := make([]Point, n)
	for iter := range iterations {
		for i := range disp {
			disp[i] = Point{}
		}

		// Pairwise repulsion.
		for i := range n {
			for j := i + 1; j < n; j++ {
				dx, dy := pos[i].X-pos[j].X, pos[i].Y-pos[j].Y
				d := math.Hypot(dx, dy)
				if d < 1e-9 {
					d = 1e-9
					dx = 1e-9 * float64(i-j)
				}
				f := k * k / d
				disp[i].X += dx / d * f
				disp[i].Y += dy / d * f
				disp[j].X -= dx / d * f
				disp[j].Y -= dy / d * f
			}
		}

		// Attraction along edges.
		for _, e := range g.Edges() {
			if e.U == e.V {
				continue
			}
			w := 1.0
			if e.HasWeight {
				w = math.Abs(e.Weight)
			}
			dx, dy := pos[e.U].X-pos[e.V].X, pos[e.U].Y-pos[e.V].Y
			d := math.Hypot(dx, dy)
			if d < 1e-9 {
				continue
			}
			f := d * d / k * w
			disp[e.U].X -= dx / d * f
			disp[e.U].Y -= dy / d * f
			disp[e.V].X += dx / d * f
			disp[e.V].Y += dy / d * f
		}

		// Limit displacement by the cooling temperature.
		temp := 0.1 * (1 - float64(iter)/float64(iterations))
		for i := range n {
			d := math.Hypot(disp[i].X, disp[i].Y)
			if d < 1e-9 {
				continue
			}
			step := math.Min(d, temp)
			pos[i].X += disp[i].X / d * step
			pos[i].Y += disp[i].Y / d * step
		}
	}

	return rescale(pos)
}

// kamadaKawaiLayout runs stress majorization over graph-theoretic distances
// from a circular start. Disconnected components are held together by
// treating unreachable pairs as slightly farther than the graph diameter.
func kamadaKawaiLayout(g *Graph) Positions {
	n := g.NodeCount()
	if n == 0 {
		return nil
	}
	if n == 1 {
		return Positions{{}}
	}

	dist := hopDistances(g)
	pos := circularLayout(g, 1.0)

	const iterations = 200
	for range iterations {
		next := make(Positions, n)
		for i := range n {
			var sumW, sumX, sumY float64
			for j := range n {
				if i == j {
					continue
				}
				d := dist[i][j]
				w := 1.0 / (d * d)
				dx, dy := pos[i].X-pos[j].X, pos[i].Y-pos[j].Y
				norm := math.Hypot(dx, dy)
				if norm < 1e-9 {
					norm = 1e-9
				}
				sumW += w
				sumX += w * (pos[j].X + d*dx/norm)
				sumY += w * (pos[j].Y + d*dy/norm)
			}
			if sumW == 0 {
				next[i] = pos[i]
				continue
			}
			next[i] = Point{X: sumX / sumW, Y: sumY / sumW}
		}
		pos = next
	}

	return rescale(pos)
}

// hopDistances computes all-pairs BFS hop counts, substituting diameter+1
// for unreachable pairs.
func hopDistances(g *Graph) [][]float64 {
	n := g.NodeCount()
	adj := g.Neighbors()

	dist := make([][]float64, n)
	maxHops := 0.0
	for s := range n {
		row := make([]float64, n)
		for i := range row {
			row[i] = -1
		}
		row[s] = 0
		queue := []int{s}
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			for _, v := range adj[u] {
				if row[v] < 0 {
					row[v] = row[u] + 1
					maxHops = math.Max(maxHops, row[v])
					queue = append(queue, v)
				}
			}
		}
		dist[s] = row
	}

	far := maxHops + 1
	if far < 2 {
		far = 2
	}
	for i := range n {
		for j := range n {
			if dist[i][j] < 0 {
				dist[i][j] = far
			}
		}
	}
	return dist
}

// rescale centers positions on the origin and normalizes the largest
// coordinate magnitude to 1, so every layout shares a comparable extent.
func rescale(pos Positions) Positions {
	if len(pos) == 0 {
		return pos
	}
	var cx, cy float64
	for _, p := range pos {
		cx += p.X
		cy += p.Y
	}
	cx /= float64(len(pos))
	cy /= float64(len(pos))

	maxAbs := 0.0
	for i := range pos {
		pos[i].X -= cx
		pos[i].Y -= cy
		maxAbs = math.Max(maxAbs, math.Max(math.Abs(pos[i].X), math.Abs(pos[i].Y)))
	}
	if maxAbs < 1e-9 {
		return pos
	}
	for i := range pos {
		pos[i].X /= maxAbs
		pos[i].Y /= maxAbs
	}
	return pos
}
