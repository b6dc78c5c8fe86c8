package detection

import (
	"errors"

	"github.com/sirupsen/logrus"
)

var (
	// ErrNoContour is returned when a mask has no foreground pixels.
	ErrNoContour = errors.New("mask has no foreground")

	// ErrDegenerateContour is returned when the traced boundary has fewer
	// than three distinct vertices (a single pixel or a two-pixel blob).
	ErrDegenerateContour = errors.New("contour has fewer than 3 distinct vertices")
)

// Contour is the outer boundary traced from a mask.
type Contour struct {
	// Polygon is the closed outer ring in raster pixel coordinates.
	Polygon Polygon

	// Area is the number of foreground pixels in the traced component.
	Area int

	// HolesDiscarded counts enclosed background regions that were ignored.
	HolesDiscarded int

	// ComponentsDiscarded counts smaller foreground components that were not
	// traced.
	ComponentsDiscarded int
}

// Tracer extracts polygon outlines from instance masks.
//
// The zero value traces without simplification and without logging. A Tracer
// is stateless between calls and safe for concurrent use; each individual
// trace runs sequentially.
type Tracer struct {
	// Tolerance enables Douglas-Peucker simplification of the traced ring
	// when > 0. The distance is in pixels. Zero (the default) returns the
	// pixel-accurate boundary.
	Tolerance float64

	// Log receives a warning for every discarded hole. May be nil.
	Log logrus.FieldLogger
}

// moore lists the 8-neighbourhood clockwise (screen orientation, Y down)
// starting from the west neighbour.
var moore = [8][2]int{
	{-1, 0},  // W
	{-1, -1}, // NW
	{0, -1},  // N
	{1, -1},  // NE
	{1, 0},   // E
	{1, 1},   // SE
	{0, 1},   // S
	{-1, 1},  // SW
}

// mooreIndex maps a neighbour offset [dy+1][dx+1] back to its index in moore.
var mooreIndex = [3][3]int{
	{1, 2, 3},
	{0, -1, 4},
	{7, 6, 5},
}

type pixel struct{ x, y int }

// component describes one 8-connected foreground region.
type component struct {
	seed                   pixel // first pixel in raster order
	size                   int
	minX, minY, maxX, maxY int
}

// Trace returns the outer boundary of the mask's foreground.
//
// # Algorithm
//
//  1. Threshold: samples > 0.5 are foreground
//  2. Labelling: group foreground into 8-connected components and keep the
//     largest (ties go to the component seen first in raster order)
//  3. Boundary following: Moore-neighbour tracing from the component's first
//     raster pixel, entering from the west. Tracing stops when the start pixel
//     is about to be left towards the second boundary pixel again, which
//     handles one-pixel-wide necks that revisit the start.
//  4. Holes: background regions (4-connected) enclosed by the component are
//     counted and discarded; each one logs a warning. Only the outer ring is
//     returned.
//  5. Optional Douglas-Peucker simplification when Tolerance > 0
//  6. Closure: the first vertex is appended to close the ring
//
// Vertices are integer pixel indices in raster coordinates (mask Origin
// applied).
//
// Returns ErrNoContour for an empty mask and ErrDegenerateContour when the
// boundary has fewer than three distinct vertices.
func (t *Tracer) Trace(m *Mask) (*Contour, error) {
	if m == nil || m.Width <= 0 || m.Height <= 0 {
		return nil, ErrNoContour
	}

	w, h := m.Width, m.Height
	fg := m.binary()
	labels, comps := labelComponents(fg, w, h)
	if len(comps) == 0 {
		return nil, ErrNoContour
	}

	best := 0
	for i, c := range comps {
		if c.size > comps[best].size {
			best = i
		}
	}
	target := int32(best + 1)
	comp := comps[best]

	inside := func(x, y int) bool {
		return x >= 0 && y >= 0 && x < w && y < h && labels[y*w+x] == target
	}

	ring := traceBoundary(comp.seed, inside, 4*comp.size+8)

	distinct := make(map[pixel]struct{}, len(ring))
	for _, p := range ring {
		distinct[p] = struct{}{}
	}
	if len(distinct) < 3 {
		return nil, ErrDegenerateContour
	}

	holes := countHoles(comp, inside)
	for i := 0; i < holes; i++ {
		t.warn(logrus.Fields{
			"hole":      i + 1,
			"holes":     holes,
			"component": comp.size,
		}, "Discarded interior hole from mask contour; only the outer ring is kept")
	}
	if len(comps) > 1 {
		t.debug(logrus.Fields{
			"components": len(comps),
			"kept":       comp.size,
		}, "Mask has several foreground components; tracing the largest")
	}

	poly := make(Polygon, 0, len(ring)+1)
	for _, p := range ring {
		poly = append(poly, Point{
			X: float64(p.x + m.Origin.X),
			Y: float64(p.y + m.Origin.Y),
		})
	}
	poly = poly.close()

	if t.Tolerance > 0 {
		if simplified := simplify(poly, t.Tolerance); len(simplified) >= 4 {
			poly = simplified
		}
	}

	return &Contour{
		Polygon:             poly,
		Area:                comp.size,
		HolesDiscarded:      holes,
		ComponentsDiscarded: len(comps) - 1,
	}, nil
}

// traceBoundary follows the boundary of the region reported by inside,
// starting at seed, which must be the region's first pixel in raster order so
// that its west neighbour is known to be outside. The returned ring is open
// (the start pixel is not repeated at the end).
func traceBoundary(seed pixel, inside func(x, y int) bool, limit int) []pixel {
	ring := []pixel{seed}
	cur, back := seed, 0 // entered from the west

	for step := 0; step < limit; step++ {
		next, nextBack, ok := mooreStep(cur, back, inside)
		if !ok {
			break // isolated pixel
		}
		if cur == seed && len(ring) > 1 && next == ring[1] {
			// The trace is back in its initial state; drop the repeated
			// start pixel appended when we re-entered it.
			ring = ring[:len(ring)-1]
			break
		}
		ring = append(ring, next)
		cur, back = next, nextBack
	}

	return ring
}

// mooreStep scans the neighbours of cur clockwise, starting just after the
// backtrack direction, and returns the first inside pixel together with the
// direction from that pixel back to the last outside pixel examined.
func mooreStep(cur pixel, back int, inside func(x, y int) bool) (pixel, int, bool) {
	for i := 1; i <= 8; i++ {
		d := (back + i) % 8
		n := pixel{cur.x + moore[d][0], cur.y + moore[d][1]}
		if !inside(n.x, n.y) {
			continue
		}
		prev := (d + 7) % 8
		px, py := cur.x+moore[prev][0], cur.y+moore[prev][1]
		return n, mooreIndex[py-n.y+1][px-n.x+1], true
	}
	return cur, back, false
}

// labelComponents groups foreground pixels into 8-connected components using
// an iterative stack-based flood fill. Labels start at 1; 0 is background.
func labelComponents(fg []bool, width, height int) ([]int32, []component) {
	labels := make([]int32, len(fg))
	comps := make([]component, 0)
	stack := make([]pixel, 0, 64)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !fg[y*width+x] || labels[y*width+x] != 0 {
				continue
			}

			id := int32(len(comps) + 1)
			c := component{seed: pixel{x, y}, minX: x, minY: y, maxX: x, maxY: y}
			labels[y*width+x] = id
			stack = append(stack[:0], pixel{x, y})

			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				c.size++
				c.minX, c.maxX = min(c.minX, p.x), max(c.maxX, p.x)
				c.minY, c.maxY = min(c.minY, p.y), max(c.maxY, p.y)

				for _, d := range moore {
					nx, ny := p.x+d[0], p.y+d[1]
					if nx < 0 || nx >= width || ny < 0 || ny >= height {
						continue
					}
					i := ny*width + nx
					if fg[i] && labels[i] == 0 {
						labels[i] = id
						stack = append(stack, pixel{nx, ny})
					}
				}
			}

			comps = append(comps, c)
		}
	}

	return labels, comps
}

// countHoles counts the 4-connected background regions enclosed by the
// component. The search is limited to the component's bounding box padded by
// one pixel; background reachable from the padding is outside.
func countHoles(c component, inside func(x, y int) bool) int {
	x0, y0 := c.minX-1, c.minY-1
	bw, bh := c.maxX-c.minX+3, c.maxY-c.minY+3

	visited := make([]bool, bw*bh)
	open := func(x, y int) bool {
		return x >= 0 && y >= 0 && x < bw && y < bh &&
			!visited[y*bw+x] && !inside(x+x0, y+y0)
	}

	fill := func(sx, sy int) {
		stack := []pixel{{sx, sy}}
		visited[sy*bw+sx] = true
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
				nx, ny := p.x+d[0], p.y+d[1]
				if open(nx, ny) {
					visited[ny*bw+nx] = true
					stack = append(stack, pixel{nx, ny})
				}
			}
		}
	}

	fill(0, 0)

	holes := 0
	for y := 1; y < bh-1; y++ {
		for x := 1; x < bw-1; x++ {
			if open(x, y) {
				holes++
				fill(x, y)
			}
		}
	}
	return holes
}

func (t *Tracer) warn(fields logrus.Fields, msg string) {
	if t.Log != nil {
		t.Log.WithFields(fields).Warn(msg)
	}
}

func (t *Tracer) debug(fields logrus.Fields, msg string) {
	if t.Log != nil {
		t.Log.WithFields(fields).Debug(msg)
	}
}
