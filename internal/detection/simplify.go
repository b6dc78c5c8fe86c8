package detection

import "math"

// simplify reduces a closed ring with the Douglas-Peucker algorithm. Vertices
// closer than tolerance pixels to the chord between kept vertices are dropped.
// The first vertex and the closing repeat are always kept.
func simplify(ring Polygon, tolerance float64) Polygon {
	if len(ring) < 4 || tolerance <= 0 {
		return ring
	}

	keep := make([]bool, len(ring))
	keep[0], keep[len(ring)-1] = true, true

	type span struct{ first, last int }
	stack := []span{{0, len(ring) - 1}}

	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.last-s.first < 2 {
			continue
		}

		farthest, dist := -1, tolerance
		for i := s.first + 1; i < s.last; i++ {
			if d := segmentDistance(ring[i], ring[s.first], ring[s.last]); d > dist {
				farthest, dist = i, d
			}
		}
		if farthest < 0 {
			continue
		}

		keep[farthest] = true
		stack = append(stack, span{s.first, farthest}, span{farthest, s.last})
	}

	out := make(Polygon, 0, len(ring))
	for i, p := range ring {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}

// segmentDistance returns the distance from p to the segment ab. When a and b
// coincide (the two ends of a closed ring) it is the distance to that point.
func segmentDistance(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}

	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(p.X-(a.X+t*dx), p.Y-(a.Y+t*dy))
}
