package geo

// Ring is a closed sequence of projected screen points.
type Ring []Point

// BBox is an axis-aligned bounding box in screen coordinates.
type BBox struct {
	MinX, MinY, MaxX, MaxY float64
}

// Contains reports whether p falls inside the box, edges inclusive.
func (b BBox) Contains(p Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// BoundsOf computes the bounding box covering all rings. Returns a zero box
// for empty input.
func BoundsOf(rings []Ring) BBox {
	var b BBox
	first := true
	for _, ring := range rings {
		for _, p := range ring {
			if first {
				b = BBox{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}
				first = false
				continue
			}
			if p.X < b.MinX {
				b.MinX = p.X
			}
			if p.X > b.MaxX {
				b.MaxX = p.X
			}
			if p.Y < b.MinY {
				b.MinY = p.Y
			}
			if p.Y > b.MaxY {
				b.MaxY = p.Y
			}
		}
	}
	return b
}

// ContainsPoint reports whether p lies inside the polygon formed by rings,
// using the even-odd rule so holes behave correctly.
func ContainsPoint(rings []Ring, p Point) bool {
	inside := false
	for _, ring := range rings {
		if ringCrossings(ring, p)%2 == 1 {
			inside = !inside
		}
	}
	return inside
}

// ringCrossings counts edges of ring crossed by a horizontal ray cast from p
// toward positive X.
func ringCrossings(ring Ring, p Point) int {
	n := len(ring)
	if n < 3 {
		return 0
	}
	crossings := 0
	j := n - 1
	for i := 0; i < n; i++ {
		a, b := ring[i], ring[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
			if p.X < x {
				crossings++
			}
		}
		j = i
	}
	return crossings
}
