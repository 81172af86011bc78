package point

// Pt is a convenience constructor for Point.
func Pt(x, y int) Point { return Point{x, y} }

// Point is a grid cell coordinate.
type Point struct{ X, Y int }

// Neighbors8 lists the 8 neighbour offsets in the fixed order used whenever
// expansion must be deterministic.
var Neighbors8 = [8]Point{
	{0, -1}, {1, 0}, {0, 1}, {-1, 0},
	{1, -1}, {1, 1}, {-1, 1}, {-1, -1},
}

func (pt Point) Add(other Point) Point {
	pt.X += other.X
	pt.Y += other.Y
	return pt
}

func (pt Point) Sub(other Point) Point {
	pt.X -= other.X
	pt.Y -= other.Y
	return pt
}

// DistSq is the squared euclidean distance.
func (pt Point) DistSq(other Point) int {
	dx := pt.X - other.X
	dy := pt.Y - other.Y
	return dx*dx + dy*dy
}

// Chebyshev is the king-move distance.
func (pt Point) Chebyshev(other Point) int {
	dx := abs(pt.X - other.X)
	dy := abs(pt.Y - other.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// Less orders points by row, then column.
func (pt Point) Less(other Point) bool {
	if pt.Y != other.Y {
		return pt.Y < other.Y
	}
	return pt.X < other.X
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
