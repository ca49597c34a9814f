// Package sphere places items evenly over the surface of a sphere.
package sphere

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// goldenAngle is π(3-√5), the azimuth step between consecutive lattice points.
var goldenAngle = math.Pi * (3 - math.Sqrt(5))

// Layout returns n points on a sphere of the given radius using a Fibonacci
// lattice, ordered from the north pole (+Y) to the south pole. It returns an
// empty slice for n <= 0 or a radius that is not a positive finite number, and a single point at the
// north pole for n == 1.
func Layout(n int, radius float64) []r3.Vec {
	if n <= 0 || !(radius > 0) || math.IsInf(radius, 1) {
		return []r3.Vec{}
	}
	if n == 1 {
		return []r3.Vec{{Y: radius}}
	}

	points := make([]r3.Vec, n)
	last := float64(n - 1)
	for i := range points {
		y := 1 - (float64(i)/last)*2
		r := math.Sqrt(1 - y*y)
		theta := float64(i) * goldenAngle

		points[i] = r3.Scale(radius, r3.Vec{
			X: math.Cos(theta) * r,
			Y: y,
			Z: math.Sin(theta) * r,
		})
	}
	return points
}
