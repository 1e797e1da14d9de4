// Package geom holds the small amount of linear algebra the rest of the
// module shares: 3-component vectors, affine transforms and the centroid
// of a point set.
package geom

import (
	"errors"
	"fmt"
	"math"
)

// ErrNoPoints is returned by Centroid for an empty point set.
var ErrNoPoints = errors.New("geom: centroid of empty point set")

// Vec3 is a 3D vector or point.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Div returns v / s.
func (v Vec3) Div(s float64) Vec3 {
	return Vec3{v.X / s, v.Y / s, v.Z / s}
}

// Length returns the Euclidean length.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// ApproxEqual reports whether every component of v and o differs by at most tol.
func (v Vec3) ApproxEqual(o Vec3, tol float64) bool {
	return math.Abs(v.X-o.X) <= tol &&
		math.Abs(v.Y-o.Y) <= tol &&
		math.Abs(v.Z-o.Z) <= tol
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%.4g, %.4g, %.4g)", v.X, v.Y, v.Z)
}

// Centroid returns the per-axis arithmetic mean of points. Summation runs in
// input order starting from the first point.
func Centroid(points []Vec3) (Vec3, error) {
	if len(points) == 0 {
		return Vec3{}, ErrNoPoints
	}
	sum := points[0]
	for _, p := range points[1:] {
		sum = sum.Add(p)
	}
	return sum.Div(float64(len(points))), nil
}
