package geom

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrSingular is returned when a transform has no inverse.
var ErrSingular = errors.New("geom: transform is singular")

// singularEpsilon bounds the determinant below which a transform is treated
// as non-invertible.
const singularEpsilon = 1e-12

// Transform is an affine local-to-world placement stored as a 4x4
// column-major matrix.
type Transform struct {
	m mgl64.Mat4
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{m: mgl64.Ident4()}
}

// FromMat4 wraps an existing matrix.
func FromMat4(m mgl64.Mat4) Transform {
	return Transform{m: m}
}

// Translation returns a pure translation by v.
func Translation(v Vec3) Transform {
	return Transform{m: mgl64.Translate3D(v.X, v.Y, v.Z)}
}

// Scaling returns a (possibly non-uniform) scale about the origin.
func Scaling(v Vec3) Transform {
	return Transform{m: mgl64.Scale3D(v.X, v.Y, v.Z)}
}

// RotationEuler returns a rotation from XYZ Euler angles in degrees.
// X is applied first, then Y, then Z.
func RotationEuler(deg Vec3) Transform {
	rx := mgl64.HomogRotate3DX(mgl64.DegToRad(deg.X))
	ry := mgl64.HomogRotate3DY(mgl64.DegToRad(deg.Y))
	rz := mgl64.HomogRotate3DZ(mgl64.DegToRad(deg.Z))
	return Transform{m: rz.Mul4(ry).Mul4(rx)}
}

// Compose builds translate * rotate * scale.
func Compose(translate, rotateDeg, scale Vec3) Transform {
	return Translation(translate).Mul(RotationEuler(rotateDeg)).Mul(Scaling(scale))
}

// Mul returns t * o, i.e. o is applied first.
func (t Transform) Mul(o Transform) Transform {
	return Transform{m: t.matrix().Mul4(o.matrix())}
}

// Apply maps a local point to world space (rotation, scale and translation).
func (t Transform) Apply(p Vec3) Vec3 {
	r := t.matrix().Mul4x1(mgl64.Vec4{p.X, p.Y, p.Z, 1})
	return Vec3{r[0], r[1], r[2]}
}

// Origin returns the world position of the local origin.
func (t Transform) Origin() Vec3 {
	m := t.matrix()
	return Vec3{m[12], m[13], m[14]}
}

// Inverse returns the inverse transform, or ErrSingular.
func (t Transform) Inverse() (Transform, error) {
	m := t.matrix()
	if math.Abs(m.Det()) < singularEpsilon {
		return Transform{}, ErrSingular
	}
	return Transform{m: m.Inv()}, nil
}

// ApproxEqual compares two transforms element-wise with an absolute tolerance.
func (t Transform) ApproxEqual(o Transform, tol float64) bool {
	a, b := t.matrix(), o.matrix()
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

// matrix treats the zero Transform as identity so that a zero-valued
// object placement behaves sensibly.
func (t Transform) matrix() mgl64.Mat4 {
	if t.m == (mgl64.Mat4{}) {
		return mgl64.Ident4()
	}
	return t.m
}
