// Package tessellate turns primitive shape specs into editable meshes
// using a geometry kernel. Kernel output is a triangle soup; it is welded
// so that selecting a corner selects one vertex, not one per triangle.
package tessellate

import (
	"fmt"

	"github.com/chazu/rapidorigin/pkg/geom"
	"github.com/chazu/rapidorigin/pkg/kernel"
	"github.com/chazu/rapidorigin/pkg/mesh"
)

// PrimitiveKind distinguishes between primitive shapes.
type PrimitiveKind int

const (
	PrimBox      PrimitiveKind = iota // rectangular solid, min corner at origin
	PrimCylinder                      // Z-aligned cylinder standing on XY
)

func (k PrimitiveKind) String() string {
	switch k {
	case PrimBox:
		return "box"
	case PrimCylinder:
		return "cylinder"
	default:
		return "unknown"
	}
}

// cylinderSegments is passed to kernels that facet cylinders.
const cylinderSegments = 32

// Primitive describes a shape in object-local space.
type Primitive struct {
	Kind   PrimitiveKind
	Size   geom.Vec3 // box dimensions
	Height float64   // cylinder
	Radius float64   // cylinder
	At     geom.Vec3 // local offset applied before tessellation
}

// Validate checks that the dimensions describe a non-degenerate solid.
func (p Primitive) Validate() error {
	switch p.Kind {
	case PrimBox:
		if p.Size.X <= 0 || p.Size.Y <= 0 || p.Size.Z <= 0 {
			return fmt.Errorf("tessellate: box dimensions must be positive, got %v", p.Size)
		}
	case PrimCylinder:
		if p.Height <= 0 || p.Radius <= 0 {
			return fmt.Errorf("tessellate: cylinder height and radius must be positive, got h=%g r=%g", p.Height, p.Radius)
		}
	default:
		return fmt.Errorf("tessellate: unknown primitive kind %v", p.Kind)
	}
	return nil
}

// Tessellate builds the primitive with k and welds the result with the
// given tolerance (non-positive selects mesh.DefaultWeldTolerance).
// The returned mesh has no vertices selected.
func Tessellate(k kernel.Kernel, p Primitive, tol float64) (*mesh.Mesh, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var solid kernel.Solid
	switch p.Kind {
	case PrimBox:
		solid = k.Box(p.Size.X, p.Size.Y, p.Size.Z)
	case PrimCylinder:
		solid = k.Cylinder(p.Height, p.Radius, cylinderSegments)
	}

	if p.At != (geom.Vec3{}) {
		solid = k.Translate(solid, p.At.X, p.At.Y, p.At.Z)
	}

	km, err := k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for %v: %w", p.Kind, err)
	}

	m, err := mesh.FromTriangles(km.Vertices, km.Indices, tol)
	if err != nil {
		return nil, fmt.Errorf("tessellate: weld %v: %w", p.Kind, err)
	}
	return m, nil
}
