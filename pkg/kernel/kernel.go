// Package kernel defines the abstract geometry kernel used to turn
// primitive shapes into triangle meshes. The sdfx subpackage is the
// default backend.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel builds primitive solids and tessellates them.
type Kernel interface {
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64, segments int) Solid

	Translate(s Solid, x, y, z float64) Solid

	// ToMesh returns an unwelded triangle soup.
	ToMesh(s Solid) (*Mesh, error)
}
