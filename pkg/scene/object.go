package scene

import (
	"github.com/chazu/rapidorigin/pkg/geom"
	"github.com/chazu/rapidorigin/pkg/mesh"
	"github.com/chazu/rapidorigin/pkg/origin"
)

// Object is a named mesh placed in the world.
type Object struct {
	name      string
	mesh      *mesh.Mesh
	transform geom.Transform

	// pending is the uncommitted selection while this object is being edited.
	pending []bool
}

// Compile-time interface check.
var _ origin.Object = (*Object)(nil)

// Name returns the object's unique name.
func (o *Object) Name() string {
	return o.name
}

// Mesh returns the object's mesh. Selection edits made during an open edit
// session are not visible here until the session is committed.
func (o *Object) Mesh() *mesh.Mesh {
	return o.mesh
}

// Transform returns the local-to-world placement.
func (o *Object) Transform() geom.Transform {
	return o.transform
}

// SetTransform replaces the placement.
func (o *Object) SetTransform(t geom.Transform) {
	o.transform = t
}

// Origin returns the world position of the object's origin.
func (o *Object) Origin() geom.Vec3 {
	return o.transform.Origin()
}

// SelectedPoints returns the committed selected vertices in local space.
func (o *Object) SelectedPoints() []geom.Vec3 {
	return o.mesh.SelectedPositions()
}

// WorldPositions returns every vertex in world space.
func (o *Object) WorldPositions() []geom.Vec3 {
	out := make([]geom.Vec3, len(o.mesh.Vertices))
	for i, v := range o.mesh.Vertices {
		out[i] = o.transform.Apply(v.Co)
	}
	return out
}
