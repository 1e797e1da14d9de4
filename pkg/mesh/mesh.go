// Package mesh is the editable polygon mesh attached to scene objects.
// Vertex coordinates are object-local and each vertex carries a committed
// selection flag.
package mesh

import (
	"fmt"
	"math"

	"github.com/chazu/rapidorigin/pkg/geom"
)

// Vertex is a mesh vertex in object-local space.
type Vertex struct {
	Co     geom.Vec3 `json:"co"`
	Select bool      `json:"select"`
}

// Mesh is a polygon mesh. Faces index into Vertices.
type Mesh struct {
	Vertices []Vertex `json:"vertices"`
	Faces    [][]int  `json:"faces,omitempty"`
}

// New creates a mesh with one unselected vertex per point and no faces.
func New(points ...geom.Vec3) *Mesh {
	m := &Mesh{Vertices: make([]Vertex, len(points))}
	for i, p := range points {
		m.Vertices[i].Co = p
	}
	return m
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// IsEmpty returns true if the mesh has no vertices.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// AddFace appends a polygon. At least three distinct in-range indices are required.
func (m *Mesh) AddFace(indices ...int) error {
	if len(indices) < 3 {
		return fmt.Errorf("mesh: face needs at least 3 vertices, got %d", len(indices))
	}
	if err := m.checkIndices(indices); err != nil {
		return err
	}
	m.Faces = append(m.Faces, append([]int(nil), indices...))
	return nil
}

// Select marks the given vertices as selected. Other vertices are unchanged.
func (m *Mesh) Select(indices ...int) error {
	if err := m.checkIndices(indices); err != nil {
		return err
	}
	for _, i := range indices {
		m.Vertices[i].Select = true
	}
	return nil
}

// SelectAll sets the selection flag of every vertex.
func (m *Mesh) SelectAll(selected bool) {
	for i := range m.Vertices {
		m.Vertices[i].Select = selected
	}
}

// Selected returns the indices of selected vertices in order.
func (m *Mesh) Selected() []int {
	var out []int
	for i, v := range m.Vertices {
		if v.Select {
			out = append(out, i)
		}
	}
	return out
}

// SelectedPositions returns the local positions of selected vertices.
func (m *Mesh) SelectedPositions() []geom.Vec3 {
	var out []geom.Vec3
	for _, v := range m.Vertices {
		if v.Select {
			out = append(out, v.Co)
		}
	}
	return out
}

// SelectionMask returns a copy of the per-vertex selection flags.
func (m *Mesh) SelectionMask() []bool {
	mask := make([]bool, len(m.Vertices))
	for i, v := range m.Vertices {
		mask[i] = v.Select
	}
	return mask
}

// ApplySelectionMask overwrites selection flags from mask.
func (m *Mesh) ApplySelectionMask(mask []bool) error {
	if len(mask) != len(m.Vertices) {
		return fmt.Errorf("mesh: selection mask has %d entries, mesh has %d vertices", len(mask), len(m.Vertices))
	}
	for i := range m.Vertices {
		m.Vertices[i].Select = mask[i]
	}
	return nil
}

// Translate offsets every vertex by d.
func (m *Mesh) Translate(d geom.Vec3) {
	for i := range m.Vertices {
		m.Vertices[i].Co = m.Vertices[i].Co.Add(d)
	}
}

// Clone returns a deep copy.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{Vertices: append([]Vertex(nil), m.Vertices...)}
	for _, f := range m.Faces {
		c.Faces = append(c.Faces, append([]int(nil), f...))
	}
	return c
}

// Bounds returns the axis-aligned bounding box of the local coordinates.
func (m *Mesh) Bounds() (min, max geom.Vec3) {
	if len(m.Vertices) == 0 {
		return geom.Vec3{}, geom.Vec3{}
	}
	min, max = m.Vertices[0].Co, m.Vertices[0].Co
	for _, v := range m.Vertices[1:] {
		min = geom.Vec3{X: math.Min(min.X, v.Co.X), Y: math.Min(min.Y, v.Co.Y), Z: math.Min(min.Z, v.Co.Z)}
		max = geom.Vec3{X: math.Max(max.X, v.Co.X), Y: math.Max(max.Y, v.Co.Y), Z: math.Max(max.Z, v.Co.Z)}
	}
	return min, max
}

// Triangulate fan-triangulates every face and returns flat world-space
// vertex positions (3 floats per vertex) and triangle indices.
func (m *Mesh) Triangulate(t geom.Transform) (vertices []float32, indices []uint32) {
	vertices = make([]float32, 0, len(m.Vertices)*3)
	for _, v := range m.Vertices {
		w := t.Apply(v.Co)
		vertices = append(vertices, float32(w.X), float32(w.Y), float32(w.Z))
	}
	for _, f := range m.Faces {
		for i := 1; i < len(f)-1; i++ {
			indices = append(indices, uint32(f[0]), uint32(f[i]), uint32(f[i+1]))
		}
	}
	return vertices, indices
}

func (m *Mesh) checkIndices(indices []int) error {
	for _, i := range indices {
		if i < 0 || i >= len(m.Vertices) {
			return fmt.Errorf("mesh: vertex index %d out of range [0, %d)", i, len(m.Vertices))
		}
	}
	return nil
}
