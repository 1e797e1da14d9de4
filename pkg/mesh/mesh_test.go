package mesh

import (
	"strings"
	"testing"

	"github.com/chazu/rapidorigin/pkg/geom"
)

func TestSelection(t *testing.T) {
	m := New(geom.Vec3{X: 0, Y: 0, Z: 0}, geom.Vec3{X: 2, Y: 0, Z: 0}, geom.Vec3{X: 0, Y: 2, Z: 0}, geom.Vec3{X: 9, Y: 9, Z: 9})

	if got := m.Selected(); len(got) != 0 {
		t.Fatalf("new mesh has selection %v", got)
	}
	if err := m.Select(0, 2); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	got := m.SelectedPositions()
	want := []geom.Vec3{{X: 0, Y: 0, Z: 0}, {X: 0, Y: 2, Z: 0}}
	if len(got) != len(want) {
		t.Fatalf("SelectedPositions() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SelectedPositions()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	m.SelectAll(true)
	if n := len(m.Selected()); n != 4 {
		t.Errorf("after SelectAll(true) %d selected, want 4", n)
	}
	m.SelectAll(false)
	if n := len(m.Selected()); n != 0 {
		t.Errorf("after SelectAll(false) %d selected, want 0", n)
	}
}

func TestSelectOutOfRange(t *testing.T) {
	m := New(geom.Vec3{}, geom.Vec3{X: 1, Y: 0, Z: 0})
	tests := []struct {
		name    string
		indices []int
	}{
		{"negative", []int{-1}},
		{"past end", []int{2}},
		{"mixed", []int{0, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := m.Select(tt.indices...); err == nil {
				t.Error("expected error")
			}
			if len(m.Selected()) != 0 {
				t.Error("partial selection applied on error")
			}
		})
	}
}

func TestSelectionMaskRoundTrip(t *testing.T) {
	m := New(geom.Vec3{}, geom.Vec3{X: 1, Y: 0, Z: 0}, geom.Vec3{X: 0, Y: 1, Z: 0})
	if err := m.Select(1); err != nil {
		t.Fatal(err)
	}
	mask := m.SelectionMask()
	mask[0] = true
	if m.Vertices[0].Select {
		t.Fatal("SelectionMask did not return a copy")
	}
	if err := m.ApplySelectionMask(mask); err != nil {
		t.Fatal(err)
	}
	if got := m.Selected(); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("Selected() = %v, want [0 1]", got)
	}
	if err := m.ApplySelectionMask([]bool{true}); err == nil {
		t.Error("expected length mismatch error")
	}
}

func TestAddFace(t *testing.T) {
	m := New(geom.Vec3{}, geom.Vec3{X: 1, Y: 0, Z: 0}, geom.Vec3{X: 0, Y: 1, Z: 0})
	if err := m.AddFace(0, 1, 2); err != nil {
		t.Fatalf("AddFace() error = %v", err)
	}
	if err := m.AddFace(0, 1); err == nil {
		t.Error("expected error for two-vertex face")
	}
	if err := m.AddFace(0, 1, 3); err == nil {
		t.Error("expected error for out-of-range index")
	}
	if len(m.Faces) != 1 {
		t.Errorf("len(Faces) = %d, want 1", len(m.Faces))
	}
}

func TestTranslateAndClone(t *testing.T) {
	m := New(geom.Vec3{X: 1, Y: 1, Z: 1})
	c := m.Clone()
	m.Translate(geom.Vec3{X: 1, Y: 2, Z: 3})
	if m.Vertices[0].Co != (geom.Vec3{X: 2, Y: 3, Z: 4}) {
		t.Errorf("translated vertex = %v, want (2, 3, 4)", m.Vertices[0].Co)
	}
	if c.Vertices[0].Co != (geom.Vec3{X: 1, Y: 1, Z: 1}) {
		t.Errorf("clone was mutated: %v", c.Vertices[0].Co)
	}
}

func TestBounds(t *testing.T) {
	m := New(geom.Vec3{X: 1, Y: -2, Z: 3}, geom.Vec3{X: -1, Y: 5, Z: 0}, geom.Vec3{X: 0, Y: 0, Z: 7})
	min, max := m.Bounds()
	if min != (geom.Vec3{X: -1, Y: -2, Z: 0}) {
		t.Errorf("min = %v", min)
	}
	if max != (geom.Vec3{X: 1, Y: 5, Z: 7}) {
		t.Errorf("max = %v", max)
	}
}

func TestTriangulateQuad(t *testing.T) {
	m := New(geom.Vec3{X: 0, Y: 0, Z: 0}, geom.Vec3{X: 1, Y: 0, Z: 0}, geom.Vec3{X: 1, Y: 1, Z: 0}, geom.Vec3{X: 0, Y: 1, Z: 0})
	if err := m.AddFace(0, 1, 2, 3); err != nil {
		t.Fatal(err)
	}
	verts, idx := m.Triangulate(geom.Translation(geom.Vec3{X: 10, Y: 0, Z: 0}))
	if len(verts) != 12 {
		t.Fatalf("len(vertices) = %d, want 12", len(verts))
	}
	if verts[0] != 10 {
		t.Errorf("first vertex x = %v, want 10 (world space)", verts[0])
	}
	want := []uint32{0, 1, 2, 0, 2, 3}
	if len(idx) != len(want) {
		t.Fatalf("indices = %v, want %v", idx, want)
	}
	for i := range want {
		if idx[i] != want[i] {
			t.Errorf("indices[%d] = %d, want %d", i, idx[i], want[i])
		}
	}
}

// ---------------------------------------------------------------------------
// Welding
// ---------------------------------------------------------------------------

func TestFromTrianglesWeldsSharedCorners(t *testing.T) {
	// Two triangles of a unit quad, emitted as an unshared soup.
	flat := []float32{
		0, 0, 0, 1, 0, 0, 1, 1, 0,
		0, 0, 0, 1, 1, 0, 0, 1, 0,
	}
	idx := []uint32{0, 1, 2, 3, 4, 5}

	m, err := FromTriangles(flat, idx, 0)
	if err != nil {
		t.Fatalf("FromTriangles() error = %v", err)
	}
	if m.VertexCount() != 4 {
		t.Errorf("VertexCount() = %d, want 4", m.VertexCount())
	}
	if len(m.Faces) != 2 {
		t.Errorf("len(Faces) = %d, want 2", len(m.Faces))
	}
}

func TestFromTrianglesDropsDegenerate(t *testing.T) {
	flat := []float32{0, 0, 0, 0, 0, 0, 1, 0, 0}
	m, err := FromTriangles(flat, []uint32{0, 1, 2}, 1e-3)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Faces) != 0 {
		t.Errorf("degenerate triangle kept: %v", m.Faces)
	}
}

func TestFromTrianglesErrors(t *testing.T) {
	tests := []struct {
		name  string
		flat  []float32
		index []uint32
	}{
		{"ragged vertices", []float32{0, 0}, nil},
		{"ragged indices", []float32{0, 0, 0}, []uint32{0}},
		{"index out of range", []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, []uint32{0, 1, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromTriangles(tt.flat, tt.index, 0); err == nil {
				t.Error("expected error")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// OBJ
// ---------------------------------------------------------------------------

const quadOBJ = `# unit quad
v 0 0 0
v 2 0 0
v 2 2 0
v 0 2 0
vn 0 0 1
f 1//1 2//1 3//1 4//1
f -4 -3 -2
`

func TestLoadOBJ(t *testing.T) {
	m, err := LoadOBJFromReader(strings.NewReader(quadOBJ))
	if err != nil {
		t.Fatalf("LoadOBJFromReader() error = %v", err)
	}
	if m.VertexCount() != 4 {
		t.Fatalf("VertexCount() = %d, want 4", m.VertexCount())
	}
	if m.Vertices[2].Co != (geom.Vec3{X: 2, Y: 2, Z: 0}) {
		t.Errorf("vertex 2 = %v, want (2, 2, 0)", m.Vertices[2].Co)
	}
	if len(m.Faces) != 2 {
		t.Fatalf("len(Faces) = %d, want 2", len(m.Faces))
	}
	if got := m.Faces[1]; got[0] != 0 || got[1] != 1 || got[2] != 2 {
		t.Errorf("relative face = %v, want [0 1 2]", got)
	}
}

func TestLoadOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"short vertex", "v 1 2\n"},
		{"bad float", "v 1 x 3\n"},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n"},
		{"out of range", "v 0 0 0\nf 1 2 3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadOBJFromReader(strings.NewReader(tt.src))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.HasPrefix(err.Error(), "mesh: obj line") {
				t.Errorf("error = %q, want mesh: obj line prefix", err)
			}
		})
	}
}
