package mesh

import (
	"fmt"
	"math"

	"github.com/chazu/rapidorigin/pkg/geom"
)

// DefaultWeldTolerance merges vertices closer than this per axis.
const DefaultWeldTolerance = 1e-6

type cellKey [3]int64

// FromTriangles welds a flat triangle soup (3 floats per vertex, 3 indices
// per triangle) into a mesh with shared vertices. Positions that fall into
// the same tolerance cell become one vertex. Degenerate triangles that
// collapse after welding are dropped.
func FromTriangles(vertices []float32, indices []uint32, tol float64) (*Mesh, error) {
	if len(vertices)%3 != 0 {
		return nil, fmt.Errorf("mesh: vertex array length %d is not a multiple of 3", len(vertices))
	}
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("mesh: index array length %d is not a multiple of 3", len(indices))
	}
	if tol <= 0 {
		tol = DefaultWeldTolerance
	}

	n := len(vertices) / 3
	remap := make([]int, n)
	cells := make(map[cellKey]int, n)
	m := &Mesh{}

	for i := 0; i < n; i++ {
		p := geom.Vec3{
			X: float64(vertices[i*3]),
			Y: float64(vertices[i*3+1]),
			Z: float64(vertices[i*3+2]),
		}
		key := cellKey{
			int64(math.Round(p.X / tol)),
			int64(math.Round(p.Y / tol)),
			int64(math.Round(p.Z / tol)),
		}
		if idx, ok := cells[key]; ok {
			remap[i] = idx
			continue
		}
		idx := len(m.Vertices)
		m.Vertices = append(m.Vertices, Vertex{Co: p})
		cells[key] = idx
		remap[i] = idx
	}

	for t := 0; t < len(indices); t += 3 {
		var f [3]int
		for j := 0; j < 3; j++ {
			src := int(indices[t+j])
			if src >= n {
				return nil, fmt.Errorf("mesh: triangle %d references vertex %d of %d", t/3, src, n)
			}
			f[j] = remap[src]
		}
		if f[0] == f[1] || f[1] == f[2] || f[0] == f[2] {
			continue
		}
		m.Faces = append(m.Faces, f[:])
	}
	return m, nil
}
