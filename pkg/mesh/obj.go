package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chazu/rapidorigin/pkg/geom"
)

// LoadOBJ reads a Wavefront OBJ file.
func LoadOBJ(path string) (*Mesh, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return LoadOBJFromReader(file)
}

// LoadOBJFromReader parses vertex positions (v) and polygons (f). Texture
// coordinates and normals are ignored; face entries may use the v, v/vt,
// v//vn or v/vt/vn forms and negative (relative) indices.
func LoadOBJFromReader(r io.Reader) (*Mesh, error) {
	m := &Mesh{}
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if len(line) < 2 || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("mesh: obj line %d: vertex needs 3 coordinates", lineNo)
			}
			var co [3]float64
			for i := range co {
				f, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return nil, fmt.Errorf("mesh: obj line %d: %w", lineNo, err)
				}
				co[i] = f
			}
			m.Vertices = append(m.Vertices, Vertex{Co: geom.Vec3{X: co[0], Y: co[1], Z: co[2]}})
		case "f":
			face := make([]int, 0, len(fields)-1)
			for _, arg := range fields[1:] {
				idx, err := fixIndex(strings.SplitN(arg, "/", 2)[0], len(m.Vertices))
				if err != nil {
					return nil, fmt.Errorf("mesh: obj line %d: %w", lineNo, err)
				}
				face = append(face, idx)
			}
			if err := m.AddFace(face...); err != nil {
				return nil, fmt.Errorf("mesh: obj line %d: %w", lineNo, err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// fixIndex converts a 1-based (or negative, relative) OBJ index to 0-based.
func fixIndex(value string, length int) (int, error) {
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("bad face index %q", value)
	}
	switch {
	case parsed < 0:
		return parsed + length, nil
	case parsed == 0:
		return 0, fmt.Errorf("face index 0 is invalid")
	default:
		return parsed - 1, nil
	}
}
