package mesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/chazu/rapidorigin/pkg/geom"
)

// Import is one mesh-bearing node of an imported scene file.
type Import struct {
	Name      string
	Mesh      *Mesh
	Transform geom.Transform
}

// LoadGLTF loads a .gltf or .glb file. Each node that references a mesh
// yields one Import whose transform is the node's local matrix (or its TRS
// components). Only triangle primitives are read.
func LoadGLTF(path string) ([]Import, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, err
	}

	var imports []Import
	for i, node := range doc.Nodes {
		if node.Mesh == nil {
			continue
		}
		if *node.Mesh < 0 || *node.Mesh >= len(doc.Meshes) || doc.Meshes[*node.Mesh] == nil {
			return nil, fmt.Errorf("mesh: gltf node %d: mesh index %d out of range [0, %d)", i, *node.Mesh, len(doc.Meshes))
		}
		m, err := readMesh(doc, doc.Meshes[*node.Mesh])
		if err != nil {
			return nil, fmt.Errorf("mesh: gltf node %d: %w", i, err)
		}
		if m.IsEmpty() {
			continue
		}
		name := node.Name
		if name == "" {
			name = fmt.Sprintf("node.%03d", i)
		}
		imports = append(imports, Import{Name: name, Mesh: m, Transform: nodeTransform(node)})
	}

	if len(imports) == 0 {
		return nil, fmt.Errorf("mesh: no triangle meshes found in %s", path)
	}
	return imports, nil
}

func readMesh(doc *gltf.Document, gm *gltf.Mesh) (*Mesh, error) {
	var flat []float32
	var indices []uint32

	for _, primitive := range gm.Primitives {
		if primitive == nil {
			continue
		}
		if primitive.Mode != gltf.PrimitiveTriangles {
			continue
		}
		posIdx, ok := primitive.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		if err := checkAccessor(doc, posIdx); err != nil {
			return nil, fmt.Errorf("position: %w", err)
		}
		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return nil, err
		}

		base := uint32(len(flat) / 3)
		for _, p := range positions {
			flat = append(flat, p[0], p[1], p[2])
		}

		if primitive.Indices != nil {
			if err := checkAccessor(doc, *primitive.Indices); err != nil {
				return nil, fmt.Errorf("indices: %w", err)
			}
			idx, err := modeler.ReadIndices(doc, doc.Accessors[*primitive.Indices], nil)
			if err != nil {
				return nil, err
			}
			for _, i := range idx {
				indices = append(indices, base+i)
			}
		} else {
			for k := range positions {
				indices = append(indices, base+uint32(k))
			}
		}
	}
	return FromTriangles(flat, indices, DefaultWeldTolerance)
}

// checkAccessor rejects accessor references the modeler would index blindly.
func checkAccessor(doc *gltf.Document, i int) error {
	if i < 0 || i >= len(doc.Accessors) || doc.Accessors[i] == nil {
		return fmt.Errorf("accessor index %d out of range [0, %d)", i, len(doc.Accessors))
	}
	if bv := doc.Accessors[i].BufferView; bv != nil && (*bv < 0 || *bv >= len(doc.BufferViews)) {
		return fmt.Errorf("accessor %d: buffer view %d out of range [0, %d)", i, *bv, len(doc.BufferViews))
	}
	return nil
}

// nodeTransform returns T * R * S for the node, or its explicit matrix.
func nodeTransform(node *gltf.Node) geom.Transform {
	if mat := node.MatrixOrDefault(); mat != gltf.DefaultMatrix {
		return geom.FromMat4(mgl64.Mat4(mat))
	}
	t := node.TranslationOrDefault()
	r := node.RotationOrDefault()
	s := node.ScaleOrDefault()

	rot := mgl64.Quat{W: r[3], V: mgl64.Vec3{r[0], r[1], r[2]}}.Normalize().Mat4()
	m := mgl64.Translate3D(t[0], t[1], t[2]).Mul4(rot).Mul4(mgl64.Scale3D(s[0], s[1], s[2]))
	return geom.FromMat4(m)
}
