package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/rapidorigin/pkg/command"
	"github.com/chazu/rapidorigin/pkg/geom"
	"github.com/chazu/rapidorigin/pkg/kernel"
	"github.com/chazu/rapidorigin/pkg/mesh"
	"github.com/chazu/rapidorigin/pkg/origin"
	"github.com/chazu/rapidorigin/pkg/scene"
	"github.com/chazu/rapidorigin/pkg/tessellate"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms scene script source before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: snap-origin -> snap_origin
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a geom.Vec3.
type sexpVec3 struct {
	vec geom.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpObjectRef names a scene object so it can be passed between builtins.
type sexpObjectRef struct {
	name string
}

func (o *sexpObjectRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(object %q)", o.name)
}
func (o *sexpObjectRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a SexpInt or SexpFloat.
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an integer vertex index.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (geom.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return geom.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toObjectName accepts an object reference or a plain name string.
func toObjectName(s zygo.Sexp) (string, error) {
	switch v := s.(type) {
	case *sexpObjectRef:
		return v.name, nil
	case *zygo.SexpStr:
		if !strings.HasPrefix(v.S, kwPrefix) {
			return v.S, nil
		}
	}
	return "", fmt.Errorf("expected object reference or name, got %T (%s)", s, s.SexpString(nil))
}

// kwVec3 reads an optional vec3 keyword, returning def when absent.
func kwVec3(pa kwArgs, key string, def geom.Vec3) (geom.Vec3, error) {
	v, ok := pa.kw[key]
	if !ok {
		return def, nil
	}
	vec, err := toVec3(v)
	if err != nil {
		return geom.Vec3{}, fmt.Errorf("%s: %w", key, err)
	}
	return vec, nil
}

// kwFloat reads a required numeric keyword.
func kwFloat(pa kwArgs, key string) (float64, error) {
	v, ok := pa.kw[key]
	if !ok {
		return 0, fmt.Errorf("missing :%s", key)
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builtinContext is the state shared by builtins during one evaluation.
type builtinContext struct {
	scene    *scene.Scene
	kernel   kernel.Kernel
	registry *command.Registry
	weldTol  float64
}

// addPrimitive tessellates p and adds it to the scene under name.
func (c *builtinContext) addPrimitive(name string, p tessellate.Primitive) (zygo.Sexp, error) {
	if c.kernel == nil {
		return zygo.SexpNull, fmt.Errorf("no geometry kernel configured")
	}
	m, err := tessellate.Tessellate(c.kernel, p, c.weldTol)
	if err != nil {
		return zygo.SexpNull, err
	}
	if _, err := c.scene.Add(name, m, geom.Identity()); err != nil {
		return zygo.SexpNull, err
	}
	return &sexpObjectRef{name: name}, nil
}

// registerBuiltins installs the scene DSL into a zygomys environment.
// Source code must be preprocessed with preprocessSource() before evaluation
// so that :keyword tokens and kebab-case names are recognizable.
func registerBuiltins(env *zygo.Zlisp, c *builtinContext) {

	// -----------------------------------------------------------------------
	// (vec3 x y z)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var xyz [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: argument %d: %w", i+1, err)
			}
			xyz[i] = f
		}
		return &sexpVec3{vec: geom.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (mesh "name" (vec3 ...) (vec3 ...) ...)
	// -----------------------------------------------------------------------
	env.AddFunction("mesh", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("mesh requires a name argument")
		}
		objName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mesh: name: %w", err)
		}
		points := make([]geom.Vec3, 0, len(args)-1)
		for i, a := range args[1:] {
			v, err := toVec3(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("mesh: vertex %d: %w", i, err)
			}
			points = append(points, v)
		}
		if _, err := c.scene.Add(objName, mesh.New(points...), geom.Identity()); err != nil {
			return zygo.SexpNull, fmt.Errorf("mesh: %w", err)
		}
		return &sexpObjectRef{name: objName}, nil
	})

	// -----------------------------------------------------------------------
	// (face obj 0 1 2 ...)
	// -----------------------------------------------------------------------
	env.AddFunction("face", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("face requires an object argument")
		}
		o, indices, err := objectAndIndices(c.scene, args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("face: %w", err)
		}
		if err := o.Mesh().AddFace(indices...); err != nil {
			return zygo.SexpNull, fmt.Errorf("face: %w", err)
		}
		return args[0], nil
	})

	// -----------------------------------------------------------------------
	// (box "name" :size (vec3 w d h) :at (vec3 x y z))
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("box requires a name argument")
		}
		objName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: name: %w", err)
		}
		p := tessellate.Primitive{Kind: tessellate.PrimBox}
		if p.Size, err = kwVec3(pa, "size", geom.Vec3{X: 1, Y: 1, Z: 1}); err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		if p.At, err = kwVec3(pa, "at", geom.Vec3{}); err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		ref, err := c.addPrimitive(objName, p)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		return ref, nil
	})

	// -----------------------------------------------------------------------
	// (cylinder "name" :height 10 :radius 2 :at (vec3 x y z))
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("cylinder requires a name argument")
		}
		objName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: name: %w", err)
		}
		p := tessellate.Primitive{Kind: tessellate.PrimCylinder}
		if p.Height, err = kwFloat(pa, "height"); err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		if p.Radius, err = kwFloat(pa, "radius"); err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		if p.At, err = kwVec3(pa, "at", geom.Vec3{}); err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		ref, err := c.addPrimitive(objName, p)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		return ref, nil
	})

	// -----------------------------------------------------------------------
	// (place obj :translate (vec3 ..) :rotate (vec3 ..) :scale (vec3 ..))
	// -----------------------------------------------------------------------
	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("place requires an object as first argument")
		}
		o, err := lookupObject(c.scene, pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}
		translate, err := kwVec3(pa, "translate", geom.Vec3{})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}
		rotate, err := kwVec3(pa, "rotate", geom.Vec3{})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}
		scale, err := kwVec3(pa, "scale", geom.Vec3{X: 1, Y: 1, Z: 1})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}
		o.SetTransform(geom.Compose(translate, rotate, scale))
		return pa.positional[0], nil
	})

	// -----------------------------------------------------------------------
	// (duplicate obj "name") copies mesh, vertex selection and placement
	// -----------------------------------------------------------------------
	env.AddFunction("duplicate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("duplicate requires an object and a new name")
		}
		o, err := lookupObject(c.scene, args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("duplicate: %w", err)
		}
		newName, err := toString(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("duplicate: name: %w", err)
		}
		if _, err := c.scene.Add(newName, o.Mesh().Clone(), o.Transform()); err != nil {
			return zygo.SexpNull, fmt.Errorf("duplicate: %w", err)
		}
		return &sexpObjectRef{name: newName}, nil
	})

	// -----------------------------------------------------------------------
	// (select-objects obj ...) and (deselect-all)
	// -----------------------------------------------------------------------
	env.AddFunction("select_objects", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		names := make([]string, 0, len(args))
		for _, a := range args {
			n, err := toObjectName(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("select-objects: %w", err)
			}
			names = append(names, n)
		}
		if err := c.scene.Select(names...); err != nil {
			return zygo.SexpNull, fmt.Errorf("select-objects: %w", err)
		}
		return zygo.SexpNull, nil
	})

	env.AddFunction("deselect_all", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		c.scene.DeselectAll()
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (select-verts obj 0 1 2) and (select-all-verts obj)
	// -----------------------------------------------------------------------
	env.AddFunction("select_verts", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("select-verts requires an object argument")
		}
		o, indices, err := objectAndIndices(c.scene, args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("select-verts: %w", err)
		}
		if err := c.scene.SelectVertices(o.Name(), indices...); err != nil {
			return zygo.SexpNull, fmt.Errorf("select-verts: %w", err)
		}
		return zygo.SexpNull, nil
	})

	env.AddFunction("select_all_verts", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("select-all-verts requires exactly one object argument")
		}
		n, err := toObjectName(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("select-all-verts: %w", err)
		}
		if err := c.scene.SelectAllVertices(n, true); err != nil {
			return zygo.SexpNull, fmt.Errorf("select-all-verts: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (edit-mode) and (object-mode)
	// -----------------------------------------------------------------------
	env.AddFunction("edit_mode", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := c.scene.SetMode(origin.ModeEdit); err != nil {
			return zygo.SexpNull, fmt.Errorf("edit-mode: %w", err)
		}
		return zygo.SexpNull, nil
	})

	env.AddFunction("object_mode", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := c.scene.SetMode(origin.ModeObject); err != nil {
			return zygo.SexpNull, fmt.Errorf("object-mode: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (cursor) reads, (cursor (vec3 ..)) moves the shared cursor
	// -----------------------------------------------------------------------
	env.AddFunction("cursor", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		switch len(args) {
		case 0:
		case 1:
			v, err := toVec3(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cursor: %w", err)
			}
			c.scene.SetCursor(v)
		default:
			return zygo.SexpNull, fmt.Errorf("cursor takes at most one argument, got %d", len(args))
		}
		return &sexpVec3{vec: c.scene.Cursor()}, nil
	})

	// -----------------------------------------------------------------------
	// (snap-origin) runs the Rapid Snap Origin command; returns the result
	// kind ("ok", "selection-count", ...) or "cancelled".
	// -----------------------------------------------------------------------
	env.AddFunction("snap_origin", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		out, err := c.registry.Run(command.SnapOriginID, c.scene)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("snap-origin: %w", err)
		}
		if out.Status == command.StatusCancelled {
			return &zygo.SexpStr{S: out.Status.String()}, nil
		}
		return &zygo.SexpStr{S: out.Result.Kind.String()}, nil
	})
}

// lookupObject resolves an object reference or name against the scene.
func lookupObject(sc *scene.Scene, s zygo.Sexp) (*scene.Object, error) {
	n, err := toObjectName(s)
	if err != nil {
		return nil, err
	}
	return sc.Object(n)
}

// objectAndIndices parses (obj i j k ...) argument lists.
func objectAndIndices(sc *scene.Scene, args []zygo.Sexp) (*scene.Object, []int, error) {
	o, err := lookupObject(sc, args[0])
	if err != nil {
		return nil, nil, err
	}
	indices := make([]int, 0, len(args)-1)
	for _, a := range args[1:] {
		i, err := toInt(a)
		if err != nil {
			return nil, nil, err
		}
		indices = append(indices, i)
	}
	return o, indices, nil
}
