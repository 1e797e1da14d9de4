package scene

import (
	"fmt"

	"github.com/chazu/rapidorigin/pkg/geom"
	"github.com/chazu/rapidorigin/pkg/origin"
)

// Mode returns the current session mode.
func (s *Scene) Mode() origin.Mode {
	return s.mode
}

// SetMode switches sessions. Entering edit mode opens a session on the
// active object; returning to object mode commits the pending selection
// into the mesh.
func (s *Scene) SetMode(m origin.Mode) error {
	if m == s.mode {
		return nil
	}
	switch m {
	case origin.ModeEdit:
		if s.active == nil {
			return ErrNoActiveObject
		}
		s.active.pending = s.active.mesh.SelectionMask()
		s.editing = s.active
	case origin.ModeObject:
		if o := s.editing; o != nil {
			if err := o.mesh.ApplySelectionMask(o.pending); err != nil {
				return fmt.Errorf("scene: commit %q: %w", o.name, err)
			}
			o.pending = nil
			s.editing = nil
		}
	default:
		return fmt.Errorf("scene: unknown mode %v", m)
	}
	s.mode = m
	return nil
}

// SelectVertices selects vertices of the named object. While the object is
// being edited the change stays pending until the session is committed.
func (s *Scene) SelectVertices(name string, indices ...int) error {
	o, err := s.Object(name)
	if err != nil {
		return err
	}
	if s.editing != o {
		return o.mesh.Select(indices...)
	}
	for _, i := range indices {
		if i < 0 || i >= len(o.pending) {
			return fmt.Errorf("scene: vertex index %d out of range [0, %d)", i, len(o.pending))
		}
	}
	for _, i := range indices {
		o.pending[i] = true
	}
	return nil
}

// SelectAllVertices sets the selection of every vertex of the named object.
func (s *Scene) SelectAllVertices(name string, selected bool) error {
	o, err := s.Object(name)
	if err != nil {
		return err
	}
	if s.editing != o {
		o.mesh.SelectAll(selected)
		return nil
	}
	for i := range o.pending {
		o.pending[i] = selected
	}
	return nil
}

// OriginToCursor moves obj's origin to the cursor without moving its
// vertices in world space. With d the cursor in obj's local space, every
// local vertex becomes v - d and the placement becomes T * Translate(d).
func (s *Scene) OriginToCursor(obj origin.Object) error {
	o, ok := obj.(*Object)
	if !ok || s.byName[o.name] != o {
		return fmt.Errorf("%w: %q", ErrForeignObject, obj.Name())
	}
	if s.editing != nil {
		return ErrEditSession
	}
	if o.mesh.IsEmpty() {
		return fmt.Errorf("%w: %q", ErrNoMesh, o.name)
	}

	inv, err := o.transform.Inverse()
	if err != nil {
		return fmt.Errorf("scene: origin to cursor %q: %w", o.name, err)
	}
	d := inv.Apply(s.cursor)

	o.mesh.Translate(d.Scale(-1))
	o.transform = o.transform.Mul(geom.Translation(d))
	return nil
}
