// Package scene is an in-memory 3D scene that hosts the origin tools.
// It owns objects, the object selection, the edit session, the shared
// cursor and the user-facing report log, and implements origin.Host.
//
// A Scene is not safe for concurrent use; callers serialize access.
package scene

import (
	"errors"
	"fmt"
	"log"

	"github.com/chazu/rapidorigin/pkg/geom"
	"github.com/chazu/rapidorigin/pkg/mesh"
	"github.com/chazu/rapidorigin/pkg/origin"
)

var (
	ErrDuplicateObject = errors.New("scene: object name already in use")
	ErrNoSuchObject    = errors.New("scene: no such object")
	ErrNoActiveObject  = errors.New("scene: no active object")
	ErrNoMesh          = errors.New("scene: object has no mesh")
	ErrEditSession     = errors.New("scene: operation not allowed during an edit session")
	ErrForeignObject   = errors.New("scene: object does not belong to this scene")
)

// Report is one message surfaced to the user.
type Report struct {
	Level   origin.Level `json:"level"`
	Message string       `json:"message"`
}

// Scene holds every object and the shared editing state.
type Scene struct {
	objects []*Object
	byName  map[string]*Object

	selected []*Object
	active   *Object

	mode    origin.Mode
	editing *Object

	cursor  geom.Vec3
	reports []Report
}

// New returns an empty scene in object mode with the cursor at the origin.
func New() *Scene {
	return &Scene{byName: make(map[string]*Object)}
}

// Compile-time interface check.
var _ origin.Host = (*Scene)(nil)

// ---------------------------------------------------------------------------
// Objects
// ---------------------------------------------------------------------------

// Add creates an object from a mesh with the given placement.
func (s *Scene) Add(name string, m *mesh.Mesh, t geom.Transform) (*Object, error) {
	if name == "" {
		return nil, fmt.Errorf("scene: object name must not be empty")
	}
	if _, ok := s.byName[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateObject, name)
	}
	if m == nil {
		m = &mesh.Mesh{}
	}
	o := &Object{name: name, mesh: m, transform: t}
	s.objects = append(s.objects, o)
	s.byName[name] = o
	return o, nil
}

// Object returns the named object.
func (s *Scene) Object(name string) (*Object, error) {
	o, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoSuchObject, name)
	}
	return o, nil
}

// Objects returns every object in insertion order.
func (s *Scene) Objects() []*Object {
	return append([]*Object(nil), s.objects...)
}

// ---------------------------------------------------------------------------
// Selection
// ---------------------------------------------------------------------------

// Select adds the named objects to the selection. The first object selected
// into an empty selection becomes active, replacing any previous active object.
func (s *Scene) Select(names ...string) error {
	objs := make([]*Object, 0, len(names))
	for _, n := range names {
		o, err := s.Object(n)
		if err != nil {
			return err
		}
		objs = append(objs, o)
	}
	for _, o := range objs {
		if s.isSelected(o) {
			continue
		}
		if len(s.selected) == 0 {
			s.active = o
		}
		s.selected = append(s.selected, o)
	}
	return nil
}

// DeselectAll clears the object selection. The active object is kept, as a
// host's active object survives deselection.
func (s *Scene) DeselectAll() {
	s.selected = nil
}

// SetActive makes the named object active without changing the selection.
func (s *Scene) SetActive(name string) error {
	o, err := s.Object(name)
	if err != nil {
		return err
	}
	s.active = o
	return nil
}

// SelectedObjects returns the selected objects in selection order.
func (s *Scene) SelectedObjects() []origin.Object {
	out := make([]origin.Object, len(s.selected))
	for i, o := range s.selected {
		out[i] = o
	}
	return out
}

// ActiveObject returns the active object or nil.
func (s *Scene) ActiveObject() origin.Object {
	if s.active == nil {
		return nil
	}
	return s.active
}

func (s *Scene) isSelected(o *Object) bool {
	for _, sel := range s.selected {
		if sel == o {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Cursor and reports
// ---------------------------------------------------------------------------

// Cursor returns the shared cursor position.
func (s *Scene) Cursor() geom.Vec3 {
	return s.cursor
}

// SetCursor moves the shared cursor.
func (s *Scene) SetCursor(v geom.Vec3) {
	s.cursor = v
}

// Report records a message and logs it.
func (s *Scene) Report(level origin.Level, msg string) {
	log.Printf("scene: [%s] %s", level, msg)
	s.reports = append(s.reports, Report{Level: level, Message: msg})
}

// Reports returns every message reported so far.
func (s *Scene) Reports() []Report {
	return append([]Report(nil), s.reports...)
}
