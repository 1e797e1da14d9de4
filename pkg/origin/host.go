// Package origin re-anchors an object's origin at the centroid of its
// selected vertices. It never touches host state directly: everything it
// needs (selection, edit sessions, the shared cursor, origin relocation and
// user-facing reports) comes in through the Host capability interfaces.
package origin

import "github.com/chazu/rapidorigin/pkg/geom"

// Mode is the host's editing session state.
type Mode int

const (
	// ModeObject is the committed session: point data is flushed and readable.
	ModeObject Mode = iota
	// ModeEdit is an interactive editing session with possibly pending changes.
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeObject:
		return "object"
	case ModeEdit:
		return "edit"
	default:
		return "unknown"
	}
}

// Level classifies a user-facing report.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Object is a host object whose origin can be relocated.
type Object interface {
	Name() string
	// SelectedPoints returns the committed selected vertex positions in
	// object-local space.
	SelectedPoints() []geom.Vec3
	// Transform returns the local-to-world placement.
	Transform() geom.Transform
}

// Selection queries selected top-level objects.
type Selection interface {
	SelectedObjects() []Object
	ActiveObject() Object
}

// Sessions switches between editing and committed sessions.
type Sessions interface {
	Mode() Mode
	SetMode(Mode) error
}

// CursorAccessor reads and writes the shared world-space cursor.
type CursorAccessor interface {
	Cursor() geom.Vec3
	SetCursor(geom.Vec3)
}

// Relocator moves an object's origin to the cursor while keeping every
// vertex's world position fixed.
type Relocator interface {
	OriginToCursor(Object) error
}

// Reporter surfaces messages to the user. It must not interrupt control flow.
type Reporter interface {
	Report(Level, string)
}

// Host is everything Recenter needs from the hosting environment.
type Host interface {
	Selection
	Sessions
	CursorAccessor
	Relocator
	Reporter
}
