package origin

import (
	"errors"

	"github.com/chazu/rapidorigin/pkg/geom"
)

// Kind tags the outcome of Recenter.
type Kind int

const (
	KindOK Kind = iota
	KindSelectionCount
	KindEmptySelection
	KindUnknownOperation
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindSelectionCount:
		return "selection-count"
	case KindEmptySelection:
		return "empty-selection"
	case KindUnknownOperation:
		return "unknown-operation"
	default:
		return "unknown"
	}
}

var (
	// ErrSelectionCount means zero or more than one object was selected.
	ErrSelectionCount = errors.New("origin: exactly one object must be selected")
	// ErrEmptySelection means the target object has no selected vertices.
	ErrEmptySelection = errors.New("origin: no vertices selected")
	// ErrUnknownOperation wraps any failure while relocating the origin.
	ErrUnknownOperation = errors.New("origin: relocation failed")
)

// Result is the outcome of one Recenter call. Err is nil only for KindOK and
// otherwise wraps the sentinel for Kind.
type Result struct {
	Kind     Kind      `json:"kind"`
	Object   string    `json:"object,omitempty"`
	Centroid geom.Vec3 `json:"centroid"` // world space; set once computed
	Err      error     `json:"-"`
}

// OK reports whether the origin was relocated.
func (r Result) OK() bool {
	return r.Kind == KindOK
}

// Message returns the error text, or "" on success.
func (r Result) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
