package origin

import (
	"fmt"
	"log"

	"github.com/chazu/rapidorigin/pkg/geom"
)

// User-facing report messages.
const (
	msgMultipleObjects = "Rapid Snap Origin - Does not support multiple objects at this time."
	msgNoObjects       = "Rapid Snap Origin - Must have at least one object selected."
	msgNoVertices      = "Rapid Snap Origin - Must have at least 1 vertex selected."
	msgUnknownFailure  = "Rapid Snap Origin - Unknown Failure...Resetting Cursor..."
)

// Recenter moves the origin of the single selected object to the world-space
// centroid of its selected vertices.
//
// The shared cursor is used as the relocation target and is restored to its
// prior value on every path once it has been snapshotted, including failures
// and panics raised by the host. Failures are reported through the host and
// returned as a tagged Result; Recenter itself never panics on host errors.
func Recenter(h Host) Result {
	objs := h.SelectedObjects()
	switch {
	case len(objs) > 1:
		h.Report(LevelWarning, msgMultipleObjects)
		return Result{Kind: KindSelectionCount, Err: fmt.Errorf("%w: got %d", ErrSelectionCount, len(objs))}
	case len(objs) == 0:
		h.Report(LevelWarning, msgNoObjects)
		return Result{Kind: KindSelectionCount, Err: fmt.Errorf("%w: got 0", ErrSelectionCount)}
	}
	obj := objs[0]

	// Point data read during an open edit session is stale; commit first.
	prev := h.Mode()
	if prev != ModeObject {
		if err := h.SetMode(ModeObject); err != nil {
			return unknownFailure(h, obj, fmt.Errorf("commit edit session: %w", err))
		}
	}

	res := relocate(h, obj)

	if prev != ModeObject {
		if err := h.SetMode(prev); err != nil {
			if res.OK() {
				res = unknownFailure(h, obj, fmt.Errorf("restore %s mode: %w", prev, err))
			} else {
				log.Printf("origin: restore %s mode: %v", prev, err)
			}
		}
	}
	return res
}

// relocate runs with the host in object mode.
func relocate(h Host, obj Object) (res Result) {
	points := obj.SelectedPoints()
	if len(points) == 0 {
		h.Report(LevelWarning, msgNoVertices)
		return Result{
			Kind:   KindEmptySelection,
			Object: obj.Name(),
			Err:    fmt.Errorf("%w on %q", ErrEmptySelection, obj.Name()),
		}
	}

	guard := SnapshotCursor(h)
	defer guard.Restore()

	defer func() {
		if r := recover(); r != nil {
			res = unknownFailure(h, obj, fmt.Errorf("panic: %v", r))
		}
	}()

	centroid, err := geom.Centroid(points)
	if err != nil {
		return unknownFailure(h, obj, err)
	}
	world := obj.Transform().Apply(centroid)

	h.SetCursor(world)
	if err := h.OriginToCursor(obj); err != nil {
		return unknownFailure(h, obj, fmt.Errorf("origin to cursor: %w", err))
	}

	return Result{Kind: KindOK, Object: obj.Name(), Centroid: world}
}

func unknownFailure(h Host, obj Object, cause error) Result {
	log.Printf("origin: recenter %q: %v", obj.Name(), cause)
	h.Report(LevelError, msgUnknownFailure)
	return Result{
		Kind:   KindUnknownOperation,
		Object: obj.Name(),
		Err:    fmt.Errorf("%w: %v", ErrUnknownOperation, cause),
	}
}
